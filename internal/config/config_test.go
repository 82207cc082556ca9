package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/rts-command/internal/game"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(1), cfg.Seed)
	assert.Equal(t, 20, cfg.Units.Count)
	assert.Equal(t, "grid", cfg.Formation.Shape)
	assert.Equal(t, "kinematic", cfg.Motion.Model)
	assert.Equal(t, 100*time.Millisecond, cfg.Selection.DragThrottle)
	assert.Equal(t, 600*time.Millisecond, cfg.Markers.FeedbackLifetime)
	assert.Equal(t, []float64{0, -3, 10}, cfg.Camera.Eye)
	assert.Equal(t, "box", cfg.Asset.Builtin)
}

func TestLoad_DefaultsRoundTripToTuning(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, game.DefaultTuning(), cfg.Tuning())
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	raw := `{
		"logLevel": "debug",
		"seed": 99,
		"units": { "count": 8 },
		"formation": { "shape": "wedge", "spacing": 2 },
		"motion": { "model": "physics", "speed": 3.5 },
		"selection": { "dragThrottle": "50ms" },
		"camera": { "eye": [0, -5, 12] },
		"asset": { "path": "tank.yaml" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".json"), []byte(raw), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "debug", GetString("logLevel"))
	assert.Equal(t, int64(99), cfg.Seed)

	tu := cfg.Tuning()
	assert.Equal(t, 8, tu.UnitCount)
	assert.Equal(t, game.ShapeWedge, tu.FormationShape)
	assert.Equal(t, 2.0, tu.FormationSpacing)
	assert.Equal(t, game.ModelPhysics, tu.MotionModel)
	assert.Equal(t, 3.5, tu.Speed)
	assert.Equal(t, 50*time.Millisecond, tu.DragThrottle)
	assert.Equal(t, mgl64.Vec3{0, -5, 12}, tu.CameraEye)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1.2, tu.SpawnSeparation)

	assert.Equal(t, game.FileLoader{Path: "tank.yaml"}, cfg.AssetLoader())
}

func TestLoad_YAMLConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	raw := "units:\n  count: 3\nasset:\n  builtin: tank\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".yaml"), []byte(raw), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Units.Count)
	assert.Equal(t, game.BuiltinLoader{Name: "tank"}, cfg.AssetLoader())
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".json"), []byte(`{"units": `), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	raw := `{"selection": {"dragThrottle": "soon"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".json"), []byte(raw), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding config")
}

func TestTuning_ShortCameraVectorKeepsDefault(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	cfg.Camera.LookAt = []float64{1, 2}
	assert.Equal(t, game.DefaultTuning().CameraLookAt, cfg.Tuning().CameraLookAt)
}
