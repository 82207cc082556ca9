package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/Garsondee/rts-command/internal/game"
)

// FileName is the config base name; any viper-supported extension is read.
const FileName = "unitcmd.cfg"

// WindowConfig holds the demo window settings.
type WindowConfig struct {
	Width  int    `json:"width" mapstructure:"width"`
	Height int    `json:"height" mapstructure:"height"`
	Title  string `json:"title" mapstructure:"title"`
}

// UnitsConfig controls spawning.
type UnitsConfig struct {
	Count                int     `json:"count" mapstructure:"count"`
	SpawnExtent          float64 `json:"spawnExtent" mapstructure:"spawnExtent"`
	SpawnZ               float64 `json:"spawnZ" mapstructure:"spawnZ"`
	SpawnSeparation      float64 `json:"spawnSeparation" mapstructure:"spawnSeparation"`
	MaxPlacementAttempts int     `json:"maxPlacementAttempts" mapstructure:"maxPlacementAttempts"`
}

// FormationConfig controls slot generation.
type FormationConfig struct {
	Shape   string  `json:"shape" mapstructure:"shape"`
	Spacing float64 `json:"spacing" mapstructure:"spacing"`
	ZLift   float64 `json:"zLift" mapstructure:"zLift"`
}

// MotionConfig controls unit movement.
type MotionConfig struct {
	Model             string  `json:"model" mapstructure:"model"`
	Speed             float64 `json:"speed" mapstructure:"speed"`
	ArrivalEpsilon    float64 `json:"arrivalEpsilon" mapstructure:"arrivalEpsilon"`
	RepulsionRadius   float64 `json:"repulsionRadius" mapstructure:"repulsionRadius"`
	RepulsionStrength float64 `json:"repulsionStrength" mapstructure:"repulsionStrength"`
	RotationSpeed     float64 `json:"rotationSpeed" mapstructure:"rotationSpeed"`
}

// SelectionConfig controls pointer gestures.
type SelectionConfig struct {
	DragThrottle time.Duration `json:"dragThrottle" mapstructure:"dragThrottle"`
	ClickSlop    float64       `json:"clickSlop" mapstructure:"clickSlop"`
}

// CameraConfig places the camera.
type CameraConfig struct {
	Eye    []float64 `json:"eye" mapstructure:"eye"`
	LookAt []float64 `json:"lookAt" mapstructure:"lookAt"`
	FOV    float64   `json:"fov" mapstructure:"fov"`
}

// AssetConfig picks the unit template. Path, when set, wins over Builtin.
type AssetConfig struct {
	Builtin string `json:"builtin" mapstructure:"builtin"`
	Path    string `json:"path" mapstructure:"path"`
}

// Config is the whole application configuration.
type Config struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`
	LogsDir  string `json:"logsDir" mapstructure:"logsDir"`
	Seed     int64  `json:"seed" mapstructure:"seed"`

	Window    WindowConfig    `json:"window" mapstructure:"window"`
	Units     UnitsConfig     `json:"units" mapstructure:"units"`
	Formation FormationConfig `json:"formation" mapstructure:"formation"`
	Motion    MotionConfig    `json:"motion" mapstructure:"motion"`
	Selection SelectionConfig `json:"selection" mapstructure:"selection"`
	Camera    CameraConfig    `json:"camera" mapstructure:"camera"`
	Ground    struct {
		HalfExtent float64 `json:"halfExtent" mapstructure:"halfExtent"`
	} `json:"ground" mapstructure:"ground"`
	Markers struct {
		FeedbackLifetime time.Duration `json:"feedbackLifetime" mapstructure:"feedbackLifetime"`
	} `json:"markers" mapstructure:"markers"`
	Asset AssetConfig `json:"asset" mapstructure:"asset"`
}

func setDefaults() {
	d := game.DefaultTuning()

	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")
	viper.SetDefault("seed", 1)

	viper.SetDefault("window.width", d.ViewportWidth)
	viper.SetDefault("window.height", d.ViewportHeight)
	viper.SetDefault("window.title", "RTS Unit Command")

	viper.SetDefault("units.count", d.UnitCount)
	viper.SetDefault("units.spawnExtent", d.SpawnExtent)
	viper.SetDefault("units.spawnZ", d.SpawnZ)
	viper.SetDefault("units.spawnSeparation", d.SpawnSeparation)
	viper.SetDefault("units.maxPlacementAttempts", d.MaxPlacementAttempts)

	viper.SetDefault("formation.shape", d.FormationShape.String())
	viper.SetDefault("formation.spacing", d.FormationSpacing)
	viper.SetDefault("formation.zLift", d.FormationZLift)

	viper.SetDefault("motion.model", d.MotionModel.String())
	viper.SetDefault("motion.speed", d.Speed)
	viper.SetDefault("motion.arrivalEpsilon", d.ArrivalEpsilon)
	viper.SetDefault("motion.repulsionRadius", d.RepulsionRadius)
	viper.SetDefault("motion.repulsionStrength", d.RepulsionStrength)
	viper.SetDefault("motion.rotationSpeed", d.RotationSpeed)

	viper.SetDefault("selection.dragThrottle", d.DragThrottle.String())
	viper.SetDefault("selection.clickSlop", d.ClickSlop)

	viper.SetDefault("camera.eye", d.CameraEye[:])
	viper.SetDefault("camera.lookAt", d.CameraLookAt[:])
	viper.SetDefault("camera.fov", d.CameraFOV)

	viper.SetDefault("ground.halfExtent", d.GroundHalfExtent)
	viper.SetDefault("markers.feedbackLifetime", "600ms")

	viper.SetDefault("asset.builtin", "box")
	viper.SetDefault("asset.path", "")
}

// Load sets defaults, reads the config file from configDir if there is one
// and decodes the result. A missing file is not an error; an unreadable or
// malformed one is.
func Load(configDir string) (Config, error) {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

// Tuning maps the config onto the simulation constants.
func (c Config) Tuning() game.Tuning {
	t := game.DefaultTuning()

	t.UnitCount = c.Units.Count
	t.SpawnExtent = c.Units.SpawnExtent
	t.SpawnZ = c.Units.SpawnZ
	t.SpawnSeparation = c.Units.SpawnSeparation
	t.MaxPlacementAttempts = c.Units.MaxPlacementAttempts

	t.FormationShape = game.ParseFormationShape(c.Formation.Shape)
	t.FormationSpacing = c.Formation.Spacing
	t.FormationZLift = c.Formation.ZLift

	t.MotionModel = game.ParseMotionModel(c.Motion.Model)
	t.Speed = c.Motion.Speed
	t.ArrivalEpsilon = c.Motion.ArrivalEpsilon
	t.RepulsionRadius = c.Motion.RepulsionRadius
	t.RepulsionStrength = c.Motion.RepulsionStrength
	t.RotationSpeed = c.Motion.RotationSpeed

	t.DragThrottle = c.Selection.DragThrottle
	t.ClickSlop = c.Selection.ClickSlop

	t.GroundHalfExtent = c.Ground.HalfExtent
	t.FeedbackLifetime = c.Markers.FeedbackLifetime.Seconds()
	if v, ok := vec3(c.Camera.Eye); ok {
		t.CameraEye = v
	}
	if v, ok := vec3(c.Camera.LookAt); ok {
		t.CameraLookAt = v
	}
	t.CameraFOV = c.Camera.FOV
	t.ViewportWidth = c.Window.Width
	t.ViewportHeight = c.Window.Height
	return t
}

// AssetLoader returns the loader the config asks for.
func (c Config) AssetLoader() game.AssetLoader {
	if c.Asset.Path != "" {
		return game.FileLoader{Path: c.Asset.Path}
	}
	return game.BuiltinLoader{Name: c.Asset.Builtin}
}

// GetString returns a raw string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

func vec3(v []float64) (mgl64.Vec3, bool) {
	if len(v) != 3 {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, true
}
