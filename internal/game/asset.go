package game

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// TemplatePart is one box of a unit template.
type TemplatePart struct {
	Name        string
	Offset      mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// UnitTemplate is the clonable visual a loaded asset supplies.
type UnitTemplate struct {
	Name  string
	Parts []TemplatePart
}

// Validate checks the template can be spawned.
func (t *UnitTemplate) Validate() error {
	if len(t.Parts) == 0 {
		return fmt.Errorf("template %q has no parts", t.Name)
	}
	for i, p := range t.Parts {
		h := p.HalfExtents
		if h.X() <= 0 || h.Y() <= 0 || h.Z() <= 0 {
			return fmt.Errorf("template %q part %d (%s): half extents must be positive", t.Name, i, p.Name)
		}
	}
	return nil
}

// BoxTemplate is a single 1×1×1 box, the plain demo unit.
func BoxTemplate() *UnitTemplate {
	return &UnitTemplate{
		Name: "box",
		Parts: []TemplatePart{
			{Name: "body", HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		},
	}
}

// TankTemplate is a compound unit: a hull with a turret sitting on top.
func TankTemplate() *UnitTemplate {
	return &UnitTemplate{
		Name: "tank",
		Parts: []TemplatePart{
			{Name: "hull", HalfExtents: mgl64.Vec3{0.6, 0.4, 0.25}},
			{Name: "turret", Offset: mgl64.Vec3{-0.1, 0, 0.4}, HalfExtents: mgl64.Vec3{0.25, 0.25, 0.15}},
			{Name: "barrel", Offset: mgl64.Vec3{0.4, 0, 0.4}, HalfExtents: mgl64.Vec3{0.3, 0.05, 0.05}},
		},
	}
}

// AssetLoader supplies a unit template. done is called exactly once, possibly
// from another goroutine.
type AssetLoader interface {
	Load(done func(*UnitTemplate, error))
}

// BuiltinLoader hands out one of the built-in templates synchronously.
type BuiltinLoader struct {
	Name string // "box" or "tank"
}

func (l BuiltinLoader) Load(done func(*UnitTemplate, error)) {
	switch l.Name {
	case "", "box":
		done(BoxTemplate(), nil)
	case "tank":
		done(TankTemplate(), nil)
	default:
		done(nil, fmt.Errorf("unknown builtin template %q", l.Name))
	}
}

// FileLoader reads a YAML template from disk on its own goroutine.
type FileLoader struct {
	Path string
}

// templateFile is the on-disk layout:
//
//	name: tank
//	parts:
//	  - name: hull
//	    offset: [0, 0, 0]
//	    halfExtents: [0.6, 0.4, 0.25]
type templateFile struct {
	Name  string `yaml:"name"`
	Parts []struct {
		Name        string     `yaml:"name"`
		Offset      [3]float64 `yaml:"offset"`
		HalfExtents [3]float64 `yaml:"halfExtents"`
	} `yaml:"parts"`
}

func (l FileLoader) Load(done func(*UnitTemplate, error)) {
	go func() {
		done(ReadTemplateFile(l.Path))
	}()
}

// ReadTemplateFile parses and validates a YAML template.
func ReadTemplateFile(path string) (*UnitTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return ParseTemplate(raw)
}

// ParseTemplate decodes a YAML template.
func ParseTemplate(raw []byte) (*UnitTemplate, error) {
	var tf templateFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	t := &UnitTemplate{Name: tf.Name}
	for _, p := range tf.Parts {
		t.Parts = append(t.Parts, TemplatePart{
			Name:        p.Name,
			Offset:      mgl64.Vec3(p.Offset),
			HalfExtents: mgl64.Vec3(p.HalfExtents),
		})
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// errNoTemplate is reported when a loader calls back with neither a template
// nor an error.
var errNoTemplate = errors.New("loader returned no template")

type assetResult struct {
	tmpl *UnitTemplate
	err  error
}
