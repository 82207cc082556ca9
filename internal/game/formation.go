package game

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// FormationShape identifies how destination points are laid out around a
// commanded point.
type FormationShape int

const (
	ShapeGrid   FormationShape = iota // ceil(sqrt(n)) per row, centred
	ShapeLine                         // single rank along X
	ShapeColumn                       // single file along Y
	ShapeWedge                        // V opening toward -Y
)

func (fs FormationShape) String() string {
	switch fs {
	case ShapeGrid:
		return "grid"
	case ShapeLine:
		return "line"
	case ShapeColumn:
		return "column"
	case ShapeWedge:
		return "wedge"
	default:
		return "unknown"
	}
}

// ParseFormationShape maps a config name to a shape; unknown names fall back
// to the grid.
func ParseFormationShape(name string) FormationShape {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "line":
		return ShapeLine
	case "column":
		return ShapeColumn
	case "wedge":
		return ShapeWedge
	default:
		return ShapeGrid
	}
}

// GenerateFormation returns count grid points centred on center, spacing
// apart, lifted by zLift. Row 0 is the +Y edge; columns run left to right.
func GenerateFormation(center mgl64.Vec3, count int, spacing, zLift float64) []mgl64.Vec3 {
	if count <= 0 {
		return []mgl64.Vec3{}
	}
	perRow := int(math.Ceil(math.Sqrt(float64(count))))
	half := float64(perRow-1) / 2
	out := make([]mgl64.Vec3, count)
	for i := 0; i < count; i++ {
		row := i / perRow
		col := i % perRow
		offX := (float64(col) - half) * spacing
		offY := (half - float64(row)) * spacing
		out[i] = center.Add(mgl64.Vec3{offX, offY, zLift})
	}
	return out
}

// FormationPoints lays out count points in the given shape. Non-grid shapes
// are recentred on their centroid so the formation is centred on center.
func FormationPoints(shape FormationShape, center mgl64.Vec3, count int, spacing, zLift float64) []mgl64.Vec3 {
	if shape == ShapeGrid || count <= 0 {
		return GenerateFormation(center, count, spacing, zLift)
	}
	offsets := shapeOffsets(shape, count)
	var cx, cy float64
	for _, o := range offsets {
		cx += o[0]
		cy += o[1]
	}
	cx /= float64(count)
	cy /= float64(count)
	out := make([]mgl64.Vec3, count)
	for i, o := range offsets {
		out[i] = center.Add(mgl64.Vec3{(o[0] - cx) * spacing, (o[1] - cy) * spacing, zLift})
	}
	return out
}

// shapeOffsets returns unit-spaced (x, y) offsets; slot 0 is the point man.
func shapeOffsets(shape FormationShape, count int) [][2]float64 {
	offsets := make([][2]float64, count)
	for i := 1; i < count; i++ {
		side := float64((i + 1) / 2)
		if i%2 == 1 {
			side = -side
		}
		switch shape {
		case ShapeLine:
			offsets[i] = [2]float64{side, 0}
		case ShapeColumn:
			offsets[i] = [2]float64{0, -float64(i)}
		case ShapeWedge:
			offsets[i] = [2]float64{side, -float64((i + 1) / 2)}
		}
	}
	return offsets
}
