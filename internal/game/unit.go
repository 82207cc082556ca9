package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// UnitState is derived from whether the unit currently holds a target.
type UnitState int

const (
	UnitIdle   UnitState = iota // no target
	UnitMoving                  // heading for Target
)

func (us UnitState) String() string {
	switch us {
	case UnitIdle:
		return "idle"
	case UnitMoving:
		return "moving"
	default:
		return "unknown"
	}
}

// Part is one box of a unit's compound visual. UnitID tags the owning unit so
// a picked part resolves to its unit without walking a scene tree.
type Part struct {
	ID          int
	UnitID      int
	Name        string
	Offset      mgl64.Vec3 // unit-local, rotated by the unit heading
	HalfExtents mgl64.Vec3
}

// Unit is a selectable, movable entity.
type Unit struct {
	ID      int
	Pos     mgl64.Vec3
	Heading float64     // radians, 0 = +X, counter-clockwise
	Target  *mgl64.Vec3 // nil when idle
	Parts   []Part

	Selected bool
	Body     BodyHandle

	marker *Marker
}

// Label returns the short log label, e.g. "U7".
func (u *Unit) Label() string {
	return fmt.Sprintf("U%d", u.ID)
}

// State reports Idle or Moving.
func (u *Unit) State() UnitState {
	if u.Target == nil {
		return UnitIdle
	}
	return UnitMoving
}

// Marker returns the unit's selection marker, or nil.
func (u *Unit) Marker() *Marker {
	return u.marker
}

// SetTarget assigns a new destination, replacing any previous one.
func (u *Unit) SetTarget(p mgl64.Vec3) {
	t := p
	u.Target = &t
}

// ClearTarget returns the unit to Idle.
func (u *Unit) ClearTarget() {
	u.Target = nil
}

// PartCenter returns the world-space centre of a part.
func (u *Unit) PartCenter(p Part) mgl64.Vec3 {
	return u.Pos.Add(rotateZ(p.Offset, u.Heading))
}

// PartCorners returns the eight world-space corners of a part's box, rotated
// with the unit heading.
func (u *Unit) PartCorners(p Part) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	c := u.PartCenter(p)
	h := p.HalfExtents
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := mgl64.Vec3{sx * h.X(), sy * h.Y(), sz * h.Z()}
				out[i] = c.Add(rotateZ(local, u.Heading))
				i++
			}
		}
	}
	return out
}

// PartBounds returns the world-space axis-aligned bounds of a part.
func (u *Unit) PartBounds(p Part) (lo, hi mgl64.Vec3) {
	corners := u.PartCorners(p)
	lo, hi = corners[0], corners[0]
	for _, c := range corners[1:] {
		for k := 0; k < 3; k++ {
			if c[k] < lo[k] {
				lo[k] = c[k]
			}
			if c[k] > hi[k] {
				hi[k] = c[k]
			}
		}
	}
	return lo, hi
}

func rotateZ(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	if angle == 0 {
		return v
	}
	return mgl64.Rotate3DZ(angle).Mul3x1(v)
}
