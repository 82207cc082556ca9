package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera over a pixel viewport. Screen coordinates
// have their origin at the top-left with y growing downward.
type Camera struct {
	Eye    mgl64.Vec3
	LookAt mgl64.Vec3
	Up     mgl64.Vec3
	FOV    float64 // vertical, degrees
	Near   float64
	Far    float64
	Width  int
	Height int

	viewProj    mgl64.Mat4
	invViewProj mgl64.Mat4
}

// NewCamera builds a camera and its matrices.
func NewCamera(eye, lookAt mgl64.Vec3, fov float64, width, height int) *Camera {
	c := &Camera{
		Eye:    eye,
		LookAt: lookAt,
		Up:     mgl64.Vec3{0, 1, 0},
		FOV:    fov,
		Near:   0.1,
		Far:    100,
		Width:  width,
		Height: height,
	}
	c.Update()
	return c
}

// Update recomputes the matrices after a field changed.
func (c *Camera) Update() {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	proj := mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
	up := c.Up
	if c.LookAt.Sub(c.Eye).Cross(up).Len() < 1e-9 {
		// Looking along Up; +Z keeps the horizon level.
		up = mgl64.Vec3{0, 0, 1}
	}
	view := mgl64.LookAtV(c.Eye, c.LookAt, up)
	c.viewProj = proj.Mul4(view)
	c.invViewProj = c.viewProj.Inv()
}

// Resize changes the viewport.
func (c *Camera) Resize(width, height int) {
	if width == c.Width && height == c.Height {
		return
	}
	c.Width, c.Height = width, height
	c.Update()
}

// Project maps a world point to normalized device coordinates. ok is false
// for points behind the camera.
func (c *Camera) Project(p mgl64.Vec3) (mgl64.Vec3, bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	if clip.W() <= 1e-9 {
		return mgl64.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip.W()), true
}

// ScreenToNDC converts a pixel position to NDC x,y in [-1,1].
func (c *Camera) ScreenToNDC(x, y float64) mgl64.Vec2 {
	return mgl64.Vec2{
		x/float64(c.Width)*2 - 1,
		-(y/float64(c.Height))*2 + 1,
	}
}

// NDCToScreen is the inverse of ScreenToNDC.
func (c *Camera) NDCToScreen(ndc mgl64.Vec2) (float64, float64) {
	return (ndc.X() + 1) / 2 * float64(c.Width), (1 - ndc.Y()) / 2 * float64(c.Height)
}

// WorldToScreen projects a world point to pixels.
func (c *Camera) WorldToScreen(p mgl64.Vec3) (float64, float64, bool) {
	ndc, ok := c.Project(p)
	if !ok {
		return 0, 0, false
	}
	x, y := c.NDCToScreen(ndc.Vec2())
	return x, y, true
}

// RayThroughScreen returns the ray from the near plane through a pixel.
func (c *Camera) RayThroughScreen(x, y float64) Ray {
	return c.RayThroughNDC(c.ScreenToNDC(x, y))
}

// RayThroughNDC returns the ray from the near plane through an NDC point.
func (c *Camera) RayThroughNDC(ndc mgl64.Vec2) Ray {
	near := c.unproject(mgl64.Vec3{ndc.X(), ndc.Y(), -1})
	far := c.unproject(mgl64.Vec3{ndc.X(), ndc.Y(), 1})
	return Ray{Origin: near, Dir: safeNormalize(far.Sub(near))}
}

func (c *Camera) unproject(ndc mgl64.Vec3) mgl64.Vec3 {
	w := c.invViewProj.Mul4x1(ndc.Vec4(1))
	return w.Vec3().Mul(1 / w.W())
}

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at distance t.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectGround intersects the ray with the z=0 ground plane limited to
// |x|,|y| <= halfExtent (halfExtent <= 0 means unbounded).
func (r Ray) IntersectGround(halfExtent float64) (mgl64.Vec3, bool) {
	if math.Abs(r.Dir.Z()) < 1e-9 {
		return mgl64.Vec3{}, false
	}
	t := -r.Origin.Z() / r.Dir.Z()
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	p := r.At(t)
	p[2] = 0
	if halfExtent > 0 && (math.Abs(p.X()) > halfExtent || math.Abs(p.Y()) > halfExtent) {
		return mgl64.Vec3{}, false
	}
	return p, true
}

// IntersectBox runs the slab test against an axis-aligned box and returns the
// entry distance (0 when the origin is inside).
func (r Ray) IntersectBox(lo, hi mgl64.Vec3) (float64, bool) {
	tMin, tMax := 0.0, math.Inf(1)
	for k := 0; k < 3; k++ {
		if math.Abs(r.Dir[k]) < 1e-12 {
			if r.Origin[k] < lo[k] || r.Origin[k] > hi[k] {
				return 0, false
			}
			continue
		}
		inv := 1 / r.Dir[k]
		t1 := (lo[k] - r.Origin[k]) * inv
		t2 := (hi[k] - r.Origin[k]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// safeNormalize returns the unit vector of v, or the zero vector.
func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
