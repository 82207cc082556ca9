package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyHandle refers to a body inside a PhysicsWorld.
type BodyHandle int

// NoBody marks a unit without a physical body.
const NoBody BodyHandle = -1

// PhysicsWorld is the opaque integrator used by the physics motion model.
type PhysicsWorld interface {
	AddBody(pos mgl64.Vec3, orientation mgl64.Quat) BodyHandle
	RemoveBody(h BodyHandle)
	SetVelocity(h BodyHandle, v mgl64.Vec3)
	SetOrientation(h BodyHandle, q mgl64.Quat)
	Step(dt float64)
	Position(h BodyHandle) mgl64.Vec3
	Orientation(h BodyHandle) mgl64.Quat
}

type rigidBody struct {
	pos         mgl64.Vec3
	vel         mgl64.Vec3
	orientation mgl64.Quat
}

// RigidWorld is a minimal explicit-Euler integrator. Bodies keep their
// velocity until it is changed; Damping bleeds it off each step.
type RigidWorld struct {
	Damping float64 // fraction of velocity lost per second, 0..1

	bodies map[BodyHandle]*rigidBody
	next   BodyHandle
}

// NewRigidWorld returns an empty world.
func NewRigidWorld() *RigidWorld {
	return &RigidWorld{bodies: make(map[BodyHandle]*rigidBody)}
}

func (w *RigidWorld) AddBody(pos mgl64.Vec3, orientation mgl64.Quat) BodyHandle {
	h := w.next
	w.next++
	w.bodies[h] = &rigidBody{pos: pos, orientation: orientation.Normalize()}
	return h
}

func (w *RigidWorld) RemoveBody(h BodyHandle) {
	delete(w.bodies, h)
}

func (w *RigidWorld) SetVelocity(h BodyHandle, v mgl64.Vec3) {
	if b := w.bodies[h]; b != nil {
		b.vel = v
	}
}

func (w *RigidWorld) SetOrientation(h BodyHandle, q mgl64.Quat) {
	if b := w.bodies[h]; b != nil {
		b.orientation = q.Normalize()
	}
}

func (w *RigidWorld) Step(dt float64) {
	keep := 1.0
	if w.Damping > 0 {
		keep = math.Max(0, 1-w.Damping*dt)
	}
	for _, b := range w.bodies {
		b.pos = b.pos.Add(b.vel.Mul(dt))
		b.vel = b.vel.Mul(keep)
	}
}

func (w *RigidWorld) Position(h BodyHandle) mgl64.Vec3 {
	if b := w.bodies[h]; b != nil {
		return b.pos
	}
	return mgl64.Vec3{}
}

func (w *RigidWorld) Orientation(h BodyHandle) mgl64.Quat {
	if b := w.bodies[h]; b != nil {
		return b.orientation
	}
	return mgl64.QuatIdent()
}

// BodyCount returns the number of live bodies.
func (w *RigidWorld) BodyCount() int {
	return len(w.bodies)
}

// HeadingQuat returns the rotation of heading radians about +Z.
func HeadingQuat(heading float64) mgl64.Quat {
	return mgl64.QuatRotate(heading, mgl64.Vec3{0, 0, 1})
}

// QuatHeading recovers the +Z rotation angle from q, in (-π, π].
func QuatHeading(q mgl64.Quat) float64 {
	return normalizeAngle(2 * math.Atan2(q.V.Z(), q.W))
}
