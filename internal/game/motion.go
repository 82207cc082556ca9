package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// MotionModel selects how units are driven toward their targets.
type MotionModel int

const (
	ModelKinematic MotionModel = iota // positions moved directly
	ModelPhysics                      // body velocities set, physics integrates
)

func (mm MotionModel) String() string {
	switch mm {
	case ModelKinematic:
		return "kinematic"
	case ModelPhysics:
		return "physics"
	default:
		return "unknown"
	}
}

// ParseMotionModel maps a config name to a model; unknown names fall back to
// kinematic.
func ParseMotionModel(name string) MotionModel {
	if strings.EqualFold(strings.TrimSpace(name), "physics") {
		return ModelPhysics
	}
	return ModelKinematic
}

// MotionController advances every moving unit once per tick.
type MotionController struct {
	Model   MotionModel
	Physics PhysicsWorld // required for ModelPhysics

	tuning Tuning
	simLog *SimLog
	tick   *int

	arrivals int
}

// NewMotionController builds a controller for the tuning's motion model.
func NewMotionController(t Tuning, physics PhysicsWorld, simLog *SimLog, tick *int) *MotionController {
	return &MotionController{
		Model:   t.MotionModel,
		Physics: physics,
		tuning:  t,
		simLog:  simLog,
		tick:    tick,
	}
}

// Arrivals returns how many arrivals have been recorded.
func (mc *MotionController) Arrivals() int {
	return mc.arrivals
}

// Step advances every unit with a target by dt seconds. In the physics model
// it also steps the physics world and copies positions back.
func (mc *MotionController) Step(sc *Scene, dt float64) {
	if dt <= 0 {
		return
	}
	units := sc.Units()
	switch mc.Model {
	case ModelPhysics:
		for _, u := range units {
			mc.stepPhysicsUnit(u, dt)
		}
		mc.Physics.Step(dt)
		syncFromPhysics(units, mc.Physics)
	default:
		for _, u := range units {
			mc.stepKinematicUnit(u, units, dt)
		}
	}
}

func (mc *MotionController) stepKinematicUnit(u *Unit, all []*Unit, dt float64) {
	if u.Target == nil {
		return
	}
	delta := u.Target.Sub(u.Pos)
	dist := delta.Len()
	if dist <= mc.tuning.ArrivalEpsilon {
		mc.arrive(u)
		return
	}
	dir := delta.Mul(1 / dist)
	u.Pos = u.Pos.Add(dir.Mul(math.Min(mc.tuning.Speed*dt, dist)))
	u.Pos = u.Pos.Add(separation(u, all, mc.tuning.RepulsionRadius).Mul(mc.tuning.RepulsionStrength * dt))
	u.Heading = turnToward(u.Heading, math.Atan2(dir.Y(), dir.X()), mc.tuning.RotationSpeed*dt)
}

func (mc *MotionController) stepPhysicsUnit(u *Unit, dt float64) {
	if u.Target == nil || u.Body == NoBody {
		return
	}
	delta := u.Target.Sub(u.Pos)
	dist := delta.Len()
	if dist <= mc.tuning.ArrivalEpsilon {
		mc.Physics.SetVelocity(u.Body, mgl64.Vec3{})
		mc.arrive(u)
		return
	}
	dir := delta.Mul(1 / dist)
	speed := math.Min(mc.tuning.Speed, dist/dt)
	mc.Physics.SetVelocity(u.Body, dir.Mul(speed))
	u.Heading = turnToward(u.Heading, math.Atan2(dir.Y(), dir.X()), mc.tuning.RotationSpeed*dt)
	mc.Physics.SetOrientation(u.Body, HeadingQuat(u.Heading))
}

func (mc *MotionController) arrive(u *Unit) {
	// The physics body owns position in the physics model; only the
	// kinematic model snaps.
	if mc.Model == ModelKinematic {
		u.Pos = *u.Target
	}
	u.ClearTarget()
	mc.arrivals++
	mc.simLog.Add(*mc.tick, u.Label(), "move", "arrived",
		fmt.Sprintf("(%.2f,%.2f)", u.Pos.X(), u.Pos.Y()), 0)
}

// syncFromPhysics copies body positions onto units. Orientation stays with
// the heading computed by the controller.
func syncFromPhysics(units []*Unit, pw PhysicsWorld) {
	for _, u := range units {
		if u.Body == NoBody {
			continue
		}
		u.Pos = pw.Position(u.Body)
	}
}

// separation returns the summed unit vectors pointing away from every other
// unit within radius. Coincident units contribute nothing.
func separation(u *Unit, all []*Unit, radius float64) mgl64.Vec3 {
	var push mgl64.Vec3
	r2 := radius * radius
	for _, o := range all {
		if o == u {
			continue
		}
		away := u.Pos.Sub(o.Pos)
		away[2] = 0
		d2 := away.Dot(away)
		if d2 == 0 || d2 > r2 {
			continue
		}
		push = push.Add(away.Mul(1 / math.Sqrt(d2)))
	}
	return push
}

// turnToward rotates current toward desired by at most maxStep radians,
// always the short way round.
func turnToward(current, desired, maxStep float64) float64 {
	diff := normalizeAngle(desired - current)
	if math.Abs(diff) <= maxStep {
		return normalizeAngle(desired)
	}
	if diff > 0 {
		return normalizeAngle(current + maxStep)
	}
	return normalizeAngle(current - maxStep)
}

// normalizeAngle wraps an angle into (-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
