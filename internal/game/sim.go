package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Tuning collects every constant of the command pipeline.
type Tuning struct {
	// Spawning.
	UnitCount            int
	SpawnExtent          float64 // half side of the spawn square
	SpawnZ               float64
	SpawnSeparation      float64
	MaxPlacementAttempts int

	// Formation.
	FormationShape   FormationShape
	FormationSpacing float64
	FormationZLift   float64

	// Motion.
	MotionModel       MotionModel
	Speed             float64 // units per second
	ArrivalEpsilon    float64
	RepulsionRadius   float64
	RepulsionStrength float64
	RotationSpeed     float64 // radians per second

	// Selection.
	DragThrottle time.Duration
	ClickSlop    float64 // pixels

	// Scene.
	GroundHalfExtent float64
	FeedbackLifetime float64 // seconds
	CameraEye        mgl64.Vec3
	CameraLookAt     mgl64.Vec3
	CameraFOV        float64 // degrees
	ViewportWidth    int
	ViewportHeight   int
}

// DefaultTuning returns the demo defaults.
func DefaultTuning() Tuning {
	return Tuning{
		UnitCount:            20,
		SpawnExtent:          10,
		SpawnZ:               1,
		SpawnSeparation:      1.2,
		MaxPlacementAttempts: 100,

		FormationShape:   ShapeGrid,
		FormationSpacing: 1.5,
		FormationZLift:   1,

		MotionModel:       ModelKinematic,
		Speed:             5,
		ArrivalEpsilon:    0.1,
		RepulsionRadius:   3,
		RepulsionStrength: 0.5,
		RotationSpeed:     5,

		DragThrottle: 100 * time.Millisecond,
		ClickSlop:    4,

		GroundHalfExtent: 50,
		FeedbackLifetime: 0.6,
		CameraEye:        mgl64.Vec3{0, -3, 10},
		CameraLookAt:     mgl64.Vec3{0, 0, 0},
		CameraFOV:        75,
		ViewportWidth:    1280,
		ViewportHeight:   720,
	}
}

// Sim owns the whole command pipeline. Every mutation happens inside Step,
// on the goroutine that calls it.
type Sim struct {
	Tuning     Tuning
	Scene      *Scene
	Camera     *Camera
	Selection  *SelectionManager
	Dispatcher *CommandDispatcher
	Motion     *MotionController
	Physics    PhysicsWorld // nil in the kinematic model
	SimLog     *SimLog
	Logger     zerolog.Logger
	Input      InputQueue

	tick  int
	clock float64 // simulated seconds
	rng   *rand.Rand

	assets    chan assetResult
	loadCount int
	loading   bool
	loaded    bool
}

// NewSim builds an empty simulation. Units arrive through LoadUnits or
// AddUnitAt.
func NewSim(t Tuning, seed int64) *Sim {
	s := &Sim{
		Tuning: t,
		Scene:  NewScene(),
		Camera: NewCamera(t.CameraEye, t.CameraLookAt, t.CameraFOV, t.ViewportWidth, t.ViewportHeight),
		SimLog: NewSimLog(false),
		Logger: zerolog.Nop(),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404 -- placement only
		assets: make(chan assetResult, 1),
	}
	if t.MotionModel == ModelPhysics {
		s.Physics = NewRigidWorld()
	}
	s.Selection = NewSelectionManager(s.Scene, s.Camera, t, s.SimLog, &s.tick)
	s.Dispatcher = NewCommandDispatcher(s.Scene, s.Camera, t, s.SimLog, &s.tick)
	s.Motion = NewMotionController(t, s.Physics, s.SimLog, &s.tick)
	return s
}

// SetLogger replaces the diagnostic logger on the sim and its components.
func (s *Sim) SetLogger(l zerolog.Logger) {
	s.Logger = l
	s.Selection.Logger = l.With().Str("component", "selection").Logger()
	s.Dispatcher.Logger = l.With().Str("component", "command").Logger()
}

// SetSimLog swaps the event log, e.g. for a verbose one.
func (s *Sim) SetSimLog(sl *SimLog) {
	s.SimLog = sl
	s.Selection.simLog = sl
	s.Dispatcher.simLog = sl
	s.Motion.simLog = sl
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() int {
	return s.tick
}

// Clock returns simulated seconds.
func (s *Sim) Clock() float64 {
	return s.clock
}

// Loaded reports whether the asset continuation has run.
func (s *Sim) Loaded() bool {
	return s.loaded
}

// LoadUnits asks loader for the unit template and spawns count units on the
// first Step after it answers. Only the first call has any effect.
func (s *Sim) LoadUnits(loader AssetLoader, count int) {
	if s.loading || s.loaded {
		return
	}
	s.loading = true
	s.loadCount = count
	loader.Load(func(t *UnitTemplate, err error) {
		if t == nil && err == nil {
			err = errNoTemplate
		}
		select {
		case s.assets <- assetResult{tmpl: t, err: err}:
		default:
			// A second callback; the first one wins.
		}
	})
}

// AddUnitAt places one unit, giving it a body in the physics model.
func (s *Sim) AddUnitAt(tmpl *UnitTemplate, pos mgl64.Vec3, heading float64) *Unit {
	u := s.Scene.AddUnit(tmpl, pos, heading)
	if s.Physics != nil {
		u.Body = s.Physics.AddBody(pos, HeadingQuat(heading))
	}
	return u
}

// RemoveUnit tears down a unit with its marker and body.
func (s *Sim) RemoveUnit(id int) {
	u := s.Scene.Unit(id)
	if u == nil {
		return
	}
	if s.Physics != nil && u.Body != NoBody {
		s.Physics.RemoveBody(u.Body)
		u.Body = NoBody
	}
	s.Scene.RemoveUnit(id)
}

// Teardown removes every unit and scene marker.
func (s *Sim) Teardown() {
	for _, u := range s.Scene.Units() {
		s.RemoveUnit(u.ID)
	}
	for _, m := range s.Scene.Markers() {
		s.Scene.removeMarker(m.ID)
	}
	s.Selection.CancelDrag()
}

// Push queues a pointer event for the next Step.
func (s *Sim) Push(ev PointerEvent) {
	s.Input.Push(ev)
}

// Step runs one tick: asset delivery, queued input, motion, markers.
func (s *Sim) Step(dt float64) {
	s.tick++
	s.clock += dt

	// 1. ASSETS: run the load continuation on this goroutine.
	s.pollAssets()

	// 2. INPUT: selection and commands, in arrival order.
	for _, ev := range s.Input.Drain() {
		s.handlePointer(ev)
	}

	// 3. MOTION.
	s.Motion.Step(s.Scene, dt)

	// 4. MARKERS: age feedback rings, keep selection rings under units.
	if n := s.Scene.advanceMarkers(dt); n > 0 {
		s.SimLog.AddVerbose(s.tick, "--", "marker", "expired", fmt.Sprintf("%d feedback", n), float64(n))
	}

	if s.SimLog.verbose {
		for _, u := range s.Scene.Units() {
			if u.Target == nil {
				continue
			}
			s.SimLog.AddVerbose(s.tick, u.Label(), "move", "pos",
				fmt.Sprintf("(%.2f,%.2f) h=%.2f", u.Pos.X(), u.Pos.Y(), u.Heading), u.Target.Sub(u.Pos).Len())
		}
	}
}

func (s *Sim) pollAssets() {
	if !s.loading {
		return
	}
	select {
	case r := <-s.assets:
		s.loading = false
		s.loaded = true
		if r.err != nil {
			s.Logger.Warn().Err(r.err).Msg("unit template failed to load, no units spawned")
			s.SimLog.Add(s.tick, "--", "asset", "load_failed", r.err.Error(), 0)
			return
		}
		s.SimLog.Add(s.tick, "--", "asset", "loaded", r.tmpl.Name, float64(len(r.tmpl.Parts)))
		s.Spawn(r.tmpl, s.loadCount)
	default:
	}
}

func (s *Sim) handlePointer(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		s.Selection.BeginDrag(ev)
	case PointerMove:
		s.Selection.UpdateDrag(ev)
	case PointerUp:
		switch ev.Button {
		case ButtonPrimary:
			s.Selection.Release(ev)
		case ButtonSecondary:
			s.Dispatcher.HandleSecondaryRelease(ev.X, ev.Y)
		}
	}
}
