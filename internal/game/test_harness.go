package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// TickDT is the fixed simulation step, one 60 Hz frame.
const TickDT = 1.0 / 60.0

// TestSim is a headless harness used by tests and the headless report. It
// wraps a Sim, drives it at TickDT and keeps a virtual wall clock for
// pointer event timestamps.
type TestSim struct {
	*Sim

	tuning  Tuning
	seed    int64
	verbose bool
	tmpl    *UnitTemplate
	now     time.Time
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // tuning, seed, camera, applied before the Sim exists
	simOptUnit                        // add units, applied after the Sim is built
	simOptSelect                      // selection, applied after units exist
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic spawning.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithTuning edits the tuning before the Sim is built.
func WithTuning(edit func(*Tuning)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		edit(&ts.tuning)
	}}
}

// WithMotionModel picks the motion model.
func WithMotionModel(m MotionModel) SimOption {
	return WithTuning(func(t *Tuning) { t.MotionModel = m })
}

// WithCamera places the camera.
func WithCamera(eye, lookAt mgl64.Vec3) SimOption {
	return WithTuning(func(t *Tuning) {
		t.CameraEye = eye
		t.CameraLookAt = lookAt
	})
}

// WithTemplate sets the template used by WithUnit and WithSpawned.
func WithTemplate(tmpl *UnitTemplate) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.tmpl = tmpl
	}}
}

// WithUnit adds a unit at (x,y) on the spawn plane, heading +X.
func WithUnit(x, y float64) SimOption {
	return WithUnitHeading(x, y, 0)
}

// WithUnitHeading adds a unit at (x,y) with the given heading.
func WithUnitHeading(x, y, heading float64) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		ts.AddUnitAt(ts.tmpl, mgl64.Vec3{x, y, ts.Tuning.SpawnZ}, heading)
	}}
}

// WithSpawned randomly places count units the way the demo does.
func WithSpawned(count int) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		ts.Spawn(ts.tmpl, count)
	}}
}

// WithSelected selects units by id through the selection manager.
func WithSelected(ids ...int) SimOption {
	return SimOption{simOptSelect, func(ts *TestSim) {
		ts.Selection.applySelection(NewSelectionSet(ids...))
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (tuning, seed, camera, template)
//  2. Build the Sim
//  3. Units
//  4. Selection
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		tuning: DefaultTuning(),
		seed:   1,
		tmpl:   BoxTemplate(),
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	ts.Sim = NewSim(ts.tuning, ts.seed)
	ts.SetSimLog(NewSimLog(ts.verbose))
	for _, o := range opts {
		if o.kind == simOptUnit {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptSelect {
			o.fn(ts)
		}
	}
	return ts
}

// Now returns the harness's virtual wall clock.
func (ts *TestSim) Now() time.Time {
	return ts.now
}

// Advance moves the virtual clock without stepping.
func (ts *TestSim) Advance(d time.Duration) {
	ts.now = ts.now.Add(d)
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the number of ticks run when the predicate was
// satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 1; i <= maxTicks; i++ {
		ts.step()
		if predicate(ts) {
			return i
		}
	}
	return -1
}

func (ts *TestSim) step() {
	ts.Step(TickDT)
	ts.now = ts.now.Add(time.Second / 60)
}

// AllIdle reports whether no unit holds a target.
func AllIdle(ts *TestSim) bool {
	for _, u := range ts.Scene.Units() {
		if u.Target != nil {
			return false
		}
	}
	return true
}

// ScreenOf returns the pixel under which unit id's first part is drawn.
func (ts *TestSim) ScreenOf(id int) (float64, float64) {
	u := ts.Scene.Unit(id)
	x, y, _ := ts.Camera.WorldToScreen(u.PartCenter(u.Parts[0]))
	return x, y
}

// ScreenOfGround returns the pixel over a ground point.
func (ts *TestSim) ScreenOfGround(x, y float64) (float64, float64) {
	sx, sy, _ := ts.Camera.WorldToScreen(mgl64.Vec3{x, y, 0})
	return sx, sy
}

// ClickAt queues a primary press and release at a pixel and steps once.
func (ts *TestSim) ClickAt(x, y float64) {
	ts.Push(Down(ButtonPrimary, ButtonNone, x, y, ts.now))
	ts.Push(Up(ButtonPrimary, ButtonPrimary, x, y, ts.now))
	ts.step()
}

// ClickUnit clicks on unit id.
func (ts *TestSim) ClickUnit(id int) {
	x, y := ts.ScreenOf(id)
	ts.ClickAt(x, y)
}

// DragSelect drags from (x0,y0) to (x1,y1) in steps moves spaced past the
// drag throttle, then releases. One tick runs per event batch.
func (ts *TestSim) DragSelect(x0, y0, x1, y1 float64, steps int) {
	if steps < 1 {
		steps = 1
	}
	ts.Push(Down(ButtonPrimary, ButtonNone, x0, y0, ts.now))
	ts.step()
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		ts.Advance(ts.Tuning.DragThrottle)
		ts.Push(Move(ButtonPrimary, x0+(x1-x0)*f, y0+(y1-y0)*f, ts.now))
		ts.step()
	}
	ts.Push(Up(ButtonPrimary, ButtonPrimary, x1, y1, ts.now))
	ts.step()
}

// SelectAll drags a rectangle over the whole viewport.
func (ts *TestSim) SelectAll() {
	w, h := float64(ts.Camera.Width), float64(ts.Camera.Height)
	ts.DragSelect(1, 1, w-1, h-1, 2)
}

// RightClickAt issues a secondary press and release at a pixel and steps
// once.
func (ts *TestSim) RightClickAt(x, y float64) {
	ts.Push(Down(ButtonSecondary, ButtonNone, x, y, ts.now))
	ts.Push(Up(ButtonSecondary, ButtonSecondary, x, y, ts.now))
	ts.step()
}

// CommandMove right-clicks over a ground point.
func (ts *TestSim) CommandMove(x, y float64) {
	sx, sy := ts.ScreenOfGround(x, y)
	ts.RightClickAt(sx, sy)
}
