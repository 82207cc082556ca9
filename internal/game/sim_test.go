package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type callbackLoader struct {
	calls int
	tmpl  *UnitTemplate
	err   error
}

func (l *callbackLoader) Load(done func(*UnitTemplate, error)) {
	l.calls++
	done(l.tmpl, l.err)
}

func TestLoadUnits_SpawnsOnNextStep(t *testing.T) {
	ts := NewTestSim()
	ts.LoadUnits(BuiltinLoader{Name: "box"}, 6)
	if ts.Scene.UnitCount() != 0 {
		t.Fatal("units must not appear before the next step")
	}
	ts.RunTicks(1)
	if !ts.Loaded() {
		t.Fatal("expected the load to complete on the first step")
	}
	if got := ts.Scene.UnitCount(); got != 6 {
		t.Fatalf("expected 6 units, got %d", got)
	}
	for _, u := range ts.Scene.Units() {
		if u.State() != UnitIdle || u.Selected {
			t.Fatalf("%s should spawn idle and unselected", u.Label())
		}
	}
}

func TestLoadUnits_OnlyOnce(t *testing.T) {
	ts := NewTestSim()
	l := &callbackLoader{tmpl: BoxTemplate()}
	ts.LoadUnits(l, 3)
	ts.LoadUnits(l, 3)
	ts.RunTicks(1)
	ts.LoadUnits(l, 3)
	ts.RunTicks(1)
	if l.calls != 1 {
		t.Fatalf("expected a single load, got %d", l.calls)
	}
	if got := ts.Scene.UnitCount(); got != 3 {
		t.Fatalf("expected 3 units, got %d", got)
	}
}

func TestLoadUnits_FailureLeavesEmptyWorkingScene(t *testing.T) {
	ts := NewTestSim()
	ts.LoadUnits(BuiltinLoader{Name: "zeppelin"}, 5)
	ts.RunTicks(1)
	if !ts.Loaded() {
		t.Fatal("a failed load still completes")
	}
	if ts.Scene.UnitCount() != 0 {
		t.Fatalf("expected no units, got %d", ts.Scene.UnitCount())
	}
	if !ts.SimLog.HasEntry("asset", "load_failed", "zeppelin") {
		t.Fatalf("expected a load_failed entry\n%s", ts.SimLog.Format())
	}

	ts.SelectAll()
	ts.ClickAt(640, 360)
	ts.CommandMove(0, 0)
	ts.RunTicks(5)
	if ts.Dispatcher.Orders != 0 || ts.Scene.Selection.Len() != 0 {
		t.Fatal("empty scene should accept input without effect")
	}
}

func TestLoadUnits_NilTemplateIsAnError(t *testing.T) {
	ts := NewTestSim()
	ts.LoadUnits(&callbackLoader{}, 2)
	ts.RunTicks(1)
	if ts.Scene.UnitCount() != 0 {
		t.Fatal("no units expected without a template")
	}
	if !ts.SimLog.HasEntry("asset", "load_failed", "no template") {
		t.Fatal("expected load_failed for a nil template")
	}
}

func TestLoadUnits_FileLoaderYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walker.yaml")
	yaml := `name: walker
parts:
  - name: body
    halfExtents: [0.4, 0.4, 0.6]
  - name: head
    offset: [0, 0, 0.8]
    halfExtents: [0.2, 0.2, 0.2]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	ts := NewTestSim()
	ts.LoadUnits(FileLoader{Path: path}, 4)
	deadline := time.Now().Add(5 * time.Second)
	for !ts.Loaded() && time.Now().Before(deadline) {
		ts.RunTicks(1)
		time.Sleep(time.Millisecond)
	}
	if !ts.Loaded() {
		t.Fatal("file template never arrived")
	}
	if got := ts.Scene.UnitCount(); got != 4 {
		t.Fatalf("expected 4 units, got %d", got)
	}
	u := ts.Scene.Units()[0]
	if len(u.Parts) != 2 || u.Parts[1].Name != "head" {
		t.Fatalf("expected body+head parts, got %+v", u.Parts)
	}
}

func TestFileLoader_MissingFile(t *testing.T) {
	ts := NewTestSim()
	ts.LoadUnits(FileLoader{Path: filepath.Join(t.TempDir(), "nope.yaml")}, 4)
	deadline := time.Now().Add(5 * time.Second)
	for !ts.Loaded() && time.Now().Before(deadline) {
		ts.RunTicks(1)
		time.Sleep(time.Millisecond)
	}
	if ts.Scene.UnitCount() != 0 {
		t.Fatal("missing file should spawn nothing")
	}
	if !ts.SimLog.HasEntry("asset", "load_failed", "read template") {
		t.Fatal("expected a read error in the log")
	}
}

func TestParseTemplate_Rejects(t *testing.T) {
	cases := map[string]string{
		"no parts":    "name: empty\n",
		"zero extent": "name: flat\nparts:\n  - name: a\n    halfExtents: [1, 0, 1]\n",
		"bad yaml":    "name: [unterminated\n",
		"wrong shape": "parts: 7\n",
	}
	for name, raw := range cases {
		if _, err := ParseTemplate([]byte(raw)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestBuiltinTemplatesValid(t *testing.T) {
	for _, tmpl := range []*UnitTemplate{BoxTemplate(), TankTemplate()} {
		if err := tmpl.Validate(); err != nil {
			t.Fatalf("%s: %v", tmpl.Name, err)
		}
	}
}

func TestSpawn_SkipsUnplaceableUnits(t *testing.T) {
	ts := NewTestSim(WithTuning(func(tu *Tuning) {
		tu.SpawnExtent = 0.4
		tu.MaxPlacementAttempts = 20
	}))
	placed := ts.Spawn(BoxTemplate(), 5)
	if placed != 1 {
		t.Fatalf("expected 1 placed in a tiny square, got %d", placed)
	}
	if got := ts.SimLog.CountCategory("spawn", "placement_failed"); got != 4 {
		t.Fatalf("expected 4 placement failures, got %d", got)
	}
}

func TestSpawn_RespectsSeparation(t *testing.T) {
	ts := NewTestSim(WithSeed(42), WithSpawned(20))
	units := ts.Scene.Units()
	for i, a := range units {
		for _, b := range units[i+1:] {
			d := a.Pos.Sub(b.Pos)
			d[2] = 0
			if d.Len() < ts.Tuning.SpawnSeparation {
				t.Fatalf("%s and %s only %.3f apart", a.Label(), b.Label(), d.Len())
			}
		}
		if a.Pos.X() < -10 || a.Pos.X() > 10 || a.Pos.Y() < -10 || a.Pos.Y() > 10 || a.Pos.Z() != 1 {
			t.Fatalf("%s spawned outside the spawn square: %v", a.Label(), a.Pos)
		}
	}
}

func TestSpawn_DeterministicForSeed(t *testing.T) {
	a := NewTestSim(WithSeed(7), WithSpawned(8))
	b := NewTestSim(WithSeed(7), WithSpawned(8))
	for i, u := range a.Scene.Units() {
		if v := b.Scene.Units()[i]; v.Pos != u.Pos || v.Heading != u.Heading {
			t.Fatalf("unit %d differs between runs: %v vs %v", i, u.Pos, v.Pos)
		}
	}
}

func TestRemoveUnit_ReleasesMarkerAndBody(t *testing.T) {
	ts := NewTestSim(WithMotionModel(ModelPhysics), WithUnit(0, 0), WithUnit(2, 0), WithSelected(0, 1))
	rw := ts.Physics.(*RigidWorld)
	partID := ts.Scene.Unit(0).Parts[0].ID

	ts.RemoveUnit(0)
	if ts.Scene.Unit(0) != nil {
		t.Fatal("unit should be gone")
	}
	if ts.Scene.Selection.Has(0) {
		t.Fatal("removed unit should leave the selection")
	}
	if got := ts.Scene.MarkerCount(MarkerSelection); got != 1 {
		t.Fatalf("expected 1 selection marker left, got %d", got)
	}
	if rw.BodyCount() != 1 {
		t.Fatalf("expected 1 body left, got %d", rw.BodyCount())
	}
	if _, ok := ts.Scene.UnitByPart(partID); ok {
		t.Fatal("part of a removed unit should not resolve")
	}

	ts.RemoveUnit(0)
	ts.RunTicks(1)
	checkSelectionConsistent(t, ts)
}

func TestSelectionMarker_AttachDetachIdempotent(t *testing.T) {
	sc := NewScene()
	u := sc.AddUnit(BoxTemplate(), mgl64.Vec3{0, 0, 1}, 0)
	sc.attachSelectionMarker(u)
	first := u.Marker()
	sc.attachSelectionMarker(u)
	if u.Marker() != first || sc.MarkerCount(MarkerSelection) != 1 {
		t.Fatal("second attach should be a no-op")
	}
	sc.detachSelectionMarker(u)
	sc.detachSelectionMarker(u)
	if u.Marker() != nil || sc.MarkerCount(MarkerSelection) != 0 {
		t.Fatal("detach should remove the marker exactly once")
	}
}

func TestSelectionMarker_FollowsUnit(t *testing.T) {
	ts := NewTestSim(WithUnit(0, 0), WithSelected(0))
	u := ts.Scene.Unit(0)
	u.SetTarget(u.Pos.Add(mgl64.Vec3{2, 0, 0}))
	ts.RunTicks(10)
	if m := u.Marker(); m == nil || m.Pos != u.Pos {
		t.Fatalf("selection marker should sit under the unit, marker=%v unit=%v", m, u.Pos)
	}
}

func TestTeardown_RemovesEverything(t *testing.T) {
	ts := quadrantSim(WithMotionModel(ModelPhysics))
	ts.CommandMove(0, 0)
	ts.Push(Down(ButtonPrimary, ButtonNone, 10, 10, ts.Now()))
	ts.RunTicks(1)

	ts.Teardown()
	if ts.Scene.UnitCount() != 0 || len(ts.Scene.Markers()) != 0 {
		t.Fatalf("expected empty scene, got %d units %d markers", ts.Scene.UnitCount(), len(ts.Scene.Markers()))
	}
	if ts.Physics.(*RigidWorld).BodyCount() != 0 {
		t.Fatal("bodies should be released")
	}
	if ts.Selection.Dragging() {
		t.Fatal("drag should be cancelled")
	}
	ts.RunTicks(3)
}

func TestStep_InputWaitsForNextTick(t *testing.T) {
	ts := NewTestSim(WithUnit(0, 0))
	ts.Push(Down(ButtonPrimary, ButtonNone, 10, 10, ts.Now()))
	if ts.Input.Len() != 1 || ts.Selection.Dragging() {
		t.Fatal("events are queued, not handled, until Step")
	}
	ts.RunTicks(1)
	if ts.Input.Len() != 0 || !ts.Selection.Dragging() {
		t.Fatal("Step should drain the queue")
	}
}

func TestSimLog_Summary(t *testing.T) {
	ts := quadrantSim()
	ts.CommandMove(0, 0)
	s := ts.SimLog.Summary(ts.Tick(), ts.Scene)
	for _, want := range []string{"Units: 4", "moving=4", "Selected: [U0 U1 U2 U3]", "Orders: 1"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestSimLog_Query(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "U0", "command", "target", "slot 0", 0)
	sl.Add(1, "U1", "command", "target", "slot 1", 0)
	sl.Add(4, "U1", "move", "arrived", "at (1,1)", 0)
	sl.AddVerbose(5, "U1", "move", "pos", "dropped", 0)

	if got := sl.Query(LogQuery{Unit: "U1", ToTick: -1}); len(got) != 2 {
		t.Fatalf("expected 2 entries for U1, got %d", len(got))
	}
	if got := sl.Query(LogQuery{Category: "command", Contains: "slot 1", ToTick: -1}); len(got) != 1 || got[0].Unit != "U1" {
		t.Fatalf("expected U1's target entry, got %v", got)
	}
	if got := sl.Query(LogQuery{FromTick: 2, ToTick: 4}); len(got) != 1 || got[0].Key != "arrived" {
		t.Fatalf("expected only the arrival in ticks 2..4, got %v", got)
	}
	if len(sl.Entries()) != 3 {
		t.Fatalf("verbose entry should be dropped, got %d entries", len(sl.Entries()))
	}
}
