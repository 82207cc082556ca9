package game

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// SelectionSet is an unordered set of unit ids. IDs() gives the stable
// (ascending) order used wherever a reproducible order is needed.
type SelectionSet struct {
	ids map[int]struct{}
}

// NewSelectionSet builds a set holding ids.
func NewSelectionSet(ids ...int) SelectionSet {
	s := SelectionSet{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s SelectionSet) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of members.
func (s SelectionSet) Len() int {
	return len(s.ids)
}

// Add inserts id.
func (s *SelectionSet) Add(id int) {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	s.ids[id] = struct{}{}
}

// Remove deletes id.
func (s *SelectionSet) Remove(id int) {
	delete(s.ids, id)
}

// IDs returns the members in ascending order.
func (s SelectionSet) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (s SelectionSet) String() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("U%d", id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// SelectionManager turns pointer gestures into selection changes. All
// changes go through applySelection, which keeps unit flags, the scene's
// SelectionSet and selection markers in step.
type SelectionManager struct {
	Logger zerolog.Logger

	scene    *Scene
	cam      *Camera
	simLog   *SimLog
	tick     *int
	throttle time.Duration
	slop     float64

	dragging      bool
	startNDC      mgl64.Vec2
	endNDC        mgl64.Vec2
	startX        float64
	startY        float64
	lastRecompute time.Time
	collection    []int

	recomputes int
}

// NewSelectionManager wires a manager to the shared scene state.
func NewSelectionManager(sc *Scene, cam *Camera, t Tuning, simLog *SimLog, tick *int) *SelectionManager {
	return &SelectionManager{
		Logger:   zerolog.Nop(),
		scene:    sc,
		cam:      cam,
		simLog:   simLog,
		tick:     tick,
		throttle: t.DragThrottle,
		slop:     t.ClickSlop,
	}
}

// Dragging reports whether a drag gesture is being tracked.
func (sm *SelectionManager) Dragging() bool {
	return sm.dragging
}

// DragRect returns the current drag corners in pixels (start, end).
func (sm *SelectionManager) DragRect() (x0, y0, x1, y1 float64, ok bool) {
	if !sm.dragging {
		return 0, 0, 0, 0, false
	}
	x0, y0 = sm.cam.NDCToScreen(sm.startNDC)
	x1, y1 = sm.cam.NDCToScreen(sm.endNDC)
	return x0, y0, x1, y1, true
}

// Recomputes returns how many drag selection recomputes have run.
func (sm *SelectionManager) Recomputes() int {
	return sm.recomputes
}

// Collection returns the unit ids hit by the most recent drag recompute.
func (sm *SelectionManager) Collection() []int {
	return sm.collection
}

// BeginDrag starts tracking a drag. Only a primary press with no other
// button held starts one; a secondary press cancels any drag in progress.
func (sm *SelectionManager) BeginDrag(ev PointerEvent) {
	if ev.Button == ButtonSecondary {
		sm.CancelDrag()
		return
	}
	if ev.Button != ButtonPrimary || !ev.OnlyPrimary() {
		return
	}
	sm.reset()
	sm.dragging = true
	sm.startNDC = sm.cam.ScreenToNDC(ev.X, ev.Y)
	sm.endNDC = sm.startNDC
	sm.startX, sm.startY = ev.X, ev.Y
}

// UpdateDrag moves the drag corner and, at most once per throttle interval,
// recomputes the selection. Returns true when a recompute ran.
func (sm *SelectionManager) UpdateDrag(ev PointerEvent) bool {
	if !sm.dragging {
		return false
	}
	if ev.Buttons&ButtonPrimary == 0 {
		// Release happened where we could not see it.
		sm.EndDrag(ev)
		return true
	}
	sm.endNDC = sm.cam.ScreenToNDC(ev.X, ev.Y)
	if !sm.lastRecompute.IsZero() && ev.At.Sub(sm.lastRecompute) < sm.throttle {
		return false
	}
	sm.lastRecompute = ev.At
	sm.recompute()
	return true
}

// EndDrag finishes the drag with a final recompute and clears drag state.
func (sm *SelectionManager) EndDrag(ev PointerEvent) {
	if !sm.dragging {
		return
	}
	sm.endNDC = sm.cam.ScreenToNDC(ev.X, ev.Y)
	sm.recompute()
	sm.reset()
}

// Release handles a primary release: a release within the click slop of the
// press point is a click, anything else ends the drag.
func (sm *SelectionManager) Release(ev PointerEvent) {
	if !sm.dragging {
		return
	}
	if math.Hypot(ev.X-sm.startX, ev.Y-sm.startY) <= sm.slop {
		sm.reset()
		sm.Click(ev.X, ev.Y)
		return
	}
	sm.EndDrag(ev)
}

// CancelDrag stops tracking without touching the selection.
func (sm *SelectionManager) CancelDrag() {
	if !sm.dragging {
		return
	}
	sm.reset()
	sm.simLog.Add(*sm.tick, "--", "select", "drag_cancel", "secondary press", 0)
}

// Click selects the nearest unit under the pixel, or clears the selection.
func (sm *SelectionManager) Click(x, y float64) {
	hits := sm.scene.Intersect(sm.cam.RayThroughScreen(x, y))
	next := NewSelectionSet()
	if len(hits) > 0 {
		if u, ok := sm.scene.UnitByPart(hits[0].PartID); ok {
			next.Add(u.ID)
		}
	}
	sm.applySelection(next)
}

// Clear empties the selection.
func (sm *SelectionManager) Clear() {
	sm.applySelection(NewSelectionSet())
}

func (sm *SelectionManager) reset() {
	sm.dragging = false
	sm.startNDC = mgl64.Vec2{}
	sm.endNDC = mgl64.Vec2{}
	sm.startX, sm.startY = 0, 0
	sm.lastRecompute = time.Time{}
	sm.collection = nil
}

// recompute selects every unit with a part whose projected bounds overlap
// the drag rectangle.
func (sm *SelectionManager) recompute() {
	sm.recomputes++
	lo := mgl64.Vec2{math.Min(sm.startNDC.X(), sm.endNDC.X()), math.Min(sm.startNDC.Y(), sm.endNDC.Y())}
	hi := mgl64.Vec2{math.Max(sm.startNDC.X(), sm.endNDC.X()), math.Max(sm.startNDC.Y(), sm.endNDC.Y())}

	next := NewSelectionSet()
	for _, u := range sm.scene.Units() {
		for _, p := range u.Parts {
			plo, phi, ok := ProjectedPartBounds(u, p, sm.cam)
			if !ok || !rectsOverlap(lo, hi, plo, phi) {
				continue
			}
			if owner, found := sm.scene.UnitByPart(p.ID); found {
				next.Add(owner.ID)
			}
		}
	}
	sm.collection = next.IDs()
	sm.Logger.Debug().Int("hits", next.Len()).Msg("drag selection recomputed")
	sm.applySelection(next)
}

// applySelection replaces the selection with next, touching only the units
// whose membership changed.
func (sm *SelectionManager) applySelection(next SelectionSet) {
	cur := sm.scene.Selection
	var left, entered []int
	for _, id := range cur.IDs() {
		if next.Has(id) {
			continue
		}
		left = append(left, id)
		if u := sm.scene.Unit(id); u != nil {
			u.Selected = false
			sm.scene.detachSelectionMarker(u)
		}
	}
	for _, id := range next.IDs() {
		if cur.Has(id) {
			continue
		}
		u := sm.scene.Unit(id)
		if u == nil {
			next.Remove(id)
			continue
		}
		entered = append(entered, id)
		u.Selected = true
		sm.scene.attachSelectionMarker(u)
	}
	sm.scene.Selection = next
	if len(left) == 0 && len(entered) == 0 {
		return
	}
	sm.simLog.Add(*sm.tick, "--", "select", "changed",
		fmt.Sprintf("%s (+%d -%d)", next, len(entered), len(left)), float64(next.Len()))
}

func rectsOverlap(alo, ahi, blo, bhi mgl64.Vec2) bool {
	return alo.X() <= bhi.X() && blo.X() <= ahi.X() &&
		alo.Y() <= bhi.Y() && blo.Y() <= ahi.Y()
}
