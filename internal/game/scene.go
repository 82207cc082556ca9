package game

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Scene is the simulation state shared by every component: the unit arena,
// the part→unit index used for picking, the live marker registry and the
// current selection. It is owned by a single Sim and never shared across
// goroutines.
type Scene struct {
	units     map[int]*Unit
	partOwner map[int]int
	markers   map[int]*Marker
	Selection SelectionSet

	nextUnitID   int
	nextPartID   int
	nextMarkerID int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{
		units:     make(map[int]*Unit),
		partOwner: make(map[int]int),
		markers:   make(map[int]*Marker),
		Selection: NewSelectionSet(),
	}
}

// AddUnit places a clone of tmpl at pos and returns the new unit.
func (sc *Scene) AddUnit(tmpl *UnitTemplate, pos mgl64.Vec3, heading float64) *Unit {
	u := &Unit{
		ID:      sc.nextUnitID,
		Pos:     pos,
		Heading: heading,
		Body:    NoBody,
	}
	sc.nextUnitID++
	for _, tp := range tmpl.Parts {
		p := Part{
			ID:          sc.nextPartID,
			UnitID:      u.ID,
			Name:        tp.Name,
			Offset:      tp.Offset,
			HalfExtents: tp.HalfExtents,
		}
		sc.nextPartID++
		u.Parts = append(u.Parts, p)
		sc.partOwner[p.ID] = u.ID
	}
	sc.units[u.ID] = u
	return u
}

// RemoveUnit tears a unit down together with everything it owns.
func (sc *Scene) RemoveUnit(id int) {
	u, ok := sc.units[id]
	if !ok {
		return
	}
	sc.detachSelectionMarker(u)
	u.Selected = false
	sc.Selection.Remove(id)
	for _, p := range u.Parts {
		delete(sc.partOwner, p.ID)
	}
	delete(sc.units, id)
}

// Unit returns the unit with the given id, or nil.
func (sc *Scene) Unit(id int) *Unit {
	return sc.units[id]
}

// Units returns every unit in ascending id order.
func (sc *Scene) Units() []*Unit {
	out := make([]*Unit, 0, len(sc.units))
	for _, u := range sc.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnitCount returns the number of live units.
func (sc *Scene) UnitCount() int {
	return len(sc.units)
}

// UnitByPart resolves a picked part to its owning unit.
func (sc *Scene) UnitByPart(partID int) (*Unit, bool) {
	uid, ok := sc.partOwner[partID]
	if !ok {
		return nil, false
	}
	u, ok := sc.units[uid]
	return u, ok
}

// Markers returns every live marker in ascending id order.
func (sc *Scene) Markers() []*Marker {
	ids := sc.markerIDs()
	out := make([]*Marker, len(ids))
	for i, id := range ids {
		out[i] = sc.markers[id]
	}
	return out
}

// MarkerCount returns the number of live markers of the given kind.
func (sc *Scene) MarkerCount(kind MarkerKind) int {
	n := 0
	for _, m := range sc.markers {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

func (sc *Scene) markerIDs() []int {
	ids := make([]int, 0, len(sc.markers))
	for id := range sc.markers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (sc *Scene) addMarker(kind MarkerKind, owner int, pos mgl64.Vec3, lifetime float64) *Marker {
	m := &Marker{
		ID:       sc.nextMarkerID,
		Kind:     kind,
		OwnerID:  owner,
		Pos:      pos,
		Lifetime: lifetime,
	}
	sc.nextMarkerID++
	sc.markers[m.ID] = m
	return m
}

func (sc *Scene) removeMarker(id int) {
	delete(sc.markers, id)
}

// Hit is one ray/part intersection.
type Hit struct {
	Unit   *Unit
	PartID int
	T      float64 // distance along the ray
}

// Intersect returns every part hit by r, nearest first.
func (sc *Scene) Intersect(r Ray) []Hit {
	var hits []Hit
	for _, u := range sc.Units() {
		for _, p := range u.Parts {
			lo, hi := u.PartBounds(p)
			if t, ok := r.IntersectBox(lo, hi); ok {
				hits = append(hits, Hit{Unit: u, PartID: p.ID, T: t})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].T < hits[j].T })
	return hits
}

// ProjectedBounds returns the NDC rectangle covering every part of u that is
// in front of the camera. ok is false when nothing of u is visible.
func (sc *Scene) ProjectedBounds(u *Unit, cam *Camera) (lo, hi mgl64.Vec2, ok bool) {
	lo = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, p := range u.Parts {
		plo, phi, visible := ProjectedPartBounds(u, p, cam)
		if !visible {
			continue
		}
		ok = true
		lo = mgl64.Vec2{math.Min(lo[0], plo[0]), math.Min(lo[1], plo[1])}
		hi = mgl64.Vec2{math.Max(hi[0], phi[0]), math.Max(hi[1], phi[1])}
	}
	return lo, hi, ok
}

// ProjectedPartBounds returns the NDC rectangle of one part's visible corners.
func ProjectedPartBounds(u *Unit, p Part, cam *Camera) (lo, hi mgl64.Vec2, ok bool) {
	lo = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, c := range u.PartCorners(p) {
		ndc, visible := cam.Project(c)
		if !visible {
			continue
		}
		ok = true
		lo[0] = math.Min(lo[0], ndc.X())
		lo[1] = math.Min(lo[1], ndc.Y())
		hi[0] = math.Max(hi[0], ndc.X())
		hi[1] = math.Max(hi[1], ndc.Y())
	}
	return lo, hi, ok
}
