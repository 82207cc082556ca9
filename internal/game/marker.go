package game

import "github.com/go-gl/mathgl/mgl64"

// MarkerKind distinguishes the transient visual markers.
type MarkerKind int

const (
	MarkerSelection    MarkerKind = iota // ring under a selected unit
	MarkerMoveFeedback                   // expanding ring at a commanded point
)

func (mk MarkerKind) String() string {
	switch mk {
	case MarkerSelection:
		return "selection"
	case MarkerMoveFeedback:
		return "move_feedback"
	default:
		return "unknown"
	}
}

// SceneOwner is the OwnerID of markers that belong to the scene, not a unit.
const SceneOwner = -1

// Marker is a transient visual entity. Selection markers follow their unit;
// feedback markers stay where they were spawned and expire after Lifetime.
type Marker struct {
	ID       int
	Kind     MarkerKind
	OwnerID  int
	Pos      mgl64.Vec3
	Age      float64 // seconds
	Lifetime float64 // seconds; 0 = lives until destroyed by its owner
}

// Progress returns Age/Lifetime clamped to [0,1]; 0 for unbounded markers.
func (m *Marker) Progress() float64 {
	if m.Lifetime <= 0 {
		return 0
	}
	p := m.Age / m.Lifetime
	if p > 1 {
		return 1
	}
	return p
}

// attachSelectionMarker gives u a selection marker unless it already has one.
func (sc *Scene) attachSelectionMarker(u *Unit) {
	if u.marker != nil {
		return
	}
	m := sc.addMarker(MarkerSelection, u.ID, u.Pos, 0)
	u.marker = m
}

// detachSelectionMarker removes u's selection marker. Calling it on a unit
// without a marker does nothing.
func (sc *Scene) detachSelectionMarker(u *Unit) {
	if u.marker == nil {
		return
	}
	sc.removeMarker(u.marker.ID)
	u.marker = nil
}

// spawnFeedback adds a scene-owned move feedback ring at p.
func (sc *Scene) spawnFeedback(p mgl64.Vec3, lifetime float64) *Marker {
	return sc.addMarker(MarkerMoveFeedback, SceneOwner, p, lifetime)
}

// advanceMarkers ages scene-owned markers, removes expired ones and keeps
// selection markers under their units. Returns the number removed.
func (sc *Scene) advanceMarkers(dt float64) int {
	removed := 0
	for _, id := range sc.markerIDs() {
		m := sc.markers[id]
		if m.OwnerID != SceneOwner {
			if u := sc.units[m.OwnerID]; u != nil {
				m.Pos = u.Pos
			}
			continue
		}
		m.Age += dt
		if m.Lifetime > 0 && m.Age >= m.Lifetime {
			sc.removeMarker(id)
			removed++
		}
	}
	return removed
}
