package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Spawn places up to count clones of tmpl at random non-overlapping points.
// A unit that cannot be placed within MaxPlacementAttempts is skipped with a
// diagnostic. Returns the number placed.
func (s *Sim) Spawn(tmpl *UnitTemplate, count int) int {
	placed := 0
	for i := 0; i < count; i++ {
		pos, attempts, ok := s.findSpawnPoint()
		if !ok {
			s.Logger.Warn().
				Int("index", i).
				Int("attempts", attempts).
				Msg("no free spawn point, skipping unit")
			s.SimLog.Add(s.tick, "--", "spawn", "placement_failed",
				fmt.Sprintf("unit #%d after %d attempts", i, attempts), float64(attempts))
			continue
		}
		heading := (s.rng.Float64()*2 - 1) * math.Pi
		u := s.AddUnitAt(tmpl, pos, heading)
		s.SimLog.AddVerbose(s.tick, u.Label(), "spawn", "placed",
			fmt.Sprintf("(%.2f,%.2f) after %d attempts", pos.X(), pos.Y(), attempts), float64(attempts))
		placed++
	}
	s.Logger.Info().Int("placed", placed).Int("requested", count).Str("template", tmpl.Name).Msg("units spawned")
	s.SimLog.Add(s.tick, "--", "spawn", "done", fmt.Sprintf("%d/%d %s", placed, count, tmpl.Name), float64(placed))
	return placed
}

// findSpawnPoint samples the spawn square until it finds a point at least
// SpawnSeparation from every unit.
func (s *Sim) findSpawnPoint() (mgl64.Vec3, int, bool) {
	t := s.Tuning
	minD2 := t.SpawnSeparation * t.SpawnSeparation
	units := s.Scene.Units()
	for attempt := 1; attempt <= t.MaxPlacementAttempts; attempt++ {
		p := mgl64.Vec3{
			(s.rng.Float64()*2 - 1) * t.SpawnExtent,
			(s.rng.Float64()*2 - 1) * t.SpawnExtent,
			t.SpawnZ,
		}
		free := true
		for _, u := range units {
			d := p.Sub(u.Pos)
			d[2] = 0
			if d.Dot(d) < minD2 {
				free = false
				break
			}
		}
		if free {
			return p, attempt, true
		}
	}
	return mgl64.Vec3{}, t.MaxPlacementAttempts, false
}
