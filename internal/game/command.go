package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MoveOrder records one issued group move.
type MoveOrder struct {
	ID         uuid.UUID
	Tick       int
	Point      mgl64.Vec3
	UnitIDs    []int        // row order of the cost matrix
	Targets    []mgl64.Vec3 // formation points, column order
	Assignment []int        // Assignment[row] = column
	TotalCost  float64
}

// TargetOf returns the target written for a unit by this order.
func (o MoveOrder) TargetOf(unitID int) (mgl64.Vec3, bool) {
	for row, id := range o.UnitIDs {
		if id == unitID {
			return o.Targets[o.Assignment[row]], true
		}
	}
	return mgl64.Vec3{}, false
}

// CommandDispatcher turns a confirmed move command into per-unit targets.
type CommandDispatcher struct {
	Logger    zerolog.Logger
	LastOrder *MoveOrder
	Orders    int

	scene  *Scene
	cam    *Camera
	tuning Tuning
	simLog *SimLog
	tick   *int
}

// NewCommandDispatcher wires a dispatcher to the shared scene state.
func NewCommandDispatcher(sc *Scene, cam *Camera, t Tuning, simLog *SimLog, tick *int) *CommandDispatcher {
	return &CommandDispatcher{
		Logger: zerolog.Nop(),
		scene:  sc,
		cam:    cam,
		tuning: t,
		simLog: simLog,
		tick:   tick,
	}
}

// HandleSecondaryRelease issues a move toward the ground point under the
// pixel. Releases that miss the ground, or arrive with nothing selected, are
// ignored.
func (cd *CommandDispatcher) HandleSecondaryRelease(x, y float64) (MoveOrder, bool) {
	if cd.scene.Selection.Len() == 0 {
		return MoveOrder{}, false
	}
	ground, ok := cd.cam.RayThroughScreen(x, y).IntersectGround(cd.tuning.GroundHalfExtent)
	if !ok {
		cd.simLog.Add(*cd.tick, "--", "command", "ignored", "no ground intersection", 0)
		return MoveOrder{}, false
	}
	return cd.IssueMove(cd.scene.Selection, ground)
}

// IssueMove assigns every selected unit a formation slot around ground so
// that total travel distance is minimal. Previous targets are overwritten.
func (cd *CommandDispatcher) IssueMove(sel SelectionSet, ground mgl64.Vec3) (MoveOrder, bool) {
	ids := sel.IDs()
	units := make([]*Unit, 0, len(ids))
	for _, id := range ids {
		if u := cd.scene.Unit(id); u != nil {
			units = append(units, u)
		}
	}
	if len(units) == 0 {
		return MoveOrder{}, false
	}

	targets := FormationPoints(cd.tuning.FormationShape, ground, len(units),
		cd.tuning.FormationSpacing, cd.tuning.FormationZLift)
	from := make([]mgl64.Vec3, len(units))
	rowIDs := make([]int, len(units))
	for i, u := range units {
		from[i] = u.Pos
		rowIDs[i] = u.ID
	}
	cost := DistanceCostMatrix(from, targets)
	assignment := SolveAssignment(cost)

	// Everything is computed; write all targets in one pass.
	for row, u := range units {
		u.SetTarget(targets[assignment[row]])
	}

	order := MoveOrder{
		ID:         uuid.New(),
		Tick:       *cd.tick,
		Point:      ground,
		UnitIDs:    rowIDs,
		Targets:    targets,
		Assignment: assignment,
		TotalCost:  AssignmentCost(cost, assignment),
	}
	cd.LastOrder = &order
	cd.Orders++
	cd.scene.spawnFeedback(ground, cd.tuning.FeedbackLifetime)

	cd.simLog.Add(order.Tick, "--", "command", "move",
		fmt.Sprintf("%d units → (%.2f,%.2f) cost=%.3f", len(units), ground.X(), ground.Y(), order.TotalCost),
		order.TotalCost)
	for row, u := range units {
		t := targets[assignment[row]]
		cd.simLog.Add(order.Tick, u.Label(), "command", "target",
			fmt.Sprintf("slot %d (%.2f,%.2f)", assignment[row], t.X(), t.Y()), cost[row][assignment[row]])
	}
	cd.Logger.Info().
		Str("order", order.ID.String()).
		Int("units", len(units)).
		Float64("x", ground.X()).
		Float64("y", ground.Y()).
		Float64("cost", order.TotalCost).
		Msg("move order issued")
	return order, true
}
