package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Garsondee/rts-command/internal/config"
	"github.com/Garsondee/rts-command/internal/game"
	"github.com/Garsondee/rts-command/internal/logging"
)

type scenario struct {
	units    int
	seed     int64
	ticks    int
	x, y     float64
	model    string
	shape    string
	template string
	tuning   game.Tuning
}

type runStats struct {
	runIndex int
	seed     int64

	spawned       int
	placeFailures int
	selected      int
	order         *game.MoveOrder

	identityCost float64
	settleTicks  int
	arrivals     int
	maxError     float64 // furthest unit from its slot after settling

	dragRecomputes int
	summary        string
}

func main() {
	var sc scenario
	var runs int
	var seedStep int64
	var configDir string
	var copyReport bool
	var logLevel string

	flag.IntVar(&sc.units, "units", 20, "units to spawn")
	flag.Int64Var(&sc.seed, "seed", 42, "RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&runs, "runs", 1, "number of headless runs")
	flag.IntVar(&sc.ticks, "ticks", 600, "maximum ticks to wait for units to settle")
	flag.Float64Var(&sc.x, "x", 2, "move command ground x")
	flag.Float64Var(&sc.y, "y", 1, "move command ground y")
	flag.StringVar(&sc.model, "model", "", "motion model override: kinematic or physics")
	flag.StringVar(&sc.shape, "shape", "", "formation override: grid, line, column, wedge")
	flag.StringVar(&sc.template, "template", "box", "builtin unit template: box or tank")
	flag.StringVar(&configDir, "config", "", "directory holding "+config.FileName+".* (optional)")
	flag.StringVar(&logLevel, "log-level", "warn", "diagnostic log level")
	flag.BoolVar(&copyReport, "copy", false, "copy the report to the clipboard")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if sc.ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if sc.units < 0 {
		fmt.Println("error: -units must be >= 0")
		return
	}

	sc.tuning = game.DefaultTuning()
	if configDir != "" {
		cfg, err := config.Load(configDir)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		sc.tuning = cfg.Tuning()
	}
	if sc.model != "" {
		sc.tuning.MotionModel = game.ParseMotionModel(sc.model)
	}
	if sc.shape != "" {
		sc.tuning.FormationShape = game.ParseFormationShape(sc.shape)
	}
	logger := logging.New(logLevel, os.Stderr)

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Headless Move Report ===\n")
	fmt.Fprintf(&sb, "units=%d runs=%d ticks=%d seed=%d seed_step=%d point=(%.2f,%.2f) model=%s shape=%s template=%s\n\n",
		sc.units, runs, sc.ticks, sc.seed, seedStep, sc.x, sc.y,
		sc.tuning.MotionModel, sc.tuning.FormationShape, sc.template)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		run := sc
		run.seed = sc.seed + int64(i)*seedStep
		rs := runScenario(i+1, run)
		all = append(all, rs)
		sb.WriteString(formatRun(rs))
		if rs.order == nil {
			logger.Warn().Int("run", rs.runIndex).Msg("no move order issued")
		}
	}
	sb.WriteString(formatAggregate(all))

	report := sb.String()
	fmt.Print(report)
	if copyReport {
		if err := clipboard.WriteAll(report); err != nil {
			logger.Error().Err(err).Msg("clipboard copy failed")
			return
		}
		fmt.Println("(report copied to clipboard)")
	}
}

func templateFor(name string) *game.UnitTemplate {
	if name == "tank" {
		return game.TankTemplate()
	}
	return game.BoxTemplate()
}

// runScenario spawns units, drag-selects the whole viewport, right-clicks the
// ground point and waits for every unit to go idle.
func runScenario(runIndex int, sc scenario) runStats {
	ts := game.NewTestSim(
		game.WithTuning(func(t *game.Tuning) { *t = sc.tuning }),
		game.WithSeed(sc.seed),
		game.WithTemplate(templateFor(sc.template)),
		game.WithSpawned(sc.units),
	)
	rs := runStats{runIndex: runIndex, seed: sc.seed, spawned: ts.Scene.UnitCount(), settleTicks: -1}
	rs.placeFailures = len(ts.SimLog.Query(game.LogQuery{Category: "spawn", Key: "placement_failed", ToTick: -1}))

	ts.SelectAll()
	rs.selected = ts.Scene.Selection.Len()
	rs.dragRecomputes = ts.Selection.Recomputes()

	start := map[int]mgl64.Vec3{}
	for _, u := range ts.Scene.Units() {
		start[u.ID] = u.Pos
	}

	ts.CommandMove(sc.x, sc.y)
	rs.order = ts.Dispatcher.LastOrder
	if rs.order == nil {
		rs.summary = ts.SimLog.Summary(ts.Tick(), ts.Scene)
		return rs
	}
	rs.identityCost = identityCost(rs.order, start)

	rs.settleTicks = ts.RunUntil(game.AllIdle, sc.ticks)
	rs.arrivals = ts.Motion.Arrivals()
	for _, id := range rs.order.UnitIDs {
		u := ts.Scene.Unit(id)
		want, _ := rs.order.TargetOf(id)
		rs.maxError = math.Max(rs.maxError, u.Pos.Sub(want).Len())
	}
	rs.summary = ts.SimLog.Summary(ts.Tick(), ts.Scene)
	return rs
}

// identityCost is the travel cost of pairing the i-th selected unit with the
// i-th formation slot, the baseline the solver must not exceed.
func identityCost(order *game.MoveOrder, start map[int]mgl64.Vec3) float64 {
	total := 0.0
	for i, id := range order.UnitIDs {
		total += start[id].Sub(order.Targets[i]).Len()
	}
	return total
}

func formatRun(rs runStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(&sb, "selection: spawned=%d placement_failures=%d selected=%d drag_recomputes=%d\n",
		rs.spawned, rs.placeFailures, rs.selected, rs.dragRecomputes)
	if rs.order == nil {
		fmt.Fprintf(&sb, "order: none (nothing selected or ground missed)\n")
		sb.WriteString(rs.summary)
		sb.WriteByte('\n')
		return sb.String()
	}
	o := rs.order
	fmt.Fprintf(&sb, "order: id=%s units=%d point=(%.2f,%.2f)\n", o.ID, len(o.UnitIDs), o.Point.X(), o.Point.Y())
	fmt.Fprintf(&sb, "cost: assigned=%.3f identity=%.3f saved=%.1f%%\n",
		o.TotalCost, rs.identityCost, savedPercent(o.TotalCost, rs.identityCost))
	for row, id := range o.UnitIDs {
		t := o.Targets[o.Assignment[row]]
		fmt.Fprintf(&sb, "  U%-3d -> slot %-3d (%.2f,%.2f)\n", id, o.Assignment[row], t.X(), t.Y())
	}
	settle := "not settled"
	if rs.settleTicks >= 0 {
		settle = fmt.Sprintf("%d ticks (%.2fs)", rs.settleTicks, float64(rs.settleTicks)*game.TickDT)
	}
	fmt.Fprintf(&sb, "motion: settle=%s arrivals=%d max_slot_error=%.3f\n", settle, rs.arrivals, rs.maxError)
	sb.WriteString(rs.summary)
	sb.WriteByte('\n')
	return sb.String()
}

func formatAggregate(all []runStats) string {
	var sb strings.Builder
	settled, orders := 0, 0
	var settleSum []int
	costSum, identitySum := 0.0, 0.0
	for _, rs := range all {
		if rs.order == nil {
			continue
		}
		orders++
		costSum += rs.order.TotalCost
		identitySum += rs.identityCost
		if rs.settleTicks >= 0 {
			settled++
			settleSum = append(settleSum, rs.settleTicks)
		}
	}
	fmt.Fprintln(&sb, "=== Aggregate ===")
	fmt.Fprintf(&sb, "runs=%d orders=%d settled=%d\n", len(all), orders, settled)
	fmt.Fprintf(&sb, "avg_settle_ticks=%s\n", avgTickString(settleSum))
	fmt.Fprintf(&sb, "total_cost: assigned=%.3f identity=%.3f saved=%.1f%%\n",
		costSum, identitySum, savedPercent(costSum, identitySum))
	return sb.String()
}

func savedPercent(cost, baseline float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (baseline - cost) / baseline * 100
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
