package view

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/rts-command/internal/game"
)

const (
	gridHalfExtent = 12
	gridSpacing    = 2
	ringSegments   = 32
	selectRadius   = 0.85
)

// boxEdges lists corner index pairs of Unit.PartCorners that share an edge.
var boxEdges = func() [][2]int {
	var out [][2]int
	for i := 0; i < 8; i++ {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit == 0 {
				out = append(out, [2]int{i, i | bit})
			}
		}
	}
	return out
}()

// Game is the ebiten front end. It samples the pointer into the sim's input
// queue, steps the sim once per frame and draws the scene.
type Game struct {
	Logger zerolog.Logger

	sim    *game.Sim
	orders *OrderLog
	face   text.Face

	prevPointer pointerFrame
	showHUD     bool
	paused      bool
}

// New wraps sim in an ebiten game.
func New(sim *game.Sim, logger zerolog.Logger) *Game {
	return &Game{
		Logger:  logger,
		sim:     sim,
		orders:  NewOrderLog(),
		face:    text.NewGoXFace(basicfont.Face7x13),
		showHUD: true,
	}
}

func (g *Game) Update() error {
	g.pollPointer(time.Now())

	// H: toggle HUD.
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	// P: pause/resume. Input keeps queueing while paused.
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
		g.Logger.Info().Bool("paused", g.paused).Msg("simulation pause toggled")
	}

	if !g.paused {
		g.sim.Step(game.TickDT)
	}
	g.orders.Sync(g.sim.SimLog)
	return nil
}

func (g *Game) pollPointer(now time.Time) {
	x, y := ebiten.CursorPosition()
	cur := pointerFrame{X: x, Y: y}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		cur.Buttons |= game.ButtonPrimary
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		cur.Buttons |= game.ButtonSecondary
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		cur.Buttons |= game.ButtonMiddle
	}
	for _, ev := range diffPointer(g.prevPointer, cur, now) {
		g.sim.Push(ev)
	}
	g.prevPointer = cur
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 18, G: 22, B: 20, A: 255})
	cam := g.sim.Camera

	g.drawGround(screen, cam)
	for _, m := range g.sim.Scene.Markers() {
		g.drawMarker(screen, cam, m)
	}
	for _, u := range g.sim.Scene.Units() {
		g.drawUnit(screen, cam, u)
	}
	g.drawDragRect(screen)

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	g.orders.Draw(screen, g.face, w-logPanelWidth, h)
	if g.showHUD {
		g.drawHUD(screen, h)
	}
	if g.paused {
		ebitenutil.DebugPrintAt(screen, "PAUSED", 8, 8)
	}
}

func (g *Game) drawGround(screen *ebiten.Image, cam *game.Camera) {
	lineCol := color.RGBA{R: 40, G: 58, B: 44, A: 255}
	for v := -gridHalfExtent; v <= gridHalfExtent; v += gridSpacing {
		f := float64(v)
		strokeWorld(screen, cam, mgl64.Vec3{f, -gridHalfExtent, 0}, mgl64.Vec3{f, gridHalfExtent, 0}, 1, lineCol)
		strokeWorld(screen, cam, mgl64.Vec3{-gridHalfExtent, f, 0}, mgl64.Vec3{gridHalfExtent, f, 0}, 1, lineCol)
	}
	axis := color.RGBA{R: 70, G: 96, B: 76, A: 255}
	strokeWorld(screen, cam, mgl64.Vec3{-gridHalfExtent, 0, 0}, mgl64.Vec3{gridHalfExtent, 0, 0}, 1.5, axis)
	strokeWorld(screen, cam, mgl64.Vec3{0, -gridHalfExtent, 0}, mgl64.Vec3{0, gridHalfExtent, 0}, 1.5, axis)
}

func (g *Game) drawUnit(screen *ebiten.Image, cam *game.Camera, u *game.Unit) {
	col := color.RGBA{R: 170, G: 180, B: 190, A: 255}
	switch {
	case u.Selected:
		col = color.RGBA{R: 250, G: 220, B: 90, A: 255}
	case u.State() == game.UnitMoving:
		col = color.RGBA{R: 140, G: 200, B: 230, A: 255}
	}
	for _, p := range u.Parts {
		corners := u.PartCorners(p)
		for _, e := range boxEdges {
			strokeWorld(screen, cam, corners[e[0]], corners[e[1]], 1.5, col)
		}
	}

	// Heading tick from the first part's centre.
	if len(u.Parts) > 0 {
		from := u.PartCenter(u.Parts[0])
		to := from.Add(mgl64.Vec3{math.Cos(u.Heading), math.Sin(u.Heading), 0}.Mul(0.8))
		strokeWorld(screen, cam, from, to, 2, color.RGBA{R: 230, G: 90, B: 70, A: 255})
	}

	if u.Target != nil {
		ground := func(v mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{v.X(), v.Y(), 0.02} }
		strokeWorld(screen, cam, ground(u.Pos), ground(*u.Target), 1, color.RGBA{R: 90, G: 160, B: 200, A: 90})
	}

	if x, y, ok := cam.WorldToScreen(u.Pos.Add(mgl64.Vec3{0, 0, 0.9})); ok {
		ebitenutil.DebugPrintAt(screen, u.Label(), int(x)-6, int(y)-16)
	}
}

func (g *Game) drawMarker(screen *ebiten.Image, cam *game.Camera, m *game.Marker) {
	centre := mgl64.Vec3{m.Pos.X(), m.Pos.Y(), 0.02}
	switch m.Kind {
	case game.MarkerSelection:
		strokeRing(screen, cam, centre, selectRadius, 2, color.RGBA{R: 90, G: 230, B: 110, A: 230})
	case game.MarkerMoveFeedback:
		p := m.Progress()
		alpha := uint8(255 * (1 - p))
		strokeRing(screen, cam, centre, 0.3+1.2*p, 2, color.RGBA{R: 120, G: 240, B: 140, A: alpha})
	}
}

func (g *Game) drawDragRect(screen *ebiten.Image) {
	x0, y0, x1, y1, ok := g.sim.Selection.DragRect()
	if !ok {
		return
	}
	lx, ly := float32(math.Min(x0, x1)), float32(math.Min(y0, y1))
	w, h := float32(math.Abs(x1-x0)), float32(math.Abs(y1-y0))
	vector.FillRect(screen, lx, ly, w, h, color.RGBA{R: 80, G: 200, B: 110, A: 40}, false)
	vector.StrokeRect(screen, lx, ly, w, h, 1, color.RGBA{R: 100, G: 230, B: 130, A: 220}, false)
}

func (g *Game) drawHUD(screen *ebiten.Image, screenH int) {
	sc := g.sim.Scene
	order := "none"
	if o := g.sim.Dispatcher.LastOrder; o != nil {
		order = fmt.Sprintf("%d units → (%.1f,%.1f) cost %.2f", len(o.UnitIDs), o.Point.X(), o.Point.Y(), o.TotalCost)
	}
	lines := []string{
		fmt.Sprintf("T=%d  units=%d  selected=%d", g.sim.Tick(), sc.UnitCount(), sc.Selection.Len()),
		fmt.Sprintf("model=%s  formation=%s", g.sim.Tuning.MotionModel, g.sim.Tuning.FormationShape),
		"last order: " + order,
		"LMB click/drag=select  RMB=move",
		"[H] HUD  [P] pause",
	}
	if !g.sim.Loaded() {
		lines = append(lines, "loading units...")
	}

	const lineH = 15
	const pad = 6
	boxW := float32(0)
	for _, l := range lines {
		if w := float32(len([]rune(l))*7 + pad*2); w > boxW {
			boxW = w
		}
	}
	boxH := float32(len(lines)*lineH + pad*2)
	bx, by := float32(6), float32(screenH)-boxH-6

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 8, G: 10, B: 12, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1, color.RGBA{R: 70, G: 90, B: 110, A: 180}, false)
	for i, l := range lines {
		drawText(screen, g.face, l, int(bx)+pad, int(by)+pad+i*lineH, color.White)
	}
}

// Layout keeps the camera viewport matched to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.sim.Camera.Width || outsideHeight != g.sim.Camera.Height {
		g.Logger.Debug().Int("width", outsideWidth).Int("height", outsideHeight).Msg("viewport resized")
		g.sim.Camera.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// strokeWorld draws a world-space segment, skipping it if either end is
// behind the camera.
func strokeWorld(screen *ebiten.Image, cam *game.Camera, a, b mgl64.Vec3, width float32, c color.Color) {
	ax, ay, okA := cam.WorldToScreen(a)
	bx, by, okB := cam.WorldToScreen(b)
	if !okA || !okB {
		return
	}
	vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), width, c, true)
}

// strokeRing draws a horizontal circle of radius r around centre.
func strokeRing(screen *ebiten.Image, cam *game.Camera, centre mgl64.Vec3, r float64, width float32, c color.Color) {
	prev := centre.Add(mgl64.Vec3{r, 0, 0})
	for i := 1; i <= ringSegments; i++ {
		a := 2 * math.Pi * float64(i) / ringSegments
		next := centre.Add(mgl64.Vec3{r * math.Cos(a), r * math.Sin(a), 0})
		strokeWorld(screen, cam, prev, next, width, c)
		prev = next
	}
}
