package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/rts-command/internal/game"
)

const (
	logPanelWidth = 300
	logMaxEntries = 40
	logLineHeight = 14
)

// orderLogCategories are the SimLog categories mirrored into the panel.
var orderLogCategories = map[string]bool{
	"command": true,
	"select":  true,
	"asset":   true,
	"spawn":   true,
}

// OrderLogEntry is a single line in the order log.
type OrderLogEntry struct {
	Tick     int
	Label    string // e.g. "U3", or "--"
	Category string
	Message  string
}

// OrderLog is a ring buffer of recent command events rendered on-screen.
type OrderLog struct {
	entries []OrderLogEntry
	head    int
	count   int
	src     *game.SimLog
	cursor  int // next src index to mirror
}

// NewOrderLog creates an order log with a fixed capacity.
func NewOrderLog() *OrderLog {
	return &OrderLog{
		entries: make([]OrderLogEntry, logMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (ol *OrderLog) Add(tick int, label, category, msg string) {
	ol.entries[ol.head] = OrderLogEntry{
		Tick:     tick,
		Label:    label,
		Category: category,
		Message:  msg,
	}
	ol.head = (ol.head + 1) % logMaxEntries
	if ol.count < logMaxEntries {
		ol.count++
	}
}

// Sync mirrors SimLog entries recorded since the last call. Per-unit target
// lines are skipped; the order summary already covers them.
func (ol *OrderLog) Sync(sl *game.SimLog) {
	if sl != ol.src {
		ol.src = sl
		ol.cursor = 0
	}
	entries := sl.Entries()
	for _, e := range entries[ol.cursor:] {
		if !orderLogCategories[e.Category] || (e.Category == "command" && e.Key == "target") {
			continue
		}
		ol.Add(e.Tick, e.Unit, e.Category, e.Key+" "+e.Value)
	}
	ol.cursor = len(entries)
}

// Recent returns entries in chronological order (oldest first).
func (ol *OrderLog) Recent() []OrderLogEntry {
	result := make([]OrderLogEntry, ol.count)
	for i := 0; i < ol.count; i++ {
		idx := (ol.head - ol.count + i + logMaxEntries) % logMaxEntries
		result[i] = ol.entries[idx]
	}
	return result
}

// Draw renders the panel along the right edge of the screen.
func (ol *OrderLog) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 220}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 20, G: 26, B: 36, A: 255}, false)
	drawText(screen, face, "ORDER LOG", panelX+8, 2, color.RGBA{R: 200, G: 210, B: 230, A: 255})
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 70, B: 90, A: 200}, false)

	entries := ol.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	const recent = 3
	y := 22
	for i, e := range entries {
		isRecent := i >= len(entries)-recent
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 36, B: 50, A: 160}, false)
		}
		alpha := uint8(150)
		if isRecent {
			alpha = 255
		}
		dot := categoryColor(e.Category)
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, dot, false)

		line := fmt.Sprintf("%4d %-3s %s", e.Tick, e.Label, e.Message)
		drawText(screen, face, line, panelX+12, y, color.RGBA{R: 220, G: 225, B: 235, A: alpha})
		y += logLineHeight
	}
}

func categoryColor(category string) color.RGBA {
	switch category {
	case "command":
		return color.RGBA{R: 90, G: 200, B: 110, A: 255}
	case "select":
		return color.RGBA{R: 230, G: 200, B: 60, A: 255}
	case "asset", "spawn":
		return color.RGBA{R: 90, G: 150, B: 230, A: 255}
	default:
		return color.RGBA{R: 160, G: 160, B: 160, A: 255}
	}
}

func drawText(dst *ebiten.Image, face text.Face, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}
