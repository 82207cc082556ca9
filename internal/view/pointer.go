package view

import (
	"time"

	"github.com/Garsondee/rts-command/internal/game"
)

// pointerFrame is the pointer state sampled once per frame.
type pointerFrame struct {
	X, Y    int
	Buttons game.Button
}

var pointerButtons = [...]game.Button{game.ButtonPrimary, game.ButtonSecondary, game.ButtonMiddle}

// diffPointer turns two consecutive samples into queued events: presses
// first, then a move if the cursor moved, then releases. Buttons on each
// event reflect the presses and releases emitted before it.
func diffPointer(prev, cur pointerFrame, at time.Time) []game.PointerEvent {
	var out []game.PointerEvent
	held := prev.Buttons
	x, y := float64(cur.X), float64(cur.Y)

	for _, b := range pointerButtons {
		if cur.Buttons&b != 0 && prev.Buttons&b == 0 {
			out = append(out, game.Down(b, held, x, y, at))
			held |= b
		}
	}
	if cur.X != prev.X || cur.Y != prev.Y {
		out = append(out, game.Move(held, x, y, at))
	}
	for _, b := range pointerButtons {
		if prev.Buttons&b != 0 && cur.Buttons&b == 0 {
			out = append(out, game.Up(b, held, x, y, at))
			held &^= b
		}
	}
	return out
}
