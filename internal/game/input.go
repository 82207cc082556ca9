package game

import "time"

// PointerKind is the type of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

func (pk PointerKind) String() string {
	switch pk {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button. Values double as bits of
// PointerEvent.Buttons.
type Button uint8

const (
	ButtonNone      Button = 0
	ButtonPrimary   Button = 1 << 0
	ButtonSecondary Button = 1 << 1
	ButtonMiddle    Button = 1 << 2
)

// PointerEvent is one queued pointer input. Button is the button whose state
// changed (ButtonNone for moves); Buttons is the set held after the event.
type PointerEvent struct {
	Kind    PointerKind
	Button  Button
	Buttons Button
	X, Y    float64 // pixels
	At      time.Time
}

// OnlyPrimary reports whether the primary button is the sole button held.
func (ev PointerEvent) OnlyPrimary() bool {
	return ev.Buttons == ButtonPrimary
}

// Down builds a press event. held is the button set after the press.
func Down(b Button, held Button, x, y float64, at time.Time) PointerEvent {
	return PointerEvent{Kind: PointerDown, Button: b, Buttons: held | b, X: x, Y: y, At: at}
}

// Move builds a move event.
func Move(held Button, x, y float64, at time.Time) PointerEvent {
	return PointerEvent{Kind: PointerMove, Buttons: held, X: x, Y: y, At: at}
}

// Up builds a release event. held is the button set after the release.
func Up(b Button, held Button, x, y float64, at time.Time) PointerEvent {
	return PointerEvent{Kind: PointerUp, Button: b, Buttons: held &^ b, X: x, Y: y, At: at}
}

// InputQueue buffers pointer events between ticks.
type InputQueue struct {
	events []PointerEvent
}

// Push appends an event.
func (q *InputQueue) Push(ev PointerEvent) {
	q.events = append(q.events, ev)
}

// Drain returns the queued events in arrival order and empties the queue.
func (q *InputQueue) Drain() []PointerEvent {
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of queued events.
func (q *InputQueue) Len() int {
	return len(q.events)
}
