package input

import "github.com/soar/ovrinput/internal/ovr"

// latch detects transitions of one digital value between refreshes.
type latch struct {
	prev              bool
	pressed, released bool
}

func (l *latch) update(v bool) (pressed, released bool) {
	l.pressed = v && !l.prev
	l.released = !v && l.prev
	l.prev = v
	return l.pressed, l.released
}

// hold drops the transitions of the last refresh without touching the
// remembered value.
func (l *latch) hold() {
	l.pressed, l.released = false, false
}

// edges detects transitions of a button bitmask between refreshes. The
// transitions of the last refresh stay readable until the next one.
type edges struct {
	prev              uint32
	pressed, released uint32
}

func (e *edges) update(buttons uint32) (pressed, released uint32) {
	e.pressed = buttons &^ e.prev
	e.released = e.prev &^ buttons
	e.prev = buttons
	return e.pressed, e.released
}

func (e *edges) hold() {
	e.pressed, e.released = 0, 0
}

// merge adds the transitions of the last refresh to state.
func (e *edges) merge(state *ovr.InputState) {
	state.ButtonsPressed |= e.pressed
	state.ButtonsReleased |= e.released
}
