// Package buttons turns raw switch readings into user actions.
package buttons

import "strings"

// Button is a bit set of physical buttons.
type Button uint8

const (
	None  Button = 0
	Left  Button = 1 << 0
	Right Button = 1 << 1
	Up    Button = 1 << 2
	Down  Button = 1 << 3
	Enter Button = 1 << 4
)

// All lists the buttons in bit order.
var All = []Button{Left, Right, Up, Down, Enter}

func (b Button) String() string {
	if b == None {
		return "none"
	}
	var parts []string
	for i, name := range []string{"left", "right", "up", "down", "enter"} {
		if b&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "+")
}

// State remembers the closed set from this refresh and the one before, so
// presses can be reported once rather than for as long as they are held.
type State struct {
	prev, cur Button
}

// Update records a new set of closed buttons.
func (s *State) Update(closed Button) {
	s.prev = s.cur
	s.cur = closed
}

// Closed reports whether every button in mask is pressed.
func (s State) Closed(mask Button) bool { return s.cur&mask == mask }

// Open reports whether every button in mask is released.
func (s State) Open(mask Button) bool { return ^s.cur&mask == mask }

// ClosedOnce reports whether mask became fully pressed on the last Update.
func (s State) ClosedOnce(mask Button) bool {
	return s.Closed(mask) && s.prev&mask != mask
}

// OpenOnce reports whether mask became fully released on the last Update.
func (s State) OpenOnce(mask Button) bool {
	return s.Open(mask) && s.prev&mask == mask
}

// Pressed returns the buttons that went from open to closed.
func (s State) Pressed() Button { return s.cur &^ s.prev }

// AnyTapOnce reports whether anything was pressed on the last Update.
func (s State) AnyTapOnce() bool { return s.Pressed() != None }

// Debouncer accepts a new reading only after it has been seen n times in a
// row. Mechanical switches bounce for a few milliseconds.
type Debouncer struct {
	need      int
	candidate Button
	count     int
	stable    Button
}

func NewDebouncer(n int) *Debouncer {
	if n < 1 {
		n = 1
	}
	return &Debouncer{need: n}
}

// Feed takes one raw reading and returns the debounced state.
func (d *Debouncer) Feed(raw Button) Button {
	if raw != d.candidate {
		d.candidate = raw
		d.count = 0
	}
	if d.count < d.need {
		d.count++
	}
	if d.count >= d.need {
		d.stable = d.candidate
	}
	return d.stable
}
