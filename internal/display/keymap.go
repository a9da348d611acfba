package display

import (
	"github.com/gdamore/tcell/v2"

	"ipt-nav/internal/buttons"
)

// KeyAction maps a terminal key to a button event. quit is set for the keys
// that end the program; ok is false for keys with no binding.
//
//	enter, space    set waypoint
//	up, k           previous waypoint
//	down, j         next waypoint
//	left, h         previous unit
//	right, l        next unit
//	0-9             jump to waypoint
//	c               recalibrate gyro
//	z               zero roll and pitch at the current tilt
//	q, esc, ctrl-c  quit
func KeyAction(key tcell.Key, r rune) (ev buttons.Event, quit, ok bool) {
	switch key {
	case tcell.KeyEnter:
		return buttons.Event{Kind: buttons.SetWaypoint}, false, true
	case tcell.KeyUp:
		return buttons.Event{Kind: buttons.CycleBackward}, false, true
	case tcell.KeyDown:
		return buttons.Event{Kind: buttons.CycleForward}, false, true
	case tcell.KeyLeft:
		return buttons.Event{Kind: buttons.PrevUnit}, false, true
	case tcell.KeyRight:
		return buttons.Event{Kind: buttons.NextUnit}, false, true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return buttons.Event{}, true, false
	case tcell.KeyRune:
	default:
		return buttons.Event{}, false, false
	}

	switch {
	case r == ' ':
		return buttons.Event{Kind: buttons.SetWaypoint}, false, true
	case r == 'k':
		return buttons.Event{Kind: buttons.CycleBackward}, false, true
	case r == 'j':
		return buttons.Event{Kind: buttons.CycleForward}, false, true
	case r == 'h':
		return buttons.Event{Kind: buttons.PrevUnit}, false, true
	case r == 'l':
		return buttons.Event{Kind: buttons.NextUnit}, false, true
	case r == 'c':
		return buttons.Event{Kind: buttons.Recalibrate}, false, true
	case r == 'z':
		return buttons.Event{Kind: buttons.Level}, false, true
	case r >= '0' && r <= '9':
		return buttons.Event{Kind: buttons.JumpTo, Index: int(r - '0')}, false, true
	case r == 'q' || r == 'Q':
		return buttons.Event{}, true, false
	}
	return buttons.Event{}, false, false
}
