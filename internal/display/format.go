// Package display renders guidance readings for a small character screen.
package display

import (
	"fmt"

	"ipt-nav/internal/geom"
	"ipt-nav/internal/guidance"
	"ipt-nav/internal/units"
)

// Frame is one screenful of text.
type Frame struct {
	Title    string
	Status   string
	Guidance string
}

// Format builds the guidance screen. Coordinates in the title are whole
// meters; distances are shown in u with two decimals. Turn angles are
// truncated to whole degrees before the clockwise complement is taken.
func Format(r guidance.Reading, dest geom.Point, u units.Length) Frame {
	f := Frame{Title: fmt.Sprintf("To #%d(%d,%d)", r.Destination, int(dest.X), int(dest.Y))}
	switch r.State.Kind {
	case guidance.Arrived:
		f.Guidance = "You Have Arrived"
	case guidance.Forward:
		f.Guidance = fmt.Sprintf("Go forward %.2f%s", u.Convert(r.State.Distance), u.Symbol())
	case guidance.Backward:
		f.Guidance = "Turn around"
	case guidance.Left:
		f.Guidance = fmt.Sprintf("Turn %d* Left", int(r.State.TravelDeg))
	case guidance.Right:
		f.Guidance = fmt.Sprintf("Turn %d* Right", 360-int(r.State.TravelDeg))
	default:
		f.Guidance = fmt.Sprintf("?? %s", r.State.Kind)
	}
	return f
}

// StatusLine summarizes the dead-reckoning state for the second row.
func StatusLine(pos geom.Point, heading geom.Angle, u units.Length) string {
	return fmt.Sprintf("%.1f,%.1f%s %03d", u.Convert(pos.X), u.Convert(pos.Y), u.Symbol(), int(heading.Deg()))
}
