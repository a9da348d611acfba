// Package nav tracks the device's estimated position and heading and turns
// them into directions toward the selected waypoint.
package nav

import (
	"ipt-nav/internal/geom"
	"ipt-nav/internal/waypoint"
)

// DefaultDestinations is the number of waypoint slots a Navigator gets when
// none is configured.
const DefaultDestinations = 4

// Navigator owns the dead-reckoning state: where the device thinks it is,
// which way it faces, and the waypoints it can guide to.
//
// A Navigator is created once at startup and owned by the control loop.
// Not safe for concurrent use.
type Navigator struct {
	position     geom.Point
	heading      geom.Angle
	destinations *waypoint.Store[geom.Point]
}

// New returns a navigator at the origin facing 0 with n waypoints, all at
// the origin. n <= 0 selects DefaultDestinations.
func New(n int) *Navigator {
	if n <= 0 {
		n = DefaultDestinations
	}
	// n > 0 here, so New cannot fail.
	store, _ := waypoint.New[geom.Point](n)
	return &Navigator{destinations: store}
}

func (n *Navigator) Position() geom.Point { return n.position }

func (n *Navigator) Heading() geom.Angle { return n.heading }

// ApplyDisplacement moves the estimated position by d (world frame).
func (n *Navigator) ApplyDisplacement(d geom.Point) {
	n.position = n.position.Add(d)
}

// SetHeading replaces the estimated heading.
func (n *Navigator) SetHeading(a geom.Angle) {
	n.heading = a.Normalize()
}

// Turn rotates the estimated heading by a.
func (n *Navigator) Turn(a geom.Angle) {
	n.heading = n.heading.Add(a)
}

// Destination returns the selected waypoint.
func (n *Navigator) Destination() geom.Point { return n.destinations.Current() }

// DestinationIndex returns the slot of the selected waypoint.
func (n *Navigator) DestinationIndex() int { return n.destinations.Index() }

// DestinationCount returns the number of waypoint slots.
func (n *Navigator) DestinationCount() int { return n.destinations.Len() }

// Destinations returns a copy of every waypoint slot.
func (n *Navigator) Destinations() []geom.Point { return n.destinations.All() }

// OverwriteDestination replaces the selected waypoint with p.
func (n *Navigator) OverwriteDestination(p geom.Point) {
	n.destinations.Overwrite(p)
}

// SetWaypointHere stores the current position in the selected slot.
func (n *Navigator) SetWaypointHere() {
	n.destinations.Overwrite(n.position)
}

// SeedDestination presets slot i without changing the selection.
func (n *Navigator) SeedDestination(i int, p geom.Point) error {
	return n.destinations.Seed(i, p)
}

// CycleDestination selects the next (forward) or previous waypoint, wrapping.
func (n *Navigator) CycleDestination(forward bool) {
	if forward {
		n.destinations.Cycle(waypoint.Forward)
		return
	}
	n.destinations.Cycle(waypoint.Backward)
}

// SelectDestination jumps to slot i. Invalid indices are rejected with
// waypoint.ErrIndexOutOfRange and the selection is unchanged.
func (n *Navigator) SelectDestination(i int) error {
	return n.destinations.Select(i)
}

// Direction returns the vector to the selected waypoint in the device frame.
func (n *Navigator) Direction() geom.Point {
	return Resolve(n.position, n.heading, n.Destination())
}

// Resolve expresses the displacement from position to destination in the
// frame of a device facing heading: +x is straight ahead, +y is to the left.
//
// The magnitude is the distance to travel. When the device is exactly at the
// destination the zero vector is returned.
func Resolve(position geom.Point, heading geom.Angle, destination geom.Point) geom.Point {
	world := destination.Sub(position)
	relative := geom.AngleOf(world).Sub(heading)
	if relative.IsNaN() {
		return geom.Point{}
	}
	return geom.UnitVector(relative).Scale(world.Norm())
}
