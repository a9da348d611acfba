// Package guidance turns a device-relative direction vector into a travel
// instruction.
package guidance

import (
	"math"

	"ipt-nav/internal/geom"
)

// Kind is the instruction shown to the user.
type Kind int

const (
	Arrived Kind = iota
	Forward
	Backward
	Left
	Right
)

func (k Kind) String() string {
	switch k {
	case Arrived:
		return "arrived"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// State is a classified instruction. Which payload fields are meaningful
// depends on Kind:
//
//	Arrived   none
//	Forward   Distance
//	Backward  none
//	Left      TurnDeg (counter-clockwise turn)
//	Right     TurnDeg (clockwise turn)
//
// TravelDeg is always the raw travel angle in [0, 360), or NaN when the
// vector had no direction.
type State struct {
	Kind      Kind
	Distance  float64
	TurnDeg   float64
	TravelDeg float64
}

// Classifier holds the tolerances. It has no other state and Classify may be
// called at any rate.
type Classifier struct {
	snap    geom.Angle
	arrival float64
}

// NewClassifier returns a classifier. snap is normalized; arrival is in meters.
func NewClassifier(snap geom.Angle, arrival float64) Classifier {
	return Classifier{snap: snap.Normalize(), arrival: arrival}
}

func (c Classifier) SnapTolerance() geom.Angle { return c.snap }

func (c Classifier) ArrivalTolerance() float64 { return c.arrival }

// Classify maps a relative vector (+x ahead, +y left) to an instruction.
// Rules are checked in order and the first match wins:
//
//  1. Arrived: |v| <= arrival tolerance, or v has no direction.
//  2. Forward: travel angle within snap of 0 on either side.
//  3. Backward: travel angle strictly within snap of π.
//  4. Left: v.Y > 0.
//  5. Right: everything else, including v.Y == 0.
func (c Classifier) Classify(v geom.Point) State {
	travel := geom.AngleOf(v)
	dist := v.Norm()
	st := State{TravelDeg: travel.Deg(), Distance: dist}

	if dist <= c.arrival || travel.IsNaN() {
		st.Kind = Arrived
		st.Distance = 0
		return st
	}

	const behind = geom.Angle(math.Pi)
	// A zero tolerance conjugates to 0, so every non-zero travel angle
	// passes the wrap-side test and reads as Forward.
	nearForward := travel < c.snap || travel > c.snap.Conjugate()
	nearBackward := travel > behind.Sub(c.snap) && travel < behind.Add(c.snap)

	switch {
	case nearForward:
		st.Kind = Forward
	case nearBackward:
		st.Kind = Backward
		st.Distance = 0
	case v.Y > 0:
		st.Kind = Left
		st.TurnDeg = travel.Deg()
		st.Distance = 0
	default:
		st.Kind = Right
		st.TurnDeg = 360 - travel.Deg()
		st.Distance = 0
	}
	return st
}

// Reading is everything the presentation layer needs for one refresh.
type Reading struct {
	State State
	// Vector is the device-relative direction to the destination.
	Vector geom.Point
	// Distance is |Vector| regardless of State, for proximity indicators.
	Distance float64
	// Destination is the selected waypoint slot.
	Destination int
}

// Read classifies v and packages it with the destination index.
func (c Classifier) Read(v geom.Point, destination int) Reading {
	return Reading{
		State:       c.Classify(v),
		Vector:      v,
		Distance:    v.Norm(),
		Destination: destination,
	}
}
