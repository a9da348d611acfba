package geom

import "math"

const twoPi = 2 * math.Pi

// Angle is a planar angle in radians.
//
// Values produced by this package are normalized to [0, 2π) unless noted.
// NaN is a valid value and means "no direction" (see AngleOf).
type Angle float64

// FromDegrees returns the normalized angle for deg degrees.
func FromDegrees(deg float64) Angle {
	return Angle(deg * math.Pi / 180).Normalize()
}

// Rad returns the angle in radians.
func (a Angle) Rad() float64 { return float64(a) }

// Deg returns the angle in degrees.
func (a Angle) Deg() float64 { return float64(a) * 180 / math.Pi }

// IsNaN reports whether a is the undefined-direction sentinel.
func (a Angle) IsNaN() bool { return math.IsNaN(float64(a)) }

// Normalize reduces a to [0, 2π). NaN and infinities yield NaN.
func (a Angle) Normalize() Angle {
	r := math.Mod(float64(a), twoPi)
	if r < 0 {
		r += twoPi
	}
	// A tiny negative remainder can round up to exactly 2π.
	if r >= twoPi {
		r = 0
	}
	return Angle(r)
}

// Conjugate returns the normalized negation of a.
func (a Angle) Conjugate() Angle {
	return (-a).Normalize()
}

// Add returns the normalized sum.
func (a Angle) Add(b Angle) Angle { return (a + b).Normalize() }

// Sub returns the normalized difference.
func (a Angle) Sub(b Angle) Angle { return (a - b).Normalize() }
