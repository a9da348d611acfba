package geom

import "math"

// Point is a position or displacement in the plane, in meters.
//
// In the world frame +x is the initial facing of the device and angles grow
// counter-clockwise. In the device frame +x is straight ahead.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Add returns the component-wise sum p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Neg returns p pointing the opposite way.
func (p Point) Neg() Point { return Point{X: -p.X, Y: -p.Y} }

// Scale returns p with both components multiplied by k.
func (p Point) Scale(k float64) Point { return Point{X: k * p.X, Y: k * p.Y} }

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

// DistTo returns the Euclidean distance between p and q.
func (p Point) DistTo(q Point) float64 { return p.Sub(q).Norm() }

// IsZero reports whether both components are exactly zero.
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// AngleOf returns the angle between p and the +x axis, normalized to [0, 2π).
//
// The zero vector has no direction and yields NaN. Callers rely on this to
// detect "already there"; do not replace it with 0.
func AngleOf(p Point) Angle {
	if p.IsZero() {
		return Angle(math.NaN())
	}
	return Angle(math.Atan2(p.Y, p.X)).Normalize()
}

// UnitVector returns (cos a, sin a).
func UnitVector(a Angle) Point {
	s, c := math.Sincos(float64(a))
	return Point{X: c, Y: s}
}
