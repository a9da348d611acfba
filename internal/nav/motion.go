package nav

import (
	"math"

	"ipt-nav/internal/geom"
	"ipt-nav/internal/orientation"
)

// SpeedStep maps pitch magnitudes below MaxPitchDeg to a forward speed.
type SpeedStep struct {
	MaxPitchDeg float64 `yaml:"max_pitch_deg"`
	SpeedMPS    float64 `yaml:"speed_mps"`
}

// SpeedTable is ordered by increasing MaxPitchDeg. Tilting the device
// forward or back is how the user signals walking pace.
type SpeedTable []SpeedStep

// DefaultSpeedTable is a walking-pace profile: level means standing still.
func DefaultSpeedTable() SpeedTable {
	return SpeedTable{
		{MaxPitchDeg: 5, SpeedMPS: 0},
		{MaxPitchDeg: 15, SpeedMPS: 0.5},
		{MaxPitchDeg: 30, SpeedMPS: 1.0},
		{MaxPitchDeg: 45, SpeedMPS: 1.4},
	}
}

// Lookup returns the speed of the first step whose bound exceeds |pitch|.
// Beyond the last bound the last speed is used; the table is never
// extrapolated. An empty table means no motion.
func (t SpeedTable) Lookup(pitchRad float64) float64 {
	return t.SpeedForDeg(math.Abs(pitchRad) * 180 / math.Pi)
}

// SpeedForDeg is Lookup for a pitch magnitude already in degrees.
func (t SpeedTable) SpeedForDeg(deg float64) float64 {
	if len(t) == 0 {
		return 0
	}
	for _, s := range t {
		if s.MaxPitchDeg > deg {
			return s.SpeedMPS
		}
	}
	return t[len(t)-1].SpeedMPS
}

// Displacement is what one integration step did to the navigator.
type Displacement struct {
	Heading    geom.Angle
	SpeedMPS   float64
	ElapsedSec float64
	Delta      geom.Point
}

// Integrator advances a Navigator from orientation samples.
//
// Not safe for concurrent use.
type Integrator struct {
	table SpeedTable

	lastMicros uint32
	haveLast   bool
}

func NewIntegrator(table SpeedTable) *Integrator {
	return &Integrator{table: table}
}

// Step integrates one sample. Elapsed time is measured between consecutive
// sample stamps with unsigned subtraction, so counter wraparound is harmless.
// The first sample only sets the heading.
func (in *Integrator) Step(n *Navigator, s orientation.Sample) Displacement {
	elapsed := 0.0
	if in.haveLast {
		elapsed = float64(s.Micros-in.lastMicros) / 1e6
	}
	in.lastMicros = s.Micros
	in.haveLast = true
	return in.Apply(n, s.Yaw, s.Pitch, elapsed)
}

// Apply integrates a yaw/pitch reading held for elapsedSec seconds.
// Degenerate elapsed values (negative, NaN, infinite) count as zero.
func (in *Integrator) Apply(n *Navigator, yaw, pitch, elapsedSec float64) Displacement {
	if !(elapsedSec > 0) || math.IsInf(elapsedSec, 0) {
		elapsedSec = 0
	}
	// The IMU reports clockwise yaw; the navigation frame is counter-clockwise.
	heading := geom.Angle(-yaw).Normalize()
	speed := in.table.Lookup(pitch)

	var delta geom.Point
	if elapsedSec > 0 && speed != 0 && !heading.IsNaN() {
		delta = geom.UnitVector(heading).Scale(elapsedSec * speed)
	}
	n.ApplyDisplacement(delta)
	if !heading.IsNaN() {
		n.SetHeading(heading)
	}
	return Displacement{Heading: heading, SpeedMPS: speed, ElapsedSec: elapsedSec, Delta: delta}
}

// Reset forgets the previous stamp so the next Step has zero elapsed time.
func (in *Integrator) Reset() {
	in.haveLast = false
}
