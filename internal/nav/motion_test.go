package nav

import (
	"math"
	"testing"

	"ipt-nav/internal/geom"
	"ipt-nav/internal/orientation"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func TestSpeedTable_Lookup(t *testing.T) {
	tbl := SpeedTable{
		{MaxPitchDeg: 5, SpeedMPS: 0},
		{MaxPitchDeg: 15, SpeedMPS: 0.5},
		{MaxPitchDeg: 30, SpeedMPS: 1.0},
	}
	cases := []struct {
		pitchDeg float64
		want     float64
	}{
		{0, 0},
		{4.9, 0},
		{5, 0.5}, // bound must strictly exceed
		{-10, 0.5},
		{29, 1.0},
		{30, 1.0}, // clamp
		{89, 1.0}, // clamp, no extrapolation
	}
	for _, tc := range cases {
		if got := tbl.SpeedForDeg(math.Abs(tc.pitchDeg)); got != tc.want {
			t.Fatalf("SpeedForDeg(%v)=%v want %v", tc.pitchDeg, got, tc.want)
		}
	}
	for _, tc := range []struct{ pitchDeg, want float64 }{{0, 0}, {-10, 0.5}, {20, 1.0}, {-70, 1.0}} {
		if got := tbl.Lookup(deg(tc.pitchDeg)); got != tc.want {
			t.Fatalf("Lookup(%v°)=%v want %v", tc.pitchDeg, got, tc.want)
		}
	}
	if got := (SpeedTable{}).Lookup(deg(20)); got != 0 {
		t.Fatalf("empty table speed=%v want 0", got)
	}
}

func TestIntegrator_FirstSampleOnlySetsHeading(t *testing.T) {
	n := New(4)
	in := NewIntegrator(SpeedTable{{MaxPitchDeg: 90, SpeedMPS: 2}})
	d := in.Step(n, orientation.Sample{Yaw: deg(-90), Pitch: deg(20), Micros: 1_000_000})
	if d.ElapsedSec != 0 || d.Delta != (geom.Point{}) {
		t.Fatalf("first step moved: %+v", d)
	}
	if math.Abs(n.Heading().Deg()-90) > 1e-9 {
		t.Fatalf("heading=%v want 90 (yaw sign flipped)", n.Heading().Deg())
	}
}

func TestIntegrator_IntegratesAlongHeading(t *testing.T) {
	n := New(4)
	in := NewIntegrator(SpeedTable{{MaxPitchDeg: 90, SpeedMPS: 2}})
	in.Step(n, orientation.Sample{Micros: 0})
	// Clockwise yaw of 90° faces the navigation -y axis.
	in.Step(n, orientation.Sample{Yaw: deg(90), Micros: 500_000})
	want := geom.Point{X: 0, Y: -1}
	if n.Position().DistTo(want) > 1e-9 {
		t.Fatalf("pos=%v want %v", n.Position(), want)
	}
	if math.Abs(n.Heading().Deg()-270) > 1e-9 {
		t.Fatalf("heading=%v want 270", n.Heading().Deg())
	}
}

func TestIntegrator_TimerWraparound(t *testing.T) {
	n := New(4)
	in := NewIntegrator(SpeedTable{{MaxPitchDeg: 90, SpeedMPS: 1}})
	in.Step(n, orientation.Sample{Micros: math.MaxUint32 - 99_999})
	d := in.Step(n, orientation.Sample{Micros: 100_000})
	// 99_999 + 1 + 100_000 us across the wrap.
	if math.Abs(d.ElapsedSec-0.2) > 1e-9 {
		t.Fatalf("elapsed=%v want 0.2", d.ElapsedSec)
	}
	if n.Position().DistTo(geom.Point{X: 0.2}) > 1e-9 {
		t.Fatalf("pos=%v want (0.2,0)", n.Position())
	}
}

func TestIntegrator_DegenerateElapsedIsZero(t *testing.T) {
	n := New(4)
	in := NewIntegrator(SpeedTable{{MaxPitchDeg: 90, SpeedMPS: 3}})
	for _, e := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		d := in.Apply(n, 0, deg(10), e)
		if d.ElapsedSec != 0 || d.Delta != (geom.Point{}) {
			t.Fatalf("elapsed=%v produced %+v", e, d)
		}
	}
	if n.Position() != (geom.Point{}) {
		t.Fatalf("pos=%v want origin", n.Position())
	}
}

func TestIntegrator_LevelDeviceStaysPut(t *testing.T) {
	n := New(4)
	in := NewIntegrator(DefaultSpeedTable())
	in.Step(n, orientation.Sample{Micros: 0})
	in.Step(n, orientation.Sample{Yaw: deg(45), Pitch: deg(1), Micros: 10_000_000})
	if n.Position() != (geom.Point{}) {
		t.Fatalf("pos=%v want origin", n.Position())
	}
}

func TestIntegrator_ResetDropsElapsed(t *testing.T) {
	n := New(4)
	in := NewIntegrator(SpeedTable{{MaxPitchDeg: 90, SpeedMPS: 1}})
	in.Step(n, orientation.Sample{Micros: 0})
	in.Reset()
	d := in.Step(n, orientation.Sample{Micros: 5_000_000})
	if d.ElapsedSec != 0 {
		t.Fatalf("elapsed=%v want 0 after Reset", d.ElapsedSec)
	}
}
