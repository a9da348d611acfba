package guidance

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"ipt-nav/internal/geom"
	"ipt-nav/internal/nav"
)

func newTestClassifier() Classifier {
	return NewClassifier(geom.FromDegrees(10), 0.5)
}

func TestScenarioA_FreshNavigatorArrived(t *testing.T) {
	n := nav.New(4)
	dir := n.Direction()
	if dir != (geom.Point{}) {
		t.Fatalf("direction=%v want zero", dir)
	}
	st := newTestClassifier().Classify(dir)
	if st.Kind != Arrived {
		t.Fatalf("kind=%v want arrived", st.Kind)
	}
	if !math.IsNaN(st.TravelDeg) {
		t.Fatalf("travel=%v want NaN sentinel", st.TravelDeg)
	}
}

func TestZeroVector_ArrivedEvenWithNegativeTolerance(t *testing.T) {
	// Only the NaN sentinel can catch this; 0 <= -1 is false.
	c := NewClassifier(geom.FromDegrees(10), -1)
	if st := c.Classify(geom.Point{}); st.Kind != Arrived {
		t.Fatalf("kind=%v want arrived", st.Kind)
	}
}

func TestScenarioB_DisplacedIsBackward(t *testing.T) {
	n := nav.New(4)
	n.ApplyDisplacement(geom.Point{X: 10, Y: 0})
	dir := n.Direction()
	if math.Abs(dir.Norm()-10) > 1e-9 {
		t.Fatalf("norm=%v want 10", dir.Norm())
	}
	st := newTestClassifier().Classify(dir)
	if st.Kind != Backward {
		t.Fatalf("kind=%v want backward (travel=%v)", st.Kind, st.TravelDeg)
	}
}

func TestScenarioC_WaypointToTheLeft(t *testing.T) {
	n := nav.New(4)
	n.OverwriteDestination(geom.Point{X: 0, Y: 5})
	st := newTestClassifier().Classify(n.Direction())
	if st.Kind != Left {
		t.Fatalf("kind=%v want left", st.Kind)
	}
	if math.Abs(st.TurnDeg-90) > 1e-9 {
		t.Fatalf("turn=%v want 90", st.TurnDeg)
	}
}

func TestScenarioD_WaypointToTheRight(t *testing.T) {
	n := nav.New(4)
	n.OverwriteDestination(geom.Point{X: 0, Y: -5})
	st := newTestClassifier().Classify(n.Direction())
	if st.Kind != Right {
		t.Fatalf("kind=%v want right", st.Kind)
	}
	if math.Abs(st.TravelDeg-270) > 1e-9 {
		t.Fatalf("travel=%v want 270", st.TravelDeg)
	}
	// Clockwise turn magnitude.
	if math.Abs(st.TurnDeg-90) > 1e-9 {
		t.Fatalf("turn=%v want 90", st.TurnDeg)
	}
}

func TestArrivalToleranceBoundaryInclusive(t *testing.T) {
	c := newTestClassifier()
	if st := c.Classify(geom.Point{X: 0.5}); st.Kind != Arrived {
		t.Fatalf("at tolerance kind=%v want arrived", st.Kind)
	}
	st := c.Classify(geom.Point{X: 0.5 + 1e-9})
	if st.Kind != Forward {
		t.Fatalf("beyond tolerance kind=%v want forward", st.Kind)
	}
	if math.Abs(st.Distance-0.5) > 1e-6 {
		t.Fatalf("distance=%v", st.Distance)
	}
}

func TestForwardSnapsAcrossWrap(t *testing.T) {
	c := newTestClassifier()
	for _, d := range []float64{0, 5, 9.9, 350.1, 355, 359.9} {
		v := geom.UnitVector(geom.FromDegrees(d)).Scale(20)
		st := c.Classify(v)
		if st.Kind != Forward {
			t.Fatalf("%v°: kind=%v want forward", d, st.Kind)
		}
		if math.Abs(st.Distance-20) > 1e-9 {
			t.Fatalf("%v°: distance=%v want 20", d, st.Distance)
		}
	}
}

func TestBackwardWindow(t *testing.T) {
	c := newTestClassifier()
	for _, d := range []float64{170.5, 180, 189.5} {
		v := geom.UnitVector(geom.FromDegrees(d)).Scale(3)
		if st := c.Classify(v); st.Kind != Backward {
			t.Fatalf("%v°: kind=%v want backward", d, st.Kind)
		}
	}
	for _, tc := range []struct {
		d    float64
		want Kind
	}{{169, Left}, {191, Right}, {11, Left}, {349, Right}} {
		v := geom.UnitVector(geom.FromDegrees(tc.d)).Scale(3)
		if st := c.Classify(v); st.Kind != tc.want {
			t.Fatalf("%v°: kind=%v want %v", tc.d, st.Kind, tc.want)
		}
	}
}

func TestLeftRightTieResolvesRight(t *testing.T) {
	// A half-turn tolerance leaves Forward as travel != π and collapses the
	// Backward window to (0, 0), so (-x, 0) falls through to the y test.
	c := NewClassifier(geom.Angle(math.Pi), 0.1)
	st := c.Classify(geom.Point{X: -4, Y: 0})
	if st.Kind != Right {
		t.Fatalf("kind=%v want right on y==0", st.Kind)
	}
	if math.Abs(st.TurnDeg-180) > 1e-9 {
		t.Fatalf("turn=%v want 180", st.TurnDeg)
	}
}

func TestZeroSnapToleranceIsAllForward(t *testing.T) {
	// 2π normalizes to the same zero tolerance.
	for _, snap := range []geom.Angle{0, geom.Angle(2 * math.Pi)} {
		c := NewClassifier(snap, 0.1)
		for _, v := range []geom.Point{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -4, Y: 0}, {X: 0, Y: 3}, {X: 5, Y: 0.001}} {
			if st := c.Classify(v); st.Kind != Forward {
				t.Fatalf("snap=%v v=%+v kind=%v want forward", snap, v, st.Kind)
			}
		}
		// Exactly ahead has travel 0, which is neither below 0 nor above it.
		if st := c.Classify(geom.Point{X: 5}); st.Kind != Right {
			t.Fatalf("snap=%v straight ahead kind=%v want right", snap, st.Kind)
		}
	}
}

func TestClassify_IsPure(t *testing.T) {
	c := newTestClassifier()
	v := geom.Point{X: 1, Y: 3}
	a := c.Classify(v)
	b := c.Classify(v)
	if diff := cmp.Diff(a, b, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("Classify not deterministic (-first +second):\n%s", diff)
	}
}

func TestRead_PackagesReading(t *testing.T) {
	c := newTestClassifier()
	got := c.Read(geom.Point{X: 0, Y: 2}, 3)
	want := Reading{
		State:       State{Kind: Left, TurnDeg: 90, TravelDeg: 90},
		Vector:      geom.Point{X: 0, Y: 2},
		Distance:    2,
		Destination: 3,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestNewClassifier_NormalizesSnap(t *testing.T) {
	c := NewClassifier(geom.Angle(2*math.Pi+0.1), 1)
	if math.Abs(float64(c.SnapTolerance())-0.1) > 1e-12 {
		t.Fatalf("snap=%v want 0.1", c.SnapTolerance())
	}
}
