package leds

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLevels(t *testing.T) {
	cases := []struct {
		name    string
		percent float64
		n       int
		pwm     bool
		want    []uint8
	}{
		{"Empty", 0, 4, false, []uint8{0, 0, 0, 0}},
		{"Full", 1, 4, false, []uint8{255, 255, 255, 255}},
		{"Half", 0.5, 4, false, []uint8{255, 255, 0, 0}},
		{"Floors", 0.74, 4, false, []uint8{255, 255, 0, 0}},
		// 0.6 of 12 states is 7.2 -> 7, two full LEDs (6) plus one step.
		{"PWMOneStep", 0.6, 4, true, []uint8{255, 255, 85, 0}},
		// 0.65 of 12 is 7.8 -> 7 as well.
		{"PWMTruncates", 0.65, 4, true, []uint8{255, 255, 85, 0}},
		// 0.7 of 12 is 8.4 -> 8, two steps.
		{"PWMTwoSteps", 0.7, 4, true, []uint8{255, 255, 170, 0}},
		{"PWMFull", 1, 4, true, []uint8{255, 255, 255, 255}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Levels(tc.percent, tc.n, tc.pwm)
			if !ok {
				t.Fatalf("Levels rejected %v", tc.percent)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("levels (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLevels_RejectsOutOfRange(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		if _, ok := Levels(p, 4, true); ok {
			t.Fatalf("Levels(%v) accepted", p)
		}
	}
	if _, ok := Levels(0.5, 0, false); ok {
		t.Fatalf("zero LEDs accepted")
	}
}

func TestProximityMeter(t *testing.T) {
	m := NewProximityMeter()
	if got := m.Percent(0); got != 0 {
		t.Fatalf("percent=%v want 0", got)
	}
	if got := m.Percent(10); got != 1 {
		t.Fatalf("percent=%v want 1 at new max", got)
	}
	if got := m.Percent(2.5); got != 0.25 {
		t.Fatalf("percent=%v want 0.25", got)
	}
	if got := m.Percent(math.NaN()); got != 0 {
		t.Fatalf("NaN percent=%v", got)
	}
	m.Reset()
	if m.Max() != 1e-8 {
		t.Fatalf("max=%v after reset", m.Max())
	}
}

type fakeSink struct {
	n      int
	writes [][]uint8
	err    error
}

func (f *fakeSink) Len() int { return f.n }

func (f *fakeSink) Set(levels []uint8) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, append([]uint8(nil), levels...))
	return nil
}

func TestBar_SkipsUnchangedAndInvalid(t *testing.T) {
	s := &fakeSink{n: 3}
	b := NewBar(s, false)
	for _, p := range []float64{0.5, 0.6, 2, 1} {
		if err := b.Show(p); err != nil {
			t.Fatalf("Show(%v): %v", p, err)
		}
	}
	want := [][]uint8{{255, 0, 0}, {255, 255, 255}}
	if diff := cmp.Diff(want, s.writes); diff != "" {
		t.Fatalf("writes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint8{255, 255, 255}, b.Last()); diff != "" {
		t.Fatalf("last (-want +got):\n%s", diff)
	}
}

func TestBar_SinkError(t *testing.T) {
	b := NewBar(&fakeSink{n: 2, err: errors.New("busy")}, false)
	if err := b.Show(1); err == nil || err.Error() != "leds: set: busy" {
		t.Fatalf("err=%v", err)
	}
}

func TestBar_NilSink(t *testing.T) {
	if err := NewBar(nil, true).Show(0.5); err != nil {
		t.Fatalf("err=%v", err)
	}
}
