// Package leds shows a proportion on a row of LEDs.
package leds

import (
	"fmt"
	"math"
)

// PWMSteps is the number of brightness levels a partially lit LED can take
// when PWM is enabled: dim, medium and full.
const PWMSteps = 3

// PWMStep is the duty difference between adjacent brightness levels.
const PWMStep = 255 / PWMSteps

// Levels returns a brightness (0..255) per LED for percent in [0, 1].
// The first floor(percent*n) LEDs are fully lit. With pwm, the next LED shows
// the remainder at one of PWMSteps levels. Percent outside [0, 1] (or NaN)
// is rejected with ok=false so callers keep the previous display.
func Levels(percent float64, n int, pwm bool) (levels []uint8, ok bool) {
	if !(percent >= 0 && percent <= 1) || n <= 0 {
		return nil, false
	}
	levels = make([]uint8, n)
	on := int(percent * float64(n))
	for i := 0; i < on && i < n; i++ {
		levels[i] = 255
	}
	if pwm && on < n {
		partial := int(float64(n*PWMSteps)*percent) - on*PWMSteps
		if partial > 0 {
			levels[on] = uint8(partial * PWMStep)
		}
	}
	return levels, true
}

// Sink displays per-LED levels.
type Sink interface {
	Set(levels []uint8) error
	Len() int
}

// ProximityMeter scales distances against the largest one seen, so the bar
// starts full after a waypoint is set and drains as the user approaches.
type ProximityMeter struct {
	max float64
}

// minMax keeps the first ratio finite.
const minMax = 1e-8

func NewProximityMeter() *ProximityMeter { return &ProximityMeter{max: minMax} }

// Percent records dist and returns dist/max in [0, 1].
func (m *ProximityMeter) Percent(dist float64) float64 {
	if math.IsNaN(dist) || dist < 0 {
		return 0
	}
	if dist > m.max {
		m.max = dist
	}
	return dist / m.max
}

func (m *ProximityMeter) Max() float64 { return m.max }

// Reset forgets the maximum, e.g. after a new destination is selected.
func (m *ProximityMeter) Reset() { m.max = minMax }

// Bar renders percentages onto a Sink.
type Bar struct {
	sink Sink
	pwm  bool
	last []uint8
}

func NewBar(sink Sink, pwm bool) *Bar { return &Bar{sink: sink, pwm: pwm} }

// Show lights the bar for percent. Out-of-range values leave it unchanged.
func (b *Bar) Show(percent float64) error {
	if b == nil || b.sink == nil {
		return nil
	}
	lv, ok := Levels(percent, b.sink.Len(), b.pwm)
	if !ok {
		return nil
	}
	if equal(lv, b.last) {
		return nil
	}
	if err := b.sink.Set(lv); err != nil {
		return fmt.Errorf("leds: set: %w", err)
	}
	b.last = lv
	return nil
}

// Last returns the levels most recently written.
func (b *Bar) Last() []uint8 { return append([]uint8(nil), b.last...) }

func equal(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
