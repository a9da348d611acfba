//go:build linux && (arm || arm64)

package leds

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO drives one line per LED. The character device has no PWM, so a
// partial level lights the LED only when it reaches full brightness.
type GPIO struct {
	lines *gpiocdev.Lines
	n     int
	vals  []int
}

func openGPIO(chip string, offsets []int) (*GPIO, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("leds: no lines")
	}
	lines, err := gpiocdev.RequestLines(chip, offsets,
		gpiocdev.AsOutput(make([]int, len(offsets))...),
		gpiocdev.WithConsumer("ipt-nav-leds"))
	if err != nil {
		return nil, fmt.Errorf("leds: request lines %v on %s: %w", offsets, chip, err)
	}
	return &GPIO{lines: lines, n: len(offsets), vals: make([]int, len(offsets))}, nil
}

var openGPIOFn = openGPIO

func OpenGPIO(chip string, offsets []int) (*GPIO, error) { return openGPIOFn(chip, offsets) }

func (g *GPIO) Len() int {
	if g == nil {
		return 0
	}
	return g.n
}

func (g *GPIO) Set(levels []uint8) error {
	if g == nil || g.lines == nil {
		return fmt.Errorf("leds: gpio not initialized")
	}
	for i := range g.vals {
		g.vals[i] = 0
		if i < len(levels) && levels[i] == 255 {
			g.vals[i] = 1
		}
	}
	return g.lines.SetValues(g.vals)
}

func (g *GPIO) Close() error {
	if g == nil || g.lines == nil {
		return nil
	}
	_ = g.lines.SetValues(make([]int, g.n))
	err := g.lines.Close()
	g.lines = nil
	return err
}
