//go:build linux && (arm || arm64)

package buttons

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO reads buttons wired between a line and ground, using the internal
// pull-ups so a pressed button reads active.
type GPIO struct {
	lines *gpiocdev.Lines
	flags []Button
	vals  []int
}

func openGPIO(chip string, pins Pins) (*GPIO, error) {
	offsets, flags := pins.wired()
	if len(offsets) == 0 {
		return nil, fmt.Errorf("buttons: no lines wired")
	}
	lines, err := gpiocdev.RequestLines(chip, offsets,
		gpiocdev.AsInput,
		gpiocdev.AsActiveLow,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("ipt-nav-buttons"))
	if err != nil {
		return nil, fmt.Errorf("buttons: request lines %v on %s: %w", offsets, chip, err)
	}
	return &GPIO{lines: lines, flags: flags, vals: make([]int, len(offsets))}, nil
}

var openGPIOFn = openGPIO

// OpenGPIO requests the wired lines on chip (e.g. "gpiochip0").
func OpenGPIO(chip string, pins Pins) (*GPIO, error) { return openGPIOFn(chip, pins) }

func (g *GPIO) Read() (Button, error) {
	if g == nil || g.lines == nil {
		return None, fmt.Errorf("buttons: gpio not initialized")
	}
	if err := g.lines.Values(g.vals); err != nil {
		return None, err
	}
	var b Button
	for i, v := range g.vals {
		if v == 1 {
			b |= g.flags[i]
		}
	}
	return b, nil
}

func (g *GPIO) Close() error {
	if g == nil || g.lines == nil {
		return nil
	}
	err := g.lines.Close()
	g.lines = nil
	return err
}
