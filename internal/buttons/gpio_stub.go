//go:build !linux || (!arm && !arm64)

package buttons

import "fmt"

// GPIO is unavailable off Linux/ARM; use the terminal keyboard instead.
type GPIO struct{}

func OpenGPIO(chip string, pins Pins) (*GPIO, error) {
	if offsets, _ := pins.wired(); len(offsets) == 0 {
		return nil, fmt.Errorf("buttons: no lines wired")
	}
	return nil, fmt.Errorf("buttons: gpio unsupported on this platform")
}

func (g *GPIO) Read() (Button, error) { return None, fmt.Errorf("buttons: gpio unsupported on this platform") }

func (g *GPIO) Close() error { return nil }
