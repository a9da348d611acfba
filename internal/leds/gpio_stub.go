//go:build !linux || (!arm && !arm64)

package leds

import "fmt"

type GPIO struct{}

func OpenGPIO(chip string, offsets []int) (*GPIO, error) {
	return nil, fmt.Errorf("leds: gpio unsupported on this platform")
}

func (g *GPIO) Len() int                 { return 0 }
func (g *GPIO) Set(levels []uint8) error { return fmt.Errorf("leds: gpio unsupported on this platform") }
func (g *GPIO) Close() error             { return nil }
