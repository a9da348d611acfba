package orientation

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// Sample is one orientation reading delivered to the navigator.
//
// Angles are radians. Yaw is clockwise-positive, as reported by the IMU.
// Micros is a wrapping microsecond counter; only differences between
// consecutive samples are meaningful.
type Sample struct {
	Yaw    float64
	Pitch  float64
	Roll   float64
	Micros uint32
}

// Source is anything that can deliver samples over time: the IMU, a scripted
// scenario or a recorded log.
//
// Run blocks, writing samples to out until ctx is done or the source is
// exhausted. It does not close out.
type Source interface {
	Run(ctx context.Context, out chan<- Sample) error
}

// Stamper turns a clock into a wrapping microsecond counter, like the
// micros() timer on a microcontroller.
type Stamper struct {
	clk   clock.Clock
	epoch time.Time
}

func NewStamper(clk clock.Clock) Stamper {
	if clk == nil {
		clk = clock.New()
	}
	return Stamper{clk: clk, epoch: clk.Now()}
}

// Micros returns microseconds since the stamper was created, modulo 2^32.
func (s Stamper) Micros() uint32 {
	return MicrosOf(s.clk.Since(s.epoch))
}

// MicrosOf truncates d to a wrapping microsecond stamp.
func MicrosOf(d time.Duration) uint32 {
	if d < 0 {
		d = 0
	}
	return uint32(uint64(d.Microseconds()))
}

// Send delivers s unless ctx is done first.
func Send(ctx context.Context, out chan<- Sample, s Sample) error {
	select {
	case out <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
