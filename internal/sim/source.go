package sim

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"ipt-nav/internal/orientation"
)

// Source plays a Scenario in real time as an orientation.Source.
type Source struct {
	scn  *Scenario
	loop bool
	clk  clock.Clock
	log  *zap.SugaredLogger
}

// NewSource plays scn. loop overrides the script's own loop flag when true.
func NewSource(scn *Scenario, loop bool, clk clock.Clock, log *zap.SugaredLogger) *Source {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Source{scn: scn, loop: loop || scn.Loop(), clk: clk, log: log}
}

// Run emits one sample per scenario interval. Without looping it returns
// after the sample at the scenario's end has been delivered.
func (s *Source) Run(ctx context.Context, out chan<- orientation.Sample) error {
	start := s.clk.Now()
	tick := s.clk.Ticker(s.scn.Interval())
	defer tick.Stop()

	s.log.Infof("sim: scenario started duration=%s interval=%s loop=%v", s.scn.Duration(), s.scn.Interval(), s.loop)
	if err := orientation.Send(ctx, out, s.scn.SampleAt(0, s.loop)); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			elapsed := now.Sub(start)
			if !s.loop && elapsed > s.scn.Duration() {
				elapsed = s.scn.Duration()
			}
			if err := orientation.Send(ctx, out, s.scn.SampleAt(elapsed, s.loop)); err != nil {
				return nil
			}
			if !s.loop && elapsed >= s.scn.Duration() {
				s.log.Infof("sim: scenario finished after %s", elapsed.Round(time.Millisecond))
				return nil
			}
		}
	}
}
