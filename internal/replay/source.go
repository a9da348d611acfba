package replay

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"ipt-nav/internal/orientation"
)

// Source plays recorded samples as an orientation.Source. Micros come from
// the recorded offsets, so integration gives the same track at any speed.
type Source struct {
	records []Record
	speed   float64
	loop    bool
	clk     clock.Clock
	log     *zap.SugaredLogger
}

func NewSource(records []Record, speed float64, loop bool, clk clock.Clock, log *zap.SugaredLogger) *Source {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Source{records: records, speed: speed, loop: loop, clk: clk, log: log}
}

// ctxSleeper waits on the clock but wakes early when ctx is done.
type ctxSleeper struct {
	ctx context.Context
	clk clock.Clock
}

func (s ctxSleeper) Sleep(d time.Duration) {
	t := s.clk.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.ctx.Done():
	}
}

// Run returns nil when ctx is done or the log is exhausted.
func (s *Source) Run(ctx context.Context, out chan<- orientation.Sample) error {
	s.log.Infof("replay: playing %d records speed=%.2f loop=%v", len(s.records), s.speed, s.loop)
	sent := 0
	err := Play(s.records, s.speed, s.loop, ctxSleeper{ctx: ctx, clk: s.clk}, func(at time.Duration, r Record) error {
		if err := orientation.Send(ctx, out, r.Sample(orientation.MicrosOf(at))); err != nil {
			return err
		}
		sent++
		return nil
	})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Infof("replay: finished after %d samples", sent)
	return nil
}
