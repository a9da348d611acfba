package buttons

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Reader returns the set of buttons currently held down.
type Reader interface {
	Read() (Button, error)
}

// Poller samples a Reader at a fixed rate, debounces it and queues the
// resulting actions for Poll.
type Poller struct {
	r   Reader
	deb *Debouncer
	st  State
	q   Queue

	clk      clock.Clock
	interval time.Duration
	log      *zap.SugaredLogger
	failing  bool
}

func NewPoller(r Reader, debounceReads int, interval time.Duration, clk clock.Clock, log *zap.SugaredLogger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Poller{r: r, deb: NewDebouncer(debounceReads), clk: clk, interval: interval, log: log}
}

// Sample takes one reading. Read errors count as nothing pressed.
func (p *Poller) Sample() {
	raw, err := p.r.Read()
	if err != nil {
		if !p.failing {
			p.log.Warnf("buttons: read failed: %v", err)
		}
		p.failing = true
		raw = None
	} else if p.failing {
		p.log.Infof("buttons: read recovered")
		p.failing = false
	}
	p.st.Update(p.deb.Feed(raw))
	if pressed := p.st.Pressed(); pressed != None {
		p.log.Debugf("buttons: pressed %s", pressed)
		p.q.Push(Actions(pressed)...)
	}
}

// Poll drains queued actions.
func (p *Poller) Poll() []Event { return p.q.Poll() }

// Run samples until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	t := p.clk.Ticker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.Sample()
		}
	}
}

// Pins are GPIO line offsets; a negative offset leaves that button unwired.
type Pins struct {
	Left, Right, Up, Down, Enter int
}

func (p Pins) wired() (offsets []int, flags []Button) {
	for _, w := range []struct {
		line int
		b    Button
	}{{p.Left, Left}, {p.Right, Right}, {p.Up, Up}, {p.Down, Down}, {p.Enter, Enter}} {
		if w.line >= 0 {
			offsets = append(offsets, w.line)
			flags = append(flags, w.b)
		}
	}
	return offsets, flags
}
