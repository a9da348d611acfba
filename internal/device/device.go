// Package device runs the guidance control loop: it integrates orientation
// samples into a position estimate, applies user input and refreshes the
// display and LED bar.
package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"ipt-nav/internal/buttons"
	"ipt-nav/internal/display"
	"ipt-nav/internal/geom"
	"ipt-nav/internal/guidance"
	"ipt-nav/internal/leds"
	"ipt-nav/internal/nav"
	"ipt-nav/internal/orientation"
	"ipt-nav/internal/units"
)

type Config struct {
	Destinations int
	// SnapToleranceDeg is passed to the classifier as is; config
	// validation keeps it inside (0, 90).
	SnapToleranceDeg  float64
	ArrivalToleranceM float64
	SpeedTable        nav.SpeedTable
	// Idle is the input polling period.
	Idle time.Duration
	// Refresh is the minimum time between display updates.
	Refresh time.Duration
	Unit    units.Length
}

// Recorder receives every integrated sample.
type Recorder interface {
	WriteSample(now time.Time, s orientation.Sample) error
}

// Recalibrator restarts sensor bias estimation.
type Recalibrator interface {
	Recalibrate()
}

// Leveler re-zeros roll and pitch at the current tilt.
type Leveler interface {
	SetLevel() error
}

// Options are the optional collaborators. Nil fields are skipped.
type Options struct {
	Input        buttons.Source
	Panel        display.Panel
	LEDs         *leds.Bar
	Recorder     Recorder
	Recalibrator Recalibrator
	Leveler      Leveler
	// Quit stops Run when closed, e.g. when the user quits the terminal.
	Quit  <-chan struct{}
	Clock clock.Clock
	Log   *zap.SugaredLogger
}

type Snapshot struct {
	Position    geom.Point
	HeadingDeg  float64
	Destination int
	Target      geom.Point
	Unit        units.Length
	Reading     guidance.Reading
	Frame       display.Frame
	Percent     float64
	Samples     uint64
	LastError   string
	UpdatedAt   time.Time
}

// Device is the single writer of the navigator. Only Snapshot may be
// called from other goroutines while Run is active.
type Device struct {
	cfg   Config
	opts  Options
	clk   clock.Clock
	log   *zap.SugaredLogger
	panel display.Panel

	nav        *nav.Navigator
	integrator *nav.Integrator
	classifier guidance.Classifier
	meter      *leds.ProximityMeter
	unit       units.Length

	lastRefresh time.Time
	refreshed   bool
	samples     uint64
	lastErr     string

	mu   sync.RWMutex
	snap Snapshot
}

func New(cfg Config, opts Options) *Device {
	if cfg.Destinations <= 0 {
		cfg.Destinations = nav.DefaultDestinations
	}
	if len(cfg.SpeedTable) == 0 {
		cfg.SpeedTable = nav.DefaultSpeedTable()
	}
	if cfg.Idle <= 0 {
		cfg.Idle = 100 * time.Millisecond
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = 500 * time.Millisecond
	}
	d := &Device{
		cfg:        cfg,
		opts:       opts,
		clk:        opts.Clock,
		log:        opts.Log,
		panel:      opts.Panel,
		nav:        nav.New(cfg.Destinations),
		integrator: nav.NewIntegrator(cfg.SpeedTable),
		classifier: guidance.NewClassifier(geom.FromDegrees(cfg.SnapToleranceDeg), cfg.ArrivalToleranceM),
		meter:      leds.NewProximityMeter(),
		unit:       cfg.Unit,
	}
	if d.clk == nil {
		d.clk = clock.New()
	}
	if d.log == nil {
		d.log = zap.NewNop().Sugar()
	}
	if d.panel == nil {
		d.panel = display.Nop{}
	}
	return d
}

// SeedDestination places waypoint i before Run starts.
func (d *Device) SeedDestination(i int, p geom.Point) error {
	if err := d.nav.SeedDestination(i, p); err != nil {
		return fmt.Errorf("device: seed waypoint %d: %w", i, err)
	}
	return nil
}

// Run consumes samples until ctx is done, samples is closed or Quit fires.
func (d *Device) Run(ctx context.Context, samples <-chan orientation.Sample) error {
	tick := d.clk.Ticker(d.cfg.Idle)
	defer tick.Stop()

	d.render(d.clk.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.opts.Quit:
			d.log.Infof("device: quit requested")
			return nil
		case s, ok := <-samples:
			if !ok {
				d.log.Infof("device: sample source finished after %d samples", d.samples)
				d.render(d.clk.Now())
				return nil
			}
			d.HandleSample(s)
		case now := <-tick.C:
			if d.opts.Input != nil && d.HandleEvents(d.opts.Input.Poll()) {
				d.render(now)
				continue
			}
			d.Refresh(now)
		}
	}
}

// HandleSample integrates s and records it.
func (d *Device) HandleSample(s orientation.Sample) nav.Displacement {
	disp := d.integrator.Step(d.nav, s)
	d.samples++
	if d.opts.Recorder != nil {
		if err := d.opts.Recorder.WriteSample(d.clk.Now(), s); err != nil {
			d.setErr(fmt.Sprintf("record: %v", err))
		}
	}
	return disp
}

// HandleEvents applies input events in order and reports whether anything
// visible changed.
func (d *Device) HandleEvents(events []buttons.Event) bool {
	changed := false
	for _, ev := range events {
		switch ev.Kind {
		case buttons.SetWaypoint:
			d.nav.SetWaypointHere()
			d.meter.Reset()
			p := d.nav.Position()
			d.log.Infof("device: waypoint #%d set to (%.2f, %.2f)", d.nav.DestinationIndex(), p.X, p.Y)
		case buttons.CycleForward, buttons.CycleBackward:
			d.nav.CycleDestination(ev.Kind == buttons.CycleForward)
			d.meter.Reset()
			d.log.Debugf("device: destination #%d", d.nav.DestinationIndex())
		case buttons.JumpTo:
			if err := d.nav.SelectDestination(ev.Index); err != nil {
				d.log.Warnf("device: select waypoint %d: %v", ev.Index, err)
				continue
			}
			d.meter.Reset()
		case buttons.NextUnit:
			d.unit = d.unit.Next(1)
		case buttons.PrevUnit:
			d.unit = d.unit.Next(-1)
		case buttons.Recalibrate:
			if d.opts.Recalibrator == nil {
				continue
			}
			d.opts.Recalibrator.Recalibrate()
			d.log.Infof("device: recalibration requested")
		case buttons.Level:
			if d.opts.Leveler == nil {
				continue
			}
			if err := d.opts.Leveler.SetLevel(); err != nil {
				d.log.Warnf("device: level: %v", err)
				continue
			}
			d.log.Infof("device: roll and pitch zeroed")
		default:
			d.log.Warnf("device: unhandled event %v", ev.Kind)
			continue
		}
		changed = true
	}
	return changed
}

// Evaluate classifies the direction to the current destination.
func (d *Device) Evaluate() guidance.Reading {
	return d.classifier.Read(d.nav.Direction(), d.nav.DestinationIndex())
}

// Refresh redraws when at least the refresh period has passed since the
// previous draw, and reports whether it did.
func (d *Device) Refresh(now time.Time) bool {
	if d.refreshed && now.Sub(d.lastRefresh) < d.cfg.Refresh {
		return false
	}
	d.render(now)
	return true
}

func (d *Device) render(now time.Time) {
	r := d.Evaluate()
	f := display.Format(r, d.nav.Destination(), d.unit)
	f.Status = display.StatusLine(d.nav.Position(), d.nav.Heading(), d.unit)
	pct := d.meter.Percent(r.Distance)

	if err := d.panel.Show(f, pct); err != nil {
		d.setErr(fmt.Sprintf("display: %v", err))
	}
	if err := d.opts.LEDs.Show(pct); err != nil {
		d.setErr(err.Error())
	}
	d.lastRefresh = now
	d.refreshed = true

	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = Snapshot{
		Position:    d.nav.Position(),
		HeadingDeg:  d.nav.Heading().Deg(),
		Destination: d.nav.DestinationIndex(),
		Target:      d.nav.Destination(),
		Unit:        d.unit,
		Reading:     r,
		Frame:       f,
		Percent:     pct,
		Samples:     d.samples,
		LastError:   d.lastErr,
		UpdatedAt:   now,
	}
}

func (d *Device) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

func (d *Device) setErr(msg string) {
	if d.lastErr != msg {
		d.log.Warnf("device: %s", msg)
	}
	d.lastErr = msg
}
