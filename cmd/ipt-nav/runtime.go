package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ipt-nav/internal/ahrs"
	"ipt-nav/internal/buttons"
	"ipt-nav/internal/config"
	"ipt-nav/internal/device"
	"ipt-nav/internal/display"
	"ipt-nav/internal/geom"
	"ipt-nav/internal/leds"
	"ipt-nav/internal/orientation"
	"ipt-nav/internal/replay"
	"ipt-nav/internal/sim"
)

// terminalLEDs is the on-screen bar width when no LED strip is configured.
const terminalLEDs = 8

// runtime holds the process-wide collaborators, swapped in tests.
type runtime struct {
	clk clock.Clock
	log *zap.SugaredLogger

	openTerminal func(nLEDs int, pwm bool, log *zap.SugaredLogger) (*display.Terminal, error)
	openButtons  func(chip string, pins buttons.Pins) (buttons.Reader, io.Closer, error)
	openLEDs     func(chip string, offsets []int) (leds.Sink, io.Closer, error)
}

func newRuntime(log *zap.SugaredLogger) runtime {
	return runtime{
		clk: clock.New(),
		log: log,
		openTerminal: func(n int, pwm bool, log *zap.SugaredLogger) (*display.Terminal, error) {
			return display.NewTerminal(nil, n, pwm, log)
		},
		openButtons: func(chip string, pins buttons.Pins) (buttons.Reader, io.Closer, error) {
			g, err := buttons.OpenGPIO(chip, pins)
			if err != nil {
				return nil, nil, err
			}
			return g, g, nil
		},
		openLEDs: func(chip string, offsets []int) (leds.Sink, io.Closer, error) {
			g, err := leds.OpenGPIO(chip, offsets)
			if err != nil {
				return nil, nil, err
			}
			return g, g, nil
		},
	}
}

// closers releases resources in reverse order of acquisition.
type closers []io.Closer

func (c *closers) add(cl io.Closer) { *c = append(*c, cl) }

func (c closers) Close() error {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		err = multierr.Append(err, c[i].Close())
	}
	return err
}

// sensor is the opened orientation source plus the controls only the IMU
// offers. Nil fields are not available for the selected source.
type sensor struct {
	src    orientation.Source
	recal  device.Recalibrator
	level  device.Leveler
	closer io.Closer
}

// openSource builds the configured orientation source.
func openSource(cfg config.SensorConfig, rt runtime) (sensor, error) {
	switch cfg.Source {
	case config.SourceIMU:
		svc := ahrs.New(ahrs.Config{
			I2CBus:             cfg.I2CBus,
			Addr:               cfg.Address,
			Interval:           cfg.Interval,
			CalibrationSamples: cfg.CalibrationSamples,
		}, rt.clk, rt.log.Named("ahrs"))
		if err := svc.Open(); err != nil {
			return sensor{}, err
		}
		return sensor{src: svc, recal: svc, level: svc, closer: svc}, nil
	case config.SourceScenario:
		scn, err := sim.LoadScenario(cfg.Scenario.Path)
		if err != nil {
			return sensor{}, fmt.Errorf("scenario %s: %w", cfg.Scenario.Path, err)
		}
		return sensor{src: sim.NewSource(scn, cfg.Scenario.Loop, rt.clk, rt.log.Named("sim"))}, nil
	case config.SourceReplay:
		recs, err := replay.ReadFile(cfg.Replay.Path)
		if err != nil {
			return sensor{}, fmt.Errorf("replay %s: %w", cfg.Replay.Path, err)
		}
		return sensor{src: replay.NewSource(recs, cfg.Replay.Speed, cfg.Replay.Loop, rt.clk, rt.log.Named("replay"))}, nil
	default:
		return sensor{}, fmt.Errorf("unknown sensor source %q", cfg.Source)
	}
}

// run wires everything from cfg and blocks until ctx is done, the source is
// exhausted or the user quits.
func run(ctx context.Context, cfg config.Config, rt runtime) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var res closers
	defer func() { err = multierr.Append(err, res.Close()) }()

	sn, err := openSource(cfg.Sensor, rt)
	if err != nil {
		return err
	}
	if sn.closer != nil {
		res.add(sn.closer)
	}

	opts := device.Options{Recalibrator: sn.recal, Leveler: sn.level, Clock: rt.clk, Log: rt.log.Named("device")}
	if cfg.Record.Enable {
		w, err := replay.CreateWriter(cfg.Record.Path, rt.clk.Now())
		if err != nil {
			return fmt.Errorf("record %s: %w", cfg.Record.Path, err)
		}
		res.add(w)
		opts.Recorder = w
		rt.log.Infof("recording samples to %s", cfg.Record.Path)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	var inputs buttons.Multi
	switch cfg.Display.Backend {
	case config.BackendTerminal:
		n := len(cfg.LEDs.Pins)
		if n == 0 {
			n = terminalLEDs
		}
		term, err := rt.openTerminal(n, cfg.LEDs.PWM, rt.log.Named("terminal"))
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		res.add(term)
		opts.Panel = term
		opts.Quit = term.Done()
		inputs = append(inputs, term.Events())
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = term.Run(ctx)
		}()
	case config.BackendLog:
		opts.Panel = display.NewLogPanel(rt.log.Named("display"))
	default:
		opts.Panel = display.Nop{}
	}

	if cfg.Buttons.Enable {
		p := cfg.Buttons.Pins
		r, cl, err := rt.openButtons(cfg.Buttons.Chip, buttons.Pins{Left: p.Left, Right: p.Right, Up: p.Up, Down: p.Down, Enter: p.Enter})
		if err != nil {
			return err
		}
		res.add(cl)
		poller := buttons.NewPoller(r, cfg.Buttons.DebounceReads, cfg.Buttons.Poll, rt.clk, rt.log.Named("buttons"))
		inputs = append(inputs, poller)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = poller.Run(ctx)
		}()
	}
	if len(inputs) > 0 {
		opts.Input = inputs
	}

	if cfg.LEDs.Enable {
		sink, cl, err := rt.openLEDs(cfg.LEDs.Chip, cfg.LEDs.Pins)
		if err != nil {
			return err
		}
		res.add(cl)
		opts.LEDs = leds.NewBar(sink, cfg.LEDs.PWM)
	}

	nc := cfg.Navigation
	dev := device.New(device.Config{
		Destinations:      nc.Waypoints,
		SnapToleranceDeg:  *nc.SnapToleranceDeg,
		ArrivalToleranceM: *nc.ArrivalToleranceM,
		SpeedTable:        nc.SpeedTable,
		Idle:              nc.Idle,
		Refresh:           cfg.Display.Refresh,
		Unit:              cfg.Display.Unit,
	}, opts)
	for _, s := range nc.SeedWaypoints {
		if err := dev.SeedDestination(s.Slot, geom.Point{X: s.X, Y: s.Y}); err != nil {
			return err
		}
	}

	samples := make(chan orientation.Sample, 64)
	var srcErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(samples)
		srcErr = sn.src.Run(ctx, samples)
	}()

	devErr := dev.Run(ctx, samples)
	cancel()
	wg.Wait()

	snap := dev.Snapshot()
	rt.log.Infof("final position=(%.2f, %.2f) heading=%.0f samples=%d", snap.Position.X, snap.Position.Y, snap.HeadingDeg, snap.Samples)
	return multierr.Combine(devErr, srcErr)
}
