// Package ahrs turns raw MPU-6050 readings into an orientation stream.
package ahrs

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"ipt-nav/internal/i2c"
	"ipt-nav/internal/orientation"
	"ipt-nav/internal/sensors/mpu6050"
)

type Config struct {
	I2CBus             int
	Addr               uint16
	Interval           time.Duration
	CalibrationSamples int
}

type Snapshot struct {
	Valid      bool
	Calibrated bool

	RollDeg  float64
	PitchDeg float64
	YawDeg   float64
	TempC    float64

	GyroBiasDegPerSec [3]float64
	Samples           uint64

	LastError string
	UpdatedAt time.Time
}

// IMU is the part of the sensor driver the service needs.
type IMU interface {
	Read() (mpu6050.Sample, error)
}

var openIMU = func(cfg Config) (IMU, io.Closer, error) {
	bus, err := i2c.OpenNumber(cfg.I2CBus)
	if err != nil {
		return nil, nil, err
	}
	rate := 0
	if cfg.Interval > 0 {
		rate = int(time.Second / cfg.Interval)
	}
	dev, err := mpu6050.New(bus.Dev(cfg.Addr), mpu6050.Options{RateHz: rate})
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	return dev, bus, nil
}

// Service polls the IMU on a ticker and publishes orientation samples.
// It implements orientation.Source.
type Service struct {
	cfg Config
	clk clock.Clock
	log *zap.SugaredLogger

	imu    IMU
	closer io.Closer

	// est is owned by the Run goroutine.
	est     estimator
	recalCh chan struct{}

	mu          sync.RWMutex
	snap        Snapshot
	rollOffset  float64
	pitchOffset float64

	closeOnce sync.Once
}

func New(cfg Config, clk clock.Clock, log *zap.SugaredLogger) *Service {
	if cfg.Addr == 0 {
		cfg.Addr = mpu6050.AddrDefault
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 20 * time.Millisecond
	}
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		cfg:     cfg,
		clk:     clk,
		log:     log,
		est:     newEstimator(cfg.CalibrationSamples),
		recalCh: make(chan struct{}, 1),
	}
}

// Open probes and configures the sensor. Run calls it if needed.
func (s *Service) Open() error {
	if s == nil {
		return fmt.Errorf("ahrs: service is nil")
	}
	if s.imu != nil {
		return nil
	}
	imu, closer, err := openIMU(s.cfg)
	if err != nil {
		s.setErr(fmt.Sprintf("imu init: %v", err))
		return fmt.Errorf("ahrs: open imu on %s addr 0x%02X: %w", i2c.BusPath(s.cfg.I2CBus), s.cfg.Addr, err)
	}
	s.imu = imu
	s.closer = closer
	s.log.Infof("ahrs: imu ready on %s addr 0x%02X", i2c.BusPath(s.cfg.I2CBus), s.cfg.Addr)
	return nil
}

func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}

func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetLevel re-zeros roll and pitch so the current attitude reads (0,0).
func (s *Service) SetLevel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Valid {
		return fmt.Errorf("ahrs: not valid (%s)", s.snap.LastError)
	}
	s.rollOffset -= s.snap.RollDeg * math.Pi / 180
	s.pitchOffset -= s.snap.PitchDeg * math.Pi / 180
	return nil
}

// Recalibrate asks the run loop to re-estimate gyro bias. It does not block.
func (s *Service) Recalibrate() {
	select {
	case s.recalCh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done. Read errors are recorded in the snapshot and
// polling continues.
func (s *Service) Run(ctx context.Context, out chan<- orientation.Sample) error {
	if err := s.Open(); err != nil {
		return err
	}
	stamp := orientation.NewStamper(s.clk)
	tick := s.clk.Ticker(s.cfg.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.recalCh:
			s.est.recalibrate()
			s.mu.Lock()
			s.snap.Calibrated = s.est.calibrated
			s.mu.Unlock()
			s.log.Infof("ahrs: recalibrating gyro bias over %d samples", s.cfg.CalibrationSamples)
		case <-tick.C:
			raw, err := s.imu.Read()
			if err != nil {
				s.setErr(err.Error())
				continue
			}
			o, ok := s.step(raw, s.clk.Now())
			if !ok {
				continue
			}
			o.Micros = stamp.Micros()
			if err := orientation.Send(ctx, out, o); err != nil {
				return nil
			}
		}
	}
}

func (s *Service) step(raw mpu6050.Sample, now time.Time) (orientation.Sample, bool) {
	wasCalibrated := s.est.calibrated
	ok := s.est.update(raw, now)
	if !wasCalibrated && s.est.calibrated {
		b := s.est.bias
		s.log.Infof("ahrs: gyro bias x=%.3f y=%.3f z=%.3f deg/s", b[0], b[1], b[2])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Samples++
	s.snap.TempC = raw.TempC
	s.snap.Calibrated = s.est.calibrated
	s.snap.GyroBiasDegPerSec = s.est.bias
	s.snap.UpdatedAt = now
	s.snap.LastError = ""
	if !ok {
		s.snap.Valid = false
		return orientation.Sample{}, false
	}
	roll := s.est.roll + s.rollOffset
	pitch := s.est.pitch + s.pitchOffset
	s.snap.Valid = true
	s.snap.RollDeg = roll * 180 / math.Pi
	s.snap.PitchDeg = pitch * 180 / math.Pi
	s.snap.YawDeg = s.est.yaw * 180 / math.Pi
	return orientation.Sample{Yaw: s.est.yaw, Pitch: pitch, Roll: roll}, true
}

func (s *Service) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.LastError == "" {
		s.log.Warnf("ahrs: %s", msg)
	}
	s.snap.LastError = "imu: " + msg
	s.snap.Valid = false
	s.snap.UpdatedAt = s.clk.Now()
}
