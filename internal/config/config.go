package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ipt-nav/internal/logging"
	"ipt-nav/internal/nav"
	"ipt-nav/internal/units"
)

type Config struct {
	Navigation NavigationConfig `yaml:"navigation"`
	Sensor     SensorConfig     `yaml:"sensor"`
	Record     RecordConfig     `yaml:"record"`
	Display    DisplayConfig    `yaml:"display"`
	Buttons    ButtonsConfig    `yaml:"buttons"`
	LEDs       LEDConfig        `yaml:"leds"`
	Log        logging.Config   `yaml:"log"`
}

type NavigationConfig struct {
	Waypoints int `yaml:"waypoints"`
	// The tolerances are nil until DefaultAndValidate fills them, so an
	// explicit 0 is told apart from an unset field.
	SnapToleranceDeg  *float64       `yaml:"snap_tolerance_deg"`
	ArrivalToleranceM *float64       `yaml:"arrival_tolerance_m"`
	SeedWaypoints     []SeedWaypoint `yaml:"seed_waypoints"`
	SpeedTable        nav.SpeedTable `yaml:"speed_table"`
	// Idle is how often the control loop polls buttons and checks the
	// refresh timer when no samples arrive.
	Idle time.Duration `yaml:"idle"`
}

type SeedWaypoint struct {
	Slot int     `yaml:"slot"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

const (
	SourceIMU      = "imu"
	SourceScenario = "scenario"
	SourceReplay   = "replay"
)

type SensorConfig struct {
	Source             string         `yaml:"source"`
	I2CBus             int            `yaml:"i2c_bus"`
	Address            uint16         `yaml:"address"`
	Interval           time.Duration  `yaml:"interval"`
	CalibrationSamples int            `yaml:"calibration_samples"`
	Scenario           ScenarioConfig `yaml:"scenario"`
	Replay             ReplayConfig   `yaml:"replay"`
}

type ScenarioConfig struct {
	Path string `yaml:"path"`
	Loop bool   `yaml:"loop"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

const (
	BackendTerminal = "terminal"
	BackendLog      = "log"
	BackendNone     = "none"
)

type DisplayConfig struct {
	Backend string        `yaml:"backend"`
	Refresh time.Duration `yaml:"refresh"`
	Unit    units.Length  `yaml:"unit"`
}

type ButtonsConfig struct {
	Enable        bool          `yaml:"enable"`
	Chip          string        `yaml:"chip"`
	Pins          ButtonPins    `yaml:"pins"`
	DebounceReads int           `yaml:"debounce_reads"`
	Poll          time.Duration `yaml:"poll"`
}

// ButtonPins are GPIO line offsets on Chip. Negative means not wired.
type ButtonPins struct {
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
	Up    int `yaml:"up"`
	Down  int `yaml:"down"`
	Enter int `yaml:"enter"`
}

type LEDConfig struct {
	Enable bool   `yaml:"enable"`
	Chip   string `yaml:"chip"`
	Pins   []int  `yaml:"pins"`
	PWM    bool   `yaml:"pwm"`
}

// Load reads a YAML config, rejecting unknown fields, and applies defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes YAML bytes the same way Load does.
func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return Config{}, fmt.Errorf("config contains unknown fields: %w", err)
		}
		return Config{}, err
	}
	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills zero values with defaults and rejects
// inconsistent settings. An empty Config is valid after this call.
func DefaultAndValidate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	n := &cfg.Navigation
	if n.Waypoints == 0 {
		n.Waypoints = nav.DefaultDestinations
	}
	if n.Waypoints < 0 {
		return fmt.Errorf("navigation.waypoints must be > 0")
	}
	if n.SnapToleranceDeg == nil {
		n.SnapToleranceDeg = float64Ptr(10)
	}
	if v := *n.SnapToleranceDeg; !(v > 0 && v < 90) {
		return fmt.Errorf("navigation.snap_tolerance_deg must be in (0, 90)")
	}
	if n.ArrivalToleranceM == nil {
		n.ArrivalToleranceM = float64Ptr(0.5)
	}
	if v := *n.ArrivalToleranceM; !(v >= 0) {
		return fmt.Errorf("navigation.arrival_tolerance_m must be >= 0")
	}
	for i, s := range n.SeedWaypoints {
		if s.Slot < 0 || s.Slot >= n.Waypoints {
			return fmt.Errorf("navigation.seed_waypoints[%d].slot must be in [0, %d)", i, n.Waypoints)
		}
	}
	if len(n.SpeedTable) == 0 {
		n.SpeedTable = nav.DefaultSpeedTable()
	}
	for i := 1; i < len(n.SpeedTable); i++ {
		if n.SpeedTable[i].MaxPitchDeg <= n.SpeedTable[i-1].MaxPitchDeg {
			return fmt.Errorf("navigation.speed_table must be ordered by increasing max_pitch_deg")
		}
	}
	for _, s := range n.SpeedTable {
		if s.SpeedMPS < 0 {
			return fmt.Errorf("navigation.speed_table speeds must be >= 0")
		}
	}
	if n.Idle <= 0 {
		n.Idle = 100 * time.Millisecond
	}

	s := &cfg.Sensor
	if s.Source == "" {
		s.Source = SourceIMU
	}
	switch s.Source {
	case SourceIMU:
		if s.Address == 0 {
			s.Address = 0x68
		}
		if s.I2CBus < 0 {
			return fmt.Errorf("sensor.i2c_bus must be >= 0")
		}
	case SourceScenario:
		if strings.TrimSpace(s.Scenario.Path) == "" {
			return fmt.Errorf("sensor.scenario.path is required when sensor.source is 'scenario'")
		}
	case SourceReplay:
		if strings.TrimSpace(s.Replay.Path) == "" {
			return fmt.Errorf("sensor.replay.path is required when sensor.source is 'replay'")
		}
		if s.Replay.Speed == 0 {
			s.Replay.Speed = 1
		}
		if s.Replay.Speed < 0 {
			return fmt.Errorf("sensor.replay.speed must be > 0")
		}
	default:
		return fmt.Errorf("sensor.source must be one of 'imu', 'scenario', 'replay'")
	}
	if s.Interval <= 0 {
		s.Interval = 20 * time.Millisecond
	}
	if s.CalibrationSamples <= 0 {
		s.CalibrationSamples = 100
	}

	if cfg.Record.Enable {
		if strings.TrimSpace(cfg.Record.Path) == "" {
			return fmt.Errorf("record.path is required when record.enable is true")
		}
		if s.Source == SourceReplay {
			return fmt.Errorf("record and sensor.source 'replay' cannot both be enabled")
		}
	}

	d := &cfg.Display
	if d.Backend == "" {
		d.Backend = BackendTerminal
	}
	switch d.Backend {
	case BackendTerminal, BackendLog, BackendNone:
	default:
		return fmt.Errorf("display.backend must be one of 'terminal', 'log', 'none'")
	}
	if d.Refresh <= 0 {
		d.Refresh = 500 * time.Millisecond
	}

	b := &cfg.Buttons
	if b.Enable {
		if strings.TrimSpace(b.Chip) == "" {
			b.Chip = "gpiochip0"
		}
		if b.DebounceReads <= 0 {
			b.DebounceReads = 3
		}
		if b.Poll <= 0 {
			b.Poll = 10 * time.Millisecond
		}
		p := b.Pins
		if p.Left < 0 && p.Right < 0 && p.Up < 0 && p.Down < 0 && p.Enter < 0 {
			return fmt.Errorf("buttons.pins must wire at least one button when buttons.enable is true")
		}
		used := map[int]string{}
		for _, bp := range []struct {
			name string
			line int
		}{{"left", p.Left}, {"right", p.Right}, {"up", p.Up}, {"down", p.Down}, {"enter", p.Enter}} {
			if bp.line < 0 {
				continue
			}
			if prev, ok := used[bp.line]; ok {
				return fmt.Errorf("buttons.pins.%s and buttons.pins.%s share line %d", prev, bp.name, bp.line)
			}
			used[bp.line] = bp.name
		}
	}

	l := &cfg.LEDs
	if l.Enable {
		if strings.TrimSpace(l.Chip) == "" {
			l.Chip = "gpiochip0"
		}
		if len(l.Pins) == 0 {
			return fmt.Errorf("leds.pins is required when leds.enable is true")
		}
		seen := map[int]bool{}
		for _, p := range l.Pins {
			if p < 0 {
				return fmt.Errorf("leds.pins must be >= 0")
			}
			if seen[p] {
				return fmt.Errorf("leds.pins must not repeat (line %d)", p)
			}
			seen[p] = true
		}
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level must be one of 'debug', 'info', 'warn', 'error'")
	}
	if d.Backend == BackendTerminal && strings.TrimSpace(cfg.Log.Output) == "" {
		// stderr would draw over the terminal display.
		cfg.Log.Output = "ipt-nav.log"
	}
	return nil
}

func float64Ptr(v float64) *float64 { return &v }
