package sim

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"ipt-nav/internal/orientation"
)

// ScenarioScript is a deterministic, script-driven orientation track.
//
// Time is expressed as Go duration strings (e.g. "0s", "250ms", "10s").
// If Duration is zero, it is derived from the latest keyframe time.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 30s
//	interval: 20ms
//	loop: false
//	keyframes:
//	  - t: 0s
//	    yaw_deg: 0
//	    pitch_deg: 30
//	    roll_deg: 0
//	  - t: 10s
//	    yaw_deg: 90
//	    pitch_deg: 30
//
// Keyframes must use non-decreasing t values.
type ScenarioScript struct {
	Version   int           `yaml:"version"`
	Duration  time.Duration `yaml:"duration"`
	Interval  time.Duration `yaml:"interval"`
	Loop      bool          `yaml:"loop"`
	Keyframes []Keyframe    `yaml:"keyframes"`
}

// Keyframe is a time-stamped attitude. Yaw is clockwise from the start
// heading; a positive pitch is the forward tilt that drives the walk speed.
type Keyframe struct {
	T        time.Duration `yaml:"t"`
	YawDeg   float64       `yaml:"yaw_deg"`
	PitchDeg float64       `yaml:"pitch_deg"`
	RollDeg  float64       `yaml:"roll_deg"`
}

// Scenario is the validated, runtime representation.
type Scenario struct {
	script   ScenarioScript
	duration time.Duration
}

// Attitude is the interpolated orientation at one instant, in degrees.
type Attitude struct {
	YawDeg   float64
	PitchDeg float64
	RollDeg  float64
}

// LoadScenarioScript reads and unmarshals a YAML scenario script from path.
func LoadScenarioScript(path string) (ScenarioScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScenarioScript{}, err
	}
	return ParseScenarioScriptYAML(b)
}

// ParseScenarioScriptYAML parses a YAML scenario script.
func ParseScenarioScriptYAML(b []byte) (ScenarioScript, error) {
	var s ScenarioScript
	if err := yaml.Unmarshal(b, &s); err != nil {
		return ScenarioScript{}, fmt.Errorf("sim: parse scenario: %w", err)
	}
	return s, nil
}

// LoadScenario is LoadScenarioScript followed by NewScenario.
func LoadScenario(path string) (*Scenario, error) {
	script, err := LoadScenarioScript(path)
	if err != nil {
		return nil, err
	}
	return NewScenario(script)
}

// NewScenario validates script and returns a runtime Scenario.
func NewScenario(script ScenarioScript) (*Scenario, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported scenario version %d", script.Version)
	}
	if len(script.Keyframes) == 0 {
		return nil, fmt.Errorf("keyframes is required")
	}
	for i, kf := range script.Keyframes {
		if kf.T < 0 {
			return nil, fmt.Errorf("keyframes[%d].t must be >= 0", i)
		}
		if i > 0 && kf.T < script.Keyframes[i-1].T {
			return nil, fmt.Errorf("keyframes must be sorted by t (index %d)", i)
		}
		if math.IsNaN(kf.YawDeg) || math.IsNaN(kf.PitchDeg) || math.IsNaN(kf.RollDeg) {
			return nil, fmt.Errorf("keyframes[%d] has a NaN angle", i)
		}
	}
	if script.Interval < 0 {
		return nil, fmt.Errorf("interval must be >= 0")
	}
	if script.Interval == 0 {
		script.Interval = 20 * time.Millisecond
	}

	dur := script.Duration
	if dur <= 0 {
		dur = script.Keyframes[len(script.Keyframes)-1].T
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration is required (or deriveable from keyframes)")
	}
	return &Scenario{script: script, duration: dur}, nil
}

// Duration returns the effective scenario duration.
func (s *Scenario) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.duration
}

func (s *Scenario) Interval() time.Duration { return s.script.Interval }

func (s *Scenario) Loop() bool { return s.script.Loop }

// AttitudeAt computes the attitude at elapsed.
//
// If loop is true, elapsed wraps around Duration(). Otherwise elapsed is
// clamped to [0, Duration()].
func (s *Scenario) AttitudeAt(elapsed time.Duration, loop bool) Attitude {
	if s == nil {
		return Attitude{}
	}
	elapsed = s.clampElapsed(elapsed, loop)
	k0, k1, alpha := selectSegment(s.script.Keyframes, elapsed)
	return Attitude{
		YawDeg:   lerpAngleDeg(k0.YawDeg, k1.YawDeg, alpha),
		PitchDeg: lerp(k0.PitchDeg, k1.PitchDeg, alpha),
		RollDeg:  lerp(k0.RollDeg, k1.RollDeg, alpha),
	}
}

// SampleAt is AttitudeAt converted to a navigator sample. Micros is the
// unclamped elapsed time, so a looping scenario keeps advancing the clock.
func (s *Scenario) SampleAt(elapsed time.Duration, loop bool) orientation.Sample {
	a := s.AttitudeAt(elapsed, loop)
	return orientation.Sample{
		Yaw:    a.YawDeg * math.Pi / 180,
		Pitch:  a.PitchDeg * math.Pi / 180,
		Roll:   a.RollDeg * math.Pi / 180,
		Micros: orientation.MicrosOf(elapsed),
	}
}

func (s *Scenario) clampElapsed(elapsed time.Duration, loop bool) time.Duration {
	if elapsed < 0 {
		elapsed = 0
	}
	if loop {
		return elapsed % s.duration
	}
	if elapsed > s.duration {
		return s.duration
	}
	return elapsed
}

func selectSegment(kfs []Keyframe, t time.Duration) (Keyframe, Keyframe, float64) {
	if len(kfs) == 1 {
		return kfs[0], kfs[0], 0
	}
	idx := sort.Search(len(kfs), func(i int) bool { return kfs[i].T > t })
	if idx <= 0 {
		return kfs[0], kfs[0], 0
	}
	if idx >= len(kfs) {
		last := kfs[len(kfs)-1]
		return last, last, 0
	}
	k0 := kfs[idx-1]
	k1 := kfs[idx]
	dt := k1.T - k0.T
	if dt <= 0 {
		return k1, k1, 0
	}
	alpha := float64(t-k0.T) / float64(dt)
	return k0, k1, math.Max(0, math.Min(1, alpha))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerpAngleDeg interpolates along the shorter arc and returns [0, 360).
func lerpAngleDeg(a0, a1, t float64) float64 {
	a0 = normDeg(a0)
	a1 = normDeg(a1)
	delta := a1 - a0
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return normDeg(a0 + delta*t)
}

func normDeg(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}
