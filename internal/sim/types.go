package sim

import (
	"fmt"
	"math"
)

// Command is the control input for a single step. Values outside the
// nominal ranges are accepted and clamped by the engine.
type Command struct {
	Throttle float64 `yaml:"throttle" json:"throttle"`
	Pitch    float64 `yaml:"pitch" json:"pitch"`
	Roll     float64 `yaml:"roll" json:"roll"`
	Yaw      float64 `yaml:"yaw" json:"yaw"`
}

// Clamped returns the command limited to its nominal ranges together with
// one warning per channel that was out of range.
func (c Command) Clamped() (Command, []Warning) {
	var warnings []Warning
	if outside(c.Throttle, 0, 1) {
		warnings = append(warnings, WarnThrottleClamped)
	}
	if outside(c.Pitch, -1, 1) {
		warnings = append(warnings, WarnPitchClamped)
	}
	if outside(c.Roll, -1, 1) {
		warnings = append(warnings, WarnRollClamped)
	}
	if outside(c.Yaw, -1, 1) {
		warnings = append(warnings, WarnYawClamped)
	}
	return Command{
		Throttle: clampInput(c.Throttle, 0, 1),
		Pitch:    clampInput(c.Pitch, -1, 1),
		Roll:     clampInput(c.Roll, -1, 1),
		Yaw:      clampInput(c.Yaw, -1, 1),
	}, warnings
}

func outside(v, lo, hi float64) bool {
	return math.IsNaN(v) || v < lo || v > hi
}

// clampInput treats NaN as a zero command.
func clampInput(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, lo, hi)
}

// State is the ground-truth vehicle state. Angles are in degrees, yaw is a
// compass heading (0 = north, 90 = east).
type State struct {
	Pitch    float64 `yaml:"pitch" json:"pitch"`
	Roll     float64 `yaml:"roll" json:"roll"`
	Yaw      float64 `yaml:"yaw" json:"yaw"`
	Airspeed float64 `yaml:"airspeed" json:"airspeed"`
	Altitude float64 `yaml:"altitude" json:"altitude"`
	Battery  float64 `yaml:"battery" json:"battery"`
	Lat      float64 `yaml:"lat" json:"lat"`
	Lon      float64 `yaml:"lon" json:"lon"`
}

// DefaultState is the state a freshly constructed engine starts from.
func DefaultState() State {
	return State{
		Airspeed: 35.0,
		Altitude: 50.0,
		Battery:  100.0,
		Lat:      37.6213,
		Lon:      -122.3790,
	}
}

// Validate reports whether s lies inside the envelope described by cfg.
func (s State) Validate(cfg Config) error {
	switch {
	case !s.IsValid():
		return fmt.Errorf("%w: NaN or Inf detected", ErrInvalidState)
	case math.Abs(s.Pitch) > cfg.MaxPitchDeg:
		return fmt.Errorf("%w: pitch %.2f exceeds ±%.2f", ErrInvalidState, s.Pitch, cfg.MaxPitchDeg)
	case math.Abs(s.Roll) > cfg.MaxRollDeg:
		return fmt.Errorf("%w: roll %.2f exceeds ±%.2f", ErrInvalidState, s.Roll, cfg.MaxRollDeg)
	case s.Yaw < 0 || s.Yaw >= 360:
		return fmt.Errorf("%w: yaw %.2f outside [0,360)", ErrInvalidState, s.Yaw)
	case s.Altitude < 0:
		return fmt.Errorf("%w: altitude %.2f is negative", ErrInvalidState, s.Altitude)
	case s.Battery < 0 || s.Battery > 100:
		return fmt.Errorf("%w: battery %.2f outside [0,100]", ErrInvalidState, s.Battery)
	case s.Airspeed < 0:
		return fmt.Errorf("%w: airspeed %.2f is negative", ErrInvalidState, s.Airspeed)
	}
	return nil
}

func (s State) IsValid() bool {
	for _, v := range [...]float64{s.Pitch, s.Roll, s.Yaw, s.Airspeed, s.Altitude, s.Battery, s.Lat, s.Lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sensors is the noisy reading of a State. Battery is reported verbatim.
type Sensors struct {
	Pitch    float64 `json:"pitch"`
	Roll     float64 `json:"roll"`
	Yaw      float64 `json:"yaw"`
	Airspeed float64 `json:"airspeed"`
	Altitude float64 `json:"altitude"`
	Battery  float64 `json:"battery"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Warning is an advisory tag attached to a step result.
type Warning string

const (
	WarnThrottleClamped Warning = "throttle_clamped"
	WarnPitchClamped    Warning = "pitch_command_clamped"
	WarnRollClamped     Warning = "roll_command_clamped"
	WarnYawClamped      Warning = "yaw_command_clamped"
	WarnStallRisk       Warning = "stall_risk"
	WarnOverspeedRisk   Warning = "overspeed_risk"
	WarnBatteryLow      Warning = "battery_low"
)

// AllWarnings lists every tag in the order the engine emits them.
var AllWarnings = []Warning{
	WarnThrottleClamped,
	WarnPitchClamped,
	WarnRollClamped,
	WarnYawClamped,
	WarnStallRisk,
	WarnOverspeedRisk,
	WarnBatteryLow,
}

// StepResult is what a single step produces. State is a copy taken at the
// end of the step; later steps never change it.
type StepResult struct {
	State    State     `json:"state"`
	Sensors  Sensors   `json:"sensors"`
	Warnings []Warning `json:"warnings"`
}

// Has reports whether w was raised in this step.
func (r StepResult) Has(w Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(math.Min(v, hi), lo)
}

func wrapHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	// -1e-18 + 360 rounds to 360 in float64
	if h >= 360 {
		h = 0
	}
	return h
}
