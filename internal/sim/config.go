package sim

import (
	"errors"
	"fmt"
)

const (
	// DefaultStepDt is the step size RunFor uses when callers have no preference.
	DefaultStepDt = 0.1

	// GPSNoiseDeg is the fixed spread of the latitude/longitude sensors.
	GPSNoiseDeg = 0.00005

	metersPerDegree = 111_000.0
)

// Noise holds the per-channel sensor spread. A non-positive value disables
// noise on that channel.
type Noise struct {
	Pitch    float64 `yaml:"pitch" json:"pitch"`
	Roll     float64 `yaml:"roll" json:"roll"`
	Yaw      float64 `yaml:"yaw" json:"yaw"`
	Airspeed float64 `yaml:"airspeed" json:"airspeed"`
	Altitude float64 `yaml:"altitude" json:"altitude"`
}

// Config is the set of vehicle constants. Rates are in deg/s, angles in
// degrees, drains in percent per second.
type Config struct {
	MinAirspeed          float64 `yaml:"min_airspeed" json:"min_airspeed"`
	MaxAirspeed          float64 `yaml:"max_airspeed" json:"max_airspeed"`
	SpeedResponse        float64 `yaml:"speed_response" json:"speed_response"`
	MaxPitchRate         float64 `yaml:"max_pitch_rate" json:"max_pitch_rate"`
	MaxRollRate          float64 `yaml:"max_roll_rate" json:"max_roll_rate"`
	MaxYawRate           float64 `yaml:"max_yaw_rate" json:"max_yaw_rate"`
	MaxPitchDeg          float64 `yaml:"max_pitch_deg" json:"max_pitch_deg"`
	MaxRollDeg           float64 `yaml:"max_roll_deg" json:"max_roll_deg"`
	ClimbFactor          float64 `yaml:"climb_factor" json:"climb_factor"`
	BatteryDrainIdle     float64 `yaml:"battery_drain_idle" json:"battery_drain_idle"`
	BatteryDrainThrottle float64 `yaml:"battery_drain_throttle" json:"battery_drain_throttle"`
	StallSpeed           float64 `yaml:"stall_speed" json:"stall_speed"`
	OverspeedMargin      float64 `yaml:"overspeed_margin" json:"overspeed_margin"`
	BatteryLowThreshold  float64 `yaml:"battery_low_threshold" json:"battery_low_threshold"`
	Noise                Noise   `yaml:"noise" json:"noise"`
}

func DefaultConfig() Config {
	return Config{
		MinAirspeed:          30.0,
		MaxAirspeed:          240.0,
		SpeedResponse:        0.35,
		MaxPitchRate:         25.0,
		MaxRollRate:          35.0,
		MaxYawRate:           20.0,
		MaxPitchDeg:          45.0,
		MaxRollDeg:           60.0,
		ClimbFactor:          0.18,
		BatteryDrainIdle:     0.01,
		BatteryDrainThrottle: 0.12,
		StallSpeed:           40.0,
		OverspeedMargin:      1.05,
		BatteryLowThreshold:  20.0,
		Noise: Noise{
			Pitch:    0.4,
			Roll:     0.4,
			Yaw:      0.4,
			Airspeed: 0.6,
			Altitude: 0.8,
		},
	}
}

// Validate returns every invariant violation joined into one error, or nil.
func (c Config) Validate() error {
	var errs []error
	if c.MinAirspeed > c.MaxAirspeed {
		errs = append(errs, fmt.Errorf("%w: min_airspeed %.2f exceeds max_airspeed %.2f",
			ErrInvalidConfig, c.MinAirspeed, c.MaxAirspeed))
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"speed_response", c.SpeedResponse},
		{"max_pitch_rate", c.MaxPitchRate},
		{"max_roll_rate", c.MaxRollRate},
		{"max_yaw_rate", c.MaxYawRate},
		{"max_pitch_deg", c.MaxPitchDeg},
		{"max_roll_deg", c.MaxRollDeg},
		{"battery_drain_idle", c.BatteryDrainIdle},
		{"battery_drain_throttle", c.BatteryDrainThrottle},
		{"noise.pitch", c.Noise.Pitch},
		{"noise.roll", c.Noise.Roll},
		{"noise.yaw", c.Noise.Yaw},
		{"noise.airspeed", c.Noise.Airspeed},
		{"noise.altitude", c.Noise.Altitude},
	}
	for _, p := range nonNegative {
		// NaN fails this comparison too
		if !(p.value >= 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidConfig, p.name, p.value))
		}
	}

	return errors.Join(errs...)
}
