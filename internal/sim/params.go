package sim

import (
	"fmt"
	"sort"
)

func (c *Config) fields() map[string]*float64 {
	return map[string]*float64{
		"min_airspeed":           &c.MinAirspeed,
		"max_airspeed":           &c.MaxAirspeed,
		"speed_response":         &c.SpeedResponse,
		"max_pitch_rate":         &c.MaxPitchRate,
		"max_roll_rate":          &c.MaxRollRate,
		"max_yaw_rate":           &c.MaxYawRate,
		"max_pitch_deg":          &c.MaxPitchDeg,
		"max_roll_deg":           &c.MaxRollDeg,
		"climb_factor":           &c.ClimbFactor,
		"battery_drain_idle":     &c.BatteryDrainIdle,
		"battery_drain_throttle": &c.BatteryDrainThrottle,
		"stall_speed":            &c.StallSpeed,
		"overspeed_margin":       &c.OverspeedMargin,
		"battery_low_threshold":  &c.BatteryLowThreshold,
		"noise.pitch":            &c.Noise.Pitch,
		"noise.roll":             &c.Noise.Roll,
		"noise.yaw":              &c.Noise.Yaw,
		"noise.airspeed":         &c.Noise.Airspeed,
		"noise.altitude":         &c.Noise.Altitude,
	}
}

// Params returns the constants keyed by their YAML names.
func (c Config) Params() map[string]float64 {
	out := make(map[string]float64)
	for k, p := range c.fields() {
		out[k] = *p
	}
	return out
}

// ParamNames lists the keys accepted by SetParam in sorted order.
func ParamNames() []string {
	var c Config
	names := make([]string, 0, 19)
	for k := range c.fields() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetParam overrides a single constant by its YAML name. The result is not
// validated; New does that.
func (c *Config) SetParam(name string, value float64) error {
	p, ok := c.fields()[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	*p = value
	return nil
}
