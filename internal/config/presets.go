package config

import (
	"sort"

	"github.com/san-kum/flightsim/internal/sim"
)

func preset(name, description string, duration float64, cmd sim.Command, modify func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Description = description
	cfg.Duration = duration
	cfg.Command = cmd
	if modify != nil {
		modify(cfg)
	}
	return cfg
}

var Presets = map[string]*Config{
	"cruise": preset("cruise", "level flight at half throttle", 30, sim.Command{Throttle: 0.5}, nil),
	"climb": preset("climb", "nose up under climb power", 6, sim.Command{Throttle: 0.75, Pitch: 0.4}, func(c *Config) {
		c.Seed = 7
	}),
	"bank-left": preset("bank-left", "hard left roll at cruise power", 2.5, sim.Command{Throttle: 0.55, Roll: -0.8}, func(c *Config) {
		c.Seed = 11
	}),
	"yaw-right": preset("yaw-right", "sustained right yaw; position drifts east", 4, sim.Command{Throttle: 0.6, Yaw: 0.7}, func(c *Config) {
		c.Seed = 3
	}),
	"glide": preset("glide", "engine off, shallow descent from 400 m", 20, sim.Command{Throttle: 0, Pitch: -0.2}, func(c *Config) {
		c.InitialState.Airspeed = 80
		c.InitialState.Altitude = 400
	}),
	"overload": preset("overload", "every command out of range; all clamp warnings", 0.2, sim.Command{Throttle: 1.4, Pitch: 1.8, Roll: -1.5, Yaw: 2.2}, func(c *Config) {
		c.Seed = 5
		c.StepDt = 0.2
	}),
	"low-battery": preset("low-battery", "high power from 25% charge until battery_low", 60, sim.Command{Throttle: 0.9}, func(c *Config) {
		c.InitialState.Battery = 25
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
