package config

import (
	"fmt"
	"os"

	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSeed     = 0
	DefaultDuration = 10.0
)

// Config describes one flight: where it starts, what the vehicle is, and
// the command held for its duration.
type Config struct {
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description,omitempty"`
	Seed         int64       `yaml:"seed"`
	StepDt       float64     `yaml:"step_dt"`
	Duration     float64     `yaml:"duration"`
	Command      sim.Command `yaml:"command"`
	InitialState sim.State   `yaml:"initial_state"`
	Vehicle      sim.Config  `yaml:"vehicle"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:         "flight",
		Seed:         DefaultSeed,
		StepDt:       sim.DefaultStepDt,
		Duration:     DefaultDuration,
		Command:      sim.Command{Throttle: 0.5},
		InitialState: sim.DefaultState(),
		Vehicle:      sim.DefaultConfig(),
	}
}

// Load reads a YAML flight file. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run parameters and the vehicle constants.
func (c *Config) Validate() error {
	if !(c.StepDt > 0) {
		return fmt.Errorf("step_dt must be positive, got %v", c.StepDt)
	}
	if err := c.Vehicle.Validate(); err != nil {
		return err
	}
	return c.InitialState.Validate(c.Vehicle)
}

// Engine builds a fresh engine for this flight.
func (c *Config) Engine(opts ...sim.Option) (*sim.Engine, error) {
	base := []sim.Option{
		sim.WithConfig(c.Vehicle),
		sim.WithInitialState(c.InitialState),
	}
	return sim.New(c.Seed, append(base, opts...)...)
}

// Clone returns a copy that can be modified without touching c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Scenario expresses the flight as a single-segment scenario holding the
// command for the whole duration.
func (c *Config) Scenario() *scenario.Scenario {
	initial := c.InitialState
	return &scenario.Scenario{
		Name:         c.Name,
		Description:  c.Description,
		Seed:         c.Seed,
		StepDt:       c.StepDt,
		InitialState: &initial,
		Vehicle:      c.Vehicle.Params(),
		Segments: []scenario.Segment{
			{Name: c.Name, Duration: c.Duration, Command: c.Command},
		},
	}
}
