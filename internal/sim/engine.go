package sim

import (
	"fmt"
	"log/slog"
	"math"
)

// Engine advances a single vehicle in discrete time. It owns the truth state
// and the noise generator; neither is shared with callers.
type Engine struct {
	cfg     Config
	state   State
	noise   *noiseSource
	seed    int64
	steps   int
	elapsed float64
	log     *slog.Logger
}

// Option customises an Engine at construction.
type Option func(*Engine)

// WithConfig replaces the default vehicle constants. Start from
// DefaultConfig and override the fields that matter.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithInitialState replaces DefaultState as the starting point.
func WithInitialState(s State) Option {
	return func(e *Engine) { e.state = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New builds an engine whose sensor noise is reproducible from seed. The
// configuration and initial state are validated once here.
func New(seed int64, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:   DefaultConfig(),
		state: DefaultState(),
		noise: newNoiseSource(seed),
		seed:  seed,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := e.state.Validate(e.cfg); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Config() Config   { return e.cfg }
func (e *Engine) State() State     { return e.state }
func (e *Engine) Seed() int64      { return e.seed }
func (e *Engine) Steps() int       { return e.steps }
func (e *Engine) Elapsed() float64 { return e.elapsed }

// Step advances the vehicle by dt seconds under cmd. A non-positive dt is a
// caller error and leaves the engine untouched.
func (e *Engine) Step(dt float64, cmd Command) (StepResult, error) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return StepResult{}, &StepError{
			Step:    e.steps,
			Time:    e.elapsed,
			Wrapped: fmt.Errorf("%w, got %v", ErrNonPositiveStep, dt),
		}
	}

	u, warnings := cmd.Clamped()
	if warnings == nil {
		warnings = make([]Warning, 0, 2)
	}
	cfg := &e.cfg
	s := &e.state

	s.Pitch = clamp(s.Pitch+u.Pitch*cfg.MaxPitchRate*dt, -cfg.MaxPitchDeg, cfg.MaxPitchDeg)
	s.Roll = clamp(s.Roll+u.Roll*cfg.MaxRollRate*dt, -cfg.MaxRollDeg, cfg.MaxRollDeg)
	s.Yaw = wrapHeading(s.Yaw + u.Yaw*cfg.MaxYawRate*dt)

	target := cfg.MinAirspeed + u.Throttle*(cfg.MaxAirspeed-cfg.MinAirspeed)
	s.Airspeed += (target - s.Airspeed) * cfg.SpeedResponse * dt

	climb := math.Sin(radians(s.Pitch)) * s.Airspeed * cfg.ClimbFactor
	s.Altitude = math.Max(0, s.Altitude+climb*dt)

	drain := cfg.BatteryDrainIdle + u.Throttle*cfg.BatteryDrainThrottle
	s.Battery = math.Max(0, s.Battery-drain*dt)

	if s.Airspeed < cfg.StallSpeed {
		warnings = append(warnings, WarnStallRisk)
	}
	if s.Airspeed > cfg.MaxAirspeed*cfg.OverspeedMargin {
		warnings = append(warnings, WarnOverspeedRisk)
	}
	if s.Battery <= cfg.BatteryLowThreshold {
		warnings = append(warnings, WarnBatteryLow)
	}

	e.deadReckon(dt)

	e.steps++
	e.elapsed += dt

	if len(warnings) > 0 {
		e.log.Debug("step warnings",
			slog.Int("step", e.steps),
			slog.Float64("t", e.elapsed),
			slog.Any("warnings", warnings))
	}

	return StepResult{
		State:    e.state,
		Sensors:  e.noise.sense(e.state, cfg.Noise),
		Warnings: warnings,
	}, nil
}

// deadReckon moves the position along the current heading using a
// locally-flat earth. Accuracy degrades over long legs and near the poles.
func (e *Engine) deadReckon(dt float64) {
	s := &e.state
	distance := s.Airspeed * dt
	heading := radians(s.Yaw)
	north := math.Cos(heading) * distance
	east := math.Sin(heading) * distance

	s.Lat += north / metersPerDegree
	s.Lon += east / (metersPerDegree * math.Cos(radians(s.Lat)))
}

// RunFor steps with the same command until at least seconds of simulated
// time have passed and returns the last result. One step always runs, even
// when seconds is smaller than stepDt.
func (e *Engine) RunFor(seconds float64, cmd Command, stepDt float64) (StepResult, error) {
	return e.RunForEach(seconds, cmd, stepDt, nil)
}

// RunForEach is RunFor with fn called on every intermediate result.
func (e *Engine) RunForEach(seconds float64, cmd Command, stepDt float64, fn func(StepResult)) (StepResult, error) {
	var (
		last    StepResult
		err     error
		elapsed float64
	)
	for {
		last, err = e.Step(stepDt, cmd)
		if err != nil {
			return StepResult{}, err
		}
		if fn != nil {
			fn(last)
		}
		elapsed += stepDt
		if !(elapsed < seconds) {
			return last, nil
		}
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
