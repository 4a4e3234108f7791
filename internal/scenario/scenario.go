package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/flightsim/internal/metrics"
	"github.com/san-kum/flightsim/internal/sim"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

const tracerName = "github.com/san-kum/flightsim/internal/scenario"

// Scenario is a scripted flight: a sequence of segments flown back to back
// by one engine.
type Scenario struct {
	Name         string             `yaml:"name"`
	Description  string             `yaml:"description"`
	Seed         int64              `yaml:"seed"`
	StepDt       float64            `yaml:"step_dt"`
	InitialState *sim.State         `yaml:"initial_state"`
	Vehicle      map[string]float64 `yaml:"vehicle"`
	Segments     []Segment          `yaml:"segments"`
}

// Segment holds one command for a duration.
type Segment struct {
	Name     string      `yaml:"name"`
	Duration float64     `yaml:"duration"`
	Command  sim.Command `yaml:"command"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	sc := &Scenario{StepDt: sim.DefaultStepDt}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(sc.Segments) == 0 {
		return nil, fmt.Errorf("scenario %q has no segments", sc.Name)
	}
	return sc, nil
}

// VehicleConfig applies the scenario's overrides on top of the defaults.
func (sc *Scenario) VehicleConfig() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	for name, v := range sc.Vehicle {
		if err := cfg.SetParam(name, v); err != nil {
			return cfg, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	return cfg, nil
}

// Engine builds the engine the scenario flies.
func (sc *Scenario) Engine(opts ...sim.Option) (*sim.Engine, error) {
	cfg, err := sc.VehicleConfig()
	if err != nil {
		return nil, err
	}
	base := []sim.Option{sim.WithConfig(cfg)}
	if sc.InitialState != nil {
		base = append(base, sim.WithInitialState(*sc.InitialState))
	}
	return sim.New(sc.Seed, append(base, opts...)...)
}

// Duration is the nominal length of the scenario in seconds.
func (sc *Scenario) Duration() float64 {
	total := 0.0
	for _, seg := range sc.Segments {
		total += seg.Duration
	}
	return total
}

// Sample is one recorded step.
type Sample struct {
	Time    float64        `json:"time"`
	Segment int            `json:"segment"`
	Command sim.Command    `json:"command"`
	Result  sim.StepResult `json:"result"`
}

// SegmentResult is the last result of a segment.
type SegmentResult struct {
	Name  string         `json:"name"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Steps int            `json:"steps"`
	Final sim.StepResult `json:"final"`
}

// Trace is everything a scenario run recorded.
type Trace struct {
	Name     string          `json:"name"`
	Seed     int64           `json:"seed"`
	StepDt   float64         `json:"step_dt"`
	Samples  []Sample        `json:"samples"`
	Segments []SegmentResult `json:"segments"`
}

// Final returns the last recorded result.
func (t *Trace) Final() (sim.StepResult, bool) {
	if len(t.Samples) == 0 {
		return sim.StepResult{}, false
	}
	return t.Samples[len(t.Samples)-1].Result, true
}

// WarningCounts returns how many steps raised each warning.
func (t *Trace) WarningCounts() map[sim.Warning]int {
	counts := make(map[sim.Warning]int)
	for _, s := range t.Samples {
		for _, w := range s.Result.Warnings {
			counts[w]++
		}
	}
	return counts
}

type Options struct {
	Observers []metrics.Observer
	Logger    *slog.Logger
	// EngineOptions are appended after the scenario's own options.
	EngineOptions []sim.Option
}

// Run flies every segment in order on a single engine. Cancellation is
// checked between segments; a segment always runs to completion.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Trace, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "scenario.Run", trace.WithAttributes(
		attribute.String("scenario.name", sc.Name),
		attribute.Int64("scenario.seed", sc.Seed),
		attribute.Float64("scenario.step_dt", sc.StepDt),
		attribute.Int("scenario.segments", len(sc.Segments)),
	))
	defer span.End()

	tr, err := run(ctx, tracer, sc, opts, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if tr != nil {
		span.SetAttributes(attribute.Int("scenario.steps", len(tr.Samples)))
	}
	return tr, err
}

func run(ctx context.Context, tracer trace.Tracer, sc *Scenario, opts Options, log *slog.Logger) (*Trace, error) {
	eng, err := sc.Engine(append([]sim.Option{sim.WithLogger(log)}, opts.EngineOptions...)...)
	if err != nil {
		return nil, err
	}

	capacity := 0
	for _, seg := range sc.Segments {
		capacity += sampleHint(seg.Duration, sc.StepDt)
	}
	tr := &Trace{
		Name:     sc.Name,
		Seed:     sc.Seed,
		StepDt:   sc.StepDt,
		Samples:  make([]Sample, 0, capacity),
		Segments: make([]SegmentResult, 0, len(sc.Segments)),
	}

	for i, seg := range sc.Segments {
		select {
		case <-ctx.Done():
			return tr, ctx.Err()
		default:
		}

		_, segSpan := tracer.Start(ctx, "scenario.Segment", trace.WithAttributes(
			attribute.Int("segment.index", i),
			attribute.String("segment.name", seg.Name),
			attribute.Float64("segment.duration", seg.Duration),
		))

		log.Info("segment start",
			slog.Int("segment", i+1),
			slog.String("name", seg.Name),
			slog.Float64("duration", seg.Duration))

		start, startSteps := eng.Elapsed(), eng.Steps()
		final, err := eng.RunForEach(seg.Duration, seg.Command, sc.StepDt, func(r sim.StepResult) {
			tr.Samples = append(tr.Samples, Sample{
				Time:    eng.Elapsed(),
				Segment: i,
				Command: seg.Command,
				Result:  r,
			})
			for _, o := range opts.Observers {
				o.Observe(seg.Command, r, sc.StepDt)
			}
		})
		if err != nil {
			segSpan.RecordError(err)
			segSpan.End()
			return tr, fmt.Errorf("segment %d (%s): %w", i+1, seg.Name, err)
		}

		tr.Segments = append(tr.Segments, SegmentResult{
			Name:  seg.Name,
			Start: start,
			End:   eng.Elapsed(),
			Steps: eng.Steps() - startSteps,
			Final: final,
		})

		segSpan.SetAttributes(
			attribute.Int("segment.steps", eng.Steps()-startSteps),
			attribute.Float64("segment.final_altitude", final.State.Altitude),
			attribute.Int("segment.final_warnings", len(final.Warnings)),
		)
		segSpan.End()

		if len(final.Warnings) > 0 {
			log.Warn("segment ended with warnings",
				slog.String("name", seg.Name),
				slog.Any("warnings", final.Warnings))
		}
	}

	return tr, nil
}

// maxSampleHint caps preallocation; longer runs grow the slice as they go.
const maxSampleHint = 1 << 20

// sampleHint estimates the samples one segment records. Every segment flies
// at least one step, whatever its duration.
func sampleHint(duration, stepDt float64) int {
	n := duration / stepDt
	if !(stepDt > 0) || !(n >= 1) {
		return 1
	}
	if n > maxSampleHint {
		return maxSampleHint
	}
	return int(n) + 1
}
