package scenario

import (
	"context"
	"fmt"

	"github.com/san-kum/flightsim/internal/sim"
)

// Sweep flies the same scenario across a range of one vehicle parameter.
type Sweep struct {
	Param    string
	Min, Max float64
	NumSteps int
}

// SweepResult holds the outcome for one parameter value.
type SweepResult struct {
	ParamValue  float64
	Final       sim.StepResult
	MaxAltitude float64
	Warnings    map[sim.Warning]int
}

// RunSweep executes the sweep. Each value gets a fresh engine with the
// scenario's seed, so runs differ only in the swept parameter.
func RunSweep(ctx context.Context, sc *Scenario, sweep Sweep, opts Options) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.Min + float64(i)*paramStep

		variant := *sc
		variant.Vehicle = make(map[string]float64, len(sc.Vehicle)+1)
		for k, v := range sc.Vehicle {
			variant.Vehicle[k] = v
		}
		variant.Vehicle[sweep.Param] = paramVal

		trace, err := Run(ctx, &variant, opts)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%.4f: %w", sweep.Param, paramVal, err)
		}

		final, _ := trace.Final()
		maxAlt := 0.0
		for _, s := range trace.Samples {
			if s.Result.State.Altitude > maxAlt {
				maxAlt = s.Result.State.Altitude
			}
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			Final:       final,
			MaxAltitude: maxAlt,
			Warnings:    trace.WarningCounts(),
		})
	}

	return results, nil
}
