package metrics

import "github.com/san-kum/flightsim/internal/sim"

// WarningRate is the fraction of steps that raised a given warning.
type WarningRate struct {
	warning sim.Warning
	hits    int
	samples int
}

func NewWarningRate(w sim.Warning) *WarningRate {
	return &WarningRate{warning: w}
}

func (w *WarningRate) Name() string { return "rate_" + string(w.warning) }

func (w *WarningRate) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	w.samples++
	if res.Has(w.warning) {
		w.hits++
	}
}

func (w *WarningRate) Value() float64 {
	if w.samples == 0 {
		return 0
	}
	return float64(w.hits) / float64(w.samples)
}

func (w *WarningRate) Reset() {
	w.hits = 0
	w.samples = 0
}
