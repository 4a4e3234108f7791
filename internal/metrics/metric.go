package metrics

import "github.com/san-kum/flightsim/internal/sim"

// Metric accumulates a single figure over the steps of a flight.
type Metric interface {
	Name() string
	Observe(cmd sim.Command, res sim.StepResult, dt float64)
	Value() float64
	Reset()
}

// Set fans observations out to several metrics.
type Set []Metric

func (s Set) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	for _, m := range s {
		m.Observe(cmd, res, dt)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Default returns the metrics recorded for every stored run.
func Default() Set {
	set := Set{
		NewMaxAltitude(),
		NewBatteryUsed(),
		NewDistance(),
		NewControlEffort(),
		NewSensorError(ChannelAltitude),
		NewSensorError(ChannelAirspeed),
	}
	for _, w := range sim.AllWarnings {
		set = append(set, NewWarningRate(w))
	}
	return set
}
