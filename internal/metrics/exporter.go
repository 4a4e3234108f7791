package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/flightsim/internal/sim"
)

// Observer receives every step of a flight.
type Observer interface {
	Observe(cmd sim.Command, res sim.StepResult, dt float64)
}

// Exporter mirrors a flight into Prometheus collectors so runs can be
// dumped in the text exposition format.
type Exporter struct {
	gatherer prometheus.Gatherer

	Steps    prometheus.Counter
	SimTime  prometheus.Gauge
	Truth    *prometheus.GaugeVec
	Sensor   *prometheus.GaugeVec
	Warnings *prometheus.CounterVec
}

// NewExporter registers the flight collectors against reg, defaulting to
// the global Prometheus registry when nil.
func NewExporter(reg prometheus.Registerer) (*Exporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightsim_steps_total",
		Help: "Total number of engine steps observed.",
	}), "flightsim_steps_total")
	if err != nil {
		return nil, err
	}

	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightsim_sim_time_seconds",
		Help: "Simulated time elapsed in the observed flight.",
	}), "flightsim_sim_time_seconds")
	if err != nil {
		return nil, err
	}

	truth, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flightsim_truth",
		Help: "Latest ground-truth value per channel.",
	}, []string{"channel"}), "flightsim_truth")
	if err != nil {
		return nil, err
	}

	sensor, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flightsim_sensor",
		Help: "Latest sensor reading per channel.",
	}, []string{"channel"}), "flightsim_sensor")
	if err != nil {
		return nil, err
	}

	warnings, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightsim_warnings_total",
		Help: "Steps that raised each advisory warning.",
	}, []string{"warning"}), "flightsim_warnings_total")
	if err != nil {
		return nil, err
	}

	return &Exporter{
		gatherer: gatherer,
		Steps:    steps,
		SimTime:  simTime,
		Truth:    truth,
		Sensor:   sensor,
		Warnings: warnings,
	}, nil
}

func (e *Exporter) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	if e == nil {
		return
	}
	e.Steps.Inc()
	e.SimTime.Add(dt)

	x, s := res.State, res.Sensors
	for ch, v := range map[string]float64{
		"pitch": x.Pitch, "roll": x.Roll, "yaw": x.Yaw, "airspeed": x.Airspeed,
		"altitude": x.Altitude, "battery": x.Battery, "lat": x.Lat, "lon": x.Lon,
	} {
		e.Truth.WithLabelValues(ch).Set(v)
	}
	for ch, v := range map[string]float64{
		"pitch": s.Pitch, "roll": s.Roll, "yaw": s.Yaw, "airspeed": s.Airspeed,
		"altitude": s.Altitude, "battery": s.Battery, "lat": s.Lat, "lon": s.Lon,
	} {
		e.Sensor.WithLabelValues(ch).Set(v)
	}
	for _, w := range res.Warnings {
		e.Warnings.WithLabelValues(string(w)).Inc()
	}
}

// WriteTextfile writes every registered metric to path in the format the
// node exporter textfile collector reads.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
