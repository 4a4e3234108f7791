package metrics

import (
	"math"

	"github.com/san-kum/flightsim/internal/sim"
)

type MaxAltitude struct {
	max     float64
	samples int
}

func NewMaxAltitude() *MaxAltitude { return &MaxAltitude{} }

func (m *MaxAltitude) Name() string { return "max_altitude" }

func (m *MaxAltitude) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	if m.samples == 0 || res.State.Altitude > m.max {
		m.max = res.State.Altitude
	}
	m.samples++
}

func (m *MaxAltitude) Value() float64 { return m.max }

func (m *MaxAltitude) Reset() {
	m.max = 0
	m.samples = 0
}

// BatteryUsed is the charge spent between the first and latest observed
// step, in percent. The first step's own drain is not counted.
type BatteryUsed struct {
	first, last float64
	samples     int
}

func NewBatteryUsed() *BatteryUsed { return &BatteryUsed{} }

func (b *BatteryUsed) Name() string { return "battery_used" }

func (b *BatteryUsed) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	if b.samples == 0 {
		b.first = res.State.Battery
	}
	b.last = res.State.Battery
	b.samples++
}

func (b *BatteryUsed) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.first - b.last
}

func (b *BatteryUsed) Reset() {
	b.first, b.last = 0, 0
	b.samples = 0
}

// Distance is the air distance flown in meters.
type Distance struct {
	meters float64
}

func NewDistance() *Distance { return &Distance{} }

func (d *Distance) Name() string { return "distance_m" }

func (d *Distance) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	d.meters += math.Abs(res.State.Airspeed) * dt
}

func (d *Distance) Value() float64 { return d.meters }

func (d *Distance) Reset() { d.meters = 0 }
