package metrics

import (
	"math"

	"github.com/san-kum/flightsim/internal/sim"
)

// ControlEffort is the mean absolute command per step, measured on the
// clamped command the vehicle actually flew.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	u, _ := cmd.Clamped()
	for _, val := range []float64{u.Throttle, u.Pitch, u.Roll, u.Yaw} {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
