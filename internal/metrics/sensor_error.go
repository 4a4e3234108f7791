package metrics

import (
	"math"

	"github.com/san-kum/flightsim/internal/sim"
)

// Channel names a sensed quantity.
type Channel string

const (
	ChannelPitch    Channel = "pitch"
	ChannelRoll     Channel = "roll"
	ChannelYaw      Channel = "yaw"
	ChannelAirspeed Channel = "airspeed"
	ChannelAltitude Channel = "altitude"
	ChannelLat      Channel = "lat"
	ChannelLon      Channel = "lon"
)

// Residual returns sensor minus truth for ch.
func Residual(ch Channel, res sim.StepResult) float64 {
	s, x := res.Sensors, res.State
	switch ch {
	case ChannelPitch:
		return s.Pitch - x.Pitch
	case ChannelRoll:
		return s.Roll - x.Roll
	case ChannelYaw:
		return s.Yaw - x.Yaw
	case ChannelAirspeed:
		return s.Airspeed - x.Airspeed
	case ChannelAltitude:
		return s.Altitude - x.Altitude
	case ChannelLat:
		return s.Lat - x.Lat
	case ChannelLon:
		return s.Lon - x.Lon
	}
	return 0
}

// SensorError is the RMS difference between a sensor and the truth.
type SensorError struct {
	channel Channel
	sumSq   float64
	samples int
}

func NewSensorError(ch Channel) *SensorError {
	return &SensorError{channel: ch}
}

func (e *SensorError) Name() string { return "sensor_rms_" + string(e.channel) }

func (e *SensorError) Observe(cmd sim.Command, res sim.StepResult, dt float64) {
	r := Residual(e.channel, res)
	e.sumSq += r * r
	e.samples++
}

func (e *SensorError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.samples))
}

func (e *SensorError) Reset() {
	e.sumSq = 0
	e.samples = 0
}
