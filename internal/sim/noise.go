package sim

import "math/rand"

// noiseSource draws uniform sensor noise from an engine-owned generator.
type noiseSource struct {
	rng   *rand.Rand
	draws int
}

func newNoiseSource(seed int64) *noiseSource {
	return &noiseSource{rng: rand.New(rand.NewSource(seed))}
}

// perturb adds a uniform sample from [-spread, spread] to v. A non-positive
// spread leaves v untouched and does not advance the generator.
func (n *noiseSource) perturb(v, spread float64) float64 {
	if spread <= 0 {
		return v
	}
	n.draws++
	return v + spread*(2*n.rng.Float64()-1)
}

// sense reads s through the configured sensors. The channel order is fixed
// so that a seed reproduces the same readings.
func (n *noiseSource) sense(s State, noise Noise) Sensors {
	return Sensors{
		Pitch:    n.perturb(s.Pitch, noise.Pitch),
		Roll:     n.perturb(s.Roll, noise.Roll),
		Yaw:      n.perturb(s.Yaw, noise.Yaw),
		Airspeed: n.perturb(s.Airspeed, noise.Airspeed),
		Altitude: n.perturb(s.Altitude, noise.Altitude),
		Battery:  s.Battery,
		Lat:      n.perturb(s.Lat, GPSNoiseDeg),
		Lon:      n.perturb(s.Lon, GPSNoiseDeg),
	}
}
