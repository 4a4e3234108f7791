package sim_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flightsim/internal/sim"
)

// flight is a fixed mixed sequence of commands, including out-of-range
// ones, used by the property specs below.
var flight = []struct {
	dt  float64
	cmd sim.Command
}{
	{0.1, sim.Command{Throttle: 0.7, Pitch: 0.5}},
	{0.2, sim.Command{Throttle: 1.3, Pitch: 1.5, Roll: 0.4}},
	{0.05, sim.Command{Throttle: 0.2, Roll: -2, Yaw: 3}},
	{0.5, sim.Command{Throttle: 0, Pitch: -1, Yaw: -0.9}},
	{0.1, sim.Command{Throttle: 1, Pitch: 0.2, Roll: 1, Yaw: 1}},
	{1.0, sim.Command{Throttle: -0.5, Pitch: -0.8, Yaw: -1.4}},
}

func fly(eng *sim.Engine, rounds int) []sim.StepResult {
	var out []sim.StepResult
	for i := 0; i < rounds; i++ {
		for _, f := range flight {
			res, err := eng.Step(f.dt, f.cmd)
			Expect(err).NotTo(HaveOccurred())
			out = append(out, res)
		}
	}
	return out
}

var _ = Describe("Engine", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	Describe("determinism", func() {
		It("reproduces identical results for identical seeds and inputs", func() {
			a, err := sim.New(1234, sim.WithConfig(cfg))
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.New(1234, sim.WithConfig(cfg))
			Expect(err).NotTo(HaveOccurred())

			Expect(fly(a, 20)).To(Equal(fly(b, 20)))
		})

		It("produces different sensor readings for different seeds", func() {
			a, _ := sim.New(1)
			b, _ := sim.New(2)

			ra, rb := fly(a, 1), fly(b, 1)
			Expect(ra[0].State).To(Equal(rb[0].State))
			Expect(ra[0].Sensors).NotTo(Equal(rb[0].Sensors))
		})
	})

	Describe("invariants", func() {
		It("keeps every state inside the envelope and never recharges", func() {
			eng, err := sim.New(77, sim.WithConfig(cfg))
			Expect(err).NotTo(HaveOccurred())

			prevBattery := eng.State().Battery
			for _, res := range fly(eng, 60) {
				s := res.State
				Expect(math.Abs(s.Pitch)).To(BeNumerically("<=", cfg.MaxPitchDeg))
				Expect(math.Abs(s.Roll)).To(BeNumerically("<=", cfg.MaxRollDeg))
				Expect(s.Yaw).To(BeNumerically(">=", 0))
				Expect(s.Yaw).To(BeNumerically("<", 360))
				Expect(s.Altitude).To(BeNumerically(">=", 0))
				Expect(s.Battery).To(BeNumerically(">=", 0))
				Expect(s.Battery).To(BeNumerically("<=", 100))
				Expect(s.Battery).To(BeNumerically("<=", prevBattery))
				Expect(res.Sensors.Battery).To(Equal(s.Battery))
				prevBattery = s.Battery
			}
		})
	})

	Describe("noise", func() {
		It("passes a disabled channel through unchanged", func() {
			cfg.Noise.Airspeed = 0
			eng, err := sim.New(5, sim.WithConfig(cfg))
			Expect(err).NotTo(HaveOccurred())

			for _, res := range fly(eng, 10) {
				Expect(res.Sensors.Airspeed).To(Equal(res.State.Airspeed))
			}
		})

		It("does not consume randomness for a disabled channel", func() {
			quiet := cfg
			quiet.Noise = sim.Noise{}
			eng, err := sim.New(5, sim.WithConfig(quiet))
			Expect(err).NotTo(HaveOccurred())

			// With every configured channel off, only latitude and longitude
			// draw, so each step uses exactly the next two values of the
			// seeded stream.
			stream := rand.New(rand.NewSource(5))
			for _, res := range fly(eng, 2) {
				dLat := sim.GPSNoiseDeg * (2*stream.Float64() - 1)
				dLon := sim.GPSNoiseDeg * (2*stream.Float64() - 1)
				Expect(res.Sensors.Lat - res.State.Lat).To(BeNumerically("~", dLat, 1e-12))
				Expect(res.Sensors.Lon - res.State.Lon).To(BeNumerically("~", dLon, 1e-12))
			}
		})

		It("shifts the GPS draws when an earlier channel is enabled", func() {
			quiet := cfg
			quiet.Noise = sim.Noise{}
			noisy := quiet
			noisy.Noise.Airspeed = 0.6

			a, _ := sim.New(5, sim.WithConfig(quiet))
			b, _ := sim.New(5, sim.WithConfig(noisy))
			ra, _ := a.Step(0.1, sim.Command{Throttle: 0.5})
			rb, _ := b.Step(0.1, sim.Command{Throttle: 0.5})

			Expect(ra.State).To(Equal(rb.State))
			Expect(ra.Sensors.Lat).NotTo(Equal(rb.Sensors.Lat))
		})
	})

	Describe("RunFor", func() {
		It("performs exactly one step when the duration is shorter than a step", func() {
			eng, _ := sim.New(1)
			_, err := eng.RunFor(0.01, sim.Command{Throttle: 0.5}, sim.DefaultStepDt)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Steps()).To(Equal(1))
			Expect(eng.Elapsed()).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("returns the same result as stepping by hand", func() {
			cmd := sim.Command{Throttle: 0.75, Pitch: 0.4}
			a, _ := sim.New(7)
			b, _ := sim.New(7)

			got, err := a.RunFor(1.0, cmd, 0.1)
			Expect(err).NotTo(HaveOccurred())

			var want sim.StepResult
			for b.Steps() < a.Steps() {
				want, err = b.Step(0.1, cmd)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(got).To(Equal(want))
		})
	})
})
