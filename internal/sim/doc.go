// Package sim provides the discrete-time flight-control stepping engine.
//
// The package defines the vehicle model and the values that flow through it:
//
//   - [Command]: per-step throttle/pitch/roll/yaw input
//   - [Config]: tunable constants, validated once by [New]
//   - [State]: ground-truth vehicle state owned by the engine
//   - [Sensors]: noisy view of the state for one step
//   - [StepResult]: state copy, sensors and warnings for one step
//   - [Engine]: integrates the state and owns the noise source
//
// # Example
//
//	eng, _ := sim.New(7)
//	res, _ := eng.RunFor(6.0, sim.Command{Throttle: 0.75, Pitch: 0.4}, sim.DefaultStepDt)
//	fmt.Println(res.State.Altitude, res.Warnings)
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. For concurrent flights use one
// engine per goroutine, or the [Ensemble] type which does exactly that.
package sim
