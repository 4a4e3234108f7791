// Package viz renders flights in the terminal.
//
// It provides:
//
//   - [Model]: a Bubble Tea cockpit that flies an engine live
//   - [Canvas]: Braille-based pixel canvas used for the ground track
//   - [PlotChannel]: asciigraph line plots of recorded telemetry
//
// # Key Bindings
//
//	W/S         - Throttle up/down
//	Up/Down     - Pitch command
//	Left/Right  - Roll command
//	A/D         - Yaw command
//	C           - Centre pitch, roll and yaw
//	Space       - Pause/Resume
//	R           - Reset to the initial state
//	T           - Cycle color themes
//	?           - Show help overlay
package viz
