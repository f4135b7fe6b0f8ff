// Package viz is the terminal front-end for the fractal pendulum.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that advances a [sim.Simulator] at 60 Hz
//   - [Canvas]: Braille-based pixel canvas with per-cell colors
//   - a preset menu started by [RunInteractive]
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	Tab   - Cycle tunable parameters, Up/Down to change them
//	[ ]   - Fractal depth
//	+ -   - Zoom
//	C     - Fixed or state-driven hues
//	X     - Randomize state (Shift+X: constants)
//	?     - Show help overlay
package viz
