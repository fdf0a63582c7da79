// Package viz draws population trajectories.
//
//   - [WriteChart] and [SaveChart]: line charts rendered with gonum/plot
//   - [PlotASCII]: a terminal chart of several series
//   - [LiveModel]: a Bubble Tea view that advances a comparison one output
//     interval per tick
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial states
//	L     - Toggle log10 scale of the population graph
//	Q     - Quit
package viz
