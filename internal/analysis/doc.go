// Package analysis summarises stored trajectories.
//
//   - [FitGrowth]: exponential growth rate of a population by a log-linear fit
//   - [NewPhasePortrait]: one component plotted against another
package analysis
