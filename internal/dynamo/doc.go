// Package dynamo provides the primitives shared by the population models,
// the integrator and the comparison driver.
//
//   - [State]: ordered vector of populations, substrate and public good
//   - [Params]: immutable feedback coefficients shared by a run
//   - [System]: interface for ODE systems (dX/dt = f(t, X, p))
//
// # Example
//
//	v := models.WithPublicGood()
//	dx := v.Derive(0, dynamo.State{2, 1e4, 0}, dynamo.DefaultParams())
//
// # Errors
//
// Configuration failures are reported with the sentinel errors in this
// package and may be wrapped in a [SimulationError] carrying the step and
// time at which they happened.
package dynamo
