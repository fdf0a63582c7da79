package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/pgdyn/internal/dynamo"
)

// Euler is the explicit first-order method. It is kept for step-size
// convergence checks against RK4.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, p dynamo.Params, t, h float64) dynamo.State {
	result := make(dynamo.State, len(x))
	floats.AddScaledTo(result, x, h, sys.Derive(t, x, p))
	return result
}
