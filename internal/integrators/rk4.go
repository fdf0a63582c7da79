package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/pgdyn/internal/dynamo"
)

// RK4 is the classical explicit four-stage Runge-Kutta stepper. The stage
// buffers are reused across steps, so an RK4 must not be shared between
// goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// Step advances x by one step of size h starting at time t and returns the
// new state. x is not modified.
func (r *RK4) Step(sys dynamo.System, x dynamo.State, p dynamo.Params, t, h float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(t, x, p))

	floats.AddScaledTo(r.scratch, x, 0.5*h, r.k1)
	copy(r.k2, sys.Derive(t+0.5*h, r.scratch, p))

	floats.AddScaledTo(r.scratch, x, 0.5*h, r.k2)
	copy(r.k3, sys.Derive(t+0.5*h, r.scratch, p))

	floats.AddScaledTo(r.scratch, x, h, r.k3)
	copy(r.k4, sys.Derive(t+h, r.scratch, p))

	// k1 + 2k2 + 2k3 + k4, accumulated in scratch
	copy(r.scratch, r.k1)
	floats.AddScaled(r.scratch, 2, r.k2)
	floats.AddScaled(r.scratch, 2, r.k3)
	floats.Add(r.scratch, r.k4)

	result := make(dynamo.State, n)
	floats.AddScaledTo(result, x, h/6.0, r.scratch)
	return result
}
