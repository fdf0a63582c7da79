package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/pgdyn/internal/dynamo"
)

const (
	MethodRK4   = "rk4"
	MethodEuler = "euler"
)

// Stepper takes one fixed step of size h from x at time t.
type Stepper interface {
	Step(sys dynamo.System, x dynamo.State, p dynamo.Params, t, h float64) dynamo.State
}

// New returns a fresh stepper by method name. The empty name selects RK4.
func New(method string) (Stepper, error) {
	switch method {
	case "", MethodRK4:
		return NewRK4(), nil
	case MethodEuler:
		return NewEuler(), nil
	}
	return nil, fmt.Errorf("unknown integration method: %s (available: %s)", method, strings.Join(Methods(), ", "))
}

func Methods() []string {
	return []string{MethodRK4, MethodEuler}
}
