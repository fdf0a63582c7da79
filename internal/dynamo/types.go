package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ClampNonNegative floors every component at zero in place. Components that
// are exactly zero (including -0) are normalised to +0.
func (s State) ClampNonNegative() {
	for i, v := range s {
		if v <= 0 {
			s[i] = 0
		}
	}
}

// NonNegative reports whether no component is below zero.
func (s State) NonNegative() bool {
	for _, v := range s {
		if v < 0 {
			return false
		}
	}
	return true
}

// System is a right-hand side dX/dt = f(t, X, p) of fixed dimension.
type System interface {
	Derive(t float64, x State, p Params) State
	StateDim() int
}

type Config struct {
	Step            float64
	Interval        float64
	MaxTime         float64
	MaxSteps        uint64
	RequirePositive bool
	ValidateState   bool
	// Method names the fixed-step scheme; empty means rk4.
	Method string
}

func DefaultConfig() Config {
	return Config{
		Step:            1e-3,
		Interval:        0.1,
		MaxTime:         20,
		RequirePositive: true,
	}
}

// Metric accumulates a scalar summary over the samples of one trajectory.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}
