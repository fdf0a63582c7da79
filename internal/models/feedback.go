package models

import "github.com/san-kum/pgdyn/internal/dynamo"

func notNeg(a float64) float64 {
	if a < 0 {
		return 0
	}
	return a
}

// Activity is the growth multiplier a = max(0, 1 + eps*signal).
func Activity(eps, signal float64) float64 {
	return notNeg(1 + eps*signal)
}

// Yield is the consumption divisor y = max(0, 1 + delta*signal).
func Yield(delta, signal float64) float64 {
	return notNeg(1 + delta*signal)
}

// All guards below read the substrate from the state handed to this call,
// so every RK stage sees its own arrest condition.

func withPG(_ float64, x dynamo.State, p dynamo.Params) dynamo.State {
	a := Activity(p.Epsilon, x[2])
	y := Yield(p.Delta, x[2])
	if x[1] == 0 {
		a = 0
	}
	return dynamo.State{
		a * x[0],
		-a / y * x[0],
		p.Kappa * x[0],
	}
}

func direct(_ float64, x dynamo.State, p dynamo.Params) dynamo.State {
	a := Activity(p.Epsilon, x[0])
	y := Yield(p.Delta, x[0])
	if x[1] == 0 {
		a = 0
	}
	return dynamo.State{
		a * x[0],
		-a / y * x[0],
	}
}

func twoStrainWithPG(_ float64, x dynamo.State, p dynamo.Params) dynamo.State {
	a1 := Activity(p.Epsilon, x[3])
	y1 := Yield(p.Delta, x[3])
	a2 := notNeg(1)
	y2 := Yield(p.Delta, x[3])
	if x[2] == 0 {
		a1, a2 = 0, 0
	}
	return dynamo.State{
		a1 * x[0],
		a2 * x[1],
		-a1/y1*x[0] - a2/y2*x[1],
		p.Kappa * x[0],
	}
}

func twoStrainDirect(_ float64, x dynamo.State, p dynamo.Params) dynamo.State {
	a1 := Activity(p.Epsilon, x[0])
	y1 := Yield(p.Delta, x[0])
	a2 := notNeg(1)
	y2 := Yield(p.Delta, x[0])
	if x[2] == 0 {
		a1, a2 = 0, 0
	}
	return dynamo.State{
		a1 * x[0],
		a2 * x[1],
		-a1/y1*x[0] - a2/y2*x[1],
	}
}
