package models

import (
	"github.com/san-kum/pgdyn/internal/dynamo"
)

// Func is the right-hand side of one population model.
type Func func(t float64, x dynamo.State, p dynamo.Params) dynamo.State

// Variant ties a dynamics function to its fixed state layout.
type Variant struct {
	Name string
	// Dim is the length of the state vector.
	Dim int
	// Substrate is the index whose exhaustion halts growth.
	Substrate int
	// Labels names each state component, in order.
	Labels []string
	Fn     Func
}

func (v Variant) Derive(t float64, x dynamo.State, p dynamo.Params) dynamo.State {
	return v.Fn(t, x, p)
}

func (v Variant) StateDim() int { return v.Dim }

// Index returns the position of a labelled component, or -1.
func (v Variant) Index(label string) int {
	for i, l := range v.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Populations returns the indices of population components.
func (v Variant) Populations() []int {
	idx := make([]int, 0, 2)
	for i, l := range v.Labels {
		if l == LabelPopulation || l == LabelPopulation1 || l == LabelPopulation2 {
			idx = append(idx, i)
		}
	}
	return idx
}

const (
	WithPGName          = "with_pg"
	DirectName          = "direct"
	TwoStrainWithPGName = "two_strain_with_pg"
	TwoStrainDirectName = "two_strain_direct"
)

// Component labels.
const (
	LabelPopulation  = "n"
	LabelPopulation1 = "n1"
	LabelPopulation2 = "n2"
	LabelSubstrate   = "s"
	LabelPublicGood  = "pg"
)

// WithPublicGood is a single strain whose growth responds to the public good
// it produces: [n, s, pg].
func WithPublicGood() Variant {
	return Variant{
		Name:      WithPGName,
		Dim:       3,
		Substrate: 1,
		Labels:    []string{LabelPopulation, LabelSubstrate, LabelPublicGood},
		Fn:        withPG,
	}
}

// Direct is a single strain whose growth responds to its own size: [n, s].
func Direct() Variant {
	return Variant{
		Name:      DirectName,
		Dim:       2,
		Substrate: 1,
		Labels:    []string{LabelPopulation, LabelSubstrate},
		Fn:        direct,
	}
}

// TwoStrainWithPublicGood pairs a producer with a non-producing competitor
// on the same substrate: [n1, n2, s, pg].
func TwoStrainWithPublicGood() Variant {
	return Variant{
		Name:      TwoStrainWithPGName,
		Dim:       4,
		Substrate: 2,
		Labels:    []string{LabelPopulation1, LabelPopulation2, LabelSubstrate, LabelPublicGood},
		Fn:        twoStrainWithPG,
	}
}

// TwoStrainDirect is the two strain model with feedback from n1: [n1, n2, s].
func TwoStrainDirect() Variant {
	return Variant{
		Name:      TwoStrainDirectName,
		Dim:       3,
		Substrate: 2,
		Labels:    []string{LabelPopulation1, LabelPopulation2, LabelSubstrate},
		Fn:        twoStrainDirect,
	}
}

// All returns the four variants in canonical comparison order.
func All() []Variant {
	return []Variant{WithPublicGood(), Direct(), TwoStrainWithPublicGood(), TwoStrainDirect()}
}

// DefaultInitialState returns the standard inoculum for a variant: two cells
// (or one of each strain), 1e4 units of substrate and no public good.
func DefaultInitialState(v Variant) dynamo.State {
	switch v.Name {
	case WithPGName:
		return dynamo.State{2, 1e4, 0}
	case DirectName:
		return dynamo.State{2, 1e4}
	case TwoStrainWithPGName:
		return dynamo.State{1, 1, 1e4, 0}
	case TwoStrainDirectName:
		return dynamo.State{1, 1, 1e4}
	}
	return make(dynamo.State, v.Dim)
}
