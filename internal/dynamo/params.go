package dynamo

import (
	"fmt"
	"sort"
)

// Coefficient names used in configuration files and parameter sweeps.
const (
	ParamEpsilon = "eps"
	ParamDelta   = "delta"
	ParamKappa   = "kappa"
)

// Params holds the feedback coefficients of a run. It is a value type:
// every dynamics evaluation receives its own copy.
type Params struct {
	// Epsilon is the sensitivity of the activity multiplier to the feedback signal.
	Epsilon float64
	// Delta is the sensitivity of the yield divisor to the feedback signal.
	Delta float64
	// Kappa is the public-good production rate per unit population.
	Kappa float64
}

func DefaultParams() Params {
	return Params{Epsilon: 1e-6, Delta: 1e-6, Kappa: 1}
}

// ParamsFromMap builds Params from named coefficients. eps and delta are
// required; kappa defaults to zero since the direct variants ignore it.
func ParamsFromMap(m map[string]float64) (Params, error) {
	var p Params
	for _, key := range []string{ParamEpsilon, ParamDelta} {
		if _, ok := m[key]; !ok {
			return p, fmt.Errorf("%w: missing coefficient %q", ErrParameterBounds, key)
		}
	}
	for name, v := range m {
		next, err := p.With(name, v)
		if err != nil {
			return Params{}, err
		}
		p = next
	}
	return p, nil
}

// With returns a copy of p with one named coefficient replaced.
func (p Params) With(name string, v float64) (Params, error) {
	switch name {
	case ParamEpsilon:
		p.Epsilon = v
	case ParamDelta:
		p.Delta = v
	case ParamKappa:
		p.Kappa = v
	default:
		return p, fmt.Errorf("%w: unknown coefficient %q", ErrParameterBounds, name)
	}
	return p, nil
}

func (p Params) Get(name string) (float64, bool) {
	switch name {
	case ParamEpsilon:
		return p.Epsilon, true
	case ParamDelta:
		return p.Delta, true
	case ParamKappa:
		return p.Kappa, true
	}
	return 0, false
}

func (p Params) Map() map[string]float64 {
	return map[string]float64{
		ParamEpsilon: p.Epsilon,
		ParamDelta:   p.Delta,
		ParamKappa:   p.Kappa,
	}
}

// ParamNames lists the coefficient names in sorted order.
func ParamNames() []string {
	names := []string{ParamEpsilon, ParamDelta, ParamKappa}
	sort.Strings(names)
	return names
}
