package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrTooFewPoints = errors.New("analysis: not enough positive samples")

// Growth is an exponential fit value ≈ exp(Intercept + Rate·t).
type Growth struct {
	Rate      float64
	Intercept float64
	// R2 is the coefficient of determination of the log-linear fit.
	R2      float64
	Samples int
}

// DoublingTime is ln 2 / Rate, or +Inf for a non-growing population.
func (g Growth) DoublingTime() float64 {
	if g.Rate <= 0 {
		return math.Inf(1)
	}
	return math.Ln2 / g.Rate
}

// FitGrowth fits log(values) against times over the strictly increasing
// prefix, skipping non-positive values. The last sample before growth
// stops may straddle exhaustion, so it is left out of the fit.
func FitGrowth(times, values []float64) (Growth, error) {
	end := len(values)
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			end = i - 1
			break
		}
	}

	xs := make([]float64, 0, end)
	ys := make([]float64, 0, end)
	for i := 0; i < end && i < len(times); i++ {
		if values[i] > 0 {
			xs = append(xs, times[i])
			ys = append(ys, math.Log(values[i]))
		}
	}
	if len(xs) < 2 {
		return Growth{}, ErrTooFewPoints
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Growth{
		Rate:      beta,
		Intercept: alpha,
		R2:        stat.RSquared(xs, ys, nil, alpha, beta),
		Samples:   len(xs),
	}, nil
}

// Plateau returns the first time values stop changing by more than tol
// between samples, or -1 if they never do.
func Plateau(times, values []float64, tol float64) float64 {
	for i := 1; i < len(values) && i < len(times); i++ {
		if math.Abs(values[i]-values[i-1]) <= tol {
			return times[i-1]
		}
	}
	return -1
}
