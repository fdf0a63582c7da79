package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/experiment"
	"github.com/san-kum/pgdyn/internal/models"
)

func TestFitGrowth(t *testing.T) {
	times := make([]float64, 20)
	values := make([]float64, 20)
	for i := range times {
		times[i] = float64(i) * 0.1
		values[i] = 2 * math.Exp(0.7*times[i])
	}
	// the plateau and the sample leading into it are ignored
	for i := 15; i < len(values); i++ {
		values[i] = values[14]
	}

	g, err := FitGrowth(times, values)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if math.Abs(g.Rate-0.7) > 1e-9 {
		t.Errorf("expected rate 0.7, got %v", g.Rate)
	}
	if math.Abs(g.Intercept-math.Log(2)) > 1e-9 {
		t.Errorf("expected intercept ln 2, got %v", g.Intercept)
	}
	if g.Samples != 14 {
		t.Errorf("expected 14 samples, got %d", g.Samples)
	}
	if g.R2 < 0.999999 {
		t.Errorf("expected perfect fit, R2 = %v", g.R2)
	}
	if math.Abs(g.DoublingTime()-math.Ln2/0.7) > 1e-9 {
		t.Errorf("unexpected doubling time %v", g.DoublingTime())
	}
}

func TestFitGrowthStopsAtExhaustion(t *testing.T) {
	cfg := experiment.DefaultConfig()
	cfg.Params = dynamo.Params{}
	v := models.Direct()
	comp, err := experiment.NewComparison(cfg, []experiment.Entry{
		{Variant: v, InitialState: models.DefaultInitialState(v)},
	})
	if err != nil {
		t.Fatalf("comparison failed: %v", err)
	}

	var times, pop []float64
	_, err = comp.Run(context.Background(), func(r experiment.Row) error {
		times = append(times, r.Time)
		pop = append(pop, r.States[0][0])
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	g, err := FitGrowth(times, pop)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	// unit activity without feedback, substrate runs out near t = ln 5001
	if math.Abs(g.Rate-1) > 0.02 {
		t.Errorf("expected rate near 1, got %v", g.Rate)
	}
	if g.R2 < 0.9999 {
		t.Errorf("expected log-linear growth, R2 = %v", g.R2)
	}
	if g.Samples >= len(pop)/2 {
		t.Errorf("fit used %d of %d rows, plateau included", g.Samples, len(pop))
	}
	if p := Plateau(times, pop, 0); p < 8 || p > 9 {
		t.Errorf("expected plateau near 8.5, got %v", p)
	}
}

func TestFitGrowthTooFew(t *testing.T) {
	_, err := FitGrowth([]float64{0, 1, 2}, []float64{0, 0, 1})
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestDoublingTimeFlat(t *testing.T) {
	if !math.IsInf(Growth{}.DoublingTime(), 1) {
		t.Error("expected infinite doubling time")
	}
}

func TestPlateau(t *testing.T) {
	times := []float64{1, 2, 3, 4}
	if got := Plateau(times, []float64{1, 5, 5, 5}, 0); got != 2 {
		t.Errorf("expected plateau at 2, got %v", got)
	}
	if got := Plateau(times, []float64{1, 2, 3, 4}, 0.5); got != -1 {
		t.Errorf("expected no plateau, got %v", got)
	}
}

func TestPhasePortrait(t *testing.T) {
	if _, err := NewPhasePortrait("n", []float64{1}, "pg", nil); err == nil {
		t.Error("expected length mismatch error")
	}

	p, err := NewPhasePortrait("n", []float64{1, 2, 3}, "pg", []float64{0, 1, 4})
	if err != nil {
		t.Fatal(err)
	}
	out := p.ASCII(20, 8)
	if strings.Count(out, "•") != 3 {
		t.Errorf("expected 3 points, got:\n%s", out)
	}
	if !strings.HasPrefix(out, "pg") {
		t.Error("missing y label")
	}

	empty := &PhasePortrait{}
	if empty.ASCII(20, 8) != "" {
		t.Error("expected empty output")
	}
}
