package models

import (
	"math"
	"testing"

	"github.com/san-kum/pgdyn/internal/dynamo"
)

func TestVariantDimensions(t *testing.T) {
	tests := []struct {
		v         Variant
		dim       int
		substrate int
	}{
		{WithPublicGood(), 3, 1},
		{Direct(), 2, 1},
		{TwoStrainWithPublicGood(), 4, 2},
		{TwoStrainDirect(), 3, 2},
	}

	for _, tt := range tests {
		if tt.v.StateDim() != tt.dim {
			t.Errorf("%s: expected state dim %d, got %d", tt.v.Name, tt.dim, tt.v.StateDim())
		}
		if tt.v.Substrate != tt.substrate {
			t.Errorf("%s: expected substrate index %d, got %d", tt.v.Name, tt.substrate, tt.v.Substrate)
		}
		if len(tt.v.Labels) != tt.dim {
			t.Errorf("%s: expected %d labels, got %d", tt.v.Name, tt.dim, len(tt.v.Labels))
		}
		if tt.v.Labels[tt.v.Substrate] != LabelSubstrate {
			t.Errorf("%s: substrate index does not point at %q", tt.v.Name, LabelSubstrate)
		}
		x0 := DefaultInitialState(tt.v)
		if dx := tt.v.Derive(0, x0, dynamo.DefaultParams()); len(dx) != tt.dim {
			t.Errorf("%s: derivative has %d components, want %d", tt.v.Name, len(dx), tt.dim)
		}
	}
}

func TestZeroFeedbackIsProportionalGrowth(t *testing.T) {
	p := dynamo.Params{}

	for _, v := range All() {
		x := DefaultInitialState(v)
		dx := v.Derive(0, x, p)

		consumed := 0.0
		for _, i := range v.Populations() {
			if dx[i] != x[i] {
				t.Errorf("%s: component %d: expected growth %f, got %f", v.Name, i, x[i], dx[i])
			}
			consumed += x[i]
		}
		if dx[v.Substrate] != -consumed {
			t.Errorf("%s: expected substrate rate %f, got %f", v.Name, -consumed, dx[v.Substrate])
		}
		if pg := v.Index(LabelPublicGood); pg >= 0 && dx[pg] != 0 {
			t.Errorf("%s: expected no public good production with kappa=0, got %f", v.Name, dx[pg])
		}
	}
}

func TestSubstrateExhaustionIsFixedPoint(t *testing.T) {
	p := dynamo.Params{Epsilon: 0.3, Delta: 0.2}

	for _, v := range All() {
		x := DefaultInitialState(v)
		x[v.Substrate] = 0

		dx := v.Derive(0, x, p)
		for _, i := range v.Populations() {
			if dx[i] != 0 {
				t.Errorf("%s: population %d still grows on exhausted substrate: %f", v.Name, i, dx[i])
			}
		}
		if dx[v.Substrate] != 0 {
			t.Errorf("%s: substrate still consumed: %f", v.Name, dx[v.Substrate])
		}
	}
}

func TestActivityClampedAtZero(t *testing.T) {
	if a := Activity(-1, 5); a != 0 {
		t.Errorf("expected clamped activity 0, got %f", a)
	}
	if y := Yield(-1, 5); y != 0 {
		t.Errorf("expected clamped yield 0, got %f", y)
	}
	if a := Activity(0.5, 2); a != 2 {
		t.Errorf("expected activity 2, got %f", a)
	}

	v := WithPublicGood()
	dx := v.Derive(0, dynamo.State{3, 10, 5}, dynamo.Params{Epsilon: -1, Delta: 0.1, Kappa: 1})
	if dx[0] != 0 {
		t.Errorf("negative activity leaked into growth: %f", dx[0])
	}
	if dx[2] != 3 {
		t.Errorf("expected public good production 3, got %f", dx[2])
	}
}

func TestPublicGoodFeedback(t *testing.T) {
	v := WithPublicGood()
	p := dynamo.Params{Epsilon: 0.1, Delta: 0.5, Kappa: 2}
	x := dynamo.State{4, 100, 10}

	dx := v.Derive(0, x, p)

	a := 1 + 0.1*10.0
	y := 1 + 0.5*10.0
	if math.Abs(dx[0]-a*4) > 1e-12 {
		t.Errorf("growth: got %f, want %f", dx[0], a*4)
	}
	if math.Abs(dx[1]+a/y*4) > 1e-12 {
		t.Errorf("consumption: got %f, want %f", dx[1], -a/y*4)
	}
	if dx[2] != 8 {
		t.Errorf("production: got %f, want 8", dx[2])
	}
}

func TestTwoStrainOnlyProducerRespondsToEpsilon(t *testing.T) {
	p := dynamo.Params{Epsilon: 1, Delta: 0, Kappa: 1}
	x := dynamo.State{2, 3, 100, 4}

	dx := TwoStrainWithPublicGood().Derive(0, x, p)
	if dx[0] != 5*2 {
		t.Errorf("strain 1 growth: got %f, want 10", dx[0])
	}
	if dx[1] != 3 {
		t.Errorf("strain 2 should ignore eps: got %f, want 3", dx[1])
	}
	if dx[3] != 2 {
		t.Errorf("public good from strain 1 only: got %f, want 2", dx[3])
	}

	dx = TwoStrainDirect().Derive(0, dynamo.State{2, 3, 100}, p)
	if dx[0] != 3*2 {
		t.Errorf("direct strain 1 growth: got %f, want 6", dx[0])
	}
	if dx[1] != 3 {
		t.Errorf("direct strain 2 growth: got %f, want 3", dx[1])
	}
	if dx[2] != -9 {
		t.Errorf("direct consumption: got %f, want -9", dx[2])
	}
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	for _, v := range All() {
		x := DefaultInitialState(v)
		before := x.Clone()
		v.Derive(0, x, dynamo.DefaultParams())
		for i := range x {
			if x[i] != before[i] {
				t.Errorf("%s: input mutated at %d", v.Name, i)
			}
		}
	}
}
