package metrics

import (
	"testing"

	"github.com/san-kum/pgdyn/internal/dynamo"
)

func TestPeak(t *testing.T) {
	m := NewPeak(0, "n")
	if m.Name() != "peak_n" {
		t.Errorf("unexpected name %q", m.Name())
	}

	for i, v := range []float64{3, 7, 5} {
		m.Observe(dynamo.State{v, 0}, float64(i))
	}
	if m.Value() != 7 {
		t.Errorf("expected peak 7, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
	m.Observe(dynamo.State{0.5}, 0)
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5 after reset, got %f", m.Value())
	}
}

func TestFinal(t *testing.T) {
	m := NewFinal(2, "pg")
	m.Observe(dynamo.State{1, 1, 4}, 0)
	m.Observe(dynamo.State{1, 1, 9}, 1)
	if m.Value() != 9 {
		t.Errorf("expected 9, got %f", m.Value())
	}
	m.Observe(dynamo.State{1}, 2)
	if m.Value() != 9 {
		t.Error("short state should be ignored")
	}
}

func TestZeroTime(t *testing.T) {
	m := NewZeroTime(1, "s")
	if m.Value() != Never {
		t.Errorf("expected %f before any sample, got %f", Never, m.Value())
	}

	m.Observe(dynamo.State{1, 5}, 0.1)
	m.Observe(dynamo.State{1, 0}, 0.2)
	m.Observe(dynamo.State{1, 0}, 0.3)
	if m.Value() != 0.2 {
		t.Errorf("expected first zero at 0.2, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != Never {
		t.Error("expected Never after reset")
	}
}

func TestMetricsImplementInterface(t *testing.T) {
	var _ dynamo.Metric = NewPeak(0, "n")
	var _ dynamo.Metric = NewFinal(0, "n")
	var _ dynamo.Metric = NewZeroTime(0, "n")
}
