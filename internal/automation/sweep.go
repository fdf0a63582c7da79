package automation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/experiment"
)

// DefaultMaxSteps caps each run to exhaustion when the base configuration
// sets no cap. A coefficient that stops growth would otherwise loop forever.
const DefaultMaxSteps = 1_000_000

// ParameterSweep runs every selected variant to substrate exhaustion for
// evenly spaced values of one coefficient.
type ParameterSweep struct {
	Param    string   `yaml:"param"`
	Min      float64  `yaml:"min"`
	Max      float64  `yaml:"max"`
	NumSteps int      `yaml:"num_steps"`
	Variants []string `yaml:"variants"`

	Base experiment.Config `yaml:"-"`
}

type SweepResult struct {
	ParamValue     float64      `json:"param_value"`
	Variant        string       `json:"variant"`
	ExhaustionTime float64      `json:"exhaustion_time"`
	Steps          uint64       `json:"steps"`
	FinalState     dynamo.State `json:"final_state"`
	Err            error        `json:"-"`
}

// LoadSweep reads a sweep definition from a YAML file. The base
// configuration is not part of the file.
func LoadSweep(path string) (*ParameterSweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sweep ParameterSweep
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return nil, err
	}

	return &sweep, nil
}

// Values lists the coefficient values visited by the sweep. A single step
// visits Min only.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 0 {
		return nil
	}
	if s.NumSteps == 1 {
		return []float64{s.Min}
	}
	vals := make([]float64, s.NumSteps)
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	vals[len(vals)-1] = s.Max
	return vals
}

func (s *ParameterSweep) validate() error {
	if _, ok := s.Base.Params.Get(s.Param); !ok {
		return fmt.Errorf("%w: unknown coefficient %q (want one of %s)",
			dynamo.ErrParameterBounds, s.Param, strings.Join(dynamo.ParamNames(), ", "))
	}
	if s.NumSteps <= 0 {
		return fmt.Errorf("sweep needs at least one step, got %d", s.NumSteps)
	}
	if s.Max < s.Min {
		return fmt.Errorf("sweep range is empty: min %g > max %g", s.Min, s.Max)
	}
	return nil
}

// RunSweep builds a fresh comparison per coefficient value and exhausts it.
// Results are ordered by value, then by variant.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if err := sweep.validate(); err != nil {
		return nil, err
	}

	values := sweep.Values()
	results := make([]SweepResult, 0, len(values)*max(len(sweep.Variants), 1))

	for i, val := range values {
		params, err := sweep.Base.Params.With(sweep.Param, val)
		if err != nil {
			return results, err
		}

		entries, err := registry.Entries(sweep.Variants...)
		if err != nil {
			return results, err
		}

		cfg := sweep.Base
		cfg.Params = params
		if cfg.MaxSteps == 0 {
			cfg.MaxSteps = DefaultMaxSteps
		}
		comp, err := experiment.NewComparison(cfg, entries)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, val, err)
		}

		exhausted, err := comp.Exhaust(ctx)
		if err != nil {
			return results, err
		}

		for _, ex := range exhausted {
			results = append(results, SweepResult{
				ParamValue:     val,
				Variant:        ex.Name,
				ExhaustionTime: ex.Time,
				Steps:          ex.Steps,
				FinalState:     ex.State,
				Err:            ex.Err,
			})
		}

		log.Debug("sweep point done", "point", i+1, "of", len(values), sweep.Param, val)
	}

	return results, nil
}

// Fastest returns, for each variant, the sweep result with the earliest
// substrate exhaustion. Failed points are skipped.
func Fastest(results []SweepResult) map[string]SweepResult {
	best := make(map[string]SweepResult)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		cur, ok := best[r.Variant]
		if !ok || r.ExhaustionTime < cur.ExhaustionTime {
			best[r.Variant] = r
		}
	}
	return best
}
