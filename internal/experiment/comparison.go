package experiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/integrators"
	"github.com/san-kum/pgdyn/internal/models"
	"github.com/san-kum/pgdyn/internal/sim"
)

// Config is shared by every integrator of a comparison.
type Config struct {
	Params dynamo.Params
	dynamo.Config
}

func DefaultConfig() Config {
	return Config{Params: dynamo.DefaultParams(), Config: dynamo.DefaultConfig()}
}

// Entry is one variant together with its own initial state.
type Entry struct {
	Variant      models.Variant
	InitialState dynamo.State
}

// Row is one point of the shared output grid.
type Row struct {
	Time float64
	// States holds one snapshot per integrator, in construction order.
	States []dynamo.State
	// GlobalTimes holds each integrator's clock at this row.
	GlobalTimes []float64
}

// String formats the row as the elapsed time followed by every integrator's
// rendered state.
func (r Row) String() string {
	parts := make([]string, 0, len(r.States)+1)
	parts = append(parts, fmt.Sprintf("%6.2f", r.Time))
	for _, s := range r.States {
		parts = append(parts, sim.Render(s))
	}
	return strings.Join(parts, " ")
}

type Result struct {
	Names   []string
	Columns []string
	Rows    []Row
	// Metrics maps variant name to metric name to value.
	Metrics map[string]map[string]float64
}

// Exhaustion reports a run-to-zero of one variant's substrate.
type Exhaustion struct {
	Name  string
	Time  float64
	Steps uint64
	State dynamo.State
	Err   error
}

type run struct {
	entry   Entry
	integ   *sim.Integrator
	metrics []dynamo.Metric
}

// Comparison advances one integrator per variant over a common time grid.
// The integrators are independent; they only share parameters and step.
type Comparison struct {
	cfg     Config
	runs    []*run
	elapsed float64
}

func NewComparison(cfg Config, entries []Entry) (*Comparison, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("comparison needs at least one variant")
	}
	if !(cfg.Interval > 0) || math.IsInf(cfg.Interval, 0) {
		return nil, fmt.Errorf("%w: output interval %v", dynamo.ErrInvalidDuration, cfg.Interval)
	}
	if !(cfg.MaxTime > 0) || math.IsInf(cfg.MaxTime, 0) {
		return nil, fmt.Errorf("%w: max time %v", dynamo.ErrInvalidDuration, cfg.MaxTime)
	}

	c := &Comparison{cfg: cfg, runs: make([]*run, 0, len(entries))}
	for _, e := range entries {
		stepper, err := integrators.New(cfg.Method)
		if err != nil {
			return nil, err
		}
		integ, err := sim.New(sim.Config{
			Step:            cfg.Step,
			RequirePositive: cfg.RequirePositive,
			InitialState:    e.InitialState,
			Dynamics:        e.Variant,
			Params:          cfg.Params,
			MaxSteps:        cfg.MaxSteps,
			ValidateState:   cfg.ValidateState,
			Stepper:         stepper,
		})
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", e.Variant.Name, err)
		}
		r := &run{entry: e, integ: integ, metrics: DefaultMetrics(e.Variant)}
		for _, m := range r.metrics {
			m.Observe(integ.State(), integ.GlobalTime())
		}
		c.runs = append(c.runs, r)
	}

	log.Debug("comparison ready", "variants", len(c.runs), "step", cfg.Step, "interval", cfg.Interval, "max_time", cfg.MaxTime)
	return c, nil
}

func (c *Comparison) Names() []string {
	names := make([]string, len(c.runs))
	for i, r := range c.runs {
		names[i] = r.entry.Variant.Name
	}
	return names
}

// Columns names every state component as variant.label, in row order.
func (c *Comparison) Columns() []string {
	cols := make([]string, 0)
	for _, r := range c.runs {
		for _, l := range r.entry.Variant.Labels {
			cols = append(cols, r.entry.Variant.Name+"."+l)
		}
	}
	return cols
}

func (c *Comparison) Elapsed() float64 { return c.elapsed }

// Done reports whether the grid has reached the configured maximum time.
func (c *Comparison) Done() bool { return !(c.elapsed < c.cfg.MaxTime) }

// Advance moves every integrator one output interval forward, in
// construction order, and returns the resulting row.
func (c *Comparison) Advance() (Row, error) {
	row := Row{
		States:      make([]dynamo.State, len(c.runs)),
		GlobalTimes: make([]float64, len(c.runs)),
	}
	for i, r := range c.runs {
		if err := r.integ.AdvanceByDuration(c.cfg.Interval); err != nil {
			return row, fmt.Errorf("variant %s at t=%.4f: %w", r.entry.Variant.Name, c.elapsed, err)
		}
		x := r.integ.State()
		for _, m := range r.metrics {
			m.Observe(x, r.integ.GlobalTime())
		}
		row.States[i] = x
		row.GlobalTimes[i] = r.integ.GlobalTime()
	}
	c.elapsed += c.cfg.Interval
	row.Time = c.elapsed
	return row, nil
}

// Run advances the grid until the maximum time, passing every row to emit
// as soon as it is produced. emit may be nil.
func (c *Comparison) Run(ctx context.Context, emit func(Row) error) (*Result, error) {
	res := &Result{
		Names:   c.Names(),
		Columns: c.Columns(),
		Rows:    make([]Row, 0, int(c.cfg.MaxTime/c.cfg.Interval)+1),
	}

	for !c.Done() {
		select {
		case <-ctx.Done():
			res.Metrics = c.Metrics()
			return res, ctx.Err()
		default:
		}

		row, err := c.Advance()
		if err != nil {
			res.Metrics = c.Metrics()
			return res, err
		}
		res.Rows = append(res.Rows, row)
		if emit != nil {
			if err := emit(row); err != nil {
				res.Metrics = c.Metrics()
				return res, err
			}
		}
	}

	res.Metrics = c.Metrics()
	log.Debug("comparison finished", "rows", len(res.Rows), "elapsed", c.elapsed)
	return res, nil
}

// Metrics collects the current metric values of every variant.
func (c *Comparison) Metrics() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(c.runs))
	for _, r := range c.runs {
		vals := make(map[string]float64, len(r.metrics))
		for _, m := range r.metrics {
			vals[m.Name()] = m.Value()
		}
		out[r.entry.Variant.Name] = vals
	}
	return out
}

// Exhaust runs every integrator until its substrate is used up. A variant
// that fails records the error and does not stop the others.
func (c *Comparison) Exhaust(ctx context.Context) ([]Exhaustion, error) {
	out := make([]Exhaustion, 0, len(c.runs))
	for _, r := range c.runs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		before := r.integ.Stats().StepCount
		err := r.integ.AdvanceUntilZero(r.entry.Variant.Substrate)
		if err != nil {
			log.Warn("substrate not exhausted", "variant", r.entry.Variant.Name, "err", err)
		}
		out = append(out, Exhaustion{
			Name:  r.entry.Variant.Name,
			Time:  r.integ.GlobalTime(),
			Steps: r.integ.Stats().StepCount - before,
			State: r.integ.State(),
			Err:   err,
		})
	}
	return out, nil
}
