package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/integrators"
)

// Config describes one time integrator. Step, InitialState and Dynamics are
// required; GlobalTime defaults to zero.
type Config struct {
	Step            float64
	RequirePositive bool
	InitialState    dynamo.State
	Dynamics        dynamo.System
	GlobalTime      float64
	Params          dynamo.Params

	// MaxSteps caps AdvanceUntilZero. Zero means no cap.
	MaxSteps uint64
	// ValidateState fails an advance as soon as a component turns NaN or Inf.
	ValidateState bool
	// Stepper defaults to RK4.
	Stepper integrators.Stepper
}

// Statistics counts the work done by an integrator over its lifetime.
type Statistics struct {
	StepCount uint64
	// LastElapsed is the local time consumed by the most recent advance,
	// including any overshoot past the requested duration.
	LastElapsed float64
}

// Integrator owns a state vector and advances it with fixed steps.
// It is not safe for concurrent use.
type Integrator struct {
	cfg        Config
	x          dynamo.State
	globalTime float64
	stepper    integrators.Stepper
	stats      Statistics
}

// New validates cfg and probes the dynamics once so that a dimension
// mismatch is reported before any stepping happens.
func New(cfg Config) (*Integrator, error) {
	if len(cfg.InitialState) == 0 {
		return nil, dynamo.ErrNoInitialState
	}
	if cfg.Dynamics == nil {
		return nil, dynamo.ErrNoDynamics
	}
	if !(cfg.Step > 0) || math.IsInf(cfg.Step, 0) {
		return nil, fmt.Errorf("%w: got %v", dynamo.ErrInvalidStep, cfg.Step)
	}
	if dim := cfg.Dynamics.StateDim(); dim != len(cfg.InitialState) {
		return nil, fmt.Errorf("%w: initial state has %d components, system expects %d",
			dynamo.ErrDimensionMismatch, len(cfg.InitialState), dim)
	}

	x := cfg.InitialState.Clone()
	n, err := probe(cfg.Dynamics, cfg.GlobalTime, x.Clone(), cfg.Params)
	if err != nil {
		return nil, err
	}
	if n != len(x) {
		return nil, fmt.Errorf("%w: initial state has %d components, derivative has %d",
			dynamo.ErrDimensionMismatch, len(x), n)
	}

	stepper := cfg.Stepper
	if stepper == nil {
		stepper = integrators.NewRK4()
	}

	return &Integrator{
		cfg:        cfg,
		x:          x,
		globalTime: cfg.GlobalTime,
		stepper:    stepper,
	}, nil
}

func probe(sys dynamo.System, t float64, x dynamo.State, p dynamo.Params) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: probe evaluation failed: %v", dynamo.ErrDimensionMismatch, r)
		}
	}()
	return len(sys.Derive(t, x, p)), nil
}

// step takes one step at absolute time t and applies the floor.
func (in *Integrator) step(t float64) error {
	in.x = in.stepper.Step(in.cfg.Dynamics, in.x, in.cfg.Params, t, in.cfg.Step)
	if in.cfg.RequirePositive {
		in.x.ClampNonNegative()
	}
	in.stats.StepCount++
	if in.cfg.ValidateState && !in.x.IsValid() {
		return &dynamo.SimulationError{
			Step:    in.stats.StepCount,
			Time:    t + in.cfg.Step,
			State:   in.x.Clone(),
			Wrapped: dynamo.ErrInvalidState,
		}
	}
	return nil
}

// AdvanceByDuration steps while the local elapsed time is at most d, so the
// last step may overshoot d by up to one step size. The global clock moves
// by exactly d.
func (in *Integrator) AdvanceByDuration(d float64) error {
	if !(d >= 0) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: got %v", dynamo.ErrInvalidDuration, d)
	}

	t := 0.0
	for t <= d {
		if err := in.step(in.globalTime + t); err != nil {
			in.stats.LastElapsed = t
			in.globalTime += t
			return err
		}
		t += in.cfg.Step
	}
	in.stats.LastElapsed = t
	in.globalTime += d
	return nil
}

// AdvanceUntilZero steps while component index is positive. The global
// clock moves by the local time consumed.
func (in *Integrator) AdvanceUntilZero(index int) error {
	if index < 0 || index >= len(in.x) {
		return fmt.Errorf("%w: index %d, state has %d components", dynamo.ErrIndexOutOfRange, index, len(in.x))
	}

	t := 0.0
	var taken uint64
	defer func() {
		in.stats.LastElapsed = t
		in.globalTime += t
	}()

	for in.x[index] > 0 {
		if in.cfg.MaxSteps > 0 && taken >= in.cfg.MaxSteps {
			return &dynamo.SimulationError{
				Step:    in.stats.StepCount,
				Time:    in.globalTime + t,
				State:   in.x.Clone(),
				Wrapped: dynamo.ErrNoZeroReached,
			}
		}
		if err := in.step(in.globalTime + t); err != nil {
			return err
		}
		t += in.cfg.Step
		taken++
	}
	return nil
}

// State returns a copy of the current state vector.
func (in *Integrator) State() dynamo.State {
	return in.x.Clone()
}

func (in *Integrator) GlobalTime() float64 { return in.globalTime }

func (in *Integrator) Stats() Statistics { return in.stats }

// String renders every component as a fixed-width %14.6e field.
func (in *Integrator) String() string {
	return Render(in.x)
}

// Render formats a state the way rows of the comparison output do.
func Render(x dynamo.State) string {
	fields := make([]string, len(x))
	for i, v := range x {
		fields[i] = fmt.Sprintf("%14.6e", v)
	}
	return strings.Join(fields, " ")
}
