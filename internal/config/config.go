package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/experiment"
	"github.com/san-kum/pgdyn/internal/integrators"
	"github.com/san-kum/pgdyn/internal/models"
)

const (
	DefaultEpsilon  = 1e-6
	DefaultDelta    = 1e-6
	DefaultKappa    = 1.0
	DefaultMaxTime  = 20.0
	DefaultInterval = 0.1
	DefaultStep     = 1e-3
	DefaultDataDir  = ".pgdyn"
)

type Config struct {
	Epsilon float64 `yaml:"epsilon" env:"PGDYN_EPSILON"`
	Delta   float64 `yaml:"delta" env:"PGDYN_DELTA"`
	Kappa   float64 `yaml:"kappa" env:"PGDYN_KAPPA"`

	MaxTime         float64 `yaml:"max_time" env:"PGDYN_MAX_TIME"`
	Interval        float64 `yaml:"interval" env:"PGDYN_INTERVAL"`
	Step            float64 `yaml:"step" env:"PGDYN_STEP"`
	MaxSteps        uint64  `yaml:"max_steps" env:"PGDYN_MAX_STEPS"`
	RequirePositive bool    `yaml:"require_positive" env:"PGDYN_REQUIRE_POSITIVE"`
	ValidateState   bool    `yaml:"validate_state" env:"PGDYN_VALIDATE_STATE"`
	Method          string  `yaml:"method" env:"PGDYN_METHOD"`

	Variants  []string             `yaml:"variants" env:"PGDYN_VARIANTS" envSeparator:","`
	InitState map[string][]float64 `yaml:"init_state"`
	DataDir   string               `yaml:"data_dir" env:"PGDYN_DATA_DIR"`
}

func DefaultConfig() *Config {
	return &Config{
		Epsilon:         DefaultEpsilon,
		Delta:           DefaultDelta,
		Kappa:           DefaultKappa,
		MaxTime:         DefaultMaxTime,
		Interval:        DefaultInterval,
		Step:            DefaultStep,
		RequirePositive: true,
		Method:          integrators.MethodRK4,
		Variants:        experiment.NewRegistry().Names(),
		DataDir:         DefaultDataDir,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	return LoadOnto(DefaultConfig(), path)
}

// LoadOnto reads a YAML file on top of base, which is modified in place.
func LoadOnto(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from PGDYN_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Params() dynamo.Params {
	return dynamo.Params{Epsilon: c.Epsilon, Delta: c.Delta, Kappa: c.Kappa}
}

func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Params: c.Params(),
		Config: dynamo.Config{
			Step:            c.Step,
			Interval:        c.Interval,
			MaxTime:         c.MaxTime,
			MaxSteps:        c.MaxSteps,
			RequirePositive: c.RequirePositive,
			ValidateState:   c.ValidateState,
			Method:          c.Method,
		},
	}
}

// Entries resolves the configured variants and their initial states.
func (c *Config) Entries(reg *experiment.Registry) ([]experiment.Entry, error) {
	entries, err := reg.Entries(c.Variants...)
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		if x0, ok := c.InitState[e.Variant.Name]; ok {
			entries[i].InitialState = dynamo.State(x0).Clone()
		}
	}
	return entries, nil
}

func (c *Config) Validate() error {
	if !(c.Step > 0) {
		return fmt.Errorf("step must be positive, got %g", c.Step)
	}
	if !(c.Interval > 0) {
		return fmt.Errorf("interval must be positive, got %g", c.Interval)
	}
	if !(c.MaxTime > 0) {
		return fmt.Errorf("max_time must be positive, got %g", c.MaxTime)
	}
	if _, err := integrators.New(c.Method); err != nil {
		return err
	}
	reg := experiment.NewRegistry()
	for _, name := range c.Variants {
		if _, err := reg.Variant(name); err != nil {
			return err
		}
	}
	for name, x0 := range c.InitState {
		v, err := reg.Variant(name)
		if err != nil {
			return fmt.Errorf("init_state: %w", err)
		}
		if len(x0) != v.Dim {
			return fmt.Errorf("init_state %s: %w: got %d components, want %d",
				name, dynamo.ErrDimensionMismatch, len(x0), v.Dim)
		}
		for i, val := range x0 {
			if val < 0 {
				return fmt.Errorf("init_state %s: component %s is negative", name, v.Labels[i])
			}
		}
	}
	return nil
}

// InitialState returns the configured or default initial state of a variant.
func (c *Config) InitialState(v models.Variant) dynamo.State {
	if x0, ok := c.InitState[v.Name]; ok {
		return dynamo.State(x0).Clone()
	}
	return models.DefaultInitialState(v)
}
