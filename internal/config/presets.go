package config

import "sort"

var Presets = map[string]*Config{
	"baseline": {
		Epsilon: DefaultEpsilon, Delta: DefaultDelta, Kappa: DefaultKappa,
		MaxTime: DefaultMaxTime, Interval: DefaultInterval, Step: DefaultStep,
	},
	"neutral": {
		Epsilon: 0, Delta: 0, Kappa: 0,
		MaxTime: 10, Interval: 0.1, Step: 1e-3,
	},
	"strong_growth": {
		Epsilon: 1e-3, Delta: 0, Kappa: DefaultKappa,
		MaxTime: 12, Interval: 0.05, Step: 1e-4,
	},
	"efficient_yield": {
		Epsilon: 0, Delta: 1e-3, Kappa: DefaultKappa,
		MaxTime: 15, Interval: 0.1, Step: 1e-3,
	},
	"costly_good": {
		Epsilon: 1e-4, Delta: 1e-4, Kappa: 0.1,
		MaxTime: 20, Interval: 0.1, Step: 1e-3,
	},
}

// GetPreset returns a copy of a named preset with the remaining fields
// taken from the defaults, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Epsilon = p.Epsilon
	cfg.Delta = p.Delta
	cfg.Kappa = p.Kappa
	cfg.MaxTime = p.MaxTime
	cfg.Interval = p.Interval
	cfg.Step = p.Step
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
