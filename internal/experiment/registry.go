package experiment

import (
	"fmt"

	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/metrics"
	"github.com/san-kum/pgdyn/internal/models"
)

type Registry struct {
	variants map[string]func() models.Variant
	order    []string
}

func NewRegistry() *Registry {
	r := &Registry{
		variants: make(map[string]func() models.Variant),
	}

	r.register(models.WithPGName, models.WithPublicGood)
	r.register(models.DirectName, models.Direct)
	r.register(models.TwoStrainWithPGName, models.TwoStrainWithPublicGood)
	r.register(models.TwoStrainDirectName, models.TwoStrainDirect)

	return r
}

func (r *Registry) register(name string, fn func() models.Variant) {
	r.variants[name] = fn
	r.order = append(r.order, name)
}

func (r *Registry) Variant(name string) (models.Variant, error) {
	fn, ok := r.variants[name]
	if !ok {
		return models.Variant{}, fmt.Errorf("unknown variant: %s", name)
	}
	return fn(), nil
}

// Names lists the registered variants in comparison order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Entries resolves names into entries with their default initial states.
func (r *Registry) Entries(names ...string) ([]Entry, error) {
	if len(names) == 0 {
		names = r.order
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		v, err := r.Variant(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Variant: v, InitialState: models.DefaultInitialState(v)})
	}
	return entries, nil
}

// DefaultMetrics summarises a trajectory by the peak of each population,
// the final public good level and the substrate exhaustion time.
func DefaultMetrics(v models.Variant) []dynamo.Metric {
	ms := make([]dynamo.Metric, 0, 4)
	for _, i := range v.Populations() {
		ms = append(ms, metrics.NewPeak(i, v.Labels[i]))
	}
	if pg := v.Index(models.LabelPublicGood); pg >= 0 {
		ms = append(ms, metrics.NewFinal(pg, models.LabelPublicGood))
	}
	ms = append(ms, metrics.NewZeroTime(v.Substrate, models.LabelSubstrate))
	return ms
}
