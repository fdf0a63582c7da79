package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/pgdyn/internal/experiment"
	"github.com/san-kum/pgdyn/internal/storage"
)

// Series is one labelled component of one variant over time.
type Series struct {
	Name   string
	Times  []float64
	Values []float64
}

// SeriesFromResult extracts the component named label from every variant
// that has it. Columns are matched as variant.label.
func SeriesFromResult(res *experiment.Result, label string) ([]Series, error) {
	flat := make([][]float64, len(res.Rows))
	times := make([]float64, len(res.Rows))
	for i, row := range res.Rows {
		times[i] = row.Time
		for _, s := range row.States {
			flat[i] = append(flat[i], s...)
		}
	}

	out := make([]Series, 0)
	for j, col := range res.Columns {
		name, ok := matchColumn(col, label)
		if !ok {
			continue
		}
		vals := make([]float64, len(flat))
		for i := range flat {
			vals[i] = flat[i][j]
		}
		out = append(out, Series{Name: name, Times: times, Values: vals})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no variant has component %q", label)
	}
	return out, nil
}

// SeriesFromStored does the same for a run read back from storage.
func SeriesFromStored(s *storage.Series, label string) ([]Series, error) {
	out := make([]Series, 0)
	for j, col := range s.Columns {
		name, ok := matchColumn(col, label)
		if !ok {
			continue
		}
		out = append(out, Series{Name: name, Times: s.Times, Values: s.Values[j]})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no variant has component %q", label)
	}
	return out, nil
}

func matchColumn(col, label string) (string, bool) {
	name, l, ok := strings.Cut(col, ".")
	if !ok || l != label {
		return "", false
	}
	return name, true
}
