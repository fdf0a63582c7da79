package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Red,
	asciigraph.Blue,
}

// PlotASCII draws several series in one terminal chart. With logScale the
// values are plotted as log10, zeros as NaN gaps.
func PlotASCII(series []Series, width, height int, caption string, logScale bool) string {
	if len(series) == 0 {
		return ""
	}

	data := make([][]float64, 0, len(series))
	legends := make([]string, 0, len(series))
	colors := make([]asciigraph.AnsiColor, 0, len(series))
	for i, s := range series {
		vals := s.Values
		if logScale {
			vals = log10(vals)
		}
		if len(vals) == 0 {
			continue
		}
		data = append(data, vals)
		legends = append(legends, s.Name)
		colors = append(colors, seriesColors[i%len(seriesColors)])
	}
	if len(data) == 0 {
		return ""
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)
}

func log10(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v > 0 {
			out[i] = math.Log10(v)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
