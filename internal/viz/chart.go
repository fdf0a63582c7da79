package viz

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type ChartOptions struct {
	Title  string
	YLabel string
	// LogScale switches the y axis to log10. It is ignored when a series
	// has a non-positive value.
	LogScale bool
	Width    vg.Length
	Height   vg.Length
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

// NewChart builds a line plot with one line per series.
func NewChart(series []Series, opts ChartOptions) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("nothing to chart")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "time"
	p.Y.Label.Text = opts.YLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	positive := true
	for i, s := range series {
		if len(s.Times) != len(s.Values) {
			return nil, fmt.Errorf("series %s: %d times, %d values", s.Name, len(s.Times), len(s.Values))
		}
		pts := make(plotter.XYs, len(s.Values))
		for k := range s.Values {
			pts[k].X = s.Times[k]
			pts[k].Y = s.Values[k]
			if s.Values[k] <= 0 {
				positive = false
			}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	if opts.LogScale && positive {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	return p, nil
}

// WriteChart renders the chart to w in the given format (png, svg, pdf).
func WriteChart(w io.Writer, format string, series []Series, opts ChartOptions) error {
	p, err := NewChart(series, opts)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveChart writes the chart to path; the format follows the extension.
func SaveChart(path string, series []Series, opts ChartOptions) error {
	p, err := NewChart(series, opts)
	if err != nil {
		return err
	}
	return p.Save(opts.Width, opts.Height, path)
}
