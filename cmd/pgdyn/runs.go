package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/pgdyn/internal/analysis"
	"github.com/san-kum/pgdyn/internal/config"
	"github.com/san-kum/pgdyn/internal/experiment"
	"github.com/san-kum/pgdyn/internal/models"
	"github.com/san-kum/pgdyn/internal/storage"
	"github.com/san-kum/pgdyn/internal/viz"
)

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tVARIANTS\tROWS\tMAXTIME\tINTERVAL\tSTEP\tEPS\tDELTA\tKAPPA")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%g\t%g\t%g\t%g\t%g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strings.Join(run.Variants, ","),
			run.Rows,
			run.MaxTime,
			run.Interval,
			run.Step,
			run.Params["eps"],
			run.Params["delta"],
			run.Params["kappa"],
		)
	}

	return w.Flush()
}

func loadSeries(cmd *cobra.Command, runID string) (*storage.RunMetadata, []viz.Series, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	stored, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(stored.Times) == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	series, err := viz.SeriesFromStored(stored, label)
	if err != nil {
		return nil, nil, err
	}
	return meta, series, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadSeries(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("variants: %s\n", strings.Join(meta.Variants, ", "))
	fmt.Printf("samples: %d\n\n", meta.Rows)

	caption := label + " vs time"
	if logScale {
		caption = "log10 " + caption
	}
	fmt.Println(viz.PlotASCII(series, 80, 15, caption, logScale))
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	meta, series, err := loadSeries(cmd, args[0])
	if err != nil {
		return err
	}

	opts := viz.DefaultChartOptions()
	opts.Title = meta.ID
	opts.YLabel = label
	opts.LogScale = logScale
	if err := viz.SaveChart(chartOut, series, opts); err != nil {
		return err
	}
	fmt.Printf("chart written to %s\n", chartOut)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	return st.ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	return st.ExportJSON(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	rows := make([][]string, 0)
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%g", p.Epsilon),
			fmt.Sprintf("%g", p.Delta),
			fmt.Sprintf("%g", p.Kappa),
			fmt.Sprintf("%g", p.MaxTime),
			fmt.Sprintf("%g", p.Interval),
			fmt.Sprintf("%g", p.Step),
		})
	}
	fmt.Println(viz.Table([]string{"PRESET", "EPS", "DELTA", "KAPPA", "MAXTIME", "INTERVAL", "STEP"}, rows))
	return nil
}

func listVariants(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	rows := make([][]string, 0)
	for _, name := range reg.Names() {
		v, err := reg.Variant(name)
		if err != nil {
			return err
		}
		x0 := models.DefaultInitialState(v)
		parts := make([]string, len(x0))
		for i, val := range x0 {
			parts[i] = fmt.Sprintf("%g", val)
		}
		rows = append(rows, []string{
			v.Name,
			"[" + strings.Join(v.Labels, ", ") + "]",
			v.Labels[v.Substrate],
			"[" + strings.Join(parts, ", ") + "]",
		})
	}
	fmt.Println(viz.Table([]string{"VARIANT", "STATE", "SUBSTRATE", "DEFAULT"}, rows))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	stored, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("growth analysis: %s\n\n", meta.ID)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tRATE\tDOUBLING\tR2\tSAMPLES\tPLATEAU")
	for i, col := range stored.Columns {
		_, l, _ := strings.Cut(col, ".")
		if l != models.LabelPopulation && l != models.LabelPopulation1 && l != models.LabelPopulation2 {
			continue
		}
		g, err := analysis.FitGrowth(stored.Times, stored.Values[i])
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\n", col)
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.6f\t%d\t%g\n",
			col, g.Rate, g.DoublingTime(), g.R2, g.Samples,
			analysis.Plateau(stored.Times, stored.Values[i], 0))
	}
	return w.Flush()
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	stored, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	xs, err := stored.Column(xColumn)
	if err != nil {
		return err
	}
	ys, err := stored.Column(yColumn)
	if err != nil {
		return err
	}
	p, err := analysis.NewPhasePortrait(xColumn, xs, yColumn, ys)
	if err != nil {
		return err
	}

	fmt.Printf("phase portrait: %s\n\n", args[0])
	fmt.Print(p.ASCII(70, 20))
	return nil
}
