package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/pgdyn/internal/automation"
	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/experiment"
	"github.com/san-kum/pgdyn/internal/sim"
	"github.com/san-kum/pgdyn/internal/storage"
	"github.com/san-kum/pgdyn/internal/viz"
)

func runComparison(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	comp, err := comparison(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	start := time.Now()
	result, err := comp.Run(ctx, func(row experiment.Row) error {
		_, err := fmt.Fprintln(out, row.String())
		return err
	})
	if err != nil {
		return err
	}
	log.Info("comparison finished", "rows", len(result.Rows), "elapsed", time.Since(start))

	for _, name := range result.Names {
		log.Debug("metrics", "variant", name, "values", result.Metrics[name])
	}

	if !save {
		return nil
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.NewMetadata(cfg.Experiment(), result), result)
	if err != nil {
		return err
	}
	log.Info("run saved", "id", runID, "dir", cfg.DataDir)
	return nil
}

func runExhaust(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	comp, err := comparison(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exhausted, err := comp.Exhaust(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tTIME\tSTEPS\tSTATE\tERROR")
	for _, ex := range exhausted {
		errText := "-"
		if ex.Err != nil {
			errText = ex.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%.4f\t%d\t%s\t%s\n",
			ex.Name, ex.Time, ex.Steps, strings.TrimSpace(sim.Render(ex.State)), errText)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepN,
		Variants: cfg.Variants,
	}
	if sweepFile != "" {
		sweep, err = automation.LoadSweep(sweepFile)
		if err != nil {
			return fmt.Errorf("failed to load sweep: %w", err)
		}
		if len(sweep.Variants) == 0 {
			sweep.Variants = cfg.Variants
		}
	}
	if len(args) > 0 {
		sweep.Param = args[0]
	}
	if sweep.Param == "" {
		return fmt.Errorf("sweep needs a coefficient name (%s)", strings.Join(dynamo.ParamNames(), ", "))
	}
	sweep.Base = cfg.Experiment()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tVARIANT\tEXHAUSTED\tSTEPS\tFINAL\n", strings.ToUpper(sweep.Param))
	for _, r := range results {
		exhaustedAt := fmt.Sprintf("%.4f", r.ExhaustionTime)
		if r.Err != nil {
			exhaustedAt = "-"
			log.Warn("sweep point failed", "variant", r.Variant, sweep.Param, r.ParamValue, "err", r.Err)
		}
		fmt.Fprintf(w, "%g\t%s\t%s\t%d\t%s\n",
			r.ParamValue, r.Variant, exhaustedAt, r.Steps, strings.TrimSpace(sim.Render(r.FinalState)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for name, best := range automation.Fastest(results) {
		log.Info("fastest exhaustion", "variant", name, sweep.Param, best.ParamValue, "time", best.ExhaustionTime)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	entries, err := cfg.Entries(experiment.NewRegistry())
	if err != nil {
		return err
	}

	frame := time.Second / 30
	if frameRate > 0 {
		frame = time.Second / time.Duration(frameRate)
	}

	m, err := viz.NewLiveModel(cfg.Experiment(), entries, frame)
	if err != nil {
		return err
	}
	if err := viz.RunLive(m); err != nil {
		return err
	}
	return m.Err()
}
