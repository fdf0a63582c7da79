package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/pgdyn/internal/automation"
	"github.com/san-kum/pgdyn/internal/config"
	"github.com/san-kum/pgdyn/internal/experiment"
	"github.com/san-kum/pgdyn/internal/integrators"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	eps      float64
	delta    float64
	kappa    float64
	maxTime  float64
	interval float64
	step     float64
	maxSteps uint64
	method   string
	variants []string

	save      bool
	label     string
	logScale  bool
	chartOut  string
	sweepFile string
	sweepMin  float64
	sweepMax  float64
	sweepN    int
	frameRate int
	xColumn   string
	yColumn   string
)

// main exits with status 1 if the command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pgdyn",
		Short:        "public good population dynamics",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(os.Stderr)
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.Float64Var(&eps, "eps", config.DefaultEpsilon, "growth feedback sensitivity")
	pf.Float64Var(&delta, "delta", config.DefaultDelta, "yield feedback sensitivity")
	pf.Float64Var(&kappa, "kappa", config.DefaultKappa, "public good production rate")
	pf.Float64Var(&maxTime, "maxtime", config.DefaultMaxTime, "end of the output grid")
	pf.Float64Var(&interval, "interval", config.DefaultInterval, "output interval")
	pf.Float64Var(&step, "step", config.DefaultStep, "integration step")
	pf.Uint64Var(&maxSteps, "max-steps", 0,
		fmt.Sprintf("step cap for run-to-exhaustion (0 = none, sweep uses %d)", automation.DefaultMaxSteps))
	pf.StringVar(&method, "method", integrators.MethodRK4,
		"integration method ("+strings.Join(integrators.Methods(), ", ")+")")
	pf.StringSliceVar(&variants, "variants", experiment.NewRegistry().Names(), "variants to compare")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate all variants and print one row per output interval",
		Args:  cobra.NoArgs,
		RunE:  runComparison,
	}
	runCmd.Flags().BoolVar(&save, "save", false, "store the run in the data directory")

	exhaustCmd := &cobra.Command{
		Use:   "exhaust",
		Short: "run every variant until its substrate is used up",
		Args:  cobra.NoArgs,
		RunE:  runExhaust,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "exhaustion time over a range of one coefficient",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1e-3, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepFile, "file", "", "sweep definition (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one component of a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&label, "label", "s", "component label")
	plotCmd.Flags().BoolVar(&logScale, "log", false, "log10 scale")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "render one component of a stored run as an image",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVar(&label, "label", "s", "component label")
	chartCmd.Flags().BoolVar(&logScale, "log", false, "log10 scale")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "chart.png", "output file (png, svg, pdf)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "fit exponential growth rates of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two stored columns",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xColumn, "x", "with_pg.n", "column for the x axis")
	phaseCmd.Flags().StringVar(&yColumn, "y", "with_pg.pg", "column for the y axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the comparison advance in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	variantsCmd := &cobra.Command{
		Use:   "variants",
		Short: "list model variants and their state layout",
		Args:  cobra.NoArgs,
		RunE:  listVariants,
	}

	rootCmd.AddCommand(runCmd, exhaustCmd, sweepCmd, listCmd, plotCmd, chartCmd,
		analyzeCmd, phaseCmd, exportCSVCmd, exportJSONCmd, liveCmd, presetsCmd, variantsCmd)

	return rootCmd
}

// resolveConfig layers defaults, preset, file, environment and explicitly
// set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOnto(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("eps") {
		cfg.Epsilon = eps
	}
	if flags.Changed("delta") {
		cfg.Delta = delta
	}
	if flags.Changed("kappa") {
		cfg.Kappa = kappa
	}
	if flags.Changed("maxtime") {
		cfg.MaxTime = maxTime
	}
	if flags.Changed("interval") {
		cfg.Interval = interval
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("variants") {
		cfg.Variants = variants
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.Debug("config resolved",
		"eps", cfg.Epsilon, "delta", cfg.Delta, "kappa", cfg.Kappa,
		"step", cfg.Step, "interval", cfg.Interval, "max_time", cfg.MaxTime,
		"variants", cfg.Variants)
	return cfg, nil
}

// comparison builds a comparison of the configured variants.
func comparison(cfg *config.Config) (*experiment.Comparison, error) {
	entries, err := cfg.Entries(experiment.NewRegistry())
	if err != nil {
		return nil, err
	}
	return experiment.NewComparison(cfg.Experiment(), entries)
}
