package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mlqsched/internal/plot"
	"mlqsched/internal/report"
	"mlqsched/internal/sched"
	"mlqsched/internal/workload"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Optional YAML file with run options
	csvEvents  string // CSV event log path
	plotPath   string // gnuplot script path
	render     bool   // Run gnuplot on the script
	mergeTrace bool   // Coalesce consecutive grants in the printed trace
	noPlot     bool   // Skip the gnuplot script
	jsonOut    string // JSON summary path, "-" for stdout
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:          "mlqsched",
	Short:        "Multi-level queue CPU scheduling simulator",
	SilenceUsage: true,
}

// runCmd simulates every start directive of a workload file
var runCmd = &cobra.Command{
	Use:   "run [workload]",
	Short: "Run the scheduling simulation (reads stdin without a file)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		w, err := workload.Load(path)
		if err != nil {
			return err
		}
		cfg, err := resolveConfig(cmd, w.Config)
		if err != nil {
			return err
		}
		if err := setLogLevel(cfg.LogLevel); err != nil {
			return err
		}
		return simulate(cmd.Context(), cmd.OutOrStdout(), w, cfg)
	},
}

// validateCmd loads a workload and reports what would be skipped
var validateCmd = &cobra.Command{
	Use:   "validate [workload]",
	Short: "Check a workload file without simulating it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		w, err := workload.Load(path)
		if err != nil {
			return err
		}
		return validate(cmd.OutOrStdout(), w)
	},
}

// resolveConfig layers the options: defaults or the workload's run
// section, then --config, then flags given on the command line.
func resolveConfig(cmd *cobra.Command, cfg sched.Config) (sched.Config, error) {
	if configPath != "" {
		loaded, err := sched.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("reading %s: %w", configPath, err)
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("log") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("csv") {
		cfg.CSVEvents = csvEvents
	}
	if flags.Changed("plot") {
		cfg.Plot = plotPath
	}
	if flags.Changed("render") {
		cfg.Render = render
	}
	if flags.Changed("merge-trace") {
		cfg.MergeTrace = mergeTrace
	}
	cfg.Normalize()
	return cfg, nil
}

func setLogLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q", name)
	}
	logrus.SetLevel(level)
	return nil
}

// simulate runs every run of w, printing a report for each.
func simulate(ctx context.Context, out io.Writer, w *workload.Workload, cfg sched.Config) error {
	sinks := []sched.EventSink{sched.LogSink{}}
	if cfg.CSVEvents != "" {
		csvSink, err := sched.CreateCSVSink(cfg.CSVEvents)
		if err != nil {
			return err
		}
		defer func() {
			if err := csvSink.Close(); err != nil {
				logrus.Errorf("writing %s: %v", cfg.CSVEvents, err)
			}
		}()
		sinks = append(sinks, csvSink)
	}

	if len(w.Runs) == 0 {
		logrus.Warnf("%s: no start directive, nothing to simulate", w.Source)
	}

	script := cfg.Plot
	if script == "" {
		script = plot.ScriptPath(w.Source)
	}

	for i, run := range w.Runs {
		logrus.Infof("Starting simulation %d of %s: %d levels, %d processes", i+1, w.Source, len(run.Levels), len(run.Processes))

		result, err := sched.Simulate(run.Processes, run.NewLevels(), sched.WithSinks(sinks...))
		if err != nil {
			return err
		}
		report.Print(out, result, report.Options{MergeTrace: cfg.MergeTrace})

		if err := writeJSON(out, result); err != nil {
			return err
		}
		if noPlot {
			continue
		}
		if err := drawChart(ctx, script, result, cfg.Render); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(out io.Writer, result *sched.Result) error {
	switch jsonOut {
	case "":
		return nil
	case "-":
		return report.WriteJSON(out, result)
	}
	f, err := os.Create(jsonOut)
	if err != nil {
		return err
	}
	if err := report.WriteJSON(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func drawChart(ctx context.Context, script string, result *sched.Result, doRender bool) error {
	err := plot.CreateScript(script, result.Processes)
	if errors.Is(err, plot.ErrEmpty) {
		logrus.Debug("no processes, skipping Gantt plot")
		return nil
	}
	if err != nil {
		return err
	}
	logrus.Infof("Gantt plot saved to %s", script)

	if !doRender {
		return nil
	}
	if err := plot.Render(ctx, script); err != nil {
		if errors.Is(err, plot.ErrNoGnuplot) {
			logrus.Warn(err)
			return nil
		}
		return err
	}
	return nil
}

// validate prints the skipped entries and what each run contains. It
// fails when anything was skipped.
func validate(out io.Writer, w *workload.Workload) error {
	for _, d := range w.Diagnostics {
		_, _ = fmt.Fprintln(out, d.Error())
	}
	for i, run := range w.Runs {
		_, _ = fmt.Fprintf(out, "run %d: %d levels, %d processes\n", i+1, len(run.Levels), len(run.Processes))
		for j, p := range run.Levels {
			_, _ = fmt.Fprintf(out, "  level %d: %s\n", j+1, p)
		}
	}
	if n := len(w.Diagnostics); n > 0 {
		return fmt.Errorf("%s: %d entries skipped", w.Source, n)
	}
	return nil
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML file with run options")
	runCmd.Flags().StringVar(&csvEvents, "csv", "", "Write scheduling events as CSV to this file")
	runCmd.Flags().StringVar(&plotPath, "plot", "", "gnuplot script path (default: workload name with .gpi)")
	runCmd.Flags().BoolVar(&render, "render", false, "Run gnuplot on the generated script")
	runCmd.Flags().BoolVar(&mergeTrace, "merge-trace", false, "Print consecutive CPU grants to the same process as one")
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "Do not write the gnuplot script")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "Write a JSON summary to this file, - for stdout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
