package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"reviewml/pkg/data"
	"reviewml/pkg/experiment"
	"reviewml/pkg/report"
)

type runFlags struct {
	input           string
	out             string
	dedupe          bool
	k               int
	mode            string
	seed            uint64
	solver          string
	testRatio       float64
	workers         int
	cellTimeout     time.Duration
	continueOnError bool
	detailed        bool
	plot            string
	table           bool
	metricsOut      string
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the K×K bucket and sample-size grid",
		Long: `Partition the input by word-count quantiles and evaluate a logistic
regression of label on sentiment score for every bucket and sample size.

The result CSV has the columns bucket_index,size_step,accuracy,label_balance;
--detailed adds fit diagnostics and the error of failed cells.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.input, "input", "", "review CSV (required unless set in config)")
	fl.StringVar(&f.out, "out", "", "result CSV path; stdout when empty")
	fl.BoolVar(&f.dedupe, "dedupe", false, "drop reviews whose text repeats an earlier review")
	fl.IntVar(&f.k, "k", 0, "buckets and size steps")
	fl.StringVar(&f.mode, "mode", "", "sampling mode: uniform or balanced")
	fl.Uint64Var(&f.seed, "seed", 0, "global random seed")
	fl.StringVar(&f.solver, "solver", "", "logistic solver: newton or sgd")
	fl.Float64Var(&f.testRatio, "test-ratio", 0, "held-out share of each sample")
	fl.IntVar(&f.workers, "workers", 0, "concurrent cells; 0 means GOMAXPROCS")
	fl.DurationVar(&f.cellTimeout, "cell-timeout", 0, "deadline per cell; 0 disables")
	fl.BoolVar(&f.continueOnError, "continue-on-error", false, "record failed cells as NaN instead of aborting")
	fl.BoolVar(&f.detailed, "detailed", false, "write per-cell diagnostics")
	fl.StringVar(&f.plot, "plot", "", "write an accuracy plot (png, svg or pdf by extension)")
	fl.BoolVar(&f.table, "table", false, "print a markdown grid and per-bucket summary")
	fl.StringVar(&f.metricsOut, "metrics-out", "", "write Prometheus metrics in text format to this file")
	return cmd
}

// apply copies the flags the user set over the loaded config.
func (f *runFlags) apply(cmd *cobra.Command, a *app) {
	cfg, fl := a.cfg, cmd.Flags()
	if fl.Changed("input") {
		cfg.Input = f.input
	}
	if fl.Changed("out") {
		cfg.Output = f.out
	}
	if fl.Changed("dedupe") {
		cfg.Dedupe = f.dedupe
	}
	if fl.Changed("k") {
		cfg.K = f.k
	}
	if fl.Changed("mode") {
		cfg.Mode = f.mode
	}
	if fl.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fl.Changed("solver") {
		cfg.Solver = f.solver
	}
	if fl.Changed("test-ratio") {
		cfg.TestRatio = f.testRatio
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("cell-timeout") {
		cfg.CellTimeout = f.cellTimeout
	}
	if fl.Changed("continue-on-error") {
		cfg.ContinueOnError = f.continueOnError
	}
}

func (a *app) run(cmd *cobra.Command, f *runFlags) error {
	ctx := cmd.Context()
	f.apply(cmd, a)
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if a.cfg.Input == "" {
		return fmt.Errorf("%w: --input is required", data.ErrInvalidConfig)
	}
	ecfg, err := a.cfg.Experiment()
	if err != nil {
		return err
	}

	ds, st, err := data.LoadCSV(ctx, a.cfg.Input, a.cfg.LoadOptions())
	if err != nil {
		return fmt.Errorf("loading %s: %w", a.cfg.Input, err)
	}
	clog.FromContext(ctx).With("path", a.cfg.Input, "rows", st.Rows, "loaded", st.Loaded,
		"neutral", st.Neutral, "skipped", st.Skipped, "duplicates", st.Duplicates).Info("loaded reviews")

	reg := prometheus.NewRegistry()
	d, err := experiment.NewDriver(ecfg, experiment.WithMetrics(experiment.NewMetrics(reg)))
	if err != nil {
		return err
	}
	res, runErr := d.Run(ctx, ds)
	if path := f.metricsOut; path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if err := writeTo(cmd.OutOrStdout(), a.cfg.Output, func(w io.Writer) error {
		if f.detailed {
			return report.WriteCSVDetailed(w, res.Grid)
		}
		return report.WriteCSV(w, res.Rows())
	}); err != nil {
		return err
	}
	if f.table {
		out := cmd.OutOrStdout()
		if err := report.WriteTable(out, res); err != nil {
			return err
		}
		fmt.Fprintln(out)
		if err := report.WriteSummaryTable(out, report.Summarize(res.Rows())); err != nil {
			return err
		}
	}
	if f.plot != "" {
		p, err := report.PlotAccuracy(res.Rows(), res.Sizes,
			fmt.Sprintf("Accuracy by word-count bucket (%s, K=%d)", ecfg.Mode, ecfg.K))
		if err != nil {
			return err
		}
		if err := report.SavePlot(p, f.plot); err != nil {
			return fmt.Errorf("saving plot: %w", err)
		}
		clog.InfoContextf(ctx, "saved accuracy plot to %s", f.plot)
	}
	return nil
}

// writeTo runs write against path, or against stdout when path is empty.
func writeTo(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
