package main

import (
	"io"
	"log/slog"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"reviewml/pkg/config"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "reviewml",
		Short: "Stratified resampling evaluation of sentiment-based review classifiers",
		Long: `reviewml buckets reviews by word count, draws K growing samples from each
bucket, fits a logistic regression of the label on the sentiment score and
reports held-out accuracy for every (bucket, size) cell.

Settings come from defaults, then --config, then REVIEWML_* environment
variables, then command-line flags.

Examples:
  reviewml synth --n 1000 --out reviews.csv
  reviewml partition --input reviews.csv --k 5
  reviewml run --input reviews.csv --mode balanced --table --plot acc.png`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newRunCmd(a), newSynthCmd(a), newPartitionCmd(a))
	return root
}

// setup loads the config and installs the logger in the command context.
func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx, a.configPath, nil)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger := clog.New(newHandler(cmd.ErrOrStderr(), cfg.Log))
	cmd.SetContext(clog.WithLogger(ctx, logger))
	return nil
}

func newHandler(w io.Writer, lc config.Log) slog.Handler {
	var level slog.Level
	_ = level.UnmarshalText([]byte(lc.Level))
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
