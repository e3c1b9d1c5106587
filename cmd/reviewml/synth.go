package main

import (
	"io"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"reviewml/pkg/data"
)

func newSynthCmd(_ *app) *cobra.Command {
	var (
		opts data.SyntheticOptions
		out  string
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a synthetic review CSV",
		Long: `Generate alternating POS and NEG reviews with uniform word counts and a
sentiment score of +1 or -1 plus optional Gaussian noise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := data.Synthetic(opts)
			if err != nil {
				return err
			}
			if err := writeTo(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return data.WriteCSV(w, ds)
			}); err != nil {
				return err
			}
			clog.FromContext(cmd.Context()).With("records", ds.Len(), "noise", opts.Noise).Info("generated reviews")
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&opts.N, "n", 1000, "number of reviews")
	fl.IntVar(&opts.MaxWords, "max-words", 1000, "largest word count")
	fl.Float64Var(&opts.Noise, "noise", 0, "std-dev of the score noise")
	fl.Int64Var(&opts.Seed, "seed", 1, "random seed")
	fl.StringVar(&out, "out", "", "output CSV path; stdout when empty")
	return cmd
}
