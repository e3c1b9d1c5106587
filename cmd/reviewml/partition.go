package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewml/pkg/data"
	"reviewml/pkg/report"
	"reviewml/pkg/sampling"
	"reviewml/pkg/strata"
)

func newPartitionCmd(a *app) *cobra.Command {
	var (
		input string
		k     int
	)
	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Show word-count buckets and the sample sizes they support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("input") {
				input = a.cfg.Input
			}
			if !cmd.Flags().Changed("k") {
				k = a.cfg.K
			}
			if input == "" {
				return fmt.Errorf("%w: --input is required", data.ErrInvalidConfig)
			}
			ds, _, err := data.LoadCSV(ctx, input, a.cfg.LoadOptions())
			if err != nil {
				return fmt.Errorf("loading %s: %w", input, err)
			}
			part, err := strata.New(ds, k)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := report.WritePartition(out, part); err != nil {
				return err
			}
			for _, m := range []sampling.Mode{sampling.Uniform, sampling.MicroBalanced} {
				s, err := sampling.NewSchedule(part, m)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", m, err)
					continue
				}
				fmt.Fprintf(out, "%s: min_count=%d sizes=%v\n", m, s.MinCount(), s.Sizes())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "review CSV")
	cmd.Flags().IntVar(&k, "k", 5, "number of buckets")
	return cmd
}
