package report

import (
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"reviewml/pkg/experiment"
	"reviewml/pkg/strata"
)

func newTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// WriteTable renders the grid as a markdown table: one row per bucket, one
// column per size step, each cell "accuracy (label balance)".
func WriteTable(w io.Writer, res *experiment.Result) error {
	k := res.Grid.K
	headers := make([]string, 0, k+1)
	headers = append(headers, "bucket (words)")
	for s := 1; s <= k; s++ {
		headers = append(headers, fmt.Sprintf("n=%d", res.Sizes[s-1]))
	}

	table := newTable(headers, w)
	for b := 1; b <= k; b++ {
		row := make([]string, 0, k+1)
		row = append(row, fmt.Sprintf("%d (%g-%g]", b, res.Boundaries[b-1], res.Boundaries[b]))
		for s := 1; s <= k; s++ {
			row = append(row, formatCell(res.Grid.At(b, s)))
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteSummaryTable renders Summarize output as a markdown table.
func WriteSummaryTable(w io.Writer, sums []BucketSummary) error {
	table := newTable([]string{"bucket", "cells", "failed", "mean", "std", "median", "min", "max"}, w)
	for _, s := range sums {
		row := []string{
			fmt.Sprint(s.Bucket), fmt.Sprint(s.Cells), fmt.Sprint(s.Failed),
			formatAcc(s.Mean), formatAcc(s.Std), formatAcc(s.Median), formatAcc(s.Min), formatAcc(s.Max),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func formatCell(c *experiment.Cell) string {
	if c.Failed() {
		return "failed"
	}
	return fmt.Sprintf("%s (%.2f)", formatAcc(c.Accuracy), c.LabelBalance)
}

func formatAcc(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

// WritePartition renders the word-count buckets of part with their label counts.
func WritePartition(w io.Writer, part *strata.Partition) error {
	table := newTable([]string{"bucket", "words", "records", "pos", "neg"}, w)
	for _, b := range part.Buckets() {
		row := []string{
			fmt.Sprint(b.Index), fmt.Sprintf("(%g-%g]", b.Lo, b.Hi),
			fmt.Sprint(b.Len()), fmt.Sprint(len(b.Pos)), fmt.Sprint(len(b.Neg)),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
