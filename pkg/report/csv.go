// Package report renders experiment results as CSV, markdown tables, plots
// and per-bucket summaries.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"reviewml/pkg/experiment"
)

// Header is the column order of WriteCSV.
var Header = []string{"bucket_index", "size_step", "accuracy", "label_balance"}

var detailedHeader = append(append([]string{}, Header...),
	"sample_size", "train_size", "test_size", "intercept", "slope",
	"log_loss", "iterations", "duration_ms", "error")

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// WriteCSV writes rows under Header. Failed cells carry accuracy NaN.
func WriteCSV(w io.Writer, rows []experiment.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Bucket), strconv.Itoa(r.Step), ftoa(r.Accuracy), ftoa(r.LabelBalance)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVDetailed writes every cell of g with its fit diagnostics and error.
func WriteCSVDetailed(w io.Writer, g *experiment.Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailedHeader); err != nil {
		return err
	}
	for _, c := range g.Cells() {
		msg := ""
		if c.Err != nil {
			msg = c.Err.Error()
		}
		ev := c.Eval
		rec := []string{
			strconv.Itoa(c.Bucket), strconv.Itoa(c.Step), ftoa(c.Accuracy), ftoa(c.LabelBalance),
			strconv.Itoa(c.Size), strconv.Itoa(ev.TrainSize), strconv.Itoa(ev.TestSize),
			ftoa(ev.Intercept), ftoa(ev.Slope), ftoa(ev.LogLoss), strconv.Itoa(ev.Iterations),
			ftoa(float64(c.Duration.Microseconds()) / 1000),
			msg,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
