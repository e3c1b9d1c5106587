package report

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"reviewml/pkg/experiment"
	"reviewml/pkg/stats"
)

// BucketSummary aggregates the accuracy of one bucket across its size steps.
// Failed cells are counted but excluded from the statistics, which are NaN
// when every cell failed.
type BucketSummary struct {
	Bucket int
	Cells  int // successful cells
	Failed int
	Mean   float64
	Std    float64 // sample standard deviation; 0 for a single cell
	Median float64
	Min    float64
	Max    float64
}

// Summarize returns one BucketSummary per bucket, in bucket order.
func Summarize(rows []experiment.ResultRow) []BucketSummary {
	k := 0
	for _, r := range rows {
		k = max(k, r.Bucket)
	}
	acc := make([][]float64, k)
	out := make([]BucketSummary, k)
	for i := range out {
		out[i].Bucket = i + 1
	}
	for _, r := range rows {
		if math.IsNaN(r.Accuracy) {
			out[r.Bucket-1].Failed++
			continue
		}
		acc[r.Bucket-1] = append(acc[r.Bucket-1], r.Accuracy)
	}
	for i, xs := range acc {
		s := &out[i]
		s.Cells = len(xs)
		switch len(xs) {
		case 0:
			s.Mean, s.Std, s.Median = math.NaN(), math.NaN(), math.NaN()
			s.Min, s.Max = math.NaN(), math.NaN()
			continue
		case 1:
			s.Mean = xs[0]
		default:
			s.Mean, s.Std = stat.MeanStdDev(xs, nil)
		}
		s.Median = stats.Percentile(xs, 50)
		s.Min, s.Max = stats.MinMax(xs)
	}
	return out
}
