package stats

import (
	"errors"
	"math"
	"sort"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(n)
}

// Variance computes the population variance of a slice in a single pass.
func Variance(x []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	sum, sumSq := 0.0, 0.0
	for _, v := range x {
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	v := (sumSq / n) - (mean * mean)
	if v < 0 { // rounding on near-constant input
		return 0
	}
	return v
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// MinMax returns the minimum and maximum values in the slice.
func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	min, max := x[0], x[0]
	for i := 1; i < len(x); i++ {
		if x[i] < min {
			min = x[i]
		} else if x[i] > max {
			max = x[i]
		}
	}
	return min, max
}

// Percentile returns the p-th percentile value of the slice (0 <= p <= 100),
// interpolating linearly between order statistics.
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	return quantileSorted(cp, p/100)
}

// quantileSorted returns the q-quantile (0 <= q <= 1) of an ascending slice.
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	rank := q * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n || weight == 0 {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// ErrEmpty is returned by functions that need at least one value.
var ErrEmpty = errors.New("stats: empty input")

// Quantiles returns the k+1 empirical quantiles of x at probabilities
// 0, 1/k, ..., 1. The first value is min(x) and the last is max(x); the
// result is non-decreasing.
func Quantiles(x []float64, k int) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmpty
	}
	if k < 1 {
		return nil, errors.New("stats: quantile count must be positive")
	}
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	out := make([]float64, k+1)
	for i := 0; i <= k; i++ {
		out[i] = quantileSorted(cp, float64(i)/float64(k))
	}
	// Interpolation rounding must not break monotonicity.
	for i := 1; i <= k; i++ {
		if out[i] < out[i-1] {
			out[i] = out[i-1]
		}
	}
	return out, nil
}
