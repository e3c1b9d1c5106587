package model

// BinaryPredFromProba labels each probability 1 when it is strictly above
// threshold and 0 otherwise, so p == threshold is a 0.
func BinaryPredFromProba(proba []float64, threshold float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p > threshold {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	return out
}

// Accuracy returns the share of positions where yPred matches yTrue, or 0 for empty input.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// Confusion counts binary outcomes with 1 as the positive class.
type Confusion struct {
	TP, FP, TN, FN int
}

// NewConfusion tallies yPred against yTrue.
func NewConfusion(yTrue, yPred []int) Confusion {
	var c Confusion
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			c.TP++
		case yPred[i] == 1 && yTrue[i] == 0:
			c.FP++
		case yPred[i] == 0 && yTrue[i] == 1:
			c.FN++
		default:
			c.TN++
		}
	}
	return c
}

// PrecisionRecallF1 derives the usual scores; undefined ratios are 0.
func (c Confusion) PrecisionRecallF1() (prec, rec, f1 float64) {
	if c.TP+c.FP > 0 {
		prec = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		rec = float64(c.TP) / float64(c.TP+c.FN)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// IntLabels converts 0/1 float targets to ints.
func IntLabels(y []float64) []int {
	out := make([]int, len(y))
	for i, v := range y {
		if v == 1 {
			out[i] = 1
		}
	}
	return out
}
