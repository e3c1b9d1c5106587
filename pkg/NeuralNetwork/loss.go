package NeuralNetwork

import "math"

// probEps keeps log() finite when a probability saturates at 0 or 1.
const probEps = 1e-12

// BCE returns the mean binary cross-entropy of yPred against 0/1 targets and
// its gradient with respect to the linear predictor (p - y) / n.
// Use this loss when predicting probabilities for two classes (binary classification)
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	if n == 0 {
		return 0, nil
	}
	s := 0.0
	grad := make([]float64, n)

	for i := range n {
		p := math.Min(math.Max(yPred[i], probEps), 1-probEps)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (yPred[i] - y) / float64(n)
	}
	return s / float64(n), grad
}
