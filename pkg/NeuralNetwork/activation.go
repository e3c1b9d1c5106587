package NeuralNetwork

import "math"

// Sigmoid maps x to (0, 1). Large negative inputs are evaluated through
// exp(x) so the result underflows to 0 instead of overflowing.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1.0 + e)
}
