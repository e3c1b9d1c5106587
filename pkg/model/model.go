package model

import (
	"context"
	"fmt"
	"strings"

	"reviewml/pkg/data"
)

// Classifier is a binary classifier over real-valued feature rows with 0/1 targets.
type Classifier interface {
	Fit(ctx context.Context, X [][]float64, y []float64) error
	PredictProba(X [][]float64) []float64 // returns p(y=1)
	Predict(X [][]float64) []int
}

// Solver selects how LogisticRegression maximises the likelihood.
type Solver int

const (
	// Newton runs iteratively reweighted least squares; the default.
	Newton Solver = iota
	// SGD runs mini-batch gradient descent on standardised features.
	SGD
)

func (s Solver) String() string {
	switch s {
	case Newton:
		return "newton"
	case SGD:
		return "sgd"
	default:
		return fmt.Sprintf("Solver(%d)", int(s))
	}
}

// ParseSolver accepts "newton" (or "irls") and "sgd".
func ParseSolver(s string) (Solver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newton", "irls":
		return Newton, nil
	case "sgd":
		return SGD, nil
	}
	return Newton, fmt.Errorf("%w: unknown solver %q", data.ErrInvalidConfig, s)
}
