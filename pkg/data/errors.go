package data

import "errors"

// Error kinds shared by every stage of an evaluation run. Callers wrap them
// with context and test with errors.Is.
var (
	// ErrInvalidConfig reports a bad run configuration (K < 2, empty dataset, ...).
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInsufficientData reports a sample or bucket too small or too one-sided to fit a model on.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSamplingExhausted reports a draw larger than the records available for it.
	ErrSamplingExhausted = errors.New("sampling exhausted")
	// ErrInvalidRecord reports a record that breaks a dataset invariant.
	ErrInvalidRecord = errors.New("invalid record")
)
