package experiment

import (
	"context"
	"errors"
	"fmt"

	"reviewml/pkg/data"
)

// Re-exported so callers of this package need not import data for the sentinels.
var (
	ErrInvalidConfig     = data.ErrInvalidConfig
	ErrInsufficientData  = data.ErrInsufficientData
	ErrSamplingExhausted = data.ErrSamplingExhausted
)

// CellError is the failure of one grid cell.
type CellError struct {
	Bucket, Step int
	Err          error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell (bucket %d, step %d): %v", e.Bucket, e.Step, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// Code is a coarse error class for logs and metric labels.
type Code string

const (
	CodeOK                Code = "ok"
	CodeInvalidConfig     Code = "invalid_config"
	CodeInsufficientData  Code = "insufficient_data"
	CodeSamplingExhausted Code = "sampling_exhausted"
	CodeTimeout           Code = "timeout"
	CodeCanceled          Code = "canceled"
	CodeUnknown           Code = "unknown"
)

// Classify maps err to its Code using the sentinel errors only.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, data.ErrInvalidConfig):
		return CodeInvalidConfig
	case errors.Is(err, data.ErrInsufficientData):
		return CodeInsufficientData
	case errors.Is(err, data.ErrSamplingExhausted):
		return CodeSamplingExhausted
	default:
		return CodeUnknown
	}
}
