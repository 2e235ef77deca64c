package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when a clause's k is not positive or exceeds
	// its candidate pool size.
	ErrInvalidK = errors.New("k must be positive and not exceed num_candidates")

	// ErrInvalidBoost is returned when a clause's boost is negative.
	ErrInvalidBoost = errors.New("boost must be positive")

	// ErrInvalidRequest is returned for a structurally invalid request,
	// e.g. mixing the dedicated and generic integration paths.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrExecutorClosed is returned when a query is submitted after Close.
	ErrExecutorClosed = errors.New("executor closed")
)

// ErrDimensionMismatch indicates that a clause's query vector does not match
// the target field's declared dimension.
type ErrDimensionMismatch struct {
	Field    string
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("field %q: dimension mismatch: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// ErrUnknownField indicates a clause targeting a vector field that is not
// declared in the schema.
type ErrUnknownField struct {
	Field string
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown vector field %q", e.Field)
}
