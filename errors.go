package vecquery

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecquery/engine"
	"github.com/hupe1980/vecquery/filter"
	"github.com/hupe1980/vecquery/lookup"
)

var (
	// ErrNotFound is returned by First when nothing matched, and wraps
	// lookup-store misses surfaced through filter resolution.
	ErrNotFound = errors.New("not found")

	// ErrInvalidK is returned when a clause's k is not positive or exceeds
	// its candidate pool size.
	ErrInvalidK = engine.ErrInvalidK

	// ErrInvalidBoost is returned when a clause's boost is negative.
	ErrInvalidBoost = engine.ErrInvalidBoost

	// ErrInvalidRequest is returned for a structurally invalid request.
	ErrInvalidRequest = engine.ErrInvalidRequest

	// ErrMalformedFilter is returned for a filter expression that fails
	// validation, e.g. a terms lookup without an index.
	ErrMalformedFilter = filter.ErrMalformed

	// ErrClosed is returned when a query is submitted after Close.
	ErrClosed = engine.ErrExecutorClosed
)

// ErrUnknownAlias indicates a query routed through an alias that was never
// registered.
type ErrUnknownAlias struct {
	Name string
}

func (e *ErrUnknownAlias) Error() string {
	return fmt.Sprintf("unknown alias %q", e.Name)
}

// ErrDimensionMismatch indicates a query vector that does not match the
// target field's declared dimension.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Field    string
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("field %q: dimension mismatch: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrUnknownField indicates a clause targeting a vector field that is not
// declared in the schema.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrUnknownField struct {
	Field string
	cause error
}

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown vector field %q", e.Field)
}

func (e *ErrUnknownField) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, lookup.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Dimension and field normalization.
	var dm *engine.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Field: dm.Field, Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var uf *engine.ErrUnknownField
	if errors.As(err, &uf) {
		return &ErrUnknownField{Field: uf.Field, cause: err}
	}

	return err
}
