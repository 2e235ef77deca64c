package engine

import (
	"fmt"

	"github.com/hupe1980/vecquery/filter"
)

// validateRequest checks a request before any distributed work starts.
// It returns a normalized copy with defaults applied (boost 1.0, size 10).
// Validation errors are fatal and surface to the caller untranslated.
func (e *Executor) validateRequest(req *Request) (*Request, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if req.Query != nil && len(req.Clauses) > 0 {
		return nil, fmt.Errorf("%w: a request uses either the dedicated KNN clauses or a generic KNN query, not both", ErrInvalidRequest)
	}
	if req.Query == nil && len(req.Clauses) == 0 && req.Lexical == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if req.Size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrInvalidRequest, req.Size)
	}

	norm := *req
	if norm.Size == 0 {
		norm.Size = defaultSize
	}

	norm.Clauses = make([]Clause, len(req.Clauses))
	for i := range req.Clauses {
		c, err := e.validateClause(req.Clauses[i])
		if err != nil {
			return nil, err
		}
		norm.Clauses[i] = c
	}
	if req.Query != nil {
		c, err := e.validateClause(*req.Query)
		if err != nil {
			return nil, err
		}
		norm.Query = &c
	}

	if err := filter.Validate(norm.Alias); err != nil {
		return nil, err
	}

	return &norm, nil
}

func (e *Executor) validateClause(c Clause) (Clause, error) {
	dim, ok := e.schema[c.Field]
	if !ok {
		return Clause{}, &ErrUnknownField{Field: c.Field}
	}
	if len(c.Vector) != dim {
		return Clause{}, &ErrDimensionMismatch{Field: c.Field, Expected: dim, Actual: len(c.Vector)}
	}
	if c.K < 1 || c.K > c.NumCandidates {
		return Clause{}, fmt.Errorf("field %q: %w (k=%d, num_candidates=%d)", c.Field, ErrInvalidK, c.K, c.NumCandidates)
	}
	if c.Boost < 0 {
		return Clause{}, fmt.Errorf("field %q: %w (boost=%g)", c.Field, ErrInvalidBoost, c.Boost)
	}
	if c.Boost == 0 {
		c.Boost = 1
	}
	if err := filter.Validate(c.Filter); err != nil {
		return Clause{}, err
	}
	return c, nil
}
