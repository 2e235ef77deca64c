package filter

import (
	"errors"

	"github.com/hupe1980/vecquery/metadata"
)

// ErrMalformed is returned when a filter expression is structurally invalid
// (empty field name, empty lookup reference). It is a request-validation
// error: resolution fails before any distributed work starts.
var ErrMalformed = errors.New("filter: malformed expression")

// Expr is a node of the filter expression grammar. A filter specification
// is a list of expressions combined with AND semantics.
//
// Implementations: Term, Terms, TermsLookup.
type Expr interface {
	// validate checks structural well-formedness.
	validate() error
}

// Term matches documents whose field equals the given value. A document
// field holding an array matches if any element equals the value.
type Term struct {
	Field string
	Value metadata.Value
}

func (t Term) validate() error {
	if t.Field == "" {
		return ErrMalformed
	}
	return nil
}

// Terms matches documents whose field equals any of the given values.
type Terms struct {
	Field  string
	Values []metadata.Value
}

func (t Terms) validate() error {
	if t.Field == "" {
		return ErrMalformed
	}
	return nil
}

// TermsLookup matches documents whose field equals any value found under
// LookupPath in the document LookupID of LookupIndex. The resolver expands
// it into a literal Terms predicate before shard execution; the request
// never carries the values themselves.
type TermsLookup struct {
	Field       string
	LookupIndex string
	LookupID    string
	LookupPath  string
}

func (t TermsLookup) validate() error {
	if t.Field == "" || t.LookupIndex == "" || t.LookupID == "" || t.LookupPath == "" {
		return ErrMalformed
	}
	return nil
}

// Eq is shorthand for a Term expression.
func Eq(field string, value metadata.Value) Term {
	return Term{Field: field, Value: value}
}

// In is shorthand for a Terms expression.
func In(field string, values ...metadata.Value) Terms {
	return Terms{Field: field, Values: values}
}

// Lookup is shorthand for a TermsLookup expression.
func Lookup(field, lookupIndex, lookupID, lookupPath string) TermsLookup {
	return TermsLookup{
		Field:       field,
		LookupIndex: lookupIndex,
		LookupID:    lookupID,
		LookupPath:  lookupPath,
	}
}

// Validate checks every expression in a specification.
func Validate(exprs []Expr) error {
	for _, e := range exprs {
		if e == nil {
			return ErrMalformed
		}
		if err := e.validate(); err != nil {
			return err
		}
	}
	return nil
}
