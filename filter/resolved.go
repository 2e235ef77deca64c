package filter

import "github.com/hupe1980/vecquery/metadata"

// Resolved is a fully literal filter predicate: every terms-lookup reference
// has been replaced by its fetched values and any alias filter has been
// conjoined. It is built once per clause per query execution and is
// immutable, so all shards evaluating the clause share it for concurrent
// reads.
type Resolved struct {
	preds []pred
	none  bool
}

// MatchAll is the resolved form of an empty filter specification.
var MatchAll = &Resolved{}

// Matches reports whether doc passes every predicate (AND semantics).
func (r *Resolved) Matches(doc metadata.Document) bool {
	if r == nil {
		return true
	}
	if r.none {
		return false
	}
	for i := range r.preds {
		if !r.preds[i].matches(doc) {
			return false
		}
	}
	return true
}

// MatchesAll reports whether the filter is trivially true. Candidate
// sources may use it to skip building a match bitmap.
func (r *Resolved) MatchesAll() bool {
	return r == nil || (!r.none && len(r.preds) == 0)
}

// MatchesNothing reports whether the filter can never match, e.g. after a
// terms lookup resolved to an empty value set. Candidate sources may use it
// to skip scoring entirely.
func (r *Resolved) MatchesNothing() bool {
	return r != nil && r.none
}

type pred struct {
	field  string
	values []metadata.Value
	// keys indexes values by metadata.Value.Key for O(1) membership when the
	// value set is large (typical after a terms-lookup expansion).
	keys map[string]struct{}
}

func newPred(field string, values []metadata.Value) pred {
	keys := make(map[string]struct{}, len(values))
	for _, v := range values {
		keys[v.Key()] = struct{}{}
	}
	return pred{field: field, values: values, keys: keys}
}

func (p *pred) matches(doc metadata.Document) bool {
	value, ok := doc[p.field]
	if !ok {
		return false
	}
	if arr, isArr := value.AsArray(); isArr {
		for _, elem := range arr {
			if p.contains(elem) {
				return true
			}
		}
		return false
	}
	return p.contains(value)
}

func (p *pred) contains(v metadata.Value) bool {
	if _, ok := p.keys[v.Key()]; ok {
		return true
	}
	// Key() distinguishes int from float; fall back to numeric equality.
	if _, numeric := v.AsNumber(); numeric {
		for _, candidate := range p.values {
			if candidate.Equal(v) {
				return true
			}
		}
	}
	return false
}
