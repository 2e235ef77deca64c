package vecquery

import (
	"github.com/hupe1980/vecquery/engine"
	"github.com/hupe1980/vecquery/filter"
)

// Knn is one KNN search clause: the k nearest neighbors of a query vector
// in a named vector field, drawn from a per-shard candidate pool of
// NumCandidates.
//
// The builder is immutable - each method returns a copy with the updated
// configuration.
//
// Example:
//
//	clause := vecquery.NewKnn("vector", query, 5, 10).
//	    WithBoost(2).
//	    WithFilter(filter.Eq("category", metadata.String("books")))
type Knn struct {
	field         string
	vector        []float32
	k             int
	numCandidates int
	boost         float32
	filter        []filter.Expr
}

// NewKnn creates a KNN clause for the given field and query vector.
func NewKnn(field string, vector []float32, k, numCandidates int) Knn {
	return Knn{
		field:         field,
		vector:        vector,
		k:             k,
		numCandidates: numCandidates,
	}
}

// WithBoost scales the clause's scores when combined with other clauses.
// Default: 1.0.
func (kn Knn) WithBoost(boost float32) Knn {
	kn.boost = boost
	return kn
}

// WithFilter restricts the clause to documents matching every expression.
func (kn Knn) WithFilter(exprs ...filter.Expr) Knn {
	kn.filter = append(append([]filter.Expr(nil), kn.filter...), exprs...)
	return kn
}

func (kn Knn) clause() engine.Clause {
	return engine.Clause{
		Field:         kn.field,
		Vector:        kn.vector,
		K:             kn.k,
		NumCandidates: kn.numCandidates,
		Boost:         kn.boost,
		Filter:        kn.filter,
	}
}
