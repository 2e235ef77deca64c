package engine

import (
	"context"

	"github.com/hupe1980/vecquery/aggregation"
	"github.com/hupe1980/vecquery/filter"
	"github.com/hupe1980/vecquery/metadata"
	"github.com/hupe1980/vecquery/model"
)

// Clause is a single KNN search clause over one named vector field.
// It is immutable once constructed; validation happens before any
// distributed work starts.
type Clause struct {
	// Field is the vector field to search.
	Field string

	// Vector is the query vector. Its length must match the field's
	// declared dimension.
	Vector []float32

	// K is the number of global nearest neighbors to return for the clause.
	K int

	// NumCandidates is the per-shard candidate pool size (≥ K).
	NumCandidates int

	// Boost scales the clause's scores. Zero means the default of 1.0.
	Boost float32

	// Filter restricts the clause to matching documents (ANDed expressions).
	Filter []filter.Expr
}

// LexicalQuery is the optional lexical query combined with the KNN clauses
// using additive should-semantics.
type LexicalQuery struct {
	Field string
	Text  string
}

// Request is one query execution against the coordination layer.
//
// Clauses and Query select one of two explicit integration paths with
// different hit-accounting semantics (see Executor):
//
//   - Clauses: the dedicated KNN path. Each clause contributes its
//     deduplicated global top-k to the hit count.
//   - Query: the generic-query path. Every shard's local candidate set
//     contributes to the hit count without global truncation.
//
// A request must use one path or the other, never both.
type Request struct {
	Clauses []Clause
	Query   *Clause
	Lexical *LexicalQuery

	// Alias is the alias-bound filter conjoined into every clause,
	// including clauses with no filter of their own.
	Alias []filter.Expr

	// Size is the page size. Zero means the default of 10.
	Size int

	// Aggregations are computed over the final matched-document set.
	Aggregations map[string]aggregation.Aggregation

	// Strict makes any shard failure fail the whole query instead of
	// degrading to a best-effort result.
	Strict bool
}

// Hit is one ranked result document.
type Hit struct {
	Doc    model.DocID
	Score  float32
	Fields metadata.Document
}

// Response is the result of one query execution.
type Response struct {
	Hits          []Hit
	TotalHits     int
	Aggregations  map[string]aggregation.Result
	ShardFailures []model.ShardFailure
}

// CandidateSource is the per-shard candidate gathering contract.
//
// SearchClause returns up to clause.NumCandidates locally best candidates
// drawn only from documents passing the resolved filter, ranked by
// similarity. Results may be approximate but must be deterministic for a
// fixed shard state and query. Documents whose stored vector cannot be
// compared (e.g. wrong dimension) are skipped, not errors.
type CandidateSource interface {
	Shard() model.ShardID
	SearchClause(ctx context.Context, clause Clause, resolved *filter.Resolved) ([]model.Candidate, error)
}

// LexicalSource is implemented by shards that also serve lexical queries.
// SearchLexical returns every matching document with its score, not a
// truncated page: the integrator needs the full match set for hit counting.
type LexicalSource interface {
	SearchLexical(ctx context.Context, query LexicalQuery) ([]model.Candidate, error)
}

// DocumentSource is implemented by shards that can return a document's
// stored fields. The executor uses it to populate hit fields and to feed
// aggregations; shards without it simply produce hits without fields.
type DocumentSource interface {
	Document(ordinal uint32) (metadata.Document, bool)
}
