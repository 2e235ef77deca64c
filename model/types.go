package model

import "fmt"

// ShardID identifies one shard participating in a query execution.
type ShardID int

// DocID is the globally unique document identifier within a query execution.
//
// Format: [ShardID:8 bits][Ordinal:24 bits]
//
//	→ 256 shards max
//	→ 16M documents per shard
//
// The encoding makes a DocID a stable, totally ordered key across all merge
// stages: results from different shards can be deduplicated and ranked with
// plain integer comparison, and the owning shard is recoverable in O(1) for
// field fetches and aggregations.
type DocID uint32

const (
	shardBits   = 8
	ordinalBits = 24
	ordinalMask = (1 << ordinalBits) - 1

	// MaxShards is the maximum number of shards addressable by a DocID.
	MaxShards = 1 << shardBits
	// MaxOrdinal is the maximum shard-local ordinal addressable by a DocID.
	MaxOrdinal = 1 << ordinalBits
)

// NewDocID creates a DocID from a shard and a shard-local ordinal.
func NewDocID(shard ShardID, ordinal uint32) DocID {
	return DocID((uint32(shard) << ordinalBits) | (ordinal & ordinalMask))
}

// Shard extracts the owning shard (high 8 bits).
func (d DocID) Shard() ShardID {
	return ShardID(d >> ordinalBits)
}

// Ordinal extracts the shard-local ordinal (low 24 bits).
func (d DocID) Ordinal() uint32 {
	return uint32(d) & ordinalMask
}

func (d DocID) String() string {
	return fmt.Sprintf("Doc(%d:%d)", d.Shard(), d.Ordinal())
}

// Candidate is a (document, score) pair produced by a per-shard candidate
// source or retained by a merge stage. Score is a similarity: higher is better.
type Candidate struct {
	Doc   DocID
	Score float32
}

// Better reports whether c ranks strictly above other. Ties on score are
// broken by ascending DocID so merges are deterministic across runs and
// shard orderings.
func (c Candidate) Better(other Candidate) bool {
	if c.Score != other.Score {
		return c.Score > other.Score
	}
	return c.Doc < other.Doc
}

// ClauseResult is the globally merged top-k of a single KNN clause.
// Scores carry the clause boost. Docs is ordered best-first and never
// exceeds the clause's k.
type ClauseResult struct {
	Field string
	Docs  []Candidate
}

// CombinedResult accumulates the boosted contributions of all KNN clauses.
//
// A document absent from one clause's top-k is not excluded: it keeps the
// contributions of the clauses that did select it. Clauses counts how many
// clauses contributed to each document; it is informational and never
// affects scoring.
type CombinedResult struct {
	Scores  map[DocID]float32
	Clauses map[DocID]int
}

// NewCombinedResult returns an empty accumulator.
func NewCombinedResult() *CombinedResult {
	return &CombinedResult{
		Scores:  make(map[DocID]float32),
		Clauses: make(map[DocID]int),
	}
}

// ShardFailure records a per-shard execution failure surfaced alongside a
// best-effort result.
type ShardFailure struct {
	Shard ShardID
	Err   error
}

func (f ShardFailure) Error() string {
	return fmt.Sprintf("shard %d: %v", f.Shard, f.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (f ShardFailure) Unwrap() error { return f.Err }
