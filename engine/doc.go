// Package engine implements the KNN result coordination layer.
//
// A query execution flows through four stages:
//
//  1. Filter resolution — each clause's filter specification is rewritten
//     into a literal, shard-shareable predicate (terms lookups expanded,
//     alias filter conjoined) before any fan-out.
//  2. Fan-out — every clause is sent to every shard in parallel on a fixed
//     worker pool; the lexical query fans out alongside. Fan-in is a single
//     thread per execution.
//  3. Reduce — per-clause global top-k merge, then the additive cross-clause
//     combination.
//  4. Integrate — union with the lexical matches, final ranking, hit
//     counting, and the aggregation pass over the matched set.
//
// Two integration paths with deliberately different hit accounting exist:
// the dedicated path (Request.Clauses) counts each clause's deduplicated
// global top-k, while the generic-query path (Request.Query) counts every
// shard's local candidate set without global truncation, so its total can
// reach num_candidates × shard count. The divergence is inherited from the
// engine this layer is modeled on and is kept explicit per entry point
// rather than silently merged.
package engine
