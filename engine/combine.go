package engine

import "github.com/hupe1980/vecquery/model"

// combine folds the globally merged clause results into a single
// per-document accumulator.
//
// Scores add linearly: a document selected by several clauses accumulates
// each clause's boosted contribution, so for positive boosts its combined
// score strictly exceeds any single contribution. A document missing from a
// clause's top-k contributes 0 from that clause and is never excluded or
// penalized. The accumulator is built by a single writer after all clause
// merges complete.
func combine(results []model.ClauseResult) *model.CombinedResult {
	combined := model.NewCombinedResult()
	for _, result := range results {
		for _, c := range result.Docs {
			combined.Scores[c.Doc] += c.Score
			combined.Clauses[c.Doc]++
		}
	}
	return combined
}
