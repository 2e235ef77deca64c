package engine

import "github.com/hupe1980/vecquery/model"

// integrate merges the combined KNN contribution with the lexical query's
// matches using additive should-semantics.
//
// The matched set is the union of both sides; a document's final score is
// the sum of whichever contributions apply. The total hit count is the
// union's size, and the returned candidates carry the full union ranked
// best-first — the caller truncates to the page size after aggregations
// have seen every matched document.
func integrate(combined *model.CombinedResult, lexical []model.Candidate) (ranked []model.Candidate, total int) {
	final := make(map[model.DocID]float32, len(combined.Scores)+len(lexical))
	for doc, score := range combined.Scores {
		final[doc] = score
	}
	for _, m := range lexical {
		final[m.Doc] += m.Score
	}

	ranked = make([]model.Candidate, 0, len(final))
	for doc, score := range final {
		ranked = append(ranked, model.Candidate{Doc: doc, Score: score})
	}
	sortCandidates(ranked)

	return ranked, len(ranked)
}
