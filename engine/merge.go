package engine

import (
	"sort"

	"github.com/hupe1980/vecquery/model"
)

// mergeTopK reduces the per-shard candidate lists of one clause to the
// clause's global top-k and applies the clause boost to the retained scores.
//
// The union is never materialized: a bounded heap of size k holds the best
// candidates seen so far with the worst retained candidate at the root, so
// merging stays O(n log k) for n collected candidates. Ranking is by score
// descending with ties broken by ascending document id, which keeps the
// result deterministic regardless of shard arrival order. Shards returning
// fewer than num_candidates results, or none at all, need no special
// handling here.
func mergeTopK(shardResults [][]model.Candidate, k int, boost float32, field string) model.ClauseResult {
	top := make([]model.Candidate, 0, k)

	for _, candidates := range shardResults {
		for _, c := range candidates {
			if len(top) < k {
				top = append(top, c)
				if len(top) == k {
					buildWorstHeap(top)
				}
				continue
			}
			if c.Better(top[0]) {
				top[0] = c
				siftDown(top, 0)
			}
		}
	}

	sortCandidates(top)
	for i := range top {
		top[i].Score *= boost
	}
	return model.ClauseResult{Field: field, Docs: top}
}

// mergeAll flattens the per-shard candidate lists without global truncation
// and applies the boost. This is the generic-query path: every shard's
// local candidate set counts as a hit, so the reported total can reach
// num_candidates × shard count even though the returned page stays bounded.
func mergeAll(shardResults [][]model.Candidate, boost float32, field string) model.ClauseResult {
	var total int
	for _, candidates := range shardResults {
		total += len(candidates)
	}

	docs := make([]model.Candidate, 0, total)
	for _, candidates := range shardResults {
		docs = append(docs, candidates...)
	}
	sortCandidates(docs)
	for i := range docs {
		docs[i].Score *= boost
	}
	return model.ClauseResult{Field: field, Docs: docs}
}

// sortCandidates sorts best-first: score descending, document id ascending.
func sortCandidates(candidates []model.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Better(candidates[j])
	})
}

// buildWorstHeap arranges candidates so the worst retained candidate is at
// the root.
func buildWorstHeap(candidates []model.Candidate) {
	for i := len(candidates)/2 - 1; i >= 0; i-- {
		siftDown(candidates, i)
	}
}

// siftDown restores the heap property downward from index i: every parent
// ranks below its children.
func siftDown(candidates []model.Candidate, i int) {
	n := len(candidates)
	for {
		worst := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && candidates[worst].Better(candidates[left]) {
			worst = left
		}
		if right < n && candidates[worst].Better(candidates[right]) {
			worst = right
		}

		if worst == i {
			return
		}

		candidates[i], candidates[worst] = candidates[worst], candidates[i]
		i = worst
	}
}
