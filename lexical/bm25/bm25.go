// Package bm25 provides a simple in-memory BM25 index implementing
// lexical.Index. It is the reference lexical collaborator used by the
// in-memory shard and by tests.
package bm25

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/vecquery/lexical"
)

const (
	k1 = 1.2
	b  = 0.75
)

type posting struct {
	ordinal uint32
	count   int
}

// MemoryIndex is a simple in-memory BM25 index over shard-local ordinals.
type MemoryIndex struct {
	mu          sync.RWMutex
	inverted    map[string][]posting
	docLengths  map[uint32]int
	totalLength int64
}

// New creates a new MemoryIndex.
func New() *MemoryIndex {
	return &MemoryIndex{
		inverted:   make(map[string][]posting),
		docLengths: make(map[uint32]int),
	}
}

var _ lexical.Index = (*MemoryIndex)(nil)

// tokenize lowercases and splits on whitespace.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Add indexes the text of a document, replacing any previous text.
func (idx *MemoryIndex) Add(ordinal uint32, text string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.docLengths[ordinal]; ok {
		idx.deleteLocked(ordinal)
	}

	tokens := tokenize(text)
	idx.docLengths[ordinal] = len(tokens)
	idx.totalLength += int64(len(tokens))

	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	for t, count := range tf {
		idx.inverted[t] = append(idx.inverted[t], posting{ordinal: ordinal, count: count})
	}
	return nil
}

// Delete removes a document from the index.
func (idx *MemoryIndex) Delete(ordinal uint32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.deleteLocked(ordinal)
	return nil
}

func (idx *MemoryIndex) deleteLocked(ordinal uint32) {
	length, ok := idx.docLengths[ordinal]
	if !ok {
		return
	}
	delete(idx.docLengths, ordinal)
	idx.totalLength -= int64(length)

	for t, postings := range idx.inverted {
		kept := postings[:0]
		for _, p := range postings {
			if p.ordinal != ordinal {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(idx.inverted, t)
		} else {
			idx.inverted[t] = kept
		}
	}
}

// Search returns all documents sharing at least one query term, scored with
// BM25 and ordered best first (ties broken by ascending ordinal).
func (idx *MemoryIndex) Search(text string) []lexical.Match {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	docCount := len(idx.docLengths)
	if docCount == 0 {
		return nil
	}
	avgLength := float64(idx.totalLength) / float64(docCount)

	scores := make(map[uint32]float64)
	seen := make(map[string]bool)
	for _, t := range tokenize(text) {
		if seen[t] {
			continue
		}
		seen[t] = true

		postings := idx.inverted[t]
		if len(postings) == 0 {
			continue
		}
		idf := math.Log(1 + (float64(docCount)-float64(len(postings))+0.5)/(float64(len(postings))+0.5))
		for _, p := range postings {
			norm := 1 - b + b*float64(idx.docLengths[p.ordinal])/avgLength
			tf := float64(p.count)
			scores[p.ordinal] += idf * tf * (k1 + 1) / (tf + k1*norm)
		}
	}

	matches := make([]lexical.Match, 0, len(scores))
	for ordinal, score := range scores {
		matches = append(matches, lexical.Match{Ordinal: ordinal, Score: float32(score)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Ordinal < matches[j].Ordinal
	})
	return matches
}
