package memindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/vecquery/engine"
	"github.com/hupe1980/vecquery/filter"
	"github.com/hupe1980/vecquery/lexical/bm25"
	"github.com/hupe1980/vecquery/metadata"
	"github.com/hupe1980/vecquery/model"
)

// Metric selects how a stored vector is scored against the query vector.
// All metrics produce a similarity in which higher is better, matching the
// candidate contract of the coordination layer.
type Metric int

const (
	// MetricL2 scores by squared euclidean distance: 1 / (1 + d²).
	MetricL2 Metric = iota
	// MetricDot scores by dot product: (1 + dot) / 2.
	MetricDot
	// MetricCosine scores by cosine similarity: (1 + cos) / 2.
	MetricCosine
)

// Options configures a Shard.
type Options struct {
	Metric Metric
}

// Doc is one document to index: zero or more named vectors plus stored
// fields. String fields are additionally indexed for lexical search.
type Doc struct {
	Vectors map[string][]float32
	Fields  metadata.Document
}

// Shard is an exact, in-memory candidate source: the reference
// implementation of the per-shard contract, used by tests and by embedders
// that do not bring their own index.
//
// Search is brute force over all documents carrying the clause's vector
// field. That keeps it deterministic, which the coordination layer requires
// of any candidate source.
type Shard struct {
	id     model.ShardID
	metric Metric

	mu      sync.RWMutex
	vectors map[string][][]float32 // field → by-ordinal vector, nil when absent
	fields  []metadata.Document
	lexical map[string]*bm25.MemoryIndex
	deleted *metadata.LocalBitmap
}

var (
	_ engine.CandidateSource = (*Shard)(nil)
	_ engine.LexicalSource   = (*Shard)(nil)
	_ engine.DocumentSource  = (*Shard)(nil)
)

// NewShard creates an empty shard with the given id.
func NewShard(id model.ShardID, optFns ...func(*Options)) *Shard {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Shard{
		id:      id,
		metric:  opts.Metric,
		vectors: make(map[string][][]float32),
		lexical: make(map[string]*bm25.MemoryIndex),
		deleted: metadata.NewLocalBitmap(),
	}
}

// WithMetric sets the scoring metric.
func WithMetric(m Metric) func(*Options) {
	return func(o *Options) { o.Metric = m }
}

// Shard returns the shard id.
func (s *Shard) Shard() model.ShardID {
	return s.id
}

// Len returns the number of live documents.
func (s *Shard) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields) - int(s.deleted.Cardinality())
}

// Add indexes a document and returns its global DocID.
//
// Vectors are stored as given: a vector whose length disagrees with the
// query is skipped at search time rather than rejected here, mirroring how
// a malformed stored vector is excluded from candidates instead of failing
// the shard.
func (s *Shard) Add(doc Doc) (model.DocID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordinal := uint32(len(s.fields))
	if ordinal >= model.MaxOrdinal {
		return 0, fmt.Errorf("memindex: shard %d full (%d documents)", s.id, ordinal)
	}

	s.fields = append(s.fields, doc.Fields.Clone())

	for field, vec := range doc.Vectors {
		column := s.vectors[field]
		for uint32(len(column)) <= ordinal {
			column = append(column, nil)
		}
		column[ordinal] = append([]float32(nil), vec...)
		s.vectors[field] = column
	}

	for field, value := range doc.Fields {
		if text, ok := value.AsString(); ok {
			idx, ok := s.lexical[field]
			if !ok {
				idx = bm25.New()
				s.lexical[field] = idx
			}
			if err := idx.Add(ordinal, text); err != nil {
				return 0, err
			}
		}
	}

	return model.NewDocID(s.id, ordinal), nil
}

// Delete removes a document from vector, field and lexical storage.
// Ordinals are never reused, so the DocIDs of surviving documents stay
// stable.
func (s *Shard) Delete(id model.DocID) error {
	if id.Shard() != s.id {
		return fmt.Errorf("memindex: document %s does not belong to shard %d", id, s.id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ordinal := id.Ordinal()
	if int(ordinal) >= len(s.fields) || s.deleted.Contains(ordinal) {
		return fmt.Errorf("memindex: unknown document %s", id)
	}

	for _, column := range s.vectors {
		if int(ordinal) < len(column) {
			column[ordinal] = nil
		}
	}
	for _, idx := range s.lexical {
		if err := idx.Delete(ordinal); err != nil {
			return err
		}
	}
	s.fields[ordinal] = nil
	s.deleted.Add(ordinal)
	return nil
}

// SearchClause implements engine.CandidateSource: the locally best
// candidates for one clause, at most clause.NumCandidates, drawn only from
// documents passing the resolved filter.
func (s *Shard) SearchClause(ctx context.Context, clause engine.Clause, resolved *filter.Resolved) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resolved.MatchesNothing() {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	column := s.vectors[clause.Field]
	if len(column) == 0 {
		return nil, nil
	}

	// Materialize the filter once against this shard's ordinal space.
	var allowed *metadata.LocalBitmap
	if !resolved.MatchesAll() {
		allowed = metadata.NewLocalBitmap()
		for ordinal := range s.fields {
			if resolved.Matches(s.fields[ordinal]) {
				allowed.Add(uint32(ordinal))
			}
		}
		if allowed.IsEmpty() {
			return nil, nil
		}
	}

	candidates := make([]model.Candidate, 0, clause.NumCandidates)
	for ordinal, vec := range column {
		if vec == nil {
			continue
		}
		if allowed != nil && !allowed.Contains(uint32(ordinal)) {
			continue
		}
		// A stored vector of the wrong dimension cannot be scored; the
		// document is excluded from candidates, not a shard failure.
		if len(vec) != len(clause.Vector) {
			continue
		}
		candidates = append(candidates, model.Candidate{
			Doc:   model.NewDocID(s.id, uint32(ordinal)),
			Score: score(s.metric, clause.Vector, vec),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Better(candidates[j])
	})
	if len(candidates) > clause.NumCandidates {
		candidates = candidates[:clause.NumCandidates]
	}
	return candidates, nil
}

// SearchLexical implements engine.LexicalSource over the shard's string
// fields. It returns every matching document, as the integrator requires.
func (s *Shard) SearchLexical(ctx context.Context, query engine.LexicalQuery) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	idx := s.lexical[query.Field]
	s.mu.RUnlock()
	if idx == nil {
		return nil, nil
	}

	matches := idx.Search(query.Text)
	candidates := make([]model.Candidate, len(matches))
	for i, m := range matches {
		candidates[i] = model.Candidate{
			Doc:   model.NewDocID(s.id, m.Ordinal),
			Score: m.Score,
		}
	}
	return candidates, nil
}

// Document implements engine.DocumentSource. Vector fields are included as
// numeric arrays so fetched hit fields expose them like stored fields.
func (s *Shard) Document(ordinal uint32) (metadata.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(ordinal) >= len(s.fields) || s.deleted.Contains(ordinal) {
		return nil, false
	}
	doc := s.fields[ordinal].Clone()
	if doc == nil {
		doc = metadata.Document{}
	}
	for field, column := range s.vectors {
		if int(ordinal) < len(column) && column[ordinal] != nil {
			elems := make([]metadata.Value, len(column[ordinal]))
			for i, f := range column[ordinal] {
				elems[i] = metadata.Float(float64(f))
			}
			doc[field] = metadata.Array(elems...)
		}
	}
	return doc, true
}
