package memindex

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/vecquery/engine"
	"github.com/hupe1980/vecquery/filter"
	"github.com/hupe1980/vecquery/metadata"
	"github.com/hupe1980/vecquery/model"
)

func addDocs(t *testing.T, shard *Shard, docs ...Doc) []model.DocID {
	t.Helper()
	ids := make([]model.DocID, len(docs))
	for i, doc := range docs {
		id, err := shard.Add(doc)
		if err != nil {
			t.Fatalf("add %d failed: %v", i, err)
		}
		ids[i] = id
	}
	return ids
}

func vecClause(vector []float32, k, numCandidates int) engine.Clause {
	return engine.Clause{Field: "vector", Vector: vector, K: k, NumCandidates: numCandidates}
}

func TestSearchClauseRanksByDistance(t *testing.T) {
	shard := NewShard(0)
	addDocs(t, shard,
		Doc{Vectors: map[string][]float32{"vector": {0, 0}}},
		Doc{Vectors: map[string][]float32{"vector": {3, 0}}},
		Doc{Vectors: map[string][]float32{"vector": {1, 0}}},
	)

	cands, err := shard.SearchClause(context.Background(), vecClause([]float32{0, 0}, 3, 3), filter.MatchAll)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(cands) != 3 {
		t.Fatalf("got %d candidates, want 3", len(cands))
	}

	wantOrder := []uint32{0, 2, 1}
	for i, want := range wantOrder {
		if cands[i].Doc.Ordinal() != want {
			t.Errorf("rank %d: ordinal %d, want %d", i, cands[i].Doc.Ordinal(), want)
		}
	}
	// Exact match scores 1/(1+0) = 1.
	if cands[0].Score != 1.0 {
		t.Errorf("exact match score = %v, want 1.0", cands[0].Score)
	}
}

func TestSearchClauseRespectsNumCandidates(t *testing.T) {
	shard := NewShard(0)
	for i := 0; i < 10; i++ {
		addDocs(t, shard, Doc{Vectors: map[string][]float32{"vector": {float32(i), 0}}})
	}

	cands, err := shard.SearchClause(context.Background(), vecClause([]float32{0, 0}, 2, 4), filter.MatchAll)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(cands) != 4 {
		t.Errorf("got %d candidates, want num_candidates 4", len(cands))
	}
}

func TestSearchClauseAppliesFilter(t *testing.T) {
	shard := NewShard(0)
	addDocs(t, shard,
		Doc{
			Vectors: map[string][]float32{"vector": {0, 0}},
			Fields:  metadata.Document{"color": metadata.String("red")},
		},
		Doc{
			Vectors: map[string][]float32{"vector": {1, 0}},
			Fields:  metadata.Document{"color": metadata.String("blue")},
		},
	)

	resolver := filter.NewResolver(nil)
	resolved, err := resolver.Resolve(context.Background(), []filter.Expr{
		filter.Eq("color", metadata.String("blue")),
	}, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	cands, err := shard.SearchClause(context.Background(), vecClause([]float32{0, 0}, 2, 2), resolved)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(cands) != 1 || cands[0].Doc.Ordinal() != 1 {
		t.Errorf("filter not applied: %+v", cands)
	}
}

func TestSearchClauseSkipsMalformedVectors(t *testing.T) {
	shard := NewShard(0)
	addDocs(t, shard,
		Doc{Vectors: map[string][]float32{"vector": {0, 0}}},
		Doc{Vectors: map[string][]float32{"vector": {0, 0, 0}}},         // wrong dimension
		Doc{Fields: metadata.Document{"color": metadata.String("red")}}, // no vector
	)

	cands, err := shard.SearchClause(context.Background(), vecClause([]float32{0, 0}, 3, 3), filter.MatchAll)
	if err != nil {
		t.Fatalf("a malformed stored vector must not fail the shard: %v", err)
	}
	if len(cands) != 1 || cands[0].Doc.Ordinal() != 0 {
		t.Errorf("expected only the well-formed document: %+v", cands)
	}
}

func TestSearchLexical(t *testing.T) {
	shard := NewShard(2)
	addDocs(t, shard,
		Doc{Fields: metadata.Document{"text": metadata.String("red shoes")}},
		Doc{Fields: metadata.Document{"text": metadata.String("blue hat")}},
	)

	cands, err := shard.SearchLexical(context.Background(), engine.LexicalQuery{Field: "text", Text: "red"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	if cands[0].Doc != model.NewDocID(2, 0) {
		t.Errorf("doc = %v, want Doc(2:0)", cands[0].Doc)
	}

	// Unknown lexical fields simply match nothing.
	cands, err = shard.SearchLexical(context.Background(), engine.LexicalQuery{Field: "nope", Text: "red"})
	if err != nil || len(cands) != 0 {
		t.Errorf("unknown field: cands=%v err=%v", cands, err)
	}
}

func TestDocumentExposesVectorFields(t *testing.T) {
	shard := NewShard(0)
	addDocs(t, shard, Doc{
		Vectors: map[string][]float32{"vector": {1, 2}},
		Fields:  metadata.Document{"color": metadata.String("red")},
	})

	doc, ok := shard.Document(0)
	if !ok {
		t.Fatal("document not found")
	}
	if s, _ := doc["color"].AsString(); s != "red" {
		t.Errorf("color = %+v", doc["color"])
	}
	arr, isArr := doc["vector"].AsArray()
	if !isArr || len(arr) != 2 {
		t.Fatalf("vector field = %+v, want 2-element array", doc["vector"])
	}

	if _, ok := shard.Document(9); ok {
		t.Error("out-of-range ordinal must not be found")
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	shard := NewShard(3)
	ids := addDocs(t, shard,
		Doc{
			Vectors: map[string][]float32{"vector": {0, 0}},
			Fields:  metadata.Document{"text": metadata.String("red shoes")},
		},
		Doc{
			Vectors: map[string][]float32{"vector": {1, 0}},
			Fields:  metadata.Document{"text": metadata.String("red hat")},
		},
		Doc{
			Vectors: map[string][]float32{"vector": {2, 0}},
			Fields:  metadata.Document{"text": metadata.String("blue hat")},
		},
	)

	if err := shard.Delete(ids[1]); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if shard.Len() != 2 {
		t.Errorf("len = %d, want 2", shard.Len())
	}

	// Gone from vector search, the lexical index and document fetch; the
	// ordinals of surviving documents are untouched.
	cands, err := shard.SearchClause(context.Background(), vecClause([]float32{0, 0}, 3, 3), filter.MatchAll)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	for _, c := range cands {
		if c.Doc == ids[1] {
			t.Errorf("deleted document %v still a candidate", c.Doc)
		}
	}

	lex, err := shard.SearchLexical(context.Background(), engine.LexicalQuery{Field: "text", Text: "red"})
	if err != nil {
		t.Fatalf("lexical search failed: %v", err)
	}
	if len(lex) != 1 || lex[0].Doc != ids[0] {
		t.Errorf("lexical matches = %+v, want only %v", lex, ids[0])
	}

	if _, ok := shard.Document(ids[1].Ordinal()); ok {
		t.Error("deleted document must not be fetchable")
	}
	if _, ok := shard.Document(ids[2].Ordinal()); !ok {
		t.Error("surviving document must keep its ordinal")
	}

	// Deleting twice, or a document of another shard, is an error.
	if err := shard.Delete(ids[1]); err == nil {
		t.Error("double delete must fail")
	}
	if err := shard.Delete(model.NewDocID(9, 0)); err == nil {
		t.Error("foreign shard id must fail")
	}
}

func TestSnapshotPreservesDeletions(t *testing.T) {
	shard := NewShard(1)
	ids := addDocs(t, shard,
		Doc{Vectors: map[string][]float32{"vector": {0, 0}}},
		Doc{
			Vectors: map[string][]float32{"vector": {1, 0}},
			Fields:  metadata.Document{"text": metadata.String("red shoes")},
		},
		Doc{Vectors: map[string][]float32{"vector": {2, 0}}},
	)
	if err := shard.Delete(ids[1]); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var buf bytes.Buffer
	if err := shard.WriteSnapshot(&buf); err != nil {
		t.Fatalf("write snapshot failed: %v", err)
	}
	restored, err := LoadSnapshot(1, &buf)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}

	if restored.Len() != 2 {
		t.Errorf("restored len = %d, want 2", restored.Len())
	}
	cands, err := restored.SearchClause(context.Background(), vecClause([]float32{0, 0}, 3, 3), filter.MatchAll)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	if cands[1].Doc != ids[2] {
		t.Errorf("surviving document lost its ordinal: %+v", cands)
	}
	if lex, _ := restored.SearchLexical(context.Background(), engine.LexicalQuery{Field: "text", Text: "red"}); len(lex) != 0 {
		t.Errorf("deleted document resurfaced in the lexical index: %+v", lex)
	}
}

func TestMetrics(t *testing.T) {
	query := []float32{1, 0}
	near := []float32{2, 0}
	far := []float32{-1, 0}

	for _, metric := range []Metric{MetricL2, MetricDot, MetricCosine} {
		shard := NewShard(0, WithMetric(metric))
		addDocs(t, shard,
			Doc{Vectors: map[string][]float32{"vector": far}},
			Doc{Vectors: map[string][]float32{"vector": near}},
		)

		cands, err := shard.SearchClause(context.Background(), vecClause(query, 2, 2), filter.MatchAll)
		if err != nil {
			t.Fatalf("metric %d: search failed: %v", metric, err)
		}
		if cands[0].Doc.Ordinal() != 1 {
			t.Errorf("metric %d: nearer vector should rank first, got %+v", metric, cands)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	shard := NewShard(1, WithMetric(MetricCosine))
	addDocs(t, shard,
		Doc{
			Vectors: map[string][]float32{"vector": {1, 0}},
			Fields:  metadata.Document{"text": metadata.String("red shoes"), "n": metadata.Int(7)},
		},
		Doc{
			Vectors: map[string][]float32{"vector": {0, 1}},
		},
	)

	var buf bytes.Buffer
	if err := shard.WriteSnapshot(&buf); err != nil {
		t.Fatalf("write snapshot failed: %v", err)
	}

	restored, err := LoadSnapshot(1, &buf)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if restored.Len() != 2 {
		t.Fatalf("restored %d docs, want 2", restored.Len())
	}

	// Vector search, stored fields and the rebuilt lexical index all survive.
	cands, err := restored.SearchClause(context.Background(), vecClause([]float32{1, 0}, 2, 2), filter.MatchAll)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if cands[0].Doc.Ordinal() != 0 {
		t.Errorf("best candidate = %+v, want ordinal 0", cands[0])
	}

	doc, ok := restored.Document(0)
	if !ok {
		t.Fatal("document 0 not found after restore")
	}
	if n, _ := doc["n"].AsInt64(); n != 7 {
		t.Errorf("n = %d, want 7", n)
	}

	lex, err := restored.SearchLexical(context.Background(), engine.LexicalQuery{Field: "text", Text: "shoes"})
	if err != nil || len(lex) != 1 {
		t.Errorf("lexical index not rebuilt: cands=%v err=%v", lex, err)
	}
}
