package filter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/vecquery/lookup"
	"github.com/hupe1980/vecquery/metadata"
)

// countingStore counts fetches so caching behavior is observable.
type countingStore struct {
	inner *lookup.MemoryStore
	gets  atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, index, id string) (metadata.Document, error) {
	c.gets.Add(1)
	return c.inner.Get(ctx, index, id)
}

func newTestStore() *countingStore {
	mem := lookup.NewMemoryStore()
	mem.Put("lookups", "allowed", metadata.Document{
		"ids": metadata.Strings("a", "b"),
	})
	mem.Put("lookups", "single", metadata.Document{
		"id": metadata.String("c"),
	})
	mem.Put("lookups", "empty", metadata.Document{
		"other": metadata.String("x"),
	})
	return &countingStore{inner: mem}
}

func TestResolveTermAndTerms(t *testing.T) {
	r := NewResolver(nil)

	resolved, err := r.Resolve(context.Background(), []Expr{
		Eq("color", metadata.String("red")),
		In("size", metadata.Int(1), metadata.Int(2)),
	}, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	match := metadata.Document{"color": metadata.String("red"), "size": metadata.Int(2)}
	if !resolved.Matches(match) {
		t.Error("conjunction should match")
	}

	miss := metadata.Document{"color": metadata.String("red"), "size": metadata.Int(3)}
	if resolved.Matches(miss) {
		t.Error("failing one predicate should fail the conjunction")
	}
}

func TestResolveArrayFieldMembership(t *testing.T) {
	r := NewResolver(nil)

	resolved, err := r.Resolve(context.Background(), []Expr{
		Eq("tags", metadata.String("b")),
	}, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	doc := metadata.Document{"tags": metadata.Strings("a", "b")}
	if !resolved.Matches(doc) {
		t.Error("array field should match on any element")
	}
}

func TestResolveTermsLookup(t *testing.T) {
	store := newTestStore()
	r := NewResolver(store)

	resolved, err := r.Resolve(context.Background(), []Expr{
		Lookup("tag", "lookups", "allowed", "ids"),
	}, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if !resolved.Matches(metadata.Document{"tag": metadata.String("a")}) {
		t.Error("value from the lookup document should match")
	}
	if resolved.Matches(metadata.Document{"tag": metadata.String("z")}) {
		t.Error("value outside the lookup document should not match")
	}

	// Scalar lookup fields expand to a single term.
	resolved, err = r.Resolve(context.Background(), []Expr{
		Lookup("tag", "lookups", "single", "id"),
	}, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved.Matches(metadata.Document{"tag": metadata.String("c")}) {
		t.Error("scalar lookup field should match its value")
	}
}

func TestResolveLookupMissingDocument(t *testing.T) {
	store := newTestStore()
	r := NewResolver(store)

	// A missing lookup document is not an error: the filter matches nothing.
	resolved, err := r.Resolve(context.Background(), []Expr{
		Lookup("tag", "lookups", "no-such-id", "ids"),
	}, nil)
	if err != nil {
		t.Fatalf("missing lookup document must not fail resolution: %v", err)
	}
	if !resolved.MatchesNothing() {
		t.Error("missing lookup document should resolve to match-nothing")
	}

	// Same for a present document whose lookup field is absent.
	resolved, err = r.Resolve(context.Background(), []Expr{
		Lookup("tag", "lookups", "empty", "ids"),
	}, nil)
	if err != nil {
		t.Fatalf("empty lookup field must not fail resolution: %v", err)
	}
	if !resolved.MatchesNothing() {
		t.Error("empty lookup field should resolve to match-nothing")
	}
}

func TestResolveSessionFetchesLookupOnce(t *testing.T) {
	store := newTestStore()
	session := NewResolver(store).NewSession()

	// Several clauses of one execution referencing the same lookup share
	// a single store read.
	for i := 0; i < 3; i++ {
		if _, err := session.Resolve(context.Background(), []Expr{
			Lookup("tag", "lookups", "allowed", "ids"),
		}, nil); err != nil {
			t.Fatalf("resolve %d failed: %v", i, err)
		}
	}

	if got := store.gets.Load(); got != 1 {
		t.Errorf("expected a single store fetch, got %d", got)
	}
}

func TestResolveRereadsLookupAcrossSessions(t *testing.T) {
	store := newTestStore()
	r := NewResolver(store)
	exprs := []Expr{Lookup("tag", "lookups", "allowed", "ids")}

	resolved, err := r.Resolve(context.Background(), exprs, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Matches(metadata.Document{"tag": metadata.String("c")}) {
		t.Fatal("value not yet in the lookup document must not match")
	}

	// Updating the lookup document takes effect on the next execution.
	store.inner.Put("lookups", "allowed", metadata.Document{
		"ids": metadata.Strings("a", "b", "c"),
	})

	resolved, err = r.Resolve(context.Background(), exprs, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved.Matches(metadata.Document{"tag": metadata.String("c")}) {
		t.Error("updated lookup document should be re-read by the next execution")
	}
	if got := store.gets.Load(); got != 2 {
		t.Errorf("expected one store fetch per execution, got %d", got)
	}
}

func TestResolveLookupTTLCache(t *testing.T) {
	store := newTestStore()
	r := NewResolver(store, func(o *ResolverOptions) {
		o.CacheTTL = time.Minute
	})
	exprs := []Expr{Lookup("tag", "lookups", "allowed", "ids")}

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), exprs, nil); err != nil {
			t.Fatalf("resolve %d failed: %v", i, err)
		}
	}
	if got := store.gets.Load(); got != 1 {
		t.Fatalf("expected the TTL cache to serve repeat executions, got %d fetches", got)
	}

	// Invalidation forces the next execution back to the store.
	r.Invalidate("lookups", "allowed")
	if _, err := r.Resolve(context.Background(), exprs, nil); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := store.gets.Load(); got != 2 {
		t.Errorf("expected a fresh fetch after invalidation, got %d", got)
	}
}

func TestResolveLookupWithoutStore(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.Resolve(context.Background(), []Expr{
		Lookup("tag", "lookups", "allowed", "ids"),
	}, nil)
	if !errors.Is(err, ErrNoLookupStore) {
		t.Errorf("expected ErrNoLookupStore, got %v", err)
	}
}

func TestResolveAliasConjoined(t *testing.T) {
	r := NewResolver(nil)
	alias := []Expr{Eq("tenant", metadata.String("acme"))}

	// The alias filter applies even when the clause has no filter at all.
	resolved, err := r.Resolve(context.Background(), nil, alias)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Matches(metadata.Document{"tenant": metadata.String("other")}) {
		t.Error("alias filter must apply to clauses without their own filter")
	}
	if !resolved.Matches(metadata.Document{"tenant": metadata.String("acme")}) {
		t.Error("alias filter should match its tenant")
	}

	// Clause filter and alias filter are ANDed.
	resolved, err = r.Resolve(context.Background(), []Expr{
		Eq("color", metadata.String("red")),
	}, alias)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Matches(metadata.Document{"color": metadata.String("red"), "tenant": metadata.String("other")}) {
		t.Error("clause match must still fail the alias predicate")
	}
}

func TestResolveEmptyIsMatchAll(t *testing.T) {
	r := NewResolver(nil)

	resolved, err := r.Resolve(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved.MatchesAll() {
		t.Error("no expressions should resolve to match-all")
	}
	if !resolved.Matches(metadata.Document{}) {
		t.Error("match-all should match anything")
	}
}

func TestResolveMalformed(t *testing.T) {
	r := NewResolver(nil)

	tests := []Expr{
		Eq("", metadata.String("x")),
		Lookup("tag", "", "id", "path"),
		Lookup("tag", "lookups", "", "path"),
		nil,
	}
	for _, expr := range tests {
		if _, err := r.Resolve(context.Background(), []Expr{expr}, nil); !errors.Is(err, ErrMalformed) {
			t.Errorf("expression %+v: expected ErrMalformed, got %v", expr, err)
		}
	}
}

func TestResolveEmptyTermsMatchesNothing(t *testing.T) {
	r := NewResolver(nil)

	resolved, err := r.Resolve(context.Background(), []Expr{In("tag")}, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !resolved.MatchesNothing() {
		t.Error("empty terms should resolve to match-nothing")
	}
}
