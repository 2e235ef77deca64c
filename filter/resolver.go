package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/vecquery/lookup"
	"github.com/hupe1980/vecquery/metadata"
)

// ErrNoLookupStore is returned when a filter contains a terms-lookup
// expression but the resolver was built without a lookup store.
var ErrNoLookupStore = errors.New("filter: terms lookup requires a lookup store")

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// CacheSize is the number of expanded lookup value sets kept in the
	// cross-execution cache. Defaults to 256. Only used when CacheTTL > 0.
	CacheSize int

	// CacheTTL bounds how long an expanded lookup value set may be reused
	// across query executions. Zero (the default) disables cross-execution
	// caching entirely: every execution re-reads its lookup documents, so
	// a store update is visible to the next query.
	CacheTTL time.Duration
}

// Resolver expands filter specifications into Resolved filters.
//
// Lookup fetches are scoped to a Session, one per query execution: within a
// session each distinct lookup document is fetched at most once, and a later
// execution starts fresh. Concurrent fetches of the same lookup are collapsed
// into a single store read (singleflight). An optional TTL cache allows
// bounded reuse across executions; see ResolverOptions.CacheTTL and
// Invalidate.
type Resolver struct {
	store lookup.Store
	cache *expirable.LRU[string, []metadata.Value] // nil without a TTL
	group singleflight.Group
}

// NewResolver creates a Resolver reading lookups from store. A nil store is
// allowed as long as no filter contains a terms-lookup expression.
func NewResolver(store lookup.Store, optFns ...func(*ResolverOptions)) *Resolver {
	opts := ResolverOptions{CacheSize: 256}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Resolver{store: store}
	if opts.CacheTTL > 0 {
		r.cache = expirable.NewLRU[string, []metadata.Value](opts.CacheSize, nil, opts.CacheTTL)
	}
	return r
}

// Invalidate drops every cached value set expanded from the given lookup
// document. Wire it to the store's mutation path when a TTL cache is in use;
// without one it is a no-op, since nothing outlives an execution.
func (r *Resolver) Invalidate(index, id string) {
	if r.cache == nil {
		return
	}
	prefix := index + "\x00" + id + "\x00"
	for _, key := range r.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			r.cache.Remove(key)
		}
	}
}

// Resolve is a single-use convenience that resolves one clause in a fresh
// session. Query executions resolving several clauses share one Session
// instead, so a lookup referenced by more than one clause is fetched once.
func (r *Resolver) Resolve(ctx context.Context, exprs []Expr, alias []Expr) (*Resolved, error) {
	return r.NewSession().Resolve(ctx, exprs, alias)
}

// Session scopes lookup resolution to one query execution. It is safe for
// the concurrent clause resolutions of that execution.
type Session struct {
	resolver *Resolver

	mu     sync.Mutex
	values map[string][]metadata.Value
}

// NewSession starts a resolution scope for one query execution.
func (r *Resolver) NewSession() *Session {
	return &Session{
		resolver: r,
		values:   make(map[string][]metadata.Value),
	}
}

// Resolve builds the Resolved filter for one clause: the clause's own
// expressions ANDed with the alias-bound filter (if any). The alias filter
// applies even when exprs is empty.
//
// Structural errors (ErrMalformed) and lookup transport errors fail the
// resolution; a missing lookup document or an empty lookup field does not —
// it yields a filter that matches nothing.
func (s *Session) Resolve(ctx context.Context, exprs []Expr, alias []Expr) (*Resolved, error) {
	if err := Validate(exprs); err != nil {
		return nil, err
	}
	if err := Validate(alias); err != nil {
		return nil, err
	}

	all := make([]Expr, 0, len(exprs)+len(alias))
	all = append(all, exprs...)
	all = append(all, alias...)
	if len(all) == 0 {
		return MatchAll, nil
	}

	resolved := &Resolved{preds: make([]pred, 0, len(all))}
	for _, e := range all {
		switch t := e.(type) {
		case Term:
			resolved.preds = append(resolved.preds, newPred(t.Field, []metadata.Value{t.Value}))
		case Terms:
			if len(t.Values) == 0 {
				resolved.none = true
				return resolved, nil
			}
			resolved.preds = append(resolved.preds, newPred(t.Field, t.Values))
		case TermsLookup:
			values, err := s.lookupValues(ctx, t)
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				// Missing document or empty field: matches nothing.
				resolved.none = true
				return resolved, nil
			}
			resolved.preds = append(resolved.preds, newPred(t.Field, values))
		default:
			return nil, fmt.Errorf("%w: unsupported expression %T", ErrMalformed, e)
		}
	}
	return resolved, nil
}

func (s *Session) lookupValues(ctx context.Context, tl TermsLookup) ([]metadata.Value, error) {
	r := s.resolver
	if r.store == nil {
		return nil, ErrNoLookupStore
	}

	key := tl.LookupIndex + "\x00" + tl.LookupID + "\x00" + tl.LookupPath

	s.mu.Lock()
	values, ok := s.values[key]
	s.mu.Unlock()
	if ok {
		return values, nil
	}

	if r.cache != nil {
		if values, ok := r.cache.Get(key); ok {
			s.remember(key, values)
			return values, nil
		}
	}

	fetched, err, _ := r.group.Do(key, func() (any, error) {
		doc, err := r.store.Get(ctx, tl.LookupIndex, tl.LookupID)
		if err != nil {
			if errors.Is(err, lookup.ErrNotFound) {
				doc = nil
			} else {
				return nil, fmt.Errorf("filter: terms lookup %s/%s: %w", tl.LookupIndex, tl.LookupID, err)
			}
		}
		return extractValues(doc, tl.LookupPath), nil
	})
	if err != nil {
		return nil, err
	}

	values = fetched.([]metadata.Value)
	if r.cache != nil {
		r.cache.Add(key, values)
	}
	s.remember(key, values)
	return values, nil
}

func (s *Session) remember(key string, values []metadata.Value) {
	s.mu.Lock()
	s.values[key] = values
	s.mu.Unlock()
}

// extractValues pulls the literal terms from a lookup document's field.
// An array field contributes its elements; a scalar contributes itself;
// a missing field or null contributes nothing.
func extractValues(doc metadata.Document, path string) []metadata.Value {
	if doc == nil {
		return nil
	}
	value, ok := doc[path]
	if !ok || value.Kind == metadata.KindNull {
		return nil
	}
	if arr, isArr := value.AsArray(); isArr {
		return arr
	}
	return []metadata.Value{value}
}
