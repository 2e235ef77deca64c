package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecquery/aggregation"
	"github.com/hupe1980/vecquery/filter"
	"github.com/hupe1980/vecquery/model"
)

const defaultSize = 10

// Options configures an Executor.
type Options struct {
	// PoolSize is the number of fan-out workers. If <= 0 it defaults to
	// max(number of shards, GOMAXPROCS).
	PoolSize int

	// Strict makes every query fail on the first shard failure instead of
	// degrading to a best-effort result. Individual requests can also opt
	// in via Request.Strict.
	Strict bool
}

// Executor coordinates one query execution across all shards: filter
// resolution, clause×shard fan-out, per-clause global merge, multi-clause
// combination and integration with the lexical query.
//
// All per-query state lives in the execution value created per call, so
// concurrent executions are fully isolated; the Executor itself only holds
// immutable wiring and the worker pool.
type Executor struct {
	schema    map[string]int
	shards    []CandidateSource
	documents map[model.ShardID]DocumentSource
	resolver  *filter.Resolver
	pool      *WorkerPool
	strict    bool
	closed    atomic.Bool
}

// NewExecutor creates an Executor over the given shards. schema maps each
// searchable vector field to its declared dimension; resolver may be nil if
// no filter will ever contain a terms lookup.
func NewExecutor(schema map[string]int, shards []CandidateSource, resolver *filter.Resolver, optFns ...func(*Options)) (*Executor, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("executor: at least one shard required")
	}
	if len(shards) > model.MaxShards {
		return nil, fmt.Errorf("executor: %d shards exceeds maximum %d", len(shards), model.MaxShards)
	}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = len(shards)
		if procs := runtime.GOMAXPROCS(0); procs > poolSize {
			poolSize = procs
		}
	}

	if resolver == nil {
		resolver = filter.NewResolver(nil)
	}

	documents := make(map[model.ShardID]DocumentSource)
	for _, s := range shards {
		if ds, ok := s.(DocumentSource); ok {
			documents[s.Shard()] = ds
		}
	}

	return &Executor{
		schema:    schema,
		shards:    shards,
		documents: documents,
		resolver:  resolver,
		pool:      NewWorkerPool(poolSize),
		strict:    opts.Strict,
	}, nil
}

// Close shuts down the fan-out worker pool. In-flight queries complete.
func (e *Executor) Close() {
	if e.closed.CompareAndSwap(false, true) {
		e.pool.Close()
	}
}

// fanoutResult is one shard's answer for one clause (or for the lexical
// query, marked with clause == lexicalClause).
type fanoutResult struct {
	clause int
	shard  model.ShardID
	cands  []model.Candidate
	err    error
}

const lexicalClause = -1

// Execute runs one query.
//
// Validation failures return an error before any distributed work starts.
// Shard failures during fan-out degrade to a best-effort result carried in
// Response.ShardFailures, unless strict mode is on. A clause whose shards
// all failed contributes an empty result without aborting the others.
func (e *Executor) Execute(ctx context.Context, req *Request) (*Response, error) {
	if e.closed.Load() {
		return nil, ErrExecutorClosed
	}

	req, err := e.validateRequest(req)
	if err != nil {
		return nil, err
	}

	clauses := req.Clauses
	generic := req.Query != nil
	if generic {
		clauses = []Clause{*req.Query}
	}

	// Resolve every clause's filter before its fan-out; independent clauses
	// resolve concurrently. The session scopes lookup fetches to this
	// execution, so a lookup shared by several clauses is read once and a
	// store update is visible to the next execution. All shards share the
	// resolved value read-only.
	resolved := make([]*filter.Resolved, len(clauses))
	session := e.resolver.NewSession()
	g, gctx := errgroup.WithContext(ctx)
	for i := range clauses {
		g.Go(func() error {
			r, err := session.Resolve(gctx, clauses[i].Filter, req.Alias)
			if err != nil {
				return err
			}
			resolved[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fan out every clause to every shard, plus the lexical query to every
	// shard that serves one. The channel is sized for all expected answers
	// so workers never block on a caller that returned early.
	type lexShard struct {
		src LexicalSource
		id  model.ShardID
	}
	var lexShards []lexShard
	if req.Lexical != nil {
		for _, s := range e.shards {
			if ls, ok := s.(LexicalSource); ok {
				lexShards = append(lexShards, lexShard{src: ls, id: s.Shard()})
			}
		}
	}

	expected := len(clauses)*len(e.shards) + len(lexShards)
	results := make(chan fanoutResult, expected)

	for i := range clauses {
		clause := clauses[i]
		res := resolved[i]
		for _, shard := range e.shards {
			if err := e.pool.Submit(ctx, func() {
				cands, err := shard.SearchClause(ctx, clause, res)
				results <- fanoutResult{clause: i, shard: shard.Shard(), cands: cands, err: err}
			}); err != nil {
				return nil, fmt.Errorf("fan-out submit failed: %w", err)
			}
		}
	}
	for _, ls := range lexShards {
		lex := *req.Lexical
		if err := e.pool.Submit(ctx, func() {
			cands, err := ls.src.SearchLexical(ctx, lex)
			results <- fanoutResult{clause: lexicalClause, shard: ls.id, cands: cands, err: err}
		}); err != nil {
			return nil, fmt.Errorf("fan-out submit failed: %w", err)
		}
	}

	// Single-threaded fan-in: no concurrent writers touch the per-clause
	// slices or the failure list.
	perClause := make([][][]model.Candidate, len(clauses))
	var lexMatches []model.Candidate
	var failures []model.ShardFailure
	strict := req.Strict || e.strict

	for n := 0; n < expected; n++ {
		select {
		case res := <-results:
			if res.err != nil {
				failure := model.ShardFailure{Shard: res.shard, Err: res.err}
				if strict {
					return nil, failure
				}
				failures = append(failures, failure)
				continue
			}
			if res.clause == lexicalClause {
				lexMatches = append(lexMatches, res.cands...)
			} else {
				perClause[res.clause] = append(perClause[res.clause], res.cands)
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("query cancelled: %w", ctx.Err())
		}
	}

	// Reduce: per-clause global merge, then the cross-clause combination.
	clauseResults := make([]model.ClauseResult, len(clauses))
	for i := range clauses {
		if generic {
			clauseResults[i] = mergeAll(perClause[i], clauses[i].Boost, clauses[i].Field)
		} else {
			clauseResults[i] = mergeTopK(perClause[i], clauses[i].K, clauses[i].Boost, clauses[i].Field)
		}
	}
	combined := combine(clauseResults)

	ranked, total := integrate(combined, lexMatches)

	resp := &Response{
		TotalHits:     total,
		ShardFailures: failures,
	}

	if len(req.Aggregations) > 0 {
		resp.Aggregations = e.aggregate(req.Aggregations, ranked)
	}

	size := req.Size
	if size > len(ranked) {
		size = len(ranked)
	}
	resp.Hits = make([]Hit, size)
	for i := 0; i < size; i++ {
		hit := Hit{Doc: ranked[i].Doc, Score: ranked[i].Score}
		if ds, ok := e.documents[hit.Doc.Shard()]; ok {
			if fields, found := ds.Document(hit.Doc.Ordinal()); found {
				hit.Fields = fields
			}
		}
		resp.Hits[i] = hit
	}

	return resp, nil
}

// aggregate feeds every matched document — the full post-integration union,
// not the returned page — to each requested aggregation.
func (e *Executor) aggregate(aggs map[string]aggregation.Aggregation, matched []model.Candidate) map[string]aggregation.Result {
	collectors := make(map[string]aggregation.Collector, len(aggs))
	for name, agg := range aggs {
		collectors[name] = agg.NewCollector()
	}

	for _, m := range matched {
		ds, ok := e.documents[m.Doc.Shard()]
		if !ok {
			continue
		}
		fields, found := ds.Document(m.Doc.Ordinal())
		if !found {
			continue
		}
		for _, c := range collectors {
			c.Collect(fields)
		}
	}

	results := make(map[string]aggregation.Result, len(collectors))
	for name, c := range collectors {
		results[name] = c.Result()
	}
	return results
}
