package vecquery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/vecquery/engine"
	"github.com/hupe1980/vecquery/filter"
)

// Type aliases for the result types so callers of the top-level API do not
// need to import the engine package.
type (
	// Hit is one ranked result document.
	Hit = engine.Hit

	// Response is the result of one query execution.
	Response = engine.Response
)

// Engine is the top-level entry point of the query coordination layer. It
// owns the executor, the filter resolver and the alias registry, and hands
// out fluent search builders.
//
// An Engine is safe for concurrent use. Alias registration may happen at
// any time; in-flight queries use the alias set observed at Execute.
type Engine struct {
	exec    *engine.Executor
	logger  *Logger
	metrics MetricsCollector

	mu      sync.RWMutex
	aliases map[string][]filter.Expr
}

// New creates an Engine over the given shards. schema maps every
// searchable vector field to its declared dimension.
func New(schema map[string]int, shards []engine.CandidateSource, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)

	resolver := o.resolver
	if resolver == nil {
		resolver = filter.NewResolver(o.lookupStore, func(ro *filter.ResolverOptions) {
			if o.lookupCacheSize > 0 {
				ro.CacheSize = o.lookupCacheSize
			}
			ro.CacheTTL = o.lookupCacheTTL
		})
	}

	exec, err := engine.NewExecutor(schema, shards, resolver, func(eo *engine.Options) {
		eo.PoolSize = o.poolSize
		eo.Strict = o.strict
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		exec:    exec,
		logger:  o.logger,
		metrics: o.metricsCollector,
		aliases: make(map[string][]filter.Expr),
	}, nil
}

// Close shuts down the engine's worker pool. In-flight queries complete.
func (e *Engine) Close() {
	e.exec.Close()
}

// RegisterAlias binds a filter to a name. Searching through the alias
// conjoins the filter into every clause of the request, including clauses
// without a filter of their own. An empty filter makes the alias a plain
// passthrough name.
//
// Registering an existing name replaces its filter.
func (e *Engine) RegisterAlias(name string, exprs ...filter.Expr) error {
	if name == "" {
		return fmt.Errorf("alias name must not be empty")
	}
	if err := filter.Validate(exprs); err != nil {
		return translateError(err)
	}

	e.mu.Lock()
	e.aliases[name] = exprs
	e.mu.Unlock()

	e.logger.LogAlias(name, len(exprs))
	return nil
}

// DeleteAlias removes an alias. Deleting an unknown alias is a no-op.
func (e *Engine) DeleteAlias(name string) {
	e.mu.Lock()
	delete(e.aliases, name)
	e.mu.Unlock()
}

// aliasFilter returns the filter bound to name, or an error for an unknown
// alias. An empty name means no alias.
func (e *Engine) aliasFilter(name string) ([]filter.Expr, error) {
	if name == "" {
		return nil, nil
	}
	e.mu.RLock()
	exprs, ok := e.aliases[name]
	e.mu.RUnlock()
	if !ok {
		return nil, &ErrUnknownAlias{Name: name}
	}
	return exprs, nil
}

// execute runs a fully assembled request through the executor, with
// logging and metrics around it.
func (e *Engine) execute(ctx context.Context, req *engine.Request) (*Response, error) {
	clauses := len(req.Clauses)
	if req.Query != nil {
		clauses = 1
	}

	start := time.Now()
	resp, err := e.exec.Execute(ctx, req)
	duration := time.Since(start)

	if err != nil {
		err = translateError(err)
		e.metrics.RecordSearch(clauses, 0, duration, err)
		e.logger.LogSearch(ctx, clauses, 0, 0, err)
		return nil, err
	}

	e.metrics.RecordSearch(clauses, resp.TotalHits, duration, nil)
	if n := len(resp.ShardFailures); n > 0 {
		e.metrics.RecordShardFailures(n)
	}
	e.logger.LogSearch(ctx, clauses, resp.TotalHits, len(resp.ShardFailures), nil)
	return resp, nil
}
