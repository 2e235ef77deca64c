package vecquery

import (
	"log/slog"
	"time"

	"github.com/hupe1980/vecquery/filter"
	"github.com/hupe1980/vecquery/lookup"
)

type options struct {
	lookupStore      lookup.Store
	lookupCacheSize  int
	lookupCacheTTL   time.Duration
	resolver         *filter.Resolver
	poolSize         int
	strict           bool
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures Engine constructor behavior.
type Option func(*options)

// WithLookupStore configures the document store backing terms-lookup
// filters. Without one, any terms-lookup filter fails resolution.
func WithLookupStore(store lookup.Store) Option {
	return func(o *options) {
		o.lookupStore = store
	}
}

// WithLookupCacheSize configures the number of expanded lookup value sets
// kept in the resolver's cross-execution cache. Default: 256. Only takes
// effect together with WithLookupCacheTTL.
func WithLookupCacheSize(size int) Option {
	return func(o *options) {
		o.lookupCacheSize = size
	}
}

// WithLookupCacheTTL enables reuse of expanded lookup value sets across
// query executions, bounded by ttl. Without it every execution re-reads its
// lookup documents, so store updates are always visible to the next query.
func WithLookupCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.lookupCacheTTL = ttl
	}
}

// WithResolver supplies a fully configured filter resolver, overriding
// WithLookupStore and WithLookupCacheSize.
func WithResolver(r *filter.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithWorkerPoolSize configures the number of fan-out workers.
// Default: max(number of shards, GOMAXPROCS).
func WithWorkerPoolSize(size int) Option {
	return func(o *options) {
		o.poolSize = size
	}
}

// WithStrict makes every query fail on the first shard failure instead of
// degrading to a best-effort result. Individual requests can also opt in
// via SearchBuilder.Strict.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := vecquery.NewJSONLogger(slog.LevelInfo)
//	eng, _ := vecquery.New(schema, shards, vecquery.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// query execution.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
