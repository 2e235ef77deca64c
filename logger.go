package vecquery

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vecquery-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithShard adds a shard field to the logger.
func (l *Logger) WithShard(shard uint8) *Logger {
	return &Logger{
		Logger: l.Logger.With("shard", shard),
	}
}

// WithAlias adds an alias field to the logger.
func (l *Logger) WithAlias(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("alias", name),
	}
}

// LogSearch logs a query execution.
func (l *Logger) LogSearch(ctx context.Context, clauses, totalHits, shardFailures int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "search failed",
			"clauses", clauses,
			"error", err,
		)
	case shardFailures > 0:
		l.WarnContext(ctx, "search degraded",
			"clauses", clauses,
			"total_hits", totalHits,
			"shard_failures", shardFailures,
		)
	default:
		l.DebugContext(ctx, "search completed",
			"clauses", clauses,
			"total_hits", totalHits,
		)
	}
}

// LogAlias logs an alias registration.
func (l *Logger) LogAlias(name string, filters int) {
	l.Debug("alias registered",
		"alias", name,
		"filters", filters,
	)
}
