package roster

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with roster-specific helpers.
// Field names are consistent across operations: "key", "count", "error".
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithKey adds a key field to the logger.
func (l *Logger) WithKey(key any) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLoad logs a bulk load. duplicates is the number of fetched records
// that shared a key with a later one.
func (l *Logger) LogLoad(ctx context.Context, count, duplicates int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "load failed",
			"error", err,
		)
	case duplicates > 0:
		l.WarnContext(ctx, "load completed with duplicate keys",
			"count", count,
			"duplicates", duplicates,
		)
	default:
		l.InfoContext(ctx, "load completed",
			"count", count,
		)
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, key any, err error) {
	l.logWrite(ctx, "add", key, err)
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, key any, err error) {
	l.logWrite(ctx, "update", key, err)
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, key any, err error) {
	l.logWrite(ctx, "delete", key, err)
}

func (l *Logger) logWrite(ctx context.Context, op string, key any, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"key", key,
		)
	}
}
