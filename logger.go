package mtmstats

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with mtmstats-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", n),
	}
}

// WithPartition adds a partition index field to the logger.
func (l *Logger) WithPartition(index int) *Logger {
	return &Logger{
		Logger: l.Logger.With("partition", index),
	}
}

// LogBuild logs a row build.
func (l *Logger) LogBuild(ctx context.Context, rows, bits int, kind string, chunkLength int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"kind", kind,
			"chunk_length", chunkLength,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "build completed",
			"rows", rows,
			"bits", bits,
			"kind", kind,
			"chunk_length", chunkLength,
			"duration", duration,
		)
	}
}

// LogPairs logs a completed pair enumeration.
func (l *Logger) LogPairs(ctx context.Context, pairs int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pair enumeration failed",
			"pairs", pairs,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "pair enumeration completed",
			"pairs", pairs,
			"duration", duration,
		)
	}
}

// LogPartition logs a fully consumed partition.
func (l *Logger) LogPartition(ctx context.Context, index, start, end, pairs int, duration time.Duration) {
	l.DebugContext(ctx, "partition completed",
		"partition", index,
		"start", start,
		"end", end,
		"pairs", pairs,
		"duration", duration,
	)
}

// LogSave logs a save operation.
func (l *Logger) LogSave(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "relation saved",
			"name", name,
		)
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, name string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "relation loaded",
			"name", name,
			"rows", rows,
		)
	}
}
