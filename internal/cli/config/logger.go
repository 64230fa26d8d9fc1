package config

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// NewLogger creates the CLI logger. Verbose enables debug level; the
// logger always writes to stderr so it never mixes with command output.
func NewLogger(verbose bool) *slog.Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the context, falling back to a
// quiet default.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return NewLogger(false)
}
