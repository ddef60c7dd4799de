package logger

import (
	"context"
	"log/slog"
)

// loggerKey is the context key type for the request-scoped logger.
type loggerKey struct{}

// WithLogger returns a new context carrying the given logger. Middleware uses
// this to attach a request-scoped logger enriched with a trace ID.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the logger from the context, falling back to the
// process default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger from the context, falling back to
// the provided component logger when none was attached. Handlers and services
// prefer this so their component attribute survives when no request logger
// exists.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
