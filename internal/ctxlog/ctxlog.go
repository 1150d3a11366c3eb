// Package ctxlog carries a slog.Logger through context.Context so that
// importers, checks and factory functions log with the caller's logger.
package ctxlog

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug and is used for per-call detail such
// as factory invocations.
const LevelTrace = slog.Level(-8)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded. A nil
// logger leaves ctx unchanged.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Lookup returns the logger embedded in ctx, if any.
func Lookup(ctx context.Context) (*slog.Logger, bool) {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	return logger, ok
}

// FromContext extracts the slog.Logger from a context. If no logger is
// found, it returns the default global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}
	return slog.Default()
}

// LevelName renders LevelTrace as "TRACE" and defers to slog for the rest.
// It is meant for slog.HandlerOptions.ReplaceAttr.
func LevelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}
