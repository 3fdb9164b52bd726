package logger

import (
	"context"
	"log/slog"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	LoggerKey ContextKey = "logger"
)

// FromContext retrieves the logger from the context.
// If no logger is found, it returns the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// WithExecID adds an execution ID to the logger in the context
func WithExecID(ctx context.Context, execID string) context.Context {
	logger := FromContext(ctx).With("exec_id", execID)
	return WithLogger(ctx, logger)
}

// WithUserID adds the calling user's ID to the logger in the context
func WithUserID(ctx context.Context, userID string) context.Context {
	logger := FromContext(ctx).With("user_id", userID)
	return WithLogger(ctx, logger)
}
