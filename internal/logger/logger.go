package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey is the type for context keys carried into log records
type ContextKey string

// Context keys attached by the HTTP layer and threaded through every
// workflow operation
const (
	CorrelationIDKey ContextKey = "correlation_id"
	ActorIDKey       ContextKey = "actor_id"
	LeadIDKey        ContextKey = "lead_id"
)

// contextKeys lists the keys WithContext lifts into log attributes
var contextKeys = []ContextKey{CorrelationIDKey, ActorIDKey, LeadIDKey}

var defaultLogger *slog.Logger

// Init sets up the global JSON logger. The level comes from LOG_LEVEL
// (debug, info, warn, error), defaulting to info.
func Init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithContext returns a logger carrying whichever workflow context values
// are present on the context
func WithContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if logger == nil {
		logger = slog.Default()
	}

	for _, key := range contextKeys {
		if value, ok := ctx.Value(key).(string); ok && value != "" {
			logger = logger.With(string(key), value)
		}
	}
	return logger
}

// Info logs an info message with context
func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// Warn logs a warning message with context
func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

// Error logs an error message with context
func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

// Debug logs a debug message with context
func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

// LogError logs an error with its message attached as a field
func LogError(ctx context.Context, msg string, err error, args ...any) {
	WithContext(ctx).Error(msg, append([]any{"error", err.Error()}, args...)...)
}

// LogStatusTransition records a reassignment status change as a structured
// event so transitions can be traced per lead
func LogStatusTransition(ctx context.Context, leadID, oldStatus, newStatus string) {
	WithContext(ctx).Info("Reassignment status transition",
		"lead_id", leadID,
		"old_status", oldStatus,
		"new_status", newStatus,
		"timestamp", time.Now().UTC(),
	)
}

// LogSlowOperation warns about operations that took longer than a second
func LogSlowOperation(ctx context.Context, operation string, duration time.Duration) {
	if duration > time.Second {
		WithContext(ctx).Warn("Slow operation detected",
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
		)
	}
}
