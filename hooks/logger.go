package hooks

import (
	"context"
	"log/slog"
	"time"
)

// LoggerHook implements operation logging
type LoggerHook struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

// NewLoggerHook creates a new logger hook. Operations slower than
// slowThreshold are logged at warn level (0 = disabled).
func NewLoggerHook(logger *slog.Logger, slowThreshold time.Duration) *LoggerHook {
	return &LoggerHook{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// BeforeOperation is called before an operation is executed
func (h *LoggerHook) BeforeOperation(ctx context.Context, event *Event) context.Context {
	attrs := []slog.Attr{slog.String("operation", event.Op)}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	h.logger.LogAttrs(ctx, slog.LevelDebug, "connection registry operation started", attrs...)
	return ctx
}

// AfterOperation is called after an operation is executed
func (h *LoggerHook) AfterOperation(ctx context.Context, event *Event) {
	duration := time.Since(event.StartTime)

	attrs := []slog.Attr{
		slog.String("operation", event.Op),
		slog.Duration("duration", duration),
		slog.Int("connections", event.Count),
	}
	if event.Key != "" {
		attrs = append(attrs, slog.String("key", event.Key))
	}
	if event.Removed > 0 {
		attrs = append(attrs, slog.Int("removed", event.Removed))
	}

	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		h.logger.LogAttrs(ctx, slog.LevelError, "connection registry operation failed", attrs...)
	} else if h.slowThreshold > 0 && duration >= h.slowThreshold {
		h.logger.LogAttrs(ctx, slog.LevelWarn, "slow connection registry operation", attrs...)
	} else {
		h.logger.LogAttrs(ctx, slog.LevelDebug, "connection registry operation ready", attrs...)
	}
}
