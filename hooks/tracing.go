package hooks

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingHook implements OpenTelemetry tracing
type TracingHook struct {
	tracer trace.Tracer
}

// NewTracingHook creates a new tracing hook
func NewTracingHook(tracer trace.Tracer) *TracingHook {
	return &TracingHook{tracer: tracer}
}

// spanCtxKey is unique per hook so several tracing hooks can run in one chain
type spanCtxKey struct {
	hook *TracingHook
}

// BeforeOperation is called before an operation is executed
func (h *TracingHook) BeforeOperation(ctx context.Context, event *Event) context.Context {
	if h.tracer == nil {
		return ctx
	}

	ctx, span := h.tracer.Start(ctx, "connpool."+event.Op,
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return context.WithValue(ctx, spanCtxKey{hook: h}, span)
}

// AfterOperation is called after an operation is executed
func (h *TracingHook) AfterOperation(ctx context.Context, event *Event) {
	spanVal := ctx.Value(spanCtxKey{hook: h})
	if spanVal == nil {
		return
	}

	span, ok := spanVal.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("connpool.operation", event.Op),
		attribute.Int("connpool.connections", event.Count),
	}
	if event.Key != "" {
		attrs = append(attrs, attribute.String("connpool.key", event.Key))
	}
	if event.Removed > 0 {
		attrs = append(attrs, attribute.Int("connpool.removed", event.Removed))
	}
	span.SetAttributes(attrs...)

	if event.Err != nil {
		span.RecordError(event.Err)
		span.SetStatus(codes.Error, event.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
