package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for job identifiers.
	FieldJobID = "job_id"
	// FieldStep is the standardized structured logging key for pipeline step names.
	FieldStep = "step"
	// FieldEventType tags log lines with a machine-filterable event class.
	FieldEventType = "event_type"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

type contextKey string

const (
	jobIDKey         contextKey = "job_id"
	stepKey          contextKey = "step"
	correlationIDKey contextKey = "correlation_id"
)

// WithJob attaches a job identifier to the context.
func WithJob(ctx context.Context, jobID string) context.Context {
	if jobID == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, jobID)
}

// WithStep attaches a pipeline step name to the context.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// WithCorrelationID attaches a request correlation identifier to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var attrs []Attr
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		attrs = append(attrs, String(FieldJobID, v))
	}
	if v, ok := ctx.Value(stepKey).(string); ok && v != "" {
		attrs = append(attrs, String(FieldStep, v))
	}
	if v, ok := ctx.Value(correlationIDKey).(string); ok && v != "" {
		attrs = append(attrs, String(FieldCorrelationID, v))
	}
	return attrs
}

// WithContext returns a logger enriched with any standardized fields present
// on the context. A nil logger yields a no-op logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
