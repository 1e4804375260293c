// Package tracing carries request correlation ids and sets up the
// OpenTelemetry tracer provider.
package tracing

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestID returns id, or a fresh id when the caller sent none.
func RequestID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
