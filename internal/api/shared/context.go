package shared

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// ContextKey is the type of request context keys owned by this package.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// bodyKey holds the buffered JSON request body
	bodyKey ContextKey = "jsonBody"
)

// SetTraceID adds a trace ID to the context, reusing incoming when it is a
// valid UUID. This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context, incoming string) context.Context {
	traceID := incoming
	if _, err := uuid.Parse(traceID); err != nil {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithBody stores the decoded JSON request body in the context.
func WithBody(ctx context.Context, body json.RawMessage) context.Context {
	return context.WithValue(ctx, bodyKey, body)
}

// Body returns the JSON request body buffered by the body decoder, or nil when
// the request carried none.
func Body(ctx context.Context) json.RawMessage {
	body, _ := ctx.Value(bodyKey).(json.RawMessage)
	return body
}
