package web

import "context"

type traceIDKey struct{}

// TraceIDHeader carries the request trace id in both directions.
const TraceIDHeader = "X-Trace-Id"

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFrom returns the trace id stored by the trace middleware, or "".
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}
