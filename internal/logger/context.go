package logger

import "context"

// ctxKey keeps the request ID context key private to this package.
type ctxKey struct{}

// WithRequestID stores a request correlation ID on the context so log
// records emitted downstream can carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored on the context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
