package log

import (
	"context"

	"go.uber.org/zap"
)

type sessionIDKey struct{}

// WithSessionID returns a context which knows its session ID.
// A session ID tracks one end to end run across all cores.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// ExtractSessionID extracts the session id from a context object.
func ExtractSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok
}

// ZContext returns the session id of ctx as a field, or a skip field
// if there is none.
func ZContext(ctx context.Context) zap.Field {
	if id, ok := ExtractSessionID(ctx); ok {
		return zap.String("session_id", id)
	}
	return zap.Skip()
}
