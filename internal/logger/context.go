package logger

import (
	"context"

	"go.uber.org/zap"
)

const requestIDField = "request_id"

type scopeKey struct{}

// scope is what a request has learned about itself so far: its id and
// whatever tenant fields the auth layer attached.
type scope struct {
	requestID string
	fields    []zap.Field
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	s := scopeFrom(ctx)
	s.requestID = requestID
	return context.WithValue(ctx, scopeKey{}, s)
}

func RequestIDFrom(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// WithFields returns a context whose logger also carries fields. The parent
// context keeps its own set.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	s := scopeFrom(ctx)
	merged := make([]zap.Field, 0, len(s.fields)+len(fields))
	s.fields = append(append(merged, s.fields...), fields...)
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromCtx returns the process logger tagged with the request scope.
func FromCtx(ctx context.Context) *zap.Logger {
	s := scopeFrom(ctx)
	if s.requestID == "" && len(s.fields) == 0 {
		return L()
	}
	fields := s.fields
	if s.requestID != "" {
		fields = append([]zap.Field{zap.String(requestIDField, s.requestID)}, s.fields...)
	}
	return L().With(fields...)
}
