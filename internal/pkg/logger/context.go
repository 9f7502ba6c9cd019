package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithContext returns a logger carrying the request ID from the context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		return l.With(zap.String("request_id", requestID))
	}
	return l
}
