package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is private so keys cannot collide with other packages.
type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	employeeIDKey contextKey = "employee_id"
	loggerKey     contextKey = "logger"
)

// --- Request ID ---

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

// --- Caller identity ---

// WithEmployeeID records the authenticated caller's employee id.
func WithEmployeeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, employeeIDKey, id)
}

// GetEmployeeID returns the authenticated caller's employee id, or "" when
// the request is unauthenticated.
func GetEmployeeID(ctx context.Context) string {
	if id, ok := ctx.Value(employeeIDKey).(string); ok {
		return id
	}
	return ""
}

// --- Logger ---

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request-scoped logger, falling back to the given
// default so callers never receive nil.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	if defaultLogger != nil {
		return defaultLogger
	}

	return zap.NewNop()
}

// Metadata bundles the tracing info for manual logging.
type Metadata struct {
	RequestID  string
	EmployeeID string
}

func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID:  GetRequestID(ctx),
		EmployeeID: GetEmployeeID(ctx),
	}
}
