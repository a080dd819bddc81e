package middleware

import (
	"go-leave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger attaches a request-scoped logger carrying the request id and
// caller identity, so service and repo layers log with the same metadata.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		md := contextutil.ExtractMetadata(c.Request.Context())

		rid := md.RequestID
		if rid == "" {
			rid = uuid.New().String()
			c.Header("X-Request-ID", rid)
		}

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("employee_id", md.EmployeeID),
		)

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)

		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
