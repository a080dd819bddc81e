package leaverequest

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RegisterRoutes wires the leave request endpoints. Submission is guarded by
// the idempotency middleware when a redis client is available so a retried
// POST does not file the request twice.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.RateLimitByEmployee(rate.Limit(5), 10))
	{
		createHandlers := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, "leave_request", "create")}
		if rdb != nil {
			createHandlers = append(createHandlers, middleware.Idempotency(rdb))
		}
		createHandlers = append(createHandlers, handler.Create)
		requests.POST("", createHandlers...)

		requests.GET("/me", middleware.RBACAuthorize(rbacService, "leave_request", "read"), handler.GetMine)
		requests.POST("/check", middleware.RBACAuthorize(rbacService, "leave_request", "create"), handler.CheckAllocation)
		requests.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "leave_request", "cancel"), handler.Cancel)

		requests.GET("/all", middleware.RBACAuthorize(rbacService, "leave_request", "read_all"), handler.GetAll)
		requests.GET("/:id/review", middleware.RBACAuthorize(rbacService, "leave_request", "review"), handler.GetForReview)
		requests.POST("/:id/review", middleware.RBACAuthorize(rbacService, "leave_request", "review"), handler.Review)
	}
}
