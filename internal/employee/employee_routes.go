package employee

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("/me", handler.GetMe)
		employees.GET("", middleware.RBACAuthorize(rbacService, "employee", "read_all"), handler.GetAll)
	}
}
