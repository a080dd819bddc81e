package allocation

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
	allocations := r.Group("/allocations")
	allocations.Use(middleware.AuthMiddleware())
	{
		allocations.GET("/me", middleware.RBACAuthorize(rbacService, "allocation", "read"), handler.GetMine)
		allocations.GET("/me/:leaveTypeId", middleware.RBACAuthorize(rbacService, "allocation", "read"), handler.GetMineForType)
		allocations.GET("/employees", middleware.RBACAuthorize(rbacService, "allocation", "read_all"), handler.ListEmployees)
		allocations.GET("/employees/:employeeId", middleware.RBACAuthorize(rbacService, "allocation", "read_all"), handler.GetForEmployee)
		allocations.POST("/employees/:employeeId", middleware.RBACAuthorize(rbacService, "allocation", "allocate"), handler.Allocate)
		allocations.GET("/:id", middleware.RBACAuthorize(rbacService, "allocation", "read_all"), handler.GetById)
		allocations.PUT("/:id", middleware.RBACAuthorize(rbacService, "allocation", "edit"), handler.Edit)
	}
}
