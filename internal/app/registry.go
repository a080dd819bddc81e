package app

import (
	"path/filepath"

	"go-leave/internal/allocation"
	"go-leave/internal/employee"
	"go-leave/internal/leaverequest"
	"go-leave/internal/leavetype"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/period"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	allocationRepo := allocation.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRequestRepo := leaverequest.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	periodRepo := period.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("internal", "rbac", "infra", "model.conf"),
		filepath.Join("internal", "rbac", "infra", "policy.csv"),
	)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	employeeService := employee.NewService(employeeRepo)
	leaveTypeService := leavetype.NewService(leaveTypeRepo)
	periodService := period.NewService(periodRepo)
	allocationService := allocation.NewServiceWithOutbox(
		gormDB, allocationRepo, leaveTypeService, periodService, employeeService, outboxRepo,
	)
	leaveRequestService := leaverequest.NewServiceWithOutbox(
		gormDB, leaveRequestRepo, leaveTypeService, allocationService, periodService, counterRepo, outboxRepo,
	)

	// --- Handlers ---
	allocationHandler := allocation.NewHandler(allocationService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveRequestHandler := leaverequest.NewHandlerWithRedis(leaveRequestService, rdb)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		allocation.RegisterRoutes(api, allocationHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		leaverequest.RegisterRoutes(api, leaveRequestHandler, rbacService, rdb)
		leavetype.RegisterRoutes(api, leaveTypeHandler, rbacService)
	}

	return nil
}
