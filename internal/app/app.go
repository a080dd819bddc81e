package app

import (
	"os"

	"go-leave/internal/middleware"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/connection"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects infrastructure, migrates and seeds the schema, and
// registers every module's routes on the router.
func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	if err := migrateAndSeed(gormDB); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	router.NoRoute(func(c *gin.Context) {
		e := apperror.ErrNotFound
		response.Error(c, e.HTTPStatus, e.Code, e.Message, nil)
	})

	return registerModules(router, gormDB, redisClient)
}
