package app

import (
	"database/sql"
	"net/http"
	"path/filepath"

	"go-travel-desk/internal/auth"
	"go-travel-desk/internal/messaging/kafka"
	"go-travel-desk/internal/middleware"
	"go-travel-desk/internal/rbac"
	"go-travel-desk/internal/rbac/infra"
	"go-travel-desk/internal/request"
	"go-travel-desk/internal/shared/metrics"
	"go-travel-desk/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	statsRepo := stats.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("internal", "rbac", "infra", "model.conf"),
		filepath.Join("internal", "rbac", "infra", "policy.csv"),
	)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	appMetrics := metrics.New("travel_desk")

	// --- Services ---
	authService := auth.NewService(authRepo)
	requestService := request.NewServiceWithOutbox(db, requestRepo, outboxRepo, appMetrics)
	statsService := stats.NewService(statsRepo, rdb)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	requestHandler := request.NewHandlerWithRedis(requestService, rdb)
	statsHandler := stats.NewHandler(statsService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.ContextLogger(zap.L()))
	{
		auth.RegisterRoutes(api, authHandler)
		stats.RegisterRoutes(api, statsHandler, rbacService)
		request.RegisterRoutes(api, requestHandler, rbacService, rdb)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return nil
}
