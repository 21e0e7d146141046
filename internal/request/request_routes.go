package request

import (
	"go-travel-desk/internal/middleware"
	"go-travel-desk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "travel_request", "read"), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "travel_request", "read"), handler.GetById)
		requests.GET("/:id/itinerary", middleware.RBACAuthorize(rbacService, "travel_request", "read"), handler.GetItinerary)
		if redisClient != nil {
			requests.POST("",
				middleware.RBACAuthorize(rbacService, "travel_request", "create"),
				middleware.Idempotency(redisClient),
				handler.Create)
		} else {
			requests.POST("", middleware.RBACAuthorize(rbacService, "travel_request", "create"), handler.Create)
		}
		requests.PUT("/:id/status", middleware.RBACAuthorize(rbacService, "travel_request", "transition"), handler.UpdateStatus)
		requests.DELETE("/:id", middleware.RBACAuthorize(rbacService, "travel_request", "delete"), handler.Delete)
	}
}
