package stats

import (
	"go-travel-desk/internal/middleware"
	"go-travel-desk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("/stats", middleware.RBACAuthorize(rbacService, "travel_request", "stats"), handler.Summary)
	}
}
