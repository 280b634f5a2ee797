package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/interfaces/http/handlers"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
)

// GuardianshipRouteConfig holds dependencies for guardianship routes.
type GuardianshipRouteConfig struct {
	GuardianshipHandler *handlers.GuardianshipHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// SetupGuardianshipRoutes configures guardianship routes.
func SetupGuardianshipRoutes(group *gin.RouterGroup, cfg *GuardianshipRouteConfig) {
	guardianships := group.Group("/guardianships")
	guardianships.Use(cfg.AuthMiddleware.RequireAuth())
	{
		guardianships.POST("", cfg.GuardianshipHandler.CreateGuardianship)
		guardianships.GET("", cfg.GuardianshipHandler.ListMyGuardianships)
		guardianships.POST("/:sid/complete", cfg.GuardianshipHandler.CompleteGuardianship)
		guardianships.POST("/:sid/cancel", cfg.GuardianshipHandler.CancelGuardianship)
		guardianships.POST("/:sid/renew", cfg.GuardianshipHandler.RenewGuardianship)
	}
}
