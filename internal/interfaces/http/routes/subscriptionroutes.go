package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/interfaces/http/handlers"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
)

// SubscriptionRouteConfig holds dependencies for subscription routes.
type SubscriptionRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// SetupSubscriptionRoutes configures recurring donation routes.
func SetupSubscriptionRoutes(group *gin.RouterGroup, cfg *SubscriptionRouteConfig) {
	subscriptions := group.Group("/subscriptions")
	subscriptions.Use(cfg.AuthMiddleware.RequireAuth())
	{
		subscriptions.POST("", cfg.SubscriptionHandler.CreateSubscription)
		subscriptions.GET("", cfg.SubscriptionHandler.ListMySubscriptions)
		subscriptions.GET("/expected-payments", cfg.SubscriptionHandler.GetExpectedPayments)
		subscriptions.DELETE("/:sid", cfg.SubscriptionHandler.CancelSubscription)
	}
}
