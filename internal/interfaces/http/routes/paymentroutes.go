package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/interfaces/http/handlers"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

// SetupPaymentRoutes configures payment routes. The callback endpoint stays
// public; the provider authenticates through the payload signature.
func SetupPaymentRoutes(group *gin.RouterGroup, cfg *PaymentRouteConfig) {
	payments := group.Group("/payments")
	{
		payments.POST("/callback", cfg.PaymentHandler.HandleCallback)
		payments.POST("/donations", cfg.RateLimiter.Limit(), cfg.AuthMiddleware.OptionalAuth(), cfg.PaymentHandler.CreateDonation)

		protected := payments.Group("")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		{
			protected.GET("", cfg.PaymentHandler.ListMyPayments)
			protected.GET("/:sid", cfg.PaymentHandler.GetPayment)
		}
	}
}
