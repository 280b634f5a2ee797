package http

import (
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes.
func (c *Container) SetupRoutes(allowedOrigins []string) {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log))
	c.engine.Use(middleware.Recovery())
	c.engine.Use(middleware.CORS(allowedOrigins))

	c.engine.GET("/health", c.healthHandler.HealthCheck)

	v1 := c.engine.Group("/api/v1")

	routes.SetupPaymentRoutes(v1, &routes.PaymentRouteConfig{
		PaymentHandler: c.paymentHandler,
		AuthMiddleware: c.authMiddleware,
		RateLimiter:    c.rateLimiter,
	})

	routes.SetupSubscriptionRoutes(v1, &routes.SubscriptionRouteConfig{
		SubscriptionHandler: c.subscriptionHandler,
		AuthMiddleware:      c.authMiddleware,
	})

	routes.SetupGuardianshipRoutes(v1, &routes.GuardianshipRouteConfig{
		GuardianshipHandler: c.guardianshipHandler,
		AuthMiddleware:      c.authMiddleware,
	})
}
