package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	guardianshipUsecases "github.com/pawhaven/pawhaven/internal/application/guardianship/usecases"
	paymentUsecases "github.com/pawhaven/pawhaven/internal/application/payment/usecases"
	subscriptionUsecases "github.com/pawhaven/pawhaven/internal/application/subscription/usecases"
	"github.com/pawhaven/pawhaven/internal/infrastructure/auth"
	"github.com/pawhaven/pawhaven/internal/infrastructure/cache"
	"github.com/pawhaven/pawhaven/internal/infrastructure/config"
	"github.com/pawhaven/pawhaven/internal/infrastructure/email"
	"github.com/pawhaven/pawhaven/internal/infrastructure/gateway"
	"github.com/pawhaven/pawhaven/internal/infrastructure/repository"
	"github.com/pawhaven/pawhaven/internal/infrastructure/scheduler"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/handlers"
	"github.com/pawhaven/pawhaven/internal/interfaces/http/middleware"
	"github.com/pawhaven/pawhaven/internal/shared/clock"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// Container wires repositories, use cases, handlers and the background
// sweeps together, and owns their shutdown.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	paymentRepo      *repository.PaymentRepository
	subscriptionRepo *repository.SubscriptionRepository
	guardianshipRepo *repository.GuardianshipRepository

	paymentHandler      *handlers.PaymentHandler
	subscriptionHandler *handlers.SubscriptionHandler
	guardianshipHandler *handlers.GuardianshipHandler
	healthHandler       *handlers.HealthHandler

	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter

	schedulerManager *scheduler.Manager
}

// NewContainer builds the full object graph. The mutual dependency between
// subscription cancellation and guardianship completion is closed with a
// setter after both use cases exist.
func NewContainer(database *gorm.DB, cfg *config.Config, log logger.Interface) *Container {
	c := &Container{
		engine: gin.New(),
		db:     database,
		cfg:    cfg,
		log:    log,
	}

	c.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.paymentRepo = repository.NewPaymentRepository(database)
	c.subscriptionRepo = repository.NewSubscriptionRepository(database)
	c.guardianshipRepo = repository.NewGuardianshipRepository(database)

	txManager := db.NewTransactionManager(database)
	clk := clock.System()

	liqpay := gateway.NewClient(&cfg.Gateway, log.Named("gateway"))

	expectedStore := cache.NewExpectedPaymentsStore(c.redis)
	smtpSender := email.NewSMTPSender(&cfg.Email)
	notifier := email.NewGuardianshipNotifier(smtpSender, nil, log.Named("notifier"))

	gracePeriod := time.Duration(cfg.Guardianship.GracePeriodDays) * 24 * time.Hour
	retryTolerance := time.Duration(cfg.Subscription.RetryToleranceHours) * time.Hour

	// Subscription side first; the guardianship completer is attached below.
	cancelSubscriptionUC := subscriptionUsecases.NewCancelSubscriptionUseCase(
		c.subscriptionRepo, liqpay, txManager, expectedStore, log)

	completeGuardianshipUC := guardianshipUsecases.NewCompleteGuardianshipUseCase(
		c.guardianshipRepo, txManager, cancelSubscriptionUC, notifier, log)
	cancelSubscriptionUC.SetGuardianshipCompleter(completeGuardianshipUC)

	cancelGuardianshipUC := guardianshipUsecases.NewCancelGuardianshipUseCase(
		c.guardianshipRepo, txManager, cancelSubscriptionUC, log)

	createGuardianshipUC := guardianshipUsecases.NewCreateGuardianshipUseCase(
		c.guardianshipRepo, c.subscriptionRepo, c.paymentRepo, liqpay, txManager,
		guardianshipUsecases.GuardianshipConfig{
			Provider:    gateway.ProviderName,
			CallbackURL: cfg.Gateway.CallbackURL,
		}, log)

	renewGuardianshipUC := guardianshipUsecases.NewRenewGuardianshipUseCase(
		c.guardianshipRepo, c.subscriptionRepo, c.paymentRepo, liqpay, txManager,
		guardianshipUsecases.GuardianshipConfig{
			Provider:    gateway.ProviderName,
			CallbackURL: cfg.Gateway.CallbackURL,
		}, log)

	createSubscriptionUC := subscriptionUsecases.NewCreateSubscriptionUseCase(
		c.subscriptionRepo, c.paymentRepo, liqpay, txManager, expectedStore,
		subscriptionUsecases.SubscriptionConfig{
			Provider:    gateway.ProviderName,
			CallbackURL: cfg.Gateway.CallbackURL,
		}, log)

	createDonationUC := paymentUsecases.NewCreateDonationUseCase(
		c.paymentRepo, liqpay,
		paymentUsecases.DonationConfig{CallbackURL: cfg.Gateway.CallbackURL}, log)

	processCallbackUC := paymentUsecases.NewProcessCallbackUseCase(
		c.paymentRepo, c.subscriptionRepo, c.guardianshipRepo, liqpay, txManager,
		notifier, clk,
		paymentUsecases.CallbackConfig{GracePeriod: gracePeriod}, log)

	queryStatusUC := paymentUsecases.NewQueryPaymentStatusUseCase(c.paymentRepo, liqpay, log)
	listPaymentsUC := paymentUsecases.NewListMyPaymentsUseCase(c.paymentRepo)
	listSubscriptionsUC := subscriptionUsecases.NewListMySubscriptionsUseCase(c.subscriptionRepo)
	expectedPaymentsUC := subscriptionUsecases.NewGetExpectedPaymentsUseCase(c.subscriptionRepo, expectedStore, log)
	listGuardianshipsUC := guardianshipUsecases.NewListMyGuardianshipsUseCase(c.guardianshipRepo)

	cancelExpiredUC := subscriptionUsecases.NewCancelExpiredSubscriptionsUseCase(
		c.subscriptionRepo, cancelSubscriptionUC, clk, retryTolerance, log)
	autoCompleteUC := guardianshipUsecases.NewAutoCompleteExpiredUseCase(
		c.guardianshipRepo, completeGuardianshipUC, clk, log)

	c.schedulerManager = scheduler.NewManager(
		scheduler.NewSubscriptionScheduler(cancelExpiredUC,
			time.Duration(cfg.Subscription.SweepIntervalMinutes)*time.Minute, log.Named("scheduler")),
		scheduler.NewGuardianshipScheduler(autoCompleteUC,
			time.Duration(cfg.Guardianship.SweepIntervalMinutes)*time.Minute, log.Named("scheduler")),
		log.Named("scheduler"),
	)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessExpMinutes)
	c.authMiddleware = middleware.NewAuthMiddleware(jwtService, log)
	c.rateLimiter = middleware.NewRateLimiter(c.redis, 30, time.Minute)

	c.paymentHandler = handlers.NewPaymentHandler(createDonationUC, processCallbackUC, queryStatusUC, listPaymentsUC, log)
	c.subscriptionHandler = handlers.NewSubscriptionHandler(createSubscriptionUC, cancelSubscriptionUC, listSubscriptionsUC, expectedPaymentsUC, log)
	c.guardianshipHandler = handlers.NewGuardianshipHandler(createGuardianshipUC, completeGuardianshipUC, cancelGuardianshipUC, renewGuardianshipUC, listGuardianshipsUC, log)
	c.healthHandler = handlers.NewHealthHandler(database)

	return c
}

// Engine returns the configured gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// StartBackground launches the maintenance sweeps.
func (c *Container) StartBackground(ctx context.Context) {
	c.schedulerManager.StartAll(ctx)
}

// Shutdown stops the sweeps and closes the redis connection.
func (c *Container) Shutdown() {
	c.schedulerManager.StopAll()

	if err := c.redis.Close(); err != nil {
		c.log.Warnw("failed to close redis client", "error", err)
	}
}
