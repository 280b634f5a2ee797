// The worker runs the maintenance sweeps without the HTTP server. Deploy it
// alongside API instances started with --no-sweeps so only one process
// executes the sweeps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	guardianshipUsecases "github.com/pawhaven/pawhaven/internal/application/guardianship/usecases"
	subscriptionUsecases "github.com/pawhaven/pawhaven/internal/application/subscription/usecases"
	"github.com/pawhaven/pawhaven/internal/infrastructure/cache"
	"github.com/pawhaven/pawhaven/internal/infrastructure/config"
	"github.com/pawhaven/pawhaven/internal/infrastructure/database"
	"github.com/pawhaven/pawhaven/internal/infrastructure/email"
	"github.com/pawhaven/pawhaven/internal/infrastructure/gateway"
	"github.com/pawhaven/pawhaven/internal/infrastructure/repository"
	"github.com/pawhaven/pawhaven/internal/infrastructure/scheduler"
	"github.com/pawhaven/pawhaven/internal/shared/biztime"
	"github.com/pawhaven/pawhaven/internal/shared/clock"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting lifecycle sweep worker", "environment", env)

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		logger.Fatal("failed to initialize business timezone", "error", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	subscriptionRepo := repository.NewSubscriptionRepository(database.Get())
	guardianshipRepo := repository.NewGuardianshipRepository(database.Get())
	txManager := db.NewTransactionManager(database.Get())
	clk := clock.System()

	liqpay := gateway.NewClient(&cfg.Gateway, log.Named("gateway"))
	expectedStore := cache.NewExpectedPaymentsStore(redisClient)
	smtpSender := email.NewSMTPSender(&cfg.Email)
	notifier := email.NewGuardianshipNotifier(smtpSender, nil, log.Named("notifier"))

	cancelSubscriptionUC := subscriptionUsecases.NewCancelSubscriptionUseCase(
		subscriptionRepo, liqpay, txManager, expectedStore, log)
	completeGuardianshipUC := guardianshipUsecases.NewCompleteGuardianshipUseCase(
		guardianshipRepo, txManager, cancelSubscriptionUC, notifier, log)
	cancelSubscriptionUC.SetGuardianshipCompleter(completeGuardianshipUC)

	cancelExpiredUC := subscriptionUsecases.NewCancelExpiredSubscriptionsUseCase(
		subscriptionRepo, cancelSubscriptionUC, clk,
		time.Duration(cfg.Subscription.RetryToleranceHours)*time.Hour, log)
	autoCompleteUC := guardianshipUsecases.NewAutoCompleteExpiredUseCase(
		guardianshipRepo, completeGuardianshipUC, clk, log)

	manager := scheduler.NewManager(
		scheduler.NewSubscriptionScheduler(cancelExpiredUC,
			time.Duration(cfg.Subscription.SweepIntervalMinutes)*time.Minute, log.Named("scheduler")),
		scheduler.NewGuardianshipScheduler(autoCompleteUC,
			time.Duration(cfg.Guardianship.SweepIntervalMinutes)*time.Minute, log.Named("scheduler")),
		log.Named("scheduler"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager.StartAll(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Infow("shutting down worker")
	manager.StopAll()
	log.Infow("worker exited gracefully")
}
