package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	guardianshipUsecases "github.com/pawhaven/pawhaven/internal/application/guardianship/usecases"
	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	subscriptionUsecases "github.com/pawhaven/pawhaven/internal/application/subscription/usecases"
	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	guardianshipvo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	subscriptionvo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
	"github.com/pawhaven/pawhaven/internal/infrastructure/repository"
	"github.com/pawhaven/pawhaven/internal/shared/clock"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type sweepEnv struct {
	subscriptionRepo *repository.SubscriptionRepository
	guardianshipRepo *repository.GuardianshipRepository
	cancelExpiredUC  *subscriptionUsecases.CancelExpiredSubscriptionsUseCase
	autoCompleteUC   *guardianshipUsecases.AutoCompleteExpiredUseCase
}

func setupSweepEnv(t *testing.T, clk clock.Clock) *sweepEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.PaymentModel{},
		&models.SubscriptionModel{},
		&models.GuardianshipModel{},
	))

	log := logger.NewLogger()
	txManager := db.NewTransactionManager(gdb)
	subscriptionRepo := repository.NewSubscriptionRepository(gdb)
	guardianshipRepo := repository.NewGuardianshipRepository(gdb)

	cancelUC := subscriptionUsecases.NewCancelSubscriptionUseCase(
		subscriptionRepo, payment_gateway.NewMockGateway(true), txManager, nil, log)
	completeUC := guardianshipUsecases.NewCompleteGuardianshipUseCase(
		guardianshipRepo, txManager, cancelUC, nil, log)
	cancelUC.SetGuardianshipCompleter(completeUC)

	return &sweepEnv{
		subscriptionRepo: subscriptionRepo,
		guardianshipRepo: guardianshipRepo,
		cancelExpiredUC: subscriptionUsecases.NewCancelExpiredSubscriptionsUseCase(
			subscriptionRepo, cancelUC, clk, 72*time.Hour, log),
		autoCompleteUC: guardianshipUsecases.NewAutoCompleteExpiredUseCase(
			guardianshipRepo, completeUC, clk, log),
	}
}

func TestSubscriptionScheduler_SweepsOnStart(t *testing.T) {
	clk := &clock.Fixed{Instant: time.Now().UTC()}
	env := setupSweepEnv(t, clk)
	ctx := context.Background()

	sub, err := subscription.NewSubscription(1, "liqpay", "ord_stale", paymentvo.NewMoney(10000, "UAH"), subscriptionvo.StandaloneScope())
	require.NoError(t, err)
	require.NoError(t, sub.RecordChargeSuccess(clk.Now().Add(-35*24*time.Hour)))
	require.NoError(t, env.subscriptionRepo.Create(ctx, sub))
	require.NoError(t, sub.RecordChargeFailure())
	require.NoError(t, env.subscriptionRepo.Update(ctx, sub))

	s := NewSubscriptionScheduler(env.cancelExpiredUC, time.Hour, logger.NewLogger())
	s.Start(ctx)
	defer s.Stop()

	assert.Eventually(t, func() bool {
		reloaded, err := env.subscriptionRepo.GetByID(ctx, sub.ID())
		if err != nil {
			return false
		}
		return reloaded.Status() == subscriptionvo.StatusCancelled
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGuardianshipScheduler_SweepsOnStart(t *testing.T) {
	clk := &clock.Fixed{Instant: time.Now().UTC()}
	env := setupSweepEnv(t, clk)
	ctx := context.Background()

	g, err := guardianship.NewGuardianship(1, 7)
	require.NoError(t, err)
	require.NoError(t, g.EnterGrace(clk.Now().Add(-time.Minute)))
	require.NoError(t, env.guardianshipRepo.Create(ctx, g))

	s := NewGuardianshipScheduler(env.autoCompleteUC, time.Hour, logger.NewLogger())
	s.Start(ctx)
	defer s.Stop()

	assert.Eventually(t, func() bool {
		reloaded, err := env.guardianshipRepo.GetByID(ctx, g.ID())
		if err != nil {
			return false
		}
		return reloaded.Status() == guardianshipvo.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulers_StopIsIdempotent(t *testing.T) {
	clk := &clock.Fixed{Instant: time.Now().UTC()}
	env := setupSweepEnv(t, clk)

	s := NewSubscriptionScheduler(env.cancelExpiredUC, time.Hour, logger.NewLogger())
	s.Start(context.Background())
	s.Stop()
	s.Stop()

	g := NewGuardianshipScheduler(env.autoCompleteUC, time.Hour, logger.NewLogger())
	g.Start(context.Background())
	g.Stop()
	g.Stop()
}

func TestManager_StartsAndStopsBoth(t *testing.T) {
	clk := &clock.Fixed{Instant: time.Now().UTC()}
	env := setupSweepEnv(t, clk)
	log := logger.NewLogger()

	m := NewManager(
		NewSubscriptionScheduler(env.cancelExpiredUC, time.Hour, log),
		NewGuardianshipScheduler(env.autoCompleteUC, time.Hour, log),
		log,
	)
	m.StartAll(context.Background())
	m.StopAll()
}
