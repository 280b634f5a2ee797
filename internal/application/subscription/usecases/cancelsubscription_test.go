package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	guardianshipUsecases "github.com/pawhaven/pawhaven/internal/application/guardianship/usecases"
	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	guardianshipvo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	subscriptionvo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
	"github.com/pawhaven/pawhaven/internal/infrastructure/repository"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// fakeExpectedStore is an in-memory ExpectedPaymentsStore for tests.
type fakeExpectedStore struct {
	cached      map[uint][]ExpectedPayment
	invalidated []uint
}

func newFakeExpectedStore() *fakeExpectedStore {
	return &fakeExpectedStore{cached: make(map[uint][]ExpectedPayment)}
}

func (s *fakeExpectedStore) Get(_ context.Context, userID uint) ([]ExpectedPayment, error) {
	return s.cached[userID], nil
}

func (s *fakeExpectedStore) Set(_ context.Context, userID uint, payments []ExpectedPayment) error {
	s.cached[userID] = payments
	return nil
}

func (s *fakeExpectedStore) Invalidate(_ context.Context, userID uint) error {
	s.invalidated = append(s.invalidated, userID)
	delete(s.cached, userID)
	return nil
}

type subscriptionEnv struct {
	paymentRepo      *repository.PaymentRepository
	subscriptionRepo *repository.SubscriptionRepository
	guardianshipRepo *repository.GuardianshipRepository
	gateway          *payment_gateway.MockGateway
	store            *fakeExpectedStore
	createUC         *CreateSubscriptionUseCase
	cancelUC         *CancelSubscriptionUseCase
	expectedUC       *GetExpectedPaymentsUseCase
}

func setupSubscriptionEnv(t *testing.T) *subscriptionEnv {
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
	env := &subscriptionEnv{
		paymentRepo:      repository.NewPaymentRepository(gdb),
		subscriptionRepo: repository.NewSubscriptionRepository(gdb),
		guardianshipRepo: repository.NewGuardianshipRepository(gdb),
		gateway:          payment_gateway.NewMockGateway(true),
		store:            newFakeExpectedStore(),
	}

	env.createUC = NewCreateSubscriptionUseCase(
		env.subscriptionRepo, env.paymentRepo, env.gateway, txManager, env.store,
		SubscriptionConfig{Provider: "liqpay", CallbackURL: "https://pawhaven.example.com/api/v1/payments/callback"},
		log)
	env.cancelUC = NewCancelSubscriptionUseCase(
		env.subscriptionRepo, env.gateway, txManager, env.store, log)
	completeUC := guardianshipUsecases.NewCompleteGuardianshipUseCase(
		env.guardianshipRepo, txManager, env.cancelUC, nil, log)
	env.cancelUC.SetGuardianshipCompleter(completeUC)

	env.expectedUC = NewGetExpectedPaymentsUseCase(env.subscriptionRepo, env.store, log)
	return env
}

func seedStandaloneSubscription(t *testing.T, env *subscriptionEnv, userID uint, orderID string) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(userID, "liqpay", orderID,
		paymentvo.NewMoney(10000, "UAH"), subscriptionvo.StandaloneScope())
	require.NoError(t, err)
	require.NoError(t, env.subscriptionRepo.Create(context.Background(), sub))
	return sub
}

func seedGuardianshipSubscription(t *testing.T, env *subscriptionEnv, userID uint, orderID string) (*guardianship.Guardianship, *subscription.Subscription) {
	t.Helper()
	ctx := context.Background()

	g, err := guardianship.NewGuardianship(userID, 42)
	require.NoError(t, err)
	require.NoError(t, env.guardianshipRepo.Create(ctx, g))

	scope, err := subscriptionvo.GuardianshipScope(g.ID())
	require.NoError(t, err)
	sub, err := subscription.NewSubscription(userID, "liqpay", orderID,
		paymentvo.NewMoney(25000, "UAH"), scope)
	require.NoError(t, err)
	require.NoError(t, env.subscriptionRepo.Create(ctx, sub))

	require.NoError(t, g.LinkSubscription(sub.ID()))
	require.NoError(t, env.guardianshipRepo.Update(ctx, g))
	return g, sub
}

func TestCancelSubscription_StandaloneStopsBilling(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()
	sub := seedStandaloneSubscription(t, env, 7, "ord_s_1")

	require.NoError(t, env.cancelUC.Execute(ctx, CancelSubscriptionCommand{
		SubscriptionSID: sub.SID(),
		UserID:          7,
	}))

	reloaded, err := env.subscriptionRepo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, subscriptionvo.StatusCancelled, reloaded.Status())
	require.NotNil(t, reloaded.CancelledAt())
	assert.Contains(t, env.gateway.CancelledOrders(), "ord_s_1")
	assert.Contains(t, env.store.invalidated, uint(7))
}

func TestCancelSubscription_CompletesFundedGuardianship(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()
	g, sub := seedGuardianshipSubscription(t, env, 7, "ord_s_2")

	require.NoError(t, env.cancelUC.Execute(ctx, CancelSubscriptionCommand{
		SubscriptionSID: sub.SID(),
		UserID:          7,
	}))

	reloadedSub, err := env.subscriptionRepo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, subscriptionvo.StatusCancelled, reloadedSub.Status())

	reloadedG, err := env.guardianshipRepo.GetByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, guardianshipvo.StatusCompleted, reloadedG.Status())

	// One provider cancellation despite the mutual completion path.
	assert.Len(t, env.gateway.CancelledOrders(), 1)
}

func TestCancelSubscription_RepeatIsNoOp(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()
	sub := seedStandaloneSubscription(t, env, 7, "ord_s_3")

	cmd := CancelSubscriptionCommand{SubscriptionSID: sub.SID(), UserID: 7}
	require.NoError(t, env.cancelUC.Execute(ctx, cmd))
	require.NoError(t, env.cancelUC.Execute(ctx, cmd))

	assert.Len(t, env.gateway.CancelledOrders(), 1)
}

func TestCancelSubscription_WrongUserGetsNotFound(t *testing.T) {
	env := setupSubscriptionEnv(t)
	sub := seedStandaloneSubscription(t, env, 7, "ord_s_4")

	err := env.cancelUC.Execute(context.Background(), CancelSubscriptionCommand{
		SubscriptionSID: sub.SID(),
		UserID:          99,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCancelSubscription_ProviderFailureLeavesSubscriptionLive(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()
	sub := seedStandaloneSubscription(t, env, 7, "ord_s_5")

	env.gateway.FailCancellations(errors.New("provider down"))

	err := env.cancelUC.Execute(ctx, CancelSubscriptionCommand{
		SubscriptionSID: sub.SID(),
		UserID:          7,
	})
	require.Error(t, err)

	reloaded, err := env.subscriptionRepo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, subscriptionvo.StatusActive, reloaded.Status())
	assert.Empty(t, env.store.invalidated)
}
