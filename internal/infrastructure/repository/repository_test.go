package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	guardianshipvo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	subscriptionvo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.PaymentModel{}, &models.SubscriptionModel{}, &models.GuardianshipModel{})
	require.NoError(t, err)

	return db
}

func pendingPayment(t *testing.T, orderID string, userID uint) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(payment.NewPaymentParams{
		ProviderOrderID: orderID,
		UserID:          &userID,
		Amount:          paymentvo.NewMoney(15000, "UAH"),
		Purpose:         paymentvo.PurposeGeneral,
		Target:          paymentvo.NoTarget(),
	})
	require.NoError(t, err)
	return p
}

func TestPaymentRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := pendingPayment(t, "ord_1", 7)
	p.SetMetadata("source", "web")
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID())

	found, err := repo.GetByProviderOrderID(ctx, "ord_1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.SID(), found.SID())
	assert.Equal(t, paymentvo.PaymentStatusPending, found.Status())
	assert.Equal(t, int64(15000), found.Amount().AmountInCents())
	assert.Equal(t, "web", found.Metadata()["source"])

	missing, err := repo.GetByProviderOrderID(ctx, "ord_unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPaymentRepository_DuplicateOrderID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingPayment(t, "ord_dup", 1)))

	err := repo.Create(ctx, pendingPayment(t, "ord_dup", 2))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateOrder)
}

func TestPaymentRepository_VersionGuard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := pendingPayment(t, "ord_race", 1)
	require.NoError(t, repo.Create(ctx, p))

	// Two readers load the same pending row.
	first, err := repo.GetByProviderOrderID(ctx, "ord_race")
	require.NoError(t, err)
	second, err := repo.GetByProviderOrderID(ctx, "ord_race")
	require.NoError(t, err)

	require.NoError(t, first.MarkSucceeded(time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, second.MarkFailed("card declined"))
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)

	// The first writer's outcome is what persisted.
	current, err := repo.GetByProviderOrderID(ctx, "ord_race")
	require.NoError(t, err)
	assert.Equal(t, paymentvo.PaymentStatusSucceeded, current.Status())
}

func TestPaymentRepository_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, pendingPayment(t, "ord_a", 1)))
	require.NoError(t, repo.Create(ctx, pendingPayment(t, "ord_b", 1)))
	require.NoError(t, repo.Create(ctx, pendingPayment(t, "ord_c", 2)))

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func activeSubscription(t *testing.T, userID uint, providerRef string, scope subscriptionvo.Scope) *subscription.Subscription {
	t.Helper()
	s, err := subscription.NewSubscription(userID, "liqpay", providerRef, paymentvo.NewMoney(20000, "UAH"), scope)
	require.NoError(t, err)
	return s
}

func TestSubscriptionRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	s := activeSubscription(t, 3, "ord_sub_1", subscriptionvo.StandaloneScope())
	require.NoError(t, repo.Create(ctx, s))
	assert.NotZero(t, s.ID())

	found, err := repo.GetByProviderSubscriptionID(ctx, "ord_sub_1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, s.SID(), found.SID())

	unknown, err := repo.GetByProviderSubscriptionID(ctx, "ord_nope")
	require.NoError(t, err)
	assert.Nil(t, unknown)

	require.NoError(t, found.RecordChargeFailure())
	require.NoError(t, repo.Update(ctx, found))

	reloaded, err := repo.GetByID(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, subscriptionvo.StatusPastDue, reloaded.Status())
}

func TestSubscriptionRepository_FindPastDueOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	fresh := activeSubscription(t, 1, "ord_fresh", subscriptionvo.StandaloneScope())
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, fresh.RecordChargeFailure())
	require.NoError(t, repo.Update(ctx, fresh))

	// An old missed charge, well past any tolerance.
	stale := activeSubscription(t, 2, "ord_stale", subscriptionvo.StandaloneScope())
	require.NoError(t, stale.RecordChargeSuccess(now.Add(-35*24*time.Hour)))
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, stale.RecordChargeFailure())
	require.NoError(t, repo.Update(ctx, stale))

	expired, err := repo.FindPastDueOlderThan(ctx, now.Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.SID(), expired[0].SID())
}

func TestSubscriptionRepository_ExistsLiveForGuardianship(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	scope, err := subscriptionvo.GuardianshipScope(11)
	require.NoError(t, err)

	s := activeSubscription(t, 1, "ord_g", scope)
	require.NoError(t, repo.Create(ctx, s))

	exists, err := repo.ExistsLiveForGuardianship(ctx, 11)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsLiveForGuardianship(ctx, 12)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Cancel())
	require.NoError(t, repo.Update(ctx, s))

	exists, err = repo.ExistsLiveForGuardianship(ctx, 11)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGuardianshipRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuardianshipRepository(db)
	ctx := context.Background()

	g, err := guardianship.NewGuardianship(5, 42)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))
	assert.NotZero(t, g.ID())

	require.NoError(t, g.LinkSubscription(9))
	require.NoError(t, repo.Update(ctx, g))

	found, err := repo.GetBySID(ctx, g.SID())
	require.NoError(t, err)
	require.NotNil(t, found.SubscriptionID())
	assert.Equal(t, uint(9), *found.SubscriptionID())

	_, err = repo.GetBySID(ctx, "grd_missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGuardianshipRepository_FindGraceExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuardianshipRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()

	expired, err := guardianship.NewGuardianship(1, 1)
	require.NoError(t, err)
	require.NoError(t, expired.EnterGrace(now.Add(-time.Hour)))
	require.NoError(t, repo.Create(ctx, expired))

	pending, err := guardianship.NewGuardianship(2, 2)
	require.NoError(t, err)
	require.NoError(t, pending.EnterGrace(now.Add(time.Hour)))
	require.NoError(t, repo.Create(ctx, pending))

	active, err := guardianship.NewGuardianship(3, 3)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, active))

	found, err := repo.FindGraceExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, expired.SID(), found[0].SID())
}

func TestGuardianshipRepository_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGuardianshipRepository(db)
	ctx := context.Background()

	g1, err := guardianship.NewGuardianship(1, 10)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g1))

	g2, err := guardianship.NewGuardianship(1, 11)
	require.NoError(t, err)
	require.NoError(t, g2.Complete())
	require.NoError(t, repo.Create(ctx, g2))

	all, err := repo.ListByUser(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := guardianshipvo.StatusActive
	filtered, err := repo.ListByUser(ctx, 1, &active)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, g1.SID(), filtered[0].SID())
}
