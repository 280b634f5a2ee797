package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	subscriptionvo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
)

func TestCreateSubscription_CreatesSubscriptionAndPendingCharge(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()

	result, err := env.createUC.Execute(ctx, CreateSubscriptionCommand{
		UserID:   7,
		Amount:   10000,
		Currency: "UAH",
	})
	require.NoError(t, err)

	sub := result.Subscription
	assert.Equal(t, subscriptionvo.StatusActive, sub.Status())
	assert.Equal(t, subscriptionvo.ScopeStandalone, sub.Scope().Type())
	require.NotNil(t, sub.NextChargeAt())

	entry := result.Payment
	assert.Equal(t, paymentvo.PaymentStatusPending, entry.Status())
	assert.True(t, entry.Recurring())
	assert.Equal(t, paymentvo.PurposeGeneral, entry.Purpose())
	assert.Equal(t, sub.ProviderSubscriptionID(), entry.ProviderOrderID())

	assert.NotEmpty(t, result.CheckoutURL)
	assert.NotEmpty(t, result.Data)
	assert.NotEmpty(t, result.Signature)

	persisted, err := env.paymentRepo.GetByProviderOrderID(ctx, entry.ProviderOrderID())
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Contains(t, env.store.invalidated, uint(7))
}

func TestCreateSubscription_RejectsNonPositiveAmount(t *testing.T) {
	env := setupSubscriptionEnv(t)

	_, err := env.createUC.Execute(context.Background(), CreateSubscriptionCommand{
		UserID:   7,
		Amount:   0,
		Currency: "UAH",
	})
	require.Error(t, err)

	subs, err := env.subscriptionRepo.ListLiveByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
