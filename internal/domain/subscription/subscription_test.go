package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	vo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
)

func validAmount() paymentvo.Money {
	return paymentvo.NewMoney(20000, "UAH")
}

func standaloneSubscription(t *testing.T) *Subscription {
	t.Helper()
	s, err := NewSubscription(1, "liqpay", "psub-123", validAmount(), vo.StandaloneScope())
	require.NoError(t, err)
	return s
}

func guardianshipSubscription(t *testing.T, guardianshipID uint) *Subscription {
	t.Helper()
	scope, err := vo.GuardianshipScope(guardianshipID)
	require.NoError(t, err)
	s, err := NewSubscription(1, "liqpay", "psub-456", validAmount(), scope)
	require.NoError(t, err)
	return s
}

func TestNewSubscription(t *testing.T) {
	s := standaloneSubscription(t)

	assert.Equal(t, vo.StatusActive, s.Status())
	assert.Equal(t, "liqpay", s.Provider())
	assert.Equal(t, "psub-123", s.ProviderSubscriptionID())
	require.NotNil(t, s.NextChargeAt())
	assert.Nil(t, s.LastChargeAt())
	assert.NotEmpty(t, s.SID())
}

func TestNewSubscription_InvalidInput(t *testing.T) {
	tests := []struct {
		name        string
		userID      uint
		provider    string
		providerSID string
		amount      paymentvo.Money
	}{
		{name: "missing user", userID: 0, provider: "liqpay", providerSID: "x", amount: validAmount()},
		{name: "missing provider", userID: 1, provider: "", providerSID: "x", amount: validAmount()},
		{name: "missing provider subscription id", userID: 1, provider: "liqpay", providerSID: "", amount: validAmount()},
		{name: "non-positive amount", userID: 1, provider: "liqpay", providerSID: "x", amount: paymentvo.NewMoney(0, "UAH")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSubscription(tt.userID, tt.provider, tt.providerSID, tt.amount, vo.StandaloneScope())
			assert.Error(t, err)
		})
	}
}

func TestSubscription_RecordChargeSuccess(t *testing.T) {
	s := standaloneSubscription(t)
	chargedAt := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordChargeSuccess(chargedAt))

	assert.Equal(t, vo.StatusActive, s.Status())
	require.NotNil(t, s.LastChargeAt())
	assert.Equal(t, chargedAt, *s.LastChargeAt())
	require.NotNil(t, s.NextChargeAt())
	assert.Equal(t, chargedAt.Add(BillingPeriod), *s.NextChargeAt())
}

func TestSubscription_RecordChargeSuccess_RecoversPastDue(t *testing.T) {
	s := standaloneSubscription(t)
	require.NoError(t, s.RecordChargeFailure())
	require.Equal(t, vo.StatusPastDue, s.Status())

	require.NoError(t, s.RecordChargeSuccess(time.Now().UTC()))
	assert.Equal(t, vo.StatusActive, s.Status())
}

func TestSubscription_RecordChargeFailure(t *testing.T) {
	s := standaloneSubscription(t)
	before := *s.NextChargeAt()

	require.NoError(t, s.RecordChargeFailure())
	assert.Equal(t, vo.StatusPastDue, s.Status())
	// Schedule stays put so past-due age is measured from the missed charge.
	assert.Equal(t, before, *s.NextChargeAt())

	// Repeat is a no-op.
	version := s.Version()
	require.NoError(t, s.RecordChargeFailure())
	assert.Equal(t, version, s.Version())
}

func TestSubscription_Cancel(t *testing.T) {
	s := standaloneSubscription(t)

	require.NoError(t, s.Cancel())
	assert.Equal(t, vo.StatusCancelled, s.Status())
	assert.Nil(t, s.NextChargeAt())
	require.NotNil(t, s.CancelledAt())

	// Cancellation must be idempotent for retrying callers.
	version := s.Version()
	require.NoError(t, s.Cancel())
	assert.Equal(t, version, s.Version())
}

func TestSubscription_NoChargeAfterCancel(t *testing.T) {
	s := standaloneSubscription(t)
	require.NoError(t, s.Cancel())

	assert.Error(t, s.RecordChargeSuccess(time.Now().UTC()))
	assert.Error(t, s.RecordChargeFailure())
}

func TestSubscription_IsPastDueLongerThan(t *testing.T) {
	s := standaloneSubscription(t)
	missed := *s.NextChargeAt()
	tolerance := 72 * time.Hour

	require.NoError(t, s.RecordChargeFailure())

	assert.False(t, s.IsPastDueLongerThan(missed.Add(2*24*time.Hour), tolerance))
	assert.True(t, s.IsPastDueLongerThan(missed.Add(4*24*time.Hour), tolerance))

	// An active subscription is never past due.
	active := standaloneSubscription(t)
	assert.False(t, active.IsPastDueLongerThan(missed.Add(100*24*time.Hour), tolerance))
}

func TestScope(t *testing.T) {
	t.Run("guardianship scope requires id", func(t *testing.T) {
		_, err := vo.GuardianshipScope(0)
		assert.Error(t, err)
	})

	t.Run("standalone scope rejects id", func(t *testing.T) {
		_, err := vo.NewScope(vo.ScopeStandalone, 4)
		assert.Error(t, err)
	})

	t.Run("guardianship scope", func(t *testing.T) {
		scope, err := vo.NewScope(vo.ScopeGuardianship, 4)
		require.NoError(t, err)
		assert.True(t, scope.IsGuardianship())
		assert.Equal(t, uint(4), scope.ID())
	})
}
