package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExpectedPayments_ProjectsLiveSubscriptions(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()
	first := seedStandaloneSubscription(t, env, 7, "ord_e_1")
	_, second := seedGuardianshipSubscription(t, env, 7, "ord_e_2")
	seedStandaloneSubscription(t, env, 99, "ord_e_other")

	expected, err := env.expectedUC.Execute(ctx, GetExpectedPaymentsCommand{UserID: 7})
	require.NoError(t, err)
	require.Len(t, expected, 2)

	bySID := make(map[string]ExpectedPayment, len(expected))
	for _, e := range expected {
		bySID[e.SubscriptionSID] = e
	}
	assert.Equal(t, int64(10000), bySID[first.SID()].Amount)
	assert.Equal(t, int64(25000), bySID[second.SID()].Amount)
	assert.Equal(t, "UAH", bySID[first.SID()].Currency)
	assert.False(t, bySID[first.SID()].NextChargeAt.IsZero())

	// The projection is cached for the next call.
	assert.Len(t, env.store.cached[7], 2)
}

func TestGetExpectedPayments_ServesFromCache(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()
	seedStandaloneSubscription(t, env, 7, "ord_e_3")

	canned := []ExpectedPayment{{
		SubscriptionSID: "sub_cached",
		Amount:          500,
		Currency:        "UAH",
		NextChargeAt:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, env.store.Set(ctx, 7, canned))

	expected, err := env.expectedUC.Execute(ctx, GetExpectedPaymentsCommand{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, canned, expected)
}

func TestGetExpectedPayments_ExcludesCancelled(t *testing.T) {
	env := setupSubscriptionEnv(t)
	ctx := context.Background()
	sub := seedStandaloneSubscription(t, env, 7, "ord_e_4")
	require.NoError(t, sub.Cancel())
	require.NoError(t, env.subscriptionRepo.Update(ctx, sub))

	expected, err := env.expectedUC.Execute(ctx, GetExpectedPaymentsCommand{UserID: 7})
	require.NoError(t, err)
	assert.Empty(t, expected)
}
