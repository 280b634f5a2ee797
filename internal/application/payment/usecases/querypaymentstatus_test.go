package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	guardianshipvo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
	vo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	subscriptionvo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

func TestQueryPaymentStatus_RefreshIsNotPersisted(t *testing.T) {
	env := setupCallbackEnv(t)
	ctx := context.Background()
	entry := seedPendingPayment(t, env, "ord_q_1", 7)

	queryUC := NewQueryPaymentStatusUseCase(env.paymentRepo, env.gateway, logger.NewLogger())
	view, err := queryUC.Execute(ctx, QueryPaymentStatusCommand{PaymentSID: entry.SID(), UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusSucceeded, view.Status())

	// The stored entry still waits for the callback.
	stored, err := env.paymentRepo.GetByProviderOrderID(ctx, "ord_q_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, vo.PaymentStatusPending, stored.Status())
}

func TestQueryPaymentStatus_CallbackAfterPollStillAppliesFundingEffects(t *testing.T) {
	env := setupCallbackEnv(t)
	ctx := context.Background()
	g, sub := seedFundedGuardianship(t, env, "ord_q_2")
	entry := seedPendingPayment(t, env, "ord_q_2", 7)

	require.NoError(t, sub.RecordChargeFailure())
	require.NoError(t, env.subscriptionRepo.Update(ctx, sub))
	require.NoError(t, g.EnterGrace(env.clk.Now().Add(10*24*time.Hour)))
	require.NoError(t, env.guardianshipRepo.Update(ctx, g))

	// A poll sees the provider-side success first.
	queryUC := NewQueryPaymentStatusUseCase(env.paymentRepo, env.gateway, logger.NewLogger())
	view, err := queryUC.Execute(ctx, QueryPaymentStatusCommand{PaymentSID: entry.SID(), UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusSucceeded, view.Status())

	env.gateway.Enqueue("ord_q_2", &payment_gateway.CallbackData{
		OrderID:     "ord_q_2",
		Action:      "pay",
		Status:      payment_gateway.StatusSuccess,
		Amount:      25000,
		Currency:    "UAH",
		CompletedAt: env.clk.Now(),
	})
	require.NoError(t, env.uc.Execute(ctx, ProcessCallbackCommand{Data: "ord_q_2", Signature: "sig"}))

	// The callback settled the entry and recovered the guardianship.
	stored, err := env.paymentRepo.GetByProviderOrderID(ctx, "ord_q_2")
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusSucceeded, stored.Status())

	reloadedSub, err := env.subscriptionRepo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, subscriptionvo.StatusActive, reloadedSub.Status())

	reloadedG, err := env.guardianshipRepo.GetByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, guardianshipvo.StatusActive, reloadedG.Status())
}

func TestQueryPaymentStatus_SettledEntrySkipsProvider(t *testing.T) {
	env := setupCallbackEnv(t)
	ctx := context.Background()
	entry := seedPendingPayment(t, env, "ord_q_3", 7)
	require.NoError(t, entry.MarkFailed("failure"))
	require.NoError(t, env.paymentRepo.Update(ctx, entry))

	queryUC := NewQueryPaymentStatusUseCase(env.paymentRepo, env.gateway, logger.NewLogger())
	view, err := queryUC.Execute(ctx, QueryPaymentStatusCommand{PaymentSID: entry.SID(), UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusFailed, view.Status())
}

func TestQueryPaymentStatus_WrongUserGetsNotFound(t *testing.T) {
	env := setupCallbackEnv(t)
	entry := seedPendingPayment(t, env, "ord_q_4", 7)

	queryUC := NewQueryPaymentStatusUseCase(env.paymentRepo, env.gateway, logger.NewLogger())
	_, err := queryUC.Execute(context.Background(), QueryPaymentStatusCommand{PaymentSID: entry.SID(), UserID: 99})
	assert.True(t, apperrors.IsNotFound(err))
}
