package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type QueryPaymentStatusCommand struct {
	PaymentSID string
	UserID     uint
}

// QueryPaymentStatusUseCase returns a ledger entry, refreshing the view of a
// pending one against the provider first. The refresh is never persisted:
// the callback is the only writer of outcomes, so a poll must not consume
// the idempotency gate and strand the funding effects. A refresh failure is
// not fatal; the stored status is still returned.
type QueryPaymentStatusUseCase struct {
	paymentRepo payment.PaymentRepository
	gateway     payment_gateway.PaymentGateway
	logger      logger.Interface
}

func NewQueryPaymentStatusUseCase(
	paymentRepo payment.PaymentRepository,
	gateway payment_gateway.PaymentGateway,
	logger logger.Interface,
) *QueryPaymentStatusUseCase {
	return &QueryPaymentStatusUseCase{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

func (uc *QueryPaymentStatusUseCase) Execute(ctx context.Context, cmd QueryPaymentStatusCommand) (*payment.Payment, error) {
	entry, err := uc.paymentRepo.GetBySID(ctx, cmd.PaymentSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if entry.UserID() == nil || *entry.UserID() != cmd.UserID {
		return nil, apperrors.NewNotFoundError("payment not found")
	}

	if !entry.Status().IsPending() {
		return entry, nil
	}

	status, err := uc.gateway.QueryStatus(ctx, entry.ProviderOrderID())
	if err != nil {
		uc.logger.Warnw("failed to refresh payment status",
			"error", err,
			"order_id", entry.ProviderOrderID())
		return entry, nil
	}

	switch status.Status {
	case payment_gateway.StatusSuccess, payment_gateway.StatusSubscribed:
		chargedAt := entry.DonationDate()
		if status.CompletedAt != nil {
			chargedAt = *status.CompletedAt
		}
		if err := entry.MarkSucceeded(chargedAt); err != nil {
			return nil, fmt.Errorf("failed to mark payment succeeded: %w", err)
		}
	case payment_gateway.StatusFailure, payment_gateway.StatusError:
		if err := entry.MarkFailed(status.Status); err != nil {
			return nil, fmt.Errorf("failed to mark payment failed: %w", err)
		}
	default:
		return entry, nil
	}

	return entry, nil
}
