package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type GetExpectedPaymentsCommand struct {
	UserID uint
}

// GetExpectedPaymentsUseCase projects a user's live subscriptions into their
// upcoming charges. The projection is cached; a broken cache only costs the
// database round trip.
type GetExpectedPaymentsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	store            ExpectedPaymentsStore
	logger           logger.Interface
}

func NewGetExpectedPaymentsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	store ExpectedPaymentsStore,
	logger logger.Interface,
) *GetExpectedPaymentsUseCase {
	return &GetExpectedPaymentsUseCase{
		subscriptionRepo: subscriptionRepo,
		store:            store,
		logger:           logger,
	}
}

func (uc *GetExpectedPaymentsUseCase) Execute(ctx context.Context, cmd GetExpectedPaymentsCommand) ([]ExpectedPayment, error) {
	if uc.store != nil {
		cached, err := uc.store.Get(ctx, cmd.UserID)
		if err != nil {
			uc.logger.Warnw("failed to read expected payments cache", "error", err, "user_id", cmd.UserID)
		} else if cached != nil {
			return cached, nil
		}
	}

	subs, err := uc.subscriptionRepo.ListLiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	expected := make([]ExpectedPayment, 0, len(subs))
	for _, sub := range subs {
		next := sub.NextChargeAt()
		if next == nil {
			continue
		}
		expected = append(expected, ExpectedPayment{
			SubscriptionSID: sub.SID(),
			Amount:          sub.Amount().AmountInCents(),
			Currency:        sub.Amount().Currency(),
			NextChargeAt:    *next,
		})
	}

	if uc.store != nil {
		if err := uc.store.Set(ctx, cmd.UserID, expected); err != nil {
			uc.logger.Warnw("failed to cache expected payments", "error", err, "user_id", cmd.UserID)
		}
	}

	return expected, nil
}
