package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	"github.com/pawhaven/pawhaven/internal/shared/clock"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// CancelExpiredSubscriptionsUseCase is the retry-tolerance sweep. A past_due
// subscription whose missed charge is older than the tolerance is cancelled,
// and its guardianship completed through the cascade. One failing
// subscription does not stop the sweep.
type CancelExpiredSubscriptionsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	cancelUC         *CancelSubscriptionUseCase
	clock            clock.Clock
	tolerance        time.Duration
	logger           logger.Interface
}

func NewCancelExpiredSubscriptionsUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	cancelUC *CancelSubscriptionUseCase,
	clk clock.Clock,
	tolerance time.Duration,
	logger logger.Interface,
) *CancelExpiredSubscriptionsUseCase {
	return &CancelExpiredSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		cancelUC:         cancelUC,
		clock:            clk,
		tolerance:        tolerance,
		logger:           logger,
	}
}

func (uc *CancelExpiredSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := uc.clock.Now().Add(-uc.tolerance)

	subs, err := uc.subscriptionRepo.FindPastDueOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired subscriptions: %w", err)
	}

	cancelled := 0
	for _, sub := range subs {
		if err := uc.cancelUC.CancelByID(ctx, sub.ID(), true); err != nil {
			uc.logger.Errorw("failed to cancel expired subscription",
				"error", err,
				"subscription_sid", sub.SID())
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		uc.logger.Infow("expired subscriptions cancelled", "count", cancelled, "cutoff", cutoff)
	}
	return cancelled, nil
}
