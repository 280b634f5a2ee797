package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/domain/subscription"
)

type ListMySubscriptionsCommand struct {
	UserID uint
}

type ListMySubscriptionsUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
}

func NewListMySubscriptionsUseCase(subscriptionRepo subscription.SubscriptionRepository) *ListMySubscriptionsUseCase {
	return &ListMySubscriptionsUseCase{subscriptionRepo: subscriptionRepo}
}

func (uc *ListMySubscriptionsUseCase) Execute(ctx context.Context, cmd ListMySubscriptionsCommand) ([]*subscription.Subscription, error) {
	subs, err := uc.subscriptionRepo.ListLiveByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
