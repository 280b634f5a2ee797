package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	SubscriptionSID string
	UserID          uint
}

// CancelSubscriptionUseCase stops a recurring donation at the provider and
// locally. Cancelling a guardianship-scoped subscription also completes the
// guardianship it funds.
type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	gateway          payment_gateway.PaymentGateway
	txManager        *db.TransactionManager
	completer        GuardianshipCompleter
	expectedStore    ExpectedPaymentsStore
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	gateway payment_gateway.PaymentGateway,
	txManager *db.TransactionManager,
	expectedStore ExpectedPaymentsStore,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		txManager:        txManager,
		expectedStore:    expectedStore,
		logger:           logger,
	}
}

// SetGuardianshipCompleter wires the guardianship side after both use cases
// exist. The two reference each other, so one is attached late.
func (uc *CancelSubscriptionUseCase) SetGuardianshipCompleter(completer GuardianshipCompleter) {
	uc.completer = completer
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) error {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub.UserID() != cmd.UserID {
		return apperrors.NewNotFoundError("subscription not found")
	}

	return uc.cancel(ctx, sub, true)
}

// CancelByID cancels on behalf of another use case. With cascade false the
// guardianship is left alone; the caller is handling it.
func (uc *CancelSubscriptionUseCase) CancelByID(ctx context.Context, subscriptionID uint, cascade bool) error {
	sub, err := uc.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	return uc.cancel(ctx, sub, cascade)
}

// CancelAtProvider stops the provider from charging again, without touching
// local state. Callers that cancel inside their own unit of work make this
// call first, so no transaction stays open across the network round trip.
func (uc *CancelSubscriptionUseCase) CancelAtProvider(ctx context.Context, subscriptionID uint) error {
	sub, err := uc.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	if !sub.Status().IsLive() {
		return nil
	}
	return uc.cancelAtProvider(ctx, sub)
}

// CancelLocally marks the subscription cancelled inside the caller's unit of
// work. The provider must already have been told to stop charging.
func (uc *CancelSubscriptionUseCase) CancelLocally(ctx context.Context, subscriptionID uint, cascade bool) error {
	sub, err := uc.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	return uc.cancelLocally(ctx, sub, cascade)
}

func (uc *CancelSubscriptionUseCase) cancel(ctx context.Context, sub *subscription.Subscription, cascade bool) error {
	if !sub.Status().IsLive() {
		return nil
	}

	// Stop the provider from charging again before touching local state.
	if err := uc.cancelAtProvider(ctx, sub); err != nil {
		return err
	}
	return uc.cancelLocally(ctx, sub, cascade)
}

func (uc *CancelSubscriptionUseCase) cancelAtProvider(ctx context.Context, sub *subscription.Subscription) error {
	if err := uc.gateway.CancelSubscription(ctx, sub.ProviderSubscriptionID()); err != nil {
		uc.logger.Errorw("failed to cancel subscription at provider",
			"error", err,
			"subscription_sid", sub.SID())
		return fmt.Errorf("failed to cancel subscription at provider: %w", err)
	}
	return nil
}

func (uc *CancelSubscriptionUseCase) cancelLocally(ctx context.Context, sub *subscription.Subscription, cascade bool) error {
	if !sub.Status().IsLive() {
		return nil
	}

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := sub.Cancel(); err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		if cascade && sub.Scope().IsGuardianship() && uc.completer != nil {
			if err := uc.completer.Complete(ctx, sub.Scope().ID(), false); err != nil {
				return fmt.Errorf("failed to complete guardianship: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if uc.expectedStore != nil {
		if err := uc.expectedStore.Invalidate(ctx, sub.UserID()); err != nil {
			uc.logger.Warnw("failed to invalidate expected payments cache", "error", err, "user_id", sub.UserID())
		}
	}

	uc.logger.Infow("subscription cancelled", "subscription_sid", sub.SID())
	return nil
}
