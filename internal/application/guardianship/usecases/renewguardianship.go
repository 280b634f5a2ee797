package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	subscriptionvo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/id"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type RenewGuardianshipCommand struct {
	GuardianshipSID string
	UserID          uint
	Amount          int64
	Currency        string
	ResultURL       string
}

type RenewGuardianshipResult struct {
	Guardianship *guardianship.Guardianship
	Subscription *subscription.Subscription
	Payment      *payment.Payment
	CheckoutURL  string
	Data         string
	Signature    string
}

// RenewGuardianshipUseCase re-funds a guardianship whose subscription ended,
// typically during the grace window after an unsubscribe. A new subscription
// and its first pending charge replace the old funding; at most one live
// subscription may reference the guardianship at a time.
type RenewGuardianshipUseCase struct {
	guardianshipRepo guardianship.GuardianshipRepository
	subscriptionRepo subscription.SubscriptionRepository
	paymentRepo      payment.PaymentRepository
	gateway          payment_gateway.PaymentGateway
	txManager        *db.TransactionManager
	config           GuardianshipConfig
	logger           logger.Interface
}

func NewRenewGuardianshipUseCase(
	guardianshipRepo guardianship.GuardianshipRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	paymentRepo payment.PaymentRepository,
	gateway payment_gateway.PaymentGateway,
	txManager *db.TransactionManager,
	config GuardianshipConfig,
	logger logger.Interface,
) *RenewGuardianshipUseCase {
	return &RenewGuardianshipUseCase{
		guardianshipRepo: guardianshipRepo,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		gateway:          gateway,
		txManager:        txManager,
		config:           config,
		logger:           logger,
	}
}

func (uc *RenewGuardianshipUseCase) Execute(ctx context.Context, cmd RenewGuardianshipCommand) (*RenewGuardianshipResult, error) {
	g, err := uc.guardianshipRepo.GetBySID(ctx, cmd.GuardianshipSID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guardianship: %w", err)
	}
	if g.UserID() != cmd.UserID {
		return nil, apperrors.NewNotFoundError("guardianship not found")
	}
	if g.Status().IsTerminal() {
		return nil, apperrors.NewConflictError("guardianship is closed")
	}

	live, err := uc.subscriptionRepo.ExistsLiveForGuardianship(ctx, g.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to check funding subscription: %w", err)
	}
	if live {
		return nil, apperrors.NewConflictError("guardianship already has a live subscription")
	}

	amount := paymentvo.NewMoney(cmd.Amount, cmd.Currency)
	orderID := id.NewOrderID()

	var sub *subscription.Subscription
	var entry *payment.Payment
	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		scope, err := subscriptionvo.GuardianshipScope(g.ID())
		if err != nil {
			return fmt.Errorf("failed to build scope: %w", err)
		}
		sub, err = subscription.NewSubscription(cmd.UserID, uc.config.Provider, orderID, amount, scope)
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		if err := g.ReplaceSubscription(sub.ID()); err != nil {
			return fmt.Errorf("failed to link subscription: %w", err)
		}
		if err := uc.guardianshipRepo.Update(ctx, g); err != nil {
			return fmt.Errorf("failed to update guardianship: %w", err)
		}

		entry, err = payment.NewPayment(payment.NewPaymentParams{
			ProviderOrderID: orderID,
			UserID:          &cmd.UserID,
			Amount:          amount,
			Recurring:       true,
			Purpose:         paymentvo.PurposeGuardianship,
			Target:          paymentvo.GuardianshipTarget(g.ID()),
		})
		if err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		if err := uc.paymentRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	checkout, err := uc.gateway.BuildCheckout(ctx, payment_gateway.CheckoutRequest{
		OrderID:     orderID,
		Amount:      amount.AmountInCents(),
		Currency:    amount.Currency(),
		Description: fmt.Sprintf("Guardianship of animal %d", g.AnimalID()),
		Recurring:   true,
		ResultURL:   cmd.ResultURL,
		ServerURL:   uc.config.CallbackURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to build checkout", "error", err, "order_id", orderID)
		return nil, fmt.Errorf("failed to build checkout: %w", err)
	}

	uc.logger.Infow("guardianship re-funded",
		"guardianship_sid", g.SID(),
		"subscription_sid", sub.SID())

	return &RenewGuardianshipResult{
		Guardianship: g,
		Subscription: sub,
		Payment:      entry,
		CheckoutURL:  checkout.CheckoutURL,
		Data:         checkout.Data,
		Signature:    checkout.Signature,
	}, nil
}
