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
	"github.com/pawhaven/pawhaven/internal/shared/id"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type CreateGuardianshipCommand struct {
	UserID    uint
	AnimalID  uint
	Amount    int64
	Currency  string
	ResultURL string
}

type CreateGuardianshipResult struct {
	Guardianship *guardianship.Guardianship
	Subscription *subscription.Subscription
	Payment      *payment.Payment
	CheckoutURL  string
	Data         string
	Signature    string
}

type GuardianshipConfig struct {
	Provider    string
	CallbackURL string
}

// CreateGuardianshipUseCase opens a guardianship together with the
// subscription that funds it and the first pending charge. The three rows
// land in one transaction; a failure anywhere leaves nothing behind. The
// checkout is built afterwards, outside the transaction.
type CreateGuardianshipUseCase struct {
	guardianshipRepo guardianship.GuardianshipRepository
	subscriptionRepo subscription.SubscriptionRepository
	paymentRepo      payment.PaymentRepository
	gateway          payment_gateway.PaymentGateway
	txManager        *db.TransactionManager
	config           GuardianshipConfig
	logger           logger.Interface
}

func NewCreateGuardianshipUseCase(
	guardianshipRepo guardianship.GuardianshipRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	paymentRepo payment.PaymentRepository,
	gateway payment_gateway.PaymentGateway,
	txManager *db.TransactionManager,
	config GuardianshipConfig,
	logger logger.Interface,
) *CreateGuardianshipUseCase {
	return &CreateGuardianshipUseCase{
		guardianshipRepo: guardianshipRepo,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		gateway:          gateway,
		txManager:        txManager,
		config:           config,
		logger:           logger,
	}
}

func (uc *CreateGuardianshipUseCase) Execute(ctx context.Context, cmd CreateGuardianshipCommand) (*CreateGuardianshipResult, error) {
	amount := paymentvo.NewMoney(cmd.Amount, cmd.Currency)
	orderID := id.NewOrderID()

	var g *guardianship.Guardianship
	var sub *subscription.Subscription
	var entry *payment.Payment
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		g, err = guardianship.NewGuardianship(cmd.UserID, cmd.AnimalID)
		if err != nil {
			return fmt.Errorf("failed to create guardianship: %w", err)
		}
		if err := uc.guardianshipRepo.Create(ctx, g); err != nil {
			return fmt.Errorf("failed to save guardianship: %w", err)
		}

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

		if err := g.LinkSubscription(sub.ID()); err != nil {
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
		Description: fmt.Sprintf("Guardianship of animal %d", cmd.AnimalID),
		Recurring:   true,
		ResultURL:   cmd.ResultURL,
		ServerURL:   uc.config.CallbackURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to build checkout", "error", err, "order_id", orderID)
		return nil, fmt.Errorf("failed to build checkout: %w", err)
	}

	uc.logger.Infow("guardianship created",
		"guardianship_sid", g.SID(),
		"subscription_sid", sub.SID(),
		"animal_id", cmd.AnimalID)

	return &CreateGuardianshipResult{
		Guardianship: g,
		Subscription: sub,
		Payment:      entry,
		CheckoutURL:  checkout.CheckoutURL,
		Data:         checkout.Data,
		Signature:    checkout.Signature,
	}, nil
}
