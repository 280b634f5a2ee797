package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	vo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	"github.com/pawhaven/pawhaven/internal/shared/id"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type CreateSubscriptionCommand struct {
	UserID    uint
	Amount    int64
	Currency  string
	ResultURL string
}

type CreateSubscriptionResult struct {
	Subscription *subscription.Subscription
	Payment      *payment.Payment
	CheckoutURL  string
	Data         string
	Signature    string
}

type SubscriptionConfig struct {
	Provider    string
	CallbackURL string
}

// CreateSubscriptionUseCase opens a standalone recurring donation. The
// subscription and its first pending charge are written in one transaction;
// the checkout is built afterwards, outside it.
type CreateSubscriptionUseCase struct {
	subscriptionRepo subscription.SubscriptionRepository
	paymentRepo      payment.PaymentRepository
	gateway          payment_gateway.PaymentGateway
	txManager        *db.TransactionManager
	expectedStore    ExpectedPaymentsStore
	config           SubscriptionConfig
	logger           logger.Interface
}

func NewCreateSubscriptionUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	paymentRepo payment.PaymentRepository,
	gateway payment_gateway.PaymentGateway,
	txManager *db.TransactionManager,
	expectedStore ExpectedPaymentsStore,
	config SubscriptionConfig,
	logger logger.Interface,
) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		gateway:          gateway,
		txManager:        txManager,
		expectedStore:    expectedStore,
		config:           config,
		logger:           logger,
	}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*CreateSubscriptionResult, error) {
	amount := paymentvo.NewMoney(cmd.Amount, cmd.Currency)
	orderID := id.NewOrderID()

	var sub *subscription.Subscription
	var entry *payment.Payment
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sub, err = subscription.NewSubscription(cmd.UserID, uc.config.Provider, orderID, amount, vo.StandaloneScope())
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

		entry, err = payment.NewPayment(payment.NewPaymentParams{
			ProviderOrderID: orderID,
			UserID:          &cmd.UserID,
			Amount:          amount,
			Recurring:       true,
			Purpose:         paymentvo.PurposeGeneral,
			Target:          paymentvo.NoTarget(),
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
		Description: "Monthly donation",
		Recurring:   true,
		ResultURL:   cmd.ResultURL,
		ServerURL:   uc.config.CallbackURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to build checkout", "error", err, "order_id", orderID)
		return nil, fmt.Errorf("failed to build checkout: %w", err)
	}

	if uc.expectedStore != nil {
		if err := uc.expectedStore.Invalidate(ctx, cmd.UserID); err != nil {
			uc.logger.Warnw("failed to invalidate expected payments cache", "error", err, "user_id", cmd.UserID)
		}
	}

	uc.logger.Infow("subscription created",
		"subscription_sid", sub.SID(),
		"order_id", orderID,
		"amount", amount.String())

	return &CreateSubscriptionResult{
		Subscription: sub,
		Payment:      entry,
		CheckoutURL:  checkout.CheckoutURL,
		Data:         checkout.Data,
		Signature:    checkout.Signature,
	}, nil
}
