package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	vo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/shared/id"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type CreateDonationCommand struct {
	UserID     *uint
	Amount     int64
	Currency   string
	Purpose    string
	TargetType string
	TargetID   uint
	Anonymous  bool
	Comment    string
	ResultURL  string
}

type CreateDonationResult struct {
	Payment     *payment.Payment
	CheckoutURL string
	Data        string
	Signature   string
}

type DonationConfig struct {
	CallbackURL string
}

// CreateDonationUseCase records a pending one-off donation and builds the
// checkout the user is redirected to. The gateway call happens after the
// pending entry is saved, so no transaction spans the network.
type CreateDonationUseCase struct {
	paymentRepo payment.PaymentRepository
	gateway     payment_gateway.PaymentGateway
	sanitizer   *bluemonday.Policy
	config      DonationConfig
	logger      logger.Interface
}

func NewCreateDonationUseCase(
	paymentRepo payment.PaymentRepository,
	gateway payment_gateway.PaymentGateway,
	config DonationConfig,
	logger logger.Interface,
) *CreateDonationUseCase {
	return &CreateDonationUseCase{
		paymentRepo: paymentRepo,
		gateway:     gateway,
		sanitizer:   bluemonday.StrictPolicy(),
		config:      config,
		logger:      logger,
	}
}

func (uc *CreateDonationUseCase) Execute(ctx context.Context, cmd CreateDonationCommand) (*CreateDonationResult, error) {
	purpose, err := vo.NewPurpose(cmd.Purpose)
	if err != nil {
		return nil, fmt.Errorf("invalid purpose: %w", err)
	}

	target := vo.NoTarget()
	if cmd.TargetType != "" {
		target, err = vo.NewTarget(vo.TargetType(cmd.TargetType), cmd.TargetID)
		if err != nil {
			return nil, fmt.Errorf("invalid target: %w", err)
		}
	}

	comment := strings.TrimSpace(uc.sanitizer.Sanitize(cmd.Comment))

	entry, err := payment.NewPayment(payment.NewPaymentParams{
		ProviderOrderID: id.NewOrderID(),
		UserID:          cmd.UserID,
		Amount:          vo.NewMoney(cmd.Amount, cmd.Currency),
		Purpose:         purpose,
		Target:          target,
		Anonymous:       cmd.Anonymous,
		Comment:         comment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	if err := uc.paymentRepo.Create(ctx, entry); err != nil {
		uc.logger.Errorw("failed to save donation", "error", err)
		return nil, fmt.Errorf("failed to save donation: %w", err)
	}

	checkout, err := uc.gateway.BuildCheckout(ctx, payment_gateway.CheckoutRequest{
		OrderID:     entry.ProviderOrderID(),
		Amount:      entry.Amount().AmountInCents(),
		Currency:    entry.Amount().Currency(),
		Description: fmt.Sprintf("Donation (%s)", purpose),
		ResultURL:   cmd.ResultURL,
		ServerURL:   uc.config.CallbackURL,
	})
	if err != nil {
		uc.logger.Errorw("failed to build checkout", "error", err, "order_id", entry.ProviderOrderID())
		return nil, fmt.Errorf("failed to build checkout: %w", err)
	}

	uc.logger.Infow("donation created",
		"payment_sid", entry.SID(),
		"order_id", entry.ProviderOrderID(),
		"amount", entry.Amount().String())

	return &CreateDonationResult{
		Payment:     entry,
		CheckoutURL: checkout.CheckoutURL,
		Data:        checkout.Data,
		Signature:   checkout.Signature,
	}, nil
}
