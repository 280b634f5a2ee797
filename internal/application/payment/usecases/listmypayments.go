package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/domain/payment"
)

type ListMyPaymentsCommand struct {
	UserID uint
}

type ListMyPaymentsUseCase struct {
	paymentRepo payment.PaymentRepository
}

func NewListMyPaymentsUseCase(paymentRepo payment.PaymentRepository) *ListMyPaymentsUseCase {
	return &ListMyPaymentsUseCase{paymentRepo: paymentRepo}
}

func (uc *ListMyPaymentsUseCase) Execute(ctx context.Context, cmd ListMyPaymentsCommand) ([]*payment.Payment, error) {
	entries, err := uc.paymentRepo.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return entries, nil
}
