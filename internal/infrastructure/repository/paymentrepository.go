package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/domain/payment"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/mappers"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	p.SetID(model.ID)

	return nil
}

// Update persists a new aggregate state. The WHERE clause pins the previous
// version, so a writer that lost the race gets ErrConcurrentModification
// instead of silently overwriting the winner.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"donation_date":  model.DonationDate,
			"failure_reason": model.FailureReason,
			"metadata":       model.Metadata,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConcurrentModification
	}

	return nil
}

func (r *PaymentRepository) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("provider_order_id = ?", providerOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by provider_order_id: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) GetBySID(ctx context.Context, sid string) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment by sid: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID uint) ([]*payment.Payment, error) {
	var modelList []models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("donation_date DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	entries := make([]*payment.Payment, 0, len(modelList))
	for i := range modelList {
		entry, err := mappers.PaymentToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
