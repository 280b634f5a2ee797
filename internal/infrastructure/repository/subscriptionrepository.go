package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	vo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/mappers"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return s.SetID(model.ID)
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"next_charge_at": model.NextChargeAt,
			"last_charge_at": model.LastChargeAt,
			"cancelled_at":   model.CancelledAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConcurrentModification
	}

	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		return nil, fmt.Errorf("failed to get subscription by sid: %w", err)
	}

	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("provider_subscription_id = ?", providerSubscriptionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription by provider id: %w", err)
	}

	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) ListLiveByUser(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	var modelList []models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status IN ?", userID, []string{
			vo.StatusActive.String(),
			vo.StatusPastDue.String(),
		}).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	return r.toDomainList(modelList)
}

func (r *SubscriptionRepository) FindPastDueOlderThan(ctx context.Context, cutoff time.Time) ([]*subscription.Subscription, error) {
	var modelList []models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND next_charge_at IS NOT NULL AND next_charge_at < ?", vo.StatusPastDue.String(), cutoff).
		Order("next_charge_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find past due subscriptions: %w", err)
	}

	return r.toDomainList(modelList)
}

func (r *SubscriptionRepository) ExistsLiveForGuardianship(ctx context.Context, guardianshipID uint) (bool, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("guardianship_id = ? AND status IN ?", guardianshipID, []string{
			vo.StatusActive.String(),
			vo.StatusPastDue.String(),
		}).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	return count > 0, nil
}

func (r *SubscriptionRepository) toDomainList(modelList []models.SubscriptionModel) ([]*subscription.Subscription, error) {
	subs := make([]*subscription.Subscription, 0, len(modelList))
	for i := range modelList {
		sub, err := mappers.SubscriptionToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
