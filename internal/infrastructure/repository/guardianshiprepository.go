package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	vo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/mappers"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
)

type GuardianshipRepository struct {
	db *gorm.DB
}

func NewGuardianshipRepository(db *gorm.DB) *GuardianshipRepository {
	return &GuardianshipRepository{db: db}
}

func (r *GuardianshipRepository) Create(ctx context.Context, g *guardianship.Guardianship) error {
	model := mappers.GuardianshipToModel(g)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create guardianship: %w", err)
	}

	return g.SetID(model.ID)
}

func (r *GuardianshipRepository) Update(ctx context.Context, g *guardianship.Guardianship) error {
	model := mappers.GuardianshipToModel(g)

	// EnterGrace may extend the deadline without bumping the version, so
	// the guard accepts the current version as well as the previous one.
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.GuardianshipModel{}).
		Where("id = ? AND version IN ?", model.ID, []int{model.Version - 1, model.Version}).
		Updates(map[string]interface{}{
			"subscription_id": model.SubscriptionID,
			"grace_until":     model.GraceUntil,
			"status":          model.Status,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update guardianship: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConcurrentModification
	}

	return nil
}

func (r *GuardianshipRepository) GetByID(ctx context.Context, id uint) (*guardianship.Guardianship, error) {
	var model models.GuardianshipModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("guardianship not found")
		}
		return nil, fmt.Errorf("failed to get guardianship: %w", err)
	}

	return mappers.GuardianshipToDomain(&model)
}

func (r *GuardianshipRepository) GetBySID(ctx context.Context, sid string) (*guardianship.Guardianship, error) {
	var model models.GuardianshipModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("guardianship not found")
		}
		return nil, fmt.Errorf("failed to get guardianship by sid: %w", err)
	}

	return mappers.GuardianshipToDomain(&model)
}

func (r *GuardianshipRepository) ListByUser(ctx context.Context, userID uint, status *vo.GuardianshipStatus) ([]*guardianship.Guardianship, error) {
	query := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", status.String())
	}

	var modelList []models.GuardianshipModel
	if err := query.Order("created_at DESC").Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list guardianships: %w", err)
	}

	return r.toDomainList(modelList)
}

func (r *GuardianshipRepository) FindGraceExpired(ctx context.Context, now time.Time) ([]*guardianship.Guardianship, error) {
	var modelList []models.GuardianshipModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND grace_until IS NOT NULL AND grace_until <= ?", vo.StatusGrace.String(), now).
		Order("grace_until ASC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired guardianships: %w", err)
	}

	return r.toDomainList(modelList)
}

func (r *GuardianshipRepository) toDomainList(modelList []models.GuardianshipModel) ([]*guardianship.Guardianship, error) {
	list := make([]*guardianship.Guardianship, 0, len(modelList))
	for i := range modelList {
		g, err := mappers.GuardianshipToDomain(&modelList[i])
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, nil
}
