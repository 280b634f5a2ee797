package mappers

import (
	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	vo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
)

func GuardianshipToModel(g *guardianship.Guardianship) *models.GuardianshipModel {
	return &models.GuardianshipModel{
		ID:             g.ID(),
		SID:            g.SID(),
		UserID:         g.UserID(),
		AnimalID:       g.AnimalID(),
		SubscriptionID: g.SubscriptionID(),
		StartDate:      g.StartDate(),
		GraceUntil:     g.GraceUntil(),
		Status:         g.Status().String(),
		Version:        g.Version(),
		CreatedAt:      g.CreatedAt(),
		UpdatedAt:      g.UpdatedAt(),
	}
}

func GuardianshipToDomain(model *models.GuardianshipModel) (*guardianship.Guardianship, error) {
	return guardianship.ReconstructGuardianship(guardianship.ReconstructParams{
		ID:             model.ID,
		SID:            model.SID,
		UserID:         model.UserID,
		AnimalID:       model.AnimalID,
		SubscriptionID: model.SubscriptionID,
		StartDate:      model.StartDate,
		GraceUntil:     model.GraceUntil,
		Status:         vo.GuardianshipStatus(model.Status),
		Version:        model.Version,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	})
}
