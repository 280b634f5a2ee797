package mappers

import (
	"fmt"

	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	vo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
)

func SubscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	model := &models.SubscriptionModel{
		ID:                     s.ID(),
		SID:                    s.SID(),
		UserID:                 s.UserID(),
		Provider:               s.Provider(),
		ProviderSubscriptionID: s.ProviderSubscriptionID(),
		ScopeType:              string(s.Scope().Type()),
		Amount:                 s.Amount().AmountInCents(),
		Currency:               s.Amount().Currency(),
		Status:                 s.Status().String(),
		NextChargeAt:           s.NextChargeAt(),
		LastChargeAt:           s.LastChargeAt(),
		CancelledAt:            s.CancelledAt(),
		Version:                s.Version(),
		CreatedAt:              s.CreatedAt(),
		UpdatedAt:              s.UpdatedAt(),
	}

	if s.Scope().IsGuardianship() {
		guardianshipID := s.Scope().ID()
		model.GuardianshipID = &guardianshipID
	}

	return model
}

func SubscriptionToDomain(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	scopeType := vo.ScopeType(model.ScopeType)
	var scopeID uint
	if model.GuardianshipID != nil {
		scopeID = *model.GuardianshipID
	}
	scope, err := vo.NewScope(scopeType, scopeID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription scope: %w", err)
	}

	return subscription.ReconstructSubscription(subscription.ReconstructParams{
		ID:                     model.ID,
		SID:                    model.SID,
		UserID:                 model.UserID,
		Provider:               model.Provider,
		ProviderSubscriptionID: model.ProviderSubscriptionID,
		Scope:                  scope,
		Amount:                 paymentvo.NewMoney(model.Amount, model.Currency),
		Status:                 vo.SubscriptionStatus(model.Status),
		NextChargeAt:           model.NextChargeAt,
		LastChargeAt:           model.LastChargeAt,
		CancelledAt:            model.CancelledAt,
		Version:                model.Version,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	})
}
