package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/pawhaven/pawhaven/internal/domain/payment"
	vo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) (*models.PaymentModel, error) {
	model := &models.PaymentModel{
		ID:              p.ID(),
		SID:             p.SID(),
		ProviderOrderID: p.ProviderOrderID(),
		UserID:          p.UserID(),
		Amount:          p.Amount().AmountInCents(),
		Currency:        p.Amount().Currency(),
		Status:          p.Status().String(),
		Recurring:       p.Recurring(),
		Purpose:         p.Purpose().String(),
		TargetType:      string(p.Target().Type()),
		TargetID:        p.Target().ID(),
		DonationDate:    p.DonationDate(),
		Anonymous:       p.Anonymous(),
		Comment:         p.Comment(),
		FailureReason:   p.FailureReason(),
		Version:         p.Version(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}

	if len(p.Metadata()) > 0 {
		raw, err := json.Marshal(p.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payment metadata: %w", err)
		}
		model.Metadata = datatypes.JSON(raw)
	}

	return model, nil
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	status := vo.PaymentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.Status)
	}
	purpose := vo.Purpose(model.Purpose)
	if !purpose.IsValid() {
		return nil, fmt.Errorf("invalid payment purpose: %s", model.Purpose)
	}

	target := vo.NoTarget()
	if vo.TargetType(model.TargetType) != vo.TargetTypeNone {
		var err error
		target, err = vo.NewTarget(vo.TargetType(model.TargetType), model.TargetID)
		if err != nil {
			return nil, fmt.Errorf("invalid payment target: %w", err)
		}
	}

	var metadata map[string]interface{}
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment metadata: %w", err)
		}
	}

	return payment.ReconstructPayment(payment.ReconstructParams{
		ID:              model.ID,
		SID:             model.SID,
		ProviderOrderID: model.ProviderOrderID,
		UserID:          model.UserID,
		Amount:          vo.NewMoney(model.Amount, model.Currency),
		Status:          status,
		Recurring:       model.Recurring,
		Purpose:         purpose,
		Target:          target,
		DonationDate:    model.DonationDate,
		Anonymous:       model.Anonymous,
		Comment:         model.Comment,
		FailureReason:   model.FailureReason,
		Metadata:        metadata,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}), nil
}
