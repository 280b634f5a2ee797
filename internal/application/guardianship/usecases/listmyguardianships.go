package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	vo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
)

type ListMyGuardianshipsCommand struct {
	UserID uint
	Status string
}

type ListMyGuardianshipsUseCase struct {
	guardianshipRepo guardianship.GuardianshipRepository
}

func NewListMyGuardianshipsUseCase(guardianshipRepo guardianship.GuardianshipRepository) *ListMyGuardianshipsUseCase {
	return &ListMyGuardianshipsUseCase{guardianshipRepo: guardianshipRepo}
}

func (uc *ListMyGuardianshipsUseCase) Execute(ctx context.Context, cmd ListMyGuardianshipsCommand) ([]*guardianship.Guardianship, error) {
	var status *vo.GuardianshipStatus
	if cmd.Status != "" {
		s := vo.GuardianshipStatus(cmd.Status)
		if !s.IsValid() {
			return nil, fmt.Errorf("invalid status filter: %s", cmd.Status)
		}
		status = &s
	}

	list, err := uc.guardianshipRepo.ListByUser(ctx, cmd.UserID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list guardianships: %w", err)
	}
	return list, nil
}
