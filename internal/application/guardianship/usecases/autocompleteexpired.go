package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	"github.com/pawhaven/pawhaven/internal/shared/clock"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// AutoCompleteExpiredUseCase is the grace-expiry sweep. A guardianship whose
// grace window has run out is completed. The funding subscription is left
// alone: the retry-tolerance sweep owns its cancellation, and the provider
// may still settle a retry in the meantime. One failing guardianship does
// not stop the sweep.
type AutoCompleteExpiredUseCase struct {
	guardianshipRepo guardianship.GuardianshipRepository
	completeUC       *CompleteGuardianshipUseCase
	clock            clock.Clock
	logger           logger.Interface
}

func NewAutoCompleteExpiredUseCase(
	guardianshipRepo guardianship.GuardianshipRepository,
	completeUC *CompleteGuardianshipUseCase,
	clk clock.Clock,
	logger logger.Interface,
) *AutoCompleteExpiredUseCase {
	return &AutoCompleteExpiredUseCase{
		guardianshipRepo: guardianshipRepo,
		completeUC:       completeUC,
		clock:            clk,
		logger:           logger,
	}
}

func (uc *AutoCompleteExpiredUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()

	expired, err := uc.guardianshipRepo.FindGraceExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired guardianships: %w", err)
	}

	completed := 0
	for _, g := range expired {
		if err := uc.completeUC.Complete(ctx, g.ID(), false); err != nil {
			uc.logger.Errorw("failed to auto-complete guardianship",
				"error", err,
				"guardianship_sid", g.SID())
			continue
		}
		completed++
	}

	if completed > 0 {
		uc.logger.Infow("expired guardianships completed", "count", completed, "now", now)
	}
	return completed, nil
}
