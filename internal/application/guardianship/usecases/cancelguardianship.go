package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type CancelGuardianshipCommand struct {
	GuardianshipSID string
	UserID          uint
}

// CancelGuardianshipUseCase ends a guardianship on explicit request and
// stops the subscription that was funding it.
type CancelGuardianshipUseCase struct {
	guardianshipRepo guardianship.GuardianshipRepository
	txManager        *db.TransactionManager
	canceller        SubscriptionCanceller
	logger           logger.Interface
}

func NewCancelGuardianshipUseCase(
	guardianshipRepo guardianship.GuardianshipRepository,
	txManager *db.TransactionManager,
	canceller SubscriptionCanceller,
	logger logger.Interface,
) *CancelGuardianshipUseCase {
	return &CancelGuardianshipUseCase{
		guardianshipRepo: guardianshipRepo,
		txManager:        txManager,
		canceller:        canceller,
		logger:           logger,
	}
}

func (uc *CancelGuardianshipUseCase) Execute(ctx context.Context, cmd CancelGuardianshipCommand) error {
	g, err := uc.guardianshipRepo.GetBySID(ctx, cmd.GuardianshipSID)
	if err != nil {
		return fmt.Errorf("failed to get guardianship: %w", err)
	}
	if g.UserID() != cmd.UserID {
		return apperrors.NewNotFoundError("guardianship not found")
	}
	if g.Status().IsTerminal() {
		return nil
	}

	cascade := g.SubscriptionID() != nil && uc.canceller != nil
	if cascade {
		// The provider round trip happens before the unit of work opens.
		if err := uc.canceller.CancelAtProvider(ctx, *g.SubscriptionID()); err != nil {
			return fmt.Errorf("failed to cancel funding subscription at provider: %w", err)
		}
	}

	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := g.Cancel(); err != nil {
			return fmt.Errorf("failed to cancel guardianship: %w", err)
		}
		if err := uc.guardianshipRepo.Update(ctx, g); err != nil {
			return fmt.Errorf("failed to update guardianship: %w", err)
		}

		if cascade {
			if err := uc.canceller.CancelLocally(ctx, *g.SubscriptionID(), false); err != nil {
				return fmt.Errorf("failed to cancel funding subscription: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Infow("guardianship cancelled", "guardianship_sid", g.SID())
	return nil
}
