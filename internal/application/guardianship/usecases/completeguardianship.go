package usecases

import (
	"context"
	"fmt"

	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type CompleteGuardianshipCommand struct {
	GuardianshipSID string
	UserID          uint
}

// CompleteGuardianshipUseCase ends a guardianship. When the user asks for it
// directly the funding subscription is cancelled too; internal callers that
// are already cancelling the subscription pass cancelSubscription false.
type CompleteGuardianshipUseCase struct {
	guardianshipRepo guardianship.GuardianshipRepository
	txManager        *db.TransactionManager
	canceller        SubscriptionCanceller
	notifier         Notifier
	logger           logger.Interface
}

func NewCompleteGuardianshipUseCase(
	guardianshipRepo guardianship.GuardianshipRepository,
	txManager *db.TransactionManager,
	canceller SubscriptionCanceller,
	notifier Notifier,
	logger logger.Interface,
) *CompleteGuardianshipUseCase {
	return &CompleteGuardianshipUseCase{
		guardianshipRepo: guardianshipRepo,
		txManager:        txManager,
		canceller:        canceller,
		notifier:         notifier,
		logger:           logger,
	}
}

func (uc *CompleteGuardianshipUseCase) Execute(ctx context.Context, cmd CompleteGuardianshipCommand) error {
	g, err := uc.guardianshipRepo.GetBySID(ctx, cmd.GuardianshipSID)
	if err != nil {
		return fmt.Errorf("failed to get guardianship: %w", err)
	}
	if g.UserID() != cmd.UserID {
		return apperrors.NewNotFoundError("guardianship not found")
	}

	return uc.complete(ctx, g, true)
}

// Complete ends a guardianship on behalf of another use case.
func (uc *CompleteGuardianshipUseCase) Complete(ctx context.Context, guardianshipID uint, cancelSubscription bool) error {
	g, err := uc.guardianshipRepo.GetByID(ctx, guardianshipID)
	if err != nil {
		return fmt.Errorf("failed to get guardianship: %w", err)
	}
	return uc.complete(ctx, g, cancelSubscription)
}

func (uc *CompleteGuardianshipUseCase) complete(ctx context.Context, g *guardianship.Guardianship, cancelSubscription bool) error {
	if g.Status().IsTerminal() {
		return nil
	}

	cascade := cancelSubscription && g.SubscriptionID() != nil && uc.canceller != nil
	if cascade {
		// The provider round trip happens before the unit of work opens.
		if err := uc.canceller.CancelAtProvider(ctx, *g.SubscriptionID()); err != nil {
			return fmt.Errorf("failed to cancel funding subscription at provider: %w", err)
		}
	}

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := g.Complete(); err != nil {
			return fmt.Errorf("failed to complete guardianship: %w", err)
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

	if uc.notifier != nil {
		if err := uc.notifier.GuardianshipCompleted(ctx, g.UserID(), g.SID()); err != nil {
			uc.logger.Errorw("failed to send completion notification",
				"error", err,
				"guardianship_sid", g.SID())
		}
	}

	uc.logger.Infow("guardianship completed", "guardianship_sid", g.SID())
	return nil
}
