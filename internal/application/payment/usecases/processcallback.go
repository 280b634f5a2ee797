package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/domain/guardianship"
	"github.com/pawhaven/pawhaven/internal/domain/payment"
	vo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/domain/subscription"
	"github.com/pawhaven/pawhaven/internal/shared/clock"
	"github.com/pawhaven/pawhaven/internal/shared/db"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

type ProcessCallbackCommand struct {
	Data      string
	Signature string
}

type CallbackConfig struct {
	GracePeriod time.Duration
}

// ProcessCallbackUseCase applies one provider notification to the ledger and
// to the subscription and guardianship it funds. All writes happen in a
// single transaction; notifications go out only after it commits.
type ProcessCallbackUseCase struct {
	paymentRepo      payment.PaymentRepository
	subscriptionRepo subscription.SubscriptionRepository
	guardianshipRepo guardianship.GuardianshipRepository
	gateway          payment_gateway.PaymentGateway
	txManager        *db.TransactionManager
	notifier         Notifier
	clock            clock.Clock
	config           CallbackConfig
	logger           logger.Interface
}

func NewProcessCallbackUseCase(
	paymentRepo payment.PaymentRepository,
	subscriptionRepo subscription.SubscriptionRepository,
	guardianshipRepo guardianship.GuardianshipRepository,
	gateway payment_gateway.PaymentGateway,
	txManager *db.TransactionManager,
	notifier Notifier,
	clk clock.Clock,
	config CallbackConfig,
	logger logger.Interface,
) *ProcessCallbackUseCase {
	return &ProcessCallbackUseCase{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		guardianshipRepo: guardianshipRepo,
		gateway:          gateway,
		txManager:        txManager,
		notifier:         notifier,
		clock:            clk,
		config:           config,
		logger:           logger,
	}
}

// graceNotice is collected inside the transaction and delivered after commit.
type graceNotice struct {
	userID          uint
	guardianshipSID string
	graceUntil      time.Time
}

func (uc *ProcessCallbackUseCase) Execute(ctx context.Context, cmd ProcessCallbackCommand) error {
	cb, err := uc.gateway.ParseCallback(cmd.Data, cmd.Signature)
	if err != nil {
		uc.logger.Warnw("rejected payment callback", "error", err)
		return apperrors.NewValidationError("invalid callback")
	}
	if cb.OrderID == "" {
		uc.logger.Warnw("rejected payment callback without order id", "action", cb.Action)
		return apperrors.NewValidationError("invalid callback")
	}

	var notice *graceNotice
	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		notice = nil

		if cb.Status == payment_gateway.StatusUnsubscribed {
			n, err := uc.handleUnsubscribe(ctx, cb)
			notice = n
			return err
		}

		if !cb.Succeeded() && !cb.Failed() {
			// Intermediate statuses (3DS, processing) carry no outcome.
			uc.logger.Debugw("ignoring non-final callback",
				"order_id", cb.OrderID,
				"status", cb.Status)
			return nil
		}

		entry, fresh, err := uc.recordOutcome(ctx, cb)
		if err != nil || !fresh {
			return err
		}

		n, err := uc.applyFundingEffects(ctx, cb, entry)
		notice = n
		return err
	})
	if err != nil {
		return err
	}

	if notice != nil && uc.notifier != nil {
		if err := uc.notifier.GuardianshipGraceEntered(ctx, notice.userID, notice.guardianshipSID, notice.graceUntil); err != nil {
			uc.logger.Errorw("failed to send grace notification",
				"error", err,
				"guardianship_sid", notice.guardianshipSID)
		}
	}

	return nil
}

// recordOutcome writes the callback outcome to the ledger. fresh is false
// when the outcome was already recorded and no side effects should run.
func (uc *ProcessCallbackUseCase) recordOutcome(ctx context.Context, cb *payment_gateway.CallbackData) (*payment.Payment, bool, error) {
	desired := vo.PaymentStatusSucceeded
	if cb.Failed() {
		desired = vo.PaymentStatusFailed
	}

	entry, err := uc.paymentRepo.GetByProviderOrderID(ctx, cb.OrderID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load payment: %w", err)
	}

	if entry == nil {
		return uc.recordRecurringCharge(ctx, cb, desired)
	}

	if entry.Status().IsTerminal() {
		if entry.MatchesOutcome(desired) {
			uc.logger.Infow("duplicate payment callback",
				"order_id", cb.OrderID,
				"status", desired)
			return entry, false, nil
		}
		// The first recorded outcome wins; the late conflicting delivery
		// is acknowledged but never applied.
		uc.logger.Warnw("conflicting payment callback ignored",
			"order_id", cb.OrderID,
			"recorded_status", entry.Status(),
			"callback_status", cb.Status)
		return entry, false, nil
	}

	if err := uc.applyOutcome(entry, cb, desired); err != nil {
		return nil, false, err
	}

	if err := uc.paymentRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			return uc.resolveRace(ctx, cb, desired)
		}
		return nil, false, fmt.Errorf("failed to update payment: %w", err)
	}

	return entry, true, nil
}

// recordRecurringCharge creates the ledger entry for a gateway-initiated
// charge that has no pending row of its own.
func (uc *ProcessCallbackUseCase) recordRecurringCharge(ctx context.Context, cb *payment_gateway.CallbackData, desired vo.PaymentStatus) (*payment.Payment, bool, error) {
	sub, err := uc.lookupSubscription(ctx, cb)
	if err != nil {
		return nil, false, err
	}
	if sub == nil {
		uc.logger.Warnw("rejected callback for unknown order",
			"order_id", cb.OrderID,
			"provider_subscription_id", cb.ProviderSubscriptionID)
		return nil, false, apperrors.NewValidationError("unknown order")
	}

	userID := sub.UserID()
	purpose := vo.PurposeGeneral
	target := vo.NoTarget()
	if sub.Scope().IsGuardianship() {
		purpose = vo.PurposeGuardianship
		target = vo.GuardianshipTarget(sub.Scope().ID())
	}

	entry, err := payment.NewPayment(payment.NewPaymentParams{
		ProviderOrderID: cb.OrderID,
		UserID:          &userID,
		Amount:          vo.NewMoney(cb.Amount, cb.Currency),
		Recurring:       true,
		Purpose:         purpose,
		Target:          target,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to build recurring payment: %w", err)
	}
	if err := uc.applyOutcome(entry, cb, desired); err != nil {
		return nil, false, err
	}

	if err := uc.paymentRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateOrder) {
			return uc.resolveRace(ctx, cb, desired)
		}
		return nil, false, fmt.Errorf("failed to create recurring payment: %w", err)
	}

	return entry, true, nil
}

// resolveRace re-reads the entry after losing a write race. The winner's
// outcome stands; a matching delivery is a duplicate, a conflicting one is
// dropped with a warning.
func (uc *ProcessCallbackUseCase) resolveRace(ctx context.Context, cb *payment_gateway.CallbackData, desired vo.PaymentStatus) (*payment.Payment, bool, error) {
	entry, err := uc.paymentRepo.GetByProviderOrderID(ctx, cb.OrderID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload payment: %w", err)
	}
	if entry == nil {
		return nil, false, fmt.Errorf("payment vanished after write conflict: %s", cb.OrderID)
	}

	if !entry.MatchesOutcome(desired) {
		uc.logger.Warnw("conflicting payment callback lost write race",
			"order_id", cb.OrderID,
			"recorded_status", entry.Status(),
			"callback_status", cb.Status)
	}
	return entry, false, nil
}

func (uc *ProcessCallbackUseCase) applyOutcome(entry *payment.Payment, cb *payment_gateway.CallbackData, desired vo.PaymentStatus) error {
	chargedAt := cb.CompletedAt
	if chargedAt.IsZero() {
		chargedAt = uc.clock.Now()
	}

	if desired == vo.PaymentStatusSucceeded {
		if err := entry.MarkSucceeded(chargedAt); err != nil {
			return fmt.Errorf("failed to mark payment succeeded: %w", err)
		}
		return nil
	}

	reason := cb.FailureReason
	if reason == "" {
		reason = cb.Status
	}
	if err := entry.MarkFailed(reason); err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}

// applyFundingEffects pushes a freshly recorded outcome into the subscription
// and, through it, the guardianship it funds.
func (uc *ProcessCallbackUseCase) applyFundingEffects(ctx context.Context, cb *payment_gateway.CallbackData, entry *payment.Payment) (*graceNotice, error) {
	sub, err := uc.lookupSubscription(ctx, cb)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		// One-off donation, nothing downstream to update.
		uc.logger.Infow("payment callback processed",
			"order_id", cb.OrderID,
			"status", entry.Status())
		return nil, nil
	}

	if cb.Succeeded() {
		if err := sub.RecordChargeSuccess(entry.DonationDate()); err != nil {
			return nil, fmt.Errorf("failed to record charge success: %w", err)
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to update subscription: %w", err)
		}
		return nil, uc.reactivateGuardianship(ctx, sub)
	}

	if err := sub.RecordChargeFailure(); err != nil {
		return nil, fmt.Errorf("failed to record charge failure: %w", err)
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	return uc.moveGuardianshipToGrace(ctx, sub)
}

func (uc *ProcessCallbackUseCase) handleUnsubscribe(ctx context.Context, cb *payment_gateway.CallbackData) (*graceNotice, error) {
	sub, err := uc.lookupSubscription(ctx, cb)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		uc.logger.Warnw("unsubscribe callback for unknown subscription",
			"order_id", cb.OrderID,
			"provider_subscription_id", cb.ProviderSubscriptionID)
		return nil, nil
	}

	if err := sub.Cancel(); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	uc.logger.Infow("subscription cancelled by provider",
		"subscription_sid", sub.SID(),
		"order_id", cb.OrderID)

	// The guardianship keeps its grace window so the user can re-fund it
	// before the sweep completes it.
	return uc.moveGuardianshipToGrace(ctx, sub)
}

func (uc *ProcessCallbackUseCase) lookupSubscription(ctx context.Context, cb *payment_gateway.CallbackData) (*subscription.Subscription, error) {
	ref := cb.ProviderSubscriptionID
	if ref == "" {
		ref = cb.OrderID
	}
	sub, err := uc.subscriptionRepo.GetByProviderSubscriptionID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub, nil
}

func (uc *ProcessCallbackUseCase) reactivateGuardianship(ctx context.Context, sub *subscription.Subscription) error {
	if !sub.Scope().IsGuardianship() {
		return nil
	}

	g, err := uc.guardianshipRepo.GetByID(ctx, sub.Scope().ID())
	if err != nil {
		return fmt.Errorf("failed to load guardianship: %w", err)
	}
	if g.Status().IsTerminal() {
		return nil
	}

	if err := g.Reactivate(); err != nil {
		return fmt.Errorf("failed to reactivate guardianship: %w", err)
	}
	if err := uc.guardianshipRepo.Update(ctx, g); err != nil {
		return fmt.Errorf("failed to update guardianship: %w", err)
	}
	return nil
}

func (uc *ProcessCallbackUseCase) moveGuardianshipToGrace(ctx context.Context, sub *subscription.Subscription) (*graceNotice, error) {
	if !sub.Scope().IsGuardianship() {
		return nil, nil
	}

	g, err := uc.guardianshipRepo.GetByID(ctx, sub.Scope().ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load guardianship: %w", err)
	}
	if g.Status().IsTerminal() {
		return nil, nil
	}

	until := uc.clock.Now().Add(uc.config.GracePeriod)
	if err := g.EnterGrace(until); err != nil {
		return nil, fmt.Errorf("failed to move guardianship to grace: %w", err)
	}
	if err := uc.guardianshipRepo.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to update guardianship: %w", err)
	}

	uc.logger.Infow("guardianship entered grace",
		"guardianship_sid", g.SID(),
		"grace_until", until)

	return &graceNotice{
		userID:          g.UserID(),
		guardianshipSID: g.SID(),
		graceUntil:      until,
	}, nil
}
