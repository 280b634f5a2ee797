package usecases

import (
	"context"
	"time"
)

// GuardianshipCompleter closes the guardianship a subscription funds. The
// cancelSubscription flag must be false when the caller is already
// cancelling the subscription, which keeps the mutual cancellation bounded.
type GuardianshipCompleter interface {
	Complete(ctx context.Context, guardianshipID uint, cancelSubscription bool) error
}

// ExpectedPayment is one upcoming recurring charge.
type ExpectedPayment struct {
	SubscriptionSID string    `json:"subscription_sid"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	NextChargeAt    time.Time `json:"next_charge_at"`
}

// ExpectedPaymentsStore caches the per-user projection of upcoming charges.
// A miss returns (nil, nil).
type ExpectedPaymentsStore interface {
	Get(ctx context.Context, userID uint) ([]ExpectedPayment, error)
	Set(ctx context.Context, userID uint, payments []ExpectedPayment) error
	Invalidate(ctx context.Context, userID uint) error
}
