package subscription

import (
	"context"
	"time"
)

// SubscriptionRepository persists subscriptions. providerSubscriptionID
// carries a unique index. Update is version-guarded and returns
// apperrors.ErrConcurrentModification when the row was advanced first.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	Update(ctx context.Context, s *Subscription) error

	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetBySID(ctx context.Context, sid string) (*Subscription, error)

	// GetByProviderSubscriptionID returns (nil, nil) when unknown.
	GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*Subscription, error)

	ListLiveByUser(ctx context.Context, userID uint) ([]*Subscription, error)

	// FindPastDueOlderThan returns past_due subscriptions whose missed
	// charge is older than cutoff. Feeds the cancellation sweep.
	FindPastDueOlderThan(ctx context.Context, cutoff time.Time) ([]*Subscription, error)

	// ExistsLiveForGuardianship reports whether a non-cancelled
	// guardianship-scoped subscription already references guardianshipID.
	ExistsLiveForGuardianship(ctx context.Context, guardianshipID uint) (bool, error)
}
