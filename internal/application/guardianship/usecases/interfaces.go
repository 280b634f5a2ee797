package usecases

import "context"

// SubscriptionCanceller stops the subscription that funds a guardianship in
// two phases: the provider call first, the local write inside the caller's
// unit of work. The cascade flag must be false when the caller is already
// closing the guardianship, which keeps the mutual cancellation bounded.
type SubscriptionCanceller interface {
	CancelAtProvider(ctx context.Context, subscriptionID uint) error
	CancelLocally(ctx context.Context, subscriptionID uint, cascade bool) error
}

// Notifier delivers user-facing messages after a lifecycle change commits.
// Delivery failures are logged and never fail the operation.
type Notifier interface {
	GuardianshipCompleted(ctx context.Context, userID uint, guardianshipSID string) error
}
