package usecases

import (
	"context"
	"time"
)

// Notifier delivers user-facing messages after a callback commits. Delivery
// failures are logged and never fail the callback.
type Notifier interface {
	GuardianshipGraceEntered(ctx context.Context, userID uint, guardianshipSID string, graceUntil time.Time) error
}
