package guardianship

import (
	"context"
	"time"

	vo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
)

// GuardianshipRepository persists guardianships. Update is version-guarded
// and returns apperrors.ErrConcurrentModification when the row was advanced
// by another writer first.
type GuardianshipRepository interface {
	Create(ctx context.Context, g *Guardianship) error
	Update(ctx context.Context, g *Guardianship) error

	GetByID(ctx context.Context, id uint) (*Guardianship, error)
	GetBySID(ctx context.Context, sid string) (*Guardianship, error)

	// ListByUser returns the user's guardianships, optionally filtered by
	// status (nil means all).
	ListByUser(ctx context.Context, userID uint, status *vo.GuardianshipStatus) ([]*Guardianship, error)

	// FindGraceExpired returns guardianships whose grace window ran out at
	// or before now. Feeds the auto-complete sweep.
	FindGraceExpired(ctx context.Context, now time.Time) ([]*Guardianship, error)
}
