package guardianship

import (
	"fmt"
	"time"

	vo "github.com/pawhaven/pawhaven/internal/domain/guardianship/valueobjects"
	"github.com/pawhaven/pawhaven/internal/shared/biztime"
	"github.com/pawhaven/pawhaven/internal/shared/id"
)

// Guardianship is a user's ongoing sponsorship of one animal. When funded
// recurringly it is bound 1:1 to a subscription; a failed charge moves it to
// grace, and an expired grace window completes it.
//
// Invariant: graceUntil is set iff status == grace.
type Guardianship struct {
	id             uint
	sid            string
	userID         uint
	animalID       uint
	subscriptionID *uint
	startDate      time.Time
	graceUntil     *time.Time
	status         vo.GuardianshipStatus
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewGuardianship creates an active guardianship starting now.
func NewGuardianship(userID, animalID uint) (*Guardianship, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if animalID == 0 {
		return nil, fmt.Errorf("animal ID is required")
	}

	now := biztime.NowUTC()
	return &Guardianship{
		sid:       id.NewGuardianshipSID(),
		userID:    userID,
		animalID:  animalID,
		startDate: now,
		status:    vo.StatusActive,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// LinkSubscription binds the guardianship to its funding subscription.
func (g *Guardianship) LinkSubscription(subscriptionID uint) error {
	if subscriptionID == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	if g.subscriptionID != nil && *g.subscriptionID != subscriptionID {
		return fmt.Errorf("guardianship is already funded by subscription %d", *g.subscriptionID)
	}

	g.subscriptionID = &subscriptionID
	g.updatedAt = biztime.NowUTC()
	return nil
}

// ReplaceSubscription swaps the funding subscription after the previous one
// ended. Only a guardianship that is still open can be re-funded.
func (g *Guardianship) ReplaceSubscription(subscriptionID uint) error {
	if subscriptionID == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	if g.status.IsTerminal() {
		return fmt.Errorf("cannot re-fund guardianship with status %s", g.status)
	}

	g.subscriptionID = &subscriptionID
	g.updatedAt = biztime.NowUTC()
	return nil
}

// EnterGrace moves an active guardianship to grace until the given deadline.
// Re-entering grace while already there only extends the deadline.
func (g *Guardianship) EnterGrace(until time.Time) error {
	if g.status == vo.StatusGrace {
		u := until.UTC()
		g.graceUntil = &u
		g.updatedAt = biztime.NowUTC()
		return nil
	}
	if !g.status.CanTransitionTo(vo.StatusGrace) {
		return fmt.Errorf("cannot enter grace with status %s", g.status)
	}

	u := until.UTC()
	g.status = vo.StatusGrace
	g.graceUntil = &u
	g.updatedAt = biztime.NowUTC()
	g.version++

	return nil
}

// Reactivate recovers a guardianship from grace after a successful charge.
func (g *Guardianship) Reactivate() error {
	if g.status == vo.StatusActive {
		return nil
	}
	if !g.status.CanTransitionTo(vo.StatusActive) {
		return fmt.Errorf("cannot reactivate guardianship with status %s", g.status)
	}

	g.status = vo.StatusActive
	g.graceUntil = nil
	g.updatedAt = biztime.NowUTC()
	g.version++

	return nil
}

// Complete ends the guardianship. Terminal; repeating the call is a no-op.
func (g *Guardianship) Complete() error {
	if g.status == vo.StatusCompleted {
		return nil
	}
	if !g.status.CanTransitionTo(vo.StatusCompleted) {
		return fmt.Errorf("cannot complete guardianship with status %s", g.status)
	}

	g.status = vo.StatusCompleted
	g.graceUntil = nil
	g.updatedAt = biztime.NowUTC()
	g.version++

	return nil
}

// Cancel ends the guardianship on explicit user or admin request. Terminal;
// repeating the call is a no-op.
func (g *Guardianship) Cancel() error {
	if g.status == vo.StatusCancelled {
		return nil
	}
	if !g.status.CanTransitionTo(vo.StatusCancelled) {
		return fmt.Errorf("cannot cancel guardianship with status %s", g.status)
	}

	g.status = vo.StatusCancelled
	g.graceUntil = nil
	g.updatedAt = biztime.NowUTC()
	g.version++

	return nil
}

// GraceExpired reports whether the grace window has run out at the given
// instant.
func (g *Guardianship) GraceExpired(now time.Time) bool {
	return g.status == vo.StatusGrace && g.graceUntil != nil && !g.graceUntil.After(now)
}

func (g *Guardianship) ID() uint {
	return g.id
}

func (g *Guardianship) SID() string {
	return g.sid
}

func (g *Guardianship) UserID() uint {
	return g.userID
}

func (g *Guardianship) AnimalID() uint {
	return g.animalID
}

func (g *Guardianship) SubscriptionID() *uint {
	return g.subscriptionID
}

func (g *Guardianship) StartDate() time.Time {
	return g.startDate
}

func (g *Guardianship) GraceUntil() *time.Time {
	return g.graceUntil
}

func (g *Guardianship) Status() vo.GuardianshipStatus {
	return g.status
}

func (g *Guardianship) Version() int {
	return g.version
}

func (g *Guardianship) CreatedAt() time.Time {
	return g.createdAt
}

func (g *Guardianship) UpdatedAt() time.Time {
	return g.updatedAt
}

// SetID sets the guardianship ID (only for persistence layer use).
func (g *Guardianship) SetID(id uint) error {
	if g.id != 0 {
		return fmt.Errorf("guardianship ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("guardianship ID cannot be zero")
	}
	g.id = id
	return nil
}

// ReconstructParams carries every persisted field of a guardianship.
type ReconstructParams struct {
	ID             uint
	SID            string
	UserID         uint
	AnimalID       uint
	SubscriptionID *uint
	StartDate      time.Time
	GraceUntil     *time.Time
	Status         vo.GuardianshipStatus
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReconstructGuardianship rebuilds a guardianship from persistence.
func ReconstructGuardianship(params ReconstructParams) (*Guardianship, error) {
	if params.ID == 0 {
		return nil, fmt.Errorf("guardianship ID cannot be zero")
	}
	if !params.Status.IsValid() {
		return nil, fmt.Errorf("invalid guardianship status: %s", params.Status)
	}
	if (params.Status == vo.StatusGrace) != (params.GraceUntil != nil) {
		return nil, fmt.Errorf("grace deadline must be set exactly when status is grace")
	}

	return &Guardianship{
		id:             params.ID,
		sid:            params.SID,
		userID:         params.UserID,
		animalID:       params.AnimalID,
		subscriptionID: params.SubscriptionID,
		startDate:      params.StartDate,
		graceUntil:     params.GraceUntil,
		status:         params.Status,
		version:        params.Version,
		createdAt:      params.CreatedAt,
		updatedAt:      params.UpdatedAt,
	}, nil
}
