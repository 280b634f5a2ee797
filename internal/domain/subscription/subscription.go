package subscription

import (
	"fmt"
	"time"

	paymentvo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	vo "github.com/pawhaven/pawhaven/internal/domain/subscription/valueobjects"
	"github.com/pawhaven/pawhaven/internal/shared/biztime"
	"github.com/pawhaven/pawhaven/internal/shared/id"
)

// BillingPeriod is the cadence between recurring charges.
const BillingPeriod = time.Hour * 24 * 30

// Subscription is a recurring billing agreement with the payment gateway,
// optionally scoped to a guardianship. The gateway drives charges; this
// aggregate tracks their expected schedule and outcome.
type Subscription struct {
	id                     uint
	sid                    string
	userID                 uint
	provider               string
	providerSubscriptionID string
	scope                  vo.Scope
	amount                 paymentvo.Money
	status                 vo.SubscriptionStatus
	nextChargeAt           *time.Time
	lastChargeAt           *time.Time
	cancelledAt            *time.Time
	version                int
	createdAt              time.Time
	updatedAt              time.Time
}

// NewSubscription creates an active subscription with the first charge due
// one billing period from now.
func NewSubscription(userID uint, provider, providerSubscriptionID string, amount paymentvo.Money, scope vo.Scope) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}
	if providerSubscriptionID == "" {
		return nil, fmt.Errorf("provider subscription ID is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	now := biztime.NowUTC()
	next := now.Add(BillingPeriod)

	return &Subscription{
		sid:                    id.NewSubscriptionSID(),
		userID:                 userID,
		provider:               provider,
		providerSubscriptionID: providerSubscriptionID,
		scope:                  scope,
		amount:                 amount,
		status:                 vo.StatusActive,
		nextChargeAt:           &next,
		createdAt:              now,
		updatedAt:              now,
	}, nil
}

// RecordChargeSuccess moves the subscription back to active (recovering a
// past_due one) and advances the billing schedule by one period.
func (s *Subscription) RecordChargeSuccess(chargedAt time.Time) error {
	if s.status == vo.StatusCancelled {
		return fmt.Errorf("cannot record charge on subscription with status %s", s.status)
	}

	chargedAt = chargedAt.UTC()
	next := chargedAt.Add(BillingPeriod)

	s.status = vo.StatusActive
	s.lastChargeAt = &chargedAt
	s.nextChargeAt = &next
	s.updatedAt = biztime.NowUTC()
	s.version++

	return nil
}

// RecordChargeFailure marks the subscription past_due. The billing schedule
// is left untouched so the past-due age can be measured from nextChargeAt.
func (s *Subscription) RecordChargeFailure() error {
	if s.status == vo.StatusPastDue {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusPastDue) {
		return fmt.Errorf("cannot mark subscription past due with status %s", s.status)
	}

	s.status = vo.StatusPastDue
	s.updatedAt = biztime.NowUTC()
	s.version++

	return nil
}

// Cancel ends the subscription. Repeated cancellation is a no-op so retrying
// callers stay safe.
func (s *Subscription) Cancel() error {
	if s.status == vo.StatusCancelled {
		return nil
	}

	now := biztime.NowUTC()
	s.status = vo.StatusCancelled
	s.cancelledAt = &now
	s.nextChargeAt = nil
	s.updatedAt = now
	s.version++

	return nil
}

// IsPastDueLongerThan reports whether the subscription has been waiting for a
// successful retry longer than tolerance, measured from the missed charge.
func (s *Subscription) IsPastDueLongerThan(now time.Time, tolerance time.Duration) bool {
	if s.status != vo.StatusPastDue || s.nextChargeAt == nil {
		return false
	}
	return now.Sub(*s.nextChargeAt) > tolerance
}

func (s *Subscription) ID() uint {
	return s.id
}

func (s *Subscription) SID() string {
	return s.sid
}

func (s *Subscription) UserID() uint {
	return s.userID
}

func (s *Subscription) Provider() string {
	return s.provider
}

func (s *Subscription) ProviderSubscriptionID() string {
	return s.providerSubscriptionID
}

func (s *Subscription) Scope() vo.Scope {
	return s.scope
}

func (s *Subscription) Amount() paymentvo.Money {
	return s.amount
}

func (s *Subscription) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *Subscription) NextChargeAt() *time.Time {
	return s.nextChargeAt
}

func (s *Subscription) LastChargeAt() *time.Time {
	return s.lastChargeAt
}

func (s *Subscription) CancelledAt() *time.Time {
	return s.cancelledAt
}

func (s *Subscription) Version() int {
	return s.version
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}

// SetID sets the subscription ID (only for persistence layer use).
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// ReconstructParams carries every persisted field of a subscription.
type ReconstructParams struct {
	ID                     uint
	SID                    string
	UserID                 uint
	Provider               string
	ProviderSubscriptionID string
	Scope                  vo.Scope
	Amount                 paymentvo.Money
	Status                 vo.SubscriptionStatus
	NextChargeAt           *time.Time
	LastChargeAt           *time.Time
	CancelledAt            *time.Time
	Version                int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ReconstructSubscription rebuilds a subscription from persistence.
func ReconstructSubscription(params ReconstructParams) (*Subscription, error) {
	if params.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if params.UserID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !params.Status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", params.Status)
	}

	return &Subscription{
		id:                     params.ID,
		sid:                    params.SID,
		userID:                 params.UserID,
		provider:               params.Provider,
		providerSubscriptionID: params.ProviderSubscriptionID,
		scope:                  params.Scope,
		amount:                 params.Amount,
		status:                 params.Status,
		nextChargeAt:           params.NextChargeAt,
		lastChargeAt:           params.LastChargeAt,
		cancelledAt:            params.CancelledAt,
		version:                params.Version,
		createdAt:              params.CreatedAt,
		updatedAt:              params.UpdatedAt,
	}, nil
}
