package payment

import (
	"fmt"
	"time"

	vo "github.com/pawhaven/pawhaven/internal/domain/payment/valueobjects"
	"github.com/pawhaven/pawhaven/internal/shared/biztime"
	"github.com/pawhaven/pawhaven/internal/shared/id"
)

// Payment is one ledger entry: a single charge attempt and its outcome,
// correlated to the gateway by providerOrderID. Entries are append-mostly;
// the only mutation is the pending-to-terminal transition.
type Payment struct {
	id              uint
	sid             string
	providerOrderID string
	userID          *uint
	amount          vo.Money
	status          vo.PaymentStatus
	recurring       bool
	purpose         vo.Purpose
	target          vo.Target
	donationDate    time.Time
	anonymous       bool
	comment         string

	failureReason *string
	metadata      map[string]interface{}

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewPaymentParams collects the attributes of a new ledger entry.
type NewPaymentParams struct {
	ProviderOrderID string
	UserID          *uint
	Amount          vo.Money
	Recurring       bool
	Purpose         vo.Purpose
	Target          vo.Target
	Anonymous       bool
	Comment         string
}

func NewPayment(params NewPaymentParams) (*Payment, error) {
	if params.ProviderOrderID == "" {
		return nil, fmt.Errorf("provider order ID is required")
	}
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !params.Purpose.IsValid() {
		return nil, fmt.Errorf("invalid purpose: %s", params.Purpose)
	}
	now := biztime.NowUTC()
	return &Payment{
		sid:             id.NewPaymentSID(),
		providerOrderID: params.ProviderOrderID,
		userID:          params.UserID,
		amount:          params.Amount,
		status:          vo.PaymentStatusPending,
		recurring:       params.Recurring,
		purpose:         params.Purpose,
		target:          params.Target,
		donationDate:    now,
		anonymous:       params.Anonymous,
		comment:         params.Comment,
		metadata:        make(map[string]interface{}),
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// MarkSucceeded moves a pending entry to succeeded. Repeating the call is a
// no-op; a failed entry cannot be flipped.
func (p *Payment) MarkSucceeded(chargedAt time.Time) error {
	if p.status == vo.PaymentStatusSucceeded {
		return nil
	}
	if p.status == vo.PaymentStatusFailed {
		return ErrConflictingStatus
	}

	now := biztime.NowUTC()
	p.status = vo.PaymentStatusSucceeded
	p.donationDate = chargedAt.UTC()
	p.updatedAt = now
	p.version++

	return nil
}

// MarkFailed moves a pending entry to failed. Repeating the call is a no-op;
// a succeeded entry cannot be flipped.
func (p *Payment) MarkFailed(reason string) error {
	if p.status == vo.PaymentStatusFailed {
		return nil
	}
	if p.status == vo.PaymentStatusSucceeded {
		return ErrConflictingStatus
	}

	p.status = vo.PaymentStatusFailed
	if reason != "" {
		p.failureReason = &reason
	}
	p.updatedAt = biztime.NowUTC()
	p.version++

	return nil
}

// MatchesOutcome reports whether the entry is already settled with the given
// terminal status. Used by the idempotency gate on duplicate callbacks.
func (p *Payment) MatchesOutcome(status vo.PaymentStatus) bool {
	return p.status.IsTerminal() && p.status == status
}

func (p *Payment) ID() uint {
	return p.id
}

func (p *Payment) SID() string {
	return p.sid
}

func (p *Payment) ProviderOrderID() string {
	return p.providerOrderID
}

func (p *Payment) UserID() *uint {
	return p.userID
}

func (p *Payment) Amount() vo.Money {
	return p.amount
}

func (p *Payment) Status() vo.PaymentStatus {
	return p.status
}

func (p *Payment) Recurring() bool {
	return p.recurring
}

func (p *Payment) Purpose() vo.Purpose {
	return p.purpose
}

func (p *Payment) Target() vo.Target {
	return p.target
}

func (p *Payment) DonationDate() time.Time {
	return p.donationDate
}

func (p *Payment) Anonymous() bool {
	return p.anonymous
}

func (p *Payment) Comment() string {
	return p.comment
}

func (p *Payment) FailureReason() *string {
	return p.failureReason
}

func (p *Payment) Metadata() map[string]interface{} {
	return p.metadata
}

// SetMetadata sets a metadata key-value pair.
func (p *Payment) SetMetadata(key string, value interface{}) {
	if p.metadata == nil {
		p.metadata = make(map[string]interface{})
	}
	p.metadata[key] = value
	p.updatedAt = biztime.NowUTC()
}

func (p *Payment) Version() int {
	return p.version
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Payment) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the payment ID after persistence (used by the repository after
// Create).
func (p *Payment) SetID(id uint) {
	p.id = id
}

// ReconstructParams carries every persisted field of a ledger entry.
type ReconstructParams struct {
	ID              uint
	SID             string
	ProviderOrderID string
	UserID          *uint
	Amount          vo.Money
	Status          vo.PaymentStatus
	Recurring       bool
	Purpose         vo.Purpose
	Target          vo.Target
	DonationDate    time.Time
	Anonymous       bool
	Comment         string
	FailureReason   *string
	Metadata        map[string]interface{}
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructPayment rebuilds a Payment from persistence.
func ReconstructPayment(params ReconstructParams) *Payment {
	metadata := params.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Payment{
		id:              params.ID,
		sid:             params.SID,
		providerOrderID: params.ProviderOrderID,
		userID:          params.UserID,
		amount:          params.Amount,
		status:          params.Status,
		recurring:       params.Recurring,
		purpose:         params.Purpose,
		target:          params.Target,
		donationDate:    params.DonationDate,
		anonymous:       params.Anonymous,
		comment:         params.Comment,
		failureReason:   params.FailureReason,
		metadata:        metadata,
		version:         params.Version,
		createdAt:       params.CreatedAt,
		updatedAt:       params.UpdatedAt,
	}
}
