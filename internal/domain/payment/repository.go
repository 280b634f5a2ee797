package payment

import "context"

// PaymentRepository persists the ledger. providerOrderID carries a unique
// index; Create on a duplicate returns apperrors.ErrDuplicateOrder and
// Update is version-guarded, returning apperrors.ErrConcurrentModification
// when another writer advanced the row first.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error

	// GetByProviderOrderID returns (nil, nil) when no entry exists.
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*Payment, error)
	GetBySID(ctx context.Context, sid string) (*Payment, error)
	ListByUser(ctx context.Context, userID uint) ([]*Payment, error)
}
