package payment

import "errors"

var (
	// ErrConflictingStatus is returned when a callback tries to move a
	// ledger entry from one terminal status to a different one. The first
	// recorded outcome wins; the conflict is logged, never applied.
	ErrConflictingStatus = errors.New("conflicting terminal payment status")

	// ErrNotPending is returned for transitions that require a pending entry.
	ErrNotPending = errors.New("payment is not pending")
)
