package errors

import "errors"

// Sentinel errors for the payment and lifecycle engine.
var (
	// ErrGatewayUnavailable is returned when the external gateway cannot be
	// reached or answers with a non-2xx status.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrConcurrentModification is returned by repositories when a
	// version-guarded update matched no rows: another writer advanced the
	// aggregate first. Callers re-read and re-evaluate.
	ErrConcurrentModification = errors.New("aggregate modified concurrently")

	// ErrDuplicateOrder is returned when inserting a payment whose provider
	// order id already exists in the ledger.
	ErrDuplicateOrder = errors.New("provider order id already recorded")
)
