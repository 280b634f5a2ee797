package payment_gateway

import (
	"context"
	"time"
)

// Provider callback statuses, already unpacked from the signed envelope.
const (
	StatusSuccess      = "success"
	StatusFailure      = "failure"
	StatusError        = "error"
	StatusSubscribed   = "subscribed"
	StatusUnsubscribed = "unsubscribed"
)

type PaymentGateway interface {
	BuildCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	// ParseCallback verifies the callback signature and decodes the payload.
	// A bad signature or malformed payload yields an error; the caller must
	// reject the request without touching any state.
	ParseCallback(data, signature string) (*CallbackData, error)
	QueryStatus(ctx context.Context, orderID string) (*StatusResponse, error)
	CancelSubscription(ctx context.Context, orderID string) error
}

type CheckoutRequest struct {
	OrderID     string
	Amount      int64
	Currency    string
	Description string
	Recurring   bool
	ResultURL   string
	ServerURL   string
}

type CheckoutResponse struct {
	CheckoutURL string
	Data        string
	Signature   string
}

// CallbackData is one verified provider notification. OrderID is our order
// reference; ProviderPaymentID and ProviderSubscriptionID are the provider's
// own identifiers and may be empty depending on the action.
type CallbackData struct {
	OrderID                string
	ProviderPaymentID      string
	ProviderSubscriptionID string
	Action                 string
	Status                 string
	Amount                 int64
	Currency               string
	FailureReason          string
	CompletedAt            time.Time
	Raw                    map[string]any
}

// Succeeded reports whether the notification settles the charge.
func (d *CallbackData) Succeeded() bool {
	return d.Status == StatusSuccess || d.Status == StatusSubscribed
}

// Failed reports whether the notification is a definitive charge failure.
func (d *CallbackData) Failed() bool {
	return d.Status == StatusFailure || d.Status == StatusError
}

type StatusResponse struct {
	OrderID           string
	ProviderPaymentID string
	Status            string
	Amount            int64
	Currency          string
	CompletedAt       *time.Time
}
