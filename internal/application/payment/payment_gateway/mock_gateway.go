package payment_gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGateway is an in-memory gateway for tests and local development.
// Callbacks are scripted per order via Enqueue; unscripted orders succeed
// when shouldSucceed is set.
type MockGateway struct {
	mu            sync.Mutex
	shouldSucceed bool
	scripted      map[string]*CallbackData
	cancelled     []string
	cancelErr     error
}

func NewMockGateway(shouldSucceed bool) *MockGateway {
	return &MockGateway{
		shouldSucceed: shouldSucceed,
		scripted:      make(map[string]*CallbackData),
	}
}

// Enqueue scripts the callback that ParseCallback returns for an order.
func (m *MockGateway) Enqueue(orderID string, data *CallbackData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[orderID] = data
}

// FailCancellations makes every CancelSubscription call return err.
func (m *MockGateway) FailCancellations(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelErr = err
}

// CancelledOrders returns the order IDs cancelled so far.
func (m *MockGateway) CancelledOrders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelled...)
}

func (m *MockGateway) BuildCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	return &CheckoutResponse{
		CheckoutURL: fmt.Sprintf("https://mock-gateway.example.com/checkout?order=%s", req.OrderID),
		Data:        fmt.Sprintf("mock-data-%s", req.OrderID),
		Signature:   "mock-signature",
	}, nil
}

func (m *MockGateway) ParseCallback(data, signature string) (*CallbackData, error) {
	if signature == "" {
		return nil, fmt.Errorf("missing signature")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok := m.scripted[data]; ok {
		return cb, nil
	}

	status := StatusSuccess
	if !m.shouldSucceed {
		status = StatusFailure
	}
	return &CallbackData{
		OrderID:           data,
		ProviderPaymentID: fmt.Sprintf("TXN_%d", time.Now().Unix()),
		Action:            "pay",
		Status:            status,
		Amount:            9900,
		Currency:          "UAH",
		CompletedAt:       time.Now().UTC(),
		Raw:               map[string]any{},
	}, nil
}

func (m *MockGateway) QueryStatus(ctx context.Context, orderID string) (*StatusResponse, error) {
	status := StatusSuccess
	if !m.shouldSucceed {
		status = StatusFailure
	}
	completedAt := time.Now().UTC()

	return &StatusResponse{
		OrderID:           orderID,
		ProviderPaymentID: fmt.Sprintf("TXN_%d", time.Now().Unix()),
		Status:            status,
		Amount:            9900,
		Currency:          "UAH",
		CompletedAt:       &completedAt,
	}, nil
}

func (m *MockGateway) CancelSubscription(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelErr != nil {
		return m.cancelErr
	}
	m.cancelled = append(m.cancelled, orderID)
	return nil
}
