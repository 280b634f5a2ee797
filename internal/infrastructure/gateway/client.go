package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/shared/config"
	apperrors "github.com/pawhaven/pawhaven/internal/shared/errors"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

// ProviderName identifies the payment provider in subscription records.
const ProviderName = "liqpay"

const apiVersion = 3

// Client talks to the provider over its form-encoded data+signature API.
// It implements payment_gateway.PaymentGateway.
type Client struct {
	publicKey   string
	signer      *Signer
	apiURL      string
	checkoutURL string
	httpClient  *http.Client
	logger      logger.Interface
}

func NewClient(cfg *config.GatewayConfig, logger logger.Interface) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		publicKey:   cfg.PublicKey,
		signer:      NewSigner(cfg.PrivateKey),
		apiURL:      cfg.APIURL,
		checkoutURL: cfg.CheckoutURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// payload is the provider's request and callback envelope before base64.
type payload struct {
	Version         int     `json:"version"`
	PublicKey       string  `json:"public_key,omitempty"`
	Action          string  `json:"action"`
	Amount          float64 `json:"amount,omitempty"`
	Currency        string  `json:"currency,omitempty"`
	Description     string  `json:"description,omitempty"`
	OrderID         string  `json:"order_id"`
	ResultURL       string  `json:"result_url,omitempty"`
	ServerURL       string  `json:"server_url,omitempty"`
	Subscribe       int     `json:"subscribe,omitempty"`
	SubscribePeriod string  `json:"subscribe_periodicity,omitempty"`
	Info            string  `json:"info,omitempty"`

	// Callback-only fields.
	PaymentID      int64   `json:"payment_id,omitempty"`
	Status         string  `json:"status,omitempty"`
	ErrCode        string  `json:"err_code,omitempty"`
	ErrDescription string  `json:"err_description,omitempty"`
	EndDate        int64   `json:"end_date,omitempty"`
	AmountDebit    float64 `json:"amount_debit,omitempty"`
}

func (c *Client) BuildCheckout(ctx context.Context, req payment_gateway.CheckoutRequest) (*payment_gateway.CheckoutResponse, error) {
	p := payload{
		Version:     apiVersion,
		PublicKey:   c.publicKey,
		Action:      "pay",
		Amount:      centsToUnits(req.Amount),
		Currency:    req.Currency,
		Description: req.Description,
		OrderID:     req.OrderID,
		ResultURL:   req.ResultURL,
		ServerURL:   req.ServerURL,
	}
	if req.Recurring {
		p.Action = "subscribe"
		p.Subscribe = 1
		p.SubscribePeriod = "month"
		p.Info = req.OrderID
	}

	data, signature, err := c.encode(p)
	if err != nil {
		return nil, err
	}

	return &payment_gateway.CheckoutResponse{
		CheckoutURL: fmt.Sprintf("%s?data=%s&signature=%s", c.checkoutURL, url.QueryEscape(data), url.QueryEscape(signature)),
		Data:        data,
		Signature:   signature,
	}, nil
}

func (c *Client) ParseCallback(data, signature string) (*payment_gateway.CallbackData, error) {
	if data == "" || signature == "" {
		return nil, fmt.Errorf("missing data or signature")
	}
	if !c.signer.Verify(data, signature) {
		return nil, fmt.Errorf("signature mismatch")
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to parse callback payload: %w", err)
	}

	var rawMap map[string]any
	if err := json.Unmarshal(raw, &rawMap); err != nil {
		rawMap = map[string]any{}
	}

	cb := &payment_gateway.CallbackData{
		OrderID:                p.OrderID,
		ProviderPaymentID:      fmt.Sprintf("%d", p.PaymentID),
		ProviderSubscriptionID: p.Info,
		Action:                 p.Action,
		Status:                 normalizeStatus(p.Status),
		Amount:                 unitsToCents(p.Amount),
		Currency:               p.Currency,
		FailureReason:          failureReason(p),
		Raw:                    rawMap,
	}
	if p.EndDate > 0 {
		cb.CompletedAt = time.UnixMilli(p.EndDate).UTC()
	}
	return cb, nil
}

func (c *Client) QueryStatus(ctx context.Context, orderID string) (*payment_gateway.StatusResponse, error) {
	p, err := c.request(ctx, payload{
		Version:   apiVersion,
		PublicKey: c.publicKey,
		Action:    "status",
		OrderID:   orderID,
	})
	if err != nil {
		return nil, err
	}

	resp := &payment_gateway.StatusResponse{
		OrderID:           p.OrderID,
		ProviderPaymentID: fmt.Sprintf("%d", p.PaymentID),
		Status:            normalizeStatus(p.Status),
		Amount:            unitsToCents(p.Amount),
		Currency:          p.Currency,
	}
	if p.EndDate > 0 {
		completedAt := time.UnixMilli(p.EndDate).UTC()
		resp.CompletedAt = &completedAt
	}
	return resp, nil
}

func (c *Client) CancelSubscription(ctx context.Context, orderID string) error {
	p, err := c.request(ctx, payload{
		Version:   apiVersion,
		PublicKey: c.publicKey,
		Action:    "unsubscribe",
		OrderID:   orderID,
	})
	if err != nil {
		return err
	}

	switch normalizeStatus(p.Status) {
	case payment_gateway.StatusUnsubscribed, payment_gateway.StatusSuccess:
		return nil
	default:
		return fmt.Errorf("provider refused to unsubscribe order %s: %s %s", orderID, p.Status, p.ErrDescription)
	}
}

// request posts a signed payload to the provider API and decodes the reply.
func (c *Client) request(ctx context.Context, p payload) (*payload, error) {
	data, signature, err := c.encode(p)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("data", data)
	form.Set("signature", signature)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Errorw("gateway request failed", "error", err, "action", p.Action, "order_id", p.OrderID)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}
	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrGatewayUnavailable, httpResp.StatusCode)
	}

	var reply payload
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse gateway reply: %w", err)
	}
	return &reply, nil
}

func (c *Client) encode(p payload) (data, signature string, err error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	data = base64.StdEncoding.EncodeToString(raw)
	return data, c.signer.Sign(data), nil
}

// normalizeStatus folds provider aliases into the handful of statuses the
// application distinguishes. Unknown statuses pass through untouched.
func normalizeStatus(status string) string {
	switch status {
	case "sandbox", "wait_accept":
		return payment_gateway.StatusSuccess
	default:
		return status
	}
}

func failureReason(p payload) string {
	if p.ErrDescription != "" {
		if p.ErrCode != "" {
			return fmt.Sprintf("%s: %s", p.ErrCode, p.ErrDescription)
		}
		return p.ErrDescription
	}
	return p.ErrCode
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

func unitsToCents(units float64) int64 {
	return int64(math.Round(units * 100))
}
