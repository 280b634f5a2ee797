package gateway

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/application/payment/payment_gateway"
	"github.com/pawhaven/pawhaven/internal/shared/config"
	"github.com/pawhaven/pawhaven/internal/shared/logger"
)

func TestSigner_Sign(t *testing.T) {
	signer := NewSigner("private")
	data := base64.StdEncoding.EncodeToString([]byte(`{"order_id":"ord_1"}`))

	h := sha1.Sum([]byte("private" + data + "private"))
	expected := base64.StdEncoding.EncodeToString(h[:])

	assert.Equal(t, expected, signer.Sign(data))
}

func TestSigner_Verify(t *testing.T) {
	signer := NewSigner("private")
	data := base64.StdEncoding.EncodeToString([]byte(`{"order_id":"ord_1"}`))
	signature := signer.Sign(data)

	tests := []struct {
		name      string
		data      string
		signature string
		want      bool
	}{
		{name: "valid", data: data, signature: signature, want: true},
		{name: "tampered data", data: data + "x", signature: signature, want: false},
		{name: "tampered signature", data: data, signature: "bogus"},
		{name: "empty signature", data: data},
		{name: "wrong key", data: data, signature: NewSigner("other").Sign(data)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, signer.Verify(tt.data, tt.signature))
		})
	}
}

func testClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(&config.GatewayConfig{
		PublicKey:   "public",
		PrivateKey:  "private",
		APIURL:      "https://provider.example.com/api/request",
		CheckoutURL: "https://provider.example.com/checkout",
	}, logger.NewLogger())
}

func signedCallback(t *testing.T, body map[string]any) (data, signature string) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	data = base64.StdEncoding.EncodeToString(raw)
	return data, NewSigner("private").Sign(data)
}

func TestClient_ParseCallback(t *testing.T) {
	client := testClient(t)

	data, signature := signedCallback(t, map[string]any{
		"action":     "pay",
		"order_id":   "ord_abc",
		"payment_id": 1630,
		"status":     "success",
		"amount":     150.50,
		"currency":   "UAH",
		"end_date":   int64(1756700000000),
	})

	cb, err := client.ParseCallback(data, signature)
	require.NoError(t, err)

	assert.Equal(t, "ord_abc", cb.OrderID)
	assert.Equal(t, "1630", cb.ProviderPaymentID)
	assert.Equal(t, payment_gateway.StatusSuccess, cb.Status)
	assert.True(t, cb.Succeeded())
	assert.Equal(t, int64(15050), cb.Amount)
	assert.Equal(t, "UAH", cb.Currency)
	assert.Equal(t, int64(1756700000), cb.CompletedAt.Unix())
}

func TestClient_ParseCallback_Rejections(t *testing.T) {
	client := testClient(t)
	data, signature := signedCallback(t, map[string]any{"order_id": "ord_abc", "status": "success"})

	tests := []struct {
		name      string
		data      string
		signature string
	}{
		{name: "empty data", data: "", signature: signature},
		{name: "empty signature", data: data, signature: ""},
		{name: "forged signature", data: data, signature: NewSigner("other").Sign(data)},
		{name: "tampered data", data: data + "AA", signature: signature},
		{name: "not base64", data: "!!!", signature: NewSigner("private").Sign("!!!")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ParseCallback(tt.data, tt.signature)
			assert.Error(t, err)
		})
	}
}

func TestClient_ParseCallback_StatusNormalization(t *testing.T) {
	client := testClient(t)

	tests := []struct {
		provider string
		want     string
	}{
		{provider: "sandbox", want: payment_gateway.StatusSuccess},
		{provider: "wait_accept", want: payment_gateway.StatusSuccess},
		{provider: "failure", want: payment_gateway.StatusFailure},
		{provider: "subscribed", want: payment_gateway.StatusSubscribed},
		{provider: "3ds_verify", want: "3ds_verify"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			data, signature := signedCallback(t, map[string]any{"order_id": "ord_x", "status": tt.provider})
			cb, err := client.ParseCallback(data, signature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cb.Status)
		})
	}
}

func TestClient_ParseCallback_FailureReason(t *testing.T) {
	client := testClient(t)

	data, signature := signedCallback(t, map[string]any{
		"order_id":        "ord_abc",
		"status":          "failure",
		"err_code":        "limit",
		"err_description": "Amount limit exceeded",
	})

	cb, err := client.ParseCallback(data, signature)
	require.NoError(t, err)
	assert.True(t, cb.Failed())
	assert.Equal(t, "limit: Amount limit exceeded", cb.FailureReason)
}

func TestClient_BuildCheckout(t *testing.T) {
	client := testClient(t)

	resp, err := client.BuildCheckout(t.Context(), payment_gateway.CheckoutRequest{
		OrderID:   "ord_abc",
		Amount:    20000,
		Currency:  "UAH",
		Recurring: true,
		ServerURL: "https://pawhaven.example.com/api/v1/payments/callback",
	})
	require.NoError(t, err)

	assert.Contains(t, resp.CheckoutURL, "data=")
	assert.Contains(t, resp.CheckoutURL, "signature=")
	assert.True(t, NewSigner("private").Verify(resp.Data, resp.Signature))

	raw, err := base64.StdEncoding.DecodeString(resp.Data)
	require.NoError(t, err)
	var p payload
	require.NoError(t, json.Unmarshal(raw, &p))

	assert.Equal(t, "subscribe", p.Action)
	assert.Equal(t, 1, p.Subscribe)
	assert.Equal(t, "month", p.SubscribePeriod)
	assert.Equal(t, "ord_abc", p.OrderID)
	assert.InDelta(t, 200.0, p.Amount, 0.001)
}
