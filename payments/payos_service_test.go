package payments

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.Handler) *PayOSService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("PAYOS_API_BASE_URL", srv.URL)
	t.Setenv("PAYOS_CLIENT_ID", "test-client")
	t.Setenv("PAYOS_API_KEY", "test-key")
	t.Setenv("PAYOS_CHECKSUM_KEY", "test-checksum")
	return NewPayOSService()
}

func TestCreatePaymentLink(t *testing.T) {
	var gotBody map[string]interface{}
	svc := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests", r.URL.Path)
		assert.Equal(t, "test-client", r.Header.Get("x-client-id"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "00",
			"desc": "success",
			"data": map[string]interface{}{
				"orderCode":     170000000001,
				"amount":        1500000,
				"status":        GatewayPending,
				"checkoutUrl":   "https://pay.example/170000000001",
				"paymentLinkId": "lnk_1",
			},
		})
	}))

	link, err := svc.CreatePaymentLink(170000000001, 1500000, "ATPS 170000000001", "https://app/return", "https://app/cancel")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/170000000001", link.CheckoutURL)
	assert.Equal(t, GatewayPending, link.Status)
	assert.NotEmpty(t, gotBody["signature"], "requests must be signed")
}

func TestCreatePaymentLinkGatewayError(t *testing.T) {
	svc := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"code": "20", "desc": "duplicate order"})
	}))

	_, err := svc.CreatePaymentLink(170000000002, 1000, "ATPS 170000000002", "r", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate order")
}

func TestGetPaymentLinkInformation(t *testing.T) {
	svc := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests/170000000003", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "00",
			"data": map[string]interface{}{"orderCode": 170000000003, "status": GatewayPaid},
		})
	}))

	link, err := svc.GetPaymentLinkInformation(170000000003)
	require.NoError(t, err)
	assert.Equal(t, GatewayPaid, link.Status)
}

func TestVerifyWebhookSignature(t *testing.T) {
	t.Setenv("PAYOS_CHECKSUM_KEY", "test-checksum")
	svc := NewPayOSService()

	data := map[string]interface{}{
		"orderCode": int64(170000000004),
		"amount":    int64(1500000),
		"code":      "00",
	}
	valid := svc.sign("amount=1500000&code=00&orderCode=170000000004")

	assert.True(t, svc.VerifyWebhookSignature(data, valid))
	assert.False(t, svc.VerifyWebhookSignature(data, "deadbeef"))

	data["amount"] = int64(1)
	assert.False(t, svc.VerifyWebhookSignature(data, valid), "tampered payload must fail verification")
}

func TestVerifyWebhookSignatureDecodedPayload(t *testing.T) {
	t.Setenv("PAYOS_CHECKSUM_KEY", "test-checksum")
	svc := NewPayOSService()

	// Large order codes must not collapse into exponent notation after JSON
	// decoding turns them into float64.
	raw := []byte(`{"orderCode":170000000004,"amount":1500000,"code":"00"}`)
	valid := svc.sign("amount=1500000&code=00&orderCode=170000000004")

	var plain map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &plain))
	assert.True(t, svc.VerifyWebhookSignature(plain, valid))

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var numbered map[string]interface{}
	require.NoError(t, dec.Decode(&numbered))
	assert.True(t, svc.VerifyWebhookSignature(numbered, valid))
}
