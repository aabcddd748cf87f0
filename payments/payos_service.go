package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	config "github.com/Hieupu/ATPS-BE-sub002/configs"
	"github.com/go-resty/resty/v2"
)

// GatewayPaid and friends are the checkout-link states reported by the
// gateway for a payment link.
const (
	GatewayPending   = "PENDING"
	GatewayPaid      = "PAID"
	GatewayCancelled = "CANCELLED"
	GatewayExpired   = "EXPIRED"
)

// PayOSService is the checkout-link gateway client. All requests are signed
// with an HMAC-SHA256 checksum over the sorted request fields.
type PayOSService struct {
	client      *resty.Client
	clientID    string
	apiKey      string
	checksumKey string
}

func NewPayOSService() *PayOSService {
	base := config.ConfigOr("PAYOS_API_BASE_URL", "https://api-merchant.payos.vn")
	return &PayOSService{
		client: resty.New().
			SetBaseURL(base).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
		clientID:    config.Config("PAYOS_CLIENT_ID"),
		apiKey:      config.Config("PAYOS_API_KEY"),
		checksumKey: config.Config("PAYOS_CHECKSUM_KEY"),
	}
}

type PaymentLink struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkoutUrl"`
	PaymentID   string `json:"paymentLinkId"`
}

type gatewayResponse struct {
	Code string      `json:"code"`
	Desc string      `json:"desc"`
	Data PaymentLink `json:"data"`
}

func (s *PayOSService) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.checksumKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PayOSService) CreatePaymentLink(orderCode int64, amount int64, description, returnURL, cancelURL string) (*PaymentLink, error) {
	signature := s.sign(fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		amount, cancelURL, description, orderCode, returnURL))

	var result gatewayResponse
	resp, err := s.client.R().
		SetHeader("x-client-id", s.clientID).
		SetHeader("x-api-key", s.apiKey).
		SetBody(map[string]interface{}{
			"orderCode":   orderCode,
			"amount":      amount,
			"description": description,
			"returnUrl":   returnURL,
			"cancelUrl":   cancelURL,
			"signature":   signature,
		}).
		SetResult(&result).
		Post("/v2/payment-requests")
	if err != nil {
		return nil, err
	}
	if resp.IsError() || result.Code != "00" {
		return nil, fmt.Errorf("create payment link failed: status %s, code %s (%s)", resp.Status(), result.Code, result.Desc)
	}

	return &result.Data, nil
}

func (s *PayOSService) GetPaymentLinkInformation(orderCode int64) (*PaymentLink, error) {
	var result gatewayResponse
	resp, err := s.client.R().
		SetHeader("x-client-id", s.clientID).
		SetHeader("x-api-key", s.apiKey).
		SetResult(&result).
		Get(fmt.Sprintf("/v2/payment-requests/%d", orderCode))
	if err != nil {
		return nil, err
	}
	if resp.IsError() || result.Code != "00" {
		return nil, fmt.Errorf("get payment link failed: status %s, code %s (%s)", resp.Status(), result.Code, result.Desc)
	}

	return &result.Data, nil
}

func (s *PayOSService) CancelPaymentLink(orderCode int64, reason string) error {
	var result gatewayResponse
	resp, err := s.client.R().
		SetHeader("x-client-id", s.clientID).
		SetHeader("x-api-key", s.apiKey).
		SetBody(map[string]string{"cancellationReason": reason}).
		SetResult(&result).
		Post(fmt.Sprintf("/v2/payment-requests/%d/cancel", orderCode))
	if err != nil {
		return err
	}
	if resp.IsError() || result.Code != "00" {
		return fmt.Errorf("cancel payment link failed: status %s, code %s (%s)", resp.Status(), result.Code, result.Desc)
	}
	return nil
}

// VerifyWebhookSignature checks the gateway's HMAC over the webhook data
// fields, serialized as a sorted key=value query string.
func (s *PayOSService) VerifyWebhookSignature(data map[string]interface{}, signature string) bool {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+renderWebhookValue(data[k]))
	}

	expected := s.sign(strings.Join(pairs, "&"))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// renderWebhookValue reproduces the gateway's decimal rendering of each
// field. JSON decoding hands numeric values over as float64 (or json.Number
// when the decoder preserves them); %v would print large order codes in
// exponent notation and break the signature.
func renderWebhookValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
