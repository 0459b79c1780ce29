package payment

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(secret string) *HTTPClient {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewHTTPClient(logger, &config.PaymentConfig{
		BaseURL:        "https://api.example.com",
		APIKey:         "sk_test_key",
		WebhookSecret:  secret,
		RequestTimeout: 5 * time.Second,
		Currency:       "USD",
	})
}

func TestVerifyWebhookSignature_Valid(t *testing.T) {
	client := newTestClient("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","created":1700000000,"data":{"object":{"id":"pi_123","latest_charge":"ch_456"}}}`)

	header := SignPayload("whsec_test", time.Now(), payload)

	event, err := client.VerifyWebhookSignature(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_123", event.IntentID)
	assert.Equal(t, "ch_456", event.ChargeRef)
}

func TestVerifyWebhookSignature_WrongSecret(t *testing.T) {
	client := newTestClient("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	header := SignPayload("whsec_other", time.Now(), payload)

	_, err := client.VerifyWebhookSignature(payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookSignature_TamperedPayload(t *testing.T) {
	client := newTestClient("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	header := SignPayload("whsec_test", time.Now(), payload)

	tampered := []byte(`{"id":"evt_2","type":"payment_intent.succeeded"}`)
	_, err := client.VerifyWebhookSignature(tampered, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookSignature_StaleTimestamp(t *testing.T) {
	client := newTestClient("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	header := SignPayload("whsec_test", time.Now().Add(-10*time.Minute), payload)

	_, err := client.VerifyWebhookSignature(payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookSignature_MalformedHeader(t *testing.T) {
	client := newTestClient("whsec_test")
	payload := []byte(`{}`)

	cases := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"missing signature", "t=1700000000"},
		{"missing timestamp", "v1=deadbeef"},
		{"garbage timestamp", "t=abc,v1=deadbeef"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.VerifyWebhookSignature(payload, tc.header)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}
