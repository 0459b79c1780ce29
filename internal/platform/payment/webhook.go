package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// webhookTolerance bounds how stale a signed timestamp may be before the
// payload is rejected as a possible replay
const webhookTolerance = 5 * time.Minute

// webhookEnvelope is the processor's wire format for webhook deliveries
type webhookEnvelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID           string `json:"id"`
			LatestCharge string `json:"latest_charge"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyWebhookSignature checks the signature header against the raw payload
// and returns the decoded event. The header carries a unix timestamp and one
// or more HMAC-SHA256 signatures over "{timestamp}.{payload}".
func (c *HTTPClient) VerifyWebhookSignature(payload []byte, sigHeader string) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if time.Since(time.Unix(timestamp, 0)) > webhookTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := computeSignature(c.webhookSecret, timestamp, payload)
	valid := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	return &Event{
		ID:        envelope.ID,
		Type:      envelope.Type,
		IntentID:  envelope.Data.Object.ID,
		ChargeRef: envelope.Data.Object.LatestCharge,
		CreatedAt: time.Unix(envelope.Created, 0),
	}, nil
}

// parseSignatureHeader splits a "t=<unix>,v1=<hex>[,v1=<hex>...]" header
func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}

	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: malformed timestamp", ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: malformed signature header", ErrInvalidSignature)
	}
	return timestamp, signatures, nil
}

// computeSignature signs "{timestamp}.{payload}" with HMAC-SHA256
func computeSignature(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPayload produces a signature header for a payload. Used by tests and
// local development tooling to simulate processor deliveries.
func SignPayload(secret string, timestamp time.Time, payload []byte) string {
	ts := timestamp.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeSignature(secret, ts, payload))
}
