// Package payment wraps the external card processor behind a small interface.
// The engine never trusts processor calls to be on the critical path of a
// database transaction without a bounded timeout.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// IntentStatus mirrors the processor's payment intent lifecycle
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusSucceeded IntentStatus = "succeeded"
	IntentStatusFailed    IntentStatus = "failed"
)

// Intent is a payment authorization held at the processor
type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
	Amount       int64
	Currency     string
	ChargeRef    string // Set once the charge settles
}

// Settled reports whether the funds have been captured
func (i *Intent) Settled() bool {
	return i.Status == IntentStatusSucceeded
}

// Refund is the processor's record of a reversal against an intent
type Refund struct {
	ID     string
	Status string
	Amount int64
}

// Event is a verified webhook notification from the processor
type Event struct {
	ID        string
	Type      string
	IntentID  string
	ChargeRef string
	CreatedAt time.Time
}

// Webhook event types the engine reacts to
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Processor is the engine's view of the card processor
type Processor interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	CreateRefund(ctx context.Context, intentID string, amount int64) (*Refund, error)
	VerifyWebhookSignature(payload []byte, sigHeader string) (*Event, error)
}

// ErrInvalidSignature indicates a webhook payload that failed HMAC verification
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// ProcessorError wraps a failed processor call with enough context to decide
// whether the caller should retry
type ProcessorError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProcessorError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment processor %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("payment processor %s failed: %v", e.Op, e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying
func (e *ProcessorError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}
