package donation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
)

// Repository defines donation persistence operations
type Repository interface {
	Create(ctx context.Context, d *Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donation, error)
	GetByIntentRef(ctx context.Context, intentRef string) (*Donation, error)

	// LockByIntentRef acquires an exclusive row lock on the donation for the
	// duration of the surrounding transaction. This serializes confirmation
	// and refund against each other on the same donation.
	LockByIntentRef(ctx context.Context, intentRef string) (*Donation, error)
	LockByID(ctx context.Context, id uuid.UUID) (*Donation, error)

	Update(ctx context.Context, d *Donation) error

	// UpdateChargeRef records the processor's settlement reference without
	// touching any other field. Used by the webhook reconciler only.
	UpdateChargeRef(ctx context.Context, id uuid.UUID, chargeRef string) error

	WithTx(tx pgx.Tx) Repository
}

// ErrDonationNotFound indicates a missing donation
type ErrDonationNotFound struct {
	ID uuid.UUID
}

func (e ErrDonationNotFound) Error() string {
	return "donation not found: " + e.ID.String()
}

func (e ErrDonationNotFound) Is(target error) bool {
	t, ok := target.(ErrDonationNotFound)
	if !ok {
		return false
	}
	return t.ID == uuid.Nil || e.ID == t.ID
}

// ErrIntentNotFound indicates no donation exists for a payment intent reference
type ErrIntentNotFound struct {
	IntentRef string
}

func (e ErrIntentNotFound) Error() string {
	return "no donation found for payment intent: " + e.IntentRef
}

func (e ErrIntentNotFound) Is(target error) bool {
	t, ok := target.(ErrIntentNotFound)
	if !ok {
		return false
	}
	return t.IntentRef == "" || e.IntentRef == t.IntentRef
}

// ErrAlreadyProcessed indicates the donation is no longer PENDING when a
// confirmation was attempted, or no longer refundable when a refund was.
// Callers must re-fetch state rather than retry.
type ErrAlreadyProcessed struct {
	ID     uuid.UUID
	Status shared.DonationStatus
}

func (e ErrAlreadyProcessed) Error() string {
	return fmt.Sprintf("donation %s already processed, status is %s", e.ID, e.Status)
}

func (e ErrAlreadyProcessed) Is(target error) bool {
	_, ok := target.(ErrAlreadyProcessed)
	return ok
}

// ErrInvalidTransition indicates a forbidden status transition
type ErrInvalidTransition struct {
	From shared.DonationStatus
	To   shared.DonationStatus
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid donation status transition %s -> %s", e.From, e.To)
}

// ErrAmountOutOfBounds indicates a donation amount outside the configured band
type ErrAmountOutOfBounds struct {
	Amount int64
	Min    int64
	Max    int64
}

func (e ErrAmountOutOfBounds) Error() string {
	return fmt.Sprintf("donation amount %d outside allowed range [%d, %d]", e.Amount, e.Min, e.Max)
}

func (e ErrAmountOutOfBounds) Is(target error) bool {
	_, ok := target.(ErrAmountOutOfBounds)
	return ok
}

// ErrRefundExceedsRemaining indicates a refund larger than the unrefunded part
type ErrRefundExceedsRemaining struct {
	DonationID uuid.UUID
	Requested  int64
	Remaining  int64
}

func (e ErrRefundExceedsRemaining) Error() string {
	return fmt.Sprintf("refund of %d exceeds remaining amount %d for donation %s", e.Requested, e.Remaining, e.DonationID)
}

func (e ErrRefundExceedsRemaining) Is(target error) bool {
	_, ok := target.(ErrRefundExceedsRemaining)
	return ok
}

// ErrNotSettled indicates the processor has not confirmed settlement for the
// intent; the donation stays PENDING and the confirmation is safely retryable.
type ErrNotSettled struct {
	IntentRef string
	Status    string
}

func (e ErrNotSettled) Error() string {
	return fmt.Sprintf("payment intent %s is not settled, processor status is %q", e.IntentRef, e.Status)
}

func (e ErrNotSettled) Is(target error) bool {
	_, ok := target.(ErrNotSettled)
	return ok
}
