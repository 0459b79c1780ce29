package donation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/distribution"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount   = errors.New("donation amount must be positive")
	ErrInvalidKind     = errors.New("donation kind must be ANIMAL or CAMPAIGN")
	ErrFeeExceedsTotal = errors.New("platform fee cannot exceed donation amount")
)

// Target is the tagged donation target variant: exactly one of an animal or a
// campaign, identified by Kind. Constructing it through AnimalTarget or
// CampaignTarget keeps the exactly-one invariant by construction.
type Target struct {
	Kind shared.DonationKind `json:"kind"`
	ID   uuid.UUID           `json:"id"`
}

// AnimalTarget returns a target referencing an animal
func AnimalTarget(animalID uuid.UUID) Target {
	return Target{Kind: shared.DonationKindAnimal, ID: animalID}
}

// CampaignTarget returns a target referencing a campaign
func CampaignTarget(campaignID uuid.UUID) Target {
	return Target{Kind: shared.DonationKindCampaign, ID: campaignID}
}

// Donation represents one monetary contribution from a donor to a target.
// Amounts are stored in currency minor units.
type Donation struct {
	ID             uuid.UUID               `json:"id"`
	DonorID        uuid.UUID               `json:"donor_id"`
	Target         Target                  `json:"target"`
	Amount         int64                   `json:"amount"`
	Currency       string                  `json:"currency"`
	IntentRef      string                  `json:"intent_ref"`
	ChargeRef      string                  `json:"charge_ref,omitempty"`
	Status         shared.DonationStatus   `json:"status"`
	PointsAwarded  int64                   `json:"points_awarded"`
	FeeAmount      int64                   `json:"fee_amount"`
	FeeBps         int32                   `json:"fee_bps"`
	Distribution   distribution.Allocation `json:"distribution"`
	RefundedAmount int64                   `json:"refunded_amount"`
	RefundReason   string                  `json:"refund_reason,omitempty"`
	RefundedAt     *time.Time              `json:"refunded_at,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	CompletedAt    *time.Time              `json:"completed_at,omitempty"`
}

// New creates a pending donation with the given parameters
func New(donorID uuid.UUID, target Target, amount int64, currency string, feeBps int32, feeAmount, points int64) (*Donation, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if target.Kind != shared.DonationKindAnimal && target.Kind != shared.DonationKindCampaign {
		return nil, ErrInvalidKind
	}
	if feeAmount > amount {
		return nil, ErrFeeExceedsTotal
	}

	return &Donation{
		ID:            uuid.New(),
		DonorID:       donorID,
		Target:        target,
		Amount:        amount,
		Currency:      currency,
		Status:        shared.DonationStatusPending,
		PointsAwarded: points,
		FeeAmount:     feeAmount,
		FeeBps:        feeBps,
		CreatedAt:     time.Now(),
	}, nil
}

// ShelterShare is the amount forwarded to the beneficiary: amount minus fee
func (d *Donation) ShelterShare() int64 {
	return d.Amount - d.FeeAmount
}

// RemainingAmount is the portion not yet refunded
func (d *Donation) RemainingAmount() int64 {
	return d.Amount - d.RefundedAmount
}

// MarkCompleted transitions the donation from PENDING to COMPLETED and records
// the processor's settlement reference. Only the confirmation transaction may
// call this, and only once per donation.
func (d *Donation) MarkCompleted(chargeRef string, at time.Time) error {
	if d.Status != shared.DonationStatusPending {
		return ErrInvalidTransition{From: d.Status, To: shared.DonationStatusCompleted}
	}
	d.Status = shared.DonationStatusCompleted
	d.ChargeRef = chargeRef
	d.CompletedAt = &at
	return nil
}

// MarkFailed transitions the donation from PENDING to FAILED
func (d *Donation) MarkFailed() error {
	if d.Status != shared.DonationStatusPending {
		return ErrInvalidTransition{From: d.Status, To: shared.DonationStatusFailed}
	}
	d.Status = shared.DonationStatusFailed
	return nil
}

// ApplyRefund records a refunded amount. The status flips to REFUNDED only
// when the donation is fully refunded; partial refunds leave it COMPLETED so
// the remainder stays refundable.
func (d *Donation) ApplyRefund(amount int64, reason string, at time.Time) error {
	if d.Status != shared.DonationStatusCompleted {
		return ErrInvalidTransition{From: d.Status, To: shared.DonationStatusRefunded}
	}
	if amount <= 0 || amount > d.RemainingAmount() {
		return ErrRefundExceedsRemaining{DonationID: d.ID, Requested: amount, Remaining: d.RemainingAmount()}
	}

	d.RefundedAmount += amount
	d.RefundReason = reason
	d.RefundedAt = &at
	if d.RefundedAmount >= d.Amount {
		d.Status = shared.DonationStatusRefunded
	}
	return nil
}
