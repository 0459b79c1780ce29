package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/donor"
	"github.com/pawhaven-donation-engine/internal/domain/reward"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
)

// CreateIntentCommand captures a donor's request to start a donation
type CreateIntentCommand struct {
	DonorID       uuid.UUID
	Target        donation.Target
	Amount        int64
	CorrelationID string
}

// IntentResult carries the pending donation and the processor's client secret,
// which the frontend needs to collect the payment
type IntentResult struct {
	Donation     *donation.Donation
	ClientSecret string
}

// ConfirmCommand captures a request to settle a pending donation
type ConfirmCommand struct {
	IntentRef     string
	DonorID       uuid.UUID
	CorrelationID string
}

// ConfirmResult carries the completed donation and details about the
// beneficiary it was applied to
type ConfirmResult struct {
	Donation          *donation.Donation
	TargetName        string
	ShelterName       string
	CampaignCompleted bool
	RewardBalance     int64
}

// RefundCommand captures a refund request against a completed donation.
// A zero Amount means a full refund of the remaining unrefunded portion.
type RefundCommand struct {
	DonationID    uuid.UUID
	DonorID       uuid.UUID
	Amount        int64
	Reason        string
	Initiator     shared.RefundInitiator
	CorrelationID string
}

// RewardHistory is a page of a donor's reward ledger plus the cached balance
type RewardHistory struct {
	Donor   *donor.Donor
	Entries []*reward.Entry
	Total   int64
}

// DonationService defines the donation reconciliation operations
type DonationService interface {
	CreateIntent(ctx context.Context, cmd *CreateIntentCommand) (*IntentResult, error)
	Confirm(ctx context.Context, cmd *ConfirmCommand) (*ConfirmResult, error)
	Refund(ctx context.Context, cmd *RefundCommand) (*donation.Donation, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
	GetDonation(ctx context.Context, id uuid.UUID) (*donation.Donation, error)
	GetRewardHistory(ctx context.Context, donorID uuid.UUID, limit, offset int) (*RewardHistory, error)
}

// AppliedTarget describes the beneficiary a donation was applied to
type AppliedTarget struct {
	TargetName        string
	ShelterName       string
	CampaignCompleted bool
}

// BeneficiaryManager applies confirmed donations to their target and reverses
// refunded shares. All operations run inside the caller's transaction.
type BeneficiaryManager interface {
	// ApplyDonation folds the donation into the target's running totals and
	// fills in the donation's care distribution for animal targets
	ApplyDonation(ctx context.Context, tx pgx.Tx, d *donation.Donation, now time.Time) (*AppliedTarget, error)

	// ReverseDonation rolls the target's totals back by the refunded share
	ReverseDonation(ctx context.Context, tx pgx.Tx, d *donation.Donation, refundShare int64, now time.Time) error
}

// RewardManager maintains the donor reward ledger and its cached balance
// projection. All operations run inside the caller's transaction.
type RewardManager interface {
	// Credit awards the donation's points and returns the new balance
	Credit(ctx context.Context, tx pgx.Tx, d *donation.Donation) (int64, error)

	// Debit claws back points proportional to the donation's refunded total,
	// which must already include refundAmount, capped at the donor's current
	// balance. Returns the points actually debited.
	Debit(ctx context.Context, tx pgx.Tx, d *donation.Donation, refundAmount int64) (int64, error)

	// Bonus grants goodwill points outside the donation formula
	Bonus(ctx context.Context, tx pgx.Tx, donorID, donationID uuid.UUID, points int64, description string) error
}

// OutboxManager records donation events for reliable publishing. Events are
// written in the same transaction as the business mutation they describe.
type OutboxManager interface {
	RecordCompleted(ctx context.Context, tx pgx.Tx, d *donation.Donation, correlationID string) error
	RecordRefunded(ctx context.Context, tx pgx.Tx, d *donation.Donation, refundAmount, pointsDebited int64, correlationID string) error
}
