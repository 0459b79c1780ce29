// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the donation engine.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
)

// DonationRepository implements the donation.Repository interface for PostgreSQL
type DonationRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewDonationRepository creates a new PostgreSQL donation repository
func NewDonationRepository(logger *slog.Logger, db *persistence.PostgresDB) donation.Repository {
	return &DonationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *DonationRepository) WithTx(tx pgx.Tx) donation.Repository {
	return &DonationRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const donationColumns = `
		id, donor_id, target_kind, target_id, amount, currency, intent_ref,
		charge_ref, status, points_awarded, fee_amount, fee_bps,
		dist_medical, dist_food, dist_preventive, dist_other,
		refunded_amount, refund_reason, refunded_at, created_at, completed_at`

// Create stores a new donation. The intent_ref unique constraint rejects a
// second donation against the same payment intent.
func (r *DonationRepository) Create(ctx context.Context, d *donation.Donation) error {
	query := `
		INSERT INTO donations (
			id, donor_id, target_kind, target_id, amount, currency, intent_ref,
			charge_ref, status, points_awarded, fee_amount, fee_bps,
			dist_medical, dist_food, dist_preventive, dist_other,
			refunded_amount, refund_reason, refunded_at, created_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.querier.Exec(ctx, query,
		d.ID,
		d.DonorID,
		d.Target.Kind,
		d.Target.ID,
		d.Amount,
		d.Currency,
		d.IntentRef,
		d.ChargeRef,
		d.Status,
		d.PointsAwarded,
		d.FeeAmount,
		d.FeeBps,
		d.Distribution.Medical,
		d.Distribution.Food,
		d.Distribution.Preventive,
		d.Distribution.Other,
		d.RefundedAmount,
		d.RefundReason,
		d.RefundedAt,
		d.CreatedAt,
		d.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create donation", "error", err)
		return fmt.Errorf("failed to create donation: %w", err)
	}

	return nil
}

func (r *DonationRepository) scanDonation(row pgx.Row) (*donation.Donation, error) {
	var d donation.Donation
	err := row.Scan(
		&d.ID,
		&d.DonorID,
		&d.Target.Kind,
		&d.Target.ID,
		&d.Amount,
		&d.Currency,
		&d.IntentRef,
		&d.ChargeRef,
		&d.Status,
		&d.PointsAwarded,
		&d.FeeAmount,
		&d.FeeBps,
		&d.Distribution.Medical,
		&d.Distribution.Food,
		&d.Distribution.Preventive,
		&d.Distribution.Other,
		&d.RefundedAmount,
		&d.RefundReason,
		&d.RefundedAt,
		&d.CreatedAt,
		&d.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID retrieves a donation by its ID
func (r *DonationRepository) GetByID(ctx context.Context, id uuid.UUID) (*donation.Donation, error) {
	query := `SELECT` + donationColumns + `
		FROM donations
		WHERE id = $1
	`

	d, err := r.scanDonation(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, donation.ErrDonationNotFound{ID: id}
		}
		r.logger.Error("Failed to get donation", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	return d, nil
}

// GetByIntentRef retrieves a donation by its payment intent reference
func (r *DonationRepository) GetByIntentRef(ctx context.Context, intentRef string) (*donation.Donation, error) {
	query := `SELECT` + donationColumns + `
		FROM donations
		WHERE intent_ref = $1
	`

	d, err := r.scanDonation(r.querier.QueryRow(ctx, query, intentRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, donation.ErrIntentNotFound{IntentRef: intentRef}
		}
		r.logger.Error("Failed to get donation by intent", "intent_ref", intentRef, "error", err)
		return nil, fmt.Errorf("failed to get donation by intent: %w", err)
	}

	return d, nil
}

// LockByIntentRef obtains a pessimistic lock on the donation row for the
// duration of the surrounding transaction. Concurrent confirmations of the
// same intent serialize here; the loser observes a non-PENDING status.
func (r *DonationRepository) LockByIntentRef(ctx context.Context, intentRef string) (*donation.Donation, error) {
	query := `SELECT` + donationColumns + `
		FROM donations
		WHERE intent_ref = $1
		FOR UPDATE
	`

	d, err := r.scanDonation(r.querier.QueryRow(ctx, query, intentRef))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, donation.ErrIntentNotFound{IntentRef: intentRef}
		}
		r.logger.Error("Failed to lock donation by intent", "intent_ref", intentRef, "error", err)
		return nil, fmt.Errorf("failed to lock donation by intent: %w", err)
	}

	return d, nil
}

// LockByID obtains a pessimistic lock on the donation row. Refunds lock here
// so they serialize against confirmation and against each other.
func (r *DonationRepository) LockByID(ctx context.Context, id uuid.UUID) (*donation.Donation, error) {
	query := `SELECT` + donationColumns + `
		FROM donations
		WHERE id = $1
		FOR UPDATE
	`

	d, err := r.scanDonation(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, donation.ErrDonationNotFound{ID: id}
		}
		r.logger.Error("Failed to lock donation", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock donation: %w", err)
	}

	return d, nil
}

// Update rewrites the mutable fields of an existing donation
func (r *DonationRepository) Update(ctx context.Context, d *donation.Donation) error {
	query := `
		UPDATE donations
		SET charge_ref = $1, status = $2, points_awarded = $3,
			dist_medical = $4, dist_food = $5, dist_preventive = $6, dist_other = $7,
			refunded_amount = $8, refund_reason = $9, refunded_at = $10, completed_at = $11
		WHERE id = $12
	`

	result, err := r.querier.Exec(ctx, query,
		d.ChargeRef,
		d.Status,
		d.PointsAwarded,
		d.Distribution.Medical,
		d.Distribution.Food,
		d.Distribution.Preventive,
		d.Distribution.Other,
		d.RefundedAmount,
		d.RefundReason,
		d.RefundedAt,
		d.CompletedAt,
		d.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update donation", "id", d.ID.String(), "error", err)
		return fmt.Errorf("failed to update donation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return donation.ErrDonationNotFound{ID: d.ID}
	}

	return nil
}

// UpdateChargeRef records the processor's settlement reference without
// touching any other field
func (r *DonationRepository) UpdateChargeRef(ctx context.Context, id uuid.UUID, chargeRef string) error {
	query := `
		UPDATE donations
		SET charge_ref = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, chargeRef, id)
	if err != nil {
		r.logger.Error("Failed to update donation charge ref", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update donation charge ref: %w", err)
	}

	if result.RowsAffected() == 0 {
		return donation.ErrDonationNotFound{ID: id}
	}

	return nil
}
