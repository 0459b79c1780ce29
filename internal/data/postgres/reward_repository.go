package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/reward"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
)

// RewardRepository implements the reward.Repository interface for PostgreSQL.
// The reward ledger is append-only: this type deliberately exposes no update
// or delete operation.
type RewardRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRewardRepository creates a new PostgreSQL reward ledger repository
func NewRewardRepository(logger *slog.Logger, db *persistence.PostgresDB) reward.Repository {
	return &RewardRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *RewardRepository) WithTx(tx pgx.Tx) reward.Repository {
	return &RewardRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores a new ledger entry
func (r *RewardRepository) Append(ctx context.Context, entry *reward.Entry) error {
	query := `
		INSERT INTO reward_ledger (id, donor_id, delta, kind, donation_id, animal_id, description, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.DonorID,
		entry.Delta,
		entry.Kind,
		entry.DonationID,
		entry.AnimalID,
		entry.Description,
		entry.BalanceAfter,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append reward ledger entry", "donor_id", entry.DonorID.String(), "error", err)
		return fmt.Errorf("failed to append reward ledger entry: %w", err)
	}

	return nil
}

// ListByDonor returns the donor's ledger entries newest first
func (r *RewardRepository) ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*reward.Entry, error) {
	query := `
		SELECT id, donor_id, delta, kind, donation_id, animal_id, description, balance_after, created_at
		FROM reward_ledger
		WHERE donor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, donorID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list reward ledger entries", "donor_id", donorID.String(), "error", err)
		return nil, fmt.Errorf("failed to list reward ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*reward.Entry
	for rows.Next() {
		var e reward.Entry
		err := rows.Scan(
			&e.ID,
			&e.DonorID,
			&e.Delta,
			&e.Kind,
			&e.DonationID,
			&e.AnimalID,
			&e.Description,
			&e.BalanceAfter,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward ledger row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reward ledger rows: %w", err)
	}

	return entries, nil
}

// CountByDonor returns the total number of ledger entries for a donor
func (r *RewardRepository) CountByDonor(ctx context.Context, donorID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reward_ledger WHERE donor_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, donorID).Scan(&count); err != nil {
		r.logger.Error("Failed to count reward ledger entries", "donor_id", donorID.String(), "error", err)
		return 0, fmt.Errorf("failed to count reward ledger entries: %w", err)
	}

	return count, nil
}

// SumByDonor recomputes the donor's balance from the ledger
func (r *RewardRepository) SumByDonor(ctx context.Context, donorID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(delta), 0) FROM reward_ledger WHERE donor_id = $1`

	var sum int64
	if err := r.querier.QueryRow(ctx, query, donorID).Scan(&sum); err != nil {
		r.logger.Error("Failed to sum reward ledger entries", "donor_id", donorID.String(), "error", err)
		return 0, fmt.Errorf("failed to sum reward ledger entries: %w", err)
	}

	return sum, nil
}
