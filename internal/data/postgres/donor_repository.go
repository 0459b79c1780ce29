package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/donor"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
)

// DonorRepository implements the donor.Repository interface for PostgreSQL
type DonorRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewDonorRepository creates a new PostgreSQL donor repository
func NewDonorRepository(logger *slog.Logger, db *persistence.PostgresDB) donor.Repository {
	return &DonorRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *DonorRepository) WithTx(tx pgx.Tx) donor.Repository {
	return &DonorRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByID retrieves a donor by its ID
func (r *DonorRepository) GetByID(ctx context.Context, id uuid.UUID) (*donor.Donor, error) {
	query := `
		SELECT id, name, email, reward_points, created_at, updated_at
		FROM donors
		WHERE id = $1
	`

	var d donor.Donor
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Name,
		&d.Email,
		&d.RewardPoints,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, donor.ErrDonorNotFound{ID: id}
		}
		r.logger.Error("Failed to get donor", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}

	return &d, nil
}

// LockForUpdate obtains a pessimistic lock on the donor row so the cached
// balance rewrite and the ledger append commit together
func (r *DonorRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*donor.Donor, error) {
	query := `
		SELECT id, name, email, reward_points, created_at, updated_at
		FROM donors
		WHERE id = $1
		FOR UPDATE
	`

	var d donor.Donor
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Name,
		&d.Email,
		&d.RewardPoints,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, donor.ErrDonorNotFound{ID: id}
		}
		r.logger.Error("Failed to lock donor for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock donor for update: %w", err)
	}

	return &d, nil
}

// UpdateRewardPoints rewrites the cached balance projection
func (r *DonorRepository) UpdateRewardPoints(ctx context.Context, id uuid.UUID, balance int64) error {
	query := `
		UPDATE donors
		SET reward_points = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, balance, id)
	if err != nil {
		r.logger.Error("Failed to update donor reward points", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update donor reward points: %w", err)
	}

	if result.RowsAffected() == 0 {
		return donor.ErrDonorNotFound{ID: id}
	}

	return nil
}
