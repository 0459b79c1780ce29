package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/campaign"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
)

// CampaignRepository implements the campaign.Repository interface for PostgreSQL
type CampaignRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCampaignRepository creates a new PostgreSQL campaign repository
func NewCampaignRepository(logger *slog.Logger, db *persistence.PostgresDB) campaign.Repository {
	return &CampaignRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *CampaignRepository) WithTx(tx pgx.Tx) campaign.Repository {
	return &CampaignRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const campaignColumns = `
		id, title, shelter_name, goal_amount, raised_amount, status,
		priority_tier, duration_weeks, ends_at, version, created_at, updated_at`

func scanCampaign(row pgx.Row) (*campaign.Campaign, error) {
	var c campaign.Campaign
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.ShelterName,
		&c.GoalAmount,
		&c.RaisedAmount,
		&c.Status,
		&c.PriorityTier,
		&c.DurationWeeks,
		&c.EndsAt,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a campaign by its ID
func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	query := `SELECT` + campaignColumns + `
		FROM campaigns
		WHERE id = $1
	`

	c, err := scanCampaign(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, campaign.ErrCampaignNotFound{ID: id}
		}
		r.logger.Error("Failed to get campaign", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return c, nil
}

// LockForUpdate obtains a pessimistic lock on the campaign and returns its
// current state. Must be used within a transaction.
func (r *CampaignRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	query := `SELECT` + campaignColumns + `
		FROM campaigns
		WHERE id = $1
		FOR UPDATE
	`

	c, err := scanCampaign(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, campaign.ErrCampaignNotFound{ID: id}
		}
		r.logger.Error("Failed to lock campaign for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock campaign for update: %w", err)
	}

	return c, nil
}

// Update rewrites the campaign's mutable fields using optimistic locking
func (r *CampaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	query := `
		UPDATE campaigns
		SET raised_amount = $1, status = $2, version = $3, updated_at = $4
		WHERE id = $5 AND version = $6
	`

	result, err := r.querier.Exec(ctx, query,
		c.RaisedAmount,
		c.Status,
		c.Version,
		c.UpdatedAt,
		c.ID,
		c.Version-1,
	)
	if err != nil {
		r.logger.Error("Failed to update campaign", "id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to update campaign: %w", err)
	}

	if result.RowsAffected() == 0 {
		return campaign.ErrConcurrentModification{ID: c.ID}
	}

	return nil
}
