package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/animal"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
)

// AnimalRepository implements the animal.Repository interface for PostgreSQL
type AnimalRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAnimalRepository creates a new PostgreSQL animal repository
func NewAnimalRepository(logger *slog.Logger, db *persistence.PostgresDB) animal.Repository {
	return &AnimalRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *AnimalRepository) WithTx(tx pgx.Tx) animal.Repository {
	return &AnimalRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const animalColumns = `
		id, name, shelter_name, status,
		medical_goal, medical_raised, food_goal, food_raised,
		preventive_goal, preventive_raised, other_goal, other_raised,
		last_reset_at, monthly_total, lifetime_total,
		version, created_at, updated_at`

func scanAnimal(row pgx.Row) (*animal.Animal, error) {
	var a animal.Animal
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.ShelterName,
		&a.Status,
		&a.Care.MedicalGoal,
		&a.Care.MedicalRaised,
		&a.Care.FoodGoal,
		&a.Care.FoodRaised,
		&a.Care.PreventiveGoal,
		&a.Care.PreventiveRaised,
		&a.Care.OtherGoal,
		&a.Care.OtherRaised,
		&a.Care.LastResetAt,
		&a.MonthlyTotal,
		&a.LifetimeTotal,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an animal by its ID
func (r *AnimalRepository) GetByID(ctx context.Context, id uuid.UUID) (*animal.Animal, error) {
	query := `SELECT` + animalColumns + `
		FROM animals
		WHERE id = $1
	`

	a, err := scanAnimal(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, animal.ErrAnimalNotFound{ID: id}
		}
		r.logger.Error("Failed to get animal", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get animal: %w", err)
	}

	return a, nil
}

// LockForUpdate obtains a pessimistic lock on the animal and returns its
// current state. Must be used within a transaction.
func (r *AnimalRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*animal.Animal, error) {
	query := `SELECT` + animalColumns + `
		FROM animals
		WHERE id = $1
		FOR UPDATE
	`

	a, err := scanAnimal(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, animal.ErrAnimalNotFound{ID: id}
		}
		r.logger.Error("Failed to lock animal for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock animal for update: %w", err)
	}

	return a, nil
}

// Update rewrites the animal's counters using optimistic locking on version
func (r *AnimalRepository) Update(ctx context.Context, a *animal.Animal) error {
	query := `
		UPDATE animals
		SET status = $1,
			medical_raised = $2, food_raised = $3, preventive_raised = $4, other_raised = $5,
			last_reset_at = $6, monthly_total = $7, lifetime_total = $8,
			version = $9, updated_at = $10
		WHERE id = $11 AND version = $12
	`

	result, err := r.querier.Exec(ctx, query,
		a.Status,
		a.Care.MedicalRaised,
		a.Care.FoodRaised,
		a.Care.PreventiveRaised,
		a.Care.OtherRaised,
		a.Care.LastResetAt,
		a.MonthlyTotal,
		a.LifetimeTotal,
		a.Version,
		a.UpdatedAt,
		a.ID,
		a.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update animal", "id", a.ID.String(), "error", err)
		return fmt.Errorf("failed to update animal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return animal.ErrConcurrentModification{ID: a.ID}
	}

	return nil
}

// ListGoalResetDue returns animals still accepting donations whose last goal
// reset is older than cutoff
func (r *AnimalRepository) ListGoalResetDue(ctx context.Context, cutoff time.Time, limit int) ([]*animal.Animal, error) {
	query := `SELECT` + animalColumns + `
		FROM animals
		WHERE status = $1 AND last_reset_at <= $2
		ORDER BY last_reset_at ASC
		LIMIT $3
	`

	rows, err := r.querier.Query(ctx, query, animal.StatusAvailable, cutoff, limit)
	if err != nil {
		r.logger.Error("Failed to list animals due for goal reset", "error", err)
		return nil, fmt.Errorf("failed to list animals due for goal reset: %w", err)
	}
	defer rows.Close()

	var animals []*animal.Animal
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan animal row: %w", err)
		}
		animals = append(animals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate animal rows: %w", err)
	}

	return animals, nil
}

// ResetGoals atomically zeroes the category totals and monthly counter and
// stamps the reset time. The update is guarded on the previous reset
// timestamp: if a concurrent confirmation already folded the reset in, zero
// rows match and ErrConcurrentReset is returned.
func (r *AnimalRepository) ResetGoals(ctx context.Context, id uuid.UUID, previousResetAt, now time.Time) error {
	query := `
		UPDATE animals
		SET medical_raised = 0, food_raised = 0, preventive_raised = 0, other_raised = 0,
			monthly_total = 0, last_reset_at = $1,
			version = version + 1, updated_at = $1
		WHERE id = $2 AND last_reset_at = $3
	`

	result, err := r.querier.Exec(ctx, query, now, id, previousResetAt)
	if err != nil {
		r.logger.Error("Failed to reset animal goals", "id", id.String(), "error", err)
		return fmt.Errorf("failed to reset animal goals: %w", err)
	}

	if result.RowsAffected() == 0 {
		return animal.ErrConcurrentReset{ID: id}
	}

	return nil
}
