package donor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Donor represents a donating user. RewardPoints is a cached projection of the
// reward ledger: it must always equal the sum of all ledger entries for the
// donor, and is only ever rewritten in the same transaction as a ledger
// append.
type Donor struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RewardPoints int64     `json:"reward_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository defines donor persistence operations
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Donor, error)

	// LockForUpdate acquires a pessimistic lock on the donor row so the
	// cached balance and the ledger append commit together
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Donor, error)

	// UpdateRewardPoints rewrites the cached balance projection
	UpdateRewardPoints(ctx context.Context, id uuid.UUID, balance int64) error

	WithTx(tx pgx.Tx) Repository
}

// ErrDonorNotFound indicates a missing donor
type ErrDonorNotFound struct {
	ID uuid.UUID
}

func (e ErrDonorNotFound) Error() string {
	return "donor not found: " + e.ID.String()
}

func (e ErrDonorNotFound) Is(target error) bool {
	t, ok := target.(ErrDonorNotFound)
	if !ok {
		return false
	}
	return t.ID == uuid.Nil || e.ID == t.ID
}
