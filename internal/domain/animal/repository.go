package animal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines animal persistence operations
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Animal, error)

	// LockForUpdate acquires a pessimistic lock for the confirmation and
	// refund transactions
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Animal, error)

	Update(ctx context.Context, a *Animal) error

	// ListGoalResetDue returns animals still accepting donations whose last
	// goal reset is older than cutoff
	ListGoalResetDue(ctx context.Context, cutoff time.Time, limit int) ([]*Animal, error)

	// ResetGoals atomically zeroes the category totals and monthly counter
	// and stamps the reset time, guarded on the previous reset timestamp so a
	// reset folded into a concurrent confirmation wins over the sweeper.
	ResetGoals(ctx context.Context, id uuid.UUID, previousResetAt, now time.Time) error

	WithTx(tx pgx.Tx) Repository
}

// ErrAnimalNotFound indicates a missing animal
type ErrAnimalNotFound struct {
	ID uuid.UUID
}

func (e ErrAnimalNotFound) Error() string {
	return "animal not found: " + e.ID.String()
}

func (e ErrAnimalNotFound) Is(target error) bool {
	t, ok := target.(ErrAnimalNotFound)
	if !ok {
		return false
	}
	return t.ID == uuid.Nil || e.ID == t.ID
}

// ErrNotAcceptingDonations indicates the animal is not open for donations
type ErrNotAcceptingDonations struct {
	ID     uuid.UUID
	Status Status
}

func (e ErrNotAcceptingDonations) Error() string {
	return "animal " + e.ID.String() + " is not accepting donations, status is " + string(e.Status)
}

func (e ErrNotAcceptingDonations) Is(target error) bool {
	_, ok := target.(ErrNotAcceptingDonations)
	return ok
}

// ErrConcurrentReset indicates the conditional goal reset matched no row
// because the reset timestamp moved underneath the sweeper. Benign: the reset
// already happened elsewhere.
type ErrConcurrentReset struct {
	ID uuid.UUID
}

func (e ErrConcurrentReset) Error() string {
	return "goal reset already applied concurrently for animal: " + e.ID.String()
}

func (e ErrConcurrentReset) Is(target error) bool {
	_, ok := target.(ErrConcurrentReset)
	return ok
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	ID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for animal: " + e.ID.String()
}
