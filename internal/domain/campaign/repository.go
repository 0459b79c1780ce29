package campaign

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines campaign persistence operations
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// LockForUpdate acquires a pessimistic lock for the confirmation and
	// refund transactions
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Campaign, error)

	Update(ctx context.Context, c *Campaign) error
	WithTx(tx pgx.Tx) Repository
}

// ErrCampaignNotFound indicates a missing campaign
type ErrCampaignNotFound struct {
	ID uuid.UUID
}

func (e ErrCampaignNotFound) Error() string {
	return "campaign not found: " + e.ID.String()
}

func (e ErrCampaignNotFound) Is(target error) bool {
	t, ok := target.(ErrCampaignNotFound)
	if !ok {
		return false
	}
	return t.ID == uuid.Nil || e.ID == t.ID
}

// ErrNotAcceptingDonations indicates the campaign cannot receive donations,
// either because it is not ACTIVE or because its end date has passed
type ErrNotAcceptingDonations struct {
	ID     uuid.UUID
	Status Status
}

func (e ErrNotAcceptingDonations) Error() string {
	return "campaign " + e.ID.String() + " is not accepting donations, status is " + string(e.Status)
}

func (e ErrNotAcceptingDonations) Is(target error) bool {
	_, ok := target.(ErrNotAcceptingDonations)
	return ok
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	ID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for campaign: " + e.ID.String()
}
