package reward

import (
	"time"

	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
)

// Entry is one append-only reward point movement. Entries are never edited or
// deleted, only appended, so the ledger is reconstructible and auditable
// independent of the donor's cached balance. BalanceAfter snapshots the
// donor's running total strictly after applying this entry.
type Entry struct {
	ID           uuid.UUID           `json:"id"`
	DonorID      uuid.UUID           `json:"donor_id"`
	Delta        int64               `json:"delta"`
	Kind         shared.MovementKind `json:"kind"`
	DonationID   *uuid.UUID          `json:"donation_id,omitempty"`
	AnimalID     *uuid.UUID          `json:"animal_id,omitempty"`
	Description  string              `json:"description"`
	BalanceAfter int64               `json:"balance_after"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewEntry creates a ledger entry with a fresh identifier
func NewEntry(donorID uuid.UUID, delta int64, kind shared.MovementKind, description string, balanceAfter int64) *Entry {
	return &Entry{
		ID:           uuid.New(),
		DonorID:      donorID,
		Delta:        delta,
		Kind:         kind,
		Description:  description,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now(),
	}
}

// PointsFor returns the reward points earned for a donation amount under the
// fixed points-per-currency-unit rule, floor-rounded. rateMinor is the price
// of one point in currency minor units.
func PointsFor(amountMinor, rateMinor int64) int64 {
	if amountMinor <= 0 || rateMinor <= 0 {
		return 0
	}
	return amountMinor / rateMinor
}
