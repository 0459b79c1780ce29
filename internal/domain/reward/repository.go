package reward

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages reward ledger persistence. The ledger is append-only:
// there is no update or delete operation by design.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByDonor(ctx context.Context, donorID uuid.UUID) (int64, error)

	// SumByDonor recomputes the donor's balance from the ledger. Used for
	// audit and recalculation, never as the hot-path balance source.
	SumByDonor(ctx context.Context, donorID uuid.UUID) (int64, error)

	WithTx(tx pgx.Tx) Repository
}
