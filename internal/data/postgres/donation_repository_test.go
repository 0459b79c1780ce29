package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var donationColumnNames = []string{
	"id", "donor_id", "target_kind", "target_id", "amount", "currency", "intent_ref",
	"charge_ref", "status", "points_awarded", "fee_amount", "fee_bps",
	"dist_medical", "dist_food", "dist_preventive", "dist_other",
	"refunded_amount", "refund_reason", "refunded_at", "created_at", "completed_at",
}

func sampleDonation() *donation.Donation {
	d, _ := donation.New(uuid.New(), donation.AnimalTarget(uuid.New()), 4000, "USD", 1000, 400, 1)
	d.IntentRef = "pi_test_123"
	return d
}

func donationRow(d *donation.Donation) *pgxmock.Rows {
	return pgxmock.NewRows(donationColumnNames).AddRow(
		d.ID, d.DonorID, d.Target.Kind, d.Target.ID, d.Amount, d.Currency, d.IntentRef,
		d.ChargeRef, d.Status, d.PointsAwarded, d.FeeAmount, d.FeeBps,
		d.Distribution.Medical, d.Distribution.Food, d.Distribution.Preventive, d.Distribution.Other,
		d.RefundedAmount, d.RefundReason, d.RefundedAt, d.CreatedAt, d.CompletedAt,
	)
}

func TestDonationRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &DonationRepository{querier: mock, logger: logger}
	d := sampleDonation()

	query := `INSERT INTO donations`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(d.ID, d.DonorID, d.Target.Kind, d.Target.ID, d.Amount, d.Currency, d.IntentRef,
				d.ChargeRef, d.Status, d.PointsAwarded, d.FeeAmount, d.FeeBps,
				d.Distribution.Medical, d.Distribution.Food, d.Distribution.Preventive, d.Distribution.Other,
				d.RefundedAmount, d.RefundReason, d.RefundedAt, d.CreatedAt, d.CompletedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, d)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(d.ID, d.DonorID, d.Target.Kind, d.Target.ID, d.Amount, d.Currency, d.IntentRef,
				d.ChargeRef, d.Status, d.PointsAwarded, d.FeeAmount, d.FeeBps,
				d.Distribution.Medical, d.Distribution.Food, d.Distribution.Preventive, d.Distribution.Other,
				d.RefundedAmount, d.RefundReason, d.RefundedAt, d.CreatedAt, d.CompletedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, d)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create donation")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDonationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &DonationRepository{querier: mock, logger: logger}
	d := sampleDonation()

	query := `SELECT(.|\n)*FROM donations(.|\n)*WHERE id = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(d.ID).WillReturnRows(donationRow(d))

		got, err := repo.GetByID(ctx, d.ID)
		assert.NoError(t, err)
		assert.Equal(t, d, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(d.ID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, d.ID)
		assert.Error(t, err)
		assert.Nil(t, got)
		var notFound donation.ErrDonationNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, d.ID, notFound.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDonationRepository_LockByIntentRef(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &DonationRepository{querier: mock, logger: logger}
	d := sampleDonation()

	query := `SELECT(.|\n)*FROM donations(.|\n)*WHERE intent_ref = \$1(.|\n)*FOR UPDATE`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(d.IntentRef).WillReturnRows(donationRow(d))

		got, err := repo.LockByIntentRef(ctx, d.IntentRef)
		assert.NoError(t, err)
		assert.Equal(t, d, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("intent not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("pi_missing").WillReturnError(pgx.ErrNoRows)

		got, err := repo.LockByIntentRef(ctx, "pi_missing")
		assert.Error(t, err)
		assert.Nil(t, got)
		var notFound donation.ErrIntentNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "pi_missing", notFound.IntentRef)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDonationRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &DonationRepository{querier: mock, logger: logger}
	d := sampleDonation()
	now := time.Now()
	require.NoError(t, d.MarkCompleted("ch_789", now))
	require.Equal(t, shared.DonationStatusCompleted, d.Status)

	query := `UPDATE donations`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(d.ChargeRef, d.Status, d.PointsAwarded,
				d.Distribution.Medical, d.Distribution.Food, d.Distribution.Preventive, d.Distribution.Other,
				d.RefundedAmount, d.RefundReason, d.RefundedAt, d.CompletedAt, d.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(ctx, d)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(d.ChargeRef, d.Status, d.PointsAwarded,
				d.Distribution.Medical, d.Distribution.Food, d.Distribution.Preventive, d.Distribution.Other,
				d.RefundedAmount, d.RefundReason, d.RefundedAt, d.CompletedAt, d.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, d)
		assert.ErrorIs(t, err, donation.ErrDonationNotFound{ID: d.ID})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDonationRepository_UpdateChargeRef(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &DonationRepository{querier: mock, logger: logger}
	id := uuid.New()

	query := `UPDATE donations(.|\n)*SET charge_ref = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("ch_123", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateChargeRef(ctx, id, "ch_123")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs("ch_123", id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateChargeRef(ctx, id, "ch_123")
		assert.ErrorIs(t, err, donation.ErrDonationNotFound{ID: id})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
