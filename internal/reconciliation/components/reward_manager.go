package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/donor"
	"github.com/pawhaven-donation-engine/internal/domain/reward"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/pawhaven-donation-engine/internal/reconciliation/service"
)

// RewardManagerImpl implements the RewardManager interface. Every mutation
// locks the donor row first so the ledger append and the cached balance
// rewrite commit together, keeping the projection consistent with the ledger.
type RewardManagerImpl struct {
	donorRepo  donor.Repository
	rewardRepo reward.Repository
	logger     *slog.Logger
}

// NewRewardManager creates a new RewardManagerImpl
func NewRewardManager(donorRepo donor.Repository, rewardRepo reward.Repository, logger *slog.Logger) service.RewardManager {
	return &RewardManagerImpl{
		donorRepo:  donorRepo,
		rewardRepo: rewardRepo,
		logger:     logger,
	}
}

// Credit awards the donation's precomputed points and returns the new balance.
// A zero-point donation produces no ledger entry.
func (m *RewardManagerImpl) Credit(ctx context.Context, tx pgx.Tx, d *donation.Donation) (int64, error) {
	donorRepoTx := m.donorRepo.WithTx(tx)

	dn, err := donorRepoTx.LockForUpdate(ctx, d.DonorID)
	if err != nil {
		return 0, err
	}

	if d.PointsAwarded == 0 {
		return dn.RewardPoints, nil
	}

	balance := dn.RewardPoints + d.PointsAwarded

	entry := reward.NewEntry(d.DonorID, d.PointsAwarded, shared.MovementKindDonationCredit,
		fmt.Sprintf("points for donation of %d %s", d.Amount, d.Currency), balance)
	entry.DonationID = &d.ID
	if d.Target.Kind == shared.DonationKindAnimal {
		animalID := d.Target.ID
		entry.AnimalID = &animalID
	}

	if err := m.rewardRepo.WithTx(tx).Append(ctx, entry); err != nil {
		return 0, err
	}
	if err := donorRepoTx.UpdateRewardPoints(ctx, d.DonorID, balance); err != nil {
		return 0, err
	}

	m.logger.Info("Reward points credited",
		"donor_id", d.DonorID.String(),
		"donation_id", d.ID.String(),
		"points", d.PointsAwarded,
		"balance", balance,
	)

	return balance, nil
}

// Debit claws back points for the refunded portion of the donation, capped at
// the donor's current balance. The clawback is cumulative over the donation's
// refunded total, which must already include refundAmount: flooring each
// refund independently would under-debit across sequential partial refunds
// and leave points standing after the donation is fully refunded in pieces.
// Returns the points actually debited.
func (m *RewardManagerImpl) Debit(ctx context.Context, tx pgx.Tx, d *donation.Donation, refundAmount int64) (int64, error) {
	refundedBefore := d.RefundedAmount - refundAmount
	points := d.PointsAwarded*d.RefundedAmount/d.Amount - d.PointsAwarded*refundedBefore/d.Amount
	if points <= 0 {
		return 0, nil
	}

	donorRepoTx := m.donorRepo.WithTx(tx)

	dn, err := donorRepoTx.LockForUpdate(ctx, d.DonorID)
	if err != nil {
		return 0, err
	}

	// Never drive the balance negative: the donor may have spent the points
	// before the refund landed.
	if points > dn.RewardPoints {
		points = dn.RewardPoints
	}
	if points == 0 {
		return 0, nil
	}

	balance := dn.RewardPoints - points

	entry := reward.NewEntry(d.DonorID, -points, shared.MovementKindRefundDebit,
		fmt.Sprintf("points reversed for refund of %d %s", refundAmount, d.Currency), balance)
	entry.DonationID = &d.ID

	if err := m.rewardRepo.WithTx(tx).Append(ctx, entry); err != nil {
		return 0, err
	}
	if err := donorRepoTx.UpdateRewardPoints(ctx, d.DonorID, balance); err != nil {
		return 0, err
	}

	m.logger.Info("Reward points debited",
		"donor_id", d.DonorID.String(),
		"donation_id", d.ID.String(),
		"points", points,
		"balance", balance,
	)

	return points, nil
}

// Bonus grants goodwill points outside the donation formula
func (m *RewardManagerImpl) Bonus(ctx context.Context, tx pgx.Tx, donorID, donationID uuid.UUID, points int64, description string) error {
	if points <= 0 {
		return nil
	}

	donorRepoTx := m.donorRepo.WithTx(tx)

	dn, err := donorRepoTx.LockForUpdate(ctx, donorID)
	if err != nil {
		return err
	}

	balance := dn.RewardPoints + points

	entry := reward.NewEntry(donorID, points, shared.MovementKindBonus, description, balance)
	entry.DonationID = &donationID

	if err := m.rewardRepo.WithTx(tx).Append(ctx, entry); err != nil {
		return err
	}
	if err := donorRepoTx.UpdateRewardPoints(ctx, donorID, balance); err != nil {
		return err
	}

	m.logger.Info("Goodwill bonus granted",
		"donor_id", donorID.String(),
		"donation_id", donationID.String(),
		"points", points,
		"balance", balance,
	)

	return nil
}
