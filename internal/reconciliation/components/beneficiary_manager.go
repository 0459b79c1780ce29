// Package components holds the building blocks of the donation reconciliation
// pipeline. Each component does one job inside the confirmation or refund
// transaction and is wired together by the factory.
package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/pawhaven-donation-engine/internal/distribution"
	"github.com/pawhaven-donation-engine/internal/domain/animal"
	"github.com/pawhaven-donation-engine/internal/domain/campaign"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/pawhaven-donation-engine/internal/reconciliation/service"
)

// BeneficiaryManagerImpl implements the BeneficiaryManager interface
type BeneficiaryManagerImpl struct {
	animalRepo   animal.Repository
	campaignRepo campaign.Repository
	cfg          *config.Config
	logger       *slog.Logger
}

// NewBeneficiaryManager creates a new BeneficiaryManagerImpl
func NewBeneficiaryManager(animalRepo animal.Repository, campaignRepo campaign.Repository, cfg *config.Config, logger *slog.Logger) service.BeneficiaryManager {
	return &BeneficiaryManagerImpl{
		animalRepo:   animalRepo,
		campaignRepo: campaignRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// ApplyDonation locks the donation's target and folds the confirmed donation
// into its running totals. For animal targets the shelter share is split
// across the care categories and the resulting allocation is written back onto
// the donation. A due goal reset is folded into the same update so the
// donation lands in a fresh window.
func (m *BeneficiaryManagerImpl) ApplyDonation(ctx context.Context, tx pgx.Tx, d *donation.Donation, now time.Time) (*service.AppliedTarget, error) {
	switch d.Target.Kind {
	case shared.DonationKindCampaign:
		return m.applyToCampaign(ctx, tx, d, now)
	default:
		return m.applyToAnimal(ctx, tx, d, now)
	}
}

func (m *BeneficiaryManagerImpl) applyToAnimal(ctx context.Context, tx pgx.Tx, d *donation.Donation, now time.Time) (*service.AppliedTarget, error) {
	repo := m.animalRepo.WithTx(tx)

	a, err := repo.LockForUpdate(ctx, d.Target.ID)
	if err != nil {
		return nil, err
	}

	if a.GoalResetDue(now, m.cfg.GoalReset.Window) {
		m.logger.Info("Folding due goal reset into confirmation",
			"animal_id", a.ID.String(),
			"last_reset_at", a.Care.LastResetAt,
		)
		a.ResetGoals(now)
	}

	share := distribution.Split(d.ShelterShare(), a.Care.Weights())
	d.Distribution = share
	a.ApplyDonation(d.Amount, share, now)

	if a.LifetimeTotal > m.cfg.Donation.MaxPlausibleTotal {
		return nil, shared.ErrImplausibleTotal{
			Counter: "animal lifetime",
			Value:   a.LifetimeTotal,
			Ceiling: m.cfg.Donation.MaxPlausibleTotal,
		}
	}

	if err := repo.Update(ctx, a); err != nil {
		return nil, err
	}

	m.logger.Info("Donation applied to animal",
		"animal_id", a.ID.String(),
		"donation_id", d.ID.String(),
		"share", share.Total(),
		"monthly_total", a.MonthlyTotal,
	)

	return &service.AppliedTarget{TargetName: a.Name, ShelterName: a.ShelterName}, nil
}

func (m *BeneficiaryManagerImpl) applyToCampaign(ctx context.Context, tx pgx.Tx, d *donation.Donation, now time.Time) (*service.AppliedTarget, error) {
	repo := m.campaignRepo.WithTx(tx)

	c, err := repo.LockForUpdate(ctx, d.Target.ID)
	if err != nil {
		return nil, err
	}

	completed := c.AddFunds(d.ShelterShare(), now)

	if c.RaisedAmount > m.cfg.Donation.MaxPlausibleTotal {
		return nil, shared.ErrImplausibleTotal{
			Counter: "campaign raised",
			Value:   c.RaisedAmount,
			Ceiling: m.cfg.Donation.MaxPlausibleTotal,
		}
	}

	if err := repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if completed {
		m.logger.Info("Campaign reached its goal",
			"campaign_id", c.ID.String(),
			"raised", c.RaisedAmount,
			"goal", c.GoalAmount,
		)
	}

	return &service.AppliedTarget{
		TargetName:        c.Title,
		ShelterName:       c.ShelterName,
		CampaignCompleted: completed,
	}, nil
}

// ReverseDonation locks the donation's target and rolls its totals back by the
// refunded shelter share. Totals are floored at zero, so a refund landing
// after a goal reset never drives a counter negative.
func (m *BeneficiaryManagerImpl) ReverseDonation(ctx context.Context, tx pgx.Tx, d *donation.Donation, refundShare int64, now time.Time) error {
	switch d.Target.Kind {
	case shared.DonationKindCampaign:
		repo := m.campaignRepo.WithTx(tx)
		c, err := repo.LockForUpdate(ctx, d.Target.ID)
		if err != nil {
			return err
		}
		c.ReverseFunds(refundShare, now)
		return repo.Update(ctx, c)
	default:
		repo := m.animalRepo.WithTx(tx)
		a, err := repo.LockForUpdate(ctx, d.Target.ID)
		if err != nil {
			return err
		}
		a.ReverseDonation(refundShare, now)
		return repo.Update(ctx, a)
	}
}
