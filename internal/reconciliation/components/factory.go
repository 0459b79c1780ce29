package components

import (
	"log/slog"

	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/pawhaven-donation-engine/internal/domain/animal"
	"github.com/pawhaven-donation-engine/internal/domain/campaign"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/donor"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/reward"
	"github.com/pawhaven-donation-engine/internal/platform/payment"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
	"github.com/pawhaven-donation-engine/internal/reconciliation/service"
)

// CreateDonationService creates a DonationService with all its dependencies
func CreateDonationService(
	pgDB *persistence.PostgresDB,
	donationRepo donation.Repository,
	animalRepo animal.Repository,
	campaignRepo campaign.Repository,
	donorRepo donor.Repository,
	rewardRepo reward.Repository,
	outboxRepo outbox.Repository,
	processor payment.Processor,
	cfg *config.Config,
	logger *slog.Logger,
) service.DonationService {
	beneficiary := NewBeneficiaryManager(animalRepo, campaignRepo, cfg, logger.With("component", "beneficiary_manager"))
	rewards := NewRewardManager(donorRepo, rewardRepo, logger.With("component", "reward_manager"))
	outboxManager := NewOutboxManager(outboxRepo, logger.With("component", "outbox_manager"))

	return service.NewDonationService(
		pgDB,
		donationRepo,
		animalRepo,
		campaignRepo,
		donorRepo,
		rewardRepo,
		processor,
		beneficiary,
		rewards,
		outboxManager,
		cfg,
		logger,
	)
}
