package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/pawhaven-donation-engine/internal/domain/animal"
	"github.com/pawhaven-donation-engine/internal/domain/campaign"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/donor"
	"github.com/pawhaven-donation-engine/internal/domain/reward"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/pawhaven-donation-engine/internal/feepolicy"
	"github.com/pawhaven-donation-engine/internal/platform/payment"
	"github.com/pawhaven-donation-engine/internal/platform/persistence"
)

// DonationServiceImpl implements DonationService. Confirmation and refund run
// inside a single database transaction with pessimistic row locks; the
// processor is consulted with a bounded timeout before any state is mutated.
type DonationServiceImpl struct {
	pgDB         *persistence.PostgresDB
	donationRepo donation.Repository
	animalRepo   animal.Repository
	campaignRepo campaign.Repository
	donorRepo    donor.Repository
	rewardRepo   reward.Repository
	processor    payment.Processor
	beneficiary  BeneficiaryManager
	rewards      RewardManager
	outbox       OutboxManager
	cfg          *config.Config
	logger       *slog.Logger
}

func NewDonationService(
	pgDB *persistence.PostgresDB,
	donationRepo donation.Repository,
	animalRepo animal.Repository,
	campaignRepo campaign.Repository,
	donorRepo donor.Repository,
	rewardRepo reward.Repository,
	processor payment.Processor,
	beneficiary BeneficiaryManager,
	rewards RewardManager,
	outbox OutboxManager,
	cfg *config.Config,
	logger *slog.Logger,
) DonationService {
	return &DonationServiceImpl{
		pgDB:         pgDB,
		donationRepo: donationRepo,
		animalRepo:   animalRepo,
		campaignRepo: campaignRepo,
		donorRepo:    donorRepo,
		rewardRepo:   rewardRepo,
		processor:    processor,
		beneficiary:  beneficiary,
		rewards:      rewards,
		outbox:       outbox,
		cfg:          cfg,
		logger:       logger,
	}
}

// CreateIntent validates the donation request, opens a payment intent at the
// processor, and stores the donation in PENDING status. The fee and reward
// points are computed up front so the pending record already carries them.
func (s *DonationServiceImpl) CreateIntent(ctx context.Context, cmd *CreateIntentCommand) (*IntentResult, error) {
	logger := s.withCorrelation(cmd.CorrelationID)

	if cmd.Amount < s.cfg.Donation.MinAmount || cmd.Amount > s.cfg.Donation.MaxAmount {
		return nil, donation.ErrAmountOutOfBounds{
			Amount: cmd.Amount,
			Min:    s.cfg.Donation.MinAmount,
			Max:    s.cfg.Donation.MaxAmount,
		}
	}

	if _, err := s.donorRepo.GetByID(ctx, cmd.DonorID); err != nil {
		return nil, err
	}

	now := time.Now()
	var feeBps int32
	switch cmd.Target.Kind {
	case shared.DonationKindAnimal:
		a, err := s.animalRepo.GetByID(ctx, cmd.Target.ID)
		if err != nil {
			return nil, err
		}
		if !a.AcceptingDonations() {
			return nil, animal.ErrNotAcceptingDonations{ID: a.ID, Status: a.Status}
		}
		feeBps = feepolicy.FeeBps(shared.DonationKindAnimal, 0, 0)
	case shared.DonationKindCampaign:
		c, err := s.campaignRepo.GetByID(ctx, cmd.Target.ID)
		if err != nil {
			return nil, err
		}
		if !c.AcceptingDonations(now) {
			return nil, campaign.ErrNotAcceptingDonations{ID: c.ID, Status: c.Status}
		}
		feeBps = feepolicy.FeeBps(shared.DonationKindCampaign, c.PriorityTier, c.DurationWeeks)
	default:
		return nil, donation.ErrInvalidKind
	}

	feeAmount := feepolicy.FeeAmount(cmd.Amount, feeBps)
	points := reward.PointsFor(cmd.Amount, s.cfg.Donation.PointsRate)

	d, err := donation.New(cmd.DonorID, cmd.Target, cmd.Amount, s.cfg.Payment.Currency, feeBps, feeAmount, points)
	if err != nil {
		return nil, err
	}

	intent, err := s.processor.CreateIntent(ctx, cmd.Amount, s.cfg.Payment.Currency, map[string]string{
		"donation_id": d.ID.String(),
		"donor_id":    cmd.DonorID.String(),
	})
	if err != nil {
		logger.Error("Failed to create payment intent", "donation_id", d.ID.String(), "error", err)
		return nil, err
	}
	d.IntentRef = intent.ID

	if err := s.donationRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	logger.Info("Donation intent created",
		"donation_id", d.ID.String(),
		"intent_ref", d.IntentRef,
		"amount", d.Amount,
		"fee_bps", d.FeeBps,
	)

	return &IntentResult{Donation: d, ClientSecret: intent.ClientSecret}, nil
}

// Confirm settles a pending donation: it verifies settlement with the
// processor, applies the shelter share to the beneficiary, credits reward
// points, and records the completion event, all atomically. Concurrent
// confirmations of the same intent serialize on the donation row lock and the
// loser observes a non-PENDING status.
func (s *DonationServiceImpl) Confirm(ctx context.Context, cmd *ConfirmCommand) (*ConfirmResult, error) {
	logger := s.withCorrelation(cmd.CorrelationID)
	logger.Info("Confirming donation", "intent_ref", cmd.IntentRef)

	var result *ConfirmResult

	tx, err := s.pgDB.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for intent %s: %w", cmd.IntentRef, err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back confirmation", "panic", p, "intent_ref", cmd.IntentRef)
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.Error("Failed to rollback confirmation", "rollback_error", rbErr, "original_error", err, "intent_ref", cmd.IntentRef)
			}
		}
	}()

	donationRepoTx := s.donationRepo.WithTx(tx)

	var d *donation.Donation
	d, err = donationRepoTx.LockByIntentRef(ctx, cmd.IntentRef)
	if err != nil {
		return nil, err
	}

	// The confirming donor must own the donation; anything else is treated
	// as if the intent did not exist.
	if d.DonorID != cmd.DonorID {
		err = donation.ErrIntentNotFound{IntentRef: cmd.IntentRef}
		return nil, err
	}

	if d.Status != shared.DonationStatusPending {
		err = donation.ErrAlreadyProcessed{ID: d.ID, Status: d.Status}
		return nil, err
	}

	// Ask the processor whether the funds actually settled. On a negative
	// answer the donation stays PENDING and the confirmation is retryable.
	var intent *payment.Intent
	intent, err = s.processor.RetrieveIntent(ctx, cmd.IntentRef)
	if err != nil {
		logger.Error("Failed to retrieve payment intent", "intent_ref", cmd.IntentRef, "error", err)
		return nil, err
	}
	if !intent.Settled() {
		err = donation.ErrNotSettled{IntentRef: cmd.IntentRef, Status: string(intent.Status)}
		return nil, err
	}

	now := time.Now()
	if err = d.MarkCompleted(intent.ChargeRef, now); err != nil {
		return nil, err
	}

	var applied *AppliedTarget
	applied, err = s.beneficiary.ApplyDonation(ctx, tx, d, now)
	if err != nil {
		return nil, err
	}

	var balance int64
	balance, err = s.rewards.Credit(ctx, tx, d)
	if err != nil {
		return nil, err
	}

	if err = donationRepoTx.Update(ctx, d); err != nil {
		return nil, err
	}

	if err = s.outbox.RecordCompleted(ctx, tx, d, cmd.CorrelationID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit confirmation", "donation_id", d.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to commit confirmation for donation %s: %w", d.ID.String(), err)
	}

	logger.Info("Donation confirmed",
		"donation_id", d.ID.String(),
		"target_kind", d.Target.Kind,
		"target_id", d.Target.ID.String(),
		"amount", d.Amount,
		"fee", d.FeeAmount,
		"points", d.PointsAwarded,
	)

	result = &ConfirmResult{
		Donation:          d,
		TargetName:        applied.TargetName,
		ShelterName:       applied.ShelterName,
		CampaignCompleted: applied.CampaignCompleted,
		RewardBalance:     balance,
	}
	return result, nil
}

// Refund reverses part or all of a completed donation. The processor refund,
// the donation update, the beneficiary reversal, the reward clawback, and the
// refund event all commit together. A zero cmd.Amount refunds the remaining
// unrefunded portion.
func (s *DonationServiceImpl) Refund(ctx context.Context, cmd *RefundCommand) (*donation.Donation, error) {
	logger := s.withCorrelation(cmd.CorrelationID)
	logger.Info("Processing refund", "donation_id", cmd.DonationID.String(), "initiator", cmd.Initiator)

	tx, err := s.pgDB.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for refund of %s: %w", cmd.DonationID.String(), err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back refund", "panic", p, "donation_id", cmd.DonationID.String())
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.Error("Failed to rollback refund", "rollback_error", rbErr, "original_error", err, "donation_id", cmd.DonationID.String())
			}
		}
	}()

	donationRepoTx := s.donationRepo.WithTx(tx)

	var d *donation.Donation
	d, err = donationRepoTx.LockByID(ctx, cmd.DonationID)
	if err != nil {
		return nil, err
	}

	// Donor-initiated refunds must come from the owning donor. Shelter
	// initiated refunds act on behalf of the platform.
	if cmd.Initiator == shared.RefundInitiatorDonor && d.DonorID != cmd.DonorID {
		err = donation.ErrDonationNotFound{ID: cmd.DonationID}
		return nil, err
	}

	if d.Status != shared.DonationStatusCompleted {
		err = donation.ErrAlreadyProcessed{ID: d.ID, Status: d.Status}
		return nil, err
	}

	refundAmount := cmd.Amount
	if refundAmount == 0 {
		refundAmount = d.RemainingAmount()
	}
	if refundAmount <= 0 || refundAmount > d.RemainingAmount() {
		err = donation.ErrRefundExceedsRemaining{DonationID: d.ID, Requested: refundAmount, Remaining: d.RemainingAmount()}
		return nil, err
	}

	// The refunded shelter share is proportional to the refunded fraction of
	// the gross amount, floored. The platform fee portion is not reversed.
	refundShare := d.ShelterShare() * refundAmount / d.Amount

	if _, err = s.processor.CreateRefund(ctx, d.IntentRef, refundAmount); err != nil {
		logger.Error("Processor refund failed", "donation_id", d.ID.String(), "error", err)
		return nil, err
	}

	now := time.Now()
	if err = d.ApplyRefund(refundAmount, cmd.Reason, now); err != nil {
		return nil, err
	}

	if err = s.beneficiary.ReverseDonation(ctx, tx, d, refundShare, now); err != nil {
		return nil, err
	}

	var pointsDebited int64
	pointsDebited, err = s.rewards.Debit(ctx, tx, d, refundAmount)
	if err != nil {
		return nil, err
	}

	// Shelter-initiated refunds grant a small goodwill bonus so the donor is
	// not penalized for circumstances outside their control.
	if cmd.Initiator == shared.RefundInitiatorShelter && s.cfg.Donation.GoodwillBonus > 0 {
		if err = s.rewards.Bonus(ctx, tx, d.DonorID, d.ID, s.cfg.Donation.GoodwillBonus, "goodwill bonus for shelter-initiated refund"); err != nil {
			return nil, err
		}
	}

	if err = donationRepoTx.Update(ctx, d); err != nil {
		return nil, err
	}

	if err = s.outbox.RecordRefunded(ctx, tx, d, refundAmount, pointsDebited, cmd.CorrelationID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit refund", "donation_id", d.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to commit refund for donation %s: %w", d.ID.String(), err)
	}

	logger.Info("Refund processed",
		"donation_id", d.ID.String(),
		"refund_amount", refundAmount,
		"points_debited", pointsDebited,
		"status", d.Status,
	)

	return d, nil
}

// HandleWebhook verifies and reacts to a processor notification. Settlement
// notifications arriving before the donor confirms record the charge reference
// only; the business side effects wait for the confirmation call. Failure
// notifications flip a pending donation to FAILED.
func (s *DonationServiceImpl) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.processor.VerifyWebhookSignature(payload, sigHeader)
	if err != nil {
		return err
	}

	logger := s.logger.With("event_id", event.ID, "event_type", event.Type)

	d, err := s.donationRepo.GetByIntentRef(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, donation.ErrIntentNotFound{}) {
			// Not every processor event maps to a donation; acknowledge
			// and move on.
			logger.Warn("Webhook for unknown payment intent", "intent_ref", event.IntentID)
			return nil
		}
		return err
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		if d.Status == shared.DonationStatusPending && event.ChargeRef != "" && d.ChargeRef == "" {
			if err := s.donationRepo.UpdateChargeRef(ctx, d.ID, event.ChargeRef); err != nil {
				return err
			}
			logger.Info("Recorded settlement reference from webhook", "donation_id", d.ID.String())
		} else {
			logger.Debug("Settlement webhook for already reconciled donation", "donation_id", d.ID.String(), "status", d.Status)
		}
	case payment.EventPaymentFailed:
		if d.Status != shared.DonationStatusPending {
			logger.Debug("Failure webhook for non-pending donation", "donation_id", d.ID.String(), "status", d.Status)
			return nil
		}
		err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
			repoTx := s.donationRepo.WithTx(tx)
			locked, err := repoTx.LockByID(ctx, d.ID)
			if err != nil {
				return err
			}
			if locked.Status != shared.DonationStatusPending {
				return nil // Confirmed concurrently, keep the settled state
			}
			if err := locked.MarkFailed(); err != nil {
				return err
			}
			return repoTx.Update(ctx, locked)
		})
		if err != nil {
			return err
		}
		logger.Info("Donation marked failed from webhook", "donation_id", d.ID.String())
	default:
		logger.Debug("Ignoring unhandled webhook event type")
	}

	return nil
}

// GetDonation retrieves a donation by ID
func (s *DonationServiceImpl) GetDonation(ctx context.Context, id uuid.UUID) (*donation.Donation, error) {
	return s.donationRepo.GetByID(ctx, id)
}

// GetRewardHistory returns a page of the donor's reward ledger together with
// the cached balance
func (s *DonationServiceImpl) GetRewardHistory(ctx context.Context, donorID uuid.UUID, limit, offset int) (*RewardHistory, error) {
	dn, err := s.donorRepo.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}

	entries, err := s.rewardRepo.ListByDonor(ctx, donorID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.rewardRepo.CountByDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}

	return &RewardHistory{Donor: dn, Entries: entries, Total: total}, nil
}

func (s *DonationServiceImpl) withCorrelation(correlationID string) *slog.Logger {
	if correlationID != "" {
		return s.logger.With("correlation_id", correlationID)
	}
	return s.logger
}
