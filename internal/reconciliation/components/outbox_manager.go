package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/pawhaven-donation-engine/internal/reconciliation/service"
)

// OutboxManagerImpl implements the OutboxManager interface
type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewOutboxManager creates a new OutboxManagerImpl
func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// RecordCompleted stores a donation.completed event in the outbox, atomic with
// the confirmation it describes
func (m *OutboxManagerImpl) RecordCompleted(ctx context.Context, tx pgx.Tx, d *donation.Donation, correlationID string) error {
	event := &outbox.DonationEvent{
		EventID:       uuid.New(),
		Type:          shared.EventTypeDonationCompleted,
		DonationID:    d.ID,
		DonorID:       d.DonorID,
		Kind:          d.Target.Kind,
		TargetID:      d.Target.ID,
		Amount:        d.Amount,
		FeeAmount:     d.FeeAmount,
		Points:        d.PointsAwarded,
		CorrelationID: correlationID,
		OccurredAt:    time.Now(),
	}

	return m.record(ctx, tx, event)
}

// RecordRefunded stores a donation.refunded event in the outbox, atomic with
// the refund it describes
func (m *OutboxManagerImpl) RecordRefunded(ctx context.Context, tx pgx.Tx, d *donation.Donation, refundAmount, pointsDebited int64, correlationID string) error {
	event := &outbox.DonationEvent{
		EventID:       uuid.New(),
		Type:          shared.EventTypeDonationRefunded,
		DonationID:    d.ID,
		DonorID:       d.DonorID,
		Kind:          d.Target.Kind,
		TargetID:      d.Target.ID,
		Amount:        d.Amount,
		FeeAmount:     d.FeeAmount,
		RefundAmount:  refundAmount,
		Points:        -pointsDebited,
		CorrelationID: correlationID,
		OccurredAt:    time.Now(),
	}

	return m.record(ctx, tx, event)
}

func (m *OutboxManagerImpl) record(ctx context.Context, tx pgx.Tx, event *outbox.DonationEvent) error {
	logger := m.logger
	if event.CorrelationID != "" {
		logger = m.logger.With("correlation_id", event.CorrelationID)
	}

	message, err := outbox.NewMessage(event)
	if err != nil {
		logger.Error("Failed to create outbox message payload",
			"donation_id", event.DonationID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for donation %s: %w", event.DonationID.String(), err)
	}

	if err := m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		logger.Error("Failed to create outbox message",
			"donation_id", event.DonationID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for donation %s: %w", event.DonationID.String(), err)
	}

	logger.Info("Outbox message created",
		"donation_id", event.DonationID.String(),
		"event_type", event.Type,
		"outbox_id", message.ID,
	)

	return nil
}
