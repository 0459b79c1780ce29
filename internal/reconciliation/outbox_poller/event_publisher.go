package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/pawhaven-donation-engine/internal/platform/messaging/producers"
)

// EventPublisher publishes outbox messages to the donation event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher on top of the Kafka producer
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes a message's donation event to Kafka and marks the
// outbox row processed. A payload that cannot be decoded is parked as
// FAILED_TO_PUBLISH immediately, retries would never succeed.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to unmarshal donation event from outbox payload",
			"outbox_id", message.ID, "donation_id", message.DonationID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	// Keyed by donation ID so all events of one donation share a partition
	// and stay ordered.
	if err := p.producer.Publish(ctx, event.DonationID.String(), event); err != nil {
		logger.Error("Failed to publish donation event to Kafka",
			"outbox_id", message.ID, "donation_id", message.DonationID, "error", err,
		)
		return fmt.Errorf("failed to publish donation event for outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "donation_id", message.DonationID, "error", err,
		)
		return fmt.Errorf("event for donation %s published, but failed to mark outbox %d as PROCESSED: %w", message.DonationID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "donation_id", message.DonationID)
	return nil
}
