// Package archiver consumes the donation event stream from Kafka and writes
// each event into the MongoDB audit archive.
package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pawhaven-donation-engine/internal/domain/outbox"
)

// AuditArchiver persists donation events to the audit store
type AuditArchiver interface {
	Archive(ctx context.Context, event *outbox.DonationEvent) error
}

// EventHandler handles incoming donation event messages from Kafka
type EventHandler struct {
	auditRepo AuditArchiver
	logger    *slog.Logger
}

// NewEventHandler creates a new handler
func NewEventHandler(logger *slog.Logger, auditRepo AuditArchiver) *EventHandler {
	return &EventHandler{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// HandleMessage processes one Kafka message. A malformed payload is logged and
// acknowledged: redelivering it cannot make it parseable. Archive failures are
// returned so the offset stays uncommitted and the message is retried.
func (h *EventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event outbox.DonationEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal donation event from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return nil // Unparseable, commit offset
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received donation event for archiving",
		"event_id", event.EventID.String(),
		"event_type", event.Type,
		"donation_id", event.DonationID.String(),
	)

	if err := h.auditRepo.Archive(ctx, &event); err != nil {
		logger.Error("Failed to archive donation event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving donation event %s failed: %w", event.EventID.String(), err)
	}

	logger.Debug("Donation event archived", "event_id", event.EventID.String())
	return nil
}
