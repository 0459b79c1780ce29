// Package mongo provides the MongoDB implementation of the donation event
// audit archive. The archive is the query-side copy of the event stream and is
// never consulted by the reconciliation engine itself.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawhaven-donation-engine/internal/domain/outbox"
)

const (
	// AuditCollectionName is the name of the donation event collection in MongoDB
	AuditCollectionName = "donation_events"
)

// AuditRepository archives donation events for audit and reporting
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Archive stores a donation event after checking for duplicates. Redelivered
// Kafka messages resolve to the same event ID and are silently dropped, which
// makes the archiver idempotent.
func (r *AuditRepository) Archive(ctx context.Context, event *outbox.DonationEvent) error {
	collection := r.db.Collection(AuditCollectionName)

	existing, err := r.GetByEventID(ctx, event.EventID)
	if err != nil {
		r.logger.Error("Failed to check for existing donation event",
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing donation event: %w", err)
	}
	if existing != nil {
		r.logger.Debug("Donation event already archived, skipping",
			"event_id", event.EventID.String())
		return nil
	}

	_, err = collection.InsertOne(ctx, event)
	if err != nil {
		r.logger.Error("Failed to archive donation event",
			"event_id", event.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to archive donation event: %w", err)
	}

	return nil
}

// GetByEventID retrieves an archived event by its event ID, or nil if absent
func (r *AuditRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.DonationEvent, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"event_id": eventID}
	var event outbox.DonationEvent
	err := collection.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get donation event: %w", err)
	}

	return &event, nil
}

// GetByDonationID retrieves all archived events for a donation, oldest first
func (r *AuditRepository) GetByDonationID(ctx context.Context, donationID uuid.UUID) ([]*outbox.DonationEvent, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"donation_id": donationID}
	opts := options.Find().SetSort(bson.M{"occurred_at": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get donation events",
			"donation_id", donationID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get donation events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*outbox.DonationEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode donation events: %w", err)
	}

	return events, nil
}

// GetByTimeRange retrieves paginated events within the specified time window.
// Results are sorted by occurrence time in descending order for recent-first access.
func (r *AuditRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*outbox.DonationEvent, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{
		"occurred_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"occurred_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get donation events by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get donation events by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*outbox.DonationEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode donation events: %w", err)
	}

	return events, nil
}
