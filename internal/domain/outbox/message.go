package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
)

// DonationEvent is the payload published to downstream consumers (receipts,
// notifications, the audit archive) whenever a donation reaches a terminal
// business state. It carries enough to reconstruct the movement without
// querying the engine.
type DonationEvent struct {
	EventID       uuid.UUID           `json:"event_id" bson:"event_id"`
	Type          shared.EventType    `json:"type" bson:"type"`
	DonationID    uuid.UUID           `json:"donation_id" bson:"donation_id"`
	DonorID       uuid.UUID           `json:"donor_id" bson:"donor_id"`
	Kind          shared.DonationKind `json:"kind" bson:"kind"`
	TargetID      uuid.UUID           `json:"target_id" bson:"target_id"`
	Amount        int64               `json:"amount" bson:"amount"`
	FeeAmount     int64               `json:"fee_amount" bson:"fee_amount"`
	RefundAmount  int64               `json:"refund_amount,omitempty" bson:"refund_amount,omitempty"`
	Points        int64               `json:"points" bson:"points"`
	CorrelationID string              `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at" bson:"occurred_at"`
}

// Message stores a donation event for reliable publishing. Rows are written in
// the same transaction as the business mutation they describe and drained by
// the outbox poller.
type Message struct {
	ID            int64               `json:"id"`
	DonationID    uuid.UUID           `json:"donation_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a donation event into a pending outbox message
func NewMessage(event *DonationEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		DonationID: event.DonationID,
		Payload:    payload,
		Status:     shared.OutboxStatusPending,
		Attempts:   0,
		CreatedAt:  time.Now(),
	}, nil
}

// Event extracts the donation event from the payload
func (m *Message) Event() (*DonationEvent, error) {
	var event DonationEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
