package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

// MockMessagePublisher for testing
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newOutboxMessage(t *testing.T, id int64, donationID uuid.UUID, attempts int) *outbox.Message {
	t.Helper()
	event := &outbox.DonationEvent{
		EventID:       uuid.New(),
		Type:          shared.EventTypeDonationCompleted,
		DonationID:    donationID,
		DonorID:       uuid.New(),
		Kind:          shared.DonationKindAnimal,
		TargetID:      uuid.New(),
		Amount:        10000,
		FeeAmount:     1000,
		Points:        4,
		CorrelationID: "corr-1",
		OccurredAt:    time.Now(),
	}
	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	return &outbox.Message{
		ID:         id,
		DonationID: donationID,
		Status:     shared.OutboxStatusPending,
		Payload:    payload,
		Attempts:   attempts,
		CreatedAt:  time.Now(),
	}
}

func TestEventPublisher_PublishEvent(t *testing.T) {
	mockOutboxRepo := &MockOutboxRepo{}
	mockProducer := &MockMessagePublisher{}
	logger := slog.Default()

	publisher := NewEventPublisher(mockOutboxRepo, mockProducer, logger)

	donationID := uuid.New()
	message := newOutboxMessage(t, 1, donationID, 0)

	tests := []struct {
		name          string
		message       *outbox.Message
		setupMocks    func()
		expectedError error
	}{
		{
			name:    "successful publish",
			message: message,
			setupMocks: func() {
				mockProducer.On("Publish", mock.Anything, donationID.String(), mock.MatchedBy(func(event *outbox.DonationEvent) bool {
					return event.DonationID == donationID && event.Type == shared.EventTypeDonationCompleted
				})).Return(nil).Once()

				mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(nil).Once()
			},
			expectedError: nil,
		},
		{
			name: "error unmarshalling payload",
			message: &outbox.Message{
				ID:         1,
				DonationID: donationID,
				Status:     shared.OutboxStatusPending,
				Payload:    []byte("invalid json"),
				Attempts:   0,
				CreatedAt:  time.Now(),
			},
			setupMocks: func() {
				mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusFailedToPublish).Return(nil).Once()
			},
			expectedError: errors.New("unmarshal payload"),
		},
		{
			name:    "error publishing to kafka",
			message: message,
			setupMocks: func() {
				mockProducer.On("Publish", mock.Anything, donationID.String(), mock.Anything).Return(errors.New("broker unavailable")).Once()
			},
			expectedError: errors.New("failed to publish donation event"),
		},
		{
			name:    "error updating outbox status",
			message: message,
			setupMocks: func() {
				mockProducer.On("Publish", mock.Anything, donationID.String(), mock.Anything).Return(nil).Once()

				mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(errors.New("db error")).Once()
			},
			expectedError: errors.New("failed to mark outbox"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOutboxRepo = &MockOutboxRepo{}
			mockProducer = &MockMessagePublisher{}
			publisher = NewEventPublisher(mockOutboxRepo, mockProducer, logger)

			tt.setupMocks()
			ctx := context.Background()

			err := publisher.PublishEvent(ctx, tt.message)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockOutboxRepo.AssertExpectations(t)
			mockProducer.AssertExpectations(t)
		})
	}
}
