package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Archive(ctx context.Context, event *outbox.DonationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*outbox.DonationEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.DonationEvent), args.Error(1)
}

func (m *MockAuditRepository) GetByDonationID(ctx context.Context, donationID uuid.UUID) ([]*outbox.DonationEvent, error) {
	args := m.Called(ctx, donationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.DonationEvent), args.Error(1)
}

func (m *MockAuditRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*outbox.DonationEvent, error) {
	args := m.Called(ctx, startTime, endTime, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.DonationEvent), args.Error(1)
}

func newAuditEvent(donationID uuid.UUID) *outbox.DonationEvent {
	return &outbox.DonationEvent{
		EventID:    uuid.New(),
		Type:       shared.EventTypeDonationCompleted,
		DonationID: donationID,
		DonorID:    uuid.New(),
		Kind:       shared.DonationKindAnimal,
		TargetID:   uuid.New(),
		Amount:     10000,
		FeeAmount:  1000,
		Points:     4,
		OccurredAt: time.Now(),
	}
}

func TestNewAuditRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewAuditRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &AuditRepository{}, repo)
}

func TestAuditRepository_Archive(t *testing.T) {
	donationID := uuid.New()
	event := newAuditEvent(donationID)

	tests := []struct {
		name          string
		setupMocks    func(mockRepo *MockAuditRepository)
		expectedError error
	}{
		{
			name: "successful archive",
			setupMocks: func(mockRepo *MockAuditRepository) {
				mockRepo.On("Archive", mock.Anything, event).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func(mockRepo *MockAuditRepository) {
				mockRepo.On("Archive", mock.Anything, event).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAuditRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			err := mockRepo.Archive(ctx, event)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuditRepository_GetByDonationID(t *testing.T) {
	donationID := uuid.New()
	events := []*outbox.DonationEvent{newAuditEvent(donationID), newAuditEvent(donationID)}

	tests := []struct {
		name           string
		setupMocks     func(mockRepo *MockAuditRepository)
		expectedEvents []*outbox.DonationEvent
		expectedError  error
	}{
		{
			name: "events found",
			setupMocks: func(mockRepo *MockAuditRepository) {
				mockRepo.On("GetByDonationID", mock.Anything, donationID).Return(events, nil)
			},
			expectedEvents: events,
			expectedError:  nil,
		},
		{
			name: "no events archived",
			setupMocks: func(mockRepo *MockAuditRepository) {
				mockRepo.On("GetByDonationID", mock.Anything, donationID).Return([]*outbox.DonationEvent{}, nil)
			},
			expectedEvents: []*outbox.DonationEvent{},
			expectedError:  nil,
		},
		{
			name: "database error",
			setupMocks: func(mockRepo *MockAuditRepository) {
				mockRepo.On("GetByDonationID", mock.Anything, donationID).Return(nil, errors.New("db error"))
			},
			expectedEvents: nil,
			expectedError:  errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAuditRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.GetByDonationID(ctx, donationID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEvents, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuditRepository_GetByTimeRange(t *testing.T) {
	start := time.Now().Add(-24 * time.Hour)
	end := time.Now()
	events := []*outbox.DonationEvent{newAuditEvent(uuid.New())}

	tests := []struct {
		name           string
		setupMocks     func(mockRepo *MockAuditRepository)
		expectedEvents []*outbox.DonationEvent
		expectedError  error
	}{
		{
			name: "events in window",
			setupMocks: func(mockRepo *MockAuditRepository) {
				mockRepo.On("GetByTimeRange", mock.Anything, start, end, 50, 0).Return(events, nil)
			},
			expectedEvents: events,
			expectedError:  nil,
		},
		{
			name: "database error",
			setupMocks: func(mockRepo *MockAuditRepository) {
				mockRepo.On("GetByTimeRange", mock.Anything, start, end, 50, 0).Return(nil, errors.New("db error"))
			},
			expectedEvents: nil,
			expectedError:  errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAuditRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.GetByTimeRange(ctx, start, end, 50, 0)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEvents, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
