package components

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/domain/donation"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOutboxManager_RecordCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresCompletedEvent", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		manager := NewOutboxManager(outboxRepo, newTestLogger())

		d, err := donation.New(uuid.New(), donation.AnimalTarget(uuid.New()), 10000, "USD", 1000, 1000, 4)
		require.NoError(t, err)

		var stored *outbox.Message
		outboxRepo.On("Create", ctx, mock.MatchedBy(func(msg *outbox.Message) bool {
			stored = msg
			return msg.DonationID == d.ID && msg.Status == shared.OutboxStatusPending
		})).Return(nil)

		err = manager.RecordCompleted(ctx, new(MockTx), d, "corr-123")

		require.NoError(t, err)
		require.NotNil(t, stored)

		event, err := stored.Event()
		require.NoError(t, err)
		assert.Equal(t, shared.EventTypeDonationCompleted, event.Type)
		assert.Equal(t, d.ID, event.DonationID)
		assert.Equal(t, d.DonorID, event.DonorID)
		assert.Equal(t, int64(10000), event.Amount)
		assert.Equal(t, int64(1000), event.FeeAmount)
		assert.Equal(t, int64(4), event.Points)
		assert.Equal(t, "corr-123", event.CorrelationID)
		assert.NotEqual(t, uuid.Nil, event.EventID)
	})

	t.Run("PropagatesRepositoryError", func(t *testing.T) {
		outboxRepo := new(MockOutboxRepository)
		manager := NewOutboxManager(outboxRepo, newTestLogger())

		d, err := donation.New(uuid.New(), donation.AnimalTarget(uuid.New()), 10000, "USD", 1000, 1000, 4)
		require.NoError(t, err)

		repoErr := errors.New("connection reset")
		outboxRepo.On("Create", ctx, mock.Anything).Return(repoErr)

		err = manager.RecordCompleted(ctx, new(MockTx), d, "")

		assert.ErrorIs(t, err, repoErr)
	})
}

func TestOutboxManager_RecordRefunded(t *testing.T) {
	ctx := context.Background()

	outboxRepo := new(MockOutboxRepository)
	manager := NewOutboxManager(outboxRepo, newTestLogger())

	d, err := donation.New(uuid.New(), donation.CampaignTarget(uuid.New()), 10000, "USD", 1200, 1200, 4)
	require.NoError(t, err)

	var stored *outbox.Message
	outboxRepo.On("Create", ctx, mock.MatchedBy(func(msg *outbox.Message) bool {
		stored = msg
		return msg.DonationID == d.ID
	})).Return(nil)

	err = manager.RecordRefunded(ctx, new(MockTx), d, 5000, 2, "corr-456")

	require.NoError(t, err)
	require.NotNil(t, stored)

	event, err := stored.Event()
	require.NoError(t, err)
	assert.Equal(t, shared.EventTypeDonationRefunded, event.Type)
	assert.Equal(t, int64(5000), event.RefundAmount)
	assert.Equal(t, int64(-2), event.Points, "refund events carry the clawback as a negative delta")
	assert.Equal(t, "corr-456", event.CorrelationID)
}
