package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestDonationEventProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	topic := "test-donation-events"
	ctx := context.Background()

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DonationEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		donationID := uuid.New()
		value := &outbox.DonationEvent{
			EventID:    uuid.New(),
			Type:       shared.EventTypeDonationCompleted,
			DonationID: donationID,
			DonorID:    uuid.New(),
			Kind:       shared.DonationKindAnimal,
			Amount:     10000,
			FeeAmount:  1000,
			Points:     4,
			OccurredAt: time.Now(),
		}
		expectedJSONValue, _ := json.Marshal(value)

		key := donationID.String()
		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			return string(msg.Key) == key && string(msg.Value) == string(expectedJSONValue)
		})).Return(nil).Once()

		err := producer.Publish(ctx, key, value)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DonationEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		key := "test-key-fail"
		value := map[string]string{"data": "test-data"}
		writerError := errors.New("kafka write error")

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.Publish(ctx, key, value)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish donation event")
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnMarshalFailure", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DonationEventProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		// Channels cannot be marshalled to JSON
		err := producer.Publish(ctx, "key", make(chan int))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to marshal donation event")
		mockWriter.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
	})
}

func TestDonationEventProducer_Close(t *testing.T) {
	logger := slog.Default()

	t.Run("SuccessfulClose", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DonationEventProducer{logger: logger, writer: mockWriter, topic: "t"}

		mockWriter.On("Close").Return(nil).Once()

		require.NoError(t, producer.Close())
		mockWriter.AssertExpectations(t)
	})

	t.Run("CloseReturnsWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &DonationEventProducer{logger: logger, writer: mockWriter, topic: "t"}

		mockWriter.On("Close").Return(errors.New("close error")).Once()

		err := producer.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to close kafka writer")
	})
}
