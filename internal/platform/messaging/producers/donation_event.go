package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

type DonationEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new donation event producer and ensures topic exists
func NewDonationEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DonationEventProducer, error) {
	if cfg.DonationEventsTopic == "" {
		return nil, fmt.Errorf("kafka donation events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for donation event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.DonationEventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists for donation event producer: %w", cfg.DonationEventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DonationEventsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &DonationEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.DonationEventsTopic,
	}, nil
}

func (p *DonationEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal donation event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish donation event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish donation event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published donation event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *DonationEventProducer) Close() error {
	p.logger.Info("Closing donation event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
