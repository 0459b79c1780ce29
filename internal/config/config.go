// Package config provides configuration structures and validation for the
// donation engine. It handles environment-based configuration for all major
// components including the HTTP server, databases, the payment processor, and
// the reconciliation workers.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents a
// major subsystem's configuration and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	Outbox      OutboxConfig
	Payment     PaymentConfig
	Donation    DonationConfig
	GoalReset   GoalResetConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the audit archive
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains Kafka configuration for the donation event stream
type KafkaConfig struct {
	Brokers             string
	DonationEventsTopic string
	NumPartitions       int
	ReplicationFactor   int
	ConsumerGroup       string
	MinBytes            int
	MaxBytes            int
	MaxWait             time.Duration
	StartOffset         int64
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of publish attempts per message
}

// PaymentConfig contains payment processor configuration
type PaymentConfig struct {
	BaseURL        string        // Processor API base URL
	APIKey         string        // Secret API key
	WebhookSecret  string        // HMAC secret for webhook signature verification
	RequestTimeout time.Duration // Bound on every processor call
	Currency       string        // Platform currency, 3-letter code
}

// DonationConfig contains donation business rules
type DonationConfig struct {
	MinAmount         int64 // Smallest accepted donation, minor units
	MaxAmount         int64 // Largest accepted donation, minor units
	PointsRate        int64 // Minor units per reward point, floor-rounded
	GoodwillBonus     int64 // Points granted on shelter-initiated refunds
	MaxPlausibleTotal int64 // Ceiling above which a running total aborts the transaction
}

// GoalResetConfig contains the goal reset sweep configuration
type GoalResetConfig struct {
	SweepInterval time.Duration // Cadence of the sweep
	Window        time.Duration // Rolling window after which monthly goals reset
	BatchSize     int           // Animals considered per sweep
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.DonationEventsTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DONATION_EVENTS_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	// Validate Outbox config
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate Payment config
	if c.Payment.BaseURL == "" {
		validationErrors = append(validationErrors, "PAYMENT_BASE_URL is required")
	}
	if c.Payment.APIKey == "" {
		validationErrors = append(validationErrors, "PAYMENT_API_KEY is required")
	}
	if c.Payment.WebhookSecret == "" {
		validationErrors = append(validationErrors, "PAYMENT_WEBHOOK_SECRET is required")
	}
	if c.Payment.RequestTimeout <= 0 {
		validationErrors = append(validationErrors, "PAYMENT_REQUEST_TIMEOUT must be greater than 0")
	}
	if len(c.Payment.Currency) != 3 {
		validationErrors = append(validationErrors, "PAYMENT_CURRENCY must be a 3-letter code")
	}

	// Validate Donation config
	if c.Donation.MinAmount <= 0 {
		validationErrors = append(validationErrors, "DONATION_MIN_AMOUNT must be greater than 0")
	}
	if c.Donation.MaxAmount <= c.Donation.MinAmount {
		validationErrors = append(validationErrors, "DONATION_MAX_AMOUNT must be greater than DONATION_MIN_AMOUNT")
	}
	if c.Donation.PointsRate <= 0 {
		validationErrors = append(validationErrors, "DONATION_POINTS_RATE must be greater than 0")
	}
	if c.Donation.GoodwillBonus < 0 {
		validationErrors = append(validationErrors, "DONATION_GOODWILL_BONUS must not be negative")
	}
	if c.Donation.MaxPlausibleTotal <= 0 {
		validationErrors = append(validationErrors, "DONATION_MAX_PLAUSIBLE_TOTAL must be greater than 0")
	}

	// Validate GoalReset config
	if c.GoalReset.SweepInterval <= 0 {
		validationErrors = append(validationErrors, "GOAL_RESET_SWEEP_INTERVAL must be greater than 0")
	}
	if c.GoalReset.Window <= 0 {
		validationErrors = append(validationErrors, "GOAL_RESET_WINDOW must be greater than 0")
	}
	if c.GoalReset.BatchSize <= 0 {
		validationErrors = append(validationErrors, "GOAL_RESET_BATCH_SIZE must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
