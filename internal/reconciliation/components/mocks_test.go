package components

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/pawhaven-donation-engine/internal/domain/animal"
	"github.com/pawhaven-donation-engine/internal/domain/campaign"
	"github.com/pawhaven-donation-engine/internal/domain/donor"
	"github.com/pawhaven-donation-engine/internal/domain/outbox"
	"github.com/pawhaven-donation-engine/internal/domain/reward"
	"github.com/pawhaven-donation-engine/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Donation: config.DonationConfig{
			MinAmount:         100,
			MaxAmount:         1_000_000,
			PointsRate:        2500,
			GoodwillBonus:     5,
			MaxPlausibleTotal: 10_000_000_000_000,
		},
		GoalReset: config.GoalResetConfig{
			SweepInterval: 24 * time.Hour,
			Window:        31 * 24 * time.Hour,
			BatchSize:     500,
		},
	}
}

// MockTx implements the pgx.Tx interface for testing
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return &pgconn.StatementDescription{}, nil
}

func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *MockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *MockTx) Conn() *pgx.Conn {
	return nil
}

type MockAnimalRepository struct {
	mock.Mock
}

func (m *MockAnimalRepository) GetByID(ctx context.Context, id uuid.UUID) (*animal.Animal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*animal.Animal), args.Error(1)
}

func (m *MockAnimalRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*animal.Animal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*animal.Animal), args.Error(1)
}

func (m *MockAnimalRepository) Update(ctx context.Context, a *animal.Animal) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnimalRepository) ListGoalResetDue(ctx context.Context, cutoff time.Time, limit int) ([]*animal.Animal, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*animal.Animal), args.Error(1)
}

func (m *MockAnimalRepository) ResetGoals(ctx context.Context, id uuid.UUID, previousResetAt, now time.Time) error {
	args := m.Called(ctx, id, previousResetAt, now)
	return args.Error(0)
}

func (m *MockAnimalRepository) WithTx(tx pgx.Tx) animal.Repository {
	return m
}

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaign.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaign.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCampaignRepository) WithTx(tx pgx.Tx) campaign.Repository {
	return m
}

type MockDonorRepository struct {
	mock.Mock
}

func (m *MockDonorRepository) GetByID(ctx context.Context, id uuid.UUID) (*donor.Donor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*donor.Donor), args.Error(1)
}

func (m *MockDonorRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*donor.Donor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*donor.Donor), args.Error(1)
}

func (m *MockDonorRepository) UpdateRewardPoints(ctx context.Context, id uuid.UUID, balance int64) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

func (m *MockDonorRepository) WithTx(tx pgx.Tx) donor.Repository {
	return m
}

type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) Append(ctx context.Context, entry *reward.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRewardRepository) ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*reward.Entry, error) {
	args := m.Called(ctx, donorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reward.Entry), args.Error(1)
}

func (m *MockRewardRepository) CountByDonor(ctx context.Context, donorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRewardRepository) SumByDonor(ctx context.Context, donorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRewardRepository) WithTx(tx pgx.Tx) reward.Repository {
	return m
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}
