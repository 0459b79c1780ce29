// Package goalsweep resets stale monthly care goals. Goal resets normally
// piggyback on donation confirmations; the sweeper is the backstop that
// catches animals nobody has donated to in a full window.
package goalsweep

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pawhaven-donation-engine/internal/config"
	"github.com/pawhaven-donation-engine/internal/domain/animal"
)

// Sweeper periodically scans for animals whose goal reset window has elapsed
// and resets them through a bounded worker pool
type Sweeper struct {
	animalRepo animal.Repository
	pool       *ants.Pool
	logger     *slog.Logger
	interval   time.Duration
	window     time.Duration
	batchSize  int
}

// NewSweeper creates a goal reset sweeper backed by a worker pool
func NewSweeper(cfg *config.Config, animalRepo animal.Repository, logger *slog.Logger) (*Sweeper, error) {
	pool, err := ants.NewPool(cfg.WorkerPool.Size)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		animalRepo: animalRepo,
		pool:       pool,
		logger:     logger,
		interval:   cfg.GoalReset.SweepInterval,
		window:     cfg.GoalReset.Window,
		batchSize:  cfg.GoalReset.BatchSize,
	}, nil
}

// Start runs the sweep loop until the context is canceled. One sweep runs
// immediately on startup so a long-stopped worker catches up without waiting
// a full interval.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting goal reset sweeper",
		"interval", s.interval.String(),
		"window", s.window.String(),
		"batch_size", s.batchSize,
	)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Goal reset sweeper stopping due to context cancellation")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.window)

	animals, err := s.animalRepo.ListGoalResetDue(ctx, cutoff, s.batchSize)
	if err != nil {
		s.logger.Error("Failed to list animals due for goal reset", "error", err)
		return
	}
	if len(animals) == 0 {
		s.logger.Debug("No animals due for goal reset")
		return
	}

	s.logger.Info("Sweeping stale care goals", "count", len(animals), "cutoff", cutoff)

	var wg sync.WaitGroup
	for _, a := range animals {
		a := a
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			s.resetOne(ctx, a)
		})
		if err != nil {
			wg.Done()
			s.logger.Error("Failed to submit goal reset task", "animal_id", a.ID.String(), "error", err)
		}
	}
	wg.Wait()
}

func (s *Sweeper) resetOne(ctx context.Context, a *animal.Animal) {
	now := time.Now()
	err := s.animalRepo.ResetGoals(ctx, a.ID, a.Care.LastResetAt, now)
	if err != nil {
		// A reset folded into a concurrent confirmation wins over the
		// sweeper; that is the expected race, not a failure.
		if errors.Is(err, animal.ErrConcurrentReset{}) {
			s.logger.Debug("Goal reset already applied concurrently", "animal_id", a.ID.String())
			return
		}
		s.logger.Error("Failed to reset animal goals", "animal_id", a.ID.String(), "error", err)
		return
	}

	s.logger.Info("Care goals reset",
		"animal_id", a.ID.String(),
		"previous_reset_at", a.Care.LastResetAt,
		"reset_at", now,
	)
}

// Shutdown releases the worker pool
func (s *Sweeper) Shutdown() {
	s.logger.Info("Shutting down goal reset sweeper", "running_workers", s.pool.Running())
	s.pool.Release()
}
