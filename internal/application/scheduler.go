package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultRefreshInterval = 6 * time.Hour
	defaultSweepInterval   = 24 * time.Hour
)

// Generator produces the playlist.
type Generator interface {
	Generate(ctx context.Context) error
}

// Sweeper removes stale logo cache entries.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Scheduler regenerates the playlist and sweeps the logo cache periodically.
type Scheduler struct {
	generator       Generator
	sweeper         Sweeper
	refreshInterval time.Duration
	sweepInterval   time.Duration
	logger          *slog.Logger
}

// NewScheduler creates a scheduler. sweeper may be nil when the logo cache is disabled.
// Zero intervals mean 6h for refresh and 24h for sweeps.
func NewScheduler(generator Generator, sweeper Sweeper, refreshInterval, sweepInterval time.Duration, logger *slog.Logger) *Scheduler {
	if refreshInterval <= 0 {
		refreshInterval = defaultRefreshInterval
	}
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		generator:       generator,
		sweeper:         sweeper,
		refreshInterval: refreshInterval,
		sweepInterval:   sweepInterval,
		logger:          logger,
	}
}

// Run generates and sweeps once immediately, then on every tick, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.every(ctx, s.refreshInterval, s.generate)
	}()

	if s.sweeper != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.every(ctx, s.sweepInterval, s.sweep)
		}()
	}

	wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (s *Scheduler) generate(ctx context.Context) {
	err := s.generator.Generate(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrGenerationInProgress):
		s.logger.Info("scheduled generation skipped, another one is running")
	case ctx.Err() != nil:
	default:
		s.logger.Error("scheduled playlist generation failed", "error", err)
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if _, err := s.sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("logo cache sweep failed", "error", err)
	}
}
