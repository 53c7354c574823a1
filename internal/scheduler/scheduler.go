// Package scheduler runs the background jobs of the dashboard: refreshing
// the sales cache and forgetting idle rate limit clients.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"sales-dashboard/internal/config"
)

const (
	sweepInterval = time.Minute
	sweepIdle     = 3 * time.Minute
)

type Warmer interface {
	Warm(ctx context.Context) error
}

type Sweeper interface {
	Sweep(idle time.Duration) int
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	config    config.RefreshConfig
	warmer    Warmer
	sweeper   Sweeper
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	warming       bool
	lastWarm      time.Time
	lastWarmError error
}

func New(cfg config.RefreshConfig, warmer Warmer, sweeper Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    cfg,
		warmer:    warmer,
		sweeper:   sweeper,
		logger:    logger,
	}
}

// Start schedules the jobs and runs them in the background. The cache
// refresh runs once right away, then every refresh interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.config.Enabled {
		if _, err := s.scheduler.Every(s.config.Interval).Do(s.warm); err != nil {
			return fmt.Errorf("schedule cache refresh: %w", err)
		}
		s.logger.Info("cache refresh scheduled", "interval", s.config.Interval)
	} else {
		s.logger.Info("cache refresh disabled by configuration")
	}

	if s.sweeper != nil {
		if _, err := s.scheduler.Every(sweepInterval).WaitForSchedule().Do(s.sweep); err != nil {
			return fmt.Errorf("schedule rate limit sweep: %w", err)
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops scheduling and cancels a refresh in progress.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.scheduler.Stop()
	s.logger.Info("scheduler stopped")
	return nil
}

// LastWarm reports when the last refresh finished and how it ended.
func (s *Scheduler) LastWarm() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWarm, s.lastWarmError
}

func (s *Scheduler) warm() {
	s.mu.Lock()
	if s.warming {
		s.mu.Unlock()
		s.logger.Warn("cache refresh already running")
		return
	}
	s.warming = true
	s.mu.Unlock()

	err := s.warmer.Warm(s.ctx)
	if err != nil {
		s.logger.Error("cache refresh failed", "error", err)
	}

	s.mu.Lock()
	s.warming = false
	s.lastWarm = time.Now()
	s.lastWarmError = err
	s.mu.Unlock()
}

func (s *Scheduler) sweep() {
	if n := s.sweeper.Sweep(sweepIdle); n > 0 {
		s.logger.Debug("idle rate limit clients removed", "count", n)
	}
}
