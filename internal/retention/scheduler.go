package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Pruner on a cron schedule, for unattended deployments
// where nothing else triggers retention.
type Scheduler struct {
	pruner   *Pruner
	schedule string
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewScheduler creates a Scheduler that prunes on the given standard cron
// expression, e.g. "0 3 * * *" for daily at 3 AM.
func NewScheduler(pruner *Pruner, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pruner:   pruner,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start validates the schedule and begins pruning on it. The scheduler stops
// itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.prune(ctx) }); err != nil {
		return fmt.Errorf("scheduling prune: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("retention scheduler started", slog.String("schedule", s.schedule))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the schedule and waits for a running prune to finish. Safe to
// call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// Running reports whether the scheduler has been started and not yet stopped.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) prune(ctx context.Context) {
	removed, err := s.pruner.PruneOnce(ctx)
	if err != nil {
		s.logger.Error("scheduled prune failed", slog.Any("error", err))
		return
	}
	s.logger.Debug("scheduled prune completed", slog.Int64("removed", removed))
}
