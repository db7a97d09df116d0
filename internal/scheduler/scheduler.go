package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler runs periodic background jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	logger    *slog.Logger
}

// New creates a scheduler instance
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger,
	}
}

// ScheduleJob registers a named job to run at the given interval. The job
// receives a context bounded to the interval so a stuck run cannot overlap
// the next one indefinitely.
func (s *Scheduler) ScheduleJob(name string, interval time.Duration, job func(context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("Scheduled job failed",
				"job", name,
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			return
		}

		s.logger.Info("Scheduled job completed",
			"job", name,
			"duration_ms", time.Since(start).Milliseconds())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	return nil
}

// Start begins running all scheduled jobs in the background
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
