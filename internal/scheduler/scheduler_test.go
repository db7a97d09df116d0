package scheduler

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return New(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestScheduler_ScheduleJobRejectsNonPositiveInterval(t *testing.T) {
	s := newTestScheduler(t)

	noop := func(ctx context.Context) error { return nil }

	for _, interval := range []time.Duration{0, -time.Minute} {
		if err := s.ScheduleJob("sweep", interval, noop); err == nil {
			t.Errorf("interval %v should be rejected", interval)
		}
	}
}

func TestScheduler_RunsScheduledJob(t *testing.T) {
	s := newTestScheduler(t)

	fired := make(chan struct{}, 1)
	err := s.ScheduleJob("sweep", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ScheduleJob failed: %v", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	// Stop must be safe when nothing was ever scheduled, which is the
	// shutdown path when the sweep interval is zero
	s := newTestScheduler(t)
	s.Stop()
}
