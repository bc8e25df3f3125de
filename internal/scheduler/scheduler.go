// Package scheduler triggers the daily habit reset sweep at a fixed UTC hour.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// ResetRunner is the sweep the scheduler invokes once per day.
type ResetRunner interface {
	ResetAll(ctx context.Context) (int64, error)
}

type Scheduler struct {
	runner  ResetRunner
	hourUTC int
	now     func() time.Time
}

func New(runner ResetRunner, hourUTC int) *Scheduler {
	return &Scheduler{
		runner:  runner,
		hourUTC: hourUTC,
		now:     time.Now,
	}
}

// Run blocks until ctx is done, firing the sweep at each daily boundary.
// Failures are logged and the loop keeps going; retry policy belongs to the
// infrastructure around the process, not here.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.NextRun(s.now())
		slog.Info("habit reset scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("habit reset scheduler stopped")
			return
		case <-timer.C:
		}

		_, err := s.runner.ResetAll(ctx)
		if err != nil {
			slog.Error("scheduled habit reset failed", "error", err)
		}
	}
}

// NextRun returns the next daily boundary at the configured hour, strictly
// after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
