package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls int
}

func (c *countingRunner) ResetAll(_ context.Context) (int64, error) {
	c.calls++
	return 0, nil
}

func TestScheduler_NextRun(t *testing.T) {
	s := New(&countingRunner{}, 3)

	// Before today's boundary: fires later today
	now := time.Date(2025, 6, 1, 1, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC), s.NextRun(now))

	// After today's boundary: fires tomorrow
	now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), s.NextRun(now))

	// Exactly at the boundary: strictly after, so tomorrow
	now = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), s.NextRun(now))
}

func TestScheduler_NextRun_MonthBoundary(t *testing.T) {
	s := New(&countingRunner{}, 0)

	now := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), s.NextRun(now))
}

func TestScheduler_RunFiresAtBoundary(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, 0)

	// Freeze time one millisecond before the boundary so the timer fires
	// almost immediately.
	fake := time.Date(2025, 6, 1, 23, 59, 59, 999000000, time.UTC)
	s.now = func() time.Time { return fake }

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	<-done
	require.GreaterOrEqual(t, runner.calls, 1)
}
