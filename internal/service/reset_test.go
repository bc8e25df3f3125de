package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexagonhq/hexagon/internal/model"
	"github.com/hexagonhq/hexagon/internal/repository"
)

type failingHabitRepo struct {
	repository.HabitRepository
	err error
}

func (f *failingHabitRepo) ResetNonPending(_ context.Context) (int64, error) {
	return 0, f.err
}

func TestResetService_ResetAll(t *testing.T) {
	database := newTestDB(t)
	createTestUser(t, database, "user_a")
	createTestUser(t, database, "user_b")
	repo := repository.NewHabitRepository(database)
	habits := NewHabitService(repo)
	reset := NewResetService(repo)
	ctx := context.Background()

	mkHabit := func(userID, title string, done bool) {
		in := validInput()
		in.Title = title
		h, err := habits.Create(ctx, userID, in)
		require.NoError(t, err)
		if done {
			_, err = habits.UpdateStatus(ctx, userID, h.ID, model.HabitStatusDone)
			require.NoError(t, err)
		}
	}

	mkHabit("user_a", "Read", true)
	mkHabit("user_b", "Run", true)
	mkHabit("user_a", "Write", false)

	count, err := reset.ResetAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// Idempotent: a second sweep with no intervening writes changes nothing
	count, err = reset.ResetAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	all, err := habits.Habits(ctx, "user_a", 0, 10)
	require.NoError(t, err)
	for _, h := range all {
		require.Equal(t, model.HabitStatusPending, h.Status)
	}
}

func TestResetService_PropagatesFailure(t *testing.T) {
	boom := errors.New("database gone")
	reset := NewResetService(&failingHabitRepo{err: boom})

	_, err := reset.ResetAll(context.Background())
	require.ErrorIs(t, err, boom)
}
