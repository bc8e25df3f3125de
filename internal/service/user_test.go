package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hexagonhq/hexagon/internal/repository"
)

type fakeProfileProvider struct {
	profile *Profile
	err     error
	calls   atomic.Int64
}

func (f *fakeProfileProvider) Fetch(_ context.Context, _ string) (*Profile, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func TestUserService_Resolve_CreatesOnFirstSight(t *testing.T) {
	database := newTestDB(t)
	provider := &fakeProfileProvider{profile: &Profile{
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
		Metadata: []byte(`{"plan":"free"}`),
	}}
	s := NewUserService(repository.NewUserRepository(database), provider)
	ctx := context.Background()

	user, err := s.Resolve(ctx, "user_2abc")
	require.NoError(t, err)
	require.Equal(t, "user_2abc", user.ID)
	require.Equal(t, "ada@example.com", user.Email)
	require.Equal(t, "Ada Lovelace", user.FullName)
	require.EqualValues(t, 1, provider.calls.Load())

	// Second resolution hits the local record, not the provider
	again, err := s.Resolve(ctx, "user_2abc")
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
	require.EqualValues(t, 1, provider.calls.Load())
}

func TestUserService_Resolve_ConcurrentFirstResolution(t *testing.T) {
	database := newTestDB(t)
	provider := &fakeProfileProvider{profile: &Profile{
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
	}}
	s := NewUserService(repository.NewUserRepository(database), provider)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Resolve(context.Background(), "user_2abc")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM users WHERE id = $1`, "user_2abc"))
	require.Equal(t, 1, count)
}

func TestUserService_Resolve_ProviderFailure(t *testing.T) {
	database := newTestDB(t)
	boom := errors.New("provider unavailable")
	s := NewUserService(repository.NewUserRepository(database), &fakeProfileProvider{err: boom})

	_, err := s.Resolve(context.Background(), "user_2abc")
	require.ErrorIs(t, err, boom)
}

func TestUserService_Delete_CascadesHabits(t *testing.T) {
	database := newTestDB(t)
	createTestUser(t, database, "user_a")
	habitRepo := repository.NewHabitRepository(database)
	habits := NewHabitService(habitRepo)
	users := NewUserService(repository.NewUserRepository(database), &fakeProfileProvider{})
	ctx := context.Background()

	habit, err := habits.Create(ctx, "user_a", validInput())
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, "user_a"))

	_, err = habitRepo.ByID(ctx, "user_a", habit.ID)
	require.ErrorIs(t, err, repository.ErrHabitNotFound)
}
