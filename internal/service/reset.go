package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hexagonhq/hexagon/internal/repository"
)

// ResetService returns every non-pending habit to pending. The sweep runs
// across all users; it is a maintenance operation, not a user-scoped one.
// The daily scheduler, the admin endpoint, and the standalone reset command
// all go through ResetAll.
type ResetService struct {
	repo repository.HabitRepository
}

func NewResetService(repo repository.HabitRepository) *ResetService {
	return &ResetService{repo: repo}
}

// ResetAll performs the sweep and returns the number of habits changed.
// Failures propagate to the caller; the sweep never reports a partial count.
func (s *ResetService) ResetAll(ctx context.Context) (int64, error) {
	count, err := s.repo.ResetNonPending(ctx)
	if err != nil {
		slog.Error("habit reset sweep failed", "error", err)
		return 0, fmt.Errorf("failed to reset habits: %w", err)
	}

	slog.Info("habit reset sweep completed", "reset", count)
	return count, nil
}
