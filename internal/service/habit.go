package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hexagonhq/hexagon/internal/model"
	"github.com/hexagonhq/hexagon/internal/repository"
	"github.com/hexagonhq/hexagon/internal/validation"
)

var (
	ErrInvalidHabit           = errors.New("invalid habit input")
	ErrCannotCompleteInactive = errors.New("cannot mark inactive habit done")
)

const defaultListLimit = 100

// HabitInput names every caller-mutable habit field. Create and Update take
// the full set; nothing is copied field-by-field from the wire.
type HabitInput struct {
	Title     string
	Status    string
	Category  string
	Progress  int
	Target    int
	Frequency string
	Active    bool
}

type HabitService struct {
	repo repository.HabitRepository
}

func NewHabitService(repo repository.HabitRepository) *HabitService {
	return &HabitService{repo: repo}
}

func (s *HabitService) Create(ctx context.Context, userID string, in HabitInput) (*model.Habit, error) {
	err := validation.ValidateHabit(in.Title, in.Status, in.Category, in.Progress, in.Target, in.Frequency)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidHabit)
	}

	now := time.Now().UTC()
	title := strings.TrimSpace(in.Title)
	habit := &model.Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		TitleNorm: model.NormalizeTitle(title),
		Status:    in.Status,
		Category:  in.Category,
		Progress:  in.Progress,
		Target:    in.Target,
		Frequency: in.Frequency,
		Active:    in.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(ctx, habit)
	if err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ByID(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	return s.repo.ByID(ctx, userID, habitID)
}

func (s *HabitService) Habits(ctx context.Context, userID string, offset, limit int) ([]*model.Habit, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.Habits(ctx, userID, offset, limit)
}

// UpdateStatus applies the status transition rules:
//   - done on an inactive habit is refused before any progress change
//   - entering done from pending increments progress
//   - leaving done decrements progress, floored at zero
//   - a no-op transition succeeds without touching progress
func (s *HabitService) UpdateStatus(ctx context.Context, userID, habitID, newStatus string) (*model.Habit, error) {
	if !model.ValidStatus(newStatus) {
		return nil, fmt.Errorf("unknown status %q: %w", newStatus, ErrInvalidHabit)
	}

	// The rules run against the row as it exists inside the mutation
	// transaction, so a deactivation landing just before cannot be missed.
	return s.repo.Mutate(ctx, userID, habitID, func(habit *model.Habit) error {
		if newStatus == model.HabitStatusDone && !habit.Active {
			return ErrCannotCompleteInactive
		}

		if newStatus == model.HabitStatusDone && !habit.IsDone() {
			habit.Progress++
		}
		if newStatus != model.HabitStatusDone && habit.IsDone() {
			habit.Progress--
			if habit.Progress < 0 {
				habit.Progress = 0
			}
		}

		habit.Status = newStatus
		return nil
	})
}

// ToggleActive flips the active flag and nothing else. A done habit may go
// inactive; it just cannot be marked done again until reactivated.
func (s *HabitService) ToggleActive(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	return s.repo.Mutate(ctx, userID, habitID, func(habit *model.Habit) error {
		habit.Active = !habit.Active
		return nil
	})
}

func (s *HabitService) Update(ctx context.Context, userID, habitID string, in HabitInput) (*model.Habit, error) {
	err := validation.ValidateHabit(in.Title, in.Status, in.Category, in.Progress, in.Target, in.Frequency)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidHabit)
	}

	return s.repo.Mutate(ctx, userID, habitID, func(habit *model.Habit) error {
		habit.Title = strings.TrimSpace(in.Title)
		habit.Status = in.Status
		habit.Category = in.Category
		habit.Progress = in.Progress
		habit.Target = in.Target
		habit.Frequency = in.Frequency
		habit.Active = in.Active
		return nil
	})
}

func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	return s.repo.Delete(ctx, userID, habitID)
}
