package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/hexagonhq/hexagon/internal/model"
)

var (
	ErrHabitNotFound  = errors.New("habit not found")
	ErrDuplicateTitle = errors.New("habit title already exists")
)

type HabitRepository interface {
	Create(ctx context.Context, habit *model.Habit) error
	ByID(ctx context.Context, userID, habitID string) (*model.Habit, error)
	Habits(ctx context.Context, userID string, offset, limit int) ([]*model.Habit, error)
	Mutate(ctx context.Context, userID, habitID string, fn func(habit *model.Habit) error) (*model.Habit, error)
	Delete(ctx context.Context, userID, habitID string) error
	ResetNonPending(ctx context.Context) (int64, error)
}

type habitRepository struct {
	db *sqlx.DB
}

func NewHabitRepository(db *sqlx.DB) HabitRepository {
	return &habitRepository{db: db}
}

// Create inserts a habit. The duplicate-title check and the insert run in one
// transaction so two concurrent creates cannot both pass the check; the unique
// index on (user_id, title_norm) backstops the race at the constraint level.
func (r *habitRepository) Create(ctx context.Context, habit *model.Habit) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	taken, err := titleTaken(ctx, tx, habit.UserID, habit.TitleNorm, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateTitle
	}

	query := `INSERT INTO habits (id, user_id, title, title_norm, status, category, progress, target, frequency, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.ExecContext(ctx, query,
		habit.ID,
		habit.UserID,
		habit.Title,
		habit.TitleNorm,
		habit.Status,
		habit.Category,
		habit.Progress,
		habit.Target,
		habit.Frequency,
		habit.Active,
		habit.CreatedAt,
		habit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTitle
		}
		return err
	}

	return tx.Commit()
}

func (r *habitRepository) ByID(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	habit := &model.Habit{}
	query := `SELECT * FROM habits WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, habit, query, habitID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}

	return habit, nil
}

// Habits returns the user's habits in insertion order.
func (r *habitRepository) Habits(ctx context.Context, userID string, offset, limit int) ([]*model.Habit, error) {
	habits := []*model.Habit{}
	query := `SELECT * FROM habits WHERE user_id = $1 ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &habits, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return habits, nil
}

// Mutate loads the habit, applies fn to it, and writes the result back, all
// inside one transaction (with a row lock on PostgreSQL). Concurrent mutations
// of the same habit serialize; fn always sees the committed row, and an error
// from fn rolls everything back.
func (r *habitRepository) Mutate(ctx context.Context, userID, habitID string, fn func(habit *model.Habit) error) (*model.Habit, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	habit := &model.Habit{}
	selectQuery := `SELECT * FROM habits WHERE id = $1 AND user_id = $2`
	if r.db.DriverName() == "pgx" {
		selectQuery += " FOR UPDATE"
	}

	err = tx.GetContext(ctx, habit, selectQuery, habitID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}

	err = fn(habit)
	if err != nil {
		return nil, err
	}

	habit.TitleNorm = model.NormalizeTitle(habit.Title)

	taken, err := titleTaken(ctx, tx, habit.UserID, habit.TitleNorm, habit.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateTitle
	}

	habit.UpdatedAt = time.Now().UTC()

	query := `UPDATE habits
	          SET title = $1, title_norm = $2, status = $3, category = $4, progress = $5, target = $6, frequency = $7, active = $8, updated_at = $9
	          WHERE id = $10 AND user_id = $11`

	_, err = tx.ExecContext(ctx, query,
		habit.Title,
		habit.TitleNorm,
		habit.Status,
		habit.Category,
		habit.Progress,
		habit.Target,
		habit.Frequency,
		habit.Active,
		habit.UpdatedAt,
		habit.ID,
		habit.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return habit, nil
}

func (r *habitRepository) Delete(ctx context.Context, userID, habitID string) error {
	query := `DELETE FROM habits WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, habitID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrHabitNotFound
	}

	return nil
}

// ResetNonPending returns every non-pending habit to pending across all users.
// A single statement keeps the sweep all-or-nothing; the row count makes the
// operation idempotent (a second run matches nothing and returns 0).
func (r *habitRepository) ResetNonPending(ctx context.Context) (int64, error) {
	query := `UPDATE habits SET status = $1 WHERE status != $2`

	result, err := r.db.ExecContext(ctx, query, model.HabitStatusPending, model.HabitStatusPending)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func titleTaken(ctx context.Context, tx *sqlx.Tx, userID, titleNorm, excludeID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM habits WHERE user_id = $1 AND title_norm = $2 AND id != $3`
	err := tx.QueryRowContext(ctx, query, userID, titleNorm, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// isUniqueViolation detects unique constraint errors for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}
