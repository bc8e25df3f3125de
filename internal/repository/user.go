package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/hexagonhq/hexagon/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	// CreateIfAbsent inserts the user unless a row with the same id already
	// exists, then returns the stored row either way.
	CreateIfAbsent(ctx context.Context, user *model.User) (*model.User, error)
	ByID(ctx context.Context, id string) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateIfAbsent closes the first-resolution race with a conflict-tolerant
// insert: concurrent callers for the same subject all converge on the row
// written by whichever insert won.
func (r *userRepository) CreateIfAbsent(ctx context.Context, user *model.User) (*model.User, error) {
	query := `INSERT INTO users (id, email, full_name, metadata, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		user.Metadata,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return r.ByID(ctx, user.ID)
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes the user; owned habits go with it via ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
