package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hexagonhq/hexagon/internal/model"
	"github.com/hexagonhq/hexagon/internal/repository"
)

// Profile is the identity-provider view of a subject, synced into the local
// user record on first resolution.
type Profile struct {
	Email    string
	FullName string
	Metadata []byte
}

// ProfileProvider fetches profile data from the external identity provider.
type ProfileProvider interface {
	Fetch(ctx context.Context, subjectID string) (*Profile, error)
}

type UserService struct {
	repo     repository.UserRepository
	profiles ProfileProvider
}

func NewUserService(repo repository.UserRepository, profiles ProfileProvider) *UserService {
	return &UserService{repo: repo, profiles: profiles}
}

// Resolve maps a verified provider subject to the local user record, creating
// one on first sight. Safe under concurrent first resolution: the insert is
// conflict-tolerant and every caller reads back the winning row.
func (s *UserService) Resolve(ctx context.Context, subjectID string) (*model.User, error) {
	user, err := s.repo.ByID(ctx, subjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	profile, err := s.profiles.Fetch(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", subjectID, err)
	}

	now := time.Now().UTC()
	user, err = s.repo.CreateIfAbsent(ctx, &model.User{
		ID:        subjectID,
		Email:     profile.Email,
		FullName:  profile.FullName,
		Metadata:  profile.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("created local user from identity provider", "user_id", user.ID)
	return user, nil
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.ByID(ctx, id)
}

// Delete removes the local user and, via cascade, every habit they own.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
