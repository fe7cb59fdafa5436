package service

import (
	"context"
	"strings"

	"github.com/martijn/homedash/internal/core/domain"
	"github.com/martijn/homedash/internal/core/repository"
)

// SettingsChange carries the optional fields of a settings update. Nil means
// "leave as is".
type SettingsChange struct {
	Username        *string
	BackgroundImage *string
}

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateSettings applies change to user in one repository update and returns
// the stored result.
func (s *UserService) UpdateSettings(ctx context.Context, user *domain.User, change SettingsChange) (*domain.User, error) {
	var mutation domain.UserMutation

	if change.Username != nil && *change.Username != user.Username {
		username := strings.TrimSpace(*change.Username)
		if username == "" {
			return nil, domain.NewValidationError("Username must not be empty")
		}
		mutation.Username = &username
	}

	// background_image is stored as given; the path is not checked on disk
	if change.BackgroundImage != nil && *change.BackgroundImage != "" {
		mutation.BackgroundImage = change.BackgroundImage
	}

	if mutation.IsEmpty() {
		return user, nil
	}

	updated, err := s.userRepo.Update(ctx, user.ID, mutation)
	if err != nil {
		return nil, internal("update settings", err)
	}
	return updated, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, internal("list users", err)
	}
	return users, nil
}
