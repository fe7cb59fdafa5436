package repository

import (
	"context"

	"github.com/martijn/homedash/internal/core/domain"
)

// UserRepository persists users. Lookups return domain.ErrUserNotFound when no
// row matches; uniqueness violations surface as domain.ErrUsernameTaken or
// domain.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, mutation domain.UserMutation) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}
