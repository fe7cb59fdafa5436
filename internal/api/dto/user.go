package dto

import (
	"time"

	"github.com/martijn/homedash/internal/core/domain"
)

// UserResponse is the public view of a user. The password hash never leaves
// the server.
type UserResponse struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	AvatarURL       *string   `json:"avatar_url"`
	BackgroundImage *string   `json:"background_image"`
	CreatedAt       time.Time `json:"created_at"`
}

// UpdateSettingsRequest represents a partial settings update
type UpdateSettingsRequest struct {
	Username        *string `json:"username"`
	BackgroundImage *string `json:"background_image"`
}

func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		AvatarURL:       user.AvatarURL,
		BackgroundImage: user.BackgroundImage,
		CreatedAt:       user.CreatedAt,
	}
}
