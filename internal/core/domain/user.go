package domain

import "time"

// DefaultBackgroundImage is the background assigned to every new user.
const DefaultBackgroundImage = "default_bg.png"

type User struct {
	ID              int64     `db:"id"`
	Username        string    `db:"username"`
	Email           string    `db:"email"`
	HashedPassword  string    `db:"hashed_password" json:"-"` // bcrypt hashed
	AvatarURL       *string   `db:"avatar_url"`
	BackgroundImage *string   `db:"background_image"`
	CreatedAt       time.Time `db:"created_at"`
}

func NewUser(username, email, hashedPassword string) *User {
	background := DefaultBackgroundImage
	return &User{
		Username:        username,
		Email:           email,
		HashedPassword:  hashedPassword,
		BackgroundImage: &background,
		CreatedAt:       time.Now().UTC(),
	}
}

// UserMutation is a partial change to a user. Nil fields are left untouched.
type UserMutation struct {
	Username        *string
	BackgroundImage *string
	AvatarURL       *string
}

func (m UserMutation) IsEmpty() bool {
	return m.Username == nil && m.BackgroundImage == nil && m.AvatarURL == nil
}
