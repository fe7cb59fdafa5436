package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/martijn/homedash/internal/core/domain"
	"github.com/martijn/homedash/internal/core/repository"
)

const selectUser = `
	SELECT id, username, email, hashed_password, avatar_url, background_image, created_at
	FROM users
`

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create checks username and email before inserting. The unique indexes still
// decide when two writers race past the checks.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.ensureFree(ctx, "username = ?", user.Username, domain.ErrUsernameTaken); err != nil {
		return err
	}
	if err := r.ensureFree(ctx, "email = ?", user.Email, domain.ErrEmailTaken); err != nil {
		return err
	}

	query := `
		INSERT INTO users (username, email, hashed_password, avatar_url, background_image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	args := []interface{}{
		user.Username,
		user.Email,
		user.HashedPassword,
		user.AvatarURL,
		user.BackgroundImage,
		user.CreatedAt,
	}

	if r.db.driver == DriverMySQL {
		result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
		if err != nil {
			return insertError(err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read user id: %w", err)
		}
		user.ID = id
		return nil
	}

	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query+" RETURNING id"), args...).Scan(&user.ID); err != nil {
		return insertError(err)
	}
	return nil
}

func (r *userRepository) ensureFree(ctx context.Context, where string, value string, conflict *domain.ConflictError) error {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE ` + where)
	if err := r.db.GetContext(ctx, &count, query, value); err != nil {
		return fmt.Errorf("failed to check %s: %w", conflict.Field, err)
	}
	if count > 0 {
		return conflict
	}
	return nil
}

func insertError(err error) error {
	if conflict := uniqueViolation(err); conflict != nil {
		return conflict
	}
	return fmt.Errorf("failed to create user: %w", err)
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, r.db.DB, "id = ?", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, r.db.DB, "username = ?", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, r.db.DB, "email = ?", email)
}

func (r *userRepository) findOne(ctx context.Context, q sqlx.QueryerContext, where string, arg interface{}) (*domain.User, error) {
	var user domain.User
	err := sqlx.GetContext(ctx, q, &user, r.db.Rebind(selectUser+" WHERE "+where), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// Update applies mutation in a single transaction. Nothing is written unless
// every step succeeds.
func (r *userRepository) Update(ctx context.Context, id int64, mutation domain.UserMutation) (*domain.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	user, err := r.applyMutation(ctx, tx, id, mutation)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return nil, fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to commit user update: %w", err)
	}

	return user, nil
}

func (r *userRepository) applyMutation(ctx context.Context, tx *sqlx.Tx, id int64, mutation domain.UserMutation) (*domain.User, error) {
	user, err := r.findOne(ctx, tx, "id = ?", id)
	if err != nil {
		return nil, err
	}

	if mutation.Username != nil && *mutation.Username != user.Username {
		var taken int
		query := tx.Rebind(`SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?`)
		if err := tx.GetContext(ctx, &taken, query, *mutation.Username, id); err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken > 0 {
			return nil, domain.ErrUsernameTaken
		}
		user.Username = *mutation.Username
	}
	if mutation.BackgroundImage != nil {
		user.BackgroundImage = mutation.BackgroundImage
	}
	if mutation.AvatarURL != nil {
		user.AvatarURL = mutation.AvatarURL
	}

	query := `
		UPDATE users
		SET username = ?, background_image = ?, avatar_url = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, tx.Rebind(query),
		user.Username,
		user.BackgroundImage,
		user.AvatarURL,
		id,
	)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 && r.db.driver != DriverMySQL {
		// mysql reports zero rows when the values did not change
		return nil, domain.ErrUserNotFound
	}

	return r.findOne(ctx, tx, "id = ?", id)
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := r.db.SelectContext(ctx, &users, selectUser+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
