package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/martijn/homedash/internal/core/domain"
	"github.com/martijn/homedash/internal/core/repository"
	"github.com/martijn/homedash/internal/infrastructure/database"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key"

func newTestRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	database.SetMigrationLogger(discardLogger())

	db, err := database.New(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))

	return database.NewUserRepository(db)
}

func newTestAuthService(t *testing.T, repo repository.UserRepository) (*AuthService, *TokenService) {
	t.Helper()

	tokens, err := NewTokenService(testSecret, "HS256", 30*time.Minute)
	require.NoError(t, err)

	return NewAuthService(repo, NewCredentialStore(bcrypt.MinCost), tokens), tokens
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, repo repository.UserRepository, username, email string) *domain.User {
	t.Helper()

	user := domain.NewUser(username, email, "hash")
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

// failingUpdateRepo behaves like the wrapped repository except that every
// Update fails.
type failingUpdateRepo struct {
	repository.UserRepository
	err error
}

func (r *failingUpdateRepo) Update(context.Context, int64, domain.UserMutation) (*domain.User, error) {
	return nil, r.err
}

func ptr[T any](v T) *T {
	return &v
}
