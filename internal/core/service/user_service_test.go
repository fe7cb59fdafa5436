package service

import (
	"context"
	"errors"
	"testing"

	"github.com/martijn/homedash/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSettingsRename(t *testing.T) {
	repo := newTestRepo(t)
	users := NewUserService(repo)
	user := seedUser(t, repo, "alice", "a@x.com")

	updated, err := users.UpdateSettings(context.Background(), user, SettingsChange{Username: ptr("  alicia ")})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", stored.Username)
}

func TestUpdateSettingsUnchangedUsernameNeverConflicts(t *testing.T) {
	repo := newTestRepo(t)
	users := NewUserService(repo)
	user := seedUser(t, repo, "alice", "a@x.com")

	updated, err := users.UpdateSettings(context.Background(), user, SettingsChange{
		Username:        ptr("alice"),
		BackgroundImage: ptr("/uploads/backgrounds/x.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "/uploads/backgrounds/x.png", *updated.BackgroundImage)
}

func TestUpdateSettingsUsernameTaken(t *testing.T) {
	repo := newTestRepo(t)
	users := NewUserService(repo)
	alice := seedUser(t, repo, "alice", "a@x.com")
	seedUser(t, repo, "bob", "b@x.com")

	_, err := users.UpdateSettings(context.Background(), alice, SettingsChange{Username: ptr("bob")})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestUpdateSettingsRejectsBlankUsername(t *testing.T) {
	repo := newTestRepo(t)
	users := NewUserService(repo)
	user := seedUser(t, repo, "alice", "a@x.com")

	_, err := users.UpdateSettings(context.Background(), user, SettingsChange{Username: ptr("   ")})
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestUpdateSettingsIgnoresEmptyBackground(t *testing.T) {
	repo := newTestRepo(t)
	users := NewUserService(repo)
	user := seedUser(t, repo, "alice", "a@x.com")

	updated, err := users.UpdateSettings(context.Background(), user, SettingsChange{BackgroundImage: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBackgroundImage, *updated.BackgroundImage)

	updated, err = users.UpdateSettings(context.Background(), user, SettingsChange{})
	require.NoError(t, err)
	assert.Same(t, user, updated)
}

func TestUpdateSettingsStorageFailureIsInternal(t *testing.T) {
	repo := newTestRepo(t)
	user := seedUser(t, repo, "alice", "a@x.com")
	users := NewUserService(&failingUpdateRepo{UserRepository: repo, err: errors.New("disk full")})

	_, err := users.UpdateSettings(context.Background(), user, SettingsChange{Username: ptr("alicia")})

	var internalErr *InternalError
	require.ErrorAs(t, err, &internalErr)
	assert.Equal(t, "update settings", internalErr.Op)
}

func TestListUsers(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "alice", "a@x.com")
	seedUser(t, repo, "bob", "b@x.com")

	list, err := NewUserService(repo).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
}
