package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOMEDASH_JWT_SECRET_KEY", "cli-test-secret")
	t.Setenv("HOMEDASH_DATABASE_URL", filepath.Join(dir, "homedash.db"))
	t.Setenv("HOMEDASH_UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("HOMEDASH_BCRYPT_COST", "4")
	t.Setenv("HOMEDASH_LOG_LEVEL", "error")

	cfgFile = ""
	usersAddEmail = ""
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionSkipsConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEDASH_JWT_SECRET_KEY", "")

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestCommandsRequireSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOMEDASH_JWT_SECRET_KEY", "")

	_, err := run(t, "users", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestUsersSeedIsIdempotent(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "users", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo user 'test' created")

	out, err = run(t, "users", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "already present")

	out, err = run(t, "users", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "USERNAME")
	assert.Contains(t, lines[1], "test@example.com")
}

func TestUsersListEmpty(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "users", "list")
	require.NoError(t, err)
	assert.Equal(t, "No users found\n", out)
}

func TestUsersAdd(t *testing.T) {
	setupCLI(t)

	prompts := []string{"s3cret!", "s3cret!"}
	orig := readPassword
	readPassword = func(string) (string, error) {
		p := prompts[0]
		prompts = prompts[1:]
		return p, nil
	}
	t.Cleanup(func() { readPassword = orig })

	out, err := run(t, "users", "add", "alice", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "User 'alice' created with id 1")

	out, err = run(t, "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")
}

func TestUsersAddRejectsMismatchedPasswords(t *testing.T) {
	setupCLI(t)

	prompts := []string{"one", "two"}
	orig := readPassword
	readPassword = func(string) (string, error) {
		p := prompts[0]
		prompts = prompts[1:]
		return p, nil
	}
	t.Cleanup(func() { readPassword = orig })

	_, err := run(t, "users", "add", "bob", "--email", "bob@example.com")
	require.EqualError(t, err, "passwords do not match")
}

func TestMigrateUpAndDown(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "Schema version: 2\n", out)

	out, err = run(t, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "Schema version: 1\n", out)
}

func TestMigrateStatus(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "migrate", "up")
	require.NoError(t, err)
	_, err = run(t, "migrate", "down")
	require.NoError(t, err)

	out, err := run(t, "migrate", "status")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "VERSION")
	assert.Contains(t, lines[1], "00001_create_users.sql")
	assert.NotContains(t, lines[1], "pending")
	assert.Contains(t, lines[2], "00002_add_user_fields.sql")
	assert.Contains(t, lines[2], "pending")
}
