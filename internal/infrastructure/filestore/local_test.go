package filestore

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "avatars")

	store, err := NewLocal(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveWritesContent(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save("a.png", strings.NewReader("png-bytes"), 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	data, err := os.ReadFile(store.Path("a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	info, err := os.Stat(store.Path("a.png"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestSaveRejectsOversizedContent(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("big.png", bytes.NewReader(make([]byte, 11)), 10)
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "no file or temp file should be left behind")
}

func TestSaveAcceptsContentAtTheLimit(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save("exact.png", bytes.NewReader(make([]byte, 10)), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestSaveRejectsPathsOutsideTheDirectory(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape.png", "sub/dir.png"} {
		_, err := store.Save(name, strings.NewReader("x"), 0)
		assert.Error(t, err, name)
	}
}

func TestRemove(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("old.png", strings.NewReader("x"), 0)
	require.NoError(t, err)

	require.NoError(t, store.Remove("old.png"))
	_, err = os.Stat(store.Path("old.png"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Remove("old.png"))
	assert.Error(t, store.Remove("../old.png"))
}
