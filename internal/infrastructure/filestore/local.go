package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTooLarge is returned by Save when the content exceeds the size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// Local stores files flat in a single directory.
type Local struct {
	dir string
}

// NewLocal creates dir if needed and returns a store rooted at it.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Dir() string {
	return l.dir
}

// Path returns the on-disk location of name.
func (l *Local) Path(name string) string {
	return filepath.Join(l.dir, name)
}

// Save writes at most maxBytes from r under name. The content goes to a temp
// file first and is renamed into place, so readers never see a partial file.
// maxBytes <= 0 disables the limit.
func (l *Local) Save(name string, r io.Reader, maxBytes int64) (int64, error) {
	if err := validName(name); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			os.Remove(tmpName)
		}
	}()

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}

	n, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	if maxBytes > 0 && n > maxBytes {
		tmp.Close()
		return 0, ErrTooLarge
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, l.Path(name)); err != nil {
		return 0, fmt.Errorf("rename %s: %w", name, err)
	}

	keep = true
	return n, nil
}

// Remove deletes name. A file that is already gone is not an error.
func (l *Local) Remove(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(l.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}
