// Package lockfile guards against concurrent wakeguard instances. Two
// instances would double-inhibit and race each other on release.
package lockfile

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// ErrAlreadyLocked is returned when another instance holds the lock.
var ErrAlreadyLocked = errors.New("lock already held elsewhere")

// Lock is a held single-instance lock.
type Lock struct {
	l *flock.Flock
}

// Acquire takes an exclusive flock on path, creating parent directories as
// needed. It does not block: a held lock returns ErrAlreadyLocked.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create lock directory")
	}

	l := flock.New(path)
	locked, err := l.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire lock")
	}
	if !locked {
		return nil, ErrAlreadyLocked
	}

	return &Lock{l: l}, nil
}

// Release unlocks the file. The file itself is left behind; only the flock
// matters.
func (l *Lock) Release() error {
	return l.l.Unlock()
}

// DefaultPath is the per-user lock location, under the user cache dir with
// a temp-dir fallback.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "wakeguard", "wakeguard.lock")
}
