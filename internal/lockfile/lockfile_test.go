package lockfile

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "wakeguard.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// A second acquisition on the same path must be refused.
	if _, err := Acquire(path); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("second Acquire = %v, want ErrAlreadyLocked", err)
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// After release the lock is free again.
	l2, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
	l2.Release()
}

func TestDefaultPathIsNamespaced(t *testing.T) {
	p := DefaultPath()
	if filepath.Base(p) != "wakeguard.lock" {
		t.Errorf("DefaultPath = %q, want a wakeguard.lock file", p)
	}
	if filepath.Base(filepath.Dir(p)) != "wakeguard" {
		t.Errorf("DefaultPath = %q, want a wakeguard directory", p)
	}
}
