package images

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName is created inside the image directory.
const lockFileName = ".wikitree.lock"

// DirLock is an advisory lock on an image directory.
type DirLock struct {
	lock *flock.Flock
}

// Lock creates dir if needed and locks it. It does not wait: if another
// process holds the lock, ErrDirLocked is returned.
func Lock(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock image directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrDirLocked)
	}

	return &DirLock{lock: lock}, nil
}

// Path returns the lock file's path.
func (l *DirLock) Path() string {
	return l.lock.Path()
}

// Unlock releases the lock. The lock file is left in place.
func (l *DirLock) Unlock() error {
	return l.lock.Unlock()
}
