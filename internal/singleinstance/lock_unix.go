//go:build unix

package singleinstance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"freecastnotes/internal/userutil"
)

// Lock is a held advisory flock on a per-user lock file. The kernel drops
// it if the process dies.
type Lock struct {
	file *os.File
}

// TryLock takes an exclusive non-blocking flock on the file at name, or
// returns ErrAlreadyRunning when another process holds it.
func TryLock(name string) (*Lock, error) {
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o700); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %q: %w", name, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("flock %q: %w", name, err)
	}
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	}
	return &Lock{file: f}, nil
}

// Release unlocks and closes the lock file. It is nil-safe and idempotent.
// The file itself is left in place; removing it would race a new owner.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	unlockErr := unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return errors.Join(unlockErr, f.Close())
}

// DefaultLockName returns the per-user lock file path.
func DefaultLockName() string {
	return filepath.Join(userutil.RuntimeDir(), "freecastnotes-"+userutil.CurrentUsername()+".lock")
}
