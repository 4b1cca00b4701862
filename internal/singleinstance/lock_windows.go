//go:build windows

package singleinstance

import (
	"errors"
	"fmt"

	"freecastnotes/internal/userutil"

	"golang.org/x/sys/windows"
)

// Lock is a held named mutex. The kernel releases it if the process dies.
type Lock struct {
	handle windows.Handle
	name   string
}

// TryLock creates and owns the named mutex, or returns ErrAlreadyRunning
// when another process of this user already owns it.
func TryLock(name string) (*Lock, error) {
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid lock name %q: %w", name, err)
	}
	h, err := windows.CreateMutex(nil, true, namePtr)
	if err != nil {
		if h != 0 {
			_ = windows.CloseHandle(h)
		}
		if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("CreateMutex %q: %w", name, err)
	}
	return &Lock{handle: h, name: name}, nil
}

// Release closes the mutex handle. It is nil-safe and idempotent.
func (l *Lock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	return err
}

// DefaultLockName returns the per-user mutex name, scoped to the session.
func DefaultLockName() string {
	return `Local\freecastnotes-` + userutil.CurrentUsername()
}
