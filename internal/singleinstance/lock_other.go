//go:build !unix && !windows

package singleinstance

// Lock is a no-op where no process-wide lock primitive is available.
type Lock struct{}

// TryLock always succeeds.
func TryLock(string) (*Lock, error) { return &Lock{}, nil }

// Release is a no-op.
func (*Lock) Release() error { return nil }

// DefaultLockName returns an empty name.
func DefaultLockName() string { return "" }
