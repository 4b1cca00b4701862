package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"freecastnotes/internal/workerutil"
)

// ErrUnsupported is returned by the system backend on platforms without a
// global hotkey implementation.
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// RegisterOp names the step of Manager.Register that failed.
type RegisterOp string

const (
	OpUnregister RegisterOp = "unregister"
	OpRegister   RegisterOp = "register"
)

// RegisterError reports an OS-level failure while replacing the active hotkey.
type RegisterError struct {
	Op      RegisterOp
	Binding string
	Err     error
}

func (e *RegisterError) Error() string {
	if e.Op == OpUnregister {
		return fmt.Sprintf("failed to clear previous shortcut: %v", e.Err)
	}
	return fmt.Sprintf("failed to register shortcut %q: %v", e.Binding, e.Err)
}

func (e *RegisterError) Unwrap() error { return e.Err }

// Registration is one live OS-level hotkey.
type Registration interface {
	// Keydown delivers one value per key press. It is closed after Unregister.
	Keydown() <-chan struct{}
	Unregister() error
}

// Backend registers bindings with the OS input layer.
type Backend interface {
	Register(binding Binding) (Registration, error)
}

// activeHotkey holds the state of a single active hotkey registration.
type activeHotkey struct {
	binding Binding
	reg     Registration
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Manager keeps at most one global hotkey registered with the OS.
type Manager struct {
	mu      sync.Mutex
	backend Backend
	active  *activeHotkey // nil when no hotkey is registered
}

// NewManager creates a hotkey manager backed by the system hotkey API.
func NewManager() *Manager {
	return NewManagerWithBackend(newSystemBackend())
}

// NewManagerWithBackend creates a hotkey manager on top of backend.
func NewManagerWithBackend(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// Register unregisters every binding this manager holds, then registers
// binding and invokes onTrigger on each key press. On failure no binding is
// left registered, except when clearing the previous one failed, in which
// case the previous binding stays active.
func (m *Manager) Register(binding Binding, onTrigger func()) error {
	if onTrigger == nil {
		return errors.New("onTrigger callback is required")
	}
	if binding.IsZero() {
		return errors.New("binding is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.unregisterAllLocked(); err != nil {
		return &RegisterError{Op: OpUnregister, Binding: binding.Raw(), Err: err}
	}

	reg, err := m.backend.Register(binding)
	if err != nil {
		return &RegisterError{Op: OpRegister, Binding: binding.Raw(), Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	ah := &activeHotkey{binding: binding, reg: reg, cancel: cancel}
	keydown := reg.Keydown()
	workerutil.RunWithPanicRecovery(ctx, "hotkey-listener", &ah.wg, func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-keydown:
				if !ok || ctx.Err() != nil {
					return
				}
				onTrigger()
			}
		}
	}, workerutil.RecoveryOptions{MaxRetries: 3})

	m.active = ah
	slog.Debug("[hotkey] registered", "binding", binding.Normalized())
	return nil
}

// UnregisterAll removes the active binding. It succeeds when none is registered.
func (m *Manager) UnregisterAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unregisterAllLocked()
}

// Active returns the registered binding and whether one exists.
func (m *Manager) Active() (Binding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Binding{}, false
	}
	return m.active.binding, true
}

// ActiveBinding returns the normalized binding string for the active hotkey.
func (m *Manager) ActiveBinding() string {
	binding, ok := m.Active()
	if !ok {
		return ""
	}
	return binding.Normalized()
}

func (m *Manager) unregisterAllLocked() error {
	if m.active == nil {
		return nil
	}
	ah := m.active
	if err := ah.reg.Unregister(); err != nil {
		slog.Warn("[hotkey] unregister failed, keeping previous binding", "binding", ah.binding.Normalized(), "error", err)
		return err
	}
	// A press already dequeued finishes before the next binding goes live.
	// onTrigger must not call back into the Manager.
	ah.cancel()
	ah.wg.Wait()
	m.active = nil
	return nil
}
