package shortcut

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"freecastnotes/internal/hotkeys"
)

// ErrEmptyShortcut is returned when the submitted shortcut is blank.
var ErrEmptyShortcut = errors.New("shortcut cannot be empty")

// Registrar is the subset of hotkeys.Manager the service needs.
type Registrar interface {
	Register(binding hotkeys.Binding, onTrigger func()) error
	UnregisterAll() error
}

// Service coordinates parsing, OS registration, persistence, and the
// shared State. Calls to Set and Bootstrap are serialized.
type Service struct {
	mu        sync.Mutex
	state     *State
	store     *Store
	registrar Registrar
	onTrigger func()
}

// NewService wires the service. onTrigger runs on every hotkey press.
func NewService(state *State, store *Store, registrar Registrar, onTrigger func()) *Service {
	return &Service{
		state:     state,
		store:     store,
		registrar: registrar,
		onTrigger: onTrigger,
	}
}

// Get returns the current shortcut string.
func (s *Service) Get() string {
	return s.state.Get()
}

// Set trims raw, registers it with the OS, persists it, then publishes it
// in State. On any failure State and the persisted file keep their
// previous values and the previous binding stays registered.
func (s *Service) Set(raw string) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ErrEmptyShortcut
	}
	binding, err := hotkeys.ParseBinding(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.state.Get()
	if err := s.registrar.Register(binding, s.onTrigger); err != nil {
		var regErr *hotkeys.RegisterError
		if errors.As(err, &regErr) && regErr.Op == hotkeys.OpUnregister {
			// The previous binding could not be cleared and is still live.
			return err
		}
		s.restore(previous)
		return err
	}
	if err := s.store.Save(value); err != nil {
		s.restore(previous)
		return err
	}
	s.state.set(value)
	slog.Info("[shortcut] global shortcut updated", "shortcut", value, "normalized", binding.Normalized())
	return nil
}

// restore re-registers previous after a failed update, or clears the OS
// table when nothing was active before. Failures are logged.
func (s *Service) restore(previous string) {
	if previous == "" {
		if err := s.registrar.UnregisterAll(); err != nil {
			slog.Warn("[WARN-SHORTCUT] failed to clear rejected shortcut", "error", err)
		}
		return
	}
	binding, err := hotkeys.ParseBinding(previous)
	if err != nil {
		slog.Warn("[WARN-SHORTCUT] previous shortcut no longer parses", "shortcut", previous, "error", err)
		return
	}
	if err := s.registrar.Register(binding, s.onTrigger); err != nil {
		slog.Warn("[WARN-SHORTCUT] failed to restore previous shortcut", "shortcut", previous, "error", err)
	}
}

// BootstrapResult describes the outcome of startup registration.
type BootstrapResult struct {
	// Shortcut is the registered shortcut, or "" when none could be registered.
	Shortcut   string
	FellBack   bool
	Registered bool
	Errors     []error
}

// Bootstrap loads the persisted shortcut (or the default) and registers it.
// If that fails and the value was not the default, the default is tried
// once and persisted on success. It never returns an error: an app that
// starts with no global hotkey is preferable to one that does not start.
func (s *Service) Bootstrap() BootstrapResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result BootstrapResult
	value, ok := s.store.Load()
	if !ok {
		value = DefaultShortcut
	}

	err := s.registerLocked(value)
	if err == nil {
		s.state.set(value)
		result.Shortcut = value
		result.Registered = true
		return result
	}
	result.Errors = append(result.Errors, err)
	slog.Warn("[WARN-SHORTCUT] failed to register startup shortcut", "shortcut", value, "error", err)

	if value == DefaultShortcut {
		s.state.set("")
		return result
	}

	result.FellBack = true
	if err := s.registerLocked(DefaultShortcut); err != nil {
		result.Errors = append(result.Errors, err)
		slog.Error("[ERROR-SHORTCUT] failed to register default shortcut, continuing without a global hotkey",
			"shortcut", DefaultShortcut, "error", err)
		s.state.set("")
		return result
	}
	s.state.set(DefaultShortcut)
	result.Shortcut = DefaultShortcut
	result.Registered = true
	if err := s.store.Save(DefaultShortcut); err != nil {
		result.Errors = append(result.Errors, err)
		slog.Warn("[WARN-SHORTCUT] failed to persist default shortcut", "error", err)
	}
	slog.Info("[shortcut] fell back to default shortcut", "shortcut", DefaultShortcut, "rejected", value)
	return result
}

func (s *Service) registerLocked(value string) error {
	binding, err := hotkeys.ParseBinding(value)
	if err != nil {
		return fmt.Errorf("startup shortcut: %w", err)
	}
	return s.registrar.Register(binding, s.onTrigger)
}
