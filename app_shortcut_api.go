package main

import (
	"errors"
	"strings"
)

var errShortcutUnavailable = errors.New("global shortcut service is not ready")

// GetGlobalShortcut returns the registered shortcut, or "" when none is active.
func (a *App) GetGlobalShortcut() string {
	if a.shortcuts == nil {
		return ""
	}
	return a.shortcuts.Get()
}

// SetGlobalShortcut replaces the global shortcut. On failure nothing
// changes and the error message is shown to the user.
func (a *App) SetGlobalShortcut(raw string) error {
	if a.shortcuts == nil {
		return errShortcutUnavailable
	}
	if err := a.shortcuts.Set(raw); err != nil {
		runtimeLogger.Warningf(a.runtimeContext(), "global shortcut update rejected: %v", err)
		return err
	}
	a.emitRuntimeEvent(eventShortcutUpdated, map[string]string{
		"shortcut": strings.TrimSpace(raw),
	})
	return nil
}
