package main

import (
	"context"
	"log/slog"

	"freecastnotes/internal/logtee"
)

// Events emitted to the frontend.
const (
	eventShortcutUpdated      = "shortcut:updated"
	eventOverlayShown         = "overlay:shown"
	eventOverlayHidden        = "overlay:hidden"
	eventAppWarning           = "app:warning"
	eventTrayNewNote          = "tray-new-note"
	eventTrayShortcutSettings = "tray-open-shortcut-settings"
	eventTrayAbout            = "tray-open-about"
)

// emitRuntimeEvent emits via the app context.
func (a *App) emitRuntimeEvent(name string, payload any) {
	a.emitRuntimeEventWithContext(a.runtimeContext(), name, payload)
}

// emitRuntimeEventWithContext emits a runtime event only when ctx is non-nil.
func (a *App) emitRuntimeEventWithContext(ctx context.Context, name string, payload any) {
	if ctx == nil {
		slog.Debug("[EVENT] runtime event dropped because app context is nil", "event", name)
		return
	}
	runtimeEventsEmitFn(ctx, name, payload)
}

// forwardLogEntry is the logtee sink: warnings and errors become app:warning
// events for the UI toast. Entries logged before startup are dropped.
func (a *App) forwardLogEntry(entry logtee.Entry) {
	ctx := a.runtimeContext()
	if ctx == nil || a.shuttingDown.Load() {
		return
	}
	runtimeEventsEmitFn(ctx, eventAppWarning, entry)
}
