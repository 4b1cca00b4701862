package main

import (
	"log/slog"

	"freecastnotes/internal/tray"
)

// trayRouter maps tray events to app behavior.
func (a *App) trayRouter() *tray.Router {
	router := tray.NewRouter()
	router.Handle(tray.EventToggle, func() { a.toggleOverlay("tray") })
	router.Handle(tray.EventShowHide, func() { a.toggleOverlay("tray-menu") })
	router.Handle(tray.EventNewNote, func() { a.showAndEmit(eventTrayNewNote) })
	router.Handle(tray.EventSetShortcut, func() { a.showAndEmit(eventTrayShortcutSettings) })
	router.Handle(tray.EventAbout, func() { a.showAndEmit(eventTrayAbout) })
	router.Handle(tray.EventQuit, a.quit)
	return router
}

// showAndEmit brings the overlay up before asking the UI to open a view,
// so the view is never opened in a hidden window.
func (a *App) showAndEmit(event string) {
	if err := a.ShowWindow(); err != nil {
		slog.Warn("[tray] show before event failed", "event", event, "error", err)
	}
	a.emitRuntimeEvent(event, nil)
}

func (a *App) quit() {
	ctx := a.runtimeContext()
	if ctx == nil {
		slog.Warn("[tray] quit dropped because runtime context is nil")
		return
	}
	runtimeQuitFn(ctx)
}
