package main

import (
	"errors"
	"log/slog"

	"freecastnotes/internal/overlay"
)

// Window bounds. The note window keeps a fixed width and grows vertically.
const (
	appTitle        = "FreeCastNotes"
	windowWidth     = 650
	windowHeight    = 600
	windowMinHeight = 200
)

var errOverlayUnavailable = errors.New("overlay is not ready")

// WindowSize is the window extent reported to the frontend.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowPosition is the window's top-left corner.
type WindowPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// toggleOverlay runs the toggle state machine and notifies the UI.
func (a *App) toggleOverlay(source string) overlay.Action {
	if a.toggler == nil || a.shuttingDown.Load() {
		slog.Warn("[overlay] toggle dropped because overlay is not ready", "source", source)
		return ""
	}
	action := a.toggler.Toggle()
	slog.Debug("[DEBUG-OVERLAY] toggled", "source", source, "action", action)
	a.emitOverlayAction(action)
	return action
}

func (a *App) emitOverlayAction(action overlay.Action) {
	switch action {
	case overlay.ActionHide:
		a.emitRuntimeEvent(eventOverlayHidden, nil)
	case overlay.ActionShow, overlay.ActionRefocus:
		a.emitRuntimeEvent(eventOverlayShown, string(action))
	}
}

// ShowWindow shows the overlay next to the cursor on top of everything.
func (a *App) ShowWindow() error {
	if a.toggler == nil {
		return errOverlayUnavailable
	}
	a.toggler.Show()
	a.emitOverlayAction(overlay.ActionShow)
	return nil
}

// HideWindow hides the overlay. The frontend calls it on Escape.
func (a *App) HideWindow() error {
	if a.toggler == nil {
		return errOverlayUnavailable
	}
	a.toggler.Hide()
	a.emitOverlayAction(overlay.ActionHide)
	return nil
}

// GetWindowSize returns the window content size.
func (a *App) GetWindowSize() WindowSize {
	ctx := a.runtimeContext()
	if ctx == nil {
		return WindowSize{}
	}
	w, h := runtimeWindowGetSizeFn(ctx)
	return WindowSize{Width: w, Height: h}
}

// SetWindowSize resizes the window. Width is fixed; height is clamped to
// the minimum.
func (a *App) SetWindowSize(width, height int) error {
	ctx := a.runtimeContext()
	if ctx == nil {
		return errRuntimeUnavailable
	}
	if width != windowWidth {
		slog.Debug("[DEBUG-OVERLAY] ignoring requested width", "width", width)
	}
	runtimeWindowSetSizeFn(ctx, windowWidth, max(height, windowMinHeight))
	return nil
}

// GetWindowPosition returns the window's top-left corner.
func (a *App) GetWindowPosition() WindowPosition {
	ctx := a.runtimeContext()
	if ctx == nil {
		return WindowPosition{}
	}
	x, y := runtimeWindowGetPositionFn(ctx)
	return WindowPosition{X: x, Y: y}
}

// SetWindowPosition moves the window, in global device pixels.
func (a *App) SetWindowPosition(x, y int) error {
	if a.window == nil {
		return errOverlayUnavailable
	}
	return a.window.SetPosition(x, y)
}
