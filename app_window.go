package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"freecastnotes/internal/geometry"
	"freecastnotes/internal/overlay"
	"freecastnotes/internal/wm"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// nativeWindow is the subset of *wm.Native the window adapter uses.
type nativeWindow interface {
	overlay.SpacesIntegration
	Supported() bool
	Cursor() (geometry.Point, error)
	WorkAreas() ([]geometry.WorkArea, error)
	Frame() (geometry.WorkArea, error)
	IsVisible() (bool, error)
	IsFocused() (bool, error)
	SetPosition(x, y int) error
	Focus() error
	SetVisibleOnAllWorkspaces(visible bool) error
	Close() error
}

var (
	openNativeWindowFn = func() nativeWindow { return wm.Open() }

	runtimeWindowShowFn           = runtime.WindowShow
	runtimeWindowHideFn           = runtime.WindowHide
	runtimeWindowIsMinimisedFn    = runtime.WindowIsMinimised
	runtimeWindowUnminimiseFn     = runtime.WindowUnminimise
	runtimeWindowSetAlwaysOnTopFn = runtime.WindowSetAlwaysOnTop
	runtimeWindowSetPositionFn    = runtime.WindowSetPosition
	runtimeWindowGetPositionFn    = runtime.WindowGetPosition
	runtimeWindowGetSizeFn        = runtime.WindowGetSize
	runtimeWindowSetSizeFn        = runtime.WindowSetSize
	runtimeScreenGetAllFn         = runtime.ScreenGetAll
)

var errRuntimeUnavailable = errors.New("window runtime is not ready")

// nativeUnavailable reports whether err means the native layer cannot help
// and the Wails runtime should be used instead.
func nativeUnavailable(err error) bool {
	return errors.Is(err, wm.ErrUnsupported) || errors.Is(err, wm.ErrWindowNotFound)
}

// wailsWindow adapts the Wails runtime plus the native window manager to
// overlay.Window. Native answers win; the runtime covers what it can when
// the native layer is unavailable.
type wailsWindow struct {
	ctx    func() context.Context
	native nativeWindow

	// shown mirrors the last Show/Hide and is consulted only when the
	// native layer cannot report visibility or focus.
	shown atomic.Bool
}

func newWailsWindow(ctx func() context.Context, native nativeWindow) *wailsWindow {
	return &wailsWindow{ctx: ctx, native: native}
}

func (w *wailsWindow) runtimeCtx() (context.Context, error) {
	ctx := w.ctx()
	if ctx == nil {
		return nil, errRuntimeUnavailable
	}
	return ctx, nil
}

func (w *wailsWindow) Show() error {
	ctx, err := w.runtimeCtx()
	if err != nil {
		return err
	}
	if runtimeWindowIsMinimisedFn(ctx) {
		runtimeWindowUnminimiseFn(ctx)
	}
	runtimeWindowShowFn(ctx)
	w.shown.Store(true)
	return nil
}

func (w *wailsWindow) Hide() error {
	ctx, err := w.runtimeCtx()
	if err != nil {
		return err
	}
	runtimeWindowHideFn(ctx)
	w.shown.Store(false)
	return nil
}

func (w *wailsWindow) Focus() error {
	err := w.native.Focus()
	if err == nil || !nativeUnavailable(err) {
		return err
	}
	// WindowShow activates the window on every platform Wails supports.
	ctx, ctxErr := w.runtimeCtx()
	if ctxErr != nil {
		return ctxErr
	}
	runtimeWindowShowFn(ctx)
	return nil
}

func (w *wailsWindow) IsVisible() (bool, error) {
	visible, err := w.native.IsVisible()
	if err == nil || !nativeUnavailable(err) {
		return visible, err
	}
	ctx, ctxErr := w.runtimeCtx()
	if ctxErr != nil {
		return false, ctxErr
	}
	return w.shown.Load() && !runtimeWindowIsMinimisedFn(ctx), nil
}

func (w *wailsWindow) IsFocused() (bool, error) {
	focused, err := w.native.IsFocused()
	if err == nil || !nativeUnavailable(err) {
		return focused, err
	}
	// Without a focus query a visible overlay is assumed focused so the
	// toggle still hides it.
	return w.IsVisible()
}

func (w *wailsWindow) SetPosition(x, y int) error {
	err := w.native.SetPosition(x, y)
	if err == nil || !nativeUnavailable(err) {
		return err
	}
	ctx, ctxErr := w.runtimeCtx()
	if ctxErr != nil {
		return ctxErr
	}
	runtimeWindowSetPositionFn(ctx, x, y)
	return nil
}

func (w *wailsWindow) OuterSize() (geometry.Size, error) {
	frame, err := w.native.Frame()
	if err == nil {
		return geometry.Size{Width: frame.Width, Height: frame.Height}, nil
	}
	if !nativeUnavailable(err) {
		return geometry.Size{}, err
	}
	return w.InnerSize()
}

func (w *wailsWindow) InnerSize() (geometry.Size, error) {
	ctx, err := w.runtimeCtx()
	if err != nil {
		return geometry.Size{}, err
	}
	width, height := runtimeWindowGetSizeFn(ctx)
	if width <= 0 || height <= 0 {
		return geometry.Size{}, fmt.Errorf("window size unavailable: %dx%d", width, height)
	}
	return geometry.Size{Width: float64(width), Height: float64(height)}, nil
}

func (w *wailsWindow) SetAlwaysOnTop(onTop bool) error {
	ctx, err := w.runtimeCtx()
	if err != nil {
		return err
	}
	runtimeWindowSetAlwaysOnTopFn(ctx, onTop)
	return nil
}

func (w *wailsWindow) SetVisibleOnAllWorkspaces(visible bool) error {
	err := w.native.SetVisibleOnAllWorkspaces(visible)
	if nativeUnavailable(err) {
		return fmt.Errorf("%w: %v", overlay.ErrUnsupported, err)
	}
	return err
}

func (w *wailsWindow) CursorPosition() (geometry.Point, error) {
	return w.native.Cursor()
}

func (w *wailsWindow) MonitorAt(p geometry.Point) (geometry.WorkArea, bool) {
	areas, err := w.native.WorkAreas()
	if err != nil {
		return geometry.WorkArea{}, false
	}
	return geometry.MonitorAt(areas, p)
}

func (w *wailsWindow) CurrentMonitor() (geometry.WorkArea, bool) {
	areas, err := w.native.WorkAreas()
	if err == nil {
		frame, frameErr := w.native.Frame()
		if frameErr == nil {
			return wm.MonitorForFrame(areas, frame)
		}
	}
	return w.runtimeScreen(func(s runtime.Screen) bool { return s.IsCurrent })
}

func (w *wailsWindow) PrimaryMonitor() (geometry.WorkArea, bool) {
	areas, err := w.native.WorkAreas()
	if err == nil && len(areas) > 0 {
		return areas[0], true
	}
	return w.runtimeScreen(func(s runtime.Screen) bool { return s.IsPrimary })
}

// runtimeScreen reports a screen known only by size. Wails does not expose
// screen origins, so the area is anchored at the global origin.
func (w *wailsWindow) runtimeScreen(match func(runtime.Screen) bool) (geometry.WorkArea, bool) {
	ctx, err := w.runtimeCtx()
	if err != nil {
		return geometry.WorkArea{}, false
	}
	screens, err := runtimeScreenGetAllFn(ctx)
	if err != nil {
		slog.Debug("[DEBUG-OVERLAY] screen enumeration failed", "error", err)
		return geometry.WorkArea{}, false
	}
	for _, s := range screens {
		if match(s) && s.Width > 0 && s.Height > 0 {
			return geometry.WorkArea{Width: float64(s.Width), Height: float64(s.Height)}, true
		}
	}
	return geometry.WorkArea{}, false
}
