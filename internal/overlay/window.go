// Package overlay makes a single window appear above everything next to
// the cursor and implements the hotkey/tray toggle.
package overlay

import (
	"errors"

	"freecastnotes/internal/geometry"
)

// ErrUnsupported is returned by window operations the platform cannot perform.
var ErrUnsupported = errors.New("window operation not supported on this platform")

// Window is the window-system collaborator. Visibility and focus are
// always read live; the overlay keeps no shadow copy.
type Window interface {
	Show() error
	Hide() error
	Focus() error
	IsVisible() (bool, error)
	IsFocused() (bool, error)

	// SetPosition moves the window's top-left corner, in device pixels.
	SetPosition(x, y int) error
	OuterSize() (geometry.Size, error)
	InnerSize() (geometry.Size, error)

	SetAlwaysOnTop(onTop bool) error
	SetVisibleOnAllWorkspaces(visible bool) error

	CursorPosition() (geometry.Point, error)
	MonitorAt(p geometry.Point) (geometry.WorkArea, bool)
	CurrentMonitor() (geometry.WorkArea, bool)
	PrimaryMonitor() (geometry.WorkArea, bool)
}

// SpacesIntegration is the optional native capability used by the
// NativeSpacesIntegration strategy.
type SpacesIntegration interface {
	// Available reports whether the native window could be resolved.
	Available() bool
	// SetOverlayLevel raises the window above menus and lets it appear in
	// full-screen spaces and move to the active space.
	SetOverlayLevel() error
	// AttachToActiveSpace reassigns the window to the active space.
	AttachToActiveSpace() error
}
