// Package wm reaches past the Wails runtime into the native window
// manager for what it does not expose: the global cursor, monitor work
// areas in global coordinates, focus state, and space/desktop membership.
package wm

import (
	"errors"
	"math"
	"sync"

	"freecastnotes/internal/geometry"
)

var (
	// ErrUnsupported is returned when the platform or display server has
	// no native integration.
	ErrUnsupported = errors.New("native window integration not supported")
	// ErrWindowNotFound is returned when the application window cannot be
	// resolved yet (for example before the frontend window is created).
	ErrWindowNotFound = errors.New("application window not found")
)

// Native is the process's main window as seen by the native window manager.
// All coordinates are global, top-left origin.
type Native struct {
	mu sync.Mutex
	p  *platform
}

// Open connects to the native window manager. It never fails: when no
// integration is possible every call returns ErrUnsupported.
func Open() *Native {
	return &Native{p: openPlatform()}
}

// Supported reports whether the native layer is usable at all.
func (n *Native) Supported() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.supported()
}

// Available reports whether the application window resolves and the
// platform can reassign it to the active space or desktop.
func (n *Native) Available() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.spacesAvailable()
}

// Cursor returns the global cursor position.
func (n *Native) Cursor() (geometry.Point, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.cursor()
}

// WorkAreas returns the usable rectangle of every monitor, primary first.
func (n *Native) WorkAreas() ([]geometry.WorkArea, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.workAreas()
}

// Frame returns the window's outer rectangle.
func (n *Native) Frame() (geometry.WorkArea, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.frame()
}

// IsVisible reports whether the window is mapped and not minimized.
func (n *Native) IsVisible() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.visible()
}

// IsFocused reports whether the window has keyboard focus.
func (n *Native) IsFocused() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.focused()
}

// SetPosition moves the window's top-left corner.
func (n *Native) SetPosition(x, y int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.setPosition(x, y)
}

// Focus raises the window and gives it keyboard focus.
func (n *Native) Focus() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.focus()
}

// SetAlwaysOnTop toggles the coarse keep-above flag.
func (n *Native) SetAlwaysOnTop(onTop bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.setAlwaysOnTop(onTop)
}

// SetVisibleOnAllWorkspaces toggles the coarse sticky flag.
func (n *Native) SetVisibleOnAllWorkspaces(visible bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.setAllWorkspaces(visible)
}

// SetOverlayLevel raises the window above menus and lets it show in
// full-screen spaces and follow the active space.
func (n *Native) SetOverlayLevel() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.setOverlayLevel()
}

// AttachToActiveSpace moves the window onto the active space or desktop.
func (n *Native) AttachToActiveSpace() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.attachToActiveSpace()
}

// Close releases native resources.
func (n *Native) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.p.close()
}

// flipRect converts a bottom-left-origin rectangle to top-left origin
// against a primary screen of the given height.
func flipRect(x, y, w, h, primaryHeight float64) geometry.WorkArea {
	return geometry.WorkArea{X: x, Y: primaryHeight - (y + h), Width: w, Height: h}
}

// flipPoint converts a bottom-left-origin point to top-left origin.
func flipPoint(x, y, primaryHeight float64) geometry.Point {
	return geometry.Point{X: x, Y: primaryHeight - y}
}

// intersect returns the overlap of a and b.
func intersect(a, b geometry.WorkArea) (geometry.WorkArea, bool) {
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.X+a.Width, b.X+b.Width)
	y1 := math.Min(a.Y+a.Height, b.Y+b.Height)
	if x1 <= x0 || y1 <= y0 {
		return geometry.WorkArea{}, false
	}
	return geometry.WorkArea{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// MonitorForFrame returns the work area containing the centre of frame.
func MonitorForFrame(areas []geometry.WorkArea, frame geometry.WorkArea) (geometry.WorkArea, bool) {
	center := geometry.Point{X: frame.X + frame.Width/2, Y: frame.Y + frame.Height/2}
	return geometry.MonitorAt(areas, center)
}
