package overlay

import (
	"errors"
	"fmt"
	"sync"

	"freecastnotes/internal/geometry"
)

// fakeWindow records every call and models visibility and focus.
type fakeWindow struct {
	mu sync.Mutex

	visible  bool
	focused  bool
	onTop    bool
	allSpace bool
	level    int
	x, y     int

	size      geometry.Size
	sizeErr   error
	innerSize geometry.Size
	cursor    geometry.Point
	cursorErr error
	monitors  []geometry.WorkArea
	current   *geometry.WorkArea
	primary   *geometry.WorkArea

	failures map[string]error
	calls    []string
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{
		size:     geometry.Size{Width: 400, Height: 300},
		cursor:   geometry.Point{X: 500, Y: 400},
		monitors: []geometry.WorkArea{{X: 0, Y: 25, Width: 1440, Height: 875}},
		failures: map[string]error{},
	}
}

func (f *fakeWindow) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failures[call]
}

func (f *fakeWindow) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeWindow) resetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeWindow) Show() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("show"); err != nil {
		return err
	}
	f.visible = true
	return nil
}

func (f *fakeWindow) Hide() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("hide"); err != nil {
		return err
	}
	f.visible = false
	f.focused = false
	return nil
}

func (f *fakeWindow) Focus() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("focus"); err != nil {
		return err
	}
	f.focused = f.visible
	return nil
}

func (f *fakeWindow) IsVisible() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible, f.failures["is-visible"]
}

func (f *fakeWindow) IsFocused() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused, f.failures["is-focused"]
}

func (f *fakeWindow) SetPosition(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(fmt.Sprintf("position %d,%d", x, y)); err != nil {
		return err
	}
	f.x, f.y = x, y
	return nil
}

func (f *fakeWindow) OuterSize() (geometry.Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size, f.sizeErr
}

func (f *fakeWindow) InnerSize() (geometry.Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.innerSize == (geometry.Size{}) {
		return geometry.Size{}, errors.New("inner size unavailable")
	}
	return f.innerSize, nil
}

func (f *fakeWindow) SetAlwaysOnTop(onTop bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("always-on-top"); err != nil {
		return err
	}
	f.onTop = onTop
	if onTop {
		f.level = levelFloating
	}
	return nil
}

func (f *fakeWindow) SetVisibleOnAllWorkspaces(visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("all-workspaces"); err != nil {
		return err
	}
	f.allSpace = visible
	return nil
}

func (f *fakeWindow) CursorPosition() (geometry.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, f.cursorErr
}

func (f *fakeWindow) MonitorAt(p geometry.Point) (geometry.WorkArea, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return geometry.MonitorAt(f.monitors, p)
}

func (f *fakeWindow) CurrentMonitor() (geometry.WorkArea, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return geometry.WorkArea{}, false
	}
	return *f.current, true
}

func (f *fakeWindow) PrimaryMonitor() (geometry.WorkArea, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.primary == nil {
		return geometry.WorkArea{}, false
	}
	return *f.primary, true
}

// Window levels as AppKit numbers them. The coarse always-on-top flag maps to
// the floating level.
const (
	levelFloating = 3
	levelOverlay  = 101
)

// fakeSpaces records native calls on the shared window's call log.
type fakeSpaces struct {
	win       *fakeWindow
	available bool
	levelErr  error
	attachErr error
}

func (s *fakeSpaces) Available() bool {
	s.win.mu.Lock()
	defer s.win.mu.Unlock()
	return s.available
}

func (s *fakeSpaces) setAvailable(v bool) {
	s.win.mu.Lock()
	s.available = v
	s.win.mu.Unlock()
}

func (s *fakeSpaces) SetOverlayLevel() error {
	s.win.mu.Lock()
	defer s.win.mu.Unlock()
	s.win.calls = append(s.win.calls, "overlay-level")
	if s.levelErr == nil {
		s.win.level = levelOverlay
	}
	return s.levelErr
}

func (s *fakeSpaces) AttachToActiveSpace() error {
	s.win.mu.Lock()
	defer s.win.mu.Unlock()
	s.win.calls = append(s.win.calls, "attach-space")
	return s.attachErr
}
