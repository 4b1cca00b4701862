package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"freecastnotes/internal/config"
	"freecastnotes/internal/geometry"
	"freecastnotes/internal/hotkeys"
	"freecastnotes/internal/ipc"
	"freecastnotes/internal/tray"
	"freecastnotes/internal/wm"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// NOTE: tests in this package replace package-level function variables.
// Do not use t.Parallel().

type emittedEvent struct {
	name    string
	payload any
}

// runtimeStub records Wails runtime calls and simulates window state.
type runtimeStub struct {
	mu        sync.Mutex
	calls     []string
	events    []emittedEvent
	minimised bool
	x, y      int
	width     int
	height    int
	screens   []runtime.Screen
	quit      int
}

func (r *runtimeStub) record(format string, args ...any) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *runtimeStub) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *runtimeStub) Events() []emittedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]emittedEvent(nil), r.events...)
}

func (r *runtimeStub) EventNames() []string {
	var names []string
	for _, e := range r.Events() {
		names = append(names, e.name)
	}
	return names
}

// stubRuntime swaps every Wails runtime seam for the returned recorder.
func stubRuntime(t *testing.T) *runtimeStub {
	t.Helper()
	r := &runtimeStub{width: 650, height: 600}

	origShow, origHide := runtimeWindowShowFn, runtimeWindowHideFn
	origIsMin, origUnmin := runtimeWindowIsMinimisedFn, runtimeWindowUnminimiseFn
	origOnTop, origSetPos := runtimeWindowSetAlwaysOnTopFn, runtimeWindowSetPositionFn
	origGetPos, origGetSize, origSetSize := runtimeWindowGetPositionFn, runtimeWindowGetSizeFn, runtimeWindowSetSizeFn
	origScreens, origEmit, origQuit := runtimeScreenGetAllFn, runtimeEventsEmitFn, runtimeQuitFn
	origLogger := runtimeLogger
	t.Cleanup(func() {
		runtimeWindowShowFn, runtimeWindowHideFn = origShow, origHide
		runtimeWindowIsMinimisedFn, runtimeWindowUnminimiseFn = origIsMin, origUnmin
		runtimeWindowSetAlwaysOnTopFn, runtimeWindowSetPositionFn = origOnTop, origSetPos
		runtimeWindowGetPositionFn, runtimeWindowGetSizeFn, runtimeWindowSetSizeFn = origGetPos, origGetSize, origSetSize
		runtimeScreenGetAllFn, runtimeEventsEmitFn, runtimeQuitFn = origScreens, origEmit, origQuit
		runtimeLogger = origLogger
	})

	runtimeWindowShowFn = func(context.Context) { r.record("show") }
	runtimeWindowHideFn = func(context.Context) { r.record("hide") }
	runtimeWindowIsMinimisedFn = func(context.Context) bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.minimised
	}
	runtimeWindowUnminimiseFn = func(context.Context) {
		r.record("unminimise")
		r.mu.Lock()
		r.minimised = false
		r.mu.Unlock()
	}
	runtimeWindowSetAlwaysOnTopFn = func(_ context.Context, b bool) { r.record("always-on-top %t", b) }
	runtimeWindowSetPositionFn = func(_ context.Context, x, y int) {
		r.record("runtime-position %d,%d", x, y)
		r.mu.Lock()
		r.x, r.y = x, y
		r.mu.Unlock()
	}
	runtimeWindowGetPositionFn = func(context.Context) (int, int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.x, r.y
	}
	runtimeWindowGetSizeFn = func(context.Context) (int, int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.width, r.height
	}
	runtimeWindowSetSizeFn = func(_ context.Context, w, h int) {
		r.record("size %dx%d", w, h)
		r.mu.Lock()
		r.width, r.height = w, h
		r.mu.Unlock()
	}
	runtimeScreenGetAllFn = func(context.Context) ([]runtime.Screen, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		return append([]runtime.Screen(nil), r.screens...), nil
	}
	runtimeEventsEmitFn = func(_ context.Context, name string, data ...interface{}) {
		var payload any
		if len(data) > 0 {
			payload = data[0]
		}
		r.mu.Lock()
		r.events = append(r.events, emittedEvent{name: name, payload: payload})
		r.mu.Unlock()
	}
	runtimeQuitFn = func(context.Context) {
		r.mu.Lock()
		r.quit++
		r.mu.Unlock()
	}
	runtimeLogger = silentLogger{}
	return r
}

type silentLogger struct{}

func (silentLogger) Warningf(context.Context, string, ...interface{}) {}
func (silentLogger) Infof(context.Context, string, ...interface{}) {}
func (silentLogger) Errorf(context.Context, string, ...interface{}) {}

// fakeNative simulates the native window manager. When unsupported is set
// every call fails with wm.ErrUnsupported.
type fakeNative struct {
	mu          sync.Mutex
	unsupported bool
	spaces      bool
	cursor      geometry.Point
	areas       []geometry.WorkArea
	frame       geometry.WorkArea
	visible     bool
	focused     bool
	calls       []string
	closed      int
}

func (f *fakeNative) log(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	if f.unsupported {
		return wm.ErrUnsupported
	}
	return nil
}

func (f *fakeNative) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeNative) Supported() bool { return !f.unsupported }
func (f *fakeNative) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unsupported && f.spaces
}

func (f *fakeNative) setSpaces(v bool) {
	f.mu.Lock()
	f.spaces = v
	f.mu.Unlock()
}

func (f *fakeNative) SetOverlayLevel() error { return f.log("overlay-level") }
func (f *fakeNative) AttachToActiveSpace() error { return f.log("attach-space") }

func (f *fakeNative) Cursor() (geometry.Point, error) {
	if f.unsupported {
		return geometry.Point{}, wm.ErrUnsupported
	}
	return f.cursor, nil
}

func (f *fakeNative) WorkAreas() ([]geometry.WorkArea, error) {
	if f.unsupported {
		return nil, wm.ErrUnsupported
	}
	return f.areas, nil
}

func (f *fakeNative) Frame() (geometry.WorkArea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsupported {
		return geometry.WorkArea{}, wm.ErrUnsupported
	}
	return f.frame, nil
}

func (f *fakeNative) IsVisible() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsupported {
		return false, wm.ErrUnsupported
	}
	return f.visible, nil
}

func (f *fakeNative) IsFocused() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsupported {
		return false, wm.ErrUnsupported
	}
	return f.focused, nil
}

func (f *fakeNative) SetPosition(x, y int) error {
	if err := f.log("position %d,%d", x, y); err != nil {
		return err
	}
	f.mu.Lock()
	f.frame.X, f.frame.Y = float64(x), float64(y)
	f.mu.Unlock()
	return nil
}

func (f *fakeNative) Focus() error {
	if err := f.log("focus"); err != nil {
		return err
	}
	f.mu.Lock()
	f.focused = true
	f.mu.Unlock()
	return nil
}

func (f *fakeNative) SetVisibleOnAllWorkspaces(v bool) error {
	return f.log("all-workspaces %t", v)
}

func (f *fakeNative) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

// linkRuntime makes runtime show/hide drive the fake's visibility, the way
// a real window manager reflects them.
func linkRuntime(r *runtimeStub, n *fakeNative) {
	runtimeWindowShowFn = func(context.Context) {
		r.record("show")
		n.mu.Lock()
		n.visible = true
		n.mu.Unlock()
	}
	runtimeWindowHideFn = func(context.Context) {
		r.record("hide")
		n.mu.Lock()
		n.visible = false
		n.focused = false
		n.mu.Unlock()
	}
}

// fakeHotkeyOS is an in-memory hotkey table for hotkeys.Manager.
type fakeHotkeyOS struct {
	mu      sync.Mutex
	live    map[string]*fakeHotkeyReg
	claimed map[string]bool
}

func newFakeHotkeyOS(claimed ...string) *fakeHotkeyOS {
	f := &fakeHotkeyOS{live: map[string]*fakeHotkeyReg{}, claimed: map[string]bool{}}
	for _, c := range claimed {
		f.claimed[c] = true
	}
	return f
}

func (f *fakeHotkeyOS) Register(b hotkeys.Binding) (hotkeys.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := b.Normalized()
	if f.claimed[name] {
		return nil, errors.New("hotkey already registered")
	}
	reg := &fakeHotkeyReg{os: f, name: name, keydown: make(chan struct{}, 4)}
	f.live[name] = reg
	return reg, nil
}

func (f *fakeHotkeyOS) press(name string) bool {
	f.mu.Lock()
	reg, ok := f.live[name]
	f.mu.Unlock()
	if ok {
		reg.keydown <- struct{}{}
	}
	return ok
}

func (f *fakeHotkeyOS) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

type fakeHotkeyReg struct {
	os      *fakeHotkeyOS
	name    string
	keydown chan struct{}
}

func (r *fakeHotkeyReg) Keydown() <-chan struct{} { return r.keydown }

func (r *fakeHotkeyReg) Unregister() error {
	r.os.mu.Lock()
	defer r.os.mu.Unlock()
	delete(r.os.live, r.name)
	return nil
}

type fakeIPCServer struct {
	startErr error
	started  int
	stopped  int
}

func (s *fakeIPCServer) Start() error { s.started++; return s.startErr }
func (s *fakeIPCServer) Stop() error { s.stopped++; return nil }
func (s *fakeIPCServer) Endpoint() string { return "fake-endpoint" }

type fakeTray struct {
	started int
	stopped int
}

func (f *fakeTray) Start() { f.started++ }
func (f *fakeTray) Stop() { f.stopped++ }

type fakeWatcher struct {
	started int
	stopped int
}

func (w *fakeWatcher) Start() error { w.started++; return nil }
func (w *fakeWatcher) Stop() error { w.stopped++; return nil }

// startupHarness holds fakes installed by startTestApp.
type startupHarness struct {
	runtime *runtimeStub
	native  *fakeNative
	hotkeys *fakeHotkeyOS
	ipc     *fakeIPCServer
	tray    *fakeTray
	watcher *fakeWatcher
	dir     string
}

const eventTimeout = 2 * time.Second

// startTestApp runs App.startup against fakes in a temp config dir.
func startTestApp(t *testing.T, native *fakeNative, hk *fakeHotkeyOS) (*App, *startupHarness) {
	t.Helper()
	return startTestAppWithShortcutDir(t, native, hk, t.TempDir())
}

// startTestAppWithShortcutDir is startTestApp with config files in dir.
func startTestAppWithShortcutDir(t *testing.T, native *fakeNative, hk *fakeHotkeyOS, dir string) (*App, *startupHarness) {
	t.Helper()
	h := &startupHarness{
		runtime: stubRuntime(t),
		native:  native,
		hotkeys: hk,
		ipc:     &fakeIPCServer{},
		tray:    &fakeTray{},
		watcher: &fakeWatcher{},
		dir:     dir,
	}
	linkRuntime(h.runtime, native)

	origNative, origIPC, origTray := openNativeWindowFn, newIPCServerFn, newTrayFn
	origWatcher, origShortcutPath := newConfigWatcherFn, shortcutPathFn
	t.Cleanup(func() {
		openNativeWindowFn, newIPCServerFn, newTrayFn = origNative, origIPC, origTray
		newConfigWatcherFn, shortcutPathFn = origWatcher, origShortcutPath
	})
	openNativeWindowFn = func() nativeWindow { return native }
	newIPCServerFn = func(ipc.Handler) ipcServer { return h.ipc }
	newTrayFn = func(*tray.Router) trayRunner { return h.tray }
	newConfigWatcherFn = func(string, func(config.Config)) (configWatcher, error) { return h.watcher, nil }
	shortcutPathFn = func() string { return filepath.Join(h.dir, "global-shortcut.txt") }

	app := NewApp(nil)
	app.hotkeys = hotkeys.NewManagerWithBackend(hk)
	app.configPath = filepath.Join(h.dir, "config.yaml")
	app.startup(context.Background())
	t.Cleanup(func() { app.shutdown(context.Background()) })
	return app, h
}
