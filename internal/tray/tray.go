// Package tray shows the notification-area icon and turns menu clicks
// into semantic events for the App.
package tray

import (
	"context"
	_ "embed"
	"log/slog"
	"runtime"
	"sync"

	"freecastnotes/internal/workerutil"
)

//go:embed icons/tray.png
var iconPNG []byte

//go:embed icons/tray.ico
var iconICO []byte

// Event is a semantic tray action.
type Event string

const (
	// EventToggle is a left click on the tray icon.
	EventToggle      Event = "toggle"
	EventShowHide    Event = "show_hide"
	EventNewNote     Event = "new_note"
	EventSetShortcut Event = "set_shortcut"
	EventAbout       Event = "about"
	EventQuit        Event = "quit"
)

// MenuItem is one tray menu entry. An item without an Event is a separator.
type MenuItem struct {
	Label   string
	Tooltip string
	Event   Event
}

// DefaultMenu returns the tray menu in display order.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{Label: "Show/Hide Notes", Event: EventShowHide},
		{Label: "New Note", Event: EventNewNote},
		{},
		{Label: "Set Global Shortcut...", Event: EventSetShortcut},
		{Label: "About", Event: EventAbout},
		{},
		{Label: "Quit", Event: EventQuit},
	}
}

// Icon returns the platform-appropriate tray icon bytes.
func Icon() []byte {
	if runtime.GOOS == "windows" {
		return iconICO
	}
	return iconPNG
}

// Router maps tray events to handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[Event]func()
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{handlers: map[Event]func(){}}
}

// Handle registers fn for ev, replacing any previous handler.
func (r *Router) Handle(ev Event, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[ev] = fn
}

// Dispatch runs the handler for ev and reports whether one existed.
// A panicking handler is logged and does not take down the tray loop.
func (r *Router) Dispatch(ev Event) (handled bool) {
	r.mu.RLock()
	fn := r.handlers[ev]
	r.mu.RUnlock()
	if fn == nil {
		slog.Debug("[DEBUG-TRAY] unhandled tray event", "event", string(ev))
		return false
	}
	handled = true
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[ERROR-TRAY] tray handler panicked", "event", string(ev), "panic", rec)
		}
	}()
	fn()
	return handled
}

// Options configures the tray icon.
type Options struct {
	Tooltip string
	Icon    []byte
	Menu    []MenuItem
}

// Tray owns the running tray icon.
type Tray struct {
	router  *Router
	opts    Options
	backend backend

	mu      sync.Mutex
	running bool
	end     func()
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New returns a tray backed by the system tray implementation.
func New(router *Router, opts Options) *Tray {
	return newWithBackend(router, opts, systrayBackend{})
}

func newWithBackend(router *Router, opts Options, b backend) *Tray {
	if opts.Menu == nil {
		opts.Menu = DefaultMenu()
	}
	if opts.Icon == nil {
		opts.Icon = Icon()
	}
	return &Tray{router: router, opts: opts, backend: b}
}

// Start shows the icon and begins routing clicks. It integrates with the
// host event loop rather than running its own.
func (t *Tray) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	start, end := t.backend.run(func() { t.onReady(ctx) }, func() {
		slog.Debug("[DEBUG-TRAY] tray exited")
	})
	t.end = end
	t.running = true
	start()
}

func (t *Tray) onReady(ctx context.Context) {
	t.backend.setIcon(t.opts.Icon)
	if t.opts.Tooltip != "" {
		t.backend.setTooltip(t.opts.Tooltip)
	}
	t.backend.setOnTapped(func() { t.router.Dispatch(EventToggle) })

	for _, item := range t.opts.Menu {
		if item.Event == "" {
			t.backend.addSeparator()
			continue
		}
		clicked := t.backend.addItem(item.Label, item.Tooltip)
		ev := item.Event
		workerutil.RunWithPanicRecovery(ctx, "tray-item-"+string(ev), &t.wg, func(ctx context.Context) {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-clicked:
					if !ok {
						return
					}
					t.router.Dispatch(ev)
				}
			}
		}, workerutil.RecoveryOptions{MaxRetries: 3})
	}
	slog.Debug("[DEBUG-TRAY] tray ready", "items", len(t.opts.Menu))
}

// Stop removes the icon and stops the click listeners.
func (t *Tray) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	end, cancel := t.end, t.cancel
	t.mu.Unlock()

	cancel()
	end()
	t.wg.Wait()
}
