package config

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"freecastnotes/internal/workerutil"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 150 * time.Millisecond

// Watcher reloads the config file when it changes on disk and passes the
// result to onChange. Parse errors are logged; the sanitized config is
// still delivered so a bad field never disables the others.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(Config)
	debounce time.Duration

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	closed  bool
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, onChange func(Config)) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config path required")
	}
	if onChange == nil {
		return nil, errors.New("onChange callback required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		path:     path,
		onChange: onChange,
		debounce: defaultReloadDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory containing the config file.
// Editors that replace files via rename are covered by the Create event.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("config watcher already stopped")
	}
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true
	workerutil.RunWithPanicRecovery(context.Background(), "config-watcher", &w.wg, func(context.Context) {
		w.loop()
	}, workerutil.RecoveryOptions{
		MaxRetries: 3,
		IsShutdown: w.stopping,
	})
	return nil
}

func (w *Watcher) loop() {
	filename := filepath.Base(w.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("[WARN-CONFIG] config watcher error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) stopping() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("[WARN-CONFIG] config reload reported problems", "path", w.path, "error", err)
	}
	slog.Debug("[DEBUG-CONFIG] config reloaded", "path", w.path)
	w.onChange(cfg)
}

// Stop ends watching and releases the fsnotify handle, whether or not
// Start ran. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.running {
		w.running = false
		close(w.done)
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
