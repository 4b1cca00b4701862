package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"freecastnotes/internal/config"
	"freecastnotes/internal/ipc"
	"freecastnotes/internal/overlay"
	"freecastnotes/internal/shortcut"
	"freecastnotes/internal/tray"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

type appRuntimeLogger interface {
	Warningf(context.Context, string, ...interface{})
	Infof(context.Context, string, ...interface{})
	Errorf(context.Context, string, ...interface{})
}

type wailsRuntimeLogger struct{}

func formatRuntimeLogMessage(message string, args ...interface{}) string {
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

func (wailsRuntimeLogger) Warningf(ctx context.Context, message string, args ...interface{}) {
	if ctx == nil {
		slog.Warn(formatRuntimeLogMessage(message, args...))
		return
	}
	runtime.LogWarningf(ctx, message, args...)
}

func (wailsRuntimeLogger) Infof(ctx context.Context, message string, args ...interface{}) {
	if ctx == nil {
		slog.Info(formatRuntimeLogMessage(message, args...))
		return
	}
	runtime.LogInfof(ctx, message, args...)
}

func (wailsRuntimeLogger) Errorf(ctx context.Context, message string, args ...interface{}) {
	if ctx == nil {
		slog.Error(formatRuntimeLogMessage(message, args...))
		return
	}
	runtime.LogErrorf(ctx, message, args...)
}

// trayRunner is the subset of *tray.Tray the app drives.
type trayRunner interface {
	Start()
	Stop()
}

// configWatcher is the subset of *config.Watcher the app drives.
type configWatcher interface {
	Start() error
	Stop() error
}

var (
	runtimeEventsEmitFn                  = runtime.EventsEmit
	runtimeQuitFn                        = runtime.Quit
	runtimeLogger       appRuntimeLogger = wailsRuntimeLogger{}
	newIPCServerFn                       = newIPCServer
	newTrayFn                            = newTray
	newConfigWatcherFn                   = newConfigWatcher
	shortcutPathFn                       = config.ShortcutPath
)

func newIPCServer(handler ipc.Handler) ipcServer {
	return ipc.NewServer("", handler)
}

func newTray(router *tray.Router) trayRunner {
	return tray.New(router, tray.Options{Tooltip: appTitle})
}

func newConfigWatcher(path string, onChange func(config.Config)) (configWatcher, error) {
	return config.NewWatcher(path, onChange)
}

// ipcServer is the subset of *ipc.Server the app drives.
type ipcServer interface {
	Start() error
	Stop() error
	Endpoint() string
}

const shutdownWaitTimeout = 5 * time.Second

func (a *App) startup(ctx context.Context) {
	a.setRuntimeContext(ctx)
	a.loadConfig(ctx)
	cfg := a.getConfigSnapshot()
	a.applyLogLevel(cfg)

	a.native = openNativeWindowFn()
	a.window = newWailsWindow(a.runtimeContext, a.native)
	strategy := overlay.SelectStrategy(cfg.Overlay.Strategy, a.native)
	a.controller = overlay.NewController(a.window, strategy)
	a.strategyName = cfg.Overlay.Strategy
	a.toggler = overlay.NewToggler(a.window, a.controller, overlay.ParsePolicy(cfg.Overlay.UnfocusedPolicy))
	runtimeLogger.Infof(ctx, "overlay strategy: %s, currently %s (native window manager: %t)", cfg.Overlay.Strategy, strategy.Name(), a.native.Supported())

	if cfg.Overlay.PinOnStartup {
		if err := a.window.SetAlwaysOnTop(true); err != nil {
			slog.Debug("[DEBUG-OVERLAY] always-on-top at startup failed", "error", err)
		}
	}

	a.configureGlobalShortcut(ctx)
	a.startIPCServer(ctx)
	a.startTray()
	a.startConfigWatcher(ctx)
	a.flushPendingConfigLoadWarnings()
}

// configureGlobalShortcut registers the persisted or default shortcut.
// It never fails startup.
func (a *App) configureGlobalShortcut(ctx context.Context) {
	a.shortcuts = shortcut.NewService(
		shortcut.NewState(""),
		shortcut.NewStore(shortcutPathFn()),
		a.hotkeys,
		a.onGlobalShortcut,
	)
	result := a.shortcuts.Bootstrap()
	switch {
	case result.Registered && !result.FellBack:
		runtimeLogger.Infof(ctx, "global shortcut registered: %s", result.Shortcut)
	case result.Registered:
		a.addPendingConfigLoadWarning(fmt.Sprintf(
			"The saved global shortcut could not be registered; using %s instead.", result.Shortcut,
		))
		runtimeLogger.Warningf(ctx, "global shortcut fell back to default: %s", result.Shortcut)
	default:
		a.addPendingConfigLoadWarning(
			"No global shortcut could be registered. Use the tray menu to open notes or choose another shortcut.",
		)
		runtimeLogger.Errorf(ctx, "global shortcut unavailable: %v", result.Errors)
	}
}

func (a *App) onGlobalShortcut() {
	if a.shuttingDown.Load() {
		return
	}
	a.toggleOverlay("hotkey")
}

func (a *App) startIPCServer(ctx context.Context) {
	server := newIPCServerFn(a.ipcHandler())
	if err := server.Start(); err != nil {
		runtimeLogger.Warningf(ctx, "activation server failed: %v", err)
		return
	}
	a.ipcServer = server
	runtimeLogger.Infof(ctx, "activation server listening: %s", server.Endpoint())
}

func (a *App) startTray() {
	a.tray = newTrayFn(a.trayRouter())
	a.tray.Start()
}

func (a *App) startConfigWatcher(ctx context.Context) {
	watcher, err := newConfigWatcherFn(a.configPath, a.onConfigFileChanged)
	if err != nil {
		runtimeLogger.Warningf(ctx, "config watcher unavailable: %v", err)
		return
	}
	if err := watcher.Start(); err != nil {
		runtimeLogger.Warningf(ctx, "config watcher failed to start: %v", err)
		return
	}
	a.cfgWatcher = watcher
}

func (a *App) shutdown(_ context.Context) {
	if !a.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	logCtx := a.runtimeContext()

	if a.cfgWatcher != nil {
		if err := a.cfgWatcher.Stop(); err != nil {
			runtimeLogger.Warningf(logCtx, "config watcher stop failed: %v", err)
		}
	}
	if a.ipcServer != nil {
		if !waitWithTimeout(func() {
			if err := a.ipcServer.Stop(); err != nil {
				runtimeLogger.Warningf(logCtx, "activation server stop failed: %v", err)
			}
		}, shutdownWaitTimeout) {
			runtimeLogger.Warningf(logCtx, "timed out stopping activation server")
		}
	}
	if a.tray != nil {
		a.tray.Stop()
	}
	if a.hotkeys != nil {
		if err := a.hotkeys.UnregisterAll(); err != nil {
			runtimeLogger.Warningf(logCtx, "global shortcut unregister failed: %v", err)
		}
	}
	if a.native != nil {
		if err := a.native.Close(); err != nil {
			slog.Debug("[DEBUG-OVERLAY] native window manager close failed", "error", err)
		}
	}
	a.setRuntimeContext(nil)
}

func waitWithTimeout(waitFn func(), timeout time.Duration) bool {
	// The waiting goroutine may outlive timeout; this is only used during
	// process shutdown where eventual completion is expected.
	done := make(chan struct{})
	go func() {
		waitFn()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
