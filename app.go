package main

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"freecastnotes/internal/config"
	"freecastnotes/internal/hotkeys"
	"freecastnotes/internal/overlay"
	"freecastnotes/internal/shortcut"
)

// App is the Wails-bound application service.
type App struct {
	// Runtime context lifecycle.
	ctx   context.Context
	ctxMu sync.RWMutex

	// Configuration state and startup warnings.
	// Lock ordering (outer -> inner): cfgSaveMu -> cfgMu.
	cfgMu              sync.RWMutex
	cfgSaveMu          sync.Mutex
	configEventVersion atomic.Uint64
	cfg                config.Config
	configPath         string
	logLevel           *slog.LevelVar
	startupWarnMu      sync.Mutex
	configLoadWarnings []string

	// Overlay and hotkey services. Set once during startup before any
	// worker that reads them is started.
	native     nativeWindow
	window     *wailsWindow
	controller *overlay.Controller
	toggler    *overlay.Toggler
	// strategyName is the configured overlay strategy, guarded by strategyMu.
	// The controller's strategy Name may differ while "auto" resolves.
	strategyMu   sync.Mutex
	strategyName string
	hotkeys    *hotkeys.Manager
	shortcuts  *shortcut.Service

	// Auxiliary services.
	ipcServer  ipcServer
	tray       trayRunner
	cfgWatcher configWatcher

	shuttingDown atomic.Bool
}

// NewApp creates the app service. logLevel is adjusted when the config
// file changes; nil allocates a private level.
func NewApp(logLevel *slog.LevelVar) *App {
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}
	return &App{
		cfg:      config.DefaultConfig(),
		logLevel: logLevel,
		hotkeys:  hotkeys.NewManager(),
	}
}

func (a *App) setRuntimeContext(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()
}

func (a *App) runtimeContext() context.Context {
	a.ctxMu.RLock()
	ctx := a.ctx
	a.ctxMu.RUnlock()
	return ctx
}

// getConfigSnapshot returns the current config protected by cfgMu.
func (a *App) getConfigSnapshot() config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

func (a *App) setConfigSnapshot(cfg config.Config) {
	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()
}
