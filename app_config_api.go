package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"freecastnotes/internal/config"
	"freecastnotes/internal/overlay"
)

// logLevelEnv overrides log_level from config.yaml when set.
const logLevelEnv = "FREECASTNOTES_LOG_LEVEL"

type configUpdatedEvent struct {
	Config             config.Config `json:"config"`
	Version            uint64        `json:"version"`
	UpdatedAtUnixMilli int64         `json:"updated_at_unix_milli"`
}

// GetConfig returns the loaded config.
func (a *App) GetConfig() config.Config {
	return a.getConfigSnapshot()
}

// GetConfigAndFlushWarnings returns the loaded config and emits any pending
// startup warnings.
func (a *App) GetConfigAndFlushWarnings() config.Config {
	a.flushPendingConfigLoadWarnings()
	return a.getConfigSnapshot()
}

// SaveConfig validates and persists cfg, applies it, and emits
// config:updated with the normalized config.
func (a *App) SaveConfig(cfg config.Config) error {
	event, err := a.saveConfigWithLock(cfg)
	if err != nil {
		return err
	}
	a.applyConfig(event.Config)
	a.emitRuntimeEvent("config:updated", event)
	return nil
}

// GetOverlayPolicy returns the active unfocused-window toggle policy.
func (a *App) GetOverlayPolicy() string {
	if a.toggler == nil {
		return string(overlay.ParsePolicy(a.getConfigSnapshot().Overlay.UnfocusedPolicy))
	}
	return string(a.toggler.Policy())
}

func (a *App) saveConfigWithLock(cfg config.Config) (configUpdatedEvent, error) {
	a.cfgSaveMu.Lock()
	defer a.cfgSaveMu.Unlock()

	normalized, err := config.Save(a.configPath, cfg)
	if err != nil {
		return configUpdatedEvent{}, err
	}
	a.setConfigSnapshot(normalized)
	return a.newConfigUpdatedEvent(normalized), nil
}

func (a *App) newConfigUpdatedEvent(cfg config.Config) configUpdatedEvent {
	return configUpdatedEvent{
		Config:             cfg,
		Version:            a.configEventVersion.Add(1),
		UpdatedAtUnixMilli: time.Now().UnixMilli(),
	}
}

// loadConfig reads config.yaml, creating it with defaults when missing.
// Failures are non-fatal: the sanitized or default config is used and a
// warning is queued for the UI.
func (a *App) loadConfig(ctx context.Context) {
	if a.configPath == "" {
		a.configPath = config.DefaultPath()
	}
	for _, message := range config.ConsumeDefaultPathWarnings() {
		a.addPendingConfigLoadWarning(message)
	}

	cfg, err := config.EnsureFile(a.configPath)
	if err != nil {
		a.addPendingConfigLoadWarning(
			"Config file has problems; affected settings use defaults. Error: " + err.Error(),
		)
		runtimeLogger.Warningf(ctx, "failed to load config from %s: %v", a.configPath, err)
	}
	a.setConfigSnapshot(cfg)
}

// applyConfig pushes cfg into the running services. Policy and strategy
// changes take effect on the next toggle.
func (a *App) applyConfig(cfg config.Config) {
	a.setConfigSnapshot(cfg)
	a.applyLogLevel(cfg)

	if a.toggler != nil {
		policy := overlay.ParsePolicy(cfg.Overlay.UnfocusedPolicy)
		if policy != a.toggler.Policy() {
			slog.Info("[overlay] unfocused policy changed", "policy", policy)
			a.toggler.SetPolicy(policy)
		}
	}
	if a.controller != nil {
		a.strategyMu.Lock()
		if cfg.Overlay.Strategy != a.strategyName {
			next := overlay.SelectStrategy(cfg.Overlay.Strategy, a.native)
			slog.Info("[overlay] strategy changed", "config", cfg.Overlay.Strategy, "strategy", next.Name())
			a.controller.SetStrategy(next)
			a.strategyName = cfg.Overlay.Strategy
		}
		a.strategyMu.Unlock()
	}
}

func (a *App) applyLogLevel(cfg config.Config) {
	value := cfg.LogLevel
	if env := strings.TrimSpace(os.Getenv(logLevelEnv)); env != "" {
		value = env
	}
	level := config.ParseLogLevel(value)
	if a.logLevel.Level() != level {
		a.logLevel.Set(level)
		slog.Info("[config] log level applied", "level", level)
	}
}

// onConfigFileChanged handles a reload from the config watcher.
func (a *App) onConfigFileChanged(cfg config.Config) {
	if a.shuttingDown.Load() {
		return
	}
	a.applyConfig(cfg)
	a.emitRuntimeEvent("config:updated", a.newConfigUpdatedEvent(cfg))
}

func (a *App) addPendingConfigLoadWarning(message string) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return
	}
	a.startupWarnMu.Lock()
	a.configLoadWarnings = append(a.configLoadWarnings, trimmed)
	a.startupWarnMu.Unlock()
}

func (a *App) consumePendingConfigLoadWarning() string {
	a.startupWarnMu.Lock()
	defer a.startupWarnMu.Unlock()
	if len(a.configLoadWarnings) == 0 {
		return ""
	}
	message := strings.Join(a.configLoadWarnings, "\n")
	a.configLoadWarnings = nil
	return message
}

func (a *App) flushPendingConfigLoadWarnings() {
	ctx := a.runtimeContext()
	if ctx == nil {
		return
	}
	if warning := a.consumePendingConfigLoadWarning(); warning != "" {
		a.emitRuntimeEventWithContext(ctx, "config:load-failed", map[string]string{
			"message": warning,
		})
	}
}
