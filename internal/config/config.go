package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	// AppIdentifier names the per-user configuration directory.
	AppIdentifier = "com.freecastnotes.app"
	// ConfigFileName holds overlay policy and logging settings.
	ConfigFileName = "config.yaml"
	// ShortcutFileName holds the persisted global shortcut string.
	ShortcutFileName = "global-shortcut.txt"

	maxConfigFileBytes int64 = 64 * 1024
	maxRenameRetry           = 10
	// Windows file lock releases (antivirus/indexing) typically settle quickly.
	renameRetryBaseDelay = 10 * time.Millisecond
)

// Unfocused-window policies applied by the toggle when the overlay is
// visible but another application has focus.
const (
	UnfocusedFocus      = "focus"
	UnfocusedHide       = "hide"
	UnfocusedReposition = "reposition"
)

// Overlay strategies. StrategyAuto selects by platform capability.
const (
	StrategyAuto   = "auto"
	StrategyNative = "native"
	StrategyBasic  = "basic"
	StrategyNoOp   = "noop"
)

var (
	userConfigDirFn = os.UserConfigDir
	userHomeDirFn   = os.UserHomeDir
)

var defaultPathWarningState struct {
	mu       sync.Mutex
	messages []string
}

func recordDefaultPathWarning(message string) {
	defaultPathWarningState.mu.Lock()
	defaultPathWarningState.messages = append(defaultPathWarningState.messages, message)
	defaultPathWarningState.mu.Unlock()
}

// ConsumeDefaultPathWarnings returns and clears path-resolution warnings
// accumulated during DefaultDir() calls.
func ConsumeDefaultPathWarnings() []string {
	defaultPathWarningState.mu.Lock()
	defer defaultPathWarningState.mu.Unlock()
	out := defaultPathWarningState.messages
	defaultPathWarningState.messages = nil
	return out
}

// OverlayConfig controls how the overlay window is shown.
type OverlayConfig struct {
	UnfocusedPolicy string `yaml:"unfocused_policy" json:"unfocused_policy"`
	Strategy        string `yaml:"strategy" json:"strategy"`
	PinOnStartup    bool   `yaml:"always_on_top_at_startup" json:"always_on_top_at_startup"`
}

// Config is the on-disk application configuration.
type Config struct {
	Overlay  OverlayConfig `yaml:"overlay" json:"overlay"`
	LogLevel string        `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Overlay: OverlayConfig{
			UnfocusedPolicy: UnfocusedReposition,
			Strategy:        StrategyAuto,
			PinOnStartup:    true,
		},
		LogLevel: "info",
	}
}

// DefaultDir resolves the per-user application config directory, preferring
// os.UserConfigDir, then ~/.config, then os.TempDir().
// The temp-dir fallback is not a stable persistence location.
func DefaultDir() string {
	base, err := userConfigDirFn()
	if err != nil || strings.TrimSpace(base) == "" {
		home, homeErr := userHomeDirFn()
		if homeErr != nil {
			slog.Warn("[WARN-CONFIG] using temp dir as config dir fallback", "error", errors.Join(err, homeErr))
			recordDefaultPathWarning(
				"Config path fallback: failed to resolve the user config and home directories. Using temp directory; the global shortcut may not persist.",
			)
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppIdentifier)
}

// DefaultPath returns the config.yaml path inside DefaultDir.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), ConfigFileName)
}

// ShortcutPath returns the global-shortcut.txt path inside DefaultDir.
func ShortcutPath() string {
	return filepath.Join(DefaultDir(), ShortcutFileName)
}

// Load reads the config file. A missing or empty file yields defaults.
// Invalid field values are reset to their defaults and reported in the
// returned error alongside the sanitized config.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		slog.Warn("[WARN-CONFIG] failed to parse config, using defaults", "path", path, "error", err)
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}
	if err := applyDefaultsAndValidate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EnsureFile writes the default config if missing and returns the loaded config.
func EnsureFile(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if _, err := Save(path, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Save validates cfg and atomically writes it to path.
// Returns the normalized config that was actually written to disk.
func Save(path string, cfg Config) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return cfg, errors.New("config path required")
	}
	if err := applyDefaultsAndValidate(&cfg); err != nil {
		return cfg, fmt.Errorf("save config: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("save config: marshal: %w", err)
	}
	if err := atomicWrite(path, raw); err != nil {
		return cfg, err
	}
	slog.Debug("[DEBUG-CONFIG] config saved", "path", path)
	return cfg, nil
}

// ParseLogLevel maps a config log level to slog. Unknown values map to Info.
func ParseLogLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// applyDefaultsAndValidate normalizes cfg in place.
// MUTATES: invalid values are replaced by defaults.
func applyDefaultsAndValidate(cfg *Config) error {
	defaults := DefaultConfig()
	var errs []error

	cfg.Overlay.UnfocusedPolicy = normalizeChoice(
		"overlay.unfocused_policy", cfg.Overlay.UnfocusedPolicy, defaults.Overlay.UnfocusedPolicy,
		[]string{UnfocusedFocus, UnfocusedHide, UnfocusedReposition}, &errs,
	)
	cfg.Overlay.Strategy = normalizeChoice(
		"overlay.strategy", cfg.Overlay.Strategy, defaults.Overlay.Strategy,
		[]string{StrategyAuto, StrategyNative, StrategyBasic, StrategyNoOp}, &errs,
	)
	cfg.LogLevel = normalizeChoice(
		"log_level", cfg.LogLevel, defaults.LogLevel,
		[]string{"debug", "info", "warn", "error"}, &errs,
	)
	return errors.Join(errs...)
}

func normalizeChoice(field, value, fallback string, allowed []string, errs *[]error) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return fallback
	}
	for _, candidate := range allowed {
		if normalized == candidate {
			return normalized
		}
	}
	slog.Warn("[WARN-CONFIG] invalid value, using default", "field", field, "value", value, "default", fallback)
	*errs = append(*errs, fmt.Errorf("%s: unsupported value %q (allowed: %s)", field, value, strings.Join(allowed, ", ")))
	return fallback
}

// atomicWrite writes data using temp-file + rename to avoid partial writes
// and retries rename on Windows to tolerate transient file locks.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			if closeErr := tmpFile.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
				slog.Warn("[WARN-CONFIG] failed to close temp file", "path", tmpPath, "error", closeErr)
			}
		}
		if err != nil {
			if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				slog.Warn("[WARN-CONFIG] failed to remove temp file", "path", tmpPath, "error", removeErr)
			}
		}
	}()

	if err = tmpFile.Chmod(0o600); err != nil {
		return fmt.Errorf("save config: chmod temp: %w", err)
	}
	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("save config: write: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("save config: sync: %w", err)
	}
	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return fmt.Errorf("save config: close: %w", err)
	}

	if err = renameFileWithRetry(tmpPath, path); err != nil {
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}

func renameFileWithRetry(sourcePath string, targetPath string) error {
	var lastErr error
	for attempt := range maxRenameRetry {
		err := os.Rename(sourcePath, targetPath)
		if err == nil {
			return nil
		}
		lastErr = err
		if runtime.GOOS != "windows" {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * renameRetryBaseDelay)
	}
	return lastErr
}
