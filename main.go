package main

import (
	"embed"
	"errors"
	"log/slog"
	"os"

	"freecastnotes/internal/config"
	"freecastnotes/internal/ipc"
	"freecastnotes/internal/logtee"
	"freecastnotes/internal/singleinstance"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

var sendIPCCommandFn = ipc.SendCommand

func main() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(os.Getenv(logLevelEnv)))
	app := NewApp(logLevel)
	base := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(logtee.New(base, slog.LevelWarn, app.forwardLogEntry)))

	// Single-instance check before any Wails initialization. A second
	// launch toggles the running overlay instead of opening another one.
	lock, err := singleinstance.TryLock(singleinstance.DefaultLockName())
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		slog.Info("[DEBUG-SINGLE] another instance is already running, sending toggle")
		if sendErr := activateRunningInstance(); sendErr != nil {
			slog.Warn("[DEBUG-SINGLE] failed to signal existing instance", "error", sendErr)
		}
		return
	}
	if err != nil {
		slog.Warn("[DEBUG-SINGLE] single-instance lock failed, proceeding without guard", "error", err)
	}
	if lock != nil {
		defer func() {
			if releaseErr := lock.Release(); releaseErr != nil {
				slog.Warn("[DEBUG-SINGLE] lock release failed", "error", releaseErr)
			}
		}()
	}

	err = wails.Run(&options.App{
		Title:             appTitle,
		Width:             windowWidth,
		Height:            windowHeight,
		MinWidth:          windowWidth,
		MaxWidth:          windowWidth,
		MinHeight:         windowMinHeight,
		Frameless:         true,
		StartHidden:       true,
		AlwaysOnTop:       true,
		HideWindowOnClose: true,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []any{
			app,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: true,
		},
		Mac: &mac.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
		},
	})
	if err != nil {
		slog.Error("[DEBUG-SINGLE] wails run failed", "error", err)
	}
}

// activateRunningInstance asks the first instance to toggle its overlay.
func activateRunningInstance() error {
	err := sendIPCCommandFn("", ipc.CommandToggle)
	if ipc.IsConnectionError(err) {
		return errors.Join(errors.New("running instance is not accepting activation requests"), err)
	}
	return err
}
