package main

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"freecastnotes/internal/hotkeys"
	"freecastnotes/internal/shortcut"
	"freecastnotes/internal/testutil"
)

func TestStartupRegistersDefaultShortcut(t *testing.T) {
	hk := newFakeHotkeyOS()
	app, h := startTestApp(t, newOverlayNative(), hk)

	if got := app.GetGlobalShortcut(); got != shortcut.DefaultShortcut {
		t.Fatalf("GetGlobalShortcut() = %q, want %q", got, shortcut.DefaultShortcut)
	}
	if hk.liveCount() != 1 {
		t.Fatalf("live hotkeys = %d, want 1", hk.liveCount())
	}
	// The default is not written until the user changes it.
	if _, err := os.Stat(filepath.Join(h.dir, "global-shortcut.txt")); !os.IsNotExist(err) {
		t.Fatalf("shortcut file stat error = %v, want not exist", err)
	}
}

func TestHotkeyPressTogglesOverlay(t *testing.T) {
	hk := newFakeHotkeyOS()
	native := newOverlayNative()
	_, h := startTestApp(t, native, hk)

	if !hk.press("Alt+N") {
		t.Fatal("Alt+N is not registered")
	}
	testutil.WaitFor(t, eventTimeout, func() bool {
		return slices.Contains(h.runtime.EventNames(), eventOverlayShown)
	})
	if visible, _ := native.IsVisible(); !visible {
		t.Fatal("hotkey press did not show the overlay")
	}
}

func TestSetGlobalShortcutPersistsAndEmits(t *testing.T) {
	hk := newFakeHotkeyOS()
	app, h := startTestApp(t, newOverlayNative(), hk)

	if err := app.SetGlobalShortcut("  Ctrl+Shift+Space  "); err != nil {
		t.Fatalf("SetGlobalShortcut() error = %v", err)
	}
	if got := app.GetGlobalShortcut(); got != "Ctrl+Shift+Space" {
		t.Fatalf("GetGlobalShortcut() = %q, want Ctrl+Shift+Space", got)
	}
	raw, err := os.ReadFile(filepath.Join(h.dir, "global-shortcut.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.TrimSpace(string(raw)) != "Ctrl+Shift+Space" {
		t.Fatalf("persisted shortcut = %q", raw)
	}
	if hk.press("Alt+N") {
		t.Fatal("old shortcut must be unregistered")
	}

	events := h.runtime.Events()
	if len(events) != 1 || events[0].name != eventShortcutUpdated {
		t.Fatalf("events = %+v, want one shortcut:updated", events)
	}
	payload, ok := events[0].payload.(map[string]string)
	if !ok || payload["shortcut"] != "Ctrl+Shift+Space" {
		t.Fatalf("shortcut:updated payload = %#v", events[0].payload)
	}
}

func TestSetGlobalShortcutFailuresLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		claimed string
		check   func(t *testing.T, err error)
	}{
		{
			name: "empty",
			raw:  "   ",
			check: func(t *testing.T, err error) {
				if !errors.Is(err, shortcut.ErrEmptyShortcut) {
					t.Fatalf("error = %v, want ErrEmptyShortcut", err)
				}
			},
		},
		{
			name: "unparseable",
			raw:  "Ctrl+Banana",
			check: func(t *testing.T, err error) {
				var pe *hotkeys.ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("error = %v, want ParseError", err)
				}
			},
		},
		{
			name:    "claimed by another app",
			raw:     "Ctrl+K",
			claimed: "Ctrl+K",
			check: func(t *testing.T, err error) {
				var re *hotkeys.RegisterError
				if !errors.As(err, &re) || re.Op != hotkeys.OpRegister {
					t.Fatalf("error = %v, want register RegisterError", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claimed []string
			if tt.claimed != "" {
				claimed = append(claimed, tt.claimed)
			}
			hk := newFakeHotkeyOS(claimed...)
			app, h := startTestApp(t, newOverlayNative(), hk)

			err := app.SetGlobalShortcut(tt.raw)
			tt.check(t, err)

			if got := app.GetGlobalShortcut(); got != shortcut.DefaultShortcut {
				t.Fatalf("GetGlobalShortcut() = %q, want unchanged %q", got, shortcut.DefaultShortcut)
			}
			if !hk.press("Alt+N") {
				t.Fatal("previous shortcut must stay registered")
			}
			if events := h.runtime.EventNames(); slices.Contains(events, eventShortcutUpdated) {
				t.Fatalf("events = %v, want no shortcut:updated", events)
			}
		})
	}
}

func TestStartupFallsBackFromClaimedShortcut(t *testing.T) {
	hk := newFakeHotkeyOS("Ctrl+K")
	native := newOverlayNative()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "global-shortcut.txt"), []byte("Ctrl+K\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	app, h := startTestAppWithShortcutDir(t, native, hk, dir)

	if got := app.GetGlobalShortcut(); got != shortcut.DefaultShortcut {
		t.Fatalf("GetGlobalShortcut() = %q, want fallback %q", got, shortcut.DefaultShortcut)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "global-shortcut.txt"))
	if strings.TrimSpace(string(raw)) != shortcut.DefaultShortcut {
		t.Fatalf("persisted shortcut = %q, want fallback persisted", raw)
	}
	assertLoadFailedEvent(t, h.runtime, "could not be registered")
}

func TestStartupContinuesWithoutShortcut(t *testing.T) {
	hk := newFakeHotkeyOS("Alt+N")
	app, h := startTestApp(t, newOverlayNative(), hk)

	if got := app.GetGlobalShortcut(); got != "" {
		t.Fatalf("GetGlobalShortcut() = %q, want empty", got)
	}
	if hk.liveCount() != 0 {
		t.Fatalf("live hotkeys = %d, want 0", hk.liveCount())
	}
	assertLoadFailedEvent(t, h.runtime, "No global shortcut")

	// The user can still pick a working shortcut afterwards.
	if err := app.SetGlobalShortcut("Ctrl+Alt+N"); err != nil {
		t.Fatalf("SetGlobalShortcut() error = %v", err)
	}
	if got := app.GetGlobalShortcut(); got != "Ctrl+Alt+N" {
		t.Fatalf("GetGlobalShortcut() = %q, want Ctrl+Alt+N", got)
	}
}

func TestShortcutCommandsBeforeStartup(t *testing.T) {
	app := NewApp(nil)
	if got := app.GetGlobalShortcut(); got != "" {
		t.Fatalf("GetGlobalShortcut() = %q, want empty", got)
	}
	if err := app.SetGlobalShortcut("Alt+N"); !errors.Is(err, errShortcutUnavailable) {
		t.Fatalf("SetGlobalShortcut() error = %v, want errShortcutUnavailable", err)
	}
}

func assertLoadFailedEvent(t *testing.T, rt *runtimeStub, contains string) {
	t.Helper()
	for _, e := range rt.Events() {
		if e.name != "config:load-failed" {
			continue
		}
		payload, ok := e.payload.(map[string]string)
		if ok && strings.Contains(payload["message"], contains) {
			return
		}
	}
	t.Fatalf("no config:load-failed event containing %q in %+v", contains, rt.Events())
}
