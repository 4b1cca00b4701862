package hotkeys

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBindingSuccess(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		wantNorm string
		wantMods Modifier
		wantKey  Key
	}{
		{name: "default shortcut", spec: "Alt+N", wantNorm: "Alt+N", wantMods: ModAlt, wantKey: "N"},
		{name: "lowercase letter", spec: "alt+n", wantNorm: "Alt+N", wantMods: ModAlt, wantKey: "N"},
		{name: "surrounding whitespace", spec: "  Ctrl + Shift + P  ", wantNorm: "Ctrl+Shift+P", wantMods: ModCtrl | ModShift, wantKey: "P"},
		{name: "canonical modifier order", spec: "Shift+Cmd+Alt+Ctrl+K", wantNorm: "Ctrl+Alt+Shift+Super+K", wantMods: ModCtrl | ModAlt | ModShift | ModSuper, wantKey: "K"},
		{name: "option alias", spec: "Option+Space", wantNorm: "Alt+Space", wantMods: ModAlt, wantKey: "Space"},
		{name: "opt alias", spec: "Opt+1", wantNorm: "Alt+1", wantMods: ModAlt, wantKey: "1"},
		{name: "command alias", spec: "Command+Enter", wantNorm: "Super+Enter", wantMods: ModSuper, wantKey: "Enter"},
		{name: "meta alias", spec: "Meta+Return", wantNorm: "Super+Enter", wantMods: ModSuper, wantKey: "Enter"},
		{name: "win alias", spec: "Win+Esc", wantNorm: "Super+Escape", wantMods: ModSuper, wantKey: "Escape"},
		{name: "control alias", spec: "Control+Tab", wantNorm: "Ctrl+Tab", wantMods: ModCtrl, wantKey: "Tab"},
		{name: "function key", spec: "Ctrl+Shift+F12", wantNorm: "Ctrl+Shift+F12", wantMods: ModCtrl | ModShift, wantKey: "F12"},
		{name: "highest function key", spec: "Alt+f20", wantNorm: "Alt+F20", wantMods: ModAlt, wantKey: "F20"},
		{name: "arrow key", spec: "Ctrl+Left", wantNorm: "Ctrl+Left", wantMods: ModCtrl, wantKey: "Left"},
		{name: "duplicate modifier", spec: "Alt+Alt+N", wantNorm: "Alt+N", wantMods: ModAlt, wantKey: "N"},
		{name: "delete", spec: "Ctrl+Alt+Delete", wantNorm: "Ctrl+Alt+Delete", wantMods: ModCtrl | ModAlt, wantKey: "Delete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBinding(tt.spec)
			if err != nil {
				t.Fatalf("ParseBinding(%q) unexpected error: %v", tt.spec, err)
			}
			if got := b.Normalized(); got != tt.wantNorm {
				t.Errorf("Normalized() = %q, want %q", got, tt.wantNorm)
			}
			if b.Modifiers() != tt.wantMods {
				t.Errorf("Modifiers() = %b, want %b", b.Modifiers(), tt.wantMods)
			}
			if b.Key() != tt.wantKey {
				t.Errorf("Key() = %q, want %q", b.Key(), tt.wantKey)
			}
			if b.Raw() != strings.TrimSpace(tt.spec) {
				t.Errorf("Raw() = %q, want %q", b.Raw(), strings.TrimSpace(tt.spec))
			}
		})
	}
}

func TestParseBindingCmdOrCtrlFollowsHostOS(t *testing.T) {
	orig := hostOS
	t.Cleanup(func() { hostOS = orig })

	hostOS = "darwin"
	b, err := ParseBinding("CmdOrCtrl+N")
	if err != nil {
		t.Fatalf("ParseBinding() error = %v", err)
	}
	if b.Modifiers() != ModSuper {
		t.Fatalf("darwin CmdOrCtrl = %b, want ModSuper", b.Modifiers())
	}

	hostOS = "windows"
	b, err = ParseBinding("CmdOrCtrl+N")
	if err != nil {
		t.Fatalf("ParseBinding() error = %v", err)
	}
	if b.Modifiers() != ModCtrl {
		t.Fatalf("windows CmdOrCtrl = %b, want ModCtrl", b.Modifiers())
	}
}

func TestParseBindingErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantMsg string
	}{
		{name: "empty", spec: "", wantMsg: "shortcut is empty"},
		{name: "whitespace", spec: "   ", wantMsg: "shortcut is empty"},
		{name: "key only", spec: "N", wantMsg: "must include a modifier and a key"},
		{name: "modifier only", spec: "Ctrl+Alt", wantMsg: "missing key after modifier"},
		{name: "trailing plus", spec: "Alt+", wantMsg: "missing key"},
		{name: "empty modifier", spec: "+N", wantMsg: "empty modifier"},
		{name: "unknown modifier", spec: "Hyper+N", wantMsg: `unknown modifier "Hyper"`},
		{name: "unknown key", spec: "Alt+PageUp", wantMsg: `unknown key "PageUp"`},
		{name: "punctuation key", spec: "Alt+;", wantMsg: `unknown key ";"`},
		{name: "function key out of range", spec: "Alt+F21", wantMsg: `unknown key "F21"`},
		{name: "function key zero", spec: "Alt+F0", wantMsg: `unknown key "F0"`},
		{name: "function key leading zero", spec: "Alt+F01", wantMsg: `unknown key "F01"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBinding(tt.spec)
			if err == nil {
				t.Fatalf("ParseBinding(%q) expected error", tt.spec)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseErrorMessageIncludesShortcut(t *testing.T) {
	_, err := ParseBinding("Alt+PageUp")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), `invalid shortcut "Alt+PageUp": `) {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestBindingEqual(t *testing.T) {
	a, _ := ParseBinding("Option+n")
	b, _ := ParseBinding("Alt+N")
	c, _ := ParseBinding("Alt+M")
	if !a.Equal(b) {
		t.Fatal("Option+n and Alt+N should be equal")
	}
	if a.Equal(c) {
		t.Fatal("Alt+N and Alt+M should differ")
	}
	if !(Binding{}).IsZero() {
		t.Fatal("zero Binding should report IsZero")
	}
}
