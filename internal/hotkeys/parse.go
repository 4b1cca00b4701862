package hotkeys

import (
	"fmt"
	"runtime"
	"strings"
)

// ParseError reports a hotkey string that does not follow the shortcut grammar.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid shortcut %q: %s", e.Raw, e.Reason)
}

// hostOS is a test seam for the CmdOrCtrl alias.
var hostOS = runtime.GOOS

var modifierByName = map[string]Modifier{
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"SHIFT":   ModShift,
	"ALT":     ModAlt,
	"OPTION":  ModAlt,
	"OPT":     ModAlt,
	"CMD":     ModSuper,
	"COMMAND": ModSuper,
	"META":    ModSuper,
	"SUPER":   ModSuper,
	"WIN":     ModSuper,
}

var namedKeys = map[string]Key{
	"SPACE":  "Space",
	"TAB":    "Tab",
	"ENTER":  "Enter",
	"RETURN": "Enter",
	"ESC":    "Escape",
	"ESCAPE": "Escape",
	"DELETE": "Delete",
	"LEFT":   "Left",
	"RIGHT":  "Right",
	"UP":     "Up",
	"DOWN":   "Down",
}

const maxFunctionKey = 20

// ParseBinding parses a binding like "Alt+N" or "Cmd+Shift+F12".
// The last "+"-separated token is the key; every earlier token is a modifier.
func ParseBinding(spec string) (Binding, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Binding{}, &ParseError{Raw: spec, Reason: "shortcut is empty"}
	}

	parts := strings.Split(raw, "+")
	if len(parts) < 2 {
		return Binding{}, &ParseError{Raw: raw, Reason: "shortcut must include a modifier and a key"}
	}

	var modifiers Modifier
	for _, token := range parts[:len(parts)-1] {
		mod, err := parseModifier(token)
		if err != nil {
			return Binding{}, &ParseError{Raw: raw, Reason: err.Error()}
		}
		modifiers |= mod
	}

	key, err := parseKey(parts[len(parts)-1])
	if err != nil {
		return Binding{}, &ParseError{Raw: raw, Reason: err.Error()}
	}

	return Binding{modifiers: modifiers, key: key, raw: raw}, nil
}

func parseModifier(token string) (Modifier, error) {
	name := strings.ToUpper(strings.TrimSpace(token))
	if name == "" {
		return 0, fmt.Errorf("empty modifier")
	}
	switch name {
	case "CMDORCTRL", "CMDORCONTROL", "COMMANDORCONTROL", "COMMANDORCTRL":
		if hostOS == "darwin" {
			return ModSuper, nil
		}
		return ModCtrl, nil
	}
	mod, ok := modifierByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown modifier %q", strings.TrimSpace(token))
	}
	return mod, nil
}

func parseKey(token string) (Key, error) {
	trimmed := strings.TrimSpace(token)
	name := strings.ToUpper(trimmed)
	if name == "" {
		return "", fmt.Errorf("missing key")
	}
	if _, isModifier := modifierByName[name]; isModifier {
		return "", fmt.Errorf("missing key after modifier %q", trimmed)
	}
	if key, ok := namedKeys[name]; ok {
		return key, nil
	}
	if len(name) == 1 {
		ch := name[0]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			return Key(name), nil
		}
	}
	if n, ok := functionKeyNumber(name); ok {
		return Key(fmt.Sprintf("F%d", n)), nil
	}
	return "", fmt.Errorf("unknown key %q", trimmed)
}

func functionKeyNumber(name string) (int, bool) {
	if len(name) < 2 || len(name) > 3 || name[0] != 'F' {
		return 0, false
	}
	n := 0
	for _, ch := range name[1:] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	if n < 1 || n > maxFunctionKey || (len(name) == 3 && name[1] == '0') {
		return 0, false
	}
	return n, true
}
