package hotkeys

import "strings"

// Modifier is a platform-neutral modifier bitmask.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	// ModSuper is Command on macOS and the Windows/Super key elsewhere.
	ModSuper
)

// modifierOrder fixes the canonical order used by Binding.Normalized.
var modifierOrder = []Modifier{ModCtrl, ModAlt, ModShift, ModSuper}

func (m Modifier) name() string {
	switch m {
	case ModCtrl:
		return "Ctrl"
	case ModAlt:
		return "Alt"
	case ModShift:
		return "Shift"
	case ModSuper:
		return "Super"
	default:
		return "Mod"
	}
}

// Has reports whether every bit of other is set in m.
func (m Modifier) Has(other Modifier) bool { return m&other == other }

// Key is the canonical token of a non-modifier key ("N", "F12", "Space").
type Key string

// Binding describes a parsed global hotkey.
// Construct only via ParseBinding to guarantee invariant consistency.
type Binding struct {
	modifiers Modifier
	key       Key
	raw       string
}

// Modifiers returns the modifier bitmask.
func (b Binding) Modifiers() Modifier { return b.modifiers }

// Key returns the key token.
func (b Binding) Key() Key { return b.key }

// Raw returns the trimmed input the binding was parsed from.
func (b Binding) Raw() string { return b.raw }

// Normalized returns the canonical human-readable binding string.
func (b Binding) Normalized() string {
	parts := make([]string, 0, len(modifierOrder)+1)
	for _, mod := range modifierOrder {
		if b.modifiers.Has(mod) {
			parts = append(parts, mod.name())
		}
	}
	parts = append(parts, string(b.key))
	return strings.Join(parts, "+")
}

// Equal reports whether b and other trigger on the same key combination.
func (b Binding) Equal(other Binding) bool {
	return b.modifiers == other.modifiers && b.key == other.key
}

// IsZero reports whether b was never parsed.
func (b Binding) IsZero() bool { return b.key == "" }
