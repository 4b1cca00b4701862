//go:build windows

package hotkeys

import "golang.design/x/hotkey"

var systemModifiers = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModAlt:   hotkey.ModAlt,
	ModShift: hotkey.ModShift,
	ModSuper: hotkey.ModWin,
}
