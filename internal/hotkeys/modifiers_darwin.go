//go:build darwin

package hotkeys

import "golang.design/x/hotkey"

var systemModifiers = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModAlt:   hotkey.ModOption,
	ModShift: hotkey.ModShift,
	ModSuper: hotkey.ModCmd,
}
