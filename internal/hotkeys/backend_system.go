//go:build darwin || windows

package hotkeys

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

var keyCodes = map[Key]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
	"F13": hotkey.KeyF13, "F14": hotkey.KeyF14, "F15": hotkey.KeyF15, "F16": hotkey.KeyF16,
	"F17": hotkey.KeyF17, "F18": hotkey.KeyF18, "F19": hotkey.KeyF19, "F20": hotkey.KeyF20,
	"Space":  hotkey.KeySpace,
	"Tab":    hotkey.KeyTab,
	"Enter":  hotkey.KeyReturn,
	"Escape": hotkey.KeyEscape,
	"Delete": hotkey.KeyDelete,
	"Left":   hotkey.KeyLeft,
	"Right":  hotkey.KeyRight,
	"Up":     hotkey.KeyUp,
	"Down":   hotkey.KeyDown,
}

// systemBackend registers bindings through golang.design/x/hotkey.
type systemBackend struct{}

func newSystemBackend() Backend { return systemBackend{} }

func (systemBackend) Register(binding Binding) (Registration, error) {
	key, ok := keyCodes[binding.Key()]
	if !ok {
		return nil, fmt.Errorf("key %q has no system key code", binding.Key())
	}
	mods := make([]hotkey.Modifier, 0, len(modifierOrder))
	for _, mod := range modifierOrder {
		if binding.Modifiers().Has(mod) {
			mods = append(mods, systemModifiers[mod])
		}
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, err
	}

	reg := &systemRegistration{
		hk:      hk,
		keydown: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go reg.forward(hk.Keydown())
	return reg, nil
}

type systemRegistration struct {
	hk       *hotkey.Hotkey
	keydown  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (r *systemRegistration) Keydown() <-chan struct{} { return r.keydown }

func (r *systemRegistration) Unregister() error {
	if err := r.hk.Unregister(); err != nil {
		return err
	}
	r.stopOnce.Do(func() { close(r.done) })
	return nil
}

// forward converts library events into bare presses. Presses arriving while
// the previous one is still queued are coalesced.
func (r *systemRegistration) forward(events <-chan hotkey.Event) {
	defer close(r.keydown)
	for {
		select {
		case <-r.done:
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			select {
			case r.keydown <- struct{}{}:
			default:
			}
		}
	}
}
