//go:build linux

package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"freecastnotes/internal/workerutil"
)

// X11 keysyms for the named key tokens ParseBinding produces.
var namedKeysyms = map[Key]xproto.Keysym{
	"Space":  0x0020,
	"Tab":    0xff09,
	"Enter":  0xff0d,
	"Escape": 0xff1b,
	"Delete": 0xffff,
	"Left":   0xff51,
	"Up":     0xff52,
	"Right":  0xff53,
	"Down":   0xff54,
}

const keysymF1 xproto.Keysym = 0xffbe

// Alt and Super are Mod1 and Mod4 on X11.
var x11Modifiers = map[Modifier]uint16{
	ModCtrl:  xproto.ModMaskControl,
	ModAlt:   xproto.ModMask1,
	ModShift: xproto.ModMaskShift,
	ModSuper: xproto.ModMask4,
}

const bindingModMask = xproto.ModMaskControl | xproto.ModMask1 | xproto.ModMaskShift | xproto.ModMask4

// CapsLock and NumLock variants are grabbed too, otherwise the hotkey dies
// whenever either lock is on.
var lockMasks = []uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMaskLock | xproto.ModMask2}

var openX11Fn = xgb.NewConn

func keysymFor(key Key) (xproto.Keysym, bool) {
	if sym, ok := namedKeysyms[key]; ok {
		return sym, true
	}
	s := string(key)
	switch {
	case len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z':
		// Keyboard maps list the lowercase keysym in the first column.
		return xproto.Keysym(s[0] - 'A' + 'a'), true
	case len(s) == 1 && s[0] >= '0' && s[0] <= '9':
		return xproto.Keysym(s[0]), true
	case len(s) > 1 && s[0] == 'F':
		n, err := strconv.Atoi(s[1:])
		if err == nil && n >= 1 && n <= maxFunctionKey {
			return keysymF1 + xproto.Keysym(n-1), true
		}
	}
	return 0, false
}

func x11ModMask(mods Modifier) uint16 {
	var mask uint16
	for _, mod := range modifierOrder {
		if mods.Has(mod) {
			mask |= x11Modifiers[mod]
		}
	}
	return mask
}

type grabKey struct {
	code xproto.Keycode
	mods uint16
}

// systemBackend grabs keys on the X11 root window over a dedicated
// connection. The connection is opened on first use; without a display
// (Wayland-only or headless sessions) every Register returns ErrUnsupported.
type systemBackend struct {
	mu       sync.Mutex
	opened   bool
	openErr  error
	conn     *xgb.Conn
	root     xproto.Window
	keycodes map[xproto.Keysym]xproto.Keycode
	regs     map[grabKey]*x11Registration
	wg       sync.WaitGroup
}

func newSystemBackend() Backend {
	return &systemBackend{regs: map[grabKey]*x11Registration{}}
}

func (b *systemBackend) Register(binding Binding) (Registration, error) {
	sym, ok := keysymFor(binding.Key())
	if !ok {
		return nil, fmt.Errorf("key %q has no X11 keysym", binding.Key())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.connectLocked(); err != nil {
		return nil, err
	}
	code, ok := b.keycodes[sym]
	if !ok {
		return nil, fmt.Errorf("key %q is not on the current keyboard map", binding.Key())
	}
	key := grabKey{code: code, mods: x11ModMask(binding.Modifiers())}
	if _, taken := b.regs[key]; taken {
		return nil, fmt.Errorf("shortcut %s is already grabbed", binding.Normalized())
	}

	for i, lock := range lockMasks {
		err := xproto.GrabKeyChecked(b.conn, true, b.root, key.mods|lock, code,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			_ = b.ungrabLocked(key, lockMasks[:i])
			// BadAccess means another client owns the combination.
			return nil, fmt.Errorf("grab %s: %v", binding.Normalized(), err)
		}
	}

	reg := &x11Registration{backend: b, key: key, keydown: make(chan struct{}, 1)}
	b.regs[key] = reg
	return reg, nil
}

func (b *systemBackend) connectLocked() error {
	if b.opened {
		return b.openErr
	}
	b.opened = true

	conn, err := openX11Fn()
	if err != nil {
		b.openErr = fmt.Errorf("%w: X11 display unavailable: %v", ErrUnsupported, err)
		slog.Warn("[hotkey] X11 connection failed, global shortcuts disabled", "error", err)
		return b.openErr
	}
	setup := xproto.Setup(conn)
	keycodes, err := keyboardMap(conn, setup)
	if err != nil {
		conn.Close()
		b.openErr = fmt.Errorf("read keyboard map: %w", err)
		return b.openErr
	}
	b.conn = conn
	b.root = setup.DefaultScreen(conn).Root
	b.keycodes = keycodes

	workerutil.RunWithPanicRecovery(context.Background(), "x11-hotkey-events", &b.wg, func(context.Context) {
		b.listen(conn)
	}, workerutil.RecoveryOptions{MaxRetries: 3})
	return nil
}

// keyboardMap returns the first keycode producing each keysym.
func keyboardMap(conn *xgb.Conn, setup *xproto.SetupInfo) (map[xproto.Keysym]xproto.Keycode, error) {
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return nil, err
	}
	per := int(reply.KeysymsPerKeycode)
	out := make(map[xproto.Keysym]xproto.Keycode)
	for i := 0; i < int(count); i++ {
		for j := 0; j < per; j++ {
			idx := i*per + j
			if idx >= len(reply.Keysyms) {
				return out, nil
			}
			sym := reply.Keysyms[idx]
			if sym == 0 {
				continue
			}
			if _, seen := out[sym]; !seen {
				out[sym] = setup.MinKeycode + xproto.Keycode(i)
			}
		}
	}
	return out, nil
}

func (b *systemBackend) listen(conn *xgb.Conn) {
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			slog.Debug("[hotkey] X11 connection closed")
			return
		}
		if xerr != nil {
			slog.Debug("[hotkey] X11 error event", "error", xerr)
			continue
		}
		if press, ok := ev.(xproto.KeyPressEvent); ok {
			b.dispatch(press.Detail, press.State)
		}
	}
}

// dispatch delivers a press to the matching registration. Lock and pointer
// bits in state are ignored; a press is dropped while the previous one is
// still queued.
func (b *systemBackend) dispatch(code xproto.Keycode, state uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reg := b.regs[grabKey{code: code, mods: state & bindingModMask}]
	if reg == nil {
		return
	}
	select {
	case reg.keydown <- struct{}{}:
	default:
	}
}

func (b *systemBackend) ungrabLocked(key grabKey, locks []uint16) error {
	var errs []error
	for _, lock := range locks {
		if err := xproto.UngrabKeyChecked(b.conn, key.code, b.root, key.mods|lock).Check(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type x11Registration struct {
	backend *systemBackend
	key     grabKey
	keydown chan struct{}
}

func (r *x11Registration) Keydown() <-chan struct{} { return r.keydown }

func (r *x11Registration) Unregister() error {
	b := r.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.regs[r.key] != r {
		return nil
	}
	if b.conn != nil {
		if err := b.ungrabLocked(r.key, lockMasks); err != nil {
			return err
		}
	}
	delete(b.regs, r.key)
	close(r.keydown)
	return nil
}
