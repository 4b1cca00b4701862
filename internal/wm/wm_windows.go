//go:build windows

package wm

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"freecastnotes/internal/geometry"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
	procEnumWindows         = user32.NewProc("EnumWindows")
	procGetClassNameW       = user32.NewProc("GetClassNameW")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procIsWindowVisible     = user32.NewProc("IsWindowVisible")
	procIsIconic            = user32.NewProc("IsIconic")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procGetWindowThreadPID  = user32.NewProc("GetWindowThreadProcessId")
)

const (
	_MONITORINFOF_PRIMARY = 0x1

	_SWP_NOSIZE     = 0x0001
	_SWP_NOMOVE     = 0x0002
	_SWP_NOZORDER   = 0x0004
	_SWP_NOACTIVATE = 0x0010

	// Class registered by the Wails v2 Windows frontend.
	wailsWindowClass = "wailsWindow"
)

var (
	_HWND_TOPMOST   = ^uintptr(0)     // (HWND)-1
	_HWND_NOTOPMOST = ^uintptr(0) - 1 // (HWND)-2
)

type _POINT struct {
	X int32
	Y int32
}

type _MONITORINFO struct {
	CbSize  uint32
	Monitor windows.Rect
	Work    windows.Rect
	Flags   uint32
}

// Callbacks are created once; windows.NewCallback slots are not reclaimed.
var (
	enumMu          sync.Mutex
	enumMonitors    []_MONITORINFO
	enumWindowsHits []windows.HWND
	enumPID         uint32

	monitorCallback = windows.NewCallback(func(hMonitor, hdc, rect, lparam uintptr) uintptr {
		info := _MONITORINFO{CbSize: uint32(unsafe.Sizeof(_MONITORINFO{}))}
		ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info)))
		if ret != 0 {
			enumMonitors = append(enumMonitors, info)
		}
		return 1
	})

	windowCallback = windows.NewCallback(func(hwnd, lparam uintptr) uintptr {
		var pid uint32
		procGetWindowThreadPID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		if pid != enumPID {
			return 1
		}
		if className(windows.HWND(hwnd)) == wailsWindowClass {
			enumWindowsHits = append(enumWindowsHits, windows.HWND(hwnd))
			return 0
		}
		return 1
	})
)

type platform struct {
	hwnd windows.HWND
}

func openPlatform() *platform { return &platform{} }

func (*platform) supported() bool { return procGetCursorPos.Find() == nil }

// Windows exposes virtual desktops only through COM; spaces integration
// is not attempted.
func (*platform) spacesAvailable() bool { return false }

func (*platform) cursor() (geometry.Point, error) {
	var pt _POINT
	ret, _, lastErr := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return geometry.Point{}, fmt.Errorf("GetCursorPos failed: %v", lastErr)
	}
	return geometry.Point{X: float64(pt.X), Y: float64(pt.Y)}, nil
}

func (*platform) workAreas() ([]geometry.WorkArea, error) {
	enumMu.Lock()
	defer enumMu.Unlock()
	enumMonitors = nil
	ret, _, lastErr := procEnumDisplayMonitors.Call(0, 0, monitorCallback, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed: %v", lastErr)
	}

	areas := make([]geometry.WorkArea, 0, len(enumMonitors))
	for _, info := range enumMonitors {
		area := rectToArea(info.Work)
		if info.Flags&_MONITORINFOF_PRIMARY != 0 {
			areas = append([]geometry.WorkArea{area}, areas...)
			continue
		}
		areas = append(areas, area)
	}
	enumMonitors = nil
	return areas, nil
}

func rectToArea(r windows.Rect) geometry.WorkArea {
	return geometry.WorkArea{
		X:      float64(r.Left),
		Y:      float64(r.Top),
		Width:  float64(r.Right - r.Left),
		Height: float64(r.Bottom - r.Top),
	}
}

func className(hwnd windows.HWND) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// window resolves and caches the Wails top-level window of this process.
func (p *platform) window() (windows.HWND, error) {
	if p.hwnd != 0 {
		ret, _, _ := procGetWindowThreadPID.Call(uintptr(p.hwnd), 0)
		if ret != 0 {
			return p.hwnd, nil
		}
		p.hwnd = 0
	}

	enumMu.Lock()
	defer enumMu.Unlock()
	enumWindowsHits = nil
	enumPID = windows.GetCurrentProcessId()
	procEnumWindows.Call(windowCallback, 0)
	if len(enumWindowsHits) == 0 {
		return 0, ErrWindowNotFound
	}
	p.hwnd = enumWindowsHits[0]
	enumWindowsHits = nil
	return p.hwnd, nil
}

func (p *platform) frame() (geometry.WorkArea, error) {
	hwnd, err := p.window()
	if err != nil {
		return geometry.WorkArea{}, err
	}
	var r windows.Rect
	ret, _, lastErr := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return geometry.WorkArea{}, fmt.Errorf("GetWindowRect failed: %v", lastErr)
	}
	return rectToArea(r), nil
}

func (p *platform) visible() (bool, error) {
	hwnd, err := p.window()
	if err != nil {
		return false, err
	}
	visible, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	iconic, _, _ := procIsIconic.Call(uintptr(hwnd))
	return visible != 0 && iconic == 0, nil
}

func (p *platform) focused() (bool, error) {
	hwnd, err := p.window()
	if err != nil {
		return false, err
	}
	fg, _, _ := procGetForegroundWindow.Call()
	return windows.HWND(fg) == hwnd, nil
}

func (p *platform) setPosition(x, y int) error {
	hwnd, err := p.window()
	if err != nil {
		return err
	}
	return setWindowPos(hwnd, 0, x, y, _SWP_NOSIZE|_SWP_NOZORDER|_SWP_NOACTIVATE)
}

func (p *platform) focus() error {
	hwnd, err := p.window()
	if err != nil {
		return err
	}
	ret, _, lastErr := procSetForegroundWindow.Call(uintptr(hwnd))
	if ret == 0 {
		return fmt.Errorf("SetForegroundWindow failed: %v", lastErr)
	}
	return nil
}

func (p *platform) setAlwaysOnTop(onTop bool) error {
	hwnd, err := p.window()
	if err != nil {
		return err
	}
	insertAfter := _HWND_NOTOPMOST
	if onTop {
		insertAfter = _HWND_TOPMOST
	}
	return setWindowPos(hwnd, insertAfter, 0, 0, _SWP_NOMOVE|_SWP_NOSIZE|_SWP_NOACTIVATE)
}

func (*platform) setAllWorkspaces(bool) error { return ErrUnsupported }

// HWND_TOPMOST is the highest band available to an ordinary window.
func (p *platform) setOverlayLevel() error { return p.setAlwaysOnTop(true) }

func (*platform) attachToActiveSpace() error { return ErrUnsupported }

func (*platform) close() error { return nil }

func setWindowPos(hwnd windows.HWND, insertAfter uintptr, x, y int, flags uintptr) error {
	ret, _, lastErr := procSetWindowPos.Call(
		uintptr(hwnd),
		insertAfter,
		uintptr(int32(x)),
		uintptr(int32(y)),
		0,
		0,
		flags,
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos failed: %v", lastErr)
	}
	return nil
}
