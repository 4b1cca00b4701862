//go:build linux

package wm

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"freecastnotes/internal/geometry"
)

// EWMH _NET_WM_STATE actions and source indication.
const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	sourceNormalApp  = 1
	allDesktops      = 0xFFFFFFFF
)

type platform struct {
	conn    *xgb.Conn
	root    xproto.Window
	randrOK bool
	atoms   map[string]xproto.Atom
	win     xproto.Window
	openErr error
}

func openPlatform() *platform {
	if os.Getenv("DISPLAY") == "" {
		return &platform{openErr: fmt.Errorf("%w: no X11 display", ErrUnsupported)}
	}
	conn, err := xgb.NewConn()
	if err != nil {
		slog.Debug("[DEBUG-WM] X11 connection unavailable", "error", err)
		return &platform{openErr: fmt.Errorf("%w: %v", ErrUnsupported, err)}
	}
	p := &platform{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: map[string]xproto.Atom{},
	}
	if err := randr.Init(conn); err != nil {
		slog.Debug("[DEBUG-WM] RandR unavailable, using root geometry", "error", err)
	} else {
		p.randrOK = true
	}
	return p
}

func (p *platform) supported() bool { return p.conn != nil }

func (p *platform) spacesAvailable() bool {
	if p.conn == nil {
		return false
	}
	if _, err := p.window(); err != nil {
		return false
	}
	_, err := p.cardinal(p.root, "_NET_CURRENT_DESKTOP")
	return err == nil
}

func (p *platform) atom(name string) (xproto.Atom, error) {
	if a, ok := p.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(p.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %s: %w", name, err)
	}
	p.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// property32 reads a format-32 property as a list of values.
func (p *platform) property32(win xproto.Window, name string) ([]uint32, error) {
	a, err := p.atom(name)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(p.conn, false, win, a, xproto.GetPropertyTypeAny, 0, 1<<16).Reply()
	if err != nil {
		return nil, fmt.Errorf("get property %s: %w", name, err)
	}
	if reply.Format != 32 || reply.ValueLen == 0 {
		return nil, fmt.Errorf("property %s not set", name)
	}
	values := make([]uint32, reply.ValueLen)
	for i := range values {
		values[i] = xgb.Get32(reply.Value[i*4:])
	}
	return values, nil
}

func (p *platform) cardinal(win xproto.Window, name string) (uint32, error) {
	values, err := p.property32(win, name)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// window finds this process's top-level client via _NET_CLIENT_LIST and
// _NET_WM_PID. The result is cached until it stops resolving.
func (p *platform) window() (xproto.Window, error) {
	if p.conn == nil {
		return 0, p.openErr
	}
	if p.win != 0 {
		if _, err := xproto.GetWindowAttributes(p.conn, p.win).Reply(); err == nil {
			return p.win, nil
		}
		p.win = 0
	}
	clients, err := p.property32(p.root, "_NET_CLIENT_LIST")
	if err != nil {
		return 0, err
	}
	pid := uint32(os.Getpid())
	for _, c := range clients {
		win := xproto.Window(c)
		if got, err := p.cardinal(win, "_NET_WM_PID"); err == nil && got == pid {
			p.win = win
			return win, nil
		}
	}
	return 0, ErrWindowNotFound
}

func (p *platform) cursor() (geometry.Point, error) {
	if p.conn == nil {
		return geometry.Point{}, p.openErr
	}
	reply, err := xproto.QueryPointer(p.conn, p.root).Reply()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("query pointer: %w", err)
	}
	return geometry.Point{X: float64(reply.RootX), Y: float64(reply.RootY)}, nil
}

// workAreas intersects each active CRTC with the current desktop's
// _NET_WORKAREA. Panels on other monitors may over-trim; EWMH offers no
// per-monitor work area.
func (p *platform) workAreas() ([]geometry.WorkArea, error) {
	if p.conn == nil {
		return nil, p.openErr
	}
	monitors, err := p.monitors()
	if err != nil {
		return nil, err
	}
	workarea, hasWorkarea := p.desktopWorkArea()
	areas := make([]geometry.WorkArea, 0, len(monitors))
	for _, m := range monitors {
		if hasWorkarea {
			if clipped, ok := intersect(m, workarea); ok {
				areas = append(areas, clipped)
				continue
			}
		}
		areas = append(areas, m)
	}
	return areas, nil
}

func (p *platform) monitors() ([]geometry.WorkArea, error) {
	if !p.randrOK {
		return p.rootMonitor()
	}
	res, err := randr.GetScreenResourcesCurrent(p.conn, p.root).Reply()
	if err != nil {
		return p.rootMonitor()
	}
	var primaryOutput randr.Output
	if primary, err := randr.GetOutputPrimary(p.conn, p.root).Reply(); err == nil {
		primaryOutput = primary.Output
	}

	var areas []geometry.WorkArea
	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(p.conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 {
			continue
		}
		area := geometry.WorkArea{
			X:      float64(info.X),
			Y:      float64(info.Y),
			Width:  float64(info.Width),
			Height: float64(info.Height),
		}
		if containsOutput(info.Outputs, primaryOutput) {
			areas = append([]geometry.WorkArea{area}, areas...)
			continue
		}
		areas = append(areas, area)
	}
	if len(areas) == 0 {
		return p.rootMonitor()
	}
	return areas, nil
}

func containsOutput(outputs []randr.Output, target randr.Output) bool {
	if target == 0 {
		return false
	}
	for _, o := range outputs {
		if o == target {
			return true
		}
	}
	return false
}

func (p *platform) rootMonitor() ([]geometry.WorkArea, error) {
	screen := xproto.Setup(p.conn).DefaultScreen(p.conn)
	return []geometry.WorkArea{{
		Width:  float64(screen.WidthInPixels),
		Height: float64(screen.HeightInPixels),
	}}, nil
}

func (p *platform) desktopWorkArea() (geometry.WorkArea, bool) {
	values, err := p.property32(p.root, "_NET_WORKAREA")
	if err != nil || len(values) < 4 {
		return geometry.WorkArea{}, false
	}
	desktop := uint32(0)
	if current, err := p.cardinal(p.root, "_NET_CURRENT_DESKTOP"); err == nil && int(current)*4+4 <= len(values) {
		desktop = current
	}
	v := values[desktop*4 : desktop*4+4]
	return geometry.WorkArea{
		X:      float64(int32(v[0])),
		Y:      float64(int32(v[1])),
		Width:  float64(v[2]),
		Height: float64(v[3]),
	}, true
}

// frameExtents returns the WM decoration sizes (left, right, top, bottom).
func (p *platform) frameExtents(win xproto.Window) (left, top, right, bottom float64) {
	values, err := p.property32(win, "_NET_FRAME_EXTENTS")
	if err != nil || len(values) < 4 {
		return 0, 0, 0, 0
	}
	return float64(values[0]), float64(values[2]), float64(values[1]), float64(values[3])
}

func (p *platform) frame() (geometry.WorkArea, error) {
	win, err := p.window()
	if err != nil {
		return geometry.WorkArea{}, err
	}
	geom, err := xproto.GetGeometry(p.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return geometry.WorkArea{}, fmt.Errorf("get geometry: %w", err)
	}
	origin, err := xproto.TranslateCoordinates(p.conn, win, p.root, 0, 0).Reply()
	if err != nil {
		return geometry.WorkArea{}, fmt.Errorf("translate coordinates: %w", err)
	}
	left, top, right, bottom := p.frameExtents(win)
	return geometry.WorkArea{
		X:      float64(origin.DstX) - left,
		Y:      float64(origin.DstY) - top,
		Width:  float64(geom.Width) + left + right,
		Height: float64(geom.Height) + top + bottom,
	}, nil
}

func (p *platform) visible() (bool, error) {
	win, err := p.window()
	if err != nil {
		return false, err
	}
	attrs, err := xproto.GetWindowAttributes(p.conn, win).Reply()
	if err != nil {
		return false, fmt.Errorf("get window attributes: %w", err)
	}
	if attrs.MapState != xproto.MapStateViewable {
		return false, nil
	}
	hidden, err := p.atom("_NET_WM_STATE_HIDDEN")
	if err != nil {
		return true, nil
	}
	states, _ := p.property32(win, "_NET_WM_STATE")
	for _, s := range states {
		if xproto.Atom(s) == hidden {
			return false, nil
		}
	}
	return true, nil
}

func (p *platform) focused() (bool, error) {
	win, err := p.window()
	if err != nil {
		return false, err
	}
	active, err := p.cardinal(p.root, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return false, err
	}
	return xproto.Window(active) == win, nil
}

// setPosition places the decorated frame's top-left at x,y.
func (p *platform) setPosition(x, y int) error {
	win, err := p.window()
	if err != nil {
		return err
	}
	left, top, _, _ := p.frameExtents(win)
	values := []uint32{uint32(int32(x + int(left))), uint32(int32(y + int(top)))}
	if err := xproto.ConfigureWindowChecked(p.conn, win, xproto.ConfigWindowX|xproto.ConfigWindowY, values).Check(); err != nil {
		return fmt.Errorf("configure window: %w", err)
	}
	return nil
}

// clientMessage sends an EWMH request for win to the window manager.
func (p *platform) clientMessage(win xproto.Window, name string, data ...uint32) error {
	a, err := p.atom(name)
	if err != nil {
		return err
	}
	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   a,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	if err := xproto.SendEventChecked(p.conn, false, p.root, mask, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	return nil
}

func (p *platform) setWMState(on bool, state string) error {
	win, err := p.window()
	if err != nil {
		return err
	}
	stateAtom, err := p.atom(state)
	if err != nil {
		return err
	}
	action := uint32(netWMStateRemove)
	if on {
		action = netWMStateAdd
	}
	return p.clientMessage(win, "_NET_WM_STATE", action, uint32(stateAtom), 0, sourceNormalApp)
}

func (p *platform) focus() error {
	win, err := p.window()
	if err != nil {
		return err
	}
	return p.clientMessage(win, "_NET_ACTIVE_WINDOW", sourceNormalApp, xproto.TimeCurrentTime)
}

func (p *platform) setAlwaysOnTop(onTop bool) error {
	return p.setWMState(onTop, "_NET_WM_STATE_ABOVE")
}

func (p *platform) setAllWorkspaces(visible bool) error {
	return p.setWMState(visible, "_NET_WM_STATE_STICKY")
}

// setOverlayLevel keeps the window above others and out of the taskbar.
// Sticky is left off so attachToActiveSpace controls desktop membership.
func (p *platform) setOverlayLevel() error {
	return errors.Join(
		p.setWMState(true, "_NET_WM_STATE_ABOVE"),
		p.setWMState(true, "_NET_WM_STATE_SKIP_TASKBAR"),
	)
}

// attachToActiveSpace moves the window to _NET_CURRENT_DESKTOP.
func (p *platform) attachToActiveSpace() error {
	win, err := p.window()
	if err != nil {
		return err
	}
	desktop, err := p.cardinal(p.root, "_NET_CURRENT_DESKTOP")
	if err != nil {
		return fmt.Errorf("active desktop: %w", err)
	}
	if desktop == allDesktops {
		return errors.New("active desktop: invalid desktop index")
	}
	return p.clientMessage(win, "_NET_WM_DESKTOP", desktop, sourceNormalApp)
}

func (p *platform) close() error {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	return nil
}
