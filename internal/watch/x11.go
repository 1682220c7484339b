package watch

import (
	"encoding/binary"
	"os"
	"strings"

	"timeguard"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/dpms"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	ps "github.com/mitchellh/go-ps"
	"github.com/pkg/errors"
)

// DefaultLockers are screen locker process names whose presence means the
// screen is not showing the application.
var DefaultLockers = []string{
	"gnome-screensaver-dialog",
	"kscreenlocker",
	"i3lock",
	"slock",
	"xscreensaver",
	"xsecurelock",
}

// X11Conn implements DisplayConn on top of an X server connection.
type X11Conn struct {
	conn       *xgb.Conn
	root       xproto.Window
	atoms      map[string]xproto.Atom
	watchClass string
	lockers    lockerSet
	processes  func() ([]ps.Process, error)
	hasDPMS    bool
	hasSaver   bool
}

// X11Connector returns a DisplayConnector for the given display name. An
// empty display falls back to $DISPLAY; with neither set it reports ErrNoDisplay.
func X11Connector(display, watchClass string, lockers []string) DisplayConnector {
	return func() (DisplayConn, error) {
		if display == "" && os.Getenv("DISPLAY") == "" {
			return nil, ErrNoDisplay
		}
		p, err := NewX11Conn(display, watchClass, lockers)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func NewX11Conn(display, watchClass string, lockers []string) (*X11Conn, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "connect to X display")
	}

	setup := xproto.Setup(conn)
	p := &X11Conn{
		conn:       conn,
		root:       setup.DefaultScreen(conn).Root,
		atoms:      make(map[string]xproto.Atom),
		watchClass: strings.ToLower(watchClass),
		lockers:    newLockerSet(lockers),
		processes:  ps.Processes,
		hasDPMS:    dpms.Init(conn) == nil,
		hasSaver:   screensaver.Init(conn) == nil,
	}

	for _, name := range []string{"_NET_ACTIVE_WINDOW", "WM_CLASS"} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "intern atom %s", name)
		}
		p.atoms[name] = reply.Atom
	}
	return p, nil
}

func (p *X11Conn) Close() error {
	p.conn.Close()
	return nil
}

// ScreenPower reports Off when DPMS has powered the monitor down, the X
// screensaver is active, or a known locker is running.
func (p *X11Conn) ScreenPower() (timeguard.ScreenPowerState, error) {
	if p.hasDPMS {
		info, err := dpms.Info(p.conn).Reply()
		if err != nil {
			return timeguard.ScreenOn, errors.Wrap(err, "dpms info")
		}
		if info.State && info.PowerLevel != dpms.DPMSModeOn {
			return timeguard.ScreenOff, nil
		}
	}
	if p.hasSaver {
		info, err := screensaver.QueryInfo(p.conn, xproto.Drawable(p.root)).Reply()
		if err != nil {
			return timeguard.ScreenOn, errors.Wrap(err, "screensaver query")
		}
		if info.State == screensaver.StateOn {
			return timeguard.ScreenOff, nil
		}
	}
	running, err := p.lockers.running(p.processes)
	if err != nil {
		return timeguard.ScreenOn, errors.Wrap(err, "list processes")
	}
	if running {
		return timeguard.ScreenOff, nil
	}
	return timeguard.ScreenOn, nil
}

// Visibility reports Foreground when the active window's WM_CLASS matches the
// watched class.
func (p *X11Conn) Visibility() (timeguard.VisibilityState, error) {
	win, err := p.activeWindow()
	if err != nil {
		return timeguard.Background, err
	}
	if win == 0 {
		return timeguard.Background, nil
	}
	instance, class, err := p.windowClass(win)
	if err != nil {
		return timeguard.Background, err
	}
	if classMatches(p.watchClass, instance, class) {
		return timeguard.Foreground, nil
	}
	return timeguard.Background, nil
}

func (p *X11Conn) activeWindow() (xproto.Window, error) {
	reply, err := xproto.GetProperty(p.conn, false, p.root, p.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "read _NET_ACTIVE_WINDOW")
	}
	if len(reply.Value) < 4 {
		return 0, nil
	}
	return xproto.Window(binary.LittleEndian.Uint32(reply.Value)), nil
}

func (p *X11Conn) windowClass(win xproto.Window) (instance, class string, err error) {
	reply, err := xproto.GetProperty(p.conn, false, win, p.atoms["WM_CLASS"], xproto.AtomString, 0, 256).Reply()
	if err != nil {
		// the window may have gone away between the two requests
		return "", "", nil
	}
	instance, class = splitWMClass(reply.Value)
	return instance, class, nil
}

func splitWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

func classMatches(want, instance, class string) bool {
	if want == "" {
		return false
	}
	return strings.ToLower(instance) == want || strings.ToLower(class) == want
}

// commLen is the longest process name the kernel reports in /proc/<pid>/stat.
const commLen = 15

// lockerSet matches process executables against known screen locker names.
type lockerSet map[string]struct{}

func newLockerSet(names []string) lockerSet {
	set := make(lockerSet, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// match reports whether exe names a locker. Linux truncates process names,
// so a full-length exe also matches a longer locker name it prefixes.
func (s lockerSet) match(exe string) bool {
	if _, ok := s[exe]; ok {
		return true
	}
	if len(exe) < commLen {
		return false
	}
	for name := range s {
		if strings.HasPrefix(name, exe) {
			return true
		}
	}
	return false
}

// running scans the process table once and reports whether any locker is present.
func (s lockerSet) running(list func() ([]ps.Process, error)) (bool, error) {
	if len(s) == 0 {
		return false, nil
	}
	procs, err := list()
	if err != nil {
		return false, err
	}
	for _, p := range procs {
		if s.match(p.Executable()) {
			return true, nil
		}
	}
	return false, nil
}
