package x11

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/rs/zerolog"

	"displaymode/internal/display"
)

// HandlePrefix precedes the RandR output id in a source handle.
const HandlePrefix = "xrandr:"

// ErrPersistUnsupported is returned for persist requests; RandR changes last
// for the X session only.
var ErrPersistUnsupported = errors.New("randr cannot persist display modes")

// Gateway serves RandR outputs that are connected and driven by a CRTC.
type Gateway struct {
	conn *Connection
	log  zerolog.Logger
}

var _ display.Gateway = (*Gateway)(nil)

// Open connects to the X server named by $DISPLAY.
func Open(log zerolog.Logger) (*Gateway, error) {
	conn, err := NewConnection()
	if err != nil {
		return nil, err
	}
	return &Gateway{conn: conn, log: log}, nil
}

func (g *Gateway) HandlePrefix() string { return HandlePrefix }

func (g *Gateway) Close() error {
	g.conn.Close()
	return nil
}

// Handle formats the source handle of an output.
func Handle(out randr.Output) string {
	return HandlePrefix + strconv.FormatUint(uint64(out), 10)
}

func parseHandle(handle string) (randr.Output, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(handle, HandlePrefix), 10, 32)
	if err != nil || !strings.HasPrefix(handle, HandlePrefix) {
		return 0, fmt.Errorf("invalid RandR handle %q", handle)
	}
	return randr.Output(id), nil
}

// outputState is everything known about one output at one config timestamp.
type outputState struct {
	res    *randr.GetScreenResourcesCurrentReply
	infos  map[randr.Mode]randr.ModeInfo
	output randr.Output
	info   *randr.GetOutputInfoReply
	crtc   *randr.GetCrtcInfoReply
}

func (g *Gateway) resources() (*randr.GetScreenResourcesCurrentReply, map[randr.Mode]randr.ModeInfo, error) {
	res, err := randr.GetScreenResourcesCurrent(g.conn.Conn(), g.conn.Root).Reply()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	infos := make(map[randr.Mode]randr.ModeInfo, len(res.Modes))
	for _, mi := range res.Modes {
		infos[randr.Mode(mi.Id)] = mi
	}
	return res, infos, nil
}

func (g *Gateway) state(handle string) (*outputState, error) {
	out, err := parseHandle(handle)
	if err != nil {
		return nil, err
	}
	res, infos, err := g.resources()
	if err != nil {
		return nil, err
	}
	info, err := randr.GetOutputInfo(g.conn.Conn(), out, res.ConfigTimestamp).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get output %d: %w", out, err)
	}
	st := &outputState{res: res, infos: infos, output: out, info: info}
	if info.Crtc == 0 {
		return st, nil
	}
	st.crtc, err = randr.GetCrtcInfo(g.conn.Conn(), info.Crtc, res.ConfigTimestamp).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get crtc %d: %w", info.Crtc, err)
	}
	return st, nil
}

func (g *Gateway) depth() int {
	return int(g.conn.XUtil.Screen().RootDepth)
}

// Displays lists connected outputs that currently drive a CRTC, in the
// server's output order.
func (g *Gateway) Displays() ([]display.Display, error) {
	res, _, err := g.resources()
	if err != nil {
		return nil, err
	}

	var primary randr.Output
	if p, err := randr.GetOutputPrimary(g.conn.Conn(), g.conn.Root).Reply(); err == nil {
		primary = p.Output
	}

	var displays []display.Display
	for _, out := range res.Outputs {
		info, err := randr.GetOutputInfo(g.conn.Conn(), out, res.ConfigTimestamp).Reply()
		if err != nil {
			g.log.Debug().Err(err).Uint32("output", uint32(out)).Msg("skipping unreadable output")
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}

		name := string(info.Name)
		if monitor := g.monitorName(out); monitor != "" {
			name = fmt.Sprintf("%s (%s)", monitor, name)
		}
		displays = append(displays, outputDisplay(g.conn.Root, out, primary, name))
	}
	return displays, nil
}

// outputDisplay describes one output. Only the output RandR names as
// primary is marked; with no primary set none is.
func outputDisplay(root xproto.Window, out, primary randr.Output, name string) display.Display {
	return display.Display{
		Identity:     display.Identity{Adapter: uint64(root), Target: uint32(out)},
		FriendlyName: name,
		SourceHandle: Handle(out),
		IsPrimary:    primary != 0 && out == primary,
	}
}

// monitorName reads the EDID product name of an output, "" when unavailable.
func (g *Gateway) monitorName(out randr.Output) string {
	atom, err := xprop.Atm(g.conn.XUtil, "EDID")
	if err != nil {
		return ""
	}
	prop, err := randr.GetOutputProperty(g.conn.Conn(), out, atom, xproto.AtomAny, 0, 128, false, false).Reply()
	if err != nil || prop == nil {
		return ""
	}
	return edidName(prop.Data)
}

// Modes lists the output's mode lines at the CRTC's current rotation.
func (g *Gateway) Modes(handle string) ([]display.Mode, error) {
	st, err := g.state(handle)
	if err != nil {
		return nil, err
	}
	var rotation uint16 = randr.RotationRotate0
	if st.crtc != nil {
		rotation = st.crtc.Rotation
	}

	modes := make([]display.Mode, 0, len(st.info.Modes))
	for _, id := range st.info.Modes {
		if mi, ok := st.infos[id]; ok {
			modes = append(modes, toMode(mi, rotation, g.depth()))
		}
	}
	return modes, nil
}

func (g *Gateway) CurrentMode(handle string) (display.Mode, error) {
	st, err := g.state(handle)
	if err != nil {
		return display.Mode{}, err
	}
	if st.crtc == nil || st.crtc.Mode == 0 {
		return display.Mode{}, fmt.Errorf("output %s is not active", handle)
	}
	mi, ok := st.infos[st.crtc.Mode]
	if !ok {
		return display.Mode{}, fmt.Errorf("output %s uses unknown mode %d", handle, st.crtc.Mode)
	}
	return toMode(mi, st.crtc.Rotation, g.depth()), nil
}

// ApplyMode reconfigures the output's CRTC. Validate-only requests stop after
// the mode and rotation checks.
func (g *Gateway) ApplyMode(handle string, target display.Mode, mask display.FieldMask, flags display.ApplyFlags) (display.ResultCode, error) {
	if flags.Has(display.FlagPersist) {
		return display.ResultBadFlags, ErrPersistUnsupported
	}

	st, err := g.state(handle)
	if err != nil {
		return display.ResultBadParam, err
	}
	if st.crtc == nil {
		return display.ResultBadParam, fmt.Errorf("output %s is not driven by a crtc", handle)
	}

	mi, ok := pickMode(st.infos, st.info.Modes, target, mask)
	if !ok {
		return display.ResultBadMode, fmt.Errorf("output %s does not offer %s", handle, target)
	}
	rotation := crtcRotation(target.Orientation, st.crtc.Rotation)
	if st.crtc.Rotations&rotation != rotation {
		return display.ResultBadParam, fmt.Errorf("crtc %d cannot rotate to %s", st.info.Crtc, target.Orientation)
	}

	w, h := int(mi.Width), int(mi.Height)
	if target.Orientation.Swapped() {
		w, h = h, w
	}
	needW, needH := int(st.crtc.X)+w, int(st.crtc.Y)+h
	if err := g.checkScreenRange(needW, needH); err != nil {
		return display.ResultBadMode, err
	}

	if flags.Has(display.FlagValidateOnly) {
		return display.ResultSuccessful, nil
	}

	if err := g.growScreen(needW, needH); err != nil {
		return display.ResultFailed, err
	}

	reply, err := randr.SetCrtcConfig(g.conn.Conn(), st.info.Crtc, xproto.TimeCurrentTime, st.res.ConfigTimestamp,
		st.crtc.X, st.crtc.Y, randr.Mode(mi.Id), rotation, st.crtc.Outputs).Reply()
	if err != nil {
		return display.ResultFailed, fmt.Errorf("set crtc config: %w", err)
	}
	if reply.Status != randr.SetConfigSuccess {
		return display.ResultFailed, fmt.Errorf("set crtc config: status %d", reply.Status)
	}
	g.log.Debug().Str("display", handle).Uint32("mode", mi.Id).Uint16("rotation", rotation).Msg("crtc reconfigured")

	g.fitScreen()
	return display.ResultSuccessful, nil
}

func (g *Gateway) checkScreenRange(w, h int) error {
	rng, err := randr.GetScreenSizeRange(g.conn.Conn(), g.conn.Root).Reply()
	if err != nil {
		return fmt.Errorf("get screen size range: %w", err)
	}
	if w > int(rng.MaxWidth) || h > int(rng.MaxHeight) {
		return fmt.Errorf("screen would be %dx%d, maximum is %dx%d", w, h, rng.MaxWidth, rng.MaxHeight)
	}
	return nil
}

func (g *Gateway) screenSize() (int, int, error) {
	geom, err := xproto.GetGeometry(g.conn.Conn(), xproto.Drawable(g.conn.Root)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("get root geometry: %w", err)
	}
	return int(geom.Width), int(geom.Height), nil
}

// growScreen enlarges the screen so that a w x h CRTC extent fits.
func (g *Gateway) growScreen(w, h int) error {
	curW, curH, err := g.screenSize()
	if err != nil {
		return err
	}
	if w <= curW && h <= curH {
		return nil
	}
	return g.setScreenSize(max(w, curW), max(h, curH))
}

// fitScreen shrinks the screen to the bounding box of the active CRTCs.
// Failures leave a larger screen behind and are only logged.
func (g *Gateway) fitScreen() {
	res, _, err := g.resources()
	if err != nil {
		return
	}
	var w, h int
	for _, crtc := range res.Crtcs {
		ci, err := randr.GetCrtcInfo(g.conn.Conn(), crtc, res.ConfigTimestamp).Reply()
		if err != nil || ci.Mode == 0 {
			continue
		}
		w = max(w, int(ci.X)+int(ci.Width))
		h = max(h, int(ci.Y)+int(ci.Height))
	}
	curW, curH, err := g.screenSize()
	if err != nil || w == 0 || h == 0 || (w == curW && h == curH) {
		return
	}
	if err := g.setScreenSize(w, h); err != nil {
		g.log.Warn().Err(err).Int("width", w).Int("height", h).Msg("could not fit screen to outputs")
	}
}

// setScreenSize keeps the physical size at the screen's current DPI.
func (g *Gateway) setScreenSize(w, h int) error {
	scr := g.conn.XUtil.Screen()
	// 96 DPI when the server reports no physical size.
	mmW, mmH := uint32(w*254/960), uint32(h*254/960)
	if scr.WidthInPixels > 0 && scr.HeightInPixels > 0 && scr.WidthInMillimeters > 0 && scr.HeightInMillimeters > 0 {
		mmW = uint32(w * int(scr.WidthInMillimeters) / int(scr.WidthInPixels))
		mmH = uint32(h * int(scr.HeightInMillimeters) / int(scr.HeightInPixels))
	}
	err := randr.SetScreenSizeChecked(g.conn.Conn(), g.conn.Root, uint16(w), uint16(h), mmW, mmH).Check()
	if err != nil {
		return fmt.Errorf("set screen size %dx%d: %w", w, h, err)
	}
	return nil
}
