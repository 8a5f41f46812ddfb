//go:build darwin && cgo

// Package quartz implements the display gateway with CoreGraphics.
package quartz

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework AppKit
// #include "bridge.h"
import "C"
import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"displaymode/internal/display"
)

// HandlePrefix precedes the CGDirectDisplayID in a source handle.
const HandlePrefix = "display:"

const (
	maxDisplays = 32
	maxModes    = 4096

	cgErrorIllegalArgument = 1001
	cgErrorRangeCheck      = 1007
	bridgeNoSuchMode       = -2
)

var ErrRotationUnsupported = errors.New("rotation cannot be changed through CoreGraphics")

type Gateway struct {
	log zerolog.Logger
}

var _ display.Gateway = (*Gateway)(nil)

func Open(log zerolog.Logger) (*Gateway, error) {
	return &Gateway{log: log}, nil
}

func (g *Gateway) HandlePrefix() string { return HandlePrefix }

func (g *Gateway) Close() error { return nil }

func parseHandle(handle string) (C.uint32_t, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(handle, HandlePrefix), 10, 32)
	if err != nil || !strings.HasPrefix(handle, HandlePrefix) {
		return 0, fmt.Errorf("invalid display handle %q", handle)
	}
	return C.uint32_t(id), nil
}

// Displays returns all active displays
func (g *Gateway) Displays() ([]display.Display, error) {
	buf := make([]C.dm_display, maxDisplays)
	count := int(C.dm_displays(&buf[0], C.int(len(buf))))
	if count < 0 {
		return nil, fmt.Errorf("failed to get displays: CoreGraphics error")
	}

	displays := make([]display.Display, count)
	for i, cd := range buf[:count] {
		displays[i] = display.Display{
			Identity:     display.Identity{Adapter: uint64(cd.vendor)<<32 | uint64(cd.model), Target: uint32(cd.id)},
			FriendlyName: C.GoString(&cd.name[0]),
			SourceHandle: HandlePrefix + strconv.FormatUint(uint64(cd.id), 10),
			IsPrimary:    cd.is_main != 0,
		}
	}
	return displays, nil
}

// Modes returns the desktop-usable modes of a display
func (g *Gateway) Modes(handle string) ([]display.Mode, error) {
	id, err := parseHandle(handle)
	if err != nil {
		return nil, err
	}
	buf := make([]C.dm_mode, maxModes)
	count := int(C.dm_modes(id, &buf[0], C.int(len(buf))))
	if count < 0 {
		return nil, fmt.Errorf("failed to get display modes for %s", handle)
	}

	modes := make([]display.Mode, count)
	for i, cm := range buf[:count] {
		modes[i] = toMode(cm)
	}
	return modes, nil
}

func (g *Gateway) CurrentMode(handle string) (display.Mode, error) {
	id, err := parseHandle(handle)
	if err != nil {
		return display.Mode{}, err
	}
	var cm C.dm_mode
	if C.dm_current(id, &cm) != 0 {
		return display.Mode{}, fmt.Errorf("failed to read current mode of %s", handle)
	}
	return toMode(cm), nil
}

// ApplyMode changes the resolution of a display inside a display
// configuration transaction
func (g *Gateway) ApplyMode(handle string, target display.Mode, mask display.FieldMask, flags display.ApplyFlags) (display.ResultCode, error) {
	id, err := parseHandle(handle)
	if err != nil {
		return display.ResultBadParam, err
	}
	if mask.Has(display.FieldOrientation) {
		current, err := g.CurrentMode(handle)
		if err != nil {
			return display.ResultBadParam, err
		}
		if current.Orientation != target.Orientation {
			return display.ResultBadParam, ErrRotationUnsupported
		}
	}

	result := C.dm_apply(id, C.int(target.Width), C.int(target.Height), C.int(target.RefreshHz),
		cbool(mask.Has(display.FieldRefresh)), cbool(flags.Has(display.FlagValidateOnly)), cbool(flags.Has(display.FlagPersist)))
	g.log.Debug().Str("display", handle).Int("result", int(result)).Msg("display configuration")

	switch result {
	case 0:
		return display.ResultSuccessful, nil
	case bridgeNoSuchMode:
		return display.ResultBadMode, fmt.Errorf("mode %s not found for %s", target, handle)
	case cgErrorIllegalArgument:
		return display.ResultBadParam, fmt.Errorf("invalid display %s", handle)
	case cgErrorRangeCheck:
		return display.ResultBadMode, fmt.Errorf("mode %s out of range for %s", target, handle)
	default:
		return display.ResultFailed, fmt.Errorf("failed to set display mode: CoreGraphics error %d", int(result))
	}
}

func toMode(cm C.dm_mode) display.Mode {
	o, ok := display.OrientationFromDegrees(int(cm.rotation))
	if !ok {
		o = display.Landscape
	}
	return display.Mode{
		Width:       int(cm.width),
		Height:      int(cm.height),
		RefreshHz:   int(cm.refresh),
		Orientation: o,
	}
}

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
