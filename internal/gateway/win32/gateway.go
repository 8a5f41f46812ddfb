//go:build windows

// Package win32 implements the display gateway with the Win32 display
// configuration and display settings APIs.
package win32

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"displaymode/internal/display"
)

// HandlePrefix is the GDI device name prefix, as in \\.\DISPLAY1.
const HandlePrefix = `\\.\DISPLAY`

var ErrReadSettings = errors.New("EnumDisplaySettings failed")

// Gateway talks to user32. It holds no OS resources.
type Gateway struct {
	log zerolog.Logger
}

var _ display.Gateway = (*Gateway)(nil)

func Open(log zerolog.Logger) (*Gateway, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("load user32: %w", err)
	}
	return &Gateway{log: log}, nil
}

func (g *Gateway) HandlePrefix() string { return HandlePrefix }

func (g *Gateway) Close() error { return nil }

// Displays walks the active display configuration paths.
func (g *Gateway) Displays() ([]display.Display, error) {
	paths, err := queryActivePaths()
	if err != nil {
		return nil, fmt.Errorf("QueryDisplayConfig failed: %w", err)
	}

	displays := make([]display.Display, 0, len(paths))
	for _, p := range paths {
		src, err := sourceName(p)
		if err != nil {
			g.log.Debug().Err(err).Uint32("target", p.TargetInfo.ID).Msg("no source name for path")
			continue
		}
		name, err := targetName(p)
		if err != nil {
			g.log.Debug().Err(err).Str("source", src).Msg("no friendly name for target")
		}

		primary := false
		dm := newDevMode()
		if enumDisplaySettings(src, enumCurrentSettings, dm) {
			primary = dm.PositionX == 0 && dm.PositionY == 0
		}

		displays = append(displays, display.Display{
			Identity:     display.Identity{Adapter: p.TargetInfo.AdapterID.uint64(), Target: p.TargetInfo.ID},
			FriendlyName: name,
			SourceHandle: src,
			IsPrimary:    primary,
		})
	}
	return displays, nil
}

// Modes enumerates EnumDisplaySettings indices until the driver runs out.
func (g *Gateway) Modes(handle string) ([]display.Mode, error) {
	var modes []display.Mode
	for i := uint32(0); ; i++ {
		dm := newDevMode()
		if !enumDisplaySettings(handle, i, dm) {
			break
		}
		modes = append(modes, toMode(dm))
	}
	return modes, nil
}

func (g *Gateway) CurrentMode(handle string) (display.Mode, error) {
	dm := newDevMode()
	if !enumDisplaySettings(handle, enumCurrentSettings, dm) {
		return display.Mode{}, fmt.Errorf("%w for %s", ErrReadSettings, handle)
	}
	return toMode(dm), nil
}

// ApplyMode calls ChangeDisplaySettingsEx with only the masked DEVMODE fields.
func (g *Gateway) ApplyMode(handle string, target display.Mode, mask display.FieldMask, flags display.ApplyFlags) (display.ResultCode, error) {
	dm := newDevMode()
	if !enumDisplaySettings(handle, enumCurrentSettings, dm) {
		return display.ResultBadParam, fmt.Errorf("%w for %s", ErrReadSettings, handle)
	}
	current := display.Orientation(dm.DisplayOrientation)

	fillDevMode(dm, target, mask, current)

	var cds uint32
	if flags.Has(display.FlagValidateOnly) {
		cds |= cdsTest
	}
	if flags.Has(display.FlagPersist) {
		cds |= cdsUpdateRegistry
	}

	code := display.ResultCode(changeDisplaySettingsEx(handle, dm, cds))
	g.log.Debug().Str("display", handle).Uint32("fields", dm.Fields).Uint32("flags", cds).Int32("code", int32(code)).Msg("ChangeDisplaySettingsEx")
	if code != display.ResultSuccessful {
		return code, fmt.Errorf("ChangeDisplaySettingsEx %s: code %d", handle, code)
	}
	return code, nil
}

// toMode reports unrotated dimensions; DEVMODE swaps them in portrait.
func toMode(dm *devMode) display.Mode {
	o := display.Orientation(dm.DisplayOrientation)
	w, h := int(dm.PelsWidth), int(dm.PelsHeight)
	if o.Swapped() {
		w, h = h, w
	}
	return display.Mode{
		Width:        w,
		Height:       h,
		RefreshHz:    int(dm.DisplayFrequency),
		Orientation:  o,
		BitsPerPixel: int(dm.BitsPerPel),
	}
}

// fillDevMode writes the masked fields of target into dm. A rotation that
// flips the aspect also rewrites the pixel size, as the API requires.
func fillDevMode(dm *devMode, target display.Mode, mask display.FieldMask, current display.Orientation) {
	dm.Fields = 0
	orientation := current
	if mask.Has(display.FieldOrientation) {
		orientation = target.Orientation
		dm.DisplayOrientation = uint32(orientation)
		dm.Fields |= dmDisplayOrientation
	}

	if mask.Has(display.FieldResolution) || orientation.Swapped() != current.Swapped() {
		w, h := uint32(target.Width), uint32(target.Height)
		if orientation.Swapped() {
			w, h = h, w
		}
		dm.PelsWidth, dm.PelsHeight = w, h
		dm.Fields |= dmPelsWidth | dmPelsHeight
	}
	if mask.Has(display.FieldRefresh) {
		dm.DisplayFrequency = uint32(target.RefreshHz)
		dm.Fields |= dmDisplayFrequency
	}
}
