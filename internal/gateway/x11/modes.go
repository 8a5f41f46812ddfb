package x11

import (
	"math"

	"github.com/BurntSushi/xgb/randr"

	"displaymode/internal/display"
)

// refreshHz derives the vertical refresh of a RandR mode line.
func refreshHz(mi randr.ModeInfo) int {
	if mi.Htotal == 0 || mi.Vtotal == 0 {
		return 0
	}
	vtotal := float64(mi.Vtotal)
	if mi.ModeFlags&randr.ModeFlagDoubleScan != 0 {
		vtotal *= 2
	}
	if mi.ModeFlags&randr.ModeFlagInterlace != 0 {
		vtotal /= 2
	}
	return int(math.Round(float64(mi.DotClock) / (float64(mi.Htotal) * vtotal)))
}

// rotationBit maps an orientation onto the RandR rotation bit.
func rotationBit(o display.Orientation) uint16 {
	switch o {
	case display.Portrait:
		return randr.RotationRotate90
	case display.LandscapeFlipped:
		return randr.RotationRotate180
	case display.PortraitFlipped:
		return randr.RotationRotate270
	default:
		return randr.RotationRotate0
	}
}

// crtcRotation is the rotation for o that keeps the reflection bits of
// the CRTC's current rotation.
func crtcRotation(o display.Orientation, current uint16) uint16 {
	return rotationBit(o) | current&(randr.RotationReflectX|randr.RotationReflectY)
}

// orientationOf ignores reflection bits.
func orientationOf(rotation uint16) display.Orientation {
	switch {
	case rotation&randr.RotationRotate90 != 0:
		return display.Portrait
	case rotation&randr.RotationRotate180 != 0:
		return display.LandscapeFlipped
	case rotation&randr.RotationRotate270 != 0:
		return display.PortraitFlipped
	default:
		return display.Landscape
	}
}

func toMode(mi randr.ModeInfo, rotation uint16, depth int) display.Mode {
	return display.Mode{
		Width:        int(mi.Width),
		Height:       int(mi.Height),
		RefreshHz:    refreshHz(mi),
		Orientation:  orientationOf(rotation),
		BitsPerPixel: depth,
	}
}

// pickMode finds the mode line for target among the output's modes. Without
// a requested refresh the highest rate at that resolution wins, preferring
// target's current rate when it is offered.
func pickMode(infos map[randr.Mode]randr.ModeInfo, offered []randr.Mode, target display.Mode, mask display.FieldMask) (randr.ModeInfo, bool) {
	var best randr.ModeInfo
	found := false
	for _, id := range offered {
		mi, ok := infos[id]
		if !ok || int(mi.Width) != target.Width || int(mi.Height) != target.Height {
			continue
		}
		hz := refreshHz(mi)
		if hz == target.RefreshHz {
			return mi, true
		}
		if mask.Has(display.FieldRefresh) {
			continue
		}
		if !found || hz > refreshHz(best) {
			best = mi
			found = true
		}
	}
	return best, found
}

// edidName extracts the monitor name descriptor (tag 0xFC) from an EDID blob.
func edidName(edid []byte) string {
	if len(edid) < 128 {
		return ""
	}
	for off := 54; off+18 <= 126; off += 18 {
		desc := edid[off : off+18]
		if desc[0] != 0 || desc[1] != 0 || desc[3] != 0xFC {
			continue
		}
		text := desc[5:18]
		end := len(text)
		for i, b := range text {
			if b == 0x0A || b == 0 {
				end = i
				break
			}
		}
		name := string(text[:end])
		for len(name) > 0 && name[len(name)-1] == ' ' {
			name = name[:len(name)-1]
		}
		return name
	}
	return ""
}
