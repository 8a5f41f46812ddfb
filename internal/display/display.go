// Package display holds the display selection, mode planning and
// apply/verify logic shared by every platform gateway.
package display

import (
	"fmt"
	"strconv"
	"strings"
)

// Unset marks a DesiredMode field that the caller did not request.
const Unset = -1

// Identity is the adapter/target pair of one display connection. It is only
// meaningful within the snapshot that produced it.
type Identity struct {
	Adapter uint64
	Target  uint32
}

// Display is one entry of a catalog snapshot.
type Display struct {
	Identity     Identity
	FriendlyName string
	SourceHandle string
	IsPrimary    bool
	Index        int
}

// Label returns the friendly name, or the handle when no name is known.
func (d Display) Label() string {
	if d.FriendlyName != "" {
		return d.FriendlyName
	}
	return d.SourceHandle
}

// Orientation is a display rotation in 90 degree steps.
type Orientation int

const (
	Landscape        Orientation = 0
	Portrait         Orientation = 1
	LandscapeFlipped Orientation = 2
	PortraitFlipped  Orientation = 3
)

// Valid reports whether o is one of the four rotations.
func (o Orientation) Valid() bool {
	return o >= Landscape && o <= PortraitFlipped
}

// Degrees returns the clockwise rotation in degrees.
func (o Orientation) Degrees() int {
	return int(o) * 90
}

// Swapped reports whether width and height trade places under this rotation.
func (o Orientation) Swapped() bool {
	return o == Portrait || o == PortraitFlipped
}

func (o Orientation) String() string {
	switch o {
	case Landscape:
		return "landscape"
	case Portrait:
		return "portrait"
	case LandscapeFlipped:
		return "landscape_flipped"
	case PortraitFlipped:
		return "portrait_flipped"
	default:
		return "unknown"
	}
}

// ParseOrientation accepts a rotation name or its angle in degrees.
func ParseOrientation(token string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "landscape", "0":
		return Landscape, nil
	case "portrait", "90":
		return Portrait, nil
	case "landscape_flipped", "landscape-flipped", "180":
		return LandscapeFlipped, nil
	case "portrait_flipped", "portrait-flipped", "270":
		return PortraitFlipped, nil
	}
	return 0, Newf(KindBadRequest, "parse orientation", "invalid orientation %q", token)
}

// OrientationFromDegrees maps 0/90/180/270 onto an Orientation.
func OrientationFromDegrees(deg int) (Orientation, bool) {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	if deg%90 != 0 {
		return 0, false
	}
	return Orientation(deg / 90), true
}

// Mode describes one video mode.
type Mode struct {
	Width        int
	Height       int
	RefreshHz    int
	Orientation  Orientation
	BitsPerPixel int
}

func (m Mode) String() string {
	s := fmt.Sprintf("%dx%d @ %dHz", m.Width, m.Height, m.RefreshHz)
	if m.Orientation != Landscape {
		s += " " + m.Orientation.String()
	}
	return s
}

// Key is the uniqueness key of a mode inside a supported-mode set.
func (m Mode) Key() ModeKey {
	return ModeKey{m.Width, m.Height, m.RefreshHz, m.Orientation}
}

// AspectRatio returns the reduced width:height ratio, e.g. "16:9".
func (m Mode) AspectRatio() string {
	gcd := func(a, b int) int {
		for b != 0 {
			a, b = b, a%b
		}
		return a
	}

	divisor := gcd(m.Width, m.Height)
	if divisor == 0 {
		return "0:0"
	}
	return strconv.Itoa(m.Width/divisor) + ":" + strconv.Itoa(m.Height/divisor)
}

// ModeKey orders and de-duplicates modes.
type ModeKey struct {
	Width       int
	Height      int
	RefreshHz   int
	Orientation Orientation
}

// Less orders keys ascending by width, height, refresh, orientation.
func (k ModeKey) Less(o ModeKey) bool {
	if k.Width != o.Width {
		return k.Width < o.Width
	}
	if k.Height != o.Height {
		return k.Height < o.Height
	}
	if k.RefreshHz != o.RefreshHz {
		return k.RefreshHz < o.RefreshHz
	}
	return k.Orientation < o.Orientation
}

// DesiredMode is a partial mode request. Fields equal to Unset are left as
// they are.
type DesiredMode struct {
	Width       int
	Height      int
	RefreshHz   int
	Orientation Orientation
}

// NewDesiredMode returns a request with every field unset.
func NewDesiredMode() DesiredMode {
	return DesiredMode{Width: Unset, Height: Unset, RefreshHz: Unset, Orientation: Unset}
}

// DesiredFrom builds a request that sets every field of m.
func DesiredFrom(m Mode) DesiredMode {
	return DesiredMode{Width: m.Width, Height: m.Height, RefreshHz: m.RefreshHz, Orientation: m.Orientation}
}

func (d DesiredMode) HasResolution() bool  { return d.Width != Unset && d.Height != Unset }
func (d DesiredMode) HasRefresh() bool     { return d.RefreshHz != Unset }
func (d DesiredMode) HasOrientation() bool { return d.Orientation != Unset }

// Empty reports whether the request sets nothing at all.
func (d DesiredMode) Empty() bool {
	return d.Width == Unset && d.Height == Unset && d.RefreshHz == Unset && d.Orientation == Unset
}

// Validate rejects half-set resolutions and out-of-range values.
func (d DesiredMode) Validate() error {
	const op = "validate mode"
	if (d.Width == Unset) != (d.Height == Unset) {
		return New(KindBadRequest, op, "width and height must be given together")
	}
	if d.HasResolution() && (d.Width <= 0 || d.Height <= 0) {
		return Newf(KindBadRequest, op, "invalid resolution %dx%d", d.Width, d.Height)
	}
	if d.HasRefresh() && d.RefreshHz <= 0 {
		return Newf(KindBadRequest, op, "invalid refresh rate %d", d.RefreshHz)
	}
	if d.HasOrientation() && !d.Orientation.Valid() {
		return Newf(KindBadRequest, op, "invalid orientation %d", int(d.Orientation))
	}
	return nil
}

// FieldMask selects the mode attributes a request sets.
type FieldMask uint8

const (
	FieldResolution FieldMask = 1 << iota
	FieldRefresh
	FieldOrientation
)

// Has reports whether every bit of f is in m.
func (m FieldMask) Has(f FieldMask) bool { return m&f == f }

func (m FieldMask) String() string {
	var parts []string
	if m.Has(FieldResolution) {
		parts = append(parts, "resolution")
	}
	if m.Has(FieldRefresh) {
		parts = append(parts, "refresh")
	}
	if m.Has(FieldOrientation) {
		parts = append(parts, "orientation")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Matches reports whether got agrees with want on every masked field.
func (m FieldMask) Matches(want, got Mode) bool {
	if m.Has(FieldResolution) && (want.Width != got.Width || want.Height != got.Height) {
		return false
	}
	if m.Has(FieldRefresh) && want.RefreshHz != got.RefreshHz {
		return false
	}
	if m.Has(FieldOrientation) && want.Orientation != got.Orientation {
		return false
	}
	return true
}
