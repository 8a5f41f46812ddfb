package display

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseOrientation(t *testing.T) {
	cases := []struct {
		in   string
		want Orientation
	}{
		{"landscape", Landscape},
		{"0", Landscape},
		{"portrait", Portrait},
		{"90", Portrait},
		{"landscape_flipped", LandscapeFlipped},
		{"Landscape-Flipped", LandscapeFlipped},
		{"180", LandscapeFlipped},
		{"portrait_flipped", PortraitFlipped},
		{" 270 ", PortraitFlipped},
	}
	for _, c := range cases {
		got, err := ParseOrientation(c.in)
		if err != nil || got != c.want {
			t.Fatalf("ParseOrientation(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}

	for _, in := range []string{"", "45", "upside", "360", "-90"} {
		if _, err := ParseOrientation(in); !IsKind(err, KindBadRequest) {
			t.Fatalf("ParseOrientation(%q) err = %v, want bad request", in, err)
		}
	}
}

func TestOrientationFromDegrees(t *testing.T) {
	cases := []struct {
		deg  int
		want Orientation
		ok   bool
	}{
		{0, Landscape, true},
		{90, Portrait, true},
		{180, LandscapeFlipped, true},
		{270, PortraitFlipped, true},
		{360, Landscape, true},
		{-90, PortraitFlipped, true},
		{45, 0, false},
	}
	for _, c := range cases {
		got, ok := OrientationFromDegrees(c.deg)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("OrientationFromDegrees(%d) = %v, %v", c.deg, got, ok)
		}
	}
	for o := Landscape; o <= PortraitFlipped; o++ {
		if back, _ := OrientationFromDegrees(o.Degrees()); back != o {
			t.Fatalf("%v does not survive degrees", o)
		}
	}
}

func TestModeStringAndAspect(t *testing.T) {
	m := Mode{Width: 2560, Height: 1440, RefreshHz: 144}
	if m.String() != "2560x1440 @ 144Hz" {
		t.Fatalf("String() = %q", m.String())
	}
	m.Orientation = Portrait
	if m.String() != "2560x1440 @ 144Hz portrait" {
		t.Fatalf("String() = %q", m.String())
	}

	ratios := map[Mode]string{
		{Width: 1920, Height: 1080}: "16:9",
		{Width: 1920, Height: 1200}: "8:5",
		{Width: 1024, Height: 768}:  "4:3",
		{Width: 3440, Height: 1440}: "43:18",
		{}:                          "0:0",
	}
	for mode, want := range ratios {
		if got := mode.AspectRatio(); got != want {
			t.Fatalf("%dx%d ratio = %q, want %q", mode.Width, mode.Height, got, want)
		}
	}
}

func TestUniqueModes(t *testing.T) {
	raw := []Mode{
		{Width: 1920, Height: 1080, RefreshHz: 60, BitsPerPixel: 16},
		{Width: 1280, Height: 720, RefreshHz: 60, BitsPerPixel: 32},
		{Width: 1920, Height: 1080, RefreshHz: 60, BitsPerPixel: 32},
		{Width: 1920, Height: 1080, RefreshHz: 60, Orientation: Portrait},
		{Width: 1920, Height: 1080, RefreshHz: 50, BitsPerPixel: 8},
		{Width: 1920, Height: 1080, RefreshHz: 60, BitsPerPixel: 8},
	}
	got := UniqueModes(raw)
	want := []Mode{
		{Width: 1280, Height: 720, RefreshHz: 60, BitsPerPixel: 32},
		{Width: 1920, Height: 1080, RefreshHz: 50, BitsPerPixel: 8},
		{Width: 1920, Height: 1080, RefreshHz: 60, BitsPerPixel: 32},
		{Width: 1920, Height: 1080, RefreshHz: 60, Orientation: Portrait},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("UniqueModes = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("mode %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFieldMask(t *testing.T) {
	if s := (FieldResolution | FieldOrientation).String(); s != "resolution|orientation" {
		t.Fatalf("String() = %q", s)
	}
	if s := FieldMask(0).String(); s != "none" {
		t.Fatalf("String() = %q", s)
	}

	want := Mode{Width: 1920, Height: 1080, RefreshHz: 60, Orientation: Portrait}
	got := Mode{Width: 1920, Height: 1080, RefreshHz: 75, Orientation: Portrait, BitsPerPixel: 24}
	if !(FieldResolution | FieldOrientation).Matches(want, got) {
		t.Fatal("unmasked refresh should not matter")
	}
	if FieldRefresh.Matches(want, got) {
		t.Fatal("masked refresh differs")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		code ResultCode
		kind Kind
		msg  string
	}{
		{ResultBadMode, KindUnsupportedMode, "mode unsupported"},
		{ResultRestart, KindRestartRequired, "restart required"},
		{ResultBadParam, KindBadParameter, "bad parameter"},
		{ResultBadFlags, KindBadParameter, "invalid flags"},
		{ResultFailed, KindDriverRejected, "driver rejected mode"},
		{ResultNotUpdated, KindUnknown, "registry not updated (code=-3)"},
		{ResultBadDualView, KindUnknown, "dual-view limitation (code=-6)"},
		{ResultCode(-42), KindUnknown, "unknown error (code=-42)"},
	}
	for _, c := range cases {
		kind, msg := Classify(c.code)
		if kind != c.kind || msg != c.msg {
			t.Fatalf("Classify(%d) = %v, %q; want %v, %q", c.code, kind, msg, c.kind, c.msg)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("EnumDisplaySettings failed")
	err := fmt.Errorf("outer: %w", Wrap(cause, KindRead, "read current mode", "failed to read"))

	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	e, ok := As(err)
	if !ok {
		t.Fatal("As failed")
	}
	if e.Kind() != KindRead || e.Op() != "read current mode" || e.Message() != "failed to read" {
		t.Fatalf("unexpected error fields: %v %q %q", e.Kind(), e.Op(), e.Message())
	}
	if e.Error() != "failed to read: EnumDisplaySettings failed" {
		t.Fatalf("Error() = %q", e.Error())
	}
	if KindOf(cause) != KindUnknown || IsKind(nil, KindUnknown) || IsSelection(nil) {
		t.Fatal("plain and nil errors must not classify")
	}
	if KindNotFound.String() != "not_found" || KindVerificationUnreadable.String() != "verification_unreadable" {
		t.Fatal("kind names changed")
	}
}
