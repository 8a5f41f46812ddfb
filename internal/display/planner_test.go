package display

import "testing"

var fullHD = Mode{Width: 1920, Height: 1080, RefreshHz: 60, Orientation: Landscape, BitsPerPixel: 32}

func TestPlanMode(t *testing.T) {
	cases := []struct {
		name    string
		desired DesiredMode
		mask    FieldMask
		target  Mode
		change  bool
	}{
		{
			name:    "same resolution",
			desired: DesiredMode{Width: 1920, Height: 1080, RefreshHz: Unset, Orientation: Unset},
			mask:    FieldResolution,
			target:  fullHD,
		},
		{
			name:    "new resolution keeps refresh",
			desired: DesiredMode{Width: 2560, Height: 1440, RefreshHz: Unset, Orientation: Unset},
			mask:    FieldResolution,
			target:  Mode{Width: 2560, Height: 1440, RefreshHz: 60, BitsPerPixel: 32},
			change:  true,
		},
		{
			name:    "refresh only",
			desired: DesiredMode{Width: Unset, Height: Unset, RefreshHz: 144, Orientation: Unset},
			mask:    FieldRefresh,
			target:  Mode{Width: 1920, Height: 1080, RefreshHz: 144, BitsPerPixel: 32},
			change:  true,
		},
		{
			name:    "orientation only",
			desired: DesiredMode{Width: Unset, Height: Unset, RefreshHz: Unset, Orientation: Portrait},
			mask:    FieldOrientation,
			target:  Mode{Width: 1920, Height: 1080, RefreshHz: 60, Orientation: Portrait, BitsPerPixel: 32},
			change:  true,
		},
		{
			name:    "everything equal",
			desired: DesiredFrom(fullHD),
			mask:    FieldResolution | FieldRefresh | FieldOrientation,
			target:  fullHD,
		},
		{
			name:    "nothing set",
			desired: NewDesiredMode(),
			target:  fullHD,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := PlanMode(fullHD, c.desired)
			if err != nil {
				t.Fatalf("PlanMode: %v", err)
			}
			if p.Mask != c.mask {
				t.Fatalf("mask = %v, want %v", p.Mask, c.mask)
			}
			if p.Target != c.target {
				t.Fatalf("target = %+v, want %+v", p.Target, c.target)
			}
			if p.WillChange != c.change {
				t.Fatalf("WillChange = %v, want %v", p.WillChange, c.change)
			}
		})
	}
}

func TestPlanMode_RejectsContractViolations(t *testing.T) {
	bad := []DesiredMode{
		{Width: 1920, Height: Unset, RefreshHz: Unset, Orientation: Unset},
		{Width: Unset, Height: 1080, RefreshHz: Unset, Orientation: Unset},
		{Width: 0, Height: 1080, RefreshHz: Unset, Orientation: Unset},
		{Width: Unset, Height: Unset, RefreshHz: 0, Orientation: Unset},
		{Width: Unset, Height: Unset, RefreshHz: Unset, Orientation: 4},
	}
	for _, d := range bad {
		if _, err := PlanMode(fullHD, d); !IsKind(err, KindBadRequest) {
			t.Fatalf("PlanMode(%+v) err = %v, want bad request", d, err)
		}
	}
}

// A mode from the supported set, requested while it is current, is a no-op.
func TestPlanMode_RoundTrip(t *testing.T) {
	set := UniqueModes([]Mode{
		{Width: 1280, Height: 720, RefreshHz: 60},
		{Width: 1920, Height: 1080, RefreshHz: 60},
		{Width: 1920, Height: 1080, RefreshHz: 144},
		{Width: 1920, Height: 1080, RefreshHz: 60, Orientation: Portrait},
		{Width: 3840, Height: 2160, RefreshHz: 30, Orientation: PortraitFlipped},
	})
	for _, m := range set {
		p, err := PlanMode(m, DesiredFrom(m))
		if err != nil {
			t.Fatalf("PlanMode(%v): %v", m, err)
		}
		if p.WillChange {
			t.Fatalf("PlanMode(%v) against itself wants a change", m)
		}
	}
}
