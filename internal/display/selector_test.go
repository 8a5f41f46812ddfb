package display

import (
	"strconv"
	"testing"
)

func twoMonitors() []Display {
	return []Display{
		{FriendlyName: "Dell", SourceHandle: "DISPLAY1", IsPrimary: true, Index: 0},
		{FriendlyName: "LG", SourceHandle: "DISPLAY2", Index: 1},
	}
}

func TestResolve_Scenario(t *testing.T) {
	displays := twoMonitors()

	cases := []struct {
		selector string
		status   Status
		handle   string
	}{
		{"1", StatusFound, "DISPLAY2"},
		{"0", StatusFound, "DISPLAY1"},
		{"Dell", StatusFound, "DISPLAY1"},
		{"LG", StatusFound, "DISPLAY2"},
		{"DISPLAY", StatusAmbiguous, ""},
		{"dell", StatusNotFound, ""},
		{"2", StatusNotFound, ""},
		{"99999999999999999999999", StatusNotFound, ""},
		{"", StatusNotFound, ""},
		{"Samsung", StatusNotFound, ""},
	}
	for _, c := range cases {
		t.Run(c.selector, func(t *testing.T) {
			res := Resolve(c.selector, displays, "DISPLAY")
			if res.Status != c.status {
				t.Fatalf("status = %v, want %v", res.Status, c.status)
			}
			if res.Display.SourceHandle != c.handle {
				t.Fatalf("handle = %q, want %q", res.Display.SourceHandle, c.handle)
			}
			if (res.Err() == nil) != (c.status == StatusFound) {
				t.Fatalf("Err() = %v for status %v", res.Err(), res.Status)
			}
		})
	}
}

func TestResolve_IndexCoversWholeCatalog(t *testing.T) {
	displays := make([]Display, 12)
	for i := range displays {
		displays[i] = Display{FriendlyName: "Panel", SourceHandle: "out-" + strconv.Itoa(i), Index: i}
	}
	for i := range displays {
		res := Resolve(strconv.Itoa(i), displays, "DISPLAY")
		if res.Status != StatusFound || res.Display.Index != i {
			t.Fatalf("index %d resolved to %+v", i, res)
		}
	}
	// leading zeros are still an index
	if res := Resolve("007", displays, "DISPLAY"); res.Display.Index != 7 {
		t.Fatalf("007 resolved to %+v", res)
	}
}

func TestResolve_AmbiguousNeverPicks(t *testing.T) {
	displays := []Display{
		{FriendlyName: "Dell U2720Q", SourceHandle: "DISPLAY1", Index: 0},
		{FriendlyName: "Dell P2419H", SourceHandle: "DISPLAY2", Index: 1},
		{FriendlyName: "LG", SourceHandle: "DISPLAY3", Index: 2},
	}
	res := Resolve("Dell", displays, "DISPLAY")
	if res.Status != StatusAmbiguous {
		t.Fatalf("status = %v, want ambiguous", res.Status)
	}
	if res.Display.SourceHandle != "" {
		t.Fatalf("ambiguous resolution returned a display: %+v", res.Display)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(res.Matches))
	}
	err := res.Err()
	if !IsKind(err, KindAmbiguous) || !IsSelection(err) {
		t.Fatalf("Err() = %v, want ambiguous selection error", err)
	}
}

func TestResolve_NameOrHandleMatchCountsOnce(t *testing.T) {
	displays := []Display{{FriendlyName: "DISPLAY1 panel", SourceHandle: "DISPLAY1", Index: 0}}
	res := Resolve("panel", displays, "DISPLAY")
	if res.Status != StatusFound {
		t.Fatalf("status = %v, want found", res.Status)
	}
}

func TestResolve_HandleIsNotChecked(t *testing.T) {
	res := Resolve("DISPLAY9", twoMonitors(), "DISPLAY")
	if res.Status != StatusFound || res.Display.SourceHandle != "DISPLAY9" || res.Display.Index != -1 {
		t.Fatalf("handle resolution = %+v", res)
	}
}

func TestIsHandle(t *testing.T) {
	cases := []struct {
		selector, prefix string
		want             bool
	}{
		{`\\.\DISPLAY1`, `\\.\DISPLAY`, true},
		{`\\.\DISPLAY12`, `\\.\DISPLAY`, true},
		{`\\.\DISPLAY`, `\\.\DISPLAY`, false},
		{`\\.\DISPLAYx`, `\\.\DISPLAY`, false},
		{"xrandr:66", "xrandr:", true},
		{"DISPLAY1", "", false},
		{"1", "DISPLAY", false},
	}
	for _, c := range cases {
		if got := IsHandle(c.selector, c.prefix); got != c.want {
			t.Fatalf("IsHandle(%q, %q) = %v, want %v", c.selector, c.prefix, got, c.want)
		}
	}
}
