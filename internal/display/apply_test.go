package display_test

import (
	"testing"

	"github.com/rs/zerolog"

	"displaymode/internal/display"
	"displaymode/internal/gateway/fixture"
)

func resolution(w, h int) display.DesiredMode {
	d := display.NewDesiredMode()
	d.Width, d.Height = w, h
	return d
}

func setup(t *testing.T, doc fixture.Document, selector string) (*fixture.Gateway, *display.Applier, display.Display) {
	t.Helper()
	gw := fixture.New(doc)
	d, err := display.NewCatalog(gw, zerolog.Nop()).Resolve(selector)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", selector, err)
	}
	return gw, display.NewApplier(gw, zerolog.Nop()), d
}

func current(t *testing.T, gw display.Gateway, handle string) display.Mode {
	t.Helper()
	m, err := gw.CurrentMode(handle)
	if err != nil {
		t.Fatalf("CurrentMode(%s): %v", handle, err)
	}
	return m
}

func TestApply_NoChangeSkipsGateway(t *testing.T) {
	gw, a, d := setup(t, twoMonitorDoc(), "Dell")

	o := a.Apply(d, resolution(1920, 1080), display.ApplyOptions{})
	if !o.Success || o.Changed || o.State != display.StateNoOp || o.Message != display.MsgNoChange {
		t.Fatalf("outcome = %+v", o)
	}
	if gw.ApplyCalls() != 0 {
		t.Fatalf("gateway mutated %d times on a no-op", gw.ApplyCalls())
	}
}

func TestApply_Idempotent(t *testing.T) {
	gw, a, d := setup(t, twoMonitorDoc(), "0")
	desired := resolution(2560, 1440)

	first := a.Apply(d, desired, display.ApplyOptions{})
	if !first.Success || !first.Changed || first.State != display.StateVerified || first.Message != display.MsgSession {
		t.Fatalf("first outcome = %+v", first)
	}
	second := a.Apply(d, desired, display.ApplyOptions{})
	if !second.Success || second.Changed || second.State != display.StateNoOp {
		t.Fatalf("second outcome = %+v", second)
	}
	if gw.ApplyCalls() != 1 {
		t.Fatalf("ApplyCalls = %d, want 1", gw.ApplyCalls())
	}
	if got := current(t, gw, "DISPLAY1"); got.Width != 2560 || got.RefreshHz != 60 {
		t.Fatalf("current = %v", got)
	}
}

func TestApply_Persist(t *testing.T) {
	gw, a, d := setup(t, twoMonitorDoc(), "Dell")

	desired := display.NewDesiredMode()
	desired.RefreshHz = 75
	o := a.Apply(d, desired, display.ApplyOptions{Persist: true})
	if !o.Success || !o.Changed || o.Message != display.MsgPersisted {
		t.Fatalf("outcome = %+v", o)
	}
	p := gw.Document().Displays[0].Persisted
	if p == nil || p.Hz != 75 || p.Width != 1920 {
		t.Fatalf("persisted = %+v", p)
	}
}

func TestApply_DryRunNeverMutates(t *testing.T) {
	for _, tc := range []struct {
		name    string
		desired display.DesiredMode
		success bool
	}{
		{"supported", resolution(1280, 720), true},
		{"unsupported", resolution(1366, 768), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			gw, a, d := setup(t, twoMonitorDoc(), "Dell")
			before := current(t, gw, "DISPLAY1")

			o := a.Apply(d, tc.desired, display.ApplyOptions{DryRun: true, Persist: true})
			if o.Success != tc.success || o.Changed {
				t.Fatalf("outcome = %+v", o)
			}
			if tc.success && (o.State != display.StateDryRunDone || o.Message != display.MsgDryRun) {
				t.Fatalf("outcome = %+v", o)
			}
			if after := current(t, gw, "DISPLAY1"); after != before {
				t.Fatalf("dry-run changed %v to %v", before, after)
			}
			if gw.Document().Displays[0].Persisted != nil {
				t.Fatal("dry-run persisted a mode")
			}
		})
	}
}

func TestApply_RejectedCodes(t *testing.T) {
	cases := []struct {
		code display.ResultCode
		kind display.Kind
		msg  string
	}{
		{display.ResultRestart, display.KindRestartRequired, "restart required"},
		{display.ResultBadMode, display.KindUnsupportedMode, "mode unsupported"},
		{display.ResultBadParam, display.KindBadParameter, "bad parameter"},
		{display.ResultFailed, display.KindDriverRejected, "driver rejected mode"},
		{display.ResultCode(-99), display.KindUnknown, "unknown error (code=-99)"},
	}
	for _, c := range cases {
		for _, opts := range []display.ApplyOptions{{}, {DryRun: true}, {Persist: true}, {DryRun: true, Persist: true}} {
			doc := twoMonitorDoc()
			doc.ApplyResult = int32(c.code)
			gw, a, d := setup(t, doc, "Dell")

			o := a.Apply(d, resolution(2560, 1440), opts)
			if o.Success || o.Changed || o.State != display.StateMutationRejected || o.Message != c.msg {
				t.Fatalf("code %d opts %+v: outcome = %+v", c.code, opts, o)
			}
			e, ok := display.As(o.Err)
			if !ok || e.Kind() != c.kind || e.Code() != c.code {
				t.Fatalf("code %d: err = %v", c.code, o.Err)
			}
			if gw.ApplyCalls() != 1 {
				t.Fatalf("code %d: mutation retried (%d calls)", c.code, gw.ApplyCalls())
			}
		}
	}
}

func TestApply_RestartRequiredRegardlessOfFlags(t *testing.T) {
	for _, opts := range []display.ApplyOptions{{}, {DryRun: true}, {Persist: true}, {DryRun: true, Persist: true}} {
		doc := twoMonitorDoc()
		doc.ApplyResult = int32(display.ResultRestart)
		gw, a, d := setup(t, doc, "LG")
		before := current(t, gw, "DISPLAY2")

		desired := display.NewDesiredMode()
		desired.RefreshHz = 60
		o := a.Apply(d, desired, opts)
		if o.Success || o.Changed || o.Message != "restart required" || !display.IsKind(o.Err, display.KindRestartRequired) {
			t.Fatalf("opts %+v: outcome = %+v", opts, o)
		}
		if after := current(t, gw, "DISPLAY2"); after != before {
			t.Fatalf("opts %+v: mode changed from %v to %v", opts, before, after)
		}
		if gw.Document().Displays[1].Persisted != nil {
			t.Fatalf("opts %+v: rejected mode persisted", opts)
		}
	}
}

func TestApply_UnsupportedModeFromGateway(t *testing.T) {
	_, a, d := setup(t, twoMonitorDoc(), "LG")
	o := a.Apply(d, resolution(3840, 2160), display.ApplyOptions{})
	if o.Success || !display.IsKind(o.Err, display.KindUnsupportedMode) {
		t.Fatalf("outcome = %+v", o)
	}
}

func TestApply_VerificationMismatch(t *testing.T) {
	doc := twoMonitorDoc()
	doc.IgnoreApply = true
	_, a, d := setup(t, doc, "Dell")

	o := a.Apply(d, resolution(2560, 1440), display.ApplyOptions{})
	if o.Success || o.Changed || o.State != display.StateVerifyFailed || o.Message != display.MsgVerifyMismatch {
		t.Fatalf("outcome = %+v", o)
	}
	if !display.IsKind(o.Err, display.KindVerificationMismatch) {
		t.Fatalf("err = %v", o.Err)
	}
}

func TestApply_VerificationUnreadable(t *testing.T) {
	doc := twoMonitorDoc()
	doc.FailReadsAfterApply = true
	_, a, d := setup(t, doc, "Dell")

	o := a.Apply(d, resolution(2560, 1440), display.ApplyOptions{})
	if !o.Success || !o.Changed || o.State != display.StateVerifyUnreadable || o.Message != display.MsgVerifyUnreadable {
		t.Fatalf("outcome = %+v", o)
	}
	if !display.IsKind(o.Err, display.KindVerificationUnreadable) {
		t.Fatalf("err = %v", o.Err)
	}
}

func TestApply_ReadError(t *testing.T) {
	gw := fixture.New(twoMonitorDoc())
	a := display.NewApplier(gw, zerolog.Nop())

	// handle selectors are not checked against the snapshot
	o := a.Apply(display.Display{SourceHandle: "DISPLAY9", Index: -1}, resolution(1920, 1080), display.ApplyOptions{})
	if o.Success || o.State != display.StateReadError || !display.IsKind(o.Err, display.KindRead) {
		t.Fatalf("outcome = %+v", o)
	}
	if gw.ApplyCalls() != 0 {
		t.Fatal("gateway mutated after a failed read")
	}
}

func TestApply_OrientationOnly(t *testing.T) {
	gw, a, d := setup(t, twoMonitorDoc(), "LG")

	desired := display.NewDesiredMode()
	desired.Orientation = display.Portrait
	o := a.Apply(d, desired, display.ApplyOptions{})
	if !o.Success || !o.Changed {
		t.Fatalf("outcome = %+v", o)
	}
	got := current(t, gw, "DISPLAY2")
	if got.Orientation != display.Portrait || got.Width != 2560 || got.RefreshHz != 144 {
		t.Fatalf("current = %+v", got)
	}
	if o.Plan.Mask != display.FieldOrientation {
		t.Fatalf("mask = %v", o.Plan.Mask)
	}
}
