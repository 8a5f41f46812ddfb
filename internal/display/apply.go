package display

import (
	"github.com/rs/zerolog"
)

// State is the terminal state of one apply call.
type State int

const (
	StateReadError State = iota
	StateNoOp
	StateMutationRejected
	StateDryRunDone
	StateVerified
	StateVerifyFailed
	StateVerifyUnreadable
)

func (s State) String() string {
	switch s {
	case StateNoOp:
		return "no_op"
	case StateMutationRejected:
		return "mutation_rejected"
	case StateDryRunDone:
		return "dry_run"
	case StateVerified:
		return "verified"
	case StateVerifyFailed:
		return "verify_failed"
	case StateVerifyUnreadable:
		return "verify_unreadable"
	default:
		return "read_error"
	}
}

const (
	MsgNoChange         = "no change requested"
	MsgDryRun           = "valid (dry-run)"
	MsgVerifyUnreadable = "applied (verification read failed)"
	MsgVerifyMismatch   = "verification mismatch"
	MsgPersisted        = "applied and persisted"
	MsgSession          = "applied (session only)"
)

// Outcome is the result of one apply call.
type Outcome struct {
	Success bool
	Changed bool
	Message string
	State   State
	Display Display
	Plan    Plan
	// Err is the classified failure; nil unless Success is false, except for
	// StateVerifyUnreadable where it records the failed read.
	Err error
}

// ApplyOptions are the behavior flags of an apply call.
type ApplyOptions struct {
	Persist bool
	DryRun  bool
}

// Flags maps the options onto gateway mutation flags.
func (o ApplyOptions) Flags() ApplyFlags {
	var f ApplyFlags
	if o.DryRun {
		f |= FlagValidateOnly
	}
	if o.Persist {
		f |= FlagPersist
	}
	return f
}

// Applier runs the read, plan, mutate, verify sequence against a gateway.
type Applier struct {
	gw  Gateway
	log zerolog.Logger
}

// NewApplier returns an Applier bound to gw.
func NewApplier(gw Gateway, log zerolog.Logger) *Applier {
	return &Applier{gw: gw, log: log}
}

// Apply moves d towards desired. Mutations are never retried.
func (a *Applier) Apply(d Display, desired DesiredMode, opts ApplyOptions) Outcome {
	handle := d.SourceHandle
	log := a.log.With().Str("display", handle).Bool("dry_run", opts.DryRun).Bool("persist", opts.Persist).Logger()
	out := Outcome{Display: d}

	current, err := a.gw.CurrentMode(handle)
	if err != nil {
		out.State = StateReadError
		out.Err = Wrap(err, KindRead, "read current mode", "failed to read current settings of "+handle)
		out.Message = out.Err.Error()
		log.Debug().Err(err).Msg("current mode unreadable")
		return out
	}

	plan, err := PlanMode(current, desired)
	if err != nil {
		// Validate is the caller's job; report it without touching the display.
		out.State = StateMutationRejected
		out.Err = err
		out.Message = err.Error()
		return out
	}
	out.Plan = plan
	log.Debug().Stringer("current", current).Stringer("target", plan.Target).Stringer("mask", plan.Mask).Bool("will_change", plan.WillChange).Msg("planned")

	if !plan.WillChange {
		out.Success = true
		out.State = StateNoOp
		out.Message = MsgNoChange
		return out
	}

	code, err := a.gw.ApplyMode(handle, plan.Target, plan.Mask, opts.Flags())
	if code != ResultSuccessful {
		kind, msg := Classify(code)
		out.State = StateMutationRejected
		out.Err = &Error{kind: kind, op: "apply mode", msg: msg, code: code, orig: err}
		out.Message = msg
		log.Debug().Err(err).Int32("code", int32(code)).Stringer("kind", kind).Msg("mutation rejected")
		return out
	}

	if opts.DryRun {
		out.Success = true
		out.State = StateDryRunDone
		out.Message = MsgDryRun
		return out
	}

	after, err := a.gw.CurrentMode(handle)
	if err != nil {
		out.Success = true
		out.Changed = true
		out.State = StateVerifyUnreadable
		out.Message = MsgVerifyUnreadable
		out.Err = Wrap(err, KindVerificationUnreadable, "verify mode", MsgVerifyUnreadable)
		log.Debug().Err(err).Msg("verification read failed")
		return out
	}

	if !plan.Mask.Matches(plan.Target, after) {
		out.State = StateVerifyFailed
		out.Message = MsgVerifyMismatch
		out.Err = Newf(KindVerificationMismatch, "verify mode", "%s: requested %s, observed %s", MsgVerifyMismatch, plan.Target, after)
		log.Debug().Stringer("observed", after).Msg("verification mismatch")
		return out
	}

	out.Success = true
	out.Changed = true
	out.State = StateVerified
	out.Message = MsgSession
	if opts.Persist {
		out.Message = MsgPersisted
	}
	log.Debug().Stringer("observed", after).Msg("verified")
	return out
}
