package display

import (
	stderrs "errors"
	"fmt"
)

// Kind classifies every failure the core can report.
// Values are stable; the CLI maps them onto exit codes.
type Kind uint8

const (
	// KindUnknown is a driver result code with no finer classification
	KindUnknown Kind = iota

	// KindBadRequest is a caller contract violation (half-set resolution, bad values)
	KindBadRequest

	// KindEnumeration is a failed or empty display/mode enumeration
	KindEnumeration

	// KindRead is a failed current-mode read
	KindRead

	// KindNotFound is a selector that matched nothing
	KindNotFound

	// KindAmbiguous is a selector that matched more than one display
	KindAmbiguous

	// KindUnsupportedMode is a mode the driver does not offer
	KindUnsupportedMode

	// KindRestartRequired is a change that only takes effect after a restart
	KindRestartRequired

	// KindBadParameter is a rejected parameter or flag combination
	KindBadParameter

	// KindDriverRejected is a generic driver refusal
	KindDriverRejected

	// KindVerificationMismatch is a post-apply state that disagrees with the request
	KindVerificationMismatch

	// KindVerificationUnreadable is a post-apply state that could not be read
	KindVerificationUnreadable
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindEnumeration:
		return "enumeration_error"
	case KindRead:
		return "read_error"
	case KindNotFound:
		return "not_found"
	case KindAmbiguous:
		return "ambiguous"
	case KindUnsupportedMode:
		return "unsupported_mode"
	case KindRestartRequired:
		return "restart_required"
	case KindBadParameter:
		return "bad_parameter"
	case KindDriverRejected:
		return "driver_rejected"
	case KindVerificationMismatch:
		return "verification_mismatch"
	case KindVerificationUnreadable:
		return "verification_unreadable"
	default:
		return "unknown"
	}
}

// Error is the structured error returned by the core.
// msg is user facing; code carries the raw driver result when there is one.
type Error struct {
	orig error
	msg  string
	kind Kind
	op   string
	code ResultCode
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Kind returns the classification
func (e *Error) Kind() Kind { return e.kind }

// Op returns the operation label
func (e *Error) Op() string { return e.op }

// Message returns the classified message without the wrapped cause
func (e *Error) Message() string { return e.msg }

// Code returns the driver result code, ResultSuccessful when none applies
func (e *Error) Code() ResultCode { return e.code }

// New returns an *Error of the given kind
func New(kind Kind, op, msg string) error { return &Error{kind: kind, op: op, msg: msg} }

// Newf returns an *Error with a formatted message
func Newf(kind Kind, op, format string, a ...any) error {
	return &Error{kind: kind, op: op, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error that wraps orig
func Wrap(orig error, kind Kind, op, msg string) error {
	return &Error{kind: kind, op: op, msg: msg, orig: orig}
}

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf extracts the Kind from any error, defaulting to KindUnknown
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err has the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsSelection reports whether err came from selector resolution
func IsSelection(err error) bool {
	k := KindOf(err)
	return err != nil && (k == KindNotFound || k == KindAmbiguous)
}
