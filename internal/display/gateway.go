package display

import (
	"fmt"
	"io"
)

// Gateway is the platform display API. Implementations live under
// internal/gateway and keep OS structures to themselves.
type Gateway interface {
	// Displays enumerates the active displays in platform order. Index is
	// assigned by the Catalog.
	Displays() ([]Display, error)

	// Modes enumerates the raw supported modes of a display.
	Modes(handle string) ([]Mode, error)

	// CurrentMode reads the active mode of a display.
	CurrentMode(handle string) (Mode, error)

	// ApplyMode asks the platform to switch a display to target. Only the
	// fields in mask are requested. A non-nil error carries detail for a
	// non-successful code.
	ApplyMode(handle string, target Mode, mask FieldMask, flags ApplyFlags) (ResultCode, error)

	// HandlePrefix is the literal that, followed by digits, forms a source
	// handle for this platform.
	HandlePrefix() string

	io.Closer
}

// ApplyFlags are the mutation flags passed to the gateway.
type ApplyFlags uint8

const (
	// FlagValidateOnly tests the mode without committing it
	FlagValidateOnly ApplyFlags = 1 << iota
	// FlagPersist writes the mode to durable storage
	FlagPersist
)

func (f ApplyFlags) Has(flag ApplyFlags) bool { return f&flag == flag }

// ResultCode is a platform-neutral mutation result. The values follow the
// Win32 DISP_CHANGE_* codes; other adapters translate onto them.
type ResultCode int32

const (
	ResultSuccessful  ResultCode = 0
	ResultRestart     ResultCode = 1
	ResultFailed      ResultCode = -1
	ResultBadMode     ResultCode = -2
	ResultNotUpdated  ResultCode = -3
	ResultBadFlags    ResultCode = -4
	ResultBadParam    ResultCode = -5
	ResultBadDualView ResultCode = -6
)

// Classify maps a non-successful result code onto its Kind and message.
func Classify(code ResultCode) (Kind, string) {
	switch code {
	case ResultBadMode:
		return KindUnsupportedMode, "mode unsupported"
	case ResultRestart:
		return KindRestartRequired, "restart required"
	case ResultBadParam:
		return KindBadParameter, "bad parameter"
	case ResultBadFlags:
		return KindBadParameter, "invalid flags"
	case ResultFailed:
		return KindDriverRejected, "driver rejected mode"
	case ResultNotUpdated:
		return KindUnknown, fmt.Sprintf("registry not updated (code=%d)", code)
	case ResultBadDualView:
		return KindUnknown, fmt.Sprintf("dual-view limitation (code=%d)", code)
	default:
		return KindUnknown, fmt.Sprintf("unknown error (code=%d)", code)
	}
}
