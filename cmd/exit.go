package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"displaymode/internal/display"
)

// Process exit codes. Scripts depend on these values.
const (
	ExitOK        = 0
	ExitUsage     = 1
	ExitUnchanged = 2
	ExitSelection = 3
	ExitNoRequest = 4
	ExitRead      = 5
	ExitApply     = 6
)

// exitError carries an exit code out of a command. err is nil when the
// outcome was already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// usageError prints the usage of cmd to stderr and exits with code.
func usageError(cmd *cobra.Command, code int) error {
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return &exitError{code: code}
}

func exitCodeFor(err error) int {
	e, ok := display.As(err)
	if !ok {
		return ExitUsage
	}
	switch e.Kind() {
	case display.KindBadRequest:
		return ExitUsage
	case display.KindNotFound, display.KindAmbiguous:
		return ExitSelection
	case display.KindEnumeration, display.KindRead:
		return ExitRead
	default:
		return ExitApply
	}
}

func exitCodeForOutcome(o display.Outcome) int {
	switch {
	case o.Success && o.Changed:
		return ExitOK
	case o.Success:
		return ExitUnchanged
	case o.Err != nil:
		return exitCodeFor(o.Err)
	default:
		return ExitApply
	}
}
