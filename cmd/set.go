package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"displaymode/internal/display"
	"displaymode/internal/logger"
)

// Lower bound enforced while safe_mode is on.
const (
	safeMinWidth  = 800
	safeMinHeight = 600
)

// modeFlags are the requested mode attributes. Only flags that were given
// on the command line end up in the request.
type modeFlags struct {
	width       int
	height      int
	hz          float64
	orientation string
	dryRun      bool
}

func (m *modeFlags) register(f *pflag.FlagSet) {
	f.IntVar(&m.width, "width", 0, "target width in pixels")
	f.IntVar(&m.height, "height", 0, "target height in pixels")
	f.Float64Var(&m.hz, "hz", 0, "target refresh rate; decimals are rounded")
	f.StringVar(&m.orientation, "orientation", "",
		"landscape, portrait, landscape_flipped, portrait_flipped or 0|90|180|270")
	f.BoolVar(&m.dryRun, "dry-run", false, "validate the mode without applying it")
}

// desired converts the changed flags of f into a request.
func (m *modeFlags) desired(f *pflag.FlagSet) (display.DesiredMode, error) {
	const op = "parse mode"
	d := display.NewDesiredMode()
	if f.Changed("width") {
		if m.width <= 0 {
			return d, display.Newf(display.KindBadRequest, op, "invalid width %d", m.width)
		}
		d.Width = m.width
	}
	if f.Changed("height") {
		if m.height <= 0 {
			return d, display.Newf(display.KindBadRequest, op, "invalid height %d", m.height)
		}
		d.Height = m.height
	}
	if f.Changed("hz") {
		hz := math.Round(m.hz)
		if math.IsNaN(hz) || hz < 1 || hz > math.MaxInt32 {
			return d, display.Newf(display.KindBadRequest, op, "invalid refresh rate %v", m.hz)
		}
		d.RefreshHz = int(hz)
	}
	if f.Changed("orientation") {
		o, err := display.ParseOrientation(m.orientation)
		if err != nil {
			return d, err
		}
		d.Orientation = o
	}
	return d, nil
}

func newSetCmd(a *app) *cobra.Command {
	var mode modeFlags

	setCmd := &cobra.Command{
		Use:   "set <display>",
		Short: "Apply a display mode",
		Long: `Apply a resolution, refresh rate or orientation to one display. Attributes
that are not given keep their current value. The change is read back
and verified unless --dry-run only validates it.

Exit status is 0 when the mode changed and 2 when nothing had to change.`,
		Example: `  displaymode set 0 --width 1920 --height 1080
  displaymode set DELL --hz 143.98
  displaymode set 1 --orientation 90 --persist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSet(cmd, args[0], &mode)
		},
	}
	mode.register(setCmd.Flags())
	return setCmd
}

func (a *app) runSet(cmd *cobra.Command, selector string, mode *modeFlags) error {
	desired, err := mode.desired(cmd.Flags())
	if err != nil {
		return a.fail(cmd, err)
	}
	if selector == "" || desired.Empty() {
		return usageError(cmd, ExitNoRequest)
	}
	if err := desired.Validate(); err != nil {
		return a.fail(cmd, err)
	}

	// Safety check
	if a.v.GetBool("safe_mode") && desired.HasResolution() &&
		(desired.Width < safeMinWidth || desired.Height < safeMinHeight) {
		return a.fail(cmd, display.Newf(display.KindBadRequest, "safe mode",
			"resolution too low (minimum %dx%d in safe mode)", safeMinWidth, safeMinHeight))
	}

	catalog, gw, err := a.openCatalog()
	if err != nil {
		return a.fail(cmd, err)
	}
	defer gw.Close()

	d, err := catalog.Resolve(selector)
	if err != nil {
		return a.fail(cmd, err)
	}

	applier := display.NewApplier(gw, *logger.Named("apply"))
	outcome := applier.Apply(d, desired, display.ApplyOptions{
		Persist: a.v.GetBool("persist"),
		DryRun:  mode.dryRun,
	})
	if err := a.report(cmd, outcome, mode.dryRun); err != nil {
		return err
	}

	code := exitCodeForOutcome(outcome)
	if code == ExitOK {
		return nil
	}
	return &exitError{code: code, err: outcome.Err}
}

// report writes the outcome in the configured format.
func (a *app) report(cmd *cobra.Command, o display.Outcome, dryRun bool) error {
	if f, _ := a.format(); f != formatText {
		return render(cmd.OutOrStdout(), f, newOutcomeJSON(o))
	}
	if a.v.GetBool("quiet") {
		return nil
	}

	if !o.Success {
		msg := o.Message
		if o.Err != nil {
			msg = o.Err.Error()
		}
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
		return nil
	}
	verb := "Applied"
	if dryRun {
		verb = "Validated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verb, o.Message)
	return nil
}
