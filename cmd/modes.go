package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"displaymode/internal/display"
)

func newModesCmd(a *app) *cobra.Command {
	var groupByAspect bool

	modesCmd := &cobra.Command{
		Use:   "modes <display>",
		Short: "List the modes a display supports",
		Long: `List the supported modes of one display, without duplicates, ordered by
width, height, refresh rate and orientation. The current mode is marked
with *.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runModes(cmd, args[0], groupByAspect)
		},
	}
	modesCmd.Flags().BoolVarP(&groupByAspect, "group", "g", false,
		"group resolutions by aspect ratio")
	return modesCmd
}

func (a *app) runModes(cmd *cobra.Command, selector string, grouped bool) error {
	catalog, gw, err := a.openCatalog()
	if err != nil {
		return a.fail(cmd, err)
	}
	defer gw.Close()

	d, err := catalog.Resolve(selector)
	if err != nil {
		return a.fail(cmd, err)
	}
	modes, err := catalog.Modes(d.SourceHandle)
	if err != nil {
		return a.fail(cmd, err)
	}

	if f, _ := a.format(); f != formatText {
		out := make([]modeJSON, len(modes))
		for i, m := range modes {
			out[i] = newModeJSON(m)
		}
		return render(cmd.OutOrStdout(), f, out)
	}

	var current *display.ModeKey
	if m, err := gw.CurrentMode(d.SourceHandle); err == nil {
		k := m.Key()
		current = &k
	} else {
		a.log.Debug().Err(err).Str("display", d.SourceHandle).Msg("current mode unknown")
	}

	if grouped {
		printModesGrouped(cmd.OutOrStdout(), modes, current)
	} else {
		printModes(cmd.OutOrStdout(), modes, current)
	}
	return nil
}

func modeLine(m display.Mode, current *display.ModeKey) string {
	prefix := "   "
	if current != nil && m.Key() == *current {
		prefix = " * "
	}
	line := prefix + m.String()
	if m.BitsPerPixel > 0 {
		line += fmt.Sprintf(" (%dbpp)", m.BitsPerPixel)
	}
	return line
}

func printModes(w io.Writer, modes []display.Mode, current *display.ModeKey) {
	for _, m := range modes {
		fmt.Fprintf(w, "%s [%s]\n", modeLine(m, current), m.AspectRatio())
	}
}

// printModesGrouped keeps ratios in order of first appearance.
func printModesGrouped(w io.Writer, modes []display.Mode, current *display.ModeKey) {
	var ratios []string
	grouped := make(map[string][]display.Mode)
	for _, m := range modes {
		ratio := m.AspectRatio()
		if _, ok := grouped[ratio]; !ok {
			ratios = append(ratios, ratio)
		}
		grouped[ratio] = append(grouped[ratio], m)
	}

	for i, ratio := range ratios {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", ratio)
		for _, m := range grouped[ratio] {
			fmt.Fprintln(w, modeLine(m, current))
		}
	}
}
