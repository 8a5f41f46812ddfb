package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active displays",
		Long: `List the active displays in enumeration order. The index, the handle in
brackets and any unique part of the name can be used as a selector. The
primary display is marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd)
		},
	}
}

func (a *app) runList(cmd *cobra.Command) error {
	catalog, gw, err := a.openCatalog()
	if err != nil {
		return a.fail(cmd, err)
	}
	defer gw.Close()

	displays, err := catalog.Displays()
	if err != nil {
		return a.fail(cmd, err)
	}

	if f, _ := a.format(); f != formatText {
		out := make([]displayJSON, len(displays))
		for i, d := range displays {
			out[i] = newDisplayJSON(d)
		}
		return render(cmd.OutOrStdout(), f, out)
	}

	w := cmd.OutOrStdout()
	for _, d := range displays {
		primary := ""
		if d.IsPrimary {
			primary = " *"
		}
		fmt.Fprintf(w, "%d: %s [%s]%s\n", d.Index, d.FriendlyName, d.SourceHandle, primary)
	}
	return nil
}
