package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newEnginesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List speech engines and their local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ENGINE\tKIND\tINSTALLED\tDOWNLOADED")
			for _, info := range deps.App.Engines() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					info.Descriptor, info.Kind, mark(info.Available), mark(info.Downloaded))
			}
			return w.Flush()
		},
	}
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
