package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/serialize"
)

func kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the built-in error kinds",
		Long: `List every built-in error kind with its status code and default
message, and show which kinds the default serializer registry accepts.`,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tSTATUS\tREGISTERED\tDEFAULT MESSAGE")
			for _, name := range apperr.BuiltinNames() {
				proto, _ := apperr.Builtin(name)
				registered := "no"
				if serialize.Default().Registered(name) {
					registered = "yes"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					proto.Name, proto.StatusCode, registered, proto.Message)
			}
			w.Flush()
		},
	}
}
