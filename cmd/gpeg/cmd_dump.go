package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var gf grammarFlags

	cmd := &cobra.Command{
		Use:          "dump <grammar>",
		Short:        "Print an EBNF grammar in PEG notation",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# start: %s\n", g.Start())
			fmt.Fprint(cmd.OutOrStdout(), g.String())
			return nil
		},
	}

	gf.register(cmd)

	return cmd
}
