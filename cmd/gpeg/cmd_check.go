package main

import (
	"fmt"

	"github.com/dhamidi/gpeg/gpeg"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var gf grammarFlags

	cmd := &cobra.Command{
		Use:           "check <grammar>",
		Short:         "Load and compile an EBNF grammar, reporting problems",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			filename := args[0]

			g, err := gf.load(filename)
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return err
			}

			start, err := g.StartRef()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}

			c := gpeg.NewCompiler()
			c.Compile(start)
			if missing := c.Missing(); len(missing) > 0 {
				for _, name := range missing {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: undefined rule %s\n", filename, name)
				}
				return fmt.Errorf("%s: %w", filename, gpeg.ErrMissingRule)
			}

			total := len(g.Rules())
			fmt.Fprintf(out, "%s: %d rules, start %s, %d reachable\n", filename, total, g.Start(), c.Rules())
			return nil
		},
	}

	gf.register(cmd)

	return cmd
}
