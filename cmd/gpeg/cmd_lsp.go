package main

import (
	"github.com/dhamidi/gpeg/gpeg"
	"github.com/dhamidi/gpeg/lsp"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var gf grammarFlags

	cmd := &cobra.Command{
		Use:   "lsp <grammar>",
		Short: "Start a Language Server Protocol server for documents in a grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gf.parser(args[0])
			if err != nil {
				return err
			}
			server := lsp.NewServer(p, gpeg.Version)
			return server.RunStdio()
		},
	}

	gf.register(cmd)

	return cmd
}
