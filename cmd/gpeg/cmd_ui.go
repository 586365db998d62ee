package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dhamidi/gpeg/ui"
	"github.com/spf13/cobra"
)

func newUICmd() *cobra.Command {
	var addr string
	var start string

	cmd := &cobra.Command{
		Use:   "ui [grammar]",
		Short: "Start the grammar playground web server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := ui.Request{Start: start}
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read grammar: %w", err)
				}
				initial.Grammar = string(data)
			}

			server, err := ui.NewServer(initial)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")
	cmd.Flags().StringVar(&start, "start", "", "start production shown in the form")

	return cmd
}
