package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/gpeg/format"
	"github.com/dhamidi/gpeg/gpeg"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	historyFile = ".gpeg_history"
	promptMain  = "gpeg> "
)

type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func newReplCmd() *cobra.Command {
	var gf grammarFlags
	var outputFormat string

	cmd := &cobra.Command{
		Use:          "repl <grammar>",
		Short:        "Parse lines typed at a prompt",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gf.parser(args[0])
			if err != nil {
				return err
			}

			home, _ := os.UserHomeDir()
			histPath := filepath.Join(home, historyFile)

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if f, err := os.Open(histPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			return repl(ln, p, outputFormat, cmd.OutOrStdout())
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexpr", "output format ("+strings.Join(format.Names, ", ")+")")

	return cmd
}

// repl parses every line read from ln until input ends or the user quits.
// Lines starting with ':' are commands.
func repl(ln prompter, p *gpeg.Parser, outputFormat string, out io.Writer) error {
	enc, err := format.NewEncoder(outputFormat, out)
	if err != nil {
		return err
	}

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ":") {
			fields := strings.Fields(trimmed)
			switch fields[0] {
			case ":quit", ":q":
				return nil
			case ":format":
				if len(fields) != 2 {
					fmt.Fprintf(out, "usage: :format %s\n", strings.Join(format.Names, "|"))
					continue
				}
				next, err := format.NewEncoder(fields[1], out)
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				enc = next
			default:
				fmt.Fprintln(out, "unknown command. Type :quit to exit.")
			}
			continue
		}

		ln.AppendHistory(line)
		t := p.ParseString(line, gpeg.WithSource("<stdin>"))
		if t.IsError() {
			fmt.Fprintln(out, gpeg.NewSyntaxError(t))
			fmt.Fprintf(out, "  %s\n  %s^\n", line, strings.Repeat(" ", t.Start))
			continue
		}
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
}
