package main

import (
	"fmt"
	"io"

	"github.com/dhamidi/gpeg/ebnf/grammar"
	"github.com/dhamidi/gpeg/gpeg"
	"github.com/dhamidi/gpeg/peg"
	"github.com/spf13/cobra"
)

// grammarFlags are shared by every command that loads a grammar.
type grammarFlags struct {
	start     string
	ambiguous bool
}

func (f *grammarFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "start production (default: first production)")
	cmd.Flags().BoolVar(&f.ambiguous, "ambiguous", false, "keep every alternative instead of the first that matches")
}

func (f *grammarFlags) options() []grammar.Option {
	var opts []grammar.Option
	if f.start != "" {
		opts = append(opts, grammar.WithStart(f.start))
	}
	if f.ambiguous {
		opts = append(opts, grammar.WithAmbiguity())
	}
	return opts
}

// load reads the grammar in filename. Conversion errors are returned
// unwrapped so printErrors can expand them.
func (f *grammarFlags) load(filename string) (*peg.Grammar, error) {
	return grammar.Load(filename, f.options()...)
}

func (f *grammarFlags) parser(filename string) (*gpeg.Parser, error) {
	g, err := f.load(filename)
	if err != nil {
		return nil, err
	}
	p, err := gpeg.New(g)
	if err != nil {
		return nil, fmt.Errorf("compile grammar: %w", err)
	}
	return p, nil
}

func printErrors(w io.Writer, err error) {
	for _, e := range grammar.Errors(err) {
		fmt.Fprintln(w, e)
	}
}
