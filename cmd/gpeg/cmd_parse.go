package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dhamidi/gpeg/format"
	"github.com/dhamidi/gpeg/gpeg"
	"github.com/dhamidi/gpeg/watch"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

var parseLog = commonlog.GetLogger("gpeg.cmd")

// parseRun holds everything needed to parse a batch of input files.
type parseRun struct {
	parser  *gpeg.Parser
	format  string
	charset encoding.Encoding
	jobs    int
}

// parsed is the outcome for a single input file. err is set when the file
// did not parse.
type parsed struct {
	output bytes.Buffer
	err    *gpeg.SyntaxError
}

func newParseCmd() *cobra.Command {
	var gf grammarFlags
	var outputFormat string
	var charset string
	var jobs int
	var watchFiles bool

	cmd := &cobra.Command{
		Use:          "parse <grammar> <file>...",
		Short:        "Parse files with an EBNF grammar and print the parse trees",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gf.parser(args[0])
			if err != nil {
				return err
			}
			run := &parseRun{parser: p, format: outputFormat, jobs: jobs}
			if charset != "" {
				run.charset, err = lookupEncoding(charset)
				if err != nil {
					return err
				}
			}
			if _, err := format.NewEncoder(outputFormat, io.Discard); err != nil {
				return err
			}

			files := args[1:]
			failed, err := run.parseFiles(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), files)
			if err != nil {
				return err
			}
			if watchFiles {
				return run.watch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), files)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to parse", failed, len(files))
			}
			return nil
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexpr", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().StringVar(&charset, "encoding", "", "IANA name of the input character set (default: UTF-8)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files parsed concurrently")
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "re-parse files when they change")

	return cmd
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %s: not supported", name)
	}
	return enc, nil
}

// parseFiles parses files concurrently and writes their trees to out in the
// order the files were given. It returns the number of files that did not
// parse.
func (r *parseRun) parseFiles(ctx context.Context, out, errOut io.Writer, files []string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]parsed, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if r.jobs > 0 {
		g.SetLimit(r.jobs)
	}
	for i, filename := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.parseFile(filename, &results[i])
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	failed := 0
	for i := range results {
		if results[i].err != nil {
			failed++
			parseLog.Warningf("%s: parse failed", files[i])
			fmt.Fprintln(errOut, results[i].err)
			continue
		}
		if _, err := results[i].output.WriteTo(out); err != nil {
			return failed, fmt.Errorf("write output: %w", err)
		}
	}
	return failed, nil
}

func (r *parseRun) parseFile(filename string, res *parsed) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if r.charset != nil {
		data, err = r.charset.NewDecoder().Bytes(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", filename, err)
		}
	}

	t := r.parser.Parse(data, gpeg.WithSource(filename))
	if t.IsError() {
		res.err = gpeg.NewSyntaxError(t)
		return nil
	}
	parseLog.Infof("%s: parsed %d bytes", filename, len(data))
	if t.IsAmbiguity() {
		parseLog.Warningf("%s: %d parses", filename, t.Child.Len())
	}

	enc, err := format.NewEncoder(r.format, &res.output)
	if err != nil {
		return err
	}
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return nil
}

// watch re-parses files whenever they change until interrupted.
func (r *parseRun) watch(ctx context.Context, out, errOut io.Writer, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	w, err := watch.New(files...)
	if err != nil {
		return err
	}
	defer w.Close()

	byPath := make(map[string]string, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch %s: %w", f, err)
		}
		byPath[abs] = f
	}

	parseLog.Noticef("watching %d files", len(files))
	err = w.Run(ctx, r.reparse(ctx, out, errOut, byPath))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reparse returns the watch callback. Files that cannot be read, for
// example while an editor replaces them, are reported and watching goes on.
func (r *parseRun) reparse(ctx context.Context, out, errOut io.Writer, byPath map[string]string) func(changed []string) error {
	return func(changed []string) error {
		names := make([]string, 0, len(changed))
		for _, abs := range changed {
			if name, ok := byPath[abs]; ok {
				names = append(names, name)
			}
		}
		if _, err := r.parseFiles(ctx, out, errOut, names); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			parseLog.Errorf("%s", err)
			fmt.Fprintln(errOut, err)
		}
		return nil
	}
}
