package gpeg

import (
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/gpeg/peg"
	"github.com/dhamidi/gpeg/source"
	"github.com/dhamidi/gpeg/tree"
)

// Option configures a single parse call.
type Option func(*parseConfig)

type parseConfig struct {
	urn   string
	start int
}

// WithSource labels the input, for diagnostics.
func WithSource(urn string) Option {
	return func(cfg *parseConfig) {
		cfg.urn = urn
	}
}

// WithStart starts parsing at byte offset pos instead of 0.
func WithStart(pos int) Option {
	return func(cfg *parseConfig) {
		cfg.start = pos
	}
}

// Parser runs a compiled grammar. It is immutable and safe for concurrent
// use.
type Parser struct {
	root Func
	log  commonlog.Logger
}

// MakeParser wraps a compiled root expression.
func MakeParser(root Func) *Parser {
	return &Parser{
		root: root,
		log:  commonlog.GetLogger("gpeg.parse"),
	}
}

// New compiles the start rule of g. It fails if g has no rules or refers to
// rules it does not define.
func New(g *peg.Grammar, opts ...CompileOption) (*Parser, error) {
	start, err := g.StartRef()
	if err != nil {
		return nil, err
	}
	c := NewCompiler(opts...)
	root := c.Compile(start)
	if missing := c.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("grammar %q: %w: %s", g.Name, ErrMissingRule, strings.Join(missing, ", "))
	}
	return MakeParser(root), nil
}

// Parse parses input and returns the parse tree, an Ambiguity tree when the
// parse ended at several positions, or an error tree tagged "err" spanning
// from the deepest position reached to the end of input.
func (p *Parser) Parse(input []byte, opts ...Option) *tree.Tree {
	cfg := parseConfig{urn: source.DefaultURN}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := NewContext(source.New(cfg.urn, input), cfg.start)
	return p.Run(c)
}

// ParseString parses the UTF-8 bytes of s.
func (p *Parser) ParseString(s string, opts ...Option) *tree.Tree {
	return p.Parse([]byte(s), opts...)
}

// ParseReader reads r to the end and parses its contents.
func (p *Parser) ParseReader(r io.Reader, opts ...Option) (*tree.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return p.Parse(data, opts...), nil
}

// ParseErr is like Parse but reports an error tree as a *SyntaxError.
func (p *Parser) ParseErr(input []byte, opts ...Option) (*tree.Tree, error) {
	t := p.Parse(input, opts...)
	if t.IsError() {
		return t, NewSyntaxError(t)
	}
	return t, nil
}

// Run executes the root expression in c, records every outcome in c's result
// set and resolves the set into a tree.
func (p *Parser) Run(c *Context) *tree.Tree {
	out := p.root(c, State{Pos: c.start})
	for _, o := range out {
		var t *tree.Tree
		if o.Link != nil {
			t = c.value(c.start, o)
		}
		c.Record(o.Pos, t)
	}
	p.log.Debugf("%s: %d outcome(s), head at %d of %d", c.src.URN, len(out), c.head, c.length)
	return Resolve(c, len(out) > 0)
}

// Resolve turns the state of c after running a root expression into a tree.
// ok reports whether the root expression succeeded.
func Resolve(c *Context, ok bool) *tree.Tree {
	if !ok {
		return tree.New(tree.TagError, c.src, c.head, c.length, nil)
	}
	switch len(c.results) {
	case 0:
		return tree.New("", c.src, c.start, c.pos, nil)
	case 1:
		r := c.results[0]
		if r.Tree != nil {
			return r.Tree
		}
		return tree.New("", c.src, c.start, r.End, nil)
	}
	var chain *tree.Link
	for _, r := range c.results {
		t := r.Tree
		if t == nil {
			t = tree.New("", c.src, c.start, r.End, nil)
		}
		chain = tree.Append(chain, "", t)
	}
	return tree.New(tree.TagAmbiguity, c.src, c.start, c.pos, chain)
}
