// Package grammar loads EBNF grammars, in the dialect of golang.org/x/exp/ebnf,
// as parsing expression grammars.
//
// EBNF alternatives become ordered choices unless WithAmbiguity is given, in
// which case every alternative is explored. Productions named with an upper
// case letter build a tree node tagged with the production name. Lexical
// productions (lower case) build a leaf without inner structure, and
// productions whose name starts with an underscore build nothing. The names
// ANY and EOF match any byte and the end of input unless the grammar defines
// them itself.
package grammar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/gpeg/peg"
)

// Option configures how a grammar is loaded.
type Option func(*config)

type config struct {
	ambiguous bool
	start     string
}

// WithAmbiguity maps EBNF alternatives to ambiguity-preserving choice.
func WithAmbiguity() Option {
	return func(c *config) {
		c.ambiguous = true
	}
}

// WithStart selects the start production. By default it is the first
// production in the file.
func WithStart(name string) Option {
	return func(c *config) {
		c.start = name
	}
}

// Load reads and converts the grammar in filename.
func Load(filename string, opts ...Option) (*peg.Grammar, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	return parse(filename, data, opts...)
}

// Parse reads an EBNF grammar from r. filename is used in error positions
// and as the grammar name.
func Parse(filename string, r io.Reader, opts ...Option) (*peg.Grammar, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	return parse(filename, data, opts...)
}

func parse(filename string, data []byte, opts ...Option) (*peg.Grammar, error) {
	if err := checkRequires(filename, data); err != nil {
		return nil, err
	}
	eg, err := ebnf.Parse(filename, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return Convert(filename, eg, opts...)
}

// Convert turns a parsed EBNF grammar into a parsing expression grammar.
func Convert(name string, eg ebnf.Grammar, opts ...Option) (*peg.Grammar, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	cv := &converter{
		cfg: cfg,
		eg:  eg,
		g:   peg.NewGrammar(name),
	}
	for _, prod := range productions(eg) {
		cv.production(prod)
	}
	cv.checkUndefined()
	if len(cv.errs) > 0 {
		return nil, cv.errs
	}
	if cfg.start != "" {
		if err := cv.g.SetStart(cfg.start); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return cv.g, nil
}

// productions returns the productions of eg in source order.
func productions(eg ebnf.Grammar) []*ebnf.Production {
	prods := make([]*ebnf.Production, 0, len(eg))
	for _, prod := range eg {
		prods = append(prods, prod)
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Pos().Offset < prods[j].Pos().Offset
	})
	return prods
}

type converter struct {
	cfg  config
	eg   ebnf.Grammar
	g    *peg.Grammar
	refs []*ebnf.Name
	errs ErrorList
}

func (cv *converter) production(prod *ebnf.Production) {
	name := prod.Name.String
	body := cv.expr(prod.Expr)
	switch {
	case strings.HasPrefix(name, "_"):
		body = peg.Detree{Inner: body}
	case isLexical(name):
		body = peg.TreeAs{Tag: name, Inner: peg.Detree{Inner: body}}
	default:
		body = peg.TreeAs{Tag: name, Inner: body}
	}
	cv.g.Define(name, body)
}

func (cv *converter) expr(e ebnf.Expression) peg.Expression {
	switch e := e.(type) {
	case nil:
		return peg.Empty{}
	case ebnf.Alternative:
		alts := cv.exprs(e)
		if cv.cfg.ambiguous {
			return peg.Alt(alts)
		}
		return peg.Ore(alts)
	case ebnf.Sequence:
		return peg.Seq(cv.exprs(e))
	case *ebnf.Group:
		return cv.expr(e.Body)
	case *ebnf.Option:
		return peg.Opt(cv.expr(e.Body))
	case *ebnf.Repetition:
		return peg.Many{Inner: cv.expr(e.Body)}
	case *ebnf.Token:
		return peg.Str(e.String)
	case *ebnf.Range:
		lo, hi := e.Begin.String, e.End.String
		if len(lo) != 1 || len(hi) != 1 {
			cv.errorf(e.Pos().String(), "range %q … %q: bounds must be single bytes", lo, hi)
			return peg.Empty{}
		}
		if hi[0] < lo[0] {
			cv.errorf(e.Pos().String(), "range %q … %q is reversed", lo, hi)
			return peg.Empty{}
		}
		return peg.Range{Bounds: []peg.Bound{{Lo: lo[0], Hi: hi[0]}}}
	case *ebnf.Name:
		if _, ok := cv.eg[e.String]; !ok {
			if b, ok := builtins[e.String]; ok {
				return b
			}
		}
		cv.refs = append(cv.refs, e)
		return cv.g.Ref(e.String)
	case *ebnf.Bad:
		cv.errorf(e.Pos().String(), "%s", e.Error)
		return peg.Empty{}
	default:
		cv.errorf(e.Pos().String(), "unsupported expression %T", e)
		return peg.Empty{}
	}
}

func (cv *converter) exprs(es []ebnf.Expression) []peg.Expression {
	out := make([]peg.Expression, len(es))
	for i, e := range es {
		out[i] = cv.expr(e)
	}
	return out
}

func (cv *converter) checkUndefined() {
	for _, ref := range cv.refs {
		if _, ok := cv.eg[ref.String]; !ok {
			cv.errorf(ref.Pos().String(), "undefined: %s", ref.String)
		}
	}
}

func (cv *converter) errorf(pos, format string, args ...any) {
	cv.errs = append(cv.errs, fmt.Errorf("%s: %s", pos, fmt.Sprintf(format, args...)))
}

var builtins = map[string]peg.Expression{
	"ANY": peg.Any{},
	"EOF": peg.EOF(),
}

// isLexical follows golang.org/x/exp/ebnf: names that do not start with an
// upper case letter are lexical.
func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}
