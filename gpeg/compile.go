package gpeg

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/gpeg/peg"
	"github.com/dhamidi/gpeg/tree"
)

// ErrMissingRule is reported when a grammar refers to a rule it does not
// define.
var ErrMissingRule = errors.New("missing rule")

// Func is a compiled expression. It returns every state the expression can
// end in when started from s; no states means the expression failed. A Func
// keeps no state of its own and may be called concurrently with distinct
// Contexts.
type Func func(c *Context, s State) []State

// CompileOption configures a Compiler.
type CompileOption func(*Compiler)

// WithLogger sets the logger compilation diagnostics are written to.
func WithLogger(log commonlog.Logger) CompileOption {
	return func(c *Compiler) {
		c.log = log
	}
}

// Compiler is one compilation pass. All expressions compiled by the same
// Compiler share its memo table, so a rule reached from several of them is
// compiled once.
type Compiler struct {
	memo    *memoTable
	log     commonlog.Logger
	missing []string
}

// NewCompiler starts a compilation pass.
func NewCompiler(opts ...CompileOption) *Compiler {
	c := &Compiler{
		memo: newMemoTable(),
		log:  commonlog.GetLogger("gpeg.compile"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles e in a fresh compilation pass.
func Compile(e peg.Expression) Func {
	return NewCompiler().Compile(e)
}

// Compile returns the closure for e.
func (c *Compiler) Compile(e peg.Expression) Func {
	return c.compile(e)
}

// Rules returns the number of rule bodies compiled so far. Each rule is
// compiled at most once per Compiler.
func (c *Compiler) Rules() int {
	return c.memo.compiled
}

// Missing returns the names of referenced rules that were not defined.
func (c *Compiler) Missing() []string {
	return append([]string(nil), c.missing...)
}

func (c *Compiler) compile(e peg.Expression) Func {
	switch e := e.(type) {
	case peg.Empty:
		return emitEmpty()
	case peg.Any:
		return emitAny()
	case peg.Byte:
		return emitByte(e.Value)
	case peg.Range:
		return emitRange(e)
	case peg.Seq:
		return emitSeq(c.compileAll(e))
	case peg.Ore:
		return emitOre(c.compileAll(e))
	case peg.Alt:
		return emitAlt(c.compileAll(e))
	case peg.Not:
		return emitNot(c.compile(e.Inner))
	case peg.And:
		return emitAnd(c.compile(e.Inner))
	case peg.Many:
		return emitMany(c.compile(e.Inner))
	case peg.Many1:
		return emitMany1(c.compile(e.Inner))
	case peg.TreeAs:
		return emitTreeAs(e.Tag, c.compile(e.Inner))
	case peg.LinkAs:
		return emitLinkAs(e.Label, c.compile(e.Inner))
	case peg.FoldAs:
		return emitFoldAs(e.Label, e.Tag, c.compile(e.Inner))
	case peg.Detree:
		return emitDetree(c.compile(e.Inner))
	case *peg.Ref:
		return c.ref(e)
	default:
		panic(fmt.Sprintf("gpeg: cannot compile expression of type %T", e))
	}
}

func (c *Compiler) compileAll(es []peg.Expression) []Func {
	fs := make([]Func, len(es))
	for i, e := range es {
		fs[i] = c.compile(e)
	}
	return fs
}

// ref compiles a rule reference. The memo slot is installed before the body
// is compiled so references to the rule from inside its own body resolve to
// the slot instead of recursing.
func (c *Compiler) ref(r *peg.Ref) Func {
	key := ruleKey{grammar: r.Grammar, name: r.Name}
	if fn, ok := c.memo.lookup(key); ok {
		return fn
	}
	cl := c.memo.install(key)
	body, ok := r.Resolve()
	if !ok {
		c.log.Warningf("rule %q is not defined", r.Name)
		c.missing = append(c.missing, r.Name)
		cl.fn = emitFail()
		return cl.fn
	}
	fn := c.compile(body)
	c.memo.patch(cl, fn)
	c.log.Debugf("compiled rule %s", r.Name)
	return fn
}

func emitFail() Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		return nil
	}
}

func emitEmpty() Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		return []State{s}
	}
}

func emitAny() Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		if s.Pos >= c.length {
			return nil
		}
		leaf := tree.New(tree.TagAny, c.src, s.Pos, s.Pos+1, nil)
		return []State{{Pos: s.Pos + 1, Link: tree.Append(s.Link, "", leaf)}}
	}
}

func emitByte(b byte) Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		if s.Pos < c.length && c.input[s.Pos] == b {
			return []State{{Pos: s.Pos + 1, Link: s.Link}}
		}
		return nil
	}
}

// byteSet is a 256-bit membership table.
type byteSet [4]uint64

func (bs *byteSet) add(lo, hi byte) {
	for b := int(lo); b <= int(hi); b++ {
		bs[b>>6] |= 1 << (uint(b) & 63)
	}
}

func (bs *byteSet) has(b byte) bool {
	return bs[b>>6]&(1<<(uint(b)&63)) != 0
}

func emitRange(r peg.Range) Func {
	var set byteSet
	for _, bd := range r.Bounds {
		set.add(bd.Lo, bd.Hi)
	}
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		if s.Pos < c.length && set.has(c.input[s.Pos]) {
			return []State{{Pos: s.Pos + 1, Link: s.Link}}
		}
		return nil
	}
}

func emitSeq(fs []Func) Func {
	switch len(fs) {
	case 0:
		return emitEmpty()
	case 1:
		return fs[0]
	}
	return func(c *Context, s State) []State {
		states := []State{s}
		for _, f := range fs {
			var next []State
			for _, st := range states {
				c.reach(st.Pos)
			}
			if len(states) == 1 {
				next = f(c, states[0])
			} else {
				for _, st := range states {
					for _, o := range f(c, st) {
						next = merge(next, o)
					}
				}
			}
			if len(next) == 0 {
				return nil
			}
			states = next
		}
		return states
	}
}

func emitOre(fs []Func) Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		for _, f := range fs {
			if out := f(c, s); len(out) > 0 {
				return out
			}
		}
		return nil
	}
}

// emitAlt tries every alternative from the same state and keeps every
// outcome.
func emitAlt(fs []Func) Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		var out []State
		for _, f := range fs {
			for _, o := range f(c, s) {
				out = merge(out, o)
			}
		}
		return out
	}
}

func emitNot(f Func) Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		if len(f(c, s)) == 0 {
			return []State{s}
		}
		return nil
	}
}

func emitAnd(f Func) Func {
	return func(c *Context, s State) []State {
		c.reach(s.Pos)
		if len(f(c, s)) > 0 {
			return []State{s}
		}
		return nil
	}
}

func emitMany(f Func) Func {
	return func(c *Context, s State) []State {
		return repeat(c, f, []State{s}, nil)
	}
}

func emitMany1(f Func) Func {
	return func(c *Context, s State) []State {
		first := f(c, s)
		if len(first) == 0 {
			return nil
		}
		var frontier, done []State
		for _, o := range first {
			if o.Pos == s.Pos {
				done = merge(done, o)
			} else {
				frontier = merge(frontier, o)
			}
		}
		return repeat(c, f, frontier, done)
	}
}

// repeat applies f to every frontier state until each branch stops. A branch
// stops when f fails, keeping the state it was in, or when f succeeds without
// consuming input, keeping that outcome. Every other outcome moves forward,
// so the loop ends after at most len(input) rounds.
func repeat(c *Context, f Func, frontier, done []State) []State {
	for len(frontier) > 0 {
		var next []State
		for _, st := range frontier {
			c.reach(st.Pos)
			out := f(c, st)
			if len(out) == 0 {
				done = merge(done, st)
				continue
			}
			for _, o := range out {
				if o.Pos == st.Pos {
					done = merge(done, o)
				} else {
					next = merge(next, o)
				}
			}
		}
		frontier = next
	}
	return done
}

func emitTreeAs(tag string, f Func) Func {
	return func(c *Context, s State) []State {
		out := f(c, State{Pos: s.Pos})
		for i, o := range out {
			node := tree.New(tag, c.src, s.Pos, o.Pos, o.Link)
			out[i] = State{Pos: o.Pos, Link: tree.Append(s.Link, "", node)}
		}
		return out
	}
}

func emitLinkAs(label string, f Func) Func {
	return func(c *Context, s State) []State {
		out := f(c, State{Pos: s.Pos})
		for i, o := range out {
			out[i] = State{Pos: o.Pos, Link: tree.Append(s.Link, label, c.value(s.Pos, o))}
		}
		return out
	}
}

// emitFoldAs makes the tree built so far the left operand of a new node.
func emitFoldAs(label, tag string, f Func) Func {
	return func(c *Context, s State) []State {
		start := s.Pos
		var inner *tree.Link
		if s.Link != nil {
			first := s.Link.First().Tree
			left := c.value(first.Start, s)
			start = left.Start
			inner = tree.Append(nil, label, left)
		}
		out := f(c, State{Pos: s.Pos, Link: inner})
		for i, o := range out {
			node := tree.New(tag, c.src, start, o.Pos, o.Link)
			out[i] = State{Pos: o.Pos, Link: tree.Append(nil, "", node)}
		}
		return out
	}
}

func emitDetree(f Func) Func {
	return func(c *Context, s State) []State {
		out := f(c, s)
		for i := range out {
			out[i].Link = s.Link
		}
		return out
	}
}
