package gpeg

import (
	"github.com/dhamidi/gpeg/source"
	"github.com/dhamidi/gpeg/tree"
)

// State is one in-flight parse: the cursor and the sibling chain built so
// far for the node under construction.
type State struct {
	Pos  int
	Link *tree.Link
}

// Result is an entry of a Context's result set.
type Result struct {
	End  int
	Tree *tree.Tree // nil when the parse built no tree
}

// Context holds the per-call state of a parse. A Context must not be shared
// between parse calls.
type Context struct {
	src     *source.Source
	input   []byte
	length  int
	start   int
	pos     int
	head    int
	results []Result
}

// NewContext creates a context over src with the cursor at start. start is
// clamped to the input.
func NewContext(src *source.Source, start int) *Context {
	start = max(0, min(start, src.Len()))
	return &Context{
		src:    src,
		input:  src.Bytes,
		length: src.Len(),
		start:  start,
		pos:    start,
		head:   start,
	}
}

// Source returns the input of the parse.
func (c *Context) Source() *source.Source { return c.src }

// Len returns the length of the input in bytes.
func (c *Context) Len() int { return c.length }

// Start returns the position the parse started at.
func (c *Context) Start() int { return c.start }

// Pos returns the final cursor position: the furthest end position of a
// completed parse, or the start position before one has completed.
func (c *Context) Pos() int { return c.pos }

// Head returns the deepest position at which input was examined.
func (c *Context) Head() int { return c.head }

// Results returns the result set in insertion order.
func (c *Context) Results() []Result {
	return append([]Result(nil), c.results...)
}

// Record stores t as the result ending at end. A later result with the same
// end position replaces the earlier one but keeps its place in the order.
func (c *Context) Record(end int, t *tree.Tree) {
	for i := range c.results {
		if c.results[i].End == end {
			c.results[i].Tree = t
			return
		}
	}
	c.results = append(c.results, Result{End: end, Tree: t})
	if end > c.pos {
		c.pos = end
	}
}

// reach records pos as visited. Every closure reports the position it is
// entered at, so head never trails a cursor position of the current call.
func (c *Context) reach(pos int) {
	if pos > c.head {
		c.head = pos
	}
}

// value turns the chain of o, built from start, into a single tree. A chain
// holding one unlabeled tree yields that tree, an empty chain a leaf over the
// matched span, and anything else an untagged node over the chain.
func (c *Context) value(start int, o State) *tree.Tree {
	switch {
	case o.Link == nil:
		return tree.New("", c.src, start, o.Pos, nil)
	case o.Link.Prev == nil && o.Link.Label == "":
		return o.Link.Tree
	default:
		return tree.New("", c.src, start, o.Pos, o.Link)
	}
}

// merge adds s to out. An outcome with the same end position is replaced,
// the last writer wins.
func merge(out []State, s State) []State {
	for i := range out {
		if out[i].Pos == s.Pos {
			out[i] = s
			return out
		}
	}
	return append(out, s)
}
