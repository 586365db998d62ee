// Package tree defines the parse trees produced by compiled grammars.
//
// A Tree covers a byte span of its Source. Its children form a sibling chain
// of Links stored newest first, so appending a child while parsing is a single
// allocation that never disturbs chains shared with other backtracking paths.
package tree

import (
	"strings"

	"github.com/dhamidi/gpeg/source"
)

// Well-known tags.
const (
	TagError     = "err"
	TagAmbiguity = "Ambiguity"
	TagAny       = "Any"
)

// Tree is a node of a parse tree.
type Tree struct {
	Tag    string
	Source *source.Source
	Start  int
	End    int
	Child  *Link // nil for leaves
}

// Link is one entry in a sibling chain. Prev points at the previously
// appended sibling.
type Link struct {
	Label string
	Tree  *Tree
	Prev  *Link
}

// New creates a tree node.
func New(tag string, src *source.Source, start, end int, child *Link) *Tree {
	return &Tree{Tag: tag, Source: src, Start: start, End: end, Child: child}
}

// Append returns a chain with t added after prev under label.
func Append(prev *Link, label string, t *Tree) *Link {
	return &Link{Label: label, Tree: t, Prev: prev}
}

// Len returns the number of links in the chain.
func (l *Link) Len() int {
	n := 0
	for ; l != nil; l = l.Prev {
		n++
	}
	return n
}

// Slice returns the chain in the order the links were appended.
func (l *Link) Slice() []*Link {
	out := make([]*Link, l.Len())
	for i := len(out) - 1; l != nil; l = l.Prev {
		out[i] = l
		i--
	}
	return out
}

// First returns the oldest link of the chain.
func (l *Link) First() *Link {
	for l != nil && l.Prev != nil {
		l = l.Prev
	}
	return l
}

// IsError reports whether t is the error tree of a failed parse.
func (t *Tree) IsError() bool {
	return t != nil && t.Tag == TagError
}

// IsAmbiguity reports whether t holds several alternative parses.
func (t *Tree) IsAmbiguity() bool {
	return t != nil && t.Tag == TagAmbiguity
}

// IsLeaf reports whether t has no children.
func (t *Tree) IsLeaf() bool {
	return t.Child == nil
}

// Bytes returns the input covered by t.
func (t *Tree) Bytes() []byte {
	if t.Source == nil {
		return nil
	}
	return t.Source.Slice(t.Start, t.End)
}

// Text returns the input covered by t as a string.
func (t *Tree) Text() string {
	return string(t.Bytes())
}

// Children returns the child links in input order.
func (t *Tree) Children() []*Link {
	return t.Child.Slice()
}

// Get returns the first child linked under label, or nil.
func (t *Tree) Get(label string) *Tree {
	var found *Tree
	for l := t.Child; l != nil; l = l.Prev {
		if l.Label == label {
			found = l.Tree
		}
	}
	return found
}

// Walk visits t and its descendants depth first in input order. Returning
// false from fn skips the children of the visited node.
func (t *Tree) Walk(fn func(t *Tree, depth int) bool) {
	t.walk(fn, 0)
}

func (t *Tree) walk(fn func(t *Tree, depth int) bool, depth int) {
	if t == nil || !fn(t, depth) {
		return
	}
	for _, l := range t.Children() {
		l.Tree.walk(fn, depth+1)
	}
}

// Path returns the nodes whose span contains offset, outermost first.
// Empty spans match only their own offset.
func (t *Tree) Path(offset int) []*Tree {
	var path []*Tree
	t.Walk(func(n *Tree, depth int) bool {
		if !n.contains(offset) {
			return false
		}
		path = append(path, n)
		return true
	})
	return path
}

func (t *Tree) contains(offset int) bool {
	if t.Start == t.End {
		return offset == t.Start
	}
	return t.Start <= offset && offset < t.End
}

// String renders t as an S-expression on one line, e.g.
// [#Add left=[#Num '1'] right=[#Num '2']].
func (t *Tree) String() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t *Tree) writeTo(sb *strings.Builder) {
	if t == nil {
		sb.WriteString("nil")
		return
	}
	sb.WriteString("[#")
	sb.WriteString(t.Tag)
	if t.Child == nil {
		sb.WriteString(" ")
		sb.WriteString(Quote(t.Text()))
	}
	for _, l := range t.Children() {
		sb.WriteString(" ")
		if l.Label != "" {
			sb.WriteString(l.Label)
			sb.WriteString("=")
		}
		l.Tree.writeTo(sb)
	}
	sb.WriteString("]")
}

// Quote renders s in single quotes, escaping quotes, backslashes and
// control bytes.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c < 0x20 || c == 0x7f:
			sb.WriteString(`\x`)
			sb.WriteByte("0123456789abcdef"[c>>4])
			sb.WriteByte("0123456789abcdef"[c&0xf])
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
