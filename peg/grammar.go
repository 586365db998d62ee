package peg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRule is returned when a rule name is not defined in a grammar.
var ErrUnknownRule = errors.New("unknown rule")

// Grammar is a named set of rules with a designated start rule.
// A grammar must not be modified once it has been handed to a compiler.
type Grammar struct {
	Name  string
	rules map[string]Expression
	names []string
	start string
}

// NewGrammar creates an empty grammar.
func NewGrammar(name string) *Grammar {
	return &Grammar{
		Name:  name,
		rules: make(map[string]Expression),
	}
}

// Define sets the body of a rule. The first rule defined becomes the start
// rule unless SetStart says otherwise.
func (g *Grammar) Define(name string, e Expression) {
	if _, ok := g.rules[name]; !ok {
		g.names = append(g.names, name)
	}
	g.rules[name] = e
	if g.start == "" {
		g.start = name
	}
}

// Get returns the body of a rule.
func (g *Grammar) Get(name string) (Expression, bool) {
	e, ok := g.rules[name]
	return e, ok
}

// Has reports whether a rule is defined.
func (g *Grammar) Has(name string) bool {
	_, ok := g.rules[name]
	return ok
}

// Rules returns rule names in definition order.
func (g *Grammar) Rules() []string {
	return append([]string(nil), g.names...)
}

// Start returns the name of the start rule.
func (g *Grammar) Start() string {
	return g.start
}

// SetStart selects the start rule.
func (g *Grammar) SetStart(name string) error {
	if !g.Has(name) {
		return fmt.Errorf("start %q: %w", name, ErrUnknownRule)
	}
	g.start = name
	return nil
}

// Ref returns a reference to a rule of g. The rule need not be defined yet.
func (g *Grammar) Ref(name string) *Ref {
	return &Ref{Name: name, Grammar: g}
}

// StartRef returns a reference to the start rule.
func (g *Grammar) StartRef() (*Ref, error) {
	if g.start == "" {
		return nil, fmt.Errorf("grammar %q has no rules: %w", g.Name, ErrUnknownRule)
	}
	return g.Ref(g.start), nil
}

// Missing lists names referenced by some rule but never defined, in order of
// first appearance.
func (g *Grammar) Missing() []string {
	seen := make(map[string]bool)
	var missing []string
	for _, name := range g.names {
		Inspect(g.rules[name], func(e Expression) bool {
			if r, ok := e.(*Ref); ok && r.Grammar == g && !g.Has(r.Name) && !seen[r.Name] {
				seen[r.Name] = true
				missing = append(missing, r.Name)
			}
			return true
		})
	}
	return missing
}

// String lists the rules in PEG notation.
func (g *Grammar) String() string {
	var sb strings.Builder
	for _, name := range g.names {
		fmt.Fprintf(&sb, "%s = %s\n", name, g.rules[name])
	}
	return sb.String()
}

// Inspect walks e depth first, calling fn for every sub-expression. It does
// not follow Refs. Returning false from fn skips the children.
func Inspect(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case Seq:
		for _, sub := range e {
			Inspect(sub, fn)
		}
	case Ore:
		for _, sub := range e {
			Inspect(sub, fn)
		}
	case Alt:
		for _, sub := range e {
			Inspect(sub, fn)
		}
	case Not:
		Inspect(e.Inner, fn)
	case And:
		Inspect(e.Inner, fn)
	case Many:
		Inspect(e.Inner, fn)
	case Many1:
		Inspect(e.Inner, fn)
	case TreeAs:
		Inspect(e.Inner, fn)
	case LinkAs:
		Inspect(e.Inner, fn)
	case FoldAs:
		Inspect(e.Inner, fn)
	case Detree:
		Inspect(e.Inner, fn)
	}
}
