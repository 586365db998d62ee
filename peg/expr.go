// Package peg defines parsing expressions and grammars.
//
// Expressions form an immutable graph. Cycles are only possible through Ref,
// which names a rule of a Grammar instead of pointing at its body, so the graph
// can be built before every rule is defined.
package peg

// Expression is a parsing expression. The set of implementations is closed;
// a compiler can switch over them exhaustively.
type Expression interface {
	String() string
	expression()
}

// Empty matches without consuming input.
type Empty struct{}

// Any matches a single byte.
type Any struct{}

// Byte matches one byte equal to Value.
type Byte struct {
	Value byte
}

// Bound is an inclusive byte range.
type Bound struct {
	Lo, Hi byte
}

// Range matches one byte that falls within any of its bounds.
type Range struct {
	Bounds []Bound
}

// Contains reports whether b lies within one of the bounds.
func (r Range) Contains(b byte) bool {
	for _, bd := range r.Bounds {
		if bd.Lo <= b && b <= bd.Hi {
			return true
		}
	}
	return false
}

// Seq matches its elements one after another.
type Seq []Expression

// Ore is ordered choice: the first alternative that matches wins.
type Ore []Expression

// Alt is ambiguity-preserving choice: every matching alternative is kept.
type Alt []Expression

// Not succeeds iff Inner fails. It never consumes input.
type Not struct {
	Inner Expression
}

// And succeeds iff Inner succeeds. It never consumes input.
type And struct {
	Inner Expression
}

// Many matches Inner zero or more times.
type Many struct {
	Inner Expression
}

// Many1 matches Inner one or more times.
type Many1 struct {
	Inner Expression
}

// TreeAs builds a new node tagged Tag from what Inner matched.
type TreeAs struct {
	Tag   string
	Inner Expression
}

// LinkAs adds the value of Inner to the enclosing node under Label.
type LinkAs struct {
	Label string
	Inner Expression
}

// FoldAs turns the tree built so far into the Label child of a new node
// tagged Tag whose remaining children come from Inner.
type FoldAs struct {
	Label string
	Tag   string
	Inner Expression
}

// Detree matches Inner but drops the trees it builds.
type Detree struct {
	Inner Expression
}

// Ref refers to the rule Name of Grammar.
type Ref struct {
	Name    string
	Grammar *Grammar
}

// Resolve returns the body of the referenced rule.
func (r *Ref) Resolve() (Expression, bool) {
	if r.Grammar == nil {
		return nil, false
	}
	return r.Grammar.Get(r.Name)
}

func (Empty) expression()  {}
func (Any) expression()    {}
func (Byte) expression()   {}
func (Range) expression()  {}
func (Seq) expression()    {}
func (Ore) expression()    {}
func (Alt) expression()    {}
func (Not) expression()    {}
func (And) expression()    {}
func (Many) expression()   {}
func (Many1) expression()  {}
func (TreeAs) expression() {}
func (LinkAs) expression() {}
func (FoldAs) expression() {}
func (Detree) expression() {}
func (*Ref) expression()   {}
