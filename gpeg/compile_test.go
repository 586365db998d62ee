package gpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gpeg/peg"
	"github.com/dhamidi/gpeg/source"
	"github.com/dhamidi/gpeg/tree"
)

// calculator folds + and * left-associatively, * binding tighter.
func calculator() *peg.Grammar {
	g := peg.NewGrammar("calc")
	g.Define("Start", peg.Seq{g.Ref("Expr"), peg.EOF()})
	g.Define("Expr", peg.Seq{
		g.Ref("Term"),
		peg.Many{peg.FoldAs{"left", "Add", peg.Seq{peg.Byte{'+'}, peg.LinkAs{"right", g.Ref("Term")}}}},
	})
	g.Define("Term", peg.Seq{
		g.Ref("Factor"),
		peg.Many{peg.FoldAs{"left", "Mul", peg.Seq{peg.Byte{'*'}, peg.LinkAs{"right", g.Ref("Factor")}}}},
	})
	g.Define("Factor", peg.Ore{
		g.Ref("Num"),
		peg.Seq{peg.Byte{'('}, g.Ref("Expr"), peg.Byte{')'}},
	})
	g.Define("Num", peg.TreeAs{"Num", peg.Many1{peg.MustClass("0-9")}})
	return g
}

func TestCompile_Trees(t *testing.T) {
	p, err := New(calculator())
	require.NoError(t, err)

	tests := []struct {
		input string
		want  string
	}{
		{"7", "[#Num '7']"},
		{"1+2+3", "[#Add left=[#Add left=[#Num '1'] right=[#Num '2']] right=[#Num '3']]"},
		{"1+2*3", "[#Add left=[#Num '1'] right=[#Mul left=[#Num '2'] right=[#Num '3']]]"},
		{"(1+2)*3", "[#Mul left=[#Add left=[#Num '1'] right=[#Num '2']] right=[#Num '3']]"},
		{"1+", "[#err '']"},
		{"1+x", "[#err 'x']"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ParseString(tt.input).String())
		})
	}
}

func TestCompile_FoldSpan(t *testing.T) {
	p, err := New(calculator())
	require.NoError(t, err)

	got := p.ParseString("12+3")

	assert.Equal(t, "Add", got.Tag)
	assert.Equal(t, 0, got.Start)
	assert.Equal(t, 4, got.End)
	assert.Equal(t, "12", got.Get("left").Text())
	assert.Equal(t, "3", got.Get("right").Text())
}

func TestCompile_TreeConstruction(t *testing.T) {
	a := peg.Byte{'a'}
	tests := []struct {
		name  string
		expr  peg.Expression
		input string
		want  string
	}{
		{"tree", peg.TreeAs{"A", peg.Many{a}}, "aa", "[#A 'aa']"},
		{"nested", peg.TreeAs{"P", peg.Seq{peg.TreeAs{"A", a}, peg.TreeAs{"B", peg.Byte{'b'}}}}, "ab", "[#P [#A 'a'] [#B 'b']]"},
		{"link", peg.TreeAs{"P", peg.LinkAs{"x", a}}, "a", "[#P x=[# 'a']]"},
		{"link tree", peg.TreeAs{"P", peg.LinkAs{"x", peg.TreeAs{"A", a}}}, "a", "[#P x=[#A 'a']]"},
		{"link siblings", peg.TreeAs{"P", peg.LinkAs{"x", peg.Seq{peg.TreeAs{"A", a}, peg.TreeAs{"B", a}}}}, "aa", "[#P x=[# [#A 'a'] [#B 'a']]]"},
		{"detree", peg.TreeAs{"P", peg.Detree{peg.TreeAs{"A", a}}}, "a", "[#P 'a']"},
		{"fold nothing", peg.FoldAs{"left", "F", a}, "a", "[#F 'a']"},
		{"any marker", peg.TreeAs{"P", peg.Many{peg.Any{}}}, "ab", "[#P [#Any 'a'] [#Any 'b']]"},
		{"siblings at root", peg.Seq{peg.TreeAs{"A", a}, peg.TreeAs{"B", a}}, "aa", "[# [#A 'a'] [#B 'a']]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(tt.expr, tt.input).String())
		})
	}
}

func TestCompile_RecursiveRulesCompileOnce(t *testing.T) {
	g := peg.NewGrammar("parens")
	g.Define("S", peg.Ore{peg.Seq{peg.Byte{'('}, g.Ref("S"), peg.Byte{')'}}, peg.Empty{}})

	c := NewCompiler()
	f := c.Compile(g.Ref("S"))

	assert.Equal(t, 1, c.Rules())
	assert.Equal(t, 6, MakeParser(f).ParseString("((()))").End)
	assert.Equal(t, 0, MakeParser(f).ParseString("(()").End)
}

func TestCompile_MutualRecursion(t *testing.T) {
	g := calculator()
	c := NewCompiler()

	root := c.Compile(g.Ref("Start"))
	again := c.Compile(g.Ref("Expr"))

	assert.Equal(t, 5, c.Rules())
	assert.Empty(t, c.Missing())
	assert.NotNil(t, root)
	assert.NotNil(t, again)
}

func TestCompile_FreshMemoPerPass(t *testing.T) {
	g := calculator()
	first := NewCompiler()
	first.Compile(g.Ref("Num"))
	second := NewCompiler()
	second.Compile(g.Ref("Num"))

	assert.Equal(t, 1, first.Rules())
	assert.Equal(t, 1, second.Rules())
	assert.NotSame(t, first.memo, second.memo)
}

func TestCompile_MissingRuleFails(t *testing.T) {
	g := peg.NewGrammar("g")
	c := NewCompiler()

	f := c.Compile(peg.Ore{g.Ref("Nope"), peg.Byte{'a'}})

	assert.Equal(t, []string{"Nope"}, c.Missing())
	assert.Equal(t, 1, MakeParser(f).ParseString("a").End)
}

func TestCompile_UnknownExpressionPanics(t *testing.T) {
	assert.Panics(t, func() { Compile(nil) })
}

func TestMany_StopsAfterOneZeroWidthSuccess(t *testing.T) {
	calls := 0
	zeroWidth := func(c *Context, s State) []State {
		calls++
		return []State{s}
	}
	c := NewContext(source.FromString("", "abc"), 0)

	out := emitMany(zeroWidth)(c, State{})

	assert.Equal(t, 1, calls)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Pos)

	calls = 0
	out = emitMany1(zeroWidth)(c, State{Pos: 1})
	assert.Equal(t, 1, calls)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Pos)
}

func TestMany_Terminates(t *testing.T) {
	tests := []struct {
		name  string
		expr  peg.Expression
		input string
		end   int
	}{
		{"empty body", peg.Many{peg.Empty{}}, "abc", 0},
		{"nested many", peg.Many{peg.Many{peg.Byte{'a'}}}, "aab", 2},
		{"optional body", peg.Many{peg.Opt(peg.Byte{'a'})}, "aab", 2},
		{"lookahead body", peg.Many1{peg.And{peg.Any{}}}, "a", 0},
		{"many1 fails", peg.Many1{peg.Byte{'b'}}, "a", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parse(tt.expr, tt.input)
			if tt.end < 0 {
				assert.True(t, got.IsError())
				return
			}
			assert.Equal(t, tt.end, got.End)
		})
	}
}

// Failing expressions must leave the caller's cursor untouched: the next
// alternative of a choice starts where the failed one did. Successful ones
// may only move the cursor forward.
func TestCompile_Rollback(t *testing.T) {
	exprs := []peg.Expression{
		peg.Str("ab"),
		peg.Str("abb"),
		peg.Seq{peg.Many{peg.Byte{'a'}}, peg.Byte{'b'}},
		peg.Ore{peg.Str("ba"), peg.Str("bb")},
		peg.Alt{peg.Byte{'a'}, peg.Str("ab"), peg.Str("aab")},
		peg.Many1{peg.Str("ab")},
		peg.Not{peg.Byte{'a'}},
		peg.And{peg.Str("ba")},
		peg.TreeAs{"T", peg.Seq{peg.Any{}, peg.Byte{'b'}}},
		peg.FoldAs{"l", "F", peg.Str("bb")},
	}
	inputs := allStrings("ab", 4)
	for _, e := range exprs {
		f := Compile(e)
		orEmpty := Compile(peg.Ore{e, peg.Empty{}})
		for _, in := range inputs {
			for start := 0; start <= len(in); start++ {
				c := NewContext(source.FromString("", in), start)
				s := State{Pos: start}
				out := f(c, s)
				if len(out) == 0 {
					resumed := orEmpty(NewContext(source.FromString("", in), start), s)
					assert.Equal(t, []State{s}, resumed, "%s on %q@%d", e, in, start)
					assert.Empty(t, c.Results())
				}
				for _, o := range out {
					assert.GreaterOrEqual(t, o.Pos, start, "%s on %q@%d", e, in, start)
					assert.LessOrEqual(t, o.Pos, len(in))
				}
				assert.GreaterOrEqual(t, c.Head(), start)
				assert.LessOrEqual(t, c.Head(), len(in))
			}
		}
	}
}

// The spans of the elements of a successful sequence are adjacent and cover
// the sequence's own span.
func TestCompile_SequenceSpansConcatenate(t *testing.T) {
	parts := []peg.Expression{
		peg.Empty{},
		peg.Byte{'a'},
		peg.Many{peg.Byte{'a'}},
		peg.Many1{peg.Byte{'b'}},
		peg.Ore{peg.Str("ab"), peg.Byte{'b'}},
		peg.And{peg.Byte{'a'}},
	}
	inputs := allStrings("ab", 4)
	for _, x := range parts {
		for _, y := range parts {
			p := MakeParser(Compile(peg.Seq{peg.TreeAs{"X", x}, peg.TreeAs{"Y", y}}))
			for _, in := range inputs {
				got := p.ParseString(in)
				if got.IsError() {
					continue
				}
				children := got.Children()
				require.Len(t, children, 2, "%s %s on %q", x, y, in)
				xs, ys := children[0].Tree, children[1].Tree
				assert.Equal(t, got.Start, xs.Start)
				assert.Equal(t, xs.End, ys.Start)
				assert.Equal(t, ys.End, got.End)
			}
		}
	}
}

func TestRange(t *testing.T) {
	f := Compile(peg.Range{Bounds: []peg.Bound{{'a', 'c'}, {'x', 'x'}, {0xf0, 0xff}}})
	for b := 0; b < 256; b++ {
		c := NewContext(source.New("", []byte{byte(b)}), 0)
		want := ('a' <= b && b <= 'c') || b == 'x' || b >= 0xf0
		assert.Equal(t, want, len(f(c, State{})) == 1, "byte %#x", b)
	}
}

func TestAny_EndOfInput(t *testing.T) {
	c := NewContext(source.FromString("", "a"), 1)

	out := Compile(peg.Any{})(c, State{Pos: 1})

	assert.Empty(t, out)
	assert.Equal(t, 1, c.Head())
}

func TestTreeSource(t *testing.T) {
	got := parse(peg.TreeAs{"A", peg.Byte{'a'}}, "a", WithSource("x"))
	var seen []*tree.Tree
	got.Walk(func(n *tree.Tree, depth int) bool {
		seen = append(seen, n)
		return true
	})
	for _, n := range seen {
		assert.Equal(t, "x", n.Source.URN)
	}
}

func allStrings(alphabet string, maxLen int) []string {
	out := []string{""}
	level := []string{""}
	for n := 1; n <= maxLen; n++ {
		var next []string
		for _, s := range level {
			for i := 0; i < len(alphabet); i++ {
				next = append(next, s+alphabet[i:i+1])
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}
