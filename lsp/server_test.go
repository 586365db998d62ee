package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/gpeg/ebnf/grammar"
	"github.com/dhamidi/gpeg/gpeg"
)

const lines = `
Doc = { Line } EOF .
Line = Word { " " Word } "\n" .
word = "a" … "z" { "a" … "z" } .
Word = word .
`

func newTestServer(t *testing.T, opts ...grammar.Option) *Server {
	t.Helper()
	g, err := grammar.Parse("lines", strings.NewReader(lines), opts...)
	require.NoError(t, err)
	p, err := gpeg.New(g)
	require.NoError(t, err)
	return NewServer(p, "test")
}

func TestDiagnostics_SyntaxError(t *testing.T) {
	ls := newTestServer(t)

	doc := ls.update("file:///tmp/doc.txt", "hello world\nbad 42\n")
	diags := diagnostics(doc)

	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, d.Range.End)
	assert.Equal(t, "syntax error: unexpected '42'", d.Message)
	assert.Equal(t, "/tmp/doc.txt", doc.Source.URN)
}

func TestDiagnostics_Clean(t *testing.T) {
	ls := newTestServer(t)

	diags := diagnostics(ls.update("doc", "hello world\n"))

	assert.NotNil(t, diags)
	assert.Empty(t, diags)
	assert.Empty(t, diagnostics(nil))
}

func TestDiagnostics_Ambiguity(t *testing.T) {
	g, err := grammar.Parse("amb", strings.NewReader(`S = "a" | "a" "b" .`), grammar.WithAmbiguity())
	require.NoError(t, err)
	p, err := gpeg.New(g)
	require.NoError(t, err)

	diags := diagnostics(p.ParseString("ab"))

	require.Len(t, diags, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
	assert.Equal(t, "ambiguous: 2 parses", diags[0].Message)
}

func TestHoverText(t *testing.T) {
	ls := newTestServer(t)
	doc := ls.update("doc", "hi there\n")

	assert.Equal(t, "Doc > Line > Word > word\n'there'", hoverText(doc, 4))
	assert.Equal(t, "Doc > Line\n'hi there\\n'", hoverText(doc, 2))
	assert.Same(t, doc, ls.document("doc"))
}

func TestURIToPath(t *testing.T) {
	path, err := uriToPath("file:///home/user/a%20b.txt")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/a b.txt", path)

	path, err = uriToPath("untitled:1")
	require.NoError(t, err)
	assert.Equal(t, "untitled:1", path)
}
