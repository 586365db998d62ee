package lsp

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/gpeg/gpeg"
	"github.com/dhamidi/gpeg/tree"
)

// diagnostics reports a failed parse as an error at the deepest position
// reached and an ambiguous one as a warning over the ambiguous span. The
// result is never nil so publishing it clears earlier diagnostics.
func diagnostics(t *tree.Tree) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	if t == nil {
		return diags
	}
	switch {
	case t.IsError():
		diags = append(diags, diagnostic(t, protocol.DiagnosticSeverityError, gpeg.NewSyntaxError(t).Message()))
	case t.IsAmbiguity():
		diags = append(diags, diagnostic(t, protocol.DiagnosticSeverityWarning, fmt.Sprintf("ambiguous: %d parses", t.Child.Len())))
	}
	return diags
}

func diagnostic(t *tree.Tree, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	source := lsName
	return protocol.Diagnostic{
		Range:    span(t),
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// span converts the byte span of t to an LSP range. Columns are byte based.
func span(t *tree.Tree) protocol.Range {
	return protocol.Range{
		Start: position(t, t.Start),
		End:   position(t, t.End),
	}
}

func position(t *tree.Tree, offset int) protocol.Position {
	if t.Source == nil {
		return protocol.Position{}
	}
	pos := t.Source.Position(offset)
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(pos.Column - 1),
	}
}

// hoverText describes the nodes enclosing offset, outermost first, followed
// by the text of the innermost one.
func hoverText(t *tree.Tree, offset int) string {
	if t.IsError() {
		return ""
	}
	var tags []string
	var inner *tree.Tree
	for _, n := range t.Path(offset) {
		if n.Tag == "" {
			continue
		}
		tags = append(tags, n.Tag)
		inner = n
	}
	if inner == nil {
		return ""
	}
	return strings.Join(tags, " > ") + "\n" + tree.Quote(inner.Text())
}
