package gpeg

import (
	"fmt"

	"github.com/dhamidi/gpeg/source"
	"github.com/dhamidi/gpeg/tree"
)

// SyntaxError reports a failed parse at the deepest position reached.
type SyntaxError struct {
	Pos  source.Position
	Tree *tree.Tree
}

// NewSyntaxError describes the error tree t.
func NewSyntaxError(t *tree.Tree) *SyntaxError {
	e := &SyntaxError{Tree: t}
	if t.Source != nil {
		e.Pos = t.Source.Position(t.Start)
	}
	return e
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message())
}

// Message describes the error without its position.
func (e *SyntaxError) Message() string {
	if e.Tree.Start >= e.Tree.End {
		return "syntax error: unexpected end of input"
	}
	return "syntax error: unexpected " + tree.Quote(snippet(e.Tree.Text()))
}

// snippet cuts s at the first line break or after 16 bytes.
func snippet(s string) string {
	for i := 0; i < len(s); i++ {
		if (s[i] == '\n' && i > 0) || i == 16 {
			return s[:i]
		}
	}
	return s
}
