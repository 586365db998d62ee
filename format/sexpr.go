package format

import (
	"io"
	"strings"

	"github.com/dhamidi/gpeg/tree"
)

// SExprEncoder writes one node per line, children indented below their
// parent:
//
//	[#Add
//	  left=[#Num '1']
//	  right=[#Num '2']]
type SExprEncoder struct {
	w      io.Writer
	Indent string
}

func NewSExprEncoder(w io.Writer) *SExprEncoder {
	return &SExprEncoder{w: w, Indent: "  "}
}

func (e *SExprEncoder) Encode(t *tree.Tree) error {
	text, err := e.MarshalText(t)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *SExprEncoder) MarshalText(t *tree.Tree) ([]byte, error) {
	var sb strings.Builder
	e.write(&sb, t, "", 0)
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

func (e *SExprEncoder) write(sb *strings.Builder, t *tree.Tree, label string, depth int) {
	sb.WriteString(strings.Repeat(e.Indent, depth))
	if label != "" {
		sb.WriteString(label)
		sb.WriteByte('=')
	}
	sb.WriteString("[#")
	sb.WriteString(t.Tag)
	if t.IsLeaf() {
		sb.WriteByte(' ')
		sb.WriteString(tree.Quote(t.Text()))
		sb.WriteByte(']')
		return
	}
	for _, l := range t.Children() {
		sb.WriteByte('\n')
		e.write(sb, l.Tree, l.Label, depth+1)
	}
	sb.WriteByte(']')
}
