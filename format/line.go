package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/gpeg/tree"
)

// LineEncoder writes one tab-separated line per node: depth, tag, label,
// start and end offsets, and the quoted text of leaves. Empty fields are "-".
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(t *tree.Tree) error {
	text, err := e.MarshalText(t)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(t *tree.Tree) ([]byte, error) {
	var sb strings.Builder
	e.write(&sb, t, "", 0)
	return []byte(sb.String()), nil
}

func (e *LineEncoder) write(sb *strings.Builder, t *tree.Tree, label string, depth int) {
	text := "-"
	if t.IsLeaf() {
		text = tree.Quote(t.Text())
	}
	fmt.Fprintf(sb, "%d\t%s\t%s\t%d\t%d\t%s\n", depth, dash(t.Tag), dash(label), t.Start, t.End, text)
	for _, l := range t.Children() {
		e.write(sb, l.Tree, l.Label, depth+1)
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
