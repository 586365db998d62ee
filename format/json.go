package format

import (
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/dhamidi/gpeg/tree"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(t *tree.Tree) error {
	text, err := e.MarshalText(t)
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText(t *tree.Tree) ([]byte, error) {
	return json.MarshalIndent(treeToJSON(t, ""), "", "  ")
}

type jsonNode struct {
	Tag      string      `json:"tag"`
	Label    string      `json:"label,omitempty"`
	Span     jsonSpan    `json:"span"`
	Text     *string     `json:"text,omitempty"`
	Bytes    []byte      `json:"bytes,omitempty"` // leaf text that is not valid UTF-8, base64 encoded
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func treeToJSON(t *tree.Tree, label string) *jsonNode {
	jn := &jsonNode{
		Tag:   t.Tag,
		Label: label,
		Span: jsonSpan{
			Start: jsonPosition{Offset: t.Start},
			End:   jsonPosition{Offset: t.End},
		},
	}

	if t.Source != nil {
		start, end := t.Source.Position(t.Start), t.Source.Position(t.End)
		jn.Span.Start.Line, jn.Span.Start.Column = start.Line, start.Column
		jn.Span.End.Line, jn.Span.End.Column = end.Line, end.Column
	}

	if t.IsLeaf() {
		if b := t.Bytes(); !utf8.Valid(b) {
			jn.Bytes = b
			return jn
		}
		text := t.Text()
		jn.Text = &text
		return jn
	}

	for _, l := range t.Children() {
		jn.Children = append(jn.Children, treeToJSON(l.Tree, l.Label))
	}
	return jn
}
