// Package format writes parse trees in human and machine readable forms.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/gpeg/tree"
)

type Encoder interface {
	Encode(t *tree.Tree) error
}

// Names lists the formats accepted by NewEncoder.
var Names = []string{"sexpr", "json", "line"}

// NewEncoder returns the encoder for the named format.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "sexpr":
		return NewSExprEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", name)
	}
}
