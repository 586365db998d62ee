// Package source holds parser input buffers and maps byte offsets to
// line/column positions.
package source

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultURN names input that did not come with a source name.
const DefaultURN = "(unknown)"

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Source is an immutable input buffer labelled with a URN.
type Source struct {
	URN   string
	Bytes []byte

	once  sync.Once
	lines []int // offsets of line starts
}

// New creates a source over data. An empty urn is replaced by DefaultURN.
func New(urn string, data []byte) *Source {
	if urn == "" {
		urn = DefaultURN
	}
	return &Source{URN: urn, Bytes: data}
}

// FromString creates a source holding the UTF-8 bytes of s.
func FromString(urn, s string) *Source {
	return New(urn, []byte(s))
}

// Len returns the number of bytes in the source.
func (s *Source) Len() int {
	return len(s.Bytes)
}

// Slice returns the bytes in [start, end), clamped to the buffer.
func (s *Source) Slice(start, end int) []byte {
	start = s.clamp(start)
	end = s.clamp(end)
	if end < start {
		return nil
	}
	return s.Bytes[start:end]
}

// Position converts a byte offset into a 1-based line and column.
// Columns count bytes, not runes.
func (s *Source) Position(offset int) Position {
	offset = s.clamp(offset)
	s.once.Do(func() { s.lines = lineStarts(s.Bytes) })
	line := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	return Position{
		Filename: s.URN,
		Offset:   offset,
		Line:     line + 1,
		Column:   offset - s.lines[line] + 1,
	}
}

// Offset is the inverse of Position for 0-based line and column values, as
// used by editors. Out-of-range values are clamped.
func (s *Source) Offset(line, column int) int {
	s.once.Do(func() { s.lines = lineStarts(s.Bytes) })
	if line < 0 {
		return 0
	}
	if line >= len(s.lines) {
		return len(s.Bytes)
	}
	end := len(s.Bytes)
	if line+1 < len(s.lines) {
		end = s.lines[line+1]
	}
	return min(s.lines[line]+max(column, 0), end)
}

func (s *Source) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(s.Bytes) {
		return len(s.Bytes)
	}
	return offset
}

func lineStarts(data []byte) []int {
	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
