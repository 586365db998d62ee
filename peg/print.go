package peg

import (
	"strconv"
	"strings"
)

// Operator precedence used when printing, loosest first.
const (
	precChoice = iota
	precSeq
	precPrefix
	precSuffix
	precPrimary
)

func (e Empty) String() string  { return "''" }
func (e Any) String() string    { return "." }
func (e Byte) String() string   { return quoteByte(e.Value) }
func (e Range) String() string  { return format(e, precChoice) }
func (e Seq) String() string    { return format(e, precChoice) }
func (e Ore) String() string    { return format(e, precChoice) }
func (e Alt) String() string    { return format(e, precChoice) }
func (e Not) String() string    { return format(e, precChoice) }
func (e And) String() string    { return format(e, precChoice) }
func (e Many) String() string   { return format(e, precChoice) }
func (e Many1) String() string  { return format(e, precChoice) }
func (e TreeAs) String() string { return format(e, precChoice) }
func (e LinkAs) String() string { return format(e, precChoice) }
func (e FoldAs) String() string { return format(e, precChoice) }
func (e Detree) String() string { return format(e, precChoice) }
func (e *Ref) String() string   { return e.Name }

func format(e Expression, outer int) string {
	var s string
	var prec int
	switch e := e.(type) {
	case Range:
		var sb strings.Builder
		sb.WriteByte('[')
		for _, b := range e.Bounds {
			sb.WriteString(classByte(b.Lo))
			if b.Hi != b.Lo {
				sb.WriteByte('-')
				sb.WriteString(classByte(b.Hi))
			}
		}
		sb.WriteByte(']')
		s, prec = sb.String(), precPrimary
	case Seq:
		s, prec = join(e, " ", precSeq), precSeq
		if len(e) == 0 {
			s, prec = "''", precPrimary
		}
	case Ore:
		s, prec = join(e, " / ", precSeq), precChoice
	case Alt:
		s, prec = join(e, " | ", precSeq), precChoice
	case Not:
		s, prec = "!"+format(e.Inner, precPrefix), precPrefix
	case And:
		s, prec = "&"+format(e.Inner, precPrefix), precPrefix
	case Many:
		s, prec = format(e.Inner, precPrimary)+"*", precSuffix
	case Many1:
		s, prec = format(e.Inner, precPrimary)+"+", precSuffix
	case TreeAs:
		s, prec = "{ "+format(e.Inner, precChoice)+" #"+e.Tag+" }", precPrimary
	case LinkAs:
		s, prec = "$"+e.Label+"("+format(e.Inner, precChoice)+")", precPrimary
	case FoldAs:
		s, prec = "{$"+e.Label+" "+format(e.Inner, precChoice)+" #"+e.Tag+" }", precPrimary
	case Detree:
		s, prec = "@detree("+format(e.Inner, precChoice)+")", precPrimary
	default:
		s, prec = e.String(), precPrimary
	}
	if prec < outer {
		return "(" + s + ")"
	}
	return s
}

func join(es []Expression, sep string, prec int) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = format(e, prec)
	}
	return strings.Join(parts, sep)
}

func quoteByte(b byte) string {
	if b == '\'' {
		return `'\''`
	}
	q := strconv.QuoteToASCII(string([]byte{b}))
	if b >= 0x80 {
		q = `"\x` + strconv.FormatUint(uint64(b), 16) + `"`
	}
	return "'" + q[1:len(q)-1] + "'"
}

func classByte(b byte) string {
	switch b {
	case ']', '-', '\\':
		return `\` + string(rune(b))
	}
	q := quoteByte(b)
	return q[1 : len(q)-1]
}
