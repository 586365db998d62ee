package peg

import "fmt"

// Str matches the bytes of s in order.
func Str(s string) Expression {
	switch len(s) {
	case 0:
		return Empty{}
	case 1:
		return Byte{s[0]}
	}
	seq := make(Seq, len(s))
	for i := 0; i < len(s); i++ {
		seq[i] = Byte{s[i]}
	}
	return seq
}

// Opt matches e or nothing.
func Opt(e Expression) Expression {
	return Ore{e, Empty{}}
}

// EOF matches only at the end of input.
func EOF() Expression {
	return Not{Any{}}
}

// Class builds a Range from a character class body such as "a-zA-Z_".
// A '-' at either end is taken literally.
func Class(set string) (Range, error) {
	var r Range
	for i := 0; i < len(set); i++ {
		lo := set[i]
		if i+2 < len(set) && set[i+1] == '-' {
			hi := set[i+2]
			if hi < lo {
				return Range{}, fmt.Errorf("invalid class %q: range %c-%c is reversed", set, lo, hi)
			}
			r.Bounds = append(r.Bounds, Bound{lo, hi})
			i += 2
			continue
		}
		r.Bounds = append(r.Bounds, Bound{lo, lo})
	}
	if len(r.Bounds) == 0 {
		return Range{}, fmt.Errorf("invalid class %q: empty", set)
	}
	return r, nil
}

// MustClass is like Class but panics on an invalid class.
func MustClass(set string) Range {
	r, err := Class(set)
	if err != nil {
		panic(err)
	}
	return r
}
