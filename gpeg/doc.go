// Package gpeg compiles parsing expression grammars into closures and runs
// them against byte input.
//
// Compilation walks the expression graph once. Rule references are memoized
// per compilation so recursive grammars compile every rule exactly once. The
// compiled form is a Func: given a Context and an input State it returns every
// State the expression can end in. Ordered choice keeps PEG semantics and
// yields at most the outcomes of one alternative, while Alt keeps the outcomes
// of all of them, so an ambiguous grammar can finish a parse at several
// positions. The driver collects those end positions in the Context's result
// set and reports them as an Ambiguity tree.
package gpeg

// Version is the version of the gpeg runtime, checked by grammars that
// declare a requirement.
const Version = "0.3.0"
