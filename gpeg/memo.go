package gpeg

import "github.com/dhamidi/gpeg/peg"

// ruleKey identifies a rule independently of the Ref node naming it.
type ruleKey struct {
	grammar *peg.Grammar
	name    string
}

// cell is the memo slot of one rule. It is installed before the rule body is
// compiled and patched with the compiled body afterwards.
type cell struct {
	fn Func
}

// forward calls through the cell. Refs resolved while the cell is still
// empty hold this closure instead of the body.
func (cl *cell) forward(c *Context, s State) []State {
	return cl.fn(c, s)
}

// memoTable maps rules to compiled closures for one compilation pass.
type memoTable struct {
	cells    map[ruleKey]*cell
	compiled int // rule bodies compiled so far
}

func newMemoTable() *memoTable {
	return &memoTable{cells: make(map[ruleKey]*cell)}
}

// lookup returns the closure for key: the compiled body when it is done, or
// a forwarding closure while the body is being compiled.
func (m *memoTable) lookup(key ruleKey) (Func, bool) {
	cl, ok := m.cells[key]
	if !ok {
		return nil, false
	}
	if cl.fn == nil {
		return cl.forward, true
	}
	return cl.fn, true
}

// install reserves the slot for key.
func (m *memoTable) install(key ruleKey) *cell {
	cl := &cell{}
	m.cells[key] = cl
	return cl
}

// patch completes the slot of key with fn.
func (m *memoTable) patch(cl *cell, fn Func) {
	cl.fn = fn
	m.compiled++
}
