package symbols

// Table is a stack of frames. The bottom frame lives for the compilation
// unit; function and block frames are pushed and popped around bodies.
type Table struct {
	stack []*Frame
}

// NewTable starts a table whose bottom frame is root.
func NewTable(root *Frame) *Table {
	if root == nil {
		root = NewFrame(FrameRoot, "")
	}
	return &Table{stack: []*Frame{root}}
}

// Root returns the bottom frame.
func (t *Table) Root() *Frame { return t.stack[0] }

// Current returns the innermost frame.
func (t *Table) Current() *Frame { return t.stack[len(t.stack)-1] }

// Depth is the number of frames on the stack.
func (t *Table) Depth() int { return len(t.stack) }

// Push enters a new frame. Shader frames are pushed with their parents
// already linked.
func (t *Table) Push(kind FrameKind, name string) *Frame {
	f := NewFrame(kind, name)
	t.stack = append(t.stack, f)
	return f
}

// PushFrame enters an existing frame.
func (t *Table) PushFrame(f *Frame) {
	t.stack = append(t.stack, f)
}

// Pop leaves the innermost frame; the root frame is never popped.
func (t *Table) Pop() {
	if len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// Declare binds sym in the innermost frame.
func (t *Table) Declare(sym *Symbol) (*Symbol, error) {
	return t.Current().Declare(sym)
}

// Lookup finds the nearest enclosing binding of name. Each frame falls
// through to its implicit parents before the enclosing frame is tried.
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if s := t.stack[i].Lookup(name); s != nil {
			return s
		}
	}
	return nil
}

// LookupAll collects every binding of name from the innermost frame outwards.
func (t *Table) LookupAll(name string) []*Symbol {
	var out []*Symbol
	for i := len(t.stack) - 1; i >= 0; i-- {
		out = append(out, t.stack[i].LookupAll(name)...)
	}
	return out
}

// InFrame reports whether the innermost frame of the given kind is on the
// stack.
func (t *Table) InFrame(kind FrameKind) bool {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].Kind == kind {
			return true
		}
	}
	return false
}
