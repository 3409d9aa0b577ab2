package symbols

import (
	"fmt"
)

// FrameKind tells what a frame belongs to.
type FrameKind uint8

const (
	FrameRoot FrameKind = iota
	FrameShader
	FrameFunction
	FrameBlock
)

func (k FrameKind) String() string {
	switch k {
	case FrameRoot:
		return "root"
	case FrameShader:
		return "shader"
	case FrameFunction:
		return "function"
	case FrameBlock:
		return "block"
	default:
		return fmt.Sprintf("FrameKind(%d)", k)
	}
}

// Frame is an ordered name table with implicit parent shader frames that
// are consulted on a miss, depth-first in declared order.
type Frame struct {
	Kind    FrameKind
	Name    string
	names   map[string]*Symbol
	order   []*Symbol
	Parents []*Frame
}

func NewFrame(kind FrameKind, name string) *Frame {
	return &Frame{Kind: kind, Name: name, names: make(map[string]*Symbol)}
}

// DuplicateError is returned by Declare when a non-method name is already
// bound in the same frame.
type DuplicateError struct {
	Name string
	Prev *Symbol
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q is already declared", e.Prev.Kind, e.Name)
}

// Declare binds sym in f. Methods sharing a name collapse into a
// MethodGroup; any other clash is a *DuplicateError.
func (f *Frame) Declare(sym *Symbol) (*Symbol, error) {
	prev, ok := f.names[sym.Name]
	if !ok {
		f.names[sym.Name] = sym
		f.order = append(f.order, sym)
		return sym, nil
	}
	if sym.Kind != SymbolMethod {
		return prev, &DuplicateError{Name: sym.Name, Prev: prev}
	}
	switch prev.Kind {
	case SymbolMethod:
		group := &Symbol{
			Name:    sym.Name,
			Kind:    SymbolMethodGroup,
			Span:    prev.Span,
			Owner:   prev.Owner,
			Methods: []*Symbol{prev, sym},
		}
		f.names[sym.Name] = group
		for i, s := range f.order {
			if s == prev {
				f.order[i] = group
			}
		}
		return group, nil
	case SymbolMethodGroup:
		prev.Methods = append(prev.Methods, sym)
		return prev, nil
	}
	return prev, &DuplicateError{Name: sym.Name, Prev: prev}
}

// Local looks name up in f only.
func (f *Frame) Local(name string) *Symbol {
	return f.names[name]
}

// Symbols returns the symbols of f in declaration order.
func (f *Frame) Symbols() []*Symbol {
	return f.order
}

// Lookup searches f, then its parent frames depth-first. Cyclic parent
// chains terminate.
func (f *Frame) Lookup(name string) *Symbol {
	var found *Symbol
	f.walk(make(map[*Frame]bool), func(fr *Frame) bool {
		found = fr.names[name]
		return found != nil
	})
	return found
}

// LookupAll returns every binding of name in f and its parents, nearest
// first.
func (f *Frame) LookupAll(name string) []*Symbol {
	var out []*Symbol
	f.walk(make(map[*Frame]bool), func(fr *Frame) bool {
		if s := fr.names[name]; s != nil {
			out = append(out, s)
		}
		return false
	})
	return out
}

// walk visits f and its parents depth-first until visit returns true.
func (f *Frame) walk(seen map[*Frame]bool, visit func(*Frame) bool) bool {
	if seen[f] {
		return false
	}
	seen[f] = true
	if visit(f) {
		return true
	}
	for _, p := range f.Parents {
		if p.walk(seen, visit) {
			return true
		}
	}
	return false
}
