package symbols

import (
	"errors"
	"testing"

	"sdslc/internal/types"
)

func method(name, owner string, params ...*types.Type) *Symbol {
	ps := make([]types.Param, len(params))
	for i, p := range params {
		ps[i] = types.Param{Type: p}
	}
	return &Symbol{Name: name, Kind: SymbolMethod, Owner: owner, Type: types.MakeFunction(types.Void, ps)}
}

func TestMethodsCollapseIntoGroup(t *testing.T) {
	f := NewFrame(FrameShader, "A")
	if _, err := f.Declare(method("f", "A", types.Float)); err != nil {
		t.Fatal(err)
	}
	g, err := f.Declare(method("f", "A", types.Int))
	if err != nil {
		t.Fatal(err)
	}
	if g.Kind != SymbolMethodGroup || len(g.Overloads()) != 2 {
		t.Fatalf("group: %v %d", g.Kind, len(g.Overloads()))
	}
	if _, err := f.Declare(method("f", "A", types.Float2)); err != nil {
		t.Fatal(err)
	}
	if got := f.Local("f"); got != g || len(got.Methods) != 3 {
		t.Fatalf("group should accumulate, got %d", len(got.Methods))
	}
	if len(f.Symbols()) != 1 || f.Symbols()[0] != g {
		t.Fatal("order must hold the group")
	}
}

func TestDuplicateVariable(t *testing.T) {
	f := NewFrame(FrameShader, "A")
	v := &Symbol{Name: "x", Kind: SymbolVariable}
	if _, err := f.Declare(v); err != nil {
		t.Fatal(err)
	}
	_, err := f.Declare(&Symbol{Name: "x", Kind: SymbolVariable})
	var dup *DuplicateError
	if !errors.As(err, &dup) || dup.Prev != v {
		t.Fatalf("want DuplicateError, got %v", err)
	}
	if _, err := f.Declare(method("x", "A")); err == nil {
		t.Fatal("method clashing with a variable must fail")
	}
}

func TestLookupFallsThroughParentsDepthFirst(t *testing.T) {
	base := NewFrame(FrameShader, "Base")
	left := NewFrame(FrameShader, "Left")
	right := NewFrame(FrameShader, "Right")
	child := NewFrame(FrameShader, "Child")
	left.Parents = []*Frame{base}
	right.Parents = []*Frame{base}
	child.Parents = []*Frame{left, right}

	base.Declare(&Symbol{Name: "v", Kind: SymbolVariable, Owner: "Base"})
	right.Declare(&Symbol{Name: "v", Kind: SymbolVariable, Owner: "Right"})
	right.Declare(&Symbol{Name: "w", Kind: SymbolVariable, Owner: "Right"})

	if s := child.Lookup("v"); s == nil || s.Owner != "Base" {
		t.Fatalf("depth-first through Left should reach Base first, got %+v", s)
	}
	if s := child.Lookup("w"); s == nil || s.Owner != "Right" {
		t.Fatalf("w: %+v", s)
	}
	if all := child.LookupAll("v"); len(all) != 2 {
		t.Fatalf("LookupAll: %d", len(all))
	}
	if child.Lookup("missing") != nil {
		t.Fatal("missing name found")
	}
}

func TestLookupTerminatesOnCycles(t *testing.T) {
	a := NewFrame(FrameShader, "A")
	b := NewFrame(FrameShader, "B")
	a.Parents = []*Frame{b}
	b.Parents = []*Frame{a}
	if a.Lookup("nothing") != nil {
		t.Fatal("unexpected hit")
	}
}

func TestTableStackDiscipline(t *testing.T) {
	root := NewFrame(FrameRoot, "")
	root.Declare(&Symbol{Name: "g", Kind: SymbolVariable})
	tab := NewTable(root)
	tab.Push(FrameFunction, "f")
	tab.Declare(&Symbol{Name: "p", Kind: SymbolParam})
	tab.Push(FrameBlock, "")
	tab.Declare(&Symbol{Name: "g", Kind: SymbolVariable, Storage: StorageLocal})
	if s := tab.Lookup("g"); s.Storage != StorageLocal {
		t.Fatal("inner declaration must shadow")
	}
	if !tab.InFrame(FrameFunction) {
		t.Fatal("function frame expected")
	}
	tab.Pop()
	if s := tab.Lookup("g"); s.Storage != StorageNone {
		t.Fatal("shadow must disappear after Pop")
	}
	tab.Pop()
	tab.Pop()
	if tab.Depth() != 1 || tab.Lookup("p") != nil {
		t.Fatal("root frame must survive")
	}
}
