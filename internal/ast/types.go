package ast

import (
	"strings"

	"sdslc/internal/source"
)

// TypeExpr is a written type: a possibly dotted name with optional generic
// arguments (Texture2D<float4>). Array dimensions live on declarators.
type TypeExpr struct {
	Name string
	Args []TypeID
	Span source.Span
}

type Types struct {
	Arena *Arena[TypeExpr]
}

func NewTypes(capHint uint) *Types {
	return &Types{Arena: NewArena[TypeExpr](capHint)}
}

func (t *Types) New(span source.Span, name string, args []TypeID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{Name: name, Args: append([]TypeID(nil), args...), Span: span}))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

// String renders the type the way it was written.
func (t *Types) String(id TypeID) string {
	te := t.Get(id)
	if te == nil {
		return "<none>"
	}
	if len(te.Args) == 0 {
		return te.Name
	}
	parts := make([]string, len(te.Args))
	for i, a := range te.Args {
		parts[i] = t.String(a)
	}
	return te.Name + "<" + strings.Join(parts, ", ") + ">"
}
