package types

import (
	"fmt"
	"strings"
)

// ArrayUnsized marks T[] arrays whose length is not known.
const ArrayUnsized = 0

// Type describes one shader type. Builtin numeric types are canonical
// pointers: there is exactly one *Type per (scalar, shape).
type Type struct {
	Kind   Kind
	Scalar Scalar
	Rows   uint8 // vector size, or matrix rows
	Cols   uint8 // matrix columns
	Elem   *Type // array, texture and buffer element
	Len    uint32
	Dim    TextureDim
	Name   string
	Fields []Field
	Ret    *Type
	Params []Param
}

// Field is a member of a struct or cbuffer.
type Field struct {
	Name     string
	Type     *Type
	RowMajor bool
}

// Param is a function parameter.
type Param struct {
	Name string
	Type *Type
	Qual Qualifier
}

// Descriptor helpers ---------------------------------------------------------

// MakeArray describes elem[n]; n == ArrayUnsized for elem[].
func MakeArray(elem *Type, n uint32) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: n}
}

// MakeStruct describes a named struct.
func MakeStruct(name string, fields []Field) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

// MakeFunction describes a method signature.
func MakeFunction(ret *Type, params []Param) *Type {
	return &Type{Kind: KindFunction, Ret: ret, Params: params}
}

func MakeShader(name string) *Type { return &Type{Kind: KindShader, Name: name} }

func MakeEffect(name string) *Type { return &Type{Kind: KindEffect, Name: name} }

func MakeCBuffer(name string, fields []Field) *Type {
	return &Type{Kind: KindCBuffer, Name: name, Fields: fields}
}

func (t *Type) IsInvalid() bool { return t == nil || t.Kind == KindInvalid }

func (t *Type) IsVoid() bool { return t != nil && t.Kind == KindVoid }

// IsNumeric covers scalars, vectors and matrices, bool included.
func (t *Type) IsNumeric() bool {
	return t != nil && (t.Kind == KindScalar || t.Kind == KindVector || t.Kind == KindMatrix)
}

func (t *Type) IsScalar() bool { return t != nil && t.Kind == KindScalar }

func (t *Type) IsVector() bool { return t != nil && t.Kind == KindVector }

func (t *Type) IsMatrix() bool { return t != nil && t.Kind == KindMatrix }

// IsBool reports bool scalars and vectors.
func (t *Type) IsBool() bool { return t.IsNumeric() && t.Scalar == ScalarBool }

// Components is the number of scalar components of a numeric type.
func (t *Type) Components() int {
	switch {
	case t.IsScalar():
		return 1
	case t.IsVector():
		return int(t.Rows)
	case t.IsMatrix():
		return int(t.Rows) * int(t.Cols)
	}
	return 0
}

// WithScalar returns the numeric type of the same shape over s.
func (t *Type) WithScalar(s Scalar) *Type {
	switch {
	case t.IsScalar():
		return ScalarOf(s)
	case t.IsVector():
		return VectorOf(s, int(t.Rows))
	case t.IsMatrix():
		return MatrixOf(s, int(t.Rows), int(t.Cols))
	}
	return Invalid
}

// Row is the vector type of one matrix row.
func (t *Type) Row() *Type {
	if !t.IsMatrix() {
		return Invalid
	}
	return VectorOf(t.Scalar, int(t.Cols))
}

// Column is the vector type of one matrix column.
func (t *Type) Column() *Type {
	if !t.IsMatrix() {
		return Invalid
	}
	return VectorOf(t.Scalar, int(t.Rows))
}

// Field looks up a struct or cbuffer member.
func (t *Type) Field(name string) (int, *Field) {
	if t == nil {
		return -1, nil
	}
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return i, &t.Fields[i]
		}
	}
	return -1, nil
}

func (t *Type) String() string {
	if t == nil {
		return "<invalid>"
	}
	switch t.Kind {
	case KindInvalid:
		return "<invalid>"
	case KindVoid:
		return "void"
	case KindScalar:
		return t.Scalar.String()
	case KindVector:
		return fmt.Sprintf("%s%d", t.Scalar, t.Rows)
	case KindMatrix:
		return fmt.Sprintf("%s%dx%d", t.Scalar, t.Rows, t.Cols)
	case KindArray:
		if t.Len == ArrayUnsized {
			return t.Elem.String() + "[]"
		}
		return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.Type.String()
			if p.Qual != QualIn {
				parts[i] = p.Qual.String() + " " + parts[i]
			}
		}
		return t.Ret.String() + "(" + strings.Join(parts, ", ") + ")"
	case KindTexture:
		if t.Elem == Float4 {
			return t.Dim.String()
		}
		return t.Dim.String() + "<" + t.Elem.String() + ">"
	case KindBuffer:
		return t.Name + "<" + t.Elem.String() + ">"
	case KindStreams:
		return "streams"
	}
	return t.Name
}
