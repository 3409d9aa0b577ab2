package intrinsics

import (
	"fmt"

	"sdslc/internal/types"
)

// Base restricts the component type a parameter accepts.
type Base uint8

const (
	BaseConcrete Base = iota
	BaseAnyFloat
	BaseAnyInt
	BaseAnyNumeric
	BaseBool
	BaseAnyScalar
)

var baseNames = [...]string{"", "float", "int", "numeric", "bool", "scalar"}

func (b Base) String() string { return baseNames[b] }

// Shape restricts the dimensionality a parameter accepts.
type Shape uint8

const (
	ShapeScalar Shape = iota
	ShapeVector
	ShapeMatrix
	ShapeScalarOrVector
	ShapeAny
)

// Class is the type class of one intrinsic parameter. Parameters sharing
// a non-zero Slot unify to one type.
type Class struct {
	Type  *types.Type
	Base  Base
	Shape Shape
	Size  int // fixed vector size, 0 for any
	Slot  int
}

func (c Class) String() string {
	if c.Base == BaseConcrete {
		return c.Type.String()
	}
	s := c.Base.String()
	switch c.Shape {
	case ShapeVector:
		if c.Size > 0 {
			s += fmt.Sprint(c.Size)
		} else {
			s += "N"
		}
	case ShapeMatrix:
		s += "RxC"
	case ShapeScalarOrVector:
		s += "[N]"
	case ShapeAny:
		s += "*"
	}
	if c.Slot > 0 {
		s = fmt.Sprintf("T%d:%s", c.Slot, s)
	}
	return s
}

// adapt returns the type the class wants for arg, or false when arg can not
// fit the class at all.
func (c Class) adapt(arg *types.Type) (*types.Type, bool) {
	if c.Base == BaseConcrete {
		return c.Type, true
	}
	if !arg.IsNumeric() {
		return nil, false
	}
	scalar := arg.Scalar
	switch c.Base {
	case BaseAnyFloat:
		if !scalar.IsFloat() {
			scalar = types.ScalarFloat
		}
	case BaseAnyInt:
		if scalar.IsFloat() {
			return nil, false
		}
		if scalar == types.ScalarBool {
			scalar = types.ScalarInt
		}
	case BaseAnyNumeric:
		if scalar == types.ScalarBool {
			scalar = types.ScalarInt
		}
	case BaseBool:
		scalar = types.ScalarBool
	}
	switch c.Shape {
	case ShapeScalar:
		if arg.Components() != 1 || arg.IsMatrix() {
			return nil, false
		}
		return types.ScalarOf(scalar), true
	case ShapeVector:
		if c.Size > 0 {
			if arg.IsMatrix() {
				return nil, false
			}
			return types.VectorOf(scalar, c.Size), true
		}
		if !arg.IsVector() {
			return nil, false
		}
	case ShapeMatrix:
		if !arg.IsMatrix() {
			return nil, false
		}
	case ShapeScalarOrVector:
		if arg.IsMatrix() {
			return nil, false
		}
	}
	return arg.WithScalar(scalar), true
}

// RetKind selects how a return type is derived.
type RetKind uint8

const (
	RetVoid RetKind = iota
	RetConcrete
	RetSlot
	RetScalarOf
	RetShapeOf
	RetVectorOf
	RetElem
)

// Return describes an intrinsic result.
type Return struct {
	Kind   RetKind
	Type   *types.Type
	Slot   int
	Scalar types.Scalar
	Size   int
}

func (r Return) String() string {
	switch r.Kind {
	case RetVoid:
		return "void"
	case RetConcrete:
		return r.Type.String()
	case RetSlot:
		return fmt.Sprintf("T%d", r.Slot)
	case RetScalarOf:
		return fmt.Sprintf("scalar(T%d)", r.Slot)
	case RetShapeOf:
		return fmt.Sprintf("%s(T%d)", r.Scalar, r.Slot)
	case RetVectorOf:
		return fmt.Sprintf("vector%d(T%d)", r.Size, r.Slot)
	case RetElem:
		return "element"
	}
	return "?"
}
