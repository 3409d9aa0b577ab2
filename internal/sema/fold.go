package sema

import (
	"math"

	"sdslc/internal/ast"
	"sdslc/internal/source"
	"sdslc/internal/types"
)

// newConst builds a constant of t from its components.
func newConst(t *types.Type, span source.Span, vals []Value) *Const {
	return &Const{exprBase: exprBase{T: t, Sp: span}, Values: vals}
}

// ScalarConst is a constant scalar of type t holding v.
func ScalarConst(t *types.Type, span source.Span, v float64) *Const {
	return newConst(t, span, []Value{fromFloat(v, t.Scalar)})
}

func (v Value) float(s types.Scalar) float64 {
	switch {
	case s.IsFloat():
		return v.Float
	case s == types.ScalarBool:
		if v.Bool {
			return 1
		}
		return 0
	case s == types.ScalarUInt || s == types.ScalarULong:
		return float64(uint64(v.Int))
	}
	return float64(v.Int)
}

func (v Value) integer(s types.Scalar) int64 {
	switch {
	case s.IsFloat():
		return int64(v.Float)
	case s == types.ScalarBool:
		if v.Bool {
			return 1
		}
		return 0
	}
	return v.Int
}

func (v Value) truth(s types.Scalar) bool {
	switch {
	case s == types.ScalarBool:
		return v.Bool
	case s.IsFloat():
		return v.Float != 0
	}
	return v.Int != 0
}

// wrap normalizes an integer to the width and signedness of s.
func wrap(x int64, s types.Scalar) int64 {
	switch s {
	case types.ScalarInt:
		return int64(int32(x))
	case types.ScalarUInt:
		return int64(uint32(x))
	}
	return x
}

func fromFloat(f float64, s types.Scalar) Value {
	switch {
	case s == types.ScalarBool:
		return Value{Bool: f != 0}
	case s == types.ScalarDouble:
		return Value{Float: f}
	case s.IsFloat():
		return Value{Float: float64(float32(f))}
	}
	return Value{Int: wrap(int64(f), s)}
}

// convertValue converts one component between scalar types.
func convertValue(v Value, from, to types.Scalar) Value {
	switch {
	case from == to:
		return v
	case to == types.ScalarBool:
		return Value{Bool: v.truth(from)}
	case to.IsFloat():
		return fromFloat(v.float(from), to)
	}
	return Value{Int: wrap(v.integer(from), to)}
}

// reshape adapts the values of a constant for a conversion to t: a
// scalar is splatted and vectors and matrices are truncated.
func reshape(k *Const, to *types.Type) ([]Value, bool) {
	from := k.Type()
	n := to.Components()
	switch {
	case len(k.Values) == 1:
		out := make([]Value, n)
		for i := range out {
			out[i] = k.Values[0]
		}
		return out, true
	case from.IsVector() && to.IsVector(), from.IsVector() && to.IsScalar():
		if n > len(k.Values) {
			return nil, false
		}
		return k.Values[:n], true
	case from.IsMatrix() && to.IsMatrix():
		out := make([]Value, 0, n)
		for r := 0; r < int(to.Rows); r++ {
			for c := 0; c < int(to.Cols); c++ {
				out = append(out, k.Values[r*int(from.Cols)+c])
			}
		}
		return out, true
	case from.IsMatrix() && to.IsScalar():
		return k.Values[:1], true
	}
	return nil, false
}

// fold evaluates e when its operands are constants.
func (c *checker) fold(e Expr) Expr {
	switch e := e.(type) {
	case *Convert:
		k, ok := e.Value.(*Const)
		if !ok || !e.T.IsNumeric() || !k.T.IsNumeric() {
			return e
		}
		vals, ok := reshape(k, e.T)
		if !ok {
			return e
		}
		out := make([]Value, len(vals))
		for i, v := range vals {
			out[i] = convertValue(v, k.T.Scalar, e.T.Scalar)
		}
		return newConst(e.T, e.Sp, out)
	case *Unary:
		k, ok := e.Operand.(*Const)
		if !ok {
			return e
		}
		s := k.T.Scalar
		out := make([]Value, len(k.Values))
		for i, v := range k.Values {
			switch e.Op {
			case UnNeg:
				if s.IsFloat() {
					out[i] = fromFloat(-v.Float, s)
				} else {
					out[i] = Value{Int: wrap(-v.Int, s)}
				}
			case UnNot:
				out[i] = Value{Bool: !v.truth(s)}
			case UnBitNot:
				out[i] = Value{Int: wrap(^v.Int, s)}
			}
		}
		return newConst(e.T, e.Sp, out)
	case *Binary:
		return c.foldBinary(e)
	case *Construct:
		if !e.T.IsNumeric() {
			return e
		}
		var out []Value
		for _, a := range e.Args {
			k, ok := a.(*Const)
			if !ok || !k.T.IsNumeric() {
				return e
			}
			for _, v := range k.Values {
				out = append(out, convertValue(v, k.T.Scalar, e.T.Scalar))
			}
		}
		if len(out) != e.T.Components() {
			return e
		}
		return newConst(e.T, e.Sp, out)
	case *Swizzle:
		k, ok := e.Value.(*Const)
		if !ok || k.T.IsMatrix() {
			return e
		}
		out := make([]Value, len(e.Indices))
		for i, idx := range e.Indices {
			out[i] = k.Values[idx]
		}
		return newConst(e.T, e.Sp, out)
	case *Ternary:
		k, ok := e.Cond.(*Const)
		if !ok || !k.T.IsScalar() {
			return e
		}
		if k.Values[0].truth(k.T.Scalar) {
			return e.Then
		}
		return e.Else
	case *Index:
		k, ok := e.Value.(*Const)
		idx, iok := e.Index.(*Const)
		if !ok || !iok || !k.T.IsVector() {
			return e
		}
		i := idx.Values[0].integer(idx.T.Scalar)
		if i < 0 || int(i) >= len(k.Values) {
			return e
		}
		return newConst(e.T, e.Sp, []Value{k.Values[i]})
	}
	return e
}

func (c *checker) foldBinary(e *Binary) Expr {
	l, lok := e.Left.(*Const)
	r, rok := e.Right.(*Const)
	if !lok || !rok || len(l.Values) != len(r.Values) {
		return e
	}
	s := l.T.Scalar
	out := make([]Value, len(l.Values))
	for i := range l.Values {
		v, ok := foldScalar(e.Op, l.Values[i], r.Values[i], s)
		if !ok {
			return e
		}
		out[i] = v
	}
	return newConst(e.T, e.Sp, out)
}

// foldScalar applies op to one pair of components of scalar type s.
func foldScalar(op ast.BinaryOp, a, b Value, s types.Scalar) (Value, bool) {
	if op.IsLogical() {
		if op == ast.BinLogAnd {
			return Value{Bool: a.truth(s) && b.truth(s)}, true
		}
		return Value{Bool: a.truth(s) || b.truth(s)}, true
	}
	if op.IsComparison() {
		var cmp int
		switch {
		case s.IsFloat():
			x, y := a.Float, b.Float
			if math.IsNaN(x) || math.IsNaN(y) {
				return Value{Bool: op == ast.BinNe}, true
			}
			cmp = compare(x < y, x > y)
		case s == types.ScalarBool:
			cmp = compare(!a.Bool && b.Bool, a.Bool && !b.Bool)
		case s.IsSigned():
			cmp = compare(a.Int < b.Int, a.Int > b.Int)
		default:
			cmp = compare(uint64(a.Int) < uint64(b.Int), uint64(a.Int) > uint64(b.Int))
		}
		switch op {
		case ast.BinEq:
			return Value{Bool: cmp == 0}, true
		case ast.BinNe:
			return Value{Bool: cmp != 0}, true
		case ast.BinLt:
			return Value{Bool: cmp < 0}, true
		case ast.BinLe:
			return Value{Bool: cmp <= 0}, true
		case ast.BinGt:
			return Value{Bool: cmp > 0}, true
		}
		return Value{Bool: cmp >= 0}, true
	}
	if s.IsFloat() {
		x, y := a.Float, b.Float
		switch op {
		case ast.BinAdd:
			return fromFloat(x+y, s), true
		case ast.BinSub:
			return fromFloat(x-y, s), true
		case ast.BinMul:
			return fromFloat(x*y, s), true
		case ast.BinDiv:
			return fromFloat(x/y, s), true
		case ast.BinMod:
			return fromFloat(math.Mod(x, y), s), true
		}
		return Value{}, false
	}
	x, y := a.Int, b.Int
	unsigned := !s.IsSigned()
	switch op {
	case ast.BinAdd:
		return Value{Int: wrap(x+y, s)}, true
	case ast.BinSub:
		return Value{Int: wrap(x-y, s)}, true
	case ast.BinMul:
		return Value{Int: wrap(x*y, s)}, true
	case ast.BinDiv, ast.BinMod:
		if y == 0 {
			return Value{}, false
		}
		if unsigned {
			if op == ast.BinDiv {
				return Value{Int: wrap(int64(uint64(x)/uint64(y)), s)}, true
			}
			return Value{Int: wrap(int64(uint64(x)%uint64(y)), s)}, true
		}
		if op == ast.BinDiv {
			return Value{Int: wrap(x/y, s)}, true
		}
		return Value{Int: wrap(x%y, s)}, true
	case ast.BinShl:
		return Value{Int: wrap(x<<(uint64(y)&uint64(s.Bits()-1)), s)}, true
	case ast.BinShr:
		sh := uint64(y) & uint64(s.Bits()-1)
		if unsigned {
			return Value{Int: wrap(int64(uint64(x)>>sh), s)}, true
		}
		return Value{Int: wrap(x>>sh, s)}, true
	case ast.BinBitAnd:
		return Value{Int: x & y}, true
	case ast.BinBitOr:
		return Value{Int: x | y}, true
	case ast.BinBitXor:
		return Value{Int: wrap(x^y, s)}, true
	}
	return Value{}, false
}

func compare(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
