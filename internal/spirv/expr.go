package spirv

import (
	"fmt"

	"sdslc/internal/ast"
	"sdslc/internal/sema"
	"sdslc/internal/types"
)

// ref is an addressable location. phys differs from t only for bools kept
// as uint in uniform memory.
type ref struct {
	ptr   uint32
	class StorageClass
	t     *types.Type
	phys  *types.Type
}

func (e *emitter) expr(x sema.Expr) uint32 {
	switch x := x.(type) {
	case *sema.Const:
		return e.constValue(x.Type(), x.Values)
	case *sema.VarRef:
		if x.Var.Storage == sema.StorageConst {
			if k, ok := x.Var.Init.(*sema.Const); ok {
				return e.constValue(k.Type(), k.Values)
			}
		}
		if r, ok := e.ref(x); ok {
			return e.loadRef(r)
		}
		e.fail(fmt.Errorf("variable %s has no storage", x.Var.Name))
		return 0
	case *sema.Field:
		if r, ok := e.ref(x); ok {
			return e.loadRef(r)
		}
		return e.value(OpCompositeExtract, e.typeID(x.Type()), e.expr(x.Value), uint32(x.Index))
	case *sema.Index:
		if !x.Value.Type().IsMatrix() {
			if r, ok := e.ref(x); ok {
				return e.loadRef(r)
			}
		}
		return e.indexValue(x)
	case *sema.Swizzle:
		return e.swizzle(e.expr(x.Value), x.Value.Type(), x.Indices, x.Type())
	case *sema.Convert:
		return e.convert(e.expr(x.Value), x.Value.Type(), x.Type())
	case *sema.Construct:
		return e.construct(x)
	case *sema.Unary:
		return e.unary(x.Op, x.Type(), e.expr(x.Operand))
	case *sema.IncDec:
		return e.incDec(x)
	case *sema.Binary:
		l, r := e.expr(x.Left), e.expr(x.Right)
		return e.binary(x.Op, x.Left.Type(), x.Type(), l, r)
	case *sema.Ternary:
		return e.ternary(x)
	case *sema.Assign:
		v := e.expr(x.Value)
		e.assign(x.Target, v)
		return v
	case *sema.Call:
		return e.call(x)
	case *sema.IntrinsicCall:
		return e.intrinsic(x)
	}
	e.fail(fmt.Errorf("expression %T can not be lowered", x))
	return 0
}

// ref resolves an l-value to a pointer. Swizzles, matrix rows and
// r-values are not addressable.
func (e *emitter) ref(x sema.Expr) (ref, bool) {
	switch x := x.(type) {
	case *sema.VarRef:
		return e.varRef(x.Var)
	case *sema.Field:
		base, ok := e.ref(x.Value)
		if !ok || base.t.Kind != types.KindStruct {
			return ref{}, false
		}
		ft := base.phys.Fields[x.Index].Type
		ptr := e.value(OpAccessChain, e.pointerType(base.class, e.typeID(ft)), base.ptr, e.constInt(int32(x.Index)))
		return ref{ptr: ptr, class: base.class, t: x.Type(), phys: ft}, true
	case *sema.Index:
		base, ok := e.ref(x.Value)
		if !ok {
			return ref{}, false
		}
		var elem *types.Type
		var chain []uint32
		switch {
		case base.t.Kind == types.KindArray:
			elem = base.phys.Elem
		case base.t.IsVector() && base.t.Rows > 1:
			elem = types.ScalarOf(base.phys.Scalar)
		case base.t.Kind == types.KindBuffer:
			elem = e.physical(base.t.Elem)
			chain = append(chain, e.constInt(0))
		default:
			return ref{}, false
		}
		chain = append(chain, e.expr(x.Index))
		ptr := e.value(OpAccessChain, e.pointerType(base.class, e.typeID(elem)), append([]uint32{base.ptr}, chain...)...)
		return ref{ptr: ptr, class: base.class, t: x.Type(), phys: elem}, true
	}
	return ref{}, false
}

func (e *emitter) varRef(v *sema.Var) (ref, bool) {
	r := ref{t: v.Type, phys: v.Type}
	switch v.Storage {
	case sema.StorageLocal, sema.StorageParam:
		id, ok := e.fn.locals[v]
		r.ptr, r.class = id, StorageFunction
		return r, ok
	case sema.StoragePrivate:
		r.ptr, r.class = e.globals[v], StoragePrivate
	case sema.StorageWorkgroup:
		r.ptr, r.class = e.globals[v], StorageWorkgroup
	case sema.StorageResource:
		r.ptr, r.class = e.globals[v], StorageUniformConstant
		if v.Type.Kind == types.KindBuffer {
			r.class = StorageUniform
		}
	case sema.StorageUniform:
		block, ok := e.blocks[v.CBuffer]
		if !ok {
			return r, false
		}
		r.class, r.phys = StorageUniform, e.physical(v.Type)
		r.ptr = e.value(OpAccessChain, e.pointerType(StorageUniform, e.typeID(r.phys)), block, e.constInt(int32(v.Member)))
		return r, true
	default:
		return r, false
	}
	return r, r.ptr != 0
}

func (e *emitter) loadRef(r ref) uint32 {
	v := e.load(r.phys, r.ptr)
	if r.phys != r.t {
		v = e.fromPhysical(v, r.phys, r.t)
	}
	return v
}

// fromPhysical turns uint storage back into bools.
func (e *emitter) fromPhysical(v uint32, phys, t *types.Type) uint32 {
	if t.Kind == types.KindArray {
		parts := make([]uint32, t.Len)
		for i := range parts {
			el := e.value(OpCompositeExtract, e.typeID(phys.Elem), v, uint32(i))
			parts[i] = e.fromPhysical(el, phys.Elem, t.Elem)
		}
		return e.value(OpCompositeConstruct, e.typeID(t), parts...)
	}
	return e.cast(v, phys, t)
}

// assign stores v into an l-value. Swizzle targets read the vector, merge
// the new components and store it back.
func (e *emitter) assign(target sema.Expr, v uint32) {
	sw, ok := target.(*sema.Swizzle)
	if !ok {
		r, ok := e.ref(target)
		if !ok {
			e.fail(fmt.Errorf("assignment target %T is not addressable", target))
			return
		}
		e.store(r.ptr, v)
		return
	}
	bt := sw.Value.Type()
	if bt.Components() == 1 {
		e.assign(sw.Value, v)
		return
	}
	r, addressable := e.ref(sw.Value)
	if addressable && len(sw.Indices) == 1 {
		comp := types.ScalarOf(bt.Scalar)
		ptr := e.value(OpAccessChain, e.pointerType(r.class, e.typeID(comp)), r.ptr, e.constInt(int32(sw.Indices[0])))
		e.store(ptr, v)
		return
	}
	var old uint32
	if addressable {
		old = e.loadRef(r)
	} else {
		old = e.expr(sw.Value)
	}
	var merged uint32
	if len(sw.Indices) == 1 {
		merged = e.value(OpCompositeInsert, e.typeID(bt), v, old, sw.Indices[0])
	} else {
		n := uint32(bt.Rows)
		sel := make([]uint32, n)
		for i := range sel {
			sel[i] = uint32(i)
		}
		for j, idx := range sw.Indices {
			sel[idx] = n + uint32(j)
		}
		merged = e.value(OpVectorShuffle, e.typeID(bt), append([]uint32{old, v}, sel...)...)
	}
	if addressable {
		e.store(r.ptr, merged)
		return
	}
	e.assign(sw.Value, merged)
}

func (e *emitter) incDec(x *sema.IncDec) uint32 {
	t := x.Type()
	old := e.expr(x.Target)
	op := ast.BinAdd
	if x.Dec {
		op = ast.BinSub
	}
	updated := e.binary(op, t, t, old, e.one(t))
	e.assign(x.Target, updated)
	if x.Pre {
		return updated
	}
	return old
}

// indexValue indexes an r-value; a matrix index selects a row, which is
// spread over the columns.
func (e *emitter) indexValue(x *sema.Index) uint32 {
	bt := x.Value.Type()
	base := e.expr(x.Value)
	k, constant := x.Index.(*sema.Const)
	switch {
	case bt.IsMatrix():
		comp := e.typeID(types.ScalarOf(bt.Scalar))
		var idx uint32
		if !constant {
			idx = e.expr(x.Index)
		}
		parts := make([]uint32, bt.Cols)
		for c := range parts {
			if constant {
				parts[c] = e.value(OpCompositeExtract, comp, base, uint32(c), uint32(k.Values[0].Int))
				continue
			}
			col := e.value(OpCompositeExtract, e.typeID(bt.Column()), base, uint32(c))
			parts[c] = e.value(OpVectorExtractDynamic, comp, col, idx)
		}
		return e.value(OpCompositeConstruct, e.typeID(x.Type()), parts...)
	case bt.Components() == 1:
		return base
	case constant:
		return e.value(OpCompositeExtract, e.typeID(x.Type()), base, uint32(k.Values[0].Int))
	case bt.IsVector():
		return e.value(OpVectorExtractDynamic, e.typeID(x.Type()), base, e.expr(x.Index))
	}
	// динамический индекс в массив-значение: через временную переменную
	tmp := e.local(bt, "")
	e.store(tmp, base)
	ptr := e.value(OpAccessChain, e.pointerType(StorageFunction, e.typeID(x.Type())), tmp, e.expr(x.Index))
	return e.load(x.Type(), ptr)
}

// swizzle selects components; matrix indices are row*4+col.
func (e *emitter) swizzle(v uint32, from *types.Type, idx []uint32, to *types.Type) uint32 {
	switch {
	case from.IsMatrix():
		comp := e.typeID(types.ScalarOf(from.Scalar))
		parts := make([]uint32, len(idx))
		for i, ix := range idx {
			parts[i] = e.value(OpCompositeExtract, comp, v, ix%4, ix/4)
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return e.value(OpCompositeConstruct, e.typeID(to), parts...)
	case from.Components() == 1:
		if len(idx) == 1 {
			return v
		}
		return e.splat(v, to)
	case len(idx) == 1:
		return e.value(OpCompositeExtract, e.typeID(to), v, idx[0])
	}
	return e.value(OpVectorShuffle, e.typeID(to), append([]uint32{v, v}, idx...)...)
}

// Conversions ----------------------------------------------------------------

// convert applies an implicit conversion: scalar change, splat or
// truncation.
func (e *emitter) convert(v uint32, from, to *types.Type) uint32 {
	if types.Equal(from, to) {
		return v
	}
	fn, tn := from.Components(), to.Components()
	switch {
	case fn == 1 && tn == 1:
		return e.cast(v, types.ScalarOf(from.Scalar), types.ScalarOf(to.Scalar))
	case fn == 1:
		s := e.cast(v, types.ScalarOf(from.Scalar), types.ScalarOf(to.Scalar))
		return e.splat(s, to)
	case tn == 1:
		idx := []uint32{0}
		if from.IsMatrix() {
			idx = append(idx, 0)
		}
		s := e.value(OpCompositeExtract, e.typeID(types.ScalarOf(from.Scalar)), append([]uint32{v}, idx...)...)
		return e.cast(s, types.ScalarOf(from.Scalar), types.ScalarOf(to.Scalar))
	case from.IsVector() && to.IsVector():
		shape := types.VectorOf(from.Scalar, int(to.Rows))
		if from.Rows != to.Rows {
			sel := make([]uint32, to.Rows)
			for i := range sel {
				sel[i] = uint32(i)
			}
			v = e.value(OpVectorShuffle, e.typeID(shape), append([]uint32{v, v}, sel...)...)
		}
		return e.cast(v, shape, to)
	case from.IsMatrix() && to.IsMatrix():
		shape := types.MatrixOf(from.Scalar, int(to.Rows), int(to.Cols))
		if from.Rows != to.Rows || from.Cols != to.Cols {
			v = e.truncateMatrix(v, from, shape)
		}
		return e.cast(v, shape, to)
	}
	e.fail(fmt.Errorf("no conversion from %s to %s", from, to))
	return 0
}

func (e *emitter) truncateMatrix(v uint32, from, to *types.Type) uint32 {
	cols := make([]uint32, to.Cols)
	sel := make([]uint32, to.Rows)
	for i := range sel {
		sel[i] = uint32(i)
	}
	for c := range cols {
		col := e.value(OpCompositeExtract, e.typeID(from.Column()), v, uint32(c))
		if from.Rows != to.Rows {
			col = e.value(OpVectorShuffle, e.typeID(to.Column()), append([]uint32{col, col}, sel...)...)
		}
		cols[c] = col
	}
	return e.value(OpCompositeConstruct, e.typeID(to), cols...)
}

// cast changes the component type of same-shaped numeric values.
func (e *emitter) cast(v uint32, from, to *types.Type) uint32 {
	fs, ts := from.Scalar, to.Scalar
	if fs == ts {
		return v
	}
	if to.IsMatrix() {
		cols := make([]uint32, to.Cols)
		for c := range cols {
			col := e.value(OpCompositeExtract, e.typeID(from.Column()), v, uint32(c))
			cols[c] = e.cast(col, from.Column(), to.Column())
		}
		return e.value(OpCompositeConstruct, e.typeID(to), cols...)
	}
	t := e.typeID(to)
	switch {
	case ts == types.ScalarBool:
		op := OpINotEqual
		if fs.IsFloat() {
			op = OpFUnordNotEqual
		}
		return e.value(op, t, v, e.zero(from))
	case fs == types.ScalarBool:
		return e.value(OpSelect, t, v, e.one(to), e.zero(to))
	case fs.IsFloat() && ts.IsFloat():
		return e.value(OpFConvert, t, v)
	case fs.IsFloat():
		if ts.IsSigned() {
			return e.value(OpConvertFToS, t, v)
		}
		return e.value(OpConvertFToU, t, v)
	case ts.IsFloat():
		if fs.IsSigned() {
			return e.value(OpConvertSToF, t, v)
		}
		return e.value(OpConvertUToF, t, v)
	}
	if fs.Bits() != ts.Bits() {
		// сначала ширина со знаковостью источника, потом bitcast
		mid := widthOf(fs, ts.Bits())
		op := OpUConvert
		if fs.IsSigned() {
			op = OpSConvert
		}
		v = e.value(op, e.typeID(to.WithScalar(mid)), v)
		fs = mid
	}
	if fs != ts {
		v = e.value(OpBitcast, t, v)
	}
	return v
}

func widthOf(s types.Scalar, bits uint32) types.Scalar {
	switch {
	case s.IsSigned() && bits == 64:
		return types.ScalarLong
	case s.IsSigned():
		return types.ScalarInt
	case bits == 64:
		return types.ScalarULong
	}
	return types.ScalarUInt
}

// splat repeats a scalar over a vector or matrix.
func (e *emitter) splat(s uint32, t *types.Type) uint32 {
	if t.Components() == 1 {
		return s
	}
	if t.IsMatrix() {
		col := e.splat(s, t.Column())
		cols := make([]uint32, t.Cols)
		for i := range cols {
			cols[i] = col
		}
		return e.value(OpCompositeConstruct, e.typeID(t), cols...)
	}
	parts := make([]uint32, t.Rows)
	for i := range parts {
		parts[i] = s
	}
	return e.value(OpCompositeConstruct, e.typeID(t), parts...)
}

// Constructors ---------------------------------------------------------------

func (e *emitter) construct(x *sema.Construct) uint32 {
	t := x.Type()
	if id, ok := e.constExpr(x); ok {
		return id
	}
	switch {
	case t.IsMatrix():
		comps := e.flatten(x.Args)
		cols := make([]uint32, t.Cols)
		for c := range cols {
			col := make([]uint32, t.Rows)
			for r := range col {
				col[r] = comps[r*int(t.Cols)+c]
			}
			cols[c] = e.value(OpCompositeConstruct, e.typeID(t.Column()), col...)
		}
		return e.value(OpCompositeConstruct, e.typeID(t), cols...)
	case t.IsVector():
		var parts []uint32
		for _, a := range x.Args {
			if a.Type().IsMatrix() {
				parts = append(parts, e.flatten([]sema.Expr{a})...)
				continue
			}
			parts = append(parts, e.expr(a))
		}
		return e.value(OpCompositeConstruct, e.typeID(t), parts...)
	}
	parts := make([]uint32, len(x.Args))
	for i, a := range x.Args {
		parts[i] = e.expr(a)
	}
	return e.value(OpCompositeConstruct, e.typeID(t), parts...)
}

// flatten spreads numeric arguments into scalars, matrices row by row.
func (e *emitter) flatten(args []sema.Expr) []uint32 {
	var out []uint32
	for _, a := range args {
		t := a.Type()
		v := e.expr(a)
		comp := e.typeID(types.ScalarOf(t.Scalar))
		switch {
		case t.Components() == 1:
			out = append(out, v)
		case t.IsVector():
			for i := 0; i < int(t.Rows); i++ {
				out = append(out, e.value(OpCompositeExtract, comp, v, uint32(i)))
			}
		case t.IsMatrix():
			for r := 0; r < int(t.Rows); r++ {
				for c := 0; c < int(t.Cols); c++ {
					out = append(out, e.value(OpCompositeExtract, comp, v, uint32(c), uint32(r)))
				}
			}
		}
	}
	return out
}

// constExpr lowers constant constructors of arrays and structs to
// OpConstantComposite.
func (e *emitter) constExpr(x sema.Expr) (uint32, bool) {
	switch x := x.(type) {
	case *sema.Const:
		return e.constValue(x.Type(), x.Values), true
	case *sema.Construct:
		t := x.Type()
		if t.Kind != types.KindArray && t.Kind != types.KindStruct {
			return 0, false
		}
		parts := make([]uint32, len(x.Args))
		for i, a := range x.Args {
			id, ok := e.constExpr(a)
			if !ok {
				return 0, false
			}
			parts[i] = id
		}
		return e.constComposite(t, parts), true
	}
	return 0, false
}

// Operators ------------------------------------------------------------------

func (e *emitter) unary(op sema.UnaryOp, t *types.Type, v uint32) uint32 {
	if t.IsMatrix() {
		return e.perColumn(t, t, func(ct, _ *types.Type, c ...uint32) uint32 { return e.unary(op, ct, c[0]) }, v)
	}
	switch op {
	case sema.UnNot:
		return e.value(OpLogicalNot, e.typeID(t), v)
	case sema.UnBitNot:
		return e.value(OpNot, e.typeID(t), v)
	}
	if t.Scalar.IsFloat() {
		return e.value(OpFNegate, e.typeID(t), v)
	}
	return e.value(OpSNegate, e.typeID(t), v)
}

// perColumn applies f to matching columns of matrix operands.
func (e *emitter) perColumn(t, rt *types.Type, f func(ct, rct *types.Type, cols ...uint32) uint32, vs ...uint32) uint32 {
	ct, rct := t.Column(), rt.Column()
	out := make([]uint32, t.Cols)
	for c := range out {
		cols := make([]uint32, len(vs))
		for i, v := range vs {
			cols[i] = e.value(OpCompositeExtract, e.typeID(ct), v, uint32(c))
		}
		out[c] = f(ct, rct, cols...)
	}
	return e.value(OpCompositeConstruct, e.typeID(rt), out...)
}

// binary applies op to operands of type t producing rt.
func (e *emitter) binary(op ast.BinaryOp, t, rt *types.Type, l, r uint32) uint32 {
	if t.IsMatrix() {
		return e.perColumn(t, rt, func(ct, rct *types.Type, c ...uint32) uint32 {
			return e.binary(op, ct, rct, c[0], c[1])
		}, l, r)
	}
	return e.value(binaryOpcode(op, t.Scalar), e.typeID(rt), l, r)
}

func binaryOpcode(op ast.BinaryOp, s types.Scalar) Op {
	f, signed := s.IsFloat(), s.IsSigned()
	pick := func(fop, sop, uop Op) Op {
		switch {
		case f:
			return fop
		case signed:
			return sop
		}
		return uop
	}
	if s == types.ScalarBool {
		switch op {
		case ast.BinEq:
			return OpLogicalEqual
		case ast.BinNe:
			return OpLogicalNotEqual
		case ast.BinLogAnd:
			return OpLogicalAnd
		case ast.BinLogOr:
			return OpLogicalOr
		}
	}
	switch op {
	case ast.BinAdd:
		return pick(OpFAdd, OpIAdd, OpIAdd)
	case ast.BinSub:
		return pick(OpFSub, OpISub, OpISub)
	case ast.BinMul:
		return pick(OpFMul, OpIMul, OpIMul)
	case ast.BinDiv:
		return pick(OpFDiv, OpSDiv, OpUDiv)
	case ast.BinMod:
		return pick(OpFRem, OpSRem, OpUMod)
	case ast.BinShl:
		return OpShiftLeftLogical
	case ast.BinShr:
		return pick(OpNop, OpShiftRightArithmetic, OpShiftRightLogical)
	case ast.BinBitAnd:
		return OpBitwiseAnd
	case ast.BinBitOr:
		return OpBitwiseOr
	case ast.BinBitXor:
		return OpBitwiseXor
	case ast.BinLogAnd:
		return OpLogicalAnd
	case ast.BinLogOr:
		return OpLogicalOr
	case ast.BinEq:
		return pick(OpFOrdEqual, OpIEqual, OpIEqual)
	case ast.BinNe:
		return pick(OpFUnordNotEqual, OpINotEqual, OpINotEqual)
	case ast.BinLt:
		return pick(OpFOrdLessThan, OpSLessThan, OpULessThan)
	case ast.BinLe:
		return pick(OpFOrdLessThanEqual, OpSLessThanEqual, OpULessThanEqual)
	case ast.BinGt:
		return pick(OpFOrdGreaterThan, OpSGreaterThan, OpUGreaterThan)
	case ast.BinGe:
		return pick(OpFOrdGreaterThanEqual, OpSGreaterThanEqual, OpUGreaterThanEqual)
	}
	return OpNop
}

// ternary evaluates both branches and selects; a scalar condition is
// widened to the shape of the result.
func (e *emitter) ternary(x *sema.Ternary) uint32 {
	cond := e.expr(x.Cond)
	a, b := e.expr(x.Then), e.expr(x.Else)
	return e.selectValue(x.Type(), x.Cond.Type(), cond, a, b)
}

func (e *emitter) selectValue(t, ct *types.Type, cond, a, b uint32) uint32 {
	if t.IsMatrix() {
		return e.perColumn(t, t, func(col, _ *types.Type, c ...uint32) uint32 {
			return e.selectValue(col, ct, cond, c[0], c[1])
		}, a, b)
	}
	if t.Components() > 1 && ct.Components() == 1 {
		cond = e.splat(cond, t.WithScalar(types.ScalarBool))
	}
	return e.value(OpSelect, e.typeID(t), cond, a, b)
}

// Calls ----------------------------------------------------------------------

// call passes out and inout arguments through function variables and
// copies them back after the call.
func (e *emitter) call(x *sema.Call) uint32 {
	type writeback struct {
		tmp uint32
		arg sema.Expr
		t   *types.Type
	}
	var back []writeback
	args := make([]uint32, len(x.Args))
	for i, a := range x.Args {
		p := x.Func.Params[i]
		if !p.Qual.Writes() {
			args[i] = e.expr(a)
			continue
		}
		tmp := e.local(p.Type, p.Name)
		if p.Qual != types.QualOut {
			e.store(tmp, e.expr(a))
		}
		args[i] = tmp
		back = append(back, writeback{tmp: tmp, arg: a, t: p.Type})
	}
	res := e.value(OpFunctionCall, e.typeID(x.Func.Ret), append([]uint32{e.funcs[x.Func]}, args...)...)
	for _, wb := range back {
		e.assign(wb.arg, e.load(wb.t, wb.tmp))
	}
	return res
}
