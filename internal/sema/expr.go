package sema

import (
	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/scan"
	"sdslc/internal/source"
	"sdslc/internal/symbols"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

// badExpr stands for an expression whose error was already reported. Its
// type is invalid, so every consumer stays silent.
type badExpr struct{ exprBase }

func (c *checker) bad(span source.Span) Expr {
	return &badExpr{exprBase{T: types.Invalid, Sp: span}}
}

func anyInvalid(es ...Expr) bool {
	for _, e := range es {
		if e == nil || e.Type().IsInvalid() {
			return true
		}
	}
	return false
}

// checkExpr checks an expression in value position.
func (c *checker) checkExpr(id ast.ExprID) Expr {
	e := c.b.Exprs.Get(id)
	if e == nil {
		return c.bad(source.Span{})
	}
	switch e.Kind {
	case ast.ExprLit:
		return c.literal(id, e.Span)
	case ast.ExprIdent:
		ident, _ := c.b.Exprs.Ident(id)
		return c.identExpr(ident.Name, e.Span)
	case ast.ExprStreams:
		c.errorf(diag.SemaInvalidOperands, e.Span, "streams can only be used to access a stream variable, as in streams.Position")
	case ast.ExprThis:
		c.errorf(diag.SemaInvalidOperands, e.Span, "this can only be used to access a member")
	case ast.ExprBase:
		c.errorf(diag.SemaBaseWithoutParent, e.Span, "base can only be used to call a base method, as in base.Compute()")
	case ast.ExprMember:
		return c.memberExpr(id, e.Span)
	case ast.ExprIndex:
		return c.indexExpr(id, e.Span)
	case ast.ExprCall:
		return c.callExpr(id, e.Span)
	case ast.ExprCast:
		cast, _ := c.b.Exprs.Cast(id)
		t := c.resolveType(cast.Type)
		v := c.checkExpr(cast.Value)
		if anyInvalid(v) || t.IsInvalid() {
			return c.bad(e.Span)
		}
		return c.explicitConvert(v, t, e.Span)
	case ast.ExprTernary:
		return c.ternaryExpr(id, e.Span)
	case ast.ExprUnary:
		return c.unaryExpr(id, e.Span)
	case ast.ExprBinary:
		bin, _ := c.b.Exprs.Binary(id)
		l, r := c.checkExpr(bin.Left), c.checkExpr(bin.Right)
		return c.binary(bin.Op, l, r, e.Span)
	case ast.ExprAssign:
		return c.assignExpr(id, e.Span)
	case ast.ExprInitList:
		c.errorf(diag.SemaInvalidOperands, e.Span, "initializer lists are only allowed in declarations")
	}
	return c.bad(e.Span)
}

func (c *checker) literal(id ast.ExprID, span source.Span) Expr {
	lit, _ := c.b.Exprs.Literal(id)
	switch lit.Kind {
	case ast.LitBool:
		return newConst(types.Bool, span, []Value{{Bool: lit.Bool}})
	case ast.LitFloat:
		t := types.Float
		switch lit.Number.Kind {
		case scan.NumDouble:
			t = types.Double
			c.checkTypeProfile(t, span)
		case scan.NumHalf:
			// без 16-битных типов half — это float
			if c.opts.Profile.Supports(target.FeatureHalf) {
				t = types.Half
			}
		}
		return newConst(t, span, []Value{fromFloat(lit.Number.Float, t.Scalar)})
	}
	t := types.Int
	switch lit.Number.Kind {
	case scan.NumUInt:
		t = types.UInt
	case scan.NumLong:
		t = types.ScalarOf(types.ScalarLong)
	case scan.NumULong:
		t = types.ScalarOf(types.ScalarULong)
	}
	c.checkTypeProfile(t, span)
	return newConst(t, span, []Value{{Int: wrap(int64(lit.Number.Int), t.Scalar)}})
}

func (c *checker) identExpr(name string, span source.Span) Expr {
	sym := c.tab.Lookup(name)
	if sym == nil {
		if c.reg.lookupClass(name) != nil {
			c.errorf(diag.SemaInvalidOperands, span, "shader class %s used as a value", name)
			return c.bad(span)
		}
		c.errorf(diag.SemaUnresolvedSymbol, span, "undefined symbol %q in %s", name, c.scopeName())
		return c.bad(span)
	}
	return c.symbolExpr(sym, span)
}

func (c *checker) symbolExpr(sym *symbols.Symbol, span source.Span) Expr {
	switch sym.Kind {
	case symbols.SymbolVariable, symbols.SymbolConstant, symbols.SymbolParam:
		v, _ := c.info[sym].(*Var)
		if v == nil {
			return c.bad(span)
		}
		c.checkStaticAccess(sym, span)
		return c.varRef(v, span)
	case symbols.SymbolMethod, symbols.SymbolMethodGroup:
		c.errorf(diag.SemaNotCallable, span, "method %s must be called", sym.Name)
	case symbols.SymbolComposition:
		c.errorf(diag.SemaInvalidOperands, span, "composition %s can only be used to access its members", sym.Name)
	default:
		c.errorf(diag.SemaInvalidOperands, span, "%s %s used as a value", sym.Kind, sym.Name)
	}
	return c.bad(span)
}

// checkStaticAccess reports instance members used from a static method.
func (c *checker) checkStaticAccess(sym *symbols.Symbol, span source.Span) {
	if c.impl == nil || !c.impl.static || sym.Owner == "" {
		return
	}
	switch sym.Storage {
	case symbols.StorageLocal, symbols.StorageParam, symbols.StorageStatic:
		return
	}
	if sym.Kind == symbols.SymbolConstant {
		return
	}
	c.errorf(diag.SemaStaticMemberAccess, span, "static method %s can not use member %s", c.impl.sym.Name, sym.Name)
}

// varRef reads a variable; folded constants are inlined.
func (c *checker) varRef(v *Var, span source.Span) Expr {
	if v.Storage == StorageConst {
		if k, ok := v.Init.(*Const); ok {
			return newConst(k.T, span, k.Values)
		}
	}
	return &VarRef{exprBase: exprBase{T: v.Type, Sp: span}, Var: v}
}

// Members ---------------------------------------------------------------------

func (c *checker) memberExpr(id ast.ExprID, span source.Span) Expr {
	m, _ := c.b.Exprs.Member(id)
	tgt := c.b.Exprs.Get(m.Target)
	switch tgt.Kind {
	case ast.ExprStreams:
		var sym *symbols.Symbol
		if c.inst != nil {
			sym = c.inst.frames[c.cls].Lookup(m.Name)
		}
		if sym == nil || sym.Storage != symbols.StorageStream {
			c.errorf(diag.SemaUnknownMember, m.NameSpan, "%s is not a stream variable", m.Name)
			return c.bad(span)
		}
		return c.symbolExpr(sym, span)
	case ast.ExprThis:
		if c.inst == nil {
			c.errorf(diag.SemaInvalidOperands, tgt.Span, "this is only available inside a shader class")
			return c.bad(span)
		}
		sym := c.inst.frames[c.cls].Lookup(m.Name)
		if sym == nil {
			c.errorf(diag.SemaUnknownMember, m.NameSpan, "shader %s has no member %s", c.cls.name, m.Name)
			return c.bad(span)
		}
		return c.symbolExpr(sym, span)
	case ast.ExprBase:
		c.errorf(diag.SemaBaseWithoutParent, span, "base can only be used to call a base method, as in base.%s()", m.Name)
		return c.bad(span)
	case ast.ExprIdent:
		ident, _ := c.b.Exprs.Ident(m.Target)
		sym := c.tab.Lookup(ident.Name)
		if sym != nil && sym.Kind == symbols.SymbolComposition {
			_, frame := c.composition(sym)
			if frame == nil {
				return c.bad(span)
			}
			ms := frame.Lookup(m.Name)
			if ms == nil {
				c.errorf(diag.SemaUnknownMember, m.NameSpan, "%s has no member %s", sym.Type.Name, m.Name)
				return c.bad(span)
			}
			return c.symbolExpr(ms, span)
		}
		if sym == nil && c.inst != nil {
			if cls := c.inst.classOf(ident.Name); cls != nil {
				ms := c.inst.frames[cls].Lookup(m.Name)
				if ms == nil {
					c.errorf(diag.SemaUnknownMember, m.NameSpan, "shader %s has no member %s", cls.name, m.Name)
					return c.bad(span)
				}
				return c.symbolExpr(ms, span)
			}
		}
	}

	v := c.checkExpr(m.Target)
	if anyInvalid(v) {
		return c.bad(span)
	}
	t := v.Type()
	switch {
	case t.Kind == types.KindStruct:
		idx, f := t.Field(m.Name)
		if f == nil {
			c.errorf(diag.SemaUnknownMember, m.NameSpan, "struct %s has no field %s", t.Name, m.Name)
			return c.bad(span)
		}
		return &Field{exprBase: exprBase{T: f.Type, Sp: span}, Value: v, Index: idx}
	case t.IsScalar() || t.IsVector():
		st, idx, ok := types.Swizzle(t, m.Name)
		if !ok {
			c.errorf(diag.SemaInvalidSwizzle, m.NameSpan, "invalid swizzle .%s on %s", m.Name, t)
			return c.bad(span)
		}
		return c.fold(&Swizzle{exprBase: exprBase{T: st, Sp: span}, Value: v, Indices: idx})
	case t.IsMatrix():
		st, idx, ok := matrixSwizzle(t, m.Name)
		if !ok {
			c.errorf(diag.SemaInvalidSwizzle, m.NameSpan, "invalid matrix swizzle .%s on %s", m.Name, t)
			return c.bad(span)
		}
		return &Swizzle{exprBase: exprBase{T: st, Sp: span}, Value: v, Indices: idx}
	}
	c.errorf(diag.SemaUnknownMember, m.NameSpan, "type %s has no member %s", t, m.Name)
	return c.bad(span)
}

// composition returns the instance bound to a composition symbol and the
// frame of its declared class.
func (c *checker) composition(sym *symbols.Symbol) (*instance, *symbols.Frame) {
	sub, _ := c.info[sym].(*instance)
	if sub == nil {
		return nil, nil
	}
	iface := sub.classOf(sym.Type.Name)
	if iface == nil {
		return nil, nil
	}
	return sub, sub.frames[iface]
}

// MatrixSwizzleIndex packs a row and column into a matrix swizzle index.
func MatrixSwizzleIndex(row, col uint32) uint32 { return row*4 + col }

// matrixSwizzle reads ._m01 (zero based) and ._12 (one based) selectors.
func matrixSwizzle(t *types.Type, name string) (*types.Type, []uint32, bool) {
	var idx []uint32
	for i := 0; i < len(name); {
		if name[i] != '_' {
			return types.Invalid, nil, false
		}
		i++
		base := byte('1')
		if i < len(name) && name[i] == 'm' {
			base = '0'
			i++
		}
		if i+2 > len(name) {
			return types.Invalid, nil, false
		}
		r, col := int(name[i])-int(base), int(name[i+1])-int(base)
		if r < 0 || r >= int(t.Rows) || col < 0 || col >= int(t.Cols) {
			return types.Invalid, nil, false
		}
		idx = append(idx, MatrixSwizzleIndex(uint32(r), uint32(col)))
		i += 2
	}
	if len(idx) == 0 || len(idx) > 4 {
		return types.Invalid, nil, false
	}
	if len(idx) == 1 {
		return types.ScalarOf(t.Scalar), idx, true
	}
	return types.VectorOf(t.Scalar, len(idx)), idx, true
}

func (c *checker) indexExpr(id ast.ExprID, span source.Span) Expr {
	ix, _ := c.b.Exprs.Index(id)
	v, i := c.checkExpr(ix.Target), c.checkExpr(ix.Index)
	if anyInvalid(v, i) {
		return c.bad(span)
	}
	it := i.Type()
	if !it.IsScalar() {
		c.errorf(diag.SemaTypeMismatch, i.Span(), "index must be an integer scalar, not %s", it)
		return c.bad(span)
	}
	if !it.Scalar.IsInt() {
		i = c.convertTo(i, types.Int)
	}
	t := v.Type()
	var et *types.Type
	n := -1
	switch {
	case t.Kind == types.KindArray:
		et = t.Elem
		if t.Len != types.ArrayUnsized {
			n = int(t.Len)
		}
	case t.IsVector():
		et, n = types.ScalarOf(t.Scalar), int(t.Rows)
	case t.IsMatrix():
		et, n = t.Row(), int(t.Rows)
	case t.Kind == types.KindBuffer:
		et = t.Elem
	default:
		c.errorf(diag.SemaInvalidOperands, span, "type %s can not be indexed", t)
		return c.bad(span)
	}
	if k, ok := i.(*Const); ok && n >= 0 {
		if at := k.Values[0].integer(k.T.Scalar); at < 0 || at >= int64(n) {
			c.errorf(diag.SemaInvalidOperands, i.Span(), "index %d is out of range for %s", at, t)
			return c.bad(span)
		}
	}
	return c.fold(&Index{exprBase: exprBase{T: et, Sp: span}, Value: v, Index: i})
}

// Conversions ----------------------------------------------------------------

// convertTo converts without diagnostics; callers validated the
// conversion.
func (c *checker) convertTo(e Expr, t *types.Type) Expr {
	if types.Equal(e.Type(), t) {
		return e
	}
	return c.fold(&Convert{exprBase: exprBase{T: t, Sp: e.Span()}, Value: e})
}

// coerce applies an implicit conversion, reporting invalid ones and
// warning on truncation.
func (c *checker) coerce(e Expr, t *types.Type, what string) Expr {
	from := e.Type()
	if from.IsInvalid() || t.IsInvalid() {
		return e
	}
	conv := types.Convert(from, t)
	if !conv.OK() {
		c.errorf(diag.SemaTypeMismatch, e.Span(), "cannot convert %s to %s in %s", from, t, what)
		return c.bad(e.Span())
	}
	if conv.Kind == types.ConvTruncation {
		c.warnf(diag.SemaImplicitTruncation, e.Span(), "implicit truncation of %s to %s in %s", from, t, what)
	}
	return c.convertTo(e, t)
}

func (c *checker) explicitConvert(v Expr, t *types.Type, span source.Span) Expr {
	from := v.Type()
	if types.Equal(from, t) {
		return v
	}
	if from.IsNumeric() && t.IsNumeric() && types.Convert(from, t).OK() {
		return c.fold(&Convert{exprBase: exprBase{T: t, Sp: span}, Value: v})
	}
	c.errorf(diag.SemaTypeMismatch, span, "cannot cast %s to %s", from, t)
	return c.bad(span)
}

// Operators ------------------------------------------------------------------

func truncates(from, to *types.Type) bool {
	return from.Components() > 1 && from.Components() > to.Components()
}

// binary types an operator application; operands are converted to the
// common type.
func (c *checker) binary(op ast.BinaryOp, l, r Expr, span source.Span) Expr {
	if anyInvalid(l, r) {
		return c.bad(span)
	}
	lt, rt := l.Type(), r.Type()
	ct := types.Common(lt, rt)
	if !lt.IsNumeric() || !rt.IsNumeric() || ct.IsInvalid() {
		hint := ""
		if op == ast.BinMul && (lt.IsMatrix() || rt.IsMatrix()) {
			hint = "; use mul() for matrix products"
		}
		c.errorf(diag.SemaInvalidOperands, span, "invalid operands %s %s %s%s", lt, op, rt, hint)
		return c.bad(span)
	}
	if truncates(lt, ct) || truncates(rt, ct) {
		c.warnf(diag.SemaImplicitTruncation, span, "implicit truncation of vector type in %s %s %s", lt, op, rt)
	}
	if ct.IsMatrix() && (op.IsLogical() || op.IsComparison() || op == ast.BinShl || op == ast.BinShr ||
		op == ast.BinBitAnd || op == ast.BinBitOr || op == ast.BinBitXor) {
		c.errorf(diag.SemaInvalidOperands, span, "operator %s is not defined on matrix %s", op, ct)
		return c.bad(span)
	}
	result := ct
	switch {
	case op.IsLogical():
		ct = ct.WithScalar(types.ScalarBool)
		result = ct
	case op.IsComparison():
		result = ct.WithScalar(types.ScalarBool)
		if ct.Scalar == types.ScalarBool && op != ast.BinEq && op != ast.BinNe {
			ct = ct.WithScalar(types.ScalarInt)
		}
	case op == ast.BinShl || op == ast.BinShr || op == ast.BinBitAnd || op == ast.BinBitOr || op == ast.BinBitXor:
		if ct.Scalar.IsFloat() {
			c.errorf(diag.SemaInvalidOperands, span, "operator %s needs integer operands, not %s and %s", op, lt, rt)
			return c.bad(span)
		}
		if ct.Scalar == types.ScalarBool {
			ct = ct.WithScalar(types.ScalarInt)
		}
		result = ct
	default:
		if ct.Scalar == types.ScalarBool {
			ct = ct.WithScalar(types.ScalarInt)
		}
		result = ct
	}
	return c.fold(&Binary{
		exprBase: exprBase{T: result, Sp: span},
		Op:       op,
		Left:     c.convertTo(l, ct),
		Right:    c.convertTo(r, ct),
	})
}

func (c *checker) unaryExpr(id ast.ExprID, span source.Span) Expr {
	u, _ := c.b.Exprs.Unary(id)
	v := c.checkExpr(u.Operand)
	if anyInvalid(v) {
		return c.bad(span)
	}
	t := v.Type()
	if !t.IsNumeric() {
		c.errorf(diag.SemaInvalidOperands, span, "operator %s needs a numeric operand, not %s", u.Op, t)
		return c.bad(span)
	}
	if t.IsMatrix() && (u.Op == ast.UnNot || u.Op == ast.UnBitNot) {
		c.errorf(diag.SemaInvalidOperands, span, "operator %s is not defined on matrix %s", u.Op, t)
		return c.bad(span)
	}
	switch u.Op {
	case ast.UnPlus, ast.UnNeg:
		if t.Scalar == types.ScalarBool {
			t = t.WithScalar(types.ScalarInt)
			v = c.convertTo(v, t)
		}
		if u.Op == ast.UnPlus {
			return v
		}
		return c.fold(&Unary{exprBase: exprBase{T: t, Sp: span}, Op: UnNeg, Operand: v})
	case ast.UnNot:
		bt := t.WithScalar(types.ScalarBool)
		return c.fold(&Unary{exprBase: exprBase{T: bt, Sp: span}, Op: UnNot, Operand: c.convertTo(v, bt)})
	case ast.UnBitNot:
		if t.Scalar.IsFloat() {
			c.errorf(diag.SemaInvalidOperands, span, "operator ~ needs an integer operand, not %s", t)
			return c.bad(span)
		}
		if t.Scalar == types.ScalarBool {
			t = t.WithScalar(types.ScalarInt)
			v = c.convertTo(v, t)
		}
		return c.fold(&Unary{exprBase: exprBase{T: t, Sp: span}, Op: UnBitNot, Operand: v})
	}
	if t.Scalar == types.ScalarBool || t.IsMatrix() {
		c.errorf(diag.SemaInvalidOperands, span, "operator %s needs a scalar or vector number, not %s", u.Op, t)
		return c.bad(span)
	}
	if !c.requireLValue(v) {
		return c.bad(span)
	}
	return &IncDec{
		exprBase: exprBase{T: t, Sp: span},
		Target:   v,
		Pre:      u.Op == ast.UnPreInc || u.Op == ast.UnPreDec,
		Dec:      u.Op == ast.UnPreDec || u.Op == ast.UnPostDec,
	}
}

func (c *checker) ternaryExpr(id ast.ExprID, span source.Span) Expr {
	t, _ := c.b.Exprs.Ternary(id)
	cond, a, b := c.checkExpr(t.Cond), c.checkExpr(t.Then), c.checkExpr(t.Else)
	if anyInvalid(cond, a, b) {
		return c.bad(span)
	}
	var rt *types.Type
	switch {
	case types.Equal(a.Type(), b.Type()):
		rt = a.Type()
	case a.Type().IsNumeric() && b.Type().IsNumeric():
		rt = types.Common(a.Type(), b.Type())
	}
	if rt == nil || rt.IsInvalid() {
		c.errorf(diag.SemaTypeMismatch, span, "branches of ?: have different types %s and %s", a.Type(), b.Type())
		return c.bad(span)
	}
	if !rt.IsNumeric() {
		c.errorf(diag.SemaInvalidOperands, span, "?: needs scalar, vector or matrix branches, not %s", rt)
		return c.bad(span)
	}
	ct := types.Bool
	if cond.Type().IsVector() && rt.IsVector() && cond.Type().Rows == rt.Rows {
		ct = types.VectorOf(types.ScalarBool, int(rt.Rows))
	}
	cond = c.coerce(cond, ct, "condition")
	if anyInvalid(cond) {
		return c.bad(span)
	}
	return c.fold(&Ternary{
		exprBase: exprBase{T: rt, Sp: span},
		Cond:     cond,
		Then:     c.convertTo(a, rt),
		Else:     c.convertTo(b, rt),
	})
}

func (c *checker) assignExpr(id ast.ExprID, span source.Span) Expr {
	as, _ := c.b.Exprs.Assign(id)
	target, value := c.checkExpr(as.Target), c.checkExpr(as.Value)
	if anyInvalid(target, value) || !c.requireLValue(target) {
		return c.bad(span)
	}
	if op, ok := as.Op.Binary(); ok {
		value = c.coerce(c.binary(op, target, value, span), target.Type(), "compound assignment")
	} else {
		value = c.coerce(value, target.Type(), "assignment")
	}
	if anyInvalid(value) {
		return c.bad(span)
	}
	return &Assign{exprBase: exprBase{T: target.Type(), Sp: span}, Target: target, Value: value}
}

// requireLValue reports expressions that can not be stored to.
func (c *checker) requireLValue(e Expr) bool {
	switch e := e.(type) {
	case *VarRef:
		if !e.Var.Assignable() {
			c.errorf(diag.SemaNotAssignable, e.Sp, "cannot assign to %s %s", storageNoun(e.Var), e.Var.Name)
			return false
		}
		return true
	case *Field:
		return c.requireLValue(e.Value)
	case *Index:
		switch {
		case e.Value.Type().IsMatrix():
			c.errorf(diag.SemaNotAssignable, e.Sp, "matrix rows are read-only; assign whole matrices or components")
			return false
		case e.Value.Type().Kind == types.KindBuffer:
			c.errorf(diag.SemaNotAssignable, e.Sp, "%s is read-only", e.Value.Type())
			return false
		}
		return c.requireLValue(e.Value)
	case *Swizzle:
		if e.Value.Type().IsMatrix() || types.HasDuplicates(e.Indices) {
			c.errorf(diag.SemaNotAssignable, e.Sp, "swizzle with repeated or matrix components is not assignable")
			return false
		}
		return c.requireLValue(e.Value)
	case *badExpr:
		return false
	}
	c.errorf(diag.SemaNotAssignable, e.Span(), "expression is not assignable")
	return false
}

func storageNoun(v *Var) string {
	switch {
	case v.Storage == StorageUniform:
		return "uniform"
	case v.Storage == StorageResource:
		return "resource"
	}
	return "constant"
}

// Initializers and constructors ----------------------------------------------

// checkInit checks a declaration initializer against t; brace lists are
// allowed here.
func (c *checker) checkInit(id ast.ExprID, t *types.Type) Expr {
	e := c.b.Exprs.Get(id)
	if e != nil && e.Kind == ast.ExprInitList {
		list, _ := c.b.Exprs.InitList(id)
		return c.initList(list.Elems, t, e.Span)
	}
	return c.coerce(c.checkExpr(id), t, "initializer")
}

func (c *checker) initList(elems []ast.ExprID, t *types.Type, span source.Span) Expr {
	if t.IsInvalid() {
		return c.bad(span)
	}
	switch {
	case t.Kind == types.KindArray:
		if int(t.Len) != len(elems) {
			c.errorf(diag.SemaTypeMismatch, span, "initializer has %d elements, %s needs %d", len(elems), t, t.Len)
			return c.bad(span)
		}
		args := make([]Expr, len(elems))
		for i, el := range elems {
			args[i] = c.checkInit(el, t.Elem)
		}
		if anyInvalid(args...) {
			return c.bad(span)
		}
		return &Construct{exprBase: exprBase{T: t, Sp: span}, Args: args}
	case t.Kind == types.KindStruct:
		if len(t.Fields) != len(elems) {
			c.errorf(diag.SemaTypeMismatch, span, "initializer has %d elements, struct %s has %d fields", len(elems), t.Name, len(t.Fields))
			return c.bad(span)
		}
		args := make([]Expr, len(elems))
		for i, el := range elems {
			args[i] = c.checkInit(el, t.Fields[i].Type)
		}
		if anyInvalid(args...) {
			return c.bad(span)
		}
		return &Construct{exprBase: exprBase{T: t, Sp: span}, Args: args}
	case t.IsNumeric():
		args := make([]Expr, len(elems))
		for i, el := range elems {
			args[i] = c.checkExpr(el)
		}
		return c.construct(t, args, span)
	}
	c.errorf(diag.SemaTypeMismatch, span, "%s can not be initialized from a list", t)
	return c.bad(span)
}

// construct checks a numeric constructor: the argument components must add
// up to the target, or a single scalar is splatted.
func (c *checker) construct(t *types.Type, args []Expr, span source.Span) Expr {
	if anyInvalid(args...) {
		return c.bad(span)
	}
	total := 0
	for _, a := range args {
		if !a.Type().IsNumeric() {
			c.errorf(diag.SemaTypeMismatch, a.Span(), "%s can not be built from %s", t, a.Type())
			return c.bad(span)
		}
		total += a.Type().Components()
	}
	if len(args) == 1 && total == 1 {
		return c.fold(&Convert{exprBase: exprBase{T: t, Sp: span}, Value: c.convertTo(args[0], types.ScalarOf(t.Scalar))})
	}
	if len(args) == 1 && types.Equal(args[0].Type(), t) {
		return args[0]
	}
	if total != t.Components() {
		c.errorf(diag.SemaTypeMismatch, span, "%s needs %d components, got %d", t, t.Components(), total)
		return c.bad(span)
	}
	conv := make([]Expr, len(args))
	for i, a := range args {
		conv[i] = c.convertTo(a, a.Type().WithScalar(t.Scalar))
	}
	return c.fold(&Construct{exprBase: exprBase{T: t, Sp: span}, Args: conv})
}
