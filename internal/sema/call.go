package sema

import (
	"errors"
	"fmt"
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/intrinsics"
	"sdslc/internal/source"
	"sdslc/internal/symbols"
	"sdslc/internal/types"
)

func (c *checker) checkArgs(ids []ast.ExprID) []Expr {
	args := make([]Expr, len(ids))
	for i, id := range ids {
		args[i] = c.checkExpr(id)
	}
	return args
}

func argTypes(args []Expr) []*types.Type {
	ts := make([]*types.Type, len(args))
	for i, a := range args {
		ts[i] = a.Type()
	}
	return ts
}

func (c *checker) callExpr(id ast.ExprID, span source.Span) Expr {
	call, _ := c.b.Exprs.Call(id)
	callee := c.b.Exprs.Get(call.Callee)
	switch callee.Kind {
	case ast.ExprIdent:
		ident, _ := c.b.Exprs.Ident(call.Callee)
		if t, ok := types.Lookup(ident.Name); ok && t.IsNumeric() {
			if t.IsMatrix() && (t.Rows == 1 || t.Cols == 1) {
				c.errorf(diag.SemaUnknownType, callee.Span, "matrix type %s with a dimension of 1 is not supported; use a vector", ident.Name)
				return c.bad(span)
			}
			c.checkTypeProfile(t, callee.Span)
			return c.construct(t, c.checkArgs(call.Args), span)
		}
		return c.callNamed(ident.Name, callee.Span, call.Args, span)
	case ast.ExprMember:
		return c.callMember(call.Callee, call.Args, span)
	}
	c.checkArgs(call.Args)
	c.errorf(diag.SemaNotCallable, callee.Span, "expression is not callable")
	return c.bad(span)
}

// callNamed resolves f(args) against the visible methods, then the
// intrinsics.
func (c *checker) callNamed(name string, nameSpan source.Span, argIDs []ast.ExprID, span source.Span) Expr {
	args := c.checkArgs(argIDs)
	if anyInvalid(args...) {
		return c.bad(span)
	}
	if cands := c.candidates(c.tab.LookupAll(name)); len(cands) > 0 {
		m, conv, ok := c.pick(name, cands, args, span)
		if !ok {
			return c.bad(span)
		}
		return c.dispatch(c.inst, m, conv, span)
	}
	if intrinsics.IsIntrinsic(name) {
		return c.callIntrinsic(name, nil, args, span)
	}
	if sym := c.tab.Lookup(name); sym != nil {
		c.errorf(diag.SemaNotCallable, nameSpan, "%s %s is not a method", sym.Kind, name)
		return c.bad(span)
	}
	c.errorf(diag.SemaUnresolvedSymbol, nameSpan, "undefined method %q in %s", name, c.scopeName())
	return c.bad(span)
}

func (c *checker) callMember(calleeID ast.ExprID, argIDs []ast.ExprID, span source.Span) Expr {
	m, _ := c.b.Exprs.Member(calleeID)
	tgt := c.b.Exprs.Get(m.Target)
	switch tgt.Kind {
	case ast.ExprBase:
		return c.callBase(m.Name, m.NameSpan, argIDs, span)
	case ast.ExprThis:
		if c.inst == nil {
			c.checkArgs(argIDs)
			c.errorf(diag.SemaInvalidOperands, tgt.Span, "this is only available inside a shader class")
			return c.bad(span)
		}
		return c.callIn(c.inst, c.inst.frames[c.cls], nil, m.Name, m.NameSpan, argIDs, span)
	case ast.ExprIdent:
		ident, _ := c.b.Exprs.Ident(m.Target)
		sym := c.tab.Lookup(ident.Name)
		if sym != nil && sym.Kind == symbols.SymbolComposition {
			sub, frame := c.composition(sym)
			if frame == nil {
				c.checkArgs(argIDs)
				return c.bad(span)
			}
			return c.callIn(sub, frame, nil, m.Name, m.NameSpan, argIDs, span)
		}
		if sym == nil && c.inst != nil {
			if cls := c.inst.classOf(ident.Name); cls != nil {
				return c.callIn(c.inst, c.inst.frames[cls], cls, m.Name, m.NameSpan, argIDs, span)
			}
		}
	}

	recv := c.checkExpr(m.Target)
	args := c.checkArgs(argIDs)
	if anyInvalid(recv) || anyInvalid(args...) {
		return c.bad(span)
	}
	if !intrinsics.HasMethods(recv.Type()) {
		c.errorf(diag.SemaNotCallable, m.NameSpan, "type %s has no method %s", recv.Type(), m.Name)
		return c.bad(span)
	}
	return c.callIntrinsic(m.Name, recv, args, span)
}

// callIn calls a method visible from frame. With fixed set the call is
// bound statically to the implementation visible at that class;
// otherwise it dispatches to the final implementation of inst.
func (c *checker) callIn(inst *instance, frame *symbols.Frame, fixed *class, name string, nameSpan source.Span, argIDs []ast.ExprID, span source.Span) Expr {
	args := c.checkArgs(argIDs)
	if anyInvalid(args...) {
		return c.bad(span)
	}
	cands := c.candidates(frame.LookupAll(name))
	if len(cands) == 0 {
		c.errorf(diag.SemaUnknownMember, nameSpan, "%s has no method %s", frame.Name, name)
		return c.bad(span)
	}
	m, conv, ok := c.pick(name, cands, args, span)
	if !ok {
		return c.bad(span)
	}
	if fixed != nil {
		target := upTo(inst, m.key, fixed)
		if target == nil {
			c.errorf(diag.SemaAbstractNotImplemented, span, "%s.%s has no implementation", fixed.name, name)
			return c.bad(span)
		}
		return c.call(target, conv, span)
	}
	return c.dispatch(inst, m, conv, span)
}

// upTo is the last implementation of key with a body at or before cls.
func upTo(inst *instance, key string, cls *class) *methodImpl {
	limit := inst.index[cls]
	chain := inst.chains[key]
	for i := len(chain) - 1; i >= 0; i-- {
		if inst.index[chain[i].cls] <= limit && chain[i].hasBody() {
			return chain[i]
		}
	}
	return nil
}

// callBase calls the implementation preceding the current class.
func (c *checker) callBase(name string, nameSpan source.Span, argIDs []ast.ExprID, span source.Span) Expr {
	args := c.checkArgs(argIDs)
	if anyInvalid(args...) {
		return c.bad(span)
	}
	if c.impl == nil {
		c.errorf(diag.SemaBaseWithoutParent, span, "base can only be used inside a method")
		return c.bad(span)
	}
	var cands []*methodImpl
	for _, m := range c.inst.methods {
		if m.sym.Name != name || m.cls == c.cls || !containsClass(c.cls.lin, m.cls) {
			continue
		}
		cands = replaceKey(cands, m)
	}
	if len(cands) == 0 {
		c.errorf(diag.SemaBaseWithoutParent, nameSpan, "no base class of %s declares %s", c.cls.name, name)
		return c.bad(span)
	}
	m, conv, ok := c.pick(name, cands, args, span)
	if !ok {
		return c.bad(span)
	}
	target := c.inst.baseOf(m, c.cls)
	if target == nil {
		c.errorf(diag.SemaBaseWithoutParent, nameSpan, "base.%s has no implementation before %s", name, c.cls.name)
		return c.bad(span)
	}
	return c.call(target, conv, span)
}

// replaceKey keeps one candidate per method key, the latest one.
func replaceKey(cands []*methodImpl, m *methodImpl) []*methodImpl {
	for i, o := range cands {
		if o.key == m.key {
			cands[i] = m
			return cands
		}
	}
	return append(cands, m)
}

// candidates expands method symbols into implementations, nearest frame
// first, one per key.
func (c *checker) candidates(syms []*symbols.Symbol) []*methodImpl {
	var out []*methodImpl
	seen := make(map[string]bool)
	for _, sym := range syms {
		for _, o := range sym.Overloads() {
			m, _ := c.info[o].(*methodImpl)
			if m == nil || seen[m.key] {
				continue
			}
			seen[m.key] = true
			out = append(out, m)
		}
	}
	return out
}

// pick chooses the cheapest overload and converts the arguments to it.
func (c *checker) pick(name string, cands []*methodImpl, args []Expr, span source.Span) (*methodImpl, []Expr, bool) {
	var (
		best *methodImpl
		ties []*methodImpl
		cost int
	)
	for _, m := range cands {
		total, ok := callCost(m.sym.Type, args)
		if !ok {
			continue
		}
		switch {
		case best == nil || total < cost:
			best, cost, ties = m, total, nil
		case total == cost:
			ties = append(ties, m)
		}
	}
	if best == nil {
		c.errorf(diag.SemaNoOverload, span, "no overload of %s matches (%s); candidates: %s",
			name, typeNames(argTypes(args)), implList(cands))
		return nil, nil, false
	}
	if len(ties) > 0 {
		c.errorf(diag.SemaAmbiguousOverload, span, "ambiguous call %s(%s); candidates: %s",
			name, typeNames(argTypes(args)), implList(append([]*methodImpl{best}, ties...)))
		return nil, nil, false
	}
	if c.impl != nil && c.impl.static && !best.static {
		c.errorf(diag.SemaStaticMemberAccess, span, "static method %s can not call method %s", c.impl.sym.Name, name)
		return nil, nil, false
	}
	params := best.sym.Type.Params
	conv := make([]Expr, len(args))
	for i, p := range params {
		if p.Qual.Writes() {
			if !c.requireLValue(args[i]) {
				return nil, nil, false
			}
			conv[i] = args[i]
			continue
		}
		conv[i] = c.coerce(args[i], p.Type, fmt.Sprintf("argument %d of %s", i+1, name))
	}
	return best, conv, !anyInvalid(conv...)
}

// callCost sums the conversion costs of args; out arguments must match
// exactly.
func callCost(fn *types.Type, args []Expr) (int, bool) {
	if len(fn.Params) != len(args) {
		return 0, false
	}
	total := 0
	for i, p := range fn.Params {
		at := args[i].Type()
		if p.Qual.Writes() {
			if !types.Equal(at, p.Type) {
				return 0, false
			}
			continue
		}
		conv := types.Convert(at, p.Type)
		if !conv.OK() {
			return 0, false
		}
		total += conv.Cost
	}
	return total, true
}

// dispatch calls the final implementation of m's key in inst.
func (c *checker) dispatch(inst *instance, m *methodImpl, args []Expr, span source.Span) Expr {
	target := inst.final(m.key)
	if target == nil {
		// уже сообщено в checkInheritance
		return c.bad(span)
	}
	return c.call(target, args, span)
}

func (c *checker) call(target *methodImpl, args []Expr, span source.Span) Expr {
	if target.fn == nil {
		return c.bad(span)
	}
	return &Call{exprBase: exprBase{T: target.fn.Ret, Sp: span}, Func: target.fn, Args: args}
}

// callIntrinsic resolves a builtin function, or a texture method when recv
// is set.
func (c *checker) callIntrinsic(name string, recv Expr, args []Expr, span source.Span) Expr {
	var (
		match intrinsics.Match
		err   error
	)
	if recv != nil {
		match, err = intrinsics.ResolveMethod(recv.Type(), name, argTypes(args), c.opts.Profile)
	} else {
		match, err = intrinsics.Resolve(name, argTypes(args), c.opts.Profile)
	}
	if err != nil {
		var (
			noMatch *intrinsics.NoMatchError
			amb     *intrinsics.AmbiguousError
			prof    *intrinsics.ProfileError
		)
		code := diag.SemaError
		switch {
		case errors.As(err, &noMatch):
			code = diag.SemaNoOverload
		case errors.As(err, &amb):
			code = diag.SemaAmbiguousOverload
		case errors.As(err, &prof):
			code = diag.SemaProfileUnsupported
		}
		c.errorf(code, span, "%s", err.Error())
		return c.bad(span)
	}
	conv := make([]Expr, len(args))
	for i, p := range match.Params {
		if match.Sig.Params[i].Qual.Writes() {
			if !c.requireLValue(args[i]) {
				return c.bad(span)
			}
			if !types.Equal(args[i].Type(), p) {
				c.errorf(diag.SemaTypeMismatch, args[i].Span(), "out argument %d of %s must have type %s, not %s", i+1, name, p, args[i].Type())
				return c.bad(span)
			}
			conv[i] = args[i]
			continue
		}
		conv[i] = c.coerce(args[i], p, fmt.Sprintf("argument %d of %s", i+1, name))
	}
	if anyInvalid(conv...) {
		return c.bad(span)
	}
	return &IntrinsicCall{
		exprBase: exprBase{T: match.Ret, Sp: span},
		Name:     name,
		Match:    match,
		Receiver: recv,
		Args:     conv,
	}
}

func typeNames(ts []*types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func implList(ms []*methodImpl) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.cls.name + "." + m.sym.Name + paramList(m.sym.Type)
	}
	return strings.Join(parts, "; ")
}
