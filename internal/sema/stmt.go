package sema

import (
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/source"
	"sdslc/internal/symbols"
	"sdslc/internal/types"
)

// checkMethod checks the body of an owned implementation.
func (c *checker) checkMethod(m *methodImpl) {
	c.fn, c.impl = m.fn, m
	c.tab.Push(symbols.FrameFunction, m.sym.Name)
	defer c.tab.Pop()

	for i, pid := range m.data.Params {
		p := c.b.Decls.Param(pid)
		v := m.fn.Params[i]
		sym := &symbols.Symbol{Name: p.Name, Kind: symbols.SymbolParam, Storage: symbols.StorageParam, Type: v.Type, Span: p.Span, Semantic: p.Semantic}
		if got, ok := c.declare(sym); ok {
			c.info[got] = v
		}
	}
	m.fn.Body = c.block(m.data.Body)
	if ret := m.fn.Ret; !ret.IsVoid() && !ret.IsInvalid() && !terminates(m.fn.Body) {
		c.errorf(diag.SemaMissingReturn, m.fn.Span, "method %s must return a value of type %s on every path", m.sym.Name, ret)
	}
}

func (c *checker) block(id ast.StmtID) *Block {
	st := c.b.Stmts.Get(id)
	out := &Block{stmtBase: stmtBase{Sp: st.Span}}
	data, ok := c.b.Stmts.Block(id)
	if !ok {
		if s := c.stmt(id); s != nil {
			out.Stmts = append(out.Stmts, s)
		}
		return out
	}
	c.tab.Push(symbols.FrameBlock, "")
	defer c.tab.Pop()
	for _, sid := range data.Stmts {
		if s := c.stmt(sid); s != nil {
			out.Stmts = append(out.Stmts, s)
		}
	}
	return out
}

// scoped checks a branch or loop body in its own frame.
func (c *checker) scoped(id ast.StmtID) Stmt {
	if !id.IsValid() {
		return nil
	}
	c.tab.Push(symbols.FrameBlock, "")
	defer c.tab.Pop()
	return c.stmt(id)
}

func (c *checker) stmt(id ast.StmtID) Stmt {
	st := c.b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	base := stmtBase{Sp: st.Span}
	switch st.Kind {
	case ast.StmtBlock:
		return c.block(id)
	case ast.StmtIf:
		data, _ := c.b.Stmts.If(id)
		out := &If{stmtBase: base, Cond: c.condition(data.Cond)}
		out.Then = c.scoped(data.Then)
		out.Else = c.scoped(data.Else)
		return out
	case ast.StmtFor, ast.StmtWhile, ast.StmtDo:
		return c.loop(id, st)
	case ast.StmtBreak, ast.StmtContinue:
		if c.loops == 0 {
			word := "break"
			if st.Kind == ast.StmtContinue {
				word = "continue"
			}
			c.errorf(diag.SemaJumpOutsideLoop, st.Span, "%s outside of a loop", word)
			return nil
		}
		if st.Kind == ast.StmtBreak {
			return &Break{stmtBase: base}
		}
		return &Continue{stmtBase: base}
	case ast.StmtDiscard:
		c.fn.HasDiscard = true
		return &Discard{stmtBase: base}
	case ast.StmtReturn:
		return c.returnStmt(id, base)
	case ast.StmtDecl:
		data, _ := c.b.Stmts.Decl(id)
		out := &Block{stmtBase: base}
		for _, did := range data.Decls {
			if d := c.localDecl(did); d != nil {
				out.Stmts = append(out.Stmts, d)
			}
		}
		if len(out.Stmts) == 1 {
			return out.Stmts[0]
		}
		return out
	case ast.StmtExpr:
		data, _ := c.b.Stmts.Expr(id)
		e := c.checkExpr(data.Expr)
		if anyInvalid(e) {
			return nil
		}
		return &ExprStmt{stmtBase: base, Expr: e}
	}
	return nil
}

func (c *checker) loop(id ast.StmtID, st *ast.Stmt) Stmt {
	data, _ := c.b.Stmts.Loop(id)
	out := &Loop{stmtBase: stmtBase{Sp: st.Span}, Control: c.loopControl(data.Attrs)}
	switch st.Kind {
	case ast.StmtWhile:
		out.Kind = LoopWhile
	case ast.StmtDo:
		out.Kind = LoopDo
	}
	c.tab.Push(symbols.FrameBlock, "")
	defer c.tab.Pop()
	if data.Init.IsValid() {
		out.Init = c.stmt(data.Init)
	}
	if data.Cond.IsValid() {
		out.Cond = c.condition(data.Cond)
	}
	if data.Post.IsValid() {
		if e := c.checkExpr(data.Post); !anyInvalid(e) {
			out.Post = e
		}
	}
	c.loops++
	out.Body = c.scoped(data.Body)
	c.loops--
	return out
}

func (c *checker) loopControl(attrs []ast.AttrID) LoopControl {
	for _, aid := range attrs {
		switch strings.ToLower(c.b.Decls.Attr(aid).Name) {
		case "unroll":
			return LoopUnroll
		case "loop":
			return LoopDontUnroll
		}
	}
	return LoopDefault
}

// condition checks a branch or loop condition; it must be a scalar.
func (c *checker) condition(id ast.ExprID) Expr {
	v := c.checkExpr(id)
	if anyInvalid(v) {
		return v
	}
	if t := v.Type(); !t.IsScalar() {
		c.errorf(diag.SemaTypeMismatch, v.Span(), "condition must be a scalar, not %s", t)
		return c.bad(v.Span())
	}
	return c.convertTo(v, types.Bool)
}

func (c *checker) returnStmt(id ast.StmtID, base stmtBase) Stmt {
	data, _ := c.b.Stmts.Return(id)
	ret := c.fn.Ret
	if !data.Value.IsValid() {
		if !ret.IsVoid() && !ret.IsInvalid() {
			c.errorf(diag.SemaTypeMismatch, base.Sp, "method %s must return a value of type %s", c.impl.sym.Name, ret)
		}
		return &Return{stmtBase: base}
	}
	v := c.checkExpr(data.Value)
	if ret.IsVoid() {
		if !anyInvalid(v) {
			c.errorf(diag.SemaTypeMismatch, v.Span(), "void method %s can not return a value", c.impl.sym.Name)
		}
		return &Return{stmtBase: base}
	}
	return &Return{stmtBase: base, Value: c.coerce(v, ret, "return")}
}

// localDecl declares a local variable after checking its initializer.
func (c *checker) localDecl(id ast.DeclID) Stmt {
	d := c.b.Decls.Get(id)
	vd, _ := c.b.Decls.Var(id)
	t := c.varType(vd.Type, vd.ArrayDims)
	if t.Kind == types.KindArray && t.Len == types.ArrayUnsized && vd.Init.IsValid() {
		if list, ok := c.b.Exprs.InitList(vd.Init); ok {
			t = types.MakeArray(t.Elem, uint32(len(list.Elems)))
		}
	}
	switch {
	case t.IsInvalid():
	case isResourceType(t):
		c.errorf(diag.SemaTypeMismatch, d.Span, "local variable %s can not hold a resource", d.Name)
		t = types.Invalid
	case t.Kind == types.KindArray && t.Len == types.ArrayUnsized:
		c.errorf(diag.SemaConstantRequired, d.Span, "local array %s needs a size", d.Name)
		t = types.Invalid
	}

	var init Expr
	if vd.Init.IsValid() && !t.IsInvalid() {
		init = c.checkInit(vd.Init, t)
	}
	v := &Var{Name: d.Name, Type: t, Storage: StorageLocal, Span: d.Span, ReadOnly: vd.Mods.Has(ast.ModConst)}
	sym := &symbols.Symbol{Name: d.Name, Kind: symbols.SymbolVariable, Storage: symbols.StorageLocal, Type: t, Span: d.Span, Decl: id}
	if v.ReadOnly {
		sym.Kind = symbols.SymbolConstant
		if k, ok := init.(*Const); ok {
			v.Storage, v.Init = StorageConst, k
		}
	}
	if got, ok := c.declare(sym); ok {
		c.info[got] = v
	}
	if t.IsInvalid() || init != nil && anyInvalid(init) {
		return nil
	}
	if v.Storage == StorageConst {
		return nil
	}
	return &Decl{stmtBase: stmtBase{Sp: d.Span}, Var: v, Init: init}
}

// terminates reports whether control never falls off the end of s.
func terminates(s Stmt) bool {
	switch s := s.(type) {
	case *Return, *Discard:
		return true
	case *Block:
		for _, st := range s.Stmts {
			if terminates(st) {
				return true
			}
		}
	case *If:
		return s.Else != nil && terminates(s.Then) && terminates(s.Else)
	case *Loop:
		if s.Kind == LoopDo && terminates(s.Body) && !breaks(s.Body) {
			return true
		}
		k, ok := s.Cond.(*Const)
		infinite := s.Cond == nil || ok && k.Values[0].Bool
		return infinite && !breaks(s.Body)
	}
	return false
}

// breaks reports a break that leaves the loop whose body is s.
func breaks(s Stmt) bool {
	switch s := s.(type) {
	case *Break:
		return true
	case *Block:
		for _, st := range s.Stmts {
			if breaks(st) {
				return true
			}
		}
	case *If:
		return breaks(s.Then) || breaks(s.Else)
	}
	return false
}

// attrArgs returns the arguments of the first attribute called name.
func (c *checker) attrArgs(attrs []ast.AttrID, name string) ([]ast.ExprID, source.Span, bool) {
	for _, aid := range attrs {
		a := c.b.Decls.Attr(aid)
		if strings.EqualFold(a.Name, name) {
			return a.Args, a.Span, true
		}
	}
	return nil, source.Span{}, false
}
