package sema

import (
	"fmt"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/source"
	"sdslc/internal/symbols"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

// checker checks declarations and bodies of one class inside one
// instance.
type checker struct {
	*analyzer
	inst *instance
	cls  *class
	tab  *symbols.Table
	// fn and impl are set inside method bodies.
	fn    *Function
	impl  *methodImpl
	loops int
}

var globalFrame = symbols.NewFrame(symbols.FrameRoot, "")

func (a *analyzer) classChecker(inst *instance, cls *class) *checker {
	tab := symbols.NewTable(globalFrame)
	if inst != nil && cls != nil {
		tab.PushFrame(inst.frames[cls])
	}
	return &checker{analyzer: a, inst: inst, cls: cls, tab: tab}
}

func (c *checker) scopeName() string {
	switch {
	case c.fn != nil:
		return fmt.Sprintf("method %s.%s", c.cls.key, c.fn.Method)
	case c.cls != nil:
		return "shader " + c.cls.key
	}
	return "the global scope"
}

// resolveType turns a written type into a type, reporting unknown names
// and types the profile can not express.
func (c *checker) resolveType(id ast.TypeID) *types.Type {
	te := c.b.Types.Get(id)
	if te == nil {
		return types.Invalid
	}
	t := c.lookupTypeName(te)
	if t.IsInvalid() {
		return t
	}
	c.checkTypeProfile(t, te.Span)
	return t
}

func (c *checker) lookupTypeName(te *ast.TypeExpr) *types.Type {
	if d, ok := types.TextureByName(te.Name); ok {
		elem := types.Float4
		if len(te.Args) == 1 {
			elem = c.resolveType(te.Args[0])
			if !elem.IsInvalid() && (!elem.IsNumeric() || elem.IsMatrix()) {
				c.errorf(diag.SemaTypeMismatch, te.Span, "texture element must be a scalar or vector, not %s", elem)
				return types.Invalid
			}
		}
		if elem.IsInvalid() {
			return types.Invalid
		}
		return types.TextureOf(d, elem)
	}
	for _, bn := range types.BufferNames {
		if te.Name != bn {
			continue
		}
		if len(te.Args) != 1 {
			c.errorf(diag.SemaUnknownType, te.Span, "%s needs an element type, as in %s<float4>", bn, bn)
			return types.Invalid
		}
		elem := c.resolveType(te.Args[0])
		if elem.IsInvalid() {
			return elem
		}
		return types.BufferOf(bn, elem)
	}
	if len(te.Args) > 0 {
		c.errorf(diag.SemaUnknownType, te.Span, "type %s takes no arguments", te.Name)
		return types.Invalid
	}
	if t, ok := types.Lookup(te.Name); ok {
		if t.IsMatrix() && (t.Rows == 1 || t.Cols == 1) {
			c.errorf(diag.SemaUnknownType, te.Span, "matrix type %s with a dimension of 1 is not supported; use a vector", te.Name)
			return types.Invalid
		}
		if t.IsMatrix() && !t.Scalar.IsFloat() {
			c.errorf(diag.SemaUnknownType, te.Span, "matrix type %s needs a floating-point component type", te.Name)
			return types.Invalid
		}
		return t
	}
	if sym := c.tab.Lookup(te.Name); sym != nil && sym.Kind.IsType() {
		return sym.Type
	}
	if id, ok := c.reg.types[te.Name]; ok {
		return c.topLevelType(id)
	}
	if id, ok := c.reg.types[lastComponent(te.Name)]; ok {
		return c.topLevelType(id)
	}
	if cls := c.reg.lookupClass(te.Name); cls != nil {
		return types.MakeShader(cls.name)
	}
	c.errorf(diag.SemaUnknownType, te.Span, "unknown type %s", te.Name)
	return types.Invalid
}

// topLevelType resolves a struct or typedef declared outside any shader.
func (c *checker) topLevelType(id ast.DeclID) *types.Type {
	d := c.b.Decls.Get(id)
	if d.Kind == ast.DeclStruct {
		return c.structType(id)
	}
	if t, ok := c.structs[id]; ok {
		return t
	}
	if c.structBusy[id] {
		c.errorf(diag.SemaUnknownType, d.Span, "typedef %s refers to itself", d.Name)
		return types.Invalid
	}
	c.structBusy[id] = true
	data, _ := c.b.Decls.Typedef(id)
	g := c.classChecker(nil, nil)
	t := g.resolveType(data.Type)
	delete(c.structBusy, id)
	c.structs[id] = t
	return t
}

// structType builds a struct type once per declaration.
func (c *checker) structType(id ast.DeclID) *types.Type {
	if t, ok := c.structs[id]; ok {
		return t
	}
	d := c.b.Decls.Get(id)
	if c.structBusy[id] {
		c.errorf(diag.SemaUnknownType, d.Span, "struct %s contains itself", d.Name)
		return types.Invalid
	}
	c.structBusy[id] = true
	defer delete(c.structBusy, id)

	data, _ := c.b.Decls.Struct(id)
	fields := make([]types.Field, 0, len(data.Fields))
	seen := make(map[string]source.Span)
	for _, fid := range data.Fields {
		fd := c.b.Decls.Get(fid)
		vd, ok := c.b.Decls.Var(fid)
		if !ok {
			continue
		}
		if prev, dup := seen[fd.Name]; dup {
			diag.ReportError(c.rep, diag.SemaDuplicateSymbol, fd.Span,
				fmt.Sprintf("field %s is already declared in struct %s", fd.Name, d.Name)).
				WithNote(prev, "previous declaration").
				Emit()
			continue
		}
		seen[fd.Name] = fd.Span
		ft := c.varType(vd.Type, vd.ArrayDims)
		if isResourceType(ft) {
			c.errorf(diag.SemaTypeMismatch, fd.Span, "struct field %s can not hold a resource", fd.Name)
			ft = types.Invalid
		}
		fields = append(fields, types.Field{Name: fd.Name, Type: ft, RowMajor: vd.Mods.Has(ast.ModRowMajor)})
	}
	t := types.MakeStruct(d.Name, fields)
	c.structs[id] = t
	return t
}

// varType applies array dimensions, outermost first.
func (c *checker) varType(id ast.TypeID, dims []ast.ExprID) *types.Type {
	t := c.resolveType(id)
	for i := len(dims) - 1; i >= 0; i-- {
		if t.IsInvalid() {
			return t
		}
		n := uint32(types.ArrayUnsized)
		if dims[i].IsValid() {
			v, ok := c.constUint(dims[i])
			if !ok {
				return types.Invalid
			}
			if v == 0 {
				c.errorf(diag.SemaConstantRequired, c.b.Exprs.Get(dims[i]).Span, "array size must be positive")
				return types.Invalid
			}
			n = v
		}
		t = types.MakeArray(t, n)
	}
	return t
}

// constUint evaluates an array size or attribute argument.
func (c *checker) constUint(id ast.ExprID) (uint32, bool) {
	e := c.checkExpr(id)
	if e.Type().IsInvalid() {
		return 0, false
	}
	k, ok := e.(*Const)
	if !ok || !e.Type().IsScalar() || !e.Type().Scalar.IsInt() {
		c.errorf(diag.SemaConstantRequired, e.Span(), "expected an integer constant")
		return 0, false
	}
	v := k.Values[0].Int
	if v < 0 || v > 1<<20 {
		c.errorf(diag.SemaConstantRequired, e.Span(), "constant %d is out of range", v)
		return 0, false
	}
	return uint32(v), true
}

// checkTypeProfile reports scalar types the target profile lacks.
func (c *checker) checkTypeProfile(t *types.Type, span source.Span) {
	for t.Kind == types.KindArray || t.Kind == types.KindTexture || t.Kind == types.KindBuffer {
		t = t.Elem
	}
	if !t.IsNumeric() {
		return
	}
	var f target.Feature
	switch t.Scalar {
	case types.ScalarDouble:
		f = target.FeatureDouble
	case types.ScalarHalf:
		f = target.FeatureHalf
	case types.ScalarLong, types.ScalarULong:
		f = target.FeatureInt64
	default:
		return
	}
	if !c.opts.Profile.Supports(f) {
		c.errorf(diag.SemaProfileUnsupported, span, "type %s requires profile %s or later (compiling for %s)",
			t, f.MinProfile(), c.opts.Profile)
	}
}
