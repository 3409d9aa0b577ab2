package sema

import (
	"fmt"
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/streams"
	"sdslc/internal/symbols"
	"sdslc/internal/types"
)

// maxCompositionDepth bounds nested composition instances.
const maxCompositionDepth = 8

// instance is one linked copy of a linearization: the root composition or
// the class bound to a composition slot. Non-stage members exist once per
// instance.
type instance struct {
	prefix string
	path   string
	depth  int
	comp   *composition
	lin    []*class
	index  map[*class]int
	frames map[*class]*symbols.Frame
	// chains lists the implementations of each method key in
	// linearization order.
	chains  map[string][]*methodImpl
	methods []*methodImpl
	comps   map[string]*instance
	inits   []pendingInit
}

// methodImpl is one method declaration inside one instance.
type methodImpl struct {
	inst   *instance
	cls    *class
	decl   ast.DeclID
	data   *ast.MethodData
	sym    *symbols.Symbol
	key    string
	fn     *Function
	static bool
	// owned is false for stage methods whose body another instance checks.
	owned bool
}

func (m *methodImpl) hasBody() bool { return m.data.Body.IsValid() }

type pendingInit struct {
	v    *Var
	init ast.ExprID
	cls  *class
}

func (a *analyzer) newInstance(prefix, path string, lin []*class, comp *composition, depth int) *instance {
	inst := &instance{
		prefix: prefix,
		path:   path,
		depth:  depth,
		comp:   comp,
		lin:    lin,
		index:  make(map[*class]int, len(lin)),
		frames: make(map[*class]*symbols.Frame, len(lin)),
		chains: make(map[string][]*methodImpl),
		comps:  make(map[string]*instance),
	}
	for i, c := range lin {
		inst.index[c] = i
		inst.frames[c] = symbols.NewFrame(symbols.FrameShader, c.name)
	}
	for _, c := range lin {
		f := inst.frames[c]
		for _, p := range c.parents {
			if inst.frames[p] != nil {
				f.Parents = append(f.Parents, inst.frames[p])
			}
		}
	}
	a.instances = append(a.instances, inst)
	return inst
}

// describe names the instance in diagnostics.
func (inst *instance) describe() string {
	if inst.path != "" {
		return "composition " + inst.path
	}
	if len(inst.lin) == 0 {
		return "composition"
	}
	return "shader " + inst.lin[len(inst.lin)-1].key
}

// final is the most derived implementation of key with a body.
func (inst *instance) final(key string) *methodImpl {
	chain := inst.chains[key]
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].hasBody() {
			return chain[i]
		}
	}
	return nil
}

// baseOf is the implementation of m's key that precedes m's class in the
// linearization.
func (inst *instance) baseOf(m *methodImpl, from *class) *methodImpl {
	limit := inst.index[from]
	chain := inst.chains[m.key]
	for i := len(chain) - 1; i >= 0; i-- {
		if inst.index[chain[i].cls] < limit && chain[i].hasBody() {
			return chain[i]
		}
	}
	return nil
}

// classOf finds a class of the linearization by name.
func (inst *instance) classOf(name string) *class {
	for _, c := range inst.lin {
		if c.name == name || c.name == lastComponent(name) {
			return c
		}
	}
	return nil
}

func methodKey(name string, fn *types.Type) string {
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		parts[i] = p.Type.String()
		if p.Qual != types.QualIn {
			parts[i] = p.Qual.String() + " " + parts[i]
		}
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// Declaration pass -----------------------------------------------------------

func (a *analyzer) declareInstance(inst *instance) {
	for _, cls := range inst.lin {
		if cls.template != nil {
			a.declareGenerics(inst.frames[cls], cls)
		}
		c := a.classChecker(inst, cls)
		for _, id := range cls.data.Members {
			c.declareMember(id)
		}
	}
}

func (c *checker) declareMember(id ast.DeclID) {
	d := c.b.Decls.Get(id)
	switch d.Kind {
	case ast.DeclVar:
		c.declareGlobal(id, nil, false)
	case ast.DeclMethod:
		c.declareMethod(id)
	case ast.DeclCBuffer:
		data, _ := c.b.Decls.CBuffer(id)
		var cb *CBuffer
		if !data.Resource {
			cb = c.cbuffer(id, d)
		}
		for _, m := range data.Members {
			if md := c.b.Decls.Get(m); md != nil && md.Kind == ast.DeclVar {
				c.declareGlobal(m, cb, data.Resource)
			}
		}
	case ast.DeclStruct:
		t := c.structType(id)
		c.declare(&symbols.Symbol{Name: d.Name, Kind: symbols.SymbolStruct, Type: t, Span: d.Span, Owner: c.cls.name, Decl: id})
	case ast.DeclTypedef:
		data, _ := c.b.Decls.Typedef(id)
		t := c.resolveType(data.Type)
		c.declare(&symbols.Symbol{Name: d.Name, Kind: symbols.SymbolTypedef, Type: t, Span: d.Span, Owner: c.cls.name, Decl: id})
	case ast.DeclCompose:
		c.declareCompose(id, d)
	}
}

// declare binds sym in the class frame, reporting duplicates.
func (c *checker) declare(sym *symbols.Symbol) (*symbols.Symbol, bool) {
	got, err := c.tab.Declare(sym)
	if err != nil {
		prev := got
		diag.ReportError(c.rep, diag.SemaDuplicateSymbol, sym.Span,
			fmt.Sprintf("%q is already declared in %s", sym.Name, c.scopeName())).
			WithNote(prev.Span, "previous declaration").
			Emit()
		return prev, false
	}
	return got, true
}

// sharedKey identifies a member shared by every instance: stage members
// and cbuffers. Instantiations of a generic class do not share them.
type sharedKey struct {
	class string
	decl  ast.DeclID
}

func (c *checker) shared(id ast.DeclID) sharedKey {
	return sharedKey{class: c.cls.key, decl: id}
}

func (c *checker) cbuffer(id ast.DeclID, d *ast.Decl) *CBuffer {
	if cb, ok := c.cbuffers[c.shared(id)]; ok {
		return cb
	}
	cb := &CBuffer{Name: c.uniq(d.Name), Span: d.Span}
	c.cbuffers[c.shared(id)] = cb
	c.prog.CBuffers = append(c.prog.CBuffers, cb)
	return cb
}

// globalsBlock holds loose uniforms.
func (a *analyzer) globalsBlock() *CBuffer {
	if a.globals == nil {
		a.globals = &CBuffer{Name: a.uniq("Globals")}
		a.prog.CBuffers = append([]*CBuffer{a.globals}, a.prog.CBuffers...)
	}
	return a.globals
}

func isResourceType(t *types.Type) bool {
	if t.Kind == types.KindArray {
		return isResourceType(t.Elem)
	}
	switch t.Kind {
	case types.KindTexture, types.KindSampler, types.KindBuffer:
		return true
	}
	return false
}

// declareGlobal declares a member variable. Stage members and cbuffer
// members are shared by every instance.
func (c *checker) declareGlobal(id ast.DeclID, cb *CBuffer, inGroup bool) {
	d := c.b.Decls.Get(id)
	vd, _ := c.b.Decls.Var(id)
	t := c.varType(vd.Type, vd.ArrayDims)
	mods := vd.Mods

	sym := &symbols.Symbol{
		Name:     d.Name,
		Kind:     symbols.SymbolVariable,
		Type:     t,
		Span:     d.Span,
		Owner:    c.cls.name,
		Decl:     id,
		Semantic: vd.Semantic,
	}
	if mods.Has(ast.ModStage) {
		sym.Flags |= symbols.SymbolFlagStage
	}
	if mods.Has(ast.ModStatic) {
		sym.Flags |= symbols.SymbolFlagStatic
	}
	if mods.Has(ast.ModConst) {
		sym.Flags |= symbols.SymbolFlagConst
		sym.Kind = symbols.SymbolConstant
	}

	var st Storage
	switch {
	case isResourceType(t) || inGroup:
		sym.Storage, st = symbols.StorageResource, StorageResource
	case cb != nil:
		sym.Storage, st = symbols.StorageUniform, StorageUniform
	case mods.Has(ast.ModStream):
		sym.Storage, st = symbols.StorageStream, StoragePrivate
	case mods.Has(ast.ModGroupShared):
		sym.Storage, st = symbols.StorageGroupShared, StorageWorkgroup
	case mods.Has(ast.ModStatic) || mods.Has(ast.ModConst):
		sym.Storage, st = symbols.StorageStatic, StoragePrivate
	default:
		sym.Storage, st = symbols.StorageUniform, StorageUniform
	}
	sym, ok := c.declare(sym)
	if !ok {
		return
	}

	shared := mods.Has(ast.ModStage) || cb != nil
	if shared {
		if v, seen := c.stageVars[c.shared(id)]; seen {
			c.info[sym] = v
			return
		}
	}
	name := d.Name
	if !shared {
		name = c.inst.prefix + d.Name
	}
	v := &Var{
		Name:     c.uniq(name),
		Type:     t,
		Storage:  st,
		Semantic: vd.Semantic,
		Span:     d.Span,
		Interp:   mods & ast.InterpolationMods,
		RowMajor: mods.Has(ast.ModRowMajor),
		ReadOnly: mods.Has(ast.ModConst),
	}
	c.info[sym] = v
	if shared {
		c.stageVars[c.shared(id)] = v
	}

	switch st {
	case StorageResource:
		c.prog.Resources = append(c.prog.Resources, v)
	case StorageUniform:
		block := cb
		if block == nil {
			block = c.globalsBlock()
		}
		v.CBuffer, v.Member = block, len(block.Members)
		block.Members = append(block.Members, v)
	case StoragePrivate, StorageWorkgroup:
		if mods.Has(ast.ModStream) {
			if !t.IsInvalid() && !t.IsNumeric() {
				c.errorf(diag.SemaTypeMismatch, d.Span, "stream %s must have a scalar, vector or matrix type, not %s", d.Name, t)
			}
			s := &streams.Stream{Name: v.Name, Semantic: vd.Semantic, Type: t, Order: c.streamSeq, Span: d.Span}
			c.streamSeq++
			v.Stream = s
			c.prog.Streams.Add(s)
			c.prog.StreamVars[s] = v
		}
		if sym.Kind == symbols.SymbolConstant && vd.Init.IsValid() {
			// константы сворачиваются сразу: от них зависят размеры массивов
			v.Init = c.checkInit(vd.Init, t)
			if _, folded := v.Init.(*Const); folded {
				v.Storage = StorageConst
				return
			}
		} else if vd.Init.IsValid() {
			c.inst.inits = append(c.inst.inits, pendingInit{v: v, init: vd.Init, cls: c.cls})
		}
		c.prog.Globals = append(c.prog.Globals, v)
	}
}

func qualifierOf(mods ast.Modifiers) types.Qualifier {
	switch {
	case mods.Has(ast.ModInOut), mods.Has(ast.ModIn) && mods.Has(ast.ModOut):
		return types.QualInOut
	case mods.Has(ast.ModOut):
		return types.QualOut
	}
	return types.QualIn
}

func (c *checker) declareMethod(id ast.DeclID) {
	d := c.b.Decls.Get(id)
	md, _ := c.b.Decls.Method(id)
	ret := c.resolveType(md.Ret)
	params := make([]types.Param, len(md.Params))
	for i, pid := range md.Params {
		p := c.b.Decls.Param(pid)
		params[i] = types.Param{Name: p.Name, Type: c.resolveType(p.Type), Qual: qualifierOf(p.Mods)}
	}
	fnType := types.MakeFunction(ret, params)

	sym := &symbols.Symbol{Name: d.Name, Kind: symbols.SymbolMethod, Type: fnType, Span: d.Span, Owner: c.cls.name, Decl: id}
	for _, f := range []struct {
		mod  ast.Modifiers
		flag symbols.SymbolFlags
	}{
		{ast.ModStage, symbols.SymbolFlagStage},
		{ast.ModOverride, symbols.SymbolFlagOverride},
		{ast.ModAbstract, symbols.SymbolFlagAbstract},
		{ast.ModClone, symbols.SymbolFlagClone},
		{ast.ModStatic, symbols.SymbolFlagStatic},
	} {
		if md.Mods.Has(f.mod) {
			sym.Flags |= f.flag
		}
	}

	frame := c.inst.frames[c.cls]
	if prev := frame.Local(d.Name); prev != nil {
		for _, o := range prev.Overloads() {
			if types.SameParams(o.Type, fnType) {
				diag.ReportError(c.rep, diag.SemaDuplicateSymbol, d.Span,
					fmt.Sprintf("method %s%s is already declared in %s", d.Name, paramList(fnType), c.cls.name)).
					WithNote(o.Span, "previous declaration").
					Emit()
				return
			}
		}
	}
	if _, ok := c.declare(sym); !ok {
		return
	}

	impl := &methodImpl{
		inst:   c.inst,
		cls:    c.cls,
		decl:   id,
		data:   md,
		sym:    sym,
		key:    methodKey(d.Name, fnType),
		static: md.Mods.Has(ast.ModStatic),
	}
	c.info[sym] = impl
	c.inst.chains[impl.key] = append(c.inst.chains[impl.key], impl)
	c.inst.methods = append(c.inst.methods, impl)
	if !md.Body.IsValid() {
		return
	}

	stage := md.Mods.Has(ast.ModStage)
	if fn, ok := c.stageFuncs[c.shared(id)]; stage && ok {
		impl.fn = fn
		return
	}
	prefix := c.inst.prefix
	if stage {
		prefix = ""
	}
	fn := &Function{
		Name:   c.uniq(prefix + c.cls.name + "_" + d.Name),
		Class:  c.cls.name,
		Method: d.Name,
		Ret:    ret,
		Span:   d.Span,
	}
	for i, pid := range md.Params {
		p := c.b.Decls.Param(pid)
		fn.Params = append(fn.Params, &Var{
			Name:     p.Name,
			Type:     params[i].Type,
			Storage:  StorageParam,
			Qual:     params[i].Qual,
			Semantic: p.Semantic,
			Span:     p.Span,
		})
	}
	impl.fn, impl.owned = fn, true
	if stage {
		c.stageFuncs[c.shared(id)] = fn
	}
	c.prog.Functions = append(c.prog.Functions, fn)
}

func paramList(fn *types.Type) string {
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		parts[i] = p.Type.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// declareCompose binds a composition slot to the class the effect selected
// and builds its instance.
func (c *checker) declareCompose(id ast.DeclID, d *ast.Decl) {
	data, _ := c.b.Decls.Compose(id)
	te := c.b.Types.Get(data.Type)
	sym := &symbols.Symbol{
		Name:  d.Name,
		Kind:  symbols.SymbolComposition,
		Type:  types.MakeShader(te.Name),
		Span:  d.Span,
		Owner: c.cls.name,
		Decl:  id,
	}
	sym, ok := c.declare(sym)
	if !ok {
		return
	}
	iface := c.reg.class(te.Name, te.Span)
	if iface == nil {
		return
	}
	if data.Array {
		c.errorf(diag.SemaCompositionUnbound, d.Span, "composition arrays are not supported (%s)", d.Name)
		return
	}
	path := d.Name
	if c.inst.path != "" {
		path = c.inst.path + "." + d.Name
	}
	bind, ok := c.inst.comp.binds[path]
	if !ok {
		bind, ok = c.inst.comp.binds[d.Name]
	}
	if !ok {
		c.errorf(diag.SemaCompositionUnbound, d.Span,
			"composition %s of type %s is not bound; add 'mixin compose %s = <class>;' to the effect", d.Name, te.Name, d.Name)
		return
	}
	if c.inst.depth >= maxCompositionDepth {
		c.errorf(diag.SemaCyclicMixin, bind.span, "compositions nested deeper than %d levels", maxCompositionDepth)
		return
	}
	impl := c.reg.resolve(ast.MixinRef{Name: bind.class, Span: bind.span, Args: bind.args}, nil)
	if impl == nil {
		return
	}
	lin, ok := c.reg.linearize(impl)
	if !ok {
		return
	}
	if !containsClass(lin, iface) {
		c.errorf(diag.SemaTypeMismatch, bind.span, "%s does not mix in %s required by composition %s", impl.name, iface.name, d.Name)
		return
	}
	sub := c.newInstance(c.inst.prefix+d.Name+"_", path, lin, c.inst.comp, c.inst.depth+1)
	c.inst.comps[d.Name] = sub
	c.info[sym] = sub
}

// containsClass reports whether lin holds c or an instantiation of it.
func containsClass(lin []*class, c *class) bool {
	for _, l := range lin {
		if l == c || l.origin() == c {
			return true
		}
	}
	return false
}

// Inheritance checks ---------------------------------------------------------

func (a *analyzer) checkInheritance(inst *instance) {
	for _, m := range inst.methods {
		d := a.b.Decls.Get(m.decl)
		abstract := m.data.Mods.Has(ast.ModAbstract)
		switch {
		case abstract && m.hasBody():
			a.errorf(diag.SemaAbstractMismatch, d.Span, "abstract method %s must not have a body", d.Name)
		case !abstract && !m.hasBody():
			a.errorf(diag.SemaAbstractMismatch, d.Span, "method %s has no body; declare it abstract", d.Name)
		}

		var base *methodImpl
		for _, o := range inst.chains[m.key] {
			if o.cls != m.cls && containsClass(m.cls.lin, o.cls) {
				base = o
			}
		}
		override := m.data.Mods.Has(ast.ModOverride)
		switch {
		case override && base == nil:
			a.errorf(diag.SemaOverrideWithoutBase, d.Span, "method %s%s is marked override but no base class declares it", d.Name, paramList(m.sym.Type))
		case !override && base != nil:
			diag.ReportError(a.rep, diag.SemaMissingOverride, d.Span,
				fmt.Sprintf("method %s%s hides %s.%s; mark it override", d.Name, paramList(m.sym.Type), base.cls.name, d.Name)).
				WithNote(a.b.Decls.Get(base.decl).Span, "base declaration").
				Emit()
		}
	}
	keys := make([]string, 0, len(inst.chains))
	for _, m := range inst.methods {
		if !containsName(keys, m.key) {
			keys = append(keys, m.key)
		}
	}
	for _, k := range keys {
		if inst.final(k) != nil {
			continue
		}
		m := inst.chains[k][0]
		a.errorf(diag.SemaAbstractNotImplemented, a.b.Decls.Get(m.decl).Span,
			"abstract method %s.%s%s is not implemented in %s", m.cls.name, m.sym.Name, paramList(m.sym.Type), inst.describe())
	}
}

// Bodies ---------------------------------------------------------------------

func (a *analyzer) checkBodies(inst *instance) {
	for _, p := range inst.inits {
		c := a.classChecker(inst, p.cls)
		p.v.Init = c.checkInit(p.init, p.v.Type)
	}
	for _, m := range inst.methods {
		if m.fn == nil || !m.owned {
			continue
		}
		c := a.classChecker(inst, m.cls)
		c.checkMethod(m)
	}
}
