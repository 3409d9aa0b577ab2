package sema

import (
	"sdslc/internal/diag"
	"sdslc/internal/source"
	"sdslc/internal/streams"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

// collectEntries finds the stage entry points of the root instance and
// records their stream traffic.
func (a *analyzer) collectEntries(root *instance) {
	for _, st := range target.Stages() {
		name := st.EntryName()
		m := root.final(name + "()")
		if m == nil {
			for _, o := range root.methods {
				if o.sym.Name == name {
					a.errorf(diag.SemaInvalidEntryPoint, o.sym.Span, "entry point %s must take no parameters; use stream variables", name)
					break
				}
			}
			continue
		}
		if !m.fn.Ret.IsVoid() {
			a.errorf(diag.SemaInvalidEntryPoint, m.sym.Span, "entry point %s must return void, not %s", name, m.fn.Ret)
			continue
		}
		if st == target.StageCompute && !a.opts.Profile.Supports(target.FeatureCompute) {
			a.errorf(diag.SemaProfileUnsupported, m.sym.Span, "compute shaders require profile %s or later (compiling for %s)",
				target.FeatureCompute.MinProfile(), a.opts.Profile)
			continue
		}
		ep := &EntryPoint{Stage: st, Name: name, Func: m.fn, Span: m.sym.Span, LocalSize: [3]uint32{1, 1, 1}}
		if st == target.StageCompute {
			a.localSize(root, m, ep)
		}
		a.prog.Entries = append(a.prog.Entries, ep)
	}

	for _, ep := range a.prog.Entries {
		a.prog.Streams.AddEntry(ep.Name, ep.Stage)
		w := &walker{a: a, ep: ep, active: make(map[*Function]bool)}
		w.function(ep.Func, ep.Span)
	}
	if !a.prog.Streams.Validate(a.rep) {
		return
	}
	for _, ep := range a.prog.Entries {
		for _, s := range a.prog.Streams.Inputs(ep.Name) {
			ep.Inputs = append(ep.Inputs, a.prog.StreamVars[s])
		}
		for _, s := range a.prog.Streams.Outputs(ep.Name) {
			ep.Outputs = append(ep.Outputs, a.prog.StreamVars[s])
		}
	}
}

// localSize reads [numthreads(x, y, z)].
func (a *analyzer) localSize(root *instance, m *methodImpl, ep *EntryPoint) {
	c := a.classChecker(root, m.cls)
	args, span, ok := c.attrArgs(m.data.Attrs, "numthreads")
	if !ok {
		return
	}
	if len(args) != 3 {
		a.errorf(diag.SemaInvalidEntryPoint, span, "numthreads takes 3 arguments, got %d", len(args))
		return
	}
	for i, id := range args {
		v, ok := c.constUint(id)
		if !ok {
			return
		}
		if v == 0 {
			a.errorf(diag.SemaInvalidEntryPoint, span, "numthreads dimensions must be positive")
			return
		}
		ep.LocalSize[i] = v
	}
}

// walker visits everything an entry point reaches, in evaluation order,
// and records stream accesses. Calls are followed into their bodies.
type walker struct {
	a      *analyzer
	ep     *EntryPoint
	active map[*Function]bool
}

func (w *walker) function(fn *Function, at source.Span) {
	if w.active[fn] {
		w.a.errorf(diag.SemaError, at, "recursive call to %s.%s is not supported", fn.Class, fn.Method)
		return
	}
	if fn.Body == nil {
		return
	}
	w.active[fn] = true
	w.stmt(fn.Body)
	delete(w.active, fn)
}

func (w *walker) record(v *Var, access streams.Access, span source.Span) {
	if v.Stream != nil {
		w.a.prog.Streams.Record(v.Stream, w.ep.Name, w.ep.Stage, access, span)
	}
}

func (w *walker) stmt(s Stmt) {
	switch s := s.(type) {
	case *Block:
		for _, st := range s.Stmts {
			w.stmt(st)
		}
	case *If:
		w.expr(s.Cond)
		w.stmt(s.Then)
		w.stmt(s.Else)
	case *Loop:
		w.stmt(s.Init)
		if s.Kind == LoopDo {
			w.stmt(s.Body)
			w.expr(s.Cond)
			return
		}
		w.expr(s.Cond)
		w.stmt(s.Body)
		w.expr(s.Post)
	case *Return:
		w.expr(s.Value)
	case *Decl:
		w.expr(s.Init)
	case *ExprStmt:
		w.expr(s.Expr)
	case *Discard:
		if w.ep.Stage != target.StagePixel {
			w.a.errorf(diag.SemaDiscardOutsidePixel, s.Sp, "discard is only allowed in the pixel stage (reached from %s)", w.ep.Name)
		}
	}
}

func (w *walker) expr(e Expr) {
	switch e := e.(type) {
	case nil:
	case *VarRef:
		w.record(e.Var, streams.Read, e.Sp)
	case *Call:
		w.args(e.Args, func(i int) types.Qualifier { return e.Func.Params[i].Qual })
		w.function(e.Func, e.Sp)
		w.outArgs(e.Args, func(i int) types.Qualifier { return e.Func.Params[i].Qual })
	case *IntrinsicCall:
		w.expr(e.Receiver)
		qual := func(i int) types.Qualifier { return e.Match.Sig.Params[i].Qual }
		w.args(e.Args, qual)
		w.outArgs(e.Args, qual)
		if e.Name == "GroupMemoryBarrierWithGroupSync" && w.ep.Stage != target.StageCompute {
			w.a.errorf(diag.SemaInvalidEntryPoint, e.Sp, "%s is only allowed in compute shaders (reached from %s)", e.Name, w.ep.Name)
		}
	case *Construct:
		for _, a := range e.Args {
			w.expr(a)
		}
	case *Convert:
		w.expr(e.Value)
	case *Unary:
		w.expr(e.Operand)
	case *IncDec:
		w.expr(e.Target)
		w.write(e.Target)
	case *Binary:
		w.expr(e.Left)
		w.expr(e.Right)
	case *Ternary:
		w.expr(e.Cond)
		w.expr(e.Then)
		w.expr(e.Else)
	case *Assign:
		w.expr(e.Value)
		w.write(e.Target)
	case *Swizzle:
		w.expr(e.Value)
	case *Field:
		w.expr(e.Value)
	case *Index:
		w.expr(e.Value)
		w.expr(e.Index)
	}
}

func (w *walker) args(args []Expr, qual func(int) types.Qualifier) {
	for i, a := range args {
		if qual(i) == types.QualOut {
			w.indices(a)
			continue
		}
		w.expr(a)
	}
}

func (w *walker) outArgs(args []Expr, qual func(int) types.Qualifier) {
	for i, a := range args {
		if qual(i).Writes() {
			w.write(a)
		}
	}
}

// write records a store through an l-value; index operands are reads.
func (w *walker) write(target Expr) {
	w.indices(target)
	if v := rootVar(target); v != nil {
		w.record(v, streams.Write, target.Span())
	}
}

func (w *walker) indices(e Expr) {
	switch e := e.(type) {
	case *Index:
		w.indices(e.Value)
		w.expr(e.Index)
	case *Field:
		w.indices(e.Value)
	case *Swizzle:
		w.indices(e.Value)
	}
}

// rootVar is the variable an l-value stores into.
func rootVar(e Expr) *Var {
	for {
		switch x := e.(type) {
		case *VarRef:
			return x.Var
		case *Index:
			e = x.Value
		case *Field:
			e = x.Value
		case *Swizzle:
			e = x.Value
		default:
			return nil
		}
	}
}
