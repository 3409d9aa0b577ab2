package spirv

import (
	"sdslc/internal/sema"
)

// block emits statements until one ends the current block; the rest is
// unreachable and dropped.
func (e *emitter) block(b *sema.Block) {
	for _, s := range b.Stmts {
		if e.fn.terminated {
			return
		}
		e.stmt(s)
	}
}

func (e *emitter) stmt(s sema.Stmt) {
	switch s := s.(type) {
	case nil:
	case *sema.Block:
		e.block(s)
	case *sema.ExprStmt:
		e.expr(s.Expr)
	case *sema.Decl:
		ptr := e.local(s.Var.Type, s.Var.Name)
		e.fn.locals[s.Var] = ptr
		if s.Init != nil {
			e.store(ptr, e.expr(s.Init))
		}
	case *sema.If:
		e.ifStmt(s)
	case *sema.Loop:
		e.loop(s)
	case *sema.Break:
		e.branch(e.fn.loops[len(e.fn.loops)-1].merge)
	case *sema.Continue:
		e.branch(e.fn.loops[len(e.fn.loops)-1].cont)
	case *sema.Discard:
		e.emit(OpKill)
	case *sema.Return:
		if s.Value != nil {
			e.emit(OpReturnValue, e.expr(s.Value))
			return
		}
		e.emit(OpReturn)
	}
}

func (e *emitter) ifStmt(s *sema.If) {
	cond := e.expr(s.Cond)
	then, merge := e.b.AllocID(), e.b.AllocID()
	otherwise := merge
	if s.Else != nil {
		otherwise = e.b.AllocID()
	}
	e.emit(OpSelectionMerge, merge, selectionControlNone)
	e.emit(OpBranchConditional, cond, then, otherwise)

	e.label(then)
	e.stmt(s.Then)
	e.branch(merge)
	if s.Else != nil {
		e.label(otherwise)
		e.stmt(s.Else)
		e.branch(merge)
	}
	e.label(merge)
}

// loop emits the structured form
//
//	header: OpLoopMerge merge cont; branch check (or body for do)
//	check:  cond ? body : merge
//	body:   ...; branch cont
//	cont:   post; branch header (do: cond ? header : merge)
//	merge:
func (e *emitter) loop(s *sema.Loop) {
	e.stmt(s.Init)
	if e.fn.terminated {
		return
	}
	header, body, cont, merge := e.b.AllocID(), e.b.AllocID(), e.b.AllocID(), e.b.AllocID()
	e.branch(header)
	e.label(header)
	e.emit(OpLoopMerge, merge, cont, loopControl(s.Control))
	if s.Kind == sema.LoopDo {
		e.emit(OpBranch, body)
	} else {
		check := e.b.AllocID()
		e.emit(OpBranch, check)
		e.label(check)
		if s.Cond != nil {
			e.emit(OpBranchConditional, e.expr(s.Cond), body, merge)
		} else {
			e.emit(OpBranch, body)
		}
	}

	e.fn.loops = append(e.fn.loops, loopLabels{merge: merge, cont: cont})
	e.label(body)
	e.stmt(s.Body)
	e.branch(cont)
	e.fn.loops = e.fn.loops[:len(e.fn.loops)-1]

	e.label(cont)
	switch {
	case s.Kind == sema.LoopDo && s.Cond != nil:
		e.emit(OpBranchConditional, e.expr(s.Cond), header, merge)
	default:
		if s.Post != nil {
			e.expr(s.Post)
		}
		e.emit(OpBranch, header)
	}
	e.label(merge)
}

func loopControl(c sema.LoopControl) uint32 {
	switch c {
	case sema.LoopUnroll:
		return loopControlUnroll
	case sema.LoopDontUnroll:
		return loopControlDontUnroll
	}
	return loopControlNone
}
