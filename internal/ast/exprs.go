package ast

import (
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena     *Arena[Expr]
	Idents    *Arena[ExprIdentData]
	Literals  *Arena[ExprLitData]
	Binaries  *Arena[ExprBinaryData]
	Unaries   *Arena[ExprUnaryData]
	Ternaries *Arena[ExprTernaryData]
	Casts     *Arena[ExprCastData]
	Calls     *Arena[ExprCallData]
	Members   *Arena[ExprMemberData]
	Indices   *Arena[ExprIndexData]
	InitLists *Arena[ExprInitListData]
	Assigns   *Arena[ExprAssignData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:     NewArena[Expr](capHint),
		Idents:    NewArena[ExprIdentData](capHint),
		Literals:  NewArena[ExprLitData](capHint),
		Binaries:  NewArena[ExprBinaryData](capHint),
		Unaries:   NewArena[ExprUnaryData](capHint / 4),
		Ternaries: NewArena[ExprTernaryData](capHint / 8),
		Casts:     NewArena[ExprCastData](capHint / 8),
		Calls:     NewArena[ExprCallData](capHint),
		Members:   NewArena[ExprMemberData](capHint),
		Indices:   NewArena[ExprIndexData](capHint / 8),
		InitLists: NewArena[ExprInitListData](capHint / 8),
		Assigns:   NewArena[ExprAssignData](capHint / 2),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

func (e *Exprs) NewIdent(span source.Span, name string) ExprID {
	return e.new(ExprIdent, span, e.Idents.Allocate(ExprIdentData{Name: name}))
}

// Ident returns the identifier data for the given expression ID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	return e.Idents.Get(p), ok
}

func (e *Exprs) NewNumber(span source.Span, n scan.Number) ExprID {
	kind := LitInt
	if n.Kind.IsFloat() {
		kind = LitFloat
	}
	return e.new(ExprLit, span, e.Literals.Allocate(ExprLitData{Kind: kind, Number: n}))
}

func (e *Exprs) NewBool(span source.Span, v bool) ExprID {
	return e.new(ExprLit, span, e.Literals.Allocate(ExprLitData{Kind: LitBool, Bool: v}))
}

func (e *Exprs) Literal(id ExprID) (*ExprLitData, bool) {
	p, ok := e.payload(id, ExprLit)
	return e.Literals.Get(p), ok
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	return e.Binaries.Get(p), ok
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	return e.Unaries.Get(p), ok
}

func (e *Exprs) NewTernary(span source.Span, cond, then, els ExprID) ExprID {
	return e.new(ExprTernary, span, e.Ternaries.Allocate(ExprTernaryData{Cond: cond, Then: then, Else: els}))
}

func (e *Exprs) Ternary(id ExprID) (*ExprTernaryData, bool) {
	p, ok := e.payload(id, ExprTernary)
	return e.Ternaries.Get(p), ok
}

func (e *Exprs) NewCast(span source.Span, typ TypeID, value ExprID) ExprID {
	return e.new(ExprCast, span, e.Casts.Allocate(ExprCastData{Type: typ, Value: value}))
}

func (e *Exprs) Cast(id ExprID) (*ExprCastData, bool) {
	p, ok := e.payload(id, ExprCast)
	return e.Casts.Get(p), ok
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	return e.new(ExprCall, span, e.Calls.Allocate(ExprCallData{Callee: callee, Args: append([]ExprID(nil), args...)}))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	return e.Calls.Get(p), ok
}

func (e *Exprs) NewMember(span source.Span, target ExprID, name string, nameSpan source.Span) ExprID {
	return e.new(ExprMember, span, e.Members.Allocate(ExprMemberData{Target: target, Name: name, NameSpan: nameSpan}))
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	p, ok := e.payload(id, ExprMember)
	return e.Members.Get(p), ok
}

func (e *Exprs) NewIndex(span source.Span, target, index ExprID) ExprID {
	return e.new(ExprIndex, span, e.Indices.Allocate(ExprIndexData{Target: target, Index: index}))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	return e.Indices.Get(p), ok
}

func (e *Exprs) NewInitList(span source.Span, elems []ExprID) ExprID {
	return e.new(ExprInitList, span, e.InitLists.Allocate(ExprInitListData{Elems: append([]ExprID(nil), elems...)}))
}

func (e *Exprs) InitList(id ExprID) (*ExprInitListData, bool) {
	p, ok := e.payload(id, ExprInitList)
	return e.InitLists.Get(p), ok
}

func (e *Exprs) NewAssign(span source.Span, op AssignOp, target, value ExprID) ExprID {
	return e.new(ExprAssign, span, e.Assigns.Allocate(ExprAssignData{Op: op, Target: target, Value: value}))
}

func (e *Exprs) Assign(id ExprID) (*ExprAssignData, bool) {
	p, ok := e.payload(id, ExprAssign)
	return e.Assigns.Get(p), ok
}

// NewKeyword allocates streams, base or this.
func (e *Exprs) NewKeyword(span source.Span, kind ExprKind) ExprID {
	return e.new(kind, span, 0)
}
