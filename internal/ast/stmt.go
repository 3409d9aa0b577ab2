package ast

import (
	"sdslc/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtIf
	StmtFor
	StmtWhile
	StmtDo
	StmtBreak
	StmtContinue
	StmtDiscard
	StmtReturn
	StmtDecl
	StmtExpr
	StmtEmpty
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type StmtBlockData struct {
	Stmts []StmtID
}

type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

// StmtLoopData covers for, while and do-while. Init is a declaration or
// expression statement; Post is an expression.
type StmtLoopData struct {
	Attrs []AttrID
	Init  StmtID
	Cond  ExprID
	Post  ExprID
	Body  StmtID
}

type StmtReturnData struct {
	Value ExprID
}

// StmtDeclData holds the VarDecls of one local declaration.
type StmtDeclData struct {
	Decls []DeclID
}

type StmtExprData struct {
	Expr ExprID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[StmtBlockData]
	Ifs     *Arena[StmtIfData]
	Loops   *Arena[StmtLoopData]
	Returns *Arena[StmtReturnData]
	Decls   *Arena[StmtDeclData]
	Exprs   *Arena[StmtExprData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[StmtBlockData](capHint / 4),
		Ifs:     NewArena[StmtIfData](capHint / 8),
		Loops:   NewArena[StmtLoopData](capHint / 8),
		Returns: NewArena[StmtReturnData](capHint / 4),
		Decls:   NewArena[StmtDeclData](capHint / 2),
		Exprs:   NewArena[StmtExprData](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kinds ...StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil {
		return 0, false
	}
	for _, k := range kinds {
		if st.Kind == k {
			return uint32(st.Payload), true
		}
	}
	return 0, false
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, span, s.Blocks.Allocate(StmtBlockData{Stmts: append([]StmtID(nil), stmts...)}))
}

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	p, ok := s.payload(id, StmtBlock)
	return s.Blocks.Get(p), ok
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, span, s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	p, ok := s.payload(id, StmtIf)
	return s.Ifs.Get(p), ok
}

// NewLoop allocates a for, while or do-while statement.
func (s *Stmts) NewLoop(kind StmtKind, span source.Span, data StmtLoopData) StmtID {
	return s.new(kind, span, s.Loops.Allocate(data))
}

func (s *Stmts) Loop(id StmtID) (*StmtLoopData, bool) {
	p, ok := s.payload(id, StmtFor, StmtWhile, StmtDo)
	return s.Loops.Get(p), ok
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, span, s.Returns.Allocate(StmtReturnData{Value: value}))
}

func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	p, ok := s.payload(id, StmtReturn)
	return s.Returns.Get(p), ok
}

func (s *Stmts) NewDecl(span source.Span, decls []DeclID) StmtID {
	return s.new(StmtDecl, span, s.Decls.Allocate(StmtDeclData{Decls: append([]DeclID(nil), decls...)}))
}

func (s *Stmts) Decl(id StmtID) (*StmtDeclData, bool) {
	p, ok := s.payload(id, StmtDecl)
	return s.Decls.Get(p), ok
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, span, s.Exprs.Allocate(StmtExprData{Expr: expr}))
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	p, ok := s.payload(id, StmtExpr)
	return s.Exprs.Get(p), ok
}

// NewSimple allocates break, continue, discard and empty statements.
func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	return s.new(kind, span, 0)
}
