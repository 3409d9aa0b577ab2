package sema

import (
	"sdslc/internal/ast"
	"sdslc/internal/intrinsics"
	"sdslc/internal/source"
	"sdslc/internal/streams"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

// Program is the checked composition: every function body lowered to a
// typed tree, every global placed in a storage class and the entry points
// with their stream interfaces. Emission reads nothing else.
type Program struct {
	Name      string
	Profile   target.Profile
	Globals   []*Var
	CBuffers  []*CBuffer
	Resources []*Var
	Functions []*Function
	Entries   []*EntryPoint
	Streams   *streams.Table
	// StreamVars maps each stream to its private global.
	StreamVars map[*streams.Stream]*Var
}

// Storage is the storage class of a checked variable.
type Storage uint8

const (
	StorageLocal Storage = iota
	StorageParam
	// StoragePrivate holds stream and static variables.
	StoragePrivate
	StorageWorkgroup
	// StorageUniform is a member of a constant buffer.
	StorageUniform
	StorageResource
	// StorageConst is a folded compile-time constant; it has no storage.
	StorageConst
)

func (s Storage) String() string {
	switch s {
	case StorageLocal:
		return "local"
	case StorageParam:
		return "param"
	case StoragePrivate:
		return "private"
	case StorageWorkgroup:
		return "workgroup"
	case StorageUniform:
		return "uniform"
	case StorageResource:
		return "resource"
	}
	return "const"
}

// Var is a variable after checking.
type Var struct {
	Name     string
	Type     *types.Type
	Storage  Storage
	Qual     types.Qualifier
	Semantic string
	Span     source.Span
	// Init is the initializer of a global or static; Const when folded.
	Init Expr
	// Stream is set for stream variables.
	Stream *streams.Stream
	// CBuffer and Member locate a uniform inside its block.
	CBuffer *CBuffer
	Member  int
	// Binding is the descriptor binding of a resource.
	Binding  uint32
	Interp   ast.Modifiers
	RowMajor bool
	ReadOnly bool
}

// Assignable reports whether stores to v are allowed.
func (v *Var) Assignable() bool {
	switch v.Storage {
	case StorageUniform, StorageResource, StorageConst:
		return false
	}
	return !v.ReadOnly
}

// CBuffer is a uniform block with its std140 layout.
type CBuffer struct {
	Name    string
	Members []*Var
	Layouts []types.Layout
	Size    uint32
	Binding uint32
	Span    source.Span
}

// Fields returns the block members as struct fields.
func (cb *CBuffer) Fields() []types.Field {
	fields := make([]types.Field, len(cb.Members))
	for i, m := range cb.Members {
		fields[i] = types.Field{Name: m.Name, Type: m.Type, RowMajor: m.RowMajor}
	}
	return fields
}

// Function is one method body of one instance.
type Function struct {
	Name   string
	Class  string
	Method string
	Ret    *types.Type
	Params []*Var
	Body   *Block
	Span   source.Span
	// HasDiscard is set when the body contains discard.
	HasDiscard bool
}

// EntryPoint is a stage entry with the streams its wrapper copies.
type EntryPoint struct {
	Stage     target.Stage
	Name      string
	Func      *Function
	Inputs    []*Var
	Outputs   []*Var
	LocalSize [3]uint32
	Span      source.Span
}

// Expressions ----------------------------------------------------------------

// Expr is a typed expression.
type Expr interface {
	Type() *types.Type
	Span() source.Span
	exprNode()
}

type exprBase struct {
	T  *types.Type
	Sp source.Span
}

func (e *exprBase) Type() *types.Type { return e.T }
func (e *exprBase) Span() source.Span { return e.Sp }
func (*exprBase) exprNode()           {}

// Value is one scalar component of a constant. Unsigned values are stored
// in Int as their bit pattern.
type Value struct {
	Int   int64
	Float float64
	Bool  bool
}

// Const is a folded constant; Values holds one entry per component, matrix
// components row by row.
type Const struct {
	exprBase
	Values []Value
}

type VarRef struct {
	exprBase
	Var *Var
}

// Call invokes a method; Func is already the dispatched target.
type Call struct {
	exprBase
	Func *Function
	Args []Expr
}

// IntrinsicCall is a builtin function or a texture method when Receiver is
// set.
type IntrinsicCall struct {
	exprBase
	Name     string
	Match    intrinsics.Match
	Receiver Expr
	Args     []Expr
}

// Construct builds a vector, matrix, array or struct from its arguments;
// vector arguments are flattened.
type Construct struct {
	exprBase
	Args []Expr
}

// Convert changes scalar type, splats a scalar or truncates a vector or
// matrix to Type().
type Convert struct {
	exprBase
	Value Expr
}

type UnaryOp uint8

const (
	UnNeg UnaryOp = iota
	UnNot
	UnBitNot
)

type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expr
}

// IncDec is ++ or -- on an l-value.
type IncDec struct {
	exprBase
	Target Expr
	Pre    bool
	Dec    bool
}

// Binary operands already have the operand type; comparisons produce bool
// of the same shape.
type Binary struct {
	exprBase
	Op          ast.BinaryOp
	Left, Right Expr
}

type Ternary struct {
	exprBase
	Cond, Then, Else Expr
}

// Assign stores Value into Target; compound forms arrive as a Binary value.
type Assign struct {
	exprBase
	Target Expr
	Value  Expr
}

type Swizzle struct {
	exprBase
	Value   Expr
	Indices []uint32
}

type Field struct {
	exprBase
	Value Expr
	Index int
}

type Index struct {
	exprBase
	Value Expr
	Index Expr
}

// Statements -----------------------------------------------------------------

type Stmt interface {
	Span() source.Span
	stmtNode()
}

type stmtBase struct{ Sp source.Span }

func (s *stmtBase) Span() source.Span { return s.Sp }
func (*stmtBase) stmtNode()           {}

type Block struct {
	stmtBase
	Stmts []Stmt
}

type If struct {
	stmtBase
	Cond Expr
	Then Stmt
	Else Stmt
}

type LoopKind uint8

const (
	LoopFor LoopKind = iota
	LoopWhile
	LoopDo
)

type LoopControl uint8

const (
	LoopDefault LoopControl = iota
	LoopUnroll
	LoopDontUnroll
)

type Loop struct {
	stmtBase
	Kind    LoopKind
	Init    Stmt
	Cond    Expr
	Post    Expr
	Body    Stmt
	Control LoopControl
}

type Break struct{ stmtBase }

type Continue struct{ stmtBase }

type Discard struct{ stmtBase }

type Return struct {
	stmtBase
	Value Expr
}

// Decl introduces a local; Init may be nil.
type Decl struct {
	stmtBase
	Var  *Var
	Init Expr
}

type ExprStmt struct {
	stmtBase
	Expr Expr
}
