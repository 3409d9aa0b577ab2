package ast

import (
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprBinary
	ExprUnary
	ExprTernary
	ExprCast
	ExprCall
	ExprMember
	ExprIndex
	ExprInitList
	ExprStreams
	ExprBase
	ExprThis
	ExprAssign
)

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprLitKind uint8

const (
	LitInt ExprLitKind = iota
	LitFloat
	LitBool
)

type ExprLitData struct {
	Kind   ExprLitKind
	Number scan.Number
	Bool   bool
}

type ExprIdentData struct {
	Name string
}

type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinLogAnd
	BinLogOr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

var binaryText = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
	BinShl: "<<", BinShr: ">>", BinBitAnd: "&", BinBitOr: "|", BinBitXor: "^",
	BinLogAnd: "&&", BinLogOr: "||", BinEq: "==", BinNe: "!=",
	BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
}

func (op BinaryOp) String() string { return binaryText[op] }

// IsComparison reports relational and equality operators.
func (op BinaryOp) IsComparison() bool { return op >= BinEq }

// IsLogical reports && and ||.
func (op BinaryOp) IsLogical() bool { return op == BinLogAnd || op == BinLogOr }

type ExprBinaryData struct {
	Op          BinaryOp
	Left, Right ExprID
}

type UnaryOp uint8

const (
	UnNeg UnaryOp = iota
	UnPlus
	UnNot
	UnBitNot
	UnPreInc
	UnPreDec
	UnPostInc
	UnPostDec
)

func (op UnaryOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnPlus:
		return "+"
	case UnNot:
		return "!"
	case UnBitNot:
		return "~"
	case UnPreInc, UnPostInc:
		return "++"
	}
	return "--"
}

// Mutates reports the increment and decrement forms.
func (op UnaryOp) Mutates() bool { return op >= UnPreInc }

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type ExprTernaryData struct {
	Cond, Then, Else ExprID
}

type ExprCastData struct {
	Type  TypeID
	Value ExprID
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprMemberData struct {
	Target   ExprID
	Name     string
	NameSpan source.Span
}

type ExprIndexData struct {
	Target, Index ExprID
}

type ExprInitListData struct {
	Elems []ExprID
}

// AssignOp is = or a compound assignment operator.
type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignShl
	AssignShr
	AssignAnd
	AssignOr
	AssignXor
)

var assignText = [...]string{"=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "|=", "^="}

func (op AssignOp) String() string { return assignText[op] }

// Binary returns the arithmetic operator of a compound assignment.
func (op AssignOp) Binary() (BinaryOp, bool) {
	switch op {
	case AssignAdd:
		return BinAdd, true
	case AssignSub:
		return BinSub, true
	case AssignMul:
		return BinMul, true
	case AssignDiv:
		return BinDiv, true
	case AssignMod:
		return BinMod, true
	case AssignShl:
		return BinShl, true
	case AssignShr:
		return BinShr, true
	case AssignAnd:
		return BinBitAnd, true
	case AssignOr:
		return BinBitOr, true
	case AssignXor:
		return BinBitXor, true
	}
	return 0, false
}

type ExprAssignData struct {
	Op            AssignOp
	Target, Value ExprID
}
