package parser

import (
	"sdslc/internal/ast"
	"sdslc/internal/combinator"
	"sdslc/internal/scan"
)

type binOp struct {
	tok string
	op  ast.BinaryOp
}

// уровни от слабого к сильному
var binaryLevels = [][]binOp{
	{{"||", ast.BinLogOr}},
	{{"&&", ast.BinLogAnd}},
	{{"|", ast.BinBitOr}},
	{{"^", ast.BinBitXor}},
	{{"&", ast.BinBitAnd}},
	{{"==", ast.BinEq}, {"!=", ast.BinNe}},
	{{"<", ast.BinLt}, {">", ast.BinGt}, {"<=", ast.BinLe}, {">=", ast.BinGe}},
	{{"<<", ast.BinShl}, {">>", ast.BinShr}},
	{{"+", ast.BinAdd}, {"-", ast.BinSub}},
	{{"*", ast.BinMul}, {"/", ast.BinDiv}, {"%", ast.BinMod}},
}

var prefixOps = []struct {
	tok string
	op  ast.UnaryOp
}{
	{"++", ast.UnPreInc}, {"--", ast.UnPreDec},
	{"-", ast.UnNeg}, {"+", ast.UnPlus}, {"!", ast.UnNot}, {"~", ast.UnBitNot},
}

var assignOps = []struct {
	tok string
	op  ast.AssignOp
}{
	{"=", ast.AssignSet}, {"+=", ast.AssignAdd}, {"-=", ast.AssignSub},
	{"*=", ast.AssignMul}, {"/=", ast.AssignDiv}, {"%=", ast.AssignMod},
	{"<<=", ast.AssignShl}, {">>=", ast.AssignShr},
	{"&=", ast.AssignAnd}, {"|=", ast.AssignOr}, {"^=", ast.AssignXor},
}

type binTail struct {
	op  ast.BinaryOp
	rhs ast.ExprID
}

func (p *Parser) buildExpressions() {
	for _, a := range assignOps {
		p.assignSyms = append(p.assignSyms, combinator.SymAs(a.tok, "operator"))
	}
	p.ternaryOp = combinator.SymAs("?", "operator")
	p.callOp = combinator.SymAs("(", "operator")
	p.memberOp = combinator.SymAs(".", "operator")
	p.indexOp = combinator.SymAs("[", "operator")
	p.incOp, p.decOp = combinator.SymAs("++", "operator"), combinator.SymAs("--", "operator")

	p.unary = combinator.Attempt(p.parseUnary)
	next := p.unary
	for i := len(binaryLevels) - 1; i >= 0; i-- {
		next = p.binaryLevel(next, binaryLevels[i])
	}
	p.binary = next
	p.ternary = combinator.Attempt(p.parseTernary)
	p.expr = combinator.Attempt(p.parseAssignment)
}

// binaryLevel builds one left-associative precedence layer over operand.
func (p *Parser) binaryLevel(operand rule[ast.ExprID], ops []binOp) rule[ast.ExprID] {
	alts := make([]rule[ast.BinaryOp], len(ops))
	for i, o := range ops {
		alts[i] = combinator.Map(combinator.SymAs(o.tok, "operator"), func(unit) ast.BinaryOp { return o.op })
	}
	anyOp := combinator.Alt(alts...)
	tails := combinator.Many(combinator.Attempt(func(s *scan.Scanner, r *combinator.Result) (binTail, bool) {
		op, ok := anyOp(s, r)
		if !ok {
			return binTail{}, false
		}
		rhs, ok := operand(s, r)
		return binTail{op: op, rhs: rhs}, ok
	}))
	return func(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
		left, ok := operand(s, r)
		if !ok {
			return ast.NoExprID, false
		}
		rest, _ := tails(s, r)
		for _, t := range rest {
			sp := p.exprSpan(left).Cover(p.exprSpan(t.rhs))
			left = p.arenas.Exprs.NewBinary(sp, t.op, left, t.rhs)
		}
		return left, true
	}
}

func (p *Parser) parseAssignment(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	target, ok := p.ternary(s, r)
	if !ok {
		return ast.NoExprID, false
	}
	m := s.Mark()
	for i, a := range assignOps {
		if _, ok := p.assignSyms[i](s, r); !ok {
			continue
		}
		value, ok := p.expr(s, r)
		if !ok {
			s.Reset(m)
			return ast.NoExprID, false
		}
		sp := p.exprSpan(target).Cover(p.exprSpan(value))
		return p.arenas.Exprs.NewAssign(sp, a.op, target, value), true
	}
	return target, true
}

func (p *Parser) parseTernary(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	cond, ok := p.binary(s, r)
	if !ok {
		return ast.NoExprID, false
	}
	m := s.Mark()
	if _, ok := p.ternaryOp(s, r); !ok {
		return cond, true
	}
	then, ok := p.expr(s, r)
	if !ok {
		s.Reset(m)
		return ast.NoExprID, false
	}
	if _, ok := p.colon(s, r); !ok {
		s.Reset(m)
		return ast.NoExprID, false
	}
	els, ok := p.ternary(s, r)
	if !ok {
		s.Reset(m)
		return ast.NoExprID, false
	}
	sp := p.exprSpan(cond).Cover(p.exprSpan(els))
	return p.arenas.Exprs.NewTernary(sp, cond, then, els), true
}

func (p *Parser) parseUnary(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	m := begin(s)
	for _, u := range prefixOps {
		if !scan.Punct(s, u.tok) {
			continue
		}
		x, ok := p.unary(s, r)
		if !ok {
			s.Reset(m)
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewUnary(span(s, m), u.op, x), true
	}
	if e, ok := combinator.Attempt(p.parseCast)(s, r); ok {
		return e, true
	}
	return p.parsePostfix(s, r)
}

// parseCast accepts (T)x only for known type names, so (a) - b stays a
// subtraction.
func (p *Parser) parseCast(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	m := begin(s)
	if !scan.Punct(s, "(") {
		return ast.NoExprID, false
	}
	t, ok := p.typ(s, r)
	if !ok || !p.isTypeName(p.arenas.Types.Get(t).Name) {
		return ast.NoExprID, false
	}
	if _, ok := p.rparen(s, r); !ok {
		return ast.NoExprID, false
	}
	x, ok := p.unary(s, r)
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewCast(span(s, m), t, x), true
}

func (p *Parser) parsePostfix(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	m := begin(s)
	x, ok := p.parsePrimary(s, r)
	if !ok {
		return ast.NoExprID, false
	}
	for {
		at := s.Mark()
		switch {
		case ok2(p.callOp(s, r)):
			args, _ := combinator.SepBy(p.expr, p.comma)(s, r)
			if _, ok := p.rparen(s, r); !ok {
				s.Reset(at)
				return ast.NoExprID, false
			}
			x = p.arenas.Exprs.NewCall(span(s, m), x, args)
		case ok2(p.memberOp(s, r)):
			name, nameSpan, ok := ident(s, r)
			if !ok {
				s.Reset(at)
				return ast.NoExprID, false
			}
			x = p.arenas.Exprs.NewMember(span(s, m), x, name, nameSpan)
		case ok2(p.indexOp(s, r)):
			idx, ok := p.expr(s, r)
			if !ok {
				s.Reset(at)
				return ast.NoExprID, false
			}
			if _, ok := p.rbrack(s, r); !ok {
				s.Reset(at)
				return ast.NoExprID, false
			}
			x = p.arenas.Exprs.NewIndex(span(s, m), x, idx)
		case ok2(p.incOp(s, r)):
			x = p.arenas.Exprs.NewUnary(span(s, m), ast.UnPostInc, x)
		case ok2(p.decOp(s, r)):
			x = p.arenas.Exprs.NewUnary(span(s, m), ast.UnPostDec, x)
		default:
			return x, true
		}
	}
}

func ok2[T any](_ T, ok bool) bool { return ok }

func (p *Parser) parsePrimary(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	m := begin(s)
	if n, ok := combinator.Num(s, r); ok {
		return p.arenas.Exprs.NewNumber(span(s, m), n), true
	}
	switch w := peekWord(s); w {
	case "true", "false":
		word(s)
		return p.arenas.Exprs.NewBool(span(s, m), w == "true"), true
	case "streams":
		word(s)
		return p.arenas.Exprs.NewKeyword(span(s, m), ast.ExprStreams), true
	case "base":
		word(s)
		return p.arenas.Exprs.NewKeyword(span(s, m), ast.ExprBase), true
	case "this":
		word(s)
		return p.arenas.Exprs.NewKeyword(span(s, m), ast.ExprThis), true
	}
	if name, sp, ok := ident(s, r); ok {
		return p.arenas.Exprs.NewIdent(sp, name), true
	}
	if _, ok := p.lparen(s, r); ok {
		inner, ok := p.expr(s, r)
		if ok {
			if _, ok := p.rparen(s, r); ok {
				return inner, true
			}
		}
	}
	s.Reset(m)
	return ast.NoExprID, false
}

// parseInit is an expression or a brace initializer list.
func (p *Parser) parseInit(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	m := begin(s)
	if _, ok := p.lbrace(s, r); !ok {
		return p.expr(s, r)
	}
	elems, _ := combinator.SepBy(p.parseInit, p.comma)(s, r)
	combinator.Optional(p.comma)(s, r)
	if _, ok := p.rbrace(s, r); !ok {
		s.Reset(m)
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewInitList(span(s, m), elems), true
}
