package parser

import (
	"sdslc/internal/ast"
	"sdslc/internal/combinator"
	"sdslc/internal/scan"
)

// parseStmt пробует варианты от специфичных к общим
func (p *Parser) parseStmt(s *scan.Scanner, r *combinator.Result) (ast.StmtID, bool) {
	m := begin(s)
	var attrs []ast.AttrID
	if s.Peek() == '[' {
		attrs, _ = p.attributes(s, r)
	}
	switch peekWord(s) {
	case "if":
		if len(attrs) == 0 {
			return p.parseIf(s, r)
		}
	case "for":
		return p.parseFor(s, r, m, attrs)
	case "while":
		return p.parseWhile(s, r, m, attrs)
	case "do":
		return p.parseDo(s, r, m, attrs)
	case "break":
		return p.simple(s, r, ast.StmtBreak)
	case "continue":
		return p.simple(s, r, ast.StmtContinue)
	case "discard":
		return p.simple(s, r, ast.StmtDiscard)
	case "return":
		return p.parseReturn(s, r)
	}
	if len(attrs) > 0 {
		// ожидание ставим на следующее слово, иначе его перекроет '[' от attributes
		scan.Spaces(s)
		r.Expect(s.Off, "loop after attribute")
		return ast.NoStmtID, false
	}
	if s.Peek() == '{' {
		return p.parseBlock(s, r)
	}
	if id, ok := combinator.Attempt(p.parseLocalDecl)(s, r); ok {
		return id, true
	}
	if id, ok := combinator.Attempt(p.parseExprStmt)(s, r); ok {
		return id, true
	}
	if _, ok := p.semi(s, r); ok {
		return p.arenas.Stmts.NewSimple(ast.StmtEmpty, span(s, m)), true
	}
	r.Expect(s.Off, "statement")
	return ast.NoStmtID, false
}

func (p *Parser) parseBlock(s *scan.Scanner, r *combinator.Result) (ast.StmtID, bool) {
	m := begin(s)
	if _, ok := p.lbrace(s, r); !ok {
		return ast.NoStmtID, false
	}
	stmts, _ := combinator.Many(p.stmt)(s, r)
	if _, ok := p.rbrace(s, r); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewBlock(span(s, m), stmts), true
}

func (p *Parser) simple(s *scan.Scanner, r *combinator.Result, kind ast.StmtKind) (ast.StmtID, bool) {
	m := begin(s)
	word(s)
	if _, ok := p.semi(s, r); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewSimple(kind, span(s, m)), true
}

func (p *Parser) parseIf(s *scan.Scanner, r *combinator.Result) (ast.StmtID, bool) {
	m := begin(s)
	word(s)
	cond, ok := p.parenExpr(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.stmt(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	els := ast.NoStmtID
	at := s.Mark()
	if _, ok := p.kwElse(s, r); ok {
		if els, ok = p.stmt(s, r); !ok {
			s.Reset(at)
			return ast.NoStmtID, false
		}
	}
	return p.arenas.Stmts.NewIf(span(s, m), cond, then, els), true
}

func (p *Parser) parenExpr(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
	return combinator.Between(p.lparen, p.expr, p.rparen)(s, r)
}

func (p *Parser) parseFor(s *scan.Scanner, r *combinator.Result, m scan.Mark, attrs []ast.AttrID) (ast.StmtID, bool) {
	word(s)
	if _, ok := p.lparen(s, r); !ok {
		return ast.NoStmtID, false
	}
	init := ast.NoStmtID
	if id, ok := combinator.Attempt(p.parseLocalDecl)(s, r); ok {
		init = id
	} else if id, ok := combinator.Attempt(p.parseExprStmt)(s, r); ok {
		init = id
	} else if _, ok := p.semi(s, r); !ok {
		return ast.NoStmtID, false
	}
	cond, _ := combinator.Optional(p.expr)(s, r)
	if _, ok := p.semi(s, r); !ok {
		return ast.NoStmtID, false
	}
	post, _ := combinator.Optional(p.expr)(s, r)
	if _, ok := p.rparen(s, r); !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.stmt(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewLoop(ast.StmtFor, span(s, m), ast.StmtLoopData{
		Attrs: attrs, Init: init, Cond: cond.Value, Post: post.Value, Body: body,
	}), true
}

func (p *Parser) parseWhile(s *scan.Scanner, r *combinator.Result, m scan.Mark, attrs []ast.AttrID) (ast.StmtID, bool) {
	word(s)
	cond, ok := p.parenExpr(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.stmt(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewLoop(ast.StmtWhile, span(s, m), ast.StmtLoopData{Attrs: attrs, Cond: cond, Body: body}), true
}

func (p *Parser) parseDo(s *scan.Scanner, r *combinator.Result, m scan.Mark, attrs []ast.AttrID) (ast.StmtID, bool) {
	word(s)
	body, ok := p.stmt(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.kwWhile(s, r); !ok {
		return ast.NoStmtID, false
	}
	cond, ok := p.parenExpr(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.semi(s, r); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewLoop(ast.StmtDo, span(s, m), ast.StmtLoopData{Attrs: attrs, Cond: cond, Body: body}), true
}

func (p *Parser) parseReturn(s *scan.Scanner, r *combinator.Result) (ast.StmtID, bool) {
	m := begin(s)
	word(s)
	value, _ := combinator.Optional(p.expr)(s, r)
	if _, ok := p.semi(s, r); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewReturn(span(s, m), value.Value), true
}

// parseExprStmt covers calls, assignments and increments.
func (p *Parser) parseExprStmt(s *scan.Scanner, r *combinator.Result) (ast.StmtID, bool) {
	m := begin(s)
	e, ok := p.expr(s, r)
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.semi(s, r); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewExpr(span(s, m), e), true
}

// parseLocalDecl is a type followed by an identifier: const float3 a = x, b;
func (p *Parser) parseLocalDecl(s *scan.Scanner, r *combinator.Result) (ast.StmtID, bool) {
	m := begin(s)
	mods := p.modifiers(s)
	decls, ok := p.varDecls(s, r, mods)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewDecl(span(s, m), decls), true
}
