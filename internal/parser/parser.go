// Package parser turns preprocessed shader text into the arena AST. The
// grammar is written with the backtracking rules from package combinator:
// every rule restores the scanner when it fails, and a file that does not
// parse yields one diagnostic at the deepest position any rule reached.
package parser

import (
	"sdslc/internal/ast"
	"sdslc/internal/combinator"
	"sdslc/internal/diag"
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

type rule[T any] = combinator.Rule[T]

type unit = combinator.Unit

type Options struct {
	Reporter diag.Reporter
}

type Result struct {
	File ast.FileID
	// OK is false when a fatal lexical or syntax diagnostic was reported.
	OK bool
}

// Parser — набор правил грамматики поверх общего Builder
type Parser struct {
	arenas    *ast.Builder
	typeNames map[string]struct{}

	// punctuation
	semi, comma, colon, dot, assign       rule[unit]
	lparen, rparen, lbrace, rbrace        rule[unit]
	lbrack, rbrack, langle, rangle, qmark rule[unit]

	assignSyms                           []rule[unit]
	ternaryOp, callOp, memberOp, indexOp rule[unit]
	incOp, decOp                         rule[unit]
	kwElse, kwWhile                      rule[unit]

	expr       rule[ast.ExprID]
	ternary    rule[ast.ExprID]
	binary     rule[ast.ExprID]
	unary      rule[ast.ExprID]
	stmt       rule[ast.StmtID]
	typ        rule[ast.TypeID]
	topDecl    rule[[]ast.DeclID]
	member     rule[[]ast.DeclID]
	effStmt    rule[ast.EffID]
	attributes rule[[]ast.AttrID]
}

// New builds the rule set once; the parser can then parse any number of
// files into arenas.
func New(arenas *ast.Builder) *Parser {
	p := &Parser{arenas: arenas, typeNames: make(map[string]struct{})}
	p.semi, p.comma, p.colon, p.dot = combinator.Sym(";"), combinator.Sym(","), combinator.Sym(":"), combinator.Sym(".")
	p.assign = combinator.Sym("=")
	p.lparen, p.rparen = combinator.Sym("("), combinator.Sym(")")
	p.lbrace, p.rbrace = combinator.Sym("{"), combinator.Sym("}")
	p.lbrack, p.rbrack = combinator.Sym("["), combinator.Sym("]")
	p.langle, p.rangle = combinator.Sym("<"), combinator.Sym(">")
	p.qmark = combinator.Sym("?")

	p.typ = combinator.Attempt(p.parseType)
	p.buildExpressions()
	p.kwElse, p.kwWhile = combinator.Kw("else"), combinator.Kw("while")
	p.stmt = combinator.Attempt(p.parseStmt)
	p.attributes = combinator.Many(combinator.Attempt(p.parseAttr))
	p.member = combinator.Attempt(p.parseMember)
	p.topDecl = combinator.Attempt(p.parseTopDecl)
	p.effStmt = combinator.Attempt(p.parseEffStmt)
	return p
}

// ParseFile parses one file of fs.
func ParseFile(fs *source.FileSet, file source.FileID, arenas *ast.Builder, opts Options) Result {
	return New(arenas).File(fs.Get(file), opts)
}

// File parses f into a new ast.File.
func (p *Parser) File(f *source.File, opts Options) Result {
	s := scan.New(f)
	r := combinator.NewResult(opts.Reporter)
	id := p.arenas.NewFile(source.Span{File: f.ID, Start: 0, End: f.Len()})

	decls, _ := combinator.Many(p.topDecl)(s, r)
	for _, group := range decls {
		for _, d := range group {
			p.arenas.PushDecl(id, d)
		}
	}
	if _, ok := combinator.End(s, r); !ok {
		r.Failure(s)
		return Result{File: id}
	}
	return Result{File: id, OK: true}
}

// Expr parses a standalone expression, e.g. a condition given on the
// command line.
func (p *Parser) Expr(f *source.File, opts Options) (ast.ExprID, bool) {
	s := scan.New(f)
	r := combinator.NewResult(opts.Reporter)
	e, ok := p.expr(s, r)
	if ok {
		_, ok = combinator.End(s, r)
	}
	if !ok {
		r.Failure(s)
		return ast.NoExprID, false
	}
	return e, true
}
