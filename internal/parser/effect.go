package parser

import (
	"sdslc/internal/ast"
	"sdslc/internal/combinator"
	"sdslc/internal/scan"
)

func (p *Parser) parseEffect(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.DeclID, bool) {
	word(s)
	name, _, ok := ident(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	stmts, ok := body(p, s, r, p.effStmt)
	if !ok {
		return ast.NoDeclID, false
	}
	return p.arenas.Decls.NewEffect(span(s, m), name, stmts), true
}

func (p *Parser) parseEffStmt(s *scan.Scanner, r *combinator.Result) (ast.EffID, bool) {
	m := begin(s)
	switch peekWord(s) {
	case "mixin":
		word(s)
		return p.mixinStmt(s, r, m)
	case "using":
		word(s)
		if _, ok := combinator.Kw("params")(s, r); !ok {
			return ast.NoEffID, false
		}
		name, _, ok := p.dottedName(s, r)
		if !ok {
			return ast.NoEffID, false
		}
		if _, ok := p.semi(s, r); !ok {
			return ast.NoEffID, false
		}
		return p.arenas.Effs.New(ast.Eff{Kind: ast.EffUsingParams, Span: span(s, m), Name: name}), true
	case "if":
		word(s)
		cond, ok := p.parenExpr(s, r)
		if !ok {
			return ast.NoEffID, false
		}
		then, ok := p.effStmt(s, r)
		if !ok {
			return ast.NoEffID, false
		}
		els := ast.NoEffID
		at := s.Mark()
		if _, ok := p.kwElse(s, r); ok {
			if els, ok = p.effStmt(s, r); !ok {
				s.Reset(at)
				return ast.NoEffID, false
			}
		}
		return p.arenas.Effs.New(ast.Eff{Kind: ast.EffIf, Span: span(s, m), Value: cond, Then: then, Else: els}), true
	}
	if s.Peek() == '{' {
		p.lbrace(s, r)
		stmts, _ := combinator.Many(p.effStmt)(s, r)
		if _, ok := p.rbrace(s, r); !ok {
			return ast.NoEffID, false
		}
		return p.arenas.Effs.New(ast.Eff{Kind: ast.EffBlock, Span: span(s, m), Body: stmts}), true
	}
	r.Expect(s.Off, "'mixin'")
	return ast.NoEffID, false
}

// mixinStmt parses what follows "mixin": compose, macro or a class name.
func (p *Parser) mixinStmt(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.EffID, bool) {
	switch peekWord(s) {
	case "compose":
		word(s)
		slot, _, ok := ident(s, r)
		if !ok {
			return ast.NoEffID, false
		}
		if _, ok := p.assign(s, r); !ok {
			return ast.NoEffID, false
		}
		ref, ok := p.mixinRef(s, r)
		if !ok {
			return ast.NoEffID, false
		}
		if _, ok := p.semi(s, r); !ok {
			return ast.NoEffID, false
		}
		return p.arenas.Effs.New(ast.Eff{
			Kind: ast.EffCompose, Span: span(s, m), Name: slot, Target: ref.Name, TargetSpan: ref.Span, Args: ref.Args,
		}), true
	case "macro":
		at := s.Mark()
		word(s)
		name, _, ok := ident(s, r)
		if ok {
			value := ast.NoExprID
			if _, ok := p.assign(s, r); ok {
				if value, ok = p.expr(s, r); !ok {
					return ast.NoEffID, false
				}
			}
			if _, ok := p.semi(s, r); !ok {
				return ast.NoEffID, false
			}
			return p.arenas.Effs.New(ast.Eff{Kind: ast.EffMacro, Span: span(s, m), Name: name, Value: value}), true
		}
		// класс с именем macro
		s.Reset(at)
	}
	ref, ok := p.mixinRef(s, r)
	if !ok {
		return ast.NoEffID, false
	}
	if _, ok := p.semi(s, r); !ok {
		return ast.NoEffID, false
	}
	return p.arenas.Effs.New(ast.Eff{Kind: ast.EffMixin, Span: span(s, m), Name: ref.Name, TargetSpan: ref.Span, Args: ref.Args}), true
}
