package parser

import (
	"sdslc/internal/ast"
	"sdslc/internal/combinator"
	"sdslc/internal/scan"
)

// parseType разбирает имя типа с необязательными аргументами <...>
func (p *Parser) parseType(s *scan.Scanner, r *combinator.Result) (ast.TypeID, bool) {
	name, sp, ok := p.dottedName(s, r)
	if !ok {
		return ast.NoTypeID, false
	}
	var args []ast.TypeID
	m := s.Mark()
	scan.Spaces(s)
	if scan.Punct(s, "<") {
		list, ok := combinator.SepBy1(p.typeArg, p.comma)(s, r)
		if _, closed := p.rangle(s, r); ok && closed {
			args = list
			sp = sp.Cover(s.SpanFrom(m))
		}
	}
	if args == nil {
		s.Reset(m)
	}
	return p.arenas.Types.New(sp, name, args), true
}

// typeArg is a type or a numeric literal (sample counts).
func (p *Parser) typeArg(s *scan.Scanner, r *combinator.Result) (ast.TypeID, bool) {
	m := begin(s)
	if n, ok := combinator.Num(s, r); ok {
		return p.arenas.Types.New(span(s, m), n.Text, nil), true
	}
	s.Reset(m)
	return p.typ(s, r)
}

// arrayDims parses zero or more [N] suffixes; [] yields NoExprID.
func (p *Parser) arrayDims(s *scan.Scanner, r *combinator.Result) ([]ast.ExprID, bool) {
	dim := combinator.Attempt(func(s *scan.Scanner, r *combinator.Result) (ast.ExprID, bool) {
		if _, ok := p.lbrack(s, r); !ok {
			return ast.NoExprID, false
		}
		size, _ := combinator.Optional(p.expr)(s, r)
		if _, ok := p.rbrack(s, r); !ok {
			return ast.NoExprID, false
		}
		return size.Value, true
	})
	return combinator.Many(dim)(s, r)
}
