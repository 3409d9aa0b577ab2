package parser

import (
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/combinator"
	"sdslc/internal/scan"
	"sdslc/internal/source"
	"sdslc/internal/types"
)

// begin skips blanks and marks the start of a node. Callers are wrapped in
// Attempt, so the skipped blanks are restored on failure.
func begin(s *scan.Scanner) scan.Mark {
	scan.Spaces(s)
	return s.Mark()
}

func span(s *scan.Scanner, m scan.Mark) source.Span {
	return s.SpanFrom(m)
}

// ident parses an identifier and returns it with its span.
func ident(s *scan.Scanner, r *combinator.Result) (string, source.Span, bool) {
	m := begin(s)
	name, ok := combinator.Ident(s, r)
	if !ok {
		s.Reset(m)
		return "", source.Span{}, false
	}
	return name, span(s, m), true
}

// dottedName parses A.B.C.
func (p *Parser) dottedName(s *scan.Scanner, r *combinator.Result) (string, source.Span, bool) {
	m := begin(s)
	parts, ok := combinator.SepBy1(combinator.Rule[string](combinator.Ident), p.dot)(s, r)
	if !ok {
		s.Reset(m)
		return "", source.Span{}, false
	}
	return strings.Join(parts, "."), span(s, m), true
}

// word matches any identifier-shaped word (reserved ones included) without
// recording an expectation.
func word(s *scan.Scanner) (string, bool) {
	m := s.Mark()
	scan.Spaces(s)
	w, ok := scan.IdentifierOrKeyword(s)
	if !ok {
		s.Reset(m)
	}
	return w, ok
}

// nextIs reports whether the next non-blank byte is b.
func nextIs(s *scan.Scanner, b byte) bool {
	m := s.Mark()
	scan.Spaces(s)
	ok := !s.EOF() && s.Peek() == b
	s.Reset(m)
	return ok
}

// peekWord returns the next word without consuming it.
func peekWord(s *scan.Scanner) string {
	m := s.Mark()
	w, _ := word(s)
	s.Reset(m)
	return w
}

func (p *Parser) isTypeName(name string) bool {
	if _, ok := p.typeNames[name]; ok {
		return true
	}
	return types.IsBuiltinName(name)
}

func (p *Parser) declareTypeName(name string) {
	p.typeNames[name] = struct{}{}
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	if e := p.arenas.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{}
}
