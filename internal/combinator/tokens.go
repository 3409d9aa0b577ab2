package combinator

import (
	"sdslc/internal/scan"
)

// Lexeme rules skip leading whitespace and comments, then match one token.
// Expectations are recorded after the skipped whitespace.

// Sym matches a punctuator with maximal munch.
func Sym(op string) Rule[Unit] {
	return SymAs(op, "'"+op+"'")
}

// SymAs is Sym reporting label instead of the operator when it fails, so
// that a family of operators shows up once in a diagnostic.
func SymAs(op, label string) Rule[Unit] {
	what := label
	return func(s *scan.Scanner, r *Result) (Unit, bool) {
		m := s.Mark()
		scan.Spaces(s)
		if scan.Punct(s, op) {
			return Unit{}, true
		}
		r.Expect(s.Off, what)
		s.Reset(m)
		return Unit{}, false
	}
}

// Kw matches a whole word.
func Kw(word string) Rule[Unit] {
	what := "'" + word + "'"
	return func(s *scan.Scanner, r *Result) (Unit, bool) {
		m := s.Mark()
		scan.Spaces(s)
		if scan.Keyword(s, word) {
			return Unit{}, true
		}
		r.Expect(s.Off, what)
		s.Reset(m)
		return Unit{}, false
	}
}

// Ident matches a non-reserved identifier.
func Ident(s *scan.Scanner, r *Result) (string, bool) {
	m := s.Mark()
	scan.Spaces(s)
	if w, ok := scan.Identifier(s); ok {
		return w, true
	}
	r.Expect(s.Off, "identifier")
	s.Reset(m)
	return "", false
}

// Num matches a numeric literal.
func Num(s *scan.Scanner, r *Result) (scan.Number, bool) {
	m := s.Mark()
	scan.Spaces(s)
	if n, ok := scan.ScanNumber(s); ok {
		return n, true
	}
	r.Expect(s.Off, "number")
	s.Reset(m)
	return scan.Number{}, false
}

// Str matches a string literal.
func Str(s *scan.Scanner, r *Result) (string, bool) {
	m := s.Mark()
	scan.Spaces(s)
	if v, ok := scan.String(s); ok {
		return v, true
	}
	r.Expect(s.Off, "string")
	s.Reset(m)
	return "", false
}

// End matches the end of input after trailing whitespace.
func End(s *scan.Scanner, r *Result) (Unit, bool) {
	m := s.Mark()
	scan.Spaces(s)
	if s.Off >= s.Limit && s.Fault == nil {
		return Unit{}, true
	}
	r.Expect(s.Off, "end of input")
	s.Reset(m)
	return Unit{}, false
}
