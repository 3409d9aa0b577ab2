package scan

import (
	"math"
	"strconv"
	"strings"

	"sdslc/internal/diag"
)

// Spaces пропускает пробелы и комментарии.
// Возвращает true, если что-то было поглощено.
func Spaces(s *Scanner) bool {
	start := s.Off
	for !s.EOF() {
		b := s.Peek()
		switch {
		case isSpace(b):
			s.Off++
		case b == '/' && s.PeekAt(1) == '/':
			for !s.EOF() && s.Peek() != '\n' {
				s.Off++
			}
		case b == '/' && s.PeekAt(1) == '*':
			m := s.Mark()
			s.Off += 2
			closed := false
			for !s.EOF() {
				if s.Peek() == '*' && s.PeekAt(1) == '/' {
					s.Off += 2
					closed = true
					break
				}
				s.Off++
			}
			if !closed {
				s.fail(diag.LexUnterminatedBlockComment, s.SpanFrom(m), "block comment is not closed before end of input")
				return true
			}
		default:
			return s.Off != start
		}
	}
	return s.Off != start
}

// Char matches a single byte.
func Char(s *Scanner, c byte) bool {
	if s.EOF() || s.Peek() != c {
		return false
	}
	s.Off++
	return true
}

// Literal matches lit exactly.
func Literal(s *Scanner, lit string) bool {
	if s.EOF() || !strings.HasPrefix(string(s.Rest()), lit) {
		return false
	}
	s.Off += uint32(len(lit))
	return true
}

// operators упорядочены от длинных к коротким
var operators = []string{
	"<<=", ">>=",
	"&&", "||", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"++", "--", "::",
}

// longest returns the longest multi-byte operator at the cursor or "".
func longest(s *Scanner) string {
	rest := s.Rest()
	for _, op := range operators {
		if len(rest) >= len(op) && string(rest[:len(op)]) == op {
			return op
		}
	}
	return ""
}

// Punct matches op only when it is the maximal operator at the cursor,
// so Punct("<") does not match the first half of "<=".
func Punct(s *Scanner, op string) bool {
	if s.EOF() {
		return false
	}
	if l := longest(s); l != "" {
		if l != op {
			return false
		}
		s.Off += uint32(len(op))
		return true
	}
	return Literal(s, op)
}

// IdentifierOrKeyword matches an identifier-shaped word, including reserved ones.
func IdentifierOrKeyword(s *Scanner) (string, bool) {
	if s.EOF() || !IsIdentStart(s.Peek()) {
		return "", false
	}
	m := s.Mark()
	for !s.EOF() && IsIdentPart(s.Peek()) {
		s.Off++
	}
	return s.Text(m), true
}

// Keyword matches kw as a whole word.
func Keyword(s *Scanner, kw string) bool {
	m := s.Mark()
	w, ok := IdentifierOrKeyword(s)
	if !ok || w != kw {
		s.Reset(m)
		return false
	}
	return true
}

// Identifier matches a non-reserved word.
func Identifier(s *Scanner) (string, bool) {
	m := s.Mark()
	w, ok := IdentifierOrKeyword(s)
	if !ok || IsReserved(w) {
		s.Reset(m)
		return "", false
	}
	return w, true
}

// NumberKind is the type a literal suffix selects.
type NumberKind uint8

const (
	NumInt NumberKind = iota
	NumUInt
	NumLong
	NumULong
	NumFloat
	NumHalf
	NumDouble
)

// IsFloat reports whether the literal is a floating one.
func (k NumberKind) IsFloat() bool {
	return k >= NumFloat
}

// Number is a scanned numeric literal.
type Number struct {
	Kind  NumberKind
	Text  string
	Int   uint64
	Float float64
}

// ScanNumber scans an integer or floating literal with an optional suffix.
// A literal glued to an identifier ("1x") is not a number.
func ScanNumber(s *Scanner) (Number, bool) {
	m := s.Mark()
	var n Number
	ok := false
	if s.Peek() == '0' && (s.PeekAt(1) == 'x' || s.PeekAt(1) == 'X') && isHex(s.PeekAt(2)) {
		ok = scanHex(s, &n)
	} else {
		ok = scanDecimal(s, &n)
	}
	if !ok || IsIdentPart(s.Peek()) || s.Fault != nil {
		s.Reset(m)
		return Number{}, false
	}
	n.Text = s.Text(m)
	return n, true
}

func scanHex(s *Scanner, n *Number) bool {
	s.Off += 2
	start := s.Mark()
	for isHex(s.Peek()) {
		s.Off++
	}
	digits := s.Text(start)
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		s.fail(diag.LexBadNumber, s.SpanFrom(start), "hex literal out of range")
		return false
	}
	n.Int = v
	n.Kind = intSuffix(s)
	return checkRange(s, start, n)
}

func scanDecimal(s *Scanner, n *Number) bool {
	start := s.Mark()
	intDigits := 0
	for IsDigit(s.Peek()) {
		s.Off++
		intDigits++
	}
	isFloat := false
	if s.Peek() == '.' && (intDigits > 0 || IsDigit(s.PeekAt(1))) {
		// 1.f допустимо, но 1..2 нет
		s.Off++
		isFloat = true
		for IsDigit(s.Peek()) {
			s.Off++
		}
	}
	if intDigits == 0 && !isFloat {
		return false
	}
	if b := s.Peek(); b == 'e' || b == 'E' {
		m := s.Mark()
		s.Off++
		if c := s.Peek(); c == '+' || c == '-' {
			s.Off++
		}
		if !IsDigit(s.Peek()) {
			s.Reset(m)
		} else {
			for IsDigit(s.Peek()) {
				s.Off++
			}
			isFloat = true
		}
	}
	body := s.Text(start)
	if !isFloat {
		switch b := s.Peek(); {
		case b == 'f' || b == 'F' || b == 'h' || b == 'H':
			isFloat = true
		case b == 'l' || b == 'L':
			if c := s.PeekAt(1); c == 'f' || c == 'F' {
				isFloat = true
			}
		}
	}
	if isFloat {
		v, err := strconv.ParseFloat(body, 64)
		if err != nil && !isRangeErr(err) {
			return false
		}
		n.Float = v
		n.Kind = floatSuffix(s)
		return true
	}
	v, err := strconv.ParseUint(body, 10, 64)
	if err != nil {
		s.fail(diag.LexBadNumber, s.SpanFrom(start), "integer literal out of range")
		return false
	}
	n.Int = v
	n.Kind = intSuffix(s)
	return checkRange(s, start, n)
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func intSuffix(s *Scanner) NumberKind {
	b0, b1 := s.Peek(), s.PeekAt(1)
	u0, l0 := b0 == 'u' || b0 == 'U', b0 == 'l' || b0 == 'L'
	u1, l1 := b1 == 'u' || b1 == 'U', b1 == 'l' || b1 == 'L'
	switch {
	case u0 && l1, l0 && u1:
		s.Off += 2
		return NumULong
	case u0:
		s.Off++
		return NumUInt
	case l0:
		s.Off++
		return NumLong
	}
	return NumInt
}

func floatSuffix(s *Scanner) NumberKind {
	switch s.Peek() {
	case 'f', 'F':
		s.Off++
		return NumFloat
	case 'h', 'H':
		s.Off++
		return NumHalf
	case 'l', 'L':
		s.Off++
		if c := s.Peek(); c == 'f' || c == 'F' {
			s.Off++
		}
		return NumDouble
	}
	return NumFloat
}

// checkRange ограничивает int/uint 32 битами
func checkRange(s *Scanner, start Mark, n *Number) bool {
	switch n.Kind {
	case NumInt, NumUInt:
		if n.Int > math.MaxUint32 {
			s.fail(diag.LexBadNumber, s.SpanFrom(start), "literal does not fit in 32 bits; use an l suffix")
			return false
		}
	}
	return true
}

// String scans a double-quoted literal and returns its unescaped body.
func String(s *Scanner) (string, bool) {
	if s.Peek() != '"' {
		return "", false
	}
	m := s.Mark()
	s.Off++
	var sb strings.Builder
	for !s.EOF() {
		b := s.Bump()
		switch b {
		case '"':
			return sb.String(), true
		case '\\':
			esc := s.Bump()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 0:
			default:
				sb.WriteByte(esc)
			}
		case '\n':
			s.fail(diag.LexUnterminatedString, s.SpanFrom(m), "string literal is not closed on its line")
			return "", false
		default:
			sb.WriteByte(b)
		}
	}
	if s.Fault == nil {
		s.fail(diag.LexUnterminatedString, s.SpanFrom(m), "string literal is not closed before end of input")
	}
	return "", false
}
