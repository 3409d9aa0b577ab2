// Package scan is the character-level layer of the front end: a backtrackable
// cursor over a source buffer and the token primitives built on it.
//
// Every primitive either succeeds and consumes input, or fails and leaves the
// scanner exactly where it was. Lexical faults (an unterminated block comment,
// an out-of-range literal) are fatal; the first one is kept in Fault and the
// scanner reports EOF from then on.
package scan

import (
	"fmt"

	"fortio.org/safecast"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// Fault is a fatal lexical error.
type Fault struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at %s: %s", f.Code.ID(), f.Span, f.Msg)
}

// Scanner представляет собой позицию в файле
type Scanner struct {
	File  *source.File
	Off   uint32
	Limit uint32
	Fault *Fault
}

// New creates a scanner over the whole file.
func New(f *source.File) *Scanner {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return &Scanner{File: f, Limit: limit}
}

// Mark это сохранённая позиция для отката
type Mark uint32

// Mark сохраняет текущую позицию
func (s *Scanner) Mark() Mark {
	return Mark(s.Off)
}

// Reset возвращает сканер к метке
func (s *Scanner) Reset(m Mark) {
	s.Off = uint32(m)
}

// SpanFrom получает Span от метки до текущей позиции
func (s *Scanner) SpanFrom(m Mark) source.Span {
	return source.Span{File: s.File.ID, Start: uint32(m), End: s.Off}
}

// Here is an empty span at the current position.
func (s *Scanner) Here() source.Span {
	return source.At(s.File.ID, s.Off)
}

// EOF reports the end of input; a faulted scanner is always at EOF.
func (s *Scanner) EOF() bool {
	return s.Fault != nil || s.Off >= s.Limit
}

// Peek returns the current byte or 0 at EOF.
func (s *Scanner) Peek() byte {
	if s.EOF() {
		return 0
	}
	return s.File.Content[s.Off]
}

// PeekAt returns the byte n positions ahead or 0 past the limit.
func (s *Scanner) PeekAt(n uint32) byte {
	if s.Fault != nil || s.Off+n >= s.Limit {
		return 0
	}
	return s.File.Content[s.Off+n]
}

// Bump consumes one byte.
func (s *Scanner) Bump() byte {
	if s.EOF() {
		return 0
	}
	b := s.File.Content[s.Off]
	s.Off++
	return b
}

// Rest returns the unconsumed input.
func (s *Scanner) Rest() []byte {
	if s.EOF() {
		return nil
	}
	return s.File.Content[s.Off:s.Limit]
}

// Text returns the source text between m and the current position.
func (s *Scanner) Text(m Mark) string {
	return string(s.File.Content[uint32(m):s.Off])
}

func (s *Scanner) fail(code diag.Code, span source.Span, msg string) {
	if s.Fault == nil {
		s.Fault = &Fault{Code: code, Span: span, Msg: msg}
	}
}
