// Package combinator provides the backtracking rule algebra the grammar is
// written in. A Rule either succeeds and advances the scanner or fails and
// leaves it untouched; failures leave an expectation in the shared Result so
// that one diagnostic can be produced at the deepest position reached.
package combinator

import (
	"fmt"
	"strings"

	"sdslc/internal/diag"
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

// Result is shared by pointer across one parse and is never rolled back.
type Result struct {
	Reporter diag.Reporter

	fatal    bool
	silent   int
	deepest  uint32
	expected []string
	seen     map[string]struct{}
}

// NewResult creates a result that commits diagnostics to rep.
func NewResult(rep diag.Reporter) *Result {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Result{Reporter: rep, seen: make(map[string]struct{})}
}

// Expect records that what was expected at off. Only the deepest offset is
// kept; expectations at the same offset merge.
func (r *Result) Expect(off uint32, what string) {
	if r.silent > 0 {
		return
	}
	switch {
	case len(r.expected) == 0 || off > r.deepest:
		r.deepest = off
		r.expected = r.expected[:0]
		clear(r.seen)
	case off < r.deepest:
		return
	}
	if _, dup := r.seen[what]; dup {
		return
	}
	r.seen[what] = struct{}{}
	r.expected = append(r.expected, what)
}

// Deepest returns the furthest offset with an expectation and the set.
func (r *Result) Deepest() (uint32, []string) {
	return r.deepest, r.expected
}

// Commit reports a diagnostic that survives backtracking.
func (r *Result) Commit(code diag.Code, sev diag.Severity, span source.Span, msg string) {
	if sev >= diag.SevError && code.Fatal() {
		r.fatal = true
	}
	r.Reporter.Report(code, sev, span, msg, nil)
}

// Fatal reports whether parsing must stop.
func (r *Result) Fatal(s *scan.Scanner) bool {
	return r.fatal || s.Fault != nil
}

// Failure turns the scanner fault, or else the deepest expectation set, into
// one fatal diagnostic and reports it.
func (r *Result) Failure(s *scan.Scanner) *diag.Diagnostic {
	var d *diag.Diagnostic
	switch {
	case s.Fault != nil:
		d = diag.NewError(s.Fault.Code, s.Fault.Span, s.Fault.Msg)
	case len(r.expected) == 0:
		d = diag.NewError(diag.SynUnexpectedToken, s.Here(), "unexpected input")
	default:
		probe := *s
		probe.Off = r.deepest
		found, span := describe(&probe)
		code := diag.SynUnexpectedToken
		if found == "" {
			code = diag.SynUnexpectedEOF
			found = "end of input"
		} else {
			found = "'" + found + "'"
		}
		d = diag.NewError(code, span, fmt.Sprintf("expected %s, found %s", joinExpected(r.expected), found))
	}
	r.fatal = true
	r.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	return d
}

func joinExpected(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

// describe returns the token text at the scanner position.
func describe(s *scan.Scanner) (string, source.Span) {
	if s.EOF() {
		return "", s.Here()
	}
	m := s.Mark()
	switch b := s.Peek(); {
	case scan.IsIdentStart(b):
		w, _ := scan.IdentifierOrKeyword(s)
		return w, s.SpanFrom(m)
	case scan.IsDigit(b):
		if n, ok := scan.ScanNumber(s); ok {
			return n.Text, s.SpanFrom(m)
		}
	}
	s.Reset(m)
	s.Bump()
	return s.Text(m), s.SpanFrom(m)
}
