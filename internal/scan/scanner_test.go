package scan

import (
	"testing"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

func newScanner(t *testing.T, text string) *Scanner {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sdsl", []byte(text))
	return New(fs.Get(id))
}

func TestSpacesSkipsComments(t *testing.T) {
	s := newScanner(t, "  // line\n /* block\n */ x")
	if !Spaces(s) {
		t.Fatal("expected whitespace to be consumed")
	}
	if s.Peek() != 'x' {
		t.Fatalf("expected to stop at x, got %q", s.Peek())
	}
	if Spaces(s) {
		t.Fatal("nothing left to skip")
	}
}

func TestUnterminatedBlockCommentFaults(t *testing.T) {
	s := newScanner(t, "a /* never closed")
	s.Off = 1
	Spaces(s)
	if s.Fault == nil || s.Fault.Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("expected unterminated comment fault, got %+v", s.Fault)
	}
	if s.Fault.Span.Start != 2 {
		t.Fatalf("fault should start at the comment, got %d", s.Fault.Span.Start)
	}
	if !s.EOF() {
		t.Fatal("faulted scanner must report EOF")
	}
}

func TestKeywordWholeWord(t *testing.T) {
	s := newScanner(t, "shaderX shader")
	if Keyword(s, "shader") {
		t.Fatal("keyword must not match a prefix of a longer word")
	}
	if s.Off != 0 {
		t.Fatalf("failed match must not move the scanner, off=%d", s.Off)
	}
	w, ok := Identifier(s)
	if !ok || w != "shaderX" {
		t.Fatalf("got %q %v", w, ok)
	}
	Spaces(s)
	if _, ok := Identifier(s); ok {
		t.Fatal("reserved word accepted as identifier")
	}
	if !Keyword(s, "shader") {
		t.Fatal("expected keyword")
	}
}

func TestPunctMaximalMunch(t *testing.T) {
	s := newScanner(t, "<=<")
	if Punct(s, "<") {
		t.Fatal("< must not match the head of <=")
	}
	if !Punct(s, "<=") || !Punct(s, "<") {
		t.Fatal("expected <= then <")
	}
	if !s.EOF() {
		t.Fatal("expected EOF")
	}
}

func TestScanNumber(t *testing.T) {
	tests := []struct {
		in    string
		kind  NumberKind
		ival  uint64
		fval  float64
		valid bool
	}{
		{"42", NumInt, 42, 0, true},
		{"42u", NumUInt, 42, 0, true},
		{"7l", NumLong, 7, 0, true},
		{"7UL", NumULong, 7, 0, true},
		{"0x1F", NumInt, 31, 0, true},
		{"1.5", NumFloat, 0, 1.5, true},
		{"1.f", NumFloat, 0, 1, true},
		{".25h", NumHalf, 0, 0.25, true},
		{"2e3", NumFloat, 0, 2000, true},
		{"1.0lf", NumDouble, 0, 1, true},
		{"3f", NumFloat, 0, 3, true},
		{"1x", 0, 0, 0, false},
		{".", 0, 0, 0, false},
	}
	for _, tt := range tests {
		s := newScanner(t, tt.in)
		n, ok := ScanNumber(s)
		if ok != tt.valid {
			t.Errorf("%q: ok=%v want %v", tt.in, ok, tt.valid)
			continue
		}
		if !ok {
			if s.Off != 0 {
				t.Errorf("%q: failed scan moved to %d", tt.in, s.Off)
			}
			continue
		}
		if n.Kind != tt.kind {
			t.Errorf("%q: kind=%d want %d", tt.in, n.Kind, tt.kind)
		}
		if n.Kind.IsFloat() && n.Float != tt.fval {
			t.Errorf("%q: float=%v want %v", tt.in, n.Float, tt.fval)
		}
		if !n.Kind.IsFloat() && n.Int != tt.ival {
			t.Errorf("%q: int=%d want %d", tt.in, n.Int, tt.ival)
		}
		if n.Text != tt.in {
			t.Errorf("%q: text=%q", tt.in, n.Text)
		}
	}
}

func TestNumberOverflowFaults(t *testing.T) {
	s := newScanner(t, "4294967296")
	if _, ok := ScanNumber(s); ok {
		t.Fatal("expected overflow to fail")
	}
	if s.Fault == nil || s.Fault.Code != diag.LexBadNumber {
		t.Fatalf("expected bad number fault, got %+v", s.Fault)
	}
}

func TestString(t *testing.T) {
	s := newScanner(t, `"a\"b\n" rest`)
	v, ok := String(s)
	if !ok || v != "a\"b\n" {
		t.Fatalf("got %q %v", v, ok)
	}
	s = newScanner(t, "\"open\nx")
	if _, ok := String(s); ok {
		t.Fatal("expected failure")
	}
	if s.Fault == nil || s.Fault.Code != diag.LexUnterminatedString {
		t.Fatalf("unexpected fault %+v", s.Fault)
	}
}
