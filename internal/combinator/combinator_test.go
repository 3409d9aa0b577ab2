package combinator

import (
	"strings"
	"testing"

	"sdslc/internal/diag"
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

func newScanner(t *testing.T, text string) *scan.Scanner {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sdsl", []byte(text))
	return scan.New(fs.Get(id))
}

func newResult() (*Result, *diag.Bag) {
	bag := diag.NewBag(0)
	return NewResult(diag.BagReporter{Bag: bag}), bag
}

// pair = ident '=' number ';'
func pair() Rule[string] {
	eq, semi := Sym("="), Sym(";")
	return Attempt(func(s *scan.Scanner, r *Result) (string, bool) {
		name, ok := Ident(s, r)
		if !ok {
			return "", false
		}
		if _, ok := eq(s, r); !ok {
			return "", false
		}
		n, ok := Num(s, r)
		if !ok {
			return "", false
		}
		if _, ok := semi(s, r); !ok {
			return "", false
		}
		return name + "=" + n.Text, true
	})
}

func TestBacktrackingRestoresPosition(t *testing.T) {
	inputs := []string{"a = 1", "a = ;", "a 1;", "= 1;", "a = 1 ="}
	for _, in := range inputs {
		s := newScanner(t, in)
		r, _ := newResult()
		if _, ok := pair()(s, r); ok {
			t.Fatalf("%q: unexpected success", in)
		}
		if s.Off != 0 {
			t.Fatalf("%q: failed rule left scanner at %d", in, s.Off)
		}
		if _, ok := Alt(pair(), pair())(s, r); ok || s.Off != 0 {
			t.Fatalf("%q: failed alternative left scanner at %d", in, s.Off)
		}
	}
}

func TestManyAndSepBy(t *testing.T) {
	s := newScanner(t, "a=1; b=2; c=")
	r, _ := newResult()
	items, ok := Many(pair())(s, r)
	if !ok || len(items) != 2 || items[1] != "b=2" {
		t.Fatalf("got %v %v", items, ok)
	}

	s = newScanner(t, "x, y, z,")
	list, _ := SepBy(Rule[string](Ident), Sym(","))(s, r)
	if strings.Join(list, "") != "xyz" {
		t.Fatalf("got %v", list)
	}
	if rest := string(s.Rest()); rest != "," {
		t.Fatalf("trailing separator must stay unconsumed, rest=%q", rest)
	}

	s = newScanner(t, ";")
	if _, ok := SepBy1(Rule[string](Ident), Sym(","))(s, r); ok {
		t.Fatal("SepBy1 must require one item")
	}
}

func TestOptionalAndLookahead(t *testing.T) {
	s := newScanner(t, "float4 x")
	r, _ := newResult()
	opt, ok := Optional(Kw("const"))(s, r)
	if !ok || opt.Some {
		t.Fatalf("optional: %v %v", opt, ok)
	}
	if _, ok := FollowedBy(Rule[string](Ident))(s, r); !ok || s.Off != 0 {
		t.Fatal("lookahead must match without consuming")
	}
	if _, ok := NotFollowedBy(Sym("("))(s, r); !ok || s.Off != 0 {
		t.Fatal("negative lookahead must succeed without consuming")
	}
	if _, exp := r.Deepest(); len(exp) != 1 || exp[0] != "'const'" {
		t.Fatalf("probe expectations must not be recorded, got %v", exp)
	}
}

func TestBetweenAndMap(t *testing.T) {
	s := newScanner(t, "( 7 )")
	r, _ := newResult()
	val := Map(Rule[scan.Number](Num), func(n scan.Number) uint64 { return n.Int })
	v, ok := Between(Sym("("), val, Sym(")"))(s, r)
	if !ok || v != 7 {
		t.Fatalf("got %v %v", v, ok)
	}
	s = newScanner(t, "( 7 ]")
	if _, ok := Between(Sym("("), val, Sym(")"))(s, r); ok || s.Off != 0 {
		t.Fatal("unclosed group must fail and restore")
	}
}

func TestFailureReportsDeepestExpectation(t *testing.T) {
	s := newScanner(t, "a = 1 b")
	r, bag := newResult()
	if _, ok := Alt(pair(), pair())(s, r); ok {
		t.Fatal("expected failure")
	}
	d := r.Failure(s)
	if d.Code != diag.SynUnexpectedToken {
		t.Fatalf("code %v", d.Code)
	}
	if d.Message != "expected ';', found 'b'" {
		t.Fatalf("message %q", d.Message)
	}
	if d.Primary.Start != 6 {
		t.Fatalf("span start %d", d.Primary.Start)
	}
	if bag.Len() != 1 {
		t.Fatalf("exactly one diagnostic expected, got %d", bag.Len())
	}
}

func TestFailureMergesTiesAndReportsEOF(t *testing.T) {
	s := newScanner(t, "a =")
	r, _ := newResult()
	value := Alt(
		Map(Rule[scan.Number](Num), func(scan.Number) string { return "" }),
		Rule[string](Ident),
	)
	rule := Attempt(func(s *scan.Scanner, r *Result) (string, bool) {
		if _, ok := Ident(s, r); !ok {
			return "", false
		}
		if _, ok := Sym("=")(s, r); !ok {
			return "", false
		}
		return value(s, r)
	})
	if _, ok := rule(s, r); ok {
		t.Fatal("expected failure")
	}
	d := r.Failure(s)
	if d.Code != diag.SynUnexpectedEOF {
		t.Fatalf("code %v", d.Code)
	}
	if d.Message != "expected number or identifier, found end of input" {
		t.Fatalf("message %q", d.Message)
	}
}

func TestFailurePrefersLexicalFault(t *testing.T) {
	s := newScanner(t, "a /* open")
	r, _ := newResult()
	if _, ok := Many(Rule[string](Ident))(s, r); !ok {
		t.Fatal("Many never fails")
	}
	if !r.Fatal(s) {
		t.Fatal("fault must be fatal")
	}
	if d := r.Failure(s); d.Code != diag.LexUnterminatedBlockComment {
		t.Fatalf("code %v", d.Code)
	}
}

func TestSymAsLabelsExpectation(t *testing.T) {
	s := newScanner(t, "x")
	r, _ := newResult()
	plus, minus := SymAs("+", "operator"), SymAs("-", "operator")
	if _, ok := Alt(plus, minus, Sym(";"))(s, r); ok {
		t.Fatal("expected failure")
	}
	if _, exp := r.Deepest(); strings.Join(exp, "|") != "operator|';'" {
		t.Fatalf("got %v", exp)
	}
}
