package preprocess

import (
	"errors"
	"strings"
	"testing"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

type fixture struct {
	fs  *source.FileSet
	out *Output
	bag *diag.Bag
	err error
}

func run(t *testing.T, text string, files source.MapProvider, defines ...Define) fixture {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.sdsl", []byte(text))
	bag := diag.NewBag(0)
	out, err := Process(fs, id, Options{
		Defines:  defines,
		Provider: files,
		Reporter: diag.BagReporter{Bag: bag},
	})
	return fixture{fs: fs, out: out, bag: bag, err: err}
}

func expectText(t *testing.T, text, want string) {
	t.Helper()
	fx := run(t, text, nil)
	if fx.err != nil {
		t.Fatalf("unexpected error: %v (%v)", fx.err, fx.bag.Items())
	}
	if got := string(fx.out.Text); got != want {
		t.Fatalf("output mismatch\n got: %q\nwant: %q", got, want)
	}
}

func expectFatal(t *testing.T, text string, code diag.Code) diag.Diagnostic {
	t.Helper()
	fx := run(t, text, nil)
	if !errors.Is(fx.err, ErrFatal) {
		t.Fatalf("expected fatal error, got %v", fx.err)
	}
	items := fx.bag.Items()
	if len(items) == 0 {
		t.Fatal("fatal error without diagnostic")
	}
	last := items[len(items)-1]
	if last.Code != code {
		t.Fatalf("expected %s, got %s: %s", code.ID(), last.Code.ID(), last.Message)
	}
	return *last
}

func TestPassThrough(t *testing.T) {
	text := "shader A {\n\t// comment with FOO\n\tfloat4 x = float4(1, 0, 0, 1); /* c */\n}\n"
	expectText(t, text, text)
}

func TestDirectivesBecomeBlankLines(t *testing.T) {
	text := "#define LEVEL 2\n#if LEVEL == 1\none\n#elif LEVEL == 2\ntwo\n#else\nother\n#endif\n"
	expectText(t, text, "\n\n\n\ntwo\n\n\n\n")
}

func TestConditionalExclusivity(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"#if 0\na\n#elif 1\nb\n#elif 1\nc\n#else\nd\n#endif", "b"},
		{"#if 1\na\n#elif 1\nb\n#else\nd\n#endif", "a"},
		{"#if 0\na\n#elif 0\nb\n#else\nd\n#endif", "d"},
		{"#ifdef NOPE\na\n#else\nd\n#endif", "d"},
		{"#ifndef NOPE\na\n#else\nd\n#endif", "a"},
		{"#if 0\n#if 1\na\n#else\nb\n#endif\n#else\nc\n#endif", "c"},
	}
	for _, tt := range tests {
		fx := run(t, tt.cond, nil)
		if fx.err != nil {
			t.Fatalf("%q: %v", tt.cond, fx.err)
		}
		got := strings.TrimSpace(string(fx.out.Text))
		if got != tt.want {
			t.Errorf("%q: got %q want %q", tt.cond, got, tt.want)
		}
		if lines := strings.Count(string(fx.out.Text), "\n"); lines != strings.Count(tt.cond, "\n") {
			t.Errorf("%q: line count changed to %d", tt.cond, lines)
		}
	}
}

func TestShortCircuitSkipsUnreachedOperands(t *testing.T) {
	text := "#define BAD (1/0)\n#if defined(NOPE) && BAD\nx\n#endif\n#if 1 || BAD\ny\n#endif\n#if 0 ? BAD : 1\nz\n#endif\n"
	fx := run(t, text, nil)
	if fx.err != nil {
		t.Fatalf("unexpected error: %v", fx.err)
	}
	got := strings.Fields(string(fx.out.Text))
	if strings.Join(got, " ") != "y z" {
		t.Fatalf("got %q", got)
	}
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	expectFatal(t, "#if 4 / (2 - 2)\n#endif\n", diag.PreBadExpression)
}

func TestFunctionLikeMacros(t *testing.T) {
	expectText(t, "#define SQR(x) ((x)*(x))\nfloat a = SQR(b+1);\n", "\nfloat a = ((b+1)*(b+1));\n")
	expectText(t, "#define S(x) #x\nS( a  +  \"q\" )", "\n"+`"a + \"q\""`)
	expectText(t, "#define foo2 bar\n#define CAT(a,b) a##b\nCAT(foo, 2)", "\n\nbar")
	expectText(t, "#define V(f, ...) f(__VA_ARGS__)\nV(g, 1, 2)", "\ng(1,2)")
	expectText(t, "#define F(x) x\nint F;", "\nint F;")
	expectText(t, "#define E() 7\nE()", "\n7")
}

func TestRecursiveMacrosStop(t *testing.T) {
	expectText(t, "#define X X + 1\nX", "\nX + 1")
	expectText(t, "#define A B\n#define B A\nA", "\n\nA")
}

func TestMultiLineCallKeepsLines(t *testing.T) {
	text := "#define F(a,b) a+b\nx = F(1,\n2);\ny;"
	expectText(t, text, "\nx = 1+2\n;\ny;")
}

func TestMacroArityIsFatal(t *testing.T) {
	expectFatal(t, "#define F(a,b) a\nF(1)", diag.PreMacroArity)
	expectFatal(t, "#define F(a) a\nF(1", diag.PreUnterminatedArgs)
}

func TestDirectiveErrors(t *testing.T) {
	d := expectFatal(t, "x\n#if 1\nfoo\n", diag.PreUnterminatedConditional)
	if d.Primary.Start != 2 {
		t.Fatalf("unterminated conditional should point at #if, got %d", d.Primary.Start)
	}
	expectFatal(t, "#endif\n", diag.PreUnmatchedDirective)
	expectFatal(t, "#if 1\n#else\n#else\n#endif\n", diag.PreElseAfterElse)
	expectFatal(t, "#if 1\n#else\n#elif 1\n#endif\n", diag.PreElseAfterElse)
	expectFatal(t, "#frobnicate\n", diag.PreUnknownDirective)
	expectFatal(t, "#define\n", diag.PreMalformedDirective)
	d = expectFatal(t, "#error stop here\n", diag.PreUserError)
	if d.Message != "#error stop here" {
		t.Fatalf("message %q", d.Message)
	}
}

func TestInactiveBranchIgnoresJunk(t *testing.T) {
	expectText(t, "#if 0\n#frobnicate\n}{ not code\n#error no\n#endif\nok", "\n\n\n\n\nok")
	text := "/*\n#error no\n*/\nx"
	expectText(t, text, text)
}

func TestWarnings(t *testing.T) {
	fx := run(t, "#warning careful\n#define A 1\n#define A 2\n#define B 1\n#define B  1\n", nil)
	if fx.err != nil {
		t.Fatalf("unexpected error: %v", fx.err)
	}
	var codes []string
	for _, d := range fx.bag.Items() {
		if d.Severity != diag.SevWarning {
			t.Fatalf("unexpected %v", d)
		}
		codes = append(codes, d.Code.ID())
	}
	want := diag.PreUserWarning.ID() + " " + diag.PreMacroRedefined.ID()
	if strings.Join(codes, " ") != want {
		t.Fatalf("got %v want %s", codes, want)
	}
}

func TestPredefinedMacros(t *testing.T) {
	fx := run(t, "#if MODE == 3\nok\n#endif\nMODE", nil, Define{Name: "MODE", Value: "3"})
	if fx.err != nil {
		t.Fatalf("unexpected error: %v", fx.err)
	}
	if got := strings.Fields(string(fx.out.Text)); strings.Join(got, " ") != "ok 3" {
		t.Fatalf("got %q", got)
	}
	if m := fx.out.Defines["MODE"]; m == nil || m.Value() != "3" {
		t.Fatalf("MODE missing from final defines: %+v", m)
	}
}

func TestIncludeAndRemap(t *testing.T) {
	files := source.MapProvider{
		"shaders/common.sdsli": []byte("float a;\n"),
	}
	fs := source.NewFileSet()
	main := fs.AddVirtual("shaders/main.sdsl", []byte("#include \"common.sdsli\"\nfloat b;"))
	out, err := Process(fs, main, Options{Provider: files})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(out.Text); got != "float a;\n\nfloat b;" {
		t.Fatalf("got %q", got)
	}
	if len(out.Includes) != 1 {
		t.Fatalf("includes %v", out.Includes)
	}
	inc := out.Includes[0]

	b := out.Remap(source.Span{File: out.File, Start: 16, End: 17})
	if b.File != main || b.Start != 30 || b.End != 31 {
		t.Fatalf("b remapped to %+v", b)
	}
	a := out.Remap(source.Span{File: out.File, Start: 6, End: 7})
	if a.File != inc || a.Start != 6 || a.End != 7 {
		t.Fatalf("a remapped to %+v", a)
	}
	if fs.Get(inc).Path != "shaders/common.sdsli" {
		t.Fatalf("include path %q", fs.Get(inc).Path)
	}
}

func TestRemapMacroUseSite(t *testing.T) {
	fx := run(t, "#define ONE 1.0\nfloat x = ONE;", nil)
	if fx.err != nil {
		t.Fatal(fx.err)
	}
	got := fx.out.Remap(source.Span{File: fx.out.File, Start: 11, End: 14})
	if got.Start != 26 || got.End != 29 {
		t.Fatalf("macro text should map to its use site, got %+v", got)
	}
}

func TestIncludeErrors(t *testing.T) {
	fs := source.NewFileSet()
	main := fs.AddVirtual("loop.sdsli", []byte("#include \"loop.sdsli\"\n"))
	bag := diag.NewBag(0)
	_, err := Process(fs, main, Options{Provider: source.MapProvider{}, Reporter: diag.BagReporter{Bag: bag}})
	if !errors.Is(err, ErrFatal) || bag.Items()[0].Code != diag.PreIncludeDepth {
		t.Fatalf("expected include depth error, got %v %v", err, bag.Items())
	}
	expectFatal(t, "#include \"missing.sdsli\"\n", diag.PreIncludeNotFound)
	expectFatal(t, "#include missing\n", diag.PreMalformedDirective)
}
