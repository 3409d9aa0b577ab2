package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"sdslc/internal/diag"
	"sdslc/internal/preprocess"
	"sdslc/internal/source"
	"sdslc/internal/spirv"
	"sdslc/internal/target"
	"sdslc/internal/trace"
)

func compileSource(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Compile(context.Background(), Request{Name: "main.sdsl", Source: []byte(src), Profile: target.Default})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return res
}

func shortDiags(res *Result) string {
	return diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet, false)
}

func TestCompileMinimalShader(t *testing.T) {
	res := compileSource(t, "shader Foo { float4 bar() { return float4(1,0,0,1); } }")
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", shortDiags(res))
	}
	if !res.OK() || len(res.Module) == 0 {
		t.Fatal("no module produced")
	}
	h, _, err := spirv.Decode(res.Module)
	if err != nil {
		t.Fatal(err)
	}
	if h.Magic != spirv.MagicNumber {
		t.Fatalf("magic = %#x", h.Magic)
	}
	if res.Program == nil || res.Program.Name != "Foo" {
		t.Fatalf("program = %+v", res.Program)
	}
}

func TestUndefinedVariable(t *testing.T) {
	res := compileSource(t, "shader Foo { float4 bar() { return undefinedVar; } }")
	if res.Module != nil {
		t.Fatal("module produced despite an error")
	}
	items := res.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("want one diagnostic, got:\n%s", shortDiags(res))
	}
	if items[0].Code != diag.SemaUnresolvedSymbol || !strings.Contains(items[0].Message, "undefinedVar") {
		t.Fatalf("diagnostic = %s %s", items[0].Code.ID(), items[0].Message)
	}
}

func TestDisabledBlockIsNotParsed(t *testing.T) {
	res := compileSource(t, "shader Foo\n{\n#if 0\n    }{ this is not code (\n#endif\n    float4 bar() { return float4(1, 0, 0, 1); }\n};\n")
	if !res.OK() {
		t.Fatalf("compile failed:\n%s", shortDiags(res))
	}
}

func TestDiagnosticsPointAtOriginalSource(t *testing.T) {
	src := "#define BAD undefinedVar\nshader Foo\n{\n    float4 bar() { return BAD; }\n};\n"
	res := compileSource(t, src)
	got := shortDiags(res)
	if !strings.Contains(got, "main.sdsl:4:27") {
		t.Fatalf("diagnostic not remapped to the macro use:\n%s", got)
	}
}

func TestPreprocessorErrorsAreFatal(t *testing.T) {
	res := compileSource(t, "#if 1\nshader Foo { float4 bar() { return float4(1, 0, 0, 1); } };\n")
	if res.Module != nil || res.Program != nil {
		t.Fatal("pipeline continued after a fatal preprocessor error")
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.PreUnterminatedConditional {
		t.Fatalf("diagnostics:\n%s", shortDiags(res))
	}
}

func TestSyntaxErrorsAreFatal(t *testing.T) {
	res := compileSource(t, "shader Foo { float4 bar() { return float4(1, 0, 0, 1) } };")
	if res.Program != nil {
		t.Fatal("sema ran after a syntax error")
	}
	if !res.Bag.HasErrors() || res.Bag.Items()[0].Code.Category() != "SYN" {
		t.Fatalf("diagnostics:\n%s", shortDiags(res))
	}
}

func TestMissingMainUnit(t *testing.T) {
	res, err := Compile(context.Background(), Request{Name: "nope.sdsl", Provider: source.MapProvider{}})
	if err != nil {
		t.Fatal(err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestClassesLoadedFromIncludeDirs(t *testing.T) {
	lib := source.MapProvider{
		"shaders/Base.sdsl":    []byte("shader Base\n{\n    float4 Tint() { return float4(1, 1, 1, 1); }\n};\n"),
		"shaders/Common.sdsli": []byte("#define SCALE 2\n"),
		"main.sdsl": []byte("#include \"Common.sdsli\"\nshader Child : Base\n{\n" +
			"    float4 Get() { return Tint() * SCALE; }\n};\n"),
	}
	res, err := Compile(context.Background(), Request{
		Name:        "main.sdsl",
		IncludeDirs: []string{"shaders"},
		Provider:    lib,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("compile failed:\n%s", shortDiags(res))
	}
	var names []string
	for _, fn := range res.Program.Functions {
		names = append(names, fn.Class+"."+fn.Method)
	}
	if joined := strings.Join(names, ","); !strings.Contains(joined, "Base.Tint") || !strings.Contains(joined, "Child.Get") {
		t.Fatalf("functions = %v", names)
	}
}

func TestUnknownBaseClass(t *testing.T) {
	res, err := Compile(context.Background(), Request{
		Name:     "main.sdsl",
		Source:   []byte("shader Child : Missing { float4 Get() { return float4(0, 0, 0, 0); } };"),
		Provider: source.MapProvider{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Module != nil || res.Bag.Items()[0].Code != diag.SemaUnknownShader {
		t.Fatalf("diagnostics:\n%s", shortDiags(res))
	}
}

func TestCompileAllKeepsOrder(t *testing.T) {
	const src = "shader P { float4 bar() { return float4(VALUE, 0, 0, 1); } };"
	var reqs []Request
	for _, v := range []string{"1", "2", "3", "4"} {
		reqs = append(reqs, Request{
			Name:    "p" + v + ".sdsl",
			Source:  []byte(src),
			Defines: []preprocess.Define{{Name: "VALUE", Value: v}},
		})
	}
	results, err := CompileAll(context.Background(), reqs, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, res := range results {
		if res.Name != reqs[i].Name || !res.OK() {
			t.Fatalf("result %d = %s ok=%v", i, res.Name, res.OK())
		}
		for j := 0; j < i; j++ {
			if bytes.Equal(results[j].Module, res.Module) {
				t.Errorf("permutations %d and %d produced the same module", j, i)
			}
		}
	}
	again, err := CompileAll(context.Background(), reqs, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range again {
		if !bytes.Equal(again[i].Module, results[i].Module) {
			t.Errorf("permutation %d is not deterministic", i)
		}
	}
}

func TestTimingsDiagnostic(t *testing.T) {
	res, err := Compile(context.Background(), Request{
		Name:    "main.sdsl",
		Source:  []byte("shader Foo { float4 bar() { return float4(1, 0, 0, 1); } };"),
		Timings: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || len(items[0].Notes) != 1 {
		t.Fatalf("diagnostics = %v", items)
	}
	var payload timingPayload
	if err := json.Unmarshal([]byte(items[0].Notes[0].Msg), &payload); err != nil {
		t.Fatal(err)
	}
	var phases []string
	for _, p := range payload.Phases {
		phases = append(phases, p.Name)
	}
	if got := strings.Join(phases, " "); got != "preprocess parse sema emit" {
		t.Fatalf("phases = %q", got)
	}
	if !res.OK() {
		t.Fatal("an info diagnostic must not block emission")
	}
}

func TestPreprocessStage(t *testing.T) {
	res := Preprocess(context.Background(), Request{
		Name:    "main.sdsl",
		Source:  []byte("#ifdef FAST\nfast\n#else\nslow\n#endif\n"),
		Defines: []preprocess.Define{{Name: "FAST"}},
	})
	if res.Output == nil || res.Bag.HasErrors() {
		t.Fatal("preprocessing failed")
	}
	if got := strings.TrimSpace(string(res.Output.Text)); got != "fast" {
		t.Fatalf("text = %q", got)
	}
}

func TestParseStage(t *testing.T) {
	res := Parse(context.Background(), Request{
		Name:   "main.sdsl",
		Source: []byte("shader A { float x; };\nshader B : A { };\n"),
	})
	if !res.OK || res.Bag.Len() != 0 {
		t.Fatalf("parse failed: %v", res.Bag.Items())
	}
	if n := len(res.Builder.Files.Get(res.File).Decls); n != 2 {
		t.Fatalf("decls = %d", n)
	}
}

func TestCompileTracesPhasesAndClasses(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	lib := source.MapProvider{"Base.sdsl": []byte("shader Base { float4 Tint() { return float4(1, 1, 1, 1); } };")}
	_, err := Compile(ctx, Request{
		Name:     "main.sdsl",
		Source:   []byte("shader Child : Base { float4 Get() { return Tint(); } };"),
		Provider: lib,
	})
	if err != nil {
		t.Fatal(err)
	}
	var begun []string
	var unit uint64
	for _, ev := range ring.Snapshot() {
		if ev.Kind != trace.KindSpanBegin {
			continue
		}
		begun = append(begun, ev.Scope.String()+":"+ev.Name)
		if ev.Scope == trace.ScopeUnit {
			unit = ev.SpanID
		} else if ev.ParentID != unit {
			t.Errorf("%s is not attached to the unit span", ev.Name)
		}
	}
	want := "unit:compile main.sdsl phase:preprocess phase:parse phase:sema class:load Base phase:preprocess phase:emit"
	if got := strings.Join(begun, " "); got != want {
		t.Fatalf("spans = %q\nwant    %q", got, want)
	}
}

func TestForeignDialectHint(t *testing.T) {
	glsl := "#version 450\nlayout(location = 0) in vec4 pos;\nvoid main() { gl_Position = pos; }\n"
	res := compileSource(t, glsl)
	if res.OK() {
		t.Fatal("GLSL compiled")
	}
	var hint *diag.Diagnostic
	for _, d := range res.Bag.Items() {
		if d.Code == diag.SynForeignDialect {
			hint = d
		}
	}
	if hint == nil || hint.Severity != diag.SevInfo || !strings.Contains(hint.Message, "GLSL") {
		t.Fatalf("no dialect hint:\n%s", shortDiags(res))
	}

	res = compileSource(t, "shader Foo { float4 bar() { return undefinedVar; } }")
	for _, d := range res.Bag.Items() {
		if d.Code == diag.SynForeignDialect {
			t.Fatalf("hint on SDSL source: %s", d.Message)
		}
	}
}
