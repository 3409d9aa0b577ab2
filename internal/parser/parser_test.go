package parser

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/source"
	"sdslc/internal/testkit"
)

func parseSource(t *testing.T, text string) (string, *diag.Bag, bool) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sdsl", []byte(text))
	bag := diag.NewBag(0)
	b := ast.NewBuilder(ast.Hints{})
	res := ParseFile(fs, id, b, Options{Reporter: diag.BagReporter{Bag: bag}})
	if res.OK {
		if err := testkit.CheckSpanInvariants(b, res.File, fs.Get(id)); err != nil {
			t.Fatalf("spans: %v", err)
		}
	}
	var sb strings.Builder
	if err := ast.Dump(&sb, b, res.File); err != nil {
		t.Fatalf("dump: %v", err)
	}
	return sb.String(), bag, res.OK
}

func mustParse(t *testing.T, text string) string {
	t.Helper()
	out, bag, ok := parseSource(t, text)
	if !ok || bag.Len() != 0 {
		var msgs []string
		for _, d := range bag.Items() {
			msgs = append(msgs, d.Message)
		}
		t.Fatalf("parse failed: %v", msgs)
	}
	return out
}

func checkDump(t *testing.T, got, want string) {
	t.Helper()
	want = strings.TrimLeft(want, "\n")
	if got != want {
		t.Fatalf("dump mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestShaderMembers(t *testing.T) {
	src := `
shader Color : ShaderBase, Texturing
{
    stage stream float4 ColorTarget : SV_Target0;
    cbuffer PerDraw { stage float4x4 World; float Alpha = 1.0; };
    compose ComputeColor Source;
    stage override float4 Shading(float2 uv, in float w) : SV_Target
    {
        float3 a = 1, b[2];
        streams.ColorTarget = Source.Compute() * (float4)Alpha;
        if (a.x > 0 && !flag) return base.Shading(uv, w); else discard;
        [unroll] for (int i = 0; i < 4; i++) a += i;
        return float4(a, 1.0);
    }
};
`
	want := `
shader Color : [ShaderBase, Texturing]
  stage stream var float4 ColorTarget : SV_Target0
  cbuffer PerDraw
    stage var float4x4 World
    var float Alpha = 1.0
  compose ComputeColor Source
  stage override method float4 Shading(float2 uv, in float w)
    block
      var float3 a = 1
      var float3 b[2]
      (streams.ColorTarget = (Source.Compute() * ((float4)Alpha)))
      if ((a.x > 0) && (!flag))
        return base.Shading(uv, w)
      else
        discard
      for (i < 4) ; (i++)
        var int i = 0
        (a += i)
      return float4(a, 1.0)
`
	checkDump(t, mustParse(t, src), want)
}

func TestNamespaceStructAndTypedef(t *testing.T) {
	src := `
namespace Demo.Shaders
{
    using Common;
    struct Light { float3 Dir; float4 Color; };
    shader S : Base
    {
        typedef float3 Vec;
        Light Lights[4];
        Texture2D Tex : register(t0);
        Buffer<float4> Data;
        Vec Scale(Vec v) { return (Vec)v * 2; }
        abstract float Weight();
        [numthreads(8, 1, 1)] void Main() { }
    }
}
`
	want := `
namespace Demo.Shaders
  using Common
  struct Light
    var float3 Dir
    var float4 Color
  shader S : [Base]
    typedef float3 Vec
    var Light Lights[4]
    var Texture2D Tex
    var Buffer<float4> Data
    method Vec Scale(Vec v)
      block
        return (((Vec)v) * 2)
    abstract method float Weight()
    [numthreads] method void Main()
      block
`
	checkDump(t, mustParse(t, src), want)
}

func TestEffectStatements(t *testing.T) {
	src := `
effect MyEffect
{
    using params MaterialKeys;
    mixin A;
    mixin compose color = ColorRed;
    mixin macro USE_FOG = 1;
    if (MaterialKeys.Fog)
    {
        mixin Fog.Linear;
    }
    else mixin NoFog;
}
`
	want := `
effect MyEffect
  using params MaterialKeys
  mixin A
  mixin compose color = ColorRed
  mixin macro USE_FOG = 1
  if MaterialKeys.Fog
    block
      mixin Fog.Linear
  else
    mixin NoFog
`
	checkDump(t, mustParse(t, src), want)
}

func TestExpressionPrecedence(t *testing.T) {
	cases := []struct{ src, want string }{
		{"a + b * c", "(a + (b * c))"},
		{"a - b - c", "((a - b) - c)"},
		{"a = b = c", "(a = (b = c))"},
		{"x ? y : z ? w : v", "(x ? y : (z ? w : v))"},
		{"-a.b[1]++", "(-(a.b[1]++))"},
		{"a || b && c == d", "(a || (b && (c == d)))"},
		{"(float)i / 2", "(((float)i) / 2)"},
		{"(a) - b", "(a - b)"},
		{"f(x, g(y))[0].zw", "f(x, g(y))[0].zw"},
		{"~a + !b", "((~a) + (!b))"},
		{"{1, 2, 3,}", "{1, 2, 3}"},
	}
	for _, tc := range cases {
		out := mustParse(t, "shader T { float v = "+tc.src+"; }")
		_, got, found := strings.Cut(strings.TrimSpace(strings.SplitN(out, "\n", 3)[1]), " = ")
		if !found || got != tc.want {
			t.Errorf("%q: got %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestWhileAndDoLoops(t *testing.T) {
	src := `shader L { void f() { while (i < 3) i++; do { ; } while (false); } }`
	want := `
shader L : []
  method void f()
    block
      while (i < 3) ;
        (i++)
      do false ;
        block
          ;
`
	checkDump(t, mustParse(t, src), want)
}

func TestSyntaxErrorAtDeepestPosition(t *testing.T) {
	src := "shader S { float x = 1 }"
	_, bag, ok := parseSource(t, src)
	if ok {
		t.Fatal("expected failure")
	}
	if bag.Len() != 1 {
		t.Fatalf("want one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.SynUnexpectedToken {
		t.Fatalf("code %v", d.Code)
	}
	if !strings.HasPrefix(d.Message, "expected ") || !strings.Contains(d.Message, "';'") || !strings.HasSuffix(d.Message, "found '}'") {
		t.Fatalf("message %q", d.Message)
	}
	if d.Primary.Start != uint32(strings.Index(src, "}")) {
		t.Fatalf("span start %d", d.Primary.Start)
	}
}

func TestSyntaxErrorAtEOF(t *testing.T) {
	_, bag, ok := parseSource(t, "shader S {")
	if ok || bag.Len() != 1 {
		t.Fatalf("ok=%v diagnostics=%d", ok, bag.Len())
	}
	if d := bag.Items()[0]; d.Code != diag.SynUnexpectedEOF {
		t.Fatalf("code %v: %s", d.Code, d.Message)
	}
}

func TestAttributeOnNonLoopIsRejected(t *testing.T) {
	cases := []string{
		"[unroll] x = 1;",
		"[branch] if (x) x = 1;",
		"[unroll]   { }",
	}
	for _, body := range cases {
		src := "shader S { void f() { " + body + " } }"
		_, bag, ok := parseSource(t, src)
		if ok {
			t.Errorf("%q: expected failure", body)
			continue
		}
		d := bag.Items()[0]
		if !strings.Contains(d.Message, "loop after attribute") {
			t.Errorf("%q: message %q", body, d.Message)
		}
		// позиция указывает на инструкцию после атрибута, а не на пробел перед ней
		want := strings.Index(src, "]") + 1
		for src[want] == ' ' {
			want++
		}
		if int(d.Primary.Start) != want {
			t.Errorf("%q: span start %d, want %d", body, d.Primary.Start, want)
		}
	}
}

func TestGenericShaderHeaders(t *testing.T) {
	src := `
shader Tint<float K, int N> : Base<2, (K * 2)>, Other
{
    float Scale() { return K; }
};
effect E
{
    mixin Tint<1, -1>;
    mixin compose S = Base<3>;
}
`
	out := mustParse(t, src)
	for _, want := range []string{
		"shader Tint<float K, int N> : [Base<2, (K * 2)>, Other]",
		"  mixin Tint<1, (-1)>",
		"  mixin compose S = Base<3>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestGenericArgumentListMustClose(t *testing.T) {
	_, bag, ok := parseSource(t, "shader S : Base<1, 2 { }")
	if ok {
		t.Fatal("expected failure")
	}
	if d := bag.Items()[0]; !strings.Contains(d.Message, "'>'") {
		t.Fatalf("message %q", d.Message)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	cases := []struct {
		name string
		src  string
		ok   bool
	}{
		{"shader", "shader S : Base<2> { stream float4 C : SV_Target0; float4 F() { return C * 2; } };", true},
		{"effect", "effect E { mixin A; if (K.Fog) mixin B; else mixin C; }", true},
		{"missing semicolon", "shader S { float x = 1 }", false},
		{"attribute", "shader S { void f() { [unroll] x = 1; } }", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dump1, bag1, ok1 := parseSource(t, tc.src)
			dump2, bag2, ok2 := parseSource(t, tc.src)
			if ok1 != tc.ok || ok2 != tc.ok {
				t.Fatalf("ok = %v/%v, want %v", ok1, ok2, tc.ok)
			}
			if dump1 != dump2 {
				t.Fatalf("dumps differ\n--- first ---\n%s\n--- second ---\n%s", dump1, dump2)
			}
			if got, want := diagLines(bag2), diagLines(bag1); !slices.Equal(got, want) {
				t.Fatalf("diagnostics differ: %v vs %v", want, got)
			}
		})
	}
}

func diagLines(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, fmt.Sprintf("%v %s %v", d.Code, d.Primary, d.Message))
	}
	return out
}
