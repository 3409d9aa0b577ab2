package sema

import (
	"strings"
	"testing"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/parser"
	"sdslc/internal/source"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

// analyze parses src as the main unit; classes missing from it are loaded
// from lib by name.
func analyze(t *testing.T, src string, profile target.Profile, lib map[string]string) (Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	p := parser.New(b)
	parse := func(name, text string) ast.FileID {
		id := fs.AddVirtual(name, []byte(text))
		res := p.File(fs.Get(id), parser.Options{Reporter: rep})
		if !res.OK {
			t.Fatalf("parse %s: %v", name, messages(bag))
		}
		return res.File
	}
	main := parse("main.sdsl", src)
	opts := Options{
		Reporter: rep,
		Profile:  profile,
		Load: func(name string) (ast.FileID, error) {
			text, ok := lib[name]
			if !ok {
				return ast.NoFileID, ErrNotFound
			}
			return parse(name+".sdsl", text), nil
		},
	}
	return Analyze(b, main, opts), bag
}

func mustAnalyze(t *testing.T, src string) *Program {
	t.Helper()
	res, bag := analyze(t, src, target.Default, nil)
	if !res.OK || bag.HasErrors() {
		t.Fatalf("analysis failed: %v", messages(bag))
	}
	return res.Program
}

func messages(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID()+": "+d.Message)
	}
	return out
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func findFunc(t *testing.T, prog *Program, name string) *Function {
	t.Helper()
	for _, f := range prog.Functions {
		if f.Name == name {
			return f
		}
	}
	var names []string
	for _, f := range prog.Functions {
		names = append(names, f.Name)
	}
	t.Fatalf("function %s not found in %v", name, names)
	return nil
}

// calls collects the direct calls of a body in order.
func calls(s Stmt) []*Call {
	var out []*Call
	var expr func(Expr)
	expr = func(e Expr) {
		switch e := e.(type) {
		case *Call:
			out = append(out, e)
			for _, a := range e.Args {
				expr(a)
			}
		case *Binary:
			expr(e.Left)
			expr(e.Right)
		case *Assign:
			expr(e.Value)
		case *Convert:
			expr(e.Value)
		case *Construct:
			for _, a := range e.Args {
				expr(a)
			}
		}
	}
	var stmt func(Stmt)
	stmt = func(s Stmt) {
		switch s := s.(type) {
		case *Block:
			for _, st := range s.Stmts {
				stmt(st)
			}
		case *Return:
			expr(s.Value)
		case *ExprStmt:
			expr(s.Expr)
		case *Decl:
			expr(s.Init)
		}
	}
	stmt(s)
	return out
}

func streamNames(vs []*Var) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return strings.Join(names, ",")
}

func TestStreamsAcrossStages(t *testing.T) {
	prog := mustAnalyze(t, `
shader Simple
{
    stream float4 InPos : POSITION;
    stream float4 Pos : SV_Position;
    stream float2 UV : TEXCOORD0;
    stream float4 Color : SV_Target0;

    void VSMain()
    {
        streams.Pos = streams.InPos;
        streams.UV = streams.InPos.xy;
    }

    void PSMain()
    {
        streams.Color = float4(streams.UV, 0, 1);
    }
};
`)
	if len(prog.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(prog.Entries))
	}
	vs, ps := prog.Entries[0], prog.Entries[1]
	if vs.Stage != target.StageVertex || ps.Stage != target.StagePixel {
		t.Fatalf("stages = %v, %v", vs.Stage, ps.Stage)
	}
	if got := streamNames(vs.Inputs); got != "InPos" {
		t.Errorf("VS inputs = %q", got)
	}
	if got := streamNames(vs.Outputs); got != "Pos,UV" {
		t.Errorf("VS outputs = %q", got)
	}
	if got := streamNames(ps.Inputs); got != "UV" {
		t.Errorf("PS inputs = %q", got)
	}
	if got := streamNames(ps.Outputs); got != "Color" {
		t.Errorf("PS outputs = %q", got)
	}
	if prog.Name != "Simple" {
		t.Errorf("program name = %q", prog.Name)
	}
}

func TestOverrideDispatchAndBase(t *testing.T) {
	prog := mustAnalyze(t, `
shader Base
{
    float Compute() { return 1; }
};

shader Derived : Base
{
    override float Compute() { return base.Compute() + 1; }
};

shader Main : Derived
{
    stream float4 Color : SV_Target0;
    void PSMain() { streams.Color = Compute(); }
};
`)
	derived := findFunc(t, prog, "Derived_Compute")
	base := findFunc(t, prog, "Base_Compute")
	if cs := calls(derived.Body); len(cs) != 1 || cs[0].Func != base {
		t.Fatalf("base call = %v, want %s", cs, base.Name)
	}
	entry := findFunc(t, prog, "Main_PSMain")
	if cs := calls(entry.Body); len(cs) != 1 || cs[0].Func != derived {
		t.Fatalf("virtual call does not reach the most derived implementation")
	}
}

func TestCompositionInstance(t *testing.T) {
	prog := mustAnalyze(t, `
shader ComputeColor
{
    abstract float4 Compute();
};

shader Red : ComputeColor
{
    float Gain = 1;
    override float4 Compute() { return float4(Gain, 0, 0, 1); }
};

shader Main
{
    compose ComputeColor Source;
    stream float4 Color : SV_Target0;
    void PSMain() { streams.Color = Source.Compute(); }
};

effect MainEffect
{
    mixin Main;
    mixin compose Source = Red;
};
`)
	fn := findFunc(t, prog, "Source_Red_Compute")
	entry := findFunc(t, prog, "Main_PSMain")
	if cs := calls(entry.Body); len(cs) != 1 || cs[0].Func != fn {
		t.Fatalf("composition call not bound to %s", fn.Name)
	}
	globals := prog.CBuffers[0]
	if len(globals.Members) != 1 || globals.Members[0].Name != "Source_Gain" {
		t.Fatalf("composition uniform = %v", streamNames(globals.Members))
	}
}

func TestMixinsLoadedByName(t *testing.T) {
	res, bag := analyze(t, `
shader Main : Lib
{
    stream float4 Color : SV_Target0;
    void PSMain() { streams.Color = Half(2); }
};
`, target.Default, map[string]string{
		"Lib": `shader Lib { float4 Half(float4 v) { return v * 0.5; } };`,
	})
	if !res.OK {
		t.Fatalf("analysis failed: %v", messages(bag))
	}
	findFunc(t, res.Program, "Lib_Half")
}

func TestUniformLayoutAndBindings(t *testing.T) {
	prog := mustAnalyze(t, `
shader Lit
{
    static const int N = 2 + 3;
    float Weights[N];
    cbuffer PerDraw
    {
        float4x4 World;
        float3 Dir;
        float Alpha;
    };
    Texture2D Tex;
    SamplerState Samp;
};
`)
	if len(prog.CBuffers) != 2 {
		t.Fatalf("blocks = %d, want 2", len(prog.CBuffers))
	}
	globals, draw := prog.CBuffers[0], prog.CBuffers[1]
	if globals.Name != "Globals" || globals.Binding != 0 || globals.Size != 80 {
		t.Errorf("Globals = %s binding %d size %d", globals.Name, globals.Binding, globals.Size)
	}
	if w := globals.Members[0].Type; w.Kind != types.KindArray || w.Len != 5 {
		t.Errorf("Weights type = %s", w)
	}
	var offsets []uint32
	for _, l := range draw.Layouts {
		offsets = append(offsets, l.Offset)
	}
	if draw.Binding != 1 || draw.Size != 80 || len(offsets) != 3 || offsets[1] != 64 || offsets[2] != 76 {
		t.Errorf("PerDraw binding %d size %d offsets %v", draw.Binding, draw.Size, offsets)
	}
	if len(prog.Resources) != 2 || prog.Resources[0].Binding != 2 || prog.Resources[1].Binding != 3 {
		t.Errorf("resources = %v", streamNames(prog.Resources))
	}
}

func TestOverloadPicksExactMatch(t *testing.T) {
	prog := mustAnalyze(t, `
shader Over
{
    float F(int x) { return 1; }
    float F(float x) { return 2; }
    float G() { return F(3) + F(3.0); }
};
`)
	g := findFunc(t, prog, "Over_G")
	cs := calls(g.Body)
	if len(cs) != 2 {
		t.Fatalf("calls = %d", len(cs))
	}
	if !types.Equal(cs[0].Func.Params[0].Type, types.Int) || !types.Equal(cs[1].Func.Params[0].Type, types.Float) {
		t.Fatalf("picked %s and %s", cs[0].Func.Name, cs[1].Func.Name)
	}
}

func returnedConst(t *testing.T, fn *Function) float64 {
	t.Helper()
	ret, ok := fn.Body.Stmts[0].(*Return)
	if !ok {
		t.Fatalf("%s: first statement is not a return", fn.Name)
	}
	k, ok := ret.Value.(*Const)
	if !ok {
		t.Fatalf("%s: return value = %#v, want a folded constant", fn.Name, ret.Value)
	}
	return k.Values[0].Float
}

func TestGenericClassArguments(t *testing.T) {
	prog := mustAnalyze(t, `
shader Scaled<float K>
{
    float Get() { return K; }
};

shader Twice<float K> : Scaled<(K * 2)>
{
    float Doubled() { return Get(); }
};

shader Main : Twice<2>
{
    float Use() { return Doubled(); }
};
`)
	if got := returnedConst(t, findFunc(t, prog, "Scaled_Get")); got != 4 {
		t.Fatalf("Scaled<K * 2>.Get() = %v, want 4", got)
	}
}

func TestGenericInstantiationsAreDistinct(t *testing.T) {
	res, bag := analyze(t, `
shader Main
{
    float Use() { return A.Get() + B.Get(); }
    compose Lib A;
    compose Lib B;
};

effect MainEffect
{
    mixin Main;
    mixin compose A = Scaled<1>;
    mixin compose B = Scaled<3>;
};
`, target.Default, map[string]string{
		"Lib":    `shader Lib { abstract float Get(); };`,
		"Scaled": `shader Scaled<float K> : Lib { override float Get() { return K; } };`,
	})
	if !res.OK {
		t.Fatalf("analysis failed: %v", messages(bag))
	}
	a := returnedConst(t, findFunc(t, res.Program, "A_Scaled_Get"))
	b := returnedConst(t, findFunc(t, res.Program, "B_Scaled_Get"))
	if a != 1 || b != 3 {
		t.Fatalf("A.Get() = %v, B.Get() = %v", a, b)
	}
}

func TestConstantsFold(t *testing.T) {
	prog := mustAnalyze(t, `
shader Consts
{
    static const float Scale = 2.0 * 4;
    float Get() { return Scale + 1; }
};
`)
	ret, ok := findFunc(t, prog, "Consts_Get").Body.Stmts[0].(*Return)
	if !ok {
		t.Fatalf("first statement is not a return")
	}
	k, ok := ret.Value.(*Const)
	if !ok || k.Values[0].Float != 9 {
		t.Fatalf("return value = %#v, want folded 9", ret.Value)
	}
}

func TestTruncationWarns(t *testing.T) {
	res, bag := analyze(t, `
shader Trunc
{
    float3 Get() { float3 v = float4(1, 2, 3, 4); return v; }
};
`, target.Default, nil)
	if !res.OK {
		t.Fatalf("analysis failed: %v", messages(bag))
	}
	if !hasCode(bag, diag.SemaImplicitTruncation) {
		t.Fatalf("no truncation warning: %v", messages(bag))
	}
}

func TestDiagnostics(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		profile target.Profile
		code    diag.Code
	}{
		{
			name: "missing override",
			src:  `shader A { float F() { return 1; } }; shader B : A { float F() { return 2; } };`,
			code: diag.SemaMissingOverride,
		},
		{
			name: "override without base",
			src:  `shader A { override float F() { return 1; } };`,
			code: diag.SemaOverrideWithoutBase,
		},
		{
			name: "cyclic mixin",
			src:  `shader A : B { }; shader B : A { };`,
			code: diag.SemaCyclicMixin,
		},
		{
			name: "undefined symbol",
			src:  `shader A { float F() { return foo; } };`,
			code: diag.SemaUnresolvedSymbol,
		},
		{
			name: "missing return",
			src:  `shader A { float F(float x) { if (x > 0) return 1; } };`,
			code: diag.SemaMissingReturn,
		},
		{
			name: "break outside loop",
			src:  `shader A { void F() { break; } };`,
			code: diag.SemaJumpOutsideLoop,
		},
		{
			name: "assign to uniform",
			src:  `shader A { float K; void F() { K = 1; } };`,
			code: diag.SemaNotAssignable,
		},
		{
			name: "invalid swizzle",
			src:  `shader A { float F() { float2 v = 0; return v.z; } };`,
			code: diag.SemaInvalidSwizzle,
		},
		{
			name: "no overload",
			src:  `shader A { float F(float2 x) { return x.x; } float G() { return F(1, 2); } };`,
			code: diag.SemaNoOverload,
		},
		{
			name: "ambiguous overload",
			src:  `shader A { float F(int x) { return 1; } float F(uint x) { return 2; } float G() { return F(1.5); } };`,
			code: diag.SemaAmbiguousOverload,
		},
		{
			name: "unbound composition",
			src:  `shader I { abstract float4 C(); }; shader M { compose I Slot; };`,
			code: diag.SemaCompositionUnbound,
		},
		{
			name: "abstract not implemented",
			src:  `shader I { abstract float G(); }; shader M : I { float H() { return G(); } };`,
			code: diag.SemaAbstractNotImplemented,
		},
		{
			name: "discard in vertex stage",
			src:  `shader A { stream float4 P : SV_Position; void Kill() { discard; } void VSMain() { Kill(); streams.P = 0; } };`,
			code: diag.SemaDiscardOutsidePixel,
		},
		{
			name: "stream without writer",
			src: `shader A {
    stream float4 P : SV_Position; stream float2 UV : TEXCOORD0; stream float4 C : SV_Target0;
    void VSMain() { streams.P = 0; }
    void PSMain() { streams.C = float4(streams.UV, 0, 1); }
};`,
			code: diag.SemaStreamNoWriter,
		},
		{
			name:    "double needs sm5",
			src:     `shader A { double D; };`,
			profile: target.SM4_0,
			code:    diag.SemaProfileUnsupported,
		},
		{
			name: "entry point with parameters",
			src:  `shader A { void PSMain(float x) { } };`,
			code: diag.SemaInvalidEntryPoint,
		},
		{
			name: "generic class without arguments",
			src:  `shader G<float K> { }; shader A : G { };`,
			code: diag.SemaGenericArguments,
		},
		{
			name: "arguments to a plain class",
			src:  `shader P { }; shader A : P<1> { };`,
			code: diag.SemaGenericArguments,
		},
		{
			name: "generic class compiled directly",
			src:  `shader G<float K> { float F() { return K; } };`,
			code: diag.SemaGenericArguments,
		},
		{
			name: "generic argument not constant",
			src:  `shader G<float K> { }; shader B : G<sin(1.0)> { };`,
			code: diag.SemaConstantRequired,
		},
		{
			name: "unbounded generic recursion",
			src:  `shader R<int N> : R<(N + 1)> { }; shader A : R<0> { };`,
			code: diag.SemaCyclicMixin,
		},
		{
			name: "unknown mixin",
			src:  `shader A : Missing { };`,
			code: diag.SemaUnknownShader,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := tc.profile
			if profile == target.SM4_0 && tc.code != diag.SemaProfileUnsupported {
				profile = target.Default
			}
			res, bag := analyze(t, tc.src, profile, nil)
			if res.OK {
				t.Fatalf("analysis succeeded, want %s", tc.code.ID())
			}
			if !hasCode(bag, tc.code) {
				t.Fatalf("want %s, got %v", tc.code.ID(), messages(bag))
			}
		})
	}
}
