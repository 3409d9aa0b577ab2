package spirv

import (
	"errors"
	"strings"
	"testing"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/parser"
	"sdslc/internal/sema"
	"sdslc/internal/source"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

func compile(t *testing.T, src string, profile target.Profile) (Header, []Instruction) {
	t.Helper()
	fs := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	id := fs.AddVirtual("main.sdsl", []byte(src))
	res := parser.New(b).File(fs.Get(id), parser.Options{Reporter: rep})
	if !res.OK {
		t.Fatalf("parse failed: %v", bag.Items())
	}
	sr := sema.Analyze(b, res.File, sema.Options{Reporter: rep, Profile: profile})
	if !sr.OK || bag.HasErrors() {
		var msgs []string
		for _, d := range bag.Items() {
			msgs = append(msgs, d.Message)
		}
		t.Fatalf("analysis failed: %v", msgs)
	}
	module, err := Emit(sr.Program, Options{})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	h, insts, err := Decode(module)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return h, insts
}

func ops(insts []Instruction, op Op) []Instruction {
	var out []Instruction
	for _, inst := range insts {
		if inst.Op == op {
			out = append(out, inst)
		}
	}
	return out
}

func capabilities(insts []Instruction) map[Capability]bool {
	out := make(map[Capability]bool)
	for _, inst := range ops(insts, OpCapability) {
		out[Capability(inst.Words[0])] = true
	}
	return out
}

// decorated returns the parameters of every OpDecorate with d.
func decorated(insts []Instruction, d Decoration) [][]uint32 {
	var out [][]uint32
	for _, inst := range ops(insts, OpDecorate) {
		if Decoration(inst.Words[1]) == d {
			out = append(out, inst.Words[2:])
		}
	}
	return out
}

func TestStringEncoding(t *testing.T) {
	w := String("main")
	if len(w) != 2 || w[0] != 0x6e69616d || w[1] != 0 {
		t.Fatalf("String(main) = %#x", w)
	}
	if w := String("abc"); len(w) != 1 || w[0] != 0x00636261 {
		t.Fatalf("String(abc) = %#x", w)
	}
	s, n := DecodeString(append(String("PSMain"), 7))
	if s != "PSMain" || n != 2 {
		t.Fatalf("DecodeString = %q, %d", s, n)
	}
}

func TestBuildHeaderAndLayout(t *testing.T) {
	b := NewModuleBuilder(0x00010300)
	b.Require(CapabilityFloat64)
	b.Require(CapabilityFloat64)
	f := b.Define(SectionTypes, OpTypeFloat, 0, 32)
	b.Name(f, "float")
	out, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	h, insts, err := Decode(out)
	if err != nil {
		t.Fatal(err)
	}
	if h.Magic != MagicNumber || h.Version != 0x00010300 || h.Bound != 2 || h.Schema != 0 {
		t.Fatalf("header = %+v", h)
	}
	if h.VersionString() != "1.3" {
		t.Fatalf("version = %s", h.VersionString())
	}
	want := []Op{OpCapability, OpCapability, OpMemoryModel, OpName, OpTypeFloat}
	if len(insts) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(insts), len(want))
	}
	for i, op := range want {
		if insts[i].Op != op {
			t.Errorf("instruction %d = %s, want %s", i, insts[i].Op, op)
		}
	}
}

func TestBoundOverflow(t *testing.T) {
	b := NewModuleBuilder(0x00010000)
	b.nextID = MaxBound + 2
	if _, err := b.Build(); err == nil {
		t.Fatal("expected an id overflow error")
	}
}

func TestInstructionTooLong(t *testing.T) {
	b := NewModuleBuilder(0x00010000)
	b.Add(SectionDebug, OpSource, make([]uint32, 70000)...)
	if _, err := b.Build(); err == nil {
		t.Fatal("expected a word count error")
	}
}

func TestTypesAndConstantsDeduplicate(t *testing.T) {
	e := &emitter{b: NewModuleBuilder(0x00010000), structs: make(map[*types.Type]uint32)}
	if a, b := e.typeID(types.Float4), e.typeID(types.VectorOf(types.ScalarFloat, 4)); a != b {
		t.Fatalf("float4 declared twice: %d, %d", a, b)
	}
	if e.typeID(types.VectorOf(types.ScalarFloat, 1)) != e.typeID(types.Float) {
		t.Fatal("float1 must lower to the scalar type")
	}
	arr1 := e.typeID(types.MakeArray(types.Float, 4))
	arr2 := e.typeID(types.MakeArray(types.Float, 4))
	if arr1 != arr2 {
		t.Fatal("equal arrays declared twice")
	}
	one := e.constScalar(types.ScalarFloat, sema.Value{Float: 1})
	if one != e.one(types.Float) {
		t.Fatal("equal constants declared twice")
	}
	if e.constInt(1) == e.constUint(1) {
		t.Fatal("int and uint constants must differ")
	}
	if e.err != nil {
		t.Fatal(e.err)
	}
	var vectors, arrays, strides int
	for _, inst := range e.b.sections[SectionTypes] {
		switch inst.Op {
		case OpTypeVector:
			vectors++
		case OpTypeArray:
			arrays++
		}
	}
	for _, inst := range e.b.sections[SectionAnnotation] {
		if Decoration(inst.Words[1]) == DecorationArrayStride {
			strides++
			if inst.Words[2] != 16 {
				t.Errorf("float[4] stride = %d, want 16", inst.Words[2])
			}
		}
	}
	if vectors != 1 || arrays != 1 || strides != 1 {
		t.Fatalf("vectors=%d arrays=%d strides=%d", vectors, arrays, strides)
	}
}

func TestHalfBits(t *testing.T) {
	cases := []struct {
		in   float32
		want uint16
	}{
		{0, 0},
		{1, 0x3c00},
		{-2, 0xc000},
		{0.5, 0x3800},
		{65504, 0x7bff},
		{1e6, 0x7c00},
		{5.9604645e-8, 0x0001},
	}
	for _, c := range cases {
		if got := halfBits(c.in); got != c.want {
			t.Errorf("halfBits(%g) = %#04x, want %#04x", c.in, got, c.want)
		}
	}
}

const twoStages = `
shader Simple
{
    float4x4 World;
    stream float4 InPos : POSITION;
    stream float4 Pos : SV_Position;
    stream float2 UV : TEXCOORD0;
    stream float4 Color : SV_Target0;

    void VSMain()
    {
        streams.Pos = mul(streams.InPos, World);
        streams.UV = streams.InPos.xy;
    }

    void PSMain()
    {
        streams.Color = float4(streams.UV, 0, 1);
    }
};
`

func TestEntryWrappers(t *testing.T) {
	h, insts := compile(t, twoStages, target.Default)
	if h.Version != 0x00010000 {
		t.Errorf("version = %#x, want 1.0 for sm5_0", h.Version)
	}
	eps := ops(insts, OpEntryPoint)
	if len(eps) != 2 {
		t.Fatalf("entry points = %d", len(eps))
	}
	vsName, _ := DecodeString(eps[0].Words[2:])
	psName, _ := DecodeString(eps[1].Words[2:])
	if ExecutionModel(eps[0].Words[0]) != ExecutionModelVertex || vsName != "VSMain" {
		t.Errorf("first entry = %d %q", eps[0].Words[0], vsName)
	}
	if ExecutionModel(eps[1].Words[0]) != ExecutionModelFragment || psName != "PSMain" {
		t.Errorf("second entry = %d %q", eps[1].Words[0], psName)
	}
	modes := ops(insts, OpExecutionMode)
	if len(modes) != 1 || ExecutionMode(modes[0].Words[1]) != ExecutionModeOriginUpperLeft {
		t.Errorf("execution modes = %v", modes)
	}
	var builtins []BuiltIn
	for _, p := range decorated(insts, DecorationBuiltIn) {
		builtins = append(builtins, BuiltIn(p[0]))
	}
	if len(builtins) != 1 || builtins[0] != BuiltInPosition {
		t.Errorf("builtins = %v, want [Position]", builtins)
	}
	// InPos и UV на входе/выходе VS, UV на входе PS, Color на выходе
	if locs := decorated(insts, DecorationLocation); len(locs) != 4 {
		t.Errorf("locations = %v", locs)
	}
	if len(decorated(insts, DecorationBlock)) != 1 {
		t.Error("Globals block not decorated")
	}
	if len(ops(insts, OpMatrixTimesVector))+len(ops(insts, OpVectorTimesMatrix)) != 1 {
		t.Error("mul(vector, matrix) not lowered to a matrix product")
	}
	caps := capabilities(insts)
	if !caps[CapabilityShader] || caps[CapabilityLinkage] || caps[CapabilityFloat64] {
		t.Errorf("capabilities = %v", caps)
	}
	if imports := ops(insts, OpExtInstImport); len(imports) != 1 {
		t.Errorf("ext imports = %d", len(imports))
	}
}

func TestMatrixMemberDecorations(t *testing.T) {
	_, insts := compile(t, `
shader M
{
    cbuffer PerDraw
    {
        float4x4 View;
        row_major float4x4 Proj;
        float Weights[3];
    };
    float4 Get(float4 v) { return mul(v, View) + mul(v, Proj) + Weights[1]; }
};
`, target.Default)
	var offsets []uint32
	var major []Decoration
	for _, inst := range ops(insts, OpMemberDecorate) {
		switch d := Decoration(inst.Words[2]); d {
		case DecorationOffset:
			offsets = append(offsets, inst.Words[3])
		case DecorationRowMajor, DecorationColMajor:
			major = append(major, d)
		}
	}
	if len(offsets) < 3 || offsets[0] != 0 || offsets[1] != 64 || offsets[2] != 128 {
		t.Errorf("offsets = %v", offsets)
	}
	if len(major) != 2 || major[0] != DecorationColMajor || major[1] != DecorationRowMajor {
		t.Errorf("matrix layouts = %v", major)
	}
	caps := capabilities(insts)
	if !caps[CapabilityLinkage] {
		t.Error("module without entry points needs Linkage")
	}
	if len(ops(insts, OpEntryPoint)) != 0 {
		t.Error("unexpected entry point")
	}
}

func TestComputeShader(t *testing.T) {
	_, insts := compile(t, `
shader Blur
{
    groupshared float Cache[64];
    stream uint3 Thread : SV_DispatchThreadID;

    [numthreads(8, 4, 1)]
    void CSMain()
    {
        Cache[streams.Thread.x % 64] = 1;
        GroupMemoryBarrierWithGroupSync();
    }
};
`, target.Default)
	eps := ops(insts, OpEntryPoint)
	if len(eps) != 1 || ExecutionModel(eps[0].Words[0]) != ExecutionModelGLCompute {
		t.Fatalf("entry points = %v", eps)
	}
	modes := ops(insts, OpExecutionMode)
	if len(modes) != 1 {
		t.Fatalf("modes = %v", modes)
	}
	if w := modes[0].Words; ExecutionMode(w[1]) != ExecutionModeLocalSize || w[2] != 8 || w[3] != 4 || w[4] != 1 {
		t.Errorf("local size = %v", w)
	}
	if len(ops(insts, OpControlBarrier)) != 1 {
		t.Error("barrier not emitted")
	}
	bi := decorated(insts, DecorationBuiltIn)
	if len(bi) != 1 || BuiltIn(bi[0][0]) != BuiltInGlobalInvocationID {
		t.Errorf("builtins = %v", bi)
	}
	workgroup := false
	for _, v := range ops(insts, OpVariable) {
		if StorageClass(v.Words[2]) == StorageWorkgroup {
			workgroup = true
		}
	}
	if !workgroup {
		t.Error("groupshared array is not a Workgroup variable")
	}
}

func TestProfileCapabilities(t *testing.T) {
	h, insts := compile(t, `
shader Wave
{
    stream uint3 Thread : SV_DispatchThreadID;
    static uint Sum;
    static double Acc;

    [numthreads(64, 1, 1)]
    void CSMain()
    {
        Sum = WaveActiveSum(streams.Thread.x);
        Acc = 2.0;
    }
};
`, target.SM6_0)
	if h.Version != 0x00010300 {
		t.Errorf("version = %#x, want 1.3 for sm6_0", h.Version)
	}
	caps := capabilities(insts)
	for _, c := range []Capability{CapabilityShader, CapabilityFloat64, CapabilityGroupNonUniform, CapabilityGroupNonUniformArithmetic} {
		if !caps[c] {
			t.Errorf("missing capability %s", c)
		}
	}
	if len(ops(insts, OpGroupNonUniformIAdd)) != 1 {
		t.Error("WaveActiveSum over uint not lowered to OpGroupNonUniformIAdd")
	}
}

func TestStructuredControlFlow(t *testing.T) {
	_, insts := compile(t, `
shader Flow
{
    stream float4 Color : SV_Target0;
    stream float2 UV : TEXCOORD0;

    void PSMain()
    {
        float acc = 0;
        for (int i = 0; i < 8; i++)
        {
            if (acc > 4) break;
            if (i == 2) continue;
            acc += streams.UV.x;
        }
        if (acc < 0.1)
            discard;
        streams.Color = float4(acc, acc, acc, 1);
    }
};
`, target.Default)
	if n := len(ops(insts, OpLoopMerge)); n != 1 {
		t.Errorf("loop merges = %d", n)
	}
	if n := len(ops(insts, OpSelectionMerge)); n != 3 {
		t.Errorf("selection merges = %d, want 3", n)
	}
	if n := len(ops(insts, OpKill)); n != 1 {
		t.Errorf("kills = %d", n)
	}
	// каждая функция заканчивается OpFunctionEnd, метки не висят
	if len(ops(insts, OpFunction)) != len(ops(insts, OpFunctionEnd)) {
		t.Error("unbalanced functions")
	}
	var inFunc, open bool
	for _, inst := range insts {
		switch inst.Op {
		case OpFunction:
			inFunc = true
		case OpLabel:
			if open {
				t.Fatal("label opened before the previous block was terminated")
			}
			open = true
		case OpBranch, OpBranchConditional, OpReturn, OpReturnValue, OpKill, OpUnreachable:
			open = false
		case OpFunctionEnd:
			if open {
				t.Fatal("function ends inside an open block")
			}
			inFunc = false
		}
	}
	if inFunc {
		t.Fatal("missing OpFunctionEnd")
	}
}

func TestTextureSampling(t *testing.T) {
	_, insts := compile(t, `
shader Tex
{
    Texture2D Albedo;
    SamplerState Linear;
    stream float2 UV : TEXCOORD0;
    stream float4 Color : SV_Target0;

    void PSMain()
    {
        streams.Color = Albedo.Sample(Linear, streams.UV) + Albedo.Load(int3(0, 0, 0));
    }
};
`, target.Default)
	if len(ops(insts, OpSampledImage)) != 1 || len(ops(insts, OpImageSampleImplicitLod)) != 1 {
		t.Error("Sample not lowered")
	}
	if len(ops(insts, OpImageFetch)) != 1 {
		t.Error("Load not lowered")
	}
	bindings := decorated(insts, DecorationBinding)
	if len(bindings) != 2 || bindings[0][0] != 0 || bindings[1][0] != 1 {
		t.Errorf("bindings = %v", bindings)
	}
	if len(decorated(insts, DecorationDescriptorSet)) != 2 {
		t.Error("descriptor sets missing")
	}
}

func TestEmitErrorsWrapSentinel(t *testing.T) {
	prog := &sema.Program{}
	prog.Functions = []*sema.Function{{
		Name: "Bad",
		Ret:  types.Void,
		Body: &sema.Block{Stmts: []sema.Stmt{&sema.ExprStmt{Expr: &sema.VarRef{Var: &sema.Var{Name: "ghost", Type: types.Float, Storage: sema.StorageLocal}}}}},
	}}
	_, err := Emit(prog, Options{})
	if !errors.Is(err, ErrEmit) || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("err = %v", err)
	}
}

func TestDisassemble(t *testing.T) {
	b := NewModuleBuilder(0x00010000)
	b.ExtInstImport(glslStd450)
	out, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	text, err := Disassemble(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"; SPIR-V 1.0", "OpCapability 1", `OpExtInstImport 1 "GLSL.std.450"`, "OpMemoryModel 0 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("disassembly lacks %q:\n%s", want, text)
		}
	}
}
