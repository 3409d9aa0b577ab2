package intrinsics

import (
	"errors"
	"strings"
	"testing"

	"sdslc/internal/target"
	"sdslc/internal/types"
)

func resolveOK(t *testing.T, name string, args ...*types.Type) Match {
	t.Helper()
	m, err := Resolve(name, args, target.SM6_2)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return m
}

func TestResolveUnifiesSlots(t *testing.T) {
	m := resolveOK(t, "lerp", types.Float3, types.Float3, types.Float)
	if m.Ret != types.Float3 || m.Params[2] != types.Float3 {
		t.Fatalf("lerp: ret %v params %v", m.Ret, m.Params)
	}
	if m := resolveOK(t, "max", types.Int, types.Float3); m.Ret != types.Float3 {
		t.Fatalf("max(int, float3) = %v", m.Ret)
	}
	if m := resolveOK(t, "sqrt", types.Int); m.Ret != types.Float {
		t.Fatalf("sqrt(int) = %v", m.Ret)
	}
	if m := resolveOK(t, "abs", types.VectorOf(types.ScalarInt, 2)); m.Ret != types.VectorOf(types.ScalarInt, 2) {
		t.Fatalf("abs(int2) = %v", m.Ret)
	}
}

func TestResolveReturnDescriptors(t *testing.T) {
	if m := resolveOK(t, "dot", types.Float3, types.Float3); m.Ret != types.Float {
		t.Fatalf("dot = %v", m.Ret)
	}
	if m := resolveOK(t, "length", types.Float4); m.Ret != types.Float {
		t.Fatalf("length = %v", m.Ret)
	}
	if m := resolveOK(t, "isnan", types.Float2); m.Ret != types.VectorOf(types.ScalarBool, 2) {
		t.Fatalf("isnan = %v", m.Ret)
	}
	if m := resolveOK(t, "sign", types.Float3); m.Ret != types.VectorOf(types.ScalarInt, 3) {
		t.Fatalf("sign = %v", m.Ret)
	}
	if m := resolveOK(t, "transpose", types.MatrixOf(types.ScalarFloat, 2, 3)); m.Ret != types.MatrixOf(types.ScalarFloat, 3, 2) {
		t.Fatalf("transpose = %v", m.Ret)
	}
	if m := resolveOK(t, "all", types.Float3); m.Ret != types.Bool {
		t.Fatalf("all = %v", m.Ret)
	}
}

func TestMulShapes(t *testing.T) {
	m34 := types.MatrixOf(types.ScalarFloat, 3, 4)
	cases := []struct {
		a, b, want *types.Type
	}{
		{types.Float, types.Float, types.Float},
		{types.Float, types.Float3, types.Float3},
		{types.Float, types.Float4x4, types.Float4x4},
		{types.Float3, types.Float, types.Float3},
		{types.Float3, types.Float3, types.Float},
		{types.Float3, m34, types.Float4},
		{m34, types.Float, m34},
		{m34, types.Float4, types.Float3},
		{m34, types.MatrixOf(types.ScalarFloat, 4, 2), types.MatrixOf(types.ScalarFloat, 3, 2)},
	}
	for _, tc := range cases {
		m, err := Resolve("mul", []*types.Type{tc.a, tc.b}, target.SM5_0)
		if err != nil {
			t.Errorf("mul(%s, %s): %v", tc.a, tc.b, err)
			continue
		}
		if m.Ret != tc.want {
			t.Errorf("mul(%s, %s) = %s, want %s", tc.a, tc.b, m.Ret, tc.want)
		}
	}
	if _, err := Resolve("mul", []*types.Type{m34, types.Float3}, target.SM5_0); err == nil {
		t.Fatal("mul(float3x4, float3) must not resolve")
	}
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve("cross", []*types.Type{types.MatrixOf(types.ScalarFloat, 3, 3), types.Float3}, target.SM5_0)
	var nm *NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("want NoMatchError, got %v", err)
	}
	if !strings.Contains(err.Error(), "float3x3, float3") || !strings.Contains(err.Error(), "cross(") {
		t.Fatalf("message %q", err)
	}
	_, err = Resolve("WaveActiveSum", []*types.Type{types.Float}, target.SM5_0)
	var pe *ProfileError
	if !errors.As(err, &pe) || pe.Required != target.SM6_0 {
		t.Fatalf("want ProfileError, got %v", err)
	}
	if _, err := Resolve("nosuch", nil, target.SM5_0); err == nil || IsIntrinsic("nosuch") {
		t.Fatal("unknown intrinsic resolved")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	args := []*types.Type{types.Float2, types.Int, types.Float}
	first, err := Resolve("clamp", args, target.SM5_0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		m, err := Resolve("clamp", args, target.SM5_0)
		if err != nil || m.Sig != first.Sig || m.Ret != first.Ret || m.Cost != first.Cost {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestAmbiguousError(t *testing.T) {
	sigs := []*Signature{
		{Name: "f", Params: in(concrete(types.Float), concrete(types.Int)), Ret: retVoid},
		{Name: "f", Params: in(concrete(types.Int), concrete(types.Float)), Ret: retVoid},
	}
	_, err := resolve("f", sigs, nil, []*types.Type{types.UInt, types.UInt}, target.SM5_0)
	var amb *AmbiguousError
	if !errors.As(err, &amb) || len(amb.Matches) != 2 {
		t.Fatalf("want AmbiguousError, got %v", err)
	}
}

func TestTextureMethods(t *testing.T) {
	tex := types.TextureOf(types.Dim2D, types.Float)
	m, err := ResolveMethod(tex, "Sample", []*types.Type{types.SamplerState, types.Float2}, target.SM5_0)
	if err != nil || m.Ret != types.Float {
		t.Fatalf("Sample: %v %v", m.Ret, err)
	}
	cube := types.TextureOf(types.DimCube, nil)
	if _, err := ResolveMethod(cube, "Load", []*types.Type{types.VectorOf(types.ScalarInt, 4)}, target.SM5_0); err == nil {
		t.Fatal("TextureCube.Load must not exist")
	}
	if m, err := ResolveMethod(cube, "SampleLevel", []*types.Type{types.SamplerState, types.Float3, types.Int}, target.SM5_0); err != nil || m.Ret != types.Float4 {
		t.Fatalf("SampleLevel: %v %v", m.Ret, err)
	}
	buf := types.BufferOf("StructuredBuffer", types.Float4x4)
	if m, err := ResolveMethod(buf, "Load", []*types.Type{types.UInt}, target.SM5_0); err != nil || m.Ret != types.Float4x4 {
		t.Fatalf("Load: %v %v", m.Ret, err)
	}
}
