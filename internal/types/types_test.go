package types

import "testing"

func TestBuiltinTableIsTotal(t *testing.T) {
	for s := ScalarBool; s < scalarCount; s++ {
		if got, ok := Lookup(s.String()); !ok || got != ScalarOf(s) {
			t.Fatalf("%s: missing canonical scalar", s)
		}
		for n := 1; n <= 4; n++ {
			name := VectorOf(s, n).String()
			if got, ok := Lookup(name); !ok || got != VectorOf(s, n) {
				t.Fatalf("%s: not canonical", name)
			}
			for c := 1; c <= 4; c++ {
				m := MatrixOf(s, n, c)
				if got, ok := Lookup(m.String()); !ok || got != m {
					t.Fatalf("%s: not canonical", m)
				}
				if m.Rows != uint8(n) || m.Cols != uint8(c) {
					t.Fatalf("%s: shape %dx%d", m, m.Rows, m.Cols)
				}
			}
		}
	}
}

func TestLookupAliasesAndObjects(t *testing.T) {
	cases := map[string]*Type{
		"dword":          UInt,
		"vector":         Float4,
		"matrix":         Float4x4,
		"float3":         Float3,
		"void":           Void,
		"SamplerState":   SamplerState,
		"Texture2D":      TextureOf(Dim2D, Float4),
		"TextureCube":    TextureOf(DimCube, nil),
		"half2":          VectorOf(ScalarHalf, 2),
		"double4x3":      MatrixOf(ScalarDouble, 4, 3),
		"ulong1":         VectorOf(ScalarULong, 1),
		"bool2x2":        MatrixOf(ScalarBool, 2, 2),
		"Texture2DArray": TextureOf(Dim2DArray, Float4),
	}
	for name, want := range cases {
		got, ok := Lookup(name)
		if !ok || got != want {
			t.Errorf("%s: got %v", name, got)
		}
	}
	for _, name := range []string{"float5", "float0", "int4x5", "Foo", "Buffer"} {
		if _, ok := Lookup(name); ok {
			t.Errorf("%s: unexpected builtin", name)
		}
	}
	if !IsBuiltinName("Buffer") || IsBuiltinName("Light") {
		t.Fatal("IsBuiltinName")
	}
}

func TestEqualIsStructuralForUserTypes(t *testing.T) {
	a := MakeStruct("Light", []Field{{Name: "Dir", Type: Float3}, {Name: "Color", Type: Float4}})
	b := MakeStruct("Light", []Field{{Name: "Dir", Type: Float3}, {Name: "Color", Type: Float4}})
	c := MakeStruct("Light", []Field{{Name: "Dir", Type: Float4}, {Name: "Color", Type: Float4}})
	if !Equal(a, b) || Equal(a, c) {
		t.Fatal("struct equality")
	}
	if !Equal(MakeArray(Float3, 4), MakeArray(Float3, 4)) || Equal(MakeArray(Float3, 4), MakeArray(Float3, 3)) {
		t.Fatal("array equality")
	}
	f1 := MakeFunction(Float, []Param{{Type: Float2}, {Type: Int, Qual: QualOut}})
	f2 := MakeFunction(Float, []Param{{Type: Float2}, {Type: Int, Qual: QualOut}})
	f3 := MakeFunction(Float, []Param{{Type: Float2}, {Type: Int}})
	if !Equal(f1, f2) || Equal(f1, f3) {
		t.Fatal("function equality")
	}
	if f1.String() != "float(float2, out int)" {
		t.Fatalf("function string %q", f1)
	}
	if !Equal(MakeShader("A"), MakeShader("A")) || Equal(MakeShader("A"), MakeShader("B")) {
		t.Fatal("shader equality")
	}
	if Equal(Float, Int) || !Equal(TextureOf(Dim2D, Float), TextureOf(Dim2D, Float)) {
		t.Fatal("builtin equality")
	}
}

func TestConvert(t *testing.T) {
	cases := []struct {
		from, to *Type
		kind     ConvKind
	}{
		{Float3, Float3, ConvExact},
		{Int, Float, ConvPromotion},
		{Float, Float4, ConvSplat},
		{Int, Float4, ConvSplat},
		{Float4, Float3, ConvTruncation},
		{Float4, Float, ConvTruncation},
		{Float3, Float4, ConvInvalid},
		{Float4x4, MatrixOf(ScalarFloat, 3, 3), ConvTruncation},
		{Float3, Float4x4, ConvInvalid},
		{MakeStruct("S", nil), Float, ConvInvalid},
		{VectorOf(ScalarFloat, 1), Float, ConvExact},
	}
	for _, tc := range cases {
		if got := Convert(tc.from, tc.to); got.Kind != tc.kind {
			t.Errorf("%s -> %s: got %s, want %s", tc.from, tc.to, got.Kind, tc.kind)
		}
	}
	if Convert(Int, Float).Cost >= Convert(Float, Int).Cost {
		t.Fatal("int->float must be cheaper than float->int")
	}
	if Convert(Float, Double).Cost >= Convert(Float, Float4).Cost {
		t.Fatal("promotion must be cheaper than splat")
	}
}

func TestCommonType(t *testing.T) {
	if got := Common(Int, Float3); got != Float3 {
		t.Fatalf("int, float3: %v", got)
	}
	if got := Common(Float4, Float2); got != Float2 {
		t.Fatalf("float4, float2: %v", got)
	}
	if got := Common(VectorOf(ScalarInt, 2), Float); got != Float2 {
		t.Fatalf("int2, float: %v", got)
	}
}

func TestSwizzle(t *testing.T) {
	got, idx, ok := Swizzle(Float4, "wzyx")
	if !ok || got != Float4 || idx[0] != 3 || idx[3] != 0 {
		t.Fatalf("wzyx: %v %v %v", got, idx, ok)
	}
	if got, _, ok := Swizzle(Float2, "rg"); !ok || got != Float2 {
		t.Fatalf("rg: %v", got)
	}
	if got, _, ok := Swizzle(Float, "xxx"); !ok || got != Float3 {
		t.Fatalf("scalar xxx: %v", got)
	}
	for _, bad := range []string{"z", "xr", "xyzwx", ""} {
		if _, _, ok := Swizzle(Float2, bad); ok {
			t.Errorf("%q accepted", bad)
		}
	}
	if !HasDuplicates([]uint32{0, 1, 0}) || HasDuplicates([]uint32{2, 1}) {
		t.Fatal("HasDuplicates")
	}
}

func TestStd140Layout(t *testing.T) {
	fields := []Field{
		{Name: "a", Type: Float},
		{Name: "b", Type: Float3},
		{Name: "c", Type: Float},
		{Name: "m", Type: Float4x4},
		{Name: "arr", Type: MakeArray(Float, 3)},
		{Name: "v", Type: Float2},
	}
	lay, size, _, err := StructLayout(fields)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 16, 28, 32, 96, 144}
	for i, l := range lay {
		if l.Offset != want[i] {
			t.Errorf("%s: offset %d, want %d", fields[i].Name, l.Offset, want[i])
		}
	}
	if lay[3].MatrixStride != 16 || lay[4].ArrayStride != 16 {
		t.Fatalf("strides %d %d", lay[3].MatrixStride, lay[4].ArrayStride)
	}
	if size != 160 {
		t.Fatalf("size %d", size)
	}
	if _, _, _, err := StructLayout([]Field{{Name: "x", Type: MakeArray(Float, ArrayUnsized)}}); err == nil {
		t.Fatal("unsized array must fail")
	}
}
