package artifact

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/parser"
	"sdslc/internal/sema"
	"sdslc/internal/source"
	"sdslc/internal/spirv"
	"sdslc/internal/target"
)

const shaderSource = `
shader Lit
{
    cbuffer PerView
    {
        float4x4 ViewProj;
        float3 Eye;
        float Exposure;
    };
    Texture2D Albedo;
    SamplerState Linear;

    stream float4 InPos : POSITION;
    stream float4 Pos : SV_Position;
    stream float2 UV : TEXCOORD0;
    stream float4 Color : SV_Target0;

    void VSMain()
    {
        streams.Pos = mul(streams.InPos, ViewProj);
        streams.UV = streams.InPos.xy;
    }

    void PSMain()
    {
        streams.Color = Albedo.Sample(Linear, streams.UV) * Exposure;
    }
};
`

func buildBundle(t *testing.T) *Bundle {
	t.Helper()
	fs := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	id := fs.AddVirtual("lit.sdsl", []byte(shaderSource))
	res := parser.New(b).File(fs.Get(id), parser.Options{Reporter: rep})
	if !res.OK {
		t.Fatalf("parse failed: %d diagnostics", bag.Len())
	}
	sr := sema.Analyze(b, res.File, sema.Options{Reporter: rep, Profile: target.Default})
	if !sr.OK || bag.HasErrors() {
		t.Fatalf("analysis failed: %d diagnostics", bag.Len())
	}
	module, err := spirv.Emit(sr.Program, spirv.Options{})
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := New(sr.Program, module)
	if err != nil {
		t.Fatal(err)
	}
	return bundle
}

func TestReflection(t *testing.T) {
	b := buildBundle(t)
	if b.Name != "Lit" || b.Profile != "sm5_0" || b.SPIRVVersion != 0x00010000 {
		t.Errorf("header = %q %q %#x", b.Name, b.Profile, b.SPIRVVersion)
	}
	vs, ok := b.Entry("VSMain")
	if !ok || vs.Stage != "vertex" {
		t.Fatalf("VSMain = %+v", vs)
	}
	if len(vs.Inputs) != 1 || vs.Inputs[0].Semantic != "POSITION" || vs.Inputs[0].Location != 0 {
		t.Errorf("VS inputs = %+v", vs.Inputs)
	}
	if len(vs.Outputs) != 2 {
		t.Fatalf("VS outputs = %+v", vs.Outputs)
	}
	if vs.Outputs[0].Builtin != "Position" {
		t.Errorf("SV_Position output = %+v", vs.Outputs[0])
	}
	if vs.Outputs[1].Builtin != "" || vs.Outputs[1].Location != 1 || vs.Outputs[1].Type != "float2" {
		t.Errorf("UV output = %+v", vs.Outputs[1])
	}
	ps, ok := b.Entry("PSMain")
	if !ok || len(ps.Outputs) != 1 || ps.Outputs[0].Location != 0 {
		t.Fatalf("PSMain = %+v", ps)
	}

	if len(b.CBuffers) != 1 {
		t.Fatalf("cbuffers = %+v", b.CBuffers)
	}
	cb := b.CBuffers[0]
	if cb.Name != "PerView" || cb.Binding != 0 || cb.Size != 80 {
		t.Errorf("PerView = %s binding %d size %d", cb.Name, cb.Binding, cb.Size)
	}
	wantOffsets := []uint32{0, 64, 76}
	for i, m := range cb.Members {
		if m.Offset != wantOffsets[i] {
			t.Errorf("%s offset = %d, want %d", m.Name, m.Offset, wantOffsets[i])
		}
	}
	if cb.Members[0].MatrixStride != 16 {
		t.Errorf("ViewProj matrix stride = %d", cb.Members[0].MatrixStride)
	}

	if len(b.Resources) != 2 || b.Resources[0].Name != "Albedo" || b.Resources[0].Binding != 1 || b.Resources[1].Binding != 2 {
		t.Errorf("resources = %+v", b.Resources)
	}
}

func TestEncodeDecode(t *testing.T) {
	b := buildBundle(t)
	var buf bytes.Buffer
	if err := Encode(&buf, b); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Module, b.Module) || len(got.Entries) != 2 || got.CBuffers[0].Members[2].Name != "Exposure" {
		t.Fatalf("decoded bundle differs: %+v", got)
	}
}

func TestDecodeRejects(t *testing.T) {
	b := &Bundle{Name: "x", Module: []byte{1, 2, 3, 4}}
	b.Seal()
	b.Module[0] = 9
	var buf bytes.Buffer
	if err := Encode(&buf, b); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("tampered module: err = %v", err)
	}

	old := &Bundle{Schema: SchemaVersion + 1, Name: "y"}
	buf.Reset()
	if err := Encode(&buf, old); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrSchema) {
		t.Fatalf("future schema: err = %v", err)
	}
}

func TestWriteReadFile(t *testing.T) {
	b := buildBundle(t)
	path := filepath.Join(t.TempDir(), "out", "lit.sdslb")
	if err := WriteFile(path, b); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Digest != b.Digest {
		t.Fatal("digest changed across a file round trip")
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".sdslb-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}
