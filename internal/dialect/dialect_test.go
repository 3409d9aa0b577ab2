package dialect

import (
	"strings"
	"testing"

	"sdslc/internal/source"
)

func collect(text string) *Evidence {
	fs := source.NewFileSet()
	return Collect(fs.Get(fs.AddVirtual("x", []byte(text))))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Kind
		ok   bool
	}{
		{"glsl", "#version 450\nlayout(location = 0) in vec4 pos;\nvoid main() { gl_Position = pos; }\n", GLSL, true},
		{"wgsl", "@vertex\nfn main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4f { return vec4f(0.0); }\n", WGSL, true},
		{"metal", "#include <metal_stdlib>\nusing namespace metal;\nvertex float4 vs(uint id [[vertex_id]]) { return 0; }\n", Metal, true},
		{"sdsl", "shader A : B\n{\n    stream float4 Position : SV_Position;\n    Texture2D Tex;\n    float4 f() { return Tex.Sample(Smp, 0); }\n};\n", Unknown, false},
		{"comments", "// vec4 mat4 gl_Position\n/* #version 450 */\nshader A { };\n", Unknown, false},
		{"one keyword", "shader A { float4 f() { uniform; } };", GLSL, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Classify(collect(c.text))
			if got.Eligible() != c.ok || (c.want != Unknown && got.Kind != c.want) {
				t.Fatalf("classification = %+v", got)
			}
		})
	}
}

func TestStrongestHintAndRender(t *testing.T) {
	ev := collect("#version 330\nuniform mat4 mvp;\n")
	h, ok := ev.Strongest(GLSL)
	if !ok || h.Kind != HintVersion || h.Span.Start != 0 || h.Span.End != 8 {
		t.Fatalf("strongest = %+v", h)
	}
	msg, example := Render(GLSL, h)
	if !strings.Contains(msg, "looks like GLSL") || !strings.Contains(msg, "#version") || example == "" {
		t.Errorf("render = %q / %q", msg, example)
	}
	if _, ok := ev.Strongest(WGSL); ok {
		t.Error("WGSL hint in a GLSL file")
	}
}
