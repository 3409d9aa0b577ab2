package dialect

import "fmt"

// HintKind groups hints by what the user should change. It only selects
// the advice text.
type HintKind uint8

const (
	HintUnknown HintKind = iota
	HintVectorType
	HintBuiltinVar
	HintUniform
	HintTexture
	HintFunctionSyntax
	HintAttribute
	HintVersion
)

type advice struct {
	text    string
	example string
}

var adviceByKind = map[HintKind]advice{
	HintVectorType: {
		"SDSL uses HLSL types: float4 for vec4/vec4f, float4x4 for mat4.",
		"float4 color = float4(1, 0, 0, 1);",
	},
	HintBuiltinVar: {
		"stage inputs and outputs are stream variables with a semantic.",
		"stream float4 Position : SV_Position;",
	},
	HintUniform: {
		"uniforms are shader members, grouped in a cbuffer when they share an update rate.",
		"cbuffer PerDraw { float4x4 World; };",
	},
	HintTexture: {
		"textures and samplers are separate members and are sampled with a method call.",
		"Texture2D Tex; SamplerState Smp; float4 c = Tex.Sample(Smp, uv);",
	},
	HintFunctionSyntax: {
		"methods are declared C-style inside a shader class.",
		"float4 Shade(float2 uv) { return float4(uv, 0, 1); }",
	},
	HintAttribute: {
		"entry points are methods named after their stage; data is bound with semantics, not attributes.",
		"void PSMain() { streams.ColorTarget = float4(1, 1, 1, 1); }",
	},
	HintVersion: {
		"SDSL files need no version or precision header; a file is a shader class.",
		"shader MyShader : ShaderBase { };",
	},
}

// Render returns the message and the SDSL example for the strongest hint
// of a classified file.
func Render(d Kind, h Hint) (message, example string) {
	a, ok := adviceByKind[h.Kind]
	if !ok {
		return fmt.Sprintf("this looks like %s (%s); SDSL is an HLSL dialect", d, h.Reason), ""
	}
	return fmt.Sprintf("this looks like %s (%s): %s", d, h.Reason, a.text), a.example
}
