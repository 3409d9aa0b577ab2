package dialect

import "sdslc/internal/source"

type keywordSignal struct {
	Dialect Kind
	Kind    HintKind
	Score   int
	Reason  string
}

// SDSL is case sensitive, so unlike identifiers are never folded:
// Texture2D is ours, texture2d is Metal.
var keywordSignals = map[string][]keywordSignal{
	// GLSL
	"vec2":          {{GLSL, HintVectorType, 4, "GLSL type `vec2`"}},
	"vec3":          {{GLSL, HintVectorType, 4, "GLSL type `vec3`"}},
	"vec4":          {{GLSL, HintVectorType, 5, "GLSL type `vec4`"}},
	"ivec4":         {{GLSL, HintVectorType, 4, "GLSL type `ivec4`"}},
	"mat3":          {{GLSL, HintVectorType, 4, "GLSL type `mat3`"}},
	"mat4":          {{GLSL, HintVectorType, 5, "GLSL type `mat4`"}},
	"sampler2D":     {{GLSL, HintTexture, 5, "GLSL type `sampler2D`"}},
	"texture2D":     {{GLSL, HintTexture, 4, "GLSL function `texture2D`"}},
	"gl_Position":   {{GLSL, HintBuiltinVar, 6, "GLSL built-in `gl_Position`"}},
	"gl_FragColor":  {{GLSL, HintBuiltinVar, 6, "GLSL built-in `gl_FragColor`"}},
	"gl_FragCoord":  {{GLSL, HintBuiltinVar, 6, "GLSL built-in `gl_FragCoord`"}},
	"gl_VertexID":   {{GLSL, HintBuiltinVar, 6, "GLSL built-in `gl_VertexID`"}},
	"uniform":       {{GLSL, HintUniform, 3, "GLSL qualifier `uniform`"}},
	"varying":       {{GLSL, HintUniform, 4, "GLSL qualifier `varying`"}},
	"attribute":     {{GLSL, HintUniform, 4, "GLSL qualifier `attribute`"}},
	"precision":     {{GLSL, HintVersion, 4, "GLSL `precision` statement"}},
	"highp":         {{GLSL, HintVersion, 5, "GLSL precision `highp`"}},
	"mediump":       {{GLSL, HintVersion, 5, "GLSL precision `mediump`"}},
	"gl_FragData":   {{GLSL, HintBuiltinVar, 6, "GLSL built-in `gl_FragData`"}},
	"gl_InstanceID": {{GLSL, HintBuiltinVar, 6, "GLSL built-in `gl_InstanceID`"}},

	// WGSL
	"fn":         {{WGSL, HintFunctionSyntax, 5, "WGSL keyword `fn`"}},
	"f32":        {{WGSL, HintVectorType, 4, "WGSL type `f32`"}},
	"i32":        {{WGSL, HintVectorType, 3, "WGSL type `i32`"}},
	"u32":        {{WGSL, HintVectorType, 3, "WGSL type `u32`"}},
	"vec4f":      {{WGSL, HintVectorType, 5, "WGSL type `vec4f`"}},
	"vec3f":      {{WGSL, HintVectorType, 5, "WGSL type `vec3f`"}},
	"mat4x4f":    {{WGSL, HintVectorType, 5, "WGSL type `mat4x4f`"}},
	"texture_2d": {{WGSL, HintTexture, 5, "WGSL type `texture_2d`"}},
	"sampler":    {{WGSL, HintTexture, 2, "WGSL type `sampler`"}},
	"let":        {{WGSL, HintFunctionSyntax, 2, "WGSL keyword `let`"}},

	// Metal
	"metal":       {{Metal, HintVersion, 6, "Metal namespace `metal`"}},
	"kernel":      {{Metal, HintFunctionSyntax, 4, "Metal qualifier `kernel`"}},
	"device":      {{Metal, HintUniform, 3, "Metal address space `device`"}},
	"constant":    {{Metal, HintUniform, 2, "Metal address space `constant`"}},
	"texture2d":   {{Metal, HintTexture, 5, "Metal type `texture2d`"}},
	"stage_in":    {{Metal, HintAttribute, 6, "Metal attribute `stage_in`"}},
	"position":    {{Metal, HintAttribute, 1, "Metal attribute `position`"}},
	"vertex_id":   {{Metal, HintAttribute, 5, "Metal attribute `vertex_id`"}},
	"buffer":      {{Metal, HintAttribute, 1, "Metal attribute `buffer`"}},
	"thread":      {{Metal, HintUniform, 2, "Metal address space `thread`"}},
	"threadgroup": {{Metal, HintUniform, 3, "Metal address space `threadgroup`"}},
}

// RecordIdent collects keyword evidence for an identifier.
func RecordIdent(e *Evidence, ident string, span source.Span) {
	if e == nil || ident == "" {
		return
	}
	for _, sig := range keywordSignals[ident] {
		e.Add(Hint{Dialect: sig.Dialect, Kind: sig.Kind, Score: sig.Score, Reason: sig.Reason, Span: span})
	}
}
