package fuzztests

import "testing"

const maxFuzzInput = 1 << 16 // 64 KiB

var languageSeeds = []string{
	"",
	"shader A { };",
	"shader Foo { float4 bar() { return float4(1,0,0,1); } }",
	"#define SQR(x) ((x)*(x))\nshader S { float f(float a) { return SQR(a + 1); } };\n",
	"#if defined(X) && X > 1\nshader T { };\n#elif 0\n#else\nshader U { };\n#endif\n",
	"shader Child : Base { override float4 Tint() { return base.Tint() * 2; } };",
	"shader V { stream float4 P : SV_Position; void VSMain() { streams.P = float4(0, 0, 0, 1); } };",
	"shader C { cbuffer PerDraw { float4x4 World; float3 Eye; }; float3 E() { return Eye; } };",
	"shader R { Texture2D Tex; SamplerState Smp; float4 S(float2 uv) { return Tex.Sample(Smp, uv); } };",
	"shader L { float f() { float s = 0; [unroll] for (int i = 0; i < 4; i++) { if (i == 2) continue; s += i; } return s; } };",
	"namespace N.M { shader Q { static const int K = 3 << 1; float g[K]; }; }",
	"effect E { mixin A; if (X) mixin B; mixin compose C = D; };",
	"shader G<float Scale, int Count> { float s() { return Scale * Count; } };",
	"shader Z { struct P { float a; int b; }; P make() { P p; p.a = 1; p.b = 2; return p; } };",
	"#define CAT(a,b) a##b\n#define STR(x) #x\nshader CAT(Na, me) { };\n",
	"shader Bad { float4 f() { return ; } ",
	"#ifdef X\n",
	"shader W { float4 f(float4 v) { return v.xyzw.wzyx.xx.xxxx; } };",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
