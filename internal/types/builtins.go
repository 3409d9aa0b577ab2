package types

import "fmt"

var (
	Invalid = &Type{Kind: KindInvalid}
	Void    = &Type{Kind: KindVoid}
	Streams = &Type{Kind: KindStreams, Name: "streams"}

	SamplerState           = &Type{Kind: KindSampler, Name: "SamplerState"}
	SamplerComparisonState = &Type{Kind: KindSampler, Name: "SamplerComparisonState"}
)

// Frequently used numeric types; set in init.
var (
	Bool, Int, UInt, Float, Double, Half *Type
	Float2, Float3, Float4, Float4x4     *Type
)

var (
	scalars  [scalarCount]*Type
	vectors  [scalarCount][5]*Type
	matrices [scalarCount][5][5]*Type
	textures [Dim2DArray + 1]*Type
	builtin  map[string]*Type
)

// BufferNames lists the read-only buffer templates.
var BufferNames = []string{"Buffer", "StructuredBuffer"}

func init() {
	builtin = make(map[string]*Type, 256)
	builtin["void"] = Void
	for s := ScalarBool; s < scalarCount; s++ {
		scalars[s] = &Type{Kind: KindScalar, Scalar: s}
		builtin[s.String()] = scalars[s]
		for n := 1; n <= 4; n++ {
			vectors[s][n] = &Type{Kind: KindVector, Scalar: s, Rows: uint8(n)}
			builtin[fmt.Sprintf("%s%d", s, n)] = vectors[s][n]
			for c := 1; c <= 4; c++ {
				matrices[s][n][c] = &Type{Kind: KindMatrix, Scalar: s, Rows: uint8(n), Cols: uint8(c)}
				builtin[fmt.Sprintf("%s%dx%d", s, n, c)] = matrices[s][n][c]
			}
		}
	}
	Bool, Int, UInt = scalars[ScalarBool], scalars[ScalarInt], scalars[ScalarUInt]
	Float, Double, Half = scalars[ScalarFloat], scalars[ScalarDouble], scalars[ScalarHalf]
	Float2, Float3, Float4 = vectors[ScalarFloat][2], vectors[ScalarFloat][3], vectors[ScalarFloat][4]
	Float4x4 = matrices[ScalarFloat][4][4]

	// алиасы
	builtin["dword"] = UInt
	builtin["vector"] = Float4
	builtin["matrix"] = Float4x4

	for d := Dim1D; d <= Dim2DArray; d++ {
		textures[d] = &Type{Kind: KindTexture, Dim: d, Elem: Float4}
		builtin[d.String()] = textures[d]
	}
	builtin[SamplerState.Name] = SamplerState
	builtin[SamplerComparisonState.Name] = SamplerComparisonState
}

// Lookup returns the canonical builtin type for name.
func Lookup(name string) (*Type, bool) {
	t, ok := builtin[name]
	return t, ok
}

// IsBuiltinName reports names that denote a type without any declaration,
// templates included.
func IsBuiltinName(name string) bool {
	if _, ok := builtin[name]; ok {
		return true
	}
	for _, b := range BufferNames {
		if b == name {
			return true
		}
	}
	return false
}

// ScalarOf returns the canonical scalar type.
func ScalarOf(s Scalar) *Type {
	if s == ScalarNone || s >= scalarCount {
		return Invalid
	}
	return scalars[s]
}

// VectorOf returns the canonical vector type; n == 0 is invalid.
func VectorOf(s Scalar, n int) *Type {
	if s == ScalarNone || s >= scalarCount || n < 1 || n > 4 {
		return Invalid
	}
	return vectors[s][n]
}

// MatrixOf returns the canonical rows x cols matrix type.
func MatrixOf(s Scalar, rows, cols int) *Type {
	if s == ScalarNone || s >= scalarCount || rows < 1 || rows > 4 || cols < 1 || cols > 4 {
		return Invalid
	}
	return matrices[s][rows][cols]
}

// TextureOf returns a texture over elem; float4 elements give the canonical
// instance.
func TextureOf(dim TextureDim, elem *Type) *Type {
	if elem == Float4 || elem == nil {
		return textures[dim]
	}
	return &Type{Kind: KindTexture, Dim: dim, Elem: elem}
}

// TextureByName maps Texture2D and friends to their dimension.
func TextureByName(name string) (TextureDim, bool) {
	for d, n := range textureNames {
		if n == name {
			return d, true
		}
	}
	return 0, false
}

// BufferOf describes Buffer<T> or StructuredBuffer<T>.
func BufferOf(name string, elem *Type) *Type {
	return &Type{Kind: KindBuffer, Name: name, Elem: elem}
}
