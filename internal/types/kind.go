package types

import "fmt"

// Kind enumerates the shapes of shader types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindScalar
	KindVector
	KindMatrix
	KindArray
	KindStruct
	KindFunction
	KindShader
	KindEffect
	KindCBuffer
	KindTexture
	KindSampler
	KindBuffer
	KindStreams
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindShader:
		return "shader"
	case KindEffect:
		return "effect"
	case KindCBuffer:
		return "cbuffer"
	case KindTexture:
		return "texture"
	case KindSampler:
		return "sampler"
	case KindBuffer:
		return "buffer"
	case KindStreams:
		return "streams"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Scalar is the component type of scalars, vectors and matrices.
type Scalar uint8

const (
	ScalarNone Scalar = iota
	ScalarBool
	ScalarInt
	ScalarUInt
	ScalarLong
	ScalarULong
	ScalarHalf
	ScalarFloat
	ScalarDouble
	scalarCount
)

var scalarNames = [scalarCount]string{"", "bool", "int", "uint", "long", "ulong", "half", "float", "double"}

func (s Scalar) String() string {
	if s < scalarCount {
		return scalarNames[s]
	}
	return fmt.Sprintf("Scalar(%d)", s)
}

func (s Scalar) IsFloat() bool { return s == ScalarHalf || s == ScalarFloat || s == ScalarDouble }

func (s Scalar) IsInt() bool {
	return s == ScalarInt || s == ScalarUInt || s == ScalarLong || s == ScalarULong
}

func (s Scalar) IsSigned() bool { return s == ScalarInt || s == ScalarLong }

func (s Scalar) IsNumeric() bool { return s.IsFloat() || s.IsInt() }

// Bits returns the storage width; bool is reported as 32 like in uniform
// memory.
func (s Scalar) Bits() uint32 {
	switch s {
	case ScalarHalf:
		return 16
	case ScalarLong, ScalarULong, ScalarDouble:
		return 64
	case ScalarNone:
		return 0
	}
	return 32
}

// rank orders scalars for promotions: bool < int < uint < long < ulong <
// half < float < double.
func (s Scalar) rank() int { return int(s) }

// TextureDim is the dimensionality of a texture type.
type TextureDim uint8

const (
	Dim1D TextureDim = iota
	Dim2D
	Dim3D
	DimCube
	Dim2DArray
)

var textureNames = map[TextureDim]string{
	Dim1D:      "Texture1D",
	Dim2D:      "Texture2D",
	Dim3D:      "Texture3D",
	DimCube:    "TextureCube",
	Dim2DArray: "Texture2DArray",
}

func (d TextureDim) String() string { return textureNames[d] }

// Coords returns the number of coordinate components used for sampling.
func (d TextureDim) Coords() int {
	switch d {
	case Dim1D:
		return 1
	case Dim2D:
		return 2
	}
	return 3
}

// Qualifier is the passing mode of a function parameter.
type Qualifier uint8

const (
	QualIn Qualifier = iota
	QualOut
	QualInOut
	QualRef
)

func (q Qualifier) String() string {
	switch q {
	case QualOut:
		return "out"
	case QualInOut:
		return "inout"
	case QualRef:
		return "ref"
	}
	return "in"
}

// Writes reports qualifiers that need an l-value argument.
func (q Qualifier) Writes() bool { return q != QualIn }
