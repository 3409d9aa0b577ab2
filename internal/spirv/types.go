package spirv

import (
	"fmt"
	"math"
	"strings"

	"sdslc/internal/sema"
	"sdslc/internal/types"
)

// Type ids are memoized by a key built from the ids of their operands, so
// structurally equal types share one declaration.

func (e *emitter) declare(key string, op Op, operands ...uint32) uint32 {
	return e.b.Memo(key, func() uint32 {
		return e.b.Define(SectionTypes, op, 0, operands...)
	})
}

func (e *emitter) scalarType(s types.Scalar) uint32 {
	switch s {
	case types.ScalarBool:
		return e.declare("bool", OpTypeBool)
	case types.ScalarInt:
		return e.declare("int32", OpTypeInt, 32, 1)
	case types.ScalarUInt:
		return e.declare("uint32", OpTypeInt, 32, 0)
	case types.ScalarLong:
		e.b.Require(CapabilityInt64)
		return e.declare("int64", OpTypeInt, 64, 1)
	case types.ScalarULong:
		e.b.Require(CapabilityInt64)
		return e.declare("uint64", OpTypeInt, 64, 0)
	case types.ScalarHalf:
		e.b.Require(CapabilityFloat16)
		return e.declare("float16", OpTypeFloat, 16)
	case types.ScalarFloat:
		return e.declare("float32", OpTypeFloat, 32)
	case types.ScalarDouble:
		e.b.Require(CapabilityFloat64)
		return e.declare("float64", OpTypeFloat, 64)
	}
	e.fail(fmt.Errorf("scalar %s has no SPIR-V form", s))
	return 0
}

// typeID lowers a value type. Vectors of one component are scalars and an
// RxC matrix is C columns of R-component vectors.
func (e *emitter) typeID(t *types.Type) uint32 {
	switch t.Kind {
	case types.KindVoid:
		return e.declare("void", OpTypeVoid)
	case types.KindScalar:
		return e.scalarType(t.Scalar)
	case types.KindVector:
		comp := e.scalarType(t.Scalar)
		if t.Rows == 1 {
			return comp
		}
		return e.declare(fmt.Sprintf("vec %d %d", comp, t.Rows), OpTypeVector, comp, uint32(t.Rows))
	case types.KindMatrix:
		col := e.typeID(t.Column())
		return e.declare(fmt.Sprintf("mat %d %d", col, t.Cols), OpTypeMatrix, col, uint32(t.Cols))
	case types.KindArray:
		return e.arrayType(t)
	case types.KindStruct:
		return e.structType(t)
	case types.KindTexture:
		return e.imageType(t)
	case types.KindSampler:
		return e.declare("sampler", OpTypeSampler)
	}
	e.fail(fmt.Errorf("type %s has no SPIR-V form", t))
	return 0
}

func (e *emitter) arrayType(t *types.Type) uint32 {
	elem := e.typeID(t.Elem)
	var key string
	var id uint32
	if t.Len == types.ArrayUnsized {
		key = fmt.Sprintf("rarr %d", elem)
		id = e.declare(key, OpTypeRuntimeArray, elem)
	} else {
		n := e.constUint(t.Len)
		key = fmt.Sprintf("arr %d %d", elem, n)
		id = e.declare(key, OpTypeArray, elem, n)
	}
	if !hasLayout(t.Elem) {
		return id
	}
	e.b.Memo("stride "+key, func() uint32 {
		if stride, err := types.ArrayStride(t.Elem); err == nil {
			e.b.Decorate(id, DecorationArrayStride, stride)
		}
		return id
	})
	return id
}

// hasLayout reports types that can live in uniform memory.
func hasLayout(t *types.Type) bool {
	switch t.Kind {
	case types.KindScalar, types.KindVector, types.KindMatrix:
		return true
	case types.KindArray:
		return hasLayout(t.Elem)
	case types.KindStruct:
		for _, f := range t.Fields {
			if !hasLayout(f.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// structType declares a named struct once per descriptor and gives it
// std140 member offsets.
func (e *emitter) structType(t *types.Type) uint32 {
	if id, ok := e.structs[t]; ok {
		return id
	}
	members := make([]uint32, len(t.Fields))
	for i, f := range t.Fields {
		members[i] = e.typeID(f.Type)
	}
	id := e.b.Define(SectionTypes, OpTypeStruct, 0, members...)
	e.structs[t] = id
	e.name(id, t.Name)
	for i, f := range t.Fields {
		e.memberName(id, uint32(i), f.Name)
	}
	if hasLayout(t) {
		if layouts, _, _, err := types.StructLayout(t.Fields); err == nil {
			e.decorateMembers(id, t.Fields, layouts)
		}
	}
	return id
}

// decorateMembers writes Offset and the matrix layout of each member.
func (e *emitter) decorateMembers(id uint32, fields []types.Field, layouts []types.Layout) {
	for i, f := range fields {
		m := uint32(i)
		e.b.MemberDecorate(id, m, DecorationOffset, layouts[i].Offset)
		mt := f.Type
		for mt.Kind == types.KindArray {
			mt = mt.Elem
		}
		if !mt.IsMatrix() {
			continue
		}
		e.b.MemberDecorate(id, m, DecorationMatrixStride, types.MatrixStride(mt, f.RowMajor))
		if f.RowMajor {
			e.b.MemberDecorate(id, m, DecorationRowMajor)
		} else {
			e.b.MemberDecorate(id, m, DecorationColMajor)
		}
	}
}

func (e *emitter) imageType(t *types.Type) uint32 {
	sampled := e.scalarType(t.Elem.Scalar)
	dim, arrayed := imageDim2D, uint32(0)
	switch t.Dim {
	case types.Dim1D:
		dim = imageDim1D
		e.b.Require(CapabilitySampled1D)
	case types.Dim3D:
		dim = imageDim3D
	case types.DimCube:
		dim = imageDimCube
	case types.Dim2DArray:
		arrayed = 1
	}
	key := fmt.Sprintf("image %d %d %d", sampled, dim, arrayed)
	return e.declare(key, OpTypeImage, sampled, dim, 0, arrayed, 0, imageSampled, imageFormatUnknown)
}

func (e *emitter) sampledImageType(image uint32) uint32 {
	return e.declare(fmt.Sprintf("sampled %d", image), OpTypeSampledImage, image)
}

func (e *emitter) pointerType(class StorageClass, base uint32) uint32 {
	return e.declare(fmt.Sprintf("ptr %d %d", class, base), OpTypePointer, uint32(class), base)
}

func (e *emitter) functionType(ret uint32, params ...uint32) uint32 {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fn %d", ret)
	for _, p := range params {
		fmt.Fprintf(&sb, " %d", p)
	}
	return e.declare(sb.String(), OpTypeFunction, append([]uint32{ret}, params...)...)
}

// physical is the type a uniform member is stored as: bools have no size
// in uniform memory and are kept as uint.
func (e *emitter) physical(t *types.Type) *types.Type {
	switch t.Kind {
	case types.KindScalar, types.KindVector:
		if t.Scalar == types.ScalarBool {
			return t.WithScalar(types.ScalarUInt)
		}
	case types.KindArray:
		if elem := e.physical(t.Elem); elem != t.Elem {
			return types.MakeArray(elem, t.Len)
		}
	case types.KindStruct:
		for _, f := range t.Fields {
			if e.physical(f.Type) != f.Type {
				e.fail(fmt.Errorf("struct %s holds bool member %s and can not be placed in a constant buffer", t.Name, f.Name))
				break
			}
		}
	}
	return t
}

// Constants ------------------------------------------------------------------

func (e *emitter) constant(t uint32, words ...uint32) uint32 {
	var sb strings.Builder
	fmt.Fprintf(&sb, "const %d", t)
	for _, w := range words {
		fmt.Fprintf(&sb, " %x", w)
	}
	return e.declare(sb.String(), OpConstant, append([]uint32{t}, words...)...)
}

func (e *emitter) constBool(v bool) uint32 {
	t := e.scalarType(types.ScalarBool)
	if v {
		return e.b.Memo("true", func() uint32 { return e.b.Define(SectionTypes, OpConstantTrue, t) })
	}
	return e.b.Memo("false", func() uint32 { return e.b.Define(SectionTypes, OpConstantFalse, t) })
}

func (e *emitter) constInt(v int32) uint32 {
	return e.constant(e.scalarType(types.ScalarInt), uint32(v))
}

func (e *emitter) constUint(v uint32) uint32 {
	return e.constant(e.scalarType(types.ScalarUInt), v)
}

// constScalar encodes one component of scalar type s.
func (e *emitter) constScalar(s types.Scalar, v sema.Value) uint32 {
	t := e.scalarType(s)
	switch s {
	case types.ScalarBool:
		return e.constBool(v.Bool)
	case types.ScalarInt, types.ScalarUInt:
		return e.constant(t, uint32(v.Int))
	case types.ScalarLong, types.ScalarULong:
		u := uint64(v.Int)
		return e.constant(t, uint32(u), uint32(u>>32))
	case types.ScalarHalf:
		return e.constant(t, uint32(halfBits(float32(v.Float))))
	case types.ScalarFloat:
		return e.constant(t, math.Float32bits(float32(v.Float)))
	case types.ScalarDouble:
		u := math.Float64bits(v.Float)
		return e.constant(t, uint32(u), uint32(u>>32))
	}
	return 0
}

func (e *emitter) constComposite(t *types.Type, parts []uint32) uint32 {
	ty := e.typeID(t)
	var sb strings.Builder
	fmt.Fprintf(&sb, "composite %d", ty)
	for _, p := range parts {
		fmt.Fprintf(&sb, " %d", p)
	}
	return e.declare(sb.String(), OpConstantComposite, append([]uint32{ty}, parts...)...)
}

// constValue lowers folded components; matrix values arrive row by row.
func (e *emitter) constValue(t *types.Type, vals []sema.Value) uint32 {
	switch {
	case t.IsScalar() || t.IsVector() && t.Rows == 1:
		return e.constScalar(t.Scalar, vals[0])
	case t.IsVector():
		parts := make([]uint32, t.Rows)
		for i := range parts {
			parts[i] = e.constScalar(t.Scalar, vals[i])
		}
		return e.constComposite(t, parts)
	case t.IsMatrix():
		rows, cols := int(t.Rows), int(t.Cols)
		colType := t.Column()
		parts := make([]uint32, cols)
		for c := 0; c < cols; c++ {
			col := make([]sema.Value, rows)
			for r := 0; r < rows; r++ {
				col[r] = vals[r*cols+c]
			}
			parts[c] = e.constValue(colType, col)
		}
		return e.constComposite(t, parts)
	}
	e.fail(fmt.Errorf("constant of type %s", t))
	return 0
}

// splatConst fills every component of a numeric type with one value.
func (e *emitter) splatConst(t *types.Type, v sema.Value) uint32 {
	vals := make([]sema.Value, t.Components())
	for i := range vals {
		vals[i] = v
	}
	return e.constValue(t, vals)
}

func (e *emitter) zero(t *types.Type) uint32 { return e.splatConst(t, sema.Value{}) }

func (e *emitter) one(t *types.Type) uint32 {
	return e.splatConst(t, sema.Value{Int: 1, Float: 1, Bool: true})
}

// halfBits converts to IEEE binary16 with round-to-nearest-even.
func halfBits(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int(b>>23&0xff) - 127 + 15
	mant := b & 0x7fffff
	switch {
	case b&0x7fffffff == 0:
		return sign
	case b>>23&0xff == 0xff:
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	case exp >= 0x1f:
		return sign | 0x7c00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		// денормализованное число
		mant |= 0x800000
		shift := uint32(14 - exp)
		h := mant >> shift
		rem := mant & (1<<shift - 1)
		half := uint32(1) << (shift - 1)
		if rem > half || rem == half && h&1 == 1 {
			h++
		}
		return sign | uint16(h)
	}
	h := uint32(exp)<<10 | mant>>13
	rem := mant & 0x1fff
	if rem > 0x1000 || rem == 0x1000 && h&1 == 1 {
		h++
	}
	return sign | uint16(h)
}
