package spirv

import (
	"fmt"

	"sdslc/internal/ast"
	"sdslc/internal/sema"
	"sdslc/internal/types"
)

// unaryGLSL maps float functions of one argument to GLSL.std.450.
var unaryGLSL = map[string]uint32{
	"acos": glslAcos, "asin": glslAsin, "atan": glslAtan, "ceil": glslCeil, "cos": glslCos,
	"cosh": glslCosh, "degrees": glslDegrees, "exp": glslExp, "exp2": glslExp2, "floor": glslFloor,
	"frac": glslFract, "log": glslLog, "log2": glslLog2, "radians": glslRadians, "round": glslRoundEven,
	"rsqrt": glslInvSqrt, "sin": glslSin, "sinh": glslSinh, "sqrt": glslSqrt, "tan": glslTan,
	"tanh": glslTanh, "trunc": glslTrunc, "length": glslLength, "normalize": glslNormalize,
	"determinant": glslDeterminant,
}

var binaryGLSL = map[string]uint32{
	"atan2": glslAtan2, "pow": glslPow, "step": glslStep, "cross": glslCross,
	"distance": glslDistance, "reflect": glslReflect,
}

var ternaryGLSL = map[string]uint32{
	"lerp": glslFMix, "smoothstep": glslSmoothStep, "refract": glslRefract, "faceforward": glslFaceForward,
}

var derivatives = map[string]Op{"ddx": OpDPdx, "ddy": OpDPdy, "fwidth": OpFwidth}

// intrinsic lowers a builtin call through GLSL.std.450 or a core opcode.
// Arguments already have the parameter types of the chosen overload.
func (e *emitter) intrinsic(x *sema.IntrinsicCall) uint32 {
	if x.Receiver != nil {
		return e.method(x)
	}
	args := make([]uint32, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.expr(a)
	}
	rt := x.Type()
	var at *types.Type
	if len(x.Args) > 0 {
		at = x.Args[0].Type()
	}
	if inst, ok := unaryGLSL[x.Name]; ok {
		return e.extWise(rt, inst, args...)
	}
	if inst, ok := binaryGLSL[x.Name]; ok {
		return e.extWise(rt, inst, args...)
	}
	if inst, ok := ternaryGLSL[x.Name]; ok {
		return e.extWise(rt, inst, args...)
	}
	if op, ok := derivatives[x.Name]; ok {
		return e.opWise(rt, op, args...)
	}

	switch x.Name {
	case "saturate":
		return e.extWise(rt, glslFClamp, args[0], e.zero(rt), e.one(rt))
	case "fmod":
		return e.opWise(rt, OpFRem, args...)
	case "abs":
		switch {
		case rt.Scalar.IsFloat():
			return e.extWise(rt, glslFAbs, args[0])
		case rt.Scalar.IsSigned():
			return e.extWise(rt, glslSAbs, args[0])
		}
		return args[0]
	case "min", "max", "clamp":
		return e.extWise(rt, minMax(x.Name, rt.Scalar), args...)
	case "mad":
		if rt.Scalar.IsFloat() {
			return e.extWise(rt, glslFma, args...)
		}
		return e.binary(ast.BinAdd, rt, rt, e.binary(ast.BinMul, rt, rt, args[0], args[1]), args[2])
	case "sign":
		return e.sign(at, rt, args[0])
	case "isnan":
		return e.opWise(rt, OpIsNan, args[0])
	case "isinf":
		return e.opWise(rt, OpIsInf, args[0])
	case "all", "any":
		return e.reduceBool(x.Name == "all", at, args[0])
	case "dot":
		return e.dot(at, args[0], args[1])
	case "transpose":
		return e.value(OpTranspose, e.typeID(rt), args[0])
	case "mul":
		return e.mul(x.Args[0].Type(), x.Args[1].Type(), rt, args[0], args[1])
	case "GroupMemoryBarrierWithGroupSync":
		scope := e.constUint(scopeWorkgroup)
		e.emit(OpControlBarrier, scope, scope, e.constUint(semanticsAcquireRelease|semanticsWorkgroupMemory))
		return 0
	case "WaveActiveSum", "WaveActiveMin", "WaveActiveMax":
		e.b.Require(CapabilityGroupNonUniform)
		e.b.Require(CapabilityGroupNonUniformArithmetic)
		return e.value(waveOp(x.Name, rt.Scalar), e.typeID(rt), e.constUint(scopeSubgroup), groupOperationReduce, args[0])
	case "WaveActiveAllTrue", "WaveActiveAnyTrue":
		e.b.Require(CapabilityGroupNonUniform)
		e.b.Require(CapabilityGroupNonUniformVote)
		op := OpGroupNonUniformAll
		if x.Name == "WaveActiveAnyTrue" {
			op = OpGroupNonUniformAny
		}
		return e.value(op, e.typeID(rt), e.constUint(scopeSubgroup), args[0])
	case "WaveIsFirstLane":
		e.b.Require(CapabilityGroupNonUniform)
		return e.value(OpGroupNonUniformElect, e.typeID(rt), e.constUint(scopeSubgroup))
	}
	e.fail(fmt.Errorf("intrinsic %s has no lowering", x.Name))
	return 0
}

func minMax(name string, s types.Scalar) uint32 {
	var f, si, u uint32
	switch name {
	case "min":
		f, si, u = glslFMin, glslSMin, glslUMin
	case "max":
		f, si, u = glslFMax, glslSMax, glslUMax
	default:
		f, si, u = glslFClamp, glslSClamp, glslUClamp
	}
	switch {
	case s.IsFloat():
		return f
	case s.IsSigned():
		return si
	}
	return u
}

func waveOp(name string, s types.Scalar) Op {
	switch name {
	case "WaveActiveMin":
		switch {
		case s.IsFloat():
			return OpGroupNonUniformFMin
		case s.IsSigned():
			return OpGroupNonUniformSMin
		}
		return OpGroupNonUniformUMin
	case "WaveActiveMax":
		switch {
		case s.IsFloat():
			return OpGroupNonUniformFMax
		case s.IsSigned():
			return OpGroupNonUniformSMax
		}
		return OpGroupNonUniformUMax
	}
	if s.IsFloat() {
		return OpGroupNonUniformFAdd
	}
	return OpGroupNonUniformIAdd
}

// extWise applies an extended instruction, column by column for matrices.
func (e *emitter) extWise(t *types.Type, inst uint32, args ...uint32) uint32 {
	if t.IsMatrix() {
		return e.perColumn(t, t, func(ct, _ *types.Type, c ...uint32) uint32 { return e.ext(ct, inst, c...) }, args...)
	}
	return e.ext(t, inst, args...)
}

// opWise is extWise for core opcodes. Matrix operands must all be
// matrices; the result may change scalar type.
func (e *emitter) opWise(t *types.Type, op Op, args ...uint32) uint32 {
	if t.IsMatrix() {
		return e.perColumn(t, t, func(ct, _ *types.Type, c ...uint32) uint32 {
			return e.value(op, e.typeID(ct), c...)
		}, args...)
	}
	return e.value(op, e.typeID(t), args...)
}

// sign computes in the argument type and converts to the int result.
func (e *emitter) sign(at, rt *types.Type, v uint32) uint32 {
	var s uint32
	switch {
	case at.Scalar.IsFloat():
		s = e.extWise(at, glslFSign, v)
	case at.Scalar.IsSigned():
		s = e.extWise(at, glslSSign, v)
	default:
		nz := e.cast(v, at, at.WithScalar(types.ScalarBool))
		return e.cast(nz, at.WithScalar(types.ScalarBool), rt)
	}
	return e.cast(s, at, rt)
}

// reduceBool is all() and any(): components are tested against zero and
// combined.
func (e *emitter) reduceBool(all bool, t *types.Type, v uint32) uint32 {
	bt := t.WithScalar(types.ScalarBool)
	if t.IsMatrix() {
		combine := OpLogicalOr
		if all {
			combine = OpLogicalAnd
		}
		var acc uint32
		for c := 0; c < int(t.Cols); c++ {
			col := e.value(OpCompositeExtract, e.typeID(t.Column()), v, uint32(c))
			r := e.reduceBool(all, t.Column(), col)
			if c == 0 {
				acc = r
				continue
			}
			acc = e.value(combine, e.typeID(types.Bool), acc, r)
		}
		return acc
	}
	b := e.cast(v, t, bt)
	if t.Components() == 1 {
		return b
	}
	op := OpAny
	if all {
		op = OpAll
	}
	return e.value(op, e.typeID(types.Bool), b)
}

func (e *emitter) dot(t *types.Type, a, b uint32) uint32 {
	st := types.ScalarOf(t.Scalar)
	if t.Components() == 1 {
		return e.binary(ast.BinMul, st, st, a, b)
	}
	if t.Scalar.IsFloat() {
		return e.value(OpDot, e.typeID(st), a, b)
	}
	prod := e.binary(ast.BinMul, t, t, a, b)
	sum := e.value(OpCompositeExtract, e.typeID(st), prod, 0)
	for i := 1; i < int(t.Rows); i++ {
		c := e.value(OpCompositeExtract, e.typeID(st), prod, uint32(i))
		sum = e.binary(ast.BinAdd, st, st, sum, c)
	}
	return sum
}

// mul treats a left vector as a row and a right vector as a column.
func (e *emitter) mul(at, bt, rt *types.Type, a, b uint32) uint32 {
	switch {
	case at.Components() == 1 && bt.Components() == 1:
		return e.binary(ast.BinMul, rt, rt, a, b)
	case at.Components() == 1:
		return e.scale(bt, b, a)
	case bt.Components() == 1:
		return e.scale(at, a, b)
	case at.IsVector() && bt.IsVector():
		return e.dot(at, a, b)
	case at.IsVector():
		return e.value(OpVectorTimesMatrix, e.typeID(rt), a, b)
	case bt.IsVector():
		return e.value(OpMatrixTimesVector, e.typeID(rt), a, b)
	}
	return e.value(OpMatrixTimesMatrix, e.typeID(rt), a, b)
}

// scale multiplies a vector or matrix by a scalar.
func (e *emitter) scale(t *types.Type, v, s uint32) uint32 {
	switch {
	case t.IsMatrix():
		return e.value(OpMatrixTimesScalar, e.typeID(t), v, s)
	case t.Scalar.IsFloat():
		return e.value(OpVectorTimesScalar, e.typeID(t), v, s)
	}
	return e.binary(ast.BinMul, t, t, v, e.splat(s, t))
}

// Texture and buffer methods -------------------------------------------------

func (e *emitter) method(x *sema.IntrinsicCall) uint32 {
	recv := x.Receiver.Type()
	if recv.Kind == types.KindBuffer {
		elem := &sema.Index{Value: x.Receiver, Index: x.Args[0]}
		r, ok := e.ref(elem)
		if !ok {
			e.fail(fmt.Errorf("buffer receiver of %s is not addressable", x.Name))
			return 0
		}
		r.t = recv.Elem
		return e.loadRef(r)
	}

	img := e.expr(x.Receiver)
	imgType := e.typeID(recv)
	texel := types.VectorOf(recv.Elem.Scalar, 4)
	if x.Name == "Load" {
		coords, lod := e.splitLoad(x.Args[0].Type(), e.expr(x.Args[0]))
		v := e.value(OpImageFetch, e.typeID(texel), img, coords, imageOperandLod, lod)
		return e.fromTexel(v, texel, x.Type())
	}

	args := make([]uint32, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.expr(a)
	}
	si := e.value(OpSampledImage, e.sampledImageType(imgType), img, args[0])
	coords := args[1]
	switch x.Name {
	case "Sample":
		v := e.value(OpImageSampleImplicitLod, e.typeID(texel), si, coords)
		return e.fromTexel(v, texel, x.Type())
	case "SampleLevel":
		v := e.value(OpImageSampleExplicitLod, e.typeID(texel), si, coords, imageOperandLod, args[2])
		return e.fromTexel(v, texel, x.Type())
	case "SampleBias":
		v := e.value(OpImageSampleImplicitLod, e.typeID(texel), si, coords, imageOperandBias, args[2])
		return e.fromTexel(v, texel, x.Type())
	case "SampleCmp":
		return e.value(OpImageSampleDrefImplLod, e.typeID(x.Type()), si, coords, args[2])
	case "SampleCmpLevelZero":
		zero := e.zero(types.Float)
		return e.value(OpImageSampleDrefExplLod, e.typeID(x.Type()), si, coords, args[2], imageOperandLod, zero)
	}
	e.fail(fmt.Errorf("texture method %s has no lowering", x.Name))
	return 0
}

// splitLoad separates texel coordinates from the trailing mip level.
func (e *emitter) splitLoad(t *types.Type, v uint32) (coords, lod uint32) {
	n := int(t.Rows) - 1
	st := types.ScalarOf(t.Scalar)
	lod = e.value(OpCompositeExtract, e.typeID(st), v, uint32(n))
	if n == 1 {
		return e.value(OpCompositeExtract, e.typeID(st), v, 0), lod
	}
	sel := make([]uint32, n)
	for i := range sel {
		sel[i] = uint32(i)
	}
	return e.value(OpVectorShuffle, e.typeID(types.VectorOf(t.Scalar, n)), append([]uint32{v, v}, sel...)...), lod
}

// fromTexel narrows a four-component texel to the element type.
func (e *emitter) fromTexel(v uint32, texel, elem *types.Type) uint32 {
	if elem.Components() == 4 {
		return v
	}
	return e.convert(v, texel, elem)
}
