package intrinsics

import (
	"sdslc/internal/target"
	"sdslc/internal/types"
)

func anyOf(b Base, slot int) Class  { return Class{Base: b, Shape: ShapeAny, Slot: slot} }
func sv(b Base, slot int) Class     { return Class{Base: b, Shape: ShapeScalarOrVector, Slot: slot} }
func scalar(b Base, slot int) Class { return Class{Base: b, Shape: ShapeScalar, Slot: slot} }
func vec(b Base, n, slot int) Class { return Class{Base: b, Shape: ShapeVector, Size: n, Slot: slot} }
func mat(b Base, slot int) Class    { return Class{Base: b, Shape: ShapeMatrix, Slot: slot} }
func concrete(t *types.Type) Class  { return Class{Base: BaseConcrete, Type: t} }
func in(classes ...Class) []Param {
	ps := make([]Param, len(classes))
	for i, c := range classes {
		ps[i] = Param{Class: c}
	}
	return ps
}

var (
	retSlot1   = Return{Kind: RetSlot, Slot: 1}
	retScalar1 = Return{Kind: RetScalarOf, Slot: 1}
	retVoid    = Return{Kind: RetVoid}
)

func retType(t *types.Type) Return { return Return{Kind: RetConcrete, Type: t} }

func shapeOf(s types.Scalar) Return { return Return{Kind: RetShapeOf, Slot: 1, Scalar: s} }

func registerMath() {
	// T f(T) над float
	for _, name := range []string{
		"acos", "asin", "atan", "ceil", "cos", "cosh", "degrees", "exp", "exp2", "floor",
		"frac", "log", "log2", "radians", "round", "rsqrt", "saturate", "sin", "sinh",
		"sqrt", "tan", "tanh", "trunc", "ddx", "ddy", "fwidth",
	} {
		register(&Signature{Name: name, Params: in(anyOf(BaseAnyFloat, 1)), Ret: retSlot1})
	}
	for _, name := range []string{"atan2", "fmod", "pow", "step"} {
		register(&Signature{Name: name, Params: in(anyOf(BaseAnyFloat, 1), anyOf(BaseAnyFloat, 1)), Ret: retSlot1})
	}
	for _, name := range []string{"lerp", "smoothstep"} {
		register(&Signature{
			Name:   name,
			Params: in(anyOf(BaseAnyFloat, 1), anyOf(BaseAnyFloat, 1), anyOf(BaseAnyFloat, 1)),
			Ret:    retSlot1,
		})
	}
	for _, name := range []string{"clamp", "mad"} {
		register(&Signature{
			Name:   name,
			Params: in(anyOf(BaseAnyNumeric, 1), anyOf(BaseAnyNumeric, 1), anyOf(BaseAnyNumeric, 1)),
			Ret:    retSlot1,
		})
	}
	for _, name := range []string{"max", "min"} {
		register(&Signature{Name: name, Params: in(anyOf(BaseAnyNumeric, 1), anyOf(BaseAnyNumeric, 1)), Ret: retSlot1})
	}
	register(&Signature{Name: "abs", Params: in(anyOf(BaseAnyNumeric, 1)), Ret: retSlot1})
	register(&Signature{Name: "sign", Params: in(anyOf(BaseAnyNumeric, 1)), Ret: shapeOf(types.ScalarInt)})
	for _, name := range []string{"isinf", "isnan"} {
		register(&Signature{Name: name, Params: in(anyOf(BaseAnyFloat, 1)), Ret: shapeOf(types.ScalarBool)})
	}
	for _, name := range []string{"all", "any"} {
		register(&Signature{Name: name, Params: in(anyOf(BaseAnyScalar, 1)), Ret: retType(types.Bool)})
	}
}

func registerGeometry() {
	register(&Signature{Name: "cross", Params: in(vec(BaseAnyFloat, 3, 1), vec(BaseAnyFloat, 3, 1)), Ret: retSlot1})
	register(&Signature{Name: "dot", Params: in(sv(BaseAnyNumeric, 1), sv(BaseAnyNumeric, 1)), Ret: retScalar1})
	register(&Signature{Name: "length", Params: in(sv(BaseAnyFloat, 1)), Ret: retScalar1})
	register(&Signature{Name: "distance", Params: in(sv(BaseAnyFloat, 1), sv(BaseAnyFloat, 1)), Ret: retScalar1})
	register(&Signature{Name: "normalize", Params: in(sv(BaseAnyFloat, 1)), Ret: retSlot1})
	register(&Signature{Name: "reflect", Params: in(sv(BaseAnyFloat, 1), sv(BaseAnyFloat, 1)), Ret: retSlot1})
	register(&Signature{
		Name:   "refract",
		Params: in(sv(BaseAnyFloat, 1), sv(BaseAnyFloat, 1), scalar(BaseAnyFloat, 2)),
		Ret:    retSlot1,
	})
	register(&Signature{
		Name:   "faceforward",
		Params: in(sv(BaseAnyFloat, 1), sv(BaseAnyFloat, 1), sv(BaseAnyFloat, 1)),
		Ret:    retSlot1,
	})
	register(&Signature{
		Name:   "determinant",
		Params: in(mat(BaseAnyFloat, 1)),
		Ret:    retScalar1,
		Check: func(p []*types.Type) ([]*types.Type, *types.Type, bool) {
			m := p[0]
			return p, types.ScalarOf(m.Scalar), m.Rows == m.Cols && m.Rows >= 2
		},
	})
	register(&Signature{
		Name:   "transpose",
		Params: in(mat(BaseAnyFloat, 1)),
		Ret:    retSlot1,
		Check: func(p []*types.Type) ([]*types.Type, *types.Type, bool) {
			m := p[0]
			return p, types.MatrixOf(m.Scalar, int(m.Cols), int(m.Rows)), true
		},
	})
}

// registerMul adds the nine shape combinations of mul. Vectors on the left
// are row vectors, on the right column vectors.
func registerMul() {
	shapes := []struct {
		class func(b Base) Class
		shape Shape
	}{
		{func(b Base) Class { return scalar(b, 0) }, ShapeScalar},
		{func(b Base) Class { return Class{Base: b, Shape: ShapeVector} }, ShapeVector},
		{func(b Base) Class { return mat(b, 0) }, ShapeMatrix},
	}
	for _, l := range shapes {
		for _, r := range shapes {
			base := BaseAnyNumeric
			if l.shape == ShapeMatrix || r.shape == ShapeMatrix {
				base = BaseAnyFloat
			}
			register(&Signature{
				Name:   "mul",
				Params: in(l.class(base), r.class(base)),
				Ret:    Return{Kind: RetConcrete},
				Check:  checkMul,
			})
		}
	}
}

func checkMul(p []*types.Type) ([]*types.Type, *types.Type, bool) {
	a, b := p[0], p[1]
	s := a.Scalar
	if b.Scalar > s {
		s = b.Scalar
	}
	a, b = a.WithScalar(s), b.WithScalar(s)
	out := []*types.Type{a, b}
	switch {
	case a.IsScalar():
		return out, b, true
	case b.IsScalar():
		return out, a, true
	case a.IsVector() && b.IsVector():
		return out, types.ScalarOf(s), a.Rows == b.Rows
	case a.IsVector() && b.IsMatrix():
		return out, types.VectorOf(s, int(b.Cols)), a.Rows == b.Rows
	case a.IsMatrix() && b.IsVector():
		return out, types.VectorOf(s, int(a.Rows)), a.Cols == b.Rows
	case a.IsMatrix() && b.IsMatrix():
		return out, types.MatrixOf(s, int(a.Rows), int(b.Cols)), a.Cols == b.Rows
	}
	return out, types.Invalid, false
}

func registerSync() {
	register(&Signature{Name: "GroupMemoryBarrierWithGroupSync", Ret: retVoid, MinProfile: target.SM5_0})
	for _, name := range []string{"WaveActiveSum", "WaveActiveMin", "WaveActiveMax"} {
		register(&Signature{Name: name, Params: in(sv(BaseAnyNumeric, 1)), Ret: retSlot1, MinProfile: target.SM6_0})
	}
	for _, name := range []string{"WaveActiveAllTrue", "WaveActiveAnyTrue"} {
		register(&Signature{Name: name, Params: in(concrete(types.Bool)), Ret: retType(types.Bool), MinProfile: target.SM6_0})
	}
	register(&Signature{Name: "WaveIsFirstLane", Ret: retType(types.Bool), MinProfile: target.SM6_0})
}

var retElem = Return{Kind: RetElem}

func registerTextureMethods() {
	for d := types.Dim1D; d <= types.Dim2DArray; d++ {
		recv := d.String()
		coords := concrete(types.VectorOf(types.ScalarFloat, d.Coords()))
		if d.Coords() == 1 {
			coords = concrete(types.Float)
		}
		sampler := concrete(types.SamplerState)
		cmp := concrete(types.SamplerComparisonState)
		f := concrete(types.Float)
		registerMethod(recv, &Signature{Name: "Sample", Params: in(sampler, coords), Ret: retElem})
		registerMethod(recv, &Signature{Name: "SampleLevel", Params: in(sampler, coords, f), Ret: retElem})
		registerMethod(recv, &Signature{Name: "SampleBias", Params: in(sampler, coords, f), Ret: retElem})
		registerMethod(recv, &Signature{Name: "SampleCmp", Params: in(cmp, coords, f), Ret: retType(types.Float)})
		registerMethod(recv, &Signature{Name: "SampleCmpLevelZero", Params: in(cmp, coords, f), Ret: retType(types.Float)})
		if d != types.DimCube {
			load := concrete(types.VectorOf(types.ScalarInt, d.Coords()+1))
			registerMethod(recv, &Signature{Name: "Load", Params: in(load), Ret: retElem})
		}
	}
	for _, b := range types.BufferNames {
		registerMethod(b, &Signature{Name: "Load", Params: in(concrete(types.Int)), Ret: retElem})
	}
}
