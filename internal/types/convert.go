package types

// ConvKind classifies an implicit conversion.
type ConvKind uint8

const (
	ConvInvalid ConvKind = iota
	ConvExact
	ConvPromotion
	ConvSplat
	ConvTruncation
)

func (k ConvKind) String() string {
	switch k {
	case ConvExact:
		return "exact"
	case ConvPromotion:
		return "promotion"
	case ConvSplat:
		return "splat"
	case ConvTruncation:
		return "truncation"
	}
	return "invalid"
}

// Conversion costs; overload ranking sums them over all arguments.
const (
	costSplat      = 10
	costTruncation = 20
)

// Conversion is the result of Convert.
type Conversion struct {
	Kind ConvKind
	Cost int
}

// OK reports whether the conversion is allowed implicitly.
func (c Conversion) OK() bool { return c.Kind != ConvInvalid }

// Convert classifies the implicit conversion from -> to.
func Convert(from, to *Type) Conversion {
	if from.IsInvalid() || to.IsInvalid() {
		// ошибка уже сообщена; не плодим вторую
		return Conversion{Kind: ConvExact}
	}
	if Equal(from, to) {
		return Conversion{Kind: ConvExact}
	}
	if !from.IsNumeric() || !to.IsNumeric() {
		return Conversion{Kind: ConvInvalid}
	}
	sc := scalarCost(from.Scalar, to.Scalar)
	kind := ConvExact
	if sc > 0 {
		kind = ConvPromotion
	}
	fn, tn := from.Components(), to.Components()
	switch {
	case sameShape(from, to):
		return Conversion{Kind: kind, Cost: sc}
	case fn == 1 && tn == 1:
		// float1 <-> float
		return Conversion{Kind: kind, Cost: sc + 1}
	case fn == 1:
		return Conversion{Kind: ConvSplat, Cost: sc + costSplat}
	case from.IsVector() && to.IsVector() && fn > tn:
		return Conversion{Kind: ConvTruncation, Cost: sc + costTruncation}
	case from.IsVector() && to.IsScalar():
		return Conversion{Kind: ConvTruncation, Cost: sc + costTruncation}
	case from.IsMatrix() && to.IsMatrix() && from.Rows >= to.Rows && from.Cols >= to.Cols:
		return Conversion{Kind: ConvTruncation, Cost: sc + costTruncation}
	case from.IsMatrix() && to.IsScalar():
		return Conversion{Kind: ConvTruncation, Cost: sc + costTruncation}
	}
	return Conversion{Kind: ConvInvalid}
}

func sameShape(a, b *Type) bool {
	return a.Kind == b.Kind && a.Rows == b.Rows && a.Cols == b.Cols
}

// scalarCost ranks scalar conversions: widening is cheap, narrowing and
// float to int cost more.
func scalarCost(from, to Scalar) int {
	switch {
	case from == to:
		return 0
	case from == ScalarBool || to == ScalarBool:
		return 3
	case from.IsInt() && to.IsInt():
		return 1
	case from.IsInt() && to.IsFloat():
		return 2
	case from.IsFloat() && to.IsFloat():
		if to.rank() > from.rank() {
			return 1
		}
		return 3
	}
	// float -> int
	return 4
}

// Common returns the type both operands of a binary arithmetic operator are
// converted to: the higher scalar rank and the larger shape, with scalars
// splatted and vectors truncated to the smaller one.
func Common(a, b *Type) *Type {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Invalid
	}
	s := a.Scalar
	if b.Scalar.rank() > s.rank() {
		s = b.Scalar
	}
	switch {
	case a.Components() == 1 && b.Components() == 1:
		if a.IsVector() && b.IsVector() {
			return VectorOf(s, 1)
		}
		return ScalarOf(s)
	case a.Components() == 1:
		return b.WithScalar(s)
	case b.Components() == 1:
		return a.WithScalar(s)
	case a.IsVector() && b.IsVector():
		n := min(a.Rows, b.Rows)
		return VectorOf(s, int(n))
	case a.IsMatrix() && b.IsMatrix():
		return MatrixOf(s, int(min(a.Rows, b.Rows)), int(min(a.Cols, b.Cols)))
	}
	return Invalid
}
