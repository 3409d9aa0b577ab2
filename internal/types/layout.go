package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Layout is the std140 placement of a uniform block member.
type Layout struct {
	Offset       uint32
	Size         uint32
	Align        uint32
	ArrayStride  uint32
	MatrixStride uint32
}

func roundUp(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// Std140 returns size and alignment of t in a uniform block. rowMajor
// affects matrices only.
func Std140(t *Type, rowMajor bool) (size, align uint32, err error) {
	switch t.Kind {
	case KindScalar:
		n := t.Scalar.Bits() / 8
		return n, n, nil
	case KindVector:
		n := t.Scalar.Bits() / 8
		switch t.Rows {
		case 1:
			return n, n, nil
		case 2:
			return 2 * n, 2 * n, nil
		case 3:
			return 3 * n, 4 * n, nil
		}
		return 4 * n, 4 * n, nil
	case KindMatrix:
		// матрица = массив векторов со stride 16
		vectors, length := t.Cols, t.Rows
		if rowMajor {
			vectors, length = t.Rows, t.Cols
		}
		_, va, err := Std140(VectorOf(t.Scalar, int(length)), false)
		if err != nil {
			return 0, 0, err
		}
		stride := roundUp(va, 16)
		return stride * uint32(vectors), stride, nil
	case KindArray:
		if t.Len == ArrayUnsized {
			return 0, 0, fmt.Errorf("unsized array %s in uniform block", t)
		}
		stride, a, err := arrayStride(t.Elem)
		if err != nil {
			return 0, 0, err
		}
		return stride * t.Len, a, nil
	case KindStruct:
		_, size, align, err := StructLayout(t.Fields)
		return size, align, err
	}
	return 0, 0, fmt.Errorf("type %s cannot be placed in a uniform block", t)
}

func arrayStride(elem *Type) (uint32, uint32, error) {
	size, align, err := Std140(elem, false)
	if err != nil {
		return 0, 0, err
	}
	align = roundUp(align, 16)
	return roundUp(size, align), align, nil
}

// ArrayStride is the std140 stride of elem[].
func ArrayStride(elem *Type) (uint32, error) {
	s, _, err := arrayStride(elem)
	return s, err
}

// MatrixStride is always 16 under std140 for 32-bit components.
func MatrixStride(t *Type, rowMajor bool) uint32 {
	_, a, err := Std140(t, rowMajor)
	if err != nil {
		return 16
	}
	return a
}

// StructLayout places fields in declaration order.
func StructLayout(fields []Field) ([]Layout, uint32, uint32, error) {
	out := make([]Layout, len(fields))
	var off, maxAlign uint32 = 0, 16
	for i, f := range fields {
		size, align, err := Std140(f.Type, f.RowMajor)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if f.Type.Kind == KindStruct {
			align = roundUp(align, 16)
		}
		off = roundUp(off, align)
		l := Layout{Offset: off, Size: size, Align: align}
		switch f.Type.Kind {
		case KindArray:
			l.ArrayStride, _ = ArrayStride(f.Type.Elem)
			if f.Type.Elem.IsMatrix() {
				l.MatrixStride = MatrixStride(f.Type.Elem, f.RowMajor)
			}
		case KindMatrix:
			l.MatrixStride = MatrixStride(f.Type, f.RowMajor)
		}
		out[i] = l
		next := uint64(off) + uint64(size)
		if off, err = safecast.Conv[uint32](next); err != nil {
			return nil, 0, 0, fmt.Errorf("field %s: block too large: %w", f.Name, err)
		}
		maxAlign = max(maxAlign, align)
	}
	return out, roundUp(off, maxAlign), maxAlign, nil
}
