package types

import "strings"

var swizzleSets = [...]string{"xyzw", "rgba"}

// Swizzle resolves .xyz style member access on a scalar or vector. The
// component indices are returned in source order.
func Swizzle(t *Type, name string) (*Type, []uint32, bool) {
	if !t.IsScalar() && !t.IsVector() {
		return Invalid, nil, false
	}
	if len(name) == 0 || len(name) > 4 {
		return Invalid, nil, false
	}
	size := 1
	if t.IsVector() {
		size = int(t.Rows)
	}
	for _, set := range swizzleSets {
		idx := make([]uint32, 0, len(name))
		for i := 0; i < len(name); i++ {
			k := strings.IndexByte(set, name[i])
			if k < 0 || k >= size {
				idx = nil
				break
			}
			idx = append(idx, uint32(k))
		}
		if idx == nil {
			continue
		}
		if len(idx) == 1 {
			return ScalarOf(t.Scalar), idx, true
		}
		return VectorOf(t.Scalar, len(idx)), idx, true
	}
	return Invalid, nil, false
}

// HasDuplicates reports swizzles that name a component twice; those are not
// assignable.
func HasDuplicates(idx []uint32) bool {
	var seen uint32
	for _, i := range idx {
		if seen&(1<<i) != 0 {
			return true
		}
		seen |= 1 << i
	}
	return false
}
