package types

// Equal compares types: builtin numeric types by identity, everything else
// structurally.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindScalar, KindVector, KindMatrix, KindInvalid:
		return false
	case KindVoid, KindStreams:
		return true
	case KindArray:
		return a.Len == b.Len && Equal(a.Elem, b.Elem)
	case KindStruct, KindCBuffer:
		if a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindFunction:
		if !Equal(a.Ret, b.Ret) || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i].Qual != b.Params[i].Qual || !Equal(a.Params[i].Type, b.Params[i].Type) {
				return false
			}
		}
		return true
	case KindShader, KindEffect, KindSampler:
		return a.Name == b.Name
	case KindTexture:
		return a.Dim == b.Dim && Equal(a.Elem, b.Elem)
	case KindBuffer:
		return a.Name == b.Name && Equal(a.Elem, b.Elem)
	}
	return false
}

// SameParams reports signatures with equal parameter types and qualifiers;
// overrides and duplicate overloads are detected with it.
func SameParams(a, b *Type) bool {
	if a == nil || b == nil || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Qual != b.Params[i].Qual || !Equal(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}
