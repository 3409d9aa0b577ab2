// Package intrinsics holds the declarative table of builtin functions and
// texture methods and resolves calls against it.
package intrinsics

import (
	"strings"

	"sdslc/internal/target"
	"sdslc/internal/types"
)

// Param is one formal parameter of a signature.
type Param struct {
	Qual     types.Qualifier
	RowMajor bool
	Class    Class
}

// Signature is one overload of an intrinsic.
type Signature struct {
	Name       string
	Params     []Param
	Ret        Return
	MinProfile target.Profile
	// Check validates shapes the classes can not express (mul, transpose)
	// and may replace the parameter and return types.
	Check func(params []*types.Type) ([]*types.Type, *types.Type, bool)
}

func (s *Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.Class.String()
		if p.Qual != types.QualIn {
			parts[i] = p.Qual.String() + " " + parts[i]
		}
	}
	return s.Ret.String() + " " + s.Name + "(" + strings.Join(parts, ", ") + ")"
}

var (
	functions = make(map[string][]*Signature)
	methods   = make(map[string][]*Signature)
)

func register(sig *Signature) {
	functions[sig.Name] = append(functions[sig.Name], sig)
}

func registerMethod(receiver string, sig *Signature) {
	key := receiver + "." + sig.Name
	methods[key] = append(methods[key], sig)
}

func init() {
	registerMath()
	registerGeometry()
	registerMul()
	registerSync()
	registerTextureMethods()
}

// IsIntrinsic reports whether name is a builtin function.
func IsIntrinsic(name string) bool {
	_, ok := functions[name]
	return ok
}

// Signatures returns the overloads of a builtin function.
func Signatures(name string) []*Signature {
	return functions[name]
}

// receiverKey maps an object type to its method table key.
func receiverKey(t *types.Type) string {
	switch t.Kind {
	case types.KindTexture:
		return t.Dim.String()
	case types.KindBuffer:
		return t.Name
	}
	return ""
}

// HasMethods reports whether values of t have intrinsic methods.
func HasMethods(t *types.Type) bool {
	return receiverKey(t) != ""
}
