package symbols

import (
	"sdslc/internal/ast"
	"sdslc/internal/source"
	"sdslc/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolShader
	SymbolEffect
	SymbolStruct
	SymbolTypedef
	SymbolMethod
	SymbolMethodGroup
	SymbolVariable
	SymbolConstant
	SymbolParam
	SymbolComposition
	SymbolCBuffer
	SymbolIntrinsic
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolShader:
		return "shader"
	case SymbolEffect:
		return "effect"
	case SymbolStruct:
		return "struct"
	case SymbolTypedef:
		return "typedef"
	case SymbolMethod:
		return "method"
	case SymbolMethodGroup:
		return "method group"
	case SymbolVariable:
		return "variable"
	case SymbolConstant:
		return "constant"
	case SymbolParam:
		return "parameter"
	case SymbolComposition:
		return "composition"
	case SymbolCBuffer:
		return "cbuffer"
	case SymbolIntrinsic:
		return "intrinsic"
	default:
		return "invalid"
	}
}

// IsType reports symbols that name a type.
func (k SymbolKind) IsType() bool { return k == SymbolStruct || k == SymbolTypedef }

// Storage is where a variable lives.
type Storage uint8

const (
	StorageNone Storage = iota
	StorageLocal
	StorageParam
	StorageStream
	StorageStatic
	StorageUniform
	StorageResource
	StorageGroupShared
)

func (s Storage) String() string {
	switch s {
	case StorageLocal:
		return "local"
	case StorageParam:
		return "param"
	case StorageStream:
		return "stream"
	case StorageStatic:
		return "static"
	case StorageUniform:
		return "uniform"
	case StorageResource:
		return "resource"
	case StorageGroupShared:
		return "groupshared"
	default:
		return "none"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagStage SymbolFlags = 1 << iota
	SymbolFlagOverride
	SymbolFlagAbstract
	SymbolFlagClone
	SymbolFlagConst
	SymbolFlagStatic
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, l := range []struct {
		flag SymbolFlags
		name string
	}{
		{SymbolFlagStage, "stage"},
		{SymbolFlagOverride, "override"},
		{SymbolFlagAbstract, "abstract"},
		{SymbolFlagClone, "clone"},
		{SymbolFlagConst, "const"},
		{SymbolFlagStatic, "static"},
	} {
		if f&l.flag != 0 {
			labels = append(labels, l.name)
		}
	}
	return labels
}

// Symbol is one named entity. Its identity is (Name, Kind, Storage, stage
// flag); Owner names the shader class that declared it, if any.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Storage Storage
	Flags   SymbolFlags
	Type    *types.Type
	Span    source.Span
	Owner   string
	Decl    ast.DeclID
	// Methods holds the overloads of a MethodGroup; it only grows.
	Methods []*Symbol
	// Semantic is the HLSL semantic of a stream or parameter.
	Semantic string
}

func (s *Symbol) Has(f SymbolFlags) bool { return s != nil && s.Flags&f != 0 }

// IsStage reports members shared by the whole composition.
func (s *Symbol) IsStage() bool { return s.Has(SymbolFlagStage) }

// Overloads returns the methods a call to this symbol may resolve to.
func (s *Symbol) Overloads() []*Symbol {
	switch s.Kind {
	case SymbolMethod:
		return []*Symbol{s}
	case SymbolMethodGroup:
		return s.Methods
	}
	return nil
}
