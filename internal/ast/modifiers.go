package ast

import "strings"

// Modifiers is the set of storage, interpolation and inheritance keywords on
// a declaration or parameter.
type Modifiers uint32

const (
	ModStage Modifiers = 1 << iota
	ModStream
	ModStatic
	ModConst
	ModGroupShared
	ModNoInterpolation
	ModLinear
	ModCentroid
	ModNoPerspective
	ModSample
	ModRowMajor
	ModColumnMajor
	ModExtern
	ModUniform
	ModOverride
	ModAbstract
	ModClone
	ModIn
	ModOut
	ModInOut
)

// ModifierByKeyword maps source keywords to flags.
var ModifierByKeyword = map[string]Modifiers{
	"stage":           ModStage,
	"stream":          ModStream,
	"static":          ModStatic,
	"const":           ModConst,
	"groupshared":     ModGroupShared,
	"nointerpolation": ModNoInterpolation,
	"linear":          ModLinear,
	"centroid":        ModCentroid,
	"noperspective":   ModNoPerspective,
	"sample":          ModSample,
	"row_major":       ModRowMajor,
	"column_major":    ModColumnMajor,
	"extern":          ModExtern,
	"uniform":         ModUniform,
	"override":        ModOverride,
	"abstract":        ModAbstract,
	"clone":           ModClone,
	"in":              ModIn,
	"out":             ModOut,
	"inout":           ModInOut,
}

var modifierOrder = []string{
	"stage", "stream", "static", "const", "groupshared", "nointerpolation",
	"linear", "centroid", "noperspective", "sample", "row_major", "column_major",
	"extern", "uniform", "override", "abstract", "clone", "in", "out", "inout",
}

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

func (m Modifiers) String() string {
	var parts []string
	for _, kw := range modifierOrder {
		if m.Has(ModifierByKeyword[kw]) {
			parts = append(parts, kw)
		}
	}
	return strings.Join(parts, " ")
}

// Interpolation modifiers, applicable to stream variables and parameters.
const InterpolationMods = ModNoInterpolation | ModLinear | ModCentroid | ModNoPerspective | ModSample
