package scan

var reserved = map[string]struct{}{
	"shader": {}, "effect": {}, "namespace": {}, "using": {}, "struct": {},
	"cbuffer": {}, "rgroup": {}, "compose": {}, "mixin": {}, "typedef": {},
	"stage": {}, "stream": {}, "static": {}, "const": {}, "override": {},
	"abstract": {}, "clone": {}, "uniform": {}, "extern": {}, "groupshared": {},
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "default": {}, "return": {}, "break": {}, "continue": {},
	"discard": {}, "true": {}, "false": {}, "in": {}, "out": {}, "inout": {},
	"streams": {}, "base": {}, "this": {},
}

// IsReserved reports whether word cannot be used as an identifier.
// Type names such as float4 are ordinary identifiers resolved by sema.
func IsReserved(word string) bool {
	_, ok := reserved[word]
	return ok
}

// IsIdentStart reports whether b may start an identifier.
func IsIdentStart(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// IsIdentPart reports whether b may continue an identifier.
func IsIdentPart(b byte) bool {
	return IsIdentStart(b) || IsDigit(b)
}

func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return IsDigit(b) || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
