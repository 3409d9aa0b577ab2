package dialect

import "fmt"

// Kind is a shading language a source file may resemble.
type Kind uint8

const (
	Unknown Kind = iota
	GLSL
	WGSL
	Metal

	kindCount
)

func (k Kind) String() string {
	switch k {
	case GLSL:
		return "GLSL"
	case WGSL:
		return "WGSL"
	case Metal:
		return "Metal"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("dialect.Kind(%s)", k.String())
}
