package spirv

import (
	"fmt"
	"strings"
)

// DecodeString reads a literal string and returns it with the number of
// words it occupied.
func DecodeString(words []uint32) (string, int) {
	var sb strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(words)
}

// stringOperand is the word index of the literal string of ops that carry
// one.
var stringOperand = map[Op]int{
	OpName:          1,
	OpMemberName:    2,
	OpExtInstImport: 1,
	OpEntryPoint:    2,
}

// Disassemble renders a module one instruction per line with raw operand
// words; literal strings are shown quoted.
func Disassemble(module []byte) (string, error) {
	h, insts, err := Decode(module)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "; SPIR-V %s\n; Generator: %#08x\n; Bound: %d\n", h.VersionString(), h.Generator, h.Bound)
	for _, inst := range insts {
		sb.WriteString(inst.Op.String())
		words := inst.Words
		at, hasString := stringOperand[inst.Op]
		for i := 0; i < len(words); i++ {
			if hasString && i == at {
				s, n := DecodeString(words[i:])
				fmt.Fprintf(&sb, " %q", s)
				i += n - 1
				continue
			}
			fmt.Fprintf(&sb, " %d", words[i])
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
