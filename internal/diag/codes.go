package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedBlockComment Code = 1002
	LexUnterminatedString       Code = 1003
	LexBadNumber                Code = 1004

	// Препроцессор
	PreInfo                    Code = 1500
	PreMalformedDirective      Code = 1501
	PreUnknownDirective        Code = 1502
	PreUnterminatedConditional Code = 1503
	PreUnmatchedDirective      Code = 1504
	PreElseAfterElse           Code = 1505
	PreMacroArity              Code = 1506
	PreBadExpression           Code = 1507
	PreIncludeNotFound         Code = 1508
	PreIncludeDepth            Code = 1509
	PreUserError               Code = 1510
	PreUserWarning             Code = 1511
	PreMacroRedefined          Code = 1512
	PreUnterminatedArgs        Code = 1513

	// Синтаксические
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynUnexpectedEOF   Code = 2002
	SynTrailingInput   Code = 2003
	SynForeignDialect  Code = 2004

	// Семантические
	SemaInfo                   Code = 3000
	SemaError                  Code = 3001
	SemaUnresolvedSymbol       Code = 3002
	SemaDuplicateSymbol        Code = 3003
	SemaTypeMismatch           Code = 3004
	SemaNoOverload             Code = 3005
	SemaAmbiguousOverload      Code = 3006
	SemaCyclicMixin            Code = 3007
	SemaMissingOverride        Code = 3008
	SemaOverrideWithoutBase    Code = 3009
	SemaAbstractMismatch       Code = 3010
	SemaAbstractNotImplemented Code = 3011
	SemaNotAssignable          Code = 3012
	SemaInvalidSwizzle         Code = 3013
	SemaUnknownMember          Code = 3014
	SemaStreamNoWriter         Code = 3015
	SemaMissingReturn          Code = 3016
	SemaJumpOutsideLoop        Code = 3017
	SemaDiscardOutsidePixel    Code = 3018
	SemaProfileUnsupported     Code = 3019
	SemaNotCallable            Code = 3020
	SemaInvalidOperands        Code = 3021
	SemaCompositionUnbound     Code = 3022
	SemaUnknownShader          Code = 3023
	SemaBaseWithoutParent      Code = 3024
	SemaConstantRequired       Code = 3025
	SemaImplicitTruncation     Code = 3026
	SemaUnknownType            Code = 3027
	SemaInvalidEntryPoint      Code = 3028
	SemaStaticMemberAccess     Code = 3029
	SemaGenericArguments       Code = 3030

	// I/O
	IOLoadFileError Code = 4001

	// Проект
	ProjInfo            Code = 5000
	ProjInvalidManifest Code = 5001
	ProjUnknownProfile  Code = 5002
	ProjMissingSource   Code = 5003

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexUnterminatedString:       "Unterminated string",
		LexBadNumber:                "Malformed number literal",
		PreInfo:                     "Preprocessor information",
		PreMalformedDirective:       "Malformed preprocessor directive",
		PreUnknownDirective:         "Unknown preprocessor directive",
		PreUnterminatedConditional:  "Unterminated conditional block",
		PreUnmatchedDirective:       "Directive without matching #if",
		PreElseAfterElse:            "#elif or #else after #else",
		PreMacroArity:               "Macro argument count mismatch",
		PreBadExpression:            "Invalid preprocessor expression",
		PreIncludeNotFound:          "Include not found",
		PreIncludeDepth:             "Include nesting too deep",
		PreUserError:                "#error directive",
		PreUserWarning:              "#warning directive",
		PreMacroRedefined:           "Macro redefined",
		PreUnterminatedArgs:         "Unterminated macro argument list",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected input",
		SynUnexpectedEOF:            "Unexpected end of input",
		SynTrailingInput:            "Unexpected input after declarations",
		SynForeignDialect:           "Code in another shading language",
		SemaInfo:                    "Semantic information",
		SemaError:                   "Semantic error",
		SemaUnresolvedSymbol:        "Unresolved symbol",
		SemaDuplicateSymbol:         "Duplicate symbol",
		SemaTypeMismatch:            "Type mismatch",
		SemaNoOverload:              "No matching overload",
		SemaAmbiguousOverload:       "Ambiguous overload",
		SemaCyclicMixin:             "Cyclic mixin dependency",
		SemaMissingOverride:         "Method hides a base method without override",
		SemaOverrideWithoutBase:     "Override without base method",
		SemaAbstractMismatch:        "Abstract declaration mismatch",
		SemaAbstractNotImplemented:  "Abstract method not implemented",
		SemaNotAssignable:           "Expression is not assignable",
		SemaInvalidSwizzle:          "Invalid swizzle",
		SemaUnknownMember:           "Unknown member",
		SemaStreamNoWriter:          "Stream read without upstream writer",
		SemaMissingReturn:           "Missing return",
		SemaJumpOutsideLoop:         "break or continue outside of a loop",
		SemaDiscardOutsidePixel:     "discard outside of the pixel stage",
		SemaProfileUnsupported:      "Not supported by the target profile",
		SemaNotCallable:             "Expression is not callable",
		SemaInvalidOperands:         "Invalid operands",
		SemaCompositionUnbound:      "Composition is not bound",
		SemaUnknownShader:           "Unknown shader class",
		SemaBaseWithoutParent:       "base used without a base implementation",
		SemaConstantRequired:        "Constant expression required",
		SemaImplicitTruncation:      "Implicit vector truncation",
		SemaUnknownType:             "Unknown type",
		SemaInvalidEntryPoint:       "Invalid entry point signature",
		SemaStaticMemberAccess:      "Instance member used from static method",
		SemaGenericArguments:        "Wrong generic arguments",
		IOLoadFileError:             "I/O load file error",
		ProjInfo:                    "Project information",
		ProjInvalidManifest:         "Invalid project manifest",
		ProjUnknownProfile:          "Unknown target profile",
		ProjMissingSource:           "Permutation source not found",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
	}
)

// ID renders the stable category-prefixed identifier, e.g. SEM3002.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 1500:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 1500 && ic < 2000:
		return fmt.Sprintf("PRE%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Category returns the prefix of ID ("LEX", "SEM", ...).
func (c Code) Category() string {
	id := c.ID()
	for i, r := range id {
		if r >= '0' && r <= '9' {
			return id[:i]
		}
	}
	return id
}

// Fatal reports whether diagnostics with this code abort the unit.
func (c Code) Fatal() bool {
	switch c.Category() {
	case "LEX", "PRE", "SYN":
		return true
	}
	return false
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
