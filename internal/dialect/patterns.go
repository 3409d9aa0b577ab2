package dialect

import (
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

type tokKind uint8

const (
	tokIdent tokKind = iota + 1
	tokPunct
	tokOther
)

type tok struct {
	kind tokKind
	text string
	span source.Span
}

// Collect scans f and returns its evidence. It understands just enough
// lexical structure to skip comments, strings and numbers.
func Collect(f *source.File) *Evidence {
	e := NewEvidence()
	s := scan.New(f)
	var prev tok
	for {
		scan.Spaces(s)
		if s.EOF() {
			break
		}
		t := next(s)
		if t.kind == tokIdent {
			RecordIdent(e, t.text, t.span)
		}
		observePair(e, prev, t)
		prev = t
	}
	return e
}

func next(s *scan.Scanner) tok {
	m := s.Mark()
	if id, ok := scan.IdentifierOrKeyword(s); ok {
		return tok{kind: tokIdent, text: id, span: s.SpanFrom(m)}
	}
	switch b := s.Peek(); {
	case scan.IsDigit(b):
		for !s.EOF() && (scan.IsIdentPart(s.Peek()) || s.Peek() == '.') {
			s.Bump()
		}
		return tok{kind: tokOther, text: s.Text(m), span: s.SpanFrom(m)}
	case b == '"':
		s.Bump()
		for !s.EOF() && s.Peek() != '"' && s.Peek() != '\n' {
			s.Bump()
		}
		scan.Char(s, '"')
		return tok{kind: tokOther, text: s.Text(m), span: s.SpanFrom(m)}
	}
	for _, op := range []string{"->", "[[", "]]"} {
		if scan.Literal(s, op) {
			return tok{kind: tokPunct, text: op, span: s.SpanFrom(m)}
		}
	}
	s.Bump()
	return tok{kind: tokPunct, text: s.Text(m), span: s.SpanFrom(m)}
}

// observePair records evidence from two adjacent tokens.
func observePair(e *Evidence, prev, t tok) {
	adjacent := prev.span.File == t.span.File && prev.span.End == t.span.Start

	if prev.kind == tokPunct && prev.text == "#" && t.kind == tokIdent && adjacent {
		switch t.text {
		case "version":
			e.Add(Hint{Dialect: GLSL, Kind: HintVersion, Score: 8, Reason: "GLSL `#version` directive", Span: prev.span.Cover(t.span)})
		case "extension":
			e.Add(Hint{Dialect: GLSL, Kind: HintVersion, Score: 5, Reason: "GLSL `#extension` directive", Span: prev.span.Cover(t.span)})
		}
	}

	if prev.kind == tokPunct && prev.text == "@" && t.kind == tokIdent && adjacent {
		switch t.text {
		case "vertex", "fragment", "compute":
			e.Add(Hint{Dialect: WGSL, Kind: HintAttribute, Score: 7, Reason: "WGSL stage attribute `@" + t.text + "`", Span: prev.span.Cover(t.span)})
		case "location", "builtin", "group", "binding":
			e.Add(Hint{Dialect: WGSL, Kind: HintAttribute, Score: 6, Reason: "WGSL attribute `@" + t.text + "`", Span: prev.span.Cover(t.span)})
		}
	}

	if prev.kind == tokIdent && prev.text == "var" && t.kind == tokPunct && t.text == "<" && adjacent {
		e.Add(Hint{Dialect: WGSL, Kind: HintUniform, Score: 6, Reason: "WGSL address space `var<...>`", Span: prev.span.Cover(t.span)})
	}

	if t.kind == tokPunct && t.text == "->" && prev.kind == tokPunct && prev.text == ")" {
		e.Add(Hint{Dialect: WGSL, Kind: HintFunctionSyntax, Score: 3, Reason: "return type after `->`", Span: t.span})
	}

	if t.kind == tokPunct && t.text == "[[" {
		e.Add(Hint{Dialect: Metal, Kind: HintAttribute, Score: 4, Reason: "Metal attribute `[[...]]`", Span: t.span})
	}

	// layout(location = 0) / layout(binding = 0)
	if prev.kind == tokIdent && prev.text == "layout" && t.kind == tokPunct && t.text == "(" {
		e.Add(Hint{Dialect: GLSL, Kind: HintUniform, Score: 6, Reason: "GLSL `layout(...)` qualifier", Span: prev.span.Cover(t.span)})
	}
}
