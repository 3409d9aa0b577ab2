package preprocess

import (
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

type tokKind uint8

const (
	tkSpace tokKind = iota
	tkNewline
	tkComment
	tkIdent
	tkNumber
	tkString
	tkChar
	tkPunct
)

// tok is a preprocessing token. Expanded tokens carry the span of the
// outermost macro use they came from.
type tok struct {
	kind     tokKind
	text     string
	span     source.Span
	hide     *hideSet
	expanded bool
}

func (t tok) blank() bool {
	return t.kind == tkSpace || t.kind == tkNewline || t.kind == tkComment
}

// hideSet — неизменяемый список имён макросов, которые нельзя раскрывать
type hideSet struct {
	name string
	next *hideSet
}

func (h *hideSet) has(name string) bool {
	for ; h != nil; h = h.next {
		if h.name == name {
			return true
		}
	}
	return false
}

func (h *hideSet) with(name string) *hideSet {
	if h.has(name) {
		return h
	}
	return &hideSet{name: name, next: h}
}

var ppPuncts = []string{
	"...", "<<=", ">>=",
	"##", "&&", "||", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "++", "--", "::", "->",
}

// lex splits content[start:end] of file into preprocessing tokens.
// Block comments and strings never span the end bound.
func lex(file *source.File, start, end uint32) []tok {
	src := file.Content
	var out []tok
	off := start
	mk := func(kind tokKind, from uint32) {
		out = append(out, tok{
			kind: kind,
			text: string(src[from:off]),
			span: source.Span{File: file.ID, Start: from, End: off},
		})
	}
	for off < end {
		from := off
		b := src[off]
		switch {
		case b == '\n':
			off++
			mk(tkNewline, from)
		case b == ' ' || b == '\t' || b == '\r' || b == '\v' || b == '\f':
			for off < end && (src[off] == ' ' || src[off] == '\t' || src[off] == '\r' || src[off] == '\v' || src[off] == '\f') {
				off++
			}
			mk(tkSpace, from)
		case b == '/' && off+1 < end && src[off+1] == '/':
			for off < end && src[off] != '\n' {
				off++
			}
			mk(tkComment, from)
		case b == '/' && off+1 < end && src[off+1] == '*':
			off += 2
			for off < end && !(src[off] == '*' && off+1 < end && src[off+1] == '/') {
				off++
			}
			off = min(off+2, end)
			mk(tkComment, from)
		case scan.IsIdentStart(b):
			for off < end && scan.IsIdentPart(src[off]) {
				off++
			}
			mk(tkIdent, from)
		case scan.IsDigit(b) || b == '.' && off+1 < end && scan.IsDigit(src[off+1]):
			// pp-number: цифры, буквы, точки и знак после экспоненты
			off++
			for off < end {
				c := src[off]
				if (c == '+' || c == '-') && (src[off-1] == 'e' || src[off-1] == 'E') {
					off++
					continue
				}
				if !scan.IsIdentPart(c) && c != '.' {
					break
				}
				off++
			}
			mk(tkNumber, from)
		case b == '"' || b == '\'':
			off++
			for off < end && src[off] != b && src[off] != '\n' {
				if src[off] == '\\' && off+1 < end {
					off++
				}
				off++
			}
			if off < end && src[off] == b {
				off++
			}
			kind := tkString
			if b == '\'' {
				kind = tkChar
			}
			mk(kind, from)
		default:
			n := uint32(1)
			for _, p := range ppPuncts {
				l := uint32(len(p))
				if off+l <= end && string(src[off:off+l]) == p {
					n = l
					break
				}
			}
			off += n
			mk(tkPunct, from)
		}
	}
	return out
}

// lexText tokenizes synthesized text (pasted or stringized results). The
// tokens report span as their location.
func lexText(text string, span source.Span) []tok {
	f := &source.File{ID: span.File, Content: []byte(text)}
	end := uint32(len(text))
	toks := lex(f, 0, end)
	for i := range toks {
		toks[i].span = span
		toks[i].expanded = true
	}
	return toks
}

func joinTokens(toks []tok) string {
	n := 0
	for _, t := range toks {
		n += len(t.text)
	}
	buf := make([]byte, 0, n)
	for _, t := range toks {
		buf = append(buf, t.text...)
	}
	return string(buf)
}

// trimBlank drops leading and trailing whitespace tokens.
func trimBlank(toks []tok) []tok {
	for len(toks) > 0 && toks[0].blank() {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].blank() {
		toks = toks[:len(toks)-1]
	}
	return toks
}
