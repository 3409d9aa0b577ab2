package preprocess

import (
	"fmt"
	"strings"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// Macro is a #define or a predefined name.
type Macro struct {
	Name     string
	FuncLike bool
	Params   []string
	Variadic bool
	Span     source.Span
	body     []tok
}

// Value returns the replacement text with surrounding blanks trimmed.
func (m *Macro) Value() string {
	return joinTokens(trimBlank(m.body))
}

func (m *Macro) param(name string) int {
	for i, p := range m.Params {
		if p == name {
			return i
		}
	}
	if m.Variadic && name == "__VA_ARGS__" {
		return len(m.Params)
	}
	return -1
}

// sameAs reports token-wise equality, ignoring the amount of whitespace.
func (m *Macro) sameAs(o *Macro) bool {
	if m.FuncLike != o.FuncLike || m.Variadic != o.Variadic || strings.Join(m.Params, ",") != strings.Join(o.Params, ",") {
		return false
	}
	norm := func(ts []tok) string {
		var sb strings.Builder
		for _, t := range trimBlank(ts) {
			if t.blank() {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(t.text)
		}
		return sb.String()
	}
	return norm(m.body) == norm(o.body)
}

// ppError is a fatal preprocessing error.
type ppError struct {
	code diag.Code
	span source.Span
	msg  string
}

func (e *ppError) Error() string {
	return fmt.Sprintf("%s: %s", e.code.ID(), e.msg)
}

func errorf(code diag.Code, span source.Span, format string, args ...any) *ppError {
	return &ppError{code: code, span: span, msg: fmt.Sprintf(format, args...)}
}

// parseDefine разбирает токены после имени директивы
func parseDefine(toks []tok, span source.Span) (*Macro, error) {
	i := skipBlank(toks, 0)
	if i >= len(toks) || toks[i].kind != tkIdent {
		return nil, errorf(diag.PreMalformedDirective, span, "#define expects a macro name")
	}
	m := &Macro{Name: toks[i].text, Span: span}
	i++
	if i < len(toks) && toks[i].kind == tkPunct && toks[i].text == "(" {
		m.FuncLike = true
		i++
		for {
			i = skipBlank(toks, i)
			if i >= len(toks) {
				return nil, errorf(diag.PreMalformedDirective, span, "unterminated parameter list of macro %s", m.Name)
			}
			t := toks[i]
			switch {
			case t.text == ")" && len(m.Params) == 0 && !m.Variadic:
			case t.kind == tkIdent && !m.Variadic:
				if m.param(t.text) >= 0 {
					return nil, errorf(diag.PreMalformedDirective, t.span, "duplicate macro parameter %s", t.text)
				}
				m.Params = append(m.Params, t.text)
				i = skipBlank(toks, i+1)
			case t.text == "..." && !m.Variadic:
				m.Variadic = true
				i = skipBlank(toks, i+1)
			default:
				return nil, errorf(diag.PreMalformedDirective, t.span, "unexpected %q in parameter list of macro %s", t.text, m.Name)
			}
			if i >= len(toks) {
				continue
			}
			if toks[i].text == ")" {
				i++
				break
			}
			if toks[i].text != "," || m.Variadic {
				return nil, errorf(diag.PreMalformedDirective, toks[i].span, "expected ',' or ')' in parameter list of macro %s", m.Name)
			}
			i++
		}
	}
	body := trimBlank(toks[i:])
	for k := range body {
		if body[k].kind == tkComment {
			body[k] = tok{kind: tkSpace, text: " ", span: body[k].span}
		}
	}
	for k, t := range body {
		if t.kind != tkPunct {
			continue
		}
		switch t.text {
		case "##":
			if k == 0 || k == len(body)-1 {
				return nil, errorf(diag.PreMalformedDirective, t.span, "'##' cannot appear at either end of a macro body")
			}
		case "#":
			if !m.FuncLike {
				continue
			}
			n := skipBlank(body, k+1)
			if n >= len(body) || body[n].kind != tkIdent || m.param(body[n].text) < 0 {
				return nil, errorf(diag.PreMalformedDirective, t.span, "'#' is not followed by a macro parameter")
			}
		}
	}
	m.body = body
	return m, nil
}

func skipBlank(toks []tok, i int) int {
	for i < len(toks) && toks[i].blank() {
		i++
	}
	return i
}

// expander раскрывает макросы с наборами скрытия
type expander struct {
	macros map[string]*Macro
}

// expand fully macro-expands toks. Newlines swallowed by a multi-line macro
// call are re-emitted after its expansion so line numbers keep their place.
func (e *expander) expand(toks []tok) ([]tok, error) {
	in := append([]tok(nil), toks...)
	out := make([]tok, 0, len(in))
	for i := 0; i < len(in); {
		t := in[i]
		m := e.lookup(t)
		if m == nil {
			out = append(out, t)
			i++
			continue
		}
		if !m.FuncLike {
			repl := e.substitute(m, t.hide.with(m.Name), t.span)
			in = splice(in, i, i+1, repl)
			continue
		}
		open := skipBlank(in, i+1)
		if open >= len(in) || in[open].kind != tkPunct || in[open].text != "(" {
			out = append(out, t)
			i++
			continue
		}
		args, closeIdx, ok := collectArgs(in, open)
		if !ok {
			return nil, errorf(diag.PreUnterminatedArgs, t.span, "unterminated argument list invoking macro %s", m.Name)
		}
		args, err := e.checkArity(m, args, t.span)
		if err != nil {
			return nil, err
		}
		span := t.span
		if closing := in[closeIdx]; !t.expanded && !closing.expanded && closing.span.File == span.File {
			span = span.Cover(closing.span)
		}
		var expArgs [][]tok
		for _, a := range args {
			x, err := e.expand(a)
			if err != nil {
				return nil, err
			}
			expArgs = append(expArgs, x)
		}
		repl := e.substituteCall(m, args, expArgs, t.hide.with(m.Name), span)
		for _, c := range in[open:closeIdx] {
			if c.kind == tkNewline && !c.expanded {
				repl = append(repl, c)
			}
		}
		in = splice(in, i, closeIdx+1, repl)
	}
	return out, nil
}

func (e *expander) lookup(t tok) *Macro {
	if t.kind != tkIdent || t.hide.has(t.text) {
		return nil
	}
	return e.macros[t.text]
}

func splice(in []tok, from, to int, repl []tok) []tok {
	out := make([]tok, 0, len(in)-(to-from)+len(repl))
	out = append(out, in[:from]...)
	out = append(out, repl...)
	return append(out, in[to:]...)
}

// collectArgs reads a parenthesised argument list starting at in[open].
func collectArgs(in []tok, open int) ([][]tok, int, bool) {
	depth := 0
	var args [][]tok
	var cur []tok
	for k := open; k < len(in); k++ {
		t := in[k]
		if t.kind == tkPunct {
			switch t.text {
			case "(":
				depth++
				if depth == 1 {
					continue
				}
			case ")":
				depth--
				if depth == 0 {
					return append(args, trimBlank(cur)), k, true
				}
			case ",":
				if depth == 1 {
					args = append(args, trimBlank(cur))
					cur = nil
					continue
				}
			}
		}
		cur = append(cur, t)
	}
	return nil, 0, false
}

func (e *expander) checkArity(m *Macro, args [][]tok, span source.Span) ([][]tok, error) {
	want := len(m.Params)
	if want == 0 && !m.Variadic && len(args) == 1 && len(args[0]) == 0 {
		return nil, nil
	}
	switch {
	case m.Variadic && len(args) >= want:
		var rest []tok
		for k, a := range args[min(want, len(args)):] {
			if k > 0 {
				rest = append(rest, tok{kind: tkPunct, text: ",", span: span, expanded: true})
			}
			rest = append(rest, a...)
		}
		return append(args[:want:want], rest), nil
	case !m.Variadic && len(args) == want:
		return args, nil
	}
	return nil, errorf(diag.PreMacroArity, span, "macro %s expects %d argument(s), got %d", m.Name, want, len(args))
}

func (e *expander) substitute(m *Macro, hide *hideSet, span source.Span) []tok {
	out := make([]tok, 0, len(m.body))
	for k := 0; k < len(m.body); k++ {
		t := m.body[k]
		if t.kind == tkPunct && t.text == "##" {
			out = paste(out, []tok{m.body[skipBlank(m.body, k+1)]}, span)
			k = skipBlank(m.body, k+1)
			continue
		}
		out = append(out, t)
	}
	return mark(out, hide, span)
}

func (e *expander) substituteCall(m *Macro, raw, expanded [][]tok, hide *hideSet, span source.Span) []tok {
	body := m.body
	out := make([]tok, 0, len(body))
	for k := 0; k < len(body); k++ {
		t := body[k]
		switch {
		case t.kind == tkPunct && t.text == "#":
			n := skipBlank(body, k+1)
			out = append(out, stringize(raw[m.param(body[n].text)], span))
			k = n
		case t.kind == tkPunct && t.text == "##":
			n := skipBlank(body, k+1)
			right := []tok{body[n]}
			if p := m.param(body[n].text); p >= 0 && body[n].kind == tkIdent {
				right = raw[p]
			}
			out = paste(out, right, span)
			k = n
		case t.kind == tkIdent && m.param(t.text) >= 0:
			p := m.param(t.text)
			next := skipBlank(body, k+1)
			if next < len(body) && body[next].text == "##" {
				out = append(out, raw[p]...)
			} else {
				out = append(out, expanded[p]...)
			}
		default:
			out = append(out, t)
		}
	}
	return mark(out, hide, span)
}

// paste склеивает последний токен слева с первым токеном справа
func paste(left, right []tok, span source.Span) []tok {
	for len(left) > 0 && left[len(left)-1].blank() {
		left = left[:len(left)-1]
	}
	if len(right) == 0 {
		return left
	}
	if len(left) == 0 {
		return append(left, right...)
	}
	last := left[len(left)-1]
	joined := lexText(last.text+right[0].text, span)
	for i := range joined {
		joined[i].hide = last.hide
	}
	left = append(left[:len(left)-1], joined...)
	return append(left, right[1:]...)
}

func stringize(arg []tok, span source.Span) tok {
	var sb strings.Builder
	sb.WriteByte('"')
	space := false
	for _, t := range trimBlank(arg) {
		if t.blank() {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		if t.kind == tkString || t.kind == tkChar {
			sb.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(t.text))
			continue
		}
		sb.WriteString(t.text)
	}
	sb.WriteByte('"')
	return tok{kind: tkString, text: sb.String(), span: span, expanded: true}
}

// mark attributes the replacement to the use site and extends hide sets.
func mark(toks []tok, hide *hideSet, span source.Span) []tok {
	out := make([]tok, len(toks))
	for i, t := range toks {
		h := hide
		for x := t.hide; x != nil; x = x.next {
			h = h.with(x.name)
		}
		if t.kind == tkComment || t.kind == tkNewline {
			t = tok{kind: tkSpace, text: " "}
		}
		t.hide = h
		t.span = span
		t.expanded = true
		out[i] = t
	}
	return out
}
