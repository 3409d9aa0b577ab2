// Package preprocess implements the C-style preprocessor that runs before
// parsing: conditional compilation, object- and function-like macros and
// includes. The output keeps the line structure of the input and carries a
// segment map so that later diagnostics can point at the original text.
package preprocess

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// MaxIncludeDepth bounds nested #include.
const MaxIncludeDepth = 32

// ErrFatal is returned after a fatal diagnostic has been reported.
var ErrFatal = errors.New("preprocessing failed")

// Define is a predefined macro. An empty Value defines the name as empty.
type Define struct {
	Name  string
	Value string
}

// Options configure one run.
type Options struct {
	Defines     []Define
	IncludeDirs []string
	Provider    source.Provider
	Reporter    diag.Reporter
}

type preprocessor struct {
	fs   *source.FileSet
	opts Options
	exp  *expander
	out  builder
	seen map[source.FileID]bool
	incs []source.FileID
}

// Process preprocesses file and registers the result in fs as a generated
// file. On a fatal error the diagnostic goes to opts.Reporter and the error
// wraps ErrFatal.
func Process(fs *source.FileSet, file source.FileID, opts Options) (*Output, error) {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	p := &preprocessor{
		fs:   fs,
		opts: opts,
		exp:  &expander{macros: make(map[string]*Macro)},
		seen: make(map[source.FileID]bool),
	}
	if err := p.predefine(); err != nil {
		return nil, p.fail(err)
	}
	if err := p.file(file, 0); err != nil {
		return nil, p.fail(err)
	}
	name := fs.Get(file).Path + ".pp"
	out := &Output{
		Text:     p.out.text,
		Segments: p.out.segs,
		Defines:  p.exp.macros,
		Includes: p.incs,
	}
	out.File = fs.AddGenerated(name, out.Text)
	return out, nil
}

func (p *preprocessor) fail(err error) error {
	var pe *ppError
	if errors.As(err, &pe) {
		p.opts.Reporter.Report(pe.code, diag.SevError, pe.span, pe.msg, nil)
	}
	return fmt.Errorf("%w: %w", ErrFatal, err)
}

func (p *preprocessor) predefine() error {
	for _, d := range p.opts.Defines {
		text := "#define " + d.Name + " " + d.Value
		id := p.fs.AddGenerated("<define "+d.Name+">", []byte(text))
		f := p.fs.Get(id)
		toks := lex(f, 8, uint32(len(text))) // #nosec G115 -- command line text
		m, err := parseDefine(toks, source.Span{File: id, Start: 0, End: f.Len()})
		if err != nil {
			return err
		}
		p.exp.macros[m.Name] = m
	}
	return nil
}

// cond is one #if chain on the stack.
type cond struct {
	parentActive bool
	active       bool
	taken        bool
	sawElse      bool
	span         source.Span
}

type fileState struct {
	f         *source.File
	depth     int
	conds     []*cond
	inComment bool
}

func (st *fileState) active() bool {
	if len(st.conds) == 0 {
		return true
	}
	top := st.conds[len(st.conds)-1]
	return top.parentActive && top.active
}

func (p *preprocessor) file(id source.FileID, depth int) error {
	f := p.fs.Get(id)
	st := &fileState{f: f, depth: depth}
	src := f.Content
	size := f.Len()
	runStart := -1
	flush := func(end uint32) error {
		if runStart < 0 {
			return nil
		}
		toks := lex(f, uint32(runStart), end) // #nosec G115 -- offsets within file
		runStart = -1
		expanded, err := p.exp.expand(toks)
		if err != nil {
			return err
		}
		p.out.emit(expanded)
		return nil
	}

	for off := uint32(0); off < size; {
		lineStart := off
		lineEnd := lineStart
		for lineEnd < size && src[lineEnd] != '\n' {
			lineEnd++
		}
		hash := lineStart
		for hash < lineEnd && (src[hash] == ' ' || src[hash] == '\t') {
			hash++
		}
		if !st.inComment && hash < lineEnd && src[hash] == '#' {
			if err := flush(lineStart); err != nil {
				return err
			}
			// продолжение директивы через обратный слэш
			end := lineEnd
			for end < size && end > lineStart && src[end-1] == '\\' {
				end++
				for end < size && src[end] != '\n' {
					end++
				}
			}
			next := min(end+1, size)
			span := source.Span{File: id, Start: lineStart, End: end}
			if err := p.directive(st, hash+1, end, span); err != nil {
				return err
			}
			p.out.blank(strings.Count(string(src[lineStart:next]), "\n"), span)
			off = next
			continue
		}

		next := min(lineEnd+1, size)
		st.inComment = scanComments(src[lineStart:lineEnd], st.inComment)
		if st.active() {
			if runStart < 0 {
				runStart = int(lineStart)
			}
		} else {
			if err := flush(lineStart); err != nil {
				return err
			}
			if lineEnd < size {
				p.out.blank(1, source.Span{File: id, Start: lineStart, End: lineEnd})
			}
		}
		off = next
	}
	if err := flush(size); err != nil {
		return err
	}
	if n := len(st.conds); n > 0 {
		return errorf(diag.PreUnterminatedConditional, st.conds[n-1].span, "conditional directive is not terminated by #endif")
	}
	return nil
}

// scanComments reports whether a block comment is still open after line.
func scanComments(line []byte, inComment bool) bool {
	for i := 0; i < len(line); i++ {
		if inComment {
			if line[i] == '*' && i+1 < len(line) && line[i+1] == '/' {
				inComment = false
				i++
			}
			continue
		}
		switch line[i] {
		case '"', '\'':
			q := line[i]
			for i++; i < len(line) && line[i] != q; i++ {
				if line[i] == '\\' {
					i++
				}
			}
		case '/':
			if i+1 < len(line) {
				switch line[i+1] {
				case '/':
					return false
				case '*':
					inComment = true
					i++
				}
			}
		}
	}
	return inComment
}

// directiveTokens lexes the directive body, dropping line continuations.
func directiveTokens(f *source.File, start, end uint32) []tok {
	raw := lex(f, start, end)
	out := raw[:0:0]
	for i := 0; i < len(raw); i++ {
		t := raw[i]
		if t.kind == tkPunct && t.text == "\\" && i+1 < len(raw) && raw[i+1].kind == tkNewline {
			out = append(out, tok{kind: tkSpace, text: " ", span: t.span})
			i++
			continue
		}
		if t.kind == tkNewline {
			t = tok{kind: tkSpace, text: " ", span: t.span}
		}
		out = append(out, t)
	}
	return out
}

func (p *preprocessor) directive(st *fileState, start, end uint32, span source.Span) error {
	toks := directiveTokens(st.f, start, end)
	i := skipBlank(toks, 0)
	if i >= len(toks) {
		return nil // пустая директива
	}
	nameTok := toks[i]
	rest := toks[i+1:]
	name := nameTok.text
	if nameTok.kind != tkIdent {
		if !st.active() {
			return nil
		}
		return errorf(diag.PreMalformedDirective, nameTok.span, "expected a directive name after '#'")
	}

	switch name {
	case "if", "ifdef", "ifndef":
		c := &cond{parentActive: st.active(), span: span}
		if c.parentActive {
			v, err := p.test(name, rest, span)
			if err != nil {
				return err
			}
			c.active, c.taken = v, v
		}
		st.conds = append(st.conds, c)
		return nil
	case "elif":
		c, err := p.top(st, name, nameTok.span)
		if err != nil {
			return err
		}
		if c.sawElse {
			return errorf(diag.PreElseAfterElse, nameTok.span, "#elif after #else")
		}
		c.active = false
		if c.parentActive && !c.taken {
			v, err := p.test("if", rest, span)
			if err != nil {
				return err
			}
			c.active, c.taken = v, v
		}
		return nil
	case "else":
		c, err := p.top(st, name, nameTok.span)
		if err != nil {
			return err
		}
		if c.sawElse {
			return errorf(diag.PreElseAfterElse, nameTok.span, "#else after #else")
		}
		c.sawElse = true
		c.active = !c.taken
		c.taken = true
		return nil
	case "endif":
		if _, err := p.top(st, name, nameTok.span); err != nil {
			return err
		}
		st.conds = st.conds[:len(st.conds)-1]
		return nil
	}

	if !st.active() {
		return nil
	}
	switch name {
	case "define":
		m, err := parseDefine(rest, span)
		if err != nil {
			return err
		}
		if old, ok := p.exp.macros[m.Name]; ok && !old.sameAs(m) {
			diag.ReportWarning(p.opts.Reporter, diag.PreMacroRedefined, span, fmt.Sprintf("macro %s redefined", m.Name)).
				WithNote(old.Span, "previous definition").
				Emit()
		}
		p.exp.macros[m.Name] = m
	case "undef":
		j := skipBlank(rest, 0)
		if j >= len(rest) || rest[j].kind != tkIdent {
			return errorf(diag.PreMalformedDirective, span, "#undef expects a macro name")
		}
		delete(p.exp.macros, rest[j].text)
	case "include":
		return p.include(st, rest, span)
	case "error":
		return errorf(diag.PreUserError, span, "#error %s", strings.TrimSpace(joinTokens(rest)))
	case "warning":
		p.opts.Reporter.Report(diag.PreUserWarning, diag.SevWarning, span, "#warning "+strings.TrimSpace(joinTokens(rest)), nil)
	case "pragma", "line":
	default:
		return errorf(diag.PreUnknownDirective, nameTok.span, "unknown directive #%s", name)
	}
	return nil
}

func (p *preprocessor) top(st *fileState, name string, span source.Span) (*cond, error) {
	if len(st.conds) == 0 {
		return nil, errorf(diag.PreUnmatchedDirective, span, "#%s without #if", name)
	}
	return st.conds[len(st.conds)-1], nil
}

// test evaluates the controlling expression of an #if-family directive.
func (p *preprocessor) test(kind string, rest []tok, span source.Span) (bool, error) {
	if kind == "ifdef" || kind == "ifndef" {
		j := skipBlank(rest, 0)
		if j >= len(rest) || rest[j].kind != tkIdent || skipBlank(rest, j+1) != len(rest) {
			return false, errorf(diag.PreMalformedDirective, span, "#%s expects a single macro name", kind)
		}
		_, ok := p.exp.macros[rest[j].text]
		return ok == (kind == "ifdef"), nil
	}
	tree, err := parseCondition(rest, span)
	if err != nil {
		return false, err
	}
	ev := &evaluator{exp: p.exp}
	v, err := ev.eval(tree)
	return v != 0, err
}

func (p *preprocessor) include(st *fileState, rest []tok, span source.Span) error {
	rest = trimBlank(rest)
	var name string
	quoted := false
	switch {
	case len(rest) == 1 && rest[0].kind == tkString:
		name = strings.Trim(rest[0].text, `"`)
		quoted = true
	case len(rest) >= 2 && rest[0].text == "<" && rest[len(rest)-1].text == ">":
		name = joinTokens(rest[1 : len(rest)-1])
	default:
		return errorf(diag.PreMalformedDirective, span, `#include expects "file" or <file>`)
	}
	if name == "" {
		return errorf(diag.PreMalformedDirective, span, "#include with an empty file name")
	}
	if st.depth+1 > MaxIncludeDepth {
		return errorf(diag.PreIncludeDepth, span, "#include nested deeper than %d levels", MaxIncludeDepth)
	}
	var dirs []string
	if quoted {
		dirs = append(dirs, filepath.Dir(st.f.Path))
	}
	dirs = append(dirs, p.opts.IncludeDirs...)
	id, err := p.fs.LoadVia(p.opts.Provider, name, dirs)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return errorf(diag.PreIncludeNotFound, span, "cannot find include file %q", name)
		}
		return errorf(diag.PreIncludeNotFound, span, "cannot read include file %q: %v", name, err)
	}
	if !p.seen[id] {
		p.seen[id] = true
		p.incs = append(p.incs, id)
	}
	return p.file(id, st.depth+1)
}
