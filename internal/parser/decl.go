package parser

import (
	"sdslc/internal/ast"
	"sdslc/internal/combinator"
	"sdslc/internal/scan"
	"sdslc/internal/source"
)

func (p *Parser) parseTopDecl(s *scan.Scanner, r *combinator.Result) ([]ast.DeclID, bool) {
	m := begin(s)
	switch peekWord(s) {
	case "namespace":
		return one(p.parseNamespace(s, r, m))
	case "using":
		word(s)
		name, _, ok := p.dottedName(s, r)
		if !ok {
			return nil, false
		}
		if _, ok := p.semi(s, r); !ok {
			return nil, false
		}
		return []ast.DeclID{p.arenas.Decls.NewUsing(span(s, m), name)}, true
	case "shader":
		return one(p.parseShader(s, r, m))
	case "effect":
		return one(p.parseEffect(s, r, m))
	case "struct":
		return one(p.parseStruct(s, r, m))
	}
	if _, ok := p.semi(s, r); ok {
		return []ast.DeclID{}, true
	}
	r.Expect(s.Off, "'shader'")
	r.Expect(s.Off, "'effect'")
	return nil, false
}

func one(id ast.DeclID, ok bool) ([]ast.DeclID, bool) {
	if !ok {
		return nil, false
	}
	return []ast.DeclID{id}, true
}

// body parses '{' items '}' with an optional trailing ';'.
func body[T any](p *Parser, s *scan.Scanner, r *combinator.Result, item rule[T]) ([]T, bool) {
	if _, ok := p.lbrace(s, r); !ok {
		return nil, false
	}
	items, _ := combinator.Many(item)(s, r)
	if _, ok := p.rbrace(s, r); !ok {
		return nil, false
	}
	combinator.Optional(p.semi)(s, r)
	return items, true
}

func flatten(groups [][]ast.DeclID) []ast.DeclID {
	var out []ast.DeclID
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func (p *Parser) parseNamespace(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.DeclID, bool) {
	word(s)
	name, _, ok := p.dottedName(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	groups, ok := body(p, s, r, p.topDecl)
	if !ok {
		return ast.NoDeclID, false
	}
	return p.arenas.Decls.NewNamespace(span(s, m), name, flatten(groups)), true
}

func (p *Parser) parseShader(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.DeclID, bool) {
	word(s)
	name, _, ok := ident(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	generics, ok := p.genericParams(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	var mixins []ast.MixinRef
	if _, ok := p.colon(s, r); ok {
		refs, ok := combinator.SepBy1(combinator.Attempt(p.mixinRef), p.comma)(s, r)
		if !ok {
			return ast.NoDeclID, false
		}
		mixins = refs
	}
	groups, ok := body(p, s, r, p.member)
	if !ok {
		return ast.NoDeclID, false
	}
	return p.arenas.Decls.NewShader(span(s, m), name, ast.ShaderData{Generics: generics, Mixins: mixins, Members: flatten(groups)}), true
}

// genericParams parses an optional <type name, ...> list after a class name.
func (p *Parser) genericParams(s *scan.Scanner, r *combinator.Result) ([]ast.GenericParam, bool) {
	if !nextIs(s, '<') {
		return nil, true
	}
	p.langle(s, r)
	param := combinator.Attempt(func(s *scan.Scanner, r *combinator.Result) (ast.GenericParam, bool) {
		m := begin(s)
		t, ok := p.typ(s, r)
		if !ok {
			return ast.GenericParam{}, false
		}
		name, _, ok := ident(s, r)
		if !ok {
			return ast.GenericParam{}, false
		}
		return ast.GenericParam{Name: name, Type: t, Span: span(s, m)}, true
	})
	params, ok := combinator.SepBy1(param, p.comma)(s, r)
	if !ok {
		return nil, false
	}
	if _, ok := p.rangle(s, r); !ok {
		return nil, false
	}
	return params, true
}

// genericArgs parses an optional <arg, ...> list after a class reference.
// Arguments are unary expressions so that '>' closes the list.
func (p *Parser) genericArgs(s *scan.Scanner, r *combinator.Result) ([]ast.ExprID, bool) {
	if !nextIs(s, '<') {
		return nil, true
	}
	p.langle(s, r)
	args, ok := combinator.SepBy1(p.unary, p.comma)(s, r)
	if !ok {
		return nil, false
	}
	if _, ok := p.rangle(s, r); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) mixinRef(s *scan.Scanner, r *combinator.Result) (ast.MixinRef, bool) {
	name, sp, ok := p.dottedName(s, r)
	if !ok {
		return ast.MixinRef{}, false
	}
	args, ok := p.genericArgs(s, r)
	return ast.MixinRef{Name: name, Span: sp, Args: args}, ok
}

func (p *Parser) parseStruct(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.DeclID, bool) {
	word(s)
	name, _, ok := ident(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	p.declareTypeName(name)
	field := combinator.Attempt(func(s *scan.Scanner, r *combinator.Result) ([]ast.DeclID, bool) {
		begin(s)
		return p.varDecls(s, r, p.modifiers(s))
	})
	groups, ok := body(p, s, r, field)
	if !ok {
		return ast.NoDeclID, false
	}
	return p.arenas.Decls.NewStruct(span(s, m), name, flatten(groups)), true
}

// parseMember parses one shader member; a declaration with several
// declarators yields several VarDecls.
func (p *Parser) parseMember(s *scan.Scanner, r *combinator.Result) ([]ast.DeclID, bool) {
	m := begin(s)
	attrs, _ := p.attributes(s, r)
	mods := p.modifiers(s)
	switch peekWord(s) {
	case "struct":
		return one(p.parseStruct(s, r, m))
	case "cbuffer", "rgroup":
		return one(p.parseCBuffer(s, r, m))
	case "compose":
		return one(p.parseCompose(s, r, m))
	case "typedef":
		return one(p.parseTypedef(s, r, m))
	}
	if id, ok := combinator.Attempt(p.method(m, attrs, mods))(s, r); ok {
		return []ast.DeclID{id}, true
	}
	if len(attrs) > 0 {
		return nil, false
	}
	return p.varDecls(s, r, mods)
}

func (p *Parser) parseCBuffer(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.DeclID, bool) {
	kw, _ := word(s)
	name, _, ok := ident(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	field := combinator.Attempt(func(s *scan.Scanner, r *combinator.Result) ([]ast.DeclID, bool) {
		begin(s)
		return p.varDecls(s, r, p.modifiers(s))
	})
	groups, ok := body(p, s, r, field)
	if !ok {
		return ast.NoDeclID, false
	}
	return p.arenas.Decls.NewCBuffer(span(s, m), name, ast.CBufferData{Resource: kw == "rgroup", Members: flatten(groups)}), true
}

func (p *Parser) parseCompose(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.DeclID, bool) {
	word(s)
	t, ok := p.typ(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	name, _, ok := ident(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	dims, _ := p.arrayDims(s, r)
	if _, ok := p.semi(s, r); !ok {
		return ast.NoDeclID, false
	}
	return p.arenas.Decls.NewCompose(span(s, m), name, ast.ComposeData{Type: t, Array: len(dims) > 0}), true
}

func (p *Parser) parseTypedef(s *scan.Scanner, r *combinator.Result, m scan.Mark) (ast.DeclID, bool) {
	word(s)
	t, ok := p.typ(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	name, _, ok := ident(s, r)
	if !ok {
		return ast.NoDeclID, false
	}
	if _, ok := p.semi(s, r); !ok {
		return ast.NoDeclID, false
	}
	p.declareTypeName(name)
	return p.arenas.Decls.NewTypedef(span(s, m), name, t), true
}

// modifiers consumes modifier keywords. A non-reserved one such as linear is
// taken only when another word follows it.
func (p *Parser) modifiers(s *scan.Scanner) ast.Modifiers {
	var mods ast.Modifiers
	for {
		m := s.Mark()
		w, ok := word(s)
		flag, isMod := ast.ModifierByKeyword[w]
		if !ok || !isMod || peekWord(s) == "" {
			s.Reset(m)
			return mods
		}
		mods |= flag
	}
}

func (p *Parser) parseAttr(s *scan.Scanner, r *combinator.Result) (ast.AttrID, bool) {
	m := begin(s)
	if _, ok := p.lbrack(s, r); !ok {
		return ast.NoAttrID, false
	}
	name, _, ok := ident(s, r)
	if !ok {
		return ast.NoAttrID, false
	}
	var args []ast.ExprID
	at := s.Mark()
	if _, ok := p.lparen(s, r); ok {
		list, _ := combinator.SepBy(p.expr, p.comma)(s, r)
		if _, ok := p.rparen(s, r); !ok {
			s.Reset(at)
			return ast.NoAttrID, false
		}
		args = list
	}
	if _, ok := p.rbrack(s, r); !ok {
		return ast.NoAttrID, false
	}
	return p.arenas.Decls.NewAttr(ast.Attr{Name: name, Args: args, Span: span(s, m)}), true
}

// semantic parses ": NAME". Register and packoffset bindings are accepted
// and dropped.
func (p *Parser) semantic(s *scan.Scanner, r *combinator.Result) (string, source.Span, bool) {
	m := s.Mark()
	if _, ok := p.colon(s, r); !ok {
		return "", source.Span{}, false
	}
	name, sp, ok := ident(s, r)
	if !ok {
		s.Reset(m)
		return "", source.Span{}, false
	}
	if name == "register" || name == "packoffset" {
		if _, ok := combinator.Between(p.lparen, combinator.SepBy1(p.dottedNameRule(), p.comma), p.rparen)(s, r); !ok {
			s.Reset(m)
			return "", source.Span{}, false
		}
		return "", source.Span{}, true
	}
	return name, sp, true
}

func (p *Parser) dottedNameRule() rule[string] {
	return func(s *scan.Scanner, r *combinator.Result) (string, bool) {
		name, _, ok := p.dottedName(s, r)
		return name, ok
	}
}

// method builds the rule for a method declaration after its attributes and
// modifiers.
func (p *Parser) method(m scan.Mark, attrs []ast.AttrID, mods ast.Modifiers) rule[ast.DeclID] {
	return func(s *scan.Scanner, r *combinator.Result) (ast.DeclID, bool) {
		ret, ok := p.typ(s, r)
		if !ok {
			return ast.NoDeclID, false
		}
		name, _, ok := ident(s, r)
		if !ok {
			return ast.NoDeclID, false
		}
		if _, ok := p.lparen(s, r); !ok {
			return ast.NoDeclID, false
		}
		params, _ := combinator.SepBy(p.param, p.comma)(s, r)
		if _, ok := p.rparen(s, r); !ok {
			return ast.NoDeclID, false
		}
		retSem, _, _ := p.semantic(s, r)
		data := ast.MethodData{Ret: ret, Params: params, Mods: mods, Attrs: attrs, RetSemantic: retSem}
		if _, ok := p.semi(s, r); !ok {
			b, ok := p.parseBlock(s, r)
			if !ok {
				return ast.NoDeclID, false
			}
			data.Body = b
		}
		return p.arenas.Decls.NewMethod(span(s, m), name, data), true
	}
}

func (p *Parser) param(s *scan.Scanner, r *combinator.Result) (ast.ParamID, bool) {
	m := begin(s)
	mods := p.modifiers(s)
	t, ok := p.typ(s, r)
	if !ok {
		s.Reset(m)
		return ast.NoParamID, false
	}
	name, _, ok := ident(s, r)
	if !ok {
		s.Reset(m)
		return ast.NoParamID, false
	}
	sem, _, _ := p.semantic(s, r)
	return p.arenas.Decls.NewParam(ast.Param{Name: name, Type: t, Mods: mods, Semantic: sem, Span: span(s, m)}), true
}

// varDecls parses "T a[2] : SEM = init, b;" into one VarDecl per name.
func (p *Parser) varDecls(s *scan.Scanner, r *combinator.Result, mods ast.Modifiers) ([]ast.DeclID, bool) {
	t, ok := p.typ(s, r)
	if !ok {
		return nil, false
	}
	declarator := func(s *scan.Scanner, r *combinator.Result) (ast.DeclID, bool) {
		name, nameSpan, ok := ident(s, r)
		if !ok {
			return ast.NoDeclID, false
		}
		dims, _ := p.arrayDims(s, r)
		sem, semSpan, _ := p.semantic(s, r)
		init := ast.NoExprID
		at := s.Mark()
		if _, ok := p.assign(s, r); ok {
			if init, ok = p.parseInit(s, r); !ok {
				s.Reset(at)
				return ast.NoDeclID, false
			}
		}
		sp := s.SpanFrom(scan.Mark(nameSpan.Start))
		return p.arenas.Decls.NewVar(sp, name, ast.VarData{
			Type: t, Mods: mods, ArrayDims: dims, Semantic: sem, SemSpan: semSpan, Init: init,
		}), true
	}
	decls, ok := combinator.SepBy1(combinator.Attempt(declarator), p.comma)(s, r)
	if !ok {
		return nil, false
	}
	if _, ok := p.semi(s, r); !ok {
		return nil, false
	}
	return decls, true
}
