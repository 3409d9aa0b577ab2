package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump prints file as an indented tree, one node per line.
func Dump(w io.Writer, b *Builder, file FileID) error {
	d := &dumper{b: b}
	f := b.Files.Get(file)
	if f == nil {
		return fmt.Errorf("unknown file %d", file)
	}
	for _, id := range f.Decls {
		d.decl(id, 0)
	}
	_, err := io.WriteString(w, d.sb.String())
	return err
}

type dumper struct {
	b  *Builder
	sb strings.Builder
}

func (d *dumper) line(depth int, format string, args ...any) {
	d.sb.WriteString(strings.Repeat("  ", depth))
	d.sb.WriteString(strings.TrimRight(fmt.Sprintf(format, args...), " "))
	d.sb.WriteByte('\n')
}

func (d *dumper) decl(id DeclID, depth int) {
	decl := d.b.Decls.Get(id)
	if decl == nil {
		return
	}
	switch decl.Kind {
	case DeclNamespace:
		ns, _ := d.b.Decls.Namespace(id)
		d.line(depth, "namespace %s", decl.Name)
		for _, c := range ns.Decls {
			d.decl(c, depth+1)
		}
	case DeclUsing:
		d.line(depth, "using %s", decl.Name)
	case DeclShader:
		sh, _ := d.b.Decls.Shader(id)
		parents := make([]string, len(sh.Mixins))
		for i, m := range sh.Mixins {
			parents[i] = m.Name + d.genericArgs(m.Args)
		}
		name := decl.Name
		if len(sh.Generics) > 0 {
			params := make([]string, len(sh.Generics))
			for i, g := range sh.Generics {
				params[i] = d.b.Types.String(g.Type) + " " + g.Name
			}
			name += "<" + strings.Join(params, ", ") + ">"
		}
		d.line(depth, "shader %s : [%s]", name, strings.Join(parents, ", "))
		for _, m := range sh.Members {
			d.decl(m, depth+1)
		}
	case DeclEffect:
		ef, _ := d.b.Decls.Effect(id)
		d.line(depth, "effect %s", decl.Name)
		for _, e := range ef.Body {
			d.eff(e, depth+1)
		}
	case DeclStruct:
		st, _ := d.b.Decls.Struct(id)
		d.line(depth, "struct %s", decl.Name)
		for _, f := range st.Fields {
			d.decl(f, depth+1)
		}
	case DeclVar:
		v, _ := d.b.Decls.Var(id)
		text := fmt.Sprintf("var %s %s", d.b.Types.String(v.Type), decl.Name)
		if v.Mods != 0 {
			text = v.Mods.String() + " " + text
		}
		for _, dim := range v.ArrayDims {
			text += "[" + d.expr(dim) + "]"
		}
		if v.Semantic != "" {
			text += " : " + v.Semantic
		}
		if v.Init.IsValid() {
			text += " = " + d.expr(v.Init)
		}
		d.line(depth, "%s", text)
	case DeclMethod:
		m, _ := d.b.Decls.Method(id)
		params := make([]string, len(m.Params))
		for i, pid := range m.Params {
			p := d.b.Decls.Param(pid)
			params[i] = strings.TrimSpace(p.Mods.String() + " " + d.b.Types.String(p.Type) + " " + p.Name)
		}
		text := fmt.Sprintf("method %s %s(%s)", d.b.Types.String(m.Ret), decl.Name, strings.Join(params, ", "))
		if m.Mods != 0 {
			text = m.Mods.String() + " " + text
		}
		for _, a := range m.Attrs {
			text = "[" + d.b.Decls.Attr(a).Name + "] " + text
		}
		d.line(depth, "%s", text)
		if m.Body.IsValid() {
			d.stmt(m.Body, depth+1)
		}
	case DeclCBuffer:
		cb, _ := d.b.Decls.CBuffer(id)
		kw := "cbuffer"
		if cb.Resource {
			kw = "rgroup"
		}
		d.line(depth, "%s %s", kw, decl.Name)
		for _, m := range cb.Members {
			d.decl(m, depth+1)
		}
	case DeclCompose:
		c, _ := d.b.Decls.Compose(id)
		d.line(depth, "compose %s %s", d.b.Types.String(c.Type), decl.Name)
	case DeclTypedef:
		t, _ := d.b.Decls.Typedef(id)
		d.line(depth, "typedef %s %s", d.b.Types.String(t.Type), decl.Name)
	}
}

func (d *dumper) eff(id EffID, depth int) {
	e := d.b.Effs.Get(id)
	switch e.Kind {
	case EffMixin:
		d.line(depth, "mixin %s%s", e.Name, d.genericArgs(e.Args))
	case EffCompose:
		d.line(depth, "mixin compose %s = %s%s", e.Name, e.Target, d.genericArgs(e.Args))
	case EffMacro:
		d.line(depth, "mixin macro %s = %s", e.Name, d.expr(e.Value))
	case EffUsingParams:
		d.line(depth, "using params %s", e.Name)
	case EffBlock:
		d.line(depth, "block")
		for _, c := range e.Body {
			d.eff(c, depth+1)
		}
	case EffIf:
		d.line(depth, "if %s", d.expr(e.Value))
		d.eff(e.Then, depth+1)
		if e.Else.IsValid() {
			d.line(depth, "else")
			d.eff(e.Else, depth+1)
		}
	}
}

func (d *dumper) stmt(id StmtID, depth int) {
	st := d.b.Stmts.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case StmtBlock:
		blk, _ := d.b.Stmts.Block(id)
		d.line(depth, "block")
		for _, s := range blk.Stmts {
			d.stmt(s, depth+1)
		}
	case StmtIf:
		s, _ := d.b.Stmts.If(id)
		d.line(depth, "if %s", d.expr(s.Cond))
		d.stmt(s.Then, depth+1)
		if s.Else.IsValid() {
			d.line(depth, "else")
			d.stmt(s.Else, depth+1)
		}
	case StmtFor, StmtWhile, StmtDo:
		l, _ := d.b.Stmts.Loop(id)
		name := map[StmtKind]string{StmtFor: "for", StmtWhile: "while", StmtDo: "do"}[st.Kind]
		d.line(depth, "%s %s ; %s", name, d.expr(l.Cond), d.expr(l.Post))
		if l.Init.IsValid() {
			d.stmt(l.Init, depth+1)
		}
		d.stmt(l.Body, depth+1)
	case StmtBreak:
		d.line(depth, "break")
	case StmtContinue:
		d.line(depth, "continue")
	case StmtDiscard:
		d.line(depth, "discard")
	case StmtEmpty:
		d.line(depth, ";")
	case StmtReturn:
		r, _ := d.b.Stmts.Return(id)
		d.line(depth, "return %s", d.expr(r.Value))
	case StmtDecl:
		dd, _ := d.b.Stmts.Decl(id)
		for _, v := range dd.Decls {
			d.decl(v, depth)
		}
	case StmtExpr:
		e, _ := d.b.Stmts.Expr(id)
		d.line(depth, "%s", d.expr(e.Expr))
	}
}

// expr renders an expression fully parenthesised.
func (d *dumper) expr(id ExprID) string {
	e := d.b.Exprs.Get(id)
	if e == nil {
		return ""
	}
	x := d.b.Exprs
	switch e.Kind {
	case ExprIdent:
		v, _ := x.Ident(id)
		return v.Name
	case ExprLit:
		v, _ := x.Literal(id)
		if v.Kind == LitBool {
			return fmt.Sprint(v.Bool)
		}
		return v.Number.Text
	case ExprBinary:
		v, _ := x.Binary(id)
		return "(" + d.expr(v.Left) + " " + v.Op.String() + " " + d.expr(v.Right) + ")"
	case ExprUnary:
		v, _ := x.Unary(id)
		if v.Op == UnPostInc || v.Op == UnPostDec {
			return "(" + d.expr(v.Operand) + v.Op.String() + ")"
		}
		return "(" + v.Op.String() + d.expr(v.Operand) + ")"
	case ExprTernary:
		v, _ := x.Ternary(id)
		return "(" + d.expr(v.Cond) + " ? " + d.expr(v.Then) + " : " + d.expr(v.Else) + ")"
	case ExprCast:
		v, _ := x.Cast(id)
		return "((" + d.b.Types.String(v.Type) + ")" + d.expr(v.Value) + ")"
	case ExprCall:
		v, _ := x.Call(id)
		return d.expr(v.Callee) + "(" + d.list(v.Args) + ")"
	case ExprMember:
		v, _ := x.Member(id)
		return d.expr(v.Target) + "." + v.Name
	case ExprIndex:
		v, _ := x.Index(id)
		return d.expr(v.Target) + "[" + d.expr(v.Index) + "]"
	case ExprInitList:
		v, _ := x.InitList(id)
		return "{" + d.list(v.Elems) + "}"
	case ExprAssign:
		v, _ := x.Assign(id)
		return "(" + d.expr(v.Target) + " " + v.Op.String() + " " + d.expr(v.Value) + ")"
	case ExprStreams:
		return "streams"
	case ExprBase:
		return "base"
	case ExprThis:
		return "this"
	}
	return "?"
}

func (d *dumper) list(ids []ExprID) string {
	parts := make([]string, len(ids))
	for i, a := range ids {
		parts[i] = d.expr(a)
	}
	return strings.Join(parts, ", ")
}

func (d *dumper) genericArgs(args []ExprID) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = d.expr(a)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
