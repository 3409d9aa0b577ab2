package ast

import (
	"sdslc/internal/source"
)

type Hints struct{ Files, Decls, Stmts, Exprs uint }

// Builder owns every arena of a parse. Nodes are immutable once allocated,
// so a parser can backtrack without invalidating anything it already built.
type Builder struct {
	Files *Files
	Decls *Decls
	Stmts *Stmts
	Exprs *Exprs
	Types *Types
	Effs  *Effs
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 3
	}
	if hints.Decls == 0 {
		hints.Decls = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Decls: NewDecls(hints.Decls),
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),
		Types: NewTypes(hints.Decls),
		Effs:  NewEffs(1 << 4),
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

func (b *Builder) PushDecl(file FileID, decl DeclID) {
	f := b.Files.Get(file)
	f.Decls = append(f.Decls, decl)
}
