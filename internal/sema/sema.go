// Package sema checks a composition of shader classes and lowers it to a
// typed program. It links mixins into instances, resolves every name and
// call, validates stream usage across the stages and leaves emission with
// nothing to decide.
package sema

import (
	"fmt"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/source"
	"sdslc/internal/streams"
	"sdslc/internal/symbols"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

// Options configure one analysis.
type Options struct {
	Reporter diag.Reporter
	Profile  target.Profile
	// Defines are the request macros; effect conditions read them.
	Defines map[string]string
	// Load parses the unit of a class referenced by name.
	Load LoadFunc
	// Root names the shader class or effect to compile. Empty selects the
	// last one declared in the main unit.
	Root string
}

// Result is the outcome of Analyze.
type Result struct {
	Program *Program
	// Macros are the macros set by mixin macro statements.
	Macros map[string]string
	// OK is false when an error was reported; Program is then incomplete.
	OK bool
}

type analyzer struct {
	b       *ast.Builder
	rep     diag.Reporter
	counter *diag.CountingReporter
	opts    Options
	reg     *registry
	prog    *Program

	info       map[*symbols.Symbol]any
	structs    map[ast.DeclID]*types.Type
	structBusy map[ast.DeclID]bool
	stageVars  map[sharedKey]*Var
	stageFuncs map[sharedKey]*Function
	cbuffers   map[sharedKey]*CBuffer
	globals    *CBuffer
	names      map[string]bool
	instances  []*instance
	streamSeq  int
}

// Analyze checks the composition rooted in the main unit.
func Analyze(b *ast.Builder, main ast.FileID, opts Options) Result {
	counter := &diag.CountingReporter{Next: opts.Reporter}
	a := &analyzer{
		b:          b,
		counter:    counter,
		rep:        diag.NewDedupReporter(counter),
		opts:       opts,
		info:       make(map[*symbols.Symbol]any),
		structs:    make(map[ast.DeclID]*types.Type),
		structBusy: make(map[ast.DeclID]bool),
		stageVars:  make(map[sharedKey]*Var),
		stageFuncs: make(map[sharedKey]*Function),
		cbuffers:   make(map[sharedKey]*CBuffer),
		names:      make(map[string]bool),
	}
	a.reg = newRegistry(b, a.rep, opts.Load)
	a.reg.foldArgs = a.genericArgs
	a.reg.addFile(main)
	a.prog = &Program{
		Profile:    opts.Profile,
		Streams:    streams.NewTable(),
		StreamVars: make(map[*streams.Stream]*Var),
	}

	comp := newComposition(opts.Defines)
	lin, ok := a.root(main, comp)
	res := Result{Program: a.prog, Macros: comp.Defines()}
	if !ok || a.reg.failed {
		return res
	}

	root := a.newInstance("", "", lin, comp, 0)
	// слоты композиций добавляют экземпляры по ходу объявления
	for i := 0; i < len(a.instances); i++ {
		a.declareInstance(a.instances[i])
	}
	for _, inst := range a.instances {
		a.checkInheritance(inst)
	}
	for _, inst := range a.instances {
		a.checkBodies(inst)
	}
	if a.reg.failed {
		return res
	}
	a.collectEntries(root)
	a.layoutBuffers()
	res.OK = counter.Errors == 0 && !a.reg.failed
	return res
}

// root picks the shader or effect to compile and returns its
// linearization.
func (a *analyzer) root(main ast.FileID, comp *composition) ([]*class, bool) {
	name, span, isEffect := a.opts.Root, source.Span{}, false
	if name == "" {
		var found bool
		name, span, isEffect, found = a.lastRoot(a.b.Files.Get(main).Decls)
		if !found {
			f := a.b.Files.Get(main)
			diag.ReportError(a.rep, diag.SemaUnknownShader, source.Span{File: f.Span.File},
				"no shader class or effect to compile").Emit()
			return nil, false
		}
	} else if _, ok := a.reg.effects[name]; ok && a.reg.lookupClass(name) == nil {
		isEffect = true
	}
	a.prog.Name = lastComponent(name)

	if isEffect {
		e := a.reg.effects[name]
		a.evalEffect(e, comp)
		if len(comp.mixins) == 0 {
			diag.ReportError(a.rep, diag.SemaUnknownShader, e.span,
				fmt.Sprintf("effect %s mixes no shader class", e.name)).Emit()
			return nil, false
		}
		return a.reg.linearizeAll(comp.mixins)
	}
	c := a.reg.class(name, span)
	if c == nil {
		return nil, false
	}
	return a.reg.linearize(c)
}

func (a *analyzer) lastRoot(decls []ast.DeclID) (name string, span source.Span, isEffect, found bool) {
	for _, id := range decls {
		d := a.b.Decls.Get(id)
		switch d.Kind {
		case ast.DeclShader:
			name, span, isEffect, found = d.Name, d.Span, false, true
		case ast.DeclEffect:
			name, span, isEffect, found = d.Name, d.Span, true, true
		case ast.DeclNamespace:
			ns, _ := a.b.Decls.Namespace(id)
			if n, s, e, ok := a.lastRoot(ns.Decls); ok {
				name, span, isEffect, found = n, s, e, true
			}
		}
	}
	return
}

// uniq returns base, or base with a numeric suffix when taken.
func (a *analyzer) uniq(base string) string {
	name := base
	for i := 2; a.names[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	a.names[name] = true
	return name
}

func (a *analyzer) errorf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportError(a.rep, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (a *analyzer) warnf(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportWarning(a.rep, code, span, fmt.Sprintf(format, args...)).Emit()
}
