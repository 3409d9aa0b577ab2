package sema

import (
	"errors"
	"fmt"
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// ErrNotFound is returned by a LoadFunc when no file defines the class.
var ErrNotFound = errors.New("shader class not found")

// LoadFunc parses the unit that defines class name into the shared
// builder. Errors other than ErrNotFound were already reported.
type LoadFunc func(name string) (ast.FileID, error)

// class is a parsed shader declaration. A generic declaration is a
// template: every distinct argument list referenced yields its own class
// with template and args set.
type class struct {
	name string
	// key is name with the folded generic arguments, as in Tint<2>.
	key  string
	decl ast.DeclID
	data *ast.ShaderData
	span source.Span

	template *class
	args     []*Const
	insts    map[string]*class

	// parents are the resolved mixins in declared order.
	parents []*class
	// lin is the linearization, parents first and the class last.
	lin     []*class
	linDone bool
	linBad  bool
}

func (c *class) generic() bool { return len(c.data.Generics) > 0 }

// origin is the template of an instantiated class, else c.
func (c *class) origin() *class {
	if c.template != nil {
		return c.template
	}
	return c
}

type effect struct {
	name string
	decl ast.DeclID
	body []ast.EffID
	span source.Span
}

// registry holds every class, effect and top-level type of the loaded units.
type registry struct {
	b       *ast.Builder
	rep     diag.Reporter
	load    LoadFunc
	classes map[string]*class
	effects map[string]*effect
	// types are top-level struct and typedef declarations.
	types   map[string]ast.DeclID
	files   map[ast.FileID]bool
	missing map[string]bool
	// failed is set when a loaded unit did not parse.
	failed bool
	// foldArgs evaluates generic arguments of ref to tmpl inside env.
	foldArgs func(env, tmpl *class, ref ast.MixinRef) ([]*Const, bool)
}

func newRegistry(b *ast.Builder, rep diag.Reporter, load LoadFunc) *registry {
	return &registry{
		b:       b,
		rep:     rep,
		load:    load,
		classes: make(map[string]*class),
		effects: make(map[string]*effect),
		types:   make(map[string]ast.DeclID),
		files:   make(map[ast.FileID]bool),
		missing: make(map[string]bool),
	}
}

// addFile registers the declarations of a parsed unit once.
func (r *registry) addFile(id ast.FileID) {
	if r.files[id] {
		return
	}
	r.files[id] = true
	f := r.b.Files.Get(id)
	if f == nil {
		return
	}
	r.addDecls("", f.Decls)
}

func (r *registry) addDecls(ns string, decls []ast.DeclID) {
	for _, id := range decls {
		d := r.b.Decls.Get(id)
		if d == nil {
			continue
		}
		switch d.Kind {
		case ast.DeclNamespace:
			data, _ := r.b.Decls.Namespace(id)
			r.addDecls(qualify(ns, d.Name), data.Decls)
		case ast.DeclShader:
			data, _ := r.b.Decls.Shader(id)
			c := &class{name: d.Name, key: d.Name, decl: id, data: data, span: d.Span}
			r.bind(ns, d.Name, d.Span, func(name string) bool {
				if _, dup := r.classes[name]; dup {
					return false
				}
				r.classes[name] = c
				return true
			})
		case ast.DeclEffect:
			data, _ := r.b.Decls.Effect(id)
			e := &effect{name: d.Name, decl: id, body: data.Body, span: d.Span}
			r.bind(ns, d.Name, d.Span, func(name string) bool {
				if _, dup := r.effects[name]; dup {
					return false
				}
				r.effects[name] = e
				return true
			})
		case ast.DeclStruct, ast.DeclTypedef:
			r.bind(ns, d.Name, d.Span, func(name string) bool {
				if _, dup := r.types[name]; dup {
					return false
				}
				r.types[name] = id
				return true
			})
		}
	}
}

// bind registers a declaration under its simple and qualified names; a
// clash of simple names is a duplicate.
func (r *registry) bind(ns, name string, span source.Span, add func(string) bool) {
	if !add(name) {
		diag.ReportError(r.rep, diag.SemaDuplicateSymbol, span,
			fmt.Sprintf("%q is already declared", name)).Emit()
		return
	}
	if ns != "" {
		add(qualify(ns, name))
	}
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// lastComponent strips a namespace qualifier.
func lastComponent(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// class finds a class, loading its unit on a miss. Unknown classes are
// reported once per name at span.
func (r *registry) class(name string, span source.Span) *class {
	if c := r.lookupClass(name); c != nil {
		return c
	}
	if r.missing[name] {
		return nil
	}
	if r.load != nil {
		file, err := r.load(lastComponent(name))
		switch {
		case err == nil:
			r.addFile(file)
			if c := r.lookupClass(name); c != nil {
				return c
			}
		case !errors.Is(err, ErrNotFound):
			r.missing[name] = true
			r.failed = true
			return nil
		}
	}
	r.missing[name] = true
	diag.ReportError(r.rep, diag.SemaUnknownShader, span,
		fmt.Sprintf("unknown shader class %q", name)).Emit()
	return nil
}

// resolve finds the class a mixin reference denotes, instantiating a
// generic class with the arguments folded in the scope of env.
func (r *registry) resolve(ref ast.MixinRef, env *class) *class {
	c := r.class(ref.Name, ref.Span)
	if c == nil {
		return nil
	}
	switch {
	case !c.generic() && len(ref.Args) == 0:
		return c
	case !c.generic():
		diag.ReportError(r.rep, diag.SemaGenericArguments, ref.Span,
			fmt.Sprintf("shader class %s is not generic", c.name)).Emit()
		return nil
	case len(ref.Args) != len(c.data.Generics):
		diag.ReportError(r.rep, diag.SemaGenericArguments, ref.Span,
			fmt.Sprintf("shader class %s needs %d generic arguments, got %d", c.name, len(c.data.Generics), len(ref.Args))).
			WithNote(c.span, "declared here").
			Emit()
		return nil
	}
	if r.foldArgs == nil {
		return nil
	}
	args, ok := r.foldArgs(env, c, ref)
	if !ok {
		return nil
	}
	key := genericKey(c.name, args)
	if inst, ok := c.insts[key]; ok {
		return inst
	}
	inst := &class{name: c.name, key: key, decl: c.decl, data: c.data, span: c.span, template: c, args: args}
	if c.insts == nil {
		c.insts = make(map[string]*class)
	}
	c.insts[key] = inst
	return inst
}

func (r *registry) lookupClass(name string) *class {
	if c, ok := r.classes[name]; ok {
		return c
	}
	if c, ok := r.classes[lastComponent(name)]; ok {
		return c
	}
	return nil
}

// linearize orders the mixins of c: parents first, depth-first in declared
// order, each class once. A cycle is reported with its path.
func (r *registry) linearize(c *class) ([]*class, bool) {
	var stack []*class
	var visit func(c *class, via source.Span) bool
	visit = func(c *class, via source.Span) bool {
		if c.linDone {
			return !c.linBad
		}
		for i, s := range stack {
			if s == c {
				path := make([]string, 0, len(stack)-i+1)
				for _, p := range stack[i:] {
					path = append(path, p.key)
				}
				path = append(path, c.key)
				diag.ReportError(r.rep, diag.SemaCyclicMixin, via,
					"cyclic mixin dependency: "+strings.Join(path, " -> ")).Emit()
				for _, p := range stack[i:] {
					p.linBad = true
				}
				return false
			}
		}
		if len(stack) >= maxMixinDepth {
			diag.ReportError(r.rep, diag.SemaCyclicMixin, via,
				fmt.Sprintf("mixin chain of %s is deeper than %d classes", stack[0].key, maxMixinDepth)).Emit()
			for _, p := range stack {
				p.linBad = true
			}
			return false
		}
		stack = append(stack, c)
		defer func() { stack = stack[:len(stack)-1] }()

		ok := true
		var lin []*class
		seen := make(map[*class]bool)
		c.parents = c.parents[:0]
		for _, ref := range c.data.Mixins {
			parent := r.resolve(ref, c)
			if parent == nil {
				ok = false
				continue
			}
			c.parents = append(c.parents, parent)
			if !visit(parent, ref.Span) {
				ok = false
				continue
			}
			for _, p := range parent.lin {
				if !seen[p] {
					seen[p] = true
					lin = append(lin, p)
				}
			}
		}
		if c.linBad {
			// цикл замкнулся на этом классе
			ok = false
		}
		c.lin = append(lin, c)
		c.linDone = true
		c.linBad = !ok
		return ok
	}
	if c.generic() && c.template == nil {
		diag.ReportError(r.rep, diag.SemaGenericArguments, c.span,
			fmt.Sprintf("generic shader class %s must be mixed in with arguments", c.name)).Emit()
		return nil, false
	}
	ok := visit(c, c.span)
	return c.lin, ok
}

// linearizeAll merges the linearizations of several roots, as an effect
// mixing them in order.
func (r *registry) linearizeAll(refs []ast.MixinRef) ([]*class, bool) {
	ok := true
	var lin []*class
	seen := make(map[*class]bool)
	for _, ref := range refs {
		c := r.resolve(ref, nil)
		if c == nil {
			ok = false
			continue
		}
		l, good := r.linearize(c)
		if !good {
			ok = false
			continue
		}
		for _, p := range l {
			if !seen[p] {
				seen[p] = true
				lin = append(lin, p)
			}
		}
	}
	return lin, ok
}
