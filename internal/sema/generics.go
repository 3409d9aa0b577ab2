package sema

import (
	"fmt"
	"strconv"
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/symbols"
	"sdslc/internal/types"
)

// maxMixinDepth bounds the parent chain of a class; generic classes that
// instantiate themselves with new arguments would otherwise never end.
const maxMixinDepth = 64

// genericArgs folds the arguments of a reference to tmpl. Names in the
// arguments resolve to the generic parameters of env, the class holding
// the reference.
func (a *analyzer) genericArgs(env, tmpl *class, ref ast.MixinRef) ([]*Const, bool) {
	c := a.classChecker(nil, nil)
	if env != nil && env.template != nil {
		f := symbols.NewFrame(symbols.FrameShader, env.name)
		a.declareGenerics(f, env)
		c.tab.PushFrame(f)
	}
	params := tmpl.data.Generics
	out := make([]*Const, len(params))
	ok := true
	for i, p := range params {
		t := c.resolveType(p.Type)
		if t.IsInvalid() {
			ok = false
			continue
		}
		if !t.IsNumeric() || t.IsMatrix() {
			a.errorf(diag.SemaGenericArguments, p.Span, "generic parameter %s of %s must have a scalar or vector type, not %s", p.Name, tmpl.name, t)
			ok = false
			continue
		}
		e := c.checkInit(ref.Args[i], t)
		k, folded := e.(*Const)
		if !folded {
			if !anyInvalid(e) {
				a.errorf(diag.SemaConstantRequired, e.Span(), "generic argument %s of %s must be a constant", p.Name, tmpl.name)
			}
			ok = false
			continue
		}
		out[i] = k
	}
	return out, ok
}

// declareGenerics binds the parameters of an instantiated class as
// folded constants in f.
func (a *analyzer) declareGenerics(f *symbols.Frame, cls *class) {
	for i, p := range cls.data.Generics {
		k := cls.args[i]
		sym := &symbols.Symbol{
			Name:    p.Name,
			Kind:    symbols.SymbolConstant,
			Storage: symbols.StorageStatic,
			Flags:   symbols.SymbolFlagConst,
			Type:    k.Type(),
			Span:    p.Span,
			Owner:   cls.name,
		}
		got, err := f.Declare(sym)
		if err != nil {
			a.errorf(diag.SemaDuplicateSymbol, p.Span, "generic parameter %s of %s is declared twice", p.Name, cls.name)
			continue
		}
		a.info[got] = &Var{Name: p.Name, Type: k.Type(), Storage: StorageConst, Init: k, Span: p.Span, ReadOnly: true}
	}
}

// genericKey names an instantiation, as in Tint<2,float2(1,0.5)>.
func genericKey(name string, args []*Const) string {
	parts := make([]string, len(args))
	for i, k := range args {
		parts[i] = constText(k)
	}
	return name + "<" + strings.Join(parts, ",") + ">"
}

func constText(k *Const) string {
	t := k.Type()
	comps := make([]string, len(k.Values))
	for i, v := range k.Values {
		switch {
		case t.Scalar == types.ScalarBool:
			comps[i] = strconv.FormatBool(v.Bool)
		case t.Scalar.IsFloat():
			comps[i] = strconv.FormatFloat(v.Float, 'g', -1, 64)
		default:
			comps[i] = strconv.FormatInt(v.Int, 10)
		}
	}
	if len(comps) == 1 {
		return comps[0]
	}
	return fmt.Sprintf("%s(%s)", t, strings.Join(comps, ","))
}
