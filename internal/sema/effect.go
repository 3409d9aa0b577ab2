package sema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// binding is a mixin compose statement: slot = class.
type binding struct {
	class string
	args  []ast.ExprID
	span  source.Span
}

// composition is what an effect evaluates to under a macro set.
type composition struct {
	mixins []ast.MixinRef
	binds  map[string]binding
	// macros is the final macro set: request defines overlaid with
	// mixin macro statements.
	macros map[string]float64
	// set lists the names assigned by mixin macro, in order.
	set []string
}

func newComposition(defines map[string]string) *composition {
	c := &composition{binds: make(map[string]binding), macros: make(map[string]float64)}
	names := make([]string, 0, len(defines))
	for n := range defines {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c.macros[n] = macroValue(defines[n])
	}
	return c
}

// macroValue reads a define: numbers and true/false, an empty value is 1,
// anything else 0.
func macroValue(text string) float64 {
	text = strings.TrimSpace(text)
	switch text {
	case "":
		return 1
	case "true":
		return 1
	case "false":
		return 0
	}
	t := strings.TrimRight(text, "fFuUlLhH")
	if v, err := strconv.ParseInt(t, 0, 64); err == nil {
		return float64(v)
	}
	if v, err := strconv.ParseFloat(t, 64); err == nil {
		return v
	}
	return 0
}

// Defines renders the macros set by the effect for unit preprocessing.
func (c *composition) Defines() map[string]string {
	out := make(map[string]string, len(c.set))
	for _, n := range c.set {
		out[n] = strconv.FormatFloat(c.macros[n], 'g', -1, 64)
	}
	return out
}

// evalEffect folds the effect body: if conditions pick one branch, mixin
// statements naming another effect inline its body.
func (a *analyzer) evalEffect(e *effect, comp *composition) {
	a.evalEffBody(e.body, comp, map[*effect]bool{e: true})
}

func (a *analyzer) evalEffBody(body []ast.EffID, comp *composition, active map[*effect]bool) {
	for _, id := range body {
		a.evalEff(id, comp, active)
	}
}

func (a *analyzer) evalEff(id ast.EffID, comp *composition, active map[*effect]bool) {
	st := a.b.Effs.Get(id)
	if st == nil {
		return
	}
	switch st.Kind {
	case ast.EffMixin:
		if sub, ok := a.reg.effects[st.Name]; ok && a.reg.lookupClass(st.Name) == nil {
			if active[sub] {
				diag.ReportError(a.rep, diag.SemaCyclicMixin, st.TargetSpan,
					fmt.Sprintf("effect %s mixes itself", st.Name)).Emit()
				return
			}
			active[sub] = true
			a.evalEffBody(sub.body, comp, active)
			delete(active, sub)
			return
		}
		comp.mixins = append(comp.mixins, ast.MixinRef{Name: st.Name, Span: st.TargetSpan, Args: st.Args})
	case ast.EffCompose:
		comp.binds[st.Name] = binding{class: st.Target, args: st.Args, span: st.TargetSpan}
	case ast.EffMacro:
		v := 1.0
		if st.Value.IsValid() {
			v = a.evalCond(st.Value, comp.macros)
		}
		if !containsName(comp.set, st.Name) {
			comp.set = append(comp.set, st.Name)
		}
		comp.macros[st.Name] = v
	case ast.EffIf:
		if a.evalCond(st.Value, comp.macros) != 0 {
			a.evalEff(st.Then, comp, active)
		} else if st.Else.IsValid() {
			a.evalEff(st.Else, comp, active)
		}
	case ast.EffBlock:
		a.evalEffBody(st.Body, comp, active)
	case ast.EffUsingParams:
		// параметры только объявляются
	}
}

func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// evalCond evaluates an effect condition. Identifiers and dotted names read
// macros; unknown names are 0.
func (a *analyzer) evalCond(id ast.ExprID, macros map[string]float64) float64 {
	e := a.b.Exprs.Get(id)
	if e == nil {
		return 0
	}
	switch e.Kind {
	case ast.ExprLit:
		lit, _ := a.b.Exprs.Literal(id)
		switch lit.Kind {
		case ast.LitBool:
			return boolFloat(lit.Bool)
		case ast.LitFloat:
			return lit.Number.Float
		}
		return float64(lit.Number.Int)
	case ast.ExprIdent, ast.ExprMember:
		name, ok := a.dottedName(id)
		if !ok {
			break
		}
		if v, ok := macros[name]; ok {
			return v
		}
		if v, ok := macros[lastComponent(name)]; ok {
			return v
		}
		return 0
	case ast.ExprUnary:
		u, _ := a.b.Exprs.Unary(id)
		v := a.evalCond(u.Operand, macros)
		switch u.Op {
		case ast.UnNeg:
			return -v
		case ast.UnNot:
			return boolFloat(v == 0)
		case ast.UnBitNot:
			return float64(^int64(v))
		}
		return v
	case ast.ExprBinary:
		bin, _ := a.b.Exprs.Binary(id)
		l := a.evalCond(bin.Left, macros)
		// короткое замыкание
		switch bin.Op {
		case ast.BinLogAnd:
			if l == 0 {
				return 0
			}
			return boolFloat(a.evalCond(bin.Right, macros) != 0)
		case ast.BinLogOr:
			if l != 0 {
				return 1
			}
			return boolFloat(a.evalCond(bin.Right, macros) != 0)
		}
		return foldCondBinary(bin.Op, l, a.evalCond(bin.Right, macros))
	case ast.ExprTernary:
		t, _ := a.b.Exprs.Ternary(id)
		if a.evalCond(t.Cond, macros) != 0 {
			return a.evalCond(t.Then, macros)
		}
		return a.evalCond(t.Else, macros)
	case ast.ExprCast:
		c, _ := a.b.Exprs.Cast(id)
		return a.evalCond(c.Value, macros)
	}
	diag.ReportError(a.rep, diag.SemaConstantRequired, e.Span,
		"effect conditions may only use literals, macros and operators").Emit()
	return 0
}

func foldCondBinary(op ast.BinaryOp, l, r float64) float64 {
	switch op {
	case ast.BinAdd:
		return l + r
	case ast.BinSub:
		return l - r
	case ast.BinMul:
		return l * r
	case ast.BinDiv:
		if r == 0 {
			return 0
		}
		return l / r
	case ast.BinMod:
		if r == 0 {
			return 0
		}
		return math.Mod(l, r)
	case ast.BinShl:
		return float64(int64(l) << uint64(r))
	case ast.BinShr:
		return float64(int64(l) >> uint64(r))
	case ast.BinBitAnd:
		return float64(int64(l) & int64(r))
	case ast.BinBitOr:
		return float64(int64(l) | int64(r))
	case ast.BinBitXor:
		return float64(int64(l) ^ int64(r))
	case ast.BinEq:
		return boolFloat(l == r)
	case ast.BinNe:
		return boolFloat(l != r)
	case ast.BinLt:
		return boolFloat(l < r)
	case ast.BinLe:
		return boolFloat(l <= r)
	case ast.BinGt:
		return boolFloat(l > r)
	case ast.BinGe:
		return boolFloat(l >= r)
	}
	return 0
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// dottedName flattens A.B.C member chains of identifiers.
func (a *analyzer) dottedName(id ast.ExprID) (string, bool) {
	if ident, ok := a.b.Exprs.Ident(id); ok {
		return ident.Name, true
	}
	if m, ok := a.b.Exprs.Member(id); ok {
		prefix, ok := a.dottedName(m.Target)
		if !ok {
			return "", false
		}
		return prefix + "." + m.Name, true
	}
	return "", false
}
