package ast

import (
	"sdslc/internal/source"
)

type EffKind uint8

const (
	EffMixin EffKind = iota
	EffCompose
	EffMacro
	EffIf
	EffBlock
	EffUsingParams
)

// Eff is one statement in an effect body.
type Eff struct {
	Kind EffKind
	Span source.Span
	// Name is the mixin, composition slot, macro or parameter block name.
	Name string
	// Target is the class bound by mixin compose.
	Target     string
	TargetSpan source.Span
	// Args are generic arguments of the mixed or bound class.
	Args []ExprID
	// Value is the macro value or the if condition.
	Value ExprID
	Then  EffID
	Else  EffID
	Body  []EffID
}

type Effs struct {
	Arena *Arena[Eff]
}

func NewEffs(capHint uint) *Effs {
	return &Effs{Arena: NewArena[Eff](capHint)}
}

func (e *Effs) New(eff Eff) EffID {
	return EffID(e.Arena.Allocate(eff))
}

func (e *Effs) Get(id EffID) *Eff {
	return e.Arena.Get(uint32(id))
}
