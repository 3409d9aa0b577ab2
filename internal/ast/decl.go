package ast

import (
	"sdslc/internal/source"
)

type DeclKind uint8

const (
	DeclNamespace DeclKind = iota
	DeclUsing
	DeclShader
	DeclEffect
	DeclStruct
	DeclVar
	DeclMethod
	DeclCBuffer
	DeclCompose
	DeclTypedef
)

func (k DeclKind) String() string {
	switch k {
	case DeclNamespace:
		return "namespace"
	case DeclUsing:
		return "using"
	case DeclShader:
		return "shader"
	case DeclEffect:
		return "effect"
	case DeclStruct:
		return "struct"
	case DeclVar:
		return "variable"
	case DeclMethod:
		return "method"
	case DeclCBuffer:
		return "cbuffer"
	case DeclCompose:
		return "compose"
	case DeclTypedef:
		return "typedef"
	}
	return "decl"
}

type Decl struct {
	Kind    DeclKind
	Name    string
	Span    source.Span
	Payload PayloadID
}

type NamespaceData struct {
	Decls []DeclID
}

// MixinRef names a parent in a shader's inheritance list. Args are the
// generic arguments of A<...>.
type MixinRef struct {
	Name string
	Span source.Span
	Args []ExprID
}

// GenericParam is a compile-time value parameter such as <float Scale>.
type GenericParam struct {
	Name string
	Type TypeID
	Span source.Span
}

type ShaderData struct {
	Generics []GenericParam
	Mixins   []MixinRef
	Members  []DeclID
}

type EffectData struct {
	Body []EffID
}

type StructData struct {
	Fields []DeclID
}

type VarData struct {
	Type      TypeID
	Mods      Modifiers
	ArrayDims []ExprID // NoExprID for an unsized dimension
	Semantic  string
	SemSpan   source.Span
	Init      ExprID
}

type MethodData struct {
	Ret         TypeID
	Params      []ParamID
	Mods        Modifiers
	Attrs       []AttrID
	RetSemantic string
	Body        StmtID // NoStmtID for abstract methods
}

type CBufferData struct {
	// Resource marks an rgroup.
	Resource bool
	Members  []DeclID
}

type ComposeData struct {
	Type  TypeID
	Array bool
}

type TypedefData struct {
	Type TypeID
}

// Param is a method parameter.
type Param struct {
	Name     string
	Type     TypeID
	Mods     Modifiers
	Semantic string
	Span     source.Span
}

// Attr is a bracketed attribute such as [numthreads(8, 8, 1)].
type Attr struct {
	Name string
	Args []ExprID
	Span source.Span
}

type Decls struct {
	Arena      *Arena[Decl]
	Namespaces *Arena[NamespaceData]
	Shaders    *Arena[ShaderData]
	Effects    *Arena[EffectData]
	Structs    *Arena[StructData]
	Vars       *Arena[VarData]
	Methods    *Arena[MethodData]
	CBuffers   *Arena[CBufferData]
	Composes   *Arena[ComposeData]
	Typedefs   *Arena[TypedefData]
	Params     *Arena[Param]
	Attrs      *Arena[Attr]
}

func NewDecls(capHint uint) *Decls {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Decls{
		Arena:      NewArena[Decl](capHint),
		Namespaces: NewArena[NamespaceData](4),
		Shaders:    NewArena[ShaderData](8),
		Effects:    NewArena[EffectData](4),
		Structs:    NewArena[StructData](8),
		Vars:       NewArena[VarData](capHint),
		Methods:    NewArena[MethodData](capHint),
		CBuffers:   NewArena[CBufferData](4),
		Composes:   NewArena[ComposeData](4),
		Typedefs:   NewArena[TypedefData](4),
		Params:     NewArena[Param](capHint),
		Attrs:      NewArena[Attr](8),
	}
}

func (d *Decls) new(kind DeclKind, span source.Span, name string, payload uint32) DeclID {
	return DeclID(d.Arena.Allocate(Decl{Kind: kind, Name: name, Span: span, Payload: PayloadID(payload)}))
}

func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

func (d *Decls) payload(id DeclID, kind DeclKind) (uint32, bool) {
	decl := d.Get(id)
	if decl == nil || decl.Kind != kind {
		return 0, false
	}
	return uint32(decl.Payload), true
}

func (d *Decls) NewNamespace(span source.Span, name string, decls []DeclID) DeclID {
	return d.new(DeclNamespace, span, name, d.Namespaces.Allocate(NamespaceData{Decls: decls}))
}

func (d *Decls) Namespace(id DeclID) (*NamespaceData, bool) {
	p, ok := d.payload(id, DeclNamespace)
	return d.Namespaces.Get(p), ok
}

func (d *Decls) NewUsing(span source.Span, name string) DeclID {
	return d.new(DeclUsing, span, name, 0)
}

func (d *Decls) NewShader(span source.Span, name string, data ShaderData) DeclID {
	return d.new(DeclShader, span, name, d.Shaders.Allocate(data))
}

func (d *Decls) Shader(id DeclID) (*ShaderData, bool) {
	p, ok := d.payload(id, DeclShader)
	return d.Shaders.Get(p), ok
}

func (d *Decls) NewEffect(span source.Span, name string, body []EffID) DeclID {
	return d.new(DeclEffect, span, name, d.Effects.Allocate(EffectData{Body: body}))
}

func (d *Decls) Effect(id DeclID) (*EffectData, bool) {
	p, ok := d.payload(id, DeclEffect)
	return d.Effects.Get(p), ok
}

func (d *Decls) NewStruct(span source.Span, name string, fields []DeclID) DeclID {
	return d.new(DeclStruct, span, name, d.Structs.Allocate(StructData{Fields: fields}))
}

func (d *Decls) Struct(id DeclID) (*StructData, bool) {
	p, ok := d.payload(id, DeclStruct)
	return d.Structs.Get(p), ok
}

func (d *Decls) NewVar(span source.Span, name string, data VarData) DeclID {
	return d.new(DeclVar, span, name, d.Vars.Allocate(data))
}

func (d *Decls) Var(id DeclID) (*VarData, bool) {
	p, ok := d.payload(id, DeclVar)
	return d.Vars.Get(p), ok
}

func (d *Decls) NewMethod(span source.Span, name string, data MethodData) DeclID {
	return d.new(DeclMethod, span, name, d.Methods.Allocate(data))
}

func (d *Decls) Method(id DeclID) (*MethodData, bool) {
	p, ok := d.payload(id, DeclMethod)
	return d.Methods.Get(p), ok
}

func (d *Decls) NewCBuffer(span source.Span, name string, data CBufferData) DeclID {
	return d.new(DeclCBuffer, span, name, d.CBuffers.Allocate(data))
}

func (d *Decls) CBuffer(id DeclID) (*CBufferData, bool) {
	p, ok := d.payload(id, DeclCBuffer)
	return d.CBuffers.Get(p), ok
}

func (d *Decls) NewCompose(span source.Span, name string, data ComposeData) DeclID {
	return d.new(DeclCompose, span, name, d.Composes.Allocate(data))
}

func (d *Decls) Compose(id DeclID) (*ComposeData, bool) {
	p, ok := d.payload(id, DeclCompose)
	return d.Composes.Get(p), ok
}

func (d *Decls) NewTypedef(span source.Span, name string, typ TypeID) DeclID {
	return d.new(DeclTypedef, span, name, d.Typedefs.Allocate(TypedefData{Type: typ}))
}

func (d *Decls) Typedef(id DeclID) (*TypedefData, bool) {
	p, ok := d.payload(id, DeclTypedef)
	return d.Typedefs.Get(p), ok
}

func (d *Decls) NewParam(p Param) ParamID {
	return ParamID(d.Params.Allocate(p))
}

func (d *Decls) Param(id ParamID) *Param {
	return d.Params.Get(uint32(id))
}

func (d *Decls) NewAttr(a Attr) AttrID {
	return AttrID(d.Attrs.Allocate(a))
}

func (d *Decls) Attr(id AttrID) *Attr {
	return d.Attrs.Get(uint32(id))
}
