package spirv

import (
	"errors"
	"fmt"

	"sdslc/internal/sema"
	"sdslc/internal/types"
)

// ErrEmit wraps encoding-level failures; semantic problems are reported by
// sema before emission starts.
var ErrEmit = errors.New("spirv emission failed")

// Options tune emission.
type Options struct {
	// StripNames omits OpName and OpMemberName.
	StripNames bool
}

type emitter struct {
	prog *sema.Program
	b    *ModuleBuilder
	opts Options
	glsl uint32

	structs map[*types.Type]uint32
	globals map[*sema.Var]uint32
	blocks  map[*sema.CBuffer]uint32
	funcs   map[*sema.Function]uint32

	fn  *fnState
	err error
}

// fnState is the function being emitted. Variables are hoisted into the
// entry block, so they are collected apart from the body.
type fnState struct {
	vars       []Instruction
	body       []Instruction
	locals     map[*sema.Var]uint32
	loops      []loopLabels
	terminated bool
	ret        *types.Type
}

type loopLabels struct {
	merge, cont uint32
}

// Emit lowers a checked program. It never validates semantics; errors are
// encoding failures and wrap ErrEmit.
func Emit(prog *sema.Program, opts Options) ([]byte, error) {
	e := &emitter{
		prog:    prog,
		b:       NewModuleBuilder(prog.Profile.SPIRVVersion()),
		opts:    opts,
		structs: make(map[*types.Type]uint32),
		globals: make(map[*sema.Var]uint32),
		blocks:  make(map[*sema.CBuffer]uint32),
		funcs:   make(map[*sema.Function]uint32),
	}
	e.glsl = e.b.ExtInstImport(glslStd450)

	e.uniformBlocks()
	e.resources()
	e.privateGlobals()
	for _, fn := range prog.Functions {
		e.funcs[fn] = e.b.AllocID()
	}
	for _, fn := range prog.Functions {
		e.function(fn)
	}
	for _, ep := range prog.Entries {
		e.entryPoint(ep)
	}
	if len(prog.Entries) == 0 {
		e.b.Require(CapabilityLinkage)
	}
	if e.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmit, e.err)
	}
	out, err := e.b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmit, err)
	}
	return out, nil
}

// fail keeps the first encoding error.
func (e *emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *emitter) name(id uint32, name string) {
	if !e.opts.StripNames && name != "" {
		e.b.Name(id, name)
	}
}

func (e *emitter) memberName(id, member uint32, name string) {
	if !e.opts.StripNames {
		e.b.MemberName(id, member, name)
	}
}

// Globals --------------------------------------------------------------------

func (e *emitter) uniformBlocks() {
	for _, cb := range e.prog.CBuffers {
		fields := cb.Fields()
		members := make([]uint32, len(fields))
		for i := range fields {
			fields[i].Type = e.physical(fields[i].Type)
			members[i] = e.typeID(fields[i].Type)
		}
		st := e.b.Define(SectionTypes, OpTypeStruct, 0, members...)
		e.name(st, cb.Name)
		e.b.Decorate(st, DecorationBlock)
		for i, f := range fields {
			e.memberName(st, uint32(i), f.Name)
		}
		e.decorateMembers(st, fields, cb.Layouts)

		v := e.b.Define(SectionTypes, OpVariable, e.pointerType(StorageUniform, st), uint32(StorageUniform))
		e.name(v, cb.Name)
		e.b.Decorate(v, DecorationDescriptorSet, 0)
		e.b.Decorate(v, DecorationBinding, cb.Binding)
		e.blocks[cb] = v
	}
}

// resources declares textures and samplers as UniformConstant variables
// and buffers as read-only runtime arrays in uniform memory.
func (e *emitter) resources() {
	for _, r := range e.prog.Resources {
		var ptr uint32
		class := StorageUniformConstant
		if r.Type.Kind == types.KindBuffer {
			class = StorageUniform
			arr := e.typeID(types.MakeArray(e.physical(r.Type.Elem), types.ArrayUnsized))
			st := e.b.Define(SectionTypes, OpTypeStruct, 0, arr)
			e.name(st, r.Type.String())
			e.b.Decorate(st, DecorationBufferBlock)
			e.b.MemberDecorate(st, 0, DecorationOffset, 0)
			e.b.MemberDecorate(st, 0, DecorationNonWritable)
			ptr = e.pointerType(class, st)
		} else {
			ptr = e.pointerType(class, e.typeID(r.Type))
		}
		v := e.b.Define(SectionTypes, OpVariable, ptr, uint32(class))
		e.name(v, r.Name)
		e.b.Decorate(v, DecorationDescriptorSet, 0)
		e.b.Decorate(v, DecorationBinding, r.Binding)
		e.globals[r] = v
	}
}

// privateGlobals declares stream, static and groupshared variables. Folded
// initializers become the variable initializer; the rest run at the start
// of every entry wrapper.
func (e *emitter) privateGlobals() {
	for _, g := range e.prog.Globals {
		class := StoragePrivate
		if g.Storage == sema.StorageWorkgroup {
			class = StorageWorkgroup
		}
		operands := []uint32{uint32(class)}
		if k, ok := g.Init.(*sema.Const); ok && class == StoragePrivate {
			operands = append(operands, e.constValue(k.Type(), k.Values))
		}
		v := e.b.Define(SectionTypes, OpVariable, e.pointerType(class, e.typeID(g.Type)), operands...)
		e.name(v, g.Name)
		e.globals[g] = v
	}
}

// Functions ------------------------------------------------------------------

// function emits one method body. Parameters passed by value are copied
// into function variables so the body may assign them; out and inout
// parameters are pointers.
func (e *emitter) function(fn *sema.Function) {
	ret := e.typeID(fn.Ret)
	params := make([]uint32, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = e.paramType(p)
	}
	id := e.funcs[fn]
	e.b.Add(SectionFunctions, OpFunction, ret, id, functionControlNone, e.functionType(ret, params...))
	e.name(id, fn.Name)

	e.fn = &fnState{locals: make(map[*sema.Var]uint32), ret: fn.Ret}
	pids := make([]uint32, len(fn.Params))
	for i, p := range fn.Params {
		pids[i] = e.b.Define(SectionFunctions, OpFunctionParameter, params[i])
		e.name(pids[i], p.Name)
	}
	for i, p := range fn.Params {
		if p.Qual.Writes() {
			e.fn.locals[p] = pids[i]
			continue
		}
		v := e.local(p.Type, p.Name)
		e.store(v, pids[i])
		e.fn.locals[p] = v
	}
	if fn.Body != nil {
		e.block(fn.Body)
	}
	e.finish()
}

func (e *emitter) paramType(p *sema.Var) uint32 {
	if p.Qual.Writes() {
		return e.pointerType(StorageFunction, e.typeID(p.Type))
	}
	return e.typeID(p.Type)
}

// finish closes the open block and flushes the function into the module.
func (e *emitter) finish() {
	if !e.fn.terminated {
		if e.fn.ret.IsVoid() {
			e.emit(OpReturn)
		} else {
			e.emit(OpUnreachable)
		}
	}
	e.b.Add(SectionFunctions, OpLabel, e.b.AllocID())
	for _, inst := range e.fn.vars {
		e.b.Add(SectionFunctions, inst.Op, inst.Words...)
	}
	for _, inst := range e.fn.body {
		e.b.Add(SectionFunctions, inst.Op, inst.Words...)
	}
	e.b.Add(SectionFunctions, OpFunctionEnd)
	e.fn = nil
}

// local declares a function variable in the entry block.
func (e *emitter) local(t *types.Type, name string) uint32 {
	id := e.b.AllocID()
	ptr := e.pointerType(StorageFunction, e.typeID(t))
	e.fn.vars = append(e.fn.vars, Instruction{Op: OpVariable, Words: []uint32{ptr, id, uint32(StorageFunction)}})
	e.name(id, name)
	return id
}

// emit appends a body instruction without a result.
func (e *emitter) emit(op Op, words ...uint32) {
	e.fn.body = append(e.fn.body, Instruction{Op: op, Words: words})
	switch op {
	case OpBranch, OpBranchConditional, OpReturn, OpReturnValue, OpKill, OpUnreachable:
		e.fn.terminated = true
	}
}

// value appends a body instruction producing a result of type t.
func (e *emitter) value(op Op, t uint32, operands ...uint32) uint32 {
	id := e.b.AllocID()
	e.fn.body = append(e.fn.body, Instruction{Op: op, Words: append([]uint32{t, id}, operands...)})
	return id
}

func (e *emitter) label(id uint32) {
	e.fn.body = append(e.fn.body, Instruction{Op: OpLabel, Words: []uint32{id}})
	e.fn.terminated = false
}

// branch jumps to target unless the block already ended.
func (e *emitter) branch(target uint32) {
	if !e.fn.terminated {
		e.emit(OpBranch, target)
	}
}

func (e *emitter) load(t *types.Type, ptr uint32) uint32 {
	return e.value(OpLoad, e.typeID(t), ptr)
}

func (e *emitter) store(ptr, v uint32) { e.emit(OpStore, ptr, v) }

func (e *emitter) ext(t *types.Type, inst uint32, args ...uint32) uint32 {
	return e.value(OpExtInst, e.typeID(t), append([]uint32{e.glsl, inst}, args...)...)
}
