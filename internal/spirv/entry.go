package spirv

import (
	"fmt"
	"strings"

	"sdslc/internal/ast"
	"sdslc/internal/sema"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

var executionModels = map[target.Stage]ExecutionModel{
	target.StageVertex:   ExecutionModelVertex,
	target.StageHull:     ExecutionModelTessellationControl,
	target.StageDomain:   ExecutionModelTessellationEvaluation,
	target.StageGeometry: ExecutionModelGeometry,
	target.StagePixel:    ExecutionModelFragment,
	target.StageCompute:  ExecutionModelGLCompute,
}

// interfaceVar is one Input or Output variable of an entry wrapper.
type interfaceVar struct {
	id     uint32
	t      *types.Type
	stream *sema.Var
}

// entryPoint emits the wrapper for ep: run non-constant global
// initializers, copy inputs into the stream globals, call the entry and
// copy the outputs out.
func (e *emitter) entryPoint(ep *sema.EntryPoint) {
	var ins, outs []interfaceVar
	depth := false
	for _, v := range ep.Inputs {
		if iv, ok := e.interfaceVar(ep.Stage, v, StorageInput); ok {
			ins = append(ins, iv)
		}
	}
	for _, v := range ep.Outputs {
		if iv, ok := e.interfaceVar(ep.Stage, v, StorageOutput); ok {
			outs = append(outs, iv)
		}
		if strings.EqualFold(v.Semantic, "SV_Depth") {
			depth = true
		}
	}

	void := e.typeID(types.Void)
	id := e.b.AllocID()
	e.b.Add(SectionFunctions, OpFunction, void, id, functionControlNone, e.functionType(void))
	e.name(id, ep.Name)
	e.fn = &fnState{locals: make(map[*sema.Var]uint32), ret: types.Void}
	for _, g := range e.prog.Globals {
		if _, folded := g.Init.(*sema.Const); g.Init != nil && !folded {
			e.store(e.globals[g], e.expr(g.Init))
		}
	}
	for _, iv := range ins {
		v := e.load(iv.t, iv.id)
		e.store(e.globals[iv.stream], e.adapt(v, iv.t, iv.stream.Type))
	}
	e.value(OpFunctionCall, void, e.funcs[ep.Func])
	for _, iv := range outs {
		v := e.load(iv.stream.Type, e.globals[iv.stream])
		e.store(iv.id, e.adapt(v, iv.stream.Type, iv.t))
	}
	e.finish()

	iface := make([]uint32, 0, len(ins)+len(outs))
	for _, iv := range append(ins, outs...) {
		iface = append(iface, iv.id)
	}
	e.b.EntryPoint(executionModels[ep.Stage], id, ep.Name, iface)
	e.executionModes(ep, id, depth)
}

func (e *emitter) executionModes(ep *sema.EntryPoint, id uint32, depth bool) {
	switch ep.Stage {
	case target.StagePixel:
		e.b.ExecutionMode(id, ExecutionModeOriginUpperLeft)
		if depth {
			e.b.ExecutionMode(id, ExecutionModeDepthReplacing)
		}
	case target.StageCompute:
		e.b.ExecutionMode(id, ExecutionModeLocalSize, ep.LocalSize[0], ep.LocalSize[1], ep.LocalSize[2])
	case target.StageGeometry:
		e.b.Require(CapabilityGeometry)
		e.b.ExecutionMode(id, ExecutionModeInputPoints)
		e.b.ExecutionMode(id, ExecutionModeInvocations, 1)
		e.b.ExecutionMode(id, ExecutionModeOutputPoints)
		e.b.ExecutionMode(id, ExecutionModeOutputVertices, 1)
	case target.StageHull:
		e.b.Require(CapabilityTessellation)
		e.b.ExecutionMode(id, ExecutionModeOutputVertices, 3)
	case target.StageDomain:
		e.b.Require(CapabilityTessellation)
		e.b.ExecutionMode(id, ExecutionModeTriangles)
		e.b.ExecutionMode(id, ExecutionModeSpacingEqual)
		e.b.ExecutionMode(id, ExecutionModeVertexOrderCw)
	}
}

// builtin describes a system-value semantic.
type builtin struct {
	id   BuiltIn
	t    *types.Type
	caps []Capability
}

// builtinFor maps SV_ semantics to BuiltIn decorations. SV_Position is a
// plain attribute when it feeds the vertex stage.
func builtinFor(semantic string, stage target.Stage, class StorageClass) (builtin, bool) {
	switch strings.ToUpper(semantic) {
	case "SV_POSITION":
		if stage == target.StagePixel && class == StorageInput {
			return builtin{id: BuiltInFragCoord, t: types.Float4}, true
		}
		if stage == target.StageVertex && class == StorageInput {
			return builtin{}, false
		}
		return builtin{id: BuiltInPosition, t: types.Float4}, true
	case "SV_DEPTH":
		return builtin{id: BuiltInFragDepth, t: types.Float}, true
	case "SV_VERTEXID":
		return builtin{id: BuiltInVertexIndex, t: types.Int}, true
	case "SV_INSTANCEID":
		return builtin{id: BuiltInInstanceIndex, t: types.Int}, true
	case "SV_ISFRONTFACE":
		return builtin{id: BuiltInFrontFacing, t: types.Bool}, true
	case "SV_PRIMITIVEID":
		return builtin{id: BuiltInPrimitiveID, t: types.Int, caps: []Capability{CapabilityGeometry}}, true
	case "SV_SAMPLEINDEX":
		return builtin{id: BuiltInSampleID, t: types.Int, caps: []Capability{CapabilitySampleRateShading}}, true
	case "SV_DISPATCHTHREADID":
		return builtin{id: BuiltInGlobalInvocationID, t: types.VectorOf(types.ScalarUInt, 3)}, true
	case "SV_GROUPID":
		return builtin{id: BuiltInWorkgroupID, t: types.VectorOf(types.ScalarUInt, 3)}, true
	case "SV_GROUPTHREADID":
		return builtin{id: BuiltInLocalInvocationID, t: types.VectorOf(types.ScalarUInt, 3)}, true
	case "SV_GROUPINDEX":
		return builtin{id: BuiltInLocalInvocationIndex, t: types.UInt}, true
	}
	return builtin{}, false
}

// Slot is where a stream crosses a stage boundary: a builtin variable or
// a numbered location.
type Slot struct {
	IsBuiltin bool
	Builtin   BuiltIn
	Location  uint32
}

// InterfaceSlot assigns the slot a stream variable occupies as an input or
// output of stage. Non-system semantics are numbered by declaration order;
// a vertex input SV_Position takes the first location after them.
func InterfaceSlot(prog *sema.Program, stage target.Stage, v *sema.Var, output bool) (Slot, error) {
	class := StorageInput
	if output {
		class = StorageOutput
	}
	if bi, ok := builtinFor(v.Semantic, stage, class); ok {
		return Slot{IsBuiltin: true, Builtin: bi.id}, nil
	}
	if loc, ok := prog.Streams.Location(v.Stream); ok {
		return Slot{Location: loc}, nil
	}
	if stage == target.StageVertex && !output && strings.EqualFold(v.Semantic, "SV_Position") {
		var n uint32
		for _, s := range prog.Streams.Streams() {
			if !strings.HasPrefix(strings.ToUpper(s.Semantic), "SV_") {
				n++
			}
		}
		return Slot{Location: n}, nil
	}
	return Slot{}, fmt.Errorf("stream %s: semantic %s has no interface slot in the %s stage", v.Name, v.Semantic, stage)
}

// interfaceVar declares the Input or Output variable a stream is copied
// through, decorated as a builtin or with its location.
func (e *emitter) interfaceVar(stage target.Stage, v *sema.Var, class StorageClass) (interfaceVar, bool) {
	iv := interfaceVar{stream: v, t: e.physical(v.Type)}
	slot, err := InterfaceSlot(e.prog, stage, v, class == StorageOutput)
	if err != nil {
		e.fail(err)
		return iv, false
	}
	bi, _ := builtinFor(v.Semantic, stage, class)
	if slot.IsBuiltin {
		iv.t = bi.t
	}
	iv.id = e.b.Define(SectionTypes, OpVariable, e.pointerType(class, e.typeID(iv.t)), uint32(class))
	prefix := "in_"
	if class == StorageOutput {
		prefix = "out_"
	}
	e.name(iv.id, prefix+v.Name)

	if slot.IsBuiltin {
		e.b.Decorate(iv.id, DecorationBuiltIn, uint32(bi.id))
		for _, c := range bi.caps {
			e.b.Require(c)
		}
		return iv, true
	}
	e.b.Decorate(iv.id, DecorationLocation, slot.Location)
	e.interpolation(iv, stage, class)
	return iv, true
}

func (e *emitter) interpolation(iv interfaceVar, stage target.Stage, class StorageClass) {
	mods := iv.stream.Interp
	fragIn := stage == target.StagePixel && class == StorageInput
	switch {
	case mods.Has(ast.ModNoInterpolation):
		e.b.Decorate(iv.id, DecorationFlat)
	case fragIn && (!iv.t.Scalar.IsFloat() || iv.t.Scalar == types.ScalarDouble):
		e.b.Decorate(iv.id, DecorationFlat)
	case mods.Has(ast.ModNoPerspective):
		e.b.Decorate(iv.id, DecorationNoPerspective)
	}
	if mods.Has(ast.ModCentroid) {
		e.b.Decorate(iv.id, DecorationCentroid)
	}
	if mods.Has(ast.ModSample) {
		e.b.Require(CapabilitySampleRateShading)
		e.b.Decorate(iv.id, DecorationSample)
	}
}

// adapt copies between an interface type and a stream type: components are
// converted one by one, surplus ones dropped and missing ones zeroed.
func (e *emitter) adapt(v uint32, from, to *types.Type) uint32 {
	if types.Equal(from, to) {
		return v
	}
	if from.Kind == to.Kind && from.Rows == to.Rows && from.Cols == to.Cols {
		return e.cast(v, from, to)
	}
	if !from.IsMatrix() && !to.IsMatrix() {
		fs, ts := types.ScalarOf(from.Scalar), types.ScalarOf(to.Scalar)
		parts := make([]uint32, to.Components())
		for i := range parts {
			switch {
			case i >= from.Components():
				parts[i] = e.zero(ts)
			case from.Components() == 1:
				parts[i] = e.cast(v, fs, ts)
			default:
				c := e.value(OpCompositeExtract, e.typeID(fs), v, uint32(i))
				parts[i] = e.cast(c, fs, ts)
			}
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return e.value(OpCompositeConstruct, e.typeID(to), parts...)
	}
	e.fail(fmt.Errorf("can not pass %s through an interface of type %s", from, to))
	return 0
}
