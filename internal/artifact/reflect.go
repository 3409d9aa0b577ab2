package artifact

import (
	"sdslc/internal/sema"
	"sdslc/internal/spirv"
	"sdslc/internal/target"
)

// New builds a sealed bundle for an emitted module and the program it was
// lowered from.
func New(prog *sema.Program, module []byte) (*Bundle, error) {
	b := &Bundle{
		Name:         prog.Name,
		Profile:      prog.Profile.String(),
		SPIRVVersion: prog.Profile.SPIRVVersion(),
		Module:       module,
	}
	for _, ep := range prog.Entries {
		e, err := reflectEntry(prog, ep)
		if err != nil {
			return nil, err
		}
		b.Entries = append(b.Entries, e)
	}
	for _, cb := range prog.CBuffers {
		b.CBuffers = append(b.CBuffers, reflectCBuffer(cb))
	}
	for _, r := range prog.Resources {
		b.Resources = append(b.Resources, Resource{Name: r.Name, Type: r.Type.String(), Binding: r.Binding})
	}
	b.Seal()
	return b, nil
}

func reflectEntry(prog *sema.Program, ep *sema.EntryPoint) (Entry, error) {
	e := Entry{Name: ep.Name, Stage: ep.Stage.String()}
	if ep.Stage == target.StageCompute {
		e.LocalSize = ep.LocalSize
	}
	var err error
	if e.Inputs, err = reflectParams(prog, ep.Stage, ep.Inputs, false); err != nil {
		return e, err
	}
	if e.Outputs, err = reflectParams(prog, ep.Stage, ep.Outputs, true); err != nil {
		return e, err
	}
	return e, nil
}

func reflectParams(prog *sema.Program, stage target.Stage, vars []*sema.Var, output bool) ([]Param, error) {
	out := make([]Param, 0, len(vars))
	for _, v := range vars {
		slot, err := spirv.InterfaceSlot(prog, stage, v, output)
		if err != nil {
			return nil, err
		}
		p := Param{Name: v.Name, Semantic: v.Semantic, Type: v.Type.String()}
		if slot.IsBuiltin {
			p.Builtin = slot.Builtin.String()
		} else {
			p.Location = slot.Location
		}
		out = append(out, p)
	}
	return out, nil
}

func reflectCBuffer(cb *sema.CBuffer) CBuffer {
	out := CBuffer{Name: cb.Name, Binding: cb.Binding, Size: cb.Size}
	for i, m := range cb.Members {
		l := cb.Layouts[i]
		out.Members = append(out.Members, Member{
			Name:         m.Name,
			Type:         m.Type.String(),
			Offset:       l.Offset,
			Size:         l.Size,
			MatrixStride: l.MatrixStride,
			ArrayStride:  l.ArrayStride,
			RowMajor:     m.RowMajor,
		})
	}
	return out
}
