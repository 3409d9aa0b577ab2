package sema

import (
	"sdslc/internal/diag"
	"sdslc/internal/types"
)

// layoutBuffers places uniform block members by std140 and numbers the
// descriptor bindings: uniform blocks first, then resources.
func (a *analyzer) layoutBuffers() {
	blocks := a.prog.CBuffers[:0]
	for _, cb := range a.prog.CBuffers {
		if len(cb.Members) > 0 {
			blocks = append(blocks, cb)
		}
	}
	a.prog.CBuffers = blocks

	var binding uint32
	for _, cb := range a.prog.CBuffers {
		layouts, size, _, err := types.StructLayout(cb.Fields())
		if err != nil {
			a.errorf(diag.SemaTypeMismatch, cb.Span, "uniform block %s: %v", cb.Name, err)
			continue
		}
		cb.Layouts, cb.Size = layouts, size
		cb.Binding = binding
		binding++
	}
	for _, r := range a.prog.Resources {
		r.Binding = binding
		binding++
	}
}
