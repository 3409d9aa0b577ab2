package driver

import (
	"sdslc/internal/diag"
	"sdslc/internal/dialect"
)

// dialectHint adds an informational diagnostic when a failed main unit
// reads like GLSL, WGSL or Metal.
func (u *unit) dialectHint() {
	if !u.hasMain || !u.bag.HasErrors() {
		return
	}
	ev := dialect.Collect(u.fs.Get(u.main))
	c := dialect.Classify(ev)
	if !c.Eligible() {
		return
	}
	h, ok := ev.Strongest(c.Kind)
	if !ok {
		return
	}
	msg, example := dialect.Render(c.Kind, h)
	d := diag.New(diag.SevInfo, diag.SynForeignDialect, h.Span, msg)
	if example != "" {
		d = d.WithNote(h.Span, "in SDSL: "+example)
	}
	u.bag.Add(d)
}
