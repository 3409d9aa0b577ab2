package diag

import (
	"sort"

	"sdslc/internal/source"
)

// Bag collects diagnostics up to a fixed limit.
type Bag struct {
	items         []*Diagnostic
	max           int
	dropped       int
	droppedErrors int
}

// NewBag creates a bag holding at most max diagnostics (max <= 0 means unlimited).
func NewBag(max int) *Bag {
	return &Bag{
		items: make([]*Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d *Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		if d.Severity >= SevError {
			b.droppedErrors++
		}
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped returns how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	if b == nil {
		return false
	}
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return b.droppedErrors > 0
}

// ErrorCount returns the number of stored error diagnostics.
func (b *Bag) ErrorCount() int {
	n := 0
	for _, d := range b.items {
		if d.Severity >= SevError {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []*Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}

// Merge объединяет диагностики из другого Bag, игнорируя лимит.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
	b.droppedErrors += other.droppedErrors
}

// Remap rewrites every primary and note span through fn.
func (b *Bag) Remap(fn func(source.Span) source.Span) {
	for _, d := range b.items {
		d.Primary = fn(d.Primary)
		for i := range d.Notes {
			d.Notes[i].Span = fn(d.Notes[i].Span)
		}
	}
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops entries repeating an earlier code+span+message.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span source.Span
		msg  string
	}
	seen := make(map[key]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		k := key{d.Code, d.Primary, d.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	b.items = out
}
