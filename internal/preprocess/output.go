package preprocess

import (
	"sort"

	"sdslc/internal/source"
)

// SegmentKind says how output bytes relate to the source.
type SegmentKind uint8

const (
	// SegVerbatim bytes are a byte-for-byte copy of Src.
	SegVerbatim SegmentKind = iota
	// SegExpanded bytes were produced by a macro use, an include line or a
	// removed directive; every offset maps to the whole Src.
	SegExpanded
)

// Segment maps an output range to its origin.
type Segment struct {
	Out  uint32
	Len  uint32
	Src  source.Span
	Kind SegmentKind
}

// Output is the preprocessed unit.
type Output struct {
	// File is the generated file holding Text once registered.
	File     source.FileID
	Text     []byte
	Segments []Segment
	// Defines is the macro table at the end of the unit.
	Defines map[string]*Macro
	// Includes lists files pulled in, in first-use order.
	Includes []source.FileID
}

// Remap maps a span of the generated file back into original source.
// Spans of other files are returned as is.
func (o *Output) Remap(span source.Span) source.Span {
	if span.File != o.File || len(o.Segments) == 0 {
		return span
	}
	first, ok := o.segmentAt(span.Start)
	if !ok {
		return span
	}
	start := o.mapOffset(first, span.Start)
	if span.Empty() {
		return source.Span{File: first.Src.File, Start: start.Start, End: start.Start}
	}
	last, ok := o.segmentAt(span.End - 1)
	if !ok || last.Src.File != first.Src.File {
		return source.Span{File: first.Src.File, Start: start.Start, End: max(start.End, first.Src.End)}
	}
	end := o.mapOffset(last, span.End-1)
	if end.End < start.Start {
		return start
	}
	return source.Span{File: first.Src.File, Start: start.Start, End: end.End}
}

func (o *Output) segmentAt(off uint32) (Segment, bool) {
	i := sort.Search(len(o.Segments), func(i int) bool {
		s := o.Segments[i]
		return s.Out+s.Len > off
	})
	if i == len(o.Segments) {
		if off == uint32(len(o.Text)) && i > 0 {
			return o.Segments[i-1], true
		}
		return Segment{}, false
	}
	return o.Segments[i], true
}

// mapOffset returns the one-byte source span for an output offset.
func (o *Output) mapOffset(seg Segment, off uint32) source.Span {
	if seg.Kind == SegExpanded {
		return seg.Src
	}
	at := seg.Src.Start + min(off-seg.Out, seg.Len)
	return source.Span{File: seg.Src.File, Start: at, End: min(at+1, seg.Src.End)}
}

// builder accumulates text and segments.
type builder struct {
	text []byte
	segs []Segment
}

func (b *builder) offset() uint32 {
	return uint32(len(b.text)) // #nosec G115 -- bounded by FileSet limits
}

func (b *builder) emit(toks []tok) {
	for _, t := range toks {
		if t.expanded {
			b.add(t.text, t.span, SegExpanded)
		} else {
			b.add(t.text, t.span, SegVerbatim)
		}
	}
}

func (b *builder) add(text string, src source.Span, kind SegmentKind) {
	if text == "" {
		return
	}
	n := uint32(len(text)) // #nosec G115 -- token text
	if k := len(b.segs); k > 0 {
		last := &b.segs[k-1]
		contiguous := last.Out+last.Len == b.offset()
		switch {
		case contiguous && kind == SegVerbatim && last.Kind == SegVerbatim &&
			last.Src.File == src.File && last.Src.End == src.Start:
			last.Len += n
			last.Src.End = src.End
			b.text = append(b.text, text...)
			return
		case contiguous && kind == SegExpanded && last.Kind == SegExpanded && last.Src == src:
			last.Len += n
			b.text = append(b.text, text...)
			return
		}
	}
	b.segs = append(b.segs, Segment{Out: b.offset(), Len: n, Src: src, Kind: kind})
	b.text = append(b.text, text...)
}

// blank emits n newlines attributed to src.
func (b *builder) blank(n int, src source.Span) {
	if n <= 0 {
		return
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = '\n'
	}
	b.add(string(buf), src, SegExpanded)
}
