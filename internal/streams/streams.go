// Package streams records how entry points read and write stream variables
// and checks that every read has a writer.
package streams

import (
	"fmt"
	"sort"
	"strings"

	"sdslc/internal/diag"
	"sdslc/internal/source"
	"sdslc/internal/target"
	"sdslc/internal/types"
)

// Stream is one stream variable of the composition.
type Stream struct {
	Name     string
	Semantic string
	Type     *types.Type
	// Order is the declaration index across the composition; interface
	// locations follow it.
	Order int
	Span  source.Span
}

// Access is the direction of one stream use.
type Access uint8

const (
	Read Access = iota
	Write
)

func (a Access) String() string {
	if a == Write {
		return "write"
	}
	return "read"
}

// Record is one access of a stream by an entry point.
type Record struct {
	Stream *Stream
	Entry  string
	Stage  target.Stage
	Access Access
	Span   source.Span
}

// Table holds the accesses of all entry points in program order.
type Table struct {
	streams []*Stream
	known   map[*Stream]bool
	records []Record
	stages  map[target.Stage]string
}

func NewTable() *Table {
	return &Table{known: make(map[*Stream]bool), stages: make(map[target.Stage]string)}
}

// Add registers a stream so it appears in interface lists even when unused.
func (t *Table) Add(s *Stream) {
	if !t.known[s] {
		t.known[s] = true
		t.streams = append(t.streams, s)
	}
}

// Streams returns all registered streams by declaration order.
func (t *Table) Streams() []*Stream {
	out := append([]*Stream(nil), t.streams...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Record appends one access; calls must come in program order per entry.
func (t *Table) Record(s *Stream, entry string, stage target.Stage, access Access, span source.Span) {
	t.Add(s)
	t.stages[stage] = entry
	t.records = append(t.records, Record{Stream: s, Entry: entry, Stage: stage, Access: access, Span: span})
}

// AddEntry marks a stage as present even if it touches no streams.
func (t *Table) AddEntry(entry string, stage target.Stage) {
	t.stages[stage] = entry
}

// Records returns the accesses of entry in order.
func (t *Table) Records(entry string) []Record {
	var out []Record
	for _, r := range t.records {
		if r.Entry == entry {
			out = append(out, r)
		}
	}
	return out
}

// systemInputs are generated by the pipeline, per stage when it matters.
var systemInputs = map[string]func(target.Stage) bool{
	"SV_VERTEXID":         func(s target.Stage) bool { return s == target.StageVertex },
	"SV_INSTANCEID":       func(s target.Stage) bool { return s == target.StageVertex },
	"SV_ISFRONTFACE":      func(s target.Stage) bool { return s == target.StagePixel },
	"SV_PRIMITIVEID":      func(target.Stage) bool { return true },
	"SV_SAMPLEINDEX":      func(s target.Stage) bool { return s == target.StagePixel },
	"SV_DISPATCHTHREADID": func(s target.Stage) bool { return s == target.StageCompute },
	"SV_GROUPID":          func(s target.Stage) bool { return s == target.StageCompute },
	"SV_GROUPTHREADID":    func(s target.Stage) bool { return s == target.StageCompute },
	"SV_GROUPINDEX":       func(s target.Stage) bool { return s == target.StageCompute },
	"SV_POSITION":         func(s target.Stage) bool { return s == target.StagePixel },
}

// IsSystemInput reports semantics whose value the pipeline supplies to
// stage.
func IsSystemInput(semantic string, stage target.Stage) bool {
	f, ok := systemInputs[strings.ToUpper(semantic)]
	return ok && f(stage)
}

// firstStage is the earliest stage present; it reads pipeline input.
func (t *Table) firstStage() (target.Stage, bool) {
	first, found := target.Stage(0), false
	for s := range t.stages {
		if !found || s < first {
			first, found = s, true
		}
	}
	return first, found
}

// writtenBy reports whether any entry of stage writes s.
func (t *Table) writtenBy(s *Stream, stage target.Stage) bool {
	for _, r := range t.records {
		if r.Stream == s && r.Stage == stage && r.Access == Write {
			return true
		}
	}
	return false
}

// Validate reports reads that nothing upstream writes. It returns false if
// any diagnostic was emitted.
func (t *Table) Validate(rep diag.Reporter) bool {
	ok := true
	first, _ := t.firstStage()
	written := make(map[string]map[*Stream]bool)
	reported := make(map[*Stream]map[target.Stage]bool)
	for _, r := range t.records {
		w := written[r.Entry]
		if w == nil {
			w = make(map[*Stream]bool)
			written[r.Entry] = w
		}
		if r.Access == Write {
			w[r.Stream] = true
			continue
		}
		if t.readSatisfied(r, w, first) {
			continue
		}
		if reported[r.Stream] == nil {
			reported[r.Stream] = make(map[target.Stage]bool)
		}
		if reported[r.Stream][r.Stage] {
			continue
		}
		reported[r.Stream][r.Stage] = true
		ok = false
		if rep != nil {
			diag.ReportError(rep, diag.SemaStreamNoWriter, r.Span,
				fmt.Sprintf("stream %s is read in %s but no earlier stage writes it", r.Stream.Name, r.Entry)).
				WithNote(r.Stream.Span, "stream declared here").
				Emit()
		}
	}
	return ok
}

func (t *Table) readSatisfied(r Record, written map[*Stream]bool, first target.Stage) bool {
	switch {
	case written[r.Stream]:
		return true
	case r.Stage == first || r.Stage == target.StageCompute:
		return true
	case IsSystemInput(r.Stream.Semantic, r.Stage):
		return true
	}
	for up := range t.stages {
		if up.Before(r.Stage) && t.writtenBy(r.Stream, up) {
			return true
		}
	}
	return false
}

// Inputs lists the streams entry reads before writing them, by declaration
// order. These become the stage's input interface.
func (t *Table) Inputs(entry string) []*Stream {
	written := make(map[*Stream]bool)
	seen := make(map[*Stream]bool)
	var out []*Stream
	for _, r := range t.Records(entry) {
		switch {
		case r.Access == Write:
			written[r.Stream] = true
		case !written[r.Stream] && !seen[r.Stream]:
			seen[r.Stream] = true
			out = append(out, r.Stream)
		}
	}
	sortByOrder(out)
	return out
}

// Outputs lists the streams entry writes, by declaration order. Pixel
// entries only export render targets and depth.
func (t *Table) Outputs(entry string) []*Stream {
	seen := make(map[*Stream]bool)
	var out []*Stream
	for _, r := range t.Records(entry) {
		if r.Access != Write || seen[r.Stream] {
			continue
		}
		if r.Stage == target.StagePixel && !IsPixelOutput(r.Stream.Semantic) {
			continue
		}
		if r.Stage == target.StageCompute {
			continue
		}
		seen[r.Stream] = true
		out = append(out, r.Stream)
	}
	sortByOrder(out)
	return out
}

// IsPixelOutput reports SV_Target* and SV_Depth.
func IsPixelOutput(semantic string) bool {
	up := strings.ToUpper(semantic)
	return strings.HasPrefix(up, "SV_TARGET") || up == "SV_DEPTH"
}

func sortByOrder(s []*Stream) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Order < s[j].Order })
}

// Location returns the interface location of a user stream: SV_TargetN
// maps to N, other non-system streams to their rank among user streams.
func (t *Table) Location(s *Stream) (uint32, bool) {
	up := strings.ToUpper(s.Semantic)
	if rest, ok := strings.CutPrefix(up, "SV_TARGET"); ok {
		var n uint32
		for _, c := range rest {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + uint32(c-'0')
		}
		return n, true
	}
	if strings.HasPrefix(up, "SV_") {
		return 0, false
	}
	var loc uint32
	for _, o := range t.Streams() {
		if o == s {
			return loc, true
		}
		if !strings.HasPrefix(strings.ToUpper(o.Semantic), "SV_") {
			loc++
		}
	}
	return 0, false
}
