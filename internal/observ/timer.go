// Package observ measures the phases of a compilation.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured interval. Phases with the same name (a class
// preprocessed while sema runs, say) are kept apart.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer is not safe for concurrent use; each compilation owns one.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase; unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// PhaseReport is a phase in serializable form.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates a timer. Phases nest (a class load runs inside sema),
// so TotalMS is the wall time from the first start to the last end.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	first, last := t.phases[0].Start, t.phases[0].Start
	for i, p := range t.phases {
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
		if end := p.Start.Add(p.Dur); end.After(last) {
			last = end
		}
	}
	r.TotalMS = millis(last.Sub(first))
	return r
}

// Merge folds phases with the same name into one entry, notes dropped.
// Used for the summary of a batch build.
func (r Report) Merge(other Report) Report {
	out := Report{TotalMS: r.TotalMS + other.TotalMS}
	index := make(map[string]int)
	for _, p := range append(append([]PhaseReport(nil), r.Phases...), other.Phases...) {
		if i, ok := index[p.Name]; ok {
			out.Phases[i].DurationMS += p.DurationMS
			continue
		}
		index[p.Name] = len(out.Phases)
		out.Phases = append(out.Phases, PhaseReport{Name: p.Name, DurationMS: p.DurationMS})
	}
	return out
}

// Summary renders the report as an aligned table.
func (r Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-12s %8.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
