package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	outer := tm.Begin("sema")
	inner := tm.Begin("preprocess")
	time.Sleep(2 * time.Millisecond)
	tm.End(inner, "includes=0")
	tm.End(outer, "functions=1")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "sema" || r.Phases[1].Note != "includes=0" {
		t.Fatalf("report = %+v", r)
	}
	// вложенные фазы не суммируются
	if r.TotalMS < r.Phases[0].DurationMS || r.TotalMS > r.Phases[0].DurationMS+r.Phases[1].DurationMS {
		t.Errorf("total %.3f outside [%.3f, sum]", r.TotalMS, r.Phases[0].DurationMS)
	}
	if (&Timer{}).Report().Phases != nil {
		t.Error("empty timer must report no phases")
	}
}

func TestReportMergeAndSummary(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "sema", DurationMS: 2, Note: "x"}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "sema", DurationMS: 3}, {Name: "emit", DurationMS: 1}}}
	m := a.Merge(b)
	if m.TotalMS != 7 || len(m.Phases) != 3 || m.Phases[1].DurationMS != 5 || m.Phases[1].Note != "" {
		t.Fatalf("merged = %+v", m)
	}
	s := m.Summary()
	for _, want := range []string{"parse", "sema", "emit", "total", "7.00 ms"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary lacks %q:\n%s", want, s)
		}
	}
}
