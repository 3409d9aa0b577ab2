package ui

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"sdslc/internal/buildpipeline"
)

func TestProgressModelTracksTargets(t *testing.T) {
	m := NewProgressModel("build lighting", []string{"lit", "lit_fast"}, nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{Target: "lit", Stage: buildpipeline.StageSema, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{Target: "lit_fast", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusError, Elapsed: 3 * time.Millisecond})
	m.applyEvent(buildpipeline.Event{Target: "unknown", Status: buildpipeline.StatusDone})

	if m.items[0].status != "checking" || m.items[1].status != "error" || m.failed != 1 {
		t.Fatalf("items = %+v failed = %d", m.items, m.failed)
	}
	if got := m.percent(); math.Abs(got-0.725) > 1e-9 {
		t.Errorf("percent = %v", got)
	}
	view := m.View()
	for _, want := range []string{"build lighting", "checking", "lit_fast", "3ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}

	m.applyEvent(buildpipeline.Event{Status: buildpipeline.StatusError, Elapsed: time.Second})
	m.done = true
	if view := m.View(); !strings.Contains(view, "done: build lighting in 1s, 1 failed") {
		t.Errorf("final view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"permutation_name", 10, "permuta..."},
		{"шейдер", 3, "шей"},
		{"漢字漢字", 5, "漢..."},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.width); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.width, got, c.want)
		}
	}
}

func TestPlainSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewPlainSink(&buf, []string{"a", "long_name"})
	s.OnEvent(buildpipeline.Event{Target: "a", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})
	s.OnEvent(buildpipeline.Event{Target: "a", Status: buildpipeline.StatusDone, Elapsed: 2 * time.Millisecond})
	s.OnEvent(buildpipeline.Event{Target: "long_name", Status: buildpipeline.StatusError})
	s.OnEvent(buildpipeline.Event{Status: buildpipeline.StatusDone})
	want := "a          ok     2ms\nlong_name  FAILED 0s\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}
