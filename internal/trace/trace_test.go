package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeClass, false},
		{LevelDetail, ScopeClass, true},
		{LevelDetail, ScopeDebug, false},
		{LevelDebug, ScopeDebug, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v", c.level, c.scope, got)
		}
	}
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
}

func TestSpansNest(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)
	tr := FromContext(ctx)

	unit := Begin(tr, ScopeUnit, "compile a.sdsl", CurrentSpan(ctx).SpanID)
	ph := Begin(tr, ScopePhase, "sema", unit.ID())
	cls := Begin(tr, ScopeClass, "load Base", unit.ID())
	dbg := Begin(tr, ScopeDebug, "node", ph.ID())
	dbg.End("")
	cls.End("")
	ph.WithExtra("functions", "3").End("ok")
	unit.End("")

	events := ring.Snapshot()
	if len(events) != 6 {
		t.Fatalf("events = %d, want 6 (debug scope filtered)", len(events))
	}
	if events[1].ParentID != events[0].SpanID || events[2].ParentID != events[0].SpanID {
		t.Error("children not attached to the unit span")
	}
	end := events[4]
	if end.Kind != KindSpanEnd || end.Name != "sema" || end.Detail != "ok" || end.Extra["functions"] != "3" {
		t.Errorf("sema end = %+v", end)
	}
	if dbg.ID() != 0 {
		t.Error("filtered span must be disabled")
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := 0; i < 5; i++ {
		Point(ring, ScopeDriver, "p", strings.Repeat("x", i), 0)
	}
	events := ring.Snapshot()
	if len(events) != 3 || events[0].Detail != "xx" || events[2].Detail != "xxxx" {
		t.Fatalf("snapshot = %+v", events)
	}
}

func TestStreamFormats(t *testing.T) {
	var text, nd bytes.Buffer
	multi := NewMultiTracer(LevelPhase, NewStreamTracer(&text, LevelPhase, FormatText), NewStreamTracer(&nd, LevelPhase, FormatNDJSON))
	sp := Begin(multi, ScopePhase, "emit", 0)
	sp.WithExtra("b", "2").WithExtra("a", "1").End("bytes=40")

	lines := strings.Split(strings.TrimSpace(text.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "> emit") || !strings.Contains(lines[1], "< emit") {
		t.Fatalf("text trace:\n%s", text.String())
	}
	if !strings.HasSuffix(lines[1], "(bytes=40) {a=1, b=2}") {
		t.Errorf("end line = %q", lines[1])
	}

	var ev jsonEvent
	last := strings.Split(strings.TrimSpace(nd.String()), "\n")[1]
	if err := json.Unmarshal([]byte(last), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Scope != "phase" || ev.Name != "emit" || ev.Extra["a"] != "1" {
		t.Errorf("ndjson = %+v", ev)
	}
}

func TestNewFromConfig(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off: %v %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDriver, "build", 0).End("")
	ring, ok := Ring(tr)
	if !ok || len(ring.Snapshot()) != 2 {
		t.Fatal("both mode must keep a ring")
	}
	if buf.Len() == 0 {
		t.Fatal("both mode must stream")
	}
	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Fatal("missing mode accepted")
	}
}

func TestConcurrentEmit(t *testing.T) {
	ring := NewRingTracer(1024, LevelPhase)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				Begin(ring, ScopeUnit, "u", 0).End("")
			}
		}()
	}
	wg.Wait()
	if n := len(ring.Snapshot()); n != 160 {
		t.Fatalf("events = %d", n)
	}
}

func TestHeartbeat(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat on a disabled tracer")
	}
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	events := ring.Snapshot()
	if len(events) == 0 || events[0].Kind != KindHeartbeat {
		t.Fatalf("events = %+v", events)
	}
}
