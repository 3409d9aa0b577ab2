package buildpipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"sdslc/internal/artifact"
	"sdslc/internal/preprocess"
	"sdslc/internal/project"
	"sdslc/internal/source"
	"sdslc/internal/target"
)

const tinted = `shader Tinted : Base
{
    stream float4 Position : SV_Position;
    stream float4 Color : SV_Target0;

    void VSMain() { streams.Position = float4(0, 0, 0, 1); }
    void PSMain() { streams.Color = Tint() * SCALE; }
};
`

func lib() source.MapProvider {
	return source.MapProvider{
		"/p/Tinted.sdsl":       []byte(tinted),
		"/p/Broken.sdsl":       []byte("shader Broken { float4 Get() { return nope; } };"),
		"/p/lib/Base.sdsl":     []byte("shader Base { float4 Tint() { return float4(1, 0.5, 0.25, 1); } };"),
		"/p/Unterminated.sdsl": []byte("#ifdef X\n"),
	}
}

func tgt(out, name, src string, defs ...preprocess.Define) project.Target {
	return project.Target{
		Name:        name,
		Source:      src,
		Profile:     target.SM5_0,
		Defines:     defs,
		IncludeDirs: []string{"/p/lib"},
		Output:      filepath.Join(out, name+project.BundleExt),
	}
}

func TestBuildWritesBundles(t *testing.T) {
	out := t.TempDir()
	sink := &RecordingSink{}
	res, err := Build(context.Background(), Request{
		Targets: []project.Target{
			tgt(out, "x1", "/p/Tinted.sdsl", preprocess.Define{Name: "SCALE", Value: "1.0"}),
			tgt(out, "x2", "/p/Tinted.sdsl", preprocess.Define{Name: "SCALE", Value: "2.0"}),
		},
		Jobs:     2,
		Provider: lib(),
		Progress: sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed() != 0 {
		for _, tr := range res.Targets {
			for _, d := range tr.Compile.Bag.Items() {
				t.Logf("%s: %s %s", tr.Target.Name, d.Code.ID(), d.Message)
			}
		}
		t.Fatalf("failed = %d", res.Failed())
	}
	for i, name := range []string{"x1", "x2"} {
		tr := res.Targets[i]
		if tr.Target.Name != name || tr.Output == "" {
			t.Fatalf("target %d = %+v", i, tr)
		}
		b, err := artifact.ReadFile(tr.Output)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := b.Entry("PSMain"); !ok {
			t.Errorf("%s: no PSMain in bundle", name)
		}
	}
	if !res.Timings.Has(StageSema) || res.Timings.Sum(StageParse, StageEmit) <= 0 {
		t.Error("stage timings missing")
	}

	var stages []string
	for _, ev := range sink.Events() {
		if ev.Target == "x1" {
			stages = append(stages, string(ev.Status)+":"+string(ev.Stage))
		}
	}
	want := "queued: working:preprocess working:parse working:sema working:emit working:write done:write"
	if got := strings.Join(stages, " "); got != want {
		t.Errorf("x1 events = %q\nwant        %q", got, want)
	}
	events := sink.Events()
	if last := events[len(events)-1]; last.Target != "" || last.Status != StatusDone {
		t.Errorf("final event = %+v", last)
	}
}

func TestBuildKeepsGoingAfterFailures(t *testing.T) {
	out := t.TempDir()
	sink := &RecordingSink{}
	res, err := Build(context.Background(), Request{
		Targets: []project.Target{
			tgt(out, "broken", "/p/Broken.sdsl"),
			tgt(out, "pre", "/p/Unterminated.sdsl"),
			tgt(out, "ok", "/p/Tinted.sdsl", preprocess.Define{Name: "SCALE", Value: "1.0"}),
		},
		Jobs:     1,
		Provider: lib(),
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("source errors must not be Go errors: %v", err)
	}
	if res.Failed() != 2 || res.Targets[2].Failed() {
		t.Fatalf("failed = %d", res.Failed())
	}
	if !res.Targets[0].Compile.Bag.HasErrors() || res.Targets[0].Output != "" {
		t.Error("broken permutation produced output")
	}
	var errored []string
	for _, ev := range sink.Events() {
		if ev.Status == StatusError {
			errored = append(errored, ev.Target)
		}
	}
	if got := strings.Join(errored, ","); got != "broken,pre," {
		t.Errorf("error events = %q", got)
	}
}

func TestBuildDryRunAndCancel(t *testing.T) {
	out := t.TempDir()
	targets := []project.Target{tgt(out, "x", "/p/Tinted.sdsl", preprocess.Define{Name: "SCALE", Value: "1.0"})}
	res, err := Build(context.Background(), Request{Targets: targets, Provider: lib(), DryRun: true})
	if err != nil || res.Failed() != 0 || res.Targets[0].Output != "" {
		t.Fatalf("dry run = %+v, %v", res.Targets[0], err)
	}
	if _, err := artifact.ReadFile(targets[0].Output); err == nil {
		t.Fatal("dry run wrote a bundle")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = Build(ctx, Request{Targets: targets, Provider: lib()})
	if err == nil || res.Failed() != 1 {
		t.Fatalf("cancelled build = %v failed=%d", err, res.Failed())
	}
}
