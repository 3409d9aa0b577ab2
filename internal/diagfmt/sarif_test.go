package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

func TestSarif(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/work")
	fileID := fs.AddVirtual("/work/shaders/Foo.sdsl", []byte("float4 x = nope;\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 11, End: 15}, "unresolved symbol nope").
		WithNote(source.Span{File: fileID, Start: 0, End: 6}, "declared here"))
	bag.Add(diag.New(diag.SevWarning, diag.SemaImplicitTruncation, source.Span{File: fileID, Start: 0, End: 6}, "truncation"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings"))

	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "sdslc", ToolVersion: "1.0.0", InvocationArgs: []string{"diag", "Foo.sdsl"}}); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v\n%s", err, buf.String())
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 2 || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("results = %d rules = %d", len(run.Results), len(run.Tool.Driver.Rules))
	}
	first := run.Results[0]
	if first.RuleID != "SEM3002" || first.Level != "error" || len(first.Related) != 1 {
		t.Errorf("first = %+v", first)
	}
	loc := first.Locations[0].Physical
	if loc.Artifact.URI != "shaders/Foo.sdsl" || loc.Region.StartColumn != 12 || loc.Region.EndColumn != 16 {
		t.Errorf("location = %+v", loc)
	}
	if run.Results[1].Level != "warning" || run.Invocations[0].ExecutionSuccessful {
		t.Errorf("run = %+v", run)
	}
}
