package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("shader Foo\n{\n    float4 bar() { return nope; }\n};\n")
	fileID := fs.AddVirtual("/work/Foo.sdsl", content)

	bag := diag.NewBag(10)
	d := diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 39, End: 43}, "unresolved symbol nope").
		WithNote(source.Span{File: fileID, Start: 0, End: 6}, "in shader Foo")
	bag.Add(d)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("output = %+v", output)
	}
	got := output.Diagnostics[0]
	if got.Severity != "ERROR" || got.Code != "SEM3002" || got.Category != "SEM" || got.Location.File != "Foo.sdsl" {
		t.Errorf("diagnostic = %+v", got)
	}
	if got.Location.StartLine != 3 || got.Location.StartCol != 27 || got.Location.EndCol != 31 {
		t.Errorf("location = %+v", got.Location)
	}
	if len(got.Notes) != 0 {
		t.Error("notes included without IncludeNotes")
	}
}

func TestJSONNotesMaxAndTimings(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.sdsl", []byte("float x;\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaError, source.Span{File: fileID, End: 5}, "first").
		WithNote(source.Span{File: fileID, Start: 6, End: 7}, "here"))
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: 99}, "timings").
		WithNote(source.Span{File: 99}, `{"kind":"unit"}`))
	bag.Add(diag.NewError(diag.SemaError, source.Span{File: fileID}, "third"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true, Max: 2})
	if out.Count != 2 || out.Dropped != 1 {
		t.Fatalf("count = %d dropped = %d", out.Count, out.Dropped)
	}
	if out.Diagnostics[0].Notes[0].Location.StartByte != 6 {
		t.Errorf("note = %+v", out.Diagnostics[0].Notes[0])
	}
	timing := out.Diagnostics[1]
	if timing.Location.File != "" || len(timing.Notes) != 1 {
		t.Errorf("timings = %+v", timing)
	}

	out = BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if len(out.Diagnostics[1].Notes) != 1 || out.Diagnostics[0].Notes != nil {
		t.Error("timings notes must always be included, others only on request")
	}
}
