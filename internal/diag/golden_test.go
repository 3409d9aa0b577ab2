package diag

import (
	"testing"

	"sdslc/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	file := fs.Add("/workspace/shaders/lit.sdsl", []byte("a\nb\n"), 0)

	diags := []*Diagnostic{
		NewError(SemaUnresolvedSymbol, source.Span{File: file, Start: 2, End: 3}, "unresolved symbol 'b'"),
		NewError(SynUnexpectedToken, source.Span{File: file, Start: 0, End: 1}, "expected ';'\nfound 'a'").
			WithNote(source.Span{File: file, Start: 2, End: 2}, "declared here"),
	}

	expected := "error SYN2001 shaders/lit.sdsl:1:1 expected ';' found 'a'\n" +
		"error SEM3002 shaders/lit.sdsl:2:1 unresolved symbol 'b'\n" +
		"note SYN2001 shaders/lit.sdsl:2:1 declared here"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code     Code
		id       string
		category string
		fatal    bool
	}{
		{LexBadNumber, "LEX1004", "LEX", true},
		{PreUnterminatedConditional, "PRE1503", "PRE", true},
		{SynUnexpectedToken, "SYN2001", "SYN", true},
		{SemaCyclicMixin, "SEM3007", "SEM", false},
		{ProjUnknownProfile, "PRJ5002", "PRJ", false},
		{ObsTimings, "OBS6001", "OBS", false},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %s, want %s", tt.code, got, tt.id)
		}
		if got := tt.code.Category(); got != tt.category {
			t.Errorf("%d.Category() = %s, want %s", tt.code, got, tt.category)
		}
		if got := tt.code.Fatal(); got != tt.fatal {
			t.Errorf("%d.Fatal() = %v, want %v", tt.code, got, tt.fatal)
		}
	}
	if SemaCyclicMixin.String() != "[SEM3007]: Cyclic mixin dependency" {
		t.Errorf("unexpected String(): %s", SemaCyclicMixin.String())
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	sp := func(start uint32) source.Span { return source.Span{File: 0, Start: start, End: start + 1} }

	bag.Add(NewError(SemaTypeMismatch, sp(9), "late"))
	bag.Add(New(SevWarning, SemaImplicitTruncation, sp(1), "warn"))
	bag.Add(NewError(SemaTypeMismatch, sp(9), "late"))
	if bag.Add(NewError(SemaError, sp(0), "dropped")) {
		t.Fatal("limit not enforced")
	}
	if !bag.HasErrors() || bag.Dropped() != 1 {
		t.Fatalf("HasErrors=%v Dropped=%d", bag.HasErrors(), bag.Dropped())
	}

	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if len(items) != 2 || items[0].Message != "warn" || items[1].Message != "late" {
		t.Fatalf("unexpected order after dedup/sort: %+v", items)
	}

	bag.Remap(func(s source.Span) source.Span { return s.Shift(10) })
	if items[0].Primary.Start != 11 {
		t.Fatalf("remap not applied: %v", items[0].Primary)
	}
}
