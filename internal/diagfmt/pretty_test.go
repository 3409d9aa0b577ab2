package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"sdslc/internal/diag"
	"sdslc/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("shader Foo { float4 bar() { return nope; } };\n")
	fileID := fs.AddVirtual("/home/user/project/shaders/Foo.sdsl", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 35, End: 39}, "unresolved symbol nope"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/shaders/Foo.sdsl:1:36"},
		{"Relative path", PathModeRelative, "shaders/Foo.sdsl:1:36"},
		{"Basename only", PathModeBasename, "Foo.sdsl:1:36"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()
			for _, want := range []string{tt.contains, "ERROR", "SEM3002", "unresolved symbol nope"} {
				if !strings.Contains(output, want) {
					t.Errorf("output lacks %q:\n%s", want, output)
				}
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()
	tests := []struct {
		path     string
		expected string
	}{
		{"Foo.sdsl", "Foo.sdsl:1:1"},
		{"/very/long/absolute/path/to/some/nested/directory/Foo.sdsl", " Foo.sdsl"},
	}
	for _, tt := range tests {
		fileID := fs.AddVirtual(tt.path, []byte("float x;\n"))
		bag := diag.NewBag(10)
		bag.Add(diag.New(diag.SevWarning, diag.SemaImplicitTruncation, source.Span{File: fileID, Start: 0, End: 5}, "w"))
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{})
		if !strings.Contains(" "+buf.String(), tt.expected) {
			t.Errorf("%s: output:\n%s", tt.path, buf.String())
		}
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	fs := source.NewFileSet()
	// таб и широкие символы в комментарии перед ошибкой
	content := []byte("line one\n\t/*漢字*/ x = nope;\nline three\n")
	fileID := fs.AddVirtual("a.sdsl", content)
	start := uint32(strings.Index(string(content), "nope"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: start, End: start + 4}, "unresolved symbol nope"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	lines := strings.Split(buf.String(), "\n")
	want := []string{
		"a.sdsl:2:17: ERROR SEM3002: unresolved symbol nope",
		"1 | line one",
		"2 |     /*漢字*/ x = nope;",
		"  |                  ^~~~",
		"3 | line three",
	}
	for i, w := range want {
		if i >= len(lines) || lines[i] != w {
			t.Fatalf("line %d:\n got %q\nwant %q\nfull:\n%s", i, lines[min(i, len(lines)-1)], w, buf.String())
		}
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("m.sdsl", []byte("#define BAD nope\nfloat4 x = BAD;\n"))
	d := diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: 28, End: 31}, "unresolved symbol nope").
		WithNote(source.Span{File: fileID, Start: 8, End: 11}, "expanded from macro BAD")
	bag := diag.NewBag(4)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})
	if !strings.Contains(buf.String(), "note: m.sdsl:1:9: expanded from macro BAD") {
		t.Fatalf("output:\n%s", buf.String())
	}
	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes shown without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyColorAndNoLocation(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.ProjInvalidManifest, source.Span{File: 7}, "missing [project]"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if plain.String() != "ERROR PRJ5001: missing [project]\n" {
		t.Fatalf("plain = %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored = %q", colored.String())
	}
}

func TestSummary(t *testing.T) {
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.SemaError, source.Span{}, "a"))
	bag.Add(diag.New(diag.SevWarning, diag.SemaError, source.Span{}, "b"))
	bag.Add(diag.NewError(diag.SemaError, source.Span{}, "c"))
	if got := Summary(bag); got != "1 error, 1 warning, 1 more not shown" {
		t.Fatalf("summary = %q", got)
	}
}
