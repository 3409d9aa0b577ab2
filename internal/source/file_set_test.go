package source

import (
	"errors"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("shaders/a.sdsl", []byte("shader A {}"), 0)
	id2 := fs.Add("shaders/./a.sdsl", []byte("shader A { float x; }"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}
	latest, ok := fs.GetLatest("shaders/a.sdsl")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v, want %d,true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "shader A {}" {
		t.Errorf("old version content changed: %q", got)
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()
	// BOM + CRLF + decomposed "é" (e + U+0301)
	raw := []byte("\xEF\xBB\xBF// cafe\u0301\r\nshader A {}\r\n")
	id := fs.AddVirtual("a.sdsl", raw)
	f := fs.Get(id)

	want := "// caf\u00e9\nshader A {}\n"
	if string(f.Content) != want {
		t.Fatalf("content = %q, want %q", f.Content, want)
	}
	for _, flag := range []FileFlags{FileVirtual, FileHadBOM, FileNormalizedCRLF, FileNormalizedNFC} {
		if f.Flags&flag == 0 {
			t.Errorf("flag %b not set (flags=%b)", flag, f.Flags)
		}
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.sdsl", []byte("ab\ncd\n\nef"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам перевод строки
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{9, LineCol{4, 3}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.sdsl", []byte("first\nsecond\nthird")))

	for i, want := range []string{"", "first", "second", "third", ""} {
		if got := f.GetLine(uint32(i)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestPositionRelativeToBase(t *testing.T) {
	fs := NewFileSet()
	fs.SetBaseDir("/work")
	id := fs.Add("/work/shaders/lit.sdsl", []byte("x\ny"), 0)

	pos, ok := fs.Position(Span{File: id, Start: 2, End: 3})
	if !ok {
		t.Fatal("position not resolved")
	}
	if pos.Path != "shaders/lit.sdsl" || pos.Line != 2 || pos.Col != 1 {
		t.Fatalf("unexpected position %+v", pos)
	}
	if _, ok := fs.Position(Span{File: 42}); ok {
		t.Fatal("expected out-of-range file to fail")
	}
}

func TestLoadViaSearchesRootsInOrder(t *testing.T) {
	p := MapProvider{
		"b/common.sdsli": []byte("second"),
		"c/common.sdsli": []byte("third"),
	}
	fs := NewFileSet()
	id, err := fs.LoadVia(p, "common.sdsli", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("LoadVia: %v", err)
	}
	if got := string(fs.Get(id).Content); got != "second" {
		t.Fatalf("expected first matching root, got %q", got)
	}
	again, err := fs.LoadVia(p, "common.sdsli", []string{"a", "b", "c"})
	if err != nil || again != id {
		t.Fatalf("expected cached id %d, got %d (%v)", id, again, err)
	}
	if _, err := fs.LoadVia(p, "missing.sdsl", []string{"a"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
