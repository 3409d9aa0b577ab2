package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves spans to line/column positions.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> последняя версия
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0, 4),
		index: make(map[string]FileID),
	}
}

// SetBaseDir sets the directory relative paths are printed against.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// BaseDir returns the directory used for relative path rendering.
func (fileSet *FileSet) BaseDir() string {
	return fileSet.baseDir
}

// Len returns the number of files (all versions).
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Add stores already-normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// A new FileID is allocated even if the path was added before.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	normalizedPath := normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// AddVirtual adds in-memory text (test, stdin, source provider) after normalizing it.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	normalized, flags := Normalize(content)
	return fileSet.Add(name, normalized, flags|FileVirtual)
}

// AddGenerated adds compiler-produced text such as preprocessor output.
func (fileSet *FileSet) AddGenerated(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual|FileGenerated)
}

// Load reads a file from disk, normalizes BOM/CRLF/NFC, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	normalized, flags := Normalize(content)
	return fileSet.Add(path, normalized, flags), nil
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Lookup returns the file for id, or false when id is out of range.
func (fileSet *FileSet) Lookup(id FileID) (*File, bool) {
	if int(id) >= len(fileSet.files) {
		return nil, false
	}
	return &fileSet.files[id], true
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Position resolves the start of span into a printable position.
// Paths are made relative to BaseDir when one is set.
func (fileSet *FileSet) Position(span Span) (Position, bool) {
	f, ok := fileSet.Lookup(span.File)
	if !ok {
		return Position{}, false
	}
	start := toLineCol(f.LineIdx, span.Start)
	return Position{Path: fileSet.displayPath(f), Line: start.Line, Col: start.Col}, true
}

func (fileSet *FileSet) displayPath(f *File) string {
	if fileSet.baseDir == "" || !filepath.IsAbs(f.Path) {
		return f.Path
	}
	rel, err := filepath.Rel(fileSet.baseDir, f.Path)
	if err != nil || filepath.IsAbs(rel) || len(rel) >= 2 && rel[:2] == ".." {
		return f.Path
	}
	return filepath.ToSlash(rel)
}

// Text returns the bytes covered by span.
func (f *File) Text(span Span) string {
	end := min(int(span.End), len(f.Content))
	start := min(int(span.Start), end)
	return string(f.Content[start:end])
}

// GetLine возвращает строку с заданным номером (1-based) без перевода строки.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	var start int
	if lineNum > 1 {
		if int(lineNum-2) >= len(f.LineIdx) {
			return ""
		}
		start = int(f.LineIdx[lineNum-2]) + 1
	}
	end := len(f.Content)
	if int(lineNum-1) < len(f.LineIdx) {
		end = int(f.LineIdx[lineNum-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// Len returns the content size in bytes.
func (f *File) Len() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file %s too large: %w", f.Path, err))
	}
	return n
}
