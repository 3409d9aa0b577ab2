package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// ErrNotFound is returned by providers for unknown paths.
var ErrNotFound = errors.New("source not found")

// Provider supplies source bytes by path. The compiler core never touches the
// file system itself; the CLI passes a DirProvider, tests a MapProvider.
type Provider interface {
	ReadSource(path string) ([]byte, error)
}

// MapProvider serves sources from memory, keyed by slash-separated path.
type MapProvider map[string][]byte

func (m MapProvider) ReadSource(p string) ([]byte, error) {
	if b, ok := m[path.Clean(filepath.ToSlash(p))]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
}

// DirProvider reads from the operating system.
type DirProvider struct{}

func (DirProvider) ReadSource(p string) ([]byte, error) {
	// #nosec G304 -- include roots come from the user
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return b, err
}

// Find tries name relative to each directory in order and returns the first
// hit. An empty directory means name as is.
func Find(p Provider, name string, dirs []string) (string, []byte, error) {
	if p == nil {
		return "", nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if len(dirs) == 0 {
		dirs = []string{""}
	}
	for _, dir := range dirs {
		full := name
		if dir != "" && !filepath.IsAbs(name) {
			full = filepath.ToSlash(filepath.Join(dir, name))
		}
		b, err := p.ReadSource(full)
		if err == nil {
			return full, b, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// LoadVia finds name through p and adds it to the set, reusing an already
// loaded version of the same path.
func (fileSet *FileSet) LoadVia(p Provider, name string, dirs []string) (FileID, error) {
	roots := dirs
	if len(roots) == 0 {
		roots = []string{""}
	}
	for _, dir := range roots {
		full := name
		if dir != "" && !filepath.IsAbs(name) {
			full = filepath.Join(dir, name)
		}
		if id, ok := fileSet.GetLatest(full); ok {
			return id, nil
		}
	}
	full, content, err := Find(p, name, dirs)
	if err != nil {
		return 0, err
	}
	normalized, flags := Normalize(content)
	return fileSet.Add(full, normalized, flags), nil
}
