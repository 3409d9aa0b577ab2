package diagfmt

import (
	"path/filepath"
	"strconv"
	"strings"

	"sdslc/internal/source"
)

// autoPathLimit is the length above which auto mode prints a base name.
const autoPathLimit = 40

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	p := f.Path
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	case PathModeRelative:
		if base := fs.BaseDir(); base != "" && filepath.IsAbs(p) {
			if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
				p = rel
			}
		}
	case PathModeBasename:
		p = filepath.Base(p)
	default:
		if filepath.IsAbs(p) && len(p) > autoPathLimit {
			p = filepath.Base(p)
		}
	}
	return filepath.ToSlash(p)
}

// location renders "path:line:col" or "" when span has no file.
func location(fs *source.FileSet, span source.Span, mode PathMode) (string, source.LineCol, *source.File) {
	f, ok := fs.Lookup(span.File)
	if !ok {
		return "", source.LineCol{}, nil
	}
	start, _ := fs.Resolve(span)
	return formatPath(fs, f, mode) + ":" + strconv.FormatUint(uint64(start.Line), 10) + ":" + strconv.FormatUint(uint64(start.Col), 10), start, f
}
