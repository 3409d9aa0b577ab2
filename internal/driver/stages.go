package driver

import (
	"context"

	"sdslc/internal/ast"
)

// Preprocess runs only the first stage. Output is nil after a fatal
// diagnostic.
func Preprocess(ctx context.Context, req Request) *PreprocessResult {
	u := newUnit(ctx, req)
	res := &PreprocessResult{FileSet: u.fs, Bag: u.bag}
	if id, ok := u.loadMain(); ok {
		res.Output, _ = u.preprocess(id)
	}
	u.bag.Remap(u.remap)
	u.bag.Sort()
	return res
}

// Parse preprocesses and parses the main unit without loading the
// classes it references.
func Parse(ctx context.Context, req Request) *ParseResult {
	u := newUnit(ctx, req)
	file, ok := u.frontEnd()
	u.dialectHint()
	u.bag.Remap(u.remap)
	u.bag.Sort()
	if file == ast.NoFileID {
		ok = false
	}
	return &ParseResult{FileSet: u.fs, Builder: u.builder, File: file, Bag: u.bag, OK: ok}
}
