// Package testkit holds checks shared by parser and driver tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"sdslc/internal/ast"
	"sdslc/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) file.Span is non-empty and within file content bounds
// 2) every declaration span is non-empty and nested in its parent span
// 3) file.Span covers the union of top-level declaration spans
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	var union source.Span
	for i, id := range f.Decls {
		sp, err := checkDecl(b, id, f.Span, sf.ID)
		if err != nil {
			return err
		}
		if i == 0 {
			union = sp
		} else {
			union = union.Cover(sp)
		}
	}
	if len(f.Decls) > 0 && (union.Start < f.Span.Start || union.End > f.Span.End) {
		return fmt.Errorf("file span %v does not cover union of decls %v", f.Span, union)
	}
	return nil
}

func checkDecl(b *ast.Builder, id ast.DeclID, parent source.Span, file source.FileID) (source.Span, error) {
	d := b.Decls.Get(id)
	if d == nil {
		return source.Span{}, fmt.Errorf("nil decl for id=%d", id)
	}
	sp := d.Span
	if sp.End <= sp.Start {
		return sp, fmt.Errorf("empty %s span: %v", d.Kind, sp)
	}
	if sp.File != file {
		return sp, fmt.Errorf("%s %q span file mismatch: got=%d want=%d", d.Kind, d.Name, sp.File, file)
	}
	if sp.Start < parent.Start || sp.End > parent.End {
		return sp, fmt.Errorf("%s %q span %v is outside parent span %v", d.Kind, d.Name, sp, parent)
	}
	for _, child := range children(b, id) {
		if _, err := checkDecl(b, child, sp, file); err != nil {
			return sp, err
		}
	}
	return sp, nil
}

func children(b *ast.Builder, id ast.DeclID) []ast.DeclID {
	if s, ok := b.Decls.Shader(id); ok {
		return s.Members
	}
	if ns, ok := b.Decls.Namespace(id); ok {
		return ns.Decls
	}
	if st, ok := b.Decls.Struct(id); ok {
		return st.Fields
	}
	if cb, ok := b.Decls.CBuffer(id); ok {
		return cb.Members
	}
	return nil
}
