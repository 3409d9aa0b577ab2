// Package driver runs the compiler pipeline: preprocess, parse, load the
// referenced shader classes, analyze and emit. It owns no global state;
// every Compile call builds its own file set, arenas and diagnostics.
package driver

import (
	"time"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/observ"
	"sdslc/internal/preprocess"
	"sdslc/internal/sema"
	"sdslc/internal/source"
	"sdslc/internal/spirv"
	"sdslc/internal/streams"
	"sdslc/internal/target"
)

// ClassExt is the file extension a shader class is looked up with.
const ClassExt = ".sdsl"

// Request is one permutation to compile.
type Request struct {
	// Name is the path of the main unit. With Source set it is only used
	// for display; otherwise it is read through Provider.
	Name   string
	Source []byte
	// Entry names the shader class or effect to compile. Empty selects the
	// last one declared in the main unit.
	Entry       string
	Defines     []preprocess.Define
	IncludeDirs []string
	Profile     target.Profile
	// Provider resolves includes and referenced classes. Nil means the
	// request is self-contained.
	Provider       source.Provider
	MaxDiagnostics int

	// Timings appends an OBS6001 diagnostic with the phase report.
	Timings bool
	Emit    spirv.Options

	// OnPhase, when set, is called as each phase of the main unit starts.
	// It may run on any goroutine CompileAll uses.
	OnPhase func(phase string)
}

// Result is the outcome of Compile. Module is nil whenever Bag holds an
// error.
type Result struct {
	Name    string
	Module  []byte
	Bag     *diag.Bag
	FileSet *source.FileSet
	Program *sema.Program
	Streams *streams.Table
	Timings observ.Report
	Elapsed time.Duration
}

// OK reports a produced module.
func (r *Result) OK() bool {
	return r != nil && r.Module != nil && !r.Bag.HasErrors()
}

// PreprocessResult is the output of the first stage.
type PreprocessResult struct {
	FileSet *source.FileSet
	Output  *preprocess.Output
	Bag     *diag.Bag
}

// ParseResult exposes the syntax tree of the main unit.
type ParseResult struct {
	FileSet *source.FileSet
	Builder *ast.Builder
	File    ast.FileID
	Bag     *diag.Bag
	OK      bool
}
