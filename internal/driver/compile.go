package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sdslc/internal/ast"
	"sdslc/internal/diag"
	"sdslc/internal/observ"
	"sdslc/internal/parser"
	"sdslc/internal/preprocess"
	"sdslc/internal/sema"
	"sdslc/internal/source"
	"sdslc/internal/spirv"
	"sdslc/internal/trace"
)

// unit is the per-request pipeline state.
type unit struct {
	ctx     context.Context
	req     Request
	fs      *source.FileSet
	bag     *diag.Bag
	rep     diag.Reporter
	builder *ast.Builder
	parser  *parser.Parser
	// outputs maps generated files back to their origin for remapping.
	outputs []*preprocess.Output
	timer   *observ.Timer
	tracer  trace.Tracer
	span    *trace.Span
	// loading is the depth of nested class loads.
	loading int
	// main is the original text of the main unit, once loaded.
	main    source.FileID
	hasMain bool
}

func newUnit(ctx context.Context, req Request) *unit {
	if ctx == nil {
		ctx = context.Background()
	}
	u := &unit{
		ctx:     ctx,
		req:     req,
		fs:      source.NewFileSet(),
		bag:     diag.NewBag(req.MaxDiagnostics),
		builder: ast.NewBuilder(ast.Hints{}),
		timer:   observ.NewTimer(),
		tracer:  trace.FromContext(ctx),
	}
	u.rep = diag.BagReporter{Bag: u.bag}
	u.parser = parser.New(u.builder)
	return u
}

// phase runs fn inside a timer phase and a trace span.
func (u *unit) phase(name string, fn func() string) {
	if u.req.OnPhase != nil && u.loading == 0 {
		u.req.OnPhase(name)
	}
	idx := u.timer.Begin(name)
	sp := trace.Begin(u.tracer, trace.ScopePhase, name, u.span.ID())
	note := fn()
	u.timer.End(idx, note)
	sp.End(note)
}

// Compile compiles one permutation. Diagnostics of the source go to the
// result bag; the returned error is reserved for emission defects.
func Compile(ctx context.Context, req Request) (*Result, error) {
	u := newUnit(ctx, req)
	start := time.Now()
	u.span = trace.Begin(u.tracer, trace.ScopeUnit, "compile "+req.Name, trace.CurrentSpan(u.ctx).SpanID)
	res := &Result{Name: req.Name, Bag: u.bag, FileSet: u.fs}
	defer func() {
		u.finish(res, start)
		u.span.WithExtra("diags", strconv.Itoa(u.bag.Len())).End(req.Profile.String())
	}()

	main, ok := u.frontEnd()
	if !ok {
		return res, nil
	}

	var sr sema.Result
	u.phase("sema", func() string {
		sr = sema.Analyze(u.builder, main, sema.Options{
			Reporter: u.rep,
			Profile:  req.Profile,
			Defines:  u.macros(),
			Load:     u.loadClass,
			Root:     req.Entry,
		})
		if sr.Program == nil {
			return "no program"
		}
		return fmt.Sprintf("functions=%d entries=%d", len(sr.Program.Functions), len(sr.Program.Entries))
	})
	res.Program = sr.Program
	if sr.Program != nil {
		res.Streams = sr.Program.Streams
	}
	if !sr.OK || u.bag.HasErrors() {
		return res, nil
	}

	var err error
	u.phase("emit", func() string {
		var module []byte
		module, err = spirv.Emit(sr.Program, req.Emit)
		if err != nil {
			return "failed"
		}
		res.Module = module
		return fmt.Sprintf("bytes=%d", len(module))
	})
	if err != nil {
		return res, fmt.Errorf("%s: %w", req.Name, err)
	}
	return res, nil
}

// frontEnd loads, preprocesses and parses the main unit.
func (u *unit) frontEnd() (ast.FileID, bool) {
	id, ok := u.loadMain()
	if !ok {
		return ast.NoFileID, false
	}
	out, ok := u.preprocess(id)
	if !ok {
		return ast.NoFileID, false
	}
	var res parser.Result
	u.phase("parse", func() string {
		res = u.parser.File(u.fs.Get(out.File), parser.Options{Reporter: u.rep})
		return fmt.Sprintf("decls=%d", len(u.builder.Files.Get(res.File).Decls))
	})
	return res.File, res.OK
}

func (u *unit) loadMain() (source.FileID, bool) {
	if u.req.Source != nil {
		u.main, u.hasMain = u.fs.AddVirtual(u.req.Name, u.req.Source), true
		return u.main, true
	}
	id, err := u.fs.LoadVia(u.provider(), u.req.Name, nil)
	if err != nil {
		diag.ReportError(u.rep, diag.IOLoadFileError, source.Span{},
			fmt.Sprintf("can not read %s: %v", u.req.Name, err)).Emit()
		return 0, false
	}
	u.main, u.hasMain = id, true
	return id, true
}

func (u *unit) provider() source.Provider {
	if u.req.Provider == nil {
		return source.MapProvider{}
	}
	return u.req.Provider
}

func (u *unit) preprocess(id source.FileID) (*preprocess.Output, bool) {
	var out *preprocess.Output
	var err error
	u.phase("preprocess", func() string {
		out, err = preprocess.Process(u.fs, id, preprocess.Options{
			Defines:     u.req.Defines,
			IncludeDirs: u.req.IncludeDirs,
			Provider:    u.req.Provider,
			Reporter:    u.rep,
		})
		if err != nil {
			return "fatal"
		}
		return fmt.Sprintf("includes=%d", len(out.Includes))
	})
	if err != nil {
		if !errors.Is(err, preprocess.ErrFatal) {
			diag.ReportError(u.rep, diag.IOLoadFileError, source.Span{}, err.Error()).Emit()
		}
		return nil, false
	}
	u.outputs = append(u.outputs, out)
	return out, true
}

// macros is the macro table at the end of the main unit, as effect
// conditions see it.
func (u *unit) macros() map[string]string {
	out := make(map[string]string)
	for _, d := range u.req.Defines {
		out[d.Name] = d.Value
	}
	if len(u.outputs) > 0 {
		for name, m := range u.outputs[0].Defines {
			out[name] = m.Value()
		}
	}
	return out
}

// loadClass finds <name>.sdsl in the include roots, preprocesses it with
// the request macros and parses it into the shared arenas.
func (u *unit) loadClass(name string) (ast.FileID, error) {
	if u.req.Provider == nil {
		return ast.NoFileID, sema.ErrNotFound
	}
	sp := trace.Begin(u.tracer, trace.ScopeClass, "load "+name, u.span.ID())
	defer sp.End("")
	u.loading++
	defer func() { u.loading-- }()
	id, err := u.fs.LoadVia(u.req.Provider, name+ClassExt, u.req.IncludeDirs)
	if errors.Is(err, source.ErrNotFound) {
		return ast.NoFileID, sema.ErrNotFound
	}
	if err != nil {
		diag.ReportError(u.rep, diag.IOLoadFileError, source.Span{},
			fmt.Sprintf("can not read shader class %s: %v", name, err)).Emit()
		return ast.NoFileID, err
	}
	out, ok := u.preprocess(id)
	if !ok {
		return ast.NoFileID, fmt.Errorf("shader class %s: %w", name, preprocess.ErrFatal)
	}
	res := u.parser.File(u.fs.Get(out.File), parser.Options{Reporter: u.rep})
	if !res.OK {
		return res.File, fmt.Errorf("shader class %s has syntax errors", name)
	}
	return res.File, nil
}

// finish remaps spans of generated files, orders the bag and attaches
// timings.
func (u *unit) finish(res *Result, start time.Time) {
	u.dialectHint()
	u.bag.Remap(u.remap)
	u.bag.Sort()
	u.bag.Dedup()
	res.Timings = u.timer.Report()
	res.Elapsed = time.Since(start)
	if u.req.Timings {
		appendTimingDiagnostic(u.bag, timingPayload{
			Kind:    "unit",
			Path:    u.req.Name,
			TotalMS: res.Timings.TotalMS,
			Phases:  res.Timings.Phases,
		})
	}
}

func (u *unit) remap(sp source.Span) source.Span {
	for _, out := range u.outputs {
		if sp.File == out.File {
			return out.Remap(sp)
		}
	}
	return sp
}
