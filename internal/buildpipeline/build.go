// Package buildpipeline compiles the permutations of a project and writes
// their bundles.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"sdslc/internal/artifact"
	"sdslc/internal/driver"
	"sdslc/internal/observ"
	"sdslc/internal/project"
	"sdslc/internal/source"
	"sdslc/internal/spirv"
	"sdslc/internal/trace"
)

// Request configures a batch build.
type Request struct {
	Targets []project.Target
	// Jobs bounds concurrent compiles; zero means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Emit           spirv.Options
	// Provider reads sources; nil means the file system.
	Provider source.Provider
	Progress ProgressSink
	// DryRun compiles without writing bundles.
	DryRun bool
}

// TargetResult is the outcome of one permutation. Err is set for emission
// and I/O failures; source errors are in Compile.Bag.
type TargetResult struct {
	Target  project.Target
	Compile *driver.Result
	Output  string
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the permutation produced no bundle.
func (r *TargetResult) Failed() bool {
	return r.Err != nil || r.Compile == nil || !r.Compile.OK()
}

// Result is indexed like Request.Targets.
type Result struct {
	Targets []TargetResult
	Timings Timings
	Report  observ.Report
	Elapsed time.Duration
}

// Failed counts permutations without a bundle.
func (r *Result) Failed() int {
	n := 0
	for i := range r.Targets {
		if r.Targets[i].Failed() {
			n++
		}
	}
	return n
}

// Build compiles every target concurrently. A failing permutation does not
// stop the others; the returned error joins emission and write failures
// and is nil when only source diagnostics occurred.
func Build(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res := &Result{Targets: make([]TargetResult, len(req.Targets))}
	if len(req.Targets) == 0 {
		return res, nil
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := trace.FromContext(ctx)
	sp := trace.Begin(tracer, trace.ScopeDriver, "build", trace.CurrentSpan(ctx).SpanID)
	defer sp.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: sp.ID()})

	for _, t := range req.Targets {
		emit(req.Progress, Event{Target: t.Name, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Targets)))
	for i := range req.Targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				res.Targets[i] = TargetResult{Target: req.Targets[i], Err: err}
				return err
			}
			res.Targets[i] = buildTarget(gctx, req, req.Targets[i])
			return nil
		})
	}
	ctxErr := g.Wait()

	var errs []error
	for i := range res.Targets {
		tr := &res.Targets[i]
		if tr.Compile != nil {
			res.Report = res.Report.Merge(tr.Compile.Timings)
			for _, p := range tr.Compile.Timings.Phases {
				res.Timings.Add(Stage(p.Name), time.Duration(p.DurationMS*float64(time.Millisecond)))
			}
		}
		if tr.Err != nil && !errors.Is(tr.Err, context.Canceled) {
			errs = append(errs, fmt.Errorf("%s: %w", tr.Target.Name, tr.Err))
		}
	}
	res.Elapsed = time.Since(start)
	sp.WithExtra("failed", fmt.Sprint(res.Failed()))

	status := StatusDone
	if res.Failed() > 0 {
		status = StatusError
	}
	emit(req.Progress, Event{Status: status, Elapsed: res.Elapsed})
	if ctxErr != nil {
		errs = append(errs, ctxErr)
	}
	return res, errors.Join(errs...)
}

func buildTarget(ctx context.Context, req Request, t project.Target) TargetResult {
	start := time.Now()
	out := TargetResult{Target: t}
	provider := req.Provider
	if provider == nil {
		provider = source.DirProvider{}
	}
	var last Stage
	cres, err := driver.Compile(ctx, driver.Request{
		Name:           t.Source,
		Entry:          t.Entry,
		Defines:        t.Defines,
		IncludeDirs:    t.IncludeDirs,
		Profile:        t.Profile,
		Provider:       provider,
		MaxDiagnostics: req.MaxDiagnostics,
		Emit:           req.Emit,
		OnPhase: func(phase string) {
			last = Stage(phase)
			emit(req.Progress, Event{Target: t.Name, Stage: last, Status: StatusWorking})
		},
	})
	out.Compile = cres
	out.Err = err
	if err == nil && cres.OK() && !req.DryRun {
		last = StageWrite
		emit(req.Progress, Event{Target: t.Name, Stage: StageWrite, Status: StatusWorking})
		out.Err = write(cres, t)
		if out.Err == nil {
			out.Output = t.Output
		}
	}
	out.Elapsed = time.Since(start)

	evt := Event{Target: t.Name, Stage: last, Status: StatusDone, Elapsed: out.Elapsed}
	if out.Failed() {
		evt.Status = StatusError
		evt.Err = out.Err
	}
	emit(req.Progress, evt)
	return out
}

func write(cres *driver.Result, t project.Target) error {
	b, err := artifact.New(cres.Program, cres.Module)
	if err != nil {
		return fmt.Errorf("reflect: %w", err)
	}
	if err := artifact.WriteFile(t.Output, b); err != nil {
		return fmt.Errorf("failed to write bundle %q: %w", t.Output, err)
	}
	return nil
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
