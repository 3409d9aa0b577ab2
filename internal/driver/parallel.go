package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"sdslc/internal/trace"
)

// CompileAll compiles independent permutations concurrently, at most jobs
// at a time (GOMAXPROCS when jobs <= 0). Results keep the order of reqs.
// The first emission defect cancels the requests not yet started.
func CompileAll(ctx context.Context, reqs []Request, jobs int) ([]*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	sp := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "compile-all", trace.CurrentSpan(ctx).SpanID)
	defer sp.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: sp.ID()})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(reqs)))
	for i, req := range reqs {
		g.Go(func() error {
			// отмена после дефекта в соседней перестановке
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := Compile(gctx, req)
			// индекс i уникален, мьютекс не нужен
			results[i] = res
			return err
		})
	}
	err := g.Wait()
	return results, err
}
