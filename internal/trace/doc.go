// Package trace records what the compiler is doing: one span per
// compilation unit, per pipeline phase and per shader class pulled in by
// the mixin linker.
//
// Enable it from the command line:
//
//	sdslc compile --trace=- --trace-level=detail effect.sdsl
//
// Tracers:
//
//   - Nop: tracing disabled, zero overhead
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last N events, dumped when a compile fails
//   - MultiTracer: fans out to several tracers
//
// Levels select scopes: phase shows driver, unit and phase spans; detail
// adds class loading; debug shows everything.
//
// Tracers travel through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, t)
//	sp := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "sema", parent)
//	defer sp.End("")
package trace
