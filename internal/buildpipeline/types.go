package buildpipeline

import "time"

// Stage describes a pipeline phase of one permutation.
type Stage string

const (
	// StagePreprocess expands directives and macros.
	StagePreprocess Stage = "preprocess"
	// StageParse builds the syntax tree.
	StageParse Stage = "parse"
	// StageSema resolves the mixin and checks types.
	StageSema Stage = "sema"
	// StageEmit generates SPIR-V.
	StageEmit Stage = "emit"
	// StageWrite stores the bundle.
	StageWrite Stage = "write"
)

// Stages in pipeline order.
var Stages = []Stage{StagePreprocess, StageParse, StageSema, StageEmit, StageWrite}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a permutation (or for the whole build when
// Target is empty).
type Event struct {
	Target  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations summed over a build.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Add accumulates a duration for the given stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
