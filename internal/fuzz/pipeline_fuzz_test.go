package fuzztests

import (
	"context"
	"testing"
	"time"

	"sdslc/internal/driver"
	"sdslc/internal/source"
	"sdslc/internal/target"
	"sdslc/internal/testkit"
)

// compileTimeout bounds a single input; a longer run indicates a loop in
// error recovery or macro expansion.
const compileTimeout = 5 * time.Second

// lib answers class lookups so that mixin inputs reach sema.
var lib = source.MapProvider{
	"Base.sdsl": []byte("shader Base { float4 Tint() { return float4(1, 1, 1, 1); } };"),
}

func request(input []byte) driver.Request {
	return driver.Request{
		Name:           "fuzz.sdsl",
		Source:         input,
		Profile:        target.Default,
		Provider:       lib,
		MaxDiagnostics: 128,
	}
}

func FuzzPreprocess(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		res := driver.Preprocess(context.Background(), request(clampInput(input)))
		if res.Output == nil && !res.Bag.HasErrors() {
			t.Fatalf("no output and no error for %q", truncateForLog(input, 200))
		}
	})
}

func FuzzParse(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		res := driver.Parse(context.Background(), request(clampInput(input)))
		if !res.OK && !res.Bag.HasErrors() {
			t.Fatalf("parse failed silently for %q", truncateForLog(input, 200))
		}
		if !res.OK {
			return
		}
		node := res.Builder.Files.Get(res.File)
		sf := res.FileSet.Get(node.Span.File)
		if sf.Len() == 0 {
			return
		}
		if err := testkit.CheckSpanInvariants(res.Builder, res.File, sf); err != nil {
			t.Fatalf("span invariants for %q: %v", truncateForLog(input, 200), err)
		}
	})
}

// FuzzCompileNoHang runs the whole pipeline. Emission defects are bugs;
// source diagnostics are not.
func FuzzCompileNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("#define A A\nshader A { float f() { return A; } };"))
	f.Add([]byte("#define F(x) F(x)\nF(1)"))
	f.Add([]byte("shader R { float f() { return f(); } };"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx, cancel := context.WithTimeout(context.Background(), compileTimeout)
		defer cancel()

		type outcome struct {
			res *driver.Result
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := driver.Compile(ctx, request(input))
			done <- outcome{res, err}
		}()

		select {
		case out := <-done:
			if out.err != nil {
				t.Fatalf("emission defect: %v\ninput: %q", out.err, truncateForLog(input, 200))
			}
			if out.res.Module == nil && !out.res.Bag.HasErrors() {
				t.Fatalf("no module and no error for %q", truncateForLog(input, 200))
			}
		case <-ctx.Done():
			t.Fatalf("compile hang detected: took longer than %v\ninput (%d bytes): %q",
				compileTimeout, len(input), truncateForLog(input, 200))
		}
	})
}
