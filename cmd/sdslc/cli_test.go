package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sdslc/internal/artifact"
)

const simpleShader = `shader Simple
{
    stream float4 Position : SV_Position;
    stream float4 Color : SV_Target0;

    void VSMain() { streams.Position = float4(0, 0, 0, 1); }
    void PSMain() { streams.Color = float4(1, 0, 0, 1); }
};
`

const tintedShader = `shader Tinted : Base
{
    stream float4 Position : SV_Position;
    stream float4 Color : SV_Target0;

    void VSMain() { streams.Position = float4(0, 0, 0, 1); }
    void PSMain() { streams.Color = Tint() * SCALE; }
};
`

const baseShader = "shader Base { float4 Tint() { return float4(1, 0.5, 0.25, 1); } };\n"

func writeFile(t *testing.T, path, text string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the command tree and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, finish := newRootCmd()
	defer finish()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCompileWritesModule(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Simple.sdsl"), simpleShader)
	out := filepath.Join(dir, "out", "simple.spv")

	_, stderr, err := run(t, "compile", src, "-o", out, "--no-project")
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 20 || !bytes.Equal(data[:4], []byte{0x03, 0x02, 0x23, 0x07}) {
		t.Fatalf("not a SPIR-V module: % x", data[:min(len(data), 8)])
	}
	if !strings.Contains(stderr, "wrote "+out) {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCompileTextUsesDefinesAndIncludes(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Tinted.sdsl"), tintedShader)
	lib := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(lib, "Base.sdsl"), baseShader)

	stdout, stderr, err := run(t, "compile", src, "--format", "text", "-D", "SCALE=2.0", "-I", lib, "--no-project")
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	for _, want := range []string{"; SPIR-V", "OpEntryPoint", `"PSMain"`, `"VSMain"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("disassembly lacks %q", want)
		}
	}

	// без SCALE шейдер не компилируется
	_, stderr, err = run(t, "compile", src, "--format", "text", "-I", lib, "--no-project")
	if !errors.Is(err, errFailed) || !strings.Contains(stderr, "SCALE") {
		t.Fatalf("missing define: err=%v\n%s", err, stderr)
	}
}

func TestCompileBundle(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Simple.sdsl"), simpleShader)

	if _, stderr, err := run(t, "--quiet", "compile", src, "--format", "bundle", "--no-project"); err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	b, err := artifact.ReadFile(filepath.Join(dir, "Simple.sdslb"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != "Simple" {
		t.Errorf("bundle name = %q", b.Name)
	}
	if _, ok := b.Entry("PSMain"); !ok {
		t.Error("bundle has no PSMain")
	}
}

func TestCompileRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Simple.sdsl"), simpleShader)
	cases := [][]string{
		{"compile", src, "--format", "dxil"},
		{"compile", src, "--profile", "sm9_9"},
		{"compile", src, "-D", "=1"},
		{"--color", "sometimes", "compile", src},
	}
	for _, args := range cases {
		if _, _, err := run(t, args...); err == nil || errors.Is(err, errFailed) {
			t.Errorf("%v: err = %v", args, err)
		}
	}
}

func TestDiagShortFailsOnErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Bad.sdsl"), "shader Bad { float4 Get() { return nope; } };\n")

	stdout, _, err := run(t, "diag", src, "--format", "short", "--no-project")
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stdout, "error SEM3002") || !strings.Contains(stdout, "Bad.sdsl:1:") {
		t.Errorf("short output = %q", stdout)
	}
}

func TestDiagJSONSeveralFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "Simple.sdsl"), simpleShader)
	bad := writeFile(t, filepath.Join(dir, "Bad.sdsl"), "shader Bad { float4 Get() { return nope; } };\n")

	stdout, _, err := run(t, "diag", good, bad, "--format", "json", "-j", "2", "--no-project")
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v", err)
	}
	var files []fileDiagnostics
	if err := json.Unmarshal([]byte(stdout), &files); err != nil {
		t.Fatalf("%v\n%s", err, stdout)
	}
	if len(files) != 2 || files[0].File != good || files[1].File != bad {
		t.Fatalf("files = %+v", files)
	}
	if files[0].Count != 0 || files[1].Count != 1 || files[1].Diagnostics[0].Code != "SEM3002" {
		t.Errorf("diagnostics = %+v", files)
	}

	if _, _, err := run(t, "diag", good, bad, "--format", "sarif"); err == nil || errors.Is(err, errFailed) {
		t.Errorf("sarif over two files: %v", err)
	}
}

func TestPreprocessAndParse(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "A.sdsl"), "#define VALUE 3\nshader A { float4 f() { return VALUE; } };\n")

	stdout, _, err := run(t, "preprocess", src, "--no-project")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "return 3;") || strings.Contains(stdout, "#define") {
		t.Errorf("preprocessed = %q", stdout)
	}

	stdout, _, err = run(t, "parse", src, "--no-project")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "A") {
		t.Errorf("tree = %q", stdout)
	}

	broken := writeFile(t, filepath.Join(dir, "B.sdsl"), "#ifdef X\nshader B { };\n")
	if _, stderr, err := run(t, "preprocess", broken, "--no-project"); !errors.Is(err, errFailed) || !strings.Contains(stderr, "PRE") {
		t.Errorf("unterminated #ifdef: err=%v\n%s", err, stderr)
	}
}

const manifest = `
[project]
name = "demo"
include_dirs = ["lib"]

[defines]
SCALE = "1.0"

[[permutation]]
name = "tinted"
source = "shaders/Tinted.sdsl"

[[permutation]]
name = "bright"
source = "shaders/Tinted.sdsl"
defines = { SCALE = "4.0" }
`

func TestBuildProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sdslc.toml"), manifest)
	writeFile(t, filepath.Join(dir, "shaders", "Tinted.sdsl"), tintedShader)
	writeFile(t, filepath.Join(dir, "lib", "Base.sdsl"), baseShader)
	t.Chdir(filepath.Join(dir, "shaders"))

	stdout, stderr, err := run(t, "build", "--ui", "off", "-j", "2")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, stderr)
	}
	for _, name := range []string{"tinted", "bright"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("progress lacks %s: %q", name, stdout)
		}
		b, err := artifact.ReadFile(filepath.Join(dir, "build", name+".sdslb"))
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := b.Entry("VSMain"); !ok {
			t.Errorf("%s: no VSMain", name)
		}
	}
	if !strings.Contains(stderr, "built 2 of 2 permutations") {
		t.Errorf("stderr = %q", stderr)
	}

	// компилирует макросы проекта и в одиночном режиме
	if _, stderr, err := run(t, "compile", "Tinted.sdsl", "--format", "text"); err != nil {
		t.Errorf("compile inside project: %v\n%s", err, stderr)
	}
}

func TestBuildReportsManifestProblems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sdslc.toml"), "[project]\nname = \"p\"\nprofile = \"sm9\"\n[[permutation]]\nname = \"a\"\nsource = \"a.sdsl\"\n")
	t.Chdir(dir)

	_, stderr, err := run(t, "build", "--ui", "off")
	if !errors.Is(err, errFailed) || !strings.Contains(stderr, "PRJ5002") || !strings.Contains(stderr, "sm9") {
		t.Fatalf("err=%v\n%s", err, stderr)
	}

	empty := t.TempDir()
	t.Chdir(empty)
	if _, _, err := run(t, "build", "--ui", "off"); err == nil || !strings.Contains(err.Error(), "sdslc.toml") {
		t.Errorf("no manifest: %v", err)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := run(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "sdslc" || payload.Version == "" {
		t.Errorf("payload = %+v", payload)
	}
	if _, _, err := run(t, "version", "--format", "xml"); err == nil {
		t.Error("xml accepted")
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("invalid mode accepted")
	}
	var buf bytes.Buffer
	if shouldUseTUI(uiModeAuto, &buf) || !shouldUseTUI(uiModeOn, &buf) {
		t.Error("auto must follow the terminal state")
	}
}

func TestTraceRingDumpedOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Bad.sdsl"), "shader Bad { float4 Get() { return nope; } };\n")

	_, stderr, err := run(t, "--trace-level", "phase", "--trace-mode", "ring", "compile", src, "--no-project")
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr, "--- trace (most recent events) ---") || !strings.Contains(stderr, "sema") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestProfilesWrittenOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Bad.sdsl"), "shader Bad { float4 Get() { return nope; } };\n")
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")

	if _, _, err := run(t, "--cpu-profile", cpu, "--mem-profile", mem, "compile", src, "--no-project"); !errors.Is(err, errFailed) {
		t.Fatalf("err = %v", err)
	}
	for _, p := range []string{cpu, mem} {
		if _, err := os.Stat(p); err != nil {
			t.Error(err)
		}
	}
}
