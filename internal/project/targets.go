package project

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sdslc/internal/diag"
	"sdslc/internal/preprocess"
	"sdslc/internal/target"
)

// BundleExt is the extension of compiled permutation bundles.
const BundleExt = ".sdslb"

// Target is a permutation with every path made absolute and the project
// defaults applied.
type Target struct {
	Name        string
	Source      string
	Entry       string
	Profile     target.Profile
	Defines     []preprocess.Define
	IncludeDirs []string
	Output      string
}

// Key fingerprints everything that influences the compiled module.
func (t *Target) Key() Digest {
	parts := []string{t.Source, t.Entry, t.Profile.String()}
	for _, d := range t.Defines {
		parts = append(parts, d.Name+"="+d.Value)
	}
	for _, dir := range t.IncludeDirs {
		parts = append(parts, "-I"+dir)
	}
	return Combine(parts...)
}

// KeyHex is Key in short printable form.
func (t *Target) KeyHex() string {
	k := t.Key()
	return hex.EncodeToString(k[:6])
}

// OutputDir is the absolute output directory.
func (m *Manifest) OutputDir() string {
	return m.abs(m.Config.Project.OutputDir)
}

// IncludeDirs are the absolute include roots, source-relative lookups first
// in manifest order.
func (m *Manifest) IncludeDirs() []string {
	dirs := make([]string, 0, len(m.Config.Project.IncludeDirs))
	for _, d := range m.Config.Project.IncludeDirs {
		dirs = append(dirs, m.abs(d))
	}
	return dirs
}

func (m *Manifest) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}

// Targets resolves the selected permutations (all when names is empty).
// Missing sources and unknown names come back as problems; permutations
// that resolve to the same configuration are reported as information.
func (m *Manifest) Targets(names ...string) ([]Target, []Problem) {
	var problems []Problem
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	known := make(map[string]bool, len(m.Config.Permutations))
	byKey := make(map[Digest]string)
	var out []Target
	for _, p := range m.Config.Permutations {
		known[p.Name] = true
		if len(want) > 0 && !want[p.Name] {
			continue
		}
		t := m.resolve(p)
		if _, err := os.Stat(t.Source); err != nil {
			problems = append(problems, Problem{
				Code: diag.ProjMissingSource,
				Msg:  fmt.Sprintf("permutation %q: source %s not found", p.Name, p.Source),
			})
			continue
		}
		if prev, dup := byKey[t.Key()]; dup {
			problems = append(problems, Problem{
				Code: diag.ProjInfo,
				Msg:  fmt.Sprintf("permutation %q compiles the same configuration as %q", p.Name, prev),
			})
		}
		byKey[t.Key()] = p.Name
		out = append(out, t)
	}
	for _, n := range names {
		if !known[n] {
			problems = append(problems, Problem{
				Code: diag.ProjInvalidManifest,
				Msg:  fmt.Sprintf("no permutation named %q", n),
			})
		}
	}
	return out, problems
}

func (m *Manifest) resolve(p Permutation) Target {
	t := Target{
		Name:        p.Name,
		Source:      m.abs(p.Source),
		Entry:       p.Entry,
		Profile:     m.Profile,
		IncludeDirs: m.IncludeDirs(),
		Output:      filepath.Join(m.OutputDir(), p.Name+BundleExt),
	}
	if p.Profile != "" {
		if prof, err := target.ParseProfile(p.Profile); err == nil {
			t.Profile = prof
		}
	}
	// директория исходника ищется первой
	t.IncludeDirs = append([]string{filepath.Dir(t.Source)}, t.IncludeDirs...)

	merged := make(map[string]string, len(m.Config.Defines)+len(p.Defines))
	for k, v := range m.Config.Defines {
		merged[k] = v
	}
	for k, v := range p.Defines {
		merged[k] = v
	}
	names := make([]string, 0, len(merged))
	for k := range merged {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		t.Defines = append(t.Defines, preprocess.Define{Name: k, Value: merged[k]})
	}
	return t
}
