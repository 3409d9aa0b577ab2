// Package project reads the sdslc.toml manifest and resolves its
// permutations into compile targets.
//
// A manifest looks like:
//
//	[project]
//	name = "lighting"
//	profile = "sm5_0"
//	include_dirs = ["shaders", "shaders/common"]
//	output_dir = "build"
//
//	[defines]
//	MAX_LIGHTS = "8"
//
//	[[permutation]]
//	name = "lit_fast"
//	source = "shaders/Lit.sdsl"
//	entry = "Lit"
//	defines = { FAST = "1" }
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"sdslc/internal/diag"
	"sdslc/internal/target"
)

// DefaultOutputDir is used when [project].output_dir is absent.
const DefaultOutputDir = "build"

type Config struct {
	Project      ProjectConfig     `toml:"project"`
	Defines      map[string]string `toml:"defines"`
	Permutations []Permutation     `toml:"permutation"`
}

type ProjectConfig struct {
	Name        string   `toml:"name"`
	Profile     string   `toml:"profile"`
	IncludeDirs []string `toml:"include_dirs"`
	OutputDir   string   `toml:"output_dir"`
}

// Permutation is one compiled variant of an effect.
type Permutation struct {
	Name    string            `toml:"name"`
	Source  string            `toml:"source"`
	Entry   string            `toml:"entry"`
	Defines map[string]string `toml:"defines"`
	Profile string            `toml:"profile"`
}

// Manifest is a decoded and validated sdslc.toml.
type Manifest struct {
	Path    string
	Root    string
	Config  Config
	Profile target.Profile
}

// Problem is one manifest defect with the code it is reported under.
type Problem struct {
	Code diag.Code
	Msg  string
}

// ValidationError lists every defect found in a manifest.
type ValidationError struct {
	Path     string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Msg
	}
	return fmt.Sprintf("%s: %s", e.Path, strings.Join(msgs, "; "))
}

// Load finds sdslc.toml above startDir and decodes it. ok is false when no
// manifest exists.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadFile(path)
	return m, true, err
}

// LoadFile decodes the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, &ValidationError{Path: path, Problems: []Problem{{
			Code: diag.ProjInvalidManifest,
			Msg:  fmt.Sprintf("failed to parse TOML: %v", err),
		}}}
	}
	return build(path, cfg, meta)
}

// Decode parses manifest text; path only names the result.
func Decode(path, text string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return nil, &ValidationError{Path: path, Problems: []Problem{{
			Code: diag.ProjInvalidManifest,
			Msg:  fmt.Sprintf("failed to parse TOML: %v", err),
		}}}
	}
	return build(path, cfg, meta)
}

func build(path string, cfg Config, meta toml.MetaData) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	m := &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg, Profile: target.Default}
	var problems []Problem
	bad := func(code diag.Code, format string, args ...any) {
		problems = append(problems, Problem{Code: code, Msg: fmt.Sprintf(format, args...)})
	}

	if !meta.IsDefined("project") {
		bad(diag.ProjInvalidManifest, "missing [project]")
	} else if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		bad(diag.ProjInvalidManifest, "missing [project].name")
	}
	if meta.IsDefined("project", "profile") {
		p, err := target.ParseProfile(cfg.Project.Profile)
		if err != nil {
			bad(diag.ProjUnknownProfile, "[project].profile: unknown profile %q", cfg.Project.Profile)
		} else {
			m.Profile = p
		}
	}
	if m.Config.Project.OutputDir == "" {
		m.Config.Project.OutputDir = DefaultOutputDir
	}
	if !meta.IsDefined("permutation") || len(cfg.Permutations) == 0 {
		bad(diag.ProjInvalidManifest, "no [[permutation]] entries")
	}
	for _, key := range meta.Undecoded() {
		bad(diag.ProjInvalidManifest, "unknown key %s", key.String())
	}

	seen := make(map[string]bool, len(cfg.Permutations))
	for i, p := range cfg.Permutations {
		where := fmt.Sprintf("permutation #%d", i+1)
		if p.Name != "" {
			where = fmt.Sprintf("permutation %q", p.Name)
		}
		switch {
		case p.Name == "":
			bad(diag.ProjInvalidManifest, "%s: missing name", where)
		case !validName(p.Name):
			bad(diag.ProjInvalidManifest, "%s: name must be letters, digits, '_' or '-'", where)
		case seen[p.Name]:
			bad(diag.ProjInvalidManifest, "%s: duplicate name", where)
		}
		seen[p.Name] = true
		if strings.TrimSpace(p.Source) == "" {
			bad(diag.ProjMissingSource, "%s: missing source", where)
		}
		if p.Profile != "" {
			if _, err := target.ParseProfile(p.Profile); err != nil {
				bad(diag.ProjUnknownProfile, "%s: unknown profile %q", where, p.Profile)
			}
		}
		for name := range p.Defines {
			if !validMacro(name) {
				bad(diag.ProjInvalidManifest, "%s: invalid macro name %q", where, name)
			}
		}
	}
	for name := range cfg.Defines {
		if !validMacro(name) {
			bad(diag.ProjInvalidManifest, "[defines]: invalid macro name %q", name)
		}
	}

	if len(problems) > 0 {
		sort.SliceStable(problems, func(i, j int) bool { return problems[i].Code < problems[j].Code })
		return nil, &ValidationError{Path: abs, Problems: problems}
	}
	return m, nil
}

// AsProblems unpacks a Load error into problems; other errors become a
// single invalid-manifest problem.
func AsProblems(err error) []Problem {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Problems
	}
	return []Problem{{Code: diag.ProjInvalidManifest, Msg: err.Error()}}
}

func validName(s string) bool {
	for _, r := range s {
		if r != '_' && r != '-' && !isAlnum(r) {
			return false
		}
	}
	return s != ""
}

func validMacro(s string) bool {
	for i, r := range s {
		if r != '_' && !isAlnum(r) || i == 0 && r >= '0' && r <= '9' {
			return false
		}
	}
	return s != ""
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
