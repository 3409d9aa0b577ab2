package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"sdslc/internal/driver"
	"sdslc/internal/preprocess"
	"sdslc/internal/project"
	"sdslc/internal/source"
	"sdslc/internal/target"
)

// unitFlags are the per-unit options shared by compile, preprocess, parse
// and diag.
type unitFlags struct {
	defines   []string
	includes  []string
	profile   string
	entry     string
	noProject bool
}

func (f *unitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.defines, "define", "D", nil, "predefine a macro (NAME or NAME=VALUE)")
	cmd.Flags().StringArrayVarP(&f.includes, "include", "I", nil, "add an include and class directory")
	cmd.Flags().StringVar(&f.profile, "profile", "", "target profile (sm4_0|sm5_0|sm5_1|sm6_0|sm6_2)")
	cmd.Flags().StringVar(&f.entry, "entry", "", "root shader when the file declares several")
	cmd.Flags().BoolVar(&f.noProject, "no-project", false, "ignore sdslc.toml defaults")
}

// parseDefine splits "NAME=VALUE"; a bare NAME defines an empty macro.
func parseDefine(s string) (preprocess.Define, error) {
	name, value, _ := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return preprocess.Define{}, fmt.Errorf("invalid define %q", s)
	}
	return preprocess.Define{Name: name, Value: value}, nil
}

// request builds a driver request for path. Project defaults from an
// sdslc.toml above the file come first; command-line values override them.
func (f *unitFlags) request(cmd *cobra.Command, path string) (driver.Request, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Request{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	req := driver.Request{
		Name:           path,
		Entry:          f.entry,
		Profile:        target.Default,
		Provider:       source.DirProvider{},
		MaxDiagnostics: maxDiagnostics,
	}

	if !f.noProject {
		m, ok, err := project.Load(filepath.Dir(path))
		if err != nil {
			return req, err
		}
		if ok {
			req.Profile = m.Profile
			req.IncludeDirs = append(req.IncludeDirs, m.IncludeDirs()...)
			for name, value := range m.Config.Defines {
				req.Defines = append(req.Defines, preprocess.Define{Name: name, Value: value})
			}
			sort.Slice(req.Defines, func(i, j int) bool { return req.Defines[i].Name < req.Defines[j].Name })
		}
	}

	// каталог файла ищется первым
	req.IncludeDirs = append([]string{filepath.Dir(path)}, append(f.includes, req.IncludeDirs...)...)
	if f.profile != "" {
		p, err := target.ParseProfile(f.profile)
		if err != nil {
			return req, err
		}
		req.Profile = p
	}
	for _, s := range f.defines {
		d, err := parseDefine(s)
		if err != nil {
			return req, err
		}
		req.Defines = append(req.Defines, d)
	}
	return req, nil
}
