package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sdslc/internal/diag"
	"sdslc/internal/diagfmt"
	"sdslc/internal/observ"
	"sdslc/internal/source"
	"sdslc/internal/version"
)

// reportFlags select how diag prints diagnostics.
type reportFlags struct {
	format    string
	withNotes bool
	fullPath  bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().BoolVar(&f.withNotes, "with-notes", true, "include notes")
	cmd.Flags().BoolVar(&f.fullPath, "fullpath", false, "print absolute file paths")
}

func (f *reportFlags) validate() error {
	switch strings.ToLower(f.format) {
	case "pretty", "short", "json", "sarif":
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty, short, json or sarif)", f.format)
}

func (f *reportFlags) pathMode() diagfmt.PathMode {
	if f.fullPath {
		return diagfmt.PathModeAbsolute
	}
	return diagfmt.PathModeRelative
}

// writeDiagnostics renders bag to w in the selected format.
func writeDiagnostics(cmd *cobra.Command, w io.Writer, bag *diag.Bag, fs *source.FileSet, f reportFlags) error {
	withBaseDir(fs)
	switch strings.ToLower(f.format) {
	case "short":
		_, err := io.WriteString(w, diag.FormatShortDiagnostics(bag.Items(), fs, f.withNotes))
		return err
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         f.pathMode(),
			IncludeNotes:     f.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "sdslc",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		colorOn, err := useColor(cmd, w)
		if err != nil {
			return err
		}
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     colorOn,
			Context:   1,
			PathMode:  f.pathMode(),
			ShowNotes: f.withNotes,
		})
		return nil
	}
}

// printDiagnostics is the stderr report of compile, preprocess and parse:
// pretty diagnostics followed by a one-line summary.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	w := cmd.ErrOrStderr()
	if err := writeDiagnostics(cmd, w, bag, fs, reportFlags{format: "pretty", withNotes: true}); err != nil {
		return err
	}
	if quiet(cmd) {
		return nil
	}
	fmt.Fprintf(w, "%s\n", diagfmt.Summary(bag))
	return nil
}

func withBaseDir(fs *source.FileSet) {
	if fs == nil || fs.BaseDir() != "" {
		return
	}
	if wd, err := os.Getwd(); err == nil {
		fs.SetBaseDir(wd)
	}
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func timingsEnabled(cmd *cobra.Command) bool {
	t, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && t
}

// printTimings writes the phase table under --timings.
func printTimings(cmd *cobra.Command, r observ.Report) {
	if !timingsEnabled(cmd) || len(r.Phases) == 0 {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), r.Summary())
}
