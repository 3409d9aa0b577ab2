package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sdslc/internal/diagfmt"
	"sdslc/internal/driver"
)

// fileDiagnostics is one element of the JSON array printed for several
// files.
type fileDiagnostics struct {
	File string `json:"file"`
	diagfmt.DiagnosticsOutput
}

func newDiagCmd() *cobra.Command {
	var (
		unit   unitFlags
		report reportFlags
		jobs   int
	)
	cmd := &cobra.Command{
		Use:   "diag <file.sdsl>...",
		Short: "Check shaders and report diagnostics",
		Long: `Diag runs the full pipeline over each file, independently and in
parallel, and reports every diagnostic. It exits with status 1 when any
file has errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := report.validate(); err != nil {
				return err
			}
			report.format = strings.ToLower(report.format)
			if report.format == "sarif" && len(args) > 1 {
				return fmt.Errorf("sarif output takes a single file")
			}

			reqs := make([]driver.Request, 0, len(args))
			for _, path := range args {
				req, err := unit.request(cmd, path)
				if err != nil {
					return err
				}
				req.Timings = timingsEnabled(cmd) && report.format == "json"
				reqs = append(reqs, req)
			}
			results, err := driver.CompileAll(cmd.Context(), reqs, jobs)
			if err != nil {
				dumpTraceRing(cmd)
				return err
			}

			out := cmd.OutOrStdout()
			failed := false
			var multi []fileDiagnostics
			for _, res := range results {
				if res == nil {
					return errors.New("compilation cancelled")
				}
				if res.Bag.HasErrors() {
					failed = true
				}
				if report.format == "json" && len(results) > 1 {
					withBaseDir(res.FileSet)
					multi = append(multi, fileDiagnostics{
						File: res.Name,
						DiagnosticsOutput: diagfmt.BuildDiagnosticsOutput(res.Bag, res.FileSet, diagfmt.JSONOpts{
							IncludePositions: true,
							PathMode:         report.pathMode(),
							IncludeNotes:     report.withNotes,
						}),
					})
					continue
				}
				if err := writeDiagnostics(cmd, out, res.Bag, res.FileSet, report); err != nil {
					return err
				}
				if report.format == "pretty" {
					printTimings(cmd, res.Timings)
				}
			}
			if multi != nil {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(multi); err != nil {
					return err
				}
			}

			if report.format == "pretty" && !quiet(cmd) {
				summarize(cmd, results)
			}
			if failed {
				dumpTraceRing(cmd)
				return errFailed
			}
			return nil
		},
	}
	unit.register(cmd)
	report.register(cmd)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files checked in parallel (0 = GOMAXPROCS)")
	return cmd
}

func summarize(cmd *cobra.Command, results []*driver.Result) {
	w := cmd.ErrOrStderr()
	for _, res := range results {
		status := "ok"
		if res.Bag.HasErrors() {
			status = "failed"
		}
		fmt.Fprintf(w, "%s: %s (%s)\n", res.Name, status, diagfmt.Summary(res.Bag))
	}
}
