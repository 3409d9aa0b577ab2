package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sdslc/internal/buildpipeline"
	"sdslc/internal/diag"
	"sdslc/internal/project"
	"sdslc/internal/source"
	"sdslc/internal/spirv"
	"sdslc/internal/ui"
)

func newBuildCmd() *cobra.Command {
	var (
		jobs       int
		dryRun     bool
		uiFlag     string
		stripNames bool
	)
	cmd := &cobra.Command{
		Use:   "build [permutation...]",
		Short: "Build the permutations of the current project",
		Long: `Build reads sdslc.toml from the current directory or one of its
parents and compiles every permutation it declares (or only the named
ones), writing a bundle per permutation into the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := readUIMode(uiFlag)
			if err != nil {
				return err
			}
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			m, ok, err := project.Load(wd)
			if err != nil {
				var ve *project.ValidationError
				if errors.As(err, &ve) {
					if perr := reportProblems(cmd, ve.Path, ve.Problems); perr != nil {
						return perr
					}
					return errFailed
				}
				return err
			}
			if !ok {
				return fmt.Errorf("no %s found in %s or any parent directory", project.ManifestName, wd)
			}

			targets, problems := m.Targets(args...)
			if err := reportProblems(cmd, m.Path, problems); err != nil {
				return err
			}
			problemFailed := false
			for _, p := range problems {
				if problemSeverity(p) == diag.SevError {
					problemFailed = true
				}
			}
			if len(targets) == 0 {
				if problemFailed {
					return errFailed
				}
				return fmt.Errorf("%s declares no permutations to build", m.Path)
			}

			maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
			if err != nil {
				return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
			}
			names := make([]string, len(targets))
			for i, t := range targets {
				names[i] = t.Name
			}
			req := buildpipeline.Request{
				Targets:        targets,
				Jobs:           jobs,
				MaxDiagnostics: maxDiagnostics,
				Emit:           spirv.Options{StripNames: stripNames},
				DryRun:         dryRun,
			}

			out := cmd.OutOrStdout()
			var res *buildpipeline.Result
			var buildErr error
			if !quiet(cmd) && shouldUseTUI(mode, out) {
				res, buildErr = runBuildWithUI(cmd.Context(), out, "building "+m.Config.Project.Name, names, req)
			} else {
				if !quiet(cmd) {
					req.Progress = ui.NewPlainSink(out, names)
				}
				res, buildErr = buildpipeline.Build(cmd.Context(), req)
			}
			if res == nil {
				return buildErr
			}

			for i := range res.Targets {
				tr := &res.Targets[i]
				if tr.Compile != nil {
					if err := printDiagnostics(cmd, tr.Compile.Bag, tr.Compile.FileSet); err != nil {
						return err
					}
				}
			}
			printTimings(cmd, res.Report)

			if !quiet(cmd) {
				verb := "built"
				if dryRun {
					verb = "checked"
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d of %d permutations in %s\n",
					verb, len(res.Targets)-res.Failed(), len(res.Targets), res.Elapsed.Round(time.Millisecond))
			}
			if buildErr != nil {
				dumpTraceRing(cmd)
				return buildErr
			}
			if res.Failed() > 0 || problemFailed {
				dumpTraceRing(cmd)
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "permutations compiled in parallel (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compile without writing bundles")
	cmd.Flags().StringVar(&uiFlag, "ui", "auto", "progress display (auto|on|off)")
	cmd.Flags().BoolVar(&stripNames, "strip-names", false, "omit debug names from the modules")
	return cmd
}

func problemSeverity(p project.Problem) diag.Severity {
	if p.Code == diag.ProjInfo {
		return diag.SevInfo
	}
	return diag.SevError
}

// reportProblems prints manifest problems as diagnostics anchored at the
// start of the manifest.
func reportProblems(cmd *cobra.Command, path string, problems []project.Problem) error {
	if len(problems) == 0 {
		return nil
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		id = fs.AddVirtual(path, nil)
	}
	bag := diag.NewBag(len(problems))
	for _, p := range problems {
		bag.Add(diag.New(problemSeverity(p), p.Code, source.Span{File: id}, p.Msg))
	}
	return printDiagnostics(cmd, bag, fs)
}
