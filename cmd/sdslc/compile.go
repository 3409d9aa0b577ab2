package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sdslc/internal/artifact"
	"sdslc/internal/driver"
	"sdslc/internal/project"
	"sdslc/internal/spirv"
)

func newCompileCmd() *cobra.Command {
	var (
		unit       unitFlags
		output     string
		format     string
		stripNames bool
	)
	cmd := &cobra.Command{
		Use:   "compile <file.sdsl>",
		Short: "Compile a shader to a SPIR-V module",
		Long: `Compile preprocesses, parses and checks a shader together with the
classes it mixes in, then emits a SPIR-V module. With --format=text the
module is disassembled; with --format=bundle it is written together with
its reflection data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case "spirv", "text", "bundle":
			default:
				return fmt.Errorf("unsupported format %q (must be spirv, text or bundle)", format)
			}
			req, err := unit.request(cmd, args[0])
			if err != nil {
				return err
			}
			req.Emit = spirv.Options{StripNames: stripNames}

			res, err := driver.Compile(cmd.Context(), req)
			if perr := printDiagnostics(cmd, res.Bag, res.FileSet); perr != nil {
				return perr
			}
			if err != nil {
				dumpTraceRing(cmd)
				return err
			}
			if !res.OK() {
				dumpTraceRing(cmd)
				return errFailed
			}
			if err := writeModule(cmd, res, format, outputPath(args[0], output, format)); err != nil {
				return err
			}
			printTimings(cmd, res.Timings)
			return nil
		},
	}
	unit.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (- for stdout)")
	cmd.Flags().StringVar(&format, "format", "spirv", "output format (spirv|text|bundle)")
	cmd.Flags().BoolVar(&stripNames, "strip-names", false, "omit debug names from the module")
	return cmd
}

// outputPath picks the default output next to the source: .spv for
// modules, .sdslb for bundles, stdout for text.
func outputPath(src, output, format string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(src, filepath.Ext(src))
	switch format {
	case "bundle":
		return base + project.BundleExt
	case "text":
		return "-"
	}
	return base + ".spv"
}

func writeModule(cmd *cobra.Command, res *driver.Result, format, path string) error {
	switch format {
	case "bundle":
		b, err := artifact.New(res.Program, res.Module)
		if err != nil {
			return fmt.Errorf("reflect: %w", err)
		}
		if path == "-" {
			return artifact.Encode(cmd.OutOrStdout(), b)
		}
		if err := artifact.WriteFile(path, b); err != nil {
			return err
		}
	case "text":
		text, err := spirv.Disassemble(res.Module)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), path, []byte(text)); err != nil {
			return err
		}
	default:
		if err := writeOutput(cmd.OutOrStdout(), path, res.Module); err != nil {
			return err
		}
	}
	if path != "-" && !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(res.Module))
	}
	return nil
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
