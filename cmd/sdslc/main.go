package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sdslc/internal/version"
)

// errFailed is returned after the failure has already been reported; main
// exits with status 1 without printing it again.
var errFailed = errors.New("failed")

// newRootCmd builds the command tree. Tests build a fresh tree per run.
// finish stops tracing and profiling and runs after Execute, failed or not.
func newRootCmd() (rootCmd *cobra.Command, finish func()) {
	var cleanups []func()
	finish = func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		cleanups = nil
	}
	rootCmd = &cobra.Command{
		Use:           "sdslc",
		Short:         "SDSL shader compiler",
		Long:          `sdslc compiles mixin-based SDSL shaders to SPIR-V modules and bundles`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := useColor(cmd, cmd.OutOrStdout()); err != nil {
				return err
			}
			stopProfiles, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			cleanups = append(cleanups, stopProfiles)
			stopTrace, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			cleanups = append(cleanups, stopTrace)
			return nil
		},
	}

	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newPreprocessCmd())
	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newDiagCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("trace", "", "write a trace to this file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace mode (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring buffer")
	pf.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
	return rootCmd, finish
}

// main executes the root command and maps failures to exit status 1.
func main() {
	rootCmd, finish := newRootCmd()
	err := rootCmd.ExecuteContext(context.Background())
	finish()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "sdslc: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against the terminal state of w.
func useColor(cmd *cobra.Command, w io.Writer) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}
