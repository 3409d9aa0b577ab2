package main

import (
	"github.com/spf13/cobra"

	"sdslc/internal/driver"
)

func newPreprocessCmd() *cobra.Command {
	var (
		unit   unitFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "preprocess <file.sdsl>",
		Short: "Print the preprocessed source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := unit.request(cmd, args[0])
			if err != nil {
				return err
			}
			res := driver.Preprocess(cmd.Context(), req)
			if err := printDiagnostics(cmd, res.Bag, res.FileSet); err != nil {
				return err
			}
			if res.Output == nil || res.Bag.HasErrors() {
				dumpTraceRing(cmd)
				return errFailed
			}
			if output == "" {
				output = "-"
			}
			return writeOutput(cmd.OutOrStdout(), output, res.Output.Text)
		},
	}
	unit.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default stdout)")
	return cmd
}
