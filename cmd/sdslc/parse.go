package main

import (
	"github.com/spf13/cobra"

	"sdslc/internal/ast"
	"sdslc/internal/driver"
)

func newParseCmd() *cobra.Command {
	var unit unitFlags
	cmd := &cobra.Command{
		Use:   "parse <file.sdsl>",
		Short: "Print the syntax tree of a shader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := unit.request(cmd, args[0])
			if err != nil {
				return err
			}
			res := driver.Parse(cmd.Context(), req)
			if err := printDiagnostics(cmd, res.Bag, res.FileSet); err != nil {
				return err
			}
			if !res.OK {
				dumpTraceRing(cmd)
				return errFailed
			}
			return ast.Dump(cmd.OutOrStdout(), res.Builder, res.File)
		},
	}
	unit.register(cmd)
	return cmd
}
