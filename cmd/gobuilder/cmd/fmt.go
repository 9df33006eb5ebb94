package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/printer"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE...",
	Short: "Print or rewrite programs in canonical form",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write the result back to the file")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	failed := false
	for _, path := range args {
		if err := formatFile(cmd, path); err != nil {
			if !errors.Is(err, errReported) {
				return err
			}
			failed = true
		}
	}
	if failed {
		return errReported
	}
	return nil
}

func formatFile(cmd *cobra.Command, path string) error {
	source, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	prog, err := parser.Compile(source, cfg.CompileOptions()...)
	if err != nil {
		return report(cmd, path, source, err)
	}
	out := printer.FormatProgram(prog, cfg.PrinterOptions()...)

	if !fmtWrite || path == "-" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	if out == source {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("formatted", "file", path)
	return nil
}
