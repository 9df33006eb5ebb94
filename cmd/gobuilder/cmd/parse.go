package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/printer"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the syntax tree of a program",
	Long: `Parses FILE ("-" for stdin) and prints the syntax tree.

Without --json the tree is printed back as canonical source, which makes
the grouping chosen by the parser visible.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the tree as JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	prog, err := parser.Compile(source, cfg.CompileOptions()...)
	if err != nil {
		return report(cmd, args[0], source, err)
	}
	logger.Debug("parsed", "file", args[0], "functions", len(prog.Functions()))

	if !parseJSON {
		fmt.Fprint(cmd.OutOrStdout(), printer.FormatProgram(prog, cfg.PrinterOptions()...))
		return nil
	}

	data, err := json.MarshalIndent(prog.Functions(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
