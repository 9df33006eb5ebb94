package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/ext"
	"github.com/sandrolain/gobuilder/pkg/ext/extwasm"
)

var runEntry string

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Evaluate a program",
	Long: `Evaluates FILE ("-" for stdin) and writes the markup its calls produce
to stdout.

The html, body, div, a, "+" and "-" functions and the value functions
(upper, concat, sum, uuid, ...) are always available. WebAssembly modules
listed in the configuration add their numeric exports.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runEntry, "entry", "e", "", "function to evaluate (default: config entry, then the first function)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ev, closeModules, err := newEvaluator(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeModules()

	entry := runEntry
	if entry == "" {
		entry = cfg.Entry
	}
	if err := ev.EvalSource(ctx, source, entry); err != nil {
		return report(cmd, args[0], source, err)
	}
	return nil
}

// newEvaluator builds an evaluator writing markup to out, with the
// configured WebAssembly modules loaded. The returned func closes them.
func newEvaluator(ctx context.Context, out io.Writer) (*evaluator.Evaluator, func(), error) {
	reg := ext.Registry(out)

	var modules []*extwasm.Module
	closeAll := func() {
		for _, m := range modules {
			_ = m.Close(ctx)
		}
	}

	for _, wm := range cfg.Modules() {
		wasm, err := os.ReadFile(wm.Path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to read wasm module: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(wm.Path), filepath.Ext(wm.Path))
		mod, err := extwasm.Load(ctx, wasm,
			extwasm.WithName(name),
			extwasm.WithPrefix(wm.Prefix),
			extwasm.WithStdout(out),
			extwasm.WithStderr(os.Stderr),
		)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("%s: %w", wm.Path, err)
		}
		modules = append(modules, mod)

		for _, def := range mod.Functions() {
			if err := reg.Register(def); err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("%s: %w", wm.Path, err)
			}
		}
		logger.Debug("wasm module loaded", "path", wm.Path, "prefix", wm.Prefix, "exports", len(mod.Exports()))
	}

	opts := append(cfg.EvalOptions(),
		evaluator.WithRegistry(reg),
		evaluator.WithLogger(logger),
	)
	return evaluator.New(opts...), closeAll, nil
}
