package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gobuilder/pkg/config"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
)

// errReported marks failures whose diagnostic was already printed.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "gobuilder",
	Short: "Builder DSL toolchain",
	Long: `gobuilder reads programs written in the builder DSL:

  fun page(title: String) {
      html {
          body { +title }
      }
  }

Commands:
  parse    - print the syntax tree
  fmt      - print or rewrite canonical source
  run      - evaluate a program, writing markup to stdout
  repl     - interactive prompt`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the command line.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $GOBUILDER_CONFIG or ./gobuilder.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	logger.Debug("configuration loaded", "file", cfgFile, "max_depth", cfg.MaxDepth, "timeout", cfg.Timeout.Duration)
	return nil
}

// readSource reads the named file, or stdin for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// report prints err as a diagnostic on stderr and returns errReported.
func report(cmd *cobra.Command, file, source string, err error) error {
	renderDiagnostic(cmd.ErrOrStderr(), file, source, err, cfg.ColorEnabled())
	return errReported
}
