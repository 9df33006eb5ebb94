package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sandrolain/gobuilder/pkg/ext/exthtml"
	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/printer"
	"github.com/sandrolain/gobuilder/pkg/types"
)

const (
	promptMain = "gb> "
	promptCont = "... "
	replFile   = "<repl>"
)

var replPrelude bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive prompt",
	Long: `Starts an interactive prompt. Each input is one or more function
definitions; the first non-external function of the input runs right away
and definitions stay available to later inputs. Redefining a function
replaces it.

Commands:
  :list   print the session
  :reset  forget every definition
  :quit   leave`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().BoolVar(&replPrelude, "prelude", true, "declare the markup functions as external")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	ev, closeModules, err := newEvaluator(ctx, out)
	if err != nil {
		return err
	}
	defer closeModules()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.History); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if cfg.History == "" {
			return
		}
		if f, err := os.Create(cfg.History); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := &session{}
	if replPrelude {
		s.add(exthtml.Prelude, nil)
	}

	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return nil
			case ":list":
				fmt.Fprint(out, s.format())
			case ":reset":
				s.reset()
				if replPrelude {
					s.add(exthtml.Prelude, nil)
				}
			default:
				fmt.Fprintln(cmd.ErrOrStderr(), "unknown command. Type :quit to exit.")
			}
			continue
		}

		prog, err := parser.Compile(input, cfg.CompileOptions()...)
		if err != nil {
			renderDiagnostic(cmd.ErrOrStderr(), replFile, input, err, cfg.ColorEnabled())
			continue
		}
		s.add(input, prog)

		entry, ok := prog.Entry()
		if !ok {
			continue
		}
		full, err := ev.Compile(s.source())
		if err != nil {
			renderDiagnostic(cmd.ErrOrStderr(), replFile, s.source(), err, cfg.ColorEnabled())
			continue
		}
		if err := ev.Run(ctx, full, entry.Header.Name); err != nil {
			renderDiagnostic(cmd.ErrOrStderr(), replFile, s.source(), err, cfg.ColorEnabled())
		}
	}
}

// readInput reads one input, prompting for more lines while the text so far
// ends too early to be a program.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.Parse(src); types.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// session holds the definitions entered so far, one chunk per input.
type session struct {
	chunks []chunk
}

type chunk struct {
	source string
	names  []string
}

// add appends src. Earlier chunks defining one of the non-external
// functions of prog are dropped, so the new definition wins.
func (s *session) add(src string, prog *types.Program) {
	var names []string
	if prog != nil {
		for _, fn := range prog.Functions() {
			if !fn.Header.External {
				names = append(names, fn.Header.Name)
			}
		}
	}

	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if !overlaps(c.names, names) {
			kept = append(kept, c)
		}
	}
	s.chunks = append(kept, chunk{source: src, names: names})
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (s *session) reset() {
	s.chunks = nil
}

// source returns the session as one program text.
func (s *session) source() string {
	parts := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		parts[i] = c.source
	}
	return strings.Join(parts, "\n")
}

func (s *session) format() string {
	prog, err := parser.Compile(s.source(), cfg.CompileOptions()...)
	if err != nil {
		return s.source() + "\n"
	}
	return printer.FormatProgram(prog, cfg.PrinterOptions()...)
}
