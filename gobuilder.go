// Package gobuilder parses and runs programs written in a small declarative
// builder language.
//
// A program is a list of function definitions whose bodies nest calls,
// assignments and unary "+"/"-" statements:
//
//	external fun html(func: Unit.() -> Unit)
//
//	fun page(title: String) {
//	    html {
//	        body { +title }
//	    }
//	}
//
// # Quick Start
//
//	// Parse only
//	prog, err := gobuilder.Compile(src)
//
//	// Parse and run the first non-external function
//	err := gobuilder.Run(ctx, src, "", ext.WithHTML(os.Stdout))
//
// Calls are resolved against host functions registered with the evaluator
// (see pkg/functions and pkg/ext). Parse errors are *types.Error values
// carrying a code, the byte span and the line and column of the failure.
//
// # More Information
//
//   - Parser: github.com/sandrolain/gobuilder/pkg/parser
//   - Evaluator: github.com/sandrolain/gobuilder/pkg/evaluator
//   - Functions: github.com/sandrolain/gobuilder/pkg/functions
//   - Printer: github.com/sandrolain/gobuilder/pkg/printer
//   - Types: github.com/sandrolain/gobuilder/pkg/types
package gobuilder

import (
	"context"
	"fmt"

	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/printer"
	"github.com/sandrolain/gobuilder/pkg/types"
)

// Version returns the current version of gobuilder.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses source into a Program.
//
// The program can be run any number of times. It is safe for concurrent use.
func Compile(source string, opts ...parser.CompileOption) (*types.Program, error) {
	return parser.Compile(source, opts...)
}

// MustCompile is like Compile but panics if the source cannot be parsed.
// It simplifies safe initialization of global variables.
func MustCompile(source string) *types.Program {
	prog, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("gobuilder: Compile(%q): %v", source, err))
	}
	return prog
}

// Run parses source and evaluates the function called name, or the first
// non-external function when name is empty.
//
// For repeated runs of the same source, build an evaluator once with
// evaluator.New and use its EvalSource or Run methods.
func Run(ctx context.Context, source, name string, opts ...evaluator.EvalOption) error {
	return evaluator.New(opts...).EvalSource(ctx, source, name)
}

// Format parses source and returns it in canonical form. Strings are
// written with escapes when opts enable them.
func Format(source string, opts ...parser.CompileOption) (string, error) {
	prog, err := Compile(source, opts...)
	if err != nil {
		return "", err
	}
	var copts parser.CompileOptions
	for _, opt := range opts {
		opt(&copts)
	}
	var popts []printer.Option
	if copts.StringEscapes {
		popts = append(popts, printer.WithEscapes())
	}
	return printer.FormatProgram(prog, popts...), nil
}
