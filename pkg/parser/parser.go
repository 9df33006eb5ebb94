// Package parser implements the front end of the builder language: a lexer
// and a backtracking recursive descent parser producing the syntax tree
// defined in package types.
//
// # Architecture
//
// The parser consists of three components:
//   - Lexer: tokenizes the whole source up front; lexical errors are fatal
//   - Cursor: a position over the tokens with a snapshot/restore primitive (Try)
//   - Parser: grammar rules consuming the Cursor
//
// Optional grammar fragments (the external and operator modifiers, receiver
// prefixes, the return type clause) are parsed through Try; every other
// failure aborts the parse. No partial tree is returned on error.
//
// # Example
//
//	prog, err := parser.Parse(`fun page() { html { +"hi" } }`)
//	if err != nil {
//	    var perr *types.Error
//	    if errors.As(err, &perr) {
//	        fmt.Printf("error at %d:%d\n", perr.Line, perr.Column)
//	    }
//	    return
//	}
//	for _, fn := range prog.Functions() {
//	    fmt.Println(fn.Header.Name)
//	}
package parser

import (
	"github.com/sandrolain/gobuilder/pkg/types"
)

// DefaultMaxDepth is the default nesting limit for bodies and nested calls.
const DefaultMaxDepth = 256

// Parse parses builder source text and returns the compiled Program.
//
// If parsing fails, it returns a *types.Error located against the source:
// message, 1-based line and column, and the offending text.
func Parse(source string) (*types.Program, error) {
	p := NewParser(source)
	return p.Parse()
}

// Compile is like Parse but accepts options.
func Compile(source string, opts ...CompileOption) (*types.Program, error) {
	p := NewParser(source, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits nesting of bodies and nested call values to prevent
	// stack overflow. Zero or negative disables the limit.
	MaxDepth int
	// MaxInputLength rejects sources longer than this many bytes.
	// Zero disables the check.
	MaxInputLength int
	// StringEscapes decodes \", \\, \n and \t in string literals.
	StringEscapes bool
	// Fractions scans "1.5" as one number instead of 1 and .5.
	Fractions bool
}

// lexerOptions returns the lexer settings matching opts.
func (opts CompileOptions) lexerOptions() []LexerOption {
	var out []LexerOption
	if opts.StringEscapes {
		out = append(out, LexStringEscapes())
	}
	if opts.Fractions {
		out = append(out, LexFractions())
	}
	return out
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

// WithMaxInputLength sets the maximum accepted source length in bytes.
func WithMaxInputLength(n int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxInputLength = n
	}
}

// WithStringEscapes enables backslash escapes in string literals.
func WithStringEscapes(on bool) CompileOption {
	return func(opts *CompileOptions) {
		opts.StringEscapes = on
	}
}

// WithFractions enables digits.digits number literals.
func WithFractions(on bool) CompileOption {
	return func(opts *CompileOptions) {
		opts.Fractions = on
	}
}
