// Package printer formats builder syntax trees back into source text.
//
// The output uses four-space indentation and one statement per line.
// Parsing the output of Format yields a tree equal to the input, apart
// from node positions.
package printer

import (
	"strconv"
	"strings"

	"github.com/sandrolain/gobuilder/pkg/types"
)

const indentUnit = "    "

// Option configures Format.
type Option func(*printer)

// WithEscapes writes strings with Quote, for sources parsed with string
// escapes enabled. Without it strings are written verbatim between quotes.
func WithEscapes() Option {
	return func(p *printer) {
		p.escapes = true
	}
}

type printer struct {
	b       strings.Builder
	escapes bool
}

// Format renders functions as source text.
func Format(fns []types.Function, opts ...Option) string {
	p := &printer{}
	for _, opt := range opts {
		opt(p)
	}
	for i, fn := range fns {
		if i > 0 && !(fns[i-1].Header.External && fn.Header.External) {
			p.b.WriteByte('\n')
		}
		p.writeFunction(fn)
	}
	return p.b.String()
}

// FormatProgram renders every function of prog.
func FormatProgram(prog *types.Program, opts ...Option) string {
	return Format(prog.Functions(), opts...)
}

func (p *printer) writeFunction(fn types.Function) {
	b := &p.b
	writeHeader(b, fn.Header)
	if fn.Header.External {
		b.WriteByte('\n')
		return
	}
	b.WriteByte(' ')
	p.writeBody(fn.Body, 0)
	b.WriteByte('\n')
}

func writeHeader(b *strings.Builder, h types.FunctionHeader) {
	if h.External {
		b.WriteString("external ")
	}
	b.WriteString("fun ")
	if h.Receiver != "" {
		b.WriteString(h.Receiver)
		b.WriteByte('.')
	}
	b.WriteString(h.Name)
	b.WriteByte('(')
	for i, arg := range h.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.Name)
		b.WriteString(": ")
		b.WriteString(arg.Type)
	}
	b.WriteByte(')')
	if h.ReturnType != "" {
		b.WriteString(": ")
		b.WriteString(h.ReturnType)
	}
}

// writeBody writes "{ ... }" with statements one level deeper than depth.
// An empty body is written as "{}".
func (p *printer) writeBody(body []types.Node, depth int) {
	b := &p.b
	if len(body) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{\n")
	for _, node := range body {
		writeIndent(b, depth+1)
		p.writeNode(node, depth+1)
		b.WriteByte('\n')
	}
	writeIndent(b, depth)
	b.WriteByte('}')
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentUnit)
	}
}

func (p *printer) writeNode(node types.Node, depth int) {
	b := &p.b
	switch n := node.(type) {
	case *types.Call:
		p.writeCall(n, depth)
	case *types.Assignment:
		b.WriteString(n.Name)
		b.WriteString(" = ")
		p.writeValue(n.Value, depth)
	case *types.UnaryOperator:
		b.WriteString(n.Operator)
		p.writeValue(n.Value, depth)
	}
}

func (p *printer) writeCall(c *types.Call, depth int) {
	b := &p.b
	if c.Receiver != "" {
		b.WriteString(c.Receiver)
		b.WriteByte('.')
	}
	b.WriteString(c.Name)
	// A receiver call needs "(" to be told apart from an enum value.
	if len(c.Parameters) > 0 || c.Receiver != "" {
		b.WriteByte('(')
		for i, param := range c.Parameters {
			if i > 0 {
				b.WriteByte(' ')
			}
			p.writeParameter(param, depth)
		}
		b.WriteByte(')')
	}
	if len(c.Children) > 0 {
		b.WriteByte(' ')
		p.writeBody(c.Children, depth)
	}
}

func (p *printer) writeParameter(param types.Parameter, depth int) {
	if named, ok := param.(types.NamedParameter); ok {
		p.b.WriteString(named.Name)
		p.b.WriteString(" = ")
	}
	p.writeValue(param.ParamValue(), depth)
}

func (p *printer) writeValue(v types.Value, depth int) {
	b := &p.b
	switch v := v.(type) {
	case types.StringValue:
		if p.escapes {
			b.WriteString(Quote(v.Content))
		} else {
			b.WriteByte('"')
			b.WriteString(v.Content)
			b.WriteByte('"')
		}
	case types.NumberValue:
		b.WriteString(FormatNumber(v.Number))
	case types.EnumValue:
		b.WriteString(v.Type)
		b.WriteByte('.')
		b.WriteString(v.Name)
	case types.FunctionValue:
		p.writeCall(v.Call, depth)
	}
}

// Quote returns s as a string literal using the escapes the lexer decodes
// under string escapes.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// FormatNumber renders n in the shortest decimal form the lexer accepts.
// Values below one are written with a bare leading dot. Other non-integers
// need fractions enabled to read back as one number.
// Negative numbers have no literal form and are written as their
// absolute value.
func FormatNumber(n float64) string {
	if n < 0 {
		n = -n
	}
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if n > 0 && n < 1 {
		return s[1:]
	}
	return s
}
