// Package exthtml provides host functions that turn a builder program into
// indented HTML markup.
//
// Every tag function writes its opening tag, runs the call body one level
// deeper and writes the closing tag. The unary "+" writes escaped text and
// "-" writes a comment.
//
// # Example
//
//	src := exthtml.Prelude + `
//	fun page() {
//	    html {
//	        body {
//	            a("https://example.com") { +"home" }
//	        }
//	    }
//	}`
//	ev := evaluator.New(evaluator.WithFunctions(exthtml.Functions(os.Stdout)...))
//	err := ev.EvalSource(ctx, src, "page")
package exthtml

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/sandrolain/gobuilder/pkg/ext/extutil"
	"github.com/sandrolain/gobuilder/pkg/functions"
)

// Prelude declares the functions registered by Functions, for programs
// that want their host interface spelled out.
const Prelude = `external fun html(func: Unit.() -> Unit)
external fun Unit.head(func: Unit.() -> Unit)
external fun Unit.title(func: Unit.() -> Unit)
external fun Unit.body(func: Unit.() -> Unit)
external fun Unit.div(class: String, func: Unit.() -> Unit)
external fun Unit.span(class: String, func: Unit.() -> Unit)
external fun Unit.p(class: String, func: Unit.() -> Unit)
external fun Unit.h1(class: String, func: Unit.() -> Unit)
external fun Unit.h2(class: String, func: Unit.() -> Unit)
external fun Unit.ul(class: String, func: Unit.() -> Unit)
external fun Unit.li(class: String, func: Unit.() -> Unit)
external fun Unit.a(link: String, func: Unit.() -> Unit)
external fun Unit.br()
`

const indentUnit = "  "

// containers are tags whose optional arguments form the class attribute.
var containers = []string{"div", "span", "p", "h1", "h2", "ul", "li"}

// Functions returns the markup functions writing to w.
// The returned functions share one indentation state and must be used by
// a single run at a time.
func Functions(w io.Writer) []functions.Def {
	m := &markup{w: w}
	defs := []functions.Def{
		m.tag("html", noAttributes),
		m.tag("head", noAttributes),
		m.tag("title", noAttributes),
		m.tag("body", noAttributes),
		m.tag("a", linkAttributes),
		m.void("br"),
		{Name: "+", Fn: m.text},
		{Name: "-", Fn: m.comment},
	}
	for _, name := range containers {
		defs = append(defs, m.tag(name, classAttributes))
	}
	return defs
}

// markup writes indented lines to w.
type markup struct {
	w     io.Writer
	depth int
}

func (m *markup) line(s string) error {
	_, err := fmt.Fprintf(m.w, "%s%s\n", strings.Repeat(indentUnit, m.depth), s)
	return err
}

// attributes renders the attribute list of a tag from its arguments.
type attributes func(name string, args []string) (string, error)

func noAttributes(name string, args []string) (string, error) {
	return "", extutil.Arity(name, args, 0, 0)
}

func classAttributes(name string, args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	return fmt.Sprintf(` class="%s"`, html.EscapeString(strings.Join(args, " "))), nil
}

func linkAttributes(name string, args []string) (string, error) {
	if err := extutil.Arity(name, args, 1, 2); err != nil {
		return "", err
	}
	attrs := fmt.Sprintf(` href="%s"`, html.EscapeString(args[0]))
	if len(args) == 2 {
		attrs += fmt.Sprintf(` target="%s"`, html.EscapeString(targetName(args[1])))
	}
	return attrs, nil
}

// targetName maps an enum value such as "Target.blank" to "_blank".
func targetName(v string) string {
	if i := strings.LastIndexByte(v, '.'); i >= 0 {
		return "_" + v[i+1:]
	}
	return v
}

func (m *markup) tag(name string, attrs attributes) functions.Def {
	return functions.Def{
		Name: name,
		Fn: func(ctx context.Context, args []string, body functions.Body) (string, error) {
			a, err := attrs(name, args)
			if err != nil {
				return "", err
			}
			if err := m.line("<" + name + a + ">"); err != nil {
				return "", err
			}
			m.depth++
			err = body(ctx)
			m.depth--
			if err != nil {
				return "", err
			}
			return "", m.line("</" + name + ">")
		},
	}
}

func (m *markup) void(name string) functions.Def {
	return functions.Def{
		Name: name,
		Fn: func(_ context.Context, args []string, _ functions.Body) (string, error) {
			if err := extutil.Arity(name, args, 0, 0); err != nil {
				return "", err
			}
			return "", m.line("<" + name + ">")
		},
	}
}

func (m *markup) text(_ context.Context, args []string, _ functions.Body) (string, error) {
	return "", m.line(html.EscapeString(strings.Join(args, "")))
}

func (m *markup) comment(_ context.Context, args []string, _ functions.Body) (string, error) {
	text := strings.ReplaceAll(strings.Join(args, ""), "--", "- -")
	return "", m.line("<!-- " + text + " -->")
}
