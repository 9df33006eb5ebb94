package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandrolain/gobuilder/pkg/types"
)

var (
	colorError = lipgloss.Color("#EF4444")
	colorMuted = lipgloss.Color("#6B7280")
	colorCaret = lipgloss.Color("#F59E0B")
)

type diagnosticStyles struct {
	header lipgloss.Style
	gutter lipgloss.Style
	caret  lipgloss.Style
	plain  bool
}

func newDiagnosticStyles(w io.Writer, color bool) diagnosticStyles {
	r := lipgloss.NewRenderer(w)
	return diagnosticStyles{
		header: r.NewStyle().Bold(true).Foreground(colorError),
		gutter: r.NewStyle().Foreground(colorMuted),
		caret:  r.NewStyle().Bold(true).Foreground(colorCaret),
		plain:  !color,
	}
}

func (s diagnosticStyles) render(style lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return style.Render(text)
}

// renderDiagnostic writes err in the form
//
//	error[S0204]: expected identifier ('(')
//	 --> page.kt:1:5
//	  |
//	1 | fun (x) {}
//	  |     ^
//
// Errors without a source position print the first line only.
func renderDiagnostic(w io.Writer, file, source string, err error, color bool) {
	s := newDiagnosticStyles(w, color)

	var e *types.Error
	if !errors.As(err, &e) {
		fmt.Fprintln(w, s.render(s.header, "error")+": "+err.Error())
		return
	}

	msg := e.Message
	if e.Token != "" {
		msg += fmt.Sprintf(" ('%s')", e.Token)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	fmt.Fprintf(w, "%s: %s\n", s.render(s.header, "error["+string(e.Code)+"]"), msg)

	if e.Line == 0 || e.Start < 0 {
		return
	}

	lines := strings.Split(source, "\n")
	if e.Line > len(lines) {
		return
	}
	text := strings.TrimSuffix(lines[e.Line-1], "\r")
	num := fmt.Sprint(e.Line)
	pad := strings.Repeat(" ", len(num))

	fmt.Fprintf(w, "%s%s %s:%d:%d\n", pad, s.render(s.gutter, "-->"), file, e.Line, e.Column)
	fmt.Fprintf(w, "%s %s\n", pad, s.render(s.gutter, "|"))
	fmt.Fprintf(w, "%s %s %s\n", num, s.render(s.gutter, "|"), text)
	fmt.Fprintf(w, "%s %s %s\n", pad, s.render(s.gutter, "|"), s.render(s.caret, underline(text, e.Column, e.End-e.Start)))
}

// underline returns the caret line for width bytes starting at the 1-based
// column of text. Tabs before the column are kept so the carets line up.
func underline(text string, column, width int) string {
	start := min(max(column-1, 0), len(text))
	width = min(width, len(text)-start)
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	for _, r := range text[:start] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}
