package gobuilder_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sandrolain/gobuilder"
	"github.com/sandrolain/gobuilder/pkg/ext"
	"github.com/sandrolain/gobuilder/pkg/ext/exthtml"
	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/types"
)

func TestCompile(t *testing.T) {
	prog, err := gobuilder.Compile(exthtml.Prelude + `
fun page(title: String) {
    html { body { +title } }
}`)
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := prog.Entry()
	if !ok || entry.Header.Name != "page" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestCompileError(t *testing.T) {
	_, err := gobuilder.Compile(`fun f() { "x" }`)
	var perr *types.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *types.Error, got %T", err)
	}
	if perr.Code != types.ErrExpectedStatement || perr.Line != 1 || perr.Column != 11 {
		t.Errorf("unexpected error %v", perr)
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil || !strings.Contains(r.(string), "gobuilder: Compile") {
			t.Errorf("unexpected recover value %v", r)
		}
	}()
	gobuilder.MustCompile("fun")
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	src := `fun page() { html { +concat("a" "b") } }`
	if err := gobuilder.Run(context.Background(), src, "", ext.WithAll(), ext.WithHTML(&out)); err != nil {
		t.Fatal(err)
	}
	if want := "<html>\n  ab\n</html>\n"; out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestFormat(t *testing.T) {
	got, err := gobuilder.Format(`fun f(){x=1}`)
	if err != nil {
		t.Fatal(err)
	}
	if want := "fun f() {\n    x = 1\n}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatStrings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []parser.CompileOption
		want string
	}{
		{"raw backslash", `fun f(){+"C:\"}`, nil, "fun f() {\n    +\"C:\\\"\n}\n"},
		{"escaped quote", `fun f(){+"a\"b"}`, []parser.CompileOption{parser.WithStringEscapes(true)}, "fun f() {\n    +\"a\\\"b\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gobuilder.Format(tt.src, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	if !strings.HasPrefix(gobuilder.Version(), "v") {
		t.Errorf("unexpected version %q", gobuilder.Version())
	}
}
