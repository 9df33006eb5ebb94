package extwasm_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/ext/extwasm"
	"github.com/sandrolain/gobuilder/pkg/functions"
)

// arithWasm exports
//
//	add(f64, f64) -> f64
//	answer() -> i32      ; 42
//	dec(i64) -> i64      ; x - 1
//	half(f32) -> f32     ; x * 0.5
var arithWasm = []byte{
	// header
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type
	0x01, 0x15, 0x04, 0x60, 0x02, 0x7c, 0x7c, 0x01, 0x7c, 0x60, 0x00, 0x01, 0x7f, 0x60, 0x01, 0x7e, 0x01, 0x7e, 0x60, 0x01, 0x7d, 0x01, 0x7d,
	// function
	0x03, 0x05, 0x04, 0x00, 0x01, 0x02, 0x03,
	// export
	0x07, 0x1d, 0x04, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00, 0x06, 0x61, 0x6e, 0x73, 0x77, 0x65, 0x72, 0x00, 0x01, 0x03, 0x64, 0x65, 0x63, 0x00, 0x02, 0x04, 0x68, 0x61, 0x6c, 0x66, 0x00, 0x03,
	// code
	0x0a, 0x21, 0x04, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0xa0, 0x0b, 0x04, 0x00, 0x41, 0x2a, 0x0b, 0x07, 0x00, 0x20, 0x00, 0x42, 0x01, 0x7d, 0x0b, 0x0a, 0x00, 0x20, 0x00, 0x43, 0x00, 0x00, 0x00, 0x3f, 0x94, 0x0b,
}

func load(t *testing.T, opts ...extwasm.Option) *extwasm.Module {
	t.Helper()
	ctx := context.Background()
	mod, err := extwasm.Load(ctx, arithWasm, opts...)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { mod.Close(ctx) })
	return mod
}

func call(t *testing.T, mod *extwasm.Module, name string, args ...string) (string, error) {
	t.Helper()
	for _, def := range mod.Functions() {
		if def.Name == name {
			return def.Fn(context.Background(), args, functions.NoBody)
		}
	}
	t.Fatalf("function %q not exposed", name)
	return "", nil
}

func TestLoadExports(t *testing.T) {
	mod := load(t)
	want := []string{"add", "answer", "dec", "half"}
	if got := mod.Exports(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Exports() = %v, want %v", got, want)
	}
}

func TestCallNumericTypes(t *testing.T) {
	mod := load(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"add", []string{"1.5", "2"}, "3.5"},
		{"answer", nil, "42"},
		{"dec", []string{"10"}, "9"},
		{"half", []string{"3"}, "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call(t, mod, tt.name, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallArgumentErrors(t *testing.T) {
	mod := load(t)
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"add", []string{"1"}, "expected 2 arguments"},
		{"add", []string{"1", "x"}, "not a number"},
		{"dec", []string{"1.5"}, "not a 64-bit integer"},
	}
	for _, tt := range tests {
		_, err := call(t, mod, tt.name, tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("%s%v: expected error mentioning %q, got %v", tt.name, tt.args, tt.msg, err)
		}
	}
}

func TestCallRunsBody(t *testing.T) {
	mod := load(t)
	ran := false
	for _, def := range mod.Functions() {
		if def.Name != "answer" {
			continue
		}
		_, err := def.Fn(context.Background(), nil, func(context.Context) error {
			ran = true
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if !ran {
		t.Error("expected the body to run after the call")
	}
}

func TestPrefixedFunctionsInProgram(t *testing.T) {
	mod := load(t, extwasm.WithPrefix("Math."), extwasm.WithName("arith"))

	var out []string
	emit := functions.Def{
		Name: "+",
		Fn: func(_ context.Context, args []string, _ functions.Body) (string, error) {
			out = append(out, args...)
			return "", nil
		},
	}
	ev := evaluator.New(evaluator.WithFunctions(append(mod.Functions(), emit)...))
	src := `fun f() { +Math.add(Math.answer() .5) +Math.dec(1) }`
	if err := ev.EvalSource(context.Background(), src, "f"); err != nil {
		t.Fatal(err)
	}
	if want := []string{"42.5", "0"}; !reflect.DeepEqual(out, want) {
		t.Errorf("got %v, want %v", out, want)
	}
}

func TestLoadInvalidModule(t *testing.T) {
	if _, err := extwasm.Load(context.Background(), []byte("not wasm")); err == nil {
		t.Fatal("expected compile error")
	}
}
