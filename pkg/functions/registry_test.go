package functions_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/sandrolain/gobuilder/pkg/functions"
)

func echo(_ context.Context, args []string, _ functions.Body) (string, error) {
	return strings.Join(args, ","), nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := functions.NewRegistry(functions.Def{Name: "echo", Fn: echo})

	fn, ok := r.Lookup("echo")
	if !ok {
		t.Fatal("expected echo to be registered")
	}
	got, err := fn(context.Background(), []string{"a", "b"}, functions.NoBody)
	if err != nil || got != "a,b" {
		t.Fatalf("echo = %q, %v", got, err)
	}

	if _, ok := r.Lookup("missing"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestRegistryRegisterErrors(t *testing.T) {
	r := functions.NewRegistry()
	tests := []struct {
		name string
		def  functions.Def
	}{
		{"empty name", functions.Def{Fn: echo}},
		{"nil fn", functions.Def{Name: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.def); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if err := r.Register(functions.Def{Name: "x", Fn: echo}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(functions.Def{Name: "x", Fn: echo}); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate")
		}
	}()
	functions.NewRegistry(
		functions.Def{Name: "+", Fn: echo},
		functions.Def{Name: "+", Fn: echo},
	)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := functions.NewRegistry(
		functions.Def{Name: "div", Fn: echo},
		functions.Def{Name: "+", Fn: echo},
		functions.Def{Name: "a", Fn: echo},
	)
	want := []string{"+", "a", "div"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d", r.Len())
	}
}

func TestRegistryMerge(t *testing.T) {
	replaced := func(context.Context, []string, functions.Body) (string, error) {
		return "replaced", nil
	}
	r := functions.NewRegistry(functions.Def{Name: "a", Fn: echo})
	other := functions.NewRegistry(
		functions.Def{Name: "a", Fn: replaced},
		functions.Def{Name: "b", Fn: echo},
	)
	r.Merge(other)
	r.Merge(nil)
	r.Merge(r)

	fn, _ := r.Lookup("a")
	if got, _ := fn(context.Background(), nil, functions.NoBody); got != "replaced" {
		t.Fatalf("expected merged function to win, got %q", got)
	}
	if _, ok := r.Lookup("b"); !ok {
		t.Fatal("expected b after merge")
	}
}
