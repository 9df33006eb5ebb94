// Package functions provides the table of host functions a builder program
// can call.
//
// Calls in a program that do not name a program function are resolved
// against a Registry. A host function receives its parameters as text and
// a Body that runs the call's child statements; what a function does with
// the body (run it once, wrap it in markup, skip it) is up to the function.
//
// # Example
//
//	reg := functions.NewRegistry()
//	reg.MustRegister(functions.Def{
//	    Name: "div",
//	    Fn: func(ctx context.Context, args []string, body functions.Body) (string, error) {
//	        fmt.Fprintln(w, "<div>")
//	        if err := body(ctx); err != nil {
//	            return "", err
//	        }
//	        fmt.Fprintln(w, "</div>")
//	        return "", nil
//	    },
//	})
package functions

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Body runs the child statements of a call.
type Body func(ctx context.Context) error

// NoBody is a Body with no statements.
func NoBody(context.Context) error { return nil }

// Func is the signature of host functions.
// args holds the resolved parameter values in order. The returned string
// is the value of the call when it is used as a parameter of another call.
type Func func(ctx context.Context, args []string, body Body) (string, error)

// Def describes a host function together with the name programs call it by.
type Def struct {
	// Name is the call name, or "+" / "-" for the unary operators.
	Name string
	// Fn is the implementation.
	Fn Func
}

// Registry maps names to host functions.
//
// Registration is expected to happen before evaluation starts; lookups are
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates a registry holding defs.
// It panics if two definitions share a name.
func NewRegistry(defs ...Def) *Registry {
	r := &Registry{funcs: make(map[string]Func, len(defs))}
	for _, d := range defs {
		r.MustRegister(d)
	}
	return r
}

// Register adds a function. It fails on an empty name, a nil Fn or a name
// that is already taken.
func (r *Registry) Register(def Def) error {
	if def.Name == "" {
		return fmt.Errorf("function name must not be empty")
	}
	if def.Fn == nil {
		return fmt.Errorf("function %q has no implementation", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[def.Name]; exists {
		return fmt.Errorf("function %q already registered", def.Name)
	}
	r.funcs[def.Name] = def.Fn
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(def Def) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Merge copies every function of other into r, replacing functions that
// share a name.
func (r *Registry) Merge(other *Registry) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, fn := range other.funcs {
		r.funcs[name] = fn
	}
}
