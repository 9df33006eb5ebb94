// Package extwasm exposes the exported functions of a WebAssembly module as
// host functions of builder programs.
//
// Modules run on wazero with WASI preview1 available. Only functions whose
// parameters and results are numbers (i32, i64, f32, f64) are exposed:
// text arguments are parsed as decimal numbers and results are rendered
// back to text. After the call returns, the call body runs.
//
// # Example
//
//	mod, err := extwasm.Load(ctx, wasmBytes, extwasm.WithPrefix("Math."))
//	if err != nil {
//	    return err
//	}
//	defer mod.Close(ctx)
//	ev := evaluator.New(evaluator.WithFunctions(mod.Functions()...))
//	// fun f() { +Math.add(1 2) }
package extwasm

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/sandrolain/gobuilder/pkg/functions"
)

// Module is an instantiated WebAssembly module.
type Module struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	module   api.Module
	prefix   string
}

type loadOptions struct {
	name   string
	prefix string
	stdout io.Writer
	stderr io.Writer
}

// Option configures Load.
type Option func(*loadOptions)

// WithName sets the module instance name.
func WithName(name string) Option {
	return func(o *loadOptions) {
		o.name = name
	}
}

// WithPrefix is prepended to every exported name, so that "Math." turns
// the export "add" into a function called as Math.add(...).
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.prefix = prefix
	}
}

// WithStdout sets the writer receiving the module's WASI stdout.
func WithStdout(w io.Writer) Option {
	return func(o *loadOptions) {
		o.stdout = w
	}
}

// WithStderr sets the writer receiving the module's WASI stderr.
func WithStderr(w io.Writer) Option {
	return func(o *loadOptions) {
		o.stderr = w
	}
}

// Load compiles and instantiates wasm in a new runtime.
// The module's _initialize function, if exported, runs during Load; a WASI
// _start entry point is never run.
func Load(ctx context.Context, wasm []byte, opts ...Option) (*Module, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiating WASI: %w", err)
	}

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compiling module: %w", err)
	}

	cfg := wazero.NewModuleConfig().
		WithName(o.name).
		WithStartFunctions("_initialize")
	if o.stdout != nil {
		cfg = cfg.WithStdout(o.stdout)
	}
	if o.stderr != nil {
		cfg = cfg.WithStderr(o.stderr)
	}

	mod, err := r.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiating module: %w", err)
	}

	return &Module{
		runtime:  r,
		compiled: compiled,
		module:   mod,
		prefix:   o.prefix,
	}, nil
}

// Close releases the runtime and everything instantiated in it.
func (m *Module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

// Exports returns the names of the exported functions Functions exposes,
// without prefix, in sorted order.
func (m *Module) Exports() []string {
	var names []string
	for name, def := range m.compiled.ExportedFunctions() {
		if name == "_start" || name == "_initialize" || !numeric(def) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Functions returns a host function for every numeric export.
func (m *Module) Functions() []functions.Def {
	defs := m.compiled.ExportedFunctions()
	names := m.Exports()
	out := make([]functions.Def, 0, len(names))
	for _, name := range names {
		out = append(out, m.function(name, defs[name]))
	}
	return out
}

func (m *Module) function(export string, def api.FunctionDefinition) functions.Def {
	name := m.prefix + export
	params := def.ParamTypes()
	results := def.ResultTypes()

	return functions.Def{
		Name: name,
		Fn: func(ctx context.Context, args []string, body functions.Body) (string, error) {
			if len(args) != len(params) {
				return "", fmt.Errorf("%s: expected %d arguments, got %d", name, len(params), len(args))
			}
			stack := make([]uint64, len(params))
			for i, t := range params {
				v, err := encode(t, args[i])
				if err != nil {
					return "", fmt.Errorf("%s: argument %d: %w", name, i+1, err)
				}
				stack[i] = v
			}

			fn := m.module.ExportedFunction(export)
			if fn == nil {
				return "", fmt.Errorf("%s: export %q not found", name, export)
			}
			raw, err := fn.Call(ctx, stack...)
			if err != nil {
				return "", fmt.Errorf("%s: %w", name, err)
			}

			text := make([]string, len(raw))
			for i, v := range raw {
				text[i] = decode(results[i], v)
			}
			if err := body(ctx); err != nil {
				return "", err
			}
			return strings.Join(text, " "), nil
		},
	}
}

func numeric(def api.FunctionDefinition) bool {
	for _, types := range [][]api.ValueType{def.ParamTypes(), def.ResultTypes()} {
		for _, t := range types {
			switch t {
			case api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64:
			default:
				return false
			}
		}
	}
	return true
}

// encode converts decimal text to the stack representation of t.
func encode(t api.ValueType, s string) (uint64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	switch t {
	case api.ValueTypeI32:
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return 0, fmt.Errorf("%q is not a 32-bit integer", s)
		}
		return api.EncodeI32(int32(f)), nil
	case api.ValueTypeI64:
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("%q is not a 64-bit integer", s)
		}
		return api.EncodeI64(int64(f)), nil
	case api.ValueTypeF32:
		return api.EncodeF32(float32(f)), nil
	case api.ValueTypeF64:
		return api.EncodeF64(f), nil
	default:
		return 0, fmt.Errorf("unsupported parameter type %s", api.ValueTypeName(t))
	}
}

// decode renders a stack value of type t as decimal text.
func decode(t api.ValueType, v uint64) string {
	switch t {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(api.DecodeI32(v)), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(int64(v), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(api.DecodeF32(v)), 'f', -1, 32)
	default:
		return strconv.FormatFloat(api.DecodeF64(v), 'f', -1, 64)
	}
}
