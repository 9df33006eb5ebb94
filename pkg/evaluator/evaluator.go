// Package evaluator runs builder programs.
//
// The evaluator walks the statements of a function and dispatches every
// call to a program function, a bound variable or a host function from a
// functions.Registry. Host functions produce the actual output; the
// evaluator only resolves names, binds arguments and hands each call the
// body of child statements to run.
//
// # Example
//
//	reg := functions.NewRegistry(exthtml.Functions(os.Stdout)...)
//	ev := evaluator.New(evaluator.WithRegistry(reg))
//	if err := ev.Run(ctx, prog, "page"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Resolution
//
// A call name is resolved in this order:
//   - a variable bound by an assignment or a function argument, when the
//     call has neither parameters nor children
//   - a non-external function of the program
//   - a host function of the registry
//
// Unresolved names fail with types.ErrUndefinedFunction unless
// WithIgnoreUnknown is set, in which case the call is skipped.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sandrolain/gobuilder/pkg/cache"
	"github.com/sandrolain/gobuilder/pkg/functions"
	"github.com/sandrolain/gobuilder/pkg/parser"
	"github.com/sandrolain/gobuilder/pkg/types"
)

// Default limits.
const (
	DefaultMaxDepth = 1000
	DefaultTimeout  = 30 * time.Second
)

// Evaluator runs builder programs against a host function registry.
//
// An Evaluator is safe for concurrent use as long as the registered host
// functions are.
type Evaluator struct {
	opts     EvalOptions
	logger   *slog.Logger
	cache    *cache.Cache // non-nil when Caching is enabled
	registry *functions.Registry
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables caching of compiled programs by source text.
	Caching bool
	// CacheSize sets the maximum number of cached programs.
	// Only used when Caching is true and no explicit Cache is provided.
	CacheSize int
	// Cache is a custom program cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// MaxDepth limits nested program function calls. Zero disables the limit.
	MaxDepth int
	// Timeout bounds a single Run. Zero disables the timeout.
	Timeout time.Duration
	// IgnoreUnknown skips calls whose name cannot be resolved instead of
	// failing.
	IgnoreUnknown bool
	// Logger for structured logging.
	Logger *slog.Logger
	// Registry holds the host functions. A new empty registry is used when nil.
	Registry *functions.Registry
	// Functions are added to the registry when the evaluator is created.
	Functions []functions.Def
	// CompileOptions are passed to the parser by EvalSource and Compile.
	CompileOptions []parser.CompileOption
}

// New creates a new Evaluator.
// It panics if Functions contains a name the registry already holds.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: DefaultMaxDepth,
		Timeout:  DefaultTimeout,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	reg := options.Registry
	if reg == nil {
		reg = functions.NewRegistry()
	}
	for _, def := range options.Functions {
		reg.MustRegister(def)
	}

	return &Evaluator{
		opts:     options,
		logger:   options.Logger,
		cache:    c,
		registry: reg,
	}
}

// Cache returns the program cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Registry returns the host function registry.
func (e *Evaluator) Registry() *functions.Registry {
	return e.registry
}

// Compile parses source, going through the cache when caching is enabled.
func (e *Evaluator) Compile(source string) (*types.Program, error) {
	compile := func() (*types.Program, error) {
		return parser.Compile(source, e.opts.CompileOptions...)
	}
	if e.cache == nil {
		return compile()
	}
	return e.cache.GetOrCompile(source, compile)
}

// EvalSource compiles source and runs the function called name.
func (e *Evaluator) EvalSource(ctx context.Context, source, name string) error {
	prog, err := e.Compile(source)
	if err != nil {
		return err
	}
	return e.Run(ctx, prog, name)
}

// Run evaluates the function called name. An empty name selects the
// program's entry function, the first one that is not external.
func (e *Evaluator) Run(ctx context.Context, prog *types.Program, name string) error {
	if prog == nil {
		return fmt.Errorf("invalid program")
	}

	fn, err := selectFunction(prog, name)
	if err != nil {
		return err
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	r := &run{
		ev:      e,
		prog:    prog,
		program: indexFunctions(prog),
		logger:  e.logger.With("run_id", uuid.NewString()),
	}
	r.logger.DebugContext(ctx, "run started", "function", fn.Header.Name)

	err = r.invoke(ctx, fn, nil, fn.Header.Pos)
	if err != nil {
		r.logger.DebugContext(ctx, "run failed", "function", fn.Header.Name, "error", err)
		return err
	}
	r.logger.DebugContext(ctx, "run finished", "function", fn.Header.Name)
	return nil
}

// selectFunction finds the function Run starts from.
func selectFunction(prog *types.Program, name string) (*types.Function, error) {
	var (
		fn *types.Function
		ok bool
	)
	if name == "" {
		fn, ok = prog.Entry()
		if !ok {
			return nil, types.NewError(types.ErrUnknownEntry, "Program has no function with a body", -1, -1)
		}
		return fn, nil
	}

	if fn, ok = prog.Definition(name); ok {
		return fn, nil
	}
	fn, ok = prog.Function(name)
	if !ok {
		return nil, types.NewError(types.ErrUnknownEntry,
			fmt.Sprintf("Function '%s' is not defined", name), -1, -1)
	}
	return nil, types.NewError(types.ErrExternalFunction,
		fmt.Sprintf("Function '%s' is external and has no body", name),
		fn.Header.Pos.Start, fn.Header.Pos.End).Locate(prog.Source())
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables program caching.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached programs.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external program cache.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum number of nested program function calls.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithIgnoreUnknown makes unresolved calls no-ops.
func WithIgnoreUnknown(ignore bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.IgnoreUnknown = ignore
	}
}

// WithRegistry sets the host function registry.
func WithRegistry(reg *functions.Registry) EvalOption {
	return func(opts *EvalOptions) {
		opts.Registry = reg
	}
}

// WithFunctions registers host functions.
//
// Example:
//
//	evaluator.New(evaluator.WithFunctions(functions.Def{
//	    Name: "+",
//	    Fn: func(ctx context.Context, args []string, _ functions.Body) (string, error) {
//	        fmt.Println(args[0])
//	        return "", nil
//	    },
//	}))
func WithFunctions(defs ...functions.Def) EvalOption {
	return func(opts *EvalOptions) {
		opts.Functions = append(opts.Functions, defs...)
	}
}

// WithCompileOptions sets the parser options used by EvalSource.
func WithCompileOptions(copts ...parser.CompileOption) EvalOption {
	return func(opts *EvalOptions) {
		opts.CompileOptions = append(opts.CompileOptions, copts...)
	}
}
