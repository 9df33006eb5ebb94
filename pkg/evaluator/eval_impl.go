package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sandrolain/gobuilder/pkg/functions"
	"github.com/sandrolain/gobuilder/pkg/types"
)

// run is the state of a single Run.
type run struct {
	ev      *Evaluator
	prog    *types.Program
	program map[string]*types.Function
	logger  *slog.Logger
	depth   int
}

// indexFunctions maps names to the first non-external function declaring
// them.
func indexFunctions(prog *types.Program) map[string]*types.Function {
	fns := prog.Functions()
	index := make(map[string]*types.Function, len(fns))
	for i := range fns {
		fn := &fns[i]
		if fn.Header.External {
			continue
		}
		if _, seen := index[fn.Header.Name]; !seen {
			index[fn.Header.Name] = fn
		}
	}
	return index
}

// invoke runs the body of a program function in a fresh scope holding its
// arguments. Arguments are bound by position; missing ones stay unbound
// and extra ones are dropped.
func (r *run) invoke(ctx context.Context, fn *types.Function, args []string, at types.Span) error {
	if limit := r.ev.opts.MaxDepth; limit > 0 && r.depth >= limit {
		return r.errorAt(types.ErrStackOverflow, at,
			fmt.Sprintf("Maximum call depth %d exceeded in '%s'", limit, fn.Header.Name))
	}
	r.depth++
	defer func() { r.depth-- }()

	scope := NewScope()
	for i, arg := range fn.Header.Arguments {
		if i >= len(args) {
			break
		}
		scope.Set(arg.Name, args[i])
	}
	return r.execBody(ctx, fn.Body, scope)
}

// execBody runs statements in order, stopping at the first error.
func (r *run) execBody(ctx context.Context, body []types.Node, scope *Scope) error {
	for _, node := range body {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.execStatement(ctx, node, scope); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) execStatement(ctx context.Context, node types.Node, scope *Scope) error {
	switch n := node.(type) {
	case *types.Call:
		_, err := r.evalCall(ctx, n, scope)
		return err
	case *types.Assignment:
		value, err := r.evalValue(ctx, n.Value, scope)
		if err != nil {
			return err
		}
		scope.Set(n.Name, value)
		return nil
	case *types.UnaryOperator:
		return r.evalUnary(ctx, n, scope)
	default:
		return fmt.Errorf("unsupported statement %T", node)
	}
}

// evalCall resolves and performs a call, returning its text value.
func (r *run) evalCall(ctx context.Context, call *types.Call, scope *Scope) (string, error) {
	if len(call.Parameters) == 0 && len(call.Children) == 0 && call.Receiver == "" {
		if value, ok := scope.Get(call.Name); ok {
			return value, nil
		}
	}

	args := make([]string, 0, len(call.Parameters))
	for _, p := range call.Parameters {
		value, err := r.evalValue(ctx, p.ParamValue(), scope)
		if err != nil {
			return "", err
		}
		args = append(args, value)
	}

	body := r.childBody(call.Children, scope)

	if fn, ok := r.program[call.Name]; ok {
		r.logger.DebugContext(ctx, "call", "name", call.Name, "kind", "program", "args", len(args))
		if err := r.invoke(ctx, fn, args, call.Pos); err != nil {
			return "", err
		}
		return "", body(ctx)
	}

	name, host, ok := r.lookupHost(call)
	if !ok {
		return "", r.unknown(ctx, call.Name, call.Pos)
	}
	r.logger.DebugContext(ctx, "call", "name", name, "kind", "host", "args", len(args))
	return r.callHost(ctx, host, name, args, body, call.Pos)
}

// lookupHost finds the host function for call. A receiver-qualified name
// ("Unit.div") takes precedence over the plain name.
func (r *run) lookupHost(call *types.Call) (string, functions.Func, bool) {
	if call.Receiver != "" {
		qualified := call.Receiver + "." + call.Name
		if fn, ok := r.ev.registry.Lookup(qualified); ok {
			return qualified, fn, true
		}
	}
	fn, ok := r.ev.registry.Lookup(call.Name)
	return call.Name, fn, ok
}

// evalUnary passes the operand text to the host function registered for
// the operator.
func (r *run) evalUnary(ctx context.Context, op *types.UnaryOperator, scope *Scope) error {
	value, err := r.evalValue(ctx, op.Value, scope)
	if err != nil {
		return err
	}
	host, ok := r.ev.registry.Lookup(op.Operator)
	if !ok {
		return r.unknown(ctx, op.Operator, op.Pos)
	}
	r.logger.DebugContext(ctx, "call", "name", op.Operator, "kind", "operator")
	_, err = r.callHost(ctx, host, op.Operator, []string{value}, functions.NoBody, op.Pos)
	return err
}

// evalValue converts a value to the text passed to functions.
func (r *run) evalValue(ctx context.Context, v types.Value, scope *Scope) (string, error) {
	switch v := v.(type) {
	case types.StringValue:
		return v.Content, nil
	case types.NumberValue:
		return strconv.FormatFloat(v.Number, 'f', -1, 64), nil
	case types.EnumValue:
		return v.Type + "." + v.Name, nil
	case types.FunctionValue:
		return r.evalCall(ctx, v.Call, scope)
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}

// childBody returns the Body running children in a child of scope.
func (r *run) childBody(children []types.Node, scope *Scope) functions.Body {
	if len(children) == 0 {
		return functions.NoBody
	}
	return func(ctx context.Context) error {
		return r.execBody(ctx, children, scope.Child())
	}
}

func (r *run) callHost(ctx context.Context, fn functions.Func, name string, args []string, body functions.Body, at types.Span) (string, error) {
	result, err := fn(ctx, args, body)
	if err == nil {
		return result, nil
	}

	// errors raised by nested statements pass through unchanged
	var typed *types.Error
	if errors.As(err, &typed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	return "", r.errorAt(types.ErrHostFunction, at,
		fmt.Sprintf("Function '%s' failed", name)).WithCause(err)
}

func (r *run) unknown(ctx context.Context, name string, at types.Span) error {
	if r.ev.opts.IgnoreUnknown {
		r.logger.DebugContext(ctx, "skipping unknown function", "name", name)
		return nil
	}
	return r.errorAt(types.ErrUndefinedFunction, at,
		fmt.Sprintf("Function '%s' is not defined", name))
}

func (r *run) errorAt(code types.ErrorCode, at types.Span, msg string) *types.Error {
	return types.NewError(code, msg, at.Start, at.End).Locate(r.prog.Source())
}
