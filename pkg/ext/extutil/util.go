// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandrolain/gobuilder/pkg/functions"
)

// Value wraps a function that computes a value from its arguments and
// ignores the call body. Arity is checked before fn runs; maxArgs < 0
// means no upper bound.
func Value(name string, minArgs, maxArgs int, fn func(args []string) (string, error)) functions.Def {
	return functions.Def{
		Name: name,
		Fn: func(_ context.Context, args []string, _ functions.Body) (string, error) {
			if err := Arity(name, args, minArgs, maxArgs); err != nil {
				return "", err
			}
			return fn(args)
		},
	}
}

// Arity checks that args holds between minArgs and maxArgs values.
// maxArgs < 0 means no upper bound.
func Arity(name string, args []string, minArgs, maxArgs int) error {
	n := len(args)
	switch {
	case n != minArgs && minArgs == maxArgs:
		return fmt.Errorf("%s: expected %d arguments, got %d", name, minArgs, n)
	case n < minArgs:
		return fmt.Errorf("%s: expected at least %d arguments, got %d", name, minArgs, n)
	case maxArgs >= 0 && n > maxArgs:
		return fmt.Errorf("%s: expected at most %d arguments, got %d", name, maxArgs, n)
	}
	return nil
}

// Number parses args[i] as a decimal number.
func Number(name string, args []string, i int) (float64, error) {
	f, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: argument %d must be a number, got %q", name, i+1, args[i])
	}
	return f, nil
}

// Int parses args[i] as a whole number.
func Int(name string, args []string, i int) (int, error) {
	f, err := Number(name, args, i)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%s: argument %d must be an integer, got %q", name, i+1, args[i])
	}
	return int(f), nil
}

// FormatNumber renders f in its shortest decimal form, the way number
// literals are passed to functions.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatBool renders a condition as "true" or "false".
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}
