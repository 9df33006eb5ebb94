// Package extnumeric provides arithmetic functions for builder programs.
// Arguments are decimal text; results are rendered in shortest form.
package extnumeric

import (
	"fmt"
	"math"

	"github.com/sandrolain/gobuilder/pkg/ext/extutil"
	"github.com/sandrolain/gobuilder/pkg/functions"
)

// All returns all numeric function definitions.
func All() []functions.Def {
	return []functions.Def{
		Sum(),
		Sub(),
		Mul(),
		Div(),
		Mod(),
		Neg(),
		Round(),
		Trunc(),
		Sign(),
		Clamp(),
		Min(),
		Max(),
	}
}

// Sum returns the definition for sum(n...).
func Sum() functions.Def {
	return fold("sum", 0, func(acc, n float64) float64 { return acc + n })
}

// Mul returns the definition for mul(n...).
func Mul() functions.Def {
	return fold("mul", 1, func(acc, n float64) float64 { return acc * n })
}

// Min returns the definition for min(n, n...).
func Min() functions.Def {
	return reduce("min", math.Min)
}

// Max returns the definition for max(n, n...).
func Max() functions.Def {
	return reduce("max", math.Max)
}

// Sub returns the definition for sub(a, b).
func Sub() functions.Def {
	return binary("sub", func(a, b float64) (float64, error) { return a - b, nil })
}

// Div returns the definition for div(a, b).
func Div() functions.Def {
	return binary("div", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("div: division by zero")
		}
		return a / b, nil
	})
}

// Mod returns the definition for mod(a, b).
func Mod() functions.Def {
	return binary("mod", func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("mod: division by zero")
		}
		return math.Mod(a, b), nil
	})
}

// Neg returns the definition for neg(n).
// Number literals have no sign, so negative values are built with it.
func Neg() functions.Def {
	return unary("neg", func(n float64) float64 { return -n })
}

// Trunc returns the definition for trunc(n).
// Truncates toward zero.
func Trunc() functions.Def {
	return unary("trunc", math.Trunc)
}

// Sign returns the definition for sign(n): -1, 0 or 1.
func Sign() functions.Def {
	return unary("sign", func(n float64) float64 {
		switch {
		case n > 0:
			return 1
		case n < 0:
			return -1
		}
		return 0
	})
}

// Round returns the definition for round(n [, precision]).
// Rounds half away from zero to precision decimal places.
func Round() functions.Def {
	return extutil.Value("round", 1, 2, func(args []string) (string, error) {
		n, err := extutil.Number("round", args, 0)
		if err != nil {
			return "", err
		}
		precision := 0
		if len(args) == 2 {
			if precision, err = extutil.Int("round", args, 1); err != nil {
				return "", err
			}
		}
		scale := math.Pow(10, float64(precision))
		return extutil.FormatNumber(math.Round(n*scale) / scale), nil
	})
}

// Clamp returns the definition for clamp(n, lo, hi).
func Clamp() functions.Def {
	return extutil.Value("clamp", 3, 3, func(args []string) (string, error) {
		nums, err := numbers("clamp", args)
		if err != nil {
			return "", err
		}
		n, lo, hi := nums[0], nums[1], nums[2]
		if lo > hi {
			return "", fmt.Errorf("clamp: lower bound %v is above upper bound %v", lo, hi)
		}
		return extutil.FormatNumber(math.Max(lo, math.Min(n, hi))), nil
	})
}

func unary(name string, fn func(float64) float64) functions.Def {
	return extutil.Value(name, 1, 1, func(args []string) (string, error) {
		n, err := extutil.Number(name, args, 0)
		if err != nil {
			return "", err
		}
		return extutil.FormatNumber(fn(n)), nil
	})
}

func binary(name string, fn func(a, b float64) (float64, error)) functions.Def {
	return extutil.Value(name, 2, 2, func(args []string) (string, error) {
		nums, err := numbers(name, args)
		if err != nil {
			return "", err
		}
		result, err := fn(nums[0], nums[1])
		if err != nil {
			return "", err
		}
		return extutil.FormatNumber(result), nil
	})
}

func fold(name string, zero float64, fn func(acc, n float64) float64) functions.Def {
	return extutil.Value(name, 0, -1, func(args []string) (string, error) {
		nums, err := numbers(name, args)
		if err != nil {
			return "", err
		}
		acc := zero
		for _, n := range nums {
			acc = fn(acc, n)
		}
		return extutil.FormatNumber(acc), nil
	})
}

func reduce(name string, fn func(a, b float64) float64) functions.Def {
	return extutil.Value(name, 1, -1, func(args []string) (string, error) {
		nums, err := numbers(name, args)
		if err != nil {
			return "", err
		}
		acc := nums[0]
		for _, n := range nums[1:] {
			acc = fn(acc, n)
		}
		return extutil.FormatNumber(acc), nil
	})
}

func numbers(name string, args []string) ([]float64, error) {
	nums := make([]float64, len(args))
	for i := range args {
		n, err := extutil.Number(name, args, i)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	return nums, nil
}
