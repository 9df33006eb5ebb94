// Package ext provides optional host functions for builder programs.
//
// The functions live in sub-packages grouped by category:
//   - extstring  – upper, lower, concat, camelCase, template, …
//   - extnumeric – sum, sub, mul, div, round, clamp, …
//   - extcrypto  – uuid, hash, hmac
//   - exthtml    – html, body, div, a, "+" and "-" writing markup
//   - extwasm    – the exports of a WebAssembly module
//
// Value functions (string, numeric, crypto) compute a result from their
// arguments and ignore the call body, so they are used as parameters:
//
//	+concat("Hello, " upper(name))
//
// # Integration – all value functions at once
//
//	import "github.com/sandrolain/gobuilder/pkg/ext"
//
//	ev := evaluator.New(ext.WithAll())
//
// # Integration – by category
//
//	ev := evaluator.New(
//	    ext.WithString(),
//	    ext.WithHTML(os.Stdout),
//	)
package ext

import (
	"io"

	"github.com/sandrolain/gobuilder/pkg/evaluator"
	"github.com/sandrolain/gobuilder/pkg/ext/extcrypto"
	"github.com/sandrolain/gobuilder/pkg/ext/exthtml"
	"github.com/sandrolain/gobuilder/pkg/ext/extnumeric"
	"github.com/sandrolain/gobuilder/pkg/ext/extstring"
	"github.com/sandrolain/gobuilder/pkg/functions"
)

// All returns every value function definition.
func All() []functions.Def {
	var all []functions.Def
	all = append(all, extstring.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extcrypto.All()...)
	return all
}

// Registry returns a registry holding every value function and the markup
// functions writing to w.
func Registry(w io.Writer) *functions.Registry {
	reg := functions.NewRegistry(All()...)
	for _, def := range exthtml.Functions(w) {
		reg.MustRegister(def)
	}
	return reg
}

// WithAll returns an EvalOption that registers every value function.
func WithAll() evaluator.EvalOption {
	return evaluator.WithFunctions(All()...)
}

// WithString returns an EvalOption for the string functions.
func WithString() evaluator.EvalOption {
	return evaluator.WithFunctions(extstring.All()...)
}

// WithNumeric returns an EvalOption for the numeric functions.
func WithNumeric() evaluator.EvalOption {
	return evaluator.WithFunctions(extnumeric.All()...)
}

// WithCrypto returns an EvalOption for the identifier and hashing functions.
func WithCrypto() evaluator.EvalOption {
	return evaluator.WithFunctions(extcrypto.All()...)
}

// WithHTML returns an EvalOption for the markup functions writing to w.
func WithHTML(w io.Writer) evaluator.EvalOption {
	return evaluator.WithFunctions(exthtml.Functions(w)...)
}
