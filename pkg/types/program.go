// Package types defines the syntax tree and error types for gobuilder.
//
// This package contains type definitions for:
//   - Program: a compiled source file
//   - Function, FunctionHeader: top-level definitions
//   - Node: statements (Call, Assignment, UnaryOperator)
//   - Parameter and Value: call operands
//   - Error types: structured errors with codes and source positions
//
// All tree values are built once by the parser and never mutated afterwards.
package types

// Program is a parsed source file.
//
// A Program can be run any number of times by an evaluator. It is safe for
// concurrent use by multiple goroutines.
type Program struct {
	functions []Function
	source    string
}

// NewProgram creates a new Program from parsed functions.
func NewProgram(functions []Function, source string) *Program {
	return &Program{
		functions: functions,
		source:    source,
	}
}

// Functions returns the parsed functions in source order.
func (p *Program) Functions() []Function {
	return p.functions
}

// Source returns the original source text.
func (p *Program) Source() string {
	return p.source
}

// Function returns the first function with the given name.
func (p *Program) Function(name string) (*Function, bool) {
	for i := range p.functions {
		if p.functions[i].Header.Name == name {
			return &p.functions[i], true
		}
	}
	return nil, false
}

// Definition returns the first function with the given name that has a
// body, skipping external declarations of the same name.
func (p *Program) Definition(name string) (*Function, bool) {
	for i := range p.functions {
		if fn := &p.functions[i]; fn.Header.Name == name && !fn.Header.External {
			return fn, true
		}
	}
	return nil, false
}

// Entry returns the first function that is not external.
func (p *Program) Entry() (*Function, bool) {
	for i := range p.functions {
		if !p.functions[i].Header.External {
			return &p.functions[i], true
		}
	}
	return nil, false
}

// String returns the source of the program.
func (p *Program) String() string {
	return p.source
}
