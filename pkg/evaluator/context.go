package evaluator

import (
	"fmt"
)

// Scope holds the variables visible to a block of statements.
//
// Function invocations start from a fresh scope holding their arguments;
// the body of a call runs in a child of the scope the call appears in, so
// assignments made inside it are not visible after it ends.
type Scope struct {
	parent   *Scope
	bindings map[string]string
	depth    int
}

// NewScope creates an empty root scope.
func NewScope() *Scope {
	return &Scope{
		bindings: make(map[string]string),
	}
}

// Child creates a scope nested in s.
func (s *Scope) Child() *Scope {
	return &Scope{
		parent:   s,
		bindings: make(map[string]string),
		depth:    s.depth + 1,
	}
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Depth returns the number of enclosing scopes.
func (s *Scope) Depth() int {
	return s.depth
}

// Set binds name in this scope, shadowing outer bindings.
func (s *Scope) Set(name, value string) {
	s.bindings[name] = value
}

// Get looks name up in this scope and then in the enclosing ones.
func (s *Scope) Get(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if value, ok := cur.bindings[name]; ok {
			return value, true
		}
	}
	return "", false
}

// String returns a string representation of the scope.
func (s *Scope) String() string {
	return fmt.Sprintf("Scope{depth=%d, bindings=%d}", s.depth, len(s.bindings))
}
