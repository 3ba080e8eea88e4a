package eval

import (
	"math"

	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// Scope is a lexical environment. Lookup walks the parent chain; Set always
// binds in the receiver, so included fragments evaluated with the enclosing
// scope mutate the enclosing bindings, as inclusion requires.
type Scope struct {
	parent *Scope
	vars   map[string]value.Value
}

// NewScope creates a child scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: map[string]value.Value{}}
}

// Lookup resolves a name through the scope chain.
func (s *Scope) Lookup(name string) (value.Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds a name in this scope.
func (s *Scope) Set(name string, v value.Value) {
	s.vars[name] = v
}

// Global returns a fresh top-level scope with the fragment language's
// built-in bindings: the irrational constants, the untyped special floats,
// and the built-in target type names.
func Global() *Scope {
	s := NewScope(nil)
	for _, name := range []string{"pi", "e", "eulergamma", "golden", "catalan"} {
		s.Set(name, value.Irrational{Name: name})
	}
	s.Set("Inf", value.NewFloat64(math.Inf(1)))
	s.Set("NaN", value.NewFloat64(math.NaN()))
	s.Set("Float16", value.TypeVal{T: target.F16})
	s.Set("Float32", value.TypeVal{T: target.F32})
	s.Set("Float64", value.TypeVal{T: target.F64})
	s.Set("BigFloat", value.TypeVal{T: target.Big})
	s.Set("im", value.Complex{Re: value.Int(0), Im: value.Int(1)})
	return s
}
