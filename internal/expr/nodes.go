// Package expr defines the expression tree the rewriter operates on.
//
// Node is a sealed interface; only the types in this package implement it.
// Trees are immutable once built: the rewriter allocates new nodes rather
// than mutating its input, so the same fragment can be rewritten under
// different target types (nested inclusion does exactly that).
package expr

import (
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// Node is a sealed expression-tree node.
type Node interface {
	node() // sealed
}

// IntLit is an integer literal. Text preserves the source spelling.
type IntLit struct {
	Text string
	Val  int64
}

func (*IntLit) node() {}

// FloatLit is a floating-point literal. Only the raw decimal text is kept:
// the rewriter re-parses it at the destination width, so holding a parsed
// float64 here would bake in a premature rounding.
type FloatLit struct {
	Text string
}

func (*FloatLit) node() {}

// StrLit is a string literal.
type StrLit struct {
	Val string
}

func (*StrLit) node() {}

// TypeLit is a target-type literal. It never appears in parsed source; the
// rewriter inserts it as the leading argument of every shadow call. Its
// presence in first-argument position is also the rewriter's "already
// typed, leave alone" signal.
type TypeLit struct {
	T target.Type
}

func (*TypeLit) node() {}

// ValueLit is a pre-evaluated constant. The rewriter replaces a float
// literal with the literal's decimal text re-parsed at the destination
// width; the result is carried here so evaluation cannot round it again.
type ValueLit struct {
	V value.Value
}

func (*ValueLit) node() {}

// Ident is an identifier reference.
type Ident struct {
	Name string
}

func (*Ident) node() {}

// Call is a function or operator application. Operators parse as calls with
// the operator name as callee ("+" applied to two arguments, and so on).
type Call struct {
	Callee Node
	Args   []Node
}

func (*Call) node() {}

// Broadcast is the element-wise call form f.(args...).
type Broadcast struct {
	Callee Node
	Args   []Node
}

func (*Broadcast) node() {}

// Assign binds a name in the enclosing scope.
type Assign struct {
	Name  string
	Value Node
}

func (*Assign) node() {}

// Block is a statement sequence; its value is the last statement's value.
type Block struct {
	Stmts []Node
}

func (*Block) node() {}

// ArrayLit is a literal array [a, b, c].
type ArrayLit struct {
	Elems []Node
}

func (*ArrayLit) node() {}

// Generic is the total fallback for node shapes not otherwise enumerated.
// It preserves its tag and recurses into children, so the rewriter never
// fails on unfamiliar syntax.
type Generic struct {
	Tag      string
	Children []Node
}

func (*Generic) node() {}

// Children returns a node's direct children in source order. Leaf nodes
// return nil.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Call:
		out := make([]Node, 0, len(v.Args)+1)
		out = append(out, v.Callee)
		return append(out, v.Args...)
	case *Broadcast:
		out := make([]Node, 0, len(v.Args)+1)
		out = append(out, v.Callee)
		return append(out, v.Args...)
	case *Assign:
		return []Node{v.Value}
	case *Block:
		return v.Stmts
	case *ArrayLit:
		return v.Elems
	case *Generic:
		return v.Children
	default:
		return nil
	}
}
