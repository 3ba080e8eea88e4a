// Package target defines the destination numeric types a fragment can be
// retargeted to.
//
// A Type is carried by value through every rewritten call. It is never stored
// globally: nested fragment inclusion may rewrite the same tree under a
// different ambient type, so each expansion owns its own Type.
package target

import (
	"fmt"
	"strings"
)

// Kind identifies a destination numeric kind.
type Kind int

const (
	// Float16 is IEEE 754 binary16 (11-bit significand).
	Float16 Kind = iota
	// Float32 is IEEE 754 binary32 (24-bit significand).
	Float32
	// Float64 is IEEE 754 binary64 (53-bit significand). This is the
	// fragment language's native default width: a fragment evaluated
	// without rewriting produces Float64 results.
	Float64
	// BigFloat is an arbitrary-precision binary float (math/big).
	BigFloat
	// UserDefined is any other type name. Such targets only get generic
	// construct-from-decimal-text rewriting of float literals; the
	// constructor must be resolvable in the fragment's scope.
	UserDefined
)

// DefaultBigPrec is the significand width used for BigFloat targets when the
// caller does not choose one.
const DefaultBigPrec = 256

// Type is a destination numeric type. The zero value is not meaningful; use
// Parse or one of the exported constructors.
type Type struct {
	Kind Kind
	Name string
	// Prec is the significand width in bits for BigFloat targets.
	// Ignored for the fixed-width kinds.
	Prec uint
}

// Built-in targets.
var (
	F16 = Type{Kind: Float16, Name: "float16"}
	F32 = Type{Kind: Float32, Name: "float32"}
	F64 = Type{Kind: Float64, Name: "float64"}
	Big = Type{Kind: BigFloat, Name: "big", Prec: DefaultBigPrec}
)

// Of returns the canonical Type for a built-in kind.
func Of(k Kind) Type {
	switch k {
	case Float16:
		return F16
	case Float32:
		return F32
	case BigFloat:
		return Big
	default:
		return F64
	}
}

// Parse resolves a target-type name. The built-in names are matched
// case-insensitively; any other identifier is accepted as a UserDefined
// target (forward-compatible with fragment-level numeric types that can
// construct themselves from decimal text).
func Parse(name string) (Type, error) {
	if name == "" {
		return Type{}, fmt.Errorf("empty target type name")
	}
	switch strings.ToLower(name) {
	case "float16", "f16", "half":
		return F16, nil
	case "float32", "f32", "single":
		return F32, nil
	case "float64", "f64", "double":
		return F64, nil
	case "big", "bigfloat":
		return Big, nil
	}
	return Type{Kind: UserDefined, Name: name}, nil
}

// IsTypeName reports whether an identifier names a recognized built-in
// target type. The rewriter uses this for its explicit-type heuristic: a
// tracked call whose first argument is such an identifier is treated as
// already typed and left alone.
func IsTypeName(name string) bool {
	switch strings.ToLower(name) {
	case "float16", "float32", "float64", "bigfloat", "big":
		return true
	}
	return false
}

// SigBits returns the significand width of the kind in bits.
func (t Type) SigBits() uint {
	switch t.Kind {
	case Float16:
		return 11
	case Float32:
		return 24
	case Float64:
		return 53
	case BigFloat:
		if t.Prec == 0 {
			return DefaultBigPrec
		}
		return t.Prec
	}
	return 0
}

// String returns the canonical name of the target.
func (t Type) String() string {
	if t.Name != "" {
		return t.Name
	}
	switch t.Kind {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case BigFloat:
		return "big"
	}
	return "unknown"
}
