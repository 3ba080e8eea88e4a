// Package shadow implements the precision-dispatch library: for every
// tracked operation, a type-carrying counterpart that is semantically the
// original operation except that arguments and results whose type would
// otherwise default are produced in the caller's target type.
//
// Every function here is pure with respect to this package's state — the
// only process-wide state consulted is the read-only operation registry —
// and any error returned is the error the numeric backend would raise on
// the promoted or unpromoted arguments. The shadow layer adds promotion
// decisions, never error categories.
package shadow

import (
	"fmt"

	"github.com/reprec/reprec/internal/registry"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// LiteralPowName is the dedicated shadow operation the rewriter emits for
// power expressions with a literal integer exponent.
const LiteralPowName = "^^"

// Apply evaluates tracked operation name under target type t.
//
// The include family is not handled here: inclusion needs the enclosing
// evaluation scope, so the evaluator routes it to the inclusion
// collaborator directly.
func Apply(t target.Type, name string, args []value.Value) (value.Value, error) {
	if name == LiteralPowName {
		return literalPow(t, args)
	}
	fam, ok := registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("operation %q is not tracked", name)
	}
	switch fam {
	case registry.FamilyRandom:
		return applyRandom(t, name, args)
	case registry.FamilyConstructor:
		return applyConstructor(t, name, args)
	case registry.FamilyElementary:
		return applyElementary(t, name, args)
	case registry.FamilyDivision:
		return applyDivision(t, name, args)
	case registry.FamilyComplexObserver:
		return applyObserver(t, name, args)
	case registry.FamilyBinary:
		return applyBinary(t, name, args)
	case registry.FamilyStatistical:
		return applyStatistical(t, name, args)
	case registry.FamilyLinalg:
		return applyLinalg(t, name, args)
	case registry.FamilyInclude:
		return nil, fmt.Errorf("include must be evaluated with an enclosing scope")
	}
	return nil, fmt.Errorf("operation %q has unhandled family %q", name, fam)
}

// promote converts v to t when its classification allows it; floating and
// opaque values pass through untouched.
func promote(t target.Type, v value.Value) (value.Value, error) {
	if !value.Classify(v).Promotable() {
		return v, nil
	}
	return value.Promote(t, v)
}

// explicitType extracts a leading explicit type argument, the override form
// of the random and constructor families. When present, the caller's target
// type is ignored entirely.
func explicitType(t target.Type, args []value.Value) (target.Type, []value.Value) {
	if len(args) > 0 {
		if tv, ok := args[0].(value.TypeVal); ok {
			return tv.T, args[1:]
		}
	}
	return t, args
}

// intDims reads dimension arguments, which pass through promotion
// untouched.
func intDims(args []value.Value) ([]int, error) {
	dims := make([]int, len(args))
	for i, a := range args {
		n, ok := a.(value.Int)
		if !ok {
			return nil, fmt.Errorf("dimension %d is not an integer: %s", i+1, a)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative dimension %d", int64(n))
		}
		dims[i] = int(n)
	}
	return dims, nil
}
