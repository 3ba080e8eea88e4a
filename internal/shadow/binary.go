package shadow

import (
	"fmt"

	"github.com/reprec/reprec/internal/backend"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// applyBinary implements the associative operators + - * ^. A pair promotes
// only when one side is an irrational constant and the other is promotable;
// plain integer/rational pairs stay on the exact path. Higher arities
// reduce pairwise, left to right, with the same per-pair rule; when no
// argument is irrational and all are exact, the reduction is the plain
// exact operator chain with no promotion checks at all.
func applyBinary(t target.Type, name string, args []value.Value) (value.Value, error) {
	if len(args) == 1 && name == "-" {
		arg := args[0]
		// An irrational constant lands at the target width first, so
		// -pi under a 256-bit target is not read through float64.
		if value.Classify(arg).Base == value.IrrationalConstant {
			p, err := value.Promote(t, arg)
			if err != nil {
				return nil, err
			}
			return backend.Negate(p)
		}
		return backend.Negate(arg)
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("%s expects at least 2 arguments, got %d", name, len(args))
	}

	if allExact(args) {
		// Fast path: no irrational anywhere, exact arithmetic
		// throughout.
		acc := args[0]
		for _, next := range args[1:] {
			var err error
			acc, err = backend.ScalarOp(name, acc, next)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	}

	acc := args[0]
	for _, next := range args[1:] {
		var err error
		acc, err = binaryPair(t, name, acc, next)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func binaryPair(t target.Type, name string, a, b value.Value) (value.Value, error) {
	if name == "^" {
		if e, ok := a.(value.Irrational); ok && e.Name == "e" {
			return expOfE(t, b)
		}
	}
	if aa, ok := a.(value.Array); ok {
		return arrayPair(t, name, aa, b, false)
	}
	if ba, ok := b.(value.Array); ok {
		return arrayPair(t, name, ba, a, true)
	}
	ca, cb := value.Classify(a), value.Classify(b)
	promotePair := (ca.Base == value.IrrationalConstant && cb.Promotable()) ||
		(cb.Base == value.IrrationalConstant && ca.Promotable())
	if promotePair {
		pa, err := value.Promote(t, a)
		if err != nil {
			return nil, err
		}
		pb, err := value.Promote(t, b)
		if err != nil {
			return nil, err
		}
		return backend.ScalarOp(name, pa, pb)
	}
	return backend.ScalarOp(name, a, b)
}

// expOfE collapses e^x into the exponential evaluated at the promoted
// exponent, mirroring the backend's own constant folding for powers of e.
func expOfE(t target.Type, exponent value.Value) (value.Value, error) {
	x, err := promote(t, exponent)
	if err != nil {
		return nil, err
	}
	switch v := x.(type) {
	case value.Float:
		f, err := backend.Elementary1("exp", v)
		if err != nil {
			return nil, err
		}
		return f, nil
	case value.Complex:
		return backend.CElementary1("exp", v)
	default:
		return nil, fmt.Errorf("e^x needs a numeric exponent, got %s", exponent)
	}
}

// literalPow implements the dedicated literal-integer-exponent power shadow
// operation. An irrational base promotes to the target first; every other
// base delegates to the backend's specialized integer power unchanged, so
// exact bases stay exact.
func literalPow(t target.Type, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("literal power expects base and exponent, got %d arguments", len(args))
	}
	k, ok := args[1].(value.Int)
	if !ok {
		return nil, fmt.Errorf("literal power exponent must be an integer, got %s", args[1])
	}
	base := args[0]
	if irr, ok := base.(value.Irrational); ok {
		if irr.Name == "e" {
			return expOfE(t, k)
		}
		p, err := value.Promote(t, base)
		if err != nil {
			return nil, err
		}
		base = p
	}
	return backend.PowInt(base, int64(k))
}

// arrayPair applies an operator element-wise between an array and either a
// matching array or a scalar, with the scalar (or the other array's
// elements) on the side the source put it.
func arrayPair(t target.Type, name string, arr value.Array, other value.Value, arrIsRight bool) (value.Value, error) {
	elems := make([]value.Value, len(arr.Elems))
	otherArr, otherIsArr := other.(value.Array)
	if otherIsArr && otherArr.Len() != arr.Len() {
		return nil, fmt.Errorf("%s of arrays with different lengths (%d, %d)", name, arr.Len(), otherArr.Len())
	}
	for i, e := range arr.Elems {
		rhs := other
		if otherIsArr {
			rhs = otherArr.Elems[i]
		}
		lhs := e
		if arrIsRight {
			lhs, rhs = rhs, lhs
		}
		r, err := binaryPair(t, name, lhs, rhs)
		if err != nil {
			return nil, err
		}
		elems[i] = r
	}
	return value.Array{Dims: append([]int(nil), arr.Dims...), Elems: elems}, nil
}

func allExact(args []value.Value) bool {
	for _, a := range args {
		c := value.Classify(a)
		if c.Array || c.Complex {
			return false
		}
		if !c.Exact() {
			return false
		}
	}
	return true
}
