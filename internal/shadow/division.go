package shadow

import (
	"fmt"

	"github.com/reprec/reprec/internal/backend"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// applyDivision implements /, \, and inv. Exactness is preserved whenever
// both sides admit an exact answer: any division involving a rational (or a
// complex built from rationals) on both sides stays rational, never
// promoted. Integer-over-integer has no exact quotient in the integers, so
// both operands promote to the target type.
func applyDivision(t target.Type, name string, args []value.Value) (value.Value, error) {
	if name == "inv" {
		return applyInv(t, args)
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
	}
	a, b := args[0], args[1]
	if name == "\\" {
		a, b = b, a
	}

	ca, cb := value.Classify(a), value.Classify(b)
	switch {
	case exactQuotient(ca, cb):
		return backend.ExactDiv(a, b)
	case ca.Promotable() && cb.Promotable() && !ca.Array && !cb.Array:
		pa, err := value.Promote(t, a)
		if err != nil {
			return nil, err
		}
		pb, err := value.Promote(t, b)
		if err != nil {
			return nil, err
		}
		return backend.ScalarOp("/", pa, pb)
	default:
		return backend.ScalarOp("/", a, b)
	}
}

// exactQuotient reports whether a/b admits an exact rational answer: both
// sides exact (integer/rational scalars, or complex of those) with a
// rational somewhere in the pair. Two plain integers are excluded — their
// quotient defaults, which is exactly what retargeting is for.
func exactQuotient(ca, cb value.Class) bool {
	if ca.Array || cb.Array {
		return false
	}
	if !ca.Exact() || !cb.Exact() {
		return false
	}
	return ca.Base == value.ExactRational || cb.Base == value.ExactRational
}

// applyInv inverts scalars and square matrices. Exact scalars take the
// exact reciprocal (an integer is a rational with denominator one); matrix
// inversion is not one of the exactness-preserving array families, so
// promotable element types convert to the target first.
func applyInv(t target.Type, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("inv expects 1 argument, got %d", len(args))
	}
	arg := args[0]
	c := value.Classify(arg)
	switch {
	case c.Array:
		return invMatrix(t, arg.(value.Array), c)
	case c.Exact():
		return backend.ExactInv(arg)
	case c.Base == value.IrrationalConstant:
		p, err := value.Promote(t, arg)
		if err != nil {
			return nil, err
		}
		return backend.ScalarOp("/", value.Int(1), p)
	default:
		return backend.ScalarOp("/", value.Int(1), arg)
	}
}

func invMatrix(t target.Type, arr value.Array, c value.Class) (value.Value, error) {
	out := arr
	rt := resultTypeForArray(t, arr, c)
	if c.Promotable() {
		p, err := value.Promote(t, arr)
		if err != nil {
			return nil, err
		}
		out = p.(value.Array)
	}
	m, err := backend.Dense(out)
	if err != nil {
		return nil, err
	}
	inv, err := backend.InvMat(m)
	if err != nil {
		return nil, err
	}
	r, cols := inv.Dims()
	return backend.ArrayFromFloat64s(rt, []int{r, cols}, inv.RawMatrix().Data), nil
}

// resultTypeForArray picks the width array results round to: the target
// when the elements promoted, the widest existing element width otherwise.
func resultTypeForArray(t target.Type, arr value.Array, c value.Class) target.Type {
	if c.Promotable() {
		return t
	}
	k := target.Float64
	first := true
	for _, e := range arr.Elems {
		if f, ok := e.(value.Float); ok {
			if first {
				k = f.Kind
				first = false
				continue
			}
			k = backend.WiderKind(k, f.Kind)
		}
	}
	return target.Of(k)
}
