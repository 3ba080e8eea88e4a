package backend

import (
	"fmt"
	"math/big"

	"gonum.org/v1/gonum/mat"

	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// Float64s reads an array's elements as float64. Fails on non-numeric
// elements; narrower floats read exactly, BigFloat rounds.
func Float64s(arr value.Array) ([]float64, error) {
	out := make([]float64, len(arr.Elems))
	for i, e := range arr.Elems {
		f, err := elemFloat64(e)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func elemFloat64(v value.Value) (float64, error) {
	switch val := v.(type) {
	case value.Int:
		return float64(val), nil
	case value.Rational:
		f, _ := val.Rat.Float64()
		return f, nil
	case value.Float:
		return val.AsFloat64(), nil
	case value.Irrational:
		f, ok := value.ConstantFloat64(val.Name)
		if !ok {
			return 0, fmt.Errorf("unknown constant %q", val.Name)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a numeric scalar: %s", v)
	}
}

// Rats reads an array's elements as exact rationals. Every element must be
// an integer or rational.
func Rats(arr value.Array) ([]*big.Rat, error) {
	out := make([]*big.Rat, len(arr.Elems))
	for i, e := range arr.Elems {
		switch val := e.(type) {
		case value.Int:
			out[i] = new(big.Rat).SetInt64(int64(val))
		case value.Rational:
			out[i] = new(big.Rat).Set(val.Rat)
		default:
			return nil, fmt.Errorf("array element %d is not exact: %s", i, e)
		}
	}
	return out, nil
}

// Bigs reads an array's elements as big.Float at the given precision.
func Bigs(arr value.Array, prec uint) ([]*big.Float, error) {
	out := make([]*big.Float, len(arr.Elems))
	for i, e := range arr.Elems {
		switch val := e.(type) {
		case value.Float:
			if val.Kind == target.BigFloat {
				out[i] = new(big.Float).SetPrec(prec).Set(val.Big)
				continue
			}
			out[i] = new(big.Float).SetPrec(prec).SetFloat64(val.F64)
		case value.Int:
			out[i] = new(big.Float).SetPrec(prec).SetInt64(int64(val))
		case value.Rational:
			out[i] = new(big.Float).SetPrec(prec).SetRat(val.Rat)
		default:
			return nil, fmt.Errorf("array element %d is not numeric: %s", i, e)
		}
	}
	return out, nil
}

// Dense reads a two-dimensional array as a gonum dense matrix.
func Dense(arr value.Array) (*mat.Dense, error) {
	if len(arr.Dims) != 2 {
		return nil, fmt.Errorf("expected a matrix, got %d dimension(s)", len(arr.Dims))
	}
	data, err := Float64s(arr)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(arr.Dims[0], arr.Dims[1], data), nil
}

// ArrayFromFloat64s builds an array of the given shape with every element
// rounded into the target type.
func ArrayFromFloat64s(t target.Type, dims []int, data []float64) value.Array {
	elems := make([]value.Value, len(data))
	for i, f := range data {
		elems[i] = value.FromFloat64(t, f)
	}
	return value.Array{Dims: append([]int(nil), dims...), Elems: elems}
}
