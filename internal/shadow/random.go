package shadow

import (
	"fmt"

	"github.com/reprec/reprec/internal/backend"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// applyRandom generates random scalars or arrays in the target type unless
// the call supplies an explicit type, which overrides the target entirely.
// Dimension arguments pass through unchanged.
func applyRandom(t target.Type, name string, args []value.Value) (value.Value, error) {
	eff, rest := explicitType(t, args)
	draw := backend.Uniform
	if name == "randn" {
		draw = backend.Normal
	}
	dims, err := intDims(rest)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return value.FromFloat64(eff, draw()), nil
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = draw()
	}
	return backend.ArrayFromFloat64s(eff, dims, data), nil
}

// applyConstructor builds constant-filled arrays and ranges in the target
// type, with the same explicit-type override as the random family.
func applyConstructor(t target.Type, name string, args []value.Value) (value.Value, error) {
	eff, rest := explicitType(t, args)
	switch name {
	case "ones", "zeros":
		fill := 0.0
		if name == "ones" {
			fill = 1.0
		}
		dims, err := intDims(rest)
		if err != nil {
			return nil, err
		}
		if len(dims) == 0 {
			return value.FromFloat64(eff, fill), nil
		}
		n := 1
		for _, d := range dims {
			n *= d
		}
		data := make([]float64, n)
		for i := range data {
			data[i] = fill
		}
		return backend.ArrayFromFloat64s(eff, dims, data), nil

	case "fill":
		if len(rest) < 2 {
			return nil, fmt.Errorf("fill needs a value and at least one dimension")
		}
		fillVal, err := promote(eff, rest[0])
		if err != nil {
			return nil, err
		}
		dims, err := intDims(rest[1:])
		if err != nil {
			return nil, err
		}
		n := 1
		for _, d := range dims {
			n *= d
		}
		elems := make([]value.Value, n)
		for i := range elems {
			elems[i] = fillVal
		}
		return value.Array{Dims: dims, Elems: elems}, nil

	case "linspace":
		if len(rest) != 3 {
			return nil, fmt.Errorf("linspace needs start, stop, and count")
		}
		count, ok := rest[2].(value.Int)
		if !ok || count < 2 {
			return nil, fmt.Errorf("linspace count must be an integer >= 2")
		}
		start, err := numericFloat64(rest[0])
		if err != nil {
			return nil, err
		}
		stop, err := numericFloat64(rest[1])
		if err != nil {
			return nil, err
		}
		n := int(count)
		data := make([]float64, n)
		step := (stop - start) / float64(n-1)
		for i := range data {
			data[i] = start + float64(i)*step
		}
		data[n-1] = stop
		return backend.ArrayFromFloat64s(eff, []int{n}, data), nil
	}
	return nil, fmt.Errorf("unknown constructor %q", name)
}

func numericFloat64(v value.Value) (float64, error) {
	switch val := v.(type) {
	case value.Int:
		return float64(val), nil
	case value.Float:
		return val.AsFloat64(), nil
	case value.Rational:
		f, _ := val.Rat.Float64()
		return f, nil
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
