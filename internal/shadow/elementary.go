package shadow

import (
	"fmt"

	"github.com/reprec/reprec/internal/backend"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// applyElementary promotes promotable arguments (integers, rationals,
// irrational constants, and complex values built from those) to the target
// type, then delegates to the backend. Arguments that already chose a float
// width, and opaque shapes, delegate unchanged. Two-argument forms promote
// each argument independently.
func applyElementary(t target.Type, name string, args []value.Value) (value.Value, error) {
	if backend.IsBinaryElementary(name) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		}
		x, err := promotedFloat(t, args[0])
		if err != nil {
			return nil, err
		}
		y, err := promotedFloat(t, args[1])
		if err != nil {
			return nil, err
		}
		return backend.Elementary2(name, x, y)
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
	}
	arg, err := promote(t, args[0])
	if err != nil {
		return nil, err
	}
	switch v := arg.(type) {
	case value.Float:
		return backend.Elementary1(name, v)
	case value.Complex:
		return backend.CElementary1(name, v)
	case value.Array:
		return nil, fmt.Errorf("%s of an array: use the broadcast form %s.(...)", name, name)
	default:
		return nil, fmt.Errorf("%s of non-numeric value %s", name, arg)
	}
}

// promotedFloat promotes a promotable scalar to t and reads it as a float;
// floats of any width pass through at their own width.
func promotedFloat(t target.Type, v value.Value) (value.Float, error) {
	p, err := promote(t, v)
	if err != nil {
		return value.Float{}, err
	}
	f, ok := p.(value.Float)
	if !ok {
		return value.Float{}, fmt.Errorf("expected a real scalar, got %s", v)
	}
	return f, nil
}

// applyObserver handles the complex observers abs and angle: the argument
// promotes only when it is a complex built from integers or rationals;
// everything else delegates unchanged (so abs of an exact real stays
// exact).
func applyObserver(t target.Type, name string, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
	}
	arg := args[0]
	c := value.Classify(arg)
	if c.Complex && (c.Base == value.HardwareInteger || c.Base == value.ExactRational) {
		p, err := value.Promote(t, arg)
		if err != nil {
			return nil, err
		}
		arg = p
	}
	switch name {
	case "abs":
		return backend.Abs(arg)
	case "angle":
		return backend.Angle(arg)
	}
	return nil, fmt.Errorf("unknown observer %q", name)
}
