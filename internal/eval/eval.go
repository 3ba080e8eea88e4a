// Package eval is a tree-walking evaluator for fragments. Rewritten trees
// route their tracked calls into the shadow library with the target type
// they carry; unrewritten tracked calls evaluate with the same machinery at
// the fragment language's native default width, so rewritten and plain
// evaluation share one semantics.
package eval

import (
	"fmt"
	"strconv"

	"github.com/reprec/reprec/internal/expr"
	"github.com/reprec/reprec/internal/registry"
	"github.com/reprec/reprec/internal/shadow"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// IncludeFunc evaluates an included fragment: read, parse, rewrite under t,
// evaluate in the enclosing scope. Provided by the inclusion collaborator;
// wiring it here instead of importing it avoids a dependency cycle, since
// inclusion itself needs the evaluator.
type IncludeFunc func(t target.Type, sc *Scope, path string) (value.Value, error)

// Evaluator evaluates expression trees. The zero value works for fragments
// that do not use include.
type Evaluator struct {
	Include IncludeFunc
}

// Eval evaluates a node in the given scope.
func (ev *Evaluator) Eval(sc *Scope, n expr.Node) (value.Value, error) {
	switch v := n.(type) {
	case *expr.IntLit:
		return value.Int(v.Val), nil
	case *expr.FloatLit:
		// An unrewritten float literal reads at the native width.
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed float literal %q", v.Text)
		}
		return value.NewFloat64(f), nil
	case *expr.StrLit:
		return value.Str(v.Val), nil
	case *expr.TypeLit:
		return value.TypeVal{T: v.T}, nil
	case *expr.ValueLit:
		return v.V, nil
	case *expr.Ident:
		if val, ok := sc.Lookup(v.Name); ok {
			return val, nil
		}
		return nil, fmt.Errorf("undefined name %q", v.Name)
	case *expr.Assign:
		val, err := ev.Eval(sc, v.Value)
		if err != nil {
			return nil, err
		}
		sc.Set(v.Name, val)
		return val, nil
	case *expr.Block:
		var last value.Value = value.Bool(false)
		for _, stmt := range v.Stmts {
			val, err := ev.Eval(sc, stmt)
			if err != nil {
				return nil, err
			}
			last = val
		}
		return last, nil
	case *expr.ArrayLit:
		elems := make([]value.Value, len(v.Elems))
		for i, e := range v.Elems {
			val, err := ev.Eval(sc, e)
			if err != nil {
				return nil, err
			}
			elems[i] = val
		}
		return value.Array{Dims: []int{len(elems)}, Elems: elems}, nil
	case *expr.Call:
		return ev.evalCall(sc, v)
	case *expr.Broadcast:
		return ev.evalBroadcast(sc, v)
	case *expr.Generic:
		return nil, fmt.Errorf("cannot evaluate %s node", v.Tag)
	default:
		return nil, fmt.Errorf("cannot evaluate node %s", expr.Format(n))
	}
}

func (ev *Evaluator) evalCall(sc *Scope, call *expr.Call) (value.Value, error) {
	// Conversion call inserted by the rewriter: (@T)(x).
	if tl, ok := call.Callee.(*expr.TypeLit); ok {
		if len(call.Args) != 1 {
			return nil, fmt.Errorf("type conversion expects 1 argument, got %d", len(call.Args))
		}
		arg, err := ev.Eval(sc, call.Args[0])
		if err != nil {
			return nil, err
		}
		return Convert(tl.T, arg)
	}

	callee, ok := call.Callee.(*expr.Ident)
	if !ok {
		return nil, fmt.Errorf("cannot call %s", expr.Format(call.Callee))
	}
	name := callee.Name

	if name == "include" {
		return ev.evalInclude(sc, call.Args)
	}

	// A leading type literal marks a shadow call carrying its target.
	t := target.F64
	args := call.Args
	if len(args) > 0 {
		if tl, ok := args[0].(*expr.TypeLit); ok {
			t = tl.T
			args = args[1:]
		}
	}

	_, tracked := registry.Lookup(name)
	if tracked || name == shadow.LiteralPowName {
		vals, err := ev.evalAll(sc, args)
		if err != nil {
			return nil, err
		}
		return shadow.Apply(t, name, vals)
	}

	// Not tracked: conversion via a bound type name, or a built-in
	// structural helper.
	vals, err := ev.evalAll(sc, args)
	if err != nil {
		return nil, err
	}
	if bound, ok := sc.Lookup(name); ok {
		if tv, ok := bound.(value.TypeVal); ok {
			if len(vals) != 1 {
				return nil, fmt.Errorf("type conversion expects 1 argument, got %d", len(vals))
			}
			return Convert(tv.T, vals[0])
		}
	}
	return applyBuiltin(name, vals)
}

func (ev *Evaluator) evalInclude(sc *Scope, argNodes []expr.Node) (value.Value, error) {
	if ev.Include == nil {
		return nil, fmt.Errorf("include is not available in this context")
	}
	t := target.F64
	args := argNodes
	if len(args) > 0 {
		if tl, ok := args[0].(*expr.TypeLit); ok {
			t = tl.T
			args = args[1:]
		}
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("include expects a single path argument")
	}
	pathVal, err := ev.Eval(sc, args[0])
	if err != nil {
		return nil, err
	}
	path, ok := pathVal.(value.Str)
	if !ok {
		return nil, fmt.Errorf("include path must be a string, got %s", pathVal)
	}
	return ev.Include(t, sc, string(path))
}

func (ev *Evaluator) evalBroadcast(sc *Scope, bc *expr.Broadcast) (value.Value, error) {
	callee, ok := bc.Callee.(*expr.Ident)
	if !ok {
		return nil, fmt.Errorf("cannot broadcast %s", expr.Format(bc.Callee))
	}
	name := callee.Name

	t := target.F64
	hasType := false
	args := bc.Args
	if len(args) > 0 {
		if tl, ok := args[0].(*expr.TypeLit); ok {
			t = tl.T
			hasType = true
			args = args[1:]
		}
	}

	vals, err := ev.evalAll(sc, args)
	if err != nil {
		return nil, err
	}

	// Shape: all array arguments must agree; scalars cycle.
	var dims []int
	n := 1
	for _, v := range vals {
		if arr, ok := v.(value.Array); ok {
			if dims == nil {
				dims = arr.Dims
				n = arr.Len()
			} else if arr.Len() != n {
				return nil, fmt.Errorf("broadcast arguments have mismatched lengths (%d, %d)", n, arr.Len())
			}
		}
	}

	apply := func(elemArgs []value.Value) (value.Value, error) {
		_, tracked := registry.Lookup(name)
		if tracked || name == shadow.LiteralPowName {
			if hasType {
				return shadow.Apply(t, name, elemArgs)
			}
			return shadow.Apply(target.F64, name, elemArgs)
		}
		if bound, ok := sc.Lookup(name); ok {
			if tv, ok := bound.(value.TypeVal); ok && len(elemArgs) == 1 {
				return Convert(tv.T, elemArgs[0])
			}
		}
		return applyBuiltin(name, elemArgs)
	}

	if dims == nil {
		return apply(vals)
	}

	elems := make([]value.Value, n)
	for i := 0; i < n; i++ {
		elemArgs := make([]value.Value, len(vals))
		for j, v := range vals {
			if arr, ok := v.(value.Array); ok {
				elemArgs[j] = arr.Elems[i]
			} else {
				elemArgs[j] = v
			}
		}
		r, err := apply(elemArgs)
		if err != nil {
			return nil, err
		}
		elems[i] = r
	}
	return value.Array{Dims: append([]int(nil), dims...), Elems: elems}, nil
}

func (ev *Evaluator) evalAll(sc *Scope, nodes []expr.Node) ([]value.Value, error) {
	vals := make([]value.Value, len(nodes))
	for i, n := range nodes {
		v, err := ev.Eval(sc, n)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// applyBuiltin covers the untracked structural helpers the fragment
// language provides.
func applyBuiltin(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "complex":
		if len(args) != 2 {
			return nil, fmt.Errorf("complex expects 2 arguments, got %d", len(args))
		}
		return value.Complex{Re: args[0], Im: args[1]}, nil
	case "rational":
		if len(args) != 2 {
			return nil, fmt.Errorf("rational expects 2 arguments, got %d", len(args))
		}
		num, ok1 := args[0].(value.Int)
		den, ok2 := args[1].(value.Int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("rational expects integer numerator and denominator")
		}
		if den == 0 {
			return nil, fmt.Errorf("rational with zero denominator")
		}
		return value.NewRational(int64(num), int64(den)), nil
	case "reshape":
		if len(args) < 2 {
			return nil, fmt.Errorf("reshape expects an array and dimensions")
		}
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("reshape expects an array, got %s", args[0])
		}
		dims := make([]int, len(args)-1)
		n := 1
		for i, a := range args[1:] {
			d, ok := a.(value.Int)
			if !ok {
				return nil, fmt.Errorf("reshape dimensions must be integers")
			}
			dims[i] = int(d)
			n *= int(d)
		}
		if n != arr.Len() {
			return nil, fmt.Errorf("reshape from %d elements to %d", arr.Len(), n)
		}
		return value.Array{Dims: dims, Elems: arr.Elems}, nil
	case "length":
		if len(args) != 1 {
			return nil, fmt.Errorf("length expects 1 argument")
		}
		arr, ok := args[0].(value.Array)
		if !ok {
			return nil, fmt.Errorf("length expects an array, got %s", args[0])
		}
		return value.Int(arr.Len()), nil
	default:
		return nil, fmt.Errorf("unknown function %q", name)
	}
}

// Convert is explicit conversion to a target type: promotable values
// promote; floats re-round at the destination width; complex values and
// arrays convert their members.
func Convert(t target.Type, v value.Value) (value.Value, error) {
	switch val := v.(type) {
	case value.Int, value.Rational, value.Irrational:
		return value.Promote(t, v)
	case value.Float:
		if val.Kind == t.Kind {
			return val, nil
		}
		if val.Kind == target.BigFloat {
			return value.FromBig(t, val.Big), nil
		}
		return value.FromFloat64(t, val.F64), nil
	case value.Complex:
		re, err := Convert(t, val.Re)
		if err != nil {
			return nil, err
		}
		im, err := Convert(t, val.Im)
		if err != nil {
			return nil, err
		}
		return value.Complex{Re: re, Im: im}, nil
	case value.Array:
		elems := make([]value.Value, len(val.Elems))
		for i, e := range val.Elems {
			c, err := Convert(t, e)
			if err != nil {
				return nil, err
			}
			elems[i] = c
		}
		return value.Array{Dims: append([]int(nil), val.Dims...), Elems: elems}, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to %s", v, t)
	}
}
