package eval

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprec/reprec/internal/parser"
	"github.com/reprec/reprec/internal/rewrite"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// evalPlain parses and evaluates without rewriting.
func evalPlain(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	n, err := parser.Parse(src)
	require.NoError(t, err)
	ev := &Evaluator{}
	return ev.Eval(Global(), n)
}

// evalUnder parses, rewrites under tt, and evaluates.
func evalUnder(t *testing.T, tt target.Type, src string) (value.Value, error) {
	t.Helper()
	n, err := parser.Parse(src)
	require.NoError(t, err)
	rw, err := rewrite.Rewrite(tt, n)
	require.NoError(t, err)
	ev := &Evaluator{}
	return ev.Eval(Global(), rw)
}

func TestLiterals(t *testing.T) {
	v, err := evalPlain(t, "2")
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), v)

	v, err = evalPlain(t, "0.1")
	require.NoError(t, err)
	f := v.(value.Float)
	assert.Equal(t, target.Float64, f.Kind)
	assert.Equal(t, 0.1, f.F64)

	v, err = evalPlain(t, `"hello"`)
	require.NoError(t, err)
	assert.Equal(t, value.Str("hello"), v)
}

func TestIdentsAndAssign(t *testing.T) {
	v, err := evalPlain(t, "x = 2\nx + 1")
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)

	_, err = evalPlain(t, "nosuch")
	assert.ErrorContains(t, err, "undefined name")
}

func TestGlobalBindings(t *testing.T) {
	v, err := evalPlain(t, "pi")
	require.NoError(t, err)
	assert.Equal(t, value.Irrational{Name: "pi"}, v)

	v, err = evalPlain(t, "im * im")
	require.NoError(t, err)
	// i^2 = -1; the imaginary part collapses to an exact zero.
	c := v.(value.Complex)
	assert.Equal(t, value.Int(-1), c.Re)
	assert.Equal(t, value.Int(0), c.Im)
}

func TestUnrewrittenTrackedCallUsesNativeWidth(t *testing.T) {
	v, err := evalPlain(t, "sqrt(2)")
	require.NoError(t, err)
	f := v.(value.Float)
	assert.Equal(t, target.Float64, f.Kind)
	assert.Equal(t, math.Sqrt2, f.F64)
}

func TestRewrittenPipeline(t *testing.T) {
	v, err := evalUnder(t, target.F32, "1/3")
	require.NoError(t, err)
	f := v.(value.Float)
	assert.Equal(t, target.Float32, f.Kind)
	assert.Equal(t, float64(float32(1)/float32(3)), f.F64)

	v, err = evalUnder(t, target.F32, "0.1 + 0.2")
	require.NoError(t, err)
	f = v.(value.Float)
	assert.Equal(t, target.Float32, f.Kind)
	assert.Equal(t, float64(float32(0.1)+float32(0.2)), f.F64)
}

func TestRewrittenPipelineBig(t *testing.T) {
	v, err := evalUnder(t, target.Big, "sqrt(2)")
	require.NoError(t, err)
	f := v.(value.Float)
	require.Equal(t, target.BigFloat, f.Kind)
	sq := new(big.Float).SetPrec(256).Mul(f.Big, f.Big)
	diff, _ := new(big.Float).Sub(sq, big.NewFloat(2)).Float64()
	assert.Less(t, math.Abs(diff), 1e-60)
}

func TestBoundTypeNameConverts(t *testing.T) {
	v, err := evalPlain(t, "Float32(2)")
	require.NoError(t, err)
	f := v.(value.Float)
	assert.Equal(t, target.Float32, f.Kind)
	assert.Equal(t, 2.0, f.F64)

	// Conversion is one value at a time.
	_, err = evalPlain(t, "Float32(1, 2)")
	assert.Error(t, err)
}

func TestTypeLitConversionCall(t *testing.T) {
	// The rewriter wraps Inf in an explicit conversion; evaluating it lands
	// the infinity at the target width.
	v, err := evalUnder(t, target.F32, "Inf")
	require.NoError(t, err)
	f := v.(value.Float)
	assert.Equal(t, target.Float32, f.Kind)
	assert.True(t, math.IsInf(f.F64, 1))
}

func TestExplicitOverrideBeatsAmbientTarget(t *testing.T) {
	// rand(Float64) keeps its explicit width even when the fragment is
	// rewritten to half precision.
	v, err := evalUnder(t, target.F16, "rand(Float64)")
	require.NoError(t, err)
	f := v.(value.Float)
	assert.Equal(t, target.Float64, f.Kind)
}

func TestBuiltins(t *testing.T) {
	v, err := evalPlain(t, "complex(1, 2)")
	require.NoError(t, err)
	assert.Equal(t, value.Complex{Re: value.Int(1), Im: value.Int(2)}, v)

	v, err = evalPlain(t, "rational(1, 3)")
	require.NoError(t, err)
	assert.Equal(t, "1/3", v.(value.Rational).Rat.RatString())

	_, err = evalPlain(t, "rational(1, 0)")
	assert.Error(t, err)

	v, err = evalPlain(t, "reshape([1, 2, 3, 4], 2, 2)")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, v.(value.Array).Dims)

	_, err = evalPlain(t, "reshape([1, 2, 3], 2, 2)")
	assert.Error(t, err)

	v, err = evalPlain(t, "length([1, 2, 3])")
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), v)

	_, err = evalPlain(t, "frobnicate(1)")
	assert.ErrorContains(t, err, "unknown function")
}

func TestBroadcastElementwise(t *testing.T) {
	v, err := evalUnder(t, target.F32, "sqrt.([1, 4, 9])")
	require.NoError(t, err)
	arr := v.(value.Array)
	require.Equal(t, []int{3}, arr.Dims)
	for i, want := range []float64{1, 2, 3} {
		f := arr.Elems[i].(value.Float)
		assert.Equal(t, target.Float32, f.Kind)
		assert.Equal(t, want, f.F64)
	}
}

func TestBroadcastScalarCycles(t *testing.T) {
	v, err := evalPlain(t, "hypot.([3, 0], 4)")
	require.NoError(t, err)
	arr := v.(value.Array)
	assert.Equal(t, 5.0, arr.Elems[0].(value.Float).F64)
	assert.Equal(t, 4.0, arr.Elems[1].(value.Float).F64)
}

func TestBroadcastShapeMismatch(t *testing.T) {
	_, err := evalPlain(t, "hypot.([1, 2], [1, 2, 3])")
	assert.ErrorContains(t, err, "mismatched lengths")
}

func TestBroadcastAllScalars(t *testing.T) {
	v, err := evalUnder(t, target.F32, "sqrt.(4)")
	require.NoError(t, err)
	f := v.(value.Float)
	assert.Equal(t, target.Float32, f.Kind)
	assert.Equal(t, 2.0, f.F64)
}

func TestBroadcastBoundTypeName(t *testing.T) {
	v, err := evalPlain(t, "Float32.([1, 2])")
	require.NoError(t, err)
	arr := v.(value.Array)
	assert.Equal(t, target.Float32, arr.Elems[0].(value.Float).Kind)
}

func TestIncludeUnavailable(t *testing.T) {
	_, err := evalPlain(t, `include("lib.frag")`)
	assert.ErrorContains(t, err, "include is not available")
}

func TestIncludeDelegates(t *testing.T) {
	var gotTarget target.Type
	var gotPath string
	ev := &Evaluator{Include: func(tt target.Type, sc *Scope, path string) (value.Value, error) {
		gotTarget = tt
		gotPath = path
		return value.Int(7), nil
	}}

	n, err := parser.Parse(`include("lib.frag")`)
	require.NoError(t, err)
	rw, err := rewrite.Rewrite(target.F32, n)
	require.NoError(t, err)

	v, err := ev.Eval(Global(), rw)
	require.NoError(t, err)
	assert.Equal(t, value.Int(7), v)
	assert.Equal(t, target.F32, gotTarget)
	assert.Equal(t, "lib.frag", gotPath)
}

func TestConvert(t *testing.T) {
	// Promotables promote.
	v, err := Convert(target.F16, value.NewRational(1, 3))
	require.NoError(t, err)
	assert.Equal(t, target.Float16, v.(value.Float).Kind)

	// Same-kind floats pass through unchanged.
	f := value.NewFloat32(1.5)
	v, err = Convert(target.F32, f)
	require.NoError(t, err)
	assert.Equal(t, f, v)

	// Narrowing a big float rounds once, directly at the destination.
	third := new(big.Float).SetPrec(200).Quo(
		new(big.Float).SetPrec(200).SetInt64(1),
		new(big.Float).SetPrec(200).SetInt64(3))
	v, err = Convert(target.F32, value.NewBigFloat(third))
	require.NoError(t, err)
	assert.Equal(t, float64(float32(1)/float32(3)), v.(value.Float).F64)

	// Members convert recursively.
	v, err = Convert(target.F32, value.Complex{Re: value.Int(1), Im: value.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, target.Float32, v.(value.Complex).Re.(value.Float).Kind)

	_, err = Convert(target.F32, value.Str("x"))
	assert.Error(t, err)
}

func TestScopeChain(t *testing.T) {
	parent := NewScope(nil)
	parent.Set("x", value.Int(1))
	child := NewScope(parent)

	v, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, value.Int(1), v)

	// Set binds locally; the parent is untouched.
	child.Set("x", value.Int(2))
	v, _ = parent.Lookup("x")
	assert.Equal(t, value.Int(1), v)
}
