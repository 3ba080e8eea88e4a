package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprec/reprec/internal/expr"
	"github.com/reprec/reprec/internal/parser"
	"github.com/reprec/reprec/internal/target"
)

// rewriteSource parses, rewrites, and formats in one step.
func rewriteSource(t *testing.T, tt target.Type, src string) string {
	t.Helper()
	n, err := parser.Parse(src)
	require.NoError(t, err)
	out, err := Rewrite(tt, n)
	require.NoError(t, err)
	return expr.Format(out)
}

func TestFloatLiteralReparsed(t *testing.T) {
	tests := []struct {
		target target.Type
		src    string
		want   string
	}{
		{target.F32, "0.1", "f32(0.1)"},
		{target.F32, "2.5", "f32(2.5)"},
		{target.F16, "0.5", "f16(0.5)"},
		// Native width: the literal is left untouched, original spelling
		// included.
		{target.F64, "0.100", "0.100"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, rewriteSource(t, tc.target, tc.src), tc.src)
	}
}

func TestFloatLiteralUserDefined(t *testing.T) {
	ud, err := target.Parse("MyFixed")
	require.NoError(t, err)
	// User-defined targets construct from the literal's decimal text so the
	// constructor sees the exact spelling, not a pre-rounded float.
	assert.Equal(t, `MyFixed("1.5")`, rewriteSource(t, ud, "1.5"))
}

func TestFloatLiteralReparseError(t *testing.T) {
	// The parser never produces malformed literal text, but the rewriter
	// still reports it rather than silently passing it through.
	_, err := Rewrite(target.F32, &expr.FloatLit{Text: "1..2"})
	require.Error(t, err)
	var rerr *LiteralReparseError
	assert.ErrorAs(t, err, &rerr)
}

func TestNamedConstantsWrapped(t *testing.T) {
	assert.Equal(t, "@float32(Inf)", rewriteSource(t, target.F32, "Inf"))
	assert.Equal(t, "@float16(NaN)", rewriteSource(t, target.F16, "NaN"))
	// pi stays symbolic; promotion happens at use sites.
	assert.Equal(t, "pi", rewriteSource(t, target.F32, "pi"))
}

func TestTrackedCallGetsTypeArgument(t *testing.T) {
	assert.Equal(t, "sqrt(@float32, 2)", rewriteSource(t, target.F32, "sqrt(2)"))
	assert.Equal(t, "/(@big, 1, 3)", rewriteSource(t, target.Big, "1/3"))
	assert.Equal(t, "rand(@float16)", rewriteSource(t, target.F16, "rand()"))
	// Operators rewrite like any tracked call, recursively.
	assert.Equal(t,
		"+(@float32, 1, *(@float32, 2, 3))",
		rewriteSource(t, target.F32, "1 + 2*3"))
}

func TestUntrackedCallChildrenStillRewritten(t *testing.T) {
	assert.Equal(t,
		"println(/(@float32, 1, 3))",
		rewriteSource(t, target.F32, "println(1/3)"))
}

func TestLiteralIntegerExponent(t *testing.T) {
	assert.Equal(t, "^^(@float32, 2, 10)", rewriteSource(t, target.F32, "2^10"))
	// Base is rewritten before wrapping.
	assert.Equal(t, "^^(@float32, pi, 2)", rewriteSource(t, target.F32, "pi^2"))
	// Non-literal exponents stay on the general power path.
	assert.Equal(t, "^(@float32, 2, x)", rewriteSource(t, target.F32, "2^x"))
}

func TestIncludeCarriesTarget(t *testing.T) {
	assert.Equal(t,
		`include(@float32, "lib.frag")`,
		rewriteSource(t, target.F32, `include("lib.frag")`))
	// A non-literal path is not the inclusion form.
	assert.Equal(t,
		"include(@float32, p)",
		rewriteSource(t, target.F32, "include(p)"))
}

func TestBroadcastCall(t *testing.T) {
	assert.Equal(t,
		"sqrt.(@float32, [1, 2, 3])",
		rewriteSource(t, target.F32, "sqrt.([1, 2, 3])"))
	// Untracked broadcast: children rewritten, no type injected.
	assert.Equal(t,
		"f.(f32(0.5))",
		rewriteSource(t, target.F32, "f.(0.5)"))
}

func TestExplicitlyTypedCallLeftAlone(t *testing.T) {
	// Identifier naming a built-in target in first-argument position.
	assert.Equal(t,
		"ones(Float64, 2, 3)",
		rewriteSource(t, target.F32, "ones(Float64, 2, 3)"))
	assert.Equal(t,
		"rand(BigFloat)",
		rewriteSource(t, target.F16, "rand(BigFloat)"))
}

func TestAssignBlockArray(t *testing.T) {
	assert.Equal(t,
		"x = /(@float32, 1, 3)",
		rewriteSource(t, target.F32, "x = 1/3"))
	assert.Equal(t,
		"{x = f32(0.5); +(@float32, x, 1)}",
		rewriteSource(t, target.F32, "x = 0.5\nx + 1"))
	assert.Equal(t,
		"[f32(0.5), 2]",
		rewriteSource(t, target.F32, "[0.5, 2]"))
}

func TestGenericFallback(t *testing.T) {
	n := &expr.Generic{Tag: "if", Children: []expr.Node{
		&expr.FloatLit{Text: "0.5"},
	}}
	out, err := Rewrite(target.F32, n)
	require.NoError(t, err)
	assert.Equal(t, "#if(f32(0.5))", expr.Format(out))
}

func TestRewriteIsIdempotent(t *testing.T) {
	sources := []string{
		"sqrt(2) + 0.1",
		"2^10",
		`include("lib.frag")`,
		"sqrt.([1, 2])",
		"Inf + 1",
		"x = mean([1, 2, 3])",
	}
	for _, src := range sources {
		n, err := parser.Parse(src)
		require.NoError(t, err)
		once, err := Rewrite(target.F32, n)
		require.NoError(t, err)
		twice, err := Rewrite(target.F32, once)
		require.NoError(t, err)
		assert.Equal(t, expr.Format(once), expr.Format(twice), src)
	}
}

func TestRewriteDoesNotMutateInput(t *testing.T) {
	n, err := parser.Parse("x = 0.5 + sqrt(2)")
	require.NoError(t, err)
	before := expr.Format(n)
	_, err = Rewrite(target.F32, n)
	require.NoError(t, err)
	assert.Equal(t, before, expr.Format(n))
}

func TestRecorderCapturesDecisions(t *testing.T) {
	n, err := parser.Parse("x = 0.5 + sqrt(2)")
	require.NoError(t, err)
	rec := &SliceRecorder{}
	_, err = RewriteRecorded(target.F32, n, rec)
	require.NoError(t, err)

	require.Len(t, rec.Decisions, 3)

	// Decisions arrive innermost-first: arguments are settled before the
	// enclosing call is wrapped.
	assert.Equal(t, RuleFloatLiteral, rec.Decisions[0].Rule)
	assert.Equal(t, "0.5", rec.Decisions[0].Op)
	assert.Equal(t, "f32(0.5)", rec.Decisions[0].After)

	assert.Equal(t, RuleTrackedCall, rec.Decisions[1].Rule)
	assert.Equal(t, "sqrt", rec.Decisions[1].Op)
	assert.Equal(t, "sqrt(2)", rec.Decisions[1].Before)
	assert.Equal(t, "sqrt(@float32, 2)", rec.Decisions[1].After)

	assert.Equal(t, RuleTrackedCall, rec.Decisions[2].Rule)
	assert.Equal(t, "+", rec.Decisions[2].Op)
	assert.Equal(t, "+(0.5, sqrt(2))", rec.Decisions[2].Before)
}

func TestNilRecorderIsQuiet(t *testing.T) {
	n, err := parser.Parse("sqrt(2)")
	require.NoError(t, err)
	_, err = RewriteRecorded(target.F32, n, nil)
	assert.NoError(t, err)
}
