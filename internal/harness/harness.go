// Package harness runs YAML-defined retargeting scenarios end to end:
// parse the fragment, rewrite it under the scenario's target, evaluate it,
// and check the result against the scenario's expectations or a golden
// file. Scenarios exercise the whole pipeline the way a fragment author
// sees it, where unit tests pin individual packages.
package harness

import (
	"fmt"
	"strings"

	"github.com/reprec/reprec/internal/eval"
	"github.com/reprec/reprec/internal/expr"
	"github.com/reprec/reprec/internal/include"
	"github.com/reprec/reprec/internal/parser"
	"github.com/reprec/reprec/internal/rewrite"
	"github.com/reprec/reprec/internal/target"
)

// Result captures one scenario execution.
type Result struct {
	// Rewritten is the canonical form of the rewritten tree.
	Rewritten string
	// Value is the formatted evaluation result.
	Value string
	// Decisions are the rewrite decisions in dispatch order.
	Decisions []rewrite.Decision
	// Err is the pipeline error, when one occurred. Rewritten and Value
	// hold whatever stages completed before it.
	Err error
}

// Run executes a scenario and checks its explicit expectations. The
// returned error reports expectation mismatches; pipeline errors the
// scenario anticipated via WantError are consumed here.
func Run(sc *Scenario) (*Result, error) {
	res := Execute(sc)

	if sc.WantError != "" {
		if res.Err == nil {
			return res, fmt.Errorf("expected error containing %q, got result %s", sc.WantError, res.Value)
		}
		if !strings.Contains(res.Err.Error(), sc.WantError) {
			return res, fmt.Errorf("expected error containing %q, got %q", sc.WantError, res.Err)
		}
		return res, nil
	}

	if res.Err != nil {
		return res, fmt.Errorf("scenario failed: %w", res.Err)
	}
	if sc.WantRewrite != "" && res.Rewritten != sc.WantRewrite {
		return res, fmt.Errorf("rewritten form mismatch:\n  got  %s\n  want %s", res.Rewritten, sc.WantRewrite)
	}
	if sc.Want != "" && res.Value != sc.Want {
		return res, fmt.Errorf("result mismatch:\n  got  %s\n  want %s", res.Value, sc.Want)
	}
	return res, nil
}

// Execute runs the pipeline without checking expectations.
func Execute(sc *Scenario) *Result {
	res := &Result{}

	t, err := target.Parse(sc.Target)
	if err != nil {
		res.Err = fmt.Errorf("target: %w", err)
		return res
	}

	tree, err := parser.Parse(sc.Source)
	if err != nil {
		res.Err = fmt.Errorf("parse: %w", err)
		return res
	}

	rec := &rewrite.SliceRecorder{}
	rewritten, err := rewrite.RewriteRecorded(t, tree, rec)
	if err != nil {
		res.Err = fmt.Errorf("rewrite: %w", err)
		return res
	}
	res.Rewritten = expr.Format(rewritten)
	res.Decisions = rec.Decisions

	ev := &eval.Evaluator{}
	ev.Include = include.New(ev)
	val, err := ev.Eval(eval.Global(), rewritten)
	if err != nil {
		res.Err = fmt.Errorf("eval: %w", err)
		return res
	}
	res.Value = val.String()

	return res
}
