// Package rewrite implements the tree rewriter: a pure function that walks
// an expression tree and redirects every default-typed operation through
// the shadow library under a caller-chosen target type.
//
// The rewriter never mutates its input; it allocates new nodes, so the same
// fragment can be rewritten again under a different target (nested
// inclusion relies on this). Rewriting is deterministic: the same tree and
// target always produce the same output tree.
//
// The "already explicitly typed" check is a deliberate heuristic over names
// and argument positions, not a type checker: a call whose first argument
// is a type literal or an identifier naming a built-in target type is left
// alone. User code that matches a tracked name with different argument
// conventions will be rewritten anyway; that limitation is part of the
// observable contract.
package rewrite

import (
	"github.com/reprec/reprec/internal/expr"
	"github.com/reprec/reprec/internal/registry"
	"github.com/reprec/reprec/internal/shadow"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// Rewrite rewrites a fragment under the target type.
func Rewrite(t target.Type, n expr.Node) (expr.Node, error) {
	return RewriteRecorded(t, n, nil)
}

// RewriteRecorded is Rewrite with an explicit decision recorder.
func RewriteRecorded(t target.Type, n expr.Node, rec Recorder) (expr.Node, error) {
	return rewriteNode(t, n, rec)
}

func record(rec Recorder, rule, op string, before, after expr.Node) {
	if rec == nil {
		return
	}
	rec.Record(Decision{
		Rule:   rule,
		Op:     op,
		Before: expr.Format(before),
		After:  expr.Format(after),
	})
}

func rewriteNode(t target.Type, n expr.Node, rec Recorder) (expr.Node, error) {
	switch v := n.(type) {
	case *expr.FloatLit:
		return rewriteFloatLit(t, v, rec)

	case *expr.Ident:
		// Inf and NaN are untyped until used; give them an explicit
		// conversion so they land at the target width.
		if v.Name == "Inf" || v.Name == "NaN" {
			out := &expr.Call{Callee: &expr.TypeLit{T: t}, Args: []expr.Node{v}}
			record(rec, RuleNamedConstant, v.Name, v, out)
			return out, nil
		}
		return v, nil

	case *expr.IntLit, *expr.StrLit, *expr.TypeLit, *expr.ValueLit:
		return n, nil

	case *expr.Call:
		return rewriteCall(t, v, rec)

	case *expr.Broadcast:
		return rewriteBroadcast(t, v, rec)

	case *expr.Assign:
		val, err := rewriteNode(t, v.Value, rec)
		if err != nil {
			return nil, err
		}
		return &expr.Assign{Name: v.Name, Value: val}, nil

	case *expr.Block:
		stmts, err := rewriteAll(t, v.Stmts, rec)
		if err != nil {
			return nil, err
		}
		return &expr.Block{Stmts: stmts}, nil

	case *expr.ArrayLit:
		elems, err := rewriteAll(t, v.Elems, rec)
		if err != nil {
			return nil, err
		}
		return &expr.ArrayLit{Elems: elems}, nil

	case *expr.Generic:
		// Total fallback: preserve the tag, rewrite the children.
		children, err := rewriteAll(t, v.Children, rec)
		if err != nil {
			return nil, err
		}
		return &expr.Generic{Tag: v.Tag, Children: children}, nil

	default:
		return nil, &ShapeError{Shape: expr.Format(n)}
	}
}

// rewriteFloatLit re-parses the literal's decimal text at the destination
// width, avoiding the double rounding that parsing at the literal's native
// width first would introduce. A literal already at the native width is
// unchanged; user-defined targets get generic construct-from-decimal-text.
func rewriteFloatLit(t target.Type, lit *expr.FloatLit, rec Recorder) (expr.Node, error) {
	if t.Kind == target.Float64 {
		return lit, nil
	}
	if t.Kind == target.UserDefined {
		out := &expr.Call{
			Callee: &expr.Ident{Name: t.Name},
			Args:   []expr.Node{&expr.StrLit{Val: lit.Text}},
		}
		record(rec, RuleFloatLiteral, lit.Text, lit, out)
		return out, nil
	}
	f, err := value.ParseFloatLiteral(t, lit.Text)
	if err != nil {
		return nil, &LiteralReparseError{Text: lit.Text, Target: t, Err: err}
	}
	out := &expr.ValueLit{V: f}
	record(rec, RuleFloatLiteral, lit.Text, lit, out)
	return out, nil
}

func rewriteCall(t target.Type, call *expr.Call, rec Recorder) (expr.Node, error) {
	// A conversion call already pins its argument's width; rewriting the
	// argument again would stack redundant conversions.
	if _, isConv := call.Callee.(*expr.TypeLit); isConv {
		return call, nil
	}

	callee, isIdent := call.Callee.(*expr.Ident)

	// A call that already carries an explicit type in first-argument
	// position — shadow form, or an original Array(Float64, ...) style
	// call — is left alone rather than double-wrapped.
	if isIdent && alreadyTyped(call.Args) {
		if _, tracked := registry.Lookup(callee.Name); tracked || callee.Name == shadow.LiteralPowName {
			return call, nil
		}
	}

	// Literal integer exponents keep their specialized evaluation path:
	// rewrite to the dedicated literal-power shadow operation with the
	// exponent still a compile-time-known literal.
	if isIdent && callee.Name == "^" && len(call.Args) == 2 {
		if exp, ok := call.Args[1].(*expr.IntLit); ok {
			base, err := rewriteNode(t, call.Args[0], rec)
			if err != nil {
				return nil, err
			}
			out := &expr.Call{
				Callee: &expr.Ident{Name: shadow.LiteralPowName},
				Args:   []expr.Node{&expr.TypeLit{T: t}, base, exp},
			}
			record(rec, RuleLiteralPow, "^", call, out)
			return out, nil
		}
	}

	// Inclusion propagates precision across fragment boundaries: the
	// referenced fragment is re-parsed, rewritten under the same target,
	// and evaluated in the enclosing scope.
	if isIdent && callee.Name == "include" && len(call.Args) == 1 {
		if _, ok := call.Args[0].(*expr.StrLit); ok {
			out := &expr.Call{
				Callee: callee,
				Args:   []expr.Node{&expr.TypeLit{T: t}, call.Args[0]},
			}
			record(rec, RuleInclude, "include", call, out)
			return out, nil
		}
	}

	if isIdent {
		if _, tracked := registry.Lookup(callee.Name); tracked {
			args, err := rewriteAll(t, call.Args, rec)
			if err != nil {
				return nil, err
			}
			shadowArgs := make([]expr.Node, 0, len(args)+1)
			shadowArgs = append(shadowArgs, &expr.TypeLit{T: t})
			shadowArgs = append(shadowArgs, args...)
			out := &expr.Call{Callee: callee, Args: shadowArgs}
			record(rec, RuleTrackedCall, callee.Name, call, out)
			return out, nil
		}
	}

	// Untracked call: reconstruct with every child rewritten.
	newCallee, err := rewriteNode(t, call.Callee, rec)
	if err != nil {
		return nil, err
	}
	args, err := rewriteAll(t, call.Args, rec)
	if err != nil {
		return nil, err
	}
	return &expr.Call{Callee: newCallee, Args: args}, nil
}

func rewriteBroadcast(t target.Type, bc *expr.Broadcast, rec Recorder) (expr.Node, error) {
	if callee, ok := bc.Callee.(*expr.Ident); ok {
		if _, tracked := registry.Lookup(callee.Name); tracked {
			if alreadyTyped(bc.Args) {
				return bc, nil
			}
			args, err := rewriteAll(t, bc.Args, rec)
			if err != nil {
				return nil, err
			}
			shadowArgs := make([]expr.Node, 0, len(args)+1)
			shadowArgs = append(shadowArgs, &expr.TypeLit{T: t})
			shadowArgs = append(shadowArgs, args...)
			out := &expr.Broadcast{Callee: callee, Args: shadowArgs}
			record(rec, RuleBroadcast, callee.Name, bc, out)
			return out, nil
		}
	}
	newCallee, err := rewriteNode(t, bc.Callee, rec)
	if err != nil {
		return nil, err
	}
	args, err := rewriteAll(t, bc.Args, rec)
	if err != nil {
		return nil, err
	}
	return &expr.Broadcast{Callee: newCallee, Args: args}, nil
}

func rewriteAll(t target.Type, nodes []expr.Node, rec Recorder) ([]expr.Node, error) {
	out := make([]expr.Node, len(nodes))
	for i, n := range nodes {
		r, err := rewriteNode(t, n, rec)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// alreadyTyped reports whether a call's first argument is an explicit type:
// a type literal (shadow form) or an identifier naming a built-in target.
// Arity/position-based on purpose; see the package comment.
func alreadyTyped(args []expr.Node) bool {
	if len(args) == 0 {
		return false
	}
	switch first := args[0].(type) {
	case *expr.TypeLit:
		return true
	case *expr.Ident:
		return target.IsTypeName(first.Name)
	}
	return false
}
