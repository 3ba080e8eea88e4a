// Package include implements fragment inclusion: the referenced fragment is
// read, parsed, rewritten under the including fragment's target, and
// evaluated in the enclosing scope. Precision therefore propagates across
// fragment boundaries, and nested includes inherit the same target.
package include

import (
	"fmt"
	"os"

	"github.com/reprec/reprec/internal/eval"
	"github.com/reprec/reprec/internal/parser"
	"github.com/reprec/reprec/internal/rewrite"
	"github.com/reprec/reprec/internal/target"
	"github.com/reprec/reprec/internal/value"
)

// IOError reports a fragment file that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read fragment %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// New returns an inclusion function bound to the evaluator. The returned
// function is assigned to ev.Include by the caller.
func New(ev *eval.Evaluator) eval.IncludeFunc {
	return func(t target.Type, sc *eval.Scope, path string) (value.Value, error) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, &IOError{Path: path, Err: err}
		}
		tree, err := parser.Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		rewritten, err := rewrite.Rewrite(t, tree)
		if err != nil {
			return nil, fmt.Errorf("rewriting %q: %w", path, err)
		}
		// Evaluated in the enclosing scope: the included fragment's
		// assignments land in the including fragment's bindings.
		return ev.Eval(sc, rewritten)
	}
}
