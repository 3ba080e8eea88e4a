package rewrite

import (
	"fmt"

	"github.com/reprec/reprec/internal/target"
)

// LiteralReparseError reports a float literal whose decimal text could not
// be re-parsed at the destination type. It aborts the whole fragment's
// rewrite.
type LiteralReparseError struct {
	Text   string
	Target target.Type
	Err    error
}

func (e *LiteralReparseError) Error() string {
	return fmt.Sprintf("cannot re-parse literal %q as %s: %v", e.Text, e.Target, e.Err)
}

func (e *LiteralReparseError) Unwrap() error { return e.Err }

// ShapeError reports a node shape the rewriter has no rule for. The generic
// fallback makes the rewriter structurally total, so this is an internal
// invariant violation, not a user-facing condition.
type ShapeError struct {
	Shape string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("rewriter has no rule for node shape %s", e.Shape)
}
