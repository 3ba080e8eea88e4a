package rewrite

// Decision describes one node the rewriter changed and why.
type Decision struct {
	Rule   string // which dispatch rule fired
	Op     string // operation or literal involved
	Before string // formatted node before rewriting
	After  string // formatted node after rewriting
}

// Rule names, in dispatch order.
const (
	RuleFloatLiteral  = "float-literal"
	RuleNamedConstant = "named-constant"
	RuleLiteralPow    = "literal-pow"
	RuleInclude       = "include"
	RuleTrackedCall   = "tracked-call"
	RuleBroadcast     = "broadcast-call"
)

// Recorder observes rewrite decisions. The rewriter itself stays pure: a
// recorder is threaded explicitly by the caller, never stored globally. A
// nil Recorder records nothing.
type Recorder interface {
	Record(Decision)
}

// SliceRecorder accumulates decisions in order. Used by tests and by the
// CLI's trace capture.
type SliceRecorder struct {
	Decisions []Decision
}

// Record appends the decision.
func (r *SliceRecorder) Record(d Decision) {
	r.Decisions = append(r.Decisions, d)
}
