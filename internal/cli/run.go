package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reprec/reprec/internal/eval"
	"github.com/reprec/reprec/internal/expr"
	"github.com/reprec/reprec/internal/include"
	"github.com/reprec/reprec/internal/parser"
	"github.com/reprec/reprec/internal/rewrite"
	"github.com/reprec/reprec/internal/store"
	"github.com/reprec/reprec/internal/target"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Target  string
	TraceDB string
}

// RunResult is the run command's JSON payload.
type RunResult struct {
	Target    string             `json:"target"`
	Rewritten string             `json:"rewritten"`
	Result    string             `json:"result"`
	RunID     string             `json:"run_id,omitempty"`
	Decisions []rewrite.Decision `json:"decisions,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Rewrite a fragment and evaluate it",
		Long: `Parse a fragment, rewrite it under the target type, evaluate it,
and print the result.

Reads from the given file, or from stdin when the file is "-" or omitted.
With --trace-db the run and its rewrite decisions are persisted for later
inspection with the trace command.

Examples:
  reprec run --target Float32 fragment.txt
  echo "1/3 + sqrt(2)" | reprec run --target Float16
  reprec run --target BigFloat fragment.txt --trace-db ./reprec.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "Float32", "target type (Float16|Float32|Float64|BigFloat)")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "path to SQLite database for trace persistence")

	return cmd
}

func runRun(opts *RunOptions, cmd *cobra.Command, args []string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := readSource(cmd.InOrStdin(), args)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read fragment", err)
	}

	t, err := target.Parse(opts.Target)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid target type", err)
	}
	tree, err := parser.Parse(src)
	if err != nil {
		out.Error("E_PARSE", err.Error(), nil)
		return WrapExitError(ExitFailure, "parse failed", err)
	}

	rec := &rewrite.SliceRecorder{}
	rewritten, err := rewrite.RewriteRecorded(t, tree, rec)
	if err != nil {
		out.Error("E_REWRITE", err.Error(), nil)
		return WrapExitError(ExitFailure, "rewrite failed", err)
	}

	ev := &eval.Evaluator{}
	ev.Include = include.New(ev)
	val, err := ev.Eval(eval.Global(), rewritten)
	if err != nil {
		out.Error("E_EVAL", err.Error(), nil)
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	var runID string
	if opts.TraceDB != "" {
		st, err := store.Open(opts.TraceDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer st.Close()
		runID, err = st.WriteRun(context.Background(), t.String(), src, val.String(), rec.Decisions)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to persist run", err)
		}
		out.VerboseLog("run persisted: %s", runID)
	}

	if opts.Format == "json" {
		return out.Success(RunResult{
			Target:    t.String(),
			Rewritten: expr.Format(rewritten),
			Result:    val.String(),
			RunID:     runID,
			Decisions: rec.Decisions,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), val.String())
	out.VerboseLog("rewritten: %s", expr.Format(rewritten))
	for _, d := range rec.Decisions {
		out.VerboseLog("%s %s: %s => %s", d.Rule, d.Op, d.Before, d.After)
	}
	return nil
}
