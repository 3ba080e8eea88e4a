package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reprec/reprec/internal/rewrite"
	"github.com/reprec/reprec/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// TraceRun is one persisted run in the trace command's output.
type TraceRun struct {
	ID           string             `json:"id"`
	FragmentHash string             `json:"fragment_hash"`
	Target       string             `json:"target"`
	Source       string             `json:"source"`
	Result       string             `json:"result"`
	CreatedAt    string             `json:"created_at"`
	Decisions    []rewrite.Decision `json:"decisions,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Inspect persisted rewrite runs",
		Long: `List persisted runs, or show one run with its rewrite decisions.

Without a run ID, lists the most recent runs. With one, shows that run's
source, result, and every rewrite decision in dispatch order.

Examples:
  reprec trace --db ./reprec.db
  reprec trace --db ./reprec.db --limit 5
  reprec trace --db ./reprec.db 4f9d0c7e-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraceCmd(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")

	return cmd
}

func runTraceCmd(opts *TraceOptions, cmd *cobra.Command, args []string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if len(args) == 1 {
		return showRun(ctx, st, out, cmd, args[0])
	}
	return listRuns(ctx, st, out, cmd, opts.Limit)
}

func showRun(ctx context.Context, st *store.Store, out *OutputFormatter, cmd *cobra.Command, id string) error {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load run", err)
	}
	decisions, err := st.GetDecisions(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load decisions", err)
	}

	if out.Format == "json" {
		return out.Success(TraceRun{
			ID:           run.ID,
			FragmentHash: run.FragmentHash,
			Target:       run.Target,
			Source:       run.Source,
			Result:       run.Result,
			CreatedAt:    run.CreatedAt,
			Decisions:    decisions,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run:      %s\n", run.ID)
	fmt.Fprintf(w, "created:  %s\n", run.CreatedAt)
	fmt.Fprintf(w, "target:   %s\n", run.Target)
	fmt.Fprintf(w, "fragment: %s\n", run.FragmentHash)
	fmt.Fprintf(w, "source:   %s\n", run.Source)
	fmt.Fprintf(w, "result:   %s\n", run.Result)
	if len(decisions) > 0 {
		fmt.Fprintln(w, "decisions:")
		for i, d := range decisions {
			fmt.Fprintf(w, "  %2d %-14s %-8s %s => %s\n", i, d.Rule, d.Op, d.Before, d.After)
		}
	}
	return nil
}

func listRuns(ctx context.Context, st *store.Store, out *OutputFormatter, cmd *cobra.Command, limit int) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if out.Format == "json" {
		entries := make([]TraceRun, len(runs))
		for i, r := range runs {
			entries[i] = TraceRun{
				ID:           r.ID,
				FragmentHash: r.FragmentHash,
				Target:       r.Target,
				Source:       r.Source,
				Result:       r.Result,
				CreatedAt:    r.CreatedAt,
			}
		}
		return out.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-8s  %-20s  %s\n", r.ID, r.Target, r.CreatedAt, r.Result)
	}
	return nil
}
