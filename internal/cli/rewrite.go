package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reprec/reprec/internal/expr"
	"github.com/reprec/reprec/internal/parser"
	"github.com/reprec/reprec/internal/rewrite"
	"github.com/reprec/reprec/internal/target"
)

// RewriteOptions holds flags for the rewrite command.
type RewriteOptions struct {
	*RootOptions
	Target string
	Output string
}

// RewriteResult is the rewrite command's JSON payload.
type RewriteResult struct {
	Target    string             `json:"target"`
	Rewritten string             `json:"rewritten"`
	Decisions []rewrite.Decision `json:"decisions,omitempty"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Rewrite a fragment without evaluating it",
		Long: `Parse a fragment and print its rewritten form under the target type.

Reads from the given file, or from stdin when the file is "-" or omitted.

Examples:
  reprec rewrite --target Float32 fragment.txt
  echo "sqrt(2)" | reprec rewrite --target BigFloat
  reprec rewrite --target Float16 fragment.txt --format json -v`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Target, "target", "t", "Float32", "target type (Float16|Float32|Float64|BigFloat)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the rewritten fragment to a file instead of stdout")

	return cmd
}

func runRewrite(opts *RewriteOptions, cmd *cobra.Command, args []string) error {
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

	formatted := expr.Format(rewritten)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(formatted+"\n"), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		out.VerboseLog("rewritten fragment written to %s", opts.Output)
		return nil
	}

	if opts.Format == "json" {
		return out.Success(RewriteResult{
			Target:    t.String(),
			Rewritten: formatted,
			Decisions: rec.Decisions,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatted)
	for _, d := range rec.Decisions {
		out.VerboseLog("%s %s: %s => %s", d.Rule, d.Op, d.Before, d.After)
	}
	return nil
}

// readSource reads the fragment text from the named file, or stdin when no
// file (or "-") is given.
func readSource(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
