package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reprec/reprec/internal/registry"
)

// OpsOptions holds flags for the ops command.
type OpsOptions struct {
	*RootOptions
	Family string
}

// OpEntry is one tracked operation in the ops command's output.
type OpEntry struct {
	Name   string `json:"name"`
	Family string `json:"family"`
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List the tracked operations",
		Long: `List every operation the rewriter redirects, with its dispatch family.

Examples:
  reprec ops
  reprec ops --family elementary
  reprec ops --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Family, "family", "", "filter to one dispatch family")

	return cmd
}

func runOps(opts *OpsOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var entries []OpEntry
	for _, name := range registry.Names() {
		family, _ := registry.Lookup(name)
		if opts.Family != "" && string(family) != opts.Family {
			continue
		}
		entries = append(entries, OpEntry{Name: name, Family: string(family)})
	}

	if opts.Family != "" && len(entries) == 0 {
		return WrapExitError(ExitCommandError, fmt.Sprintf("unknown family %q", opts.Family), nil)
	}

	if opts.Format == "json" {
		return out.Success(entries)
	}

	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", e.Family, e.Name)
	}
	return nil
}
