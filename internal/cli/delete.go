package cli

import (
	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/store"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	Keys []string
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete the record under a full key",
		Long: `Delete the record under a full key. Deleting a missing record succeeds.

Example:
  mkdb delete events --key user=1 --key day=2024-01-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Keys, "key", "k", nil, "key column as column=value (repeatable)")

	return cmd
}

func runDelete(opts *DeleteOptions, table string, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		keys, err := parseKeys(st, table, opts.Keys)
		if err != nil {
			return failWith(f, ErrCodeUsage, err.Error(), err, nil)
		}

		if err := st.Delete(cmd.Context(), table, keys); err != nil {
			return fail(f, err)
		}

		if f.Structured() {
			return f.Success(map[string]any{"table": table, "deleted": true})
		}
		return f.Success("✓ Deleted")
	})
}
