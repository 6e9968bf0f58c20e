package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/store"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Keys []string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <table>",
		Short: "Print the value stored under a full key",
		Long: `Print the value stored under a full key.

Exits with status 1 and error E005 if no record exists.

Example:
  mkdb get events --key user=1 --key day=2024-01-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Keys, "key", "k", nil, "key column as column=value (repeatable)")

	return cmd
}

func runGet(opts *GetOptions, table string, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		keys, err := parseKeys(st, table, opts.Keys)
		if err != nil {
			return failWith(f, ErrCodeUsage, err.Error(), err, nil)
		}

		v, found, err := st.Get(cmd.Context(), table, keys)
		if err != nil {
			return fail(f, err)
		}
		if !found {
			return failWith(f, ErrCodeNotFound, fmt.Sprintf("no record in %s for the given key", table), nil,
				map[string]any{"table": table, "keys": opts.Keys})
		}

		if f.Structured() {
			return f.Success(plain(v))
		}
		return f.Success(canonical(v))
	})
}
