package cli

import (
	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/store"
	"github.com/successar/multikeydb/internal/value"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	Keys  []string
	Value string
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put <table>",
		Short: "Store a value under a full key",
		Long: `Store a JSON value under a full key, replacing any existing value.

Every key column of the table must be given with --key.

Example:
  mkdb put events --key user=1 --key day=2024-01-01 --value '{"count":3}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Keys, "key", "k", nil, "key column as column=value (repeatable)")
	cmd.Flags().StringVar(&opts.Value, "value", "", "value as JSON (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func runPut(opts *PutOptions, table string, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		keys, err := parseKeys(st, table, opts.Keys)
		if err != nil {
			return failWith(f, ErrCodeUsage, err.Error(), err, nil)
		}
		v, err := value.DecodeString(opts.Value)
		if err != nil {
			return failWith(f, ErrCodeInvalidValue, "invalid --value JSON: "+err.Error(), err, nil)
		}

		if err := st.Upsert(cmd.Context(), table, keys, v); err != nil {
			return fail(f, err)
		}

		f.VerboseLog("stored %s in %s", canonical(v), table)
		if f.Structured() {
			return f.Success(map[string]any{"table": table, "stored": true})
		}
		return f.Success("✓ Stored")
	})
}
