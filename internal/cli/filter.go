package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/store"
	"github.com/successar/multikeydb/internal/value"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	Keys []string
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter <table>",
		Short: "List records matching a partial key",
		Long: `List records whose columns equal the given values.

Any subset of the columns may be given, including none. "value" matches
records whose payload is the given string. Each row holds the columns not
given. In text mode rows are printed one canonical JSON object per line.

Examples:
  mkdb filter events --key user=1
  mkdb filter events --key value=open
  mkdb filter events --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Keys, "key", "k", nil, "key column as column=value (repeatable)")

	return cmd
}

func runFilter(opts *FilterOptions, table string, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		keys, err := parseKeys(st, table, opts.Keys)
		if err != nil {
			return failWith(f, ErrCodeUsage, err.Error(), err, nil)
		}

		rows, err := st.Filter(cmd.Context(), table, keys)
		if err != nil {
			return fail(f, err)
		}

		if f.Structured() {
			return f.Success(rowsToAny(rows))
		}
		for _, r := range rows {
			fmt.Fprintln(f.Writer, canonical(value.Object(r)))
		}
		f.VerboseLog("%d row(s)", len(rows))
		return nil
	})
}
