package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/store"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every record of every table",
		Long: `Print every stored record tagged with its table.

In text mode records stream as JSON lines:
  {"day":"2024-01-01","table":"events","user":1,"value":{"count":5}}

Examples:
  mkdb dump --db ./mkdb.db
  mkdb dump --format yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, cmd)
		},
	}
}

func runDump(opts *RootOptions, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		if f.Structured() {
			records, err := st.DumpAll(cmd.Context())
			if err != nil {
				return fail(f, err)
			}
			out := make([]any, len(records))
			for i, rec := range records {
				out[i] = plain(rec.Object())
			}
			return f.Success(out)
		}

		n := 0
		for rec, err := range st.Dump(cmd.Context()) {
			if err != nil {
				return fail(f, err)
			}
			fmt.Fprintln(f.Writer, canonical(rec.Object()))
			n++
		}
		f.VerboseLog("%d record(s)", n)
		return nil
	})
}
