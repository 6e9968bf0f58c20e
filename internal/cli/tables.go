package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/store"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables",
		Long: `List every table with its key columns and record count.

Example:
  mkdb tables --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(rootOpts, cmd)
		},
	}
}

func runTables(opts *RootOptions, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		infos := []TableInfo{}
		for _, name := range st.Tables() {
			t, _ := st.Table(name)
			n, err := st.Count(cmd.Context(), name)
			if err != nil {
				return fail(f, err)
			}
			info := tableInfo(t)
			info.Records = &n
			infos = append(infos, info)
		}

		if f.Structured() {
			return f.Success(infos)
		}
		if len(infos) == 0 {
			fmt.Fprintln(f.Writer, "No tables.")
			return nil
		}
		for _, info := range infos {
			t, _ := st.Table(info.Name)
			fmt.Fprintf(f.Writer, "%s  %d record(s)\n", t, *info.Records)
		}
		return nil
	})
}
