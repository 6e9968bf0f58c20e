package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/schema"
	"github.com/successar/multikeydb/internal/store"
)

// TableInfo describes a table in command output.
type TableInfo struct {
	Name    string          `json:"name" yaml:"name"`
	Keys    []schema.Column `json:"keys" yaml:"keys"`
	Records *int64          `json:"records,omitempty" yaml:"records,omitempty"`
}

func tableInfo(t schema.Table) TableInfo {
	return TableInfo{Name: t.Name, Keys: t.Keys()}
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <table> <column[:type]>...",
		Short: "Create a table",
		Long: `Create a table keyed by the given ordered columns.

Column types are integer or text (the default). Creating a table that
already exists is a no-op and keeps the stored definition.

Examples:
  mkdb create events user:integer day:text
  mkdb create accounts id --db ./accounts.db`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runCreate(opts *RootOptions, table string, colArgs []string, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		cols := make([]schema.Column, 0, len(colArgs))
		for _, arg := range colArgs {
			col, err := parseColumn(arg)
			if err != nil {
				return failWith(f, ErrCodeUsage, err.Error(), err, nil)
			}
			cols = append(cols, col)
		}

		t, err := st.CreateTable(cmd.Context(), table, cols)
		if err != nil {
			return fail(f, err)
		}

		if f.Structured() {
			return f.Success(tableInfo(t))
		}
		fmt.Fprintf(f.Writer, "✓ Table %s\n", t)
		return nil
	})
}
