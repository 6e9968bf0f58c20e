package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/schemafile"
	"github.com/successar/multikeydb/internal/store"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <schema-dir>",
		Short: "Create the tables declared in CUE files",
		Long: `Create every table declared in the .cue files of a directory.

Tables are declared under the top-level table field:

  table: events: {
  	user: "integer"
  	day:  "text"
  }

Tables that already exist keep their stored definition.

Example:
  mkdb apply ./schema --db ./mkdb.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args[0], cmd)
		},
	}
}

func runApply(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	// Load before opening the database so a bad schema touches nothing.
	decls, err := schemafile.Load(dir)
	if err != nil {
		return fail(f, err)
	}
	f.VerboseLog("Found %d table declaration(s) in %s", len(decls), dir)

	return opts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
		tables, err := schemafile.Apply(cmd.Context(), st, decls)
		if err != nil {
			return fail(f, err)
		}

		infos := make([]TableInfo, len(tables))
		for i, t := range tables {
			infos[i] = tableInfo(t)
		}
		if f.Structured() {
			return f.Success(infos)
		}

		fmt.Fprintf(f.Writer, "✓ Applied %d table(s)\n", len(tables))
		for _, t := range tables {
			fmt.Fprintf(f.Writer, "  %s\n", t)
		}
		return nil
	})
}
