package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/successar/multikeydb/internal/config"
	"github.com/successar/multikeydb/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	Database   string
	ConfigPath string

	// Level, if set, is adjusted from --verbose or the config log_level
	// before a command runs.
	Level *slog.LevelVar

	// Config is the resolved configuration: file values overridden by
	// explicitly set flags.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the mkdb CLI.
// level may be nil.
func NewRootCommand(level *slog.LevelVar) *cobra.Command {
	opts := &RootOptions{Level: level}

	cmd := &cobra.Command{
		Use:   "mkdb",
		Short: "mkdb - multi-key table store",
		Long: `A key-value store over SQLite where every table is addressed by an
ordered set of typed key columns and holds one JSON value per full key.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config, else mkdb.db)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads the config file, applies flag overrides and validates the
// result.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeConfig, err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = o.Database
	}
	if flags.Changed("format") || o.ConfigPath == "" {
		cfg.Format = o.Format
	}
	if !isValidFormat(cfg.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig, err)
	}

	o.Config = cfg
	o.Format = cfg.Format
	o.Database = cfg.Database

	if o.Level != nil {
		if o.Verbose {
			o.Level.Set(slog.LevelDebug)
		} else {
			o.Level.Set(cfg.Level())
		}
	}
	return nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting structured output
		Verbose:   o.Verbose,
	}
}

// withStore opens the configured database, runs fn and closes it.
func (o *RootOptions) withStore(cmd *cobra.Command, fn func(st *store.Store, f *OutputFormatter) error) error {
	f := o.formatter(cmd)
	cfg := o.Config
	if cfg.Database == "" {
		// Not resolved through the root command.
		cfg = config.Default()
		if o.Database != "" {
			cfg.Database = o.Database
		}
	}
	path := cfg.Database

	slog.Debug("opening database", "path", path)
	st, err := store.Open(path, cfg.StoreOptions(slog.Default())...)
	if err != nil {
		return failWith(f, ErrCodeBackingStore, fmt.Sprintf("failed to open database %s: %v", path, err), err, nil)
	}
	defer st.Close()

	return fn(st, f)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
