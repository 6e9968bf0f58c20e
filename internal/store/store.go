package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/successar/multikeydb/internal/queryir"
	"github.com/successar/multikeydb/internal/querysql"
	"github.com/successar/multikeydb/internal/schema"
)

// Store is a multi-key table store backed by one SQLite file.
type Store struct {
	db       *sql.DB
	registry *schema.Registry
	compiler *querysql.Compiler
	logger   *slog.Logger
}

type options struct {
	logger      *slog.Logger
	busyTimeout int
	journalMode string
	synchronous string
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger used by the store. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBusyTimeout sets how long, in milliseconds, SQLite waits on a locked
// database before failing. Defaults to 5000.
func WithBusyTimeout(ms int) Option {
	return func(o *options) { o.busyTimeout = ms }
}

// WithJournalMode sets the SQLite journal mode. Defaults to WAL.
func WithJournalMode(mode string) Option {
	return func(o *options) { o.journalMode = mode }
}

// WithSynchronous sets the SQLite synchronous level. Defaults to NORMAL.
func WithSynchronous(level string) Option {
	return func(o *options) { o.synchronous = level }
}

// Open creates or opens the SQLite database at path and loads the registry
// from the tables already stored there.
//
// Opening the same file again exposes exactly the tables it held when last
// closed. Failures are returned as-is; nothing is retried.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		logger:      slog.Default(),
		busyTimeout: 5000,
		journalMode: "WAL",
		synchronous: "NORMAL",
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, o); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s := &Store{
		db:       db,
		registry: schema.NewRegistry(),
		compiler: querysql.NewCompiler(),
		logger:   o.logger,
	}
	if err := s.loadRegistry(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}

	s.logger.Debug("store opened", "path", path, "tables", s.registry.Len())
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - writes that bypass the Store are not reflected in the
// registry until the store is reopened.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, o options) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA journal_mode = %s", o.journalMode),
		fmt.Sprintf("PRAGMA synchronous = %s", o.synchronous),
		fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout),
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) loadRegistry(ctx context.Context) error {
	tables, skipped, err := schema.Introspect(ctx, s.db)
	if err != nil {
		return err
	}
	for _, sk := range skipped {
		s.logger.Warn("skipping table with foreign layout", "table", sk.Name, "reason", sk.Reason)
	}
	for _, t := range tables {
		s.registry.Register(t)
	}
	return nil
}

// CreateTable declares a table with the given ordered key columns plus the
// reserved value column, creating it in the database if it does not exist.
//
// Creating an existing table is a no-op. The key columns are not compared
// with the existing definition: the persisted definition is kept, and a
// mismatch is only logged.
func (s *Store) CreateTable(ctx context.Context, name string, keys []schema.Column) (schema.Table, error) {
	const op = "create table"

	tbl, err := schema.NewTable(name, keys)
	if err != nil {
		return schema.Table{}, validationToError(op, name, err)
	}

	if existing, ok := s.registry.Lookup(name); ok {
		s.warnIfDifferent(existing, tbl)
		return existing, nil
	}

	cols := make([]queryir.ColumnDef, 0, len(keys)+1)
	for _, c := range tbl.Keys() {
		cols = append(cols, queryir.ColumnDef{Name: c.Name, SQLType: c.Type.SQLType()})
	}
	cols = append(cols, queryir.ColumnDef{Name: schema.ValueColumn, SQLType: schema.Text.SQLType()})

	var persisted schema.Table
	err = s.withTx(ctx, op, name, func(tx *sql.Tx) error {
		if err := s.exec(ctx, tx, queryir.CreateTable{
			Name:        tbl.Name,
			Columns:     cols,
			PrimaryKey:  tbl.KeyNames(),
			IfNotExists: true,
		}); err != nil {
			return err
		}
		// Read the definition back: an existing physical table wins.
		t, err := schema.IntrospectTable(ctx, tx, tbl.Name)
		if err != nil {
			return err
		}
		persisted = t
		return nil
	})
	if err != nil {
		var le *schema.LayoutError
		if errors.As(err, &le) {
			return schema.Table{}, &Error{Code: ErrCodeInvalidTable, Op: op, Table: name, Message: "table exists with an incompatible layout", Err: err}
		}
		return schema.Table{}, err
	}

	registered, added := s.registry.Register(persisted)
	s.warnIfDifferent(registered, tbl)
	if added {
		s.logger.Debug("table created", "table", registered.Name, "keys", registered.KeyNames())
	}
	return registered, nil
}

func (s *Store) warnIfDifferent(existing, requested schema.Table) {
	if !existing.SameKeys(requested) {
		s.logger.Warn("table already exists with different keys; keeping existing definition",
			"table", existing.Name, "existing", existing.String(), "requested", requested.String())
	}
}

// TableExists reports whether name is registered. It does not touch the
// database.
func (s *Store) TableExists(name string) bool {
	return s.registry.Has(name)
}

// Table returns the registered definition of name.
func (s *Store) Table(name string) (schema.Table, bool) {
	return s.registry.Lookup(name)
}

// Tables returns registered table names: tables found at open time sorted by
// name, followed by tables created since in creation order.
func (s *Store) Tables() []string {
	return s.registry.Names()
}

func validationToError(op, name string, err error) error {
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		return backingStoreError(op, name, err)
	}
	if ve.Kind == schema.KindTable {
		return &Error{Code: ErrCodeInvalidTable, Op: op, Table: name, Message: ve.Message, Err: err}
	}
	return &Error{Code: ErrCodeInvalidKey, Op: op, Table: name, Columns: []string{ve.Name}, Message: ve.Message, Err: err}
}
