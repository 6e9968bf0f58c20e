package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/successar/multikeydb/internal/queryir"
)

// withTx runs fn inside one transaction, committing on success.
// Any failure rolls the whole transaction back.
func (s *Store) withTx(ctx context.Context, op, table string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return backingStoreError(op, table, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return backingStoreError(op, table, err)
	}

	if err := tx.Commit(); err != nil {
		return backingStoreError(op, table, fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *Store) exec(ctx context.Context, tx *sql.Tx, stmt queryir.Statement) error {
	query, params, err := s.compiler.Compile(stmt)
	if err != nil {
		return fmt.Errorf("compile %T: %w", stmt, err)
	}
	if _, err := tx.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("exec %T: %w", stmt, err)
	}
	return nil
}

// query runs a Select and calls scan for each row. Rows are closed before
// query returns.
func (s *Store) query(ctx context.Context, tx *sql.Tx, stmt queryir.Select, scan func(*sql.Rows) error) error {
	query, params, err := s.compiler.Compile(stmt)
	if err != nil {
		return fmt.Errorf("compile select: %w", err)
	}
	rows, err := tx.QueryContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("query %s: %w", stmt.From, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", stmt.From, err)
	}
	return nil
}

func (s *Store) count(ctx context.Context, tx *sql.Tx, stmt queryir.Count) (int64, error) {
	query, params, err := s.compiler.Compile(stmt)
	if err != nil {
		return 0, fmt.Errorf("compile count: %w", err)
	}
	var n int64
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", stmt.From, err)
	}
	return n, nil
}
