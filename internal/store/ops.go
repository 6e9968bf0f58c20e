package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/successar/multikeydb/internal/queryir"
	"github.com/successar/multikeydb/internal/schema"
	"github.com/successar/multikeydb/internal/value"
)

// Upsert writes v under the full key keys, inserting a new record or
// replacing the payload of the existing one.
//
// The existence check and the write run in the same transaction, so no
// other transaction can observe or race the gap between them.
func (s *Store) Upsert(ctx context.Context, table string, keys Keys, v value.Value) error {
	const op = "upsert"

	t, err := s.lookup(op, table)
	if err != nil {
		return err
	}
	if err := checkKeys(op, t, keys, true); err != nil {
		return err
	}
	payload, err := value.EncodeString(v)
	if err != nil {
		return &Error{Code: ErrCodeInvalidValue, Op: op, Table: t.Name, Message: "value cannot be encoded", Err: err}
	}

	pred := predicate(t, keys)
	inserted := false
	err = s.withTx(ctx, op, t.Name, func(tx *sql.Tx) error {
		matches := 0
		err := s.query(ctx, tx, queryir.Select{
			From:    t.Name,
			Columns: t.KeyNames(),
			Filter:  pred,
		}, func(*sql.Rows) error {
			matches++
			return nil
		})
		if err != nil {
			return err
		}

		switch matches {
		case 0:
			inserted = true
			return s.exec(ctx, tx, insertStatement(t, keys, payload))
		case 1:
			return s.exec(ctx, tx, queryir.Update{
				Table:  t.Name,
				Set:    []queryir.Assignment{{Column: schema.ValueColumn, Value: value.String(payload)}},
				Filter: pred,
			})
		default:
			return consistencyError(op, t.Name, matches)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Debug("upsert", "table", t.Name, "inserted", inserted)
	return nil
}

func insertStatement(t schema.Table, keys Keys, payload string) queryir.Insert {
	cols := t.ColumnNames()
	vals := make([]value.Value, 0, len(cols))
	for _, name := range t.KeyNames() {
		vals = append(vals, keys[name])
	}
	vals = append(vals, value.String(payload))
	return queryir.Insert{Into: t.Name, Columns: cols, Values: vals}
}

// Delete removes the record with the full key keys. Deleting a key that
// has no record succeeds and changes nothing.
func (s *Store) Delete(ctx context.Context, table string, keys Keys) error {
	const op = "delete"

	t, err := s.lookup(op, table)
	if err != nil {
		return err
	}
	if err := checkKeys(op, t, keys, true); err != nil {
		return err
	}

	err = s.withTx(ctx, op, t.Name, func(tx *sql.Tx) error {
		return s.exec(ctx, tx, queryir.Delete{From: t.Name, Filter: predicate(t, keys)})
	})
	if err != nil {
		return err
	}

	s.logger.Debug("delete", "table", t.Name)
	return nil
}

// Get returns the decoded payload stored under the full key keys.
// found is false, with a nil error, when no record matches.
func (s *Store) Get(ctx context.Context, table string, keys Keys) (v value.Value, found bool, err error) {
	const op = "get"

	t, err := s.lookup(op, table)
	if err != nil {
		return nil, false, err
	}
	if err := checkKeys(op, t, keys, true); err != nil {
		return nil, false, err
	}

	var payloads []sql.NullString
	err = s.withTx(ctx, op, t.Name, func(tx *sql.Tx) error {
		return s.query(ctx, tx, queryir.Select{
			From:    t.Name,
			Columns: []string{schema.ValueColumn},
			Filter:  predicate(t, keys),
		}, func(rows *sql.Rows) error {
			var p sql.NullString
			if err := rows.Scan(&p); err != nil {
				return fmt.Errorf("scan value: %w", err)
			}
			payloads = append(payloads, p)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Debug("get", "table", t.Name, "found", len(payloads) > 0)
	switch len(payloads) {
	case 0:
		return nil, false, nil
	case 1:
		v, err := decodePayload(op, t.Name, payloads[0])
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	default:
		return nil, false, consistencyError(op, t.Name, len(payloads))
	}
}

// Filter returns every record whose columns named in keys equal the given
// values. keys may be empty or name any subset of the table's columns,
// including "value", which matches records whose payload equals the given
// Int or String.
//
// Each result row holds only the columns not named in keys; the "value"
// column, when included, is decoded. Rows are ordered by key columns.
func (s *Store) Filter(ctx context.Context, table string, keys Keys) ([]Row, error) {
	const op = "filter"

	t, err := s.lookup(op, table)
	if err != nil {
		return nil, err
	}
	if err := checkKeys(op, t, keys, false); err != nil {
		return nil, err
	}
	match, err := storedForm(op, t.Name, keys)
	if err != nil {
		return nil, err
	}

	cols := slices.DeleteFunc(t.ColumnNames(), func(c string) bool {
		_, named := keys[c]
		return named
	})

	var rows []Row
	err = s.withTx(ctx, op, t.Name, func(tx *sql.Tx) error {
		if len(cols) == 0 {
			// Every column is named: one empty row per match.
			n, err := s.count(ctx, tx, queryir.Count{From: t.Name, Filter: predicate(t, match)})
			if err != nil {
				return err
			}
			for range n {
				rows = append(rows, Row{})
			}
			return nil
		}
		return s.query(ctx, tx, queryir.Select{
			From:    t.Name,
			Columns: cols,
			Filter:  predicate(t, match),
			OrderBy: t.KeyNames(),
		}, func(r *sql.Rows) error {
			row, err := scanRow(op, t.Name, cols, r)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("filter", "table", t.Name, "rows", len(rows))
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// Count returns the number of records in table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	const op = "count"

	t, err := s.lookup(op, table)
	if err != nil {
		return 0, err
	}

	var n int64
	err = s.withTx(ctx, op, t.Name, func(tx *sql.Tx) error {
		c, err := s.count(ctx, tx, queryir.Count{From: t.Name})
		n = c
		return err
	})
	return n, err
}

// scanRow scans the selected cols of one row. Key columns are scanned
// generically so tables holding values outside their declared affinity
// still read back.
func scanRow(op, table string, cols []string, rows *sql.Rows) (Row, error) {
	dest := make([]any, len(cols))
	for i := range dest {
		dest[i] = new(any)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make(Row, len(cols))
	for i, col := range cols {
		raw := *(dest[i].(*any))
		if col == schema.ValueColumn {
			v, err := decodePayload(op, table, toNullString(raw))
			if err != nil {
				return nil, err
			}
			row[col] = v
			continue
		}
		row[col] = columnValue(raw)
	}
	return row, nil
}

func toNullString(raw any) sql.NullString {
	switch v := raw.(type) {
	case string:
		return sql.NullString{String: v, Valid: true}
	case []byte:
		return sql.NullString{String: string(v), Valid: true}
	case nil:
		return sql.NullString{}
	default:
		return sql.NullString{String: fmt.Sprint(v), Valid: true}
	}
}

func columnValue(raw any) value.Value {
	switch v := raw.(type) {
	case int64:
		return value.Int(v)
	case string:
		return value.String(v)
	case []byte:
		return value.String(string(v))
	case float64:
		return value.Float(v)
	case bool:
		return value.Bool(v)
	case nil:
		return value.Null{}
	default:
		return value.String(fmt.Sprint(v))
	}
}

func decodePayload(op, table string, p sql.NullString) (value.Value, error) {
	if !p.Valid {
		return nil, decodingError(op, table, fmt.Errorf("value is NULL"))
	}
	v, err := value.DecodeString(p.String)
	if err != nil {
		return nil, decodingError(op, table, err)
	}
	return v, nil
}
